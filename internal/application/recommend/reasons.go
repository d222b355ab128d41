package recommend

import (
	"fmt"

	"github.com/pension/backend/internal/domain/product"
	"github.com/pension/backend/internal/domain/profile"
	"github.com/pension/backend/internal/domain/scoring"
)

// MaxReasons caps the reasons attached to one recommendation
const MaxReasons = 3

// minReasons is the count below which generic reasons are added
const minReasons = 2

// Reasons explains a match in plain language, strongest dimensions first
func Reasons(u *profile.UserProfile, p *product.NormalizedProduct, s scoring.Scores) []string {
	reasons := make([]string, 0, MaxReasons+2)

	switch {
	case s.Age >= 0.8:
		reasons = append(reasons, fmt.Sprintf("年龄%d岁非常适合此产品", u.Age))
	case s.Age >= 0.6:
		reasons = append(reasons, fmt.Sprintf("年龄%d岁在适合范围内", u.Age))
	}

	switch {
	case s.Income >= 0.8:
		reasons = append(reasons, "保费在您的合理承受范围内")
	case s.Income >= 0.6:
		reasons = append(reasons, "保费与您的收入水平匹配")
	}

	if s.Risk >= 0.8 {
		reasons = append(reasons, fmt.Sprintf("风险等级(%s)与您的风险偏好(%s)匹配", p.RiskLevel, u.RiskTolerance))
	}

	if s.Retirement >= 0.7 {
		switch {
		case p.CoverageAge != nil && *p.CoverageAge != 0:
			reasons = append(reasons, fmt.Sprintf("保障至%d岁，与您的退休规划契合", *p.CoverageAge))
		case p.CoverageYears != nil && *p.CoverageYears != 0:
			reasons = append(reasons, fmt.Sprintf("保障%d年，适合您的长期规划", *p.CoverageYears))
		}
	}

	if s.SocialSecurity >= 0.8 {
		if u.SocialSecurityType == profile.SocialSecurityNone {
			reasons = append(reasons, "适合无社保用户，提供全面保障")
		} else {
			reasons = append(reasons, fmt.Sprintf("适合%s社保用户", u.SocialSecurityType))
		}
	}

	if len(reasons) < minReasons {
		if p.TypeContains("养老") {
			reasons = append(reasons, "这是一款养老产品，适合长期退休规划")
		}
		if p.RiskLevel == product.RiskLow {
			reasons = append(reasons, "低风险产品，资金安全有保障")
		}
		if p.TypeContains("分红") {
			reasons = append(reasons, "分红型产品，有机会获得额外收益")
		}
	}

	if len(reasons) > MaxReasons {
		reasons = reasons[:MaxReasons]
	}
	return reasons
}
