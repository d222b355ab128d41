// Package scoring holds the six per-dimension match functions between a user
// profile and a normalized product, and their weighted aggregation. Every
// function returns a value in [0, 1].
package scoring

import (
	"math"
	"strings"

	"github.com/pension/backend/internal/domain/product"
	"github.com/pension/backend/internal/domain/profile"
)

const (
	neutral          = 0.5
	yuanPerWan       = 10000.0
	ageDecayYears    = 20.0
	defaultAgeFloor  = 0
	defaultAgeCeil   = 100
	incomeShare      = 0.15
	policyStartAge   = 30
	minCoverageSpan  = 20
	comfortableRatio = 0.3
)

// AgeScore rates how well age sits inside an eligible range. Inside the range
// the score falls linearly from the center; outside it decays to 0 over 20 years.
func AgeScore(age int, minAge, maxAge *int) float64 {
	if minAge == nil && maxAge == nil {
		return neutral
	}
	lo, hi := defaultAgeFloor, defaultAgeCeil
	if minAge != nil {
		lo = *minAge
	}
	if maxAge != nil {
		hi = *maxAge
	}

	a := float64(age)
	if age >= lo && age <= hi {
		width := float64(hi - lo)
		if width == 0 {
			return 1.0
		}
		center := float64(lo+hi) / 2
		return clamp(1 - math.Abs(a-center)/width)
	}

	var distance float64
	if age < lo {
		distance = float64(lo) - a
	} else {
		distance = a - float64(hi)
	}
	return clamp(1 - distance/ageDecayYears)
}

// IncomeScore rates the minimum premium against what the user can reasonably
// afford: 15% of annual income, doubled for lump-sum and ×1.2 for monthly or
// quarterly payment.
func IncomeScore(annualIncomeWan float64, minPremium int64, paymentType product.PaymentType) float64 {
	if minPremium <= 0 {
		return neutral
	}
	reasonable := annualIncomeWan * yuanPerWan * incomeShare
	switch paymentType {
	case product.PaymentTypeLumpSum:
		reasonable *= 2
	case product.PaymentTypeMonthly, product.PaymentTypeQuarterly:
		reasonable *= 1.2
	}
	if reasonable <= 0 {
		return 0
	}

	ratio := float64(minPremium) / reasonable
	switch {
	case ratio <= comfortableRatio:
		return 1.0
	case ratio <= 1:
		return math.Max(0.6, 1-(ratio-comfortableRatio)*0.5)
	default:
		return clamp(1 - (ratio-1)*0.5)
	}
}

var riskDiffScores = []float64{1.0, 0.8, 0.5, 0.3}

// RiskScore depends only on the distance between the two levels on the 1..5 scale
func RiskScore(tolerance, risk product.RiskLevel) float64 {
	diff := tolerance.Ordinal() - risk.Ordinal()
	if diff < 0 {
		diff = -diff
	}
	if diff < len(riskDiffScores) {
		return riskDiffScores[diff]
	}
	return 0.1
}

// RetirementScore compares coverage with the expected retirement age. Without a
// coverage age, coverage years are compared with the span from an assumed
// policy start at 30 to retirement, at least 20 years.
func RetirementScore(expectedRetirementAge int, coverageAge, coverageYears *int) float64 {
	if coverageAge != nil {
		switch diff := absInt(*coverageAge - expectedRetirementAge); {
		case diff <= 5:
			return 1.0
		case diff <= 10:
			return 0.7
		case diff <= 15:
			return 0.4
		default:
			return 0.1
		}
	}
	if coverageYears != nil {
		span := max(expectedRetirementAge-policyStartAge, minCoverageSpan)
		switch diff := absInt(*coverageYears - span); {
		case diff <= 5:
			return 0.8
		case diff <= 10:
			return 0.5
		default:
			return 0.2
		}
	}
	return neutral
}

// SocialSecurityScore applies the fixed branch table keyed by social security type
func SocialSecurityScore(ss profile.SocialSecurityType, insuranceType product.InsuranceType, keywords []string) float64 {
	t := string(insuranceType)
	has := func(tags ...string) bool {
		for _, tag := range tags {
			for _, k := range keywords {
				if k == tag {
					return true
				}
			}
		}
		return false
	}

	switch ss {
	case profile.SocialSecurityNone:
		switch {
		case strings.Contains(t, "养老") || strings.Contains(t, "年金"):
			if has("保证", "保本") {
				return 1.0
			}
			return 0.7
		case has("医疗", "健康"):
			return 0.9
		default:
			return 0.3
		}
	case profile.SocialSecurityResident:
		switch {
		case has("补充", "附加"):
			return 0.9
		case strings.Contains(t, "养老"):
			return 0.7
		default:
			return 0.5
		}
	case profile.SocialSecurityEmployee:
		switch {
		case strings.Contains(t, "分红") || strings.Contains(t, "万能"):
			return 0.8
		case strings.Contains(t, "养老"):
			return 0.6
		default:
			return 0.4
		}
	}
	return neutral
}

// InvestmentScore rates the investable amount against the minimum premium
func InvestmentScore(investmentWan float64, minPremium int64) float64 {
	if minPremium <= 0 {
		return neutral
	}
	ratio := investmentWan * yuanPerWan / float64(minPremium)
	switch {
	case ratio >= 3:
		return 1.0
	case ratio >= 1:
		return 0.5 + (ratio-1)*0.25
	default:
		return math.Max(0.1, ratio*0.5)
	}
}

func clamp(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
