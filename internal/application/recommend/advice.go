package recommend

import (
	"github.com/pension/backend/internal/domain/product"
	"github.com/pension/backend/internal/domain/profile"
)

// Advice is rule-based planning guidance for one user
type Advice struct {
	UserID                     string   `json:"user_id"`
	AdviceTime                 string   `json:"advice_time"`
	GeneralAdvice              []string `json:"general_advice"`
	ProductTypeRecommendations []string `json:"product_type_recommendations"`
	RiskManagementAdvice       []string `json:"risk_management_advice"`
	NextSteps                  []string `json:"next_steps"`
}

// Age and income (万元) thresholds of the advice brackets
const (
	youngAgeLimit     = 30
	midCareerAgeLimit = 50
	modestIncomeLimit = 10
	goodIncomeLimit   = 30
)

var nextSteps = []string{
	"查看系统推荐的产品列表",
	"比较3-5个感兴趣的产品",
	"咨询专业理财顾问获取更详细建议",
	"考虑税收优惠政策，合理规划缴费",
}

// BuildAdvice derives the advice buckets from a profile
func BuildAdvice(u *profile.UserProfile) Advice {
	a := Advice{
		GeneralAdvice:              []string{"个人养老金产品是退休规划的重要组成部分，建议尽早规划。"},
		ProductTypeRecommendations: []string{},
		RiskManagementAdvice:       []string{},
		NextSteps:                  append([]string(nil), nextSteps...),
	}

	switch {
	case u.Age < youngAgeLimit:
		a.GeneralAdvice = append(a.GeneralAdvice, "您还年轻，可以考虑风险稍高但长期收益更好的产品。")
		a.ProductTypeRecommendations = append(a.ProductTypeRecommendations, "考虑分红型或万能型产品，追求长期增值。")
	case u.Age < midCareerAgeLimit:
		a.GeneralAdvice = append(a.GeneralAdvice, "这是规划养老的关键时期，建议建立稳定的养老金积累计划。")
		a.ProductTypeRecommendations = append(a.ProductTypeRecommendations, "养老年金保险和两全保险都是不错的选择。")
	default:
		a.GeneralAdvice = append(a.GeneralAdvice, "临近退休，应注重资金安全和稳定收益。")
		a.ProductTypeRecommendations = append(a.ProductTypeRecommendations, "推荐低风险的养老年金产品或终身寿险。")
	}

	switch {
	case u.AnnualIncome < modestIncomeLimit:
		a.GeneralAdvice = append(a.GeneralAdvice, "收入水平适中，建议选择缴费灵活、门槛较低的产品。")
	case u.AnnualIncome < goodIncomeLimit:
		a.GeneralAdvice = append(a.GeneralAdvice, "收入良好，可以适当配置不同风险等级的产品进行组合。")
	default:
		a.GeneralAdvice = append(a.GeneralAdvice, "收入较高，可以考虑配置多种产品实现多元化养老规划。")
	}

	switch u.RiskTolerance {
	case product.RiskLow, product.RiskLowMedium:
		a.RiskManagementAdvice = append(a.RiskManagementAdvice, "您的风险承受能力较低，建议选择保本型或保证收益的产品。")
		a.ProductTypeRecommendations = append(a.ProductTypeRecommendations, "传统养老年金保险或低风险两全保险适合您。")
	case product.RiskMedium:
		a.RiskManagementAdvice = append(a.RiskManagementAdvice, "您可以承受中等风险，分红型产品可能带来更好收益。")
	default:
		a.RiskManagementAdvice = append(a.RiskManagementAdvice, "您能承受较高风险，可以考虑万能型或投资连结型产品。")
	}

	if u.SocialSecurityType == profile.SocialSecurityNone {
		a.GeneralAdvice = append(a.GeneralAdvice, "您没有社保，养老金规划尤为重要，建议优先考虑保障全面的产品。")
		a.ProductTypeRecommendations = append(a.ProductTypeRecommendations, "需要重点关注产品的保障范围和稳定性。")
	}
	return a
}
