package extraction

import (
	"strings"

	"github.com/pension/backend/internal/domain/product"
)

type riskRule struct {
	keywords []string
	level    func(features string) product.RiskLevel
}

func fixedRisk(level product.RiskLevel) func(string) product.RiskLevel {
	return func(string) product.RiskLevel { return level }
}

// evaluated top to bottom, first keyword hit wins
var riskTable = []riskRule{
	{[]string{"万能型", "万能险"}, fixedRisk(product.RiskMediumHigh)},
	{[]string{"分红型", "分红险"}, fixedRisk(product.RiskMedium)},
	{[]string{"投连险", "投资连结"}, fixedRisk(product.RiskHigh)},
	{[]string{"两全保险", "两全险"}, fixedRisk(product.RiskLowMedium)},
	{[]string{"养老年金", "年金保险"}, func(features string) product.RiskLevel {
		if containsAny(features, "保本", "保证") {
			return product.RiskLow
		}
		return product.RiskLowMedium
	}},
	{[]string{"终身寿险"}, fixedRisk(product.RiskLow)},
}

// ExtractRiskLevel derives a risk tier from the product name, consulting the
// features text for guaranteed annuities.
func ExtractRiskLevel(name, features string) product.RiskLevel {
	n := strings.ToLower(Normalize(name))
	f := ""
	if !isMissing(features) {
		f = strings.ToLower(Normalize(features))
	}
	for _, r := range riskTable {
		if containsAny(n, r.keywords...) {
			return r.level(f)
		}
	}
	return product.RiskMedium
}
