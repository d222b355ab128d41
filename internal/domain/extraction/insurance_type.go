package extraction

import (
	"strings"

	"github.com/pension/backend/internal/domain/product"
)

type keywordCategory[T any] struct {
	value    T
	keywords []string
}

var insuranceTypeTable = []keywordCategory[product.InsuranceType]{
	{product.InsuranceTypeAnnuity, []string{"年金保险", "年金险"}},
	{product.InsuranceTypeRetirementAnnuity, []string{"养老", "退休金", "养老年金"}},
	{product.InsuranceTypeEndowment, []string{"两全保险", "两全险"}},
	{product.InsuranceTypeUniversal, []string{"万能型", "万能险"}},
	{product.InsuranceTypeParticipating, []string{"分红型", "分红险"}},
	{product.InsuranceTypeGroup, []string{"团体", "团体年金", "团体养老"}},
	{product.InsuranceTypeWholeLife, []string{"终身寿险"}},
	{product.InsuranceTypeRider, []string{"附加"}},
}

// secondary checks applied when no category keyword matched
var insuranceTypeFallbacks = []keywordCategory[product.InsuranceType]{
	{product.InsuranceTypeAnnuity, []string{"年金"}},
	{product.InsuranceTypeRetirementAnnuity, []string{"养老"}},
	{product.InsuranceTypeEndowment, []string{"两全"}},
}

// ExtractInsuranceType classifies a product by its name; the first category
// in declaration order with a matching keyword wins.
func ExtractInsuranceType(name string) product.InsuranceType {
	if isMissing(name) {
		return product.InsuranceTypeUnknown
	}
	s := strings.ToLower(Normalize(name))
	if t, ok := matchCategory(insuranceTypeTable, s); ok {
		return t
	}
	if t, ok := matchCategory(insuranceTypeFallbacks, s); ok {
		return t
	}
	return product.InsuranceTypeOther
}

func matchCategory[T any](table []keywordCategory[T], s string) (T, bool) {
	for _, c := range table {
		if containsAny(s, c.keywords...) {
			return c.value, true
		}
	}
	var zero T
	return zero, false
}

func containsAny(s string, keywords ...string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
