package extraction

import (
	"strings"
	"testing"

	"github.com/pension/backend/internal/domain/product"
	"github.com/stretchr/testify/assert"
)

func TestExtractInsuranceType(t *testing.T) {
	tests := []struct {
		name string
		want product.InsuranceType
	}{
		{"中宏人寿:中宏安享团体年金保险(万能型)", product.InsuranceTypeAnnuity},
		{"长生人寿:金福来团体养老年金保险(万能型)", product.InsuranceTypeAnnuity},
		{"海康人寿:[安享无忧]两全保险(分红型)", product.InsuranceTypeEndowment},
		{"太平人寿:太平团体退休金保险(分红型)(停售)", product.InsuranceTypeRetirementAnnuity},
		{"太平人寿:太平一诺千金终身寿险(分红型)", product.InsuranceTypeParticipating},
		{"某某人寿:稳盈万能险", product.InsuranceTypeUniversal},
		{"某某人寿:员工团体意外险", product.InsuranceTypeGroup},
		{"某某人寿:安心终身寿险", product.InsuranceTypeWholeLife},
		{"某某人寿:附加重疾险", product.InsuranceTypeRider},
		{"某某人寿:年金计划", product.InsuranceTypeAnnuity},
		{"某某人寿:安康两全计划", product.InsuranceTypeEndowment},
		{"某某人寿:定期寿险", product.InsuranceTypeOther},
		{"--", product.InsuranceTypeUnknown},
		{"", product.InsuranceTypeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractInsuranceType(tt.name))
		})
	}
}

func TestExtractRiskLevel(t *testing.T) {
	tests := []struct {
		name     string
		features string
		want     product.RiskLevel
	}{
		{"安享团体年金保险(万能型)", "", product.RiskMediumHigh},
		{"金鑫延年年金保险(分红型)", "保证领取", product.RiskMedium},
		{"智选投资连结保险", "", product.RiskHigh},
		{"金保顺两全保险", "", product.RiskLowMedium},
		{"幸福养老年金保险", "保证领取二十年", product.RiskLow},
		{"幸福养老年金保险", "保本型账户", product.RiskLow},
		{"幸福养老年金保险", "--", product.RiskLowMedium},
		{"安心终身寿险", "", product.RiskLow},
		{"意外伤害保险", "", product.RiskMedium},
	}
	for _, tt := range tests {
		t.Run(tt.name+"/"+tt.features, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractRiskLevel(tt.name, tt.features))
		})
	}
}

func TestExtractFeatureKeywords(t *testing.T) {
	assert.Equal(t, []string{}, ExtractFeatureKeywords("--"))
	assert.Equal(t, []string{}, ExtractFeatureKeywords(""))
	assert.Equal(t,
		[]string{"养老", "年金", "保本", "团体"},
		ExtractFeatureKeywords("本产品为团体养老年金保险，并有保本型账户可供投资选择"),
	)

	all := ExtractFeatureKeywords(strings.Join(FeatureVocabulary, " "))
	assert.Len(t, all, MaxFeatureKeywords)
	assert.Equal(t, FeatureVocabulary[:MaxFeatureKeywords], all)
}
