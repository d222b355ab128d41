package product

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRiskLevel_Ordinal(t *testing.T) {
	for i, level := range RiskLevels {
		assert.Equal(t, i+1, level.Ordinal(), level)
		assert.True(t, level.IsValid())
	}
	assert.Equal(t, 3, RiskLevel("未定义").Ordinal())
	assert.False(t, RiskLevel("").IsValid())
}

func TestRiskLevel_Color(t *testing.T) {
	assert.Equal(t, "#4CAF50", RiskLow.Color())
	assert.Equal(t, "#F44336", RiskHigh.Color())
	assert.Equal(t, "#9E9E9E", RiskLevel("x").Color())
}

func TestIsPlaceholder(t *testing.T) {
	for _, s := range []string{"", "  ", "--", "nan", "NaN", "None", "null"} {
		assert.True(t, IsPlaceholder(s), "%q", s)
	}
	for _, s := range []string{"0", "终身", "18周岁"} {
		assert.False(t, IsPlaceholder(s), "%q", s)
	}
}

func TestRawRow_Value(t *testing.T) {
	row := RawRow{ColumnProductName: "  平安养老年金  ", ColumnCompany: "--"}
	assert.Equal(t, "平安养老年金", row.Value(ColumnProductName, UnknownName))
	assert.Equal(t, UnknownCompany, row.Value(ColumnCompany, UnknownCompany))
	assert.Equal(t, UnknownValue, row.Value(ColumnSalesScope, UnknownValue))
}

func TestNormalizedProduct_ContainsAge(t *testing.T) {
	p := &NormalizedProduct{MinAge: IntPtr(18), MaxAge: IntPtr(60)}
	assert.True(t, p.ContainsAge(18))
	assert.True(t, p.ContainsAge(60))
	assert.False(t, p.ContainsAge(17))
	assert.False(t, p.ContainsAge(61))

	open := &NormalizedProduct{MinAge: IntPtr(50)}
	assert.True(t, open.ContainsAge(99))
	assert.False(t, open.ContainsAge(49))

	assert.True(t, (&NormalizedProduct{}).ContainsAge(0))
}

func TestNormalizedProduct_Keywords(t *testing.T) {
	p := &NormalizedProduct{
		InsuranceType:   InsuranceTypeRetirementAnnuity,
		FeatureKeywords: []string{"养老", "保证"},
	}
	assert.True(t, p.HasKeyword("保本", "保证"))
	assert.False(t, p.HasKeyword("医疗"))
	assert.True(t, p.TypeContains("养老"))
	assert.False(t, p.TypeContains("分红", "万能"))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "18-65岁", FormatAgeRange(IntPtr(18), IntPtr(65)))
	assert.Equal(t, "0-不限岁", FormatAgeRange(IntPtr(0), nil))
	assert.Equal(t, "不限-不限岁", FormatAgeRange(nil, nil))

	assert.Equal(t, "10,000元", FormatPremium(10000))
	assert.Equal(t, "1,000元", FormatPremium(1000))
	assert.Equal(t, "0元", FormatPremium(0))
	assert.Equal(t, "1,234,567元", FormatPremium(1234567))

	assert.Equal(t, "多种可选", FormatPeriods(nil))
	assert.Equal(t, "3、5、10", FormatPeriods([]int{3, 5, 10}))
}

func TestFormatCoverage(t *testing.T) {
	tests := []struct {
		name        string
		typ         CoverageType
		age, years  *int
		description string
		want        string
	}{
		{"whole life", CoverageTypeWholeLife, IntPtr(100), nil, "终身", "终身保障"},
		{"to age", CoverageTypeToAge, IntPtr(85), nil, "至85周岁", "保障至85周岁"},
		{"fixed term", CoverageTypeFixedTerm, nil, IntPtr(20), "20年", "保障20年"},
		{"to age without age", CoverageTypeToAge, nil, nil, "至被保险人身故", "至被保险人身故"},
		{"empty description", CoverageTypeUnknown, nil, nil, "", "未知"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCoverage(tt.typ, tt.age, tt.years, tt.description))
		})
	}
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "养老", TruncateRunes("养老", 5, "..."))
	assert.Equal(t, "养老...", TruncateRunes("养老年金保险", 2, "..."))
	long := strings.Repeat("保", 210)
	assert.Len(t, []rune(FormatFeatures(long)), 203)
}
