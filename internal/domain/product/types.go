package product

// InsuranceType is the closed set of product categories
type InsuranceType string

const (
	InsuranceTypeAnnuity           InsuranceType = "年金保险"
	InsuranceTypeRetirementAnnuity InsuranceType = "养老年金"
	InsuranceTypeEndowment         InsuranceType = "两全保险"
	InsuranceTypeUniversal         InsuranceType = "万能型"
	InsuranceTypeParticipating     InsuranceType = "分红型"
	InsuranceTypeGroup             InsuranceType = "团体保险"
	InsuranceTypeWholeLife         InsuranceType = "终身寿险"
	InsuranceTypeRider             InsuranceType = "附加险"
	InsuranceTypeOther             InsuranceType = "其他"
	InsuranceTypeUnknown           InsuranceType = "未知"
)

// PaymentType describes how premiums are paid
type PaymentType string

const (
	PaymentTypeLumpSum     PaymentType = "趸交"
	PaymentTypeInstallment PaymentType = "期缴"
	PaymentTypeMonthly     PaymentType = "月缴"
	PaymentTypeQuarterly   PaymentType = "季缴"
	PaymentTypeSemiAnnual  PaymentType = "半年缴"
	PaymentTypeUnknown     PaymentType = "未知"
)

// CoverageType describes how long a product covers the insured
type CoverageType string

const (
	CoverageTypeWholeLife CoverageType = "终身"
	CoverageTypeToAge     CoverageType = "至特定年龄"
	CoverageTypeFixedTerm CoverageType = "固定年限"
	CoverageTypeUnknown   CoverageType = "未知"
)

// WholeLifeCoverageAge is the coverage age recorded for whole-life products
const WholeLifeCoverageAge = 100

// RiskLevel is the five-level risk scale shared by products and user tolerance
type RiskLevel string

const (
	RiskLow        RiskLevel = "低"
	RiskLowMedium  RiskLevel = "中低"
	RiskMedium     RiskLevel = "中"
	RiskMediumHigh RiskLevel = "中高"
	RiskHigh       RiskLevel = "高"
)

// RiskLevels lists the scale from lowest to highest
var RiskLevels = []RiskLevel{RiskLow, RiskLowMedium, RiskMedium, RiskMediumHigh, RiskHigh}

var riskOrdinals = map[RiskLevel]int{
	RiskLow:        1,
	RiskLowMedium:  2,
	RiskMedium:     3,
	RiskMediumHigh: 4,
	RiskHigh:       5,
}

// Ordinal returns the position of the level on the 1..5 scale.
// Unknown levels sit in the middle of the scale.
func (r RiskLevel) Ordinal() int {
	if n, ok := riskOrdinals[r]; ok {
		return n
	}
	return 3
}

// IsValid reports whether r is one of the five known levels
func (r RiskLevel) IsValid() bool {
	_, ok := riskOrdinals[r]
	return ok
}

var riskColors = map[RiskLevel]string{
	RiskLow:        "#4CAF50",
	RiskLowMedium:  "#8BC34A",
	RiskMedium:     "#FFC107",
	RiskMediumHigh: "#FF9800",
	RiskHigh:       "#F44336",
}

// Color returns the display color for the level, gray for unknown levels
func (r RiskLevel) Color() string {
	if c, ok := riskColors[r]; ok {
		return c
	}
	return "#9E9E9E"
}
