package product

import (
	"slices"
	"strings"
)

// Source column names of the product workbook
const (
	ColumnProductID    = "证券代码"
	ColumnProductName  = "证券名称"
	ColumnAge          = "适合年龄(BXLC)"
	ColumnFeatures     = "产品特色(BXLC)"
	ColumnPremium      = "保费说明(BXLC)"
	ColumnCompany      = "保险公司全称(BXLC)"
	ColumnPaymentMode  = "缴费方式(BXLC)"
	ColumnSalesChannel = "销售渠道(BXLC)"
	ColumnSalesScope   = "销售范围(BXLC)"
	ColumnCoverage     = "保障期限(BXLC)"
)

// Columns lists the recognized columns in workbook order
var Columns = []string{
	ColumnProductID, ColumnProductName, ColumnAge, ColumnFeatures, ColumnPremium,
	ColumnCompany, ColumnPaymentMode, ColumnSalesChannel, ColumnSalesScope, ColumnCoverage,
}

// Fallback display values
const (
	UnknownName    = "未知产品"
	UnknownCompany = "未知公司"
	UnknownValue   = "未知"
)

// RawRow is one untouched row of the source table, keyed by column name
type RawRow map[string]string

// Get returns the cell for column, or "" when the column is absent
func (r RawRow) Get(column string) string {
	return r[column]
}

// Value returns the trimmed cell for column, or fallback when the cell is a placeholder
func (r RawRow) Value(column, fallback string) string {
	v := strings.TrimSpace(r[column])
	if IsPlaceholder(v) {
		return fallback
	}
	return v
}

var placeholders = []string{"", "--", "-", "nan", "none", "null", "n/a"}

// IsPlaceholder reports whether a cell carries no information
func IsPlaceholder(s string) bool {
	return slices.Contains(placeholders, strings.ToLower(strings.TrimSpace(s)))
}

// NormalizedProduct is the typed record derived from exactly one RawRow.
// Values are never mutated after the catalog is built.
type NormalizedProduct struct {
	ProductID            string        `json:"product_id" yaml:"product_id"`
	ProductName          string        `json:"product_name" yaml:"product_name"`
	InsuranceCompany     string        `json:"insurance_company" yaml:"insurance_company"`
	MinAge               *int          `json:"min_age" yaml:"min_age"`
	MaxAge               *int          `json:"max_age" yaml:"max_age"`
	AgeRangeStr          string        `json:"age_range_str" yaml:"age_range_str"`
	InsuranceType        InsuranceType `json:"insurance_type" yaml:"insurance_type"`
	PaymentType          PaymentType   `json:"payment_type" yaml:"payment_type"`
	PaymentPeriods       []int         `json:"payment_periods" yaml:"payment_periods"`
	PaymentPeriodsStr    string        `json:"payment_periods_str" yaml:"payment_periods_str"`
	MinPremium           int64         `json:"min_premium" yaml:"min_premium"`
	MinPremiumStr        string        `json:"min_premium_str" yaml:"min_premium_str"`
	CoverageType         CoverageType  `json:"coverage_type" yaml:"coverage_type"`
	CoverageAge          *int          `json:"coverage_age" yaml:"coverage_age"`
	CoverageYears        *int          `json:"coverage_years" yaml:"coverage_years"`
	CoverageStr          string        `json:"coverage_str" yaml:"coverage_str"`
	SalesChannel         string        `json:"sales_channel" yaml:"sales_channel"`
	SalesScope           string        `json:"sales_scope" yaml:"sales_scope"`
	RiskLevel            RiskLevel     `json:"risk_level" yaml:"risk_level"`
	FeatureKeywords      []string      `json:"feature_keywords" yaml:"feature_keywords"`
	Features             string        `json:"features" yaml:"features"`
	OriginalAgeDesc      string        `json:"original_age_desc" yaml:"original_age_desc"`
	OriginalPremiumDesc  string        `json:"original_premium_desc" yaml:"original_premium_desc"`
	OriginalCoverageDesc string        `json:"original_coverage_desc" yaml:"original_coverage_desc"`
}

// HasKeyword reports whether the product was tagged with any of the keywords
func (p *NormalizedProduct) HasKeyword(keywords ...string) bool {
	for _, k := range keywords {
		if slices.Contains(p.FeatureKeywords, k) {
			return true
		}
	}
	return false
}

// TypeContains reports whether the insurance type label contains any of the fragments
func (p *NormalizedProduct) TypeContains(fragments ...string) bool {
	for _, f := range fragments {
		if strings.Contains(string(p.InsuranceType), f) {
			return true
		}
	}
	return false
}

// ContainsAge reports whether age lies inside the eligible range, a nil bound being unbounded
func (p *NormalizedProduct) ContainsAge(age int) bool {
	if p.MinAge != nil && *p.MinAge > age {
		return false
	}
	if p.MaxAge != nil && *p.MaxAge < age {
		return false
	}
	return true
}

// IntPtr returns a pointer to v
func IntPtr(v int) *int {
	return &v
}
