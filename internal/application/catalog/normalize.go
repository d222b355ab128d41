package catalog

import (
	"fmt"

	"github.com/pension/backend/internal/domain/extraction"
	"github.com/pension/backend/internal/domain/product"
)

// FallbackProductID is the id given to a row without a product code
func FallbackProductID(index int) string {
	return fmt.Sprintf("ID_%d", index)
}

// NormalizeRow derives the typed product of one raw row.
// index is the zero-based position of the row in its source table.
func NormalizeRow(index int, row product.RawRow) *product.NormalizedProduct {
	name := row.Value(product.ColumnProductName, "")
	features := row.Value(product.ColumnFeatures, "")
	ageText := row.Value(product.ColumnAge, "")
	premiumText := row.Value(product.ColumnPremium, "")
	coverageText := row.Value(product.ColumnCoverage, "")

	ages := extraction.ExtractAgeRange(ageText)
	premium := extraction.ExtractPremiumInfo(premiumText)
	coverage := extraction.ExtractCoveragePeriod(coverageText)

	p := &product.NormalizedProduct{
		ProductID:            row.Value(product.ColumnProductID, FallbackProductID(index)),
		ProductName:          row.Value(product.ColumnProductName, product.UnknownName),
		InsuranceCompany:     row.Value(product.ColumnCompany, product.UnknownCompany),
		MinAge:               ages.Min,
		MaxAge:               ages.Max,
		AgeRangeStr:          product.FormatAgeRange(ages.Min, ages.Max),
		InsuranceType:        extraction.ExtractInsuranceType(name),
		PaymentType:          premium.PaymentType,
		PaymentPeriods:       premium.Periods,
		PaymentPeriodsStr:    product.FormatPeriods(premium.Periods),
		MinPremium:           premium.MinAmount,
		MinPremiumStr:        product.FormatPremium(premium.MinAmount),
		CoverageType:         coverage.Type,
		CoverageAge:          coverage.Age,
		CoverageYears:        coverage.Years,
		CoverageStr:          product.FormatCoverage(coverage.Type, coverage.Age, coverage.Years, coverage.Description),
		SalesChannel:         row.Value(product.ColumnSalesChannel, product.UnknownValue),
		SalesScope:           row.Value(product.ColumnSalesScope, product.UnknownValue),
		RiskLevel:            extraction.ExtractRiskLevel(name, features),
		FeatureKeywords:      extraction.ExtractFeatureKeywords(features),
		Features:             product.FormatFeatures(features),
		OriginalAgeDesc:      ageText,
		OriginalPremiumDesc:  premiumText,
		OriginalCoverageDesc: coverageText,
	}
	if p.PaymentPeriods == nil {
		p.PaymentPeriods = []int{}
	}
	return p
}

// normalizeSafely runs NormalizeRow, turning a panic into an error
func normalizeSafely(index int, row product.RawRow) (p *product.NormalizedProduct, err error) {
	defer func() {
		if r := recover(); r != nil {
			p, err = nil, fmt.Errorf("normalize row %d: %v", index, r)
		}
	}()
	return NormalizeRow(index, row), nil
}
