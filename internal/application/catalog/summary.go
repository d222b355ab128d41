package catalog

import (
	"slices"

	"github.com/pension/backend/internal/domain/product"
)

// TopCompaniesLimit caps Summary.TopCompanies
const TopCompaniesLimit = 10

// AgeStats aggregates the eligible-age bounds
type AgeStats struct {
	HasMinAge int      `json:"has_min_age"`
	HasMaxAge int      `json:"has_max_age"`
	AvgMinAge *float64 `json:"avg_min_age"`
	AvgMaxAge *float64 `json:"avg_max_age"`
}

// CompanyCount is one entry of the company ranking
type CompanyCount struct {
	Company string `json:"company"`
	Count   int    `json:"count"`
}

// Summary describes a catalog snapshot
type Summary struct {
	TotalProducts           int                           `json:"total_products"`
	TotalCompanies          int                           `json:"total_companies"`
	AgeStats                AgeStats                      `json:"age_stats"`
	RiskDistribution        map[product.RiskLevel]int     `json:"risk_distribution"`
	TypeDistribution        map[product.InsuranceType]int `json:"type_distribution"`
	PaymentTypeDistribution map[product.PaymentType]int   `json:"payment_type_distribution"`
	TopCompanies            []CompanyCount                `json:"top_companies"`
}

// Summary returns the statistics of the catalog, computed once
func (c *Catalog) Summary() *Summary {
	c.summaryOnce.Do(func() {
		c.summary = summarize(c.products, len(c.companies))
	})
	return c.summary
}

func summarize(products []*product.NormalizedProduct, companies int) *Summary {
	s := &Summary{
		TotalProducts:           len(products),
		TotalCompanies:          companies,
		RiskDistribution:        make(map[product.RiskLevel]int),
		TypeDistribution:        make(map[product.InsuranceType]int),
		PaymentTypeDistribution: make(map[product.PaymentType]int),
		TopCompanies:            make([]CompanyCount, 0),
	}

	var minSum, maxSum int
	index := make(map[string]int)
	for _, p := range products {
		if p.MinAge != nil {
			s.AgeStats.HasMinAge++
			minSum += *p.MinAge
		}
		if p.MaxAge != nil {
			s.AgeStats.HasMaxAge++
			maxSum += *p.MaxAge
		}
		s.RiskDistribution[p.RiskLevel]++
		s.TypeDistribution[p.InsuranceType]++
		s.PaymentTypeDistribution[p.PaymentType]++

		if i, ok := index[p.InsuranceCompany]; ok {
			s.TopCompanies[i].Count++
		} else {
			index[p.InsuranceCompany] = len(s.TopCompanies)
			s.TopCompanies = append(s.TopCompanies, CompanyCount{Company: p.InsuranceCompany, Count: 1})
		}
	}
	if s.AgeStats.HasMinAge > 0 {
		avg := float64(minSum) / float64(s.AgeStats.HasMinAge)
		s.AgeStats.AvgMinAge = &avg
	}
	if s.AgeStats.HasMaxAge > 0 {
		avg := float64(maxSum) / float64(s.AgeStats.HasMaxAge)
		s.AgeStats.AvgMaxAge = &avg
	}

	// stable: ties keep first appearance
	slices.SortStableFunc(s.TopCompanies, func(a, b CompanyCount) int { return b.Count - a.Count })
	if len(s.TopCompanies) > TopCompaniesLimit {
		s.TopCompanies = s.TopCompanies[:TopCompaniesLimit]
	}
	return s
}
