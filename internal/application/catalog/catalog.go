package catalog

import (
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pension/backend/internal/domain/product"
)

// Catalog is an immutable, indexed set of normalized products.
// All lookups are safe for concurrent use.
type Catalog struct {
	products  []*product.NormalizedProduct
	byID      map[string]*product.NormalizedProduct
	byCompany map[string][]*product.NormalizedProduct
	companies []string
	builtAt   time.Time

	summaryOnce sync.Once
	summary     *Summary
}

// newCatalog indexes products; ids must already be unique
func newCatalog(products []*product.NormalizedProduct, builtAt time.Time) *Catalog {
	c := &Catalog{
		products:  products,
		byID:      make(map[string]*product.NormalizedProduct, len(products)),
		byCompany: make(map[string][]*product.NormalizedProduct),
		builtAt:   builtAt,
	}
	for _, p := range products {
		c.byID[p.ProductID] = p
		if _, ok := c.byCompany[p.InsuranceCompany]; !ok {
			c.companies = append(c.companies, p.InsuranceCompany)
		}
		c.byCompany[p.InsuranceCompany] = append(c.byCompany[p.InsuranceCompany], p)
	}
	sort.Strings(c.companies)
	return c
}

// Empty returns a catalog without products
func Empty() *Catalog {
	return newCatalog(nil, time.Time{})
}

// Len returns the number of products
func (c *Catalog) Len() int {
	return len(c.products)
}

// BuiltAt returns when the catalog was built
func (c *Catalog) BuiltAt() time.Time {
	return c.builtAt
}

// Products returns every product in source order
func (c *Catalog) Products() []*product.NormalizedProduct {
	return slices.Clone(c.products)
}

// Get looks up a product by id
func (c *Catalog) Get(id string) (*product.NormalizedProduct, bool) {
	p, ok := c.byID[id]
	return p, ok
}

// ByCompany returns the products of one company, exact name match
func (c *Catalog) ByCompany(name string) []*product.NormalizedProduct {
	return slices.Clone(c.byCompany[name])
}

// Companies returns the distinct company names, ascending
func (c *Catalog) Companies() []string {
	return slices.Clone(c.companies)
}

// FilterByAge returns products whose eligible range contains age
func (c *Catalog) FilterByAge(age int) []*product.NormalizedProduct {
	return c.where(func(p *product.NormalizedProduct) bool { return p.ContainsAge(age) })
}

// FilterByRisk returns products of exactly the given risk level
func (c *Catalog) FilterByRisk(level product.RiskLevel) []*product.NormalizedProduct {
	return c.where(func(p *product.NormalizedProduct) bool { return p.RiskLevel == level })
}

// Search matches keyword case-insensitively against name, company, type and features
func (c *Catalog) Search(keyword string) []*product.NormalizedProduct {
	kw := strings.ToLower(strings.TrimSpace(keyword))
	if kw == "" {
		return c.Products()
	}
	return c.where(func(p *product.NormalizedProduct) bool {
		for _, field := range []string{p.ProductName, p.InsuranceCompany, string(p.InsuranceType), p.Features} {
			if strings.Contains(strings.ToLower(field), kw) {
				return true
			}
		}
		return false
	})
}

// Filter returns products satisfying every criterion that is set
func (c *Catalog) Filter(criteria Criteria) []*product.NormalizedProduct {
	return c.where(criteria.Match)
}

func (c *Catalog) where(keep func(*product.NormalizedProduct) bool) []*product.NormalizedProduct {
	out := make([]*product.NormalizedProduct, 0)
	for _, p := range c.products {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

// Criteria narrows the catalog; zero-valued fields are ignored
type Criteria struct {
	InsuranceType    product.InsuranceType `json:"insurance_type,omitempty" form:"insurance_type"`
	RiskLevel        product.RiskLevel     `json:"risk_level,omitempty" form:"risk_level"`
	PaymentType      product.PaymentType   `json:"payment_type,omitempty" form:"payment_type"`
	InsuranceCompany string                `json:"insurance_company,omitempty" form:"insurance_company"`
	// MinAge keeps products whose min_age is at most this age
	MinAge *int `json:"min_age,omitempty" form:"min_age"`
	// MaxAge keeps products whose max_age is at least this age
	MaxAge *int `json:"max_age,omitempty" form:"max_age"`
	// MaxPremium keeps products whose min_premium is at most this amount
	MaxPremium *int64 `json:"max_premium,omitempty" form:"max_premium"`
}

// IsEmpty reports whether no criterion is set
func (cr Criteria) IsEmpty() bool {
	return len(cr.predicates()) == 0
}

type predicate func(*product.NormalizedProduct) bool

// Match reports whether p satisfies every criterion that is set
func (cr Criteria) Match(p *product.NormalizedProduct) bool {
	for _, pred := range cr.predicates() {
		if !pred(p) {
			return false
		}
	}
	return true
}

// predicates composes one check per set criterion.
// A product with a nil bound never satisfies a bound criterion.
func (cr Criteria) predicates() []predicate {
	var preds []predicate
	if cr.InsuranceType != "" {
		preds = append(preds, func(p *product.NormalizedProduct) bool { return p.InsuranceType == cr.InsuranceType })
	}
	if cr.RiskLevel != "" {
		preds = append(preds, func(p *product.NormalizedProduct) bool { return p.RiskLevel == cr.RiskLevel })
	}
	if cr.PaymentType != "" {
		preds = append(preds, func(p *product.NormalizedProduct) bool { return p.PaymentType == cr.PaymentType })
	}
	if cr.InsuranceCompany != "" {
		preds = append(preds, func(p *product.NormalizedProduct) bool { return p.InsuranceCompany == cr.InsuranceCompany })
	}
	if cr.MinAge != nil {
		limit := *cr.MinAge
		preds = append(preds, func(p *product.NormalizedProduct) bool { return p.MinAge != nil && *p.MinAge <= limit })
	}
	if cr.MaxAge != nil {
		limit := *cr.MaxAge
		preds = append(preds, func(p *product.NormalizedProduct) bool { return p.MaxAge != nil && *p.MaxAge >= limit })
	}
	if cr.MaxPremium != nil {
		limit := *cr.MaxPremium
		preds = append(preds, func(p *product.NormalizedProduct) bool { return p.MinPremium <= limit })
	}
	return preds
}
