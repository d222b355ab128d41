package catalog

import (
	"errors"
	"time"

	"github.com/pension/backend/internal/domain/product"
	"github.com/pension/backend/internal/domain/shared"
	csvimport "github.com/pension/backend/internal/infrastructure/import"
)

// MaxReportedErrors caps the row errors kept in a BuildResult
const MaxReportedErrors = 100

// ErrNoRows is returned when Build is given no rows at all
var ErrNoRows = errors.New("no rows to build a catalog from")

// BuildResult reports how a set of rows turned into a catalog
type BuildResult struct {
	TotalRows   int                  `json:"total_rows"`
	BuiltRows   int                  `json:"built_rows"`
	SkippedRows int                  `json:"skipped_rows"`
	Errors      []csvimport.RowError `json:"errors,omitempty"`
	IsTruncated bool                 `json:"is_truncated,omitempty"`
	TotalErrors int                  `json:"total_errors,omitempty"`
}

// Build normalizes every row into a new catalog.
// A row that fails to normalize, or repeats an earlier product id, is skipped
// and reported; the remaining rows still build.
func Build(rows []product.RawRow) (*Catalog, *BuildResult, error) {
	result := &BuildResult{TotalRows: len(rows)}
	if len(rows) == 0 {
		return nil, result, ErrNoRows
	}

	errs := csvimport.NewErrorCollection(MaxReportedErrors)
	seen := make(map[string]bool, len(rows))
	products := make([]*product.NormalizedProduct, 0, len(rows))

	for i, row := range rows {
		p, err := normalizeSafely(i, row)
		if err != nil {
			errs.AddBuildError(i+1, err)
			continue
		}
		if seen[p.ProductID] {
			errs.AddDuplicateError(i+1, product.ColumnProductID, p.ProductID)
			continue
		}
		seen[p.ProductID] = true
		products = append(products, p)
	}

	result.BuiltRows = len(products)
	result.SkippedRows = result.TotalRows - result.BuiltRows
	result.Errors = errs.Errors()
	result.IsTruncated = errs.IsTruncated()
	result.TotalErrors = errs.TotalCount()

	if len(products) == 0 {
		return nil, result, shared.ErrCatalogEmpty
	}
	return newCatalog(products, time.Now().UTC()), result, nil
}

// FromProducts indexes already normalized products, such as a loaded snapshot.
// Later duplicates of a product id are dropped.
func FromProducts(products []*product.NormalizedProduct) (*Catalog, error) {
	seen := make(map[string]bool, len(products))
	kept := make([]*product.NormalizedProduct, 0, len(products))
	for _, p := range products {
		if p == nil || seen[p.ProductID] {
			continue
		}
		seen[p.ProductID] = true
		if p.FeatureKeywords == nil {
			p.FeatureKeywords = []string{}
		}
		if p.PaymentPeriods == nil {
			p.PaymentPeriods = []int{}
		}
		kept = append(kept, p)
	}
	if len(kept) == 0 {
		return nil, shared.ErrCatalogEmpty
	}
	return newCatalog(kept, time.Now().UTC()), nil
}
