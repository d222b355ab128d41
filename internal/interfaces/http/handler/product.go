package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pension/backend/internal/application/catalog"
	"github.com/pension/backend/internal/domain/product"
	"github.com/pension/backend/internal/domain/shared"
	"github.com/pension/backend/internal/interfaces/http/dto"
)

// CatalogReader provides the catalog snapshot requests read from
type CatalogReader interface {
	Current() *catalog.Catalog
}

// ProductHandler serves catalog browsing endpoints
type ProductHandler struct {
	BaseHandler
	catalog CatalogReader
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(reader CatalogReader) *ProductHandler {
	return &ProductHandler{catalog: reader}
}

// currentCatalog returns the loaded catalog, answering 503 when there is none
func (h *ProductHandler) currentCatalog(c *gin.Context) (*catalog.Catalog, bool) {
	cat := h.catalog.Current()
	if cat == nil || cat.Len() == 0 {
		h.HandleError(c, shared.ErrCatalogEmpty)
		return nil, false
	}
	return cat, true
}

// ListProducts returns a page of products.
// GET /api/v1/products?page=&limit=&search=&insurance_type=&risk_level=...
func (h *ProductHandler) ListProducts(c *gin.Context) {
	var query dto.ProductListQuery
	if !h.BindQuery(c, &query) {
		return
	}
	query.Normalize()

	cat, ok := h.currentCatalog(c)
	if !ok {
		return
	}

	matched := cat.Search(query.Search)
	if !query.Criteria.IsEmpty() {
		kept := matched[:0]
		for _, p := range matched {
			if query.Criteria.Match(p) {
				kept = append(kept, p)
			}
		}
		matched = kept
	}

	total := len(matched)
	start := min(query.Offset(), total)
	end := min(start+query.Limit, total)
	page := matched[start:end]
	if page == nil {
		page = []*product.NormalizedProduct{}
	}

	h.SuccessWithMeta(c, page, int64(total), query.Page, query.Limit)
}

// GetProduct returns one product.
// GET /api/v1/products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		h.BadRequest(c, "product id is required")
		return
	}
	cat, ok := h.currentCatalog(c)
	if !ok {
		return
	}
	p, found := cat.Get(id)
	if !found {
		h.HandleError(c, shared.NewNotFoundError(shared.CodeProductNotFound, "product %s not found", id))
		return
	}
	h.Success(c, p)
}

// ListCompanies returns the distinct insurer names, or the products of one
// insurer when ?name= is given.
// GET /api/v1/companies
func (h *ProductHandler) ListCompanies(c *gin.Context) {
	cat, ok := h.currentCatalog(c)
	if !ok {
		return
	}
	if name := strings.TrimSpace(c.Query("name")); name != "" {
		h.Success(c, cat.ByCompany(name))
		return
	}
	h.Success(c, cat.Companies())
}

// GetSummary returns the catalog statistics.
// GET /api/v1/catalog/summary
func (h *ProductHandler) GetSummary(c *gin.Context) {
	cat, ok := h.currentCatalog(c)
	if !ok {
		return
	}
	h.Success(c, cat.Summary())
}
