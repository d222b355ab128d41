package handler

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pension/backend/internal/application/catalog"
	"github.com/pension/backend/internal/domain/product"
	"github.com/pension/backend/internal/domain/shared"
)

func TestListProducts(t *testing.T) {
	s := newTestServer(t, true)

	t.Run("first page with defaults", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/v1/products", nil)
		require.Equal(t, http.StatusOK, w.Code)

		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, int64(27), resp.Meta.Total)
		assert.Equal(t, 20, resp.Meta.PageSize)
		assert.Equal(t, 2, resp.Meta.TotalPages)

		var products []product.NormalizedProduct
		decodeData(t, w, &products)
		assert.Len(t, products, 20)
		assert.Equal(t, "76100558", products[0].ProductID)
	})

	t.Run("last page is partial", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/v1/products?page=2&limit=20", nil)
		var products []product.NormalizedProduct
		decodeData(t, w, &products)
		assert.Len(t, products, 7)
	})

	t.Run("page past the end is empty", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/v1/products?page=9", nil)
		var products []product.NormalizedProduct
		decodeData(t, w, &products)
		assert.Empty(t, products)
	})

	t.Run("company filter", func(t *testing.T) {
		q := url.Values{"insurance_company": {"太平人寿保险有限公司"}}
		w := s.do(http.MethodGet, "/api/v1/products?"+q.Encode(), nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(9), decodeResponse(t, w).Meta.Total)
	})

	t.Run("search narrows by keyword", func(t *testing.T) {
		q := url.Values{"search": {"国泰"}}
		w := s.do(http.MethodGet, "/api/v1/products?"+q.Encode(), nil)
		var products []product.NormalizedProduct
		decodeData(t, w, &products)
		require.NotEmpty(t, products)
		for _, p := range products {
			assert.Contains(t, p.ProductName+p.InsuranceCompany+string(p.InsuranceType)+p.Features, "国泰")
		}
	})

	t.Run("limit above maximum is rejected", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/v1/products?limit=1000", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestListProducts_CatalogNotLoaded(t *testing.T) {
	s := newTestServer(t, false)

	w := s.do(http.MethodGet, "/api/v1/products", nil)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, shared.CodeCatalogEmpty, decodeResponse(t, w).Error.Code)
}

func TestGetProduct(t *testing.T) {
	s := newTestServer(t, true)

	t.Run("found", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/v1/products/76100749", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var p product.NormalizedProduct
		decodeData(t, w, &p)
		assert.Equal(t, "国泰人寿保险有限责任公司", p.InsuranceCompany)
		require.NotNil(t, p.MinAge)
		assert.Equal(t, 0, *p.MinAge)
	})

	t.Run("unknown id", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/v1/products/nope", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, shared.CodeProductNotFound, decodeResponse(t, w).Error.Code)
	})
}

func TestCompaniesAndSummary(t *testing.T) {
	s := newTestServer(t, true)

	t.Run("companies are distinct", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/v1/companies", nil)
		var companies []string
		decodeData(t, w, &companies)
		assert.Contains(t, companies, "太平人寿保险有限公司")
		assert.IsIncreasing(t, companies)
	})

	t.Run("products of one company", func(t *testing.T) {
		q := url.Values{"name": {"太平人寿保险有限公司"}}
		w := s.do(http.MethodGet, "/api/v1/companies?"+q.Encode(), nil)
		var products []product.NormalizedProduct
		decodeData(t, w, &products)
		assert.Len(t, products, 9)
	})

	t.Run("summary", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/v1/catalog/summary", nil)
		var summary catalog.Summary
		decodeData(t, w, &summary)
		assert.Equal(t, 27, summary.TotalProducts)
		require.NotEmpty(t, summary.TopCompanies)
		assert.Equal(t, catalog.CompanyCount{Company: "太平人寿保险有限公司", Count: 9}, summary.TopCompanies[0])
	})
}
