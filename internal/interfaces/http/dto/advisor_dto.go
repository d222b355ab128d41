package dto

import (
	"github.com/pension/backend/internal/application/catalog"
	"github.com/pension/backend/internal/application/recommend"
	"github.com/pension/backend/internal/domain/product"
	"github.com/pension/backend/internal/domain/profile"
	csvimport "github.com/pension/backend/internal/infrastructure/import"
)

// AnalyzeRequest registers a profile and asks for recommendations in one call
type AnalyzeRequest struct {
	profile.Input
	// UserID is optional; a random id is generated when empty
	UserID   string            `json:"user_id,omitempty" binding:"omitempty,max=128"`
	TopN     int               `json:"top_n,omitempty" binding:"omitempty,min=1"`
	Criteria *catalog.Criteria `json:"criteria,omitempty"`
	// InsuranceType is the single filter the original web form offered
	InsuranceType string `json:"insurance_type,omitempty"`
}

// CriteriaOrNil merges the flat insurance_type field into the criteria
func (r AnalyzeRequest) CriteriaOrNil() *catalog.Criteria {
	if r.Criteria == nil && r.InsuranceType == "" {
		return nil
	}
	cr := catalog.Criteria{}
	if r.Criteria != nil {
		cr = *r.Criteria
	}
	if r.InsuranceType != "" && cr.InsuranceType == "" {
		cr.InsuranceType = product.InsuranceType(r.InsuranceType)
	}
	return &cr
}

// AnalyzeResponse is the profile registration plus the recommendations it produced
type AnalyzeResponse struct {
	UserID   string               `json:"user_id"`
	Profile  *profile.UserProfile `json:"profile"`
	Warnings []string             `json:"warnings,omitempty"`
	Result   *recommend.Result    `json:"result"`
}

// RecommendationQuery carries the query string of GET /users/:id/recommendations
type RecommendationQuery struct {
	TopN int `form:"top_n" binding:"omitempty,min=1"`
	catalog.Criteria
}

// CriteriaOrNil returns nil when no filter was given
func (q RecommendationQuery) CriteriaOrNil() *catalog.Criteria {
	if q.Criteria.IsEmpty() {
		return nil
	}
	cr := q.Criteria
	return &cr
}

// ProductListQuery carries pagination, search and filters of GET /products
type ProductListQuery struct {
	ListRequest
	catalog.Criteria
}

// CompareRequest lists the products to compare
type CompareRequest struct {
	ProductIDs []string `json:"product_ids" binding:"required,min=2,dive,required"`
}

// AdviceRequest names the user to advise
type AdviceRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// HealthResponse reports liveness and whether a catalog is loaded
type HealthResponse struct {
	Status     string `json:"status"`
	Version    string `json:"version"`
	DataLoaded bool   `json:"data_loaded"`
	Products   int    `json:"products"`
	Users      int    `json:"users"`
}

// CatalogImportResponse reports how an uploaded table turned into the catalog
type CatalogImportResponse struct {
	Source         string               `json:"source"`
	Format         string               `json:"format"`
	Sheet          string               `json:"sheet,omitempty"`
	TotalRows      int                  `json:"total_rows"`
	BuiltRows      int                  `json:"built_rows"`
	SkippedRows    int                  `json:"skipped_rows"`
	MissingColumns []string             `json:"missing_columns,omitempty"`
	Errors         []csvimport.RowError `json:"errors,omitempty"`
	IsTruncated    bool                 `json:"is_truncated,omitempty"`
	TotalErrors    int                  `json:"total_errors,omitempty"`
}

// NewCatalogImportResponse combines the parse and build results of an upload
func NewCatalogImportResponse(parsed *csvimport.Result, built *catalog.BuildResult) CatalogImportResponse {
	resp := CatalogImportResponse{
		Source:         parsed.Source,
		Format:         string(parsed.Format),
		Sheet:          parsed.Sheet,
		MissingColumns: parsed.Missing,
	}
	if built != nil {
		resp.TotalRows = built.TotalRows
		resp.BuiltRows = built.BuiltRows
		resp.SkippedRows = built.SkippedRows
		resp.Errors = built.Errors
		resp.IsTruncated = built.IsTruncated
		resp.TotalErrors = built.TotalErrors
	}
	return resp
}
