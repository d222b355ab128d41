package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pension/backend/internal/application/catalog"
	"github.com/pension/backend/internal/domain/product"
	"github.com/pension/backend/internal/domain/shared"
	csvimport "github.com/pension/backend/internal/infrastructure/import"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeUnknown, http.StatusInternalServerError},
		{ErrCodeInternal, http.StatusInternalServerError},
		{shared.CodeValidation, http.StatusBadRequest},
		{shared.CodeInvalidWeights, http.StatusBadRequest},
		{shared.CodeUserNotFound, http.StatusNotFound},
		{shared.CodeProductNotFound, http.StatusNotFound},
		{shared.CodeNoMatchingProducts, http.StatusNotFound},
		{shared.CodeSnapshotNotFound, http.StatusNotFound},
		{shared.CodeCatalogEmpty, http.StatusServiceUnavailable},
		{shared.CodePersistence, http.StatusInternalServerError},
		{ErrCodeBadRequest, http.StatusBadRequest},
		{ErrCodeInvalidJSON, http.StatusBadRequest},
		{ErrCodeRequestTooLarge, http.StatusRequestEntityTooLarge},
		{ErrCodeImportInvalidFile, http.StatusBadRequest},
		{ErrCodeImportFileTooLarge, http.StatusRequestEntityTooLarge},
		{ErrCodeImportNoRows, http.StatusUnprocessableEntity},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	t.Run("partial last page", func(t *testing.T) {
		resp := NewSuccessResponseWithMeta([]int{1}, 41, 3, 20)
		require.NotNil(t, resp.Meta)
		assert.True(t, resp.Success)
		assert.Equal(t, 3, resp.Meta.TotalPages)
	})

	t.Run("zero page size", func(t *testing.T) {
		resp := NewSuccessResponseWithMeta(nil, 5, 1, 0)
		assert.Equal(t, 0, resp.Meta.TotalPages)
	})
}

func TestErrorResponseJSON(t *testing.T) {
	resp := NewErrorResponseWithRequestID(shared.CodeUserNotFound, "user u1 not found", "req-1")

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, false, decoded["success"])
	assert.NotContains(t, decoded, "data")

	errInfo := decoded["error"].(map[string]any)
	assert.Equal(t, shared.CodeUserNotFound, errInfo["code"])
	assert.Equal(t, "req-1", errInfo["request_id"])
}

func TestNewValidationErrorResponse(t *testing.T) {
	resp := NewValidationErrorResponse("Request validation failed", "", []ValidationDetail{
		{Field: "product_ids", Message: "must have at least 2 items"},
	})

	assert.Equal(t, ErrCodeBadRequest, resp.Error.Code)
	assert.Len(t, resp.Error.Details, 1)
	assert.Empty(t, resp.Error.RequestID)
}

func TestListRequestNormalize(t *testing.T) {
	r := ListRequest{}
	r.Normalize()
	assert.Equal(t, DefaultPage, r.Page)
	assert.Equal(t, DefaultLimit, r.Limit)
	assert.Equal(t, 0, r.Offset())

	r = ListRequest{Page: 3, Limit: 10}
	r.Normalize()
	assert.Equal(t, 20, r.Offset())
}

func TestAnalyzeRequestCriteria(t *testing.T) {
	t.Run("nothing set", func(t *testing.T) {
		assert.Nil(t, AnalyzeRequest{}.CriteriaOrNil())
	})

	t.Run("flat insurance type", func(t *testing.T) {
		cr := AnalyzeRequest{InsuranceType: string(product.InsuranceTypeAnnuity)}.CriteriaOrNil()
		require.NotNil(t, cr)
		assert.Equal(t, product.InsuranceTypeAnnuity, cr.InsuranceType)
	})

	t.Run("explicit criteria win", func(t *testing.T) {
		req := AnalyzeRequest{
			InsuranceType: "其他",
			Criteria:      &catalog.Criteria{InsuranceType: product.InsuranceTypeAnnuity, RiskLevel: product.RiskLow},
		}
		cr := req.CriteriaOrNil()
		assert.Equal(t, product.InsuranceTypeAnnuity, cr.InsuranceType)
		assert.Equal(t, product.RiskLow, cr.RiskLevel)
	})

	t.Run("analyze body decodes profile fields", func(t *testing.T) {
		var req AnalyzeRequest
		body := `{"age":35,"annual_income":20,"risk_tolerance":"中","social_security_type":"城镇职工","top_n":3}`
		require.NoError(t, json.Unmarshal([]byte(body), &req))
		require.NotNil(t, req.Age)
		assert.Equal(t, 35, *req.Age)
		assert.Equal(t, 3, req.TopN)
	})
}

func TestRecommendationQueryCriteria(t *testing.T) {
	assert.Nil(t, RecommendationQuery{TopN: 3}.CriteriaOrNil())

	q := RecommendationQuery{Criteria: catalog.Criteria{RiskLevel: product.RiskMedium}}
	require.NotNil(t, q.CriteriaOrNil())
	assert.Equal(t, product.RiskMedium, q.CriteriaOrNil().RiskLevel)
}

func TestNewCatalogImportResponse(t *testing.T) {
	parsed := &csvimport.Result{Source: "products.csv", Format: csvimport.FormatCSV, Missing: []string{product.ColumnCoverage}}
	built := &catalog.BuildResult{TotalRows: 3, BuiltRows: 2, SkippedRows: 1}

	resp := NewCatalogImportResponse(parsed, built)

	assert.Equal(t, "csv", resp.Format)
	assert.Equal(t, 2, resp.BuiltRows)
	assert.Equal(t, []string{product.ColumnCoverage}, resp.MissingColumns)
}
