package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pension/backend/internal/domain/shared"
	csvimport "github.com/pension/backend/internal/infrastructure/import"
	"github.com/pension/backend/internal/interfaces/http/dto"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func TestGetRequestID(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(*gin.Context)
		expectedID string
	}{
		{
			name: "from context string",
			setup: func(c *gin.Context) {
				c.Set(RequestIDKey, "ctx-request-id")
			},
			expectedID: "ctx-request-id",
		},
		{
			name: "from header when context empty",
			setup: func(c *gin.Context) {
				c.Request.Header.Set(RequestIDHeader, "header-request-id")
			},
			expectedID: "header-request-id",
		},
		{
			name:       "empty when not set",
			setup:      func(c *gin.Context) {},
			expectedID: "",
		},
		{
			name: "context takes precedence over header",
			setup: func(c *gin.Context) {
				c.Set(RequestIDKey, "ctx-id")
				c.Request.Header.Set(RequestIDHeader, "header-id")
			},
			expectedID: "ctx-id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(c)

			assert.Equal(t, tt.expectedID, getRequestID(c))
		})
	}
}

func TestBaseHandlerSuccessWithMeta(t *testing.T) {
	h := &BaseHandler{}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	h.SuccessWithMeta(c, []string{"item1", "item2"}, 100, 1, 10)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(100), resp.Meta.Total)
	assert.Equal(t, 10, resp.Meta.TotalPages)
}

func TestBaseHandlerNoContent(t *testing.T) {
	h := &BaseHandler{}

	router := gin.New()
	router.DELETE("/test", func(c *gin.Context) {
		h.NoContent(c)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/test", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.Bytes())
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedCode int
		expectedErr  string
	}{
		{"validation", shared.NewValidationError("age is required"), http.StatusBadRequest, shared.CodeValidation},
		{"invalid weights", shared.NewInvalidWeightsError("weights sum to 0"), http.StatusBadRequest, shared.CodeInvalidWeights},
		{"user not found", shared.NewNotFoundError(shared.CodeUserNotFound, "user u1 not found"), http.StatusNotFound, shared.CodeUserNotFound},
		{"no matching products", shared.NewNotFoundError(shared.CodeNoMatchingProducts, "none"), http.StatusNotFound, shared.CodeNoMatchingProducts},
		{"catalog empty", shared.ErrCatalogEmpty, http.StatusServiceUnavailable, shared.CodeCatalogEmpty},
		{"wrapped persistence", fmt.Errorf("%w: disk full", shared.ErrPersistence), http.StatusInternalServerError, shared.CodePersistence},
		{"snapshot missing", fmt.Errorf("load history: %w", shared.ErrSnapshotNotFound), http.StatusNotFound, shared.CodeSnapshotNotFound},
		{"import encoding", csvimport.ErrInvalidEncoding, http.StatusBadRequest, dto.ErrCodeImportInvalidFile},
		{"import too large", fmt.Errorf("%w: 99 bytes", csvimport.ErrFileTooLarge), http.StatusRequestEntityTooLarge, dto.ErrCodeImportFileTooLarge},
		{"import no rows", csvimport.ErrNoDataRows, http.StatusUnprocessableEntity, dto.ErrCodeImportNoRows},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Set(RequestIDKey, "req-42")

			h.HandleError(c, tt.err)

			assert.Equal(t, tt.expectedCode, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.expectedErr, resp.Error.Code)
			assert.Equal(t, "req-42", resp.Error.RequestID)
		})
	}

	t.Run("nil error writes nothing", func(t *testing.T) {
		h := &BaseHandler{}
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		h.HandleError(c, nil)

		assert.Empty(t, w.Body.Bytes())
	})
}

func TestBindJSON(t *testing.T) {
	type request struct {
		IDs []string `json:"ids" binding:"required,min=2"`
	}

	serve := func(body string) *httptest.ResponseRecorder {
		h := &BaseHandler{}
		router := gin.New()
		router.POST("/", func(c *gin.Context) {
			var req request
			if !h.BindJSON(c, &req) {
				return
			}
			h.Success(c, req)
		})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("valid body", func(t *testing.T) {
		w := serve(`{"ids":["a","b"]}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("validation failure lists fields", func(t *testing.T) {
		w := serve(`{"ids":["a"]}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeBadRequest, resp.Error.Code)
		require.Len(t, resp.Error.Details, 1)
		assert.Equal(t, "IDs", resp.Error.Details[0].Field)
		assert.Equal(t, "must be at least 2", resp.Error.Details[0].Message)
	})

	t.Run("malformed JSON", func(t *testing.T) {
		w := serve(`{"ids":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidJSON, decodeResponse(t, w).Error.Code)
	})

	t.Run("empty body", func(t *testing.T) {
		w := serve(``)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidJSON, decodeResponse(t, w).Error.Code)
	})
}
