package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/pension/backend/internal/application/catalog"
	"github.com/pension/backend/internal/application/recommend"
	"github.com/pension/backend/internal/infrastructure/demo"
	csvimport "github.com/pension/backend/internal/infrastructure/import"
	"github.com/pension/backend/internal/infrastructure/storage"
)

type testServer struct {
	router  *gin.Engine
	catalog *catalog.Service
	engine  *recommend.Engine
	store   *storage.MemoryStore
}

// newTestServer wires the handlers over the demo catalog
func newTestServer(t *testing.T, loaded bool) *testServer {
	t.Helper()

	store := storage.NewMemoryStore()
	svc := catalog.NewService(catalog.WithSnapshotStore(store, catalog.DefaultSnapshotKey))
	if loaded {
		rows, err := demo.Rows()
		require.NoError(t, err)
		_, err = svc.Rebuild(context.Background(), rows)
		require.NoError(t, err)
	}
	engine, err := recommend.NewEngine(svc)
	require.NoError(t, err)

	products := NewProductHandler(svc)
	advisor := NewAdvisorHandler(engine, TopNLimits{Default: 5, Max: 10})
	importer := NewCatalogImportHandler(csvimport.NewLoader(), svc, svc)
	system := NewSystemHandler("pension-advisor", svc, engine.Store())

	r := gin.New()
	api := r.Group("/api/v1")
	api.GET("/health", system.Health)
	api.GET("/system/info", system.GetSystemInfo)
	api.GET("/products", products.ListProducts)
	api.GET("/products/:id", products.GetProduct)
	api.GET("/companies", products.ListCompanies)
	api.GET("/catalog/summary", products.GetSummary)
	api.POST("/catalog/import", importer.ImportCatalog)
	api.POST("/analyze", advisor.Analyze)
	api.POST("/compare", advisor.Compare)
	api.POST("/advice", advisor.Advice)
	api.PUT("/users/:id/profile", advisor.PutProfile)
	api.GET("/users/:id/profile", advisor.GetProfile)
	api.GET("/users/:id/recommendations", advisor.GetRecommendations)
	api.GET("/users/:id/history", advisor.GetHistory)
	api.DELETE("/users/:id/history", advisor.ClearHistory)
	api.GET("/weights", advisor.GetWeights)
	api.PUT("/weights", advisor.PutWeights)

	return &testServer{router: r, catalog: svc, engine: engine, store: store}
}

func (s *testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			data, _ := json.Marshal(b)
			reader = bytes.NewReader(data)
		}
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// decodeData unmarshals the data field of a success response into out
func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope), w.Body.String())
	require.True(t, envelope.Success, w.Body.String())
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

func validProfileBody() map[string]any {
	return map[string]any{
		"age":                  35,
		"annual_income":        20,
		"risk_tolerance":       "中",
		"social_security_type": "城镇职工",
	}
}
