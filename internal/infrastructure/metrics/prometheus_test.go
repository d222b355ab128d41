package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/gin-gonic/gin"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findMetricFamily(families []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, f := range families {
		if f.GetName() == name {
			return f
		}
	}
	return nil
}

func gather(t *testing.T, c *Collector, name string) *dto.MetricFamily {
	t.Helper()
	families, err := c.Gather()
	require.NoError(t, err)
	family := findMetricFamily(families, name)
	require.NotNil(t, family, name)
	return family
}

func TestCollector_CatalogRebuilt(t *testing.T) {
	c := NewCollector()

	c.CatalogRebuilt(27, 0)
	c.CatalogRebuilt(25, 2)

	assert.Equal(t, 25.0, gather(t, c, "pension_catalog_products").GetMetric()[0].GetGauge().GetValue())
	assert.Equal(t, 2.0, gather(t, c, "pension_catalog_rebuilds_total").GetMetric()[0].GetCounter().GetValue())
	assert.Equal(t, 2.0, gather(t, c, "pension_catalog_skipped_rows_total").GetMetric()[0].GetCounter().GetValue())
}

func TestCollector_RecommendationsServed(t *testing.T) {
	c := NewCollector()
	faker := gofakeit.New(42)

	var scores []float64
	for range 5 {
		scores = append(scores, faker.Float64Range(0, 100))
	}
	c.RecommendationsServed(27, scores)
	c.RecommendationsServed(3, nil)

	assert.Equal(t, 2.0, gather(t, c, "pension_recommend_requests_total").GetMetric()[0].GetCounter().GetValue())

	evaluated := gather(t, c, "pension_recommend_products_evaluated")
	assert.Equal(t, dto.MetricType_HISTOGRAM, evaluated.GetType())
	assert.Equal(t, uint64(2), evaluated.GetMetric()[0].GetHistogram().GetSampleCount())
	assert.Equal(t, 30.0, evaluated.GetMetric()[0].GetHistogram().GetSampleSum())

	match := gather(t, c, "pension_recommend_match_score").GetMetric()[0].GetHistogram()
	assert.Equal(t, uint64(5), match.GetSampleCount())
}

func TestCollector_GinMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c := NewCollector(WithProcessCollectors())

	router := gin.New()
	router.Use(c.GinMiddleware())
	router.GET("/api/v1/products/:id", func(ctx *gin.Context) {
		ctx.Status(http.StatusOK)
	})
	router.GET("/metrics", gin.WrapH(c.Handler()))

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/products/P001", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	requests := gather(t, c, "pension_http_requests_total")
	labels := map[string]string{}
	for _, m := range requests.GetMetric() {
		var route, status string
		for _, l := range m.GetLabel() {
			switch l.GetName() {
			case "route":
				route = l.GetValue()
			case "status":
				status = l.GetValue()
			}
		}
		labels[route] = status
	}
	assert.Equal(t, "200", labels["/api/v1/products/:id"])
	assert.Equal(t, "404", labels["unmatched"])

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pension_http_requests_total")
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
