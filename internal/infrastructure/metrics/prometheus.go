// Package metrics exposes the advisor's Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"

	"github.com/pension/backend/internal/application/catalog"
	"github.com/pension/backend/internal/application/recommend"
)

// Namespace prefixes every metric name
const Namespace = "pension"

var (
	_ catalog.Recorder   = (*Collector)(nil)
	_ recommend.Recorder = (*Collector)(nil)
)

// Collector records catalog, recommendation and HTTP metrics in its own registry.
//
// Thread Safety: Safe for concurrent use by multiple goroutines.
type Collector struct {
	registry *prometheus.Registry

	catalogProducts     prometheus.Gauge
	catalogRebuilds     prometheus.Counter
	catalogSkippedRows  prometheus.Counter
	recommendations     prometheus.Counter
	productsEvaluated   prometheus.Histogram
	matchScore          prometheus.Histogram
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Option configures a Collector
type Option func(*options)

type options struct {
	processCollectors bool
}

// WithProcessCollectors adds the Go runtime and process collectors
func WithProcessCollectors() Option {
	return func(o *options) {
		o.processCollectors = true
	}
}

// NewCollector creates a Collector with a fresh registry
func NewCollector(opts ...Option) *Collector {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	c := &Collector{
		registry: prometheus.NewRegistry(),
		catalogProducts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "catalog",
			Name:      "products",
			Help:      "Number of products in the current catalog.",
		}),
		catalogRebuilds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "catalog",
			Name:      "rebuilds_total",
			Help:      "Successful catalog rebuilds.",
		}),
		catalogSkippedRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "catalog",
			Name:      "skipped_rows_total",
			Help:      "Raw rows skipped while building catalogs.",
		}),
		recommendations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "recommend",
			Name:      "requests_total",
			Help:      "Recommendation requests served.",
		}),
		productsEvaluated: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "recommend",
			Name:      "products_evaluated",
			Help:      "Products scored per recommendation request.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		matchScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "recommend",
			Name:      "match_score",
			Help:      "Match scores (0-100) of returned recommendations.",
			Buckets:   prometheus.LinearBuckets(10, 10, 10),
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	c.registry.MustRegister(
		c.catalogProducts,
		c.catalogRebuilds,
		c.catalogSkippedRows,
		c.recommendations,
		c.productsEvaluated,
		c.matchScore,
		c.httpRequests,
		c.httpRequestDuration,
	)
	if o.processCollectors {
		c.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return c
}

// CatalogRebuilt records a successful catalog rebuild
func (c *Collector) CatalogRebuilt(built, skipped int) {
	c.catalogProducts.Set(float64(built))
	c.catalogRebuilds.Inc()
	c.catalogSkippedRows.Add(float64(skipped))
}

// RecommendationsServed records one recommendation request
func (c *Collector) RecommendationsServed(evaluated int, matchScores []float64) {
	c.recommendations.Inc()
	c.productsEvaluated.Observe(float64(evaluated))
	for _, s := range matchScores {
		c.matchScore.Observe(s)
	}
}

// GinMiddleware records request counts and latency per route template
func (c *Collector) GinMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		c.httpRequests.WithLabelValues(ctx.Request.Method, route, strconv.Itoa(ctx.Writer.Status())).Inc()
		c.httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Gather collects all metrics from the registry
func (c *Collector) Gather() ([]*dto.MetricFamily, error) {
	return c.registry.Gather()
}
