package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the
// attainment pipeline and the HTTP layer.
type MetricsService struct {
	registry            *prometheus.Registry
	handler             http.Handler
	requestDuration     *prometheus.HistogramVec
	requestTotal        *prometheus.CounterVec
	calculationDuration *prometheus.HistogramVec
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	cacheLatency        prometheus.Histogram
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	calculationDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "attainment_calculation_duration_seconds",
		Help:    "Duration of attainment pipeline calculations in seconds",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"stage"})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "attainment_cache_hits_total",
		Help: "Total cache hits",
	})
	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "attainment_cache_misses_total",
		Help: "Total cache misses",
	})
	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "attainment_cache_latency_seconds",
		Help:    "Latency of cache lookups in seconds",
		Buckets: prometheus.DefBuckets,
	})

	registry.MustRegister(requestDuration, requestTotal, calculationDuration, cacheHits, cacheMisses, cacheLatency)

	return &MetricsService{
		registry:            registry,
		handler:             promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:     requestDuration,
		requestTotal:        requestTotal,
		calculationDuration: calculationDuration,
		cacheHits:           cacheHits,
		cacheMisses:         cacheMisses,
		cacheLatency:        cacheLatency,
	}
}

// Handler returns the Prometheus scrape handler.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// ObserveCalculation records a pipeline stage duration.
func (s *MetricsService) ObserveCalculation(stage string, duration time.Duration) {
	s.calculationDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordCacheOperation records a cache lookup outcome.
func (s *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if hit {
		s.cacheHits.Inc()
	} else {
		s.cacheMisses.Inc()
	}
	s.cacheLatency.Observe(duration.Seconds())
}

// GinMiddleware instruments HTTP requests.
func (s *MetricsService) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		s.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
		s.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}
