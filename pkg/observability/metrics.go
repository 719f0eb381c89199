package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Identity bridge metrics
	BridgeExchangesTotal *prometheus.CounterVec
	BridgeDuration       prometheus.Histogram

	// Image proxy cache metrics
	ImageCacheHitsTotal   prometheus.Counter
	ImageCacheMissesTotal prometheus.Counter
	ImageCacheEvictions   prometheus.Counter

	// Datastore metrics
	StoreOperationsTotal *prometheus.CounterVec
	StoreErrorsTotal     *prometheus.CounterVec

	// Business metrics
	ActiveUsersTotal prometheus.Gauge
	PendingApprovals prometheus.Gauge
	OpenEmergencies  prometheus.Gauge
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wildpark_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wildpark_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		BridgeExchangesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wildpark_bridge_exchanges_total",
				Help: "Total number of identity bridge token exchanges",
			},
			[]string{"result"},
		),
		BridgeDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "wildpark_bridge_exchange_duration_seconds",
				Help:    "Identity bridge token exchange duration in seconds",
				Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
		),
		ImageCacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "wildpark_image_cache_hits_total",
				Help: "Total number of image proxy cache hits",
			},
		),
		ImageCacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "wildpark_image_cache_misses_total",
				Help: "Total number of image proxy cache misses",
			},
		),
		ImageCacheEvictions: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "wildpark_image_cache_evictions_total",
				Help: "Total number of image cache entries removed by cleanup",
			},
		),
		StoreOperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wildpark_store_operations_total",
				Help: "Total number of datastore operations",
			},
			[]string{"collection", "operation"},
		),
		StoreErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wildpark_store_errors_total",
				Help: "Total number of datastore errors",
			},
			[]string{"collection", "operation"},
		),
		ActiveUsersTotal: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "wildpark_active_users_total",
				Help: "Number of active user accounts",
			},
		),
		PendingApprovals: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "wildpark_pending_approvals_total",
				Help: "Number of records awaiting approval",
			},
		),
		OpenEmergencies: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "wildpark_open_emergencies_total",
				Help: "Number of unresolved emergency reports",
			},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.BridgeExchangesTotal,
		m.BridgeDuration,
		m.ImageCacheHitsTotal,
		m.ImageCacheMissesTotal,
		m.ImageCacheEvictions,
		m.StoreOperationsTotal,
		m.StoreErrorsTotal,
		m.ActiveUsersTotal,
		m.PendingApprovals,
		m.OpenEmergencies,
	)

	return m
}

// Handler returns the /metrics endpoint for registry.
func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// HTTPMetricsMiddleware instruments HTTP requests with Prometheus metrics
func HTTPMetricsMiddleware(metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rw, r)

			status := strconv.Itoa(rw.statusCode)
			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
		})
	}
}
