package observability

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Search outcomes recorded by RecordSearch.
const (
	OutcomeOK           = "ok"
	OutcomeInvalidInput = "invalid_input"
	OutcomeStoreError   = "store_error"
)

// MetricsConfig holds configuration for the metrics subsystem.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	Enabled bool
	// Namespace prefix for all metrics (default: rostersearch).
	Namespace string
	// Version is the application version for the info metric.
	Version string
}

// DefaultMetricsConfig returns the default metrics configuration.
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled:   true,
		Namespace: "rostersearch",
		Version:   "dev",
	}
}

// Metrics owns a Prometheus registry and the application collectors.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	activeConnections prometheus.Gauge
	rateLimit         *prometheus.CounterVec
	searches          *prometheus.CounterVec
	searchResults     *prometheus.HistogramVec
}

// NewMetrics registers the collectors on a fresh registry. It returns nil
// when metrics are disabled.
func NewMetrics(cfg MetricsConfig) *Metrics {
	if !cfg.Enabled {
		return nil
	}
	ns := cfg.Namespace
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"method", "path"}),
		activeConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "active_connections",
			Help:      "Current number of in-flight HTTP requests",
		}),
		rateLimit: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "rate_limit_decisions_total",
			Help:      "Total rate limit decisions",
		}, []string{"status"}),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "search_requests_total",
			Help:      "Search requests by entity and outcome",
		}, []string{"entity", "outcome"}),
		searchResults: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "search_results",
			Help:      "Number of rows returned per successful search",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 1000},
		}, []string{"entity"}),
	}
	info := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   ns,
		Name:        "info",
		Help:        "Application information",
		ConstLabels: prometheus.Labels{"version": cfg.Version},
	})
	info.Set(1)

	m.registry.MustRegister(
		m.httpRequests, m.httpDuration, m.activeConnections,
		m.rateLimit, m.searches, m.searchResults, info,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordHTTPRequest records a completed HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	method, path = methodLabel(method), routeLabel(path)
	m.httpRequests.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordSearch records a search request outcome and, on success, the
// number of rows returned.
func (m *Metrics) RecordSearch(entity, outcome string, results int) {
	if m == nil {
		return
	}
	m.searches.WithLabelValues(entity, outcome).Inc()
	if outcome == OutcomeOK {
		m.searchResults.WithLabelValues(entity).Observe(float64(results))
	}
}

func (m *Metrics) RecordRateLimitAllowed() {
	if m != nil {
		m.rateLimit.WithLabelValues("allowed").Inc()
	}
}

func (m *Metrics) RecordRateLimitRejected() {
	if m != nil {
		m.rateLimit.WithLabelValues("rejected").Inc()
	}
}

// routeOther labels every request path outside the served routes.
const routeOther = "other"

var knownRoutes = map[string]bool{
	"/":                   true,
	"/api/search-teams":   true,
	"/api/search-players": true,
	"/teams":              true,
	"/players":            true,
	"/healthz":            true,
	"/readyz":             true,
	"/openapi.yaml":       true,
}

// routeLabel maps a request path onto the fixed route set so label
// cardinality stays bounded whatever paths clients send.
func routeLabel(path string) string {
	switch {
	case knownRoutes[path]:
		return path
	case strings.HasPrefix(path, "/static/"):
		return "/static/*"
	case strings.HasPrefix(path, "/playerStats/"):
		if id := strings.TrimPrefix(path, "/playerStats/"); id != "" && !strings.Contains(id, "/") {
			return "/playerStats/{id}"
		}
	}
	return routeOther
}

func methodLabel(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete, http.MethodOptions:
		return method
	}
	return routeOther
}

// Handler serves the registry in the Prometheus exposition format. A nil
// Metrics serves 404.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// MetricsMiddleware returns an HTTP middleware that records request metrics.
func MetricsMiddleware(m *Metrics) func(http.Handler) http.Handler {
	if m == nil {
		return func(next http.Handler) http.Handler { return next }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Skip metrics endpoint itself to avoid recursion
			if r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}

			m.activeConnections.Inc()
			defer m.activeConnections.Dec()

			start := time.Now()
			wrapped := &metricsResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)
			m.RecordHTTPRequest(r.Method, r.URL.Path, wrapped.statusCode, time.Since(start))
		})
	}
}

// metricsResponseWriter wraps http.ResponseWriter to capture the status code.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (w *metricsResponseWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.statusCode = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

// Unwrap returns the underlying ResponseWriter for compatibility with
// http.ResponseController and other wrapping utilities.
func (w *metricsResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// RateLimitMetricsMiddleware records allow/reject decisions of the rate
// limiting middleware it wraps.
func RateLimitMetricsMiddleware(m *Metrics, rateLimitEnabled bool) func(http.Handler) http.Handler {
	if m == nil || !rateLimitEnabled {
		return func(next http.Handler) http.Handler { return next }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := &metricsResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)
			if wrapped.statusCode == http.StatusTooManyRequests {
				m.RecordRateLimitRejected()
			} else {
				m.RecordRateLimitAllowed()
			}
		})
	}
}
