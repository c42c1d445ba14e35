package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestMetrics(t *testing.T) *Metrics {
	t.Helper()
	m := NewMetrics(MetricsConfig{Enabled: true, Namespace: "test", Version: "1.0.0"})
	if m == nil {
		t.Fatal("expected non-nil Metrics")
	}
	return m
}

func TestNewMetricsDisabled(t *testing.T) {
	if m := NewMetrics(MetricsConfig{Enabled: false}); m != nil {
		t.Fatal("expected nil Metrics when disabled")
	}
}

func TestDefaultMetricsConfig(t *testing.T) {
	cfg := DefaultMetricsConfig()
	if !cfg.Enabled || cfg.Namespace != "rostersearch" || cfg.Version != "dev" {
		t.Errorf("unexpected default config: %+v", cfg)
	}
}

func TestRecordHTTPRequest(t *testing.T) {
	m := newTestMetrics(t)
	m.RecordHTTPRequest("GET", "/api/search-teams", 200, 10*time.Millisecond)
	m.RecordHTTPRequest("GET", "/api/search-teams", 200, 20*time.Millisecond)
	m.RecordHTTPRequest("GET", "/api/search-teams", 400, time.Millisecond)

	if got := testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/search-teams", "200")); got != 2 {
		t.Errorf("expected 2 requests with status 200, got %v", got)
	}
	if got := testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/search-teams", "400")); got != 1 {
		t.Errorf("expected 1 request with status 400, got %v", got)
	}
	if n := testutil.CollectAndCount(m.httpDuration); n != 1 {
		t.Errorf("expected one duration series, got %d", n)
	}
}

func TestRouteLabel(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"/api/search-players", "/api/search-players"},
		{"/api/search-teams", "/api/search-teams"},
		{"/playerStats/42", "/playerStats/{id}"},
		{"/playerStats/magic", "/playerStats/{id}"},
		{"/playerStats/", "other"},
		{"/playerStats/1/extra", "other"},
		{"/static/search.js", "/static/*"},
		{"/readyz", "/readyz"},
		{"/", "/"},
		{"/wp-login.php", "other"},
		{"/api/search-coaches", "other"},
		{"", "other"},
	}
	for _, tt := range tests {
		if got := routeLabel(tt.input); got != tt.want {
			t.Errorf("routeLabel(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestMethodLabel(t *testing.T) {
	for method, want := range map[string]string{
		http.MethodGet:  http.MethodGet,
		http.MethodHead: http.MethodHead,
		"PROPFIND":      "other",
		"X":             "other",
	} {
		if got := methodLabel(method); got != want {
			t.Errorf("methodLabel(%q) = %q, want %q", method, got, want)
		}
	}
}

func TestMetricsMiddlewareBoundsPathLabels(t *testing.T) {
	m := newTestMetrics(t)
	handler := MetricsMiddleware(m)(http.NotFoundHandler())

	for i := 0; i < 500; i++ {
		path := "/scan-" + strconv.Itoa(i) + ".php"
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	if n := testutil.CollectAndCount(m.httpRequests); n != 1 {
		t.Fatalf("expected unknown paths to share one series, got %d", n)
	}
	if got := testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "other", "404")); got != 500 {
		t.Errorf("expected 500 requests labelled other, got %v", got)
	}
}

func TestRecordSearch(t *testing.T) {
	m := newTestMetrics(t)
	m.RecordSearch("teams", OutcomeOK, 3)
	m.RecordSearch("teams", OutcomeInvalidInput, 0)
	m.RecordSearch("players", OutcomeStoreError, 0)

	if got := testutil.ToFloat64(m.searches.WithLabelValues("teams", OutcomeOK)); got != 1 {
		t.Errorf("teams ok = %v", got)
	}
	if got := testutil.ToFloat64(m.searches.WithLabelValues("players", OutcomeStoreError)); got != 1 {
		t.Errorf("players store_error = %v", got)
	}
	// only successful searches observe a result count
	if n := testutil.CollectAndCount(m.searchResults); n != 1 {
		t.Errorf("expected one result histogram series, got %d", n)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordHTTPRequest("GET", "/", 200, time.Millisecond)
	m.RecordSearch("teams", OutcomeOK, 1)
	m.RecordRateLimitAllowed()
	m.RecordRateLimitRejected()
	if m.Registry() != nil {
		t.Error("expected nil registry")
	}

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404 from nil metrics handler, got %d", rr.Code)
	}
}

func TestMetricsHandler(t *testing.T) {
	m := newTestMetrics(t)
	m.RecordHTTPRequest("GET", "/teams", 200, time.Millisecond)
	m.RecordSearch("players", OutcomeOK, 2)

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	for _, want := range []string{
		`test_info{version="1.0.0"} 1`,
		`test_http_requests_total{method="GET",path="/teams",status="200"} 1`,
		`test_search_requests_total{entity="players",outcome="ok"} 1`,
		"test_search_results_bucket",
		"go_goroutines",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("expected %q in metrics output", want)
		}
	}
}

func TestMetricsMiddleware(t *testing.T) {
	m := newTestMetrics(t)
	handler := MetricsMiddleware(m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if n := testutil.ToFloat64(m.activeConnections); n != 1 {
			t.Errorf("expected 1 active connection during request, got %v", n)
		}
		w.WriteHeader(http.StatusTeapot)
		w.WriteHeader(http.StatusOK) // ignored
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/playerStats/7", nil))

	if got := testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/playerStats/{id}", "418")); got != 1 {
		t.Errorf("expected request recorded with first status, got %v", got)
	}
	if got := testutil.ToFloat64(m.activeConnections); got != 0 {
		t.Errorf("expected 0 active connections after request, got %v", got)
	}
}

func TestMetricsMiddlewareSkipsMetricsEndpoint(t *testing.T) {
	m := newTestMetrics(t)
	handler := MetricsMiddleware(m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if n := testutil.CollectAndCount(m.httpRequests); n != 0 {
		t.Errorf("expected /metrics to be skipped, got %d series", n)
	}
}

func TestMetricsMiddlewareNil(t *testing.T) {
	called := false
	handler := MetricsMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !called {
		t.Error("expected handler to be called")
	}
}

func TestRateLimitMetricsMiddleware(t *testing.T) {
	m := newTestMetrics(t)
	status := http.StatusOK
	handler := RateLimitMetricsMiddleware(m, true)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	status = http.StatusTooManyRequests
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if got := testutil.ToFloat64(m.rateLimit.WithLabelValues("allowed")); got != 1 {
		t.Errorf("allowed = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.rateLimit.WithLabelValues("rejected")); got != 2 {
		t.Errorf("rejected = %v, want 2", got)
	}
}

func TestRateLimitMetricsMiddlewareDisabled(t *testing.T) {
	m := newTestMetrics(t)
	handler := RateLimitMetricsMiddleware(m, false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if n := testutil.CollectAndCount(m.rateLimit); n != 0 {
		t.Errorf("expected no rate limit series when disabled, got %d", n)
	}
}

func TestMetricsResponseWriterUnwrap(t *testing.T) {
	rr := httptest.NewRecorder()
	w := &metricsResponseWriter{ResponseWriter: rr}
	if w.Unwrap() != rr {
		t.Error("Unwrap should return the underlying writer")
	}
}

func TestMetricsConcurrentAccess(t *testing.T) {
	m := newTestMetrics(t)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.RecordHTTPRequest("GET", "/api/search-players", 200, time.Millisecond)
			m.RecordSearch("players", OutcomeOK, 1)
		}()
	}
	wg.Wait()
	if got := testutil.ToFloat64(m.searches.WithLabelValues("players", OutcomeOK)); got != 50 {
		t.Errorf("expected 50 searches, got %v", got)
	}
}
