// Package testutil provides testing utilities for rostersearch integration tests.
package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"rostersearch/internal/api"
	"rostersearch/internal/observability"
	"rostersearch/internal/seed"
	"rostersearch/internal/storage"
)

// TestServerConfig holds configuration for creating a test server.
type TestServerConfig struct {
	// Fixture is applied to the store before the server starts. A nil
	// fixture leaves the store empty.
	Fixture *seed.Fixture
	// EnableRateLimit enables rate limiting middleware.
	EnableRateLimit bool
	// RateLimitConfig configures rate limiting if enabled.
	RateLimitConfig api.RateLimitConfig
	// EnableMetrics enables metrics collection.
	EnableMetrics bool
	// CORSOrigins enables CORS on /api/ for these origins.
	CORSOrigins []string
}

// TestServerComponents holds all the components created for a test server.
type TestServerComponents struct {
	// Server is the test HTTP server.
	Server *httptest.Server
	// Store is the storage backend.
	Store *storage.MemoryStore
	// Seeded maps fixture names to ids.
	Seeded seed.Summary
	// Metrics is the metrics collector, nil unless enabled.
	Metrics *observability.Metrics
	// Logger is the structured logger.
	Logger observability.Logger
}

// NewTestServer starts a server with the production middleware chain over a
// MemoryStore. The server is closed when the test ends.
func NewTestServer(t *testing.T, cfg TestServerConfig) *TestServerComponents {
	t.Helper()

	store := storage.NewMemoryStore()
	var summary seed.Summary
	if cfg.Fixture != nil {
		var err error
		summary, err = seed.Apply(t.Context(), store, *cfg.Fixture)
		if err != nil {
			t.Fatalf("seed test store: %v", err)
		}
	}

	logger := observability.NewLogger(observability.Config{
		Level:  "debug",
		Format: "json",
		Output: io.Discard,
	})

	var metrics *observability.Metrics
	if cfg.EnableMetrics {
		metrics = observability.NewMetrics(observability.MetricsConfig{
			Enabled:   true,
			Namespace: "rostersearch_test",
			Version:   "test",
		})
	}

	mux := http.NewServeMux()
	srv := api.NewServer(mux, store, logger, metrics)
	srv.RegisterRoutes()

	var rateCfg api.RateLimitConfig
	if cfg.EnableRateLimit {
		rateCfg = cfg.RateLimitConfig
	}
	handler := api.ApplyMiddlewares(
		mux,
		observability.MetricsMiddleware(metrics),
		api.RequestIDMiddleware(),
		api.LoggingMiddleware(logger.Slog()),
		api.CORSMiddleware(cfg.CORSOrigins),
		observability.RateLimitMetricsMiddleware(metrics, rateCfg.Enabled()),
		api.RateLimitMiddleware(rateCfg, logger.Slog()),
	)

	testServer := httptest.NewServer(handler)
	t.Cleanup(func() {
		testServer.Close()
		_ = store.Close()
	})

	return &TestServerComponents{
		Server:  testServer,
		Store:   store,
		Seeded:  summary,
		Metrics: metrics,
		Logger:  logger,
	}
}

// Get performs a GET against the test server.
func (c *TestServerComponents) Get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := c.Server.Client().Get(c.URL(path))
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

// URL returns the full URL for a given path.
func (c *TestServerComponents) URL(path string) string {
	return c.Server.URL + path
}

// AssertStatus checks that the response has the expected status code.
func AssertStatus(t *testing.T, got, expected int) {
	t.Helper()
	if got != expected {
		t.Errorf("expected status %d, got %d", expected, got)
	}
}

// AssertHeaderExists checks that the response has the specified header.
func AssertHeaderExists(t *testing.T, resp *http.Response, key string) {
	t.Helper()
	if resp.Header.Get(key) == "" {
		t.Errorf("expected header %s to exist", key)
	}
}

// ReadJSONResponse reads and unmarshals a JSON response body, closing it.
func ReadJSONResponse(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("failed to unmarshal response: %v\nBody: %s", err, string(data))
	}
}

// ReadBody reads and closes a response body.
func ReadBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return string(data)
}
