// Package api serves the rostersearch JSON endpoints, the server-rendered
// pages and the system endpoints.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/getsentry/sentry-go"

	"rostersearch/internal/observability"
	"rostersearch/internal/storage"
)

// Messages returned to clients. Failure details are logged, never returned.
const (
	msgInvalidKeyword   = "Invalid keyword"
	msgInternalError    = "Internal server error"
	msgMethodNotAllowed = "method not allowed"
	msgNotFound         = "Sorry, we could not find that!"
	msgPlayerNotFound   = "Player not found"
)

type apiError struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type Server struct {
	mux     *http.ServeMux
	store   storage.Store
	logger  observability.Logger
	metrics *observability.Metrics
	pages   *pages
}

// NewServer creates a new HTTP server with the given dependencies.
// If logger is nil, a default logger will be used.
// If metrics is nil, metrics collection is disabled.
func NewServer(mux *http.ServeMux, store storage.Store, logger observability.Logger, metrics *observability.Metrics) *Server {
	if logger == nil {
		logger = observability.NewLogger(observability.DefaultConfig())
	}
	return &Server{
		mux:     mux,
		store:   store,
		logger:  logger.WithComponent("api"),
		metrics: metrics,
		pages:   mustLoadPages(),
	}
}

// writeErr logs the failure and writes {"error": msg}. For 5xx responses err
// is reported to Sentry; it is never written to the client.
func (s *Server) writeErr(ctx context.Context, w http.ResponseWriter, code int, msg string, err error) {
	fields := []any{
		"status", code,
		"error", msg,
	}
	if err != nil {
		fields = append(fields, "detail", err.Error())
	}
	if code >= 500 {
		s.logger.ErrorContext(ctx, "request failed", fields...)
		if err != nil {
			hubFromContext(ctx).CaptureException(err)
		}
	} else {
		s.logger.WarnContext(ctx, "request failed", fields...)
	}
	writeJSON(w, code, apiError{Error: msg})
}

func hubFromContext(ctx context.Context) *sentry.Hub {
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		return hub
	}
	return sentry.CurrentHub()
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (s *statusRecorder) WriteHeader(code int) {
	if !s.wroteHeader {
		s.status = code
		s.wroteHeader = true
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if !s.wroteHeader {
		s.wroteHeader = true
	}
	return s.ResponseWriter.Write(b)
}

func (s *statusRecorder) Unwrap() http.ResponseWriter { return s.ResponseWriter }

// RegisterRoutes registers the search API, pages, static assets and system
// endpoints. Unknown paths fall through to the not-found page.
func (s *Server) RegisterRoutes() {
	s.mux.HandleFunc("/api/search-teams", s.handleSearchTeams)
	s.mux.HandleFunc("/api/search-players", s.handleSearchPlayers)

	s.mux.HandleFunc("/openapi.yaml", s.handleOpenAPISpec)
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.HandleFunc("/readyz", s.handleReady)
	if s.metrics != nil {
		s.mux.Handle("/metrics", s.metrics.Handler())
	}

	s.mux.Handle("/static/", s.handleStatic())
	s.mux.HandleFunc("GET /teams", s.handleTeamsPage)
	s.mux.HandleFunc("GET /players", s.handlePlayersPage)
	s.mux.HandleFunc("GET /playerStats/{id}", s.handlePlayerStats)
	s.mux.HandleFunc("/", s.handleIndex)
}
