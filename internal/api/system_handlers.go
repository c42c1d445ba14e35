package api

import (
	"net/http"

	apidocs "rostersearch/docs"
	"rostersearch/internal/storage"
)

func (s *Server) handleOpenAPISpec(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErr(r.Context(), w, http.StatusMethodNotAllowed, msgMethodNotAllowed, nil)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(apidocs.OpenAPISpec)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// ReadinessResponse represents the JSON response for the readiness check endpoint.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
	// Database carries pool statistics for stores that report them.
	Database *storage.DBStats `json:"database,omitempty"`
}

// handleReady checks if the application is ready to accept traffic.
// Unlike /healthz (liveness), this endpoint verifies that the database is reachable.
// Returns 200 OK if all checks pass, 503 Service Unavailable otherwise.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErr(r.Context(), w, http.StatusMethodNotAllowed, msgMethodNotAllowed, nil)
		return
	}

	ctx := r.Context()
	resp := ReadinessResponse{Status: "ok", Checks: map[string]string{"database": "ok"}}
	if err := s.store.Ping(ctx); err != nil {
		resp.Status = "unhealthy"
		resp.Checks["database"] = "error"
		s.logger.ErrorContext(ctx, "readiness check failed", "check", "database", "error", err.Error())
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	if hc, ok := s.store.(storage.HealthCheck); ok {
		resp.Database = hc.Stats()
	}
	writeJSON(w, http.StatusOK, resp)
}
