package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"rostersearch/internal/domain"
	"rostersearch/internal/observability"
	"rostersearch/internal/search"
	"rostersearch/internal/seed"
	"rostersearch/internal/storage"
	"rostersearch/internal/storage/storetest"
)

// setupServer returns a server over a MemoryStore seeded with the shared
// roster fixture.
func setupServer(t *testing.T) (*Server, *storage.MemoryStore, seed.Summary) {
	t.Helper()
	store := storage.NewMemoryStore()
	sum, err := seed.Apply(t.Context(), store, storetest.Roster)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	mux := http.NewServeMux()
	srv := NewServer(mux, store, observability.Discard(), nil)
	srv.RegisterRoutes()
	return srv, store, sum
}

// failingStore fails every call with err and counts search calls.
type failingStore struct {
	err      error
	searches int
}

func (f *failingStore) SearchTeams(ctx context.Context, q search.Query) ([]domain.Team, error) {
	f.searches++
	return nil, f.err
}

func (f *failingStore) SearchPlayers(ctx context.Context, q search.Query) ([]domain.Player, error) {
	f.searches++
	return nil, f.err
}

func (f *failingStore) GetPlayer(ctx context.Context, id int64) (domain.Player, bool, error) {
	return domain.Player{}, false, f.err
}

func (f *failingStore) ListPositions(ctx context.Context) ([]domain.Position, error) {
	return nil, f.err
}

func (f *failingStore) Ping(ctx context.Context) error { return f.err }

func (f *failingStore) Close() error { return nil }

func setupFailingServer(t *testing.T, err error) (*Server, *failingStore, *bytes.Buffer) {
	t.Helper()
	store := &failingStore{err: err}
	var logs bytes.Buffer
	logger := observability.NewLogger(observability.Config{Level: "debug", Format: "json", Output: &logs})
	mux := http.NewServeMux()
	srv := NewServer(mux, store, logger, nil)
	srv.RegisterRoutes()
	return srv, store, &logs
}

func doGet(t *testing.T, srv *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rr := httptest.NewRecorder()
	srv.mux.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, body io.Reader) apiError {
	t.Helper()
	var resp apiError
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return resp
}

func TestWriteErrHidesDetailFromClient(t *testing.T) {
	srv, _, logs := setupFailingServer(t, errors.New("connection refused on 10.0.0.5:5432"))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	srv.writeErr(req.Context(), rr, http.StatusInternalServerError, msgInternalError, errors.New("pq: secret detail"))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "secret") {
		t.Fatalf("detail leaked to client: %s", rr.Body.String())
	}
	if got := decodeError(t, rr.Body); got.Error != msgInternalError {
		t.Fatalf("unexpected error message %q", got.Error)
	}
	if !strings.Contains(logs.String(), "pq: secret detail") {
		t.Fatalf("expected detail in logs, got %s", logs.String())
	}
}

func TestWriteErrClientErrorLogsWarn(t *testing.T) {
	srv, _, logs := setupFailingServer(t, nil)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	srv.writeErr(req.Context(), rr, http.StatusBadRequest, msgInvalidKeyword, errors.New("bad"))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if !strings.Contains(logs.String(), `"level":"WARN"`) {
		t.Fatalf("expected a warn record, got %s", logs.String())
	}
}

func TestNewServerDefaultsLogger(t *testing.T) {
	srv := NewServer(http.NewServeMux(), storage.NewMemoryStore(), nil, nil)
	if srv.logger == nil {
		t.Fatal("expected a default logger")
	}
}
