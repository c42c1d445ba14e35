package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"rostersearch/internal/domain"
)

func TestPages(t *testing.T) {
	srv, _, sum := setupServer(t)

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantBody   []string
	}{
		{
			name:       "home",
			target:     "/",
			wantStatus: http.StatusOK,
			wantBody:   []string{"<title>Home | Roster Search</title>", `href="/teams"`, `href="/players"`},
		},
		{
			name:       "teams",
			target:     "/teams",
			wantStatus: http.StatusOK,
			wantBody:   []string{`id="searchTarget" value="teams"`, `id="searchButton"`, `value="city:desc"`, "/static/search.js"},
		},
		{
			name:       "players",
			target:     "/players",
			wantStatus: http.StatusOK,
			wantBody: []string{
				`id="searchTarget" value="players"`,
				`id="selectedPosition"`,
				`<option value="` + itoa(sum.Positions["Center"]) + `">Center</option>`,
				`value="birth_date:asc"`,
			},
		},
		{
			name:       "player stats",
			target:     "/playerStats/" + itoa(sum.Players["Magic Johnson"]),
			wantStatus: http.StatusOK,
			wantBody:   []string{"<h1>Magic Johnson</h1>", "8/14/1959", "215 pounds", "6.9 feet", "Point Guard"},
		},
		{
			name:       "unknown player",
			target:     "/playerStats/9999",
			wantStatus: http.StatusNotFound,
			wantBody:   []string{msgPlayerNotFound},
		},
		{
			name:       "non-numeric player id",
			target:     "/playerStats/magic",
			wantStatus: http.StatusNotFound,
			wantBody:   []string{msgPlayerNotFound},
		},
		{
			name:       "unknown path",
			target:     "/nowhere",
			wantStatus: http.StatusNotFound,
			wantBody:   []string{msgNotFound},
		},
		{
			name:       "unknown api path",
			target:     "/api/search-coaches?keyword=Phil",
			wantStatus: http.StatusNotFound,
			wantBody:   []string{msgNotFound},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doGet(t, srv, tt.target)
			if rr.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rr.Code, rr.Body.String())
			}
			body := rr.Body.String()
			for _, want := range tt.wantBody {
				if !strings.Contains(body, want) {
					t.Errorf("expected %q in body:\n%s", want, body)
				}
			}
		})
	}
}

func TestPlayerStatsUnassignedPlayer(t *testing.T) {
	srv, _, sum := setupServer(t)

	rr := doGet(t, srv, "/playerStats/"+itoa(sum.Players["Johnny Moore"]))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "Position:") {
		t.Errorf("unassigned player should not show a position: %s", rr.Body.String())
	}
}

func TestPagesEscapeStoreContent(t *testing.T) {
	srv, store, _ := setupServer(t)
	if _, err := store.CreatePosition(t.Context(), domain.CreatePosition{Name: "<script>alert(1)</script>"}); err != nil {
		t.Fatal(err)
	}

	rr := doGet(t, srv, "/players")
	if strings.Contains(rr.Body.String(), "<script>alert(1)</script>") {
		t.Fatalf("position name was not escaped: %s", rr.Body.String())
	}
}

func TestPageStoreFailure(t *testing.T) {
	srv, _, _ := setupFailingServer(t, errors.New("no such table: positions"))

	for _, target := range []string{"/players", "/playerStats/1"} {
		rr := doGet(t, srv, target)
		if rr.Code != http.StatusInternalServerError {
			t.Errorf("%s: expected 500, got %d", target, rr.Code)
		}
		if strings.Contains(rr.Body.String(), "no such table") {
			t.Errorf("%s: store error leaked: %s", target, rr.Body.String())
		}
	}
}

func TestStaticAssets(t *testing.T) {
	srv, _, _ := setupServer(t)

	for _, target := range []string{"/static/search.js", "/static/stylesheet.css"} {
		rr := doGet(t, srv, target)
		if rr.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", target, rr.Code)
		}
		if rr.Body.Len() == 0 {
			t.Errorf("%s: empty body", target)
		}
	}

	rr := doGet(t, srv, "/static/missing.js")
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404 for missing asset, got %d", rr.Code)
	}
}

func TestIndexRejectsNonGet(t *testing.T) {
	srv, _, _ := setupServer(t)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rr := httptest.NewRecorder()
	srv.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestFormatDate(t *testing.T) {
	tests := []struct {
		in   time.Time
		want string
	}{
		{in: time.Date(1959, time.August, 14, 0, 0, 0, 0, time.UTC), want: "8/14/1959"},
		{in: time.Date(2001, time.December, 31, 23, 0, 0, 0, time.UTC), want: "12/31/2001"},
		{in: time.Date(1990, time.March, 1, 1, 0, 0, 0, time.FixedZone("X", 3*3600)), want: "2/28/1990"},
		{in: time.Time{}, want: ""},
	}
	for _, tt := range tests {
		if got := formatDate(tt.in); got != tt.want {
			t.Errorf("formatDate(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
