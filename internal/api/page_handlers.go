package api

import (
	"bytes"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"
	"time"

	"rostersearch/internal/domain"
	webui "rostersearch/web"
)

// sortOption is one entry of a page's sort dropdown. Values use the
// "field:direction" form understood by search.ParseOrdering.
type sortOption struct {
	Value string
	Label string
}

var (
	teamSortOptions = []sortOption{
		{Value: "none", Label: "None"},
		{Value: "name:asc", Label: "Name (A-Z)"},
		{Value: "name:desc", Label: "Name (Z-A)"},
		{Value: "city:asc", Label: "City (A-Z)"},
		{Value: "city:desc", Label: "City (Z-A)"},
	}
	playerSortOptions = []sortOption{
		{Value: "none", Label: "None"},
		{Value: "name:asc", Label: "Name (A-Z)"},
		{Value: "name:desc", Label: "Name (Z-A)"},
		{Value: "birth_date:asc", Label: "Oldest first"},
		{Value: "birth_date:desc", Label: "Youngest first"},
		{Value: "weight:desc", Label: "Heaviest first"},
		{Value: "height:desc", Label: "Tallest first"},
		{Value: "origin:asc", Label: "Origin"},
	}
)

type pageData struct {
	Title       string
	Message     string
	SortOptions []sortOption
	Positions   []domain.Position
	Player      domain.Player
	Position    string
}

// pages holds one template set per page, each parsed with the shared layout.
type pages struct {
	byName map[string]*template.Template
}

var pageFuncs = template.FuncMap{
	"formatDate": formatDate,
}

func mustLoadPages() *pages {
	p := &pages{byName: make(map[string]*template.Template)}
	for _, name := range []string{"index", "teams", "players", "playerStats", "notfound"} {
		t := template.Must(template.New(name).Funcs(pageFuncs).ParseFS(
			webui.Templates, "templates/layout.html", "templates/"+name+".html",
		))
		p.byName[name] = t
	}
	return p
}

// formatDate renders a date as M/D/YYYY in UTC; the zero time is blank.
func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("1/2/2006")
}

// render executes the page into a buffer first so a template failure can
// still produce a clean 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, code int, name string, data pageData) {
	t, ok := s.pages.byName[name]
	if !ok {
		s.writePageErr(w, r, http.StatusInternalServerError, msgInternalError, nil)
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		s.writePageErr(w, r, http.StatusInternalServerError, msgInternalError, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	_, _ = buf.WriteTo(w)
}

// writePageErr answers a page request with a plain-text error.
func (s *Server) writePageErr(w http.ResponseWriter, r *http.Request, code int, msg string, err error) {
	ctx := r.Context()
	fields := []any{"status", code, "path", r.URL.Path}
	if err != nil {
		fields = append(fields, "detail", err.Error())
	}
	if code >= 500 {
		s.logger.ErrorContext(ctx, "page failed", fields...)
		if err != nil {
			hubFromContext(ctx).CaptureException(err)
		}
	}
	http.Error(w, msg, code)
}

// handleIndex serves the home page at "/" and the not-found page for every
// path no other route claims.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" || (r.Method != http.MethodGet && r.Method != http.MethodHead) {
		s.render(w, r, http.StatusNotFound, "notfound", pageData{Title: "Not found", Message: msgNotFound})
		return
	}
	s.render(w, r, http.StatusOK, "index", pageData{Title: "Home"})
}

func (s *Server) handleTeamsPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "teams", pageData{Title: "Teams", SortOptions: teamSortOptions})
}

func (s *Server) handlePlayersPage(w http.ResponseWriter, r *http.Request) {
	positions, err := s.store.ListPositions(r.Context())
	if err != nil {
		s.writePageErr(w, r, http.StatusInternalServerError, msgInternalError, err)
		return
	}
	s.render(w, r, http.StatusOK, "players", pageData{
		Title:       "Players",
		SortOptions: playerSortOptions,
		Positions:   positions,
	})
}

// GET /playerStats/{id}
func (s *Server) handlePlayerStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		s.writePageErr(w, r, http.StatusNotFound, msgPlayerNotFound, nil)
		return
	}
	player, ok, err := s.store.GetPlayer(ctx, id)
	if err != nil {
		s.writePageErr(w, r, http.StatusInternalServerError, msgInternalError, err)
		return
	}
	if !ok {
		s.writePageErr(w, r, http.StatusNotFound, msgPlayerNotFound, nil)
		return
	}

	data := pageData{Title: player.Name, Player: player}
	if pt := player.PlayerTeam; pt != nil && pt.PositionID != nil {
		positions, err := s.store.ListPositions(ctx)
		if err != nil {
			s.writePageErr(w, r, http.StatusInternalServerError, msgInternalError, err)
			return
		}
		for _, p := range positions {
			if p.ID == *pt.PositionID {
				data.Position = p.Name
				break
			}
		}
	}
	s.render(w, r, http.StatusOK, "playerStats", data)
}

// handleStatic serves the embedded client assets under /static/.
func (s *Server) handleStatic() http.Handler {
	sub, err := fs.Sub(webui.Static, "static")
	if err != nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, msgNotFound, http.StatusNotFound)
		})
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}
