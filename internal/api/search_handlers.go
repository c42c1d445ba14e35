package api

import (
	"context"
	"net/http"
	"net/url"

	"rostersearch/internal/domain"
	"rostersearch/internal/observability"
	"rostersearch/internal/search"
	"rostersearch/internal/validation"
)

// GET /api/search-teams?keyword=<alnum>&sort=<ordering>
func (s *Server) handleSearchTeams(w http.ResponseWriter, r *http.Request) {
	serveSearch(s, w, r, domain.EntityTeams,
		func(keyword string, params url.Values) search.Query {
			return search.BuildTeamQuery(keyword, search.ParseOrdering(params.Get("sort")))
		},
		s.store.SearchTeams,
	)
}

// GET /api/search-players?keyword=<alnum>&sort=<ordering>&selectedPosition=<id>
func (s *Server) handleSearchPlayers(w http.ResponseWriter, r *http.Request) {
	serveSearch(s, w, r, domain.EntityPlayers,
		func(keyword string, params url.Values) search.Query {
			return search.BuildPlayerQuery(
				keyword,
				search.ParseOrdering(params.Get("sort")),
				params.Get("selectedPosition"),
			)
		},
		s.store.SearchPlayers,
	)
}

// serveSearch validates the keyword, builds the query and writes the rows as
// a JSON array. Invalid keywords never reach the store.
func serveSearch[T any](
	s *Server,
	w http.ResponseWriter,
	r *http.Request,
	entity domain.Entity,
	build func(keyword string, params url.Values) search.Query,
	run func(context.Context, search.Query) ([]T, error),
) {
	ctx := r.Context()
	if r.Method != http.MethodGet {
		s.writeErr(ctx, w, http.StatusMethodNotAllowed, msgMethodNotAllowed, nil)
		return
	}

	params := r.URL.Query()
	keyword := params.Get("keyword")
	if err := validation.ValidateKeyword(keyword); err != nil {
		s.metrics.RecordSearch(string(entity), observability.OutcomeInvalidInput, 0)
		s.writeErr(ctx, w, http.StatusBadRequest, msgInvalidKeyword, err)
		return
	}

	q := build(keyword, params)
	s.logger.DebugContext(ctx, "search", "entity", entity, "query", q.String())

	rows, err := run(ctx, q)
	if err != nil {
		s.metrics.RecordSearch(string(entity), observability.OutcomeStoreError, 0)
		s.writeErr(ctx, w, http.StatusInternalServerError, msgInternalError, err)
		return
	}
	if rows == nil {
		rows = []T{}
	}
	s.metrics.RecordSearch(string(entity), observability.OutcomeOK, len(rows))
	writeJSON(w, http.StatusOK, rows)
}
