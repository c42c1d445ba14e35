package storage

import (
	"errors"
	"testing"

	"rostersearch/internal/domain"
)

func TestResolveOrdering(t *testing.T) {
	tests := []struct {
		name     string
		ordering domain.Ordering
		fields   map[string]string
		column   string
		desc     bool
		wantErr  bool
	}{
		{name: "team name asc", ordering: domain.Ordering{Field: "name", Direction: "asc"}, fields: TeamSortFields, column: "name"},
		{name: "team city desc", ordering: domain.Ordering{Field: "city", Direction: "desc"}, fields: TeamSortFields, column: "city", desc: true},
		{name: "upper case direction", ordering: domain.Ordering{Field: "name", Direction: "DESC"}, fields: TeamSortFields, column: "name", desc: true},
		{name: "empty direction", ordering: domain.Ordering{Field: "id"}, fields: TeamSortFields, column: "id"},
		{name: "player birth date", ordering: domain.Ordering{Field: "birth_date", Direction: "asc"}, fields: PlayerSortFields, column: "birth_date"},
		{name: "player field on teams", ordering: domain.Ordering{Field: "weight", Direction: "asc"}, fields: TeamSortFields, wantErr: true},
		{name: "unknown field", ordering: domain.Ordering{Field: "salary", Direction: "asc"}, fields: PlayerSortFields, wantErr: true},
		{name: "injection attempt", ordering: domain.Ordering{Field: "name; DROP TABLE players", Direction: "asc"}, fields: PlayerSortFields, wantErr: true},
		{name: "bad direction", ordering: domain.Ordering{Field: "name", Direction: "sideways"}, fields: PlayerSortFields, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			column, desc, err := ResolveOrdering(tt.ordering, tt.fields)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidOrdering) {
					t.Fatalf("expected ErrInvalidOrdering, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if column != tt.column || desc != tt.desc {
				t.Fatalf("got (%q, %v), want (%q, %v)", column, desc, tt.column, tt.desc)
			}
		})
	}
}

func TestSortFieldsFor(t *testing.T) {
	if _, ok := SortFieldsFor(domain.EntityPlayers)["birth_date"]; !ok {
		t.Fatal("players should sort by birth_date")
	}
	if _, ok := SortFieldsFor(domain.EntityTeams)["birth_date"]; ok {
		t.Fatal("teams should not sort by birth_date")
	}
}
