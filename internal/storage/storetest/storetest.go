// Package storetest is a behavioural test suite shared by every storage
// backend.
package storetest

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"rostersearch/internal/domain"
	"rostersearch/internal/search"
	"rostersearch/internal/seed"
	"rostersearch/internal/storage"
)

// Backend is a store that can also be seeded.
type Backend interface {
	storage.Store
	storage.Seeder
}

// Factory returns an empty backend. It is called once per subtest and is
// responsible for registering its own cleanup.
type Factory func(t *testing.T) Backend

// Roster is the fixture every subtest starts from.
var Roster = seed.Fixture{
	Teams: []domain.CreateTeam{
		{Name: "Los Angeles Lakers", City: "Los Angeles"},
		{Name: "Boston Celtics", City: "Boston"},
		{Name: "Chicago Bulls", City: "Chicago"},
		{Name: "Utah Jazz", City: "Salt Lake City"},
	},
	Positions: []domain.CreatePosition{
		{Name: "Point Guard"},
		{Name: "Shooting Guard"},
		{Name: "Center"},
	},
	Players: []seed.PlayerFixture{
		{Name: "John Stockton", BirthDate: "1962-03-26", Weight: 175, Height: 6.1, Origin: "USA", Team: "Utah Jazz", Position: "Point Guard"},
		{Name: "John Havlicek", BirthDate: "1940-04-08", Weight: 203, Height: 6.5, Origin: "USA", Team: "Boston Celtics", Position: "Shooting Guard"},
		{Name: "Magic Johnson", BirthDate: "1959-08-14", Weight: 215, Height: 6.9, Origin: "USA", Team: "Los Angeles Lakers", Position: "Point Guard"},
		{Name: "Kareem Abdul-Jabbar", BirthDate: "1947-04-16", Weight: 225, Height: 7.2, Origin: "USA", Team: "Los Angeles Lakers", Position: "Center"},
		{Name: "Robert Parish", BirthDate: "1953-08-30", Weight: 230, Height: 7.0, Origin: "USA", Team: "Boston Celtics", Position: "Center"},
		{Name: "Johnny Moore", BirthDate: "1958-03-03", Weight: 175, Height: 6.1, Origin: "USA"},
		{Name: "Johnny Kerr", BirthDate: "1932-07-17", Weight: 230, Height: 6.9, Origin: "USA", Team: "Chicago Bulls", Position: "Center"},
	},
}

// Run executes the suite against backends produced by newBackend.
func Run(t *testing.T, newBackend Factory) {
	t.Helper()

	setup := func(t *testing.T) (Backend, seed.Summary) {
		t.Helper()
		b := newBackend(t)
		sum, err := seed.Apply(context.Background(), b, Roster)
		if err != nil {
			t.Fatalf("seed roster: %v", err)
		}
		return b, sum
	}

	t.Run("TeamsByKeyword", func(t *testing.T) {
		b, sum := setup(t)
		got, err := b.SearchTeams(context.Background(), search.BuildTeamQuery("Lakers", nil))
		if err != nil {
			t.Fatalf("search teams: %v", err)
		}
		if len(got) != 1 || got[0].ID != sum.Teams["Los Angeles Lakers"] {
			t.Fatalf("expected Lakers, got %+v", got)
		}
		if got[0].City != "Los Angeles" {
			t.Fatalf("unexpected city %q", got[0].City)
		}
	})

	t.Run("TeamsNoMatch", func(t *testing.T) {
		b, _ := setup(t)
		got, err := b.SearchTeams(context.Background(), search.BuildTeamQuery("Knicks", nil))
		if err != nil {
			t.Fatalf("search teams: %v", err)
		}
		if got == nil || len(got) != 0 {
			t.Fatalf("expected empty non-nil slice, got %#v", got)
		}
	})

	t.Run("TeamsDefaultOrder", func(t *testing.T) {
		b, sum := setup(t)
		got, err := b.SearchTeams(context.Background(), search.BuildTeamQuery("s", nil))
		if err != nil {
			t.Fatalf("search teams: %v", err)
		}
		want := []int64{sum.Teams["Los Angeles Lakers"], sum.Teams["Boston Celtics"], sum.Teams["Chicago Bulls"]}
		assertTeamIDs(t, got, want)
	})

	t.Run("TeamsSortedByName", func(t *testing.T) {
		b, sum := setup(t)
		q := search.BuildTeamQuery("s", &domain.Ordering{Field: "name", Direction: domain.SortDirectionDesc})
		got, err := b.SearchTeams(context.Background(), q)
		if err != nil {
			t.Fatalf("search teams: %v", err)
		}
		want := []int64{sum.Teams["Los Angeles Lakers"], sum.Teams["Chicago Bulls"], sum.Teams["Boston Celtics"]}
		assertTeamIDs(t, got, want)
	})

	t.Run("TeamsInvalidOrdering", func(t *testing.T) {
		b, _ := setup(t)
		q := search.BuildTeamQuery("Lakers", &domain.Ordering{Field: "mascot", Direction: domain.SortDirectionAsc})
		if _, err := b.SearchTeams(context.Background(), q); !errors.Is(err, storage.ErrInvalidOrdering) {
			t.Fatalf("expected ErrInvalidOrdering, got %v", err)
		}
	})

	t.Run("PlayersByKeyword", func(t *testing.T) {
		b, sum := setup(t)
		got, err := b.SearchPlayers(context.Background(), search.BuildPlayerQuery("John", nil, ""))
		if err != nil {
			t.Fatalf("search players: %v", err)
		}
		want := []int64{
			sum.Players["John Stockton"], sum.Players["John Havlicek"], sum.Players["Magic Johnson"],
			sum.Players["Johnny Moore"], sum.Players["Johnny Kerr"],
		}
		assertPlayerIDs(t, got, want)
		for _, p := range got {
			if p.PlayerTeam != nil {
				t.Fatalf("association loaded without being requested: %+v", p)
			}
		}
		if got[2].BirthDate.Format("2006-01-02") != "1959-08-14" || got[2].Weight != 215 || got[2].Height != 6.9 {
			t.Fatalf("unexpected player fields: %+v", got[2])
		}
	})

	t.Run("PlayersByPosition", func(t *testing.T) {
		b, sum := setup(t)
		center := sum.Positions["Center"]
		got, err := b.SearchPlayers(context.Background(), search.BuildPlayerQuery("John", nil, itoa(center)))
		if err != nil {
			t.Fatalf("search players: %v", err)
		}
		assertPlayerIDs(t, got, []int64{sum.Players["Johnny Kerr"]})
		pt := got[0].PlayerTeam
		if pt == nil || pt.TeamID != sum.Teams["Chicago Bulls"] || pt.PositionID == nil || *pt.PositionID != center {
			t.Fatalf("unexpected association: %+v", pt)
		}
	})

	t.Run("PlayersByPositionSorted", func(t *testing.T) {
		b, sum := setup(t)
		q := search.BuildPlayerQuery("a", &domain.Ordering{Field: "weight", Direction: domain.SortDirectionDesc}, itoa(sum.Positions["Center"]))
		got, err := b.SearchPlayers(context.Background(), q)
		if err != nil {
			t.Fatalf("search players: %v", err)
		}
		want := []int64{sum.Players["Robert Parish"], sum.Players["Kareem Abdul-Jabbar"]}
		assertPlayerIDs(t, got, want)
	})

	t.Run("PlayersUnknownPosition", func(t *testing.T) {
		b, _ := setup(t)
		for _, pos := range []string{"999", "abc"} {
			got, err := b.SearchPlayers(context.Background(), search.BuildPlayerQuery("John", nil, pos))
			if err != nil {
				t.Fatalf("position %q: %v", pos, err)
			}
			if got == nil || len(got) != 0 {
				t.Fatalf("position %q: expected empty slice, got %+v", pos, got)
			}
		}
	})

	t.Run("PlayersSortedByBirthDate", func(t *testing.T) {
		b, sum := setup(t)
		q := search.BuildPlayerQuery("John", &domain.Ordering{Field: "birth_date", Direction: domain.SortDirectionAsc}, "")
		got, err := b.SearchPlayers(context.Background(), q)
		if err != nil {
			t.Fatalf("search players: %v", err)
		}
		want := []int64{
			sum.Players["Johnny Kerr"], sum.Players["John Havlicek"], sum.Players["Johnny Moore"],
			sum.Players["Magic Johnson"], sum.Players["John Stockton"],
		}
		assertPlayerIDs(t, got, want)
	})

	t.Run("PlayersUndatedSortLowest", func(t *testing.T) {
		b, sum := setup(t)
		undated, err := b.CreatePlayer(context.Background(), domain.CreatePlayer{Name: "Johnny Undated", Weight: 180, Height: 6.2, Origin: "USA"})
		if err != nil {
			t.Fatalf("create player: %v", err)
		}

		asc := search.BuildPlayerQuery("Johnny", &domain.Ordering{Field: "birth_date", Direction: domain.SortDirectionAsc}, "")
		got, err := b.SearchPlayers(context.Background(), asc)
		if err != nil {
			t.Fatalf("search players: %v", err)
		}
		assertPlayerIDs(t, got, []int64{undated.ID, sum.Players["Johnny Kerr"], sum.Players["Johnny Moore"]})

		desc := search.BuildPlayerQuery("Johnny", &domain.Ordering{Field: "birth_date", Direction: domain.SortDirectionDesc}, "")
		got, err = b.SearchPlayers(context.Background(), desc)
		if err != nil {
			t.Fatalf("search players: %v", err)
		}
		assertPlayerIDs(t, got, []int64{sum.Players["Johnny Moore"], sum.Players["Johnny Kerr"], undated.ID})
	})

	t.Run("PlayersSortTieBreaksOnID", func(t *testing.T) {
		b, sum := setup(t)
		q := search.BuildPlayerQuery("John", &domain.Ordering{Field: "weight", Direction: domain.SortDirectionDesc}, "")
		got, err := b.SearchPlayers(context.Background(), q)
		if err != nil {
			t.Fatalf("search players: %v", err)
		}
		want := []int64{
			sum.Players["Johnny Kerr"], sum.Players["Magic Johnson"], sum.Players["John Havlicek"],
			sum.Players["John Stockton"], sum.Players["Johnny Moore"],
		}
		assertPlayerIDs(t, got, want)
	})

	t.Run("PlayersInvalidOrdering", func(t *testing.T) {
		b, _ := setup(t)
		q := search.BuildPlayerQuery("John", &domain.Ordering{Field: "name", Direction: "sideways"}, "")
		if _, err := b.SearchPlayers(context.Background(), q); !errors.Is(err, storage.ErrInvalidOrdering) {
			t.Fatalf("expected ErrInvalidOrdering, got %v", err)
		}
	})

	t.Run("GetPlayer", func(t *testing.T) {
		b, sum := setup(t)
		ctx := context.Background()
		p, ok, err := b.GetPlayer(ctx, sum.Players["John Stockton"])
		if err != nil || !ok {
			t.Fatalf("get player: %v ok=%v", err, ok)
		}
		if p.Name != "John Stockton" || p.Origin != "USA" {
			t.Fatalf("unexpected player: %+v", p)
		}
		if p.PlayerTeam == nil || p.PlayerTeam.TeamID != sum.Teams["Utah Jazz"] {
			t.Fatalf("expected association, got %+v", p.PlayerTeam)
		}

		free, ok, err := b.GetPlayer(ctx, sum.Players["Johnny Moore"])
		if err != nil || !ok {
			t.Fatalf("get unassigned player: %v ok=%v", err, ok)
		}
		if free.PlayerTeam != nil {
			t.Fatalf("unassigned player has association: %+v", free.PlayerTeam)
		}

		if _, ok, err := b.GetPlayer(ctx, 1_000_000); err != nil || ok {
			t.Fatalf("missing player: ok=%v err=%v", ok, err)
		}
	})

	t.Run("ListPositions", func(t *testing.T) {
		b, sum := setup(t)
		got, err := b.ListPositions(context.Background())
		if err != nil {
			t.Fatalf("list positions: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("expected 3 positions, got %d", len(got))
		}
		if got[0].ID != sum.Positions["Point Guard"] || got[2].Name != "Center" {
			t.Fatalf("unexpected order: %+v", got)
		}
	})

	t.Run("AssignPlayerReplaces", func(t *testing.T) {
		b, sum := setup(t)
		ctx := context.Background()
		id := sum.Players["Magic Johnson"]
		err := b.AssignPlayer(ctx, domain.PlayerTeam{PlayerID: id, TeamID: sum.Teams["Boston Celtics"]})
		if err != nil {
			t.Fatalf("reassign: %v", err)
		}
		p, _, err := b.GetPlayer(ctx, id)
		if err != nil {
			t.Fatalf("get player: %v", err)
		}
		if p.PlayerTeam == nil || p.PlayerTeam.TeamID != sum.Teams["Boston Celtics"] || p.PlayerTeam.PositionID != nil {
			t.Fatalf("association not replaced: %+v", p.PlayerTeam)
		}
	})

	t.Run("AssignPlayerUnknownReference", func(t *testing.T) {
		b, sum := setup(t)
		err := b.AssignPlayer(context.Background(), domain.PlayerTeam{PlayerID: sum.Players["Johnny Moore"], TeamID: 1_000_000})
		if !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("CreateTeamDuplicate", func(t *testing.T) {
		b, _ := setup(t)
		_, err := b.CreateTeam(context.Background(), domain.CreateTeam{Name: "Utah Jazz"})
		if !errors.Is(err, storage.ErrConflict) {
			t.Fatalf("expected ErrConflict, got %v", err)
		}
	})

	t.Run("CreatePlayerInvalid", func(t *testing.T) {
		b, _ := setup(t)
		_, err := b.CreatePlayer(context.Background(), domain.CreatePlayer{Name: ""})
		if !errors.Is(err, storage.ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("Ping", func(t *testing.T) {
		b := newBackend(t)
		if err := b.Ping(context.Background()); err != nil {
			t.Fatalf("ping: %v", err)
		}
	})
}

func assertTeamIDs(t *testing.T, got []domain.Team, want []int64) {
	t.Helper()
	ids := make([]int64, len(got))
	for i, team := range got {
		ids[i] = team.ID
	}
	assertIDs(t, ids, want)
}

func assertPlayerIDs(t *testing.T, got []domain.Player, want []int64) {
	t.Helper()
	ids := make([]int64, len(got))
	for i, p := range got {
		ids[i] = p.ID
	}
	assertIDs(t, ids, want)
}

func assertIDs(t *testing.T, got, want []int64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got ids %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("got ids %v, want %v", got, want)
		}
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
