// Package storage defines the persistence boundary for rostersearch and an
// in-memory implementation. SQL implementations live in the sqlite and
// postgres subpackages.
package storage

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"rostersearch/internal/domain"
	"rostersearch/internal/search"
	"rostersearch/internal/validation"
)

// Store is the read side used by the HTTP layer.
type Store interface {
	// SearchTeams runs a team query. No matches is an empty slice, not an error.
	SearchTeams(ctx context.Context, q search.Query) ([]domain.Team, error)
	// SearchPlayers runs a player query. The PlayerTeam association is only
	// loaded when the query includes it.
	SearchPlayers(ctx context.Context, q search.Query) ([]domain.Player, error)
	// GetPlayer returns a player with its association loaded.
	GetPlayer(ctx context.Context, id int64) (domain.Player, bool, error)
	// ListPositions returns all positions ordered by id.
	ListPositions(ctx context.Context) ([]domain.Position, error)
	// Ping checks that the backing database is reachable.
	Ping(ctx context.Context) error
	// Close releases resources held by the store
	Close() error
}

// Seeder is the write side used to load fixtures.
type Seeder interface {
	CreateTeam(ctx context.Context, in domain.CreateTeam) (domain.Team, error)
	CreatePosition(ctx context.Context, in domain.CreatePosition) (domain.Position, error)
	CreatePlayer(ctx context.Context, in domain.CreatePlayer) (domain.Player, error)
	// AssignPlayer sets the player's team association, replacing any existing one.
	AssignPlayer(ctx context.Context, pt domain.PlayerTeam) error
}

// ValidateCreatePlayer checks the fields every backend requires.
func ValidateCreatePlayer(in domain.CreatePlayer) error {
	if err := validation.ValidateName(in.Name); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if in.Weight < 0 || in.Height < 0 {
		return fmt.Errorf("%w: weight and height must not be negative", ErrValidation)
	}
	return nil
}

// MemoryStore is an in-memory implementation for quick start and tests.
type MemoryStore struct {
	mu        sync.RWMutex
	teams     map[int64]domain.Team
	positions map[int64]domain.Position
	players   map[int64]domain.Player
	// assignments is keyed by player id
	assignments  map[int64]domain.PlayerTeam
	nextTeam     int64
	nextPosition int64
	nextPlayer   int64
}

var (
	_ Store  = (*MemoryStore)(nil)
	_ Seeder = (*MemoryStore)(nil)
)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		teams:        make(map[int64]domain.Team),
		positions:    make(map[int64]domain.Position),
		players:      make(map[int64]domain.Player),
		assignments:  make(map[int64]domain.PlayerTeam),
		nextTeam:     1,
		nextPosition: 1,
		nextPlayer:   1,
	}
}

func (m *MemoryStore) SearchTeams(ctx context.Context, q search.Query) ([]domain.Team, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []domain.Team{}
	for _, t := range m.teams {
		if strings.Contains(t.Name, q.NameContains()) {
			out = append(out, t)
		}
	}

	cmpFn := func(a, b domain.Team) int { return cmp.Compare(a.ID, b.ID) }
	if o, ok := q.OrderBy(); ok {
		column, desc, err := ResolveOrdering(o, TeamSortFields)
		if err != nil {
			return nil, err
		}
		byColumn := teamComparator(column)
		cmpFn = func(a, b domain.Team) int {
			if c := byColumn(a, b); c != 0 {
				if desc {
					return -c
				}
				return c
			}
			return cmp.Compare(a.ID, b.ID)
		}
	}
	slices.SortStableFunc(out, cmpFn)
	return out, nil
}

func (m *MemoryStore) SearchPlayers(ctx context.Context, q search.Query) ([]domain.Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	positionID, filterPosition := q.PositionFilter()
	include := q.Includes(search.RelationPlayerTeam)

	out := []domain.Player{}
	for _, p := range m.players {
		if !strings.Contains(p.Name, q.NameContains()) {
			continue
		}
		pt, assigned := m.assignments[p.ID]
		if filterPosition {
			if !assigned || pt.PositionID == nil || fmt.Sprint(*pt.PositionID) != positionID {
				continue
			}
		}
		if include && assigned {
			p.PlayerTeam = copyPlayerTeam(pt)
		}
		out = append(out, p)
	}

	cmpFn := func(a, b domain.Player) int { return cmp.Compare(a.ID, b.ID) }
	if o, ok := q.OrderBy(); ok {
		column, desc, err := ResolveOrdering(o, PlayerSortFields)
		if err != nil {
			return nil, err
		}
		byColumn := playerComparator(column)
		cmpFn = func(a, b domain.Player) int {
			if c := byColumn(a, b); c != 0 {
				if desc {
					return -c
				}
				return c
			}
			return cmp.Compare(a.ID, b.ID)
		}
	}
	slices.SortStableFunc(out, cmpFn)
	return out, nil
}

func (m *MemoryStore) GetPlayer(ctx context.Context, id int64) (domain.Player, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.players[id]
	if !ok {
		return domain.Player{}, false, nil
	}
	if pt, ok := m.assignments[id]; ok {
		p.PlayerTeam = copyPlayerTeam(pt)
	}
	return p, true, nil
}

func (m *MemoryStore) ListPositions(ctx context.Context) ([]domain.Position, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Position, 0, len(m.positions))
	for _, p := range m.positions {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b domain.Position) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (m *MemoryStore) CreateTeam(ctx context.Context, in domain.CreateTeam) (domain.Team, error) {
	if err := validation.ValidateName(in.Name); err != nil {
		return domain.Team{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.teams {
		if t.Name == in.Name {
			return domain.Team{}, fmt.Errorf("team %q: %w", in.Name, ErrConflict)
		}
	}
	t := domain.Team{ID: m.nextTeam, Name: in.Name, City: in.City}
	m.nextTeam++
	m.teams[t.ID] = t
	return t, nil
}

func (m *MemoryStore) CreatePosition(ctx context.Context, in domain.CreatePosition) (domain.Position, error) {
	if err := validation.ValidateName(in.Name); err != nil {
		return domain.Position{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.positions {
		if p.Name == in.Name {
			return domain.Position{}, fmt.Errorf("position %q: %w", in.Name, ErrConflict)
		}
	}
	p := domain.Position{ID: m.nextPosition, Name: in.Name}
	m.nextPosition++
	m.positions[p.ID] = p
	return p, nil
}

func (m *MemoryStore) CreatePlayer(ctx context.Context, in domain.CreatePlayer) (domain.Player, error) {
	if err := ValidateCreatePlayer(in); err != nil {
		return domain.Player{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p := domain.Player{
		ID:        m.nextPlayer,
		Name:      in.Name,
		BirthDate: truncateToDate(in.BirthDate),
		Weight:    in.Weight,
		Height:    in.Height,
		Origin:    in.Origin,
	}
	m.nextPlayer++
	m.players[p.ID] = p
	return p, nil
}

func (m *MemoryStore) AssignPlayer(ctx context.Context, pt domain.PlayerTeam) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.players[pt.PlayerID]; !ok {
		return fmt.Errorf("player %d: %w", pt.PlayerID, ErrNotFound)
	}
	if _, ok := m.teams[pt.TeamID]; !ok {
		return fmt.Errorf("team %d: %w", pt.TeamID, ErrNotFound)
	}
	if pt.PositionID != nil {
		if _, ok := m.positions[*pt.PositionID]; !ok {
			return fmt.Errorf("position %d: %w", *pt.PositionID, ErrNotFound)
		}
	}
	m.assignments[pt.PlayerID] = *copyPlayerTeam(pt)
	return nil
}

func (m *MemoryStore) Ping(ctx context.Context) error { return nil }

func (m *MemoryStore) Close() error { return nil }

func copyPlayerTeam(pt domain.PlayerTeam) *domain.PlayerTeam {
	c := pt
	if pt.PositionID != nil {
		id := *pt.PositionID
		c.PositionID = &id
	}
	return &c
}

// truncateToDate drops the time of day; birth dates are stored as dates.
func truncateToDate(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

func teamComparator(column string) func(a, b domain.Team) int {
	switch column {
	case "name":
		return func(a, b domain.Team) int { return cmp.Compare(a.Name, b.Name) }
	case "city":
		return func(a, b domain.Team) int { return cmp.Compare(a.City, b.City) }
	default:
		return func(a, b domain.Team) int { return cmp.Compare(a.ID, b.ID) }
	}
}

func playerComparator(column string) func(a, b domain.Player) int {
	switch column {
	case "name":
		return func(a, b domain.Player) int { return cmp.Compare(a.Name, b.Name) }
	case "birth_date":
		return func(a, b domain.Player) int { return a.BirthDate.Compare(b.BirthDate) }
	case "weight":
		return func(a, b domain.Player) int { return cmp.Compare(a.Weight, b.Weight) }
	case "height":
		return func(a, b domain.Player) int { return cmp.Compare(a.Height, b.Height) }
	case "origin":
		return func(a, b domain.Player) int { return cmp.Compare(a.Origin, b.Origin) }
	default:
		return func(a, b domain.Player) int { return cmp.Compare(a.ID, b.ID) }
	}
}
