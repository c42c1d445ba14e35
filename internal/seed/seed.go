// Package seed loads roster fixtures from YAML and writes them through a
// storage.Seeder.
package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"rostersearch/internal/domain"
	"rostersearch/internal/storage"
)

// ErrUnknownReference is returned when a player names a team or position
// that the fixture does not define.
var ErrUnknownReference = errors.New("unknown reference")

// dateLayout is the layout of birth_date values in fixtures.
const dateLayout = "2006-01-02"

// Fixture is the on-disk seed document.
type Fixture struct {
	Teams     []domain.CreateTeam     `yaml:"teams"`
	Positions []domain.CreatePosition `yaml:"positions"`
	Players   []PlayerFixture         `yaml:"players"`
}

// PlayerFixture is a player plus the names of its team and position.
type PlayerFixture struct {
	Name      string  `yaml:"name"`
	BirthDate string  `yaml:"birth_date"`
	Weight    int     `yaml:"weight"`
	Height    float64 `yaml:"height"`
	Origin    string  `yaml:"origin"`
	Team      string  `yaml:"team,omitempty"`
	Position  string  `yaml:"position,omitempty"`
}

// Summary reports what Apply created, with ids keyed by name.
type Summary struct {
	Teams       map[string]int64
	Positions   map[string]int64
	Players     map[string]int64
	Assignments int
}

// Load reads and parses a fixture file.
func Load(path string) (Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("read fixture: %w", err)
	}
	return Parse(data)
}

// Parse decodes a fixture document. Unknown keys are rejected.
func Parse(data []byte) (Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return Fixture{}, nil
		}
		return Fixture{}, fmt.Errorf("parse fixture: %w", err)
	}
	return f, nil
}

// Apply inserts the fixture. Teams and positions are created first so
// players can reference them by name. A player without a team is created
// without an association; a position without a team is an error.
func Apply(ctx context.Context, s storage.Seeder, f Fixture) (Summary, error) {
	sum := Summary{
		Teams:     make(map[string]int64, len(f.Teams)),
		Positions: make(map[string]int64, len(f.Positions)),
		Players:   make(map[string]int64, len(f.Players)),
	}

	for _, in := range f.Teams {
		t, err := s.CreateTeam(ctx, in)
		if err != nil {
			return sum, fmt.Errorf("create team %q: %w", in.Name, err)
		}
		sum.Teams[t.Name] = t.ID
	}
	for _, in := range f.Positions {
		p, err := s.CreatePosition(ctx, in)
		if err != nil {
			return sum, fmt.Errorf("create position %q: %w", in.Name, err)
		}
		sum.Positions[p.Name] = p.ID
	}

	for _, pf := range f.Players {
		var birth time.Time
		if pf.BirthDate != "" {
			var err error
			birth, err = time.Parse(dateLayout, pf.BirthDate)
			if err != nil {
				return sum, fmt.Errorf("player %q: %w: birth_date %q", pf.Name, storage.ErrValidation, pf.BirthDate)
			}
		}

		var teamID int64
		var positionID *int64
		if pf.Team != "" {
			id, ok := sum.Teams[pf.Team]
			if !ok {
				return sum, fmt.Errorf("player %q: team %q: %w", pf.Name, pf.Team, ErrUnknownReference)
			}
			teamID = id
		}
		if pf.Position != "" {
			if pf.Team == "" {
				return sum, fmt.Errorf("player %q: position %q requires a team: %w", pf.Name, pf.Position, storage.ErrValidation)
			}
			id, ok := sum.Positions[pf.Position]
			if !ok {
				return sum, fmt.Errorf("player %q: position %q: %w", pf.Name, pf.Position, ErrUnknownReference)
			}
			positionID = &id
		}

		p, err := s.CreatePlayer(ctx, domain.CreatePlayer{
			Name:      pf.Name,
			BirthDate: birth,
			Weight:    pf.Weight,
			Height:    pf.Height,
			Origin:    pf.Origin,
		})
		if err != nil {
			return sum, fmt.Errorf("create player %q: %w", pf.Name, err)
		}
		sum.Players[p.Name] = p.ID

		if teamID == 0 {
			continue
		}
		if err := s.AssignPlayer(ctx, domain.PlayerTeam{PlayerID: p.ID, TeamID: teamID, PositionID: positionID}); err != nil {
			return sum, fmt.Errorf("assign player %q: %w", pf.Name, err)
		}
		sum.Assignments++
	}
	return sum, nil
}
