package domain

import "time"

// Team is a row of the teams collection.
type Team struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	City string `json:"city,omitempty"`
}

// CreateTeam is the input for creating a team.
type CreateTeam struct {
	Name string `json:"name" yaml:"name"`
	City string `json:"city,omitempty" yaml:"city"`
}

// Position is a team role a player can be assigned to (e.g. "Center").
type Position struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CreatePosition is the input for creating a position.
type CreatePosition struct {
	Name string `json:"name" yaml:"name"`
}

// Player is a row of the players collection.
// PlayerTeam is only populated when the team association was requested.
type Player struct {
	ID         int64       `json:"id"`
	Name       string      `json:"name"`
	BirthDate  time.Time   `json:"birth_date"`
	Weight     int         `json:"weight"` // pounds
	Height     float64     `json:"height"` // feet
	Origin     string      `json:"origin"`
	PlayerTeam *PlayerTeam `json:"PlayerTeam,omitempty"`
}

// CreatePlayer is the input for creating a player.
type CreatePlayer struct {
	Name      string    `json:"name"`
	BirthDate time.Time `json:"birth_date"`
	Weight    int       `json:"weight"`
	Height    float64   `json:"height"`
	Origin    string    `json:"origin"`
}

// PlayerTeam associates a player with a team and the position they play there.
// A player has at most one association.
type PlayerTeam struct {
	PlayerID   int64  `json:"player_id"`
	TeamID     int64  `json:"team_id"`
	PositionID *int64 `json:"position_id"`
}
