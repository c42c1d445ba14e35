package domain

// SortDirection is the ordering direction requested by a caller.
// Values are not validated here; storage decides what it accepts.
type SortDirection string

const (
	SortDirectionAsc  SortDirection = "asc"
	SortDirectionDesc SortDirection = "desc"
)

// Ordering is an opaque field/direction pair forwarded to the storage layer.
type Ordering struct {
	Field     string        `json:"field"`
	Direction SortDirection `json:"direction,omitempty"`
}

// Entity names a searchable collection.
type Entity string

const (
	EntityTeams   Entity = "teams"
	EntityPlayers Entity = "players"
)
