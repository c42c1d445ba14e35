// Package search builds the storage descriptors for keyword searches over
// teams and players.
//
// A Query is immutable: builders compose it from optional inputs and stores
// only read it through accessors.
package search

import (
	"encoding/json"

	"rostersearch/internal/domain"
)

// Relation names an association that a store should load alongside the rows.
type Relation string

// RelationPlayerTeam is the player to team/position association.
const RelationPlayerTeam Relation = "PlayerTeam"

// Query describes a single search against one collection.
type Query struct {
	entity       domain.Entity
	nameContains string
	positionID   string
	include      []Relation
	orderBy      *domain.Ordering
}

// BuildTeamQuery returns a query for teams whose name contains keyword.
// A nil sort leaves the order to the store.
func BuildTeamQuery(keyword string, sort *domain.Ordering) Query {
	return Query{
		entity:       domain.EntityTeams,
		nameContains: keyword,
		orderBy:      copyOrdering(sort),
	}
}

// BuildPlayerQuery returns a query for players whose name contains keyword.
// A non-empty positionFilter restricts results to players whose team
// association has that position and requests the association itself.
func BuildPlayerQuery(keyword string, sort *domain.Ordering, positionFilter string) Query {
	q := Query{
		entity:       domain.EntityPlayers,
		nameContains: keyword,
		orderBy:      copyOrdering(sort),
	}
	if positionFilter != "" {
		q.positionID = positionFilter
		q.include = []Relation{RelationPlayerTeam}
	}
	return q
}

func copyOrdering(o *domain.Ordering) *domain.Ordering {
	if o == nil || o.Field == "" {
		return nil
	}
	c := *o
	return &c
}

// Entity reports which collection the query targets.
func (q Query) Entity() domain.Entity { return q.entity }

// NameContains is the substring the name must contain.
func (q Query) NameContains() string { return q.nameContains }

// PositionFilter returns the position identifier and whether one was set.
func (q Query) PositionFilter() (string, bool) { return q.positionID, q.positionID != "" }

// Includes reports whether rel should be loaded with each row.
func (q Query) Includes(rel Relation) bool {
	for _, r := range q.include {
		if r == rel {
			return true
		}
	}
	return false
}

// Relations returns a copy of the included relations.
func (q Query) Relations() []Relation {
	if len(q.include) == 0 {
		return nil
	}
	out := make([]Relation, len(q.include))
	copy(out, q.include)
	return out
}

// OrderBy returns the requested ordering, if any.
func (q Query) OrderBy() (domain.Ordering, bool) {
	if q.orderBy == nil {
		return domain.Ordering{}, false
	}
	return *q.orderBy, true
}

// MarshalJSON renders the query in descriptor form:
//
//	{"where":{"name":{"contains":"John"},"PlayerTeam":{"position_id":"3"}},
//	 "include":{"PlayerTeam":true},"orderBy":{"name":"asc"}}
//
// Keys for absent clauses are omitted.
func (q Query) MarshalJSON() ([]byte, error) {
	where := map[string]any{
		"name": map[string]string{"contains": q.nameContains},
	}
	if q.positionID != "" {
		where[string(RelationPlayerTeam)] = map[string]string{"position_id": q.positionID}
	}
	out := map[string]any{"where": where}
	if len(q.include) > 0 {
		inc := make(map[string]bool, len(q.include))
		for _, r := range q.include {
			inc[string(r)] = true
		}
		out["include"] = inc
	}
	if q.orderBy != nil {
		out["orderBy"] = map[string]domain.SortDirection{q.orderBy.Field: q.orderBy.Direction}
	}
	return json.Marshal(out)
}

// String returns the descriptor JSON, for logging.
func (q Query) String() string {
	b, err := q.MarshalJSON()
	if err != nil {
		return "<invalid query>"
	}
	return string(b)
}
