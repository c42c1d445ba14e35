package storage

import (
	"fmt"
	"strings"

	"rostersearch/internal/domain"
)

// TeamSortFields maps the sortable team fields to their column names.
var TeamSortFields = map[string]string{
	"id":   "id",
	"name": "name",
	"city": "city",
}

// PlayerSortFields maps the sortable player fields to their column names.
var PlayerSortFields = map[string]string{
	"id":         "id",
	"name":       "name",
	"birth_date": "birth_date",
	"weight":     "weight",
	"height":     "height",
	"origin":     "origin",
}

// SortFieldsFor returns the sortable fields of an entity.
func SortFieldsFor(e domain.Entity) map[string]string {
	if e == domain.EntityPlayers {
		return PlayerSortFields
	}
	return TeamSortFields
}

// ResolveOrdering checks an ordering against the sortable fields and returns
// the column and whether the order is descending. An empty direction sorts
// ascending.
func ResolveOrdering(o domain.Ordering, fields map[string]string) (column string, desc bool, err error) {
	column, ok := fields[o.Field]
	if !ok {
		return "", false, fmt.Errorf("%w: unknown sort field %q", ErrInvalidOrdering, o.Field)
	}
	switch strings.ToLower(string(o.Direction)) {
	case "", string(domain.SortDirectionAsc):
		return column, false, nil
	case string(domain.SortDirectionDesc):
		return column, true, nil
	default:
		return "", false, fmt.Errorf("%w: unknown sort direction %q", ErrInvalidOrdering, o.Direction)
	}
}
