package search

import (
	"encoding/json"
	"strings"

	"rostersearch/internal/domain"
)

// noOrdering is the sentinel the search pages submit for "no sort".
const noOrdering = "none"

// ParseOrdering turns the raw sort parameter into an ordering.
//
// Accepted shapes are "field", "field:dir", "field dir" and a single-key JSON
// object {"field":"dir"}. An empty value or "none" yields nil. Anything else
// is forwarded as a field name unchanged so the store can reject it.
func ParseOrdering(raw string) *domain.Ordering {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, noOrdering) {
		return nil
	}

	if strings.HasPrefix(s, "{") {
		var obj map[string]string
		if err := json.Unmarshal([]byte(s), &obj); err == nil && len(obj) == 1 {
			for field, dir := range obj {
				return newOrdering(field, dir, s)
			}
		}
		return &domain.Ordering{Field: s, Direction: domain.SortDirectionAsc}
	}

	field, dir, found := strings.Cut(s, ":")
	if !found {
		field, dir, _ = strings.Cut(s, " ")
	}
	return newOrdering(field, dir, s)
}

func newOrdering(field, dir, raw string) *domain.Ordering {
	field = strings.TrimSpace(field)
	dir = strings.TrimSpace(dir)
	if field == "" {
		field = raw
	}
	if dir == "" {
		dir = string(domain.SortDirectionAsc)
	}
	return &domain.Ordering{Field: field, Direction: domain.SortDirection(dir)}
}
