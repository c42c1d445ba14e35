// Package sqlquery compiles search.Query descriptors into parameterised SQL
// shared by the SQLite and PostgreSQL stores.
package sqlquery

import (
	"fmt"
	"strings"

	"rostersearch/internal/domain"
	"rostersearch/internal/search"
	"rostersearch/internal/storage"
)

// Dialect selects the placeholder style.
type Dialect int

const (
	// Question uses ? placeholders (SQLite).
	Question Dialect = iota
	// Dollar uses $n placeholders (PostgreSQL).
	Dollar
)

// Statement is a compiled query.
type Statement struct {
	SQL  string
	Args []any
	// WithPlayerTeam reports whether the association columns should be
	// attached to each row.
	WithPlayerTeam bool
}

// TeamColumns is the column list scanned by team queries.
const TeamColumns = "id, name, city"

// PlayerColumns is the column list scanned by player queries. The last three
// columns come from the left-joined association and may be NULL.
const PlayerColumns = "p.id, p.name, p.birth_date, p.weight, p.height, p.origin, pt.player_id, pt.team_id, pt.position_id"

// PlayerFrom joins players with their (optional) association.
const PlayerFrom = "players p LEFT JOIN player_teams pt ON pt.player_id = p.id"

// Teams compiles a team search.
func Teams(q search.Query, d Dialect) (Statement, error) {
	if q.Entity() != domain.EntityTeams {
		return Statement{}, fmt.Errorf("sqlquery: expected a team query, got %q", q.Entity())
	}
	b := builder{dialect: d}
	b.write("SELECT " + TeamColumns + " FROM teams WHERE name LIKE " + b.bind(ContainsPattern(q.NameContains())) + ` ESCAPE '\'`)

	order := " ORDER BY id ASC"
	if o, ok := q.OrderBy(); ok {
		column, desc, err := storage.ResolveOrdering(o, storage.TeamSortFields)
		if err != nil {
			return Statement{}, err
		}
		order = " ORDER BY " + column + direction(desc) + ", id ASC"
	}
	b.write(order)
	return Statement{SQL: b.sql.String(), Args: b.args}, nil
}

// Players compiles a player search.
func Players(q search.Query, d Dialect) (Statement, error) {
	if q.Entity() != domain.EntityPlayers {
		return Statement{}, fmt.Errorf("sqlquery: expected a player query, got %q", q.Entity())
	}
	b := builder{dialect: d}
	b.write("SELECT " + PlayerColumns + " FROM " + PlayerFrom)
	b.write(" WHERE p.name LIKE " + b.bind(ContainsPattern(q.NameContains())) + ` ESCAPE '\'`)
	if pos, ok := q.PositionFilter(); ok {
		b.write(" AND CAST(pt.position_id AS TEXT) = " + b.bind(pos))
	}

	order := " ORDER BY p.id ASC"
	if o, ok := q.OrderBy(); ok {
		column, desc, err := storage.ResolveOrdering(o, storage.PlayerSortFields)
		if err != nil {
			return Statement{}, err
		}
		order = " ORDER BY p." + column + direction(desc) + nulls(column, desc) + ", p.id ASC"
	}
	b.write(order)
	return Statement{
		SQL:            b.sql.String(),
		Args:           b.args,
		WithPlayerTeam: q.Includes(search.RelationPlayerTeam),
	}, nil
}

// ContainsPattern returns a LIKE pattern matching s anywhere, with LIKE
// metacharacters escaped by backslash.
func ContainsPattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

func direction(desc bool) string {
	if desc {
		return " DESC"
	}
	return " ASC"
}

// nullableColumns lists sortable columns that may hold NULL.
var nullableColumns = map[string]bool{"birth_date": true}

// nulls pins NULL placement for nullable columns so both dialects sort a
// missing value as the lowest one, like the in-memory store's zero value.
func nulls(column string, desc bool) string {
	if !nullableColumns[column] {
		return ""
	}
	if desc {
		return " NULLS LAST"
	}
	return " NULLS FIRST"
}

type builder struct {
	dialect Dialect
	sql     strings.Builder
	args    []any
}

func (b *builder) write(s string) { b.sql.WriteString(s) }

// bind records an argument and returns its placeholder.
func (b *builder) bind(v any) string {
	b.args = append(b.args, v)
	if b.dialect == Dollar {
		return fmt.Sprintf("$%d", len(b.args))
	}
	return "?"
}
