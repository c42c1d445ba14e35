// Package sqlite implements storage.Store on SQLite using the cgo-free
// modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // CGO-less SQLite driver

	"rostersearch/internal/domain"
	"rostersearch/internal/search"
	"rostersearch/internal/storage"
	"rostersearch/internal/storage/sqlquery"
	"rostersearch/internal/validation"
)

const dateLayout = "2006-01-02"

type Store struct {
	db *sql.DB
}

var (
	_ storage.Store       = (*Store)(nil)
	_ storage.Seeder      = (*Store)(nil)
	_ storage.HealthCheck = (*Store)(nil)
)

// New opens the database, applies pending migrations and returns a Store.
// Foreign keys and a busy timeout are enabled on every pooled connection.
func New(dsn string) (*Store, error) {
	db, err := open(dsn)
	if err != nil {
		return nil, err
	}
	ctx := context.Background()
	if _, err := db.ExecContext(ctx, `PRAGMA journal_mode=WAL;`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Migrate applies pending migrations without keeping a Store open and
// returns how many were applied.
func Migrate(ctx context.Context, dsn string) (int, error) {
	db, err := open(dsn)
	if err != nil {
		return 0, err
	}
	defer db.Close()
	return runMigrations(ctx, db)
}

// Status returns schema_migrations and schema_info summary for the given DSN without creating a Store.
func Status(dsn string) (string, error) {
	db, err := open(dsn)
	if err != nil {
		return "", err
	}
	defer db.Close()
	// tables may not exist yet; missing rows read as zero values
	var latest int
	_ = db.QueryRow(`SELECT COALESCE(MAX(version),0) FROM schema_migrations`).Scan(&latest)
	var schemaVersion, minSupported int
	var appVersion, appliedAt string
	_ = db.QueryRow(`SELECT schema_version, min_supported_schema, app_version, applied_at FROM schema_info WHERE id=1`).Scan(&schemaVersion, &minSupported, &appVersion, &appliedAt)
	var count int
	_ = db.QueryRow(`SELECT COUNT(1) FROM schema_migrations`).Scan(&count)
	return fmt.Sprintf("schema_version=%d applied=%d latest=%d app_version=%s applied_at=%s min_supported=%d", schemaVersion, count, latest, appVersion, appliedAt, minSupported), nil
}

func open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", withPragmas(dsn))
	if err != nil {
		return nil, err
	}
	if isMemoryDSN(dsn) {
		// each connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

// withPragmas appends the connection pragmas the store relies on unless the
// DSN already sets them.
func withPragmas(dsn string) string {
	var add []string
	if !strings.Contains(dsn, "foreign_keys") {
		add = append(add, "_pragma=foreign_keys(1)")
	}
	if !strings.Contains(dsn, "busy_timeout") {
		add = append(add, "_pragma=busy_timeout(5000)")
	}
	if len(add) == 0 {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(add, "&")
}

func isMemoryDSN(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks database connectivity (implements storage.HealthCheck).
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Stats returns connection pool statistics (implements storage.HealthCheck).
func (s *Store) Stats() *storage.DBStats {
	st := s.db.Stats()
	return &storage.DBStats{
		MaxOpenConnections: st.MaxOpenConnections,
		OpenConnections:    st.OpenConnections,
		InUse:              st.InUse,
		Idle:               st.Idle,
		WaitCount:          st.WaitCount,
		WaitDuration:       st.WaitDuration.Nanoseconds(),
	}
}

func (s *Store) SearchTeams(ctx context.Context, q search.Query) ([]domain.Team, error) {
	st, err := sqlquery.Teams(q, sqlquery.Question)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, st.SQL, st.Args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.Team{}
	for rows.Next() {
		var t domain.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.City); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) SearchPlayers(ctx context.Context, q search.Query) ([]domain.Player, error) {
	st, err := sqlquery.Players(q, sqlquery.Question)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, st.SQL, st.Args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.Player{}
	for rows.Next() {
		p, err := scanPlayer(rows, st.WithPlayerTeam)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) GetPlayer(ctx context.Context, id int64) (domain.Player, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sqlquery.PlayerColumns+` FROM `+sqlquery.PlayerFrom+` WHERE p.id = ?`, id)
	p, err := scanPlayer(row, true)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Player{}, false, nil
		}
		return domain.Player{}, false, err
	}
	return p, true, nil
}

func (s *Store) ListPositions(ctx context.Context) ([]domain.Position, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM positions ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.Position{}
	for rows.Next() {
		var p domain.Position
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) CreateTeam(ctx context.Context, in domain.CreateTeam) (domain.Team, error) {
	if err := validation.ValidateName(in.Name); err != nil {
		return domain.Team{}, fmt.Errorf("%w: %v", storage.ErrValidation, err)
	}
	res, err := s.db.ExecContext(ctx, `INSERT INTO teams(name, city) VALUES(?, ?)`, in.Name, in.City)
	if err != nil {
		return domain.Team{}, storage.WrapIfConflict(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Team{}, err
	}
	return domain.Team{ID: id, Name: in.Name, City: in.City}, nil
}

func (s *Store) CreatePosition(ctx context.Context, in domain.CreatePosition) (domain.Position, error) {
	if err := validation.ValidateName(in.Name); err != nil {
		return domain.Position{}, fmt.Errorf("%w: %v", storage.ErrValidation, err)
	}
	res, err := s.db.ExecContext(ctx, `INSERT INTO positions(name) VALUES(?)`, in.Name)
	if err != nil {
		return domain.Position{}, storage.WrapIfConflict(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Position{}, err
	}
	return domain.Position{ID: id, Name: in.Name}, nil
}

func (s *Store) CreatePlayer(ctx context.Context, in domain.CreatePlayer) (domain.Player, error) {
	if err := storage.ValidateCreatePlayer(in); err != nil {
		return domain.Player{}, err
	}
	var birth sql.NullString
	if !in.BirthDate.IsZero() {
		birth = sql.NullString{String: in.BirthDate.UTC().Format(dateLayout), Valid: true}
	}
	res, err := s.db.ExecContext(ctx, `INSERT INTO players(name, birth_date, weight, height, origin) VALUES(?, ?, ?, ?, ?)`,
		in.Name, birth, in.Weight, in.Height, in.Origin)
	if err != nil {
		return domain.Player{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Player{}, err
	}
	p := domain.Player{ID: id, Name: in.Name, Weight: in.Weight, Height: in.Height, Origin: in.Origin}
	if birth.Valid {
		p.BirthDate, _ = time.Parse(dateLayout, birth.String)
	}
	return p, nil
}

func (s *Store) AssignPlayer(ctx context.Context, pt domain.PlayerTeam) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO player_teams(player_id, team_id, position_id) VALUES(?, ?, ?)
		ON CONFLICT(player_id) DO UPDATE SET team_id=excluded.team_id, position_id=excluded.position_id`,
		pt.PlayerID, pt.TeamID, pt.PositionID)
	if err != nil {
		return storage.WrapIfForeignKey(err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPlayer(row scanner, withPlayerTeam bool) (domain.Player, error) {
	var p domain.Player
	var birth sql.NullString
	var ptPlayer, ptTeam, ptPosition sql.NullInt64
	if err := row.Scan(&p.ID, &p.Name, &birth, &p.Weight, &p.Height, &p.Origin, &ptPlayer, &ptTeam, &ptPosition); err != nil {
		return domain.Player{}, err
	}
	if birth.Valid && birth.String != "" {
		t, err := parseDate(birth.String)
		if err != nil {
			return domain.Player{}, fmt.Errorf("player %d: birth_date %q: %w", p.ID, birth.String, err)
		}
		p.BirthDate = t
	}
	if withPlayerTeam && ptPlayer.Valid {
		p.PlayerTeam = &domain.PlayerTeam{PlayerID: ptPlayer.Int64, TeamID: ptTeam.Int64}
		if ptPosition.Valid {
			id := ptPosition.Int64
			p.PlayerTeam.PositionID = &id
		}
	}
	return p, nil
}

// parseDate accepts the stored date layout and full timestamps written by
// other tools.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
