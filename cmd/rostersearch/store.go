package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"rostersearch/internal/config"
	"rostersearch/internal/domain"
	"rostersearch/internal/observability"
	"rostersearch/internal/search"
	"rostersearch/internal/seed"
	"rostersearch/internal/storage"
	"rostersearch/internal/storage/postgres"
	"rostersearch/internal/storage/sqlite"
)

// backend is a store that can also be seeded. Every driver provides both.
type backend interface {
	storage.Store
	storage.Seeder
}

// openStore opens the store for the configured driver. SQLite and
// PostgreSQL apply pending migrations on open.
func openStore(cfg config.DatabaseConfig) (backend, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return storage.NewMemoryStore(), nil
	case config.DriverSQLite:
		st, err := sqlite.New(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return st, nil
	case config.DriverPostgres:
		st, err := postgres.New(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// errPartialSeed reports a fixture whose teams only partly exist in the store.
var errPartialSeed = errors.New("fixture partially present in store")

// seedStore loads the fixture at path into st. Team names decide whether the
// fixture was applied before: all present skips it, none present applies
// it, and a mix is refused before anything is written.
func seedStore(ctx context.Context, logger observability.Logger, st backend, path string) error {
	f, err := seed.Load(path)
	if err != nil {
		return err
	}

	present, err := existingTeams(ctx, st, f.Teams)
	if err != nil {
		return fmt.Errorf("check existing teams: %w", err)
	}
	switch {
	case len(f.Teams) > 0 && len(present) == len(f.Teams):
		logger.Warn("seed data already present, skipping", "path", path, "teams", len(present))
		return nil
	case len(present) > 0:
		return fmt.Errorf("%w: %d of %d teams exist (%s)", errPartialSeed, len(present), len(f.Teams), strings.Join(present, ", "))
	}

	sum, err := seed.Apply(ctx, st, f)
	if err != nil {
		return fmt.Errorf("apply fixture (%d teams, %d positions, %d players written before the failure): %w",
			len(sum.Teams), len(sum.Positions), len(sum.Players), err)
	}
	logger.Info("seeded store",
		"path", path,
		"teams", len(sum.Teams),
		"positions", len(sum.Positions),
		"players", len(sum.Players),
		"assignments", sum.Assignments,
	)
	return nil
}

// existingTeams returns the fixture team names already stored.
func existingTeams(ctx context.Context, st storage.Store, teams []domain.CreateTeam) ([]string, error) {
	var present []string
	for _, in := range teams {
		found, err := st.SearchTeams(ctx, search.BuildTeamQuery(in.Name, nil))
		if err != nil {
			return nil, err
		}
		for _, t := range found {
			if t.Name == in.Name {
				present = append(present, in.Name)
				break
			}
		}
	}
	return present, nil
}

// runMigrations executes a -migrate command and returns the resulting
// schema status line.
func runMigrations(ctx context.Context, logger observability.Logger, cfg config.DatabaseConfig, cmd string) (string, error) {
	if cfg.Driver == config.DriverMemory {
		return "", errors.New("the memory driver has no schema to migrate")
	}
	switch cmd {
	case "up":
		var (
			applied int
			err     error
		)
		if cfg.Driver == config.DriverPostgres {
			applied, err = postgres.Migrate(ctx, cfg.DSN)
		} else {
			applied, err = sqlite.Migrate(ctx, cfg.DSN)
		}
		if err != nil {
			return "", fmt.Errorf("migrate up: %w", err)
		}
		logger.Info("migrations applied", "driver", cfg.Driver, "count", applied)
		return migrationStatus(cfg)
	case "status":
		return migrationStatus(cfg)
	default:
		return "", fmt.Errorf("unknown migrate command %q (want up or status)", cmd)
	}
}

func migrationStatus(cfg config.DatabaseConfig) (string, error) {
	if cfg.Driver == config.DriverPostgres {
		return postgres.Status(cfg.DSN)
	}
	return sqlite.Status(cfg.DSN)
}
