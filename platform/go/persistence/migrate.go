package persistence

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// MigrationSource points goose at an embedded directory of SQL migrations.
type MigrationSource struct {
	FS  fs.FS
	Dir string
}

func newProvider(pool *pgxpool.Pool, src MigrationSource) (*goose.Provider, func() error, error) {
	sub, err := fs.Sub(src.FS, src.Dir)
	if err != nil {
		return nil, nil, fmt.Errorf("open migrations dir: %w", err)
	}

	db := stdlib.OpenDBFromPool(pool)
	provider, err := goose.NewProvider(goose.DialectPostgres, db, sub)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("goose provider: %w", err)
	}
	return provider, db.Close, nil
}

// Migrate applies all pending migrations and returns the resulting version.
func Migrate(ctx context.Context, pool *pgxpool.Pool, src MigrationSource) (int64, error) {
	provider, closeDB, err := newProvider(pool, src)
	if err != nil {
		return 0, err
	}
	defer closeDB() // nolint:errcheck

	if _, err := provider.Up(ctx); err != nil {
		return 0, fmt.Errorf("goose up: %w", err)
	}

	version, err := provider.GetDBVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("goose version: %w", err)
	}
	return version, nil
}

// MigrationStatus describes one migration as reported by goose.
type MigrationStatus struct {
	Version int64
	Source  string
	Applied bool
}

// Status lists every known migration and whether it has been applied.
func Status(ctx context.Context, pool *pgxpool.Pool, src MigrationSource) ([]MigrationStatus, error) {
	provider, closeDB, err := newProvider(pool, src)
	if err != nil {
		return nil, err
	}
	defer closeDB() // nolint:errcheck

	results, err := provider.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("goose status: %w", err)
	}

	out := make([]MigrationStatus, 0, len(results))
	for _, r := range results {
		out = append(out, MigrationStatus{
			Version: r.Source.Version,
			Source:  r.Source.Path,
			Applied: r.State == goose.StateApplied,
		})
	}
	return out, nil
}
