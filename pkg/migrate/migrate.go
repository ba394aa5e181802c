package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/pressly/goose/v3"
)

// DefaultDir is where new migrations are written during development.
const DefaultDir = "pkg/migrate/migrations"

//go:embed migrations/*.sql
var embedded embed.FS

// Source returns the migration set: dir on disk when set, the embedded set otherwise.
func Source(dir string) (fs.FS, error) {
	if dir != "" {
		if _, err := os.Stat(dir); err != nil {
			return nil, fmt.Errorf("migrations dir %q: %w", dir, err)
		}
		return os.DirFS(dir), nil
	}
	return fs.Sub(embedded, "migrations")
}

// AppliedMigration is one step of an up or down run.
type AppliedMigration struct {
	Version  int64
	Path     string
	Duration time.Duration
}

// MigrationStatus reports whether a migration has been applied.
type MigrationStatus struct {
	Version   int64
	Path      string
	Applied   bool
	AppliedAt time.Time
}

func newProvider(db *sql.DB, fsys fs.FS) (*goose.Provider, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	if fsys == nil {
		return nil, fmt.Errorf("migration source is required")
	}
	// migrations target Postgres only
	p, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		return nil, fmt.Errorf("goose provider: %w", err)
	}
	return p, nil
}

func toApplied(results []*goose.MigrationResult) []AppliedMigration {
	out := make([]AppliedMigration, 0, len(results))
	for _, r := range results {
		if r == nil || r.Source == nil {
			continue
		}
		out = append(out, AppliedMigration{Version: r.Source.Version, Path: r.Source.Path, Duration: r.Duration})
	}
	return out
}

// Up applies every pending migration.
func Up(ctx context.Context, db *sql.DB, fsys fs.FS) ([]AppliedMigration, error) {
	p, err := newProvider(db, fsys)
	if err != nil {
		return nil, err
	}
	results, err := p.Up(ctx)
	if err != nil {
		return toApplied(results), fmt.Errorf("goose up: %w", err)
	}
	return toApplied(results), nil
}

// Down rolls back the most recent migration.
func Down(ctx context.Context, db *sql.DB, fsys fs.FS) ([]AppliedMigration, error) {
	p, err := newProvider(db, fsys)
	if err != nil {
		return nil, err
	}
	result, err := p.Down(ctx)
	if err != nil {
		return nil, fmt.Errorf("goose down: %w", err)
	}
	return toApplied([]*goose.MigrationResult{result}), nil
}

// Status lists every known migration with its applied state.
func Status(ctx context.Context, db *sql.DB, fsys fs.FS) ([]MigrationStatus, error) {
	p, err := newProvider(db, fsys)
	if err != nil {
		return nil, err
	}
	statuses, err := p.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("goose status: %w", err)
	}
	out := make([]MigrationStatus, 0, len(statuses))
	for _, s := range statuses {
		if s == nil || s.Source == nil {
			continue
		}
		out = append(out, MigrationStatus{
			Version:   s.Source.Version,
			Path:      s.Source.Path,
			Applied:   s.State == goose.StateApplied,
			AppliedAt: s.AppliedAt,
		})
	}
	return out, nil
}

// MigrateToVersion moves the schema up or down to targetVersion (YYYYMMDDHHMMSS).
func MigrateToVersion(ctx context.Context, db *sql.DB, fsys fs.FS, targetVersion string) ([]AppliedMigration, error) {
	target, err := strconv.ParseInt(targetVersion, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS): %w", targetVersion, err)
	}

	p, err := newProvider(db, fsys)
	if err != nil {
		return nil, err
	}
	current, err := p.GetDBVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("get db version: %w", err)
	}

	var results []*goose.MigrationResult
	switch {
	case current == target:
		return nil, nil
	case current < target:
		results, err = p.UpTo(ctx, target)
	default:
		results, err = p.DownTo(ctx, target)
	}
	if err != nil {
		return toApplied(results), fmt.Errorf("goose migrate to %d: %w", target, err)
	}
	return toApplied(results), nil
}
