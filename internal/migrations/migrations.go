// Package migrations applies the embedded PostgreSQL schema.
// It uses database/sql with the lib/pq driver so it can run without the pgx pool.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/lib/pq"
)

//go:embed sql/*.sql
var files embed.FS

const versionTable = "schema_migrations"

// Migration is one numbered schema change.
type Migration struct {
	Version string
	Up      string
	Down    string
}

// Load returns the embedded migrations ordered by version.
func Load() ([]Migration, error) {
	entries, err := fs.ReadDir(files, "sql")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	byVersion := make(map[string]*Migration)
	for _, entry := range entries {
		name := entry.Name()
		version, direction, ok := parseName(name)
		if !ok {
			continue
		}

		body, err := files.ReadFile("sql/" + name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}

		m, exists := byVersion[version]
		if !exists {
			m = &Migration{Version: version}
			byVersion[version] = m
		}
		if direction == "up" {
			m.Up = string(body)
		} else {
			m.Down = string(body)
		}
	}

	result := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		result = append(result, *m)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Version < result[j].Version })

	return result, nil
}

// Open connects to PostgreSQL through lib/pq.
func Open(ctx context.Context, databaseURL string) (*sql.DB, error) {
	connector, err := pq.NewConnector(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	db := sql.OpenDB(connector)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Up applies every migration that has not been recorded yet.
// Returns the versions that were applied.
func Up(ctx context.Context, db *sql.DB) ([]string, error) {
	migrations, err := Load()
	if err != nil {
		return nil, err
	}

	if err := ensureVersionTable(ctx, db); err != nil {
		return nil, err
	}

	applied, err := appliedVersions(ctx, db)
	if err != nil {
		return nil, err
	}

	var done []string
	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}
		if err := apply(ctx, db, m.Up, `INSERT INTO `+pq.QuoteIdentifier(versionTable)+` (version) VALUES ($1)`, m.Version); err != nil {
			return done, fmt.Errorf("apply migration %s: %w", m.Version, err)
		}
		done = append(done, m.Version)
	}

	return done, nil
}

// Down reverts every recorded migration, newest first.
// Returns the versions that were reverted.
func Down(ctx context.Context, db *sql.DB) ([]string, error) {
	migrations, err := Load()
	if err != nil {
		return nil, err
	}

	if err := ensureVersionTable(ctx, db); err != nil {
		return nil, err
	}

	applied, err := appliedVersions(ctx, db)
	if err != nil {
		return nil, err
	}

	var done []string
	for i := len(migrations) - 1; i >= 0; i-- {
		m := migrations[i]
		if !applied[m.Version] {
			continue
		}
		if err := apply(ctx, db, m.Down, `DELETE FROM `+pq.QuoteIdentifier(versionTable)+` WHERE version = $1`, m.Version); err != nil {
			return done, fmt.Errorf("revert migration %s: %w", m.Version, err)
		}
		done = append(done, m.Version)
	}

	return done, nil
}

// Reset reverts and reapplies every migration. Used by integration tests.
func Reset(ctx context.Context, db *sql.DB) error {
	if _, err := Down(ctx, db); err != nil {
		return err
	}
	if _, err := Up(ctx, db); err != nil {
		return err
	}
	return nil
}

func apply(ctx context.Context, db *sql.DB, script, record, version string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, script); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, record, version); err != nil {
		return err
	}

	return tx.Commit()
}

func ensureVersionTable(ctx context.Context, db *sql.DB) error {
	query := `CREATE TABLE IF NOT EXISTS ` + pq.QuoteIdentifier(versionTable) + ` (
		version    TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create %s: %w", versionTable, err)
	}
	return nil
}

func appliedVersions(ctx context.Context, db *sql.DB) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, `SELECT version FROM `+pq.QuoteIdentifier(versionTable))
	if err != nil {
		return nil, fmt.Errorf("read applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

// parseName splits "000001_blog_posts.up.sql" into version and direction.
func parseName(name string) (version, direction string, ok bool) {
	base, found := strings.CutSuffix(name, ".sql")
	if !found {
		return "", "", false
	}

	switch {
	case strings.HasSuffix(base, ".up"):
		direction = "up"
	case strings.HasSuffix(base, ".down"):
		direction = "down"
	default:
		return "", "", false
	}

	version, _, _ = strings.Cut(base, "_")
	return version, direction, version != ""
}
