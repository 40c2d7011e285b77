package sqlstore

import (
	"context"
	"crypto/sha256"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"
)

//go:embed migrations
var migrationFiles embed.FS

// Migration is one versioned schema file.
type Migration struct {
	Version  int
	Name     string
	Filename string
	SQL      string
	Checksum string
}

// migrationPattern matches migration files: 0001_name.sql
var migrationPattern = regexp.MustCompile(`^(\d{4})_(.+)\.sql$`)

// Migrations returns the embedded migrations for dialect ordered by version.
func Migrations(dialect Dialect) ([]Migration, error) {
	return readMigrations(migrationFiles, path.Join("migrations", string(dialect)))
}

func readMigrations(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("readMigrations: reading %s: %w", dir, err)
	}

	var migrations []Migration
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		matches := migrationPattern.FindStringSubmatch(entry.Name())
		if matches == nil {
			continue
		}
		version, err := strconv.Atoi(matches[1])
		if err != nil {
			continue
		}

		content, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("readMigrations: reading %s: %w", entry.Name(), err)
		}

		migrations = append(migrations, Migration{
			Version:  version,
			Name:     matches[2],
			Filename: entry.Name(),
			SQL:      string(content),
			Checksum: fmt.Sprintf("%x", sha256.Sum256(content)),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

// Migrate applies every embedded migration not yet recorded in
// schema_migrations and returns how many ran.
func (s *Store) Migrate(ctx context.Context) (int, error) {
	if err := s.ensureSchemaMigrationsTable(ctx); err != nil {
		return 0, err
	}

	migrations, err := Migrations(s.dialect)
	if err != nil {
		return 0, err
	}

	applied, err := s.appliedVersions(ctx)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, m := range migrations {
		if applied[m.Version] {
			s.log.Debug().Int("version", m.Version).Str("name", m.Name).Msg("Migration already applied")
			continue
		}
		if err := s.applyMigration(ctx, m); err != nil {
			return count, fmt.Errorf("Migrate: %04d_%s: %w", m.Version, m.Name, err)
		}
		s.log.Info().Int("version", m.Version).Str("name", m.Name).Msg("Migration applied")
		count++
	}
	return count, nil
}

func (s *Store) ensureSchemaMigrationsTable(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version     INTEGER PRIMARY KEY,
			name        TEXT NOT NULL,
			checksum    TEXT NOT NULL,
			applied_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("ensureSchemaMigrationsTable: %w", err)
	}
	return nil
}

func (s *Store) appliedVersions(ctx context.Context) (map[int]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT version FROM schema_migrations ORDER BY version`)
	if err != nil {
		return nil, fmt.Errorf("appliedVersions: query: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("appliedVersions: scan: %w", err)
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

func (s *Store) applyMigration(ctx context.Context, m Migration) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return fmt.Errorf("exec: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		s.rebind(`INSERT INTO schema_migrations (version, name, checksum) VALUES (?, ?, ?)`),
		m.Version, m.Name, m.Checksum,
	); err != nil {
		return fmt.Errorf("record: %w", err)
	}
	return tx.Commit()
}
