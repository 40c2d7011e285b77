// Package sqlstore keeps the ledger in a SQL database. Postgres is reached
// through the pgx database/sql driver and SQLite through modernc.org/sqlite;
// both dialects share the same queries apart from placeholders.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// Dialect names a supported database.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// ParseDialect validates a dialect name.
func ParseDialect(s string) (Dialect, error) {
	switch d := Dialect(strings.ToLower(s)); d {
	case Postgres, SQLite:
		return d, nil
	default:
		return "", fmt.Errorf("ParseDialect: unsupported database %q", s)
	}
}

// Store reads and writes the ledger tables.
type Store struct {
	db      *sql.DB
	dialect Dialect
	log     zerolog.Logger
}

// Open connects to dsn using dialect and verifies the connection.
func Open(ctx context.Context, dialect Dialect, dsn string, log zerolog.Logger) (*Store, error) {
	var (
		db  *sql.DB
		err error
	)
	switch dialect {
	case Postgres:
		db, err = openPostgres(dsn)
	case SQLite:
		db, err = openSQLite(dsn)
	default:
		return nil, fmt.Errorf("Open: unsupported database %q", dialect)
	}
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("Open: ping %s: %w", dialect, err)
	}

	return &Store{db: db, dialect: dialect, log: log}, nil
}

func openPostgres(databaseURL string) (*sql.DB, error) {
	config, err := pgx.ParseConfig(NormalizePostgresURL(databaseURL))
	if err != nil {
		return nil, fmt.Errorf("openPostgres: parsing database URL: %w", err)
	}
	return stdlib.OpenDB(*config), nil
}

func openSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("openSQLite: %w", err)
	}
	// One connection keeps ":memory:" databases and write locking simple.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("openSQLite: pragmas: %w", err)
	}
	return db, nil
}

// NormalizePostgresURL rewrites postgresql:// to postgres:// and disables TLS
// unless the URL sets sslmode itself.
func NormalizePostgresURL(databaseURL string) string {
	if strings.HasPrefix(databaseURL, "postgresql://") {
		databaseURL = "postgres://" + strings.TrimPrefix(databaseURL, "postgresql://")
	}
	if !strings.HasPrefix(databaseURL, "postgres://") {
		return databaseURL
	}
	if !strings.Contains(databaseURL, "sslmode=") {
		separator := "?"
		if strings.Contains(databaseURL, "?") {
			separator = "&"
		}
		databaseURL += separator + "sslmode=disable"
	}
	return databaseURL
}

// Dialect reports which database the store talks to.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// rebind rewrites ? placeholders to $n for Postgres.
func (s *Store) rebind(query string) string {
	if s.dialect != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
