// Package store provides sqlite-backed persistence for the warden
// service: the agent settings survive restarts in a single-file database.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Config holds store configuration.
type Config struct {
	// Path is the sqlite database file path. ":memory:" creates an
	// in-memory database, useful for tests.
	Path string

	// BusyTimeout is how long sqlite waits on a locked database before
	// failing a statement.
	BusyTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig(path string) Config {
	return Config{
		Path:        path,
		BusyTimeout: 5 * time.Second,
	}
}

// Store wraps the sqlite database handle.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the database and applies the schema.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	dsn := fmt.Sprintf("%s?_busy_timeout=%d&_journal_mode=WAL",
		cfg.Path, cfg.BusyTimeout.Milliseconds())

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// sqlite handles a single writer; more connections just contend.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate applies the schema. Statements are idempotent so migrate can
// run on every open.
func (s *Store) migrate(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS settings (
	id             INTEGER PRIMARY KEY CHECK (id = 1),
	server_address TEXT NOT NULL,
	agent_name     TEXT NOT NULL,
	home_x         INTEGER NOT NULL,
	home_y         INTEGER NOT NULL,
	home_z         INTEGER NOT NULL,
	updated_at     TIMESTAMP NOT NULL
);
`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
