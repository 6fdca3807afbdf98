package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// timeFormat is how created_at is stored. RFC3339 in UTC keeps string
// comparison and MAX() consistent with time ordering.
const timeFormat = time.RFC3339

// Store is the append-only check log plus its aggregation queries.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and bootstraps the
// schema. The checks table is append-only: the application only ever
// inserts and aggregates, never updates or deletes.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// An in-memory database exists per connection; collapse the pool so
	// every statement sees the same one.
	if strings.Contains(path, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS checks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ip_hash TEXT NOT NULL,
		isp TEXT NOT NULL,
		city TEXT NOT NULL DEFAULT '',
		state TEXT NOT NULL DEFAULT '',
		service_name TEXT NOT NULL,
		service_url TEXT NOT NULL,
		is_blocked INTEGER NOT NULL,
		response_time_ms INTEGER,
		created_at TEXT NOT NULL
	);
	`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create checks table: %w", err)
	}

	for _, stmt := range []string{
		`CREATE INDEX IF NOT EXISTS idx_checks_created_at ON checks(created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_checks_service ON checks(service_name, created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_checks_isp ON checks(isp, created_at);`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to create index: %w", err)
		}
	}

	return &Store{db: db}, nil
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeFormat, s)
}
