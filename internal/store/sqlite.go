package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/faizmokh/bridgelog/internal/logbook"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteStore keeps ledgers in one table of a local SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite creates or opens the database at path and applies the schema.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode
//   - 5-second busy timeout for lock contention
func OpenSQLite(ctx context.Context, path string, now func() time.Time) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite store: empty path")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create directories: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLiteStore{db: db, now: clockOrNow(now)}, nil
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, identity string) (logbook.State, bool, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT state FROM ledger_state WHERE identity = ?`, identity,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return logbook.State{}, false, nil
	}
	if err != nil {
		return logbook.State{}, false, fmt.Errorf("load ledger %q: %w", identity, err)
	}

	state, err := decode([]byte(payload), s.now)
	if err != nil {
		return logbook.State{}, false, err
	}
	return state, true, nil
}

// Put implements Store as an upsert on identity.
func (s *SQLiteStore) Put(ctx context.Context, identity string, state logbook.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO ledger_state (identity, state, updated_at)
VALUES (?, ?, ?)
ON CONFLICT(identity) DO UPDATE SET
    state = excluded.state,
    updated_at = excluded.updated_at`,
		identity, string(data), s.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save ledger %q: %w", identity, err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
