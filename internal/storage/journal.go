// Package storage provides the session journal: an append-only SQLite record
// of every update the engine accepted, for post-mortem inspection of a
// session. It is never read back during live operation and carries no state
// across restarts.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/glebarez/go-sqlite"
)

// Journal appends accepted updates to SQLite.
type Journal struct {
	db *sql.DB
}

// OpenJournal opens (or creates) the journal database with WAL mode enabled.
func OpenJournal(dbPath string) (*Journal, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS updates (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			entity_key TEXT NOT NULL,
			version INTEGER NOT NULL,
			payload BLOB NOT NULL,
			recorded_at INTEGER NOT NULL
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create updates table: %w", err)
	}

	return &Journal{db: db}, nil
}

// Record appends one accepted update. kind names the entity kind (balance,
// position, order_state, depth, last_trade), entityKey its composite key.
func (j *Journal) Record(ctx context.Context, kind, entityKey string, version int64, payload []byte) error {
	_, err := j.db.ExecContext(ctx,
		"INSERT INTO updates (id, kind, entity_key, version, payload, recorded_at) VALUES (?, ?, ?, ?, ?, ?)",
		uuid.NewString(), kind, entityKey, version, payload, time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to record %s update: %w", kind, err)
	}
	return nil
}

// Count returns the number of recorded updates, optionally filtered by kind
// (empty kind counts everything). Used by tests and session inspection
// tooling, not by the live path.
func (j *Journal) Count(ctx context.Context, kind string) (int64, error) {
	var n int64
	var err error
	if kind == "" {
		err = j.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM updates").Scan(&n)
	} else {
		err = j.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM updates WHERE kind = ?", kind).Scan(&n)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count updates: %w", err)
	}
	return n, nil
}

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}
