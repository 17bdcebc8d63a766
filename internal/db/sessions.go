package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/interview-coach/internal/store"
	"github.com/jonathan/interview-coach/internal/types"
)

var _ store.Store = (*DB)(nil)

// EnsureSchema creates the sessions table and its expiry index if they do not exist
func (db *DB) EnsureSchema(ctx context.Context) error {
	_, err := db.pool.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %[1]s (
			id TEXT PRIMARY KEY,
			record JSONB NOT NULL,
			expires_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS %[1]s_expires_at_idx ON %[1]s (expires_at);`, db.table))
	if err != nil {
		return fmt.Errorf("failed to create sessions table: %w", err)
	}
	return nil
}

// Put inserts or replaces a session record
func (db *DB) Put(ctx context.Context, s *types.Session) error {
	record, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	_, err = db.pool.Exec(ctx, fmt.Sprintf(
		`INSERT INTO %s (id, record, expires_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET record = $2, expires_at = $3, updated_at = $5`, db.table),
		s.ID, record, s.ExpiresAt, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to put session %s: %w", s.ID, err)
	}
	return nil
}

// Get retrieves a session by ID. Returns nil, nil when no record exists.
func (db *DB) Get(ctx context.Context, id string) (*types.Session, error) {
	var record []byte
	err := db.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT record FROM %s WHERE id = $1`, db.table), id,
	).Scan(&record)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session %s: %w", id, err)
	}

	var s types.Session
	if err := json.Unmarshal(record, &s); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", id, err)
	}
	return &s, nil
}

// Update overwrites the top-level fields named by patch. JSONB || replaces each key
// present on the right-hand side wholesale.
func (db *DB) Update(ctx context.Context, id string, patch types.SessionPatch) error {
	doc, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("failed to marshal patch: %w", err)
	}

	tag, err := db.pool.Exec(ctx, fmt.Sprintf(
		`UPDATE %s SET record = record || $2::jsonb, updated_at = $3 WHERE id = $1`, db.table),
		id, doc, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to update session %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteExpired removes sessions whose expiry marker is before cutoff and returns the count
func (db *DB) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := db.pool.Exec(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE expires_at IS NOT NULL AND expires_at < $1`, db.table),
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
