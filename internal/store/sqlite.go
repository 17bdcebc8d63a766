package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jonathan/interview-coach/internal/types"
)

// SQLite stores one JSON record per session in a single table.
type SQLite struct {
	db    *sql.DB
	table string
}

// OpenSQLite opens the database at path. Call EnsureSchema before first use.
func OpenSQLite(path, table string) (*SQLite, error) {
	if table == "" {
		table = DefaultTable
	}
	if err := ValidateTableName(table); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection keeps in-memory databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	return &SQLite{db: db, table: table}, nil
}

func (s *SQLite) EnsureSchema(ctx context.Context) error {
	schema := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %s (
		id TEXT PRIMARY KEY,
		record TEXT NOT NULL,
		expires_at DATETIME,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`, s.table)
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}

func (s *SQLite) Put(ctx context.Context, sess *types.Session) error {
	record, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	var expires any
	if sess.ExpiresAt != nil {
		expires = sess.ExpiresAt.UTC()
	}

	_, err = s.db.ExecContext(ctx, fmt.Sprintf(
		`INSERT INTO %s (id, record, expires_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET record = excluded.record,
		   expires_at = excluded.expires_at, updated_at = excluded.updated_at`, s.table),
		sess.ID, string(record), expires, sess.CreatedAt.UTC(), sess.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("put session %s: %w", sess.ID, err)
	}
	return nil
}

func (s *SQLite) Get(ctx context.Context, id string) (*types.Session, error) {
	var record string
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT record FROM %s WHERE id = ?`, s.table), id,
	).Scan(&record)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}

	var sess types.Session
	if err := json.Unmarshal([]byte(record), &sess); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &sess, nil
}

// Update applies the patch to the stored record inside one transaction.
func (s *SQLite) Update(ctx context.Context, id string, patch types.SessionPatch) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("update session %s: %w", id, err)
	}
	defer func() { _ = tx.Rollback() }()

	var record string
	err = tx.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT record FROM %s WHERE id = ?`, s.table), id,
	).Scan(&record)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update session %s: %w", id, err)
	}

	var sess types.Session
	if err := json.Unmarshal([]byte(record), &sess); err != nil {
		return fmt.Errorf("decode session %s: %w", id, err)
	}
	patch.Apply(&sess)

	updated, err := json.Marshal(&sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET record = ?, updated_at = ? WHERE id = ?`, s.table),
		string(updated), time.Now().UTC(), id,
	); err != nil {
		return fmt.Errorf("update session %s: %w", id, err)
	}
	return tx.Commit()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

// DeleteExpired removes sessions whose expiry marker is before cutoff.
func (s *SQLite) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE expires_at IS NOT NULL AND expires_at < ?`, s.table),
		cutoff.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return res.RowsAffected()
}
