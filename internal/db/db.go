// Package db stores practice sessions in PostgreSQL.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/interview-coach/internal/store"
)

// ApplicationName tags the coach's connections in pg_stat_activity.
const ApplicationName = "interview-coach"

// connectTimeout bounds the initial ping.
const connectTimeout = 10 * time.Second

// DB is a session table behind a pgx pool.
type DB struct {
	pool  *pgxpool.Pool
	table string
}

// ConnectTable opens a pool for databaseURL and verifies it. Sessions go in table, or in
// store.DefaultTable when table is empty.
func ConnectTable(ctx context.Context, databaseURL, table string) (*DB, error) {
	if table == "" {
		table = store.DefaultTable
	}
	if err := store.ValidateTableName(table); err != nil {
		return nil, err
	}

	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid database URL: %w", err)
	}
	if cfg.ConnConfig.RuntimeParams["application_name"] == "" {
		cfg.ConnConfig.RuntimeParams["application_name"] = ApplicationName
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &DB{pool: pool, table: table}, nil
}

// Close releases the pool.
func (db *DB) Close() error {
	if db.pool != nil {
		db.pool.Close()
	}
	return nil
}

// Table is the sessions table name.
func (db *DB) Table() string { return db.table }
