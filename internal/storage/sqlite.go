package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS kv_store (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	)`

const sqliteUpsert = `
	INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

// SQLite keeps every logical key as a row of kv_store in a local database.
// Open the handle with db.OpenSQLite.
type SQLite struct {
	db *sql.DB
}

// NewSQLite creates the kv_store table if needed and returns the store.
func NewSQLite(ctx context.Context, db *sql.DB) (*SQLite, error) {
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return nil, fmt.Errorf("create kv_store: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_store WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("kv_store select: %w", err)
	}
	return value, true, nil
}

func (s *SQLite) Set(ctx context.Context, key, value string) error {
	if _, err := s.db.ExecContext(ctx, sqliteUpsert, key, value, time.Now().Unix()); err != nil {
		return fmt.Errorf("kv_store upsert: %w", err)
	}
	return nil
}

func (s *SQLite) SetMulti(ctx context.Context, entries map[string]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	for k, v := range entries {
		if _, err := tx.ExecContext(ctx, sqliteUpsert, k, v, now); err != nil {
			return fmt.Errorf("kv_store upsert %s: %w", k, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
