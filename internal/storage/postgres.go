package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS kv_store (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`

const postgresUpsert = `
	INSERT INTO kv_store (key, value, updated_at)
	VALUES ($1, $2, NOW())
	ON CONFLICT (key) DO UPDATE
	SET value = EXCLUDED.value, updated_at = NOW()`

// Postgres keeps every logical key as a row of kv_store.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates the kv_store table if needed and returns the store.
func NewPostgres(ctx context.Context, pool *pgxpool.Pool) (*Postgres, error) {
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		return nil, fmt.Errorf("create kv_store: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := p.pool.QueryRow(ctx, `SELECT value FROM kv_store WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("kv_store select: %w", err)
	}
	return value, true, nil
}

func (p *Postgres) Set(ctx context.Context, key, value string) error {
	if _, err := p.pool.Exec(ctx, postgresUpsert, key, value); err != nil {
		return fmt.Errorf("kv_store upsert: %w", err)
	}
	return nil
}

func (p *Postgres) SetMulti(ctx context.Context, entries map[string]string) error {
	return pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		for k, v := range entries {
			if _, err := tx.Exec(ctx, postgresUpsert, k, v); err != nil {
				return fmt.Errorf("kv_store upsert %s: %w", k, err)
			}
		}
		return nil
	})
}
