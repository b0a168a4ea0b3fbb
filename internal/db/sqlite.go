package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// sqlitePragmas are applied on every open. WAL keeps readers off the
// writer's lock; busy_timeout covers the odd overlapping write.
var sqlitePragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA busy_timeout = 10000",
	"PRAGMA synchronous = NORMAL",
}

// OpenSQLite opens (creating parent directories as needed) the SQLite file
// at path and applies sqlitePragmas. Pass ":memory:" for a throwaway
// database; the pool is then pinned to one connection because each
// connection to ":memory:" would otherwise see its own database.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite mkdir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	for _, p := range sqlitePragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite %s: %w", p, err)
		}
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite ping failed: %w", err)
	}
	return db, nil
}
