// Package storage is the persistence boundary for the listings service: a
// small key-value contract with one logical key per persisted aggregate.
//
// Backends:
//
//	Memory   : process-local map, used by tests and STORAGE_BACKEND=memory
//	SQLite   : local file, the default
//	Redis    : shared store, MULTI/EXEC for SetMulti
//	Postgres : kv_store table, one transaction per SetMulti
package storage

import (
	"context"
	"encoding/json"
	"fmt"
)

// Logical keys. The names match the keys the browser client used so an
// exported localStorage dump can be imported as-is.
const (
	KeyJobs      = "jobAppAllJobs"
	KeyFavorites = "jobAppFavorites"
	KeyProfile   = "jobAppUserProfile"
)

// Store is the contract every backend satisfies. Get reports ok=false when
// the key has never been written.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	// SetMulti writes every entry or none of them.
	SetMulti(ctx context.Context, entries map[string]string) error
}

// GetJSON reads key and decodes it into dst. A missing key is reported as
// hit=false. Undecodable data is reported as a miss together with the decode
// error so callers can decide whether to log and reseed.
func GetJSON(ctx context.Context, s Store, key string, dst any) (hit bool, err error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("storage get %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, &CorruptError{Key: key, Err: err}
	}
	return true, nil
}

// Encode marshals v for storage under key.
func Encode(key string, v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("storage encode %s: %w", key, err)
	}
	return string(b), nil
}

// SetJSON encodes v and writes it under key.
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := Encode(key, v)
	if err != nil {
		return err
	}
	if err := s.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("storage set %s: %w", key, err)
	}
	return nil
}

// CorruptError reports a stored value that no longer decodes.
type CorruptError struct {
	Key string
	Err error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("storage: corrupt value under %q: %v", e.Key, e.Err)
}

func (e *CorruptError) Unwrap() error { return e.Err }
