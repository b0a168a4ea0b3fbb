package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis stores each logical key as a plain string under prefix+key.
type Redis struct {
	rdb    *redis.Client
	prefix string
}

// NewRedis returns a Redis store. prefix namespaces every key, e.g. "listings:".
func NewRedis(rdb *redis.Client, prefix string) *Redis {
	return &Redis{rdb: rdb, prefix: prefix}
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	s, err := r.rdb.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis GET: %w", err)
	}
	return s, true, nil
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	if err := r.rdb.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis SET: %w", err)
	}
	return nil
}

// SetMulti wraps the writes in MULTI/EXEC.
func (r *Redis) SetMulti(ctx context.Context, entries map[string]string) error {
	if len(entries) == 0 {
		return nil
	}
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for k, v := range entries {
			pipe.Set(ctx, r.prefix+k, v, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis MULTI: %w", err)
	}
	return nil
}
