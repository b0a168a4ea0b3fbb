package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient creates and verifies a Redis client. Both URL form
// (redis://, rediss://) and a bare host:port are accepted.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	var opts *redis.Options
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		parsed, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("redis.ParseURL: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: redisURL}
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return rdb, nil
}
