// Package config loads and validates environment variables at startup.
// Fail-fast: if the selected backend is missing its connection string, the
// process exits with an error. A .env file in the working directory, when
// present, is loaded first; real environment variables take precedence.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends accepted in STORAGE_BACKEND.
const (
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config holds all runtime configuration for the listings service.
type Config struct {
	Port     string
	GRPCPort string // empty disables the gRPC listener

	StorageBackend string
	SQLitePath     string
	RedisURL       string // also enables event publishing when set
	RedisKeyPrefix string
	DatabaseURL    string

	CatalogURL     string // takes precedence over CatalogFile
	CatalogFile    string
	CatalogTimeout time.Duration

	PruneIntervalMinutes int // 0 disables the favorites prune job
	LogLevel             string
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getenv("LISTINGS_PORT", "8083"),
		GRPCPort:       os.Getenv("LISTINGS_GRPC_PORT"),
		StorageBackend: getenv("STORAGE_BACKEND", BackendSQLite),
		SQLitePath:     getenv("SQLITE_PATH", "data/listings.db"),
		RedisURL:       os.Getenv("REDIS_URL"),
		RedisKeyPrefix: getenv("REDIS_KEY_PREFIX", "listings:"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		CatalogURL:     os.Getenv("CATALOG_URL"),
		CatalogFile:    getenv("CATALOG_FILE", "assets/data/data.json"),
		LogLevel:       getenv("LOG_LEVEL", "info"),
	}
	if _, set := os.LookupEnv("LISTINGS_GRPC_PORT"); !set {
		cfg.GRPCPort = "9083"
	}

	timeout, err := positiveInt("CATALOG_TIMEOUT_SECONDS", 15, false)
	if err != nil {
		return nil, err
	}
	cfg.CatalogTimeout = time.Duration(timeout) * time.Second

	if cfg.PruneIntervalMinutes, err = positiveInt("PRUNE_INTERVAL_MINUTES", 60, true); err != nil {
		return nil, err
	}

	switch cfg.StorageBackend {
	case BackendSQLite, BackendMemory:
	case BackendRedis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("REDIS_URL is required when STORAGE_BACKEND=redis")
		}
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when STORAGE_BACKEND=postgres")
		}
	default:
		return nil, fmt.Errorf("STORAGE_BACKEND must be one of sqlite, redis, postgres, memory, got %q", cfg.StorageBackend)
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// positiveInt parses key as an integer >= 1 (>= 0 when zeroOK).
func positiveInt(key string, fallback int, zeroOK bool) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	floor := 1
	if zeroOK {
		floor = 0
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < floor {
		return 0, fmt.Errorf("%s must be an integer >= %d, got %q", key, floor, s)
	}
	return v, nil
}
