package config_test

import (
	"testing"
	"time"

	"jobmate/listings-service/internal/config"
)

// clearEnv blanks every variable Load reads so the host environment cannot
// leak into a test. t.Setenv restores the previous values afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"LISTINGS_PORT", "STORAGE_BACKEND", "SQLITE_PATH", "REDIS_URL",
		"REDIS_KEY_PREFIX", "DATABASE_URL", "CATALOG_URL", "CATALOG_FILE",
		"CATALOG_TIMEOUT_SECONDS", "PRUNE_INTERVAL_MINUTES", "LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
	t.Setenv("LISTINGS_GRPC_PORT", "9083")
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8083" || cfg.GRPCPort != "9083" {
		t.Errorf("ports = %q/%q", cfg.Port, cfg.GRPCPort)
	}
	if cfg.StorageBackend != config.BackendSQLite || cfg.SQLitePath != "data/listings.db" {
		t.Errorf("storage = %q at %q", cfg.StorageBackend, cfg.SQLitePath)
	}
	if cfg.CatalogTimeout != 15*time.Second {
		t.Errorf("CatalogTimeout = %v", cfg.CatalogTimeout)
	}
	if cfg.PruneIntervalMinutes != 60 {
		t.Errorf("PruneIntervalMinutes = %d", cfg.PruneIntervalMinutes)
	}
	if cfg.RedisKeyPrefix != "listings:" {
		t.Errorf("RedisKeyPrefix = %q", cfg.RedisKeyPrefix)
	}
}

func TestLoad_BackendRequiresURL(t *testing.T) {
	cases := []struct {
		backend string
		env     string
	}{
		{config.BackendRedis, "REDIS_URL"},
		{config.BackendPostgres, "DATABASE_URL"},
	}
	for _, c := range cases {
		clearEnv(t)
		t.Setenv("STORAGE_BACKEND", c.backend)
		if _, err := config.Load(); err == nil {
			t.Errorf("STORAGE_BACKEND=%s without %s should fail", c.backend, c.env)
		}

		t.Setenv(c.env, "redis://localhost:6379/0")
		if _, err := config.Load(); err != nil {
			t.Errorf("STORAGE_BACKEND=%s with %s set: %v", c.backend, c.env, err)
		}
	}
}

func TestLoad_UnknownBackend(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_BACKEND", "mongo")
	if _, err := config.Load(); err == nil {
		t.Error("unknown backend should fail")
	}
}

func TestLoad_IntegerValidation(t *testing.T) {
	cases := []struct {
		key, value string
		ok         bool
	}{
		{"PRUNE_INTERVAL_MINUTES", "0", true},
		{"PRUNE_INTERVAL_MINUTES", "-1", false},
		{"PRUNE_INTERVAL_MINUTES", "often", false},
		{"CATALOG_TIMEOUT_SECONDS", "0", false},
		{"CATALOG_TIMEOUT_SECONDS", "30", true},
	}
	for _, c := range cases {
		clearEnv(t)
		t.Setenv(c.key, c.value)
		_, err := config.Load()
		if (err == nil) != c.ok {
			t.Errorf("%s=%q: err = %v, want ok=%v", c.key, c.value, err, c.ok)
		}
	}
}

func TestLoad_GRPCCanBeDisabled(t *testing.T) {
	clearEnv(t)
	t.Setenv("LISTINGS_GRPC_PORT", "")
	cfg, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.GRPCPort != "" {
		t.Errorf("GRPCPort = %q, want empty (disabled)", cfg.GRPCPort)
	}
}
