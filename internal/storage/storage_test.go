package storage_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"jobmate/listings-service/internal/db"
	"jobmate/listings-service/internal/storage"
)

func openSQLite(t *testing.T, path string) *storage.SQLite {
	t.Helper()
	ctx := context.Background()
	handle, err := db.OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("OpenSQLite(%q): %v", path, err)
	}
	t.Cleanup(func() { handle.Close() })
	s, err := storage.NewSQLite(ctx, handle)
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	return s
}

// backends returns every Store implementation that runs without an
// external server.
func backends(t *testing.T) map[string]storage.Store {
	return map[string]storage.Store{
		"memory": storage.NewMemory(),
		"sqlite": openSQLite(t, ":memory:"),
	}
}

func TestStore_GetMissingKey(t *testing.T) {
	for name, s := range backends(t) {
		v, ok, err := s.Get(context.Background(), storage.KeyJobs)
		if err != nil {
			t.Errorf("%s: Get error: %v", name, err)
		}
		if ok || v != "" {
			t.Errorf("%s: Get(missing) = (%q, %v), want (\"\", false)", name, v, ok)
		}
	}
}

func TestStore_SetThenGet(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		if err := s.Set(ctx, storage.KeyProfile, `{"name":"Ada"}`); err != nil {
			t.Fatalf("%s: Set: %v", name, err)
		}
		if err := s.Set(ctx, storage.KeyProfile, `{"name":"Grace"}`); err != nil {
			t.Fatalf("%s: Set overwrite: %v", name, err)
		}
		v, ok, err := s.Get(ctx, storage.KeyProfile)
		if err != nil || !ok {
			t.Fatalf("%s: Get = (%q, %v, %v)", name, v, ok, err)
		}
		if v != `{"name":"Grace"}` {
			t.Errorf("%s: Get = %q, want overwritten value", name, v)
		}
	}
}

func TestStore_SetMulti(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		err := s.SetMulti(ctx, map[string]string{
			storage.KeyJobs:      "[]",
			storage.KeyFavorites: "[1,2]",
		})
		if err != nil {
			t.Fatalf("%s: SetMulti: %v", name, err)
		}
		for key, want := range map[string]string{storage.KeyJobs: "[]", storage.KeyFavorites: "[1,2]"} {
			got, ok, _ := s.Get(ctx, key)
			if !ok || got != want {
				t.Errorf("%s: Get(%s) = (%q, %v), want %q", name, key, got, ok, want)
			}
		}
	}
}

func TestSQLite_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "listings.db")
	ctx := context.Background()

	first := openSQLite(t, path)
	if err := first.Set(ctx, storage.KeyFavorites, "[3]"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	second := openSQLite(t, path)
	v, ok, err := second.Get(ctx, storage.KeyFavorites)
	if err != nil || !ok || v != "[3]" {
		t.Errorf("reopened Get = (%q, %v, %v), want [3]", v, ok, err)
	}
}

func TestGetJSON(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemory()

	var ids []int
	hit, err := storage.GetJSON(ctx, s, storage.KeyFavorites, &ids)
	if hit || err != nil {
		t.Errorf("GetJSON(missing) = (%v, %v), want (false, nil)", hit, err)
	}

	if err := storage.SetJSON(ctx, s, storage.KeyFavorites, []int{4, 2}); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}
	hit, err = storage.GetJSON(ctx, s, storage.KeyFavorites, &ids)
	if !hit || err != nil {
		t.Fatalf("GetJSON = (%v, %v)", hit, err)
	}
	if len(ids) != 2 || ids[0] != 4 || ids[1] != 2 {
		t.Errorf("decoded %v, want [4 2]", ids)
	}
}

func TestGetJSON_Corrupt(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemory()
	_ = s.Set(ctx, storage.KeyJobs, "{not json")

	var out []any
	hit, err := storage.GetJSON(ctx, s, storage.KeyJobs, &out)
	if hit {
		t.Error("corrupt value must not be reported as a hit")
	}
	var ce *storage.CorruptError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *CorruptError, got %T (%v)", err, err)
	}
	if ce.Key != storage.KeyJobs {
		t.Errorf("CorruptError.Key = %q, want %q", ce.Key, storage.KeyJobs)
	}
}
