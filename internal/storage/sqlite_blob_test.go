package storage

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *SQLiteBlobStore {
	t.Helper()
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "todue-test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestGetMissingKeyReturnsNotFound(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.Get(t.Context(), TasksKey); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSetThenGetRoundTrips(t *testing.T) {
	store := openTestStore(t)
	if err := store.Set(t.Context(), TasksKey, `{"t1":{"text":"Buy milk"}}`); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := store.Get(t.Context(), TasksKey)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != `{"t1":{"text":"Buy milk"}}` {
		t.Fatalf("unexpected value: %q", got)
	}
}

func TestSetOverwritesExistingKey(t *testing.T) {
	store := openTestStore(t)
	for _, value := range []string{"v1", "v2", "v3"} {
		if err := store.Set(t.Context(), SettingsKey, value); err != nil {
			t.Fatalf("set %q: %v", value, err)
		}
	}
	got, err := store.Get(t.Context(), SettingsKey)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "v3" {
		t.Fatalf("value = %q, want %q", got, "v3")
	}
}

func TestKeysAreIndependent(t *testing.T) {
	store := openTestStore(t)
	if err := store.Set(t.Context(), TasksKey, "tasks"); err != nil {
		t.Fatalf("set tasks: %v", err)
	}
	if err := store.Set(t.Context(), SettingsKey, "settings"); err != nil {
		t.Fatalf("set settings: %v", err)
	}
	tasks, err := store.Get(t.Context(), TasksKey)
	if err != nil {
		t.Fatalf("get tasks: %v", err)
	}
	settings, err := store.Get(t.Context(), SettingsKey)
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	if tasks != "tasks" || settings != "settings" {
		t.Fatalf("cross-key clobber: tasks=%q settings=%q", tasks, settings)
	}
}

func TestMigrateDownThenUp(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := MigrateUp(db); err != nil {
		t.Fatalf("migrate up: %v", err)
	}
	if err := MigrateDown(db); err != nil {
		t.Fatalf("migrate down: %v", err)
	}
	if err := MigrateUp(db); err != nil {
		t.Fatalf("second migrate up: %v", err)
	}

	store, err := NewSQLiteBlobStore(db)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := store.Set(t.Context(), "k", "v"); err != nil {
		t.Fatalf("set after re-migrate: %v", err)
	}
}
