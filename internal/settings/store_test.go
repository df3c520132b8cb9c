package settings

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// testDB creates a temporary SQLite database with the config table applied.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	f, err := os.CreateTemp("", "settings-test-*.db")
	if err != nil {
		t.Fatalf("creating temp db: %v", err)
	}
	dbPath := f.Name()
	f.Close()
	t.Cleanup(func() { os.Remove(dbPath) })

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec(`CREATE TABLE config (keyname TEXT PRIMARY KEY, value TEXT NOT NULL) STRICT`); err != nil {
		t.Fatalf("creating config table: %v", err)
	}

	return db
}

func TestStore_RoundTrip(t *testing.T) {
	store := NewSQLiteStore(testDB(t))
	ctx := context.Background()

	if err := store.Set(ctx, KeyPrivateKey, "pem-data"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := store.Get(ctx, KeyPrivateKey)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != "pem-data" {
		t.Errorf("Get() = %q, want %q", got, "pem-data")
	}
}

func TestStore_Replace(t *testing.T) {
	store := NewSQLiteStore(testDB(t))
	ctx := context.Background()

	if err := store.Set(ctx, KeyPublicKey, "first"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := store.Set(ctx, KeyPublicKey, "second"); err != nil {
		t.Fatalf("second Set() error = %v", err)
	}

	got, err := store.Get(ctx, KeyPublicKey)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != "second" {
		t.Errorf("Get() = %q, want %q", got, "second")
	}
}

func TestStore_GetMissing(t *testing.T) {
	store := NewSQLiteStore(testDB(t))

	_, err := store.Get(context.Background(), KeyPrivateKey)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestStore_SetUnknownKey(t *testing.T) {
	store := NewSQLiteStore(testDB(t))

	err := store.Set(context.Background(), "adminPassword", "nope")
	if !errors.Is(err, ErrUnsupportedKey) {
		t.Errorf("Set() error = %v, want ErrUnsupportedKey", err)
	}
}
