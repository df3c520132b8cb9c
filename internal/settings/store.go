// Package settings provides the durable key-value configuration store.
//
// The store persists deployment-level values that must survive restarts
// and be shared by every replica pointing at the same database; today
// that is the token signing keypair. It is intentionally not a general
// settings bag: writes are restricted to a known key whitelist.
package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Store keys for persisted values.
const (
	// KeyPrivateKey holds the PEM-encoded token signing key.
	KeyPrivateKey = "privateKey"

	// KeyPublicKey holds the PEM-encoded token verification key.
	KeyPublicKey = "publicKey"
)

// Sentinel errors for store operations.
var (
	ErrNotFound       = errors.New("setting not found")
	ErrUnsupportedKey = errors.New("unsupported setting key")
)

// Store defines the interface for durable configuration values.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// SQLiteStore implements Store using the config table.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-backed settings store.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Get returns the stored value for key, or ErrNotFound.
func (s *SQLiteStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM config WHERE keyname = ?", key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("reading setting %q: %w", key, err)
	}
	return value, nil
}

// Set stores value under key, replacing any existing value.
// Only whitelisted keys are accepted; anything else is a programming
// error surfaced as ErrUnsupportedKey.
func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	switch key {
	case KeyPrivateKey, KeyPublicKey:
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedKey, key)
	}

	if _, err := s.db.ExecContext(ctx,
		"REPLACE INTO config (keyname, value) VALUES (?, ?)", key, value,
	); err != nil {
		return fmt.Errorf("writing setting %q: %w", key, err)
	}
	return nil
}
