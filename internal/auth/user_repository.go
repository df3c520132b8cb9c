package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// UserRepository defines the credential lookup contract for users.
// User identity is unique only within a location.
type UserRepository interface {
	Create(ctx context.Context, user *UserCredential) error
	GetByLocationAndName(ctx context.Context, location, name string) (*UserCredential, error)
	GetByID(ctx context.Context, id string) (*UserCredential, error)
}

// SQLiteUserRepository implements UserRepository using SQLite.
type SQLiteUserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new SQLite-backed user repository.
func NewUserRepository(db *sql.DB) *SQLiteUserRepository {
	return &SQLiteUserRepository{db: db}
}

const userColumns = "id, location, name, password, salt, created"

// Create inserts a new user credential. The ID is generated if empty.
func (r *SQLiteUserRepository) Create(ctx context.Context, user *UserCredential) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	now := time.Now().UTC().Truncate(time.Second)
	user.Created = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user (id, location, name, password, salt, created) VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID, user.Location, user.Name, nullString(user.PasswordHash), nullString(user.Salt),
		now.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user %q at location %q: %w", user.Name, user.Location, err)
		}
		return fmt.Errorf("creating user: %w", err)
	}

	return nil
}

// GetByLocationAndName retrieves a user within its location, or ErrUserNotFound.
func (r *SQLiteUserRepository) GetByLocationAndName(ctx context.Context, location, name string) (*UserCredential, error) {
	return r.getUser(ctx,
		"SELECT "+userColumns+" FROM user WHERE location = ? AND name = ?", location, name)
}

// GetByID retrieves a user by ID, or ErrUserNotFound.
func (r *SQLiteUserRepository) GetByID(ctx context.Context, id string) (*UserCredential, error) {
	return r.getUser(ctx, "SELECT "+userColumns+" FROM user WHERE id = ?", id)
}

func (r *SQLiteUserRepository) getUser(ctx context.Context, query string, args ...any) (*UserCredential, error) {
	var u UserCredential
	var password, salt sql.NullString
	var created string

	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&u.ID, &u.Location, &u.Name, &password, &salt, &created,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("scanning user: %w", err)
	}

	u.PasswordHash = password.String
	u.Salt = salt.String
	u.Created, _ = time.Parse(time.RFC3339, created) //nolint:errcheck // format is controlled

	return &u, nil
}
