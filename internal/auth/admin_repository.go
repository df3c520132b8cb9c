package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AdminRepository defines the credential lookup contract for admins.
// Admin identity is globally unique by email.
type AdminRepository interface {
	Create(ctx context.Context, admin *AdminCredential) error
	GetByEmail(ctx context.Context, email string) (*AdminCredential, error)
	GetByID(ctx context.Context, id string) (*AdminCredential, error)
}

// SQLiteAdminRepository implements AdminRepository using SQLite.
type SQLiteAdminRepository struct {
	db *sql.DB
}

// NewAdminRepository creates a new SQLite-backed admin repository.
func NewAdminRepository(db *sql.DB) *SQLiteAdminRepository {
	return &SQLiteAdminRepository{db: db}
}

const adminColumns = "id, email, password, salt, name, created"

// Create inserts a new admin credential. The ID is generated if empty.
func (r *SQLiteAdminRepository) Create(ctx context.Context, admin *AdminCredential) error {
	if admin.ID == "" {
		admin.ID = uuid.NewString()
	}

	now := time.Now().UTC().Truncate(time.Second)
	admin.Created = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO admin (id, email, password, salt, name, created) VALUES (?, ?, ?, ?, ?, ?)`,
		admin.ID, admin.Email, nullString(admin.PasswordHash), nullString(admin.Salt),
		admin.Name, now.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("admin email %q: %w", admin.Email, err)
		}
		return fmt.Errorf("creating admin: %w", err)
	}

	return nil
}

// GetByEmail retrieves an admin by email, or ErrAdminNotFound.
func (r *SQLiteAdminRepository) GetByEmail(ctx context.Context, email string) (*AdminCredential, error) {
	return r.getAdmin(ctx, "SELECT "+adminColumns+" FROM admin WHERE email = ?", email)
}

// GetByID retrieves an admin by ID, or ErrAdminNotFound.
func (r *SQLiteAdminRepository) GetByID(ctx context.Context, id string) (*AdminCredential, error) {
	return r.getAdmin(ctx, "SELECT "+adminColumns+" FROM admin WHERE id = ?", id)
}

func (r *SQLiteAdminRepository) getAdmin(ctx context.Context, query string, args ...any) (*AdminCredential, error) {
	var a AdminCredential
	var password, salt sql.NullString
	var created string

	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&a.ID, &a.Email, &password, &salt, &a.Name, &created,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAdminNotFound
		}
		return nil, fmt.Errorf("scanning admin: %w", err)
	}

	a.PasswordHash = password.String
	a.Salt = salt.String
	a.Created, _ = time.Parse(time.RFC3339, created) //nolint:errcheck // format is controlled

	return &a, nil
}

// Helper functions shared by the credential repositories.

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// isUniqueViolation checks if a SQLite error is a UNIQUE constraint violation.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
