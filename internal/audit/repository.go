// Package audit records authentication events to the audit_log table.
//
// Writes are best-effort from the caller's point of view: a failed
// audit insert is logged but never fails the authentication it
// describes.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Actions recorded in the audit trail.
const (
	ActionLogin       = "login"
	ActionTokenVerify = "token_verify"
	ActionKeyGenerate = "keypair_generate"
)

// Outcomes recorded in the audit trail.
const (
	OutcomeSuccess = "success"
	OutcomeDenied  = "denied"
	OutcomeError   = "error"
)

// Entry is a single audit trail record.
type Entry struct {
	ID        string         `json:"id"`
	Action    string         `json:"action"`
	ActorRole string         `json:"actor_role"`
	ActorID   string         `json:"actor_id,omitempty"`
	Outcome   string         `json:"outcome"`
	Details   map[string]any `json:"details,omitempty"`
	Created   time.Time      `json:"created"`
}

// Filter controls which audit entries to return.
type Filter struct {
	Action  string // optional: filter by action
	Outcome string // optional: filter by outcome
	Limit   int    // default 50, max 200
	Offset  int    // pagination offset
}

// Default and maximum page sizes for List.
const (
	defaultLimit = 50
	maxLimit     = 200
)

// Repository defines the interface for audit trail operations.
type Repository interface {
	Create(ctx context.Context, entry *Entry) error
	List(ctx context.Context, filter Filter) ([]Entry, error)
}

// SQLiteRepository stores audit entries in SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new audit repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create inserts an audit entry. The ID is generated if empty.
func (r *SQLiteRepository) Create(ctx context.Context, entry *Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Created.IsZero() {
		entry.Created = time.Now().UTC()
	}

	var details sql.NullString
	if len(entry.Details) > 0 {
		encoded, err := json.Marshal(entry.Details)
		if err != nil {
			return fmt.Errorf("encoding audit details: %w", err)
		}
		details = sql.NullString{String: string(encoded), Valid: true}
	}

	var actorID sql.NullString
	if entry.ActorID != "" {
		actorID = sql.NullString{String: entry.ActorID, Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_log (id, action, actor_role, actor_id, outcome, details, created)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Action, entry.ActorRole, actorID, entry.Outcome, details,
		entry.Created.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("creating audit entry: %w", err)
	}
	return nil
}

// List returns audit entries newest first, filtered and paginated.
func (r *SQLiteRepository) List(ctx context.Context, filter Filter) ([]Entry, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	query := "SELECT id, action, actor_role, actor_id, outcome, details, created FROM audit_log"
	var conditions []string
	var args []any
	if filter.Action != "" {
		conditions = append(conditions, "action = ?")
		args = append(args, filter.Action)
	}
	if filter.Outcome != "" {
		conditions = append(conditions, "outcome = ?")
		args = append(args, filter.Outcome)
	}
	for i, c := range conditions {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}
	query += " ORDER BY created DESC, id LIMIT ? OFFSET ?"
	args = append(args, limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing audit entries: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var actorID, details sql.NullString
		var created string

		if err := rows.Scan(&e.ID, &e.Action, &e.ActorRole, &actorID, &e.Outcome, &details, &created); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}

		e.ActorID = actorID.String
		if details.Valid {
			if err := json.Unmarshal([]byte(details.String), &e.Details); err != nil {
				return nil, fmt.Errorf("decoding audit details: %w", err)
			}
		}
		e.Created, _ = time.Parse(time.RFC3339, created) //nolint:errcheck // format is controlled

		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating audit entries: %w", err)
	}

	return entries, nil
}
