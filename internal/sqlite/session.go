package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rpggio/mobility/internal/domain/actor"
	"github.com/rpggio/mobility/internal/domain/identity"
	"github.com/rpggio/mobility/internal/repository"
)

// SessionRepository implements identity.SessionRepository for SQLite
type SessionRepository struct {
	db  *DB
	now func() time.Time
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db, now: time.Now}
}

// Create stores a new session
func (r *SessionRepository) Create(ctx context.Context, sess *identity.Session) error {
	query := `
		INSERT INTO sessions (
			id, actor_id, display_name, role, created_at, expires_at, closed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		sess.ID,
		sess.ActorID,
		sess.DisplayName,
		nullableRole(sess.Role),
		sess.CreatedAt.UTC(),
		sess.ExpiresAt.UTC(),
		sess.ClosedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// Get retrieves a session by ID
func (r *SessionRepository) Get(ctx context.Context, id string) (*identity.Session, error) {
	query := `
		SELECT id, actor_id, display_name, role, created_at, expires_at, closed_at
		FROM sessions
		WHERE id = ?
	`

	var sess identity.Session
	var role sql.NullString
	var closedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&sess.ID,
		&sess.ActorID,
		&sess.DisplayName,
		&role,
		&sess.CreatedAt,
		&sess.ExpiresAt,
		&closedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if role.Valid {
		sess.Role = actor.Role(role.String)
	}
	if closedAt.Valid {
		sess.ClosedAt = &closedAt.Time
	}

	return &sess, nil
}

// SetRole fixes the role of a session that has none yet. A session that
// already has a role yields repository.ErrConflict.
func (r *SessionRepository) SetRole(ctx context.Context, id string, role actor.Role) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET role = ? WHERE id = ? AND role IS NULL AND closed_at IS NULL`,
		string(role), id)
	if err != nil {
		return fmt.Errorf("failed to set session role: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 1 {
		return nil
	}

	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	return repository.ErrConflict
}

// Close marks a session as closed
func (r *SessionRepository) Close(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET closed_at = ? WHERE id = ? AND closed_at IS NULL`,
		r.now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to close session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		if _, err := r.Get(ctx, id); err != nil {
			return err
		}
	}

	return nil
}

func nullableRole(role actor.Role) any {
	if role == "" {
		return nil
	}
	return string(role)
}
