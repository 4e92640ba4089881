package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/meeting-platform/core/internal/domain"
)

// SessionRepository implements domain.SessionRepository against SQLite.
type SessionRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewSessionRepository constructs a SQLite-backed SessionRepository.
func NewSessionRepository(pool *ConnectionPool) *SessionRepository {
	return &SessionRepository{pool: pool, helper: NewQueryHelper(pool), mapper: NewErrorMapper()}
}

// CreateSession inserts a new session row.
func (r *SessionRepository) CreateSession(ctx context.Context, session domain.Session) (domain.Session, error) {
	_, err := r.helper.Exec(ctx, `
		INSERT INTO sessions (token, user_numeric_id, user_id, expires_at)
		VALUES (?, ?, ?, ?)`,
		session.Token, session.UserNumericID, session.UserID,
		session.ExpiresAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if errors.Is(r.mapper.MapError(err), ErrDuplicateRecord) {
			return domain.Session{}, domain.ErrAlreadyExists
		}
		return domain.Session{}, err
	}
	return session, nil
}

// GetSession returns the session stored under token, regardless of expiry.
func (r *SessionRepository) GetSession(ctx context.Context, token string) (domain.Session, error) {
	row := r.helper.QueryRow(ctx, `
		SELECT token, user_numeric_id, user_id, expires_at FROM sessions WHERE token = ?`, token)

	var (
		session   domain.Session
		expiresAt string
	)
	if err := row.Scan(&session.Token, &session.UserNumericID, &session.UserID, &expiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Session{}, domain.ErrNotFound
		}
		return domain.Session{}, err
	}
	session.ExpiresAt, _ = time.Parse(time.RFC3339, expiresAt)
	return session, nil
}

// DeleteSession removes the session stored under token.
func (r *SessionRepository) DeleteSession(ctx context.Context, token string) error {
	_, err := r.helper.Exec(ctx, `DELETE FROM sessions WHERE token = ?`, token)
	return err
}
