package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/meeting-platform/core/internal/domain"
)

const sessionTokenLength = 32

// SessionManager issues and validates bearer tokens backed by a
// domain.SessionRepository. Expired sessions are evicted lazily on lookup.
type SessionManager struct {
	sessions domain.SessionRepository
	ttl      time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

// NewSessionManager constructs a SessionManager with the given token TTL.
func NewSessionManager(sessions domain.SessionRepository, ttl time.Duration, logger *slog.Logger) *SessionManager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionManager{sessions: sessions, ttl: ttl, now: time.Now, logger: defaultLogger(logger)}
}

// Issue creates and persists a new session for the given user.
func (m *SessionManager) Issue(ctx context.Context, userID string, userNumericID uint64) (domain.Session, error) {
	logger := serviceLogger(ctx, m.logger, "SessionManager", "Issue", "user_id", userID)

	token, err := generateToken(sessionTokenLength)
	if err != nil {
		logger.ErrorContext(ctx, "failed to generate session token", "error", err)
		return domain.Session{}, fmt.Errorf("generate session token: %w", err)
	}

	now := m.now()
	session := domain.Session{
		Token:         token,
		UserNumericID: userNumericID,
		UserID:        userID,
		ExpiresAt:     now.Add(m.ttl),
	}

	persisted, err := m.sessions.CreateSession(ctx, session)
	if err != nil {
		logger.ErrorContext(ctx, "failed to persist session", "error", err)
		return domain.Session{}, err
	}

	logger.InfoContext(ctx, "session issued", "expires_at", persisted.ExpiresAt)
	return persisted, nil
}

// Validate looks up token and returns its session if still current. An
// expired session is deleted and reported as ErrSessionExpired.
func (m *SessionManager) Validate(ctx context.Context, token string) (domain.Session, error) {
	logger := serviceLogger(ctx, m.logger, "SessionManager", "Validate")

	session, err := m.sessions.GetSession(ctx, token)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.ErrorContext(ctx, "failed to look up session", "error", err)
		}
		return domain.Session{}, err
	}

	if session.Expired(m.now()) {
		if delErr := m.sessions.DeleteSession(ctx, token); delErr != nil {
			logger.WarnContext(ctx, "failed to evict expired session", "error", delErr)
		}
		return domain.Session{}, ErrSessionExpired
	}

	return session, nil
}

// Revoke deletes a session unconditionally.
func (m *SessionManager) Revoke(ctx context.Context, token string) error {
	return m.sessions.DeleteSession(ctx, token)
}
