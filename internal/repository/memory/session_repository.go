package memory

import (
	"context"
	"sync"

	"github.com/meeting-platform/core/internal/domain"
)

// SessionRepository is an in-memory domain.SessionRepository keyed by token.
type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
}

// NewSessionRepository constructs an empty SessionRepository.
func NewSessionRepository() *SessionRepository {
	return &SessionRepository{sessions: make(map[string]domain.Session)}
}

// CreateSession stores the session record under its token.
func (r *SessionRepository) CreateSession(ctx context.Context, session domain.Session) (domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.Token] = session
	return session, nil
}

// GetSession returns the stored session record, regardless of expiry —
// expiry evaluation is the session manager's responsibility.
func (r *SessionRepository) GetSession(ctx context.Context, token string) (domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[token]
	if !ok {
		return domain.Session{}, domain.ErrNotFound
	}
	return session, nil
}

// DeleteSession removes the session record for token.
func (r *SessionRepository) DeleteSession(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[token]; !ok {
		return domain.ErrNotFound
	}
	delete(r.sessions, token)
	return nil
}
