package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/meeting-platform/core/internal/domain"
)

type cachedSession struct {
	Token         string    `json:"token"`
	UserNumericID uint64    `json:"user_numeric_id"`
	UserID        string    `json:"user_id"`
	ExpiresAt     time.Time `json:"expires_at"`
}

func sessionKey(token string) string { return "meeting:session:" + token }

// SessionRepository wraps a domain.SessionRepository with a Redis-backed
// cache. Every hit is revalidated against its expires_at so a cached entry
// never outlives the session it mirrors. The user cache has no such check
// and returns its hits as stored.
type SessionRepository struct {
	backing domain.SessionRepository
	cache   Client
	ttl     time.Duration
	now     func() time.Time
	logger  *slog.Logger
}

// NewSessionRepository constructs a cache-wrapped SessionRepository.
func NewSessionRepository(backing domain.SessionRepository, cacheClient Client, ttl time.Duration, logger *slog.Logger) *SessionRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionRepository{backing: backing, cache: cacheClient, ttl: ttl, now: time.Now, logger: logger}
}

// CreateSession writes through and seeds the cache.
func (r *SessionRepository) CreateSession(ctx context.Context, session domain.Session) (domain.Session, error) {
	created, err := r.backing.CreateSession(ctx, session)
	if err != nil {
		return domain.Session{}, err
	}
	r.put(ctx, created)
	return created, nil
}

// GetSession reads through the cache, revalidating expiry on every hit, and
// falls back to the backing store on miss.
func (r *SessionRepository) GetSession(ctx context.Context, token string) (domain.Session, error) {
	if r.cache != nil {
		if raw, err := r.cache.Get(ctx, sessionKey(token)); err == nil {
			var cs cachedSession
			if jsonErr := json.Unmarshal([]byte(raw), &cs); jsonErr == nil {
				session := domain.Session{Token: cs.Token, UserNumericID: cs.UserNumericID, UserID: cs.UserID, ExpiresAt: cs.ExpiresAt}
				if session.Expired(r.now()) {
					_ = r.cache.Del(ctx, sessionKey(token))
				} else {
					return session, nil
				}
			}
		} else if !errors.Is(err, ErrMiss) {
			r.logger.WarnContext(ctx, "cache read failed", "error", err)
		}
	}

	session, err := r.backing.GetSession(ctx, token)
	if err != nil {
		return domain.Session{}, err
	}
	r.put(ctx, session)
	return session, nil
}

// DeleteSession writes through and evicts the cache entry.
func (r *SessionRepository) DeleteSession(ctx context.Context, token string) error {
	if err := r.backing.DeleteSession(ctx, token); err != nil {
		return err
	}
	if r.cache != nil {
		if err := r.cache.Del(ctx, sessionKey(token)); err != nil {
			r.logger.WarnContext(ctx, "cache evict failed", "error", err)
		}
	}
	return nil
}

func (r *SessionRepository) put(ctx context.Context, session domain.Session) {
	if r.cache == nil {
		return
	}
	ttl := r.ttl
	if untilExpiry := time.Until(session.ExpiresAt); untilExpiry < ttl {
		ttl = untilExpiry
	}
	if ttl <= 0 {
		return
	}
	payload, err := json.Marshal(cachedSession{
		Token: session.Token, UserNumericID: session.UserNumericID,
		UserID: session.UserID, ExpiresAt: session.ExpiresAt,
	})
	if err != nil {
		r.logger.WarnContext(ctx, "failed to marshal cached session", "error", err)
		return
	}
	if err := r.cache.SetEx(ctx, sessionKey(session.Token), string(payload), ttl); err != nil {
		r.logger.WarnContext(ctx, "cache write failed", "error", err)
	}
}
