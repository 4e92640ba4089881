package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/meeting-platform/core/internal/domain"
)

// cachedUser is the JSON payload stored under both the id and username
// cache keys for a user.
type cachedUser struct {
	ID           string    `json:"id"`
	NumericID    uint64    `json:"numeric_id"`
	Username     string    `json:"username"`
	DisplayName  string    `json:"display_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	Salt         string    `json:"salt"`
	CreatedAt    time.Time `json:"created_at"`
	LastLogin    time.Time `json:"last_login"`
}

func toCachedUser(u domain.User) cachedUser {
	return cachedUser{
		ID: u.ID, NumericID: u.NumericID, Username: u.Username, DisplayName: u.DisplayName,
		Email: u.Email, PasswordHash: u.PasswordHash, Salt: u.Salt,
		CreatedAt: u.CreatedAt, LastLogin: u.LastLogin,
	}
}

func (c cachedUser) toDomain() domain.User {
	return domain.User{
		ID: c.ID, NumericID: c.NumericID, Username: c.Username, DisplayName: c.DisplayName,
		Email: c.Email, PasswordHash: c.PasswordHash, Salt: c.Salt,
		CreatedAt: c.CreatedAt, LastLogin: c.LastLogin,
	}
}

func userIDKey(id string) string       { return "meeting:user:id:" + id }
func userNameKey(username string) string { return "meeting:user:name:" + username }

// UserRepository wraps a domain.UserRepository with a Redis-backed
// read-through/write-through cache, keyed by both user id and username so
// either lookup path can hit without touching the durable store.
type UserRepository struct {
	backing domain.UserRepository
	cache   Client
	ttl     time.Duration
	logger  *slog.Logger
}

// NewUserRepository constructs a cache-wrapped UserRepository.
func NewUserRepository(backing domain.UserRepository, cacheClient Client, ttl time.Duration, logger *slog.Logger) *UserRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserRepository{backing: backing, cache: cacheClient, ttl: ttl, logger: logger}
}

// CreateUser writes through to the backing store, then seeds both cache
// keys.
func (r *UserRepository) CreateUser(ctx context.Context, user domain.User) (domain.User, error) {
	created, err := r.backing.CreateUser(ctx, user)
	if err != nil {
		return domain.User{}, err
	}
	r.put(ctx, created)
	return created, nil
}

// FindByUserName reads through the username key, falling back to the
// backing store and repopulating the cache on miss.
func (r *UserRepository) FindByUserName(ctx context.Context, username string) (domain.User, error) {
	if r.cache != nil {
		if raw, err := r.cache.Get(ctx, userNameKey(username)); err == nil {
			var cu cachedUser
			if jsonErr := json.Unmarshal([]byte(raw), &cu); jsonErr == nil {
				return cu.toDomain(), nil
			}
		} else if !errors.Is(err, ErrMiss) {
			r.logger.WarnContext(ctx, "cache read failed", "error", err)
		}
	}

	user, err := r.backing.FindByUserName(ctx, username)
	if err != nil {
		return domain.User{}, err
	}
	r.put(ctx, user)
	return user, nil
}

// FindByID reads through the id key symmetrically with FindByUserName.
func (r *UserRepository) FindByID(ctx context.Context, userID string) (domain.User, error) {
	if r.cache != nil {
		if raw, err := r.cache.Get(ctx, userIDKey(userID)); err == nil {
			var cu cachedUser
			if jsonErr := json.Unmarshal([]byte(raw), &cu); jsonErr == nil {
				return cu.toDomain(), nil
			}
		} else if !errors.Is(err, ErrMiss) {
			r.logger.WarnContext(ctx, "cache read failed", "error", err)
		}
	}

	user, err := r.backing.FindByID(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}
	r.put(ctx, user)
	return user, nil
}

// UpdateLastLogin writes through, then re-reads the user from the backing
// store and re-caches it under both keys, since the cached payload's
// LastLogin field would otherwise go stale.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, userID string, lastLogin time.Time) error {
	if err := r.backing.UpdateLastLogin(ctx, userID, lastLogin); err != nil {
		return err
	}
	if user, err := r.backing.FindByID(ctx, userID); err == nil {
		r.put(ctx, user)
	}
	return nil
}

func (r *UserRepository) put(ctx context.Context, user domain.User) {
	if r.cache == nil {
		return
	}
	payload, err := json.Marshal(toCachedUser(user))
	if err != nil {
		r.logger.WarnContext(ctx, "failed to marshal cached user", "error", err)
		return
	}
	if err := r.cache.SetEx(ctx, userIDKey(user.ID), string(payload), r.ttl); err != nil {
		r.logger.WarnContext(ctx, "cache write failed", "error", err)
	}
	if err := r.cache.SetEx(ctx, userNameKey(user.Username), string(payload), r.ttl); err != nil {
		r.logger.WarnContext(ctx, "cache write failed", "error", err)
	}
}
