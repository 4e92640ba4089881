// Package memory provides in-process implementations of the domain
// repository interfaces, guarded by reader/writer locks so readers proceed
// in parallel while writers are exclusive.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/meeting-platform/core/internal/domain"
)

// UserRepository is an in-memory domain.UserRepository keyed by username and
// by opaque user id, mirroring the dual-index shape of the reference
// InMemoryUserRepository.
type UserRepository struct {
	mu            sync.RWMutex
	byUsername    map[string]domain.User
	byID          map[string]domain.User
	nextNumericID uint64
}

// NewUserRepository constructs an empty UserRepository.
func NewUserRepository() *UserRepository {
	return &UserRepository{
		byUsername:    make(map[string]domain.User),
		byID:          make(map[string]domain.User),
		nextNumericID: 1,
	}
}

// CreateUser stores a new user, assigning a monotonic NumericID when the
// caller did not already supply one.
func (r *UserRepository) CreateUser(ctx context.Context, user domain.User) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byUsername[user.Username]; exists {
		return domain.User{}, domain.ErrAlreadyExists
	}

	stored := user
	if stored.NumericID == 0 {
		stored.NumericID = r.nextNumericID
		r.nextNumericID++
	}
	r.byUsername[stored.Username] = stored
	r.byID[stored.ID] = stored
	return stored, nil
}

// FindByUserName looks up a user by its unique username.
func (r *UserRepository) FindByUserName(ctx context.Context, username string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.byUsername[username]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return user, nil
}

// FindByID looks up a user by its opaque id.
func (r *UserRepository) FindByID(ctx context.Context, userID string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.byID[userID]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return user, nil
}

// UpdateLastLogin stamps the last-login time on both indexes for the given
// user.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, userID string, lastLogin time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[userID]
	if !ok {
		return domain.ErrNotFound
	}
	user.LastLogin = lastLogin
	r.byID[userID] = user
	r.byUsername[user.Username] = user
	return nil
}
