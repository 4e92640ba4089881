package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/meeting-platform/core/internal/domain"
)

// seedSessionUser creates the user that sessions.user_numeric_id must
// reference, since the test pool enables foreign key enforcement.
func seedSessionUser(t *testing.T, pool *ConnectionPool) uint64 {
	t.Helper()
	user, err := NewUserRepository(pool).CreateUser(context.Background(),
		domain.User{ID: "user-1", Username: "alice", PasswordHash: "hash", Salt: "salt"})
	if err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}
	return user.NumericID
}

func TestSessionRepository_CreateAndGet(t *testing.T) {
	pool := newTestPool(t)
	repo := NewSessionRepository(pool)
	ctx := context.Background()
	userNumericID := seedSessionUser(t, pool)

	expiresAt := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	session := domain.Session{Token: "tok-1", UserNumericID: userNumericID, UserID: "user-1", ExpiresAt: expiresAt}

	if _, err := repo.CreateSession(ctx, session); err != nil {
		t.Fatalf("CreateSession returned error: %v", err)
	}

	got, err := repo.GetSession(ctx, "tok-1")
	if err != nil {
		t.Fatalf("GetSession returned error: %v", err)
	}
	if got.UserID != "user-1" || got.UserNumericID != userNumericID {
		t.Fatalf("unexpected session: %+v", got)
	}
	if !got.ExpiresAt.Equal(expiresAt) {
		t.Fatalf("expected expiry %v, got %v", expiresAt, got.ExpiresAt)
	}
}

func TestSessionRepository_CreateSession_Duplicate(t *testing.T) {
	pool := newTestPool(t)
	repo := NewSessionRepository(pool)
	ctx := context.Background()
	userNumericID := seedSessionUser(t, pool)

	session := domain.Session{Token: "tok-1", UserNumericID: userNumericID, UserID: "user-1", ExpiresAt: time.Now().Add(time.Hour)}
	if _, err := repo.CreateSession(ctx, session); err != nil {
		t.Fatalf("first CreateSession returned error: %v", err)
	}

	_, err := repo.CreateSession(ctx, session)
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestSessionRepository_GetSession_NotFound(t *testing.T) {
	pool := newTestPool(t)
	repo := NewSessionRepository(pool)

	_, err := repo.GetSession(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSessionRepository_DeleteSession(t *testing.T) {
	pool := newTestPool(t)
	repo := NewSessionRepository(pool)
	ctx := context.Background()
	userNumericID := seedSessionUser(t, pool)

	session := domain.Session{Token: "tok-1", UserNumericID: userNumericID, UserID: "user-1", ExpiresAt: time.Now().Add(time.Hour)}
	if _, err := repo.CreateSession(ctx, session); err != nil {
		t.Fatalf("CreateSession returned error: %v", err)
	}
	if err := repo.DeleteSession(ctx, "tok-1"); err != nil {
		t.Fatalf("DeleteSession returned error: %v", err)
	}

	_, err := repo.GetSession(ctx, "tok-1")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
