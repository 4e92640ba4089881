package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/meeting-platform/core/internal/domain"
	"github.com/meeting-platform/core/internal/repository/memory"
)

func TestUserRepository_CreateSeedsBothCacheKeys(t *testing.T) {
	client := newFakeClient()
	repo := NewUserRepository(memory.NewUserRepository(), client, time.Minute, nil)
	ctx := context.Background()

	created, err := repo.CreateUser(ctx, domain.User{ID: "user-1", Username: "alice", PasswordHash: "hash", Salt: "salt"})
	if err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}

	if _, err := client.Get(ctx, userIDKey(created.ID)); err != nil {
		t.Fatalf("expected id key to be cached, Get returned %v", err)
	}
	if _, err := client.Get(ctx, userNameKey(created.Username)); err != nil {
		t.Fatalf("expected username key to be cached, Get returned %v", err)
	}
}

func TestUserRepository_FindByID_ServedFromCacheOnBackingMiss(t *testing.T) {
	client := newFakeClient()
	backing := memory.NewUserRepository()
	repo := NewUserRepository(backing, client, time.Minute, nil)
	ctx := context.Background()

	seeded := domain.User{ID: "user-1", NumericID: 7, Username: "alice", PasswordHash: "hash", Salt: "salt"}
	repo.put(ctx, seeded)

	// The backing store never saw this user, so only a true cache hit can
	// satisfy this lookup.
	got, err := repo.FindByID(ctx, "user-1")
	if err != nil {
		t.Fatalf("FindByID returned error: %v", err)
	}
	if got.Username != "alice" || got.NumericID != 7 {
		t.Fatalf("unexpected cached user: %+v", got)
	}
}

func TestUserRepository_FindByUserName_FallsThroughOnMiss(t *testing.T) {
	client := newFakeClient()
	backing := memory.NewUserRepository()
	repo := NewUserRepository(backing, client, time.Minute, nil)
	ctx := context.Background()

	if _, err := backing.CreateUser(ctx, domain.User{ID: "user-1", Username: "alice", PasswordHash: "hash", Salt: "salt"}); err != nil {
		t.Fatalf("backing CreateUser returned error: %v", err)
	}

	got, err := repo.FindByUserName(ctx, "alice")
	if err != nil {
		t.Fatalf("FindByUserName returned error: %v", err)
	}
	if got.ID != "user-1" {
		t.Fatalf("expected id user-1, got %q", got.ID)
	}

	// The miss should have populated the cache for next time.
	if _, err := client.Get(ctx, userNameKey("alice")); err != nil {
		t.Fatalf("expected username key to be cached after fallthrough, got %v", err)
	}
}

func TestUserRepository_FindByID_NotFound(t *testing.T) {
	repo := NewUserRepository(memory.NewUserRepository(), newFakeClient(), time.Minute, nil)

	_, err := repo.FindByID(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserRepository_UpdateLastLogin_RefreshesCache(t *testing.T) {
	client := newFakeClient()
	backing := memory.NewUserRepository()
	repo := NewUserRepository(backing, client, time.Minute, nil)
	ctx := context.Background()

	created, err := repo.CreateUser(ctx, domain.User{ID: "user-1", Username: "alice", PasswordHash: "hash", Salt: "salt"})
	if err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	if err := repo.UpdateLastLogin(ctx, created.ID, now); err != nil {
		t.Fatalf("UpdateLastLogin returned error: %v", err)
	}

	got, err := repo.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("FindByID returned error: %v", err)
	}
	if !got.LastLogin.Equal(now) {
		t.Fatalf("expected cached last login %v, got %v", now, got.LastLogin)
	}
}
