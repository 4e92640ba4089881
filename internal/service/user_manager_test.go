package service

import (
	"context"
	"errors"
	"testing"

	"github.com/meeting-platform/core/internal/domain"
	"github.com/meeting-platform/core/internal/repository/memory"
)

func TestUserManager_RegisterAndAuthenticate(t *testing.T) {
	manager := NewUserManager(memory.NewUserRepository(), nil)
	ctx := context.Background()

	created, err := manager.Register(ctx, RegisterParams{
		Username: "alice",
		Password: "correct-horse",
		Email:    "alice@example.com",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if created.ID == "" || created.NumericID == 0 {
		t.Fatalf("expected an assigned id and numeric id, got %+v", created)
	}

	authenticated, err := manager.Authenticate(ctx, LoginParams{Username: "alice", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if authenticated.ID != created.ID {
		t.Fatalf("expected authenticated user %q, got %q", created.ID, authenticated.ID)
	}
}

func TestUserManager_Register_DuplicateUsername(t *testing.T) {
	manager := NewUserManager(memory.NewUserRepository(), nil)
	ctx := context.Background()

	params := RegisterParams{Username: "alice", Password: "correct-horse", Email: "alice@example.com"}
	if _, err := manager.Register(ctx, params); err != nil {
		t.Fatalf("first Register returned error: %v", err)
	}

	_, err := manager.Register(ctx, params)
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestUserManager_Register_Validation(t *testing.T) {
	manager := NewUserManager(memory.NewUserRepository(), nil)
	ctx := context.Background()

	cases := []RegisterParams{
		{Username: "", Password: "correct-horse", Email: "bob@example.com"},
		{Username: "bob", Password: "short", Email: "bob@example.com"},
		{Username: "bob", Password: "correct-horse", Email: "not-an-email"},
		{Username: "bob", Password: "correct-horse", Email: ""},
	}
	for _, params := range cases {
		if _, err := manager.Register(ctx, params); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("Register(%+v): expected ErrInvalidArgument, got %v", params, err)
		}
	}
}

func TestUserManager_Authenticate_UnknownUsername(t *testing.T) {
	manager := NewUserManager(memory.NewUserRepository(), nil)

	_, err := manager.Authenticate(context.Background(), LoginParams{Username: "ghost", Password: "whatever"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown username must not be reported as ErrInvalidCredentials: %v", err)
	}
}

func TestUserManager_Authenticate_WrongPassword(t *testing.T) {
	manager := NewUserManager(memory.NewUserRepository(), nil)
	ctx := context.Background()

	if _, err := manager.Register(ctx, RegisterParams{Username: "alice", Password: "correct-horse", Email: "alice@example.com"}); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	_, err := manager.Authenticate(ctx, LoginParams{Username: "alice", Password: "wrong-password"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestUserManager_Get(t *testing.T) {
	manager := NewUserManager(memory.NewUserRepository(), nil)
	ctx := context.Background()

	created, err := manager.Register(ctx, RegisterParams{Username: "alice", Password: "correct-horse", Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	got, err := manager.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.Username != "alice" {
		t.Fatalf("expected username alice, got %q", got.Username)
	}
}
