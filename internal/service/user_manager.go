package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/meeting-platform/core/internal/domain"
)

// UserManager orchestrates registration and authentication against a
// domain.UserRepository, hashing and comparing passwords with PBKDF2.
type UserManager struct {
	users  domain.UserRepository
	now    func() time.Time
	logger *slog.Logger
}

// NewUserManager constructs a UserManager backed by users.
func NewUserManager(users domain.UserRepository, logger *slog.Logger) *UserManager {
	return &UserManager{users: users, now: time.Now, logger: defaultLogger(logger)}
}

// Register validates params, hashes the password, and persists a new user.
func (m *UserManager) Register(ctx context.Context, params RegisterParams) (domain.User, error) {
	logger := serviceLogger(ctx, m.logger, "UserManager", "Register", "username", params.Username)

	username := strings.TrimSpace(params.Username)
	if username == "" {
		return domain.User{}, fmt.Errorf("%w: username is required", ErrInvalidArgument)
	}
	if len(params.Password) < 8 {
		return domain.User{}, fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidArgument)
	}
	email := strings.TrimSpace(params.Email)
	if email == "" {
		return domain.User{}, fmt.Errorf("%w: email is required", ErrInvalidArgument)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return domain.User{}, fmt.Errorf("%w: email is invalid", ErrInvalidArgument)
	}

	hash, salt, err := hashPassword(params.Password)
	if err != nil {
		logger.ErrorContext(ctx, "failed to hash password", "error", err)
		return domain.User{}, err
	}

	now := m.now()
	user := domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		DisplayName:  strings.TrimSpace(params.DisplayName),
		Email:        email,
		PasswordHash: hash,
		Salt:         salt,
		CreatedAt:    now,
	}

	created, err := m.users.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			logger.WarnContext(ctx, "registration rejected, username taken")
			return domain.User{}, err
		}
		logger.ErrorContext(ctx, "failed to persist user", "error", err)
		return domain.User{}, err
	}

	logger.InfoContext(ctx, "user registered", "user_id", created.ID, "numeric_id", created.NumericID)
	return created, nil
}

// Authenticate verifies params against the stored credentials for the named
// user and returns the user record on success.
func (m *UserManager) Authenticate(ctx context.Context, params LoginParams) (domain.User, error) {
	logger := serviceLogger(ctx, m.logger, "UserManager", "Authenticate", "username", params.Username)

	user, err := m.users.FindByUserName(ctx, params.Username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			logger.WarnContext(ctx, "login rejected, unknown username")
			return domain.User{}, err
		}
		logger.ErrorContext(ctx, "failed to look up user", "error", err)
		return domain.User{}, err
	}

	if !verifyPassword(params.Password, user.PasswordHash, user.Salt) {
		logger.WarnContext(ctx, "login rejected, bad password")
		return domain.User{}, ErrInvalidCredentials
	}

	if err := m.users.UpdateLastLogin(ctx, user.ID, m.now()); err != nil {
		logger.WarnContext(ctx, "failed to record last login", "error", err)
	}

	return user, nil
}

// Get returns the user identified by userID.
func (m *UserManager) Get(ctx context.Context, userID string) (domain.User, error) {
	return m.users.FindByID(ctx, userID)
}
