package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/meeting-platform/core/internal/domain"
)

// UserRepository implements domain.UserRepository against a durable SQLite
// database, mapping uniqueness violations to domain.ErrAlreadyExists.
type UserRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewUserRepository constructs a SQLite-backed UserRepository.
func NewUserRepository(pool *ConnectionPool) *UserRepository {
	return &UserRepository{pool: pool, helper: NewQueryHelper(pool), mapper: NewErrorMapper()}
}

// CreateUser inserts a new user row and returns it with its assigned
// NumericID.
func (r *UserRepository) CreateUser(ctx context.Context, user domain.User) (domain.User, error) {
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}

	query := `
		INSERT INTO users (id, username, display_name, email, password_hash, salt, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.helper.Exec(ctx, query,
		user.ID, user.Username, user.DisplayName, user.Email,
		user.PasswordHash, user.Salt, user.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if errors.Is(r.mapper.MapError(err), ErrDuplicateRecord) {
			return domain.User{}, domain.ErrAlreadyExists
		}
		return domain.User{}, err
	}

	numericID, err := result.LastInsertId()
	if err != nil {
		return domain.User{}, err
	}
	user.NumericID = uint64(numericID)
	return user, nil
}

// FindByUserName returns the user with the given username.
func (r *UserRepository) FindByUserName(ctx context.Context, username string) (domain.User, error) {
	row := r.helper.QueryRow(ctx, `
		SELECT numeric_id, id, username, display_name, email, password_hash, salt, created_at, last_login
		FROM users WHERE username = ?`, username)
	return scanUser(row)
}

// FindByID returns the user with the given opaque id.
func (r *UserRepository) FindByID(ctx context.Context, userID string) (domain.User, error) {
	row := r.helper.QueryRow(ctx, `
		SELECT numeric_id, id, username, display_name, email, password_hash, salt, created_at, last_login
		FROM users WHERE id = ?`, userID)
	return scanUser(row)
}

// UpdateLastLogin records the most recent successful login time for userID.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, userID string, lastLogin time.Time) error {
	result, err := r.helper.Exec(ctx, `UPDATE users SET last_login = ? WHERE id = ?`,
		lastLogin.UTC().Format(time.RFC3339), userID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanUser(row *sql.Row) (domain.User, error) {
	var (
		user      domain.User
		createdAt string
		lastLogin sql.NullString
	)
	err := row.Scan(&user.NumericID, &user.ID, &user.Username, &user.DisplayName,
		&user.Email, &user.PasswordHash, &user.Salt, &createdAt, &lastLogin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, err
	}
	user.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	if lastLogin.Valid {
		user.LastLogin, _ = time.Parse(time.RFC3339, lastLogin.String)
	}
	return user, nil
}
