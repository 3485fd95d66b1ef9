package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/avdonin/gw-code-review/internal/logger"
	"github.com/avdonin/gw-code-review/internal/models"
)

// ErrUniqueViolation is returned when an insert hits a unique constraint.
// The users table enforces uniqueness of username and email, so concurrent
// registrations with the same identity are resolved here, not by the caller.
var ErrUniqueViolation = errors.New("unique constraint violation")

type UserReadRepository struct {
	db *sqlx.DB
}

func NewUserReadRepository(db *sqlx.DB) *UserReadRepository {
	return &UserReadRepository{db: db}
}

// GetByUsernameOrEmail returns the first user matching the non-nil filters,
// or nil when no user matches.
func (r *UserReadRepository) GetByUsernameOrEmail(ctx context.Context, username, email *string) (*models.UserDB, error) {
	const query = `
		SELECT user_id, username, email, password_hash, created_at, updated_at
		FROM users
		WHERE ($1::VARCHAR IS NOT NULL AND username = $1)
		   OR ($2::VARCHAR IS NOT NULL AND email = $2)
		LIMIT 1
	`

	var user models.UserDB
	err := r.db.GetContext(ctx, &user, query, username, email)

	logger.Log.Debugw("user select",
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{username, email},
		"error", err,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// GetByUsername returns the user with the exact username, or nil when absent.
func (r *UserReadRepository) GetByUsername(ctx context.Context, username string) (*models.UserDB, error) {
	const query = `
		SELECT user_id, username, email, password_hash, created_at, updated_at
		FROM users
		WHERE username = $1
		LIMIT 1
	`

	var user models.UserDB
	err := r.db.GetContext(ctx, &user, query, username)

	logger.Log.Debugw("user select",
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{username},
		"error", err,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

type UserWriteRepository struct {
	db *sqlx.DB
}

func NewUserWriteRepository(db *sqlx.DB) *UserWriteRepository {
	return &UserWriteRepository{db: db}
}

// Save inserts a new user record. The password argument must already be
// hashed; this layer never sees the plaintext.
func (r *UserWriteRepository) Save(ctx context.Context, username, email, passwordHash string) (uuid.UUID, error) {
	const query = `
		INSERT INTO users (username, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING user_id
	`
	args := []any{username, email, passwordHash}

	var userID uuid.UUID
	err := r.db.GetContext(ctx, &userID, query, args...)

	logger.Log.Debugw("user insert",
		"query", strings.Join(strings.Fields(query), " "),
		"username", username,
		"email", email,
		"error", err,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return uuid.Nil, ErrUniqueViolation
		}
		return uuid.Nil, err
	}

	return userID, nil
}
