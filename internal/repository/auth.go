// Package repository provides Postgres persistence for the storefront API.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/atinyakov/CropCircle/internal/models"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert violates a unique constraint.
var ErrDuplicate = errors.New("already exists")

// uniqueViolation is the Postgres SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// PostgresAuthRepository stores users and their bearer sessions.
type PostgresAuthRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresAuthRepository creates a PostgresAuthRepository on db.
func NewPostgresAuthRepository(db *sql.DB) *PostgresAuthRepository {
	return &PostgresAuthRepository{DB: db}
}

// CreateUser inserts a new user. It returns ErrDuplicate if the email is taken.
func (r *PostgresAuthRepository) CreateUser(ctx context.Context, u models.User) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO users (email, password_hash) VALUES ($1, $2)`,
		u.Email, u.PasswordHash,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("CreateUser: %w", err)
	}
	return nil
}

// GetUser loads a user by email. It returns ErrNotFound if no user matches.
func (r *PostgresAuthRepository) GetUser(ctx context.Context, email string) (*models.User, error) {
	u := models.User{Email: email}
	err := r.DB.QueryRowContext(ctx,
		`SELECT password_hash FROM users WHERE email = $1`,
		email,
	).Scan(&u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetUser: %w", err)
	}
	return &u, nil
}

// CreateSession records token as a live session for email.
func (r *PostgresAuthRepository) CreateSession(ctx context.Context, token, email string) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO sessions (token, user_email) VALUES ($1, $2)`,
		token, email,
	)
	if err != nil {
		return fmt.Errorf("CreateSession: %w", err)
	}
	return nil
}

// SessionUser returns the email owning a live token, or ErrNotFound for an
// unknown or revoked token.
func (r *PostgresAuthRepository) SessionUser(ctx context.Context, token string) (string, error) {
	var email string
	err := r.DB.QueryRowContext(ctx,
		`SELECT user_email FROM sessions WHERE token = $1 AND revoked_at IS NULL`,
		token,
	).Scan(&email)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("SessionUser: %w", err)
	}
	return email, nil
}

// RevokeSession marks token as revoked. Revoking an unknown or already
// revoked token is not an error.
func (r *PostgresAuthRepository) RevokeSession(ctx context.Context, token string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE sessions SET revoked_at = now() WHERE token = $1 AND revoked_at IS NULL`,
		token,
	)
	if err != nil {
		return fmt.Errorf("RevokeSession: %w", err)
	}
	return nil
}
