// Package service provides the storefront business logic, delegating
// persistence to repository interfaces.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/atinyakov/CropCircle/internal/models"
	"github.com/atinyakov/CropCircle/internal/repository"
)

var (
	// ErrInvalidCredentials is returned when email and password do not match a user.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserExists is returned when registering an email that is taken.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidInput is returned for empty or malformed credentials.
	ErrInvalidInput = errors.New("email and password are required")
)

// AuthRepository defines the persistence operations required by AuthService.
type AuthRepository interface {
	// CreateUser inserts a user; repository.ErrDuplicate when the email is taken.
	CreateUser(ctx context.Context, u models.User) error
	// GetUser loads a user; repository.ErrNotFound when missing.
	GetUser(ctx context.Context, email string) (*models.User, error)
	// CreateSession records a live bearer token.
	CreateSession(ctx context.Context, token, email string) error
	// SessionUser resolves a live token; repository.ErrNotFound otherwise.
	SessionUser(ctx context.Context, token string) (string, error)
	// RevokeSession marks a token as revoked.
	RevokeSession(ctx context.Context, token string) error
}

// AuthService implements registration, login and bearer token checks.
type AuthService struct {
	repo AuthRepository
	cost int
}

// NewAuthService constructs an AuthService using repo.
func NewAuthService(repo AuthRepository) *AuthService {
	return &AuthService{repo: repo, cost: bcrypt.DefaultCost}
}

// Register creates a user with a bcrypt-hashed password.
func (s *AuthService) Register(ctx context.Context, c models.Credentials) error {
	email := normalizeEmail(c.Email)
	if email == "" || c.Password == "" {
		return ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(c.Password), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	err = s.repo.CreateUser(ctx, models.User{Email: email, PasswordHash: hash})
	if errors.Is(err, repository.ErrDuplicate) {
		return ErrUserExists
	}
	return err
}

// Login checks the password and issues a new opaque bearer token.
func (s *AuthService) Login(ctx context.Context, c models.Credentials) (string, error) {
	email := normalizeEmail(c.Email)
	if email == "" || c.Password == "" {
		return "", ErrInvalidCredentials
	}

	u, err := s.repo.GetUser(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(c.Password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token := uuid.NewString()
	if err := s.repo.CreateSession(ctx, token, email); err != nil {
		return "", err
	}
	return token, nil
}

// Authenticate resolves a bearer token to the owning email.
func (s *AuthService) Authenticate(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", models.ErrUnauthorized
	}
	email, err := s.repo.SessionUser(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return "", models.ErrUnauthorized
	}
	return email, err
}

// Logout revokes token.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.repo.RevokeSession(ctx, token)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
