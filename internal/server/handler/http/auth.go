// Package http provides the storefront API handlers: authentication,
// transactions and media upload.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/CropCircle/internal/middleware"
	"github.com/atinyakov/CropCircle/internal/models"
	"github.com/atinyakov/CropCircle/internal/service"
)

// AuthService defines the authentication operations required by AuthHandler.
type AuthService interface {
	// Register creates a user.
	Register(ctx context.Context, c models.Credentials) error
	// Login returns a new bearer token for valid credentials.
	Login(ctx context.Context, c models.Credentials) (string, error)
	// Logout revokes the token.
	Logout(ctx context.Context, token string) error
}

// AuthHandler handles registration, login and logout.
type AuthHandler struct {
	// AuthService performs the underlying authentication operations.
	AuthService AuthService
	// Log receives server-side failures. Nil disables logging.
	Log *zap.Logger
}

// Register handles POST /api/auth/register with a JSON {email, password} body.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.Credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	err := h.AuthService.Register(r.Context(), req)
	switch {
	case err == nil:
		writeEnvelope(w, http.StatusOK, models.Success(map[string]string{"email": req.Email}))
	case errors.Is(err, service.ErrUserExists), errors.Is(err, service.ErrInvalidInput):
		writeEnvelope(w, http.StatusOK, models.Failure(err.Error()))
	default:
		logger(h.Log).Error("register failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// Login handles POST /api/auth/login. The outcome is carried by the envelope
// discriminator: HTTP 200 for both success and rejected credentials.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.Credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	token, err := h.AuthService.Login(r.Context(), req)
	switch {
	case err == nil:
		writeEnvelope(w, http.StatusOK, models.Success(models.Token{Token: token}))
	case errors.Is(err, service.ErrInvalidCredentials):
		writeEnvelope(w, http.StatusOK, models.Failure(err.Error()))
	default:
		logger(h.Log).Error("login failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// Logout handles POST /api/auth/logout and revokes the bearer token the
// request was authorized with.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.GetTokenFromContext(r.Context())
	if token == "" {
		http.Error(w, "missing bearer token", http.StatusUnauthorized)
		return
	}
	if err := h.AuthService.Logout(r.Context(), token); err != nil {
		logger(h.Log).Error("logout failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeEnvelope(w, http.StatusOK, models.Success(nil))
}
