// Package auth implements the storefront login and logout flow on top of
// the API client and the persisted session.
package auth

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/atinyakov/CropCircle/internal/client/api"
	"github.com/atinyakov/CropCircle/internal/client/bootstrap"
)

const (
	loginPath  = "auth/login"
	logoutPath = "auth/logout"
)

// ErrRejected is returned when the login endpoint answers without the
// success discriminator or without a token.
var ErrRejected = errors.New("login rejected")

// Poster sends a JSON POST to the storefront API.
type Poster interface {
	Post(ctx context.Context, path string, body any) (*api.Envelope, error)
}

// SessionStore persists the Credential.
type SessionStore interface {
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// LoginRequest is the body of the login call.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the payload of a successful login envelope.
type LoginResponse struct {
	Token string `json:"token"`
}

// Flow ties the login endpoint to the session.
type Flow struct {
	api     Poster
	session SessionStore
	log     *zap.Logger
}

// NewFlow returns a Flow. A nil logger disables logging.
func NewFlow(p Poster, s SessionStore, log *zap.Logger) *Flow {
	if log == nil {
		log = zap.NewNop()
	}
	return &Flow{api: p, session: s, log: log}
}

// Login submits credentials. On success the returned token is persisted and
// RouteDashboard is returned. Any other outcome leaves the stored Credential
// untouched.
func (f *Flow) Login(ctx context.Context, email, password string) (bootstrap.Route, error) {
	env, err := f.api.Post(ctx, loginPath, LoginRequest{Email: email, Password: password})
	if err != nil {
		f.log.Error("something went wrong", zap.String("email", email), zap.Error(err))
		return bootstrap.RouteEntry, err
	}
	f.log.Debug("login result", zap.String("status", env.Status))

	if !env.OK() {
		f.log.Error("login rejected", zap.String("email", email),
			zap.String("status", env.Status), zap.String("message", env.Message))
		return bootstrap.RouteEntry, rejected(env.Message)
	}

	var resp LoginResponse
	if err := env.Decode(&resp); err != nil || resp.Token == "" {
		f.log.Error("login response carries no token", zap.String("email", email), zap.Error(err))
		return bootstrap.RouteEntry, rejected("missing token")
	}

	if err := f.session.Save(ctx, resp.Token); err != nil {
		f.log.Error("failed to persist credential", zap.Error(err))
		return bootstrap.RouteEntry, err
	}

	f.log.Info("logged in", zap.String("email", email))
	return bootstrap.RouteDashboard, nil
}

// Logout asks the server to revoke the session, then removes the stored
// Credential. A failed revoke is logged only.
func (f *Flow) Logout(ctx context.Context) (bootstrap.Route, error) {
	if _, err := f.api.Post(ctx, logoutPath, nil); err != nil {
		f.log.Warn("server logout failed, clearing local credential anyway", zap.Error(err))
	}

	if err := f.session.Clear(ctx); err != nil {
		f.log.Error("failed to remove credential", zap.Error(err))
		return bootstrap.RouteDashboard, err
	}
	return bootstrap.RouteEntry, nil
}

func rejected(msg string) error {
	if msg == "" {
		return ErrRejected
	}
	return fmt.Errorf("%w: %s", ErrRejected, msg)
}
