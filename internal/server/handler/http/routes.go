package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/atinyakov/CropCircle/internal/middleware"
)

const (
	pathRegister = "/api/auth/register"
	pathLogin    = "/api/auth/login"
)

// NewRouter constructs the storefront API handler.
//
// Routes:
//
//	POST /api/auth/register  → authHandler.Register
//	POST /api/auth/login     → authHandler.Login
//	POST /api/auth/logout    → authHandler.Logout          (bearer)
//	GET  /api/transactions   → dashboard.ListTransactions  (bearer)
//	POST /api/transactions   → dashboard.AddTransaction    (bearer)
//	POST /api/media          → dashboard.UploadMedia       (bearer)
//
// Middleware chain (applied in order):
//  1. AllowContentType(application/json, multipart/form-data)
//  2. WithRequestLogging(logger)
//  3. BearerAuth(auth), skipping register and login
func NewRouter(
	authHandler *AuthHandler,
	dashboard *DashboardHandler,
	auth middleware.Authenticator,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.AllowContentType("application/json", "multipart/form-data"))
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(middleware.BearerAuth(auth, pathRegister, pathLogin))

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/logout", authHandler.Logout)
		})

		r.Get("/transactions", dashboard.ListTransactions)
		r.Post("/transactions", dashboard.AddTransaction)
		r.Post("/media", dashboard.UploadMedia)
	})

	return r
}
