// Package main initializes and starts the CropCircle reference API server,
// setting up configuration, logging, database connections, repositories,
// services, handlers, and optional TLS.
package main

import (
	"cmp"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/CropCircle/internal/config"
	"github.com/atinyakov/CropCircle/internal/db"
	"github.com/atinyakov/CropCircle/internal/logger"
	"github.com/atinyakov/CropCircle/internal/repository"
	"github.com/atinyakov/CropCircle/internal/server/handler/http"
	"github.com/atinyakov/CropCircle/internal/service"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line and environment configuration.
	options, err := config.Parse()
	if err != nil {
		log.Fatal(err)
	}

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	l := logger.New()
	defer func() { _ = l.Log.Sync() }()
	if err := l.Init(options.LogLevel); err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	zapLogger := l.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize PostgreSQL connection.
	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}
	defer postgresDB.Close()

	// Purge revoked sessions once they are past retention.
	db.StartRevokedSessionCleaner(ctx, postgresDB, time.Hour, options.SessionRetention, zapLogger)

	if err := os.MkdirAll(options.MediaDir, 0o750); err != nil {
		zapLogger.Fatal("cannot create media directory", zap.String("dir", options.MediaDir), zap.Error(err))
	}

	// Repositories.
	authRepo := repository.NewPostgresAuthRepository(postgresDB)
	txRepo := repository.NewPostgresTransactionRepository(postgresDB)
	mediaRepo := repository.NewPostgresMediaRepository(postgresDB)

	// Business-logic services.
	authService := service.NewAuthService(authRepo)
	txService := service.NewTransactionService(txRepo)
	mediaService := service.NewMediaService(mediaRepo, options.MediaDir)

	// HTTP handlers.
	authHandler := &http.AuthHandler{AuthService: authService, Log: zapLogger}
	dashboard := &http.DashboardHandler{Transactions: txService, Media: mediaService, Log: zapLogger}

	router := http.NewRouter(authHandler, dashboard, authService, zapLogger)

	server := &nethttp.Server{
		Addr:              options.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("shutdown failed", zap.Error(err))
		}
	}()

	if options.TLSCert != "" && options.TLSKey != "" {
		cert, err := tls.LoadX509KeyPair(options.TLSCert, options.TLSKey)
		if err != nil {
			zapLogger.Fatal("failed to load server TLS cert/key", zap.Error(err))
		}
		server.TLSConfig = &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		}
		zapLogger.Info("starting HTTPS server", zap.String("addr", options.Port))
		err = server.ListenAndServeTLS("", "")
		if err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			zapLogger.Fatal("failed to start HTTPS server", zap.Error(err))
		}
		return
	}

	zapLogger.Info("starting HTTP server", zap.String("addr", options.Port))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}
