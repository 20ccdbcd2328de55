// Package main runs the interactive CropCircle storefront client: it restores
// the stored session, resolves the initial route and starts the shell.
package main

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/atinyakov/CropCircle/internal/certgen"
	"github.com/atinyakov/CropCircle/internal/client/api"
	"github.com/atinyakov/CropCircle/internal/client/auth"
	"github.com/atinyakov/CropCircle/internal/client/bootstrap"
	"github.com/atinyakov/CropCircle/internal/client/session"
	"github.com/atinyakov/CropCircle/internal/client/shell"
	"github.com/atinyakov/CropCircle/internal/config"
	"github.com/atinyakov/CropCircle/internal/logger"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	options, err := config.ParseClient()
	if err != nil {
		log.Fatal(err)
	}

	if options.ShowVersion {
		fmt.Printf("CropCircle Client\nVersion: %s\nBuild Date: %s\n", cmp.Or(version, "N/A"), cmp.Or(buildDate, "N/A"))
		return
	}

	l := logger.New()
	defer func() { _ = l.Log.Sync() }()
	if err := l.Init(options.LogLevel); err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	zapLogger := l.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, options.Store, options.StorePath)
	if err != nil {
		zapLogger.Fatal("cannot open credential store", zap.String("store", options.Store), zap.Error(err))
	}
	defer closeStore()

	sess := session.NewSession(store, zapLogger)

	var opts []api.Option
	if options.CAFile != "" {
		caPEM, err := os.ReadFile(options.CAFile)
		if err != nil {
			zapLogger.Fatal("failed to read CA cert", zap.Error(err))
		}
		pool, err := certgen.RootPool(caPEM)
		if err != nil {
			zapLogger.Fatal("failed to parse CA cert", zap.Error(err))
		}
		opts = append(opts, api.WithRootCAs(pool))
	}
	client, err := api.New(options.APIURL, sess, zapLogger, opts...)
	if err != nil {
		zapLogger.Fatal("cannot create API client", zap.Error(err))
	}
	flow := auth.NewFlow(client, sess, zapLogger)

	b := bootstrap.New(sess, zapLogger)
	b.Start(ctx)
	fmt.Println("Loading...")
	route, err := b.Wait(ctx)
	if err != nil {
		return
	}
	fmt.Printf("Route: %s\n", route)

	sh := shell.New(client, flow, route, os.Stdin, os.Stdout,
		shell.WithLogger(zapLogger),
		shell.WithPasswordReader(passwordReader(os.Stdin, os.Stdout)),
	)
	if err := sh.Run(ctx); err != nil && ctx.Err() == nil {
		zapLogger.Error("shell stopped", zap.Error(err))
	}
}

// openStore builds the credential backend named by kind.
func openStore(ctx context.Context, kind, path string) (session.Store, func(), error) {
	switch kind {
	case "memory":
		return session.NewMemoryStore(), func() {}, nil
	case "sqlite":
		s, err := session.OpenSQLite(ctx, cmp.Or(path, "cropcircle.db"))
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	default:
		return session.NewFileStore(path), func() {}, nil
	}
}

// passwordReader hides input when stdin is a terminal. Otherwise the shell
// reads the password as the next input line.
func passwordReader(in *os.File, out io.Writer) shell.PasswordReader {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return nil
	}
	return func(prompt string) (string, error) {
		fmt.Fprint(out, prompt)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(out)
		return string(b), err
	}
}
