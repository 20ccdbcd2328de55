// Package bootstrap chooses the initial navigation route at startup from the
// presence of a stored Credential.
package bootstrap

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Route names an initial navigation state.
type Route string

const (
	// RouteDashboard is selected when a Credential is stored.
	RouteDashboard Route = "Dashboard"
	// RouteEntry is selected when no Credential is available.
	RouteEntry Route = "Entry"
)

// State is the lifecycle of a Bootstrapper.
type State int

const (
	StateLoading State = iota
	StateResolved
)

func (s State) String() string {
	if s == StateResolved {
		return "resolved"
	}
	return "loading"
}

// TokenSource yields the stored Credential, "" when none is stored.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Resolve reads the Credential once. A read error is treated as absence.
func Resolve(ctx context.Context, src TokenSource, log *zap.Logger) Route {
	if log == nil {
		log = zap.NewNop()
	}
	token, err := src.Token(ctx)
	if err != nil {
		log.Warn("credential read failed, starting unauthenticated", zap.Error(err))
		return RouteEntry
	}
	if token == "" {
		return RouteEntry
	}
	return RouteDashboard
}

// Bootstrapper runs Resolve once in the background and publishes the result.
type Bootstrapper struct {
	src TokenSource
	log *zap.Logger

	once  sync.Once
	done  chan struct{}
	mu    sync.RWMutex
	state State
	route Route
}

// New returns a Bootstrapper in StateLoading.
func New(src TokenSource, log *zap.Logger) *Bootstrapper {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bootstrapper{src: src, log: log, done: make(chan struct{})}
}

// Start launches the credential check. Calls after the first are no-ops.
func (b *Bootstrapper) Start(ctx context.Context) {
	b.once.Do(func() {
		go func() {
			route := Resolve(ctx, b.src, b.log)

			b.mu.Lock()
			b.route = route
			b.state = StateResolved
			b.mu.Unlock()

			b.log.Info("initial route resolved", zap.String("route", string(route)))
			close(b.done)
		}()
	})
}

// State reports whether the check has finished.
func (b *Bootstrapper) State() State {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}

// Route returns the resolved route and whether resolution has finished.
func (b *Bootstrapper) Route() (Route, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.route, b.state == StateResolved
}

// Wait blocks until the route is resolved or ctx is done. Start must have
// been called.
func (b *Bootstrapper) Wait(ctx context.Context) (Route, error) {
	select {
	case <-b.done:
		route, _ := b.Route()
		return route, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
