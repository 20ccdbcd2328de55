package bootstrap

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeSource struct {
	token string
	err   error
	block chan struct{}
	calls atomic.Int32
}

func (f *fakeSource) Token(ctx context.Context) (string, error) {
	f.calls.Add(1)
	if f.block != nil {
		<-f.block
	}
	return f.token, f.err
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		src  *fakeSource
		want Route
	}{
		{name: "stored credential", src: &fakeSource{token: "abc123"}, want: RouteDashboard},
		{name: "empty storage", src: &fakeSource{}, want: RouteEntry},
		{name: "storage error", src: &fakeSource{token: "abc123", err: errors.New("io")}, want: RouteEntry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(context.Background(), tt.src, nil)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, int32(1), tt.src.calls.Load(), "no retry expected")
		})
	}
}

func TestResolve_LogsReadFailure(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	Resolve(context.Background(), &fakeSource{err: errors.New("io")}, zap.New(core))
	assert.Equal(t, 1, logs.FilterMessage("credential read failed, starting unauthenticated").Len())
}

func TestBootstrapper_LoadingThenResolved(t *testing.T) {
	src := &fakeSource{token: "abc123", block: make(chan struct{})}
	b := New(src, nil)
	assert.Equal(t, StateLoading, b.State())

	b.Start(context.Background())
	_, ok := b.Route()
	assert.False(t, ok)
	assert.Equal(t, StateLoading, b.State())

	close(src.block)
	route, err := b.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, RouteDashboard, route)
	assert.Equal(t, StateResolved, b.State())
}

func TestBootstrapper_StartIsOneShot(t *testing.T) {
	src := &fakeSource{}
	b := New(src, nil)
	b.Start(context.Background())
	b.Start(context.Background())

	route, err := b.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, RouteEntry, route)

	b.Start(context.Background())
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestBootstrapper_WaitHonoursContext(t *testing.T) {
	src := &fakeSource{block: make(chan struct{})}
	defer close(src.block)

	b := New(src, nil)
	b.Start(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := b.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "loading", StateLoading.String())
	assert.Equal(t, "resolved", StateResolved.String())
}
