package session

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Session is the single writer of the persisted Credential. Readers get a
// snapshot taken under a read lock, so a request never observes a Credential
// half way through Clear.
type Session struct {
	store Store
	log   *zap.Logger

	mu     sync.RWMutex
	loaded bool
	token  string
}

// NewSession wraps store. A nil logger disables logging.
func NewSession(store Store, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{store: store, log: log}
}

// Token returns the current Credential, or "" when none is stored. The first
// call reads through to the Store; a failed read is returned and retried on
// the next call.
func (s *Session) Token(ctx context.Context) (string, error) {
	s.mu.RLock()
	if s.loaded {
		token := s.token
		s.mu.RUnlock()
		return token, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return s.token, nil
	}

	token, err := s.store.Get(ctx, TokenKey)
	if err != nil {
		return "", fmt.Errorf("read credential: %w", err)
	}
	s.token = token
	s.loaded = true
	return token, nil
}

// Save persists token and makes it visible to subsequent Token calls.
func (s *Session) Save(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Set(ctx, TokenKey, token); err != nil {
		return fmt.Errorf("write credential: %w", err)
	}
	s.token = token
	s.loaded = true
	s.log.Debug("credential stored")
	return nil
}

// Clear removes the persisted Credential.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Remove(ctx, TokenKey); err != nil {
		return fmt.Errorf("remove credential: %w", err)
	}
	s.token = ""
	s.loaded = true
	s.log.Debug("credential removed")
	return nil
}
