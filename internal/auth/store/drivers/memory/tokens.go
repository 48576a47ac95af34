// Package memory is an in-process refresh token store. Entries live in one
// process only, so it suits a single instance or tests; run the redis driver
// when more than one instance serves traffic.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aussiebroadwan/quill/internal/auth/store"
	"github.com/aussiebroadwan/quill/pkg/cryptox"
)

type entry struct {
	subject   string
	expiresAt time.Time
}

type TokenStore struct {
	mu      sync.Mutex
	entries map[string]entry

	// Now is overridable for tests. Defaults to time.Now.
	Now func() time.Time
}

var _ store.TokenStore = (*TokenStore)(nil)

func NewTokenStore() *TokenStore {
	return &TokenStore{entries: make(map[string]entry)}
}

func (s *TokenStore) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *TokenStore) Put(_ context.Context, token, subject string, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("memory token store: ttl must be positive, got %s", ttl)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[cryptox.FingerprintToken(token)] = entry{subject: subject, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *TokenStore) Get(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookup(cryptox.FingerprintToken(token), false)
}

func (s *TokenStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, cryptox.FingerprintToken(token))
	return nil
}

func (s *TokenStore) Take(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookup(cryptox.FingerprintToken(token), true)
}

func (s *TokenStore) Ping(context.Context) error { return nil }

// lookup must be called with mu held. Expired entries are dropped on sight.
func (s *TokenStore) lookup(key string, consume bool) (string, error) {
	e, ok := s.entries[key]
	if !ok {
		return "", store.ErrNotFound
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.entries, key)
		return "", store.ErrNotFound
	}
	if consume {
		delete(s.entries, key)
	}
	return e.subject, nil
}

// Sweep drops every expired entry and reports how many were removed.
func (s *TokenStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for k, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, k)
			n++
		}
	}
	return n
}

// Len reports the number of stored entries, expired or not.
func (s *TokenStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
