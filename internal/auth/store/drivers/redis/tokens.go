// Package redis stores refresh tokens in Redis so every service instance
// sees the same revocations.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/quill/internal/auth/store"
	"github.com/aussiebroadwan/quill/pkg/cryptox"
	"github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces refresh token keys.
const DefaultPrefix = "quill:refresh"

// TokenStore keys entries by token fingerprint, so raw refresh tokens never
// reach the cache.
type TokenStore struct {
	rdb    redis.UniversalClient
	prefix string
}

var _ store.TokenStore = (*TokenStore)(nil)

func NewTokenStore(rdb redis.UniversalClient, prefix string) *TokenStore {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &TokenStore{rdb: rdb, prefix: prefix}
}

// NewClient parses a redis:// URL into a client.
func NewClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

func (s *TokenStore) key(token string) string {
	return s.prefix + ":" + cryptox.FingerprintToken(token)
}

func (s *TokenStore) Put(ctx context.Context, token, subject string, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("redis token store: ttl must be positive, got %s", ttl)
	}
	if err := s.rdb.Set(ctx, s.key(token), subject, ttl).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

func (s *TokenStore) Get(ctx context.Context, token string) (string, error) {
	sub, err := s.rdb.Get(ctx, s.key(token)).Result()
	return sub, mapErr(err)
}

func (s *TokenStore) Delete(ctx context.Context, token string) error {
	if err := s.rdb.Del(ctx, s.key(token)).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

// Take uses GETDEL, so concurrent callers cannot both observe the entry.
func (s *TokenStore) Take(ctx context.Context, token string) (string, error) {
	sub, err := s.rdb.GetDel(ctx, s.key(token)).Result()
	return sub, mapErr(err)
}

func (s *TokenStore) Ping(ctx context.Context) error {
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, redis.Nil):
		return store.ErrNotFound
	default:
		return unavailable(err)
	}
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
}
