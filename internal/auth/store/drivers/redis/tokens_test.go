package redis_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/quill/internal/auth/store"
	"github.com/aussiebroadwan/quill/internal/auth/store/drivers/redis"
)

func newMiniStore(t *testing.T) (*redis.TokenStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return redis.NewTokenStore(rdb, "test:refresh"), mr
}

func TestTokenStore(t *testing.T) {
	ctx := context.Background()
	s, mr := newMiniStore(t)

	require.NoError(t, s.Ping(ctx))
	require.NoError(t, s.Put(ctx, "tok-1", "user-1", time.Hour))

	t.Run("get", func(t *testing.T) {
		sub, err := s.Get(ctx, "tok-1")
		require.NoError(t, err)
		require.Equal(t, "user-1", sub)

		_, err = s.Get(ctx, "unknown")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("raw token is not used as key", func(t *testing.T) {
		for _, k := range mr.Keys() {
			require.NotContains(t, k, "tok-1")
			require.Contains(t, k, "test:refresh:")
		}
		require.Equal(t, time.Hour, mr.TTL(mr.Keys()[0]))
	})

	t.Run("put overwrites", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, "tok-1", "user-1", 2*time.Hour))
		require.Len(t, mr.Keys(), 1)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, "tok-2", "user-2", time.Hour))
		require.NoError(t, s.Delete(ctx, "tok-2"))
		require.NoError(t, s.Delete(ctx, "tok-2"))
		_, err := s.Get(ctx, "tok-2")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("expires with ttl", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, "tok-3", "user-3", time.Minute))
		mr.FastForward(2 * time.Minute)
		_, err := s.Get(ctx, "tok-3")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("take consumes", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, "tok-4", "user-4", time.Hour))
		sub, err := s.Take(ctx, "tok-4")
		require.NoError(t, err)
		require.Equal(t, "user-4", sub)

		_, err = s.Take(ctx, "tok-4")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("rejects non-positive ttl", func(t *testing.T) {
		require.Error(t, s.Put(ctx, "tok-5", "user-5", 0))
	})
}

func TestTokenStoreTakeRace(t *testing.T) {
	ctx := context.Background()
	s, _ := newMiniStore(t)
	require.NoError(t, s.Put(ctx, "contended", "user-1", time.Hour))

	var wins atomic.Int32
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Take(ctx, "contended"); err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	require.EqualValues(t, 1, wins.Load())
}

func TestTokenStoreUnavailable(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	s := redis.NewTokenStore(rdb, "")
	mr.Close()

	require.ErrorIs(t, s.Ping(ctx), store.ErrUnavailable)
	require.ErrorIs(t, s.Put(ctx, "t", "u", time.Minute), store.ErrUnavailable)
	_, err = s.Get(ctx, "t")
	require.ErrorIs(t, err, store.ErrUnavailable)
	require.NotErrorIs(t, err, store.ErrNotFound)
}

func TestNewClient(t *testing.T) {
	_, err := redis.NewClient("redis://localhost:6379/0")
	require.NoError(t, err)

	_, err = redis.NewClient("http://nope")
	require.Error(t, err)
}
