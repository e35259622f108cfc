package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"mememe-api/infrastructure/cache/redis"
	"mememe-api/pkg/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingStore reports itself available but fails every operation
type failingStore struct {
	calls int
}

func (s *failingStore) Available(ctx context.Context) bool { return true }

func (s *failingStore) RecordHit(ctx context.Context, key string, now time.Time, window time.Duration) (int64, string, error) {
	s.calls++
	return 0, "", errors.New("connection refused")
}

func (s *failingStore) ForgetHit(ctx context.Context, key, member string) error { return nil }

func newRedisLimiter(t *testing.T) (*Limiter, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	store, err := redis.NewRedisCache(config.RedisConfig{URL: "redis://" + server.Addr()}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return NewLimiter(store, nil, 10, time.Minute), server
}

func assertWindow(t *testing.T, limiter *Limiter, identity string) {
	t.Helper()
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		result := limiter.Check(ctx, identity)
		require.True(t, result.Success, "request %d should be allowed", i+1)
		assert.Equal(t, 10, result.Limit)
		assert.Equal(t, 10-i-1, result.Remaining)
	}

	result := limiter.Check(ctx, identity)
	assert.False(t, result.Success)
	assert.Equal(t, 0, result.Remaining)
}

func TestLimiter_Distributed_Window(t *testing.T) {
	limiter, _ := newRedisLimiter(t)

	assertWindow(t, limiter, "203.0.113.4")

	// a different identity is unaffected
	result := limiter.Check(context.Background(), "198.51.100.7")
	assert.True(t, result.Success)
	assert.Equal(t, 9, result.Remaining)
}

func TestLimiter_Distributed_RejectedProbesNotCounted(t *testing.T) {
	limiter, server := newRedisLimiter(t)
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		limiter.Check(ctx, "203.0.113.4")
	}

	members, err := server.ZMembers("ratelimit:203.0.113.4")
	require.NoError(t, err)
	assert.Len(t, members, 10)
}

func TestLimiter_Distributed_SlidesWithClock(t *testing.T) {
	limiter, _ := newRedisLimiter(t)
	now := time.UnixMilli(1_760_000_000_000)
	limiter.WithClock(func() time.Time { return now })
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		require.True(t, limiter.Check(ctx, "a").Success)
	}
	require.False(t, limiter.Check(ctx, "a").Success)

	now = now.Add(61 * time.Second)
	result := limiter.Check(ctx, "a")
	assert.True(t, result.Success)
	assert.Equal(t, 9, result.Remaining)
	assert.Equal(t, now.Add(time.Minute).UnixMilli(), result.Reset)
}

func TestLimiter_Local_Window(t *testing.T) {
	limiter := NewLimiter(nil, nil, 10, time.Minute)

	assertWindow(t, limiter, "203.0.113.4")
	assert.True(t, limiter.Check(context.Background(), "198.51.100.7").Success)
}

func TestLimiter_Local_ResetAlignedToWindow(t *testing.T) {
	now := time.UnixMilli(1_760_000_015_000) // 15s into a minute-aligned window
	limiter := NewLimiter(nil, nil, 2, time.Minute).WithClock(func() time.Time { return now })
	ctx := context.Background()

	first := limiter.Check(ctx, "a")
	assert.Equal(t, int64(1_760_000_040_000), first.Reset)
	assert.Equal(t, 1, first.Remaining)

	require.True(t, limiter.Check(ctx, "a").Success)
	require.False(t, limiter.Check(ctx, "a").Success)

	now = time.UnixMilli(1_760_000_040_000)
	rolled := limiter.Check(ctx, "a")
	assert.True(t, rolled.Success)
	assert.Equal(t, 1, rolled.Remaining)
	assert.Equal(t, int64(1_760_000_100_000), rolled.Reset)
}

func TestLimiter_FallsBackWhenStoreFails(t *testing.T) {
	store := &failingStore{}
	limiter := NewLimiter(store, nil, 10, time.Minute)

	assertWindow(t, limiter, "203.0.113.4")
	assert.Equal(t, 11, store.calls)
}

func TestLimiter_FallsBackWhenRedisStops(t *testing.T) {
	limiter, server := newRedisLimiter(t)
	ctx := context.Background()

	require.True(t, limiter.Check(ctx, "a").Success)
	server.Close()

	result := limiter.Check(ctx, "a")
	assert.True(t, result.Success)
	assert.Equal(t, 9, result.Remaining, "in-process counter starts its own window")
}

func TestNewLimiter_Defaults(t *testing.T) {
	limiter := NewLimiter(nil, nil, 0, 0)
	assert.Equal(t, DefaultMax, limiter.Limit())
	assert.Equal(t, DefaultWindow, limiter.window)
}
