package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitAllowWithinLimit(t *testing.T) {
	client := newTestRedis(t)
	store := NewRateLimitStore(client)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		allowed, err := store.Allow(ctx, "10.0.0.1", "/api/v1/auth/login", time.Minute, 5)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should be allowed", i+1)
	}
}

func TestRateLimitBlocksOverLimit(t *testing.T) {
	client := newTestRedis(t)
	store := NewRateLimitStore(client)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := store.Allow(ctx, "10.0.0.1", "/api/v1/auth/login", time.Minute, 3)
		require.NoError(t, err)
		require.True(t, allowed)
	}

	allowed, err := store.Allow(ctx, "10.0.0.1", "/api/v1/auth/login", time.Minute, 3)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestRateLimitIsolatedByClientAndPath(t *testing.T) {
	client := newTestRedis(t)
	store := NewRateLimitStore(client)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, err := store.Allow(ctx, "10.0.0.1", "/api/v1/auth/login", time.Minute, 2)
		require.NoError(t, err)
		require.True(t, allowed)
	}

	// Different client keeps its own window
	allowed, err := store.Allow(ctx, "10.0.0.2", "/api/v1/auth/login", time.Minute, 2)
	require.NoError(t, err)
	assert.True(t, allowed)

	// Same client, different path
	allowed, err = store.Allow(ctx, "10.0.0.1", "/api/v1/auth/signup/request-otp", time.Minute, 2)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRateLimitWindowSlides(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRateLimitStore(client)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, err := store.Allow(ctx, "10.0.0.1", "/api/v1/auth/login", time.Minute, 2)
		require.NoError(t, err)
		require.True(t, allowed)
	}

	allowed, err := store.Allow(ctx, "10.0.0.1", "/api/v1/auth/login", time.Minute, 2)
	require.NoError(t, err)
	require.False(t, allowed)

	// Old entries age out of the window. The sliding window keys off
	// wall-clock scores, so fast-forwarding Redis alone is not enough;
	// entries older than the window are trimmed on the next call.
	time.Sleep(10 * time.Millisecond)
	allowed, err = store.Allow(ctx, "10.0.0.1", "/api/v1/auth/login", 5*time.Millisecond, 2)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRateLimitRedisDownReturnsError(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	store := NewRateLimitStore(client)

	_, err := store.Allow(context.Background(), "10.0.0.1", "/api/v1/auth/login", time.Minute, 5)
	assert.Error(t, err)
}
