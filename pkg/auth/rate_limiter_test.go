package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlidingWindowLimiter(t *testing.T) {
	ctx := context.Background()
	limiter := NewSlidingWindowLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		allowed, err := limiter.Allow(ctx, "key")
		require.NoError(t, err)
		assert.True(t, allowed, "request %d", i)
	}

	allowed, err := limiter.Allow(ctx, "key")
	require.NoError(t, err)
	assert.False(t, allowed)

	// Keys are independent
	allowed, err = limiter.Allow(ctx, "other")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestSlidingWindowLimiter_Reset(t *testing.T) {
	ctx := context.Background()
	limiter := NewSlidingWindowLimiter(1, time.Minute)

	allowed, _ := limiter.Allow(ctx, "key")
	assert.True(t, allowed)
	allowed, _ = limiter.Allow(ctx, "key")
	assert.False(t, allowed)

	require.NoError(t, limiter.Reset(ctx, "key"))

	allowed, _ = limiter.Allow(ctx, "key")
	assert.True(t, allowed)
}

func TestSlidingWindowLimiter_WindowSlides(t *testing.T) {
	ctx := context.Background()
	limiter := NewSlidingWindowLimiter(1, 20*time.Millisecond)

	allowed, _ := limiter.Allow(ctx, "key")
	assert.True(t, allowed)
	allowed, _ = limiter.Allow(ctx, "key")
	assert.False(t, allowed)

	time.Sleep(30 * time.Millisecond)

	allowed, _ = limiter.Allow(ctx, "key")
	assert.True(t, allowed)
}

func TestIPAndUserLimitersAreIsolated(t *testing.T) {
	ctx := context.Background()
	ipLimiter := NewIPRateLimiter(1)
	userLimiter := NewUserRateLimiter(1)

	allowed, _ := ipLimiter.Allow(ctx, "10.0.0.1")
	assert.True(t, allowed)
	allowed, _ = ipLimiter.Allow(ctx, "10.0.0.1")
	assert.False(t, allowed)

	allowed, _ = userLimiter.Allow(ctx, "10.0.0.1")
	assert.True(t, allowed)
}
