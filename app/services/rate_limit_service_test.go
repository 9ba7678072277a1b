package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/eventdesk/eventdesk/storage"
	"github.com/eventdesk/eventdesk/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingCache simulates an unreachable cache scope
type failingCache struct{}

func (failingCache) Get(context.Context, string) (string, error) {
	return "", errors.New("connection refused")
}
func (failingCache) Put(context.Context, string, string, time.Duration) error {
	return errors.New("connection refused")
}
func (failingCache) Remove(context.Context, string) error {
	return errors.New("connection refused")
}

func newTestLimiter(cache storage.CacheStore, policy RateLimitPolicy, clock func() time.Time) *RateLimiterImpl {
	limiter := NewRateLimiter(cache, map[string]RateLimitPolicy{"op": policy}, RateLimitPolicy{}).(*RateLimiterImpl)
	if clock != nil {
		limiter.now = clock
	}
	return limiter
}

func TestRateLimiterAllowsUnderBudget(t *testing.T) {
	cache := storage.NewMemoryCache()
	limiter := newTestLimiter(cache, RateLimitPolicy{Window: time.Minute, Max: 3}, nil)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		info, err := limiter.Allow(ctx, "op", "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, info.Allowed)
		assert.Equal(t, 2-i, info.Remaining)
	}
}

func TestRateLimiterRejectsOverBudget(t *testing.T) {
	cache := storage.NewMemoryCache()
	limiter := newTestLimiter(cache, RateLimitPolicy{Window: time.Minute, Max: 2}, nil)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		info, err := limiter.Allow(ctx, "op", "1.2.3.4")
		require.NoError(t, err)
		require.True(t, info.Allowed)
	}

	info, err := limiter.Allow(ctx, "op", "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, info.Allowed)
	assert.Equal(t, 0, info.Remaining)
	assert.GreaterOrEqual(t, info.RetryAfterSeconds, 1)
	assert.LessOrEqual(t, info.RetryAfterSeconds, 60)
}

func TestRateLimiterRejectionConsumesNoQuota(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	cache := storage.NewMemoryCache()
	cache.SetClock(clock)
	limiter := newTestLimiter(cache, RateLimitPolicy{Window: time.Minute, Max: 1}, clock)

	ctx := context.Background()
	info, err := limiter.Allow(ctx, "op", "actor")
	require.NoError(t, err)
	require.True(t, info.Allowed)

	// Hammering a saturated window must not extend the lockout.
	for i := 0; i < 5; i++ {
		now = now.Add(time.Second)
		info, err = limiter.Allow(ctx, "op", "actor")
		require.NoError(t, err)
		require.False(t, info.Allowed)
	}

	// The single stored stamp ages out exactly one window after the allow.
	now = now.Add(time.Minute)
	info, err = limiter.Allow(ctx, "op", "actor")
	require.NoError(t, err)
	assert.True(t, info.Allowed)
}

func TestRateLimiterSlidingWindow(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	cache := storage.NewMemoryCache()
	cache.SetClock(clock)
	limiter := newTestLimiter(cache, RateLimitPolicy{Window: time.Minute, Max: 2}, clock)

	ctx := context.Background()
	_, err := limiter.Allow(ctx, "op", "actor")
	require.NoError(t, err)

	now = now.Add(30 * time.Second)
	_, err = limiter.Allow(ctx, "op", "actor")
	require.NoError(t, err)

	// Both stamps still in window at t+50: saturated.
	now = now.Add(20 * time.Second)
	info, err := limiter.Allow(ctx, "op", "actor")
	require.NoError(t, err)
	assert.False(t, info.Allowed)

	// At t+65 the first stamp has slid out, freeing one slot.
	now = now.Add(15 * time.Second)
	info, err = limiter.Allow(ctx, "op", "actor")
	require.NoError(t, err)
	assert.True(t, info.Allowed)
}

func TestRateLimiterFailsOpen(t *testing.T) {
	limiter := newTestLimiter(failingCache{}, RateLimitPolicy{Window: time.Minute, Max: 1}, nil)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		info, err := limiter.Allow(ctx, "op", "actor")
		require.NoError(t, err)
		assert.True(t, info.Allowed)
	}
}

func TestRateLimiterMalformedWindowResets(t *testing.T) {
	cache := storage.NewMemoryCache()
	ctx := context.Background()
	require.NoError(t, cache.Put(ctx, "ratelimit:op:actor", "not json", time.Minute))

	limiter := newTestLimiter(cache, RateLimitPolicy{Window: time.Minute, Max: 1}, nil)
	info, err := limiter.Allow(ctx, "op", "actor")
	require.NoError(t, err)
	assert.True(t, info.Allowed)
}

func TestRateLimiterDefaultPolicy(t *testing.T) {
	cache := storage.NewMemoryCache()

	t.Run("zero value falls back to constants", func(t *testing.T) {
		limiter := NewRateLimiter(cache, nil, RateLimitPolicy{}).(*RateLimiterImpl)

		policy := limiter.Policy("unknown_operation")
		assert.Equal(t, utils.DefaultRateLimitWindow, policy.Window)
		assert.Equal(t, utils.DefaultRateLimitMax, policy.Max)
	})

	t.Run("configured default applies to unknown operations", func(t *testing.T) {
		configured := RateLimitPolicy{Window: 45 * time.Second, Max: 7}
		limiter := NewRateLimiter(cache, nil, configured).(*RateLimiterImpl)

		policy := limiter.Policy("unknown_operation")
		assert.Equal(t, configured, policy)
	})
}

func TestRateLimiterIsolatesActorsAndOperations(t *testing.T) {
	cache := storage.NewMemoryCache()
	limiter := newTestLimiter(cache, RateLimitPolicy{Window: time.Minute, Max: 1}, nil)

	ctx := context.Background()
	info, err := limiter.Allow(ctx, "op", "actor-a")
	require.NoError(t, err)
	require.True(t, info.Allowed)

	// A saturated actor does not affect others, nor other operations.
	info, err = limiter.Allow(ctx, "op", "actor-a")
	require.NoError(t, err)
	assert.False(t, info.Allowed)

	info, err = limiter.Allow(ctx, "op", "actor-b")
	require.NoError(t, err)
	assert.True(t, info.Allowed)

	info, err = limiter.Allow(ctx, "other", "actor-a")
	require.NoError(t, err)
	assert.True(t, info.Allowed)
}
