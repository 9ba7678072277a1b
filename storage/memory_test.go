package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheExpiry(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	cache.SetClock(func() time.Time { return now })

	require.NoError(t, cache.Put(ctx, "k", "v", time.Minute))

	value, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", value)

	now = now.Add(61 * time.Second)
	value, err = cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "", value)
}

func TestMemoryCacheZeroTTLNeverExpires(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	cache.SetClock(func() time.Time { return now })

	require.NoError(t, cache.Put(ctx, "k", "v", 0))

	now = now.Add(24 * time.Hour)
	value, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", value)
}

func TestMemoryCacheRemove(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "k", "v", 0))
	require.NoError(t, cache.Remove(ctx, "k"))
	require.NoError(t, cache.Remove(ctx, "k"))

	value, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "", value)
}

func TestMemoryPropertiesAbsentKey(t *testing.T) {
	props := NewMemoryProperties()
	ctx := context.Background()

	value, err := props.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Equal(t, "", value)

	require.NoError(t, props.Set(ctx, "k", "v1"))
	require.NoError(t, props.Set(ctx, "k", "v2"))
	value, err = props.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v2", value)

	require.NoError(t, props.Delete(ctx, "k"))
	value, err = props.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "", value)
}
