package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/karnsiree/subscription-radar/internal/core"
)

func newTestMemoryCache(t *testing.T) *MemoryCache {
	t.Helper()
	c := NewMemoryCache(zap.NewNop(), time.Minute)
	t.Cleanup(c.Stop)
	return c
}

func TestMemoryCacheSetGet(t *testing.T) {
	c := newTestMemoryCache(t)
	ctx := context.Background()

	entry := &core.VerdictEntry{
		Key:            "info@netflix.com|receipt",
		IsSubscription: true,
		LastSeen:       time.Now(),
		ExpiresAt:      time.Now().Add(time.Hour),
	}
	require.NoError(t, c.Set(ctx, entry))

	got, err := c.Get(ctx, entry.Key)
	require.NoError(t, err)
	assert.True(t, got.IsSubscription)
}

func TestMemoryCacheMiss(t *testing.T) {
	c := newTestMemoryCache(t)

	_, err := c.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := newTestMemoryCache(t)
	ctx := context.Background()

	entry := &core.VerdictEntry{
		Key:            "stale",
		IsSubscription: true,
		LastSeen:       time.Now().Add(-2 * time.Hour),
		ExpiresAt:      time.Now().Add(-time.Hour),
	}
	require.NoError(t, c.Set(ctx, entry))

	_, err := c.Get(ctx, "stale")
	assert.ErrorIs(t, err, ErrExpired)
}

func TestMemoryCacheDelete(t *testing.T) {
	c := newTestMemoryCache(t)
	ctx := context.Background()

	entry := &core.VerdictEntry{Key: "gone", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, c.Set(ctx, entry))
	require.NoError(t, c.Delete(ctx, "gone"))

	_, err := c.Get(ctx, "gone")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryCacheCleanup(t *testing.T) {
	c := newTestMemoryCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, &core.VerdictEntry{Key: "fresh", ExpiresAt: time.Now().Add(time.Hour)}))
	require.NoError(t, c.Set(ctx, &core.VerdictEntry{Key: "stale", ExpiresAt: time.Now().Add(-time.Hour)}))

	require.NoError(t, c.Cleanup(ctx))

	_, err := c.Get(ctx, "fresh")
	assert.NoError(t, err)
	_, err = c.Get(ctx, "stale")
	assert.ErrorIs(t, err, ErrNotFound)
}
