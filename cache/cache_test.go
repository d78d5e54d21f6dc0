package cache

import (
	"testing"
	"time"

	"chat-analyzer/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttlSeconds int, opts ...Option) *Cache {
	t.Helper()
	c, err := New(config.CacheConfig{MaxSizeMB: 10, TTLSeconds: ttlSeconds, CounterSize: 1000}, opts...)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestCacheBasicOperations(t *testing.T) {
	c := newTestCache(t, 60)

	t.Run("Set_and_Get", func(t *testing.T) {
		require.True(t, c.Set("workspace", "value", 1))
		c.Wait()

		v, found := c.Get("workspace")
		assert.True(t, found)
		assert.Equal(t, "value", v)
	})

	t.Run("Get_NonExistent", func(t *testing.T) {
		_, found := c.Get("missing")
		assert.False(t, found)
	})

	t.Run("Delete", func(t *testing.T) {
		c.Set("gone", "value", 1)
		c.Wait()
		c.Delete("gone")

		_, found := c.Get("gone")
		assert.False(t, found)
	})
}

func TestCacheTTL(t *testing.T) {
	c := newTestCache(t, 1)

	c.Set("idle", "value", 1)
	c.Wait()
	_, found := c.Get("idle")
	require.True(t, found)

	time.Sleep(1200 * time.Millisecond)

	_, found = c.Get("idle")
	assert.False(t, found, "entry should expire after the idle TTL")
}

func TestCacheMetrics(t *testing.T) {
	c := newTestCache(t, 60)

	c.Set("a", 1, 1)
	c.Wait()
	c.Get("a")
	c.Get("b")

	m := c.GetMetricsSnapshot()
	assert.Equal(t, 60, m.TTLSeconds)
	t.Logf("Cache metrics: Hits=%d, Misses=%d, KeysAdded=%d, HitRatio=%.2f", m.Hits, m.Misses, m.KeysAdded, m.HitRatio)
}

func TestCacheNilHandling(t *testing.T) {
	c := &Cache{}

	v, found := c.Get("key")
	assert.False(t, found)
	assert.Nil(t, v)
	assert.False(t, c.Set("key", "value", 1))

	// Must not panic.
	c.Delete("key")
	c.Wait()
	c.Close()

	assert.Zero(t, c.GetMetricsSnapshot().Hits)
}

func TestWithEvictHook(t *testing.T) {
	evicted := make(chan uint64, 1)
	c := newTestCache(t, 60, WithEvictHook(func(key uint64, _ interface{}) {
		select {
		case evicted <- key:
		default:
		}
	}))
	assert.NotNil(t, c.onEvict)
}
