package cache

import (
	"time"

	"chat-analyzer/config"

	"github.com/dgraph-io/ristretto"
	"github.com/rs/zerolog/log"
)

// Cache wraps Ristretto with an idle TTL applied to every entry.
type Cache struct {
	client  *ristretto.Cache
	ttl     time.Duration
	onEvict func(key uint64, value interface{})
}

// Option customises a Cache at construction time.
type Option func(*Cache)

// WithEvictHook is called for every entry Ristretto evicts or expires.
func WithEvictHook(fn func(key uint64, value interface{})) Option {
	return func(c *Cache) { c.onEvict = fn }
}

// New creates a new cache instance with the given configuration
func New(cfg config.CacheConfig, opts ...Option) (*Cache, error) {
	c := &Cache{ttl: time.Duration(cfg.TTLSeconds) * time.Second}
	for _, opt := range opts {
		opt(c)
	}

	rc := &ristretto.Config{
		NumCounters: int64(cfg.CounterSize),
		MaxCost:     int64(cfg.MaxSizeMB) * 1024 * 1024,
		BufferItems: 64,
		Metrics:     true,
	}
	if c.onEvict != nil {
		rc.OnEvict = func(item *ristretto.Item) { c.onEvict(item.Key, item.Value) }
	}

	client, err := ristretto.NewCache(rc)
	if err != nil {
		return nil, err
	}
	c.client = client

	log.Info().
		Int("max_size_mb", cfg.MaxSizeMB).
		Int("ttl_seconds", cfg.TTLSeconds).
		Int("counter_size", cfg.CounterSize).
		Msg("Workspace cache initialized")

	return c, nil
}

// Get returns (value, true) if found, (nil, false) otherwise.
func (c *Cache) Get(key string) (interface{}, bool) {
	if c.client == nil {
		return nil, false
	}
	return c.client.Get(key)
}

// Set stores a value with the configured TTL. cost is the approximate size in bytes.
// Sets are buffered; call Wait when the value must be visible to the next Get.
func (c *Cache) Set(key string, value interface{}, cost int64) bool {
	if c.client == nil {
		return false
	}
	if c.ttl <= 0 {
		return c.client.Set(key, value, cost)
	}
	return c.client.SetWithTTL(key, value, cost, c.ttl)
}

// Touch re-inserts value to restart its idle TTL.
func (c *Cache) Touch(key string, value interface{}, cost int64) {
	if c.Set(key, value, cost) {
		c.Wait()
	}
}

// Wait blocks until buffered sets have been applied.
func (c *Cache) Wait() {
	if c.client != nil {
		c.client.Wait()
	}
}

func (c *Cache) Delete(key string) {
	if c.client == nil {
		return
	}
	c.client.Del(key)
}

// Close cleanly shuts down the cache
func (c *Cache) Close() {
	if c.client != nil {
		c.client.Close()
		log.Info().Msg("Workspace cache closed")
	}
}

// MetricsSnapshot is the JSON view of Ristretto's counters served by /health.
type MetricsSnapshot struct {
	Hits         uint64  `json:"hits"`
	Misses       uint64  `json:"misses"`
	KeysAdded    uint64  `json:"keys_added"`
	KeysEvicted  uint64  `json:"keys_evicted"`
	CostAdded    uint64  `json:"cost_added"`
	CostEvicted  uint64  `json:"cost_evicted"`
	SetsDropped  uint64  `json:"sets_dropped"`
	SetsRejected uint64  `json:"sets_rejected"`
	HitRatio     float64 `json:"hit_ratio"`
	TTLSeconds   int     `json:"ttl_seconds"`
}

// GetMetricsSnapshot returns current cache metrics as a snapshot
func (c *Cache) GetMetricsSnapshot() MetricsSnapshot {
	if c.client == nil || c.client.Metrics == nil {
		return MetricsSnapshot{TTLSeconds: int(c.ttl.Seconds())}
	}

	m := c.client.Metrics
	return MetricsSnapshot{
		Hits:         m.Hits(),
		Misses:       m.Misses(),
		KeysAdded:    m.KeysAdded(),
		KeysEvicted:  m.KeysEvicted(),
		CostAdded:    m.CostAdded(),
		CostEvicted:  m.CostEvicted(),
		SetsDropped:  m.SetsDropped(),
		SetsRejected: m.SetsRejected(),
		HitRatio:     m.Ratio(),
		TTLSeconds:   int(c.ttl.Seconds()),
	}
}
