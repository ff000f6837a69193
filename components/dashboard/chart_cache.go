package dashboard

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"
)

const defaultChartCacheEntries = 256

// RenderCache memoizes rendered chart HTML keyed by chart type and input data.
type RenderCache interface {
	GetOrRender(key string, render func() (string, error)) (string, error)
}

// ChartCache is an in-memory TTL cache for rendered charts. When full, the
// entry closest to expiry is evicted.
type ChartCache struct {
	ttl        time.Duration
	maxEntries int
	now        func() time.Time

	mu      sync.Mutex
	entries map[string]cachedChart
	hits    int
	misses  int
}

type cachedChart struct {
	html    string
	expires time.Time
}

// ChartCacheStats reports cache effectiveness.
type ChartCacheStats struct {
	Entries int
	Hits    int
	Misses  int
}

// ChartCacheOption customizes a ChartCache.
type ChartCacheOption func(*ChartCache)

// WithChartCacheLimit bounds the number of cached charts.
func WithChartCacheLimit(n int) ChartCacheOption {
	return func(c *ChartCache) {
		if n > 0 {
			c.maxEntries = n
		}
	}
}

// WithChartCacheClock overrides the clock used for expiry.
func WithChartCacheClock(now func() time.Time) ChartCacheOption {
	return func(c *ChartCache) {
		if now != nil {
			c.now = now
		}
	}
}

// NewChartCache builds a cache with the provided TTL. A TTL of zero disables caching.
func NewChartCache(ttl time.Duration, opts ...ChartCacheOption) *ChartCache {
	c := &ChartCache{
		ttl:        ttl,
		maxEntries: defaultChartCacheEntries,
		now:        time.Now,
		entries:    make(map[string]cachedChart),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetOrRender returns a cached entry or renders and stores a new one.
// Render errors are not cached.
func (c *ChartCache) GetOrRender(key string, render func() (string, error)) (string, error) {
	if html, ok := c.get(key); ok {
		return html, nil
	}
	html, err := render()
	if err != nil {
		return "", err
	}
	c.set(key, html)
	return html, nil
}

// Stats returns a copy of the cache counters.
func (c *ChartCache) Stats() ChartCacheStats {
	if c == nil {
		return ChartCacheStats{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return ChartCacheStats{Entries: len(c.entries), Hits: c.hits, Misses: c.misses}
}

// Purge drops every cached chart.
func (c *ChartCache) Purge() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries = make(map[string]cachedChart)
	c.mu.Unlock()
}

func (c *ChartCache) get(key string) (string, bool) {
	if c == nil || c.ttl <= 0 {
		return "", false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if ok && c.now().After(entry.expires) {
		delete(c.entries, key)
		ok = false
	}
	if !ok {
		c.misses++
		return "", false
	}
	c.hits++
	return entry.html, true
}

func (c *ChartCache) set(key, html string) {
	if c == nil || c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.evictLocked()
	}
	c.entries[key] = cachedChart{
		html:    html,
		expires: c.now().Add(c.ttl),
	}
}

func (c *ChartCache) evictLocked() {
	var (
		oldestKey string
		oldest    time.Time
	)
	for k, entry := range c.entries {
		if oldestKey == "" || entry.expires.Before(oldest) {
			oldestKey, oldest = k, entry.expires
		}
	}
	delete(c.entries, oldestKey)
}

// configHash returns a deterministic hash for a configuration or data map.
func configHash(cfg map[string]any) string {
	if len(cfg) == 0 {
		return "empty"
	}
	b, err := json.Marshal(cfg)
	if err != nil {
		return "invalid"
	}
	sum := sha1.Sum(b)
	return hex.EncodeToString(sum[:])
}
