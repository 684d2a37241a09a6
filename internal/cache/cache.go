package cache

import (
	"sync"
	"time"
)

// ============================================================================
// IN-MEMORY TTL CACHE
// ============================================================================
// Thread-safe key/value store with per-item expiry and a background sweeper.
// Backs short-lived auth state: e-mail verification codes, refresh tokens and
// the logout blacklist.
//
//   codes := cache.New[string](5*time.Minute, 10*time.Minute)
//   codes.Set("verify:a@b.c", "123456")
//   if code, ok := codes.Get("verify:a@b.c"); ok { ... }

type item[V any] struct {
	value      V
	expiration int64 // unix nanos, 0 = never
}

// Cache is a key/value store whose items expire after a TTL.
type Cache[V any] struct {
	items             map[string]item[V]
	mu                sync.RWMutex
	defaultExpiration time.Duration
	stopOnce          sync.Once
	stopCleanup       chan struct{}
}

// New creates a cache with the given default TTL. When cleanupInterval is
// positive a goroutine removes expired items at that interval until Stop.
func New[V any](defaultExpiration, cleanupInterval time.Duration) *Cache[V] {
	c := &Cache[V]{
		items:             make(map[string]item[V]),
		defaultExpiration: defaultExpiration,
		stopCleanup:       make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go c.startCleanupTimer(cleanupInterval)
	}
	return c
}

// Set stores value with the default TTL.
func (c *Cache[V]) Set(key string, value V) {
	c.SetWithTTL(key, value, c.defaultExpiration)
}

// SetWithTTL stores value with a specific TTL; ttl <= 0 never expires.
func (c *Cache[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	var expiration int64
	if ttl > 0 {
		expiration = time.Now().Add(ttl).UnixNano()
	}

	c.mu.Lock()
	c.items[key] = item[V]{value: value, expiration: expiration}
	c.mu.Unlock()
}

// Get returns the value for key if present and not expired.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	it, found := c.items[key]
	c.mu.RUnlock()

	var zero V
	if !found {
		return zero, false
	}
	if it.expiration > 0 && time.Now().UnixNano() > it.expiration {
		c.Delete(key)
		return zero, false
	}
	return it.value, true
}

// Has reports whether key is present and not expired.
func (c *Cache[V]) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// Delete removes key.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// Stats summarizes the cache content.
type Stats struct {
	TotalItems   int `json:"total_items"`
	ExpiredItems int `json:"expired_items"`
	ValidItems   int `json:"valid_items"`
}

// GetStats returns current statistics.
func (c *Cache[V]) GetStats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := Stats{TotalItems: len(c.items)}
	now := time.Now().UnixNano()
	for _, it := range c.items {
		if it.expiration > 0 && now > it.expiration {
			stats.ExpiredItems++
		} else {
			stats.ValidItems++
		}
	}
	return stats
}

func (c *Cache[V]) startCleanupTimer(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.deleteExpired()
		case <-c.stopCleanup:
			return
		}
	}
}

func (c *Cache[V]) deleteExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now().UnixNano()
	for key, it := range c.items {
		if it.expiration > 0 && now > it.expiration {
			delete(c.items, key)
		}
	}
}

// Stop ends the background sweeper. Safe to call more than once.
func (c *Cache[V]) Stop() {
	c.stopOnce.Do(func() { close(c.stopCleanup) })
}
