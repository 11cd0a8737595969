package bankprofile

import (
	"sync"
	"time"
)

// CacheKeyAll is the sentinel key for an unfiltered profile load.
const CacheKeyAll = "all"

// DefaultCacheTTL governs how long a cache entry is served without hitting the
// backing store.
const DefaultCacheTTL = 5 * time.Minute

type cacheEntry struct {
	data      []BankProfile
	timestamp time.Time
}

// Cache is an injectable TTL cache for profile lists, keyed by country code or
// CacheKeyAll. Expired entries are retained so the registry can degrade to
// last-known-good data when the backing store fails.
type Cache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

// NewCache creates a cache. A non-positive ttl falls back to DefaultCacheTTL.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// Get returns the entry for key if it is younger than the TTL.
func (c *Cache) Get(key string) ([]BankProfile, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || c.now().Sub(entry.timestamp) >= c.ttl {
		return nil, false
	}
	return entry.data, true
}

// GetStale returns the entry for key regardless of age.
func (c *Cache) GetStale(key string) ([]BankProfile, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return entry.data, true
}

// Put overwrites the entry for key with a fresh timestamp. The last completed
// fetch wins.
func (c *Cache) Put(key string, profiles []BankProfile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{data: profiles, timestamp: c.now()}
}

// Keys returns the currently cached keys.
func (c *Cache) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	return keys
}

// Reset drops every entry.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}
