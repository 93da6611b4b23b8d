package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryCache is an in-process Cache with per-entry expiry. It backs tests and
// deployments without a Redis instance configured.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry)}
}

// Get returns the cached value if present and not expired.
func (c *MemoryCache) Get(_ context.Context, provider, key string) (string, bool) {
	c.mu.RLock()
	entry, found := c.entries[provider+":"+key]
	c.mu.RUnlock()

	if !found || time.Now().After(entry.expiresAt) {
		return "", false
	}
	return entry.value, true
}

// Set stores a value with the given TTL.
func (c *MemoryCache) Set(_ context.Context, provider, key, value string, ttl time.Duration) {
	c.mu.Lock()
	c.entries[provider+":"+key] = memoryEntry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
	c.mu.Unlock()
}

// Sweep removes expired entries. Called periodically from the cron schedule;
// lookups already ignore expired entries, this only reclaims memory.
func (c *MemoryCache) Sweep() int {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

var _ Cache = (*MemoryCache)(nil)
