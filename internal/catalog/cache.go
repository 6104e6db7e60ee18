package catalog

import (
	"sync"
	"time"
)

// cacheEntry wraps a fetched result list with its fetch time. Entries are
// immutable; a refresh fully replaces the entry for its key.
type cacheEntry struct {
	records   []Record
	fetchedAt time.Time
}

// Cache is an in-process TTL cache for catalog responses, keyed by the
// full query parameter tuple. Expiry is lazy: entries are checked on read
// and either served or discarded. Concurrent readers never block each
// other; racing writers to one key are safe because the last full entry
// wins.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration

	// now is swappable for tests.
	now func() time.Time
}

// NewCache creates a cache whose entries stay valid for ttl.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached records for key if present and not expired.
func (c *Cache) Get(key string) ([]Record, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.fetchedAt) >= c.ttl {
		// Expired: evict lazily so the map does not grow unbounded.
		c.mu.Lock()
		if current, still := c.entries[key]; still && current.fetchedAt.Equal(entry.fetchedAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return entry.records, true
}

// Set stores records for key with the current timestamp, overwriting any
// stale entry.
func (c *Cache) Set(key string, records []Record) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{records: records, fetchedAt: c.now()}
	c.mu.Unlock()
}

// Clear removes every entry. Intended for tests and administrative resets.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}

// Sweep evicts all expired entries and reports how many were removed.
// The client works without it (expiry is lazy), but callers may run it
// periodically to bound memory.
func (c *Cache) Sweep() int {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, entry := range c.entries {
		if now.Sub(entry.fetchedAt) >= c.ttl {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Len reports the number of entries currently held, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
