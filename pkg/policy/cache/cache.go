package cache

import (
	"sync"
	"time"

	"tessera-hq/meridian/pkg/policy/engine"
)

// Config contains configuration for the policy cache.
type Config struct {
	// TTL is the maximum age of a cached policy. Entries older than the
	// TTL miss even when the fingerprint still matches.
	// Default: 5 minutes.
	TTL time.Duration

	// MaxEntries bounds the number of cached bots. When the bound is
	// reached, the oldest entry is evicted.
	// Default: 10000.
	MaxEntries int
}

// DefaultConfig returns the default cache configuration.
func DefaultConfig() *Config {
	return &Config{
		TTL:        5 * time.Minute,
		MaxEntries: 10000,
	}
}

// entry is a cached policy with its storage time.
type entry struct {
	policy   *engine.EffectivePolicy
	storedAt time.Time
}

// Cache is a thread-safe policy cache keyed by bot id. It implements
// engine.PolicyCache.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*entry
	config  *Config

	// now is replaceable for tests.
	now func() time.Time

	stats Stats
}

// Stats contains cache counters.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Entries   int
}

// New creates a new policy cache.
func New(config *Config) *Cache {
	if config == nil {
		config = DefaultConfig()
	}
	if config.TTL <= 0 {
		config.TTL = 5 * time.Minute
	}
	if config.MaxEntries <= 0 {
		config.MaxEntries = 10000
	}

	return &Cache{
		entries: make(map[string]*entry),
		config:  config,
		now:     time.Now,
	}
}

// Get returns the cached policy for the bot if its fingerprint matches the
// current scope set and the entry has not expired.
func (c *Cache) Get(botID, fingerprint string) (*engine.EffectivePolicy, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[botID]
	if !ok {
		c.stats.Misses++
		return nil, false
	}

	if e.policy.Fingerprint != fingerprint || c.now().Sub(e.storedAt) > c.config.TTL {
		// Stale: the scope set changed or the entry aged out.
		delete(c.entries, botID)
		c.stats.Misses++
		c.stats.Evictions++
		return nil, false
	}

	c.stats.Hits++
	return e.policy, true
}

// Put stores a freshly resolved policy for the bot, evicting the oldest
// entry if the cache is full.
func (c *Cache) Put(botID string, policy *engine.EffectivePolicy) {
	if policy == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[botID]; !exists && len(c.entries) >= c.config.MaxEntries {
		c.evictOldestLocked()
	}

	c.entries[botID] = &entry{
		policy:   policy,
		storedAt: c.now(),
	}
}

// Invalidate removes the cached policy for a bot, if any.
func (c *Cache) Invalidate(botID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[botID]; ok {
		delete(c.entries, botID)
		c.stats.Evictions++
	}
}

// Clear removes all cached policies. Called when the scope registry is
// atomically replaced (hot reload): every fingerprint may have changed.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.Evictions += int64(len(c.entries))
	c.entries = make(map[string]*entry)
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// GetStats returns a snapshot of the cache counters.
func (c *Cache) GetStats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := c.stats
	stats.Entries = len(c.entries)
	return stats
}

// evictOldestLocked removes the entry with the oldest storage time.
// Caller must hold the write lock.
func (c *Cache) evictOldestLocked() {
	var oldestKey string
	var oldestTime time.Time

	for key, e := range c.entries {
		if oldestKey == "" || e.storedAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = e.storedAt
		}
	}

	if oldestKey != "" {
		delete(c.entries, oldestKey)
		c.stats.Evictions++
	}
}

// Interface conformance check.
var _ engine.PolicyCache = (*Cache)(nil)
