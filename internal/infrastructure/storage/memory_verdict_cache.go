package storage

import (
	"context"
	"sync"
	"time"

	"issue-classifier/internal/domain/entity"
	"issue-classifier/internal/domain/port"
)

// MemoryVerdictCache is a TTL cache with a size bound. When full, the least
// recently used entry is evicted.
type MemoryVerdictCache struct {
	ttl     time.Duration
	maxSize int
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	verdict    *entity.ClassificationVerdict
	expiresAt  time.Time
	lastAccess time.Time
}

// NewMemoryVerdictCache creates a cache. maxSize <= 0 means unbounded.
func NewMemoryVerdictCache(ttl time.Duration, maxSize int) *MemoryVerdictCache {
	return &MemoryVerdictCache{
		ttl:     ttl,
		maxSize: maxSize,
		now:     time.Now,
		entries: make(map[string]*cacheEntry),
	}
}

// Get returns a live entry.
func (c *MemoryVerdictCache) Get(ctx context.Context, key string) (*entity.ClassificationVerdict, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	now := c.now()
	if now.After(e.expiresAt) {
		delete(c.entries, key)
		return nil, false, nil
	}
	e.lastAccess = now
	return e.verdict, true, nil
}

// Set stores v under key.
func (c *MemoryVerdictCache) Set(ctx context.Context, key string, v *entity.ClassificationVerdict) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if _, exists := c.entries[key]; !exists && c.maxSize > 0 && len(c.entries) >= c.maxSize {
		c.evictLocked(now)
	}
	c.entries[key] = &cacheEntry{verdict: v, expiresAt: now.Add(c.ttl), lastAccess: now}
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (c *MemoryVerdictCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *MemoryVerdictCache) evictLocked(now time.Time) {
	var oldestKey string
	var oldest time.Time
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
			return
		}
		if oldestKey == "" || e.lastAccess.Before(oldest) {
			oldestKey, oldest = k, e.lastAccess
		}
	}
	delete(c.entries, oldestKey)
}

var _ port.VerdictCache = (*MemoryVerdictCache)(nil)
