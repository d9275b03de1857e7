package proof

import (
	"context"
	"sync"
	"time"
)

// MemoryReplayCache is an in-process ReplayCache with TTL eviction. It is the
// default for single-instance deployments and tests; multi-instance setups
// should use the redis-backed cache instead.
type MemoryReplayCache struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

func NewMemoryReplayCache() *MemoryReplayCache {
	return &MemoryReplayCache{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (c *MemoryReplayCache) Seen(_ context.Context, publicKey, message string, ttl time.Duration) (bool, error) {
	key := publicKey + "\x00" + message
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Opportunistic sweep keeps the map bounded without a janitor goroutine.
	for k, expires := range c.entries {
		if now.After(expires) {
			delete(c.entries, k)
		}
	}

	if expires, ok := c.entries[key]; ok && now.Before(expires) {
		return true, nil
	}
	c.entries[key] = now.Add(ttl)
	return false, nil
}
