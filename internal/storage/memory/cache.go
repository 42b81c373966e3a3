package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/snisarenko-labs/ipcensus/internal/ports"
)

var _ ports.CacheStore = (*Cache)(nil)

type cacheEntry struct {
	value    string
	deadline time.Time
	forever  bool
}

// Cache is an in-process TTL key/value store.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	now     func() time.Time
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]cacheEntry), now: time.Now}
}

func (c *Cache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return "", false, nil
	}
	if !e.forever && c.now().After(e.deadline) {
		delete(c.entries, key)
		return "", false, nil
	}
	return e.value, true, nil
}

func (c *Cache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ttl <= 0 {
		c.entries[key] = cacheEntry{value: value, forever: true}
		return nil
	}
	c.entries[key] = cacheEntry{value: value, deadline: c.now().Add(ttl)}
	return nil
}

// FlushAll discards every entry whose key starts with keyPrefix. Used by
// adapters/datasetnotify's invalidate-on-swap mode.
func (c *Cache) FlushAll(_ context.Context, keyPrefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if strings.HasPrefix(k, keyPrefix) {
			delete(c.entries, k)
		}
	}
	return nil
}
