package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"
)

// MemoryCache is an in-process QueryCache with the same semantics as the redis
// backend: versioned table keys, JSON-encoded values, atomic replacement.
// Used in tests and in single-process deployments without redis.
type MemoryCache struct {
	mu       sync.RWMutex
	entries  map[string][]byte
	versions map[string]uint64
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries:  make(map[string][]byte),
		versions: make(map[string]uint64),
	}
}

func (c *MemoryCache) Fetch(ctx context.Context, sig Signature, dest any, load func() error) error {
	c.mu.RLock()
	key := sig.Key(strconv.FormatUint(c.versions[sig.Table], 10))
	raw, ok := c.entries[key]
	c.mu.RUnlock()

	if ok {
		return json.Unmarshal(raw, dest)
	}

	if err := load(); err != nil {
		return err
	}

	encoded, err := json.Marshal(dest)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.entries[key] = encoded
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Invalidate(ctx context.Context, tables ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, table := range tables {
		c.versions[table]++
		// Entries under the previous version are unreachable now; drop them
		// so the map does not grow across invalidation cycles.
		prefix := table + ":"
		for key := range c.entries {
			if strings.HasPrefix(key, prefix) {
				delete(c.entries, key)
			}
		}
	}
	return nil
}

// Len reports the number of stored entries.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
