package angel

import (
	"fmt"
	"sync"
)

// Cache memoizes meaning lookups. Pattern analysis allocates a fresh
// Meaning per call; sessions frequently re-resolve the same committed
// number, so interpretations are cached per number and analysis mode.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Meaning
}

// NewCache creates an empty meaning cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]Meaning)}
}

// Lookup returns the meaning for a number, consulting the cache first.
func (c *Cache) Lookup(number string, intelligent bool) Meaning {
	key := fmt.Sprintf("%s:%t", number, intelligent)

	c.mu.RLock()
	m, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return m
	}

	m = Lookup(number, intelligent)

	c.mu.Lock()
	c.entries[key] = m
	c.mu.Unlock()
	return m
}

// Len reports how many meanings are cached.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
