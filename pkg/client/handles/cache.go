package handles

import (
	"fmt"
	"sync"
)

type entry struct {
	credential string
	handle     any
}

// Cache keeps at most one SDK transport handle per provider, keyed by the credential it
// was built with. A handle is rebuilt when the provider's credential changes so that an
// edited key never keeps using the old one.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	builds  int
}

// NewCache creates an empty handle cache
func NewCache() *Cache {
	return &Cache{entries: make(map[string]entry)}
}

// Get returns the cached handle for (providerID, credential), building it lazily
func Get[T any](c *Cache, providerID, credential string, build func() (T, error)) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[providerID]; ok && e.credential == credential {
		if h, ok := e.handle.(T); ok {
			return h, nil
		}
	}

	h, err := build()
	if err != nil {
		var zero T
		return zero, fmt.Errorf("failed to create %s client: %w", providerID, err)
	}
	c.entries[providerID] = entry{credential: credential, handle: h}
	c.builds++
	return h, nil
}

// Invalidate drops the handle for a provider
func (c *Cache) Invalidate(providerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, providerID)
}

// Builds returns how many handles have been constructed
func (c *Cache) Builds() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.builds
}

// Len returns the number of cached handles
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
