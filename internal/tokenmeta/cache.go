package tokenmeta

import (
	"context"
	"sync"
)

// Cache is a process-lifetime memoization table mapping a mint address to its
// resolved metadata entry. There is no eviction, TTL, or size bound: the set
// of distinct mints a single wallet touches is small, and re-resolving is two
// account fetches we would rather not repeat.
//
// Implementations must be safe for concurrent use. Concurrent first
// resolutions of the same mint may race and both write; the derivation is
// deterministic, so the writes carry the same value and only the duplicated
// fetch work is lost.
type Cache interface {
	// Get returns the entry stored for the mint, if any.
	Get(ctx context.Context, mint string) (Entry, bool, error)

	// Put stores the entry for the mint, replacing any previous one.
	Put(ctx context.Context, mint string, entry Entry) error
}

// memoryCache is the default in-process Cache backed by a plain map.
type memoryCache struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

var _ Cache = (*memoryCache)(nil)

// NewMemoryCache creates an empty in-memory metadata cache.
func NewMemoryCache() *memoryCache {
	return &memoryCache{
		entries: make(map[string]Entry),
	}
}

func (c *memoryCache) Get(_ context.Context, mint string) (Entry, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[mint]
	return entry, ok, nil
}

func (c *memoryCache) Put(_ context.Context, mint string, entry Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[mint] = entry
	return nil
}
