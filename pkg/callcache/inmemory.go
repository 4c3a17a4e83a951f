package callcache

import (
	"context"
	"sync"

	"github.com/smartcontractkit/chainlink-common/pkg/logger"
)

// InMemory is a mutex-guarded map with no eviction. Entries live until
// overwritten, which suits the refresh-on-read flow where every successful
// fetch rewrites the entry anyway.
type InMemory struct {
	lggr    logger.Logger
	entries map[Key][]byte
	mu      sync.RWMutex
}

// NewInMemory creates an empty in-memory cache.
func NewInMemory(lggr logger.Logger) *InMemory {
	return &InMemory{
		lggr:    lggr,
		entries: make(map[Key][]byte),
	}
}

func (c *InMemory) Get(_ context.Context, key Key) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	raw, found := c.entries[key]
	if !found {
		return nil, false, nil
	}

	// Copy so callers cannot mutate the stored entry.
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, true, nil
}

func (c *InMemory) Put(_ context.Context, key Key, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = stored
	c.lggr.Debugw("Stored cache entry",
		"key", key.String(),
		"size", len(stored),
		"totalEntries", len(c.entries),
	)

	return nil
}

// Len returns the number of stored entries (for testing).
func (c *InMemory) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear removes all stored entries (for testing).
func (c *InMemory) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[Key][]byte)
	c.lggr.Debugw("Cleared all cache entries")
}
