package callcache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// LRU bounds the cache and ages entries out, trading the occasional refetch
// for a hard memory ceiling on long-running relayers.
type LRU struct {
	cache *expirable.LRU[Key, []byte]
}

// NewLRU creates a cache holding at most maxEntries entries, each expiring
// after expiry.
func NewLRU(maxEntries int, expiry time.Duration) *LRU {
	return &LRU{
		cache: expirable.NewLRU[Key, []byte](maxEntries, nil, expiry),
	}
}

func (c *LRU) Get(_ context.Context, key Key) ([]byte, bool, error) {
	raw, found := c.cache.Get(key)
	if !found {
		return nil, false, nil
	}
	return raw, true, nil
}

func (c *LRU) Put(_ context.Context, key Key, value []byte) error {
	c.cache.Add(key, value)
	return nil
}

// Len returns the number of live entries (for testing).
func (c *LRU) Len() int {
	return c.cache.Len()
}
