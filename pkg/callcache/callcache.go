// Package callcache stores the results of offchain metadata lookups keyed by
// the exact contract call that produced them. Builders consult it before
// fetching and refresh it after every successful fetch, so the newest proof
// for a message is always the one served.
package callcache

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/crosslane/relayer/protocol"
)

// Key identifies one cached call: the contract address, the function name,
// and the encoded call parameters. Two calls share an entry only when all
// three match.
type Key struct {
	address  string
	function string
	params   string
}

// NewKey builds a cache key. An empty address is valid and simply produces
// keys scoped to the function and parameters alone.
func NewKey(address protocol.UnknownAddress, function string, params []byte) Key {
	return Key{
		address:  address.String(),
		function: function,
		params:   hex.EncodeToString(params),
	}
}

// String renders the key as address:function:hex(params). Hex never contains
// the separator, so distinct keys always render to distinct strings.
func (k Key) String() string {
	return k.address + ":" + k.function + ":" + k.params
}

// scope names the entry without its params. Error text uses this form so
// failures never carry encoded message bytes around.
func (k Key) scope() string {
	return k.address + ":" + k.function
}

// Cache is a byte store for call results. Implementations must treat Put as
// an unconditional overwrite and must report a missing entry as (nil, false,
// nil) rather than an error.
type Cache interface {
	Get(ctx context.Context, key Key) ([]byte, bool, error)
	Put(ctx context.Context, key Key, value []byte) error
}

// Lookup reads the entry for key and decodes it into T. A missing entry is
// (zero, false, nil). A present entry that fails to decode is an error: the
// stored bytes can only have come from Store, so garbage means the cache
// itself is damaged.
func Lookup[T any](ctx context.Context, cache Cache, key Key) (T, bool, error) {
	var value T

	raw, found, err := cache.Get(ctx, key)
	if err != nil {
		return value, false, fmt.Errorf("failed to read cache entry %s: %w", key.scope(), err)
	}
	if !found {
		return value, false, nil
	}

	if err := json.Unmarshal(raw, &value); err != nil {
		return value, false, fmt.Errorf("failed to decode cache entry %s: %w", key.scope(), err)
	}

	return value, true, nil
}

// Store encodes value as JSON and writes it under key, replacing any
// previous entry.
func Store[T any](ctx context.Context, cache Cache, key Key, value T) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry %s: %w", key.scope(), err)
	}

	if err := cache.Put(ctx, key, raw); err != nil {
		return fmt.Errorf("failed to write cache entry %s: %w", key.scope(), err)
	}

	return nil
}
