package callcache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Redis keeps cache entries in a shared redis instance so multiple relayer
// processes resolve each message's metadata at most once between refreshes.
// Entries expire server side.
type Redis struct {
	client redis.UniversalClient
	expiry time.Duration
}

// NewRedis connects to the redis instance at redisURL. Entries written
// through the returned cache expire after expiry.
func NewRedis(redisURL string, expiry time.Duration) (*Redis, error) {
	redisOptions, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	return &Redis{
		client: redis.NewClient(redisOptions),
		expiry: expiry,
	}, nil
}

func (c *Redis) Get(ctx context.Context, key Key) ([]byte, bool, error) {
	raw, err := c.client.Get(ctx, key.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read redis entry: %w", err)
	}
	return raw, true, nil
}

func (c *Redis) Put(ctx context.Context, key Key, value []byte) error {
	if err := c.client.Set(ctx, key.String(), value, c.expiry).Err(); err != nil {
		return fmt.Errorf("failed to write redis entry: %w", err)
	}
	return nil
}

// Close releases the underlying redis connection.
func (c *Redis) Close() error {
	return c.client.Close()
}
