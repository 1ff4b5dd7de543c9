package cacheredis

import (
	"context"
	"errors"
	"time"

	"github.com/goliatone/go-proposal/proposal"
	"github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces artifact keys.
const DefaultPrefix = "go-proposal:"

// Cache stores rendered artifacts in Redis.
type Cache struct {
	Client redis.UniversalClient
	Prefix string
	TTL    time.Duration
}

// NewCache wraps an existing client.
func NewCache(client redis.UniversalClient, ttl time.Duration) *Cache {
	return &Cache{Client: client, Prefix: DefaultPrefix, TTL: ttl}
}

// Dial connects to addr and verifies the connection.
func Dial(ctx context.Context, addr, password string, db int, ttl time.Duration) (*Cache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, proposal.NewError(proposal.KindInternal, "redis ping failed", err)
	}
	return NewCache(client, ttl), nil
}

// Get returns the cached bytes for key. A missing key is a miss, not an error.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := c.check(key); err != nil {
		return nil, false, err
	}
	data, err := c.Client.Get(ctx, c.Prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set stores data under key with the configured TTL.
func (c *Cache) Set(ctx context.Context, key string, data []byte) error {
	if err := c.check(key); err != nil {
		return err
	}
	return c.Client.Set(ctx, c.Prefix+key, data, c.TTL).Err()
}

// Delete removes key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.check(key); err != nil {
		return err
	}
	return c.Client.Del(ctx, c.Prefix+key).Err()
}

// Close closes the underlying client.
func (c *Cache) Close() error {
	if c == nil || c.Client == nil {
		return nil
	}
	return c.Client.Close()
}

func (c *Cache) check(key string) error {
	if c == nil || c.Client == nil {
		return proposal.NewError(proposal.KindNotImpl, "redis cache not configured", nil)
	}
	if key == "" {
		return proposal.NewError(proposal.KindValidation, "cache key is required", nil)
	}
	return nil
}

var _ proposal.ArtifactCache = (*Cache)(nil)
