package redisclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Client stores idempotent order responses keyed by caller-supplied
// idempotency keys.
type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// StoreIdempotentResponse stores a response payload under an
// idempotency key with a TTL.
func (c *Client) StoreIdempotentResponse(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, fmt.Sprintf("idempotency:%s", key), payload, ttl).Err()
}

// GetIdempotentResponse returns the payload stored under an
// idempotency key, or nil when the key is unknown.
func (c *Client) GetIdempotentResponse(ctx context.Context, key string) ([]byte, error) {
	payload, err := c.rdb.Get(ctx, fmt.Sprintf("idempotency:%s", key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}
