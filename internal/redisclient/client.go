package redisclient

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Client mirrors the stock ledger's quantities into Redis for the shipping
// fast path and the dashboard. The database is authoritative; a missing key
// is answered as absent, never as zero. The mirror is only ever overwritten
// with absolute quantities, so the workflows' post-commit writes and the
// stock worker's event replays converge on the same value.
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

func stockKey(productID string) string {
	return fmt.Sprintf("stock:%s", productID)
}

// SetStock overwrites the mirrored quantity for a product
func (c *Client) SetStock(ctx context.Context, productID string, quantity int) error {
	return c.rdb.Set(ctx, stockKey(productID), quantity, 0).Err()
}

// DeleteStock drops the mirrored quantity for a product
func (c *Client) DeleteStock(ctx context.Context, productID string) error {
	return c.rdb.Del(ctx, stockKey(productID)).Err()
}

// GetStock reads the mirrored quantity. The second return is false when the
// product has no mirror entry.
func (c *Client) GetStock(ctx context.Context, productID string) (int, bool, error) {
	quantity, err := c.rdb.Get(ctx, stockKey(productID)).Int()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return quantity, true, nil
}
