package menu

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Cache is a read-through product cache. A miss or a Redis failure
// falls back to the repository; writes invalidate.
type Cache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{Client: client, TTL: ttl}
}

func (c *Cache) productKey(id uuid.UUID) string {
	return "product:" + id.String()
}

func (c *Cache) GetProduct(ctx context.Context, id uuid.UUID) (*Product, bool) {
	data, err := c.Client.Get(ctx, c.productKey(id)).Bytes()
	if err != nil {
		return nil, false
	}

	var p Product
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, false
	}
	return &p, true
}

func (c *Cache) SetProduct(ctx context.Context, p *Product) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, c.productKey(p.ID), data, c.TTL).Err()
}

func (c *Cache) Invalidate(ctx context.Context, id uuid.UUID) error {
	return c.Client.Del(ctx, c.productKey(id)).Err()
}
