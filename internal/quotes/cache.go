package quotes

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a read-through redis layer in front of a Provider. A cache miss
// or an unreachable redis both degrade to a direct lookup.
type Cache struct {
	inner  Provider
	client *redis.Client
	ttl    time.Duration
}

func NewCache(inner Provider, client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{inner: inner, client: client, ttl: ttl}
}

func cacheKey(symbol string) string {
	return "quote:" + symbol
}

func (c *Cache) Lookup(ctx context.Context, symbol string) (Quote, error) {
	if val, err := c.client.Get(ctx, cacheKey(symbol)).Result(); err == nil {
		var quote Quote
		if err := json.Unmarshal([]byte(val), &quote); err == nil {
			return quote, nil
		}
	}
	quote, err := c.inner.Lookup(ctx, symbol)
	if err != nil {
		return Quote{}, err
	}
	if data, err := json.Marshal(quote); err == nil {
		c.client.Set(ctx, cacheKey(symbol), data, c.ttl)
	}
	return quote, nil
}
