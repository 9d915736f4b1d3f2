package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache is the in-process TTL cache used for development and tests.
// Expired items are purged every 10 minutes.
type MemoryCache struct {
	cache *gocache.Cache
}

var _ Cache = &MemoryCache{}

func NewMemoryCache(defaultTTL time.Duration) *MemoryCache {
	return &MemoryCache{
		cache: gocache.New(defaultTTL, 10*time.Minute),
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) (string, error) {
	if x, found := c.cache.Get(key); found {
		if s, ok := x.(string); ok {
			return s, nil
		}
	}
	return "", nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	c.cache.Set(key, value, ttl)
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.cache.Delete(key)
	return nil
}
