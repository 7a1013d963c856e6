package cache

import (
	"context"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache implements Cache in-process. It is the default when no Redis
// address is configured and the backing store for service tests.
type MemoryCache struct {
	cache *gocache.Cache
}

// NewMemoryCache constructs an in-process cache whose entries never expire.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{cache: gocache.New(gocache.NoExpiration, 0)}
}

func (c *MemoryCache) Get(_ context.Context, key string) (string, error) {
	value, found := c.cache.Get(key)
	if !found {
		return "", nil
	}
	s, ok := value.(string)
	if !ok {
		return "", nil
	}
	return s, nil
}

func (c *MemoryCache) Set(_ context.Context, key, value string) error {
	c.cache.Set(key, value, gocache.NoExpiration)
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.cache.Delete(key)
	return nil
}
