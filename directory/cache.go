package directory

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache is a get-or-fetch cache that coalesces concurrent fetches per key.
// A successful result is kept until Invalidate; failures are not cached.
type Cache[T any] struct {
	mu     sync.RWMutex
	values map[string]T
	group  singleflight.Group
}

func NewCache[T any]() *Cache[T] {
	return &Cache[T]{values: make(map[string]T)}
}

// Get returns the cached value for key or runs fetch once for all concurrent
// callers. The fetch runs with the first caller's context.
func (c *Cache[T]) Get(ctx context.Context, key string, fetch func(context.Context) (T, error)) (T, error) {
	c.mu.RLock()
	if v, ok := c.values[key]; ok {
		c.mu.RUnlock()
		return v, nil
	}
	c.mu.RUnlock()

	v, err, _ := c.group.Do(key, func() (any, error) {
		c.mu.RLock()
		if v, ok := c.values[key]; ok {
			c.mu.RUnlock()
			return v, nil
		}
		c.mu.RUnlock()

		v, err := fetch(ctx)
		if err != nil {
			return v, err
		}

		c.mu.Lock()
		c.values[key] = v
		c.mu.Unlock()
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Invalidate drops the cached value so the next Get fetches again.
func (c *Cache[T]) Invalidate(key string) {
	c.mu.Lock()
	delete(c.values, key)
	c.mu.Unlock()
	c.group.Forget(key)
}
