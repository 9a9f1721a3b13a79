// Package cache holds values per course for a fixed lifetime. Expiry is only checked when an
// entry is read, there is no background sweep and no capacity bound.
package cache

import (
	"sync"
	"time"

	"brightspace-helper/internal/components/assert"
	"brightspace-helper/internal/components/chrono"
)

type entry[V any] struct {
	value     V
	timestamp time.Time
}

type Cache[V any] struct {
	ttl     time.Duration
	time    chrono.TimeAPI
	mu      sync.Mutex
	entries map[string]entry[V]
}

func New[V any](ttl time.Duration, time chrono.TimeAPI) *Cache[V] {
	assert.NotNil(time)
	return &Cache[V]{
		ttl:     ttl,
		time:    time,
		entries: map[string]entry[V]{},
	}
}

func (c *Cache[V]) TTL() time.Duration {
	return c.ttl
}

// Get returns the value stored for key if it was written less than TTL ago.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if c.time.Now().Sub(e.timestamp) >= c.ttl {
		delete(c.entries, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value for key, replacing whatever was there.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[V]{
		value:     value,
		timestamp: c.time.Now(),
	}
}

func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
