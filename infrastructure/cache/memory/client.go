// ABOUTME: In-process cache tier backed by a bounded LRU with per-entry expiry
// ABOUTME: Expired entries are rejected and evicted lazily on read; the tier never fails

package memory

import (
	"context"
	"strings"
	"time"

	coreerrors "mememe-api/core/errors"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultSize is the number of entries kept when no size is configured
const DefaultSize = 500

// item represents a cached item with expiration
type item struct {
	value      []byte
	expiration time.Time
	noExpire   bool
}

// MemoryCache implements the CacheTier interface using a bounded in-process LRU.
// The LRU carries its own lock, so MemoryCache is safe for concurrent use.
type MemoryCache struct {
	items *lru.Cache[string, *item]
	now   func() time.Time
}

// NewMemoryCache creates a new in-memory cache holding at most size entries
func NewMemoryCache(size int) *MemoryCache {
	if size <= 0 {
		size = DefaultSize
	}
	// lru.New only fails on a non-positive size
	items, _ := lru.New[string, *item](size)

	return &MemoryCache{
		items: items,
		now:   time.Now,
	}
}

// WithClock replaces the time source used for expiry checks
func (c *MemoryCache) WithClock(now func() time.Time) *MemoryCache {
	c.now = now
	return c
}

// Get retrieves a value from the cache
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	it, ok := c.items.Get(key)
	if !ok {
		return nil, coreerrors.ErrCacheMiss
	}

	if !it.noExpire && c.now().After(it.expiration) {
		c.items.Remove(key)
		return nil, coreerrors.ErrCacheMiss
	}

	// Return a copy of the value
	result := make([]byte, len(it.value))
	copy(result, it.value)
	return result, nil
}

// Set stores a value in the cache with the given TTL
func (c *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)

	newItem := &item{
		value:    valueCopy,
		noExpire: ttl <= 0,
	}
	if ttl > 0 {
		newItem.expiration = c.now().Add(ttl)
	}

	c.items.Add(key, newItem)
	return nil
}

// Delete removes a key from the cache
func (c *MemoryCache) Delete(ctx context.Context, key string) (bool, error) {
	return c.items.Remove(key), nil
}

// Clear removes every key starting with prefix; an empty prefix purges everything
func (c *MemoryCache) Clear(ctx context.Context, prefix string) error {
	if prefix == "" {
		c.items.Purge()
		return nil
	}
	for _, key := range c.items.Keys() {
		if strings.HasPrefix(key, prefix) {
			c.items.Remove(key)
		}
	}
	return nil
}

// Len returns the number of entries held, including ones not yet lazily expired
func (c *MemoryCache) Len() int {
	return c.items.Len()
}
