package templates

import (
	"context"
	"time"

	"mememe-api/core/cache"
	"mememe-api/core/domain"
	coreerrors "mememe-api/core/errors"
)

// CacheStore keeps the catalog in the two-tier cache under a fixed key
type CacheStore struct {
	cache *cache.Service
	ttl   time.Duration
}

// NewCacheStore creates a catalog store on top of the cache service
func NewCacheStore(c *cache.Service, ttl time.Duration) *CacheStore {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CacheStore{cache: c, ttl: ttl}
}

// Name identifies the store in logs
func (s *CacheStore) Name() string { return "cache" }

// Load returns the cached catalog
func (s *CacheStore) Load(ctx context.Context) (*domain.TemplateCatalog, error) {
	catalog, ok := cache.Fetch[domain.TemplateCatalog](ctx, s.cache, cache.TrendingTemplatesKey)
	if !ok {
		return nil, coreerrors.ErrCacheMiss
	}
	return &catalog, nil
}

// Save caches the catalog for the store TTL
func (s *CacheStore) Save(ctx context.Context, catalog *domain.TemplateCatalog) error {
	return s.cache.Set(ctx, cache.TrendingTemplatesKey, catalog, s.ttl)
}

// Clear drops the cached catalog
func (s *CacheStore) Clear(ctx context.Context) error {
	s.cache.Delete(ctx, cache.TrendingTemplatesKey)
	return nil
}
