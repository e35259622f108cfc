package handlers

import (
	"context"
	"time"

	"mememe-api/core/domain"
)

// mockCatalogService is a mock implementation of the CatalogService interface
type mockCatalogService struct {
	templatesFunc func(ctx context.Context) (*domain.TemplateCatalog, error)
	rebuildFunc   func(ctx context.Context) (*domain.TemplateCatalog, error)
	statsFunc     func(ctx context.Context) domain.CacheStats
	clears        int
}

func (m *mockCatalogService) Templates(ctx context.Context) (*domain.TemplateCatalog, error) {
	if m.templatesFunc != nil {
		return m.templatesFunc(ctx)
	}
	return domain.NewTemplateCatalog(nil, time.Now()), nil
}

func (m *mockCatalogService) Rebuild(ctx context.Context) (*domain.TemplateCatalog, error) {
	if m.rebuildFunc != nil {
		return m.rebuildFunc(ctx)
	}
	return domain.NewTemplateCatalog(nil, time.Now()), nil
}

func (m *mockCatalogService) GetCacheStats(ctx context.Context) domain.CacheStats {
	if m.statsFunc != nil {
		return m.statsFunc(ctx)
	}
	return domain.CacheStats{}
}

func (m *mockCatalogService) ClearCache(ctx context.Context) {
	m.clears++
}
