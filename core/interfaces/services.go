// ABOUTME: Source interfaces for the template catalog
// ABOUTME: Defines contracts for the template provider and social community feeds

package interfaces

import (
	"context"

	"mememe-api/core/domain"
)

// TemplateProvider lists template metadata from the meme template provider
type TemplateProvider interface {
	ListTemplates(ctx context.Context) ([]domain.ProviderTemplate, error)
}

// SocialSource lists trending posts for one community
type SocialSource interface {
	TrendingPosts(ctx context.Context, community string) ([]domain.SocialPost, error)
}

// CatalogService serves and maintains the ranked template catalog
type CatalogService interface {
	// Templates returns the cached catalog, rebuilding it when none is fresh
	Templates(ctx context.Context) (*domain.TemplateCatalog, error)

	// Rebuild refreshes the catalog from its sources and saves it
	Rebuild(ctx context.Context) (*domain.TemplateCatalog, error)

	GetCacheStats(ctx context.Context) domain.CacheStats
	ClearCache(ctx context.Context)
}
