// ABOUTME: Storage interfaces for persisting the template catalog
// ABOUTME: Catalog stores are tried in order on read and written together on save

package interfaces

import (
	"context"

	"mememe-api/core/domain"
)

// CatalogStore persists a template catalog in one backing location
type CatalogStore interface {
	// Name identifies the store in logs
	Name() string

	// Load returns the stored catalog, or ErrCacheMiss if nothing is stored
	Load(ctx context.Context) (*domain.TemplateCatalog, error)

	// Save replaces the stored catalog
	Save(ctx context.Context, catalog *domain.TemplateCatalog) error

	// Clear removes the stored catalog
	Clear(ctx context.Context) error
}
