// ABOUTME: Template catalog handlers: ranked list, cache stats and admin operations
// ABOUTME: Reads never fail once a catalog has been built; rebuild failures map to 503

package handlers

import (
	"context"
	"net/http"

	"mememe-api/api/dto/mappers"
	"mememe-api/api/dto/responses"
	"mememe-api/core/interfaces"

	"github.com/danielgtaylor/huma/v2"
)

// TemplatesHandler serves the template catalog
type TemplatesHandler struct {
	catalog interfaces.CatalogService
}

// NewTemplatesHandler creates a new templates handler
func NewTemplatesHandler(catalog interfaces.CatalogService) *TemplatesHandler {
	return &TemplatesHandler{catalog: catalog}
}

// RegisterRoutes registers template routes
func (h *TemplatesHandler) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "listTemplates",
		Method:      http.MethodGet,
		Path:        "/templates",
		Summary:     "List trending templates",
		Description: "Returns the ranked template catalog, building it first when no fresh catalog is cached",
		Tags:        []string{"Templates"},
	}, h.ListTemplates)

	huma.Register(api, huma.Operation{
		OperationID: "templateCacheStats",
		Method:      http.MethodGet,
		Path:        "/templates/stats",
		Summary:     "Template cache stats",
		Tags:        []string{"Templates"},
	}, h.CacheStats)

	huma.Register(api, huma.Operation{
		OperationID: "refreshTemplates",
		Method:      http.MethodPost,
		Path:        "/templates/refresh",
		Summary:     "Rebuild the template catalog",
		Description: "Clears every cached copy of the catalog and rebuilds it from the sources",
		Tags:        []string{"Templates"},
	}, h.Refresh)

	huma.Register(api, huma.Operation{
		OperationID:   "clearTemplateCache",
		Method:        http.MethodDelete,
		Path:          "/templates/cache",
		Summary:       "Clear the template cache",
		Tags:          []string{"Templates"},
		DefaultStatus: http.StatusNoContent,
	}, h.ClearCache)
}

// ListTemplatesInput defines the input for listing templates
type ListTemplatesInput struct {
	Limit int `query:"limit" minimum:"0" maximum:"200" default:"0" doc:"Maximum templates to return, 0 for all"`
}

// CatalogOutput wraps a catalog response
type CatalogOutput struct {
	Body responses.CatalogResponse
}

// CacheStatsOutput wraps a cache stats response
type CacheStatsOutput struct {
	Body responses.CacheStatsResponse
}

// ListTemplates handles GET /templates
func (h *TemplatesHandler) ListTemplates(ctx context.Context, input *ListTemplatesInput) (*CatalogOutput, error) {
	catalog, err := h.catalog.Templates(ctx)
	if err != nil {
		return nil, toHumaError(err)
	}
	return &CatalogOutput{Body: *mappers.ToCatalogResponse(catalog, input.Limit)}, nil
}

// CacheStats handles GET /templates/stats
func (h *TemplatesHandler) CacheStats(ctx context.Context, input *struct{}) (*CacheStatsOutput, error) {
	return &CacheStatsOutput{Body: mappers.ToCacheStatsResponse(h.catalog.GetCacheStats(ctx))}, nil
}

// Refresh handles POST /templates/refresh
func (h *TemplatesHandler) Refresh(ctx context.Context, input *struct{}) (*CatalogOutput, error) {
	h.catalog.ClearCache(ctx)

	catalog, err := h.catalog.Rebuild(ctx)
	if err != nil {
		return nil, toHumaError(err)
	}
	return &CatalogOutput{Body: *mappers.ToCatalogResponse(catalog, 0)}, nil
}

// ClearCache handles DELETE /templates/cache
func (h *TemplatesHandler) ClearCache(ctx context.Context, input *struct{}) (*struct{}, error) {
	h.catalog.ClearCache(ctx)
	return &struct{}{}, nil
}
