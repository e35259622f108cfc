// ABOUTME: Mappers from catalog domain models to API DTOs
// ABOUTME: Keeps the response shape independent of the stored catalog format

package mappers

import (
	"math"

	"mememe-api/api/dto/responses"
	"mememe-api/core/domain"
)

// ToTemplateResponse converts a candidate to its API form
func ToTemplateResponse(c domain.TemplateCandidate) responses.TemplateResponse {
	return responses.TemplateResponse{
		ID:               c.ID,
		Name:             c.Name,
		URL:              c.URL,
		Width:            c.Width,
		Height:           c.Height,
		BoxCount:         c.BoxCount,
		PopularitySignal: c.PopularitySignal,
		CreatedAt:        c.CreatedAtUnix,
		FreshnessScore:   round(c.FreshnessScore),
		CompositeScore:   round(c.CompositeScore),
		Source:           string(c.Source),
	}
}

// ToSourceCountsResponse converts source tallies
func ToSourceCountsResponse(c domain.SourceCounts) responses.SourceCountsResponse {
	return responses.SourceCountsResponse{
		ProviderOnly: c.ProviderOnly,
		SocialOnly:   c.SocialOnly,
		MatchedBoth:  c.MatchedBoth,
	}
}

// ToCatalogResponse converts a catalog, keeping at most limit templates.
// A limit of 0 keeps them all.
func ToCatalogResponse(catalog *domain.TemplateCatalog, limit int) *responses.CatalogResponse {
	if catalog == nil {
		return nil
	}

	templates := catalog.Templates
	if limit > 0 && len(templates) > limit {
		templates = templates[:limit]
	}

	response := &responses.CatalogResponse{
		Templates:    make([]responses.TemplateResponse, 0, len(templates)),
		Count:        len(templates),
		TotalCount:   catalog.TotalCount,
		SourceCounts: ToSourceCountsResponse(catalog.SourceCounts),
		LastUpdated:  catalog.LastUpdated,
	}
	for _, c := range templates {
		response.Templates = append(response.Templates, ToTemplateResponse(c))
	}
	return response
}

// ToCacheStatsResponse converts cache stats
func ToCacheStatsResponse(stats domain.CacheStats) responses.CacheStatsResponse {
	return responses.CacheStatsResponse{
		Cached:      stats.Cached,
		AgeSeconds:  int64(stats.Age.Seconds()),
		Templates:   stats.Templates,
		Sources:     ToSourceCountsResponse(stats.Sources),
		LastUpdated: stats.LastUpdated,
	}
}

// round keeps four decimal places
func round(v float64) float64 {
	return math.Round(v*10000) / 10000
}
