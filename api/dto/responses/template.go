// ABOUTME: Response DTOs for template catalog endpoints
// ABOUTME: Scores are rounded for display; ordering is exactly the catalog's

package responses

import "time"

// TemplateResponse represents one ranked template
type TemplateResponse struct {
	ID               string  `json:"id" doc:"Template identifier"`
	Name             string  `json:"name" doc:"Template name"`
	URL              string  `json:"url" doc:"Template image URL"`
	Width            int     `json:"width,omitempty" doc:"Image width in pixels"`
	Height           int     `json:"height,omitempty" doc:"Image height in pixels"`
	BoxCount         int     `json:"box_count" doc:"Number of caption boxes"`
	PopularitySignal int     `json:"popularity_signal" doc:"Upvotes of the matching social post, 0 when none"`
	CreatedAt        *int64  `json:"created_at,omitempty" doc:"Unix time of the matching social post"`
	FreshnessScore   float64 `json:"freshness_score" doc:"Recency score in [0,1]"`
	CompositeScore   float64 `json:"composite_score" doc:"Ranking score in [0,1]"`
	Source           string  `json:"source" enum:"provider-only,social-only,matched-both" doc:"Which upstreams contributed the template"`
}

// SourceCountsResponse tallies templates per source
type SourceCountsResponse struct {
	ProviderOnly int `json:"provider_only" doc:"Templates known only to the provider"`
	SocialOnly   int `json:"social_only" doc:"Templates synthesized from social posts"`
	MatchedBoth  int `json:"matched_both" doc:"Provider templates matched by a trending post"`
}

// CatalogResponse represents the ranked catalog
type CatalogResponse struct {
	Templates    []TemplateResponse   `json:"templates" doc:"Templates ordered by composite score"`
	Count        int                  `json:"count" doc:"Number of templates in this response"`
	TotalCount   int                  `json:"total_count" doc:"Number of templates in the catalog"`
	SourceCounts SourceCountsResponse `json:"source_counts" doc:"Catalog templates per source"`
	LastUpdated  time.Time            `json:"last_updated" doc:"When the catalog was built"`
}

// CacheStatsResponse describes the cached catalog
type CacheStatsResponse struct {
	Cached      bool                 `json:"cached" doc:"Whether a fresh catalog is stored"`
	AgeSeconds  int64                `json:"age_seconds" doc:"Age of the stored catalog"`
	Templates   int                  `json:"templates" doc:"Number of templates in the stored catalog"`
	Sources     SourceCountsResponse `json:"sources" doc:"Stored templates per source"`
	LastUpdated *time.Time           `json:"last_updated,omitempty" doc:"When the stored catalog was built"`
}
