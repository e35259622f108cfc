// ABOUTME: Template domain model for ranked meme templates and the catalog that holds them
// ABOUTME: Candidates are scored records; the catalog is the cached, ranked, deduplicated top-N list

package domain

import (
	"time"
)

// Source identifies which upstream(s) contributed a template candidate
type Source string

const (
	// SourceProviderOnly marks a template known only to the template provider
	SourceProviderOnly Source = "provider-only"

	// SourceSocialOnly marks a template synthesized from a social post with no provider match
	SourceSocialOnly Source = "social-only"

	// SourceMatchedBoth marks a provider template matched by a trending social post
	SourceMatchedBoth Source = "matched-both"
)

// TemplateCandidate is a scored template record before or after it is ranked into a catalog
type TemplateCandidate struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	BoxCount int    `json:"box_count"`

	// PopularitySignal is the upvote-equivalent from the social source, 0 when absent
	PopularitySignal int `json:"popularity_signal"`

	// CreatedAtUnix is the social post timestamp, nil when no social signal exists
	CreatedAtUnix *int64 `json:"created_at_unix,omitempty"`

	FreshnessScore float64   `json:"freshness_score"`
	CompositeScore float64   `json:"composite_score"`
	Source         Source    `json:"source"`
	LastUpdated    time.Time `json:"last_updated"`
}

// SourceCounts tallies catalog entries per source
type SourceCounts struct {
	ProviderOnly int `json:"provider_only"`
	SocialOnly   int `json:"social_only"`
	MatchedBoth  int `json:"matched_both"`
}

// Add increments the tally for the given source
func (c *SourceCounts) Add(source Source) {
	switch source {
	case SourceProviderOnly:
		c.ProviderOnly++
	case SourceSocialOnly:
		c.SocialOnly++
	case SourceMatchedBoth:
		c.MatchedBoth++
	}
}

// TemplateCatalog is the ranked set of templates served to consumers.
// It is regenerated wholesale on refresh and never mutated incrementally.
type TemplateCatalog struct {
	Templates    []TemplateCandidate `json:"templates"`
	LastUpdated  time.Time           `json:"last_updated"`
	TotalCount   int                 `json:"total_count"`
	SourceCounts SourceCounts        `json:"source_counts"`
}

// Age returns how long ago the catalog was built
func (c *TemplateCatalog) Age(now time.Time) time.Duration {
	return now.Sub(c.LastUpdated)
}

// IsFresh reports whether the catalog is no older than ttl
func (c *TemplateCatalog) IsFresh(now time.Time, ttl time.Duration) bool {
	if c == nil || c.LastUpdated.IsZero() {
		return false
	}
	return c.Age(now) <= ttl
}

// NewTemplateCatalog wraps ranked templates, stamping counts and the update time
func NewTemplateCatalog(templates []TemplateCandidate, now time.Time) *TemplateCatalog {
	catalog := &TemplateCatalog{
		Templates:   templates,
		LastUpdated: now,
		TotalCount:  len(templates),
	}
	for _, t := range templates {
		catalog.SourceCounts.Add(t.Source)
	}
	return catalog
}

// CacheStats describes the cached catalog without mutating it
type CacheStats struct {
	Cached      bool          `json:"cached"`
	Age         time.Duration `json:"age"`
	Templates   int           `json:"templates"`
	Sources     SourceCounts  `json:"sources"`
	LastUpdated *time.Time    `json:"last_updated,omitempty"`
}
