// ABOUTME: Raw records produced by the template provider and the social feed sources
// ABOUTME: These are inputs to matching and scoring, not persisted on their own

package domain

// ProviderTemplate is a template record as returned by the template provider
type ProviderTemplate struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	BoxCount int    `json:"box_count"`

	// Captions is the provider's usage count, used as its popularity proxy
	Captions int `json:"captions"`
}

// SocialPost is a post from a social community feed
type SocialPost struct {
	ID          string
	Title       string
	Link        string
	Upvotes     int
	CreatedUnix int64
	Community   string
}

// Caption is one generated top/bottom caption pair
type Caption struct {
	Top    string `json:"top"`
	Bottom string `json:"bottom"`
}

// RateLimitResult is the outcome of a single rate-limit check
type RateLimitResult struct {
	Success   bool
	Limit     int
	Remaining int

	// Reset is the epoch time in milliseconds when the window resets
	Reset int64
}
