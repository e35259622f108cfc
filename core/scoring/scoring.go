// ABOUTME: Freshness and composite scoring for template candidates
// ABOUTME: Pure, deterministic functions; ranking fixtures depend on these exact constants

package scoring

import (
	"math"
	"time"
)

const (
	// NoTimestampFreshness is used when a candidate has no provenance timestamp
	NoTimestampFreshness = 0.5

	// ProviderOnlyFreshness is used for provider templates with no social signal
	ProviderOnlyFreshness = 0.3

	// DefaultPopularity is used when there is no upvote signal
	DefaultPopularity = 0.3

	// DefaultUsability is used when there is no text-box signal
	DefaultUsability = 0.2

	// FreshnessFloor is the lowest freshness any timestamped candidate reaches
	FreshnessFloor = 0.1

	freshnessWeight  = 0.4
	popularityWeight = 0.35
	usabilityWeight  = 0.25

	// upvotes at which popularity saturates
	popularityScale = 1000.0

	// text boxes at which usability saturates
	usabilityScale = 5.0
)

// Freshness scores how recent a post is, from 1.0 for the last six hours down to
// a floor of 0.1 after five weeks. A nil timestamp scores NoTimestampFreshness.
func Freshness(createdAtUnix *int64, now time.Time) float64 {
	if createdAtUnix == nil {
		return NoTimestampFreshness
	}
	hours := float64(now.Unix()-*createdAtUnix) / 3600
	return FreshnessForAge(hours)
}

// FreshnessForAge scores an age given in hours
func FreshnessForAge(hours float64) float64 {
	switch {
	case hours <= 6:
		return 1.0
	case hours <= 24:
		// 1.0 down to 0.8 over 18 hours
		return 0.8 + 0.2*(1-(hours-6)/18)
	case hours <= 168:
		// 0.8 down to 0.3 over the rest of the week
		return 0.3 + 0.5*(1-(hours-24)/144)
	default:
		// 0.3 down to the floor over four more weeks
		return math.Max(FreshnessFloor, 0.3*(1-(hours-168)/672))
	}
}

// Popularity maps upvotes onto [0,1]; zero upvotes means no signal
func Popularity(upvotes int) float64 {
	if upvotes <= 0 {
		return DefaultPopularity
	}
	return math.Min(float64(upvotes)/popularityScale, 1.0)
}

// Usability maps the number of caption boxes onto [0,1]; zero means no signal
func Usability(boxCount int) float64 {
	if boxCount <= 0 {
		return DefaultUsability
	}
	return math.Min(float64(boxCount)/usabilityScale, 1.0)
}

// Composite blends freshness, popularity and usability, weighted 0.4/0.35/0.25
func Composite(freshness float64, upvotes, boxCount int) float64 {
	score := freshnessWeight*clamp(freshness) +
		popularityWeight*Popularity(upvotes) +
		usabilityWeight*Usability(boxCount)
	return clamp(score)
}

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(1, math.Max(0, v))
}
