// ABOUTME: Matches trending social posts against provider templates and builds scored candidates
// ABOUTME: First match wins and each provider template is claimed at most once

package templates

import (
	"net/url"
	"path"
	"regexp"
	"sort"
	"strings"
	"time"

	"mememe-api/core/domain"
	"mememe-api/core/scoring"

	"github.com/google/uuid"
)

const (
	// HighUpvoteThreshold makes any post template-related regardless of its title
	HighUpvoteThreshold = 5000

	// SyntheticUpvoteThreshold is the upvote count an unmatched post must exceed
	// to become a social-only candidate
	SyntheticUpvoteThreshold = 500

	// minKeywordOverlap is the number of shared long words that counts as a match
	minKeywordOverlap = 2

	// minKeywordLength is the length a word must exceed to count toward overlap
	minKeywordLength = 3

	// minSubstringLength keeps very short names from matching everything
	minSubstringLength = 4
)

var (
	namedTemplatePattern = regexp.MustCompile(`(?i)\b(drake|distracted boyfriend|expanding brain|two buttons|change my mind|is this a pigeon|woman yelling at (a )?cat|gru'?s plan|uno draw 25|this is fine|always has been|trade offer|epic handshake|left exit 12|running away balloon|batman slapping robin|surprised pikachu|anakin (and )?padme|bernie|stonks|galaxy brain)\b`)

	genericTemplatePattern = regexp.MustCompile(`(?i)\b(templates?|formats?|blank|new meme|oc)\b`)

	// words stripped from a title before it is compared to provider names
	nameNoisePattern = regexp.MustCompile(`(?i)\[[^\]]*\]|\([^)]*\)|\b(meme|memes|templates?|formats?|blank|new|oc)\b`)

	nonWordPattern = regexp.MustCompile(`[^a-z0-9']+`)

	imageExtensions = map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".gif":  true,
		".webp": true,
	}

	imageHosts = map[string]bool{
		"i.redd.it":       true,
		"preview.redd.it": true,
		"i.imgur.com":     true,
		"imgur.com":       true,
		"i.imgflip.com":   true,
		"imgflip.com":     true,
	}

	// syntheticNamespace scopes generated IDs for social-only candidates
	syntheticNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://mememe.app/templates/social"))
)

// MatchResult holds the outcome of matching one refresh's posts against the provider list
type MatchResult struct {
	Matched    []domain.TemplateCandidate
	SocialOnly []domain.TemplateCandidate

	// Unclaimed lists provider templates no post matched, in provider order
	Unclaimed []domain.ProviderTemplate
}

// IsTemplateRelated reports whether a post looks like it shares a meme template
func IsTemplateRelated(post domain.SocialPost) bool {
	if !IsImageLink(post.Link) {
		return false
	}
	return post.Upvotes >= HighUpvoteThreshold ||
		namedTemplatePattern.MatchString(post.Title) ||
		genericTemplatePattern.MatchString(post.Title)
}

// IsImageLink reports whether link points at an image file or a known image host
func IsImageLink(link string) bool {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil || u.Host == "" {
		return false
	}

	if imageExtensions[strings.ToLower(path.Ext(u.Path))] {
		return true
	}
	return imageHosts[strings.ToLower(u.Hostname())]
}

// ExtractTemplateName strips tags and filler words from a post title
func ExtractTemplateName(title string) string {
	cleaned := nameNoisePattern.ReplaceAllString(title, " ")
	cleaned = nonWordPattern.ReplaceAllString(strings.ToLower(cleaned), " ")
	return strings.Join(strings.Fields(cleaned), " ")
}

func normalizeName(name string) string {
	return strings.Join(strings.Fields(nonWordPattern.ReplaceAllString(strings.ToLower(name), " ")), " ")
}

// keywords returns the distinct words longer than minKeywordLength
func keywords(s string) map[string]struct{} {
	words := make(map[string]struct{})
	for _, w := range strings.Fields(normalizeName(s)) {
		if len(w) > minKeywordLength {
			words[w] = struct{}{}
		}
	}
	return words
}

func sharedKeywords(a, b map[string]struct{}) int {
	n := 0
	for w := range a {
		if _, ok := b[w]; ok {
			n++
		}
	}
	return n
}

func namesMatch(extracted, provider string) bool {
	if extracted == "" || provider == "" {
		return false
	}
	if extracted == provider {
		return true
	}
	if len(provider) >= minSubstringLength && strings.Contains(extracted, provider) {
		return true
	}
	return len(extracted) >= minSubstringLength && strings.Contains(provider, extracted)
}

// Match pairs template-related posts with provider templates in post order.
// Unmatched posts above SyntheticUpvoteThreshold become social-only candidates.
func Match(posts []domain.SocialPost, provider []domain.ProviderTemplate, now time.Time) MatchResult {
	names := make([]string, len(provider))
	words := make([]map[string]struct{}, len(provider))
	for i, t := range provider {
		names[i] = normalizeName(t.Name)
		words[i] = keywords(t.Name)
	}

	claimed := make([]bool, len(provider))
	var result MatchResult

	for _, post := range posts {
		if !IsTemplateRelated(post) {
			continue
		}

		extracted := ExtractTemplateName(post.Title)
		titleWords := keywords(post.Title)

		idx := -1
		for i := range provider {
			if claimed[i] {
				continue
			}
			if namesMatch(extracted, names[i]) || sharedKeywords(titleWords, words[i]) >= minKeywordOverlap {
				idx = i
				break
			}
		}

		if idx >= 0 {
			claimed[idx] = true
			result.Matched = append(result.Matched, matchedCandidate(provider[idx], post, now))
			continue
		}

		if post.Upvotes > SyntheticUpvoteThreshold {
			result.SocialOnly = append(result.SocialOnly, socialCandidate(post, now))
		}
	}

	for i, t := range provider {
		if !claimed[i] {
			result.Unclaimed = append(result.Unclaimed, t)
		}
	}
	return result
}

func postTimestamp(post domain.SocialPost) *int64 {
	if post.CreatedUnix <= 0 {
		return nil
	}
	ts := post.CreatedUnix
	return &ts
}

func matchedCandidate(t domain.ProviderTemplate, post domain.SocialPost, now time.Time) domain.TemplateCandidate {
	createdAt := postTimestamp(post)
	freshness := scoring.Freshness(createdAt, now)

	return domain.TemplateCandidate{
		ID:               t.ID,
		Name:             t.Name,
		URL:              t.URL,
		Width:            t.Width,
		Height:           t.Height,
		BoxCount:         t.BoxCount,
		PopularitySignal: post.Upvotes,
		CreatedAtUnix:    createdAt,
		FreshnessScore:   freshness,
		CompositeScore:   scoring.Composite(freshness, post.Upvotes, t.BoxCount),
		Source:           domain.SourceMatchedBoth,
		LastUpdated:      now,
	}
}

// SyntheticID derives a stable candidate ID from the post identity
func SyntheticID(post domain.SocialPost) string {
	identity := post.ID
	if identity == "" {
		identity = post.Link
	}
	return uuid.NewSHA1(syntheticNamespace, []byte(post.Community+"/"+identity)).String()
}

func socialCandidate(post domain.SocialPost, now time.Time) domain.TemplateCandidate {
	createdAt := postTimestamp(post)
	freshness := scoring.Freshness(createdAt, now)

	name := ExtractTemplateName(post.Title)
	if name == "" {
		name = strings.TrimSpace(post.Title)
	}

	return domain.TemplateCandidate{
		ID:               SyntheticID(post),
		Name:             name,
		URL:              post.Link,
		PopularitySignal: post.Upvotes,
		CreatedAtUnix:    createdAt,
		FreshnessScore:   freshness,
		CompositeScore:   scoring.Composite(freshness, post.Upvotes, 0),
		Source:           domain.SourceSocialOnly,
		LastUpdated:      now,
	}
}

// ProviderOnly scores the limit most-captioned templates with no social signal
func ProviderOnly(provider []domain.ProviderTemplate, limit int, now time.Time) []domain.TemplateCandidate {
	ranked := make([]domain.ProviderTemplate, len(provider))
	copy(ranked, provider)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Captions > ranked[j].Captions
	})
	if limit >= 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	candidates := make([]domain.TemplateCandidate, 0, len(ranked))
	for _, t := range ranked {
		candidates = append(candidates, domain.TemplateCandidate{
			ID:             t.ID,
			Name:           t.Name,
			URL:            t.URL,
			Width:          t.Width,
			Height:         t.Height,
			BoxCount:       t.BoxCount,
			FreshnessScore: scoring.ProviderOnlyFreshness,
			CompositeScore: scoring.Composite(scoring.ProviderOnlyFreshness, 0, t.BoxCount),
			Source:         domain.SourceProviderOnly,
			LastUpdated:    now,
		})
	}
	return candidates
}

// Merge concatenates candidate groups in order, keeps the first candidate per ID,
// sorts by composite score descending with ties in insertion order and keeps the top limit
func Merge(limit int, groups ...[]domain.TemplateCandidate) []domain.TemplateCandidate {
	seen := make(map[string]struct{})
	var merged []domain.TemplateCandidate
	for _, group := range groups {
		for _, c := range group {
			if _, dup := seen[c.ID]; dup {
				continue
			}
			seen[c.ID] = struct{}{}
			merged = append(merged, c)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CompositeScore > merged[j].CompositeScore
	})
	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	if merged == nil {
		merged = []domain.TemplateCandidate{}
	}
	return merged
}
