// ABOUTME: Social source adapter reading a community's hot listing as JSON
// ABOUTME: Requests are paced with a token bucket to stay under the upstream rate limit

package reddit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mememe-api/core/domain"
	coreerrors "mememe-api/core/errors"
	"mememe-api/pkg/utils/text"

	"golang.org/x/time/rate"
	"resty.dev/v3"
)

const (
	// DefaultBaseURL is the public Reddit site
	DefaultBaseURL = "https://www.reddit.com"

	// DefaultPostLimit is the number of posts requested per community
	DefaultPostLimit = 50

	apiName   = "reddit"
	userAgent = "MemeMeAPI/1.0"
)

type listing struct {
	Data struct {
		Children []struct {
			Data post `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type post struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	URL        string  `json:"url"`
	Ups        int     `json:"ups"`
	CreatedUTC float64 `json:"created_utc"`
	Subreddit  string  `json:"subreddit"`
	Stickied   bool    `json:"stickied"`
}

// Client reads hot posts through the JSON listing API
type Client struct {
	client  *resty.Client
	limiter *rate.Limiter
	limit   int
}

// NewClient creates a JSON listing client allowing rps requests per second
func NewClient(baseURL string, timeout time.Duration, rps float64) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if rps <= 0 {
		rps = 2
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent)

	return &Client{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		limit:   DefaultPostLimit,
	}
}

// Close releases the underlying HTTP resources
func (c *Client) Close() error {
	return c.client.Close()
}

// TrendingPosts returns the community's hot posts, skipping pinned ones
func (c *Client) TrendingPosts(ctx context.Context, community string) ([]domain.SocialPost, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var body listing
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("community", community).
		SetQueryParam("limit", fmt.Sprint(c.limit)).
		SetQueryParam("raw_json", "1").
		SetResult(&body).
		Get("/r/{community}/hot.json")
	if err != nil {
		return nil, coreerrors.WrapError(err, "reddit request failed")
	}
	if resp.IsError() {
		return nil, &coreerrors.ExternalAPIError{
			API:        apiName,
			StatusCode: resp.StatusCode(),
			Message:    "hot listing for " + community,
		}
	}

	posts := make([]domain.SocialPost, 0, len(body.Data.Children))
	for _, child := range body.Data.Children {
		p := child.Data
		if p.Stickied || p.ID == "" {
			continue
		}
		source := p.Subreddit
		if source == "" {
			source = community
		}
		posts = append(posts, domain.SocialPost{
			ID:          p.ID,
			Title:       text.CleanTitle(p.Title),
			Link:        p.URL,
			Upvotes:     p.Ups,
			CreatedUnix: int64(p.CreatedUTC),
			Community:   source,
		})
	}
	return posts, nil
}
