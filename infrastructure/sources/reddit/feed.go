// ABOUTME: Social source adapter reading a community's RSS feed
// ABOUTME: Feed entries carry no vote counts, so posts from this mode have no upvote signal

package reddit

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"mememe-api/core/domain"
	coreerrors "mememe-api/core/errors"
	"mememe-api/core/interfaces"
	"mememe-api/pkg/utils/text"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

// FeedClient reads posts through the community RSS feed
type FeedClient struct {
	client  interfaces.HTTPClient
	baseURL string
	parser  *gofeed.Parser
}

// NewFeedClient creates a feed client on top of the retrying HTTP client
func NewFeedClient(client interfaces.HTTPClient, baseURL string) *FeedClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &FeedClient{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		parser:  gofeed.NewParser(),
	}
}

// TrendingPosts returns the posts in the community feed that link somewhere
func (c *FeedClient) TrendingPosts(ctx context.Context, community string) ([]domain.SocialPost, error) {
	url := fmt.Sprintf("%s/r/%s/.rss", c.baseURL, community)
	resp, err := c.client.Get(ctx, url)
	if err != nil {
		return nil, coreerrors.WrapError(err, "reddit feed request failed")
	}
	defer resp.Body().Close()

	if resp.StatusCode() != http.StatusOK {
		return nil, &coreerrors.ExternalAPIError{
			API:        apiName,
			StatusCode: resp.StatusCode(),
			Message:    "feed for " + community,
		}
	}

	body, err := io.ReadAll(resp.Body())
	if err != nil {
		return nil, coreerrors.WrapError(err, "read reddit feed")
	}

	feed, err := c.parser.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, coreerrors.WrapError(err, "parse reddit feed")
	}

	posts := make([]domain.SocialPost, 0, len(feed.Items))
	for _, item := range feed.Items {
		link := linkFromContent(item.Content)
		if link == "" {
			link = item.Link
		}

		var created int64
		if item.PublishedParsed != nil {
			created = item.PublishedParsed.Unix()
		} else if item.UpdatedParsed != nil {
			created = item.UpdatedParsed.Unix()
		}

		posts = append(posts, domain.SocialPost{
			ID:          strings.TrimPrefix(item.GUID, "t3_"),
			Title:       text.CleanTitle(item.Title),
			Link:        link,
			CreatedUnix: created,
			Community:   community,
		})
	}
	return posts, nil
}

// linkFromContent finds the post's target link in the entry HTML. The
// "[link]" anchor points at the submission; the thumbnail is a fallback.
func linkFromContent(content string) string {
	if content == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return ""
	}

	var link string
	doc.Find("a").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.TrimSpace(s.Text()) == "[link]" {
			link, _ = s.Attr("href")
			return false
		}
		return true
	})
	if link != "" {
		return link
	}

	if src, ok := doc.Find("img").First().Attr("src"); ok {
		return src
	}
	return ""
}
