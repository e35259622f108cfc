// ABOUTME: Template provider adapter for the Imgflip get_memes endpoint
// ABOUTME: Decodes the flat template list used as the catalog's provider source

package imgflip

import (
	"context"
	"strings"
	"time"

	"mememe-api/core/domain"
	coreerrors "mememe-api/core/errors"
	"mememe-api/pkg/utils/text"

	"resty.dev/v3"
)

// DefaultBaseURL is the public Imgflip API
const DefaultBaseURL = "https://api.imgflip.com"

const apiName = "imgflip"

type memesResponse struct {
	Success      bool   `json:"success"`
	ErrorMessage string `json:"error_message"`
	Data         struct {
		Memes []meme `json:"memes"`
	} `json:"data"`
}

type meme struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	BoxCount int    `json:"box_count"`
	Captions int    `json:"captions"`
}

// Client lists templates from Imgflip
type Client struct {
	client *resty.Client
}

// NewClient creates an Imgflip client
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("User-Agent", "MemeMeAPI/1.0").
		SetRetryCount(2)

	return &Client{client: client}
}

// Close releases the underlying HTTP resources
func (c *Client) Close() error {
	return c.client.Close()
}

// ListTemplates fetches the provider's template list
func (c *Client) ListTemplates(ctx context.Context) ([]domain.ProviderTemplate, error) {
	var body memesResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&body).
		Get("/get_memes")
	if err != nil {
		return nil, coreerrors.WrapError(err, "imgflip request failed")
	}
	if resp.IsError() {
		return nil, &coreerrors.ExternalAPIError{
			API:        apiName,
			StatusCode: resp.StatusCode(),
			Message:    strings.TrimSpace(resp.String()),
		}
	}
	if !body.Success {
		return nil, &coreerrors.ExternalAPIError{
			API:        apiName,
			StatusCode: resp.StatusCode(),
			Message:    body.ErrorMessage,
		}
	}

	templates := make([]domain.ProviderTemplate, 0, len(body.Data.Memes))
	for _, m := range body.Data.Memes {
		if m.ID == "" {
			continue
		}
		templates = append(templates, domain.ProviderTemplate{
			ID:       m.ID,
			Name:     text.CleanTitle(m.Name),
			URL:      m.URL,
			Width:    m.Width,
			Height:   m.Height,
			BoxCount: m.BoxCount,
			Captions: m.Captions,
		})
	}
	return templates, nil
}
