// ABOUTME: Retrying HTTP client used for feed downloads from the social source
// ABOUTME: Retries network errors and 5xx responses with exponential backoff

package standard

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"mememe-api/core/interfaces"
)

const (
	// DefaultMaxRetries is the number of attempts per request
	DefaultMaxRetries = 3

	// UserAgent identifies the service to upstream sites
	UserAgent = "MemeMeAPI/1.0"

	baseBackoff = 100 * time.Millisecond
)

// Client implements the HTTPClient interface on net/http
type Client struct {
	client     *http.Client
	logger     interfaces.Logger
	maxRetries int
}

// NewClient creates a client with the given per-attempt timeout. logger may be nil.
func NewClient(timeout time.Duration, logger interfaces.Logger) *Client {
	return &Client{
		client:     &http.Client{Timeout: timeout},
		logger:     logger,
		maxRetries: DefaultMaxRetries,
	}
}

// Get performs an HTTP GET request. 4xx responses are returned as-is; the caller
// decides what a non-200 status means.
func (c *Client) Get(ctx context.Context, url string) (interfaces.Response, error) {
	var lastErr error

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			// 100ms, 200ms, 400ms...
			backoff := baseBackoff << (attempt - 1)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", UserAgent)

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			c.retrying(url, attempt, err)
			continue
		}

		if resp.StatusCode < http.StatusInternalServerError {
			return &response{
				statusCode: resp.StatusCode,
				body:       resp.Body,
				headers:    resp.Header,
			}, nil
		}

		resp.Body.Close()
		lastErr = fmt.Errorf("server returned %d", resp.StatusCode)
		c.retrying(url, attempt, lastErr)
	}

	return nil, fmt.Errorf("GET %s failed after %d attempts: %w", url, c.maxRetries, lastErr)
}

func (c *Client) retrying(url string, attempt int, err error) {
	if c.logger == nil {
		return
	}
	c.logger.Debug("HTTP request attempt failed", map[string]interface{}{
		"url":     url,
		"attempt": attempt + 1,
		"error":   err.Error(),
	})
}

// response implements the Response interface
type response struct {
	statusCode int
	body       io.ReadCloser
	headers    http.Header
}

// StatusCode returns the HTTP status code
func (r *response) StatusCode() int {
	return r.statusCode
}

// Body returns the response body
func (r *response) Body() io.ReadCloser {
	return r.body
}

// Header returns the value of the specified header
func (r *response) Header(key string) string {
	return r.headers.Get(key)
}
