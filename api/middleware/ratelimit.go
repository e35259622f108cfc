// ABOUTME: Rate limiting middleware for API endpoints
// ABOUTME: Identifies callers by forwarded IP and reports the limiter decision in response headers

package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"

	"mememe-api/core/domain"
)

// AnonymousIdentity is used when no client address can be determined
const AnonymousIdentity = "anonymous"

// RateChecker decides whether a request from identity may proceed
type RateChecker interface {
	Check(ctx context.Context, identity string) domain.RateLimitResult
}

// ExtractIP gets the client IP from the request. The first X-Forwarded-For entry
// wins, then X-Real-IP, then the host part of RemoteAddr.
func ExtractIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}

	if r.RemoteAddr != "" {
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
			return host
		}
		return r.RemoteAddr
	}

	return AnonymousIdentity
}

// Apply checks the limiter for the request's caller and writes the rate limit
// headers. On rejection it writes a 429 response and returns false.
func Apply(limiter RateChecker, w http.ResponseWriter, r *http.Request) bool {
	result := limiter.Check(r.Context(), ExtractIP(r))

	header := w.Header()
	header.Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	header.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	header.Set("X-RateLimit-Reset", strconv.FormatInt(result.Reset, 10))

	if result.Success {
		return true
	}

	header.Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = w.Write([]byte(`{"error":"rate_limit_exceeded"}`))
	return false
}

// RateLimitMiddleware creates a middleware that enforces rate limits
func RateLimitMiddleware(limiter RateChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !Apply(limiter, w, r) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
