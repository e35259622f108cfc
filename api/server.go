// ABOUTME: Huma API server configuration and setup
// ABOUTME: Provides OpenAPI documentation, CORS, request logging and per-client rate limiting

package api

import (
	"net/http"
	"strings"

	"mememe-api/api/middleware"
	"mememe-api/core/interfaces"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
)

// APIConfig holds configuration for the API
type APIConfig struct {
	Logger interfaces.Logger

	// RateLimiter is applied to every route except health and docs; nil disables limiting
	RateLimiter middleware.RateChecker
}

// unlimitedPrefixes are never rate limited
var unlimitedPrefixes = []string{"/healthz", "/docs", "/openapi", "/schemas"}

// NewAPI creates and configures a new Huma API instance without middleware
func NewAPI() (huma.API, chi.Router) {
	return NewAPIWithMiddleware(APIConfig{})
}

// NewAPIWithMiddleware creates a new API with middleware configured
func NewAPIWithMiddleware(cfg APIConfig) (huma.API, chi.Router) {
	router := chi.NewRouter()

	// CORS must run first so preflight requests are answered before limiting
	router.Use(cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "X-Request-ID"},
		MaxAge:         300,
	}).Handler)

	if cfg.Logger != nil {
		router.Use(middleware.RequestLoggingMiddleware(cfg.Logger))
	}

	if cfg.RateLimiter != nil {
		limit := middleware.RateLimitMiddleware(cfg.RateLimiter)
		router.Use(func(next http.Handler) http.Handler {
			limited := limit(next)
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if isUnlimited(r.URL.Path) {
					next.ServeHTTP(w, r)
					return
				}
				limited.ServeHTTP(w, r)
			})
		})
	}

	config := huma.DefaultConfig("MemeMe API", "1.0.0")
	config.Info.Description = "Trending meme template catalog built from the template provider and meme communities"

	api := humachi.New(router, config)

	return api, router
}

func isUnlimited(path string) bool {
	for _, prefix := range unlimitedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
