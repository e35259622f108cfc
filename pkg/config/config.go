// ABOUTME: Configuration management for the application with environment variable support
// ABOUTME: Defines configuration structures for server, cache, rate limiting and template sources

package config

import (
	"fmt"
	"time"

	coreerrors "mememe-api/core/errors"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration
type Config struct {
	// Server contains HTTP server configuration
	Server ServerConfig

	// Log contains logger configuration
	Log LogConfig

	// Cache contains cache configuration
	Cache CacheConfig

	// RateLimit contains request rate limiting configuration
	RateLimit RateLimitConfig

	// Templates contains template catalog configuration
	Templates TemplatesConfig

	// Sources contains upstream template source configuration
	Sources SourcesConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	// Port is the HTTP server port
	Port string `env:"PORT" envDefault:"8000"`

	// RefreshSchedule is the crontab schedule for catalog refreshes
	RefreshSchedule string `env:"REFRESH_SCHEDULE" envDefault:"0 */6 * * *"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	// Level is the minimum log level (debug, info, warn, error)
	Level string `env:"LOG_LEVEL" envDefault:"info"`
}

// CacheConfig holds cache backend configuration
type CacheConfig struct {
	// Redis contains Redis-specific configuration; an empty URL means in-process only
	Redis RedisConfig

	// LRUSize bounds the in-process tier
	LRUSize int `env:"LRU_SIZE" envDefault:"500"`

	// CaptionTTL is how long generated captions stay cached
	CaptionTTL time.Duration `env:"CAPTION_CACHE_TTL" envDefault:"5m"`

	// ImageTTL is how long rendered image URLs stay cached
	ImageTTL time.Duration `env:"IMAGE_CACHE_TTL" envDefault:"24h"`
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	// URL is the Redis connection URL, e.g. redis://:password@localhost:6379/0
	URL string `env:"REDIS_URL"`

	// ProbeInterval is how often an unreachable Redis is re-checked
	ProbeInterval time.Duration `env:"REDIS_PROBE_INTERVAL" envDefault:"30s"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	// Max is the number of requests allowed per window
	Max int `env:"RATE_LIMIT_MAX" envDefault:"10"`

	// Window is the rate limit window length
	Window time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"60s"`
}

// TemplatesConfig holds template catalog configuration
type TemplatesConfig struct {
	// CacheTTL is how long a built catalog is served before it is considered stale
	CacheTTL time.Duration `env:"TEMPLATE_CACHE_TTL" envDefault:"6h"`

	// Limit caps the catalog size
	Limit int `env:"TEMPLATE_LIMIT" envDefault:"200"`

	// ProviderOnlyLimit caps how many unmatched provider templates are added
	ProviderOnlyLimit int `env:"PROVIDER_ONLY_LIMIT" envDefault:"50"`

	// CatalogFile is the on-disk fallback copy of the catalog
	CatalogFile string `env:"CATALOG_FILE" envDefault:"data/trending-templates.json"`
}

// SourcesConfig holds upstream source configuration
type SourcesConfig struct {
	// ImgflipBaseURL is the template provider API base URL
	ImgflipBaseURL string `env:"IMGFLIP_BASE_URL" envDefault:"https://api.imgflip.com"`

	// RedditBaseURL is the social aggregator base URL
	RedditBaseURL string `env:"REDDIT_BASE_URL" envDefault:"https://www.reddit.com"`

	// RedditMode selects the JSON listing API or the public RSS feeds
	RedditMode string `env:"REDDIT_MODE" envDefault:"json"`

	// RedditRequestsPerSecond paces community requests
	RedditRequestsPerSecond float64 `env:"REDDIT_RPS" envDefault:"2"`

	// Communities is the ordered list of meme communities to poll
	Communities []string `env:"MEME_COMMUNITIES" envSeparator:"," envDefault:"memes,dankmemes,MemeTemplatesOfficial,meirl,me_irl,wholesomememes,AdviceAnimals,memetemplates"`

	// Timeout bounds each upstream request
	Timeout time.Duration `env:"SOURCE_TIMEOUT" envDefault:"10s"`
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func invalid(field, message string) error {
	return &coreerrors.ValidationError{Field: field, Message: message}
}

// Validate checks if the configuration is valid. Failures are ValidationErrors
// naming the offending environment variable.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return invalid("PORT", "port cannot be empty")
	}

	if c.RateLimit.Max < 1 {
		return invalid("RATE_LIMIT_MAX", "rate limit max must be at least 1")
	}

	if c.RateLimit.Window < time.Second {
		return invalid("RATE_LIMIT_WINDOW", "rate limit window must be at least 1 second")
	}

	if c.Templates.CacheTTL <= 0 {
		return invalid("TEMPLATE_CACHE_TTL", "template cache ttl must be positive")
	}

	if c.Templates.Limit < 1 {
		return invalid("TEMPLATE_LIMIT", "template limit must be at least 1")
	}

	if c.Templates.CatalogFile == "" {
		return invalid("CATALOG_FILE", "catalog file cannot be empty")
	}

	if c.Sources.RedditMode != "json" && c.Sources.RedditMode != "feed" {
		return invalid("REDDIT_MODE", "reddit mode must be 'json' or 'feed'")
	}

	if len(c.Sources.Communities) == 0 {
		return invalid("MEME_COMMUNITIES", "at least one meme community is required")
	}

	return nil
}
