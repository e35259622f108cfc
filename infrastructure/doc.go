// Package infrastructure provides concrete implementations of the interfaces
// defined in the core package.
//
// The infrastructure package is organized by technical concern:
//
// - cache/memory: Bounded in-process LRU tier
// - cache/redis: Redis tier, also used as the rate limiter's sliding window store
// - http/standard: Standard library HTTP client with retry logic
// - logger/structured: JSON logger built on logrus
// - sources/imgflip: Template provider client
// - sources/reddit: Community listing client (JSON API or RSS feeds)
// - storage/file: On-disk copy of the template catalog
//
// # Cache Tiers
//
//	local := memory.NewMemoryCache(500)
//	remote, err := redis.NewRedisCache(config.RedisConfig{URL: "redis://localhost:6379/0"}, logger)
//
// The Redis tier connects lazily and reports itself unavailable after a
// failure until the probe interval has passed.
//
// # Sources
//
//	provider := imgflip.NewClient(imgflip.DefaultBaseURL, 10*time.Second)
//	defer provider.Close()
//
//	social := reddit.NewClient(reddit.DefaultBaseURL, 10*time.Second, 2)
//	posts, err := social.TrendingPosts(ctx, "memes")
package infrastructure
