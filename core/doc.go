// Package core contains the business logic for the MemeMe API.
// It is framework-agnostic: HTTP, Redis, the filesystem and the upstream
// sources are reached only through the contracts in core/interfaces.
//
// The core package is organized into several sub-packages:
//
// - domain: Template candidates, catalogs, social posts and rate limit results
// - cache: Two-tier key-value cache and its key scheme
// - ratelimit: Per-identity request limiter with a distributed sliding window
// - scoring: Freshness and composite scores for template candidates
// - templates: Matching, merging and the catalog service
// - workers: Scheduled catalog rebuilds
// - errors: Sentinel and typed errors shared across packages
// - interfaces: Contracts for external dependencies (cache tiers, HTTP, logger, sources, stores)
//
// # Usage Example
//
//	deps := interfaces.Dependencies{
//	    Cache:  redisTier, // optional
//	    Logger: logger,
//	}
//
//	cacheService := cache.NewService(deps, memory.NewMemoryCache(500), cache.Options{})
//	stores := []interfaces.CatalogStore{templates.NewCacheStore(cacheService, 6*time.Hour)}
//
//	service := templates.NewService(deps, provider, social, stores, templates.Options{
//	    Communities: []string{"memes", "dankmemes"},
//	})
//
//	catalog, err := service.Templates(ctx)
package core
