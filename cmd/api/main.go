// ABOUTME: Main entry point for the MemeMe API server
// ABOUTME: Wires together all components and starts the HTTP server

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mememe-api/api"
	"mememe-api/api/handlers"
	"mememe-api/api/middleware"
	"mememe-api/core/cache"
	"mememe-api/core/interfaces"
	"mememe-api/core/ratelimit"
	"mememe-api/core/templates"
	"mememe-api/core/workers"
	"mememe-api/infrastructure/cache/memory"
	"mememe-api/infrastructure/cache/redis"
	stdhttp "mememe-api/infrastructure/http/standard"
	"mememe-api/infrastructure/logger/structured"
	"mememe-api/infrastructure/sources/imgflip"
	"mememe-api/infrastructure/sources/reddit"
	"mememe-api/infrastructure/storage/file"
	"mememe-api/pkg/config"
	"mememe-api/pkg/featureflags"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := structured.NewLogger(cfg.Log.Level)
	flags := featureflags.NewEnvManager("")
	logger.Info("Starting MemeMe API", map[string]interface{}{
		"port":             cfg.Server.Port,
		"refresh_schedule": cfg.Server.RefreshSchedule,
		"reddit_mode":      cfg.Sources.RedditMode,
		"communities":      len(cfg.Sources.Communities),
	})

	ctx := context.Background()

	// Redis is optional; without it every tier runs in-process
	var redisCache *redis.RedisCache
	if cfg.Cache.Redis.URL != "" {
		redisCache, err = redis.NewRedisCache(cfg.Cache.Redis, logger)
		if err != nil {
			logger.Error("Failed to create Redis cache, using in-process cache only", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			defer redisCache.Close()
		}
	}

	httpClient := stdhttp.NewClient(cfg.Sources.Timeout, logger)
	deps := interfaces.Dependencies{
		HTTPClient: httpClient,
		Logger:     logger,
	}
	var windowStore interfaces.SlidingWindowStore
	if redisCache != nil {
		deps.Cache = redisCache
		windowStore = redisCache
		logger.Info("Using Redis cache", map[string]interface{}{
			"available": redisCache.Available(ctx),
		})
	}

	cacheService := cache.NewService(deps, memory.NewMemoryCache(cfg.Cache.LRUSize), cache.Options{
		CaptionTTL: cfg.Cache.CaptionTTL,
		ImageTTL:   cfg.Cache.ImageTTL,
	})

	provider := imgflip.NewClient(cfg.Sources.ImgflipBaseURL, cfg.Sources.Timeout)
	defer provider.Close()

	var social interfaces.SocialSource
	switch cfg.Sources.RedditMode {
	case "feed":
		social = reddit.NewFeedClient(httpClient, cfg.Sources.RedditBaseURL)
	default:
		redditClient := reddit.NewClient(cfg.Sources.RedditBaseURL, cfg.Sources.Timeout, cfg.Sources.RedditRequestsPerSecond)
		defer redditClient.Close()
		social = redditClient
	}

	stores := []interfaces.CatalogStore{templates.NewCacheStore(cacheService, cfg.Templates.CacheTTL)}
	if flags.IsEnabled(ctx, featureflags.CatalogFileStore) {
		stores = append(stores, file.NewStore(cfg.Templates.CatalogFile))
	}

	catalogService := templates.NewService(deps, provider, social, stores, templates.Options{
		Communities:       cfg.Sources.Communities,
		Limit:             cfg.Templates.Limit,
		ProviderOnlyLimit: cfg.Templates.ProviderOnlyLimit,
		CacheTTL:          cfg.Templates.CacheTTL,
	})

	worker := workers.NewRefreshWorker(catalogService, logger, workers.WorkerConfig{
		Schedule: cfg.Server.RefreshSchedule,
	})

	if flags.IsEnabled(ctx, featureflags.WarmOnStartup) {
		if err := worker.RunOnce(ctx); err != nil {
			logger.Warn("Initial catalog build failed, serving on demand", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	if flags.IsEnabled(ctx, featureflags.ScheduledRefresh) {
		if err := worker.Start(); err != nil {
			log.Fatalf("Failed to start refresh worker: %v", err)
		}
	}

	apiConfig := api.APIConfig{Logger: logger}
	if flags.IsEnabled(ctx, featureflags.RateLimitEnabled) {
		apiConfig.RateLimiter = ratelimit.NewLimiter(windowStore, logger, cfg.RateLimit.Max, cfg.RateLimit.Window)
	}
	humaAPI, router := api.NewAPIWithMiddleware(apiConfig)

	handlers.NewHealthHandler().RegisterRoutes(humaAPI)
	handlers.NewTemplatesHandler(catalogService).RegisterRoutes(humaAPI)

	srv := &http.Server{
		Addr:        ":" + cfg.Server.Port,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// a cold catalog build fans out to every community
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP server starting", map[string]interface{}{
			"address":      srv.Addr,
			"slow_request": middleware.SlowRequestThreshold.String(),
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", map[string]interface{}{
				"error": err.Error(),
			})
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...", nil)

	if worker.Running() {
		if err := worker.Stop(); err != nil {
			logger.Warn("Refresh worker did not stop cleanly", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", map[string]interface{}{
			"error": err.Error(),
		})
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server stopped", nil)
}
