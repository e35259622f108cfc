// ABOUTME: Template catalog service: refreshes from all sources, ranks and persists the catalog
// ABOUTME: Reads walk the catalog stores in order; refresh failures degrade to a provider-only catalog

package templates

import (
	"context"
	"fmt"
	"sync"
	"time"

	"mememe-api/core/domain"
	coreerrors "mememe-api/core/errors"
	"mememe-api/core/interfaces"
)

const (
	// DefaultLimit is the number of templates kept in a catalog
	DefaultLimit = 200

	// DefaultProviderOnlyLimit caps provider templates added without a social signal
	DefaultProviderOnlyLimit = 50

	// DefaultCacheTTL is how long a stored catalog is served
	DefaultCacheTTL = 6 * time.Hour

	// FallbackLimit is the size of the provider-only catalog served when a refresh fails
	FallbackLimit = 100

	// DegradedTTL is how long a failed refresh's outcome answers cold reads
	// before the sources are tried again
	DegradedTTL = time.Minute
)

// Options configures the catalog service
type Options struct {
	Communities       []string
	Limit             int
	ProviderOnlyLimit int
	CacheTTL          time.Duration
}

// Service owns the ranked template catalog
type Service struct {
	provider interfaces.TemplateProvider
	social   interfaces.SocialSource
	stores   []interfaces.CatalogStore
	logger   interfaces.Logger
	opts     Options
	now      func() time.Time

	// serializes refreshes triggered by cold reads
	refreshMu sync.Mutex

	mu           sync.RWMutex
	lastProvider []domain.ProviderTemplate

	// last outcome of a refresh that could not reach the provider; never saved
	degraded *degradedResult
}

type degradedResult struct {
	catalog *domain.TemplateCatalog
	err     error
	at      time.Time
}

// NewService creates a catalog service. Stores are read in the given order.
func NewService(deps interfaces.Dependencies, provider interfaces.TemplateProvider, social interfaces.SocialSource, stores []interfaces.CatalogStore, opts Options) *Service {
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.ProviderOnlyLimit <= 0 {
		opts.ProviderOnlyLimit = DefaultProviderOnlyLimit
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}

	return &Service{
		provider: provider,
		social:   social,
		stores:   stores,
		logger:   deps.Logger,
		opts:     opts,
		now:      time.Now,
	}
}

// WithClock replaces the time source
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// sourceData is everything one refresh fetched
type sourceData struct {
	provider    []domain.ProviderTemplate
	providerErr error
	posts       []domain.SocialPost
}

// fetch queries the provider and every community concurrently. A failing
// community contributes no posts. Posts keep the configured community order.
func (s *Service) fetch(ctx context.Context) sourceData {
	var (
		wg     sync.WaitGroup
		data   sourceData
		perCom = make([][]domain.SocialPost, len(s.opts.Communities))
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		data.provider, data.providerErr = s.provider.ListTemplates(ctx)
	}()

	if s.social != nil {
		for i, community := range s.opts.Communities {
			wg.Add(1)
			go func(i int, community string) {
				defer wg.Done()
				posts, err := s.social.TrendingPosts(ctx, community)
				if err != nil {
					s.warn("Community feed failed, skipping", map[string]interface{}{
						"community": community,
						"error":     err.Error(),
					})
					return
				}
				perCom[i] = posts
			}(i, community)
		}
	}

	wg.Wait()

	for _, posts := range perCom {
		data.posts = append(data.posts, posts...)
	}
	return data
}

// Refresh rebuilds the catalog from the sources. When the provider is down it
// returns a fallback catalog built from the last provider list, or else the
// newest stored catalog regardless of age. It fails only when neither exists.
func (s *Service) Refresh(ctx context.Context) (*domain.TemplateCatalog, error) {
	catalog, _, err := s.refresh(ctx)
	return catalog, err
}

func (s *Service) refresh(ctx context.Context) (*domain.TemplateCatalog, bool, error) {
	start := s.now()
	data := s.fetch(ctx)

	if data.providerErr != nil {
		s.warn("Template provider failed, serving fallback catalog", map[string]interface{}{
			"error": data.providerErr.Error(),
		})
		catalog, err := s.fallbackCatalog(ctx, data.providerErr)
		return catalog, true, err
	}

	s.mu.Lock()
	s.lastProvider = data.provider
	s.mu.Unlock()

	now := s.now()
	result := Match(data.posts, data.provider, now)
	providerOnly := ProviderOnly(result.Unclaimed, s.opts.ProviderOnlyLimit, now)
	catalog := domain.NewTemplateCatalog(Merge(s.opts.Limit, result.Matched, result.SocialOnly, providerOnly), now)

	if s.logger != nil {
		s.logger.Info("Template catalog refreshed", map[string]interface{}{
			"templates":     catalog.TotalCount,
			"matched_both":  catalog.SourceCounts.MatchedBoth,
			"social_only":   catalog.SourceCounts.SocialOnly,
			"provider_only": catalog.SourceCounts.ProviderOnly,
			"posts":         len(data.posts),
			"duration_ms":   s.now().Sub(start).Milliseconds(),
		})
	}
	return catalog, false, nil
}

// fallbackCatalog ranks the most-captioned templates from the last provider list
func (s *Service) fallbackCatalog(ctx context.Context, cause error) (*domain.TemplateCatalog, error) {
	s.mu.RLock()
	last := s.lastProvider
	s.mu.RUnlock()

	if last != nil {
		now := s.now()
		return domain.NewTemplateCatalog(Merge(FallbackLimit, ProviderOnly(last, FallbackLimit, now)), now), nil
	}

	if stale := s.staleCatalog(ctx); stale != nil {
		s.warn("Serving stale catalog", map[string]interface{}{
			"age_seconds": int64(stale.Age(s.now()).Seconds()),
		})
		return stale, nil
	}
	return nil, fmt.Errorf("%w: %v", coreerrors.ErrNoCatalog, cause)
}

// staleCatalog returns the newest catalog held by any store, ignoring the TTL
func (s *Service) staleCatalog(ctx context.Context) *domain.TemplateCatalog {
	var newest *domain.TemplateCatalog
	for _, store := range s.stores {
		catalog, err := store.Load(ctx)
		if err != nil || catalog == nil {
			continue
		}
		if newest == nil || catalog.LastUpdated.After(newest.LastUpdated) {
			newest = catalog
		}
	}
	return newest
}

// SaveCachedTemplates writes the catalog to every store concurrently. Store
// failures are logged and do not affect the others.
func (s *Service) SaveCachedTemplates(ctx context.Context, catalog *domain.TemplateCatalog) {
	if catalog == nil {
		return
	}

	var wg sync.WaitGroup
	for _, store := range s.stores {
		wg.Add(1)
		go func(store interfaces.CatalogStore) {
			defer wg.Done()
			if err := store.Save(ctx, catalog); err != nil {
				s.warn("Failed to save catalog", map[string]interface{}{
					"store": store.Name(),
					"error": err.Error(),
				})
			}
		}(store)
	}
	wg.Wait()
}

// GetCachedTemplates returns the first stored catalog no older than the cache TTL
func (s *Service) GetCachedTemplates(ctx context.Context) (*domain.TemplateCatalog, bool) {
	now := s.now()
	for _, store := range s.stores {
		catalog, err := store.Load(ctx)
		if err != nil {
			if !coreerrors.IsCacheMiss(err) {
				s.warn("Failed to load catalog", map[string]interface{}{
					"store": store.Name(),
					"error": err.Error(),
				})
			}
			continue
		}
		if catalog.IsFresh(now, s.opts.CacheTTL) {
			return catalog, true
		}
	}
	return nil, false
}

// IsCacheValid reports whether any store holds a fresh catalog
func (s *Service) IsCacheValid(ctx context.Context) bool {
	_, ok := s.GetCachedTemplates(ctx)
	return ok
}

// GetCacheStats describes the cached catalog without modifying anything
func (s *Service) GetCacheStats(ctx context.Context) domain.CacheStats {
	catalog, ok := s.GetCachedTemplates(ctx)
	if !ok {
		return domain.CacheStats{}
	}

	lastUpdated := catalog.LastUpdated
	return domain.CacheStats{
		Cached:      true,
		Age:         catalog.Age(s.now()),
		Templates:   len(catalog.Templates),
		Sources:     catalog.SourceCounts,
		LastUpdated: &lastUpdated,
	}
}

// ClearCache removes the catalog from every store
func (s *Service) ClearCache(ctx context.Context) {
	s.mu.Lock()
	s.degraded = nil
	s.mu.Unlock()

	for _, store := range s.stores {
		if err := store.Clear(ctx); err != nil {
			s.warn("Failed to clear catalog", map[string]interface{}{
				"store": store.Name(),
				"error": err.Error(),
			})
		}
	}
}

// Rebuild refreshes the catalog and saves it. Fallback catalogs are returned
// but not saved; cold reads share them for DegradedTTL before retrying the sources.
func (s *Service) Rebuild(ctx context.Context) (*domain.TemplateCatalog, error) {
	catalog, degraded, err := s.refresh(ctx)

	s.mu.Lock()
	// a caller that went away says nothing about the sources
	if degraded && ctx.Err() == nil {
		s.degraded = &degradedResult{catalog: catalog, err: err, at: s.now()}
	} else {
		s.degraded = nil
	}
	s.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if !degraded {
		s.SaveCachedTemplates(ctx, catalog)
	}
	return catalog, nil
}

// recentDegraded returns the outcome of a degraded refresh younger than DegradedTTL
func (s *Service) recentDegraded() (*degradedResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.degraded == nil || s.now().Sub(s.degraded.at) >= DegradedTTL {
		return nil, false
	}
	return s.degraded, true
}

// Templates returns the cached catalog, rebuilding it when no store has a fresh one
func (s *Service) Templates(ctx context.Context) (*domain.TemplateCatalog, error) {
	if catalog, ok := s.GetCachedTemplates(ctx); ok {
		return catalog, nil
	}

	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	// another caller may have rebuilt while we waited
	if catalog, ok := s.GetCachedTemplates(ctx); ok {
		return catalog, nil
	}
	// or found the sources down moments ago
	if result, ok := s.recentDegraded(); ok {
		return result.catalog, result.err
	}
	return s.Rebuild(ctx)
}

func (s *Service) warn(msg string, fields map[string]interface{}) {
	if s.logger != nil {
		s.logger.Warn(msg, fields)
	}
}
