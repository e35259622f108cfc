package templates

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"mememe-api/core/cache"
	"mememe-api/core/domain"
	coreerrors "mememe-api/core/errors"
	"mememe-api/core/interfaces"
	"mememe-api/infrastructure/cache/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCommunities = []string{"memes", "dankmemes", "memetemplates"}

func fixtureProvider() []domain.ProviderTemplate {
	return []domain.ProviderTemplate{
		{ID: "181913649", Name: "Drake Hotline Bling", URL: "https://i.imgflip.com/30b1gx.jpg", BoxCount: 2, Captions: 1_500_000},
		{ID: "93895088", Name: "Expanding Brain", URL: "https://i.imgflip.com/1jwhww.jpg", BoxCount: 4, Captions: 600_000},
		{ID: "87743020", Name: "Two Buttons", URL: "https://i.imgflip.com/1g8my4.jpg", BoxCount: 3, Captions: 900_000},
		{ID: "112126428", Name: "Distracted Boyfriend", URL: "https://i.imgflip.com/1ur9b0.jpg", BoxCount: 3, Captions: 1_200_000},
	}
}

func fixturePosts(community string) []domain.SocialPost {
	switch community {
	case "memes":
		return []domain.SocialPost{
			{ID: "m1", Title: "Expanding Brain template", Link: "https://i.redd.it/m1.png", Upvotes: 1200, CreatedUnix: hoursAgo(2), Community: community},
			{ID: "m2", Title: "Brand new format [OC]", Link: "https://i.redd.it/m2.png", Upvotes: 800, CreatedUnix: hoursAgo(10), Community: community},
		}
	case "dankmemes":
		return []domain.SocialPost{
			{ID: "d1", Title: "two buttons but it's finals week", Link: "https://i.imgflip.com/d1.jpg", Upvotes: 300, CreatedUnix: hoursAgo(30), Community: community},
			{ID: "d2", Title: "tiny format", Link: "https://i.redd.it/d2.png", Upvotes: 400, Community: community},
		}
	}
	return nil
}

type fixture struct {
	service  *Service
	provider *mockProvider
	social   *mockSocial
	stores   []*mockStore
	logger   *recordingLogger
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		provider: &mockProvider{listFunc: func(ctx context.Context) ([]domain.ProviderTemplate, error) {
			return fixtureProvider(), nil
		}},
		social: &mockSocial{trendingFunc: func(ctx context.Context, community string) ([]domain.SocialPost, error) {
			return fixturePosts(community), nil
		}},
		stores: []*mockStore{{name: "cache"}, {name: "file"}},
		logger: &recordingLogger{},
		now:    testNow,
	}

	stores := []interfaces.CatalogStore{f.stores[0], f.stores[1]}
	f.service = NewService(interfaces.Dependencies{Logger: f.logger}, f.provider, f.social, stores, Options{
		Communities: testCommunities,
	}).WithClock(func() time.Time { return f.now })
	return f
}

func ids(catalog *domain.TemplateCatalog) []string {
	out := make([]string, 0, len(catalog.Templates))
	for _, c := range catalog.Templates {
		out = append(out, c.ID)
	}
	return out
}

func TestRefresh_BuildsRankedCatalog(t *testing.T) {
	f := newFixture(t)

	catalog, err := f.service.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, testNow, catalog.LastUpdated)
	assert.Equal(t, 5, catalog.TotalCount)
	assert.Equal(t, domain.SourceCounts{ProviderOnly: 2, SocialOnly: 1, MatchedBoth: 2}, catalog.SourceCounts)

	// Expanding Brain: fresh, capped popularity, four boxes
	assert.Equal(t, "93895088", catalog.Templates[0].ID)
	assert.Equal(t, domain.SourceMatchedBoth, catalog.Templates[0].Source)

	for i := 1; i < len(catalog.Templates); i++ {
		assert.GreaterOrEqual(t, catalog.Templates[i-1].CompositeScore, catalog.Templates[i].CompositeScore)
	}
}

func TestRefresh_IdempotentShape(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.service.Refresh(ctx)
	require.NoError(t, err)
	second, err := f.service.Refresh(ctx)
	require.NoError(t, err)

	assert.Equal(t, ids(first), ids(second))
	assert.Equal(t, first.SourceCounts, second.SourceCounts)
}

func TestRefresh_NoDuplicateIDs(t *testing.T) {
	f := newFixture(t)
	// the same post crossposted in two communities, plus a provider ID collision
	f.social.trendingFunc = func(ctx context.Context, community string) ([]domain.SocialPost, error) {
		return []domain.SocialPost{
			{ID: "x", Title: "Expanding Brain template", Link: "https://i.redd.it/x.png", Upvotes: 900, Community: "memes"},
			{ID: "y", Title: "Fresh format", Link: "https://i.redd.it/y.png", Upvotes: 900, Community: "memes"},
		}, nil
	}

	catalog, err := f.service.Refresh(context.Background())
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, c := range catalog.Templates {
		assert.False(t, seen[c.ID], "duplicate id %s", c.ID)
		seen[c.ID] = true
	}
}

func TestRefresh_TruncatesToLimit(t *testing.T) {
	f := newFixture(t)
	f.service.opts.Limit = 3
	f.provider.listFunc = func(ctx context.Context) ([]domain.ProviderTemplate, error) {
		var list []domain.ProviderTemplate
		for i := 0; i < 80; i++ {
			list = append(list, domain.ProviderTemplate{ID: fmt.Sprint(i), Name: fmt.Sprintf("zz%d", i), Captions: i})
		}
		return list, nil
	}

	catalog, err := f.service.Refresh(context.Background())
	require.NoError(t, err)
	assert.Len(t, catalog.Templates, 3)
	assert.Equal(t, 3, catalog.TotalCount)
}

func TestRefresh_ProviderOnlyCapped(t *testing.T) {
	f := newFixture(t)
	f.social.trendingFunc = nil
	f.provider.listFunc = func(ctx context.Context) ([]domain.ProviderTemplate, error) {
		var list []domain.ProviderTemplate
		for i := 0; i < 80; i++ {
			list = append(list, domain.ProviderTemplate{ID: fmt.Sprint(i), Name: fmt.Sprintf("zz%d", i), Captions: i})
		}
		return list, nil
	}

	catalog, err := f.service.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultProviderOnlyLimit, catalog.SourceCounts.ProviderOnly)
	assert.Equal(t, "79", catalog.Templates[0].ID)
}

func TestRefresh_CommunityFailureContributesNothing(t *testing.T) {
	f := newFixture(t)
	f.social.trendingFunc = func(ctx context.Context, community string) ([]domain.SocialPost, error) {
		if community == "memes" {
			return nil, errors.New("timeout")
		}
		return fixturePosts(community), nil
	}

	catalog, err := f.service.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, catalog.SourceCounts.MatchedBoth, "only the dankmemes match remains")
	assert.Zero(t, catalog.SourceCounts.SocialOnly)
	assert.Contains(t, f.logger.warns, "Community feed failed, skipping")
}

func TestRefresh_ProviderDownWithoutHistory(t *testing.T) {
	f := newFixture(t)
	f.provider.listFunc = func(ctx context.Context) ([]domain.ProviderTemplate, error) {
		return nil, &coreerrors.ExternalAPIError{API: "imgflip", StatusCode: 503, Message: "down"}
	}

	catalog, err := f.service.Refresh(context.Background())
	assert.Nil(t, catalog)
	assert.ErrorIs(t, err, coreerrors.ErrNoCatalog)
}

func TestRefresh_ProviderDownServesStaleStoredCatalog(t *testing.T) {
	f := newFixture(t)
	f.provider.listFunc = func(ctx context.Context) ([]domain.ProviderTemplate, error) {
		return nil, errors.New("connection refused")
	}
	stale := domain.NewTemplateCatalog([]domain.TemplateCandidate{
		{ID: "61579", Name: "One Does Not Simply", CompositeScore: 0.5, Source: domain.SourceProviderOnly},
	}, testNow.Add(-48*time.Hour))
	f.stores[1].catalog = stale

	_, ok := f.service.GetCachedTemplates(context.Background())
	require.False(t, ok, "a two day old catalog is not fresh")

	catalog, err := f.service.Templates(context.Background())
	require.NoError(t, err)
	assert.Same(t, stale, catalog)
	assert.Contains(t, f.logger.warns, "Serving stale catalog")
	assert.Zero(t, f.stores[0].saves, "degraded catalogs are not saved")
}

func TestRefresh_ProviderDownFallsBackToLastList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Refresh(ctx)
	require.NoError(t, err)

	f.provider.listFunc = func(ctx context.Context) ([]domain.ProviderTemplate, error) {
		return nil, errors.New("connection refused")
	}

	catalog, err := f.service.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, catalog.TotalCount)
	assert.Equal(t, domain.SourceCounts{ProviderOnly: 4}, catalog.SourceCounts)
	for _, c := range catalog.Templates {
		assert.Equal(t, domain.SourceProviderOnly, c.Source)
	}
}

func TestGetCachedTemplates_ColdCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	catalog, ok := f.service.GetCachedTemplates(ctx)
	assert.False(t, ok)
	assert.Nil(t, catalog)
	assert.False(t, f.service.IsCacheValid(ctx))

	fresh, err := f.service.Refresh(ctx)
	require.NoError(t, err)
	f.service.SaveCachedTemplates(ctx, fresh)

	cached, ok := f.service.GetCachedTemplates(ctx)
	require.True(t, ok)
	assert.Equal(t, ids(fresh), ids(cached))
	assert.True(t, f.service.IsCacheValid(ctx))
}

func TestGetCachedTemplates_StoreOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	stale := domain.NewTemplateCatalog([]domain.TemplateCandidate{{ID: "old"}}, testNow.Add(-7*time.Hour))
	fresh := domain.NewTemplateCatalog([]domain.TemplateCandidate{{ID: "disk"}}, testNow.Add(-time.Hour))

	// cache tier holds an expired catalog, the file store a fresh one
	f.stores[0].catalog = stale
	f.stores[1].catalog = fresh

	catalog, ok := f.service.GetCachedTemplates(ctx)
	require.True(t, ok)
	assert.Equal(t, []string{"disk"}, ids(catalog))

	// a failing first store is skipped
	f.stores[0].loadErr = errors.New("boom")
	catalog, ok = f.service.GetCachedTemplates(ctx)
	require.True(t, ok)
	assert.Equal(t, []string{"disk"}, ids(catalog))

	f.now = testNow.Add(6 * time.Hour)
	_, ok = f.service.GetCachedTemplates(ctx)
	assert.False(t, ok)
}

func TestSaveCachedTemplates_BestEffort(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.stores[0].saveErr = errors.New("redis down")

	catalog := domain.NewTemplateCatalog([]domain.TemplateCandidate{{ID: "a"}}, testNow)
	f.service.SaveCachedTemplates(ctx, catalog)

	assert.Equal(t, 1, f.stores[0].saves)
	assert.Equal(t, 1, f.stores[1].saves)
	assert.Same(t, catalog, f.stores[1].catalog)
	assert.Contains(t, f.logger.warns, "Failed to save catalog")
}

func TestGetCacheStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.Equal(t, domain.CacheStats{}, f.service.GetCacheStats(ctx))

	_, err := f.service.Rebuild(ctx)
	require.NoError(t, err)
	f.now = testNow.Add(90 * time.Minute)

	stats := f.service.GetCacheStats(ctx)
	assert.True(t, stats.Cached)
	assert.Equal(t, 90*time.Minute, stats.Age)
	assert.Equal(t, 5, stats.Templates)
	assert.Equal(t, domain.SourceCounts{ProviderOnly: 2, SocialOnly: 1, MatchedBoth: 2}, stats.Sources)
	require.NotNil(t, stats.LastUpdated)
	assert.Equal(t, testNow, *stats.LastUpdated)
}

func TestClearCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Rebuild(ctx)
	require.NoError(t, err)
	require.True(t, f.service.IsCacheValid(ctx))

	f.stores[1].clearFunc = func(ctx context.Context) error { return errors.New("permission denied") }
	f.service.ClearCache(ctx)

	assert.False(t, f.service.IsCacheValid(ctx))
	assert.Contains(t, f.logger.warns, "Failed to clear catalog")
}

func TestRebuild_DoesNotSaveFallbackCatalog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Refresh(ctx)
	require.NoError(t, err)
	f.provider.listFunc = func(ctx context.Context) ([]domain.ProviderTemplate, error) {
		return nil, errors.New("down")
	}

	catalog, err := f.service.Rebuild(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, catalog.Templates)
	assert.Zero(t, f.stores[0].saves)
	assert.Zero(t, f.stores[1].saves)
}

func TestTemplates_RefreshesOnlyWhenCold(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var calls int32
	list := f.provider.listFunc
	f.provider.listFunc = func(ctx context.Context) ([]domain.ProviderTemplate, error) {
		atomic.AddInt32(&calls, 1)
		return list(ctx)
	}

	first, err := f.service.Templates(ctx)
	require.NoError(t, err)
	second, err := f.service.Templates(ctx)
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, ids(first), ids(second))
}

func TestTemplates_ConcurrentColdReadsDuringOutageShareOneRefresh(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Templates(ctx)
	require.NoError(t, err)

	var calls int32
	f.provider.listFunc = func(ctx context.Context) ([]domain.ProviderTemplate, error) {
		atomic.AddInt32(&calls, 1)
		time.Sleep(20 * time.Millisecond)
		return nil, errors.New("connection refused")
	}
	f.now = f.now.Add(DefaultCacheTTL + time.Hour)

	const readers = 10
	var wg sync.WaitGroup
	results := make([]*domain.TemplateCatalog, readers)
	errs := make([]error, readers)
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.service.Templates(ctx)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for i := 0; i < readers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, domain.SourceCounts{ProviderOnly: 4}, results[i].SourceCounts)
	}
	assert.Equal(t, 1, f.stores[0].saves, "only the initial catalog was saved")

	f.now = f.now.Add(DegradedTTL)
	_, err = f.service.Templates(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls), "sources are retried once the degraded result ages out")
}

func TestTemplates_OutageWithNothingStoredIsNotRetriedImmediately(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var calls int32
	f.provider.listFunc = func(ctx context.Context) ([]domain.ProviderTemplate, error) {
		atomic.AddInt32(&calls, 1)
		return nil, errors.New("connection refused")
	}

	_, err := f.service.Templates(ctx)
	assert.ErrorIs(t, err, coreerrors.ErrNoCatalog)
	_, err = f.service.Templates(ctx)
	assert.ErrorIs(t, err, coreerrors.ErrNoCatalog)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	// clearing the cache forgets the degraded outcome
	f.service.ClearCache(ctx)
	_, err = f.service.Templates(ctx)
	assert.ErrorIs(t, err, coreerrors.ErrNoCatalog)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestCacheStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := cache.NewService(interfaces.Dependencies{}, memory.NewMemoryCache(10), cache.Options{})
	store := NewCacheStore(svc, time.Hour)

	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, coreerrors.ErrCacheMiss)

	catalog := domain.NewTemplateCatalog([]domain.TemplateCandidate{{ID: "a", Source: domain.SourceSocialOnly}}, testNow)
	require.NoError(t, store.Save(ctx, catalog))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, catalog.TotalCount, loaded.TotalCount)
	assert.Equal(t, catalog.SourceCounts, loaded.SourceCounts)
	assert.True(t, catalog.LastUpdated.Equal(loaded.LastUpdated))

	require.NoError(t, store.Clear(ctx))
	_, err = store.Load(ctx)
	assert.ErrorIs(t, err, coreerrors.ErrCacheMiss)
}
