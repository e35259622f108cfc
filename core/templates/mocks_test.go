package templates

import (
	"context"
	"sync"

	"mememe-api/core/domain"
	coreerrors "mememe-api/core/errors"
)

// mockProvider is a mock implementation of the TemplateProvider interface
type mockProvider struct {
	listFunc func(ctx context.Context) ([]domain.ProviderTemplate, error)
}

func (m *mockProvider) ListTemplates(ctx context.Context) ([]domain.ProviderTemplate, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return nil, nil
}

// mockSocial is a mock implementation of the SocialSource interface
type mockSocial struct {
	trendingFunc func(ctx context.Context, community string) ([]domain.SocialPost, error)
}

func (m *mockSocial) TrendingPosts(ctx context.Context, community string) ([]domain.SocialPost, error) {
	if m.trendingFunc != nil {
		return m.trendingFunc(ctx, community)
	}
	return nil, nil
}

// mockStore is an in-memory CatalogStore with optional failure hooks
type mockStore struct {
	name      string
	mu        sync.Mutex
	catalog   *domain.TemplateCatalog
	saves     int
	loadErr   error
	saveErr   error
	clearFunc func(ctx context.Context) error
}

func (m *mockStore) Name() string { return m.name }

func (m *mockStore) Load(ctx context.Context) (*domain.TemplateCatalog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.catalog == nil {
		return nil, coreerrors.ErrCacheMiss
	}
	return m.catalog, nil
}

func (m *mockStore) Save(ctx context.Context, catalog *domain.TemplateCatalog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.catalog = catalog
	return nil
}

func (m *mockStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.catalog = nil
	if m.clearFunc != nil {
		return m.clearFunc(ctx)
	}
	return nil
}

// recordingLogger collects warnings for assertions
type recordingLogger struct {
	mu    sync.Mutex
	warns []string
}

func (l *recordingLogger) Debug(msg string, fields map[string]interface{}) {}
func (l *recordingLogger) Info(msg string, fields map[string]interface{})  {}
func (l *recordingLogger) Error(msg string, fields map[string]interface{}) {}

func (l *recordingLogger) Warn(msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}
