package cache

import (
	"context"
	"sync"
	"time"

	coreerrors "mememe-api/core/errors"
)

// mockTier is a mock implementation of the DistributedTier interface
type mockTier struct {
	availableFunc func(ctx context.Context) bool
	getFunc       func(ctx context.Context, key string) ([]byte, error)
	setFunc       func(ctx context.Context, key string, value []byte, ttl time.Duration) error
	deleteFunc    func(ctx context.Context, key string) (bool, error)
	clearFunc     func(ctx context.Context, prefix string) error
}

func (m *mockTier) Available(ctx context.Context) bool {
	if m.availableFunc != nil {
		return m.availableFunc(ctx)
	}
	return true
}

func (m *mockTier) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, key)
	}
	return nil, coreerrors.ErrCacheMiss
}

func (m *mockTier) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFunc != nil {
		return m.setFunc(ctx, key, value, ttl)
	}
	return nil
}

func (m *mockTier) Delete(ctx context.Context, key string) (bool, error) {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, key)
	}
	return false, nil
}

func (m *mockTier) Clear(ctx context.Context, prefix string) error {
	if m.clearFunc != nil {
		return m.clearFunc(ctx, prefix)
	}
	return nil
}

// recordingLogger captures log calls
type recordingLogger struct {
	mu       sync.Mutex
	warnings []string
}

func (l *recordingLogger) Debug(msg string, fields map[string]interface{}) {}
func (l *recordingLogger) Info(msg string, fields map[string]interface{})  {}
func (l *recordingLogger) Error(msg string, fields map[string]interface{}) {}

func (l *recordingLogger) Warn(msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warnings = append(l.warnings, msg)
}
