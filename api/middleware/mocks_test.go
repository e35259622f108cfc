package middleware

import (
	"context"
	"sync"

	"mememe-api/core/domain"
)

type logEntry struct {
	Level   string
	Message string
	Fields  map[string]interface{}
}

// mockLogger records every log call
type mockLogger struct {
	mu   sync.Mutex
	logs []logEntry
}

func (m *mockLogger) record(level, msg string, fields map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, logEntry{Level: level, Message: msg, Fields: fields})
}

func (m *mockLogger) Debug(msg string, fields map[string]interface{}) { m.record("DEBUG", msg, fields) }
func (m *mockLogger) Info(msg string, fields map[string]interface{})  { m.record("INFO", msg, fields) }
func (m *mockLogger) Warn(msg string, fields map[string]interface{})  { m.record("WARN", msg, fields) }
func (m *mockLogger) Error(msg string, fields map[string]interface{}) { m.record("ERROR", msg, fields) }

// mockChecker returns results from CheckFunc and records identities
type mockChecker struct {
	CheckFunc  func(ctx context.Context, identity string) domain.RateLimitResult
	identities []string
}

func (m *mockChecker) Check(ctx context.Context, identity string) domain.RateLimitResult {
	m.identities = append(m.identities, identity)
	if m.CheckFunc != nil {
		return m.CheckFunc(ctx, identity)
	}
	return domain.RateLimitResult{Success: true, Limit: 10, Remaining: 9}
}
