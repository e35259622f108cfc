// ABOUTME: Feature flags for optional parts of the service
// ABOUTME: Flags come from FEATURE_* environment variables with per-flag defaults

package featureflags

import (
	"context"
	"os"
	"strings"
	"sync"
)

// FeatureFlag represents a single feature flag
type FeatureFlag string

// Defined feature flags
const (
	// RateLimitEnabled applies the per-IP rate limiter to the API
	RateLimitEnabled FeatureFlag = "rate_limit_enabled"

	// ScheduledRefresh rebuilds the catalog on the configured cron schedule
	ScheduledRefresh FeatureFlag = "scheduled_refresh"

	// CatalogFileStore mirrors the catalog to the on-disk JSON file
	CatalogFileStore FeatureFlag = "catalog_file_store"

	// WarmOnStartup builds the catalog before the server starts accepting requests
	WarmOnStartup FeatureFlag = "warm_on_startup"
)

// Defaults are the flag states used when no environment variable is set
var Defaults = map[FeatureFlag]bool{
	RateLimitEnabled: true,
	ScheduledRefresh: true,
	CatalogFileStore: true,
	WarmOnStartup:    false,
}

// Manager defines the interface for feature flag management
type Manager interface {
	// IsEnabled checks if a feature flag is enabled
	IsEnabled(ctx context.Context, flag FeatureFlag) bool

	// SetEnabled sets a feature flag's state
	SetEnabled(flag FeatureFlag, enabled bool)

	// GetAllFlags returns the state of all defined flags
	GetAllFlags() map[FeatureFlag]bool
}

// EnvManager implements Manager using environment variables
type EnvManager struct {
	mu        sync.RWMutex
	overrides map[FeatureFlag]bool
	prefix    string
}

// NewEnvManager creates a new environment-based feature flag manager
func NewEnvManager(prefix string) *EnvManager {
	if prefix == "" {
		prefix = "FEATURE_"
	}
	return &EnvManager{
		overrides: make(map[FeatureFlag]bool),
		prefix:    prefix,
	}
}

// IsEnabled checks overrides, then the environment, then the flag default
func (m *EnvManager) IsEnabled(ctx context.Context, flag FeatureFlag) bool {
	m.mu.RLock()
	enabled, ok := m.overrides[flag]
	m.mu.RUnlock()
	if ok {
		return enabled
	}

	value, set := os.LookupEnv(m.prefix + strings.ToUpper(string(flag)))
	if !set || strings.TrimSpace(value) == "" {
		return Defaults[flag]
	}
	return parseBool(value)
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "enabled", "on":
		return true
	default:
		return false
	}
}

// SetEnabled overrides a flag's state
func (m *EnvManager) SetEnabled(flag FeatureFlag, enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overrides[flag] = enabled
}

// GetAllFlags returns the state of all defined flags
func (m *EnvManager) GetAllFlags() map[FeatureFlag]bool {
	ctx := context.Background()
	flags := make(map[FeatureFlag]bool, len(Defaults))
	for flag := range Defaults {
		flags[flag] = m.IsEnabled(ctx, flag)
	}
	return flags
}

// StaticManager implements Manager with fixed flag states, for tests
type StaticManager struct {
	mu    sync.RWMutex
	flags map[FeatureFlag]bool
}

// NewStaticManager creates a manager with predefined flag states
func NewStaticManager(flags map[FeatureFlag]bool) *StaticManager {
	copied := make(map[FeatureFlag]bool, len(flags))
	for k, v := range flags {
		copied[k] = v
	}
	return &StaticManager{flags: copied}
}

// IsEnabled checks if a feature flag is enabled
func (m *StaticManager) IsEnabled(ctx context.Context, flag FeatureFlag) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.flags[flag]
}

// SetEnabled sets a feature flag's state
func (m *StaticManager) SetEnabled(flag FeatureFlag, enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flags[flag] = enabled
}

// GetAllFlags returns all flag states
func (m *StaticManager) GetAllFlags() map[FeatureFlag]bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[FeatureFlag]bool, len(m.flags))
	for k, v := range m.flags {
		result[k] = v
	}
	return result
}
