// Package interfaces defines the core interfaces used throughout the application.
// These interfaces allow for dependency injection and make the code testable.
package interfaces

import (
	"context"
	"time"
)

// CacheTier defines one storage tier behind the two-tier cache.
// Implementations are the Redis tier and the in-process LRU tier.
//
// Example usage:
//
//	tier := someTier // implements CacheTier
//
//	// Store a value
//	err := tier.Set(ctx, "cache:captions:cats:181913649", data, 5*time.Minute)
//
//	// Retrieve a value
//	data, err := tier.Get(ctx, "cache:captions:cats:181913649")
//	if err != nil {
//		// handle error or cache miss
//	}
type CacheTier interface {
	// Get retrieves a value from the tier by key.
	// Returns ErrCacheMiss when the key is absent or logically expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the tier with the given key and TTL.
	// If ttl is 0, the value should be stored indefinitely.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value by key and reports whether it was present.
	Delete(ctx context.Context, key string) (bool, error)

	// Clear removes every key under the given prefix.
	Clear(ctx context.Context, prefix string) error
}

// DistributedTier is a CacheTier shared across processes that may become unreachable.
type DistributedTier interface {
	CacheTier

	// Available reports whether the tier is currently believed reachable.
	// It may probe the backend when the last failure is old enough.
	Available(ctx context.Context) bool
}

// SlidingWindowStore records timestamped hits in a trailing window, atomically.
type SlidingWindowStore interface {
	// Available reports whether the store is currently believed reachable.
	Available(ctx context.Context) bool

	// RecordHit drops hits older than window, counts the survivors, records this hit
	// and refreshes the key expiry in one atomic step. It returns the count observed
	// before this hit was added and the member recorded for it.
	RecordHit(ctx context.Context, key string, now time.Time, window time.Duration) (int64, string, error)

	// ForgetHit removes a previously recorded hit.
	ForgetHit(ctx context.Context, key, member string) error
}
