// ABOUTME: Per-identity request rate limiter with a Redis sliding window and in-process fallback
// ABOUTME: Distributed failures degrade to a fixed-window counter; callers never see an error

package ratelimit

import (
	"context"
	"sync"
	"time"

	"mememe-api/core/domain"
	"mememe-api/core/interfaces"

	gocache "github.com/patrickmn/go-cache"
)

const (
	// DefaultMax is the number of requests allowed per window
	DefaultMax = 10

	// DefaultWindow is the rate limit window length
	DefaultWindow = 60 * time.Second

	keyPrefix = "ratelimit:"
)

// Limiter tracks requests per identity
type Limiter struct {
	store  interfaces.SlidingWindowStore
	logger interfaces.Logger
	max    int
	window time.Duration
	now    func() time.Time

	mu       sync.Mutex
	counters *gocache.Cache
}

// fixedWindow is the in-process counter for one identity
type fixedWindow struct {
	count     int
	resetTime time.Time
}

// NewLimiter creates a limiter. store may be nil, in which case only the
// in-process counter is used.
func NewLimiter(store interfaces.SlidingWindowStore, logger interfaces.Logger, max int, window time.Duration) *Limiter {
	if max <= 0 {
		max = DefaultMax
	}
	if window <= 0 {
		window = DefaultWindow
	}

	return &Limiter{
		store:    store,
		logger:   logger,
		max:      max,
		window:   window,
		now:      time.Now,
		counters: gocache.New(window, 2*window),
	}
}

// WithClock replaces the time source
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// Limit returns the configured maximum per window
func (l *Limiter) Limit() int {
	return l.max
}

// Check records a request for identity and reports whether it is allowed
func (l *Limiter) Check(ctx context.Context, identity string) domain.RateLimitResult {
	now := l.now()

	if l.store != nil && l.store.Available(ctx) {
		result, err := l.checkDistributed(ctx, identity, now)
		if err == nil {
			return result
		}
		if l.logger != nil {
			l.logger.Warn("Distributed rate limit failed, using in-process counter", map[string]interface{}{
				"identity": identity,
				"error":    err.Error(),
			})
		}
	}

	return l.checkLocal(identity, now)
}

func (l *Limiter) checkDistributed(ctx context.Context, identity string, now time.Time) (domain.RateLimitResult, error) {
	key := keyPrefix + identity
	count, member, err := l.store.RecordHit(ctx, key, now, l.window)
	if err != nil {
		return domain.RateLimitResult{}, err
	}

	reset := now.Add(l.window).UnixMilli()
	if count >= int64(l.max) {
		// The rejected probe is not counted against the identity
		if err := l.store.ForgetHit(ctx, key, member); err != nil && l.logger != nil {
			l.logger.Warn("Failed to drop rejected rate limit hit", map[string]interface{}{
				"identity": identity,
				"error":    err.Error(),
			})
		}
		return domain.RateLimitResult{
			Success:   false,
			Limit:     l.max,
			Remaining: 0,
			Reset:     reset,
		}, nil
	}

	return domain.RateLimitResult{
		Success:   true,
		Limit:     l.max,
		Remaining: l.max - int(count) - 1,
		Reset:     reset,
	}, nil
}

// checkLocal applies a fixed window aligned to multiples of the window length since epoch
func (l *Limiter) checkLocal(identity string, now time.Time) domain.RateLimitResult {
	l.mu.Lock()
	defer l.mu.Unlock()

	var w *fixedWindow
	if v, ok := l.counters.Get(identity); ok {
		w = v.(*fixedWindow)
	}

	if w == nil || !now.Before(w.resetTime) {
		w = &fixedWindow{count: 1, resetTime: l.windowEnd(now)}
		l.counters.Set(identity, w, w.resetTime.Sub(now))
		return domain.RateLimitResult{
			Success:   true,
			Limit:     l.max,
			Remaining: l.max - w.count,
			Reset:     w.resetTime.UnixMilli(),
		}
	}

	if w.count >= l.max {
		return domain.RateLimitResult{
			Success:   false,
			Limit:     l.max,
			Remaining: 0,
			Reset:     w.resetTime.UnixMilli(),
		}
	}

	w.count++
	return domain.RateLimitResult{
		Success:   true,
		Limit:     l.max,
		Remaining: l.max - w.count,
		Reset:     w.resetTime.UnixMilli(),
	}
}

func (l *Limiter) windowEnd(now time.Time) time.Time {
	windowMs := l.window.Milliseconds()
	next := (now.UnixMilli()/windowMs + 1) * windowMs
	return time.UnixMilli(next)
}
