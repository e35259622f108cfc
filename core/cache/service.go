// ABOUTME: Two-tier cache service: Redis when reachable, bounded in-process LRU always
// ABOUTME: Values cross the boundary as JSON; tier failures degrade silently to the LRU

package cache

import (
	"context"
	"encoding/json"
	"time"

	"mememe-api/core/domain"
	coreerrors "mememe-api/core/errors"
	"mememe-api/core/interfaces"
)

const (
	// DefaultCaptionTTL keeps generated captions briefly
	DefaultCaptionTTL = 5 * time.Minute

	// DefaultImageTTL keeps rendered image URLs for a day; they are stable per template and text
	DefaultImageTTL = 24 * time.Hour
)

// Options configures the cache service
type Options struct {
	CaptionTTL time.Duration
	ImageTTL   time.Duration
}

// Service is the two-tier key-value cache used by every other component
type Service struct {
	distributed interfaces.DistributedTier
	local       interfaces.CacheTier
	logger      interfaces.Logger
	captionTTL  time.Duration
	imageTTL    time.Duration
}

// NewService creates a cache service. deps.Cache may be nil for in-process-only mode.
func NewService(deps interfaces.Dependencies, local interfaces.CacheTier, opts Options) *Service {
	if opts.CaptionTTL <= 0 {
		opts.CaptionTTL = DefaultCaptionTTL
	}
	if opts.ImageTTL <= 0 {
		opts.ImageTTL = DefaultImageTTL
	}

	return &Service{
		distributed: deps.Cache,
		local:       local,
		logger:      deps.Logger,
		captionTTL:  opts.CaptionTTL,
		imageTTL:    opts.ImageTTL,
	}
}

// Get looks key up and decodes it into dest, reporting whether a live value was found
func (s *Service) Get(ctx context.Context, key string, dest interface{}) bool {
	data, ok := s.lookup(ctx, key)
	if !ok {
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		s.warn("Failed to decode cached value", key, err)
		return false
	}
	return true
}

func (s *Service) lookup(ctx context.Context, key string) ([]byte, bool) {
	if s.distributedAvailable(ctx) {
		data, err := s.distributed.Get(ctx, key)
		if err == nil {
			return data, true
		}
		if !coreerrors.IsCacheMiss(err) {
			s.warn("Distributed cache read failed, using in-process tier", key, err)
		}
	}

	data, err := s.local.Get(ctx, key)
	if err != nil {
		return nil, false
	}
	return data, true
}

// Set stores value under key in both tiers with the same TTL. Only an encoding
// failure is returned; distributed write failures are logged.
func (s *Service) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return coreerrors.WrapError(err, "encode cache value")
	}

	if s.distributedAvailable(ctx) {
		if err := s.distributed.Set(ctx, key, data, ttl); err != nil {
			s.warn("Distributed cache write failed", key, err)
		}
	}

	// The in-process tier never fails by contract
	_ = s.local.Set(ctx, key, data, ttl)
	return nil
}

// Delete removes key from both tiers, reporting whether either held it
func (s *Service) Delete(ctx context.Context, key string) bool {
	removed := false
	if s.distributedAvailable(ctx) {
		ok, err := s.distributed.Delete(ctx, key)
		if err != nil {
			s.warn("Distributed cache delete failed", key, err)
		}
		removed = ok
	}

	ok, _ := s.local.Delete(ctx, key)
	return removed || ok
}

// Clear removes every key owned by the cache service from both tiers
func (s *Service) Clear(ctx context.Context) {
	if s.distributedAvailable(ctx) {
		if err := s.distributed.Clear(ctx, Namespace); err != nil {
			s.warn("Distributed cache clear failed", Namespace, err)
		}
	}
	_ = s.local.Clear(ctx, Namespace)
}

// GetCaptions returns cached captions for a topic and template
func (s *Service) GetCaptions(ctx context.Context, topic, templateID string) ([]domain.Caption, bool) {
	return Fetch[[]domain.Caption](ctx, s, Key(PrefixCaptions, topic, templateID))
}

// SetCaptions caches captions for a topic and template
func (s *Service) SetCaptions(ctx context.Context, topic, templateID string, captions []domain.Caption) error {
	return s.Set(ctx, Key(PrefixCaptions, topic, templateID), captions, s.captionTTL)
}

// GetImageURL returns the cached rendered image URL for a template and caption text
func (s *Service) GetImageURL(ctx context.Context, templateID, top, bottom string) (string, bool) {
	return Fetch[string](ctx, s, Key(PrefixImage, templateID, top, bottom))
}

// SetImageURL caches the rendered image URL for a template and caption text
func (s *Service) SetImageURL(ctx context.Context, templateID, top, bottom, url string) error {
	return s.Set(ctx, Key(PrefixImage, templateID, top, bottom), url, s.imageTTL)
}

func (s *Service) distributedAvailable(ctx context.Context) bool {
	return s.distributed != nil && s.distributed.Available(ctx)
}

func (s *Service) warn(msg, key string, err error) {
	if s.logger == nil {
		return
	}
	s.logger.Warn(msg, map[string]interface{}{
		"key":   key,
		"error": err.Error(),
	})
}

// Fetch is a typed Get
func Fetch[T any](ctx context.Context, s *Service, key string) (T, bool) {
	var value T
	if !s.Get(ctx, key, &value) {
		var zero T
		return zero, false
	}
	return value, true
}
