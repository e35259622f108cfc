// ABOUTME: Redis cache tier using go-redis client, created lazily and shared for the process lifetime
// ABOUTME: Tracks availability so callers can fall back to the in-process tier instead of failing

package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	coreerrors "mememe-api/core/errors"
	"mememe-api/core/interfaces"
	"mememe-api/pkg/config"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	pingTimeout   = 2 * time.Second
	scanBatchSize = 100
)

// RedisCache implements the DistributedTier and SlidingWindowStore interfaces using Redis
type RedisCache struct {
	options       *redis.Options
	probeInterval time.Duration
	logger        interfaces.Logger
	now           func() time.Time

	once   sync.Once
	client *redis.Client

	mu        sync.Mutex
	available bool
	probed    bool
	probing   bool
	lastProbe time.Time
}

// NewRedisCache creates a new Redis cache tier. No connection is made until first use.
func NewRedisCache(cfg config.RedisConfig, logger interfaces.Logger) (*RedisCache, error) {
	if cfg.URL == "" {
		return nil, errors.New("redis url cannot be empty")
	}

	options, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, coreerrors.WrapError(err, "invalid redis url")
	}

	probeInterval := cfg.ProbeInterval
	if probeInterval <= 0 {
		probeInterval = 30 * time.Second
	}

	return &RedisCache{
		options:       options,
		probeInterval: probeInterval,
		logger:        logger,
		now:           time.Now,
	}, nil
}

// WithClock replaces the time source used for probe pacing
func (c *RedisCache) WithClock(now func() time.Time) *RedisCache {
	c.now = now
	return c
}

func (c *RedisCache) conn() *redis.Client {
	c.once.Do(func() {
		c.client = redis.NewClient(c.options)
	})
	return c.client
}

// Available reports whether Redis is reachable. While marked unavailable it
// re-probes at most once per probe interval. Only one caller probes at a time;
// the lock is not held during the ping, so other callers see the old state.
func (c *RedisCache) Available(ctx context.Context) bool {
	c.mu.Lock()
	if c.available {
		c.mu.Unlock()
		return true
	}
	now := c.now()
	if c.probing || (c.probed && now.Sub(c.lastProbe) < c.probeInterval) {
		c.mu.Unlock()
		return false
	}
	c.probing = true
	c.probed = true
	c.lastProbe = now
	c.mu.Unlock()

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	err := c.conn().Ping(pingCtx).Err()

	c.mu.Lock()
	c.probing = false
	c.available = err == nil
	c.mu.Unlock()

	if err != nil {
		c.warn("Redis unreachable, using in-process cache", err)
		return false
	}

	if c.logger != nil {
		c.logger.Info("Redis connected", map[string]interface{}{
			"address":  c.options.Addr,
			"database": c.options.DB,
		})
	}
	return true
}

// observe flips the tier unavailable on any error other than a plain miss
func (c *RedisCache) observe(err error) error {
	if err == nil || errors.Is(err, redis.Nil) {
		return err
	}

	c.mu.Lock()
	wasAvailable := c.available
	c.available = false
	c.probed = true
	c.lastProbe = c.now()
	c.mu.Unlock()

	if wasAvailable {
		c.warn("Redis operation failed, marking unavailable", err)
	}
	return fmt.Errorf("%w: %v", coreerrors.ErrStoreUnavailable, err)
}

func (c *RedisCache) warn(msg string, err error) {
	if c.logger == nil {
		return
	}
	c.logger.Warn(msg, map[string]interface{}{
		"address": c.options.Addr,
		"error":   err.Error(),
	})
}

// Get retrieves a value from Redis
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.conn().Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, coreerrors.ErrCacheMiss
		}
		return nil, c.observe(err)
	}
	return val, nil
}

// Set stores a value in Redis with the given TTL
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	// Redis SET with 0 TTL means no expiration
	return c.observe(c.conn().Set(ctx, key, value, ttl).Err())
}

// Delete removes a key from Redis and reports whether it existed
func (c *RedisCache) Delete(ctx context.Context, key string) (bool, error) {
	n, err := c.conn().Del(ctx, key).Result()
	if err != nil {
		return false, c.observe(err)
	}
	return n > 0, nil
}

// Clear deletes every key matching prefix*, scanning in batches
func (c *RedisCache) Clear(ctx context.Context, prefix string) error {
	client := c.conn()
	var cursor uint64
	for {
		keys, next, err := client.Scan(ctx, cursor, prefix+"*", scanBatchSize).Result()
		if err != nil {
			return c.observe(err)
		}
		if len(keys) > 0 {
			if err := client.Del(ctx, keys...).Err(); err != nil {
				return c.observe(err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// RecordHit maintains a sorted set of hit timestamps for key. In one MULTI/EXEC it
// trims hits at or before now-window, counts the rest, adds this hit and refreshes
// the key expiry to the window length.
func (c *RedisCache) RecordHit(ctx context.Context, key string, now time.Time, window time.Duration) (int64, string, error) {
	nowMs := now.UnixMilli()
	windowStart := nowMs - window.Milliseconds()
	member := strconv.FormatInt(nowMs, 10) + "-" + uuid.NewString()

	var card *redis.IntCmd
	_, err := c.conn().TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart, 10))
		card = pipe.ZCard(ctx, key)
		pipe.ZAdd(ctx, key, redis.Z{Score: float64(nowMs), Member: member})
		pipe.PExpire(ctx, key, window)
		return nil
	})
	if err != nil {
		return 0, "", c.observe(err)
	}
	return card.Val(), member, nil
}

// ForgetHit removes a hit recorded by RecordHit
func (c *RedisCache) ForgetHit(ctx context.Context, key, member string) error {
	return c.observe(c.conn().ZRem(ctx, key, member).Err())
}

// Close closes the Redis connection if one was opened
func (c *RedisCache) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}
