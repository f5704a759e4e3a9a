package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/sitelens/scan-engine/pkg/urlx"
)

const screenshotKeyPrefix = "screenshot:"

// cacheEnvelope wraps a cached screenshot with its capture timestamp so that
// freshness is decided by the application, not only by Redis expiry.
type cacheEnvelope struct {
	Payload    []byte    `json:"payload"`
	CapturedAt time.Time `json:"captured_at"`
}

// ScreenshotCache stores screenshots keyed by the SHA-256 of the normalized
// URL. Entries carry their own capture timestamp; the Redis expiry is set to
// twice the TTL as a backstop so Sweep always has stale entries to report
// before Redis silently drops them.
type ScreenshotCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
	now    func() time.Time
}

func NewScreenshotCache(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *ScreenshotCache {
	return &ScreenshotCache{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "screenshot_cache").Logger(),
		now:    time.Now,
	}
}

// Get returns the cached screenshot for url, or (nil, nil) on a miss.
// An expired entry is deleted on the spot and reported as a miss.
func (c *ScreenshotCache) Get(ctx context.Context, url string) ([]byte, error) {
	key := screenshotKeyPrefix + urlx.CacheKey(url)

	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}

	var env cacheEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		// Corrupt entry: drop it and treat as a miss.
		c.client.Del(ctx, key)
		return nil, nil
	}

	if c.now().Sub(env.CapturedAt) > c.ttl {
		if err := c.client.Del(ctx, key).Err(); err != nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("failed to evict expired screenshot")
		}
		return nil, nil
	}
	return env.Payload, nil
}

func (c *ScreenshotCache) Put(ctx context.Context, url string, payload []byte) error {
	env := cacheEnvelope{Payload: payload, CapturedAt: c.now().UTC()}
	raw, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}

	key := screenshotKeyPrefix + urlx.CacheKey(url)
	if err := c.client.Set(ctx, key, raw, 2*c.ttl).Err(); err != nil {
		return fmt.Errorf("cache put: %w", err)
	}
	return nil
}

// Sweep scans the keyspace and removes every expired entry, returning the
// number removed. Intended for startup and periodic housekeeping.
func (c *ScreenshotCache) Sweep(ctx context.Context) (int, error) {
	var removed int
	iter := c.client.Scan(ctx, 0, screenshotKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()

		raw, err := c.client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return removed, fmt.Errorf("cache sweep read: %w", err)
		}

		var env cacheEnvelope
		stale := json.Unmarshal(raw, &env) != nil || c.now().Sub(env.CapturedAt) > c.ttl
		if !stale {
			continue
		}
		if err := c.client.Del(ctx, key).Err(); err != nil {
			return removed, fmt.Errorf("cache sweep delete: %w", err)
		}
		removed++
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("cache sweep scan: %w", err)
	}
	return removed, nil
}
