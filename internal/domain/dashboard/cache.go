package dashboard

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hostelhub/hostelhub-api/internal/pkg/logger"
)

// Cache stores rendered summaries. Implementations must treat errors as misses.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

type redisCache struct {
	client *redis.Client
}

// NewRedisCache returns nil when client is nil so callers can pass it through.
func NewRedisCache(client *redis.Client) Cache {
	if client == nil {
		return nil
	}
	return &redisCache{client: client}
}

func (c *redisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.FromContext(ctx).Warn().Err(err).Str("key", key).Msg("Dashboard cache read failed")
		}
		return nil, false
	}
	return raw, true
}

func (c *redisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Str("key", key).Msg("Dashboard cache write failed")
	}
}
