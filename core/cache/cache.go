package cache

import (
	"context"
	"encoding/json"
	"time"

	"family-calendar-api/core/logger"

	"github.com/redis/go-redis/v9"
)

// Cache is the read-through cache used for base-event lookups. Every write
// that touches a cached entity must invalidate it synchronously, which the
// event service does on each mutation.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest any) bool
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration)
	Delete(ctx context.Context, keys ...string)
}

type redisCache struct {
	client *redis.Client
}

func NewRedisCache(addr, password string) (Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	logger.Info("Redis cache initialized", "addr", addr)
	return &redisCache{client: client}, nil
}

func (c *redisCache) GetJSON(ctx context.Context, key string, dest any) bool {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		logger.Warn("Cache:GetJSON:Unmarshal", "key", key, "error", err)
		return false
	}
	return true
}

func (c *redisCache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		logger.Warn("Cache:SetJSON:Marshal", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		logger.Warn("Cache:SetJSON:Set", "key", key, "error", err)
	}
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		logger.Warn("Cache:Delete", "keys", keys, "error", err)
	}
}

// noopCache is used when Redis is unavailable and in tests.
type noopCache struct{}

func NewNoop() Cache {
	return &noopCache{}
}

func (noopCache) GetJSON(context.Context, string, any) bool { return false }

func (noopCache) SetJSON(context.Context, string, any, time.Duration) {}

func (noopCache) Delete(context.Context, ...string) {}
