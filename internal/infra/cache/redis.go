package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"nach-yomi-bot/internal/infra/metrics"
)

const opTimeout = 2 * time.Second

// RedisCache реализует domain.Cache через Redis.
type RedisCache struct {
	client *redis.Client
}

// NewRedis создаёт кэш.
func NewRedis(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Set задаёт значение.
func (c *RedisCache) Set(key string, value []byte, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	start := time.Now()
	err := c.client.Set(ctx, key, value, ttl).Err()
	metrics.ObserveNetworkRequest("redis", "set", "cache", start, err)
	return err
}

// Get возвращает значение. Отсутствующий ключ даёт redis.Nil.
func (c *RedisCache) Get(key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	start := time.Now()
	value, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		metrics.ObserveNetworkRequest("redis", "get", "cache", start, nil)
		return nil, err
	}
	metrics.ObserveNetworkRequest("redis", "get", "cache", start, err)
	return value, err
}
