package publishguard

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"nach-yomi-bot/internal/domain"
	"nach-yomi-bot/internal/infra/metrics"
)

const redisTTL = 48 * time.Hour

// RedisGuard — тот же контракт поверх SETNX, для запуска на нескольких хостах.
type RedisGuard struct {
	client *redis.Client
	source string
	loc    *time.Location
	now    func() time.Time
	log    zerolog.Logger
}

// NewRedisGuard создаёт защиту на Redis.
func NewRedisGuard(client *redis.Client, loc *time.Location, logger zerolog.Logger) *RedisGuard {
	if loc == nil {
		loc = time.UTC
	}
	return &RedisGuard{
		client: client,
		source: DefaultSource,
		loc:    loc,
		now:    time.Now,
		log:    logger.With().Str("component", "publishguard").Logger(),
	}
}

// Key возвращает ключ резервации на дату.
func (g *RedisGuard) Key(date domain.Date, contentType, content string) string {
	return fmt.Sprintf("publish:%s:%s:%s", g.source, date, Hash(g.source, contentType, content))
}

// CheckAndReserve резервирует контент на текущие сутки. Ошибка Redis означает «не публиковать».
func (g *RedisGuard) CheckAndReserve(ctx context.Context, content, contentType string) (bool, error) {
	start := time.Now()
	key := g.Key(domain.DateOf(g.now(), g.loc), contentType, content)
	ok, err := g.client.SetNX(ctx, key, "1", redisTTL).Result()
	metrics.ObserveNetworkRequest("publishguard", "setnx", "redis", start, err)
	if err != nil {
		metrics.ObserveGuardDecision(contentType, "error")
		g.log.Warn().Err(err).Str("type", contentType).Msg("redis недоступен, публикация пропущена")
		return true, fmt.Errorf("reserve %s: %w", key, err)
	}
	if !ok {
		metrics.ObserveGuardDecision(contentType, "duplicate")
		return true, nil
	}
	metrics.ObserveGuardDecision(contentType, "reserved")
	return false, nil
}
