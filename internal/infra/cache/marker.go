package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"nach-yomi-bot/internal/domain"
)

const markerTTL = 48 * time.Hour

// Marker хранит отметку дневной рассылки в кэше, общем для всех хостов.
type Marker struct {
	cache domain.Cache
	now   func() time.Time
}

// NewMarker создаёт отметку поверх кэша.
func NewMarker(c domain.Cache) *Marker {
	return &Marker{cache: c, now: time.Now}
}

func markerKey(date domain.Date) string {
	return "nach:broadcast:" + date.String()
}

// WasSentOn сообщает, что за дату уже стоит отметка. Отсутствие ключа не ошибка.
func (m *Marker) WasSentOn(ctx context.Context, date domain.Date) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, err := m.cache.Get(markerKey(date))
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// MarkSent ставит отметку на двое суток: дольше она не нужна.
func (m *Marker) MarkSent(ctx context.Context, date domain.Date) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.cache.Set(markerKey(date), []byte(m.now().UTC().Format(time.RFC3339)), markerTTL)
}
