package commands

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Ограничение по умолчанию: 5 команд в минуту на чат.
const (
	DefaultPerWindow = 5
	DefaultWindow    = time.Minute
	maxEntries       = 10_000
)

type chatLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter ограничивает частоту команд для каждого чата отдельно.
type Limiter struct {
	mu     sync.Mutex
	chats  map[int64]*chatLimiter
	every  rate.Limit
	burst  int
	window time.Duration
}

// NewLimiter создаёт ограничитель: perWindow команд за window.
func NewLimiter(perWindow int, window time.Duration) *Limiter {
	if perWindow <= 0 {
		perWindow = DefaultPerWindow
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Limiter{
		chats:  make(map[int64]*chatLimiter),
		every:  rate.Every(window / time.Duration(perWindow)),
		burst:  perWindow,
		window: window,
	}
}

// Allow сообщает, можно ли обработать команду чата в момент now.
func (l *Limiter) Allow(chatID int64, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.chats) >= maxEntries {
		l.evictIdle(now)
	}
	c, ok := l.chats[chatID]
	if !ok {
		c = &chatLimiter{limiter: rate.NewLimiter(l.every, l.burst)}
		l.chats[chatID] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

// evictIdle удаляет чаты, молчавшие дольше окна: их лимит уже восстановился.
func (l *Limiter) evictIdle(now time.Time) {
	for id, c := range l.chats {
		if now.Sub(c.lastSeen) > l.window {
			delete(l.chats, id)
		}
	}
}

// Len возвращает число отслеживаемых чатов.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.chats)
}
