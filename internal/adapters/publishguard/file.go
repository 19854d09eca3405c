package publishguard

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"nach-yomi-bot/internal/domain"
	"nach-yomi-bot/internal/infra/filelock"
	"nach-yomi-bot/internal/infra/jsonfile"
	"nach-yomi-bot/internal/infra/metrics"
)

// DefaultSource — метка источника в ключе хэша.
const DefaultSource = "nach_yomi"

const (
	recordFile = "published-hashes.json"
	lockFile   = "published-hashes.lock"
)

// ErrLockTimeout возвращается, если блокировку не удалось получить вовремя.
var ErrLockTimeout = filelock.ErrTimeout

// Hash возвращает первые 16 hex-символов sha256 от "source:type:content".
func Hash(source, contentType, content string) string {
	sum := sha256.Sum256([]byte(source + ":" + contentType + ":" + content))
	return hex.EncodeToString(sum[:])[:16]
}

// DefaultDir возвращает каталог учёта публикаций по умолчанию.
func DefaultDir() string {
	return filepath.Join(os.TempDir(), "torah-yomi-channel")
}

type record struct {
	Date        string    `json:"date"`
	Hashes      []string  `json:"hashes"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// FileGuard хранит хэши опубликованного за текущие сутки в JSON-файле под файловой блокировкой.
// Координирует процессы только на одной файловой системе.
type FileGuard struct {
	dir    string
	source string
	loc    *time.Location
	now    func() time.Time
	lock   *filelock.Lock
	log    zerolog.Logger
}

// Option настраивает FileGuard.
type Option func(*FileGuard)

// WithClock подменяет часы.
func WithClock(now func() time.Time) Option {
	return func(g *FileGuard) { g.now = now }
}

// WithLockTiming задаёт ожидание блокировки и интервал повторов.
func WithLockTiming(timeout, retry time.Duration) Option {
	return func(g *FileGuard) {
		g.lock.Timeout = timeout
		g.lock.RetryInterval = retry
	}
}

// NewFileGuard создаёт защиту в каталоге dir. Сутки считаются по зоне loc.
func NewFileGuard(dir string, loc *time.Location, logger zerolog.Logger, opts ...Option) *FileGuard {
	if dir == "" {
		dir = DefaultDir()
	}
	if loc == nil {
		loc = time.UTC
	}
	g := &FileGuard{
		dir:    dir,
		source: DefaultSource,
		loc:    loc,
		now:    time.Now,
		lock:   filelock.New(filepath.Join(dir, lockFile)),
		log:    logger.With().Str("component", "publishguard").Logger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// CheckAndReserve возвращает true, если контент уже публиковался сегодня.
// Иначе резервирует его до возврата. При любой ошибке возвращает true вместе с ошибкой:
// лучше пропустить отправку, чем отправить дважды.
func (g *FileGuard) CheckAndReserve(ctx context.Context, content, contentType string) (bool, error) {
	hash := Hash(g.source, contentType, content)

	release, err := g.lock.Acquire(ctx)
	if err != nil {
		metrics.ObserveGuardDecision(contentType, "error")
		g.log.Warn().Err(err).Str("type", contentType).Msg("не удалось получить блокировку, публикация пропущена")
		return true, err
	}
	defer func() {
		if err := release(); err != nil {
			g.log.Warn().Err(err).Msg("не удалось снять блокировку")
		}
	}()

	today := domain.DateOf(g.now(), g.loc).String()
	path := filepath.Join(g.dir, recordFile)

	var rec record
	if _, err := jsonfile.Read(path, &rec); err != nil {
		if !g.writtenBefore(path, today) {
			metrics.ObserveGuardDecision(contentType, "error")
			return true, fmt.Errorf("load publish record: %w", err)
		}
		// журнал прошлых суток не нужен для сегодняшней проверки
		g.log.Warn().Err(err).Str("path", path).Msg("журнал публикаций повреждён и устарел, начинаем заново")
		rec = record{}
	}
	if rec.Date != today {
		if rec.Date != "" {
			g.log.Info().Str("was", rec.Date).Str("today", today).Msg("новые сутки, журнал публикаций сброшен")
		}
		rec = record{Date: today}
	}

	for _, h := range rec.Hashes {
		if h == hash {
			metrics.ObserveGuardDecision(contentType, "duplicate")
			g.log.Info().Str("hash", hash[:8]).Str("type", contentType).Msg("повтор обнаружен")
			return true, nil
		}
	}

	rec.Hashes = append(rec.Hashes, hash)
	rec.LastUpdated = g.now().UTC()
	if err := jsonfile.WriteAtomic(path, rec); err != nil {
		metrics.ObserveGuardDecision(contentType, "error")
		return true, fmt.Errorf("save publish record: %w", err)
	}
	metrics.ObserveGuardDecision(contentType, "reserved")
	g.log.Debug().Str("hash", hash[:8]).Str("type", contentType).Msg("зарезервировано для публикации")
	return false, nil
}

// writtenBefore сообщает, что файл последний раз менялся до суток today.
func (g *FileGuard) writtenBefore(path, today string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return domain.DateOf(info.ModTime(), g.loc).String() < today
}
