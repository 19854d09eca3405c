package domain

import (
	"context"
	"time"
)

// Sender доставляет единицы контента в Telegram.
type Sender interface {
	Send(ctx context.Context, chat ChatRef, unit Unit) error
}

// TextProvider возвращает текст главы.
type TextProvider interface {
	Chapter(ctx context.Context, book string, chapter int) (ChapterText, error)
}

// CalendarProvider возвращает еврейскую дату для календарной даты.
type CalendarProvider interface {
	HebrewDate(ctx context.Context, date Date) (string, error)
}

// MediaCatalog сопоставляет главу с шиуром и строит ссылки на медиа.
type MediaCatalog interface {
	MediaID(book string, chapter int) (int64, bool)
	AudioURL(mediaID int64) string
	VideoURL(mediaID int64) string
	ShiurURL(book string, mediaID *int64) string
	TextURL(book string, chapter int) string
}

// VideoConverter скачивает HLS-поток в локальный MP4.
type VideoConverter interface {
	Convert(ctx context.Context, hlsURL, name string) (VideoConversion, error)
	Cleanup(conv VideoConversion)
}

// VideoConversion — результат конвертации видео.
// При TooLarge файл уже удалён и Path пуст.
type VideoConversion struct {
	Path      string
	TooLarge  bool
	SizeBytes int64
}

// SubscriberStore хранит подписчиков рассылки.
type SubscriberStore interface {
	List(ctx context.Context) ([]int64, error)
	Add(ctx context.Context, chatID int64) (bool, error)
	Remove(ctx context.Context, chatID int64) (bool, error)
}

// BroadcastMarker отмечает день, в который рассылка уже состоялась.
type BroadcastMarker interface {
	WasSentOn(ctx context.Context, date Date) (bool, error)
	MarkSent(ctx context.Context, date Date) error
}

// PublishGuard резервирует контент перед отправкой.
// isDuplicate == true означает «не публиковать»: контент уже был сегодня или защита недоступна.
type PublishGuard interface {
	CheckAndReserve(ctx context.Context, content, contentType string) (isDuplicate bool, err error)
}

// OffsetStore хранит последний обработанный update_id.
type OffsetStore interface {
	Load(ctx context.Context) (int, error)
	Save(ctx context.Context, lastUpdateID int) error
}

// Cache используется для простых TTL-хранилищ.
type Cache interface {
	Set(key string, value []byte, ttl time.Duration) error
	Get(key string) ([]byte, error)
}
