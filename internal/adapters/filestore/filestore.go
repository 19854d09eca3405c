package filestore

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"nach-yomi-bot/internal/domain"
	"nach-yomi-bot/internal/infra/jsonfile"
)

// Имена файлов состояния внутри STATE_DIR.
const (
	SubscribersFile = "subscribers.json"
	MarkerFile      = "broadcast-state.json"
	OffsetFile      = "last_update_id.json"
)

// Subscribers хранит подписчиков в JSON-файле. Каждый вызов читает файл заново.
type Subscribers struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

type subscribersFile struct {
	Subscribers []int64   `json:"subscribers"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewSubscribers создаёт хранилище подписчиков в каталоге dir.
func NewSubscribers(dir string) *Subscribers {
	return &Subscribers{path: filepath.Join(dir, SubscribersFile), now: time.Now}
}

// List возвращает подписчиков в порядке добавления.
func (s *Subscribers) List(ctx context.Context) ([]int64, error) {
	var data subscribersFile
	if _, err := jsonfile.Read(s.path, &data); err != nil {
		return nil, fmt.Errorf("load subscribers: %w", err)
	}
	return data.Subscribers, nil
}

// Add добавляет подписчика. Возвращает false, если он уже был.
func (s *Subscribers) Add(ctx context.Context, chatID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.List(ctx)
	if err != nil {
		return false, err
	}
	if slices.Contains(ids, chatID) {
		return false, nil
	}
	return true, s.save(append(ids, chatID))
}

// Remove удаляет подписчика. Возвращает false, если его не было.
func (s *Subscribers) Remove(ctx context.Context, chatID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.List(ctx)
	if err != nil {
		return false, err
	}
	idx := slices.Index(ids, chatID)
	if idx < 0 {
		return false, nil
	}
	return true, s.save(slices.Delete(ids, idx, idx+1))
}

func (s *Subscribers) save(ids []int64) error {
	if ids == nil {
		ids = []int64{}
	}
	if err := jsonfile.WriteAtomic(s.path, subscribersFile{Subscribers: ids, UpdatedAt: s.now().UTC()}); err != nil {
		return fmt.Errorf("save subscribers: %w", err)
	}
	return nil
}

// Marker хранит дату последней успешной рассылки.
type Marker struct {
	path string
	now  func() time.Time
}

type markerFile struct {
	LastBroadcastDate string    `json:"lastBroadcastDate"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// NewMarker создаёт отметку рассылки в каталоге dir.
func NewMarker(dir string) *Marker {
	return &Marker{path: filepath.Join(dir, MarkerFile), now: time.Now}
}

// WasSentOn сообщает, что рассылка за date уже состоялась.
func (m *Marker) WasSentOn(ctx context.Context, date domain.Date) (bool, error) {
	var data markerFile
	if _, err := jsonfile.Read(m.path, &data); err != nil {
		return false, fmt.Errorf("load broadcast marker: %w", err)
	}
	return data.LastBroadcastDate == date.String(), nil
}

// MarkSent записывает date как день последней рассылки.
func (m *Marker) MarkSent(ctx context.Context, date domain.Date) error {
	data := markerFile{LastBroadcastDate: date.String(), UpdatedAt: m.now().UTC()}
	if err := jsonfile.WriteAtomic(m.path, data); err != nil {
		return fmt.Errorf("save broadcast marker: %w", err)
	}
	return nil
}

// Offsets хранит последний обработанный update_id.
type Offsets struct {
	path string
}

type offsetFile struct {
	LastUpdateID int `json:"lastUpdateId"`
}

// NewOffsets создаёт хранилище смещения в каталоге dir.
func NewOffsets(dir string) *Offsets {
	return &Offsets{path: filepath.Join(dir, OffsetFile)}
}

// Load возвращает сохранённое смещение или 0.
func (o *Offsets) Load(ctx context.Context) (int, error) {
	var data offsetFile
	if _, err := jsonfile.Read(o.path, &data); err != nil {
		return 0, fmt.Errorf("load offset: %w", err)
	}
	return data.LastUpdateID, nil
}

// Save сохраняет смещение.
func (o *Offsets) Save(ctx context.Context, lastUpdateID int) error {
	if err := jsonfile.WriteAtomic(o.path, offsetFile{LastUpdateID: lastUpdateID}); err != nil {
		return fmt.Errorf("save offset: %w", err)
	}
	return nil
}
