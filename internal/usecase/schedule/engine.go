package schedule

import (
	"errors"
	"fmt"

	"nach-yomi-bot/internal/domain"
)

var (
	// ErrInvalidRange возвращается для дат раньше начала цикла.
	ErrInvalidRange = errors.New("date before schedule epoch")
	// ErrInvalidCorpus возвращается при некорректном списке книг.
	ErrInvalidCorpus = errors.New("invalid corpus")
)

// MediaLookup ищет шиур для главы.
type MediaLookup interface {
	MediaID(book string, chapter int) (int64, bool)
}

// Config описывает параметры расписания.
type Config struct {
	Books       []domain.Book
	Epoch       domain.Date
	UnitsPerDay int
	Media       MediaLookup
}

// DefaultConfig возвращает расписание Нах Йоми: 34 книги, по две главы в день.
func DefaultConfig(media MediaLookup) Config {
	return Config{
		Books:       NachOrder,
		Epoch:       Epoch,
		UnitsPerDay: ChaptersPerDay,
		Media:       media,
	}
}

type chapterRef struct {
	book    domain.Book
	chapter int
}

// Engine вычисляет задание на день. Результат зависит только от даты.
type Engine struct {
	flat         []chapterRef
	epoch        domain.Date
	epochDays    int
	unitsPerDay  int
	daysPerCycle int
	media        MediaLookup
}

// NewEngine проверяет корпус и разворачивает его в плоский список глав.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.UnitsPerDay <= 0 {
		return nil, fmt.Errorf("%w: units per day must be positive, got %d", ErrInvalidCorpus, cfg.UnitsPerDay)
	}
	if len(cfg.Books) == 0 {
		return nil, fmt.Errorf("%w: empty book list", ErrInvalidCorpus)
	}
	flat := make([]chapterRef, 0, 1024)
	for _, b := range cfg.Books {
		if b.Chapters <= 0 {
			return nil, fmt.Errorf("%w: book %q has %d chapters", ErrInvalidCorpus, b.Name, b.Chapters)
		}
		for ch := 1; ch <= b.Chapters; ch++ {
			flat = append(flat, chapterRef{book: b, chapter: ch})
		}
	}
	if len(flat)%cfg.UnitsPerDay != 0 {
		return nil, fmt.Errorf("%w: %d chapters not divisible by %d per day", ErrInvalidCorpus, len(flat), cfg.UnitsPerDay)
	}
	return &Engine{
		flat:         flat,
		epoch:        cfg.Epoch,
		epochDays:    cfg.Epoch.Days(),
		unitsPerDay:  cfg.UnitsPerDay,
		daysPerCycle: len(flat) / cfg.UnitsPerDay,
		media:        cfg.Media,
	}, nil
}

// MustEngine создаёт движок с расписанием по умолчанию и паникует при ошибке корпуса.
func MustEngine(media MediaLookup) *Engine {
	e, err := NewEngine(DefaultConfig(media))
	if err != nil {
		panic(err)
	}
	return e
}

// TotalChapters возвращает длину цикла в главах.
func (e *Engine) TotalChapters() int { return len(e.flat) }

// DaysPerCycle возвращает длину цикла в днях.
func (e *Engine) DaysPerCycle() int { return e.daysPerCycle }

// Epoch возвращает первый день цикла.
func (e *Engine) Epoch() domain.Date { return e.epoch }

// Resolve возвращает задание на дату.
func (e *Engine) Resolve(date domain.Date) (domain.DailyAssignment, error) {
	days := date.Days() - e.epochDays
	if days < 0 {
		return domain.DailyAssignment{}, fmt.Errorf("%w: %s is before %s", ErrInvalidRange, date, e.epoch)
	}
	dayInCycle := days % e.daysPerCycle
	start := dayInCycle * e.unitsPerDay

	entries := make([]domain.ScheduleEntry, 0, e.unitsPerDay)
	for _, ref := range e.flat[start : start+e.unitsPerDay] {
		entry := domain.ScheduleEntry{Book: ref.book, Chapter: ref.chapter}
		if e.media != nil {
			if id, ok := e.media.MediaID(ref.book.Name, ref.chapter); ok {
				id := id
				entry.MediaID = &id
			}
		}
		entries = append(entries, entry)
	}

	return domain.DailyAssignment{
		Date:        date,
		DayNumber:   days + 1,
		CycleNumber: days/e.daysPerCycle + 1,
		Entries:     entries,
	}, nil
}
