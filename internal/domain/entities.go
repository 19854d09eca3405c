package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Book описывает книгу корпуса и количество глав в ней.
type Book struct {
	Name       string
	HebrewName string
	Chapters   int
}

// Date — календарная дата без времени и часового пояса.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf возвращает календарную дату момента t в зоне loc.
func DateOf(t time.Time, loc *time.Location) Date {
	if loc != nil {
		t = t.In(loc)
	}
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Days возвращает число суток от 1970-01-01. Считается по календарю, а не по длительности.
func (d Date) Days() int {
	return int(time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}

// AddDays сдвигает дату на n календарных дней.
func (d Date) AddDays(n int) Date {
	return DateOf(time.Date(d.Year, d.Month, d.Day+n, 0, 0, 0, 0, time.UTC), time.UTC)
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// ScheduleEntry — одна глава дневного задания.
type ScheduleEntry struct {
	Book    Book
	Chapter int
	// MediaID — идентификатор шиура, nil если запись отсутствует в каталоге.
	MediaID *int64
}

// Ref возвращает ссылку вида "Isaiah 3".
func (e ScheduleEntry) Ref() string {
	return e.Book.Name + " " + strconv.Itoa(e.Chapter)
}

// DailyAssignment — задание на конкретный день цикла.
type DailyAssignment struct {
	Date        Date
	DayNumber   int
	CycleNumber int
	Entries     []ScheduleEntry
}

// ChapterText содержит текст главы на иврите и английском.
type ChapterText struct {
	Ref         string
	HebrewTitle string
	Hebrew      []string
	English     []string
}

// Reading — задание дня вместе с дополнительными данными провайдеров.
// Тексты и еврейская дата необязательны: при ошибке провайдера поля пустые.
type Reading struct {
	Assignment DailyAssignment
	HebrewDate string
	Texts      map[string]ChapterText
}

// ChatRef адресует чат: числовой ID или @username канала.
type ChatRef struct {
	ID       int64
	Username string
}

// ParseChatRef разбирает идентификатор чата из конфигурации.
func ParseChatRef(raw string) (ChatRef, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ChatRef{}, false
	}
	if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return ChatRef{ID: id}, true
	}
	if !strings.HasPrefix(raw, "@") {
		raw = "@" + raw
	}
	return ChatRef{Username: raw}, true
}

// IsZero сообщает, что чат не задан.
func (c ChatRef) IsZero() bool {
	return c.ID == 0 && c.Username == ""
}

func (c ChatRef) String() string {
	if c.Username != "" {
		return c.Username
	}
	return strconv.FormatInt(c.ID, 10)
}

// UnitKind — вид доставляемой единицы.
type UnitKind string

const (
	UnitText  UnitKind = "text"
	UnitAudio UnitKind = "audio"
	UnitVideo UnitKind = "video"
)

// Button — кнопка inline-клавиатуры. Задан либо URL, либо SwitchQuery.
type Button struct {
	Text        string
	URL         string
	SwitchQuery string
}

// Keyboard — строки inline-кнопок.
type Keyboard [][]Button

// Unit — одна независимая доставляемая единица: текст, аудио или видео.
type Unit struct {
	Kind UnitKind
	// Key различает единицы при проверке дублей.
	Key       string
	Text      string
	MediaURL  string
	FilePath  string
	Title     string
	Performer string
	Markdown  bool
	// DisablePreview отключает превью ссылок в текстовых сообщениях.
	DisablePreview bool
	Keyboard       Keyboard
}
