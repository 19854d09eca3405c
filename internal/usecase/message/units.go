package message

import (
	"fmt"

	"nach-yomi-bot/internal/domain"
)

// Part выбирает, какие единицы дня нужны получателю.
type Part int

const (
	PartAll Part = iota
	PartAudio
	PartVideo
	PartText
)

// Builder собирает единицы доставки для дня.
type Builder struct {
	Catalog domain.MediaCatalog
	// IncludeText добавляет страницы с текстом глав в полную рассылку.
	IncludeText bool
	PageLimit   int
}

// MediaKeyboard — кнопки под аудио главы.
func (b Builder) MediaKeyboard(e domain.ScheduleEntry) domain.Keyboard {
	return domain.Keyboard{{
		{Text: "🌐 Full Shiur", URL: b.Catalog.ShiurURL(e.Book.Name, e.MediaID)},
		{Text: "📖 Sefaria", URL: b.Catalog.TextURL(e.Book.Name, e.Chapter)},
	}}
}

// FullKeyboard — кнопки под последним сообщением дня.
func (b Builder) FullKeyboard(e domain.ScheduleEntry) domain.Keyboard {
	return domain.Keyboard{
		{
			{Text: "🎬 Full Shiur", URL: b.Catalog.ShiurURL(e.Book.Name, e.MediaID)},
			{Text: "📖 Sefaria", URL: b.Catalog.TextURL(e.Book.Name, e.Chapter)},
		},
		{{Text: "📤 Share", SwitchQuery: "Nach Yomi: " + e.Ref()}},
	}
}

// Daily возвращает единицы дня в порядке отправки: заголовок, затем по каждой главе
// аудио, ссылка на видео и, если нужно, страницы текста.
func (b Builder) Daily(r domain.Reading, part Part) []domain.Unit {
	entries := r.Assignment.Entries
	units := make([]domain.Unit, 0, 1+len(entries)*3)

	if part == PartAll {
		units = append(units, domain.Unit{
			Kind:     domain.UnitText,
			Key:      "header",
			Text:     DayHeader(r),
			Markdown: true,
		})
	}

	for i, e := range entries {
		last := i == len(entries)-1

		if (part == PartAll || part == PartAudio) && e.MediaID != nil {
			units = append(units, b.audioUnit(e))
		}

		if part == PartAll || part == PartVideo {
			link := domain.Unit{
				Kind:           domain.UnitText,
				Key:            "video:" + e.Ref(),
				Text:           VideoLinkText(e, b.Catalog.ShiurURL(e.Book.Name, e.MediaID)),
				Markdown:       true,
				DisablePreview: true,
			}
			if last {
				link.Keyboard = b.FullKeyboard(e)
			}
			units = append(units, link)
		}

		if part == PartText || (part == PartAll && b.IncludeText) {
			units = append(units, b.textUnits(e, r.Texts)...)
		}
	}
	return units
}

func (b Builder) audioUnit(e domain.ScheduleEntry) domain.Unit {
	return domain.Unit{
		Kind:      domain.UnitAudio,
		Key:       "audio:" + e.Ref(),
		MediaURL:  b.Catalog.AudioURL(*e.MediaID),
		Title:     e.Ref(),
		Performer: Performer,
		Text:      MediaCaption(e, domain.UnitAudio),
		Markdown:  true,
		Keyboard:  b.MediaKeyboard(e),
	}
}

func (b Builder) textUnits(e domain.ScheduleEntry, texts map[string]domain.ChapterText) []domain.Unit {
	t, ok := texts[e.Ref()]
	if !ok || (len(t.Hebrew) == 0 && len(t.English) == 0) {
		return nil
	}
	pages := ChapterPages(e, t, b.PageLimit)
	units := make([]domain.Unit, 0, len(pages))
	for i, page := range pages {
		units = append(units, domain.Unit{
			Kind:           domain.UnitText,
			Key:            fmt.Sprintf("text:%s:%d", e.Ref(), i+1),
			Text:           page,
			DisablePreview: true,
		})
	}
	return units
}
