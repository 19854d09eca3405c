package broadcast

import (
	"context"

	"github.com/rs/zerolog"

	"nach-yomi-bot/internal/domain"
)

// Resolver дополняет задание дня текстами глав и еврейской датой.
// Ошибки провайдеров не прерывают рассылку: недостающие поля остаются пустыми.
type Resolver struct {
	texts    domain.TextProvider
	calendar domain.CalendarProvider
	logger   zerolog.Logger
}

// NewResolver создаёт резолвер. Любой провайдер может быть nil.
func NewResolver(texts domain.TextProvider, calendar domain.CalendarProvider, logger zerolog.Logger) *Resolver {
	return &Resolver{texts: texts, calendar: calendar, logger: logger}
}

// Reading собирает данные дня. withTexts включает загрузку текстов глав.
func (r *Resolver) Reading(ctx context.Context, a domain.DailyAssignment, withTexts, withDate bool) domain.Reading {
	reading := domain.Reading{Assignment: a, Texts: make(map[string]domain.ChapterText)}

	if withDate && r.calendar != nil {
		hebrew, err := r.calendar.HebrewDate(ctx, a.Date)
		if err != nil {
			r.logger.Warn().Err(err).Str("date", a.Date.String()).Msg("еврейская дата недоступна, продолжаем без неё")
		} else {
			reading.HebrewDate = hebrew
		}
	}

	if withTexts && r.texts != nil {
		for _, e := range a.Entries {
			text, err := r.texts.Chapter(ctx, e.Book.Name, e.Chapter)
			if err != nil {
				r.logger.Warn().Err(err).Str("ref", e.Ref()).Msg("текст главы недоступен, продолжаем без него")
				continue
			}
			reading.Texts[e.Ref()] = text
		}
	}
	return reading
}
