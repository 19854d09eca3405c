package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"nach-yomi-bot/internal/domain"
	"nach-yomi-bot/internal/infra/metrics"
)

// API — часть tgbotapi.BotAPI, которой пользуется адаптер.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error)
}

// ErrUnreadableResponse — ответ пришёл не в JSON (HTML от прокси при 502/504).
// Код статуса tgbotapi при этом теряет.
var ErrUnreadableResponse = errors.New("telegram: unreadable response")

// Sender отправляет единицы контента через Bot API.
type Sender struct {
	api       API
	component string
}

// NewSender создаёт отправителя. component попадает в метрики сетевых запросов.
func NewSender(api API, component string) *Sender {
	if component == "" {
		component = "telegram_bot"
	}
	return &Sender{api: api, component: component}
}

// Send отправляет одну единицу в чат.
func (s *Sender) Send(ctx context.Context, chat domain.ChatRef, unit domain.Unit) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg, err := Build(chat, unit)
	if err != nil {
		return err
	}
	start := time.Now()
	_, err = s.api.Send(msg)
	metrics.ObserveNetworkRequest(s.component, "send_"+string(unit.Kind), chat.String(), start, err)
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return fmt.Errorf("%w: %v", ErrUnreadableResponse, err)
	}
	return err
}

// Build переводит единицу контента в запрос Bot API.
func Build(chat domain.ChatRef, unit domain.Unit) (tgbotapi.Chattable, error) {
	base := tgbotapi.BaseChat{ChatID: chat.ID, ChannelUsername: chat.Username}
	if markup := Markup(unit.Keyboard); markup != nil {
		base.ReplyMarkup = *markup
	}
	parseMode := ""
	if unit.Markdown {
		parseMode = tgbotapi.ModeMarkdown
	}

	switch unit.Kind {
	case domain.UnitText:
		return tgbotapi.MessageConfig{
			BaseChat:              base,
			Text:                  unit.Text,
			ParseMode:             parseMode,
			DisableWebPagePreview: unit.DisablePreview,
		}, nil
	case domain.UnitAudio:
		if unit.MediaURL == "" {
			return nil, fmt.Errorf("audio unit %q without url", unit.Key)
		}
		return tgbotapi.AudioConfig{
			BaseFile:  tgbotapi.BaseFile{BaseChat: base, File: tgbotapi.FileURL(unit.MediaURL)},
			Caption:   unit.Text,
			ParseMode: parseMode,
			Title:     unit.Title,
			Performer: unit.Performer,
		}, nil
	case domain.UnitVideo:
		var file tgbotapi.RequestFileData
		switch {
		case unit.FilePath != "":
			file = tgbotapi.FilePath(unit.FilePath)
		case unit.MediaURL != "":
			file = tgbotapi.FileURL(unit.MediaURL)
		default:
			return nil, fmt.Errorf("video unit %q without file", unit.Key)
		}
		return tgbotapi.VideoConfig{
			BaseFile:          tgbotapi.BaseFile{BaseChat: base, File: file},
			Caption:           unit.Text,
			ParseMode:         parseMode,
			SupportsStreaming: true,
		}, nil
	default:
		return nil, fmt.Errorf("unknown unit kind %q", unit.Kind)
	}
}

// Markup строит inline-клавиатуру. Пустая клавиатура даёт nil.
func Markup(kb domain.Keyboard) *tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, row := range kb {
		var buttons []tgbotapi.InlineKeyboardButton
		for _, b := range row {
			switch {
			case b.URL != "":
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonURL(b.Text, b.URL))
			case b.SwitchQuery != "":
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonSwitch(b.Text, b.SwitchQuery))
			}
		}
		if len(buttons) > 0 {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(buttons...))
		}
	}
	if len(rows) == 0 {
		return nil
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &markup
}

var _ domain.Sender = (*Sender)(nil)
