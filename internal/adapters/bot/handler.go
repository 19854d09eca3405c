package bot

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"nach-yomi-bot/internal/domain"
	"nach-yomi-bot/internal/infra/metrics"
	"nach-yomi-bot/internal/usecase/commands"
	"nach-yomi-bot/internal/usecase/message"
)

// TodaySender отправляет материал дня по запросу.
type TodaySender interface {
	SendToday(ctx context.Context, chat domain.ChatRef, part message.Part, now time.Time) error
}

// Handler обрабатывает команды бота из вебхука или getUpdates.
type Handler struct {
	sender      domain.Sender
	subscribers domain.SubscriberStore
	today       TodaySender
	limiter     *commands.Limiter
	log         zerolog.Logger
	now         func() time.Time
}

// NewHandler создаёт обработчик.
func NewHandler(sender domain.Sender, subscribers domain.SubscriberStore, today TodaySender, limiter *commands.Limiter, log zerolog.Logger) *Handler {
	if limiter == nil {
		limiter = commands.NewLimiter(commands.DefaultPerWindow, commands.DefaultWindow)
	}
	return &Handler{
		sender:      sender,
		subscribers: subscribers,
		today:       today,
		limiter:     limiter,
		log:         log,
		now:         time.Now,
	}
}

// HandleUpdate обрабатывает входящий апдейт. Ошибки уже показаны пользователю
// и возвращаются только для логов и тестов.
func (h *Handler) HandleUpdate(ctx context.Context, upd tgbotapi.Update) error {
	msg := upd.Message
	if msg == nil || msg.Chat == nil || msg.Text == "" {
		return nil
	}
	cmd, ok := commands.Parse(msg.Text)
	if !ok {
		return nil
	}
	chatID := msg.Chat.ID
	now := h.now()
	metrics.IncCommand(cmd.Name)

	action := commands.Dispatch(cmd, commands.Context{Limited: !h.limiter.Allow(chatID, now)})
	if err := h.execute(ctx, chatID, action, now); err != nil {
		h.log.Error().Err(err).Int64("chat", chatID).Str("command", cmd.Name).Msg("команда не выполнена")
		h.reply(ctx, chatID, message.ErrorText)
		return err
	}
	return nil
}

func (h *Handler) execute(ctx context.Context, chatID int64, action commands.Action, now time.Time) error {
	chat := domain.ChatRef{ID: chatID}
	switch action.Kind {
	case commands.Start:
		added, err := h.subscribers.Add(ctx, chatID)
		if err != nil {
			return fmt.Errorf("подписка: %w", err)
		}
		if added {
			h.log.Info().Int64("chat", chatID).Msg("новый подписчик")
		}
		h.reply(ctx, chatID, action.Text)
		return h.today.SendToday(ctx, chat, action.Part, now)
	case commands.Today:
		return h.today.SendToday(ctx, chat, action.Part, now)
	case commands.Stop:
		removed, err := h.subscribers.Remove(ctx, chatID)
		if err != nil {
			return fmt.Errorf("отписка: %w", err)
		}
		if !removed {
			h.reply(ctx, chatID, message.NotSubscribed)
			return nil
		}
		h.log.Info().Int64("chat", chatID).Msg("подписчик отписался")
		h.reply(ctx, chatID, action.Text)
		return nil
	default:
		h.reply(ctx, chatID, action.Text)
		return nil
	}
}

func (h *Handler) reply(ctx context.Context, chatID int64, text string) {
	unit := domain.Unit{Kind: domain.UnitText, Key: "reply", Text: text, Markdown: true, DisablePreview: true}
	if err := h.sender.Send(ctx, domain.ChatRef{ID: chatID}, unit); err != nil {
		h.log.Error().Err(err).Int64("chat", chatID).Msg("не удалось отправить сообщение")
	}
}
