package telegram

import (
	"context"
	"errors"
	"net"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"nach-yomi-bot/internal/domain"
)

// Параметры повторов по умолчанию.
const (
	DefaultAttempts  = 3
	DefaultBaseDelay = time.Second
)

// RetryingSender повторяет отправку только когда ошибка доказывает,
// что сообщение не было доставлено.
type RetryingSender struct {
	next      domain.Sender
	logger    zerolog.Logger
	attempts  int
	baseDelay time.Duration
	sleep     func(ctx context.Context, d time.Duration) error
}

// NewRetryingSender оборачивает next повторами.
func NewRetryingSender(next domain.Sender, logger zerolog.Logger) *RetryingSender {
	return &RetryingSender{
		next:      next,
		logger:    logger,
		attempts:  DefaultAttempts,
		baseDelay: DefaultBaseDelay,
		sleep:     sleepContext,
	}
}

// WithSleep подменяет ожидание между попытками.
func (r *RetryingSender) WithSleep(sleep func(ctx context.Context, d time.Duration) error) *RetryingSender {
	r.sleep = sleep
	return r
}

// Send отправляет unit, повторяя безопасные ошибки с линейной задержкой.
func (r *RetryingSender) Send(ctx context.Context, chat domain.ChatRef, unit domain.Unit) error {
	var err error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		err = r.next.Send(ctx, chat, unit)
		if err == nil {
			return nil
		}
		wait, ok := RetryDelay(err, attempt, r.baseDelay)
		if !ok || attempt == r.attempts {
			return err
		}
		r.logger.Warn().Err(err).Str("chat", chat.String()).Str("unit", unit.Key).Int("attempt", attempt).Dur("wait", wait).Msg("повторяем отправку")
		if sleepErr := r.sleep(ctx, wait); sleepErr != nil {
			return err
		}
	}
	return err
}

// RetryDelay решает, можно ли повторить отправку после err, и сколько ждать.
// Повторяются только 429, 5xx с JSON-ответом Bot API, ошибки DNS и отказ в соединении:
// в этих случаях Telegram точно не принял сообщение. Таймауты и 400 не повторяются.
// Не-JSON ответ прокси тоже не повторяется: по нему 502 не отличить от 504.
func RetryDelay(err error, attempt int, base time.Duration) (time.Duration, bool) {
	linear := base * time.Duration(attempt)

	if errors.Is(err, ErrUnreadableResponse) {
		return 0, false
	}

	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		return apiDelay(*apiErr, linear)
	}
	var apiVal tgbotapi.Error
	if errors.As(err, &apiVal) {
		return apiDelay(apiVal, linear)
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return linear, true
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return linear, true
	}
	return 0, false
}

func apiDelay(e tgbotapi.Error, linear time.Duration) (time.Duration, bool) {
	switch {
	case e.Code == 429:
		if e.RetryAfter > 0 {
			return time.Duration(e.RetryAfter) * time.Second, true
		}
		return linear, true
	case e.Code >= 500:
		return linear, true
	default:
		return 0, false
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var _ domain.Sender = (*RetryingSender)(nil)
