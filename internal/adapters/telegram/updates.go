package telegram

import (
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"nach-yomi-bot/internal/infra/metrics"
)

// UpdatesLimit — максимум апдейтов за один вызов getUpdates.
const UpdatesLimit = 100

// Commands — меню команд бота.
var Commands = []tgbotapi.BotCommand{
	{Command: "start", Description: "Subscribe and get today's learning"},
	{Command: "today", Description: "Today's chapters with audio and video"},
	{Command: "audio", Description: "Today's audio shiurim"},
	{Command: "video", Description: "Today's video shiurim"},
	{Command: "text", Description: "Today's chapter text"},
	{Command: "stop", Description: "Unsubscribe from daily messages"},
	{Command: "help", Description: "How to use the bot"},
}

// Updates забирает апдейты после lastUpdateID без ожидания.
func Updates(api API, lastUpdateID int) ([]tgbotapi.Update, error) {
	cfg := tgbotapi.UpdateConfig{Offset: lastUpdateID + 1, Limit: UpdatesLimit, Timeout: 0}
	start := time.Now()
	updates, err := api.GetUpdates(cfg)
	metrics.ObserveNetworkRequest("telegram_bot", "get_updates", "self", start, err)
	return updates, err
}

// LastUpdateID возвращает наибольший update_id или prev, если апдейтов нет.
func LastUpdateID(updates []tgbotapi.Update, prev int) int {
	last := prev
	for _, u := range updates {
		if u.UpdateID > last {
			last = u.UpdateID
		}
	}
	return last
}

// SetCommands публикует меню команд.
func SetCommands(api API) error {
	start := time.Now()
	_, err := api.Request(tgbotapi.NewSetMyCommands(Commands...))
	metrics.ObserveNetworkRequest("telegram_bot", "set_my_commands", "self", start, err)
	return err
}
