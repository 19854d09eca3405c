package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"nach-yomi-bot/internal/adapters/telegram"
	"nach-yomi-bot/internal/app"
	"nach-yomi-bot/internal/infra/config"
	"nach-yomi-bot/internal/infra/log"
	"nach-yomi-bot/internal/infra/metrics"
)

func main() {
	cfg := config.Load()
	logger := log.NewLogger(cfg.AppEnv, "poll-commands")
	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("не удалось запустить обработку команд")
	}
	defer a.Close()

	last, err := a.Offsets.Load(ctx)
	if err != nil {
		a.Close()
		logger.Fatal().Err(err).Msg("не удалось прочитать смещение")
	}
	updates, err := telegram.Updates(a.BotAPI, last)
	if err != nil {
		a.Close()
		logger.Fatal().Err(err).Msg("getUpdates завершился ошибкой")
	}
	if len(updates) == 0 {
		logger.Info().Int("offset", last).Msg("новых команд нет")
		return
	}

	for _, upd := range updates {
		_ = a.Handler.HandleUpdate(ctx, upd)
	}
	next := telegram.LastUpdateID(updates, last)
	if err := a.Offsets.Save(ctx, next); err != nil {
		a.Close()
		logger.Fatal().Err(err).Msg("не удалось сохранить смещение")
	}
	logger.Info().Int("updates", len(updates)).Int("offset", next).Msg("команды обработаны")

	if err := metrics.Push(context.Background(), cfg.Metrics.PushgatewayURL, "nach_yomi_poll_commands"); err != nil {
		logger.Warn().Err(err).Msg("не удалось отправить метрики в Pushgateway")
	}
}
