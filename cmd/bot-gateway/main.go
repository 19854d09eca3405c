package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"

	"nach-yomi-bot/internal/adapters/telegram"
	"nach-yomi-bot/internal/app"
	"nach-yomi-bot/internal/infra/config"
	httpinfra "nach-yomi-bot/internal/infra/http"
	"nach-yomi-bot/internal/infra/log"
	"nach-yomi-bot/internal/infra/metrics"
)

func main() {
	cfg := config.Load()
	logger := log.NewLogger(cfg.AppEnv, "bot-gateway")
	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("не удалось запустить бот-гейтвей")
	}
	defer a.Close()

	if err := telegram.SetCommands(a.BotAPI); err != nil {
		logger.Warn().Err(err).Msg("не удалось обновить меню команд")
	}
	if cfg.Telegram.WebhookURL != "" {
		wh, err := tgbotapi.NewWebhook(cfg.Telegram.WebhookURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("некорректный TG_WEBHOOK_URL")
		}
		start := time.Now()
		_, err = a.BotAPI.Request(wh)
		metrics.ObserveNetworkRequest("telegram_bot", "set_webhook", "self", start, err)
		if err != nil {
			logger.Error().Err(err).Msg("не удалось установить вебхук")
		}
	}

	srv := httpinfra.NewServer(logger)
	srv.Router.With(httpinfra.WebhookSecretMiddleware(cfg.Telegram.WebhookSecret)).Post("/bot/webhook", func(w http.ResponseWriter, r *http.Request) {
		var update tgbotapi.Update
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		// Telegram повторяет апдейт при не-2xx, поэтому ошибки команды не пробрасываем
		_ = a.Handler.HandleUpdate(r.Context(), update)
		w.WriteHeader(http.StatusOK)
	})

	go func() {
		if err := srv.Start(":" + strconv.Itoa(cfg.Port)); err != nil {
			logger.Error().Err(err).Msg("HTTP сервер остановлен")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("остановка бота")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
