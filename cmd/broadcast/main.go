package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"nach-yomi-bot/internal/app"
	"nach-yomi-bot/internal/infra/config"
	"nach-yomi-bot/internal/infra/log"
	"nach-yomi-bot/internal/infra/metrics"
)

func main() {
	cfg := config.Load()
	runID := uuid.NewString()
	logger := log.NewLogger(cfg.AppEnv, "broadcast").With().Str("run_id", runID).Logger()
	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("не удалось запустить рассылку")
	}
	defer a.Close()

	report, err := a.Broadcast.Run(ctx, time.Now())
	a.Broadcast.NotifyAdmin(ctx, report, err)

	outcome := "delivered"
	switch {
	case err != nil:
		outcome = "error"
	case report.Skipped != "":
		outcome = "skipped_" + report.Skipped
	case !report.Delivered():
		outcome = "nothing_delivered"
	}
	metrics.IncRun(outcome)
	if pushErr := metrics.Push(context.Background(), cfg.Metrics.PushgatewayURL, "nach_yomi_broadcast"); pushErr != nil {
		logger.Warn().Err(pushErr).Msg("не удалось отправить метрики в Pushgateway")
	}

	if err != nil {
		a.Close()
		logger.Fatal().Err(err).Msg("рассылка завершилась ошибкой")
	}
	logger.Info().Str("outcome", outcome).Str("summary", report.Details()).Msg("готово")
}
