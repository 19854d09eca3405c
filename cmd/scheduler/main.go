package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"nach-yomi-bot/internal/app"
	"nach-yomi-bot/internal/infra/config"
	"nach-yomi-bot/internal/infra/log"
	"nach-yomi-bot/internal/infra/metrics"
)

func main() {
	cfg := config.Load()
	// FORCE_BROADCAST в долгоживущем процессе отправлял бы рассылку каждую минуту
	cfg.Broadcast.Force = false
	logger := log.NewLogger(cfg.AppEnv, "scheduler")
	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("scheduler: не удалось запуститься")
	}
	defer a.Close()

	metrics.StartServer(ctx, logger, cfg.Metrics.Addr)

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		tick(ctx, a, logger)
		select {
		case <-ctx.Done():
			logger.Info().Msg("scheduler: остановка")
			return
		case <-ticker.C:
		}
	}
}

// tick запускает рассылку. Ворота окна и отметки делают повторные тики холостыми.
func tick(ctx context.Context, a *app.App, logger zerolog.Logger) {
	runLog := logger.With().Str("run_id", uuid.NewString()).Logger()
	report, err := a.Broadcast.Run(ctx, time.Now())
	if err != nil {
		runLog.Error().Err(err).Msg("scheduler: рассылка завершилась ошибкой")
		metrics.IncRun("error")
		return
	}
	if report.Skipped != "" {
		return
	}
	outcome := "delivered"
	if !report.Delivered() {
		outcome = "nothing_delivered"
	}
	metrics.IncRun(outcome)
	runLog.Info().Str("outcome", outcome).Str("summary", report.Details()).Msg("scheduler: рассылка выполнена")
	a.Broadcast.NotifyAdmin(ctx, report, nil)
}
