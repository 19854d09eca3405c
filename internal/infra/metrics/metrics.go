package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/rs/zerolog"
)

var (
	NetworkRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "network_request_duration_seconds",
		Help:    "Длительность сетевых запросов",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 15, 20, 30, 45, 60, 90, 120, 180, 300},
	}, []string{"component", "operation", "target", "status"})

	NetworkRequestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "network_request_total",
		Help: "Количество сетевых запросов",
	}, []string{"component", "operation", "target", "status"})

	DeliveriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "broadcast_deliveries_total",
		Help: "Отправленные единицы рассылки по получателю, виду и результату",
	}, []string{"target", "kind", "status"})

	GuardDecisionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "publish_guard_decisions_total",
		Help: "Решения защиты от повторной публикации",
	}, []string{"content_type", "decision"})

	RunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "broadcast_runs_total",
		Help: "Запуски рассылки по итогу",
	}, []string{"outcome"})

	ScheduleDay = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "schedule_day_number",
		Help: "Номер дня текущего цикла",
	})

	CommandsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_commands_total",
		Help: "Обработанные команды бота",
	}, []string{"command"})
)

func collectors() []prometheus.Collector {
	return []prometheus.Collector{
		NetworkRequestDuration,
		NetworkRequestTotal,
		DeliveriesTotal,
		GuardDecisionsTotal,
		RunsTotal,
		ScheduleDay,
		CommandsTotal,
	}
}

// MustRegister регистрирует метрики.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(collectors()...)
}

// StartServer запускает HTTP сервер с эндпоинтом /metrics.
func StartServer(ctx context.Context, logger zerolog.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	shutdownCtx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-ctx.Done():
		case <-shutdownCtx.Done():
		}
		shutdownTimeout, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer timeoutCancel()
		if err := srv.Shutdown(shutdownTimeout); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: graceful shutdown failed")
		}
	}()

	go func() {
		logger.Info().Str("addr", addr).Msg("metrics: server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: server stopped")
		}
		cancel()
	}()
}

// Push отправляет метрики разового запуска в Pushgateway. Пустой url ничего не делает.
func Push(ctx context.Context, url, job string) error {
	if url == "" {
		return nil
	}
	pusher := push.New(url, job)
	for _, c := range collectors() {
		pusher = pusher.Collector(c)
	}
	return pusher.PushContext(ctx)
}

// ObserveNetworkRequest записывает длительность и статус сетевого запроса.
func ObserveNetworkRequest(component, operation, target string, start time.Time, err error) {
	if component == "" {
		component = "unknown"
	}
	if operation == "" {
		operation = "unknown"
	}
	if target == "" {
		target = "unknown"
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	duration := time.Since(start).Seconds()
	NetworkRequestDuration.WithLabelValues(component, operation, target, status).Observe(duration)
	NetworkRequestTotal.WithLabelValues(component, operation, target, status).Inc()
}

// ObserveDelivery учитывает одну единицу рассылки.
func ObserveDelivery(target, kind, status string) {
	DeliveriesTotal.WithLabelValues(target, kind, status).Inc()
}

// ObserveGuardDecision учитывает решение защиты от дублей: reserved, duplicate или error.
func ObserveGuardDecision(contentType, decision string) {
	GuardDecisionsTotal.WithLabelValues(contentType, decision).Inc()
}

// IncRun учитывает завершённый запуск рассылки.
func IncRun(outcome string) {
	RunsTotal.WithLabelValues(outcome).Inc()
}

// SetScheduleDay публикует номер текущего дня цикла.
func SetScheduleDay(day int) {
	ScheduleDay.Set(float64(day))
}

// IncCommand учитывает команду бота.
func IncCommand(command string) {
	CommandsTotal.WithLabelValues(command).Inc()
}
