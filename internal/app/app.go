package app

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"nach-yomi-bot/internal/adapters/bot"
	"nach-yomi-bot/internal/adapters/filestore"
	"nach-yomi-bot/internal/adapters/hebcal"
	"nach-yomi-bot/internal/adapters/kolhalashon"
	"nach-yomi-bot/internal/adapters/publishguard"
	"nach-yomi-bot/internal/adapters/repo"
	"nach-yomi-bot/internal/adapters/sefaria"
	"nach-yomi-bot/internal/adapters/telegram"
	"nach-yomi-bot/internal/adapters/video"
	"nach-yomi-bot/internal/domain"
	"nach-yomi-bot/internal/infra/cache"
	"nach-yomi-bot/internal/infra/config"
	"nach-yomi-bot/internal/infra/db"
	"nach-yomi-bot/internal/infra/metrics"
	"nach-yomi-bot/internal/usecase/broadcast"
	"nach-yomi-bot/internal/usecase/message"
	"nach-yomi-bot/internal/usecase/schedule"
)

// App — собранные зависимости бота.
type App struct {
	Config    config.AppConfig
	Location  *time.Location
	BotAPI    *tgbotapi.BotAPI
	Sender    *telegram.Sender
	Offsets   domain.OffsetStore
	Broadcast *broadcast.Service
	Handler   *bot.Handler

	closers []func()
}

// Close освобождает соединения.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// Build проверяет конфигурацию и собирает зависимости.
func Build(ctx context.Context, cfg config.AppConfig, logger zerolog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	a := &App{Config: cfg, Location: loc}

	start := time.Now()
	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	metrics.ObserveNetworkRequest("telegram_bot", "get_me", "self", start, err)
	if err != nil {
		return nil, fmt.Errorf("создание бота: %w", err)
	}
	a.BotAPI = botAPI
	a.Sender = telegram.NewSender(botAPI, "telegram_bot")

	var (
		guard     domain.PublishGuard
		textCache domain.Cache
	)
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		a.closers = append(a.closers, func() { _ = client.Close() })
		start := time.Now()
		err := client.Ping(ctx).Err()
		metrics.ObserveNetworkRequest("redis", "ping", "redis", start, err)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("подключение к Redis: %w", err)
		}
		guard = publishguard.NewRedisGuard(client, loc, logger)
		textCache = cache.NewRedis(client)
	} else {
		dir := cfg.Aggregator.TrackerDir
		if dir == "" {
			dir = publishguard.DefaultDir()
		}
		guard = publishguard.NewFileGuard(dir, loc, logger)
	}

	var (
		subscribers domain.SubscriberStore = filestore.NewSubscribers(cfg.StateDir)
		marker      domain.BroadcastMarker = filestore.NewMarker(cfg.StateDir)
	)
	if textCache != nil {
		// с Redis отметку видят все хосты
		marker = cache.NewMarker(textCache)
	}
	if cfg.PGDSN != "" {
		pool, err := db.Connect(ctx, cfg.PGDSN)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("подключение к БД: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		pg := repo.NewPostgres(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("схема БД: %w", err)
		}
		subscribers, marker = pg, pg
	}
	a.Offsets = filestore.NewOffsets(cfg.StateDir)

	var aggregator domain.Sender
	if chat := cfg.AggregatorChat(); !chat.IsZero() {
		aggAPI, err := tgbotapi.NewBotAPI(cfg.Aggregator.Token)
		if err != nil {
			logger.Warn().Err(err).Msg("бот общего канала недоступен, публикация отключена")
		} else {
			aggregator = telegram.NewRetryingSender(telegram.NewSender(aggAPI, "telegram_aggregator"), logger)
		}
	}

	var converter domain.VideoConverter
	if cfg.Aggregator.VideoEnabled {
		ff := video.NewFFmpeg(logger)
		if err := ff.Available(ctx); err != nil {
			logger.Warn().Err(err).Msg("ffmpeg не найден, видео в общий канал не публикуется")
		} else {
			converter = ff
		}
	}

	var sefariaOpts []sefaria.Option
	if textCache != nil {
		sefariaOpts = append(sefariaOpts, sefaria.WithCache(textCache))
	}

	catalog := kolhalashon.New()
	engine, err := schedule.NewEngine(schedule.DefaultConfig(catalog))
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Broadcast = broadcast.NewService(broadcast.Deps{
		Engine:      engine,
		Resolver:    broadcast.NewResolver(sefaria.New(logger, sefariaOpts...), hebcal.New("", nil), logger),
		Builder:     message.Builder{Catalog: catalog, IncludeText: cfg.Broadcast.IncludeText, PageLimit: message.DefaultPageLimit},
		Sender:      a.Sender,
		Aggregator:  aggregator,
		Guard:       guard,
		Subscribers: subscribers,
		Marker:      marker,
		Video:       converter,
		Logger:      logger,
	}, broadcast.Targets{
		Channel:    cfg.Channel(),
		Aggregator: cfg.AggregatorChat(),
		Admin:      cfg.Admin(),
	}, broadcast.Options{
		Location:          loc,
		Window:            cfg.Window(),
		Force:             cfg.Broadcast.Force,
		AggregatorEnabled: aggregator != nil,
		VideoEnabled:      converter != nil,
		RecipientDelay:    cfg.Broadcast.RecipientDelay,
	})
	a.Handler = bot.NewHandler(a.Sender, subscribers, a.Broadcast, nil, logger)
	return a, nil
}
