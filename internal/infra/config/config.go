package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"nach-yomi-bot/internal/domain"
	"nach-yomi-bot/internal/usecase/schedule"
)

// Ошибки проверки конфигурации.
var (
	ErrMissingToken = errors.New("TELEGRAM_BOT_TOKEN is required")
	ErrNoTarget     = errors.New("at least one of TELEGRAM_CHANNEL_ID or ADMIN_CHAT_ID is required")
)

// AppConfig описывает конфигурацию сервисов.
type AppConfig struct {
	AppEnv string `envconfig:"APP_ENV" default:"prod"`
	TZName string `envconfig:"TZ_NAME" default:"Asia/Jerusalem"`
	Port   int    `envconfig:"PORT" default:"8080"`

	Telegram struct {
		Token         string `envconfig:"TELEGRAM_BOT_TOKEN"`
		ChannelID     string `envconfig:"TELEGRAM_CHANNEL_ID"`
		AdminChatID   string `envconfig:"ADMIN_CHAT_ID"`
		TestChatID    string `envconfig:"TELEGRAM_CHAT_ID"`
		WebhookURL    string `envconfig:"TG_WEBHOOK_URL"`
		WebhookSecret string `envconfig:"TG_WEBHOOK_SECRET"`
	} `envconfig:""`

	Aggregator struct {
		ChannelID      string `envconfig:"TORAH_YOMI_CHANNEL_ID"`
		Token          string `envconfig:"TORAH_YOMI_CHANNEL_BOT_TOKEN"`
		PublishEnabled bool   `envconfig:"TORAH_YOMI_PUBLISH_ENABLED" default:"true"`
		VideoEnabled   bool   `envconfig:"TORAH_YOMI_VIDEO_ENABLED" default:"false"`
		TrackerDir     string `envconfig:"TORAH_YOMI_TRACKER_DIR"`
	} `envconfig:""`

	Broadcast struct {
		Force          bool          `envconfig:"FORCE_BROADCAST" default:"false"`
		WindowStart    int           `envconfig:"BROADCAST_WINDOW_START" default:"0"`
		WindowEnd      int           `envconfig:"BROADCAST_WINDOW_END" default:"6"`
		IncludeText    bool          `envconfig:"BROADCAST_INCLUDE_TEXT" default:"false"`
		RecipientDelay time.Duration `envconfig:"RECIPIENT_DELAY" default:"100ms"`
	} `envconfig:""`

	StateDir string `envconfig:"STATE_DIR" default:".github/state"`

	PGDSN     string `envconfig:"PG_DSN"`
	RedisAddr string `envconfig:"REDIS_ADDR"`

	Metrics struct {
		Addr           string `envconfig:"METRICS_ADDR" default:":9090"`
		PushgatewayURL string `envconfig:"PUSHGATEWAY_URL"`
	} `envconfig:""`
}

// Parse читает .env (если есть) и окружение.
func Parse() (AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return AppConfig{}, fmt.Errorf("чтение .env: %w", err)
	}
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// Load загружает конфиг из окружения.
func Load() AppConfig {
	cfg, err := Parse()
	if err != nil {
		log.Fatalf("не удалось загрузить конфиг: %v", err)
	}
	return cfg
}

// Validate проверяет обязательные параметры рассылки.
func (c AppConfig) Validate() error {
	if c.Telegram.Token == "" {
		return ErrMissingToken
	}
	if c.Channel().IsZero() && c.Admin().IsZero() {
		return ErrNoTarget
	}
	if !validHour(c.Broadcast.WindowStart) || !validHour(c.Broadcast.WindowEnd) {
		return fmt.Errorf("broadcast window hours must be within 0..23, got %d..%d", c.Broadcast.WindowStart, c.Broadcast.WindowEnd)
	}
	if _, err := schedule.LoadLocation(c.TZName); err != nil {
		return err
	}
	return nil
}

func validHour(h int) bool { return h >= 0 && h <= 23 }

// Channel — основной канал рассылки.
func (c AppConfig) Channel() domain.ChatRef {
	ref, _ := domain.ParseChatRef(c.Telegram.ChannelID)
	return ref
}

// Admin — чат администратора. ADMIN_CHAT_ID приоритетнее TELEGRAM_CHAT_ID.
// Учитываются только числовые идентификаторы.
func (c AppConfig) Admin() domain.ChatRef {
	for _, raw := range []string{c.Telegram.AdminChatID, c.Telegram.TestChatID} {
		if ref, ok := domain.ParseChatRef(raw); ok && ref.ID != 0 {
			return ref
		}
	}
	return domain.ChatRef{}
}

// AggregatorChat — общий канал. Пустой, если публикация выключена или нет токена.
func (c AppConfig) AggregatorChat() domain.ChatRef {
	if !c.Aggregator.PublishEnabled || c.Aggregator.Token == "" {
		return domain.ChatRef{}
	}
	ref, _ := domain.ParseChatRef(c.Aggregator.ChannelID)
	return ref
}

// Location возвращает зону рассылки.
func (c AppConfig) Location() (*time.Location, error) {
	return schedule.LoadLocation(c.TZName)
}

// Window возвращает окно рассылки.
func (c AppConfig) Window() schedule.Window {
	return schedule.Window{StartHour: c.Broadcast.WindowStart, EndHour: c.Broadcast.WindowEnd}
}
