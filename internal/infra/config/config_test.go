package config

import (
	"errors"
	"os"
	"testing"
	"time"

	"nach-yomi-bot/internal/domain"
	"nach-yomi-bot/internal/usecase/schedule"
)

func TestParseDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_CHANNEL_ID", "@nachyomi")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.TZName != schedule.DefaultTimezone || cfg.StateDir != ".github/state" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.Window() != (schedule.Window{StartHour: 0, EndHour: 6}) {
		t.Fatalf("unexpected window %+v", cfg.Window())
	}
	if cfg.Broadcast.RecipientDelay != 100*time.Millisecond || cfg.Broadcast.Force || cfg.Broadcast.IncludeText {
		t.Fatalf("unexpected broadcast defaults %+v", cfg.Broadcast)
	}
	if !cfg.Aggregator.PublishEnabled || cfg.Aggregator.VideoEnabled {
		t.Fatalf("unexpected aggregator defaults %+v", cfg.Aggregator)
	}
	if cfg.Channel() != (domain.ChatRef{Username: "@nachyomi"}) {
		t.Fatalf("unexpected channel %+v", cfg.Channel())
	}
}

func TestValidate(t *testing.T) {
	var cfg AppConfig
	cfg.TZName = schedule.DefaultTimezone
	if err := cfg.Validate(); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
	cfg.Telegram.Token = "x"
	if err := cfg.Validate(); !errors.Is(err, ErrNoTarget) {
		t.Fatalf("expected ErrNoTarget, got %v", err)
	}
	cfg.Telegram.TestChatID = "42"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("admin alone is a valid target: %v", err)
	}
	cfg.Broadcast.WindowEnd = 24
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected window error")
	}
	cfg.Broadcast.WindowEnd = 6
	cfg.TZName = "Mars/Olympus"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected timezone error")
	}
}

func TestAdminAndAggregator(t *testing.T) {
	var cfg AppConfig
	cfg.Telegram.TestChatID = "42"
	if cfg.Admin().ID != 42 {
		t.Fatalf("TELEGRAM_CHAT_ID must be the admin fallback")
	}
	cfg.Telegram.AdminChatID = "7"
	if cfg.Admin().ID != 7 {
		t.Fatalf("ADMIN_CHAT_ID must win")
	}
	cfg.Telegram.AdminChatID = "@someone"
	if cfg.Admin().ID != 42 {
		t.Fatalf("non-numeric admin must be ignored")
	}

	cfg.Aggregator.ChannelID = "@torahyomi"
	cfg.Aggregator.PublishEnabled = true
	if !cfg.AggregatorChat().IsZero() {
		t.Fatalf("aggregator without token must be disabled")
	}
	cfg.Aggregator.Token = "t"
	if cfg.AggregatorChat().Username != "@torahyomi" {
		t.Fatalf("aggregator must be enabled")
	}
	cfg.Aggregator.PublishEnabled = false
	if !cfg.AggregatorChat().IsZero() {
		t.Fatalf("publish switch must disable the aggregator")
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatalf("restore working directory: %v", err)
		}
	})
}
