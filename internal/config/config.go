package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config keeps runtime settings for the sweep daemon.
type Config struct {
	TelegramToken  string
	AdminChatID    int64
	DatabaseURL    string
	SweepTime      string
	Timezone       string
	AutoCloseAfter time.Duration
}

// Load reads configuration from environment variables with sane defaults.
// The Telegram admin surface is optional: without a token the daemon runs
// with the timer only.
func Load() (Config, error) {
	cfg := Config{
		TelegramToken:  strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
		DatabaseURL:    strings.TrimSpace(os.Getenv("DATABASE_URL")),
		SweepTime:      strings.TrimSpace(os.Getenv("SWEEP_TIME")),
		Timezone:       strings.TrimSpace(os.Getenv("TIMEZONE")),
		AutoCloseAfter: parseHours(strings.TrimSpace(os.Getenv("AUTO_CLOSE_AFTER_HOURS"))),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "taskcycle.db"
	}
	if cfg.SweepTime == "" {
		cfg.SweepTime = "02:00"
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "UTC"
	}
	if cfg.AutoCloseAfter == 0 {
		cfg.AutoCloseAfter = 24 * time.Hour
	}

	if raw := strings.TrimSpace(os.Getenv("ADMIN_CHAT_ID")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid ADMIN_CHAT_ID %q", raw)
		}
		cfg.AdminChatID = id
	}

	if cfg.TelegramToken != "" && cfg.AdminChatID == 0 {
		return cfg, fmt.Errorf("ADMIN_CHAT_ID is required when TELEGRAM_TOKEN is set")
	}

	return cfg, nil
}

func parseHours(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	hours, err := time.ParseDuration(raw + "h")
	if err != nil || hours <= 0 {
		return 0
	}
	return hours
}
