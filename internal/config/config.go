// Package config provides runtime configuration values for the bot.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrMissingToken is returned by Load when no bot token is configured.
var ErrMissingToken = errors.New("config: BOT_TOKEN is required")

// Config holds the bot token plus knobs for the worker pool and ops server.
// An empty OpsAddr means the ops HTTP server is disabled (OPS_ADDR=off).
type Config struct {
	BotToken        string
	CatalogPath     string
	OpsAddr         string
	WorkerCount     int
	QueueBuffer     int
	ShutdownTimeout time.Duration
	PollTimeout     time.Duration
	LogLevel        string
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("bot_token", "")
	v.SetDefault("catalog_path", "")
	v.SetDefault("ops_addr", ":8080")
	v.SetDefault("worker_count", 4)
	v.SetDefault("queue_buffer", 64)
	v.SetDefault("shutdown_timeout", 15)
	v.SetDefault("poll_timeout", 50)
	v.SetDefault("log_level", "info")
	v.AutomaticEnv()
	return v
}

// Load collects configuration from the environment, layered over an
// optional dotenv file. A missing env file is not an error; a missing
// BOT_TOKEN is.
func Load(envFile string) (Config, error) {
	v := newViper()
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			v.SetConfigFile(envFile)
			v.SetConfigType("env")
			if err := v.ReadInConfig(); err != nil {
				return Config{}, fmt.Errorf("config: read %s: %w", envFile, err)
			}
		}
	}

	cfg := Config{
		BotToken:        strings.TrimSpace(v.GetString("bot_token")),
		CatalogPath:     v.GetString("catalog_path"),
		OpsAddr:         v.GetString("ops_addr"),
		WorkerCount:     positive(v.GetInt("worker_count"), 4),
		QueueBuffer:     positive(v.GetInt("queue_buffer"), 64),
		ShutdownTimeout: time.Duration(positive(v.GetInt("shutdown_timeout"), 15)) * time.Second,
		PollTimeout:     time.Duration(positive(v.GetInt("poll_timeout"), 50)) * time.Second,
		LogLevel:        v.GetString("log_level"),
	}
	switch strings.ToLower(strings.TrimSpace(cfg.OpsAddr)) {
	case "off", "none", "-":
		cfg.OpsAddr = ""
	}
	if cfg.BotToken == "" {
		return cfg, ErrMissingToken
	}
	return cfg, nil
}

func positive(n, def int) int {
	if n <= 0 {
		return def
	}
	return n
}
