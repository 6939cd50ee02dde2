package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all console configuration. It is built once in main from the
// environment and passed by reference; nothing reads os.Getenv after Load.
type Config struct {
	// Remote bot service
	API APIConfig `json:"api"`

	// Console HTTP server
	Server ServerConfig `json:"server"`

	// Basic auth gate
	Gate GateConfig `json:"gate"`

	// Sync loop
	Sync SyncConfig `json:"sync"`

	// Operator notifications
	Discord  DiscordConfig  `json:"discord"`
	Telegram TelegramConfig `json:"telegram"`
}

// APIConfig holds the remote bot service endpoint configuration.
type APIConfig struct {
	BaseURL string        `json:"base_url"`
	Timeout time.Duration `json:"timeout"`
}

// ServerConfig holds console HTTP server configuration.
type ServerConfig struct {
	ListenAddr string `json:"listen_addr"`
}

// GateConfig holds the shared operator credential pair.
// The gate is disabled unless both fields are set.
type GateConfig struct {
	Username string `json:"-"` // Excluded - env var only
	Password string `json:"-"` // Excluded - env var only
}

// Enabled reports whether the gate has a complete credential pair.
func (g GateConfig) Enabled() bool {
	return g.Username != "" && g.Password != ""
}

// SyncConfig holds sync loop configuration.
type SyncConfig struct {
	Interval  time.Duration `json:"interval"`
	FeedLimit int           `json:"feed_limit"` // signals/actions window per tick
	RawLimit  int           `json:"raw_limit"`  // raw capture window for on-demand reads
}

// DiscordConfig holds Discord alert configuration.
type DiscordConfig struct {
	BotToken  string `json:"-"` // Excluded - env var only
	ChannelID string `json:"channel_id"`
}

// TelegramConfig holds Telegram alert configuration.
type TelegramConfig struct {
	BotToken string `json:"-"` // Excluded - env var only
	ChatID   string `json:"chat_id"`
}

// Load builds a Config from environment variables with defaults.
func Load() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: strings.TrimRight(envString("API_BASE", "http://localhost:8000"), "/"),
			Timeout: envDuration("HTTP_TIMEOUT", 30*time.Second),
		},

		Server: ServerConfig{
			ListenAddr: envString("LISTEN_ADDR", ":3000"),
		},

		Gate: GateConfig{
			Username: envString("BASIC_AUTH_USER", ""),
			Password: envString("BASIC_AUTH_PASS", ""),
		},

		Sync: SyncConfig{
			Interval:  envDuration("SYNC_INTERVAL", 15*time.Second),
			FeedLimit: envInt("FEED_LIMIT", 6),
			RawLimit:  envInt("RAW_LIMIT", 100),
		},

		Discord: DiscordConfig{
			BotToken:  envString("DISCORD_BOT_TOKEN", ""),
			ChannelID: envString("DISCORD_CHANNEL_ID", ""),
		},

		Telegram: TelegramConfig{
			BotToken: envString("TELEGRAM_BOT_KEY", ""),
			ChatID:   envString("TELEGRAM_CHAT_ID", ""),
		},
	}
}

// Helper functions for parsing environment variables

func envString(key, defaultVal string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
