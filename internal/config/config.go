// Package config provides configuration loading and validation for the
// tldrbot application. Values are read from a YAML file with BOT_* environment
// variable overrides, filled with defaults, and validated before use.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// BotInfo holds the identity of the bot account, retrieved from the Telegram
// API at startup rather than from configuration.
type BotInfo struct {
	ID        int64
	Username  string
	FirstName string
}

// LoggerConfig controls log verbosity and output format.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds Telegram API settings.
type TelegramConfig struct {
	Token string `mapstructure:"token" validate:"required"`

	// BotInfo is populated at runtime via GetMe, not from the config file.
	BotInfo BotInfo `mapstructure:"-"`
}

// GeminiConfig holds Gemini API settings.
type GeminiConfig struct {
	APIKey            string  `mapstructure:"api_key" validate:"required"`
	ModelName         string  `mapstructure:"model_name" validate:"required"`
	Temperature       float32 `mapstructure:"temperature" validate:"min=0,max=2"`
	MaxRetries        int     `mapstructure:"max_retries" validate:"min=0,max=10"`
	RetryDelaySeconds int     `mapstructure:"retry_delay_seconds" validate:"min=0,max=300"`
}

// DatabaseConfig holds SQLite settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// DigestConfig controls the message windows used by the digest, profile, and
// support features. All hour values are clamped to [1,168] by validation.
type DigestConfig struct {
	DefaultHours       int `mapstructure:"default_hours" validate:"min=1,max=168"`
	ScheduledHours     int `mapstructure:"scheduled_hours" validate:"min=1,max=168"`
	WhoisMessageLimit  int `mapstructure:"whois_message_limit" validate:"min=1,max=500"`
	SupportWindowHours int `mapstructure:"support_window_hours" validate:"min=1,max=168"`
}

// TaskConfig describes one config-driven background task.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// SchedulerConfig holds settings for config-driven background tasks. Per-chat
// digest jobs are managed dynamically and do not appear here.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

// Config defines the application configuration parameters for all components.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Digest    DigestConfig    `mapstructure:"digest"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// LoadConfig loads and validates configuration from:
// 1. Default values
// 2. The YAML file at configPath (missing file is not an error)
// 3. BOT_* environment variables
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is okay, defaults and env vars still apply
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// setDefaults sets default values for optional configuration parameters.
func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.json", false)

	v.SetDefault("database.path", "tldrbot.db")

	v.SetDefault("gemini.model_name", "gemini-2.0-flash")
	v.SetDefault("gemini.temperature", 1.0)
	v.SetDefault("gemini.max_retries", 2)
	v.SetDefault("gemini.retry_delay_seconds", 5)

	v.SetDefault("digest.default_hours", 24)
	v.SetDefault("digest.scheduled_hours", 24)
	v.SetDefault("digest.whois_message_limit", 100)
	v.SetDefault("digest.support_window_hours", 168)
}
