// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the server settings. cmd/server lets flags override the
// listen port, database path and API base URL.
type Config struct {
	Port           string        `env:"PORT" envDefault:"8080"`
	DBPath         string        `env:"DB_PATH" envDefault:"./dattebayo.db"`
	APIBaseURL     string        `env:"DATTEBAYO_API_URL" envDefault:"https://dattebayo-api.onrender.com"`
	RequestTimeout time.Duration `env:"DATTEBAYO_REQUEST_TIMEOUT" envDefault:"30s"`
	StaticDir      string        `env:"DATTEBAYO_STATIC_DIR"`
	AllowedOrigins []string      `env:"DATTEBAYO_ALLOWED_ORIGINS" envDefault:"http://localhost:*" envSeparator:","`
	SessionIdle    time.Duration `env:"DATTEBAYO_SESSION_IDLE" envDefault:"30m"`
	LogLevel       string        `env:"DATTEBAYO_LOG_LEVEL" envDefault:"info"`
	LogFormat      string        `env:"DATTEBAYO_LOG_FORMAT" envDefault:"text"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Logger builds the process logger from the log settings.
func (c Config) Logger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(c.LogLevel)}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
