// Package config centraliza o carregamento de configurações do gateway e da
// proteção contra sobrecarga.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var ErrNoUpstream = errors.New("UPSTREAM_URL is required")

type Config struct {
	ListenAddr  string `env:"LISTEN_ADDR" envDefault:":8080"`
	UpstreamURL string `env:"UPSTREAM_URL"`

	RetryAfter         time.Duration `env:"RETRY_AFTER" envDefault:"1s"`
	RejectStatus       int           `env:"REJECT_STATUS" envDefault:"429"`
	TrustXFF           bool          `env:"TRUST_XFF" envDefault:"false"`
	AddOverloadHeaders bool          `env:"ADD_OVERLOAD_HEADERS" envDefault:"false"`
	SessionCookie      string        `env:"SESSION_COOKIE" envDefault:"session"`

	// OverloadConfigFile é um YAML com os campos de Resiliency; alterações são
	// aplicadas sem reiniciar o processo.
	OverloadConfigFile string `env:"OVERLOAD_CONFIG_FILE"`

	MetricsEnabled bool   `env:"METRICS_ENABLED" envDefault:"true"`
	LogFormat      string `env:"LOG_FORMAT" envDefault:"text"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`

	Stats StatsConfig `envPrefix:"RATE_STATS_"`
}

type StatsConfig struct {
	Enabled       bool          `env:"ENABLED" envDefault:"false"`
	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	Prefix        string        `env:"PREFIX" envDefault:"overload:stats"`
	TTL           time.Duration `env:"TTL" envDefault:"24h"`
	Bucket        string        `env:"BUCKET" envDefault:"minute"`
	TrackRoutes   bool          `env:"TRACK_ROUTES" envDefault:"false"`
}

// Load lê um .env opcional e depois o ambiente.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Stats.Enabled && strings.TrimSpace(c.Stats.RedisAddr) == "" {
		return errors.New("RATE_STATS_REDIS_ADDR is required when RATE_STATS_ENABLED=true")
	}
	if c.RejectStatus < 400 || c.RejectStatus > 599 {
		return fmt.Errorf("REJECT_STATUS must be a 4xx/5xx status, got %d", c.RejectStatus)
	}
	if c.RetryAfter < 0 {
		return errors.New("RETRY_AFTER must be >= 0")
	}
	return nil
}

// NewLogger monta o logger do processo a partir de LOG_FORMAT e LOG_LEVEL.
func (c Config) NewLogger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
