package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/mcoot/charsheet-go/internal/api"
	"github.com/mcoot/charsheet-go/internal/factory"
	"github.com/mcoot/charsheet-go/internal/services/token"
	redisstorage "github.com/mcoot/charsheet-go/internal/storage/redis"
)

// Config is the server configuration read from the environment
type Config struct {
	Host     string `env:"CHARSHEET_HOST"`
	Port     int    `env:"CHARSHEET_PORT"      envDefault:"8080"`
	LogLevel string `env:"CHARSHEET_LOG_LEVEL" envDefault:"info"`

	StorageType string `env:"CHARSHEET_STORAGE_TYPE" envDefault:"memory"`
	RedisURL    string `env:"CHARSHEET_REDIS_URL"`

	// TokenSecret is the base64-encoded signing key
	TokenSecret string        `env:"CHARSHEET_TOKEN_SECRET"`
	TokenTTL    time.Duration `env:"CHARSHEET_TOKEN_TTL" envDefault:"12h"`

	// Master seeding is skipped unless an email is set
	MasterName     string `env:"CHARSHEET_MASTER_NAME" envDefault:"Game Master"`
	MasterEmail    string `env:"CHARSHEET_MASTER_EMAIL"`
	MasterPassword string `env:"CHARSHEET_MASTER_PASSWORD"`
}

// Load reads the configuration from the environment and validates it
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the combinations env parsing cannot express
func (c Config) Validate() error {
	switch c.StorageType {
	case factory.StorageTypeMemory:
	case factory.StorageTypeRedis:
		if c.RedisURL == "" {
			return errors.New("CHARSHEET_REDIS_URL required when CHARSHEET_STORAGE_TYPE=redis")
		}
	default:
		return fmt.Errorf("invalid CHARSHEET_STORAGE_TYPE %q: must be memory or redis", c.StorageType)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.MasterEmail != "" && c.MasterPassword == "" {
		return errors.New("CHARSHEET_MASTER_PASSWORD required when CHARSHEET_MASTER_EMAIL is set")
	}
	return nil
}

// SeedMaster reports whether a master account should be ensured at startup
func (c Config) SeedMaster() bool {
	return c.MasterEmail != ""
}

// Level returns the slog level for the configured log level
func (c Config) Level() slog.Level {
	level, _ := parseLevel(c.LogLevel)
	return level
}

// Server returns the HTTP server configuration
func (c Config) Server() api.ServerConfig {
	cfg := api.DefaultServerConfig()
	cfg.Host = c.Host
	cfg.Port = c.Port
	return cfg
}

// Factory returns the application factory configuration
func (c Config) Factory(logger *slog.Logger) factory.Config {
	cfg := factory.Config{
		Logger:      logger,
		StorageType: c.StorageType,
		TokenConfig: token.Config{
			Secret: c.TokenSecret,
			TTL:    c.TokenTTL,
		},
	}
	if c.StorageType == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = c.RedisURL
		cfg.RedisConfig = &redisCfg
	}
	return cfg
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid CHARSHEET_LOG_LEVEL %q", s)
	}
	return level, nil
}
