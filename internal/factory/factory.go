package factory

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"

	"github.com/mcoot/charsheet-go/internal/dependencies/clock"
	"github.com/mcoot/charsheet-go/internal/dependencies/random"
	"github.com/mcoot/charsheet-go/internal/services/auth"
	"github.com/mcoot/charsheet-go/internal/services/character"
	"github.com/mcoot/charsheet-go/internal/services/roster"
	"github.com/mcoot/charsheet-go/internal/services/token"
	"github.com/mcoot/charsheet-go/internal/storage"
	"github.com/mcoot/charsheet-go/internal/storage/memory"
	redisstorage "github.com/mcoot/charsheet-go/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	TokenService        *token.Service
	AuthService         *auth.Service
	RosterAssembler     *roster.Assembler
	CharacterController *character.Controller
}

// Config holds configuration for the application factory
type Config struct {
	// TokenConfig holds the signing secret and token lifetime.
	// If the secret is empty, a random one is generated and tokens do not survive a restart.
	TokenConfig token.Config
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	tokenCfg := cfg.TokenConfig
	if tokenCfg.Secret == "" {
		secret, err := ephemeralSecret()
		if err != nil {
			return nil, err
		}
		logger.Warn("no token secret configured, using an ephemeral key")
		tokenCfg.Secret = secret
	}

	return newWithDependencies(store, clk, rnd, tokenCfg, cfg.AuthConfig, logger)
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	tokenCfg token.Config,
	authCfg auth.Config,
	logger *slog.Logger,
) (*App, error) {
	tokenService, err := token.New(tokenCfg, clk)
	if err != nil {
		return nil, err
	}
	authService := auth.New(store, clk, rnd, tokenService, authCfg, logger)
	rosterAssembler := roster.New(store, logger)
	characterController := character.NewController(store, rosterAssembler, clk, rnd, logger)

	return &App{
		Storage:             store,
		Clock:               clk,
		Random:              rnd,
		TokenService:        tokenService,
		AuthService:         authService,
		RosterAssembler:     rosterAssembler,
		CharacterController: characterController,
	}, nil
}

func ephemeralSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}
