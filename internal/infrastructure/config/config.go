package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Storage backends served by cmd/server.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Store      StoreConfig
	Generation GenerationConfig
	Logging    LogConfig
	RateLimit  RateLimitConfig
	CORS       CORSConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// StoreConfig covers both the served backend and the client side.
type StoreConfig struct {
	Backend string        `envconfig:"STORE_BACKEND" default:"memory"`
	Path    string        `envconfig:"STORE_PATH" default:"blueprints.db"`
	URL     string        `envconfig:"STORE_URL" default:"http://localhost:8000"`
	Timeout time.Duration `envconfig:"STORE_TIMEOUT" default:"10s"`
	Retries int           `envconfig:"STORE_RETRIES" default:"3"`
}

// GenerationConfig holds blueprint generation service settings.
type GenerationConfig struct {
	URL     string        `envconfig:"GENERATION_URL" default:"http://localhost:8001"`
	Timeout time.Duration `envconfig:"GENERATION_TIMEOUT" default:"60s"`
	RPS     float64       `envconfig:"GENERATION_RPS" default:"1"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// CORSConfig lists origins allowed to call the store service.
type CORSConfig struct {
	Origins []string `envconfig:"CORS_ORIGINS" default:"http://localhost:3000"`
}

// Load reads an optional .env file, then environment variables.
func Load() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
		},
		Store: StoreConfig{
			Backend: BackendMemory,
			Path:    "blueprints.db",
			URL:     "http://localhost:8000",
			Timeout: 10 * time.Second,
			Retries: 3,
		},
		Generation: GenerationConfig{
			URL:     "http://localhost:8001",
			Timeout: 60 * time.Second,
			RPS:     1,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		CORS: CORSConfig{
			Origins: []string{"http://localhost:3000"},
		},
	}
}

// Validate rejects values no component can run with and normalizes the
// backend name.
func (c *Config) Validate() error {
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	switch c.Store.Backend {
	case BackendMemory, BackendSQLite:
	default:
		return fmt.Errorf("invalid STORE_BACKEND %q: want %s or %s", c.Store.Backend, BackendMemory, BackendSQLite)
	}
	if c.Store.Backend == BackendSQLite && c.Store.Path == "" {
		return errors.New("STORE_PATH is required for the sqlite backend")
	}
	if c.Store.Retries < 0 {
		return errors.New("STORE_RETRIES must not be negative")
	}
	if c.Store.Timeout <= 0 || c.Generation.Timeout <= 0 {
		return errors.New("timeouts must be positive")
	}
	if c.Generation.RPS < 0 {
		return errors.New("GENERATION_RPS must not be negative")
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		return errors.New("rate limit values must be positive when enabled")
	}
	return nil
}

// Addr returns the host:port the store service listens on.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

func loadDotEnv() error {
	path := os.Getenv("AUTOTHINKER_ENV_FILE")
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		// A missing file is normal outside development
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}
