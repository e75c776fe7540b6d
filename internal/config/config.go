package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Store drivers.
const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            string        `env:"PORT" envDefault:"8000"`
	AllowOrigins    []string      `env:"CORS_ALLOW_ORIGINS" envDefault:"*" envSeparator:","`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// StoreConfig selects and configures the document store.
type StoreConfig struct {
	Driver         string        `env:"STORE_DRIVER" envDefault:"mongo"`
	URI            string        `env:"DATABASE_URL"` // empty leaves the store unconfigured
	Name           string        `env:"DATABASE_NAME" envDefault:"cse_resources"`
	ConnectTimeout time.Duration `env:"DATABASE_CONNECT_TIMEOUT" envDefault:"10s"`
	MaxPoolSize    uint64        `env:"DATABASE_MAX_POOL_SIZE" envDefault:"100"`
}

// EventsConfig tunes the realtime stream.
type EventsConfig struct {
	QueueLimit int           `env:"EVENTS_QUEUE_LIMIT" envDefault:"0"` // 0 = unbounded
	KeepAlive  time.Duration `env:"EVENTS_KEEPALIVE" envDefault:"15s"`  // 0 disables keepalive comments
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// Config is the whole application configuration, read from the environment.
type Config struct {
	Server ServerConfig
	Store  StoreConfig
	Events EventsConfig
	Log    LogConfig
}

// Load parses the environment into a Config.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case DriverMongo, DriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", DriverMongo, DriverMemory, c.Store.Driver)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Log.Format)
	}
	if c.Events.QueueLimit < 0 {
		return fmt.Errorf("EVENTS_QUEUE_LIMIT must not be negative")
	}
	if c.Events.KeepAlive < 0 {
		return fmt.Errorf("EVENTS_KEEPALIVE must not be negative")
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Server.Port
}
