package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Database drivers accepted by TTT_DB_DRIVER
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds the server settings read from the environment
type Config struct {
	Host string `env:"TTT_HOST" envDefault:"localhost"`
	Port int    `env:"TTT_PORT" envDefault:"8080"`

	DBDriver string `env:"TTT_DB_DRIVER" envDefault:"sqlite"`
	DBDSN    string `env:"TTT_DB_DSN"    envDefault:"tictactoe.db"`

	// SessionIdleTTL is how long an untouched match stays cached
	SessionIdleTTL         time.Duration `env:"TTT_SESSION_IDLE_TTL"         envDefault:"30m"`
	SessionCleanupInterval time.Duration `env:"TTT_SESSION_CLEANUP_INTERVAL" envDefault:"5m"`
	// SessionCapacity bounds cached matches; 0 is unbounded
	SessionCapacity int `env:"TTT_SESSION_CAPACITY" envDefault:"0"`

	Debug bool `env:"TTT_DEBUG"`
}

// Load parses the process environment and validates the result
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFrom parses the given variables instead of the process environment
func LoadFrom(environ map[string]string) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the settings can start a server
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, c.Port)
	}
	switch c.DBDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("%w: unknown database driver %q", ErrInvalidConfig, c.DBDriver)
	}
	if c.DBDSN == "" {
		return fmt.Errorf("%w: database DSN is required", ErrInvalidConfig)
	}
	if c.SessionIdleTTL <= 0 {
		return fmt.Errorf("%w: session idle TTL must be positive", ErrInvalidConfig)
	}
	if c.SessionCleanupInterval <= 0 {
		return fmt.Errorf("%w: session cleanup interval must be positive", ErrInvalidConfig)
	}
	if c.SessionCapacity < 0 {
		return fmt.Errorf("%w: session capacity cannot be negative", ErrInvalidConfig)
	}
	return nil
}

// Addr returns the listen address
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// BaseURL returns the URL clients use to reach the REST API
func (c *Config) BaseURL() string {
	host := c.Host
	if host == "" || host == "0.0.0.0" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(c.Port))
}
