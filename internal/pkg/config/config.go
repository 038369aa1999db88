// Package config loads runtime settings from the environment.
package config

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Session storage backends.
const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
	SessionBackendMongo  = "mongo"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Backend  BackendConfig
	Session  SessionConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Checkout CheckoutConfig

	// LaunchAt is the promo countdown deadline, RFC 3339. Empty disables it.
	LaunchAt    string `env:"LAUNCH_AT"`
	BulkWorkers int    `env:"BULK_WORKERS, default=4"`
}

type BackendConfig struct {
	URL string `env:"BACKEND_URL, default=http://localhost:8000"`
	// StorageURL prefixes relative avatar and image paths. Defaults to URL.
	StorageURL string        `env:"STORAGE_BASE_URL"`
	Timeout    time.Duration `env:"HTTP_TIMEOUT, default=15s"`
}

type SessionConfig struct {
	Backend   string `env:"SESSION_BACKEND,   default=memory"`
	Namespace string `env:"SESSION_NAMESPACE, default=storefront"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=storefront"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type CheckoutConfig struct {
	KeyTTL time.Duration `env:"CHECKOUT_KEY_TTL, default=2m"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

// MustLoad is Load for process start-up.
func MustLoad() *Config {
	cfg, err := Load(context.Background())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	if err := cfg.normalise(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalise() error {
	c.Backend.URL = strings.TrimRight(c.Backend.URL, "/")
	if _, err := url.ParseRequestURI(c.Backend.URL); err != nil {
		return fmt.Errorf("BACKEND_URL: %w", err)
	}
	if c.Backend.StorageURL == "" {
		c.Backend.StorageURL = c.Backend.URL
	}
	c.Backend.StorageURL = strings.TrimRight(c.Backend.StorageURL, "/")

	c.Session.Backend = strings.ToLower(strings.TrimSpace(c.Session.Backend))
	switch c.Session.Backend {
	case SessionBackendMemory, SessionBackendRedis, SessionBackendMongo:
	default:
		return fmt.Errorf("SESSION_BACKEND: unknown backend %q", c.Session.Backend)
	}
	if c.BulkWorkers < 1 {
		return fmt.Errorf("BULK_WORKERS: must be at least 1, got %d", c.BulkWorkers)
	}
	if _, err := c.LaunchTime(); err != nil {
		return err
	}
	return nil
}

// LaunchTime parses LaunchAt. The zero time means no countdown is configured.
func (c *Config) LaunchTime() (time.Time, error) {
	if c.LaunchAt == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, c.LaunchAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("LAUNCH_AT: %w", err)
	}
	return t, nil
}

// Development reports whether ENV selects console-friendly output.
func (c *Config) Development() bool {
	return c.Env == "development" || c.Env == "dev" || c.Env == "local"
}
