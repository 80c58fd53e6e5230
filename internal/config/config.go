// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`
	DBMaxConns  int32  `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns  int32  `env:"DB_MIN_CONNS" envDefault:"2"`

	// Cache/counter store (Redis). The service starts even if Redis is down;
	// rate limiting and stats caching degrade instead.
	RedisURL       string        `env:"REDIS_URL,required"`
	CacheOpTimeout time.Duration `env:"CACHE_OP_TIMEOUT" envDefault:"500ms"`

	// Base URL for short links (e.g., https://snap.link)
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Short code generation
	ShortCodeLength int `env:"SHORT_CODE_LENGTH" envDefault:"6"`

	// Link TTL bounds (seconds) accepted on creation
	LinkTTLMin int `env:"LINK_TTL_MIN" envDefault:"60"`
	LinkTTLMax int `env:"LINK_TTL_MAX" envDefault:"31536000"`

	// Rate limiting (fixed window, per client IP and route class)
	RateLimitEnabled        bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitCreateMax      int  `env:"RATE_LIMIT_CREATE_MAX" envDefault:"10"`
	RateLimitCreateWindow   int  `env:"RATE_LIMIT_CREATE_WINDOW" envDefault:"60"`
	RateLimitRedirectMax    int  `env:"RATE_LIMIT_REDIRECT_MAX" envDefault:"100"`
	RateLimitRedirectWindow int  `env:"RATE_LIMIT_REDIRECT_WINDOW" envDefault:"60"`

	// Analytics
	StatsCacheTTL      time.Duration `env:"STATS_CACHE_TTL" envDefault:"5m"`
	AnalyticsQueueSize int           `env:"ANALYTICS_QUEUE_SIZE" envDefault:"1024"`

	// GeoIP database path (empty disables geo resolution)
	GeoIPDBPath string `env:"GEOIP_DB_PATH" envDefault:""`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// CreateWindow returns the creation rate-limit window as a duration.
func (c *Config) CreateWindow() time.Duration {
	return time.Duration(c.RateLimitCreateWindow) * time.Second
}

// RedirectWindow returns the redirect rate-limit window as a duration.
func (c *Config) RedirectWindow() time.Duration {
	return time.Duration(c.RateLimitRedirectWindow) * time.Second
}

// Load parses environment variables and returns a Config.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
