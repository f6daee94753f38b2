// Package config provides configuration loading and validation from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	LogLevel          string        // debug, info, warn, error
	ListenAddr        string        // Server listen address (e.g., ":8080")
	MetricsListenAddr string        // Metrics listener address (e.g., "localhost:9090")
	DatabasePath      string        // SQLite database path
	BoostAPIURL       string        // Required: base URL of the boost engine
	AdminPasswordHash string        // Required: bcrypt hash of the admin password
	SessionSecret     string        // CSRF/cookie signing secret (32+ bytes)
	PollInterval      time.Duration // Stats poll interval for active sessions
	RateLimitPerSec   float64       // Public API requests per second per IP
	RateLimitBurst    int           // Public API burst size per IP
	SecureCookies     bool          // Set Secure on cookies (behind TLS)
}

// Load parses configuration from environment variables.
// Optional fields have defaults; required fields are checked by Validate.
func Load() (*Config, error) {
	cfg := &Config{
		LogLevel:          os.Getenv("LOG_LEVEL"),
		ListenAddr:        os.Getenv("LISTEN_ADDR"),
		MetricsListenAddr: os.Getenv("METRICS_LISTEN_ADDR"),
		DatabasePath:      os.Getenv("DATABASE_PATH"),
		BoostAPIURL:       os.Getenv("BOOST_API_URL"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		SessionSecret:     os.Getenv("SESSION_SECRET"),
		PollInterval:      3 * time.Second,
		RateLimitPerSec:   5,
		RateLimitBurst:    10,
	}

	// Set defaults for optional fields
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.MetricsListenAddr == "" {
		cfg.MetricsListenAddr = "localhost:9090"
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = "/data/boostgate.db"
	}

	if v := os.Getenv("POLL_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid POLL_INTERVAL: %w", err)
		}
		cfg.PollInterval = d
	}

	if v := os.Getenv("RATE_LIMIT_PER_SEC"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid RATE_LIMIT_PER_SEC: %w", err)
		}
		cfg.RateLimitPerSec = f
	}

	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
		}
		cfg.RateLimitBurst = n
	}

	if v := os.Getenv("SECURE_COOKIES"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SECURE_COOKIES: %w", err)
		}
		cfg.SecureCookies = b
	}

	return cfg, nil
}

// Validate checks all configuration constraints.
func (c *Config) Validate() error {
	if c.BoostAPIURL == "" {
		return fmt.Errorf("BOOST_API_URL environment variable is required")
	}
	if c.AdminPasswordHash == "" {
		return fmt.Errorf("ADMIN_PASSWORD_HASH environment variable is required")
	}
	if len(c.SessionSecret) < 32 {
		return fmt.Errorf("SESSION_SECRET must be at least 32 bytes")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be positive")
	}
	return nil
}
