// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port          string
	AllowedOrigin string
	DBPath        string

	// MaxMessageLength is the cap applied to relayed chat messages;
	// longer messages are truncated, not rejected.
	MaxMessageLength int

	// MaxMessagesPerMinute bounds each participant's send rate over a
	// sliding one-minute window.
	MaxMessagesPerMinute int

	// StatsInterval is how often the stats snapshot is broadcast to
	// every connected participant.
	StatsInterval time.Duration

	// APIRequestLimit caps in-flight requests on the /api subtree.
	// WebSocket connections are not counted against it.
	APIRequestLimit int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:                 getEnv("PORT", "8080"),
		AllowedOrigin:        getEnv("ALLOWED_ORIGIN", "*"),
		DBPath:               getEnv("DB_PATH", "./data/driftchat.db"),
		MaxMessageLength:     getEnvInt("MAX_MESSAGE_LENGTH", 500),
		MaxMessagesPerMinute: getEnvInt("MAX_MESSAGES_PER_MINUTE", 60),
		StatsInterval:        getEnvDuration("STATS_INTERVAL", 5*time.Second),
		APIRequestLimit:      getEnvInt("API_REQUEST_LIMIT", 100),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.MaxMessageLength <= 0 {
		return fmt.Errorf("MAX_MESSAGE_LENGTH must be > 0")
	}
	if c.MaxMessagesPerMinute <= 0 {
		return fmt.Errorf("MAX_MESSAGES_PER_MINUTE must be > 0")
	}
	if c.StatsInterval <= 0 {
		return fmt.Errorf("STATS_INTERVAL must be > 0")
	}
	if c.APIRequestLimit <= 0 {
		return fmt.Errorf("API_REQUEST_LIMIT must be > 0")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AllowedOrigin == "*" ||
		strings.Contains(c.AllowedOrigin, "localhost") ||
		strings.Contains(c.AllowedOrigin, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}
