// Package config holds the client defaults and the environment driven configuration.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the runtime configuration of the client.
type Config struct {
	BackendURL  string
	ControlAddr string
	WatchDir    string
	LogFile     string
	LogLevel    slog.Level
	Production  bool
	RateLimit   int
	RateBurst   int
}

// Load reads an optional .env file and then the process environment.
// Missing .env files are not an error.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading env file: %w", err)
	}

	cfg := &Config{
		BackendURL:  strings.TrimRight(getEnv("BACKEND_URL", DefaultBackendURL), "/"),
		ControlAddr: getEnv("CONTROL_ADDR", DefaultControlAddr),
		WatchDir:    getEnv("WATCH_DIR", ""),
		LogFile:     getEnv("LOG_FILE", ""),
		LogLevel:    getEnvLevel("LOG_LEVEL", slog.LevelDebug),
		Production:  getEnvBool("APP_PROD", IS_PROD),
		RateLimit:   getEnvInt("CONTROL_RATE_LIMIT", RATE_LIMIT_PER_SECOND),
		RateBurst:   getEnvInt("CONTROL_RATE_BURST", BURST_RATE_LIMIT_PER_SECOND),
	}
	if cfg.Production && os.Getenv("LOG_LEVEL") == "" {
		cfg.LogLevel = LOG_LEVEL_PROD
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the fields that the client cannot run without.
func (c *Config) Validate() error {
	if c.BackendURL == "" {
		return fmt.Errorf("BACKEND_URL cannot be empty")
	}
	u, err := url.Parse(c.BackendURL)
	if err != nil {
		return fmt.Errorf("BACKEND_URL is not a valid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("BACKEND_URL must use http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("BACKEND_URL has no host")
	}
	if c.RateLimit <= 0 || c.RateBurst <= 0 {
		return fmt.Errorf("CONTROL_RATE_LIMIT and CONTROL_RATE_BURST must be > 0")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
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

func getEnvLevel(key string, fallback slog.Level) slog.Level {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(value))); err != nil {
		return fallback
	}
	return level
}
