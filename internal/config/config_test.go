package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

var configKeys = []string{"BACKEND_URL", "CONTROL_ADDR", "WATCH_DIR", "LOG_FILE", "LOG_LEVEL", "APP_PROD", "CONTROL_RATE_LIMIT", "CONTROL_RATE_BURST"}

// clearEnv unsets every key for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BackendURL != DefaultBackendURL {
		t.Errorf("BackendURL = %q, want %q", cfg.BackendURL, DefaultBackendURL)
	}
	if cfg.ControlAddr != "" || cfg.WatchDir != "" || cfg.LogFile != "" {
		t.Errorf("optional features should be off by default: %+v", cfg)
	}
	if cfg.LogLevel != slog.LevelDebug || cfg.Production {
		t.Errorf("LogLevel = %v Production = %v", cfg.LogLevel, cfg.Production)
	}
	if cfg.RateLimit != RATE_LIMIT_PER_SECOND || cfg.RateBurst != BURST_RATE_LIMIT_PER_SECOND {
		t.Errorf("rate limit = %d/%d", cfg.RateLimit, cfg.RateBurst)
	}
}

func TestLoad_Environment(t *testing.T) {
	clearEnv(t)
	t.Setenv("BACKEND_URL", "https://docs.example.com/")
	t.Setenv("CONTROL_ADDR", "127.0.0.1:7070")
	t.Setenv("APP_PROD", "true")
	t.Setenv("CONTROL_RATE_LIMIT", "20")
	t.Setenv("CONTROL_RATE_BURST", "not a number")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BackendURL != "https://docs.example.com" {
		t.Errorf("trailing slash should be trimmed, got %q", cfg.BackendURL)
	}
	if cfg.ControlAddr != "127.0.0.1:7070" {
		t.Errorf("ControlAddr = %q", cfg.ControlAddr)
	}
	if !cfg.Production || cfg.LogLevel != LOG_LEVEL_PROD {
		t.Errorf("production should default the level to %v, got %v", LOG_LEVEL_PROD, cfg.LogLevel)
	}
	if cfg.RateLimit != 20 || cfg.RateBurst != BURST_RATE_LIMIT_PER_SECOND {
		t.Errorf("rate limit = %d/%d", cfg.RateLimit, cfg.RateBurst)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	envFile := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(envFile, []byte("BACKEND_URL=http://backend:9000\nLOG_LEVEL=warn\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(envFile)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BackendURL != "http://backend:9000" {
		t.Errorf("BackendURL = %q", cfg.BackendURL)
	}
	if cfg.LogLevel != slog.LevelWarn {
		t.Errorf("LogLevel = %v", cfg.LogLevel)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"http", "http://localhost:8000", false},
		{"https", "https://example.com", false},
		{"empty", "", true},
		{"no scheme", "localhost:8000", true},
		{"ftp", "ftp://example.com", true},
		{"no host", "http://", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{BackendURL: tt.url, RateLimit: 1, RateBurst: 1}
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
