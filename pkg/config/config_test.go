package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Sternrassler/nasa-explorer-client/pkg/logging"
	"github.com/spf13/viper"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(viper.New())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.APIURL != "http://localhost:5000" {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
	if cfg.Mode != ModeDevelopment {
		t.Errorf("Mode = %q, want development", cfg.Mode)
	}
	if cfg.StaleTime != 5*time.Minute {
		t.Errorf("StaleTime = %v, want 5m", cfg.StaleTime)
	}
	if cfg.CacheTTL != 10*time.Minute {
		t.Errorf("CacheTTL = %v, want 10m", cfg.CacheTTL)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}
	if cfg.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %q", cfg.ListenAddr)
	}
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("NASA_API_URL", "https://explorer.example.com")
	t.Setenv("NASA_MODE", "Production")
	t.Setenv("NASA_STALE_TIME", "30s")
	t.Setenv("NASA_REDIS_URL", "redis://localhost:6379/1")
	t.Setenv("NASA_TIMEOUT", "5s")

	cfg, err := Load(viper.New())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.APIURL != "https://explorer.example.com" {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
	if cfg.Mode != ModeProduction || cfg.Development() {
		t.Errorf("Mode = %q, want production", cfg.Mode)
	}
	if cfg.StaleTime != 30*time.Second {
		t.Errorf("StaleTime = %v, want 30s", cfg.StaleTime)
	}
	if cfg.RedisURL != "redis://localhost:6379/1" {
		t.Errorf("RedisURL = %q", cfg.RedisURL)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", cfg.Timeout)
	}
}

func TestLoad_ExplicitValueWins(t *testing.T) {
	t.Setenv("NASA_API_URL", "https://from-env.example.com")

	v := viper.New()
	v.Set(KeyAPIURL, "https://from-flag.example.com")

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.APIURL != "https://from-flag.example.com" {
		t.Errorf("APIURL = %q, want flag value", cfg.APIURL)
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    any
		errorMsg string
	}{
		{"bad mode", KeyMode, "staging", `mode must be "development" or "production" (got "staging")`},
		{"zero timeout", KeyTimeout, "0s", "timeout must be > 0 (got 0s)"},
		{"empty url", KeyAPIURL, " ", "api-url is required"},
		{"negative stale time", KeyStaleTime, "-1s", "stale-time must be >= 0 (got -1s)"},
		{"zero cache ttl", KeyCacheTTL, "0s", "cache-ttl must be > 0 (got 0s)"},
		{"bad log level", KeyLogLevel, "loud", `log-level: unknown log level "loud"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			v.Set(tt.key, tt.value)

			_, err := Load(v)
			if err == nil {
				t.Fatal("Expected error but got nil")
			}
			if err.Error() != tt.errorMsg {
				t.Errorf("Error message = %q, want %q", err.Error(), tt.errorMsg)
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("NASA_LISTEN_ADDR=:9999\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("NASA_LISTEN_ADDR", "")
	os.Unsetenv("NASA_LISTEN_ADDR")

	if err := LoadDotEnv(filepath.Join(dir, "missing.env"), path); err != nil {
		t.Fatalf("LoadDotEnv failed: %v", err)
	}

	cfg, err := Load(viper.New())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ListenAddr != ":9999" {
		t.Errorf("ListenAddr = %q, want :9999", cfg.ListenAddr)
	}
}

func TestConfig_Logging(t *testing.T) {
	tests := []struct {
		name       string
		cfg        Config
		wantLevel  logging.LogLevel
		wantPretty bool
	}{
		{"development default", Config{Mode: ModeDevelopment}, logging.LevelDebug, true},
		{"development explicit level", Config{Mode: ModeDevelopment, LogLevel: "warn"}, logging.LevelWarn, false},
		{"development explicit level pretty", Config{Mode: ModeDevelopment, LogLevel: "error", Pretty: true}, logging.LevelError, true},
		{"production default", Config{Mode: ModeProduction}, logging.LevelInfo, false},
		{"production explicit level", Config{Mode: ModeProduction, LogLevel: "WARN"}, logging.LevelWarn, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.cfg.Logging()
			if got.Level != tt.wantLevel || got.Pretty != tt.wantPretty {
				t.Errorf("Logging() = %+v, want level %q pretty %v", got, tt.wantLevel, tt.wantPretty)
			}
		})
	}
}

func TestLoad_LogLevelOverridesDevelopment(t *testing.T) {
	t.Setenv("NASA_LOG_LEVEL", "warn")

	cfg, err := Load(viper.New())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.Development() {
		t.Fatalf("Mode = %q, want development", cfg.Mode)
	}
	if got := cfg.Logging().Level; got != logging.LevelWarn {
		t.Errorf("Logging().Level = %q, want warn", got)
	}
}
