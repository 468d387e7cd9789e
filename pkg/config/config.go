// Package config loads the explorer configuration from an optional .env
// file, NASA_* environment variables and bound command-line flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/Sternrassler/nasa-explorer-client/pkg/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment variable.
const EnvPrefix = "NASA"

// Mode selects development or production behaviour.
type Mode string

const (
	ModeDevelopment Mode = "development"
	ModeProduction  Mode = "production"
)

// Keys understood by Load. Environment variables are the upper-cased key
// with "-" replaced by "_" and prefixed with NASA_, e.g. NASA_API_URL.
const (
	KeyAPIURL     = "api-url"
	KeyMode       = "mode"
	KeyLogLevel   = "log-level"
	KeyPretty     = "pretty"
	KeyRedisURL   = "redis-url"
	KeyStaleTime  = "stale-time"
	KeyCacheTTL   = "cache-ttl"
	KeyListenAddr = "listen-addr"
	KeyTimeout    = "timeout"
)

// Config holds the explorer configuration.
type Config struct {
	// APIURL is the backend origin
	APIURL string

	// Mode enables request logging and pretty logs in development
	Mode Mode

	// LogLevel is empty unless set by flag or environment
	LogLevel string
	Pretty   bool

	// RedisURL enables the shared query store and quota state (optional)
	RedisURL string

	// StaleTime is how long query results are reused
	StaleTime time.Duration

	// CacheTTL is how long unused query entries are kept in memory
	CacheTTL time.Duration

	// ListenAddr is the address of the gateway server
	ListenAddr string

	// Timeout bounds every backend call
	Timeout time.Duration
}

// SetDefaults registers the default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyAPIURL, "http://localhost:5000")
	v.SetDefault(KeyMode, string(ModeDevelopment))
	v.SetDefault(KeyPretty, false)
	v.SetDefault(KeyRedisURL, "")
	v.SetDefault(KeyStaleTime, 5*time.Minute)
	v.SetDefault(KeyCacheTTL, 10*time.Minute)
	v.SetDefault(KeyListenAddr, ":8080")
	v.SetDefault(KeyTimeout, 30*time.Second)
}

// BindEnv makes v read NASA_* environment variables.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are ignored; variables already set win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

// Load builds the configuration from v. Flags bound to v take precedence
// over the environment, which takes precedence over defaults.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)
	BindEnv(v)

	cfg := &Config{
		APIURL:     strings.TrimSpace(v.GetString(KeyAPIURL)),
		Mode:       Mode(strings.ToLower(v.GetString(KeyMode))),
		LogLevel:   v.GetString(KeyLogLevel),
		Pretty:     v.GetBool(KeyPretty),
		RedisURL:   v.GetString(KeyRedisURL),
		StaleTime:  v.GetDuration(KeyStaleTime),
		CacheTTL:   v.GetDuration(KeyCacheTTL),
		ListenAddr: v.GetString(KeyListenAddr),
		Timeout:    v.GetDuration(KeyTimeout),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("%s is required", KeyAPIURL)
	}
	if c.Mode != ModeDevelopment && c.Mode != ModeProduction {
		return fmt.Errorf("%s must be %q or %q (got %q)", KeyMode, ModeDevelopment, ModeProduction, c.Mode)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%s: %w", KeyLogLevel, err)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%s must be > 0 (got %s)", KeyTimeout, c.Timeout)
	}
	if c.StaleTime < 0 {
		return fmt.Errorf("%s must be >= 0 (got %s)", KeyStaleTime, c.StaleTime)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("%s must be > 0 (got %s)", KeyCacheTTL, c.CacheTTL)
	}
	return nil
}

// Development reports whether the diagnostic request log is enabled.
func (c *Config) Development() bool {
	return c.Mode == ModeDevelopment
}

// Logging returns the logger configuration. Without an explicit log level,
// development mode logs pretty at debug level so the request log is
// visible and production logs at info.
func (c *Config) Logging() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Pretty = c.Pretty
	switch {
	case c.LogLevel != "":
		cfg.Level = logging.LogLevel(strings.ToLower(strings.TrimSpace(c.LogLevel)))
	case c.Development():
		cfg.Level = logging.LevelDebug
		cfg.Pretty = true
	default:
		cfg.Level = logging.LevelInfo
	}
	return cfg
}
