package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"marketclock/internal/format"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for marketclock.
type Config struct {
	Calendar Calendar `yaml:"calendar"`
	Alpaca   Alpaca   `yaml:"alpaca"`
	Treasury Treasury `yaml:"treasury"`
	Logging  Logging  `yaml:"logging"`
}

// Calendar configures the trading calendar.
type Calendar struct {
	Timezone string `yaml:"timezone"`
}

// Alpaca holds credentials and endpoints for the Alpaca broker API, used
// as the reference calendar by the verify command.
type Alpaca struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	BaseURL   string `yaml:"base_url"`
}

// Treasury configures the risk-free rate lookup.
type Treasury struct {
	BaseURL         string        `yaml:"base_url"`
	Timeout         time.Duration `yaml:"timeout"`
	RateLimitPerMin int           `yaml:"rate_limit_per_min"`
	MaxAttempts     int           `yaml:"max_attempts"`
	Backoff         time.Duration `yaml:"backoff"`
	// Strict disables the fallback rate when the lookup fails.
	Strict bool `yaml:"strict"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Calendar: Calendar{Timezone: "America/New_York"},
		Alpaca:   Alpaca{BaseURL: "https://paper-api.alpaca.markets"},
		Treasury: Treasury{
			BaseURL:         "https://api.fiscaldata.treasury.gov/services/api/fiscal_service",
			Timeout:         10 * time.Second,
			RateLimitPerMin: 60,
			MaxAttempts:     3,
			Backoff:         500 * time.Millisecond,
		},
		Logging: Logging{Level: "info", Format: "text"},
	}
}

// Load reads the YAML configuration file at the given path over the
// defaults and then applies environment variable overrides. A missing file
// is not an error: the defaults plus overrides are returned.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// Defaults only.
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MARKETCLOCK_TIMEZONE"); v != "" {
		cfg.Calendar.Timezone = v
	}

	if v := os.Getenv("ALPACA_API_KEY"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("ALPACA_API_SECRET"); v != "" {
		cfg.Alpaca.APISecret = v
	}
	if v := os.Getenv("ALPACA_BASE_URL"); v != "" {
		cfg.Alpaca.BaseURL = v
	}

	if v := os.Getenv("TREASURY_BASE_URL"); v != "" {
		cfg.Treasury.BaseURL = v
	}
	if v := os.Getenv("TREASURY_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Treasury.MaxAttempts = n
		}
	}
	if v := os.Getenv("TREASURY_STRICT"); v != "" {
		if b, err := format.ParseBool(v); err == nil {
			cfg.Treasury.Strict = b
		}
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	// Standard Alpaca env vars (highest priority, canonical names used by SDK).
	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		cfg.Alpaca.APISecret = v
	}
}
