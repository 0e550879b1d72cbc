// Package config loads the lambda configuration from the environment.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	DefaultBetsTable   = "pick_poolr_bets"
	DefaultDraftTable  = "wapit_draft_picks"
	DefaultHTTPTimeout = 10 * time.Second
	DefaultUpstreamRPS = 10.0
	DefaultBurst       = 5
)

// Config holds everything the handler needs at process start.
type Config struct {
	Region         string
	BetsTable      string
	DraftTable     string
	UserPoolID     string
	AllowedOrigins string
	HTTPTimeout    time.Duration
	UpstreamRPS    float64
	UpstreamBurst  int
	LogLevel       zerolog.Level
}

// Load reads the configuration with os.Getenv.
func Load() (Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom reads the configuration through getenv. Region is the only value
// without a default.
func LoadFrom(getenv func(string) string) (Config, error) {
	cfg := Config{
		Region:         getenv("AWS_REGION"),
		BetsTable:      withDefault(getenv("BETS_TABLE"), DefaultBetsTable),
		DraftTable:     withDefault(getenv("DRAFT_TABLE"), DefaultDraftTable),
		UserPoolID:     getenv("USER_POOL_ID"),
		AllowedOrigins: getenv("ALLOWED_ORIGINS"),
		HTTPTimeout:    DefaultHTTPTimeout,
		UpstreamRPS:    DefaultUpstreamRPS,
		UpstreamBurst:  DefaultBurst,
		LogLevel:       zerolog.InfoLevel,
	}

	if cfg.Region == "" {
		return Config{}, errors.New("AWS_REGION is required")
	}

	if v := getenv("HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, errors.Wrapf(err, "invalid HTTP_TIMEOUT '%s'", v)
		}
		if d <= 0 {
			return Config{}, errors.Errorf("HTTP_TIMEOUT must be positive, got '%s'", v)
		}
		cfg.HTTPTimeout = d
	}

	if v := getenv("UPSTREAM_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil || rps <= 0 {
			return Config{}, errors.Errorf("invalid UPSTREAM_RPS '%s'", v)
		}
		cfg.UpstreamRPS = rps
	}

	if v := getenv("UPSTREAM_BURST"); v != "" {
		burst, err := strconv.Atoi(v)
		if err != nil || burst < 1 {
			return Config{}, errors.Errorf("invalid UPSTREAM_BURST '%s'", v)
		}
		cfg.UpstreamBurst = burst
	}

	if v := getenv("LOG_LEVEL"); v != "" {
		level, err := zerolog.ParseLevel(v)
		if err != nil {
			return Config{}, errors.Wrapf(err, "invalid LOG_LEVEL '%s'", v)
		}
		cfg.LogLevel = level
	}

	return cfg, nil
}

func withDefault(v string, def string) string {
	if v == "" {
		return def
	}
	return v
}
