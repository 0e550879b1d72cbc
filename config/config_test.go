package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestLoadFrom_defaults(t *testing.T) {
	cfg, err := LoadFrom(env(map[string]string{"AWS_REGION": "us-east-1"}))
	require.NoError(t, err)

	assert.Equal(t, "us-east-1", cfg.Region)
	assert.Equal(t, DefaultBetsTable, cfg.BetsTable)
	assert.Equal(t, DefaultDraftTable, cfg.DraftTable)
	assert.Equal(t, "", cfg.UserPoolID)
	assert.Equal(t, DefaultHTTPTimeout, cfg.HTTPTimeout)
	assert.Equal(t, DefaultUpstreamRPS, cfg.UpstreamRPS)
	assert.Equal(t, DefaultBurst, cfg.UpstreamBurst)
	assert.Equal(t, zerolog.InfoLevel, cfg.LogLevel)
}

func TestLoadFrom_overrides(t *testing.T) {
	cfg, err := LoadFrom(env(map[string]string{
		"AWS_REGION":      "us-west-2",
		"BETS_TABLE":      "bets_dev",
		"DRAFT_TABLE":     "draft_dev",
		"USER_POOL_ID":    "us-west-2_abc",
		"ALLOWED_ORIGINS": "http://localhost:5173",
		"HTTP_TIMEOUT":    "2500ms",
		"UPSTREAM_RPS":    "2.5",
		"UPSTREAM_BURST":  "1",
		"LOG_LEVEL":       "debug",
	}))
	require.NoError(t, err)

	assert.Equal(t, "bets_dev", cfg.BetsTable)
	assert.Equal(t, "draft_dev", cfg.DraftTable)
	assert.Equal(t, "us-west-2_abc", cfg.UserPoolID)
	assert.Equal(t, "http://localhost:5173", cfg.AllowedOrigins)
	assert.Equal(t, 2500*time.Millisecond, cfg.HTTPTimeout)
	assert.Equal(t, 2.5, cfg.UpstreamRPS)
	assert.Equal(t, 1, cfg.UpstreamBurst)
	assert.Equal(t, zerolog.DebugLevel, cfg.LogLevel)
}

func TestLoadFrom_errors(t *testing.T) {
	cases := []map[string]string{
		{},
		{"AWS_REGION": "us-east-1", "HTTP_TIMEOUT": "soon"},
		{"AWS_REGION": "us-east-1", "HTTP_TIMEOUT": "-1s"},
		{"AWS_REGION": "us-east-1", "UPSTREAM_RPS": "0"},
		{"AWS_REGION": "us-east-1", "UPSTREAM_BURST": "many"},
		{"AWS_REGION": "us-east-1", "LOG_LEVEL": "loud"},
	}

	for _, c := range cases {
		_, err := LoadFrom(env(c))
		assert.Error(t, err, c)
	}
}
