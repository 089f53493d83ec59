package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "us-east-1", cfg.AWSRegion)
	assert.Equal(t, time.Duration(0), cfg.PassResurfaceAfter)
	assert.Equal(t, float64(2), cfg.RateLimitRPS)
	assert.Equal(t, 60, cfg.RateLimitBurst)
}

func TestLoadPassResurfaceAfter(t *testing.T) {
	t.Setenv("PASS_RESURFACE_AFTER", "72h")

	cfg, err := Load(zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 72*time.Hour, cfg.PassResurfaceAfter)
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	t.Setenv("PASS_RESURFACE_AFTER", "three days")

	_, err := Load(zerolog.Nop())
	assert.Error(t, err)
}

func TestLoadRejectsNegativeDuration(t *testing.T) {
	t.Setenv("PASS_RESURFACE_AFTER", "-1h")

	_, err := Load(zerolog.Nop())
	assert.Error(t, err)
}

func TestLoadRejectsInvalidRateLimit(t *testing.T) {
	t.Setenv("RATE_LIMIT_RPS", "0")

	_, err := Load(zerolog.Nop())
	assert.Error(t, err)
}
