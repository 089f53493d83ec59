package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config holds everything read from the environment at startup.
type Config struct {
	Port      string
	AWSRegion string
	S3Bucket  string
	LogLevel  string

	// PassResurfaceAfter controls whether a "pass" decision eventually
	// re-surfaces its target in the feed. Zero means passes are excluded
	// forever. Likes never re-surface.
	PassResurfaceAfter time.Duration

	// Per-client rate limit for the HTTP surface.
	RateLimitRPS   float64
	RateLimitBurst int
}

// Load reads configuration from a .env file when present, falling back to
// environment variables and defaults.
func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		S3Bucket:       getEnv("S3_BUCKET_NAME", ""),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		RateLimitRPS:   2,
		RateLimitBurst: 60,
	}

	if raw := os.Getenv("PASS_RESURFACE_AFTER"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid PASS_RESURFACE_AFTER %q: %w", raw, err)
		}
		if d < 0 {
			return nil, fmt.Errorf("PASS_RESURFACE_AFTER must not be negative")
		}
		cfg.PassResurfaceAfter = d
	}

	if raw := os.Getenv("RATE_LIMIT_RPS"); raw != "" {
		rps, err := strconv.ParseFloat(raw, 64)
		if err != nil || rps <= 0 {
			return nil, fmt.Errorf("invalid RATE_LIMIT_RPS %q", raw)
		}
		cfg.RateLimitRPS = rps
	}
	if raw := os.Getenv("RATE_LIMIT_BURST"); raw != "" {
		burst, err := strconv.Atoi(raw)
		if err != nil || burst <= 0 {
			return nil, fmt.Errorf("invalid RATE_LIMIT_BURST %q", raw)
		}
		cfg.RateLimitBurst = burst
	}

	logger.Info().
		Str("port", cfg.Port).
		Str("aws_region", cfg.AWSRegion).
		Str("log_level", cfg.LogLevel).
		Dur("pass_resurface_after", cfg.PassResurfaceAfter).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
