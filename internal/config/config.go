package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	defaultRedisURL       = "redis://localhost:6379/0"
	defaultJWTSecret      = "change-me-jwt-secret"
	defaultJWTAccessTTL   = "24h"
	defaultRetryBackoff   = "60s"
	defaultVisionModel    = "claude-sonnet-4-5"
	defaultSendGridFrom   = "confirmations@travelplanner.app"
	defaultBookingMock    = "true"
)

// Config carries everything the api and worker binaries need. External
// integrations (Stripe, Anthropic, Browserless, SendGrid) fall back to mock or
// skip behavior when their keys are empty.
type Config struct {
	AppEnv      string
	DatabaseURL string
	RedisURL    string

	JWTSecret      string
	JWTAccessTTL   time.Duration
	InternalAPIKey string
	EncryptionKey  string

	BookingMockMode bool
	StripeSecretKey string

	AnthropicAPIKey string
	VisionModel     string
	BrowserlessWS   string

	SendGridAPIKey    string
	SendGridFromEmail string

	// The worker re-enqueues a failed trip task once after this backoff.
	WorkerRetryBackoff time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{}

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	cfg.RedisURL = strings.TrimSpace(getEnv("REDIS_URL", defaultRedisURL))

	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.InternalAPIKey = strings.TrimSpace(os.Getenv("INTERNAL_API_KEY"))
	cfg.EncryptionKey = strings.TrimSpace(os.Getenv("ENCRYPTION_KEY"))

	var err error
	cfg.JWTAccessTTL, err = parseDurationEnv("JWT_ACCESS_TTL", defaultJWTAccessTTL)
	if err != nil {
		return nil, err
	}
	cfg.WorkerRetryBackoff, err = parseDurationEnv("WORKER_RETRY_BACKOFF", defaultRetryBackoff)
	if err != nil {
		return nil, err
	}

	cfg.BookingMockMode = parseBoolEnv("BOOKING_MOCK_MODE", defaultBookingMock)
	cfg.StripeSecretKey = strings.TrimSpace(os.Getenv("STRIPE_SECRET_KEY"))

	cfg.AnthropicAPIKey = strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY"))
	cfg.VisionModel = strings.TrimSpace(getEnv("VISION_MODEL", defaultVisionModel))
	cfg.BrowserlessWS = strings.TrimSpace(os.Getenv("BROWSERLESS_WS"))

	cfg.SendGridAPIKey = strings.TrimSpace(os.Getenv("SENDGRID_API_KEY"))
	cfg.SendGridFromEmail = strings.TrimSpace(getEnv("SENDGRID_FROM_EMAIL", defaultSendGridFrom))

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.EncryptionKey == "" {
		return fmt.Errorf("ENCRYPTION_KEY is required")
	}
	if cfg.JWTAccessTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL must be > 0")
	}
	if cfg.WorkerRetryBackoff <= 0 {
		return fmt.Errorf("WORKER_RETRY_BACKOFF must be > 0")
	}
	if !cfg.BookingMockMode && cfg.AnthropicAPIKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY is required when BOOKING_MOCK_MODE=false")
	}
	if isProdLike(cfg.AppEnv) {
		if cfg.JWTSecret == "" || cfg.JWTSecret == defaultJWTSecret {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if cfg.InternalAPIKey == "" {
			return fmt.Errorf("in prod/release INTERNAL_API_KEY must be set")
		}
	}
	return nil
}

func isProdLike(env string) bool {
	return env == "prod" || env == "production" || env == "release"
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseBoolEnv(name, fallback string) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(name, fallback)))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
