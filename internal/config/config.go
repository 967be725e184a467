package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"
)

const (
	defaultHTTPAddr         = ":8080"
	defaultDatabaseURL      = "tours.db"
	defaultJWTSecret        = "change-me-jwt-secret"
	defaultJWTTTL           = "24h"
	defaultCurrency         = "usd"
	defaultReconcileTimeout = "10s"
	defaultShutdownTimeout  = "10s"
	defaultExchange         = "bookings"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	DatabaseURL string

	JWTSecret string
	JWTTTL    time.Duration

	StripeSecretKey           string
	StripeWebhookSecret       string
	StripePortalConfiguration string
	PublicBaseURL             string
	Currency                  string

	// RedirectFallback is the requested value of BOOKING_REDIRECT_FALLBACK;
	// use RedirectFallbackEnabled to read the effective gate.
	RedirectFallback bool
	ReconcileTimeout time.Duration

	RabbitMQURL      string
	RabbitMQExchange string

	ShutdownTimeout time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{}
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("NODE_ENV"))
	}
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.HTTPAddr = strings.TrimSpace(getEnv("HTTP_ADDR", defaultHTTPAddr))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.StripeSecretKey = strings.TrimSpace(os.Getenv("STRIPE_SECRET_KEY"))
	cfg.StripeWebhookSecret = strings.TrimSpace(os.Getenv("STRIPE_WEBHOOK_SECRET"))
	cfg.StripePortalConfiguration = strings.TrimSpace(os.Getenv("STRIPE_BILLING_PORTAL_CONFIGURATION"))
	cfg.PublicBaseURL = strings.TrimRight(strings.TrimSpace(os.Getenv("PUBLIC_BASE_URL")), "/")
	cfg.Currency = strings.ToLower(strings.TrimSpace(getEnv("CURRENCY", defaultCurrency)))
	cfg.RabbitMQURL = strings.TrimSpace(os.Getenv("RABBITMQ_URL"))
	cfg.RabbitMQExchange = strings.TrimSpace(getEnv("RABBITMQ_EXCHANGE", defaultExchange))

	fallbackDefault := "true"
	if isProdLike(cfg.AppEnv) {
		fallbackDefault = "false"
	}
	cfg.RedirectFallback = parseBoolEnv("BOOKING_REDIRECT_FALLBACK", fallbackDefault)

	var err error
	cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", defaultJWTTTL)
	if err != nil {
		return nil, err
	}
	cfg.ReconcileTimeout, err = parseDurationEnv("RECONCILE_TIMEOUT", defaultReconcileTimeout)
	if err != nil {
		return nil, err
	}
	cfg.ShutdownTimeout, err = parseDurationEnv("SHUTDOWN_TIMEOUT", defaultShutdownTimeout)
	if err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	log.Printf("config loaded: env=%s addr=%s redirect_fallback=%t events=%t", cfg.AppEnv, cfg.HTTPAddr, cfg.RedirectFallbackEnabled(), cfg.RabbitMQURL != "")

	return cfg, nil
}

// RedirectFallbackEnabled is never true in a production-like environment,
// whatever BOOKING_REDIRECT_FALLBACK says.
func (c *Config) RedirectFallbackEnabled() bool {
	return c.RedirectFallback && !isProdLike(c.AppEnv)
}

func (c *Config) IsProduction() bool {
	return isProdLike(c.AppEnv)
}

func validateConfig(cfg *Config) error {
	if cfg.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR must not be empty")
	}
	if cfg.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if cfg.ReconcileTimeout <= 0 {
		return fmt.Errorf("RECONCILE_TIMEOUT must be > 0")
	}
	if cfg.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be > 0")
	}
	if len(cfg.Currency) != 3 {
		return fmt.Errorf("CURRENCY must be a three-letter ISO code")
	}
	if cfg.RabbitMQURL != "" && cfg.RabbitMQExchange == "" {
		return fmt.Errorf("RABBITMQ_EXCHANGE must not be empty when RABBITMQ_URL is set")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if cfg.StripeWebhookSecret == "" {
			return fmt.Errorf("in prod/release STRIPE_WEBHOOK_SECRET must be set")
		}
		if cfg.RedirectFallback {
			return fmt.Errorf("in prod/release BOOKING_REDIRECT_FALLBACK must not be enabled")
		}
	}

	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
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
