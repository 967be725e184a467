package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"APP_ENV", "NODE_ENV", "HTTP_ADDR", "DATABASE_URL", "JWT_SECRET", "JWT_TTL",
		"STRIPE_SECRET_KEY", "STRIPE_WEBHOOK_SECRET", "STRIPE_BILLING_PORTAL_CONFIGURATION",
		"PUBLIC_BASE_URL", "CURRENCY", "BOOKING_REDIRECT_FALLBACK", "RECONCILE_TIMEOUT",
		"RABBITMQ_URL", "RABBITMQ_EXCHANGE", "SHUTDOWN_TIMEOUT",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "tours.db", cfg.DatabaseURL)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, "usd", cfg.Currency)
	assert.Equal(t, 10*time.Second, cfg.ReconcileTimeout)
	assert.Equal(t, "bookings", cfg.RabbitMQExchange)
	assert.True(t, cfg.RedirectFallbackEnabled())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_NodeEnvFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("NODE_ENV", "production")
	t.Setenv("JWT_SECRET", "a-real-secret")
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_x")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.RedirectFallbackEnabled())
}

func TestLoad_ProductionRejectsFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "prod")
	t.Setenv("JWT_SECRET", "a-real-secret")
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_x")
	t.Setenv("BOOKING_REDIRECT_FALLBACK", "true")

	_, err := Load()
	assert.ErrorContains(t, err, "BOOKING_REDIRECT_FALLBACK")
}

func TestLoad_ProductionRequiresSecrets(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "release")

	_, err := Load()
	assert.ErrorContains(t, err, "JWT_SECRET")

	t.Setenv("JWT_SECRET", "a-real-secret")
	_, err = Load()
	assert.ErrorContains(t, err, "STRIPE_WEBHOOK_SECRET")
}

func TestLoad_InvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("RECONCILE_TIMEOUT", "soon")
	_, err := Load()
	assert.ErrorContains(t, err, "RECONCILE_TIMEOUT")

	clearEnv(t)
	t.Setenv("CURRENCY", "euro")
	_, err = Load()
	assert.ErrorContains(t, err, "CURRENCY")
}

func TestRedirectFallbackEnabled_GateIsAirtight(t *testing.T) {
	cfg := &Config{AppEnv: "production", RedirectFallback: true}
	assert.False(t, cfg.RedirectFallbackEnabled())

	cfg = &Config{AppEnv: "staging", RedirectFallback: true}
	assert.True(t, cfg.RedirectFallbackEnabled())

	cfg = &Config{AppEnv: "dev", RedirectFallback: false}
	assert.False(t, cfg.RedirectFallbackEnabled())
}
