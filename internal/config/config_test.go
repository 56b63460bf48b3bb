package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("APP_ADDR", "")
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("PAYMENT_PROVIDER", "")
	t.Setenv("TAX_RATE", "")
	t.Setenv("SHIPPING_FLAT", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("LOG_LEVEL", "")

	cfg := Load()
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, StoreMemory, cfg.StoreDriver)
	assert.Equal(t, ProviderNone, cfg.Payment.Provider)
	assert.Equal(t, "0.1", cfg.Pricing.TaxRate.String())
	assert.Equal(t, "10", cfg.Pricing.ShippingFlat.String())
	assert.Equal(t, 10*time.Second, cfg.Payment.Timeout)
	assert.Nil(t, cfg.KafkaBrokers)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("TAX_RATE", "0.07")
	t.Setenv("PRICING_DEFERRED", "true")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("PAYMENT_TIMEOUT", "3s")
	t.Setenv("CLIENT_URL", "https://shop.example.com/")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Load()
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, StorePostgres, cfg.StoreDriver)
	assert.Equal(t, "0.07", cfg.Pricing.TaxRate.String())
	assert.True(t, cfg.Pricing.Deferred)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 3*time.Second, cfg.Payment.Timeout)
	assert.Equal(t, "https://shop.example.com", cfg.Payment.ClientURL)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestValidate(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("PAYMENT_PROVIDER", "")
	t.Setenv("TAX_RATE", "")
	t.Setenv("SHIPPING_FLAT", "")
	t.Setenv("PAYMENT_CURRENCY", "")

	cfg := Load()
	cfg.JWTSecret = "secret"
	require.NoError(t, cfg.Validate())

	cfg.StoreDriver = StorePostgres
	cfg.DatabaseURL = ""
	assert.ErrorContains(t, cfg.Validate(), "DATABASE_URL")

	cfg.StoreDriver = StoreMemory
	cfg.Payment.Provider = ProviderStripe
	assert.ErrorContains(t, cfg.Validate(), "STRIPE_SECRET_KEY")

	cfg.Payment.StripeSecretKey = "sk_test"
	cfg.Payment.StripeWebhookSecret = "whsec_test"
	require.NoError(t, cfg.Validate())

	cfg.Payment.Currency = "jpy"
	require.NoError(t, cfg.Validate())
	cfg.Payment.Currency = "dollars"
	assert.ErrorContains(t, cfg.Validate(), "PAYMENT_CURRENCY")
	cfg.Payment.Currency = "usd"

	cfg.StoreDriver = "sqlite"
	assert.ErrorContains(t, cfg.Validate(), "unknown STORE_DRIVER")
}
