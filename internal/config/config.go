package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreMongo    = "mongo"

	ProviderNone   = "none"
	ProviderStripe = "stripe"
)

// Config holds environment-driven configuration. It is read once at startup
// and handed to the components that need it.
type Config struct {
	Addr          string
	StoreDriver   string
	DatabaseURL   string
	MongoURI      string
	MongoDatabase string
	JWTSecret     string
	JWTTTL        time.Duration
	KafkaBrokers  []string
	LogLevel      slog.Level
	Payment       Payment
	Pricing       Pricing
}

// Payment configures the external payment processor.
type Payment struct {
	Provider            string
	StripeSecretKey     string
	StripeWebhookSecret string
	Currency            string
	ClientURL           string
	Timeout             time.Duration
}

// Pricing is the tax and shipping policy applied at checkout.
type Pricing struct {
	TaxRate      decimal.Decimal
	ShippingFlat decimal.Decimal
	Deferred     bool
}

// Load reads configuration from environment variables.
func Load() Config {
	addr := getEnv("APP_ADDR", "")
	if addr == "" {
		addr = ":" + getEnv("PORT", "8080")
	}

	cfg := Config{
		Addr:          addr,
		StoreDriver:   strings.ToLower(getEnv("STORE_DRIVER", StoreMemory)),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGO_DATABASE", "storefront"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		JWTTTL:        getDuration("JWT_TTL", 30*24*time.Hour),
		KafkaBrokers:  splitList(os.Getenv("KAFKA_BROKERS")),
		LogLevel:      parseLevel(os.Getenv("LOG_LEVEL")),
		Payment: Payment{
			Provider:            strings.ToLower(getEnv("PAYMENT_PROVIDER", ProviderNone)),
			StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
			StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
			Currency:            strings.ToLower(getEnv("PAYMENT_CURRENCY", "usd")),
			ClientURL:           strings.TrimRight(getEnv("CLIENT_URL", "http://localhost:5173"), "/"),
			Timeout:             getDuration("PAYMENT_TIMEOUT", 10*time.Second),
		},
		Pricing: Pricing{
			TaxRate:      getDecimal("TAX_RATE", decimal.RequireFromString("0.10")),
			ShippingFlat: getDecimal("SHIPPING_FLAT", decimal.RequireFromString("10.00")),
			Deferred:     getBool("PRICING_DEFERRED", false),
		},
	}
	return cfg
}

// Validate reports configuration that would make the server misbehave.
func (c Config) Validate() error {
	var errs []error
	switch c.StoreDriver {
	case StoreMemory, StoreMongo:
	case StorePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is not set"))
	}
	switch c.Payment.Provider {
	case ProviderNone:
	case ProviderStripe:
		if c.Payment.StripeSecretKey == "" || c.Payment.StripeWebhookSecret == "" {
			errs = append(errs, errors.New("STRIPE_SECRET_KEY and STRIPE_WEBHOOK_SECRET are required for the stripe provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown PAYMENT_PROVIDER %q", c.Payment.Provider))
	}
	if len(c.Payment.Currency) != 3 {
		errs = append(errs, fmt.Errorf("PAYMENT_CURRENCY %q is not an ISO 4217 code", c.Payment.Currency))
	}
	if c.Pricing.TaxRate.IsNegative() {
		errs = append(errs, errors.New("TAX_RATE must not be negative"))
	}
	if c.Pricing.ShippingFlat.IsNegative() {
		errs = append(errs, errors.New("SHIPPING_FLAT must not be negative"))
	}
	return errors.Join(errs...)
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}

func getBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getDecimal(key string, def decimal.Decimal) decimal.Decimal {
	if v := os.Getenv(key); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			return d
		}
	}
	return def
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	out := make([]string, 0)
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseLevel(v string) slog.Level {
	switch strings.ToLower(v) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
