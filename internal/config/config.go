package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var AppEnv Config

type Config struct {
	MongoURI  string
	DBName    string
	JWTSecret string

	// Checkout settings. Monetary values are minor currency units.
	TaxEnabled      bool
	TaxRate         float64
	ShippingEnabled bool
	ShippingCharges int64
	EmptyCartFloor  int64

	CODEnabled           bool
	OnlinePaymentEnabled bool
	Currency             string
	StripeSecretKey      string
	PaymentTimeout       time.Duration
	DraftTTL             time.Duration

	PromoteDefaultOnDelete bool
}

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}
	AppEnv = Config{
		MongoURI:  getEnvOrDefault("MONGO_URI", ""),
		DBName:    getEnvOrDefault("DB_NAME", "heremarket"),
		JWTSecret: getEnvOrDefault("JWT_SECRET", ""),

		TaxEnabled:      getBoolEnv("CHECKOUT_TAX_ENABLED", false),
		TaxRate:         getFloatEnv("CHECKOUT_TAX_RATE", 0),
		ShippingEnabled: getBoolEnv("CHECKOUT_SHIPPING_ENABLED", false),
		ShippingCharges: getInt64Env("CHECKOUT_SHIPPING_CHARGES", 0),
		EmptyCartFloor:  getInt64Env("CHECKOUT_EMPTY_CART_FLOOR", 0),

		CODEnabled:           getBoolEnv("CHECKOUT_COD_ENABLED", true),
		OnlinePaymentEnabled: getBoolEnv("CHECKOUT_ONLINE_PAYMENT_ENABLED", false),
		Currency:             getEnvOrDefault("CHECKOUT_CURRENCY", "usd"),
		StripeSecretKey:      getEnvOrDefault("STRIPE_SECRET_KEY", ""),
		PaymentTimeout:       getDurationEnv("PAYMENT_TIMEOUT_SECONDS", 15, time.Second),
		DraftTTL:             getDurationEnv("CHECKOUT_DRAFT_TTL_MINUTES", 30, time.Minute),

		PromoteDefaultOnDelete: getBoolEnv("ADDRESS_PROMOTE_ON_DELETE", false),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil && parsed >= 0 {
			return parsed
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil && parsed >= 0 {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return time.Duration(parsed) * unit
		}
	}
	return time.Duration(defaultValue) * unit
}
