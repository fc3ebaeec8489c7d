package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var AppEnv Config

type Config struct {
	Port            string
	MongoURI        string
	DBName          string
	JWTSecret       string
	RedisURL        string
	RequestTimeout  time.Duration
	Stripe          StripeConfig
	Checkout        CheckoutConfig
	DeliveryMethods DeliveryMethods
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
}

type CheckoutConfig struct {
	Currency   string
	SuccessURL string
	CancelURL  string
	RateLimit  float64
	RateBurst  int
}

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}

	methods, err := LoadDeliveryMethods(getEnvOrDefault("DELIVERY_METHODS_FILE", ""))
	if err != nil {
		log.Fatalf("delivery methods: %v", err)
	}

	AppEnv = Config{
		Port:           getEnvOrDefault("PORT", "8080"),
		MongoURI:       getEnvOrDefault("MONGO_URI", ""),
		DBName:         getEnvOrDefault("DB_NAME", "storefront"),
		JWTSecret:      getEnvOrDefault("JWT_SECRET", ""),
		RedisURL:       getEnvOrDefault("REDIS_URL", ""),
		RequestTimeout: getDurationEnv("REQUEST_TIMEOUT_SECONDS", 5, time.Second),
		Stripe: StripeConfig{
			SecretKey:     getEnvOrDefault("STRIPE_SECRET_KEY", ""),
			WebhookSecret: getEnvOrDefault("STRIPE_WEBHOOK_SECRET", ""),
		},
		Checkout: CheckoutConfig{
			Currency:   getEnvOrDefault("CURRENCY", "eur"),
			SuccessURL: getEnvOrDefault("CHECKOUT_SUCCESS_URL", "http://localhost:3000/checkout/success?session_id={CHECKOUT_SESSION_ID}"),
			CancelURL:  getEnvOrDefault("CHECKOUT_CANCEL_URL", "http://localhost:3000/cart"),
			RateLimit:  getFloatEnv("CHECKOUT_RATE_LIMIT", 2),
			RateBurst:  getIntEnv("CHECKOUT_RATE_BURST", 5),
		},
		DeliveryMethods: methods,
	}

	if AppEnv.Stripe.WebhookSecret == "" {
		log.Println("[CONFIG] [WARN] STRIPE_WEBHOOK_SECRET is empty, every webhook will be rejected")
	}
}

// ValidateServe lists every key the HTTP server cannot start without.
func (c Config) ValidateServe() error {
	var missing []string
	if c.MongoURI == "" {
		missing = append(missing, "MONGO_URI")
	}
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if c.Stripe.SecretKey == "" {
		missing = append(missing, "STRIPE_SECRET_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}
