package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"vbank-adapter/internal/keystore"

	"github.com/joho/godotenv"
)

const (
	defaultAppPort     = "8080"
	defaultWebhookPath = "/webhook/virtual-account"
)

type Config struct {
	AppEnv  string
	AppPort string

	CountryCode      string
	AppID            string
	BaseURL          string
	PrivateKeyPath   string
	PublicKeyPath    string
	GatewayPublicKey string

	// Outbound requests per second; zero disables the limiter.
	RateLimit float64
	RateBurst int

	WebhookPath string
	// InternalSecret lets trusted callers use the internal rate-limit tier.
	InternalSecret string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:           os.Getenv("APP_ENV"),
		AppPort:          envOr("APP_PORT", defaultAppPort),
		CountryCode:      os.Getenv("VBANK_COUNTRY_CODE"),
		AppID:            os.Getenv("VBANK_APP_ID"),
		BaseURL:          strings.TrimRight(os.Getenv("VBANK_BASE_URL"), "/"),
		PrivateKeyPath:   envOr("VBANK_PRIVATE_KEY_PATH", keystore.DefaultPrivateKeyPath),
		PublicKeyPath:    envOr("VBANK_PUBLIC_KEY_PATH", keystore.DefaultPublicKeyPath),
		GatewayPublicKey: os.Getenv("VBANK_GATEWAY_PUBLIC_KEY"),
		WebhookPath:      envOr("WEBHOOK_PATH", defaultWebhookPath),
		InternalSecret:   os.Getenv("INTERNAL_SECRET_KEY"),
		DBHost:           os.Getenv("DB_HOST"),
		DBUser:           os.Getenv("DB_USER"),
		DBPassword:       os.Getenv("DB_PASSWORD"),
		DBName:           os.Getenv("DB_NAME"),
		DBPort:           os.Getenv("DB_PORT"),
	}

	if v, err := strconv.ParseFloat(os.Getenv("VBANK_RATE_LIMIT"), 64); err == nil && v > 0 {
		cfg.RateLimit = v
	}
	if v, err := strconv.Atoi(os.Getenv("VBANK_RATE_BURST")); err == nil && v > 0 {
		cfg.RateBurst = v
	}
	if cfg.RateLimit > 0 && cfg.RateBurst == 0 {
		cfg.RateBurst = 1
	}

	return cfg
}

// Validate reports every missing required setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.CountryCode == "" {
		errs = append(errs, errors.New("VBANK_COUNTRY_CODE is required"))
	}
	if c.AppID == "" {
		errs = append(errs, errors.New("VBANK_APP_ID is required"))
	}
	if c.BaseURL == "" {
		errs = append(errs, errors.New("VBANK_BASE_URL is required"))
	}
	if c.GatewayPublicKey == "" {
		errs = append(errs, errors.New("VBANK_GATEWAY_PUBLIC_KEY is required"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// JournalEnabled reports whether notifications should be persisted.
func (c *Config) JournalEnabled() bool {
	return c.DBHost != ""
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
