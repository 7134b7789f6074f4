package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds runtime configuration parsed from environment variables.
type Config struct {
	HTTPAddr        string
	DBConnString    string
	ShutdownTimeout time.Duration
	StorefrontURL   string
	Shopify         ShopifyConfig
}

// ShopifyConfig holds credentials for the platform's Admin and Storefront
// GraphQL APIs.
type ShopifyConfig struct {
	ShopDomain         string
	APIVersion         string
	AdminToken         string
	StorefrontToken    string
	DiscountFunctionID string
	Timeout            time.Duration
}

// FromEnv builds Config with defaults, overridden by environment variables.
// DB_DSN is optional: when empty the reconciliation audit log is disabled.
func FromEnv() Config {
	return Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		DBConnString:    envOrDefault("DB_DSN", ""),
		ShutdownTimeout: envDuration("SHUTDOWN_TIMEOUT_SECONDS", 10*time.Second),
		StorefrontURL:   envOrDefault("STOREFRONT_URL", ""),
		Shopify: ShopifyConfig{
			ShopDomain:         envOrDefault("SHOPIFY_SHOP_DOMAIN", ""),
			APIVersion:         envOrDefault("SHOPIFY_API_VERSION", "2025-01"),
			AdminToken:         envOrDefault("SHOPIFY_ADMIN_TOKEN", ""),
			StorefrontToken:    envOrDefault("SHOPIFY_STOREFRONT_TOKEN", ""),
			DiscountFunctionID: envOrDefault("SHOPIFY_DISCOUNT_FUNCTION_ID", ""),
			Timeout:            envDuration("SHOPIFY_TIMEOUT_SECONDS", 10*time.Second),
		},
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		seconds, err := strconv.Atoi(v)
		if err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return def
}
