package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	PlatformBaseURL string // Required: marketplace API origin, e.g. https://market.example.com
	ShopID          string // Required: this shop's platform ID (OAuth client_id)
	Subdomain       string // Required: this shop's subdomain on the platform
	PublicBaseURL   string // Required: this storefront's public origin, for the OAuth redirect

	SessionSigningKey string // Required: HS256 key for session cookies (32+ bytes)

	DatabaseFile         string        // Optional: path to SQLite database file (default: ./shopfront.db)
	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	SessionTTL           time.Duration // Session cookie lifetime (default: 7 days)
	HousekeepingInterval time.Duration // Idle session sweep interval (default: 1h)
	CatalogCacheTTL      time.Duration // Catalog read cache TTL (default: 5m)
}

func LoadConfig() Config {
	return Config{
		PlatformBaseURL:   strings.TrimRight(os.Getenv("SHOPFRONT_PLATFORM_URL"), "/"),
		ShopID:            os.Getenv("SHOPFRONT_SHOP_ID"),
		Subdomain:         os.Getenv("SHOPFRONT_SUBDOMAIN"),
		PublicBaseURL:     strings.TrimRight(os.Getenv("SHOPFRONT_PUBLIC_URL"), "/"),
		SessionSigningKey: os.Getenv("SHOPFRONT_SESSION_KEY"),

		DatabaseFile:         getEnvOrDefault("SHOPFRONT_DATABASE_FILE", "shopfront.db"),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		SessionTTL:           getEnvDurationOrDefault("SHOPFRONT_SESSION_TTL", 7*24*time.Hour),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
		CatalogCacheTTL:      getEnvDurationOrDefault("SHOPFRONT_CATALOG_CACHE_TTL", 5*time.Minute),
	}
}

// Validate reports the first missing required setting.
func (c Config) Validate() error {
	switch {
	case c.PlatformBaseURL == "":
		return fmt.Errorf("SHOPFRONT_PLATFORM_URL is required")
	case c.ShopID == "":
		return fmt.Errorf("SHOPFRONT_SHOP_ID is required")
	case c.Subdomain == "":
		return fmt.Errorf("SHOPFRONT_SUBDOMAIN is required")
	case c.PublicBaseURL == "":
		return fmt.Errorf("SHOPFRONT_PUBLIC_URL is required")
	case len(c.SessionSigningKey) < 32:
		return fmt.Errorf("SHOPFRONT_SESSION_KEY must be at least 32 bytes")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}
