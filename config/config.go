package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all service configuration, loaded from environment variables.
type Config struct {
	Host           string
	Port           string
	DatabaseURL    string
	AllowedOrigins string

	// RelayMode selects the cross-origin fetch capability: "http" for a
	// plain HTTP client, "browser" for the headless-browser relay.
	RelayMode string

	// FetchTimeout bounds the whole partner fan-out for one identifier.
	FetchTimeout time.Duration

	// SettleDelay is the pause after a detected navigation before the
	// pipeline re-runs, so late-rendered identifiers have a chance to land.
	SettleDelay time.Duration

	// IdentityRetryLimit / IdentityRetryDelay bound the re-extraction loop
	// when a watched page has no identifier yet.
	IdentityRetryLimit int
	IdentityRetryDelay time.Duration

	// WatchSpec is the cron spec for re-running watched pages.
	WatchSpec string

	// TrackingEndpoint is the external sink click events are forwarded to.
	// Empty disables forwarding; events are still stored locally.
	TrackingEndpoint string

	RequireAPIKey bool
	RateLimit     float64 // requests per second per client
	MaxWorkers    int
}

// Load reads the configuration from the environment.
func Load() *Config {
	return &Config{
		Host:               getEnv("HOST", "0.0.0.0"),
		Port:               getEnv("PORT", "8080"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		AllowedOrigins:     getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),
		RelayMode:          getEnv("RELAY_MODE", "http"),
		FetchTimeout:       getEnvDuration("FETCH_TIMEOUT", 8*time.Second),
		SettleDelay:        getEnvDuration("SETTLE_DELAY", 2*time.Second),
		IdentityRetryLimit: getEnvInt("IDENTITY_RETRY_LIMIT", 10),
		IdentityRetryDelay: getEnvDuration("IDENTITY_RETRY_DELAY", 1*time.Second),
		WatchSpec:          getEnv("WATCH_CRON_SPEC", "0 */30 * * * *"),
		TrackingEndpoint:   os.Getenv("TRACKING_ENDPOINT"),
		RequireAPIKey:      getEnvBool("REQUIRE_API_KEY", false),
		RateLimit:          getEnvFloat("RATE_LIMIT_RPS", 5),
		MaxWorkers:         getEnvInt("MAX_WORKERS", 5),
	}
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
