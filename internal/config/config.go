package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port             int
	DatabasePath     string
	HistoryCachePath string

	// Quote provider
	AlphaVantageKey     string
	AlphaVantageBaseURL string
	QuoteTimeout        time.Duration

	// Fetch policy for per-symbol quote/history lookups. Concurrency bounds
	// parallel outstanding requests; MinInterval > 0 spaces requests out for
	// rate-limited providers.
	QuoteConcurrency int
	QuoteMinInterval time.Duration

	// Cron spec for the background history cache refresh.
	HistoryRefreshSchedule string
	// Cached history older than this is re-fetched on demand.
	HistoryCacheTTL time.Duration

	LogLevel string
	DevMode  bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:                   getEnvAsInt("PORT", 8080),
		DatabasePath:           getEnv("DATABASE_PATH", "./data/folio.db"),
		HistoryCachePath:       getEnv("HISTORY_CACHE_PATH", "./data/history_cache.db"),
		AlphaVantageKey:        getEnv("ALPHA_VANTAGE_API_KEY", "demo"),
		AlphaVantageBaseURL:    getEnv("ALPHA_VANTAGE_BASE_URL", "https://www.alphavantage.co/query"),
		QuoteTimeout:           getEnvAsDuration("QUOTE_TIMEOUT", 15*time.Second),
		QuoteConcurrency:       getEnvAsInt("QUOTE_CONCURRENCY", 4),
		QuoteMinInterval:       getEnvAsDuration("QUOTE_MIN_INTERVAL", 0),
		HistoryRefreshSchedule: getEnv("HISTORY_REFRESH_SCHEDULE", "@every 6h"),
		HistoryCacheTTL:        getEnvAsDuration("HISTORY_CACHE_TTL", 24*time.Hour),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		DevMode:                getEnvAsBool("DEV_MODE", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	if c.QuoteConcurrency < 1 {
		return fmt.Errorf("QUOTE_CONCURRENCY must be at least 1")
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
