package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Application
	LogLevel string
	HTTPPort string

	// Hyperliquid info API
	InfoURL         string
	RequestTimeout  time.Duration
	FetchRetries    int
	AggregateByTime bool

	// Batch classification
	BatchThresholdHours float64
	BatchComparison     string

	// Upstream circuit breaker
	BreakerFailureThreshold int
	BreakerCooldown         time.Duration

	// Report cache (serve mode)
	CacheTTL      time.Duration
	CacheMaxItems int
}

// LoadFromEnv loads configuration from environment variables with defaults.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		// Application defaults
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		HTTPPort: getEnvOrDefault("HTTP_PORT", "8080"),

		// Hyperliquid defaults
		InfoURL:         getEnvOrDefault("HL_INFO_URL", "https://api.hyperliquid.xyz/info"),
		RequestTimeout:  getDurationOrDefault("HL_REQUEST_TIMEOUT", 30*time.Second),
		FetchRetries:    getIntOrDefault("HL_FETCH_RETRIES", 1),
		AggregateByTime: getBoolOrDefault("HL_AGGREGATE_BY_TIME", true),

		// Batch defaults: simple average <= 1h
		BatchThresholdHours: getFloat64OrDefault("BATCH_THRESHOLD_HOURS", 1.0),
		BatchComparison:     strings.ToLower(getEnvOrDefault("BATCH_COMPARISON", "lte")),

		// Breaker defaults
		BreakerFailureThreshold: getIntOrDefault("BREAKER_FAILURE_THRESHOLD", 5),
		BreakerCooldown:         getDurationOrDefault("BREAKER_COOLDOWN", 30*time.Second),

		// Cache defaults
		CacheTTL:      getDurationOrDefault("CACHE_TTL", 5*time.Minute),
		CacheMaxItems: getIntOrDefault("CACHE_MAX_ITEMS", 1000),
	}

	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that configuration values are valid.
func (c *Config) Validate() error {
	if c.HTTPPort == "" {
		return fmt.Errorf("HTTP_PORT cannot be empty")
	}

	if c.InfoURL == "" {
		return fmt.Errorf("HL_INFO_URL cannot be empty")
	}
	u, err := url.Parse(c.InfoURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("HL_INFO_URL must be an http(s) URL, got %q", c.InfoURL)
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("HL_REQUEST_TIMEOUT must be positive, got %v", c.RequestTimeout)
	}

	if c.FetchRetries < 0 || c.FetchRetries > 1 {
		return fmt.Errorf("HL_FETCH_RETRIES must be 0 or 1, got %d", c.FetchRetries)
	}

	if c.BatchThresholdHours < 0 {
		return fmt.Errorf("BATCH_THRESHOLD_HOURS cannot be negative, got %f", c.BatchThresholdHours)
	}

	switch c.BatchComparison {
	case "lte", "lt", "gte", "gt":
	default:
		return fmt.Errorf("BATCH_COMPARISON must be one of lte, lt, gte, gt, got %q", c.BatchComparison)
	}

	if c.BreakerFailureThreshold <= 0 {
		return fmt.Errorf("BREAKER_FAILURE_THRESHOLD must be positive, got %d", c.BreakerFailureThreshold)
	}

	if c.BreakerCooldown <= 0 {
		return fmt.Errorf("BREAKER_COOLDOWN must be positive, got %v", c.BreakerCooldown)
	}

	if c.CacheMaxItems <= 0 {
		return fmt.Errorf("CACHE_MAX_ITEMS must be positive, got %d", c.CacheMaxItems)
	}

	return nil
}

func getEnvOrDefault(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getFloat64OrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	floatVal, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}

	return floatVal
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolVal, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return boolVal
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}
