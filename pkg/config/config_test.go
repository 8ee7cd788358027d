package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.InfoURL != "https://api.hyperliquid.xyz/info" {
		t.Errorf("unexpected InfoURL %q", cfg.InfoURL)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("expected 30s timeout, got %v", cfg.RequestTimeout)
	}
	if cfg.FetchRetries != 1 {
		t.Errorf("expected 1 retry, got %d", cfg.FetchRetries)
	}
	if !cfg.AggregateByTime {
		t.Error("expected AggregateByTime to default to true")
	}
	if cfg.BatchThresholdHours != 1.0 {
		t.Errorf("expected threshold 1.0, got %f", cfg.BatchThresholdHours)
	}
	if cfg.BatchComparison != "lte" {
		t.Errorf("expected comparison lte, got %q", cfg.BatchComparison)
	}
	if cfg.BreakerFailureThreshold != 5 {
		t.Errorf("expected breaker threshold 5, got %d", cfg.BreakerFailureThreshold)
	}
	if cfg.CacheTTL != 5*time.Minute {
		t.Errorf("expected cache TTL 5m, got %v", cfg.CacheTTL)
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("HL_INFO_URL", "http://localhost:9999/info")
	t.Setenv("HL_REQUEST_TIMEOUT", "5s")
	t.Setenv("HL_FETCH_RETRIES", "0")
	t.Setenv("HL_AGGREGATE_BY_TIME", "false")
	t.Setenv("BATCH_THRESHOLD_HOURS", "0.5")
	t.Setenv("BATCH_COMPARISON", "LT")
	t.Setenv("CACHE_MAX_ITEMS", "10")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.InfoURL != "http://localhost:9999/info" {
		t.Errorf("unexpected InfoURL %q", cfg.InfoURL)
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Errorf("expected 5s, got %v", cfg.RequestTimeout)
	}
	if cfg.FetchRetries != 0 {
		t.Errorf("expected 0 retries, got %d", cfg.FetchRetries)
	}
	if cfg.AggregateByTime {
		t.Error("expected AggregateByTime false")
	}
	if cfg.BatchThresholdHours != 0.5 {
		t.Errorf("expected 0.5, got %f", cfg.BatchThresholdHours)
	}
	if cfg.BatchComparison != "lt" {
		t.Errorf("expected lt, got %q", cfg.BatchComparison)
	}
	if cfg.CacheMaxItems != 10 {
		t.Errorf("expected 10, got %d", cfg.CacheMaxItems)
	}
}

func TestLoadFromEnv_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("HL_REQUEST_TIMEOUT", "soon")
	t.Setenv("BATCH_THRESHOLD_HOURS", "one")
	t.Setenv("HL_AGGREGATE_BY_TIME", "maybe")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("expected default timeout, got %v", cfg.RequestTimeout)
	}
	if cfg.BatchThresholdHours != 1.0 {
		t.Errorf("expected default threshold, got %f", cfg.BatchThresholdHours)
	}
	if !cfg.AggregateByTime {
		t.Error("expected default AggregateByTime")
	}
}

func TestLoadFromEnv_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{name: "too_many_retries", key: "HL_FETCH_RETRIES", value: "3", wantErr: "HL_FETCH_RETRIES"},
		{name: "negative_retries", key: "HL_FETCH_RETRIES", value: "-1", wantErr: "HL_FETCH_RETRIES"},
		{name: "bad_url", key: "HL_INFO_URL", value: "ftp://example.com", wantErr: "HL_INFO_URL"},
		{name: "negative_threshold", key: "BATCH_THRESHOLD_HOURS", value: "-2", wantErr: "BATCH_THRESHOLD_HOURS"},
		{name: "bad_comparison", key: "BATCH_COMPARISON", value: "eq", wantErr: "BATCH_COMPARISON"},
		{name: "zero_breaker_threshold", key: "BREAKER_FAILURE_THRESHOLD", value: "0", wantErr: "BREAKER_FAILURE_THRESHOLD"},
		{name: "zero_cache_items", key: "CACHE_MAX_ITEMS", value: "0", wantErr: "CACHE_MAX_ITEMS"},
		{name: "zero_timeout", key: "HL_REQUEST_TIMEOUT", value: "0s", wantErr: "HL_REQUEST_TIMEOUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := LoadFromEnv()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error mentioning %s, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestNewLoggerWithLevel(t *testing.T) {
	for _, level := range []string{"", "debug", "info", "warn", "error"} {
		logger, err := NewLoggerWithLevel(level)
		if err != nil {
			t.Errorf("level %q: unexpected error %v", level, err)
			continue
		}
		_ = logger.Sync()
	}

	_, err := NewLoggerWithLevel("verbose")
	if err == nil {
		t.Error("expected error for invalid level")
	}
}
