package hyperliquid

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/mselser95/hl-holdtime/internal/circuitbreaker"
	"github.com/mselser95/hl-holdtime/pkg/types"
	"go.uber.org/zap"
)

const (
	// DefaultInfoURL is the public Hyperliquid info endpoint.
	DefaultInfoURL = "https://api.hyperliquid.xyz/info"

	// MaxRetries caps retries per fetch at one.
	MaxRetries = 1

	defaultTimeout    = 30 * time.Second
	defaultRetryDelay = 500 * time.Millisecond
	maxErrorBodyBytes = 512
)

// Client fetches fills from the Hyperliquid info API.
type Client struct {
	infoURL         string
	httpClient      *http.Client
	retries         int
	retryDelay      time.Duration
	aggregateByTime bool
	breaker         *circuitbreaker.Breaker
	logger          *zap.Logger
}

// Config holds client configuration.
type Config struct {
	InfoURL         string
	Timeout         time.Duration
	Retries         int // 0 or 1
	AggregateByTime bool
	Breaker         *circuitbreaker.Breaker // optional
	Logger          *zap.Logger
}

// userFillsRequest is the info request body for a user's fills.
type userFillsRequest struct {
	Type            string `json:"type"`
	User            string `json:"user"`
	AggregateByTime bool   `json:"aggregateByTime"`
}

// NewClient creates a new info API client.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.Retries < 0 || cfg.Retries > MaxRetries {
		return nil, fmt.Errorf("retries must be between 0 and %d, got %d", MaxRetries, cfg.Retries)
	}

	infoURL := cfg.InfoURL
	if infoURL == "" {
		infoURL = DefaultInfoURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		infoURL: infoURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		retries:         cfg.Retries,
		retryDelay:      defaultRetryDelay,
		aggregateByTime: cfg.AggregateByTime,
		breaker:         cfg.Breaker,
		logger:          cfg.Logger,
	}, nil
}

// FetchFills returns every fill the API reports for account. Transport failures are
// returned as *types.TransportError, malformed records as *types.MalformedFillError.
func (c *Client) FetchFills(ctx context.Context, account string) (fills []types.Fill, err error) {
	start := time.Now()
	defer func() {
		FetchDurationSeconds.Observe(time.Since(start).Seconds())
		if err != nil {
			FetchErrorsTotal.Inc()
		}
	}()

	records, err := c.fetchWithRetry(ctx, account)
	if err != nil {
		return nil, err
	}

	fills = make([]types.Fill, 0, len(records))
	for i, record := range records {
		fill, convErr := record.ToFill(i)
		if convErr != nil {
			c.logger.Warn("malformed-fill",
				zap.String("account", account),
				zap.Int("index", i),
				zap.Error(convErr))
			return nil, convErr
		}
		if fill.Size.IsZero() {
			c.logger.Debug("zero-size-fill-skipped",
				zap.String("account", account),
				zap.Int("index", i),
				zap.String("instrument", fill.Instrument),
				zap.Int64("time", fill.Timestamp))
			continue
		}
		fills = append(fills, fill)
	}

	FillsFetchedTotal.Add(float64(len(fills)))

	c.logger.Debug("fills-fetched",
		zap.String("account", account),
		zap.Int("count", len(fills)),
		zap.Duration("elapsed", time.Since(start)))

	return fills, nil
}

func (c *Client) fetchWithRetry(ctx context.Context, account string) (records []types.UserFill, err error) {
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			c.logger.Info("retrying-user-fills",
				zap.String("account", account),
				zap.Int("attempt", attempt+1),
				zap.Error(err))

			select {
			case <-ctx.Done():
				return nil, &types.TransportError{Op: "wait for retry", Err: ctx.Err()}
			case <-time.After(c.retryDelay):
			}
		}

		records, err = c.guardedFetch(ctx, account)
		if err == nil {
			return records, nil
		}

		if errors.Is(err, circuitbreaker.ErrOpen) || ctx.Err() != nil {
			return nil, err
		}

		var transportErr *types.TransportError
		if !errors.As(err, &transportErr) || !transportErr.Retryable() {
			return nil, err
		}
	}

	return nil, err
}

// guardedFetch runs a single request through the circuit breaker, if any.
func (c *Client) guardedFetch(ctx context.Context, account string) ([]types.UserFill, error) {
	if c.breaker == nil {
		return c.fetchOnce(ctx, account)
	}

	err := c.breaker.Allow()
	if err != nil {
		return nil, &types.TransportError{Op: "post user fills", StatusCode: http.StatusServiceUnavailable, Err: err}
	}

	records, err := c.fetchOnce(ctx, account)

	// A caller that gave up says nothing about upstream health.
	if err != nil && ctx.Err() != nil {
		c.breaker.Release()
		return nil, err
	}

	// Only upstream failures count against the breaker.
	var transportErr *types.TransportError
	if err != nil && errors.As(err, &transportErr) && transportErr.Retryable() {
		c.breaker.Record(err)
	} else {
		c.breaker.Record(nil)
	}

	return records, err
}

func (c *Client) fetchOnce(ctx context.Context, account string) ([]types.UserFill, error) {
	payload, err := json.Marshal(userFillsRequest{
		Type:            "userFills",
		User:            account,
		AggregateByTime: c.aggregateByTime,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.infoURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "hl-holdtime/1.0")

	c.logger.Debug("fetching-user-fills",
		zap.String("url", c.infoURL),
		zap.String("account", account),
		zap.Bool("aggregate-by-time", c.aggregateByTime))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &types.TransportError{Op: "do request", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, &types.TransportError{
			Op:         "post user fills",
			StatusCode: resp.StatusCode,
			Err:        errors.New(string(bytes.TrimSpace(body))),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &types.TransportError{Op: "read response body", Err: err}
	}

	// The info API returns a bare array of fills.
	var records []types.UserFill
	err = json.Unmarshal(body, &records)
	if err != nil {
		return nil, &types.TransportError{Op: "unmarshal response", StatusCode: resp.StatusCode, Err: err}
	}

	return records, nil
}
