// Package batch classifies many accounts by their overall average holding time.
package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mselser95/hl-holdtime/internal/analysis"
	"github.com/mselser95/hl-holdtime/pkg/types"
	"go.uber.org/zap"
)

// SkipReason says why an account was left out of the classification.
type SkipReason string

const (
	SkipInvalidAddress SkipReason = "invalid_address"
	SkipDuplicate      SkipReason = "duplicate"
	SkipFetchFailed    SkipReason = "fetch_failed"
	SkipMalformedFills SkipReason = "malformed_fills"
	SkipAnalysisFailed SkipReason = "analysis_failed"
	SkipNoClosedTrades SkipReason = "no_closed_trades"
)

// Analyzer produces the report for one account.
type Analyzer interface {
	Analyze(ctx context.Context, account string) (*analysis.Report, error)
}

// Account is a classified account.
type Account struct {
	Address              string  `json:"address"`
	SimpleAverageHours   float64 `json:"simple_average_hours"`
	WeightedAverageHours float64 `json:"weighted_average_hours"`
	CloseCount           int     `json:"close_count"`
	FillCount            int     `json:"fill_count"`
}

// Skip records an account that could not be classified.
type Skip struct {
	Address string     `json:"address"`
	Reason  SkipReason `json:"reason"`
	Error   string     `json:"error,omitempty"`
}

// Result is the outcome of one batch run.
type Result struct {
	RunID     string        `json:"run_id"`
	Criteria  Criteria      `json:"criteria"`
	Matched   []Account     `json:"matched"`
	Rejected  []Account     `json:"rejected"`
	Skipped   []Skip        `json:"skipped"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
}

// Addresses returns the matched account addresses in input order.
func (r *Result) Addresses() []string {
	addresses := make([]string, 0, len(r.Matched))
	for _, a := range r.Matched {
		addresses = append(addresses, a.Address)
	}
	return addresses
}

// Filter runs the per-account analysis over a list of accounts, one at a time.
type Filter struct {
	analyzer Analyzer
	criteria Criteria
	logger   *zap.Logger
}

// Config holds filter configuration.
type Config struct {
	Analyzer Analyzer
	Criteria Criteria
	Logger   *zap.Logger
}

// NewFilter creates a batch filter.
func NewFilter(cfg *Config) (*Filter, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.Analyzer == nil {
		return nil, errors.New("analyzer cannot be nil")
	}
	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	criteria := cfg.Criteria
	if criteria.Comparison == "" {
		criteria.Comparison = LessOrEqual
	}
	err := criteria.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate criteria: %w", err)
	}

	return &Filter{
		analyzer: cfg.Analyzer,
		criteria: criteria,
		logger:   cfg.Logger,
	}, nil
}

// Criteria returns the classification criteria in use.
func (f *Filter) Criteria() Criteria {
	return f.criteria
}

// Run analyzes each account in order. A failing account is recorded in Skipped and the
// run continues; only context cancellation stops it early, in which case the partial
// result is returned together with the context error.
func (f *Filter) Run(ctx context.Context, accounts []string) (*Result, error) {
	result := &Result{
		RunID:     uuid.New().String(),
		Criteria:  f.criteria,
		Matched:   []Account{},
		Rejected:  []Account{},
		Skipped:   []Skip{},
		StartedAt: time.Now().UTC(),
	}

	logger := f.logger.With(zap.String("run-id", result.RunID))
	logger.Info("batch-started",
		zap.Int("accounts", len(accounts)),
		zap.String("criteria", f.criteria.String()))

	defer func() {
		result.Duration = time.Since(result.StartedAt)
		RunDurationSeconds.Observe(result.Duration.Seconds())
	}()

	seen := make(map[string]bool, len(accounts))
	for i, raw := range accounts {
		err := ctx.Err()
		if err != nil {
			logger.Warn("batch-cancelled",
				zap.Int("processed", i),
				zap.Int("remaining", len(accounts)-i))
			return result, fmt.Errorf("batch cancelled: %w", err)
		}

		account, ok := NormalizeAddress(raw)
		if !ok {
			f.skip(logger, result, raw, SkipInvalidAddress, nil)
			continue
		}
		if seen[account] {
			f.skip(logger, result, account, SkipDuplicate, nil)
			continue
		}
		seen[account] = true

		report, err := f.analyzer.Analyze(ctx, account)
		if err != nil {
			if ctx.Err() != nil {
				return result, fmt.Errorf("batch cancelled: %w", ctx.Err())
			}
			f.skip(logger, result, account, classifyError(err), err)
			continue
		}

		if report.Empty() {
			f.skip(logger, result, account, SkipNoClosedTrades, nil)
			continue
		}

		overall := report.Summary.Overall
		classified := Account{
			Address:              account,
			SimpleAverageHours:   overall.SimpleAverage,
			WeightedAverageHours: overall.WeightedAverage,
			CloseCount:           overall.CloseCount,
			FillCount:            report.FillCount,
		}

		if f.criteria.Matches(overall.SimpleAverage) {
			result.Matched = append(result.Matched, classified)
			AccountsClassifiedTotal.WithLabelValues("matched").Inc()
			logger.Info("account-matched",
				zap.String("account", account),
				zap.Float64("simple-average-hours", overall.SimpleAverage))
			continue
		}

		result.Rejected = append(result.Rejected, classified)
		AccountsClassifiedTotal.WithLabelValues("rejected").Inc()
		logger.Info("account-rejected",
			zap.String("account", account),
			zap.Float64("simple-average-hours", overall.SimpleAverage),
			zap.String("criteria", f.criteria.String()))
	}

	logger.Info("batch-completed",
		zap.Int("matched", len(result.Matched)),
		zap.Int("rejected", len(result.Rejected)),
		zap.Int("skipped", len(result.Skipped)))

	return result, nil
}

func (f *Filter) skip(logger *zap.Logger, result *Result, account string, reason SkipReason, err error) {
	s := Skip{Address: account, Reason: reason}
	if err != nil {
		s.Error = err.Error()
	}
	result.Skipped = append(result.Skipped, s)
	AccountsSkippedTotal.WithLabelValues(string(reason)).Inc()

	logger.Warn("account-skipped",
		zap.String("account", account),
		zap.String("reason", string(reason)),
		zap.Error(err))
}

func classifyError(err error) SkipReason {
	var transportErr *types.TransportError
	if errors.As(err, &transportErr) {
		return SkipFetchFailed
	}
	var malformed *types.MalformedFillError
	if errors.As(err, &malformed) {
		return SkipMalformedFills
	}
	return SkipAnalysisFailed
}
