// Package analysis runs the per-account pipeline: fetch fills, match them FIFO and
// summarize the holding times.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mselser95/hl-holdtime/internal/matcher"
	"github.com/mselser95/hl-holdtime/internal/stats"
	"github.com/mselser95/hl-holdtime/pkg/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Report status values.
const (
	StatusOK     = "ok"
	StatusNoData = "no_data"
)

// FillSource supplies the fills of one account.
type FillSource interface {
	FetchFills(ctx context.Context, account string) ([]types.Fill, error)
}

// Report is the analysis result for one account.
type Report struct {
	Account     string                     `json:"account"`
	Status      string                     `json:"status"`
	FillCount   int                        `json:"fill_count"`
	Summary     *stats.Summary             `json:"summary"`
	OverClosed  map[string]decimal.Decimal `json:"over_closed,omitempty"`
	GeneratedAt time.Time                  `json:"generated_at"`
}

// Empty reports whether the account has no closed observations.
func (r *Report) Empty() bool {
	return r == nil || r.Summary == nil || r.Summary.Overall == nil
}

// Analyzer turns an account's fills into a Report.
type Analyzer struct {
	source  FillSource
	matcher *matcher.Matcher
	logger  *zap.Logger
}

// NewAnalyzer creates an analyzer reading fills from source.
func NewAnalyzer(source FillSource, logger *zap.Logger) (*Analyzer, error) {
	if source == nil {
		return nil, errors.New("fill source cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &Analyzer{
		source:  source,
		matcher: matcher.New(logger),
		logger:  logger,
	}, nil
}

// Analyze fetches the account's fills and computes its holding-time report.
// Fetch errors are returned unchanged so callers can inspect them with errors.As.
func (a *Analyzer) Analyze(ctx context.Context, account string) (report *Report, err error) {
	start := time.Now()
	defer func() {
		AnalysisDurationSeconds.Observe(time.Since(start).Seconds())
		if err != nil {
			AnalysesTotal.WithLabelValues("error").Inc()
		}
	}()

	fills, err := a.source.FetchFills(ctx, account)
	if err != nil {
		return nil, err
	}

	a.logger.Info("fills-fetched",
		zap.String("account", account),
		zap.Int("count", len(fills)))

	return a.Build(account, fills)
}

// Build computes the report for fills that were already fetched.
func (a *Analyzer) Build(account string, fills []types.Fill) (*Report, error) {
	res, err := a.matcher.Match(fills)
	if err != nil {
		return nil, fmt.Errorf("match fills for %s: %w", account, err)
	}

	report := &Report{
		Account:     account,
		FillCount:   len(fills),
		Summary:     stats.Summarize(res),
		GeneratedAt: time.Now().UTC(),
	}
	if len(res.OverClosed) > 0 {
		report.OverClosed = res.OverClosed
		a.logger.Warn("over-closed-instruments",
			zap.String("account", account),
			zap.Int("instruments", len(res.OverClosed)))
	}

	if report.Empty() {
		report.Status = StatusNoData
		AnalysesTotal.WithLabelValues(StatusNoData).Inc()
		a.logger.Info("no-closed-trades",
			zap.String("account", account),
			zap.Int("fills", len(fills)))
		return report, nil
	}

	report.Status = StatusOK
	AnalysesTotal.WithLabelValues(StatusOK).Inc()

	a.logger.Info("account-analyzed",
		zap.String("account", account),
		zap.Int("fills", len(fills)),
		zap.Int("instruments", len(report.Summary.Instruments)),
		zap.Int("closes", report.Summary.Overall.CloseCount),
		zap.Float64("simple-average-hours", report.Summary.Overall.SimpleAverage))

	return report, nil
}
