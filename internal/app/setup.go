package app

import (
	"context"
	"fmt"

	"github.com/mselser95/hl-holdtime/internal/analysis"
	"github.com/mselser95/hl-holdtime/internal/batch"
	"github.com/mselser95/hl-holdtime/internal/circuitbreaker"
	"github.com/mselser95/hl-holdtime/internal/hyperliquid"
	"github.com/mselser95/hl-holdtime/pkg/cache"
	"github.com/mselser95/hl-holdtime/pkg/config"
	"github.com/mselser95/hl-holdtime/pkg/healthprobe"
	"github.com/mselser95/hl-holdtime/pkg/httpserver"
	"go.uber.org/zap"
)

// New creates a new application instance.
func New(cfg *config.Config, logger *zap.Logger, opts *Options) (*App, error) {
	if opts == nil {
		opts = &Options{}
	}
	if opts.Port != "" {
		cfg.HTTPPort = opts.Port
	}

	ctx, cancel := context.WithCancel(context.Background())

	healthChecker := setupHealthChecker()

	breaker, err := setupBreaker(cfg, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup circuit breaker: %w", err)
	}
	healthChecker.AddCheck("upstream", func() error {
		if breaker.IsOpen() {
			return circuitbreaker.ErrOpen
		}
		return nil
	})

	reportCache, err := setupCache(cfg, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup cache: %w", err)
	}

	analyzer, err := setupAnalyzer(cfg, logger, breaker)
	if err != nil {
		reportCache.Close()
		cancel()
		return nil, fmt.Errorf("setup analyzer: %w", err)
	}
	cachedAnalyzer := analysis.NewCachedAnalyzer(analyzer, reportCache, cfg.CacheTTL)

	httpServer, err := setupHTTPServer(cfg, logger, healthChecker, cachedAnalyzer)
	if err != nil {
		reportCache.Close()
		cancel()
		return nil, fmt.Errorf("setup http server: %w", err)
	}

	return &App{
		cfg:           cfg,
		logger:        logger,
		healthChecker: healthChecker,
		httpServer:    httpServer,
		breaker:       breaker,
		reportCache:   reportCache,
		analyzer:      cachedAnalyzer,
		ctx:           ctx,
		cancel:        cancel,
	}, nil
}

// NewAnalyzer builds the uncached fetch-match-summarize pipeline used by the CLI commands.
func NewAnalyzer(cfg *config.Config, logger *zap.Logger) (*analysis.Analyzer, error) {
	breaker, err := setupBreaker(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("setup circuit breaker: %w", err)
	}
	return setupAnalyzer(cfg, logger, breaker)
}

// Criteria returns the batch criteria configured through the environment.
func Criteria(cfg *config.Config) (batch.Criteria, error) {
	comparison, err := batch.ParseComparison(cfg.BatchComparison)
	if err != nil {
		return batch.Criteria{}, err
	}
	return batch.Criteria{
		ThresholdHours: cfg.BatchThresholdHours,
		Comparison:     comparison,
	}, nil
}

func setupHealthChecker() *healthprobe.HealthChecker {
	return healthprobe.New()
}

func setupBreaker(cfg *config.Config, logger *zap.Logger) (*circuitbreaker.Breaker, error) {
	return circuitbreaker.New(&circuitbreaker.Config{
		FailureThreshold: cfg.BreakerFailureThreshold,
		Cooldown:         cfg.BreakerCooldown,
		Logger:           logger,
	})
}

func setupCache(cfg *config.Config, logger *zap.Logger) (cache.Cache, error) {
	return cache.NewRistrettoCache(cache.ConfigForItems(int64(cfg.CacheMaxItems), logger))
}

func setupAnalyzer(cfg *config.Config, logger *zap.Logger, breaker *circuitbreaker.Breaker) (*analysis.Analyzer, error) {
	client, err := hyperliquid.NewClient(&hyperliquid.Config{
		InfoURL:         cfg.InfoURL,
		Timeout:         cfg.RequestTimeout,
		Retries:         cfg.FetchRetries,
		AggregateByTime: cfg.AggregateByTime,
		Breaker:         breaker,
		Logger:          logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create hyperliquid client: %w", err)
	}

	return analysis.NewAnalyzer(client, logger)
}

func setupHTTPServer(
	cfg *config.Config,
	logger *zap.Logger,
	healthChecker *healthprobe.HealthChecker,
	analyzer *analysis.CachedAnalyzer,
) (*httpserver.Server, error) {
	criteria, err := Criteria(cfg)
	if err != nil {
		return nil, err
	}

	return httpserver.New(&httpserver.Config{
		Port:          cfg.HTTPPort,
		Logger:        logger,
		HealthChecker: healthChecker,
		Analyzer:      analyzer,
		Criteria:      criteria,
	})
}
