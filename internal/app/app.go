// Package app wires the fill source, analyzer and HTTP server for serve mode.
package app

import (
	"context"
	"sync"

	"github.com/mselser95/hl-holdtime/internal/analysis"
	"github.com/mselser95/hl-holdtime/internal/circuitbreaker"
	"github.com/mselser95/hl-holdtime/pkg/cache"
	"github.com/mselser95/hl-holdtime/pkg/config"
	"github.com/mselser95/hl-holdtime/pkg/healthprobe"
	"github.com/mselser95/hl-holdtime/pkg/httpserver"
	"go.uber.org/zap"
)

// App is the serve-mode orchestrator.
type App struct {
	cfg           *config.Config
	logger        *zap.Logger
	healthChecker *healthprobe.HealthChecker
	httpServer    *httpserver.Server
	breaker       *circuitbreaker.Breaker
	reportCache   cache.Cache
	analyzer      *analysis.CachedAnalyzer
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
}

// Options holds application options.
type Options struct {
	Port string // overrides HTTP_PORT when set
}
