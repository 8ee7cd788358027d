package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/mselser95/hl-holdtime/pkg/cache"
)

// DefaultReportTTL is how long a cached report is served before re-fetching.
const DefaultReportTTL = 5 * time.Minute

// CachedAnalyzer wraps Analyzer with a report cache keyed by account.
type CachedAnalyzer struct {
	analyzer *Analyzer
	cache    cache.Cache
	ttl      time.Duration
}

// NewCachedAnalyzer creates a cached analyzer. A nil cache disables caching.
func NewCachedAnalyzer(analyzer *Analyzer, c cache.Cache, ttl time.Duration) *CachedAnalyzer {
	if ttl <= 0 {
		ttl = DefaultReportTTL
	}
	return &CachedAnalyzer{
		analyzer: analyzer,
		cache:    c,
		ttl:      ttl,
	}
}

// Analyze returns the cached report for account or computes and caches a fresh one.
// Failed analyses are not cached.
func (c *CachedAnalyzer) Analyze(ctx context.Context, account string) (*Report, error) {
	cacheKey := reportKey(account)

	if c.cache != nil {
		if cached, ok := c.cache.Get(cacheKey); ok {
			if report, ok := cached.(*Report); ok {
				ReportCacheHitsTotal.Inc()
				return report, nil
			}
		}
		ReportCacheMissesTotal.Inc()
	}

	report, err := c.analyzer.Analyze(ctx, account)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		c.cache.Set(cacheKey, report, c.ttl)
	}

	return report, nil
}

// Invalidate drops the cached report for account.
func (c *CachedAnalyzer) Invalidate(account string) {
	if c.cache == nil {
		return
	}
	c.cache.Delete(reportKey(account))
}

func reportKey(account string) string {
	return fmt.Sprintf("report:%s", account)
}
