// Package cache provides a TTL cache for analysis reports served over HTTP.
package cache

import "time"

// Cache is the interface for caching computed reports.
type Cache interface {
	// Get returns (value, true) if key is present and not expired.
	Get(key string) (any, bool)

	// Set stores a value with a TTL. It may be dropped by the admission policy.
	Set(key string, value any, ttl time.Duration) bool

	Delete(key string)

	Clear()

	// Close releases the cache's background goroutines.
	Close()
}
