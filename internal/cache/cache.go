// Package cache provides the best-effort key-value store the feature provider
// adapters put their results in. A cache miss or a cache failure only causes a
// provider re-fetch; it never fails an enrichment job. Values are derived
// deterministically from their keys, so concurrent jobs may overwrite each
// other's entries safely (last writer wins).
package cache

import (
	"context"
	"fmt"
	"time"
)

// DefaultTTL matches the daily update cadence of the external sources.
const DefaultTTL = 24 * time.Hour

// Cache is the provider-result store. Implementations must be safe for
// concurrent use by multiple jobs.
type Cache interface {
	// Get returns the cached value for (provider, key), or ok=false on a miss.
	Get(ctx context.Context, provider, key string) (string, bool)

	// Set stores a value under (provider, key) for the given TTL.
	// Failures are swallowed by implementations; Set is fire-and-forget.
	Set(ctx context.Context, provider, key, value string, ttl time.Duration)
}

// CoordinateBucket coarsens a latitude/longitude pair to two decimal places
// (roughly a 1km cell) so near-duplicate coordinates across properties share
// cache entries.
func CoordinateBucket(lat, lon float64) string {
	return fmt.Sprintf("%.2f,%.2f", lat, lon)
}
