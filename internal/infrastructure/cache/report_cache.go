package cache

import (
	"context"
	"time"
)

// ReportCache stores rendered report payloads keyed by report name and
// parameters. Reports are pure reads, so staleness is bounded only by the
// TTL and by explicit invalidation after ledger writes.
type ReportCache interface {
	// Get returns the cached payload, or ok=false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool)
	// Set stores a payload under the key for the given TTL.
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration)
	// InvalidatePrefix drops every key with the given prefix.
	InvalidatePrefix(ctx context.Context, prefix string)
	// Close releases any underlying resources.
	Close() error
}
