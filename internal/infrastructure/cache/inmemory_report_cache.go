package cache

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Constants for in-memory cache configuration
const (
	defaultCleanupInterval = 30 * time.Second
)

// InMemoryReportCache implements ReportCache using in-memory storage. It
// serves single-process deployments and doubles as an L1 in front of Redis.
type InMemoryReportCache struct {
	entries sync.Map // map[string]*reportEntry
	logger  *zap.Logger
	stopCh  chan struct{}
	stopped int32

	// Stats for monitoring
	hits   int64
	misses int64
}

// reportEntry wraps a cached payload with its expiration time
type reportEntry struct {
	payload   []byte
	expiresAt time.Time
}

func (e *reportEntry) isExpired() bool {
	return time.Now().After(e.expiresAt)
}

// InMemoryReportCacheOption is a functional option for configuring the cache
type InMemoryReportCacheOption func(*InMemoryReportCache)

// WithInMemoryLogger sets the logger for the cache
func WithInMemoryLogger(logger *zap.Logger) InMemoryReportCacheOption {
	return func(c *InMemoryReportCache) {
		c.logger = logger
	}
}

// NewInMemoryReportCache creates a new in-memory report cache and starts its
// background expiry sweep.
func NewInMemoryReportCache(opts ...InMemoryReportCacheOption) *InMemoryReportCache {
	c := &InMemoryReportCache{
		logger: zap.NewNop(),
		stopCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	go c.cleanupLoop()
	return c
}

// Get returns the cached payload if present and unexpired
func (c *InMemoryReportCache) Get(_ context.Context, key string) ([]byte, bool) {
	v, ok := c.entries.Load(key)
	if !ok {
		atomic.AddInt64(&c.misses, 1)
		return nil, false
	}
	entry := v.(*reportEntry)
	if entry.isExpired() {
		c.entries.Delete(key)
		atomic.AddInt64(&c.misses, 1)
		return nil, false
	}
	atomic.AddInt64(&c.hits, 1)
	return entry.payload, true
}

// Set stores a payload under the key for the given TTL
func (c *InMemoryReportCache) Set(_ context.Context, key string, payload []byte, ttl time.Duration) {
	c.entries.Store(key, &reportEntry{
		payload:   payload,
		expiresAt: time.Now().Add(ttl),
	})
}

// InvalidatePrefix drops every key with the given prefix
func (c *InMemoryReportCache) InvalidatePrefix(_ context.Context, prefix string) {
	dropped := 0
	c.entries.Range(func(k, _ any) bool {
		if strings.HasPrefix(k.(string), prefix) {
			c.entries.Delete(k)
			dropped++
		}
		return true
	})
	if dropped > 0 {
		c.logger.Debug("report cache invalidated",
			zap.String("prefix", prefix),
			zap.Int("dropped", dropped))
	}
}

// Stats returns hit/miss counters for monitoring
func (c *InMemoryReportCache) Stats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// Close stops the cleanup goroutine
func (c *InMemoryReportCache) Close() error {
	if atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		close(c.stopCh)
	}
	return nil
}

func (c *InMemoryReportCache) cleanupLoop() {
	ticker := time.NewTicker(defaultCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.entries.Range(func(k, v any) bool {
				if v.(*reportEntry).isExpired() {
					c.entries.Delete(k)
				}
				return true
			})
		case <-c.stopCh:
			return
		}
	}
}
