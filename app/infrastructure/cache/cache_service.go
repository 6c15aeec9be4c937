package cache

import (
	"context"
	"time"
)

// CacheService is the distributed, best-effort, cross-instance cache used
// to mirror the gray-release rule snapshot (C9) across every instance
// between refresh cycles. It is never used by the in-process payload cache
// (C4), which stays strictly local.
type CacheService interface {
	// Set stores value (JSON-encoded) in cache with an expiration time.
	Set(ctx context.Context, key string, value any, expiration time.Duration) error

	// Get decodes the cached value for key into dest.
	Get(ctx context.Context, key string, dest any) error

	// Close closes the cache connection.
	Close() error

	// HealthCheck verifies cache connectivity.
	HealthCheck(ctx context.Context) error
}
