package cache

import (
	"context"
	"log/slog"
	"time"
)

// ResilientCache wraps a Cache implementation and suppresses errors,
// logging them instead of returning them. Rejected writes and cancelled
// calls degrade to skipped writes and cache misses.
type ResilientCache[T any] struct {
	inner  Cache[T]
	logger *slog.Logger
}

// NewResilient creates a new ResilientCache wrapper. A nil logger means
// slog.Default.
func NewResilient[T any](inner Cache[T], logger *slog.Logger) *ResilientCache[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResilientCache[T]{inner: inner, logger: logger}
}

// Get implements Cache.Get.
// If the inner cache fails, it logs the error and returns a cache miss.
func (r *ResilientCache[T]) Get(ctx context.Context, key string) (T, bool, error) {
	val, ok, err := r.inner.Get(ctx, key)
	if err != nil {
		r.logger.Warn("localcache: get failed (resiliency active)", "key", key, "error", err)
		var zero T
		return zero, false, nil
	}
	return val, ok, nil
}

// Set implements Cache.Set.
// If the inner cache fails, it logs the error and returns nil.
func (r *ResilientCache[T]) Set(ctx context.Context, key string, value T, ttl time.Duration) error {
	if err := r.inner.Set(ctx, key, value, ttl); err != nil {
		r.logger.Warn("localcache: set failed (resiliency active)", "key", key, "error", err)
	}
	return nil
}

// Remove implements Cache.Remove.
// If the inner cache fails, it logs the error and returns nil.
func (r *ResilientCache[T]) Remove(ctx context.Context, key string) error {
	if err := r.inner.Remove(ctx, key); err != nil {
		r.logger.Warn("localcache: remove failed (resiliency active)", "key", key, "error", err)
	}
	return nil
}
