package cache

import (
	"context"
	"fmt"
	"time"
)

// PutAll stores every entry with the default TTL. See SetAllUntil.
func (c *LocalCache[T]) PutAll(ctx context.Context, entries map[string]T) error {
	return c.SetAll(ctx, entries, c.cfg.defaultTTL)
}

// SetAll stores every entry with the given TTL. See SetAllUntil.
func (c *LocalCache[T]) SetAll(ctx context.Context, entries map[string]T, ttl time.Duration) error {
	return c.SetAllUntil(ctx, entries, c.deadline(ttl))
}

// SetAllUntil stores every entry until deadline.
//
// The batch is validated before anything is written: an invalid key or a nil
// value rejects the whole batch. Entries are then inserted one lock
// acquisition at a time, so concurrent readers may see the batch partially
// applied, and a concurrent Close may stop it midway.
func (c *LocalCache[T]) SetAllUntil(ctx context.Context, entries map[string]T, deadline time.Time) (err error) {
	ctx, o := c.begin(ctx, "Cache.SetAll", "")
	defer func() { o.end("", err) }()
	if err := ctx.Err(); err != nil {
		return err
	}
	for k, v := range entries {
		if err := validate(k, v); err != nil {
			return fmt.Errorf("localcache: key %q: %w", k, err)
		}
	}
	for k, v := range entries {
		if err := c.insert(k, v, deadline); err != nil {
			return err
		}
	}
	return nil
}
