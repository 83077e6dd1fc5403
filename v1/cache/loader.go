package cache

import (
	"context"
	"fmt"
	"time"

	cerrors "github.com/mirkobrombin/go-localcache/v1/errors"
)

// Loader produces the value for a key missing from the cache.
type Loader[T any] func(ctx context.Context) (T, error)

// GetOrLoad returns the cached value for key or, on a miss, calls load and
// stores its result for ttl. Concurrent misses on the same key share a single
// call to load, made with the context of the first caller. load runs without
// any cache lock held. When load fails nothing is stored and the error is
// returned wrapped.
func (c *LocalCache[T]) GetOrLoad(ctx context.Context, key string, ttl time.Duration, load Loader[T]) (T, error) {
	var zero T
	if key == "" {
		return zero, cerrors.ErrInvalidKey
	}
	v, ok, err := c.Get(ctx, key)
	if err != nil {
		return zero, err
	}
	if ok {
		return v, nil
	}

	ctx, o := c.begin(ctx, "Cache.GetOrLoad", key)
	res, err, shared := c.loads.Do(key, func() (any, error) {
		// A load that finished between our miss and Do already stored it.
		if v, ok := c.Peek(key); ok {
			return v, nil
		}
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if err := c.Set(ctx, key, v, ttl); err != nil {
			return nil, err
		}
		return v, nil
	})
	if err != nil {
		o.end("", err)
		c.cfg.logger.Warn("localcache: load failed", "cache", c.cfg.name, "key", key, "shared", shared, "error", err)
		return zero, fmt.Errorf("localcache: load %q: %w", key, err)
	}
	o.end("loaded", nil)
	v, _ = res.(T)
	return v, nil
}
