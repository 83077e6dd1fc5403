package cache

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	cerrors "github.com/mirkobrombin/go-localcache/v1/errors"
	"github.com/mirkobrombin/go-localcache/v1/metrics"
)

var tracer = otel.Tracer("github.com/mirkobrombin/go-localcache/v1/cache")

// Cache defines the basic operations for a cache layer.
//
// T represents the type of values stored in the cache.
type Cache[T any] interface {
	// Get retrieves a value for the given key. The boolean return
	// indicates whether the key was found.
	Get(ctx context.Context, key string) (T, bool, error)
	// Set stores the value for the given key for the specified TTL.
	// A zero or negative TTL stores the value without a deadline.
	Set(ctx context.Context, key string, value T, ttl time.Duration) error
	// Remove deletes the key from the cache. Removing a missing key is
	// not an error.
	Remove(ctx context.Context, key string) error
}

var _ Cache[string] = (*LocalCache[string])(nil)

// LocalCache is an in-memory cache with per-entry deadlines. It is created
// by NewLRU or NewTTL and is safe for concurrent use.
type LocalCache[T any] struct {
	mu     sync.RWMutex
	store  store[T]
	gen    uint64
	closed bool

	// promote is set for stores whose reads mutate the access order; such
	// reads take the write lock.
	promote bool

	sched *scheduler
	cfg   config
	loads singleflight.Group

	hits        atomic.Uint64
	misses      atomic.Uint64
	evictions   atomic.Uint64
	expirations atomic.Uint64
	collectors  *metrics.Collectors
}

func newLocalCache[T any](s store[T], promote bool, cfg config) (*LocalCache[T], error) {
	c := &LocalCache[T]{
		store:   s,
		promote: promote,
		cfg:     cfg,
	}
	if cfg.registerer != nil {
		c.collectors = metrics.NewCollectors(cfg.name, c.Len)
		if err := c.collectors.Register(cfg.registerer); err != nil {
			return nil, fmt.Errorf("localcache: register metrics: %w", err)
		}
	}
	c.sched = newScheduler(c.expire, cfg.now)
	return c, nil
}

// Put stores the value with the default TTL.
func (c *LocalCache[T]) Put(ctx context.Context, key string, value T) error {
	return c.Set(ctx, key, value, c.cfg.defaultTTL)
}

// Set implements Cache.Set.
func (c *LocalCache[T]) Set(ctx context.Context, key string, value T, ttl time.Duration) error {
	return c.SetUntil(ctx, key, value, c.deadline(ttl))
}

// SetUntil stores the value until the given deadline. A zero deadline stores
// it without expiration; a deadline in the past expires it right away.
func (c *LocalCache[T]) SetUntil(ctx context.Context, key string, value T, deadline time.Time) (err error) {
	ctx, o := c.begin(ctx, "Cache.Set", key)
	defer func() { o.end("", err) }()
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validate(key, value); err != nil {
		return err
	}
	return c.insert(key, value, deadline)
}

func (c *LocalCache[T]) deadline(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return c.cfg.now().Add(ttl)
}

// insert stores the entry and registers its deadline before releasing the
// lock, so a concurrent firing can never observe the entry without its task.
func (c *LocalCache[T]) insert(key string, value T, deadline time.Time) error {
	now := c.cfg.now()
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return cerrors.ErrClosed
	}
	c.gen++
	e := &entry[T]{key: key, value: value, insertedAt: now, deadline: deadline, gen: c.gen}
	prev, evicted := c.store.put(e)
	switch {
	case !deadline.IsZero():
		c.sched.schedule(key, e.gen, deadline)
	case prev != nil:
		c.sched.cancel(key)
	}
	if evicted != nil {
		c.sched.cancel(evicted.key)
		c.evictions.Add(1)
		c.collectors.Eviction()
	}
	c.mu.Unlock()

	metrics.SetCounter.Inc()
	if evicted != nil {
		c.cfg.logger.Debug("localcache: entry evicted", "cache", c.cfg.name, "key", evicted.key)
	}
	return nil
}

// expire is the scheduler callback. It removes the key only if the stored
// entry is the one the deadline was registered for.
func (c *LocalCache[T]) expire(key string, gen uint64) {
	c.mu.Lock()
	e, ok := c.store.get(key, false)
	if !ok || e.gen != gen {
		c.mu.Unlock()
		return
	}
	c.store.remove(key)
	c.expirations.Add(1)
	c.collectors.Expiration()
	c.mu.Unlock()
	c.cfg.logger.Debug("localcache: entry expired", "cache", c.cfg.name, "key", key, "age", c.cfg.now().Sub(e.insertedAt))
}

// Get implements Cache.Get. In an LRU cache a hit marks the entry as the most
// recently used one.
func (c *LocalCache[T]) Get(ctx context.Context, key string) (T, bool, error) {
	ctx, o := c.begin(ctx, "Cache.Get", key)
	result := "miss"
	var err error
	defer func() { o.end(result, err) }()
	if err = ctx.Err(); err != nil {
		result = ""
		var zero T
		return zero, false, err
	}
	metrics.GetCounter.Inc()

	var v T
	var ok bool
	if c.promote {
		v, ok = c.getPromote(key)
	} else {
		v, ok = c.Peek(key)
	}
	if !ok {
		c.misses.Add(1)
		c.collectors.Miss()
		return v, false, nil
	}
	result = "hit"
	c.hits.Add(1)
	c.collectors.Hit()
	return v, true, nil
}

func (c *LocalCache[T]) getPromote(key string) (T, bool) {
	var zero T
	now := c.cfg.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.store.get(key, true)
	if !ok {
		return zero, false
	}
	if e.expired(now) {
		c.store.remove(key)
		c.sched.cancel(key)
		c.expirations.Add(1)
		c.collectors.Expiration()
		return zero, false
	}
	return e.value, true
}

// Peek returns the value for key without updating the access order.
func (c *LocalCache[T]) Peek(key string) (T, bool) {
	var zero T
	now := c.cfg.now()
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.store.get(key, false)
	if !ok || e.expired(now) {
		return zero, false
	}
	return e.value, true
}

// Contains reports whether key holds a live entry. It does not count as a use.
func (c *LocalCache[T]) Contains(key string) bool {
	_, ok := c.Peek(key)
	return ok
}

// Remove implements Cache.Remove.
func (c *LocalCache[T]) Remove(ctx context.Context, key string) (err error) {
	ctx, o := c.begin(ctx, "Cache.Remove", key)
	defer func() { o.end("", err) }()
	if err := ctx.Err(); err != nil {
		return err
	}
	if key == "" {
		return cerrors.ErrInvalidKey
	}
	c.mu.Lock()
	if _, ok := c.store.remove(key); ok {
		c.sched.cancel(key)
	}
	c.mu.Unlock()
	metrics.RemoveCounter.Inc()
	return nil
}

// Len returns the number of stored entries. Entries past their deadline are
// counted until the background goroutine removes them.
func (c *LocalCache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.store.len()
}

// Keys returns a snapshot of the stored keys. For an LRU cache they are
// ordered from most to least recently used.
func (c *LocalCache[T]) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.store.keys()
}

// Clear removes every entry and cancels all pending expirations. The cache
// remains usable afterwards.
func (c *LocalCache[T]) Clear() {
	c.mu.Lock()
	c.store.clear()
	c.sched.cancelAll()
	c.mu.Unlock()
	metrics.ClearCounter.Inc()
}

// Close terminates the background goroutine and drops every entry. Writes
// after Close fail with errors.ErrClosed and reads miss.
func (c *LocalCache[T]) Close() {
	// The scheduler callback takes c.mu, so stop it before locking.
	c.sched.close()
	c.mu.Lock()
	c.closed = true
	c.store.clear()
	c.mu.Unlock()
}

// Stats reports basic metrics about cache usage.
type Stats struct {
	Hits        uint64
	Misses      uint64
	Evictions   uint64
	Expirations uint64
	Size        int
}

// Metrics returns current metrics for the cache.
func (c *LocalCache[T]) Metrics() Stats {
	return Stats{
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Evictions:   c.evictions.Load(),
		Expirations: c.expirations.Load(),
		Size:        c.Len(),
	}
}

func validate[T any](key string, value T) error {
	if key == "" {
		return cerrors.ErrInvalidKey
	}
	if isNil(value) {
		return cerrors.ErrNilValue
	}
	return nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// observation tracks the span and latency of one operation. It is inert when
// neither tracing nor metrics are enabled.
type observation struct {
	span       trace.Span
	start      time.Time
	collectors *metrics.Collectors
}

func (c *LocalCache[T]) begin(ctx context.Context, name, key string) (context.Context, observation) {
	o := observation{collectors: c.collectors}
	if c.cfg.tracing {
		ctx, o.span = tracer.Start(ctx, name, trace.WithAttributes(
			attribute.String("localcache.cache", c.cfg.name),
			attribute.String("localcache.key", key),
		))
	}
	if c.cfg.tracing || c.collectors != nil {
		o.start = time.Now()
	}
	return ctx, o
}

func (o observation) end(result string, err error) {
	if o.start.IsZero() {
		return
	}
	o.collectors.Since(o.start)
	if o.span == nil {
		return
	}
	if result != "" {
		o.span.SetAttributes(attribute.String("localcache.result", result))
	}
	if err != nil {
		o.span.RecordError(err)
		o.span.SetStatus(codes.Error, err.Error())
	}
	o.span.SetAttributes(attribute.Int64("localcache.latency_us", time.Since(o.start).Microseconds()))
	o.span.End()
}
