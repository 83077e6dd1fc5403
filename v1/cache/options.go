package cache

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// DefaultCapacity is the bound of an LRU cache created without
	// WithCapacity. It is large enough to be effectively unbounded.
	DefaultCapacity = 1 << 30
	// DefaultTTL is the lifetime of entries stored with Put and PutAll.
	DefaultTTL = time.Hour
	// DefaultName is the value of the cache label on exported metrics.
	DefaultName = "default"
)

type config struct {
	capacity   int
	defaultTTL time.Duration
	name       string
	registerer prometheus.Registerer
	tracing    bool
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures a LocalCache.
type Option func(*config)

func newConfig(opts []Option) config {
	cfg := config{
		capacity:   DefaultCapacity,
		defaultTTL: DefaultTTL,
		name:       DefaultName,
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithCapacity sets the maximum number of entries of an LRU cache.
// NewLRU fails when n is not positive.
func WithCapacity(n int) Option {
	return func(c *config) {
		c.capacity = n
	}
}

// WithDefaultTTL sets the TTL applied by Put and PutAll. A zero or negative
// duration stores those entries without a deadline.
func WithDefaultTTL(d time.Duration) Option {
	return func(c *config) {
		c.defaultTTL = d
	}
}

// WithName sets the cache label attached to the metrics of this instance.
func WithName(name string) Option {
	return func(c *config) {
		if name != "" {
			c.name = name
		}
	}
}

// WithMetrics enables Prometheus metrics collection using the provided registerer.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *config) {
		c.registerer = reg
	}
}

// WithTracing enables OpenTelemetry tracing for cache operations.
func WithTracing() Option {
	return func(c *config) {
		c.tracing = true
	}
}

// WithLogger sets the logger used for expirations, evictions and failed
// loads. slog.Default is used otherwise.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock replaces time.Now as the source of the current time.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}
