package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// GetCounter tracks the number of Get operations.
	GetCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "localcache_get_total",
		Help: "Total number of Get operations",
	})
	// SetCounter tracks the number of inserted or overwritten entries.
	SetCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "localcache_set_total",
		Help: "Total number of Set operations",
	})
	// RemoveCounter tracks the number of explicit removals.
	RemoveCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "localcache_remove_total",
		Help: "Total number of Remove operations",
	})
	// ClearCounter tracks the number of Clear operations.
	ClearCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "localcache_clear_total",
		Help: "Total number of Clear operations",
	})
)

// NewRegistry creates a new Prometheus registry.
func NewRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

// RegisterCoreMetrics registers the process wide operation counters on the
// provided registry.
func RegisterCoreMetrics(reg prometheus.Registerer) {
	reg.MustRegister(GetCounter, SetCounter, RemoveCounter, ClearCounter)
}

// Collectors holds the metrics of a single cache instance. Every method is
// safe to call on a nil *Collectors, in which case it does nothing.
type Collectors struct {
	hits        prometheus.Counter
	misses      prometheus.Counter
	evictions   prometheus.Counter
	expirations prometheus.Counter
	latency     prometheus.Histogram
	entries     prometheus.GaugeFunc
}

// NewCollectors builds the collectors for the cache called name. size is
// sampled on every scrape to report the number of live entries.
func NewCollectors(name string, size func() int) *Collectors {
	labels := prometheus.Labels{"cache": name}
	return &Collectors{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "localcache_hits_total",
			Help:        "Total number of cache hits",
			ConstLabels: labels,
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "localcache_misses_total",
			Help:        "Total number of cache misses",
			ConstLabels: labels,
		}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "localcache_evictions_total",
			Help:        "Total number of entries evicted by the capacity bound",
			ConstLabels: labels,
		}),
		expirations: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "localcache_expirations_total",
			Help:        "Total number of entries removed after their deadline",
			ConstLabels: labels,
		}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "localcache_latency_seconds",
			Help:        "Latency of cache operations",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: labels,
		}),
		entries: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name:        "localcache_entries",
			Help:        "Current number of entries",
			ConstLabels: labels,
		}, func() float64 { return float64(size()) }),
	}
}

// Register registers every collector on reg. On failure the collectors
// registered so far are unregistered again.
func (c *Collectors) Register(reg prometheus.Registerer) error {
	cols := []prometheus.Collector{c.hits, c.misses, c.evictions, c.expirations, c.latency, c.entries}
	for i, col := range cols {
		if err := reg.Register(col); err != nil {
			for _, done := range cols[:i] {
				reg.Unregister(done)
			}
			return err
		}
	}
	return nil
}

func (c *Collectors) Hit() {
	if c != nil {
		c.hits.Inc()
	}
}

func (c *Collectors) Miss() {
	if c != nil {
		c.misses.Inc()
	}
}

func (c *Collectors) Eviction() {
	if c != nil {
		c.evictions.Inc()
	}
}

func (c *Collectors) Expiration() {
	if c != nil {
		c.expirations.Inc()
	}
}

// Since records the latency of an operation started at start.
func (c *Collectors) Since(start time.Time) {
	if c != nil {
		c.latency.Observe(time.Since(start).Seconds())
	}
}
