package presets

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mirkobrombin/go-localcache/v1/cache"
)

// NewStandalone creates an unbounded cache whose entries expire after
// cache.DefaultTTL unless stored with an explicit TTL. It mirrors the classic
// "static map plus timer" local cache, as an instance the application owns
// and passes around.
func NewStandalone[T any]() *cache.LocalCache[T] {
	c, err := cache.NewTTL[T]()
	if err != nil {
		// NewTTL only fails on metrics registration, which is not enabled here.
		panic(err)
	}
	return c
}

// NewBounded creates an LRU cache holding at most capacity entries.
func NewBounded[T any](capacity int) (*cache.LocalCache[T], error) {
	return cache.NewLRU[T](cache.WithCapacity(capacity))
}

// NewInstrumented creates an LRU cache named name with Prometheus metrics
// registered on reg and OpenTelemetry tracing enabled.
func NewInstrumented[T any](name string, capacity int, reg prometheus.Registerer) (*cache.LocalCache[T], error) {
	return cache.NewLRU[T](
		cache.WithName(name),
		cache.WithCapacity(capacity),
		cache.WithMetrics(reg),
		cache.WithTracing(),
	)
}
