package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/sync/errgroup"

	"github.com/mirkobrombin/go-localcache/v1/cache"
	"github.com/mirkobrombin/go-localcache/v1/metrics"
)

var (
	variant     = flag.String("variant", "lru", "Cache variant: lru or ttl")
	capacity    = flag.Int("capacity", 100_000, "Capacity of the lru variant")
	numKeys     = flag.Int("keys", 250_000, "Size of the key space")
	workers     = flag.Int("workers", runtime.GOMAXPROCS(0), "Number of concurrent goroutines")
	duration    = flag.Duration("duration", 30*time.Second, "Duration of the stress test")
	ttl         = flag.Duration("ttl", 5*time.Second, "TTL of inserted entries (0 disables expiration)")
	writeRatio  = flag.Float64("write-ratio", 0.2, "Fraction of operations that are writes")
	metricsAddr = flag.String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :2112)")
	traceSpans  = flag.Bool("trace", false, "Export spans to stdout")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []cache.Option{cache.WithCapacity(*capacity), cache.WithName("bench")}

	reg := metrics.NewRegistry()
	metrics.RegisterCoreMetrics(reg)
	opts = append(opts, cache.WithMetrics(reg))
	if *metricsAddr != "" {
		go func() {
			log.Printf("Serving metrics on %s", *metricsAddr)
			http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
			log.Println(http.ListenAndServe(*metricsAddr, nil))
		}()
	}

	if *traceSpans {
		exp, err := stdouttrace.New()
		if err != nil {
			return fmt.Errorf("stdout exporter: %w", err)
		}
		tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp))
		defer func() { _ = tp.Shutdown(context.Background()) }()
		otel.SetTracerProvider(tp)
		opts = append(opts, cache.WithTracing())
	}

	c, err := newCache(*variant, opts)
	if err != nil {
		return err
	}
	defer c.Close()

	keys := make([]string, *numKeys)
	for i := range keys {
		keys[i] = uuid.NewString()
	}

	log.Printf("Running %s cache: %d workers, %d keys, %v", *variant, *workers, len(keys), *duration)
	ctx, cancel := context.WithTimeout(ctx, *duration)
	defer cancel()

	start := time.Now()
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < *workers; w++ {
		seed := time.Now().UnixNano() + int64(w)
		g.Go(func() error {
			return churn(ctx, c, keys, rand.New(rand.NewSource(seed)))
		})
	}
	go report(ctx, c)
	if err := g.Wait(); err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
		return err
	}

	m := c.Metrics()
	log.Printf("Done in %v: hits=%d misses=%d evictions=%d expirations=%d size=%d",
		time.Since(start).Round(time.Millisecond), m.Hits, m.Misses, m.Evictions, m.Expirations, m.Size)
	if *variant == "lru" && m.Size > *capacity {
		return fmt.Errorf("capacity invariant violated: %d entries, capacity %d", m.Size, *capacity)
	}
	if n := len(c.Keys()); n != c.Len() {
		return fmt.Errorf("size mismatch: Len=%d, %d live keys", c.Len(), n)
	}
	return nil
}

func newCache(variant string, opts []cache.Option) (*cache.LocalCache[string], error) {
	switch strings.ToLower(variant) {
	case "lru":
		return cache.NewLRU[string](opts...)
	case "ttl":
		return cache.NewTTL[string](opts...)
	default:
		return nil, fmt.Errorf("unknown variant %q", variant)
	}
}

// churn issues random reads and writes until ctx is done. Values carry their
// key so that a read returning another key's value is detected.
func churn(ctx context.Context, c *cache.LocalCache[string], keys []string, r *rand.Rand) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		key := keys[r.Intn(len(keys))]
		if r.Float64() < *writeRatio {
			if err := c.Set(ctx, key, key+"|payload", *ttl); err != nil {
				return err
			}
			continue
		}
		v, ok, err := c.Get(ctx, key)
		if err != nil {
			return err
		}
		if ok && !strings.HasPrefix(v, key+"|") {
			return fmt.Errorf("key %s returned foreign value %q", key, v)
		}
	}
}

func report(ctx context.Context, c *cache.LocalCache[string]) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m := c.Metrics()
			var ms runtime.MemStats
			runtime.ReadMemStats(&ms)
			log.Printf("size=%d hits=%d misses=%d evictions=%d expirations=%d alloc=%dMiB",
				m.Size, m.Hits, m.Misses, m.Evictions, m.Expirations, ms.Alloc/1024/1024)
		}
	}
}
