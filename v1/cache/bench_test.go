package cache

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/dgraph-io/ristretto"
)

// benchmarkSet measures Set performance for a cache.
func benchmarkSet(b *testing.B, c Cache[string]) {
	ctx := context.Background()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := c.Set(ctx, strconv.Itoa(i), "val", time.Minute); err != nil {
			b.Fatalf("set failed: %v", err)
		}
	}
}

// benchmarkGet measures Get performance for a cache.
func benchmarkGet(b *testing.B, c Cache[string]) {
	ctx := context.Background()
	if err := c.Set(ctx, "key", "val", time.Minute); err != nil {
		b.Fatalf("setup failed: %v", err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, ok, err := c.Get(ctx, "key"); err != nil || !ok {
			b.Fatalf("get failed: %v ok=%v", err, ok)
		}
	}
}

// benchmarkParallelGet measures Get performance under contention.
func benchmarkParallelGet(b *testing.B, c Cache[string]) {
	ctx := context.Background()
	for i := 0; i < 1024; i++ {
		_ = c.Set(ctx, strconv.Itoa(i), "val", time.Minute)
	}
	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			_, _, _ = c.Get(ctx, strconv.Itoa(i&1023))
			i++
		}
	})
}

func newBenchLRU(b *testing.B) *LocalCache[string] {
	c, err := NewLRU[string](WithCapacity(1 << 16))
	if err != nil {
		b.Fatalf("NewLRU: %v", err)
	}
	b.Cleanup(c.Close)
	return c
}

func newBenchTTL(b *testing.B) *LocalCache[string] {
	c, err := NewTTL[string]()
	if err != nil {
		b.Fatalf("NewTTL: %v", err)
	}
	b.Cleanup(c.Close)
	return c
}

func BenchmarkLRUCacheSet(b *testing.B)         { benchmarkSet(b, newBenchLRU(b)) }
func BenchmarkLRUCacheGet(b *testing.B)         { benchmarkGet(b, newBenchLRU(b)) }
func BenchmarkLRUCacheParallelGet(b *testing.B) { benchmarkParallelGet(b, newBenchLRU(b)) }
func BenchmarkTTLCacheSet(b *testing.B)         { benchmarkSet(b, newBenchTTL(b)) }
func BenchmarkTTLCacheGet(b *testing.B)         { benchmarkGet(b, newBenchTTL(b)) }
func BenchmarkTTLCacheParallelGet(b *testing.B) { benchmarkParallelGet(b, newBenchTTL(b)) }

// ristrettoCache adapts ristretto to Cache as a baseline for the numbers above.
type ristrettoCache struct {
	c *ristretto.Cache
}

func newBenchRistretto(b *testing.B) *ristrettoCache {
	rc, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e6,
		MaxCost:     1 << 16,
		BufferItems: 64,
	})
	if err != nil {
		b.Fatalf("ristretto: %v", err)
	}
	b.Cleanup(rc.Close)
	return &ristrettoCache{c: rc}
}

func (r *ristrettoCache) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := r.c.Get(key)
	if !ok {
		return "", false, nil
	}
	s, _ := v.(string)
	return s, true, nil
}

func (r *ristrettoCache) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	r.c.SetWithTTL(key, value, 1, ttl)
	r.c.Wait()
	return nil
}

func (r *ristrettoCache) Remove(_ context.Context, key string) error {
	r.c.Del(key)
	return nil
}

func BenchmarkRistrettoCacheSet(b *testing.B)         { benchmarkSet(b, newBenchRistretto(b)) }
func BenchmarkRistrettoCacheGet(b *testing.B)         { benchmarkGet(b, newBenchRistretto(b)) }
func BenchmarkRistrettoCacheParallelGet(b *testing.B) { benchmarkParallelGet(b, newBenchRistretto(b)) }
