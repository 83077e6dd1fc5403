package presets

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	cerrors "github.com/mirkobrombin/go-localcache/v1/errors"
)

func TestNewStandalone(t *testing.T) {
	c := NewStandalone[string]()
	defer c.Close()
	ctx := context.Background()

	if err := c.Put(ctx, "foo", "bar"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	val, ok, err := c.Get(ctx, "foo")
	if err != nil || !ok {
		t.Fatalf("Get failed: ok=%v err=%v", ok, err)
	}
	if val != "bar" {
		t.Fatalf("expected bar, got %s", val)
	}
}

func TestNewBounded(t *testing.T) {
	c, err := NewBounded[int](2)
	if err != nil {
		t.Fatalf("NewBounded: %v", err)
	}
	defer c.Close()
	ctx := context.Background()
	for i, k := range []string{"a", "b", "c"} {
		_ = c.Put(ctx, k, i)
	}
	if c.Len() != 2 || c.Contains("a") {
		t.Fatalf("expected a to be evicted, keys=%v", c.Keys())
	}

	if _, err := NewBounded[int](0); !errors.Is(err, cerrors.ErrInvalidCapacity) {
		t.Fatalf("expected ErrInvalidCapacity, got %v", err)
	}
}

func TestNewInstrumented(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewInstrumented[string]("sessions", 10, reg)
	if err != nil {
		t.Fatalf("NewInstrumented: %v", err)
	}
	defer c.Close()
	_ = c.Put(context.Background(), "k", "v")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(mfs) == 0 {
		t.Fatalf("expected metrics registered")
	}
	if _, err := NewInstrumented[string]("sessions", 10, reg); err == nil {
		t.Fatalf("expected duplicate name to fail registration")
	}
}
