package greenrt

import (
	"errors"
	"testing"
)

func TestResolveRuntimeOptionsDefaults(t *testing.T) {
	cfg, err := resolveRuntimeOptions(nil)
	if err != nil {
		t.Fatalf("resolveRuntimeOptions(nil) error: %v", err)
	}
	if cfg.metricsEnabled {
		t.Fatal("metricsEnabled should default to false")
	}
	if cfg.stackSize != defaultStackSize {
		t.Fatalf("stackSize = %d, want defaultStackSize %d", cfg.stackSize, defaultStackSize)
	}
}

func TestWithMetrics(t *testing.T) {
	cfg, err := resolveRuntimeOptions([]RuntimeOption{WithMetrics(true)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.metricsEnabled {
		t.Fatal("WithMetrics(true) did not enable metrics")
	}
}

func TestWithDefaultStackSize(t *testing.T) {
	cfg, err := resolveRuntimeOptions([]RuntimeOption{WithDefaultStackSize(4096)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.stackSize != 4096 {
		t.Fatalf("stackSize = %d, want 4096", cfg.stackSize)
	}
}

func TestWithDefaultStackSizeRejectsNonPositive(t *testing.T) {
	for _, n := range []int{0, -1, -4096} {
		_, err := resolveRuntimeOptions([]RuntimeOption{WithDefaultStackSize(n)})
		if err == nil {
			t.Fatalf("WithDefaultStackSize(%d): expected error, got nil", n)
		}
		var allocErr *AllocationError
		if !errors.As(err, &allocErr) {
			t.Fatalf("WithDefaultStackSize(%d): error %v is not an *AllocationError", n, err)
		}
	}
}

func TestResolveRuntimeOptionsSkipsNil(t *testing.T) {
	cfg, err := resolveRuntimeOptions([]RuntimeOption{nil, WithMetrics(true), nil})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.metricsEnabled {
		t.Fatal("nil options should be skipped, not override later options")
	}
}
