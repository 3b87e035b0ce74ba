package greenrt

import "testing"

func TestPSquareQuantileMedianUniform(t *testing.T) {
	ps := newPSquareQuantile(0.5)
	for i := 1; i <= 1000; i++ {
		ps.Update(float64(i))
	}
	got := ps.Quantile()
	if got < 400 || got > 600 {
		t.Fatalf("P50 of 1..1000 = %v, want roughly 500", got)
	}
	if got := ps.Max(); got != 1000 {
		t.Fatalf("Max() = %v, want 1000", got)
	}
	if got := ps.Count(); got != 1000 {
		t.Fatalf("Count() = %d, want 1000", got)
	}
}

func TestPSquareQuantileFewSamples(t *testing.T) {
	ps := newPSquareQuantile(0.9)
	ps.Update(10)
	ps.Update(30)
	ps.Update(20)
	if got := ps.Count(); got != 3 {
		t.Fatalf("Count() = %d, want 3", got)
	}
	if got := ps.Max(); got != 30 {
		t.Fatalf("Max() = %v, want 30", got)
	}
}

func TestPSquareMultiQuantile(t *testing.T) {
	m := newPSquareMultiQuantile(0.5, 0.9, 0.99)
	for i := 1; i <= 2000; i++ {
		m.Update(float64(i))
	}
	p50 := m.Quantile(0)
	p90 := m.Quantile(1)
	p99 := m.Quantile(2)
	if !(p50 < p90 && p90 < p99) {
		t.Fatalf("expected p50 < p90 < p99, got %v %v %v", p50, p90, p99)
	}
	if got := m.Mean(); got < 900 || got > 1100 {
		t.Fatalf("Mean() = %v, want roughly 1000.5", got)
	}
	if got := m.Max(); got != 2000 {
		t.Fatalf("Max() = %v, want 2000", got)
	}
}

func TestPSquareMultiQuantileEmpty(t *testing.T) {
	m := newPSquareMultiQuantile(0.5)
	if got := m.Mean(); got != 0 {
		t.Fatalf("Mean() on empty = %v, want 0", got)
	}
	if got := m.Max(); got != 0 {
		t.Fatalf("Max() on empty = %v, want 0", got)
	}
	if got := m.Quantile(5); got != 0 {
		t.Fatalf("Quantile(out of range) = %v, want 0", got)
	}
}
