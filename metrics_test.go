package greenrt

import (
	"testing"
	"time"
)

func TestParkLatencyRecordAndSample(t *testing.T) {
	var l ParkLatency
	for i := 1; i <= 10; i++ {
		l.record(time.Duration(i) * time.Millisecond)
	}
	if n := l.Sample(); n != 10 {
		t.Fatalf("Sample() = %d, want 10", n)
	}
	if l.Max != 10*time.Millisecond {
		t.Fatalf("Max = %v, want 10ms", l.Max)
	}
	if l.P50 <= 0 {
		t.Fatalf("P50 = %v, want > 0", l.P50)
	}
}

func TestParkLatencySampleEmpty(t *testing.T) {
	var l ParkLatency
	if n := l.Sample(); n != 0 {
		t.Fatalf("Sample() on empty = %d, want 0", n)
	}
}

func TestQueueDepthTracksCurrentMaxAvg(t *testing.T) {
	var q QueueDepth
	q.updateRunQueue(5)
	q.updateRunQueue(10)
	q.updateRunQueue(2)
	if q.RunQueueCurrent != 2 {
		t.Fatalf("RunQueueCurrent = %d, want 2", q.RunQueueCurrent)
	}
	if q.RunQueueMax != 10 {
		t.Fatalf("RunQueueMax = %d, want 10", q.RunQueueMax)
	}
	if q.RunQueueAvg <= 0 {
		t.Fatalf("RunQueueAvg = %v, want > 0", q.RunQueueAvg)
	}
}

func TestQueueDepthSharedQueue(t *testing.T) {
	var q QueueDepth
	q.updateSharedQueue(1)
	q.updateSharedQueue(4)
	if q.SharedQueueCurrent != 4 {
		t.Fatalf("SharedQueueCurrent = %d, want 4", q.SharedQueueCurrent)
	}
	if q.SharedQueueMax != 4 {
		t.Fatalf("SharedQueueMax = %d, want 4", q.SharedQueueMax)
	}
}

func TestSwitchCounterRate(t *testing.T) {
	c := newSwitchCounter(time.Second, 100*time.Millisecond)
	for i := 0; i < 5; i++ {
		c.increment()
	}
	if rate := c.rate(); rate <= 0 {
		t.Fatalf("rate() = %v, want > 0 after increments", rate)
	}
}

func TestSwitchCounterInvalidWindow(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for zero windowSize")
		}
	}()
	newSwitchCounter(0, time.Millisecond)
}

func TestMetricsSwitchesPerSecond(t *testing.T) {
	m := &Metrics{switches: newSwitchCounter(time.Second, 100*time.Millisecond)}
	m.switches.increment()
	if got := m.SwitchesPerSecond(); got <= 0 {
		t.Fatalf("SwitchesPerSecond() = %v, want > 0", got)
	}
}
