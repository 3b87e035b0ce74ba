package syncutil_test

import (
	"testing"

	"github.com/oxhide/greenrt"
	"github.com/oxhide/greenrt/syncutil"
)

func TestMutexExcludesConcurrentHolders(t *testing.T) {
	rt, err := greenrt.New()
	if err != nil {
		t.Fatalf("greenrt.New() error: %v", err)
	}
	defer func() {
		if err := rt.Shutdown(); err != nil {
			t.Errorf("Shutdown() error: %v", err)
		}
	}()

	m := syncutil.NewMutex()
	counter := 0
	const n = 50

	handles := make([]*greenrt.JoinHandle[int], n)
	for i := 0; i < n; i++ {
		h, err := greenrt.Spawn(rt, func() int {
			m.Lock(rt)
			defer m.Unlock()
			before := counter
			rt.YieldNow()
			counter = before + 1
			return 0
		})
		if err != nil {
			t.Fatalf("Spawn() error: %v", err)
		}
		handles[i] = h
	}

	for i, h := range handles {
		if _, err := h.Join(rt); err != nil {
			t.Fatalf("Join(%d) error: %v", i, err)
		}
	}

	if counter != n {
		t.Fatalf("counter = %d, want %d (mutex failed to serialize access)", counter, n)
	}
}

func TestMutexTryLock(t *testing.T) {
	m := syncutil.NewMutex()
	if !m.TryLock() {
		t.Fatal("TryLock() on a free mutex returned false")
	}
	if m.TryLock() {
		t.Fatal("TryLock() on a held mutex returned true")
	}
	m.Unlock()
	if !m.TryLock() {
		t.Fatal("TryLock() after Unlock() returned false")
	}
}
