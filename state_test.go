package greenrt

import "testing"

func TestAtomicStateTransitions(t *testing.T) {
	s := newAtomicState(uint32(statusWaiting))
	if got := s.load(); got != uint32(statusWaiting) {
		t.Fatalf("load() = %d, want Waiting", got)
	}
	if !s.tryTransition(uint32(statusWaiting), uint32(statusQueued)) {
		t.Fatal("tryTransition(Waiting, Queued) failed unexpectedly")
	}
	if got := s.load(); got != uint32(statusQueued) {
		t.Fatalf("load() = %d, want Queued", got)
	}
	if s.tryTransition(uint32(statusWaiting), uint32(statusQueued)) {
		t.Fatal("tryTransition from a stale state unexpectedly succeeded")
	}
}

func TestAtomicStateStore(t *testing.T) {
	s := newAtomicState(uint32(lifecycleNew))
	s.store(uint32(lifecycleFinished))
	if got := s.load(); got != uint32(lifecycleFinished) {
		t.Fatalf("load() = %d, want Finished", got)
	}
}

func TestLifecycleString(t *testing.T) {
	cases := map[lifecycle]string{
		lifecycleNew:      "New",
		lifecycleRunning:  "Running",
		lifecycleFinished: "Finished",
		lifecycleTaken:    "Taken",
		lifecycleOsThread: "OsThread",
	}
	for l, want := range cases {
		if got := l.String(); got != want {
			t.Fatalf("lifecycle(%d).String() = %q, want %q", l, got, want)
		}
	}
}

func TestStatusString(t *testing.T) {
	if got := statusWaiting.String(); got != "Waiting" {
		t.Fatalf("statusWaiting.String() = %q, want Waiting", got)
	}
	if got := statusQueued.String(); got != "Queued" {
		t.Fatalf("statusQueued.String() = %q, want Queued", got)
	}
}

func TestRegistryInsertRemoveForEach(t *testing.T) {
	r := newRegistry()
	a, b := &context{name: "a"}, &context{name: "b"}
	r.insert(a)
	r.insert(b)
	if got := r.len(); got != 2 {
		t.Fatalf("len() = %d, want 2", got)
	}

	seen := map[*context]bool{}
	r.forEach(func(ctx *context) { seen[ctx] = true })
	if !seen[a] || !seen[b] {
		t.Fatal("forEach did not visit every inserted context")
	}

	r.remove(a)
	if got := r.len(); got != 1 {
		t.Fatalf("len() after remove = %d, want 1", got)
	}
	if _, ok := r.all[a]; ok {
		t.Fatal("removed context still present in registry")
	}
}
