package greenrt

import "testing"

func TestRunQueueFIFO(t *testing.T) {
	var q runQueue
	a, b, c := &context{name: "a"}, &context{name: "b"}, &context{name: "c"}

	q.push(a)
	q.push(b)
	q.push(c)
	if got := q.len(); got != 3 {
		t.Fatalf("len() = %d, want 3", got)
	}

	for _, want := range []*context{a, b, c} {
		got, ok := q.pop()
		if !ok {
			t.Fatalf("pop() returned ok=false, want %q", want.name)
		}
		if got != want {
			t.Fatalf("pop() = %q, want %q", got.name, want.name)
		}
	}

	if _, ok := q.pop(); ok {
		t.Fatal("pop() on empty queue returned ok=true")
	}
}

func TestRunQueueSpansMultipleChunks(t *testing.T) {
	var q runQueue
	n := runQueueChunkSize*2 + 17
	ctxs := make([]*context, n)
	for i := range ctxs {
		ctxs[i] = &context{}
		q.push(ctxs[i])
	}
	if got := q.len(); got != n {
		t.Fatalf("len() = %d, want %d", got, n)
	}
	for i := 0; i < n; i++ {
		got, ok := q.pop()
		if !ok || got != ctxs[i] {
			t.Fatalf("pop() at index %d: ok=%v got=%p want=%p", i, ok, got, ctxs[i])
		}
	}
	if _, ok := q.pop(); ok {
		t.Fatal("pop() on drained multi-chunk queue returned ok=true")
	}
}

func TestRunQueueInterleavedPushPop(t *testing.T) {
	var q runQueue
	x := &context{name: "x"}
	y := &context{name: "y"}

	q.push(x)
	if got, ok := q.pop(); !ok || got != x {
		t.Fatalf("pop() = %v, %v, want %q, true", got, ok, x.name)
	}
	if _, ok := q.pop(); ok {
		t.Fatal("pop() after draining returned ok=true")
	}
	q.push(y)
	if got, ok := q.pop(); !ok || got != y {
		t.Fatalf("pop() = %v, %v, want %q, true", got, ok, y.name)
	}
}
