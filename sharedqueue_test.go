package greenrt

import "testing"

func TestSharedQueueSendDrain(t *testing.T) {
	q, err := newSharedQueue()
	if err != nil {
		t.Fatalf("newSharedQueue() error: %v", err)
	}
	defer q.close()

	ctxA := &context{name: "a"}
	ctxB := &context{name: "b"}
	wa := newWaker(ctxA)
	wb := newWaker(ctxB)

	if drained := q.drain(); drained != nil {
		t.Fatalf("drain() on empty queue = %v, want nil", drained)
	}

	q.send(wa)
	q.send(wb)

	drained := q.drain()
	if len(drained) != 2 {
		t.Fatalf("drain() returned %d wakers, want 2", len(drained))
	}
	if drained[0] != wa || drained[1] != wb {
		t.Fatal("drain() did not preserve FIFO order")
	}

	if drained := q.drain(); drained != nil {
		t.Fatalf("second drain() = %v, want nil", drained)
	}
}

func TestSharedQueueSleepWhileNotifiesOnSend(t *testing.T) {
	q, err := newSharedQueue()
	if err != nil {
		t.Fatalf("newSharedQueue() error: %v", err)
	}
	defer q.close()

	ctx := &context{name: "c"}
	w := newWaker(ctx)

	q.sleepWhile(func() {
		if !q.sleeping.Load() {
			t.Fatal("sleepWhile did not mark the queue as sleeping")
		}
		q.send(w)
	})

	if q.sleeping.Load() {
		t.Fatal("sleepWhile left the queue marked sleeping after returning")
	}

	drained := q.drain()
	if len(drained) != 1 || drained[0] != w {
		t.Fatalf("drain() = %v, want [%v]", drained, w)
	}
}
