package greenrt

import (
	"sync"
	"sync/atomic"
)

// sharedQueue is the multi-producer, single-consumer cross-thread wakeup
// queue: a mutex-guarded FIFO of Wakers plus a sleeping flag and an event
// descriptor used to break a blocking reactor wait.
//
// Any OS thread holding a Waker may call send; only the owning Runtime's
// OS thread ever calls drain or sleepWhile.
type sharedQueue struct {
	mu       sync.Mutex
	queue    []*Waker
	sleeping atomic.Bool
	wake     *wakeDescriptor
}

func newSharedQueue() (*sharedQueue, error) {
	wd, err := newWakeDescriptor()
	if err != nil {
		return nil, err
	}
	return &sharedQueue{wake: wd}, nil
}

// send enqueues w and, if the owning thread is currently blocked inside
// sleepWhile, breaks that block by writing to the wake descriptor.
func (q *sharedQueue) send(w *Waker) {
	q.mu.Lock()
	q.queue = append(q.queue, w)
	q.mu.Unlock()

	if q.sleeping.Load() {
		_ = q.wake.notify()
	}
}

// drain removes and returns every currently-queued Waker.
func (q *sharedQueue) drain() []*Waker {
	q.mu.Lock()
	if len(q.queue) == 0 {
		q.mu.Unlock()
		return nil
	}
	out := q.queue
	q.queue = nil
	q.mu.Unlock()
	return out
}

// sleepWhile runs f with is_sleeping set, matching SharedQueue::sleep's
// release/acquire bracket: any send() that lands while f is running is
// guaranteed to observe is_sleeping and notify the wake descriptor, so a
// reactor blocked inside f (waiting on that same descriptor) is woken
// rather than left parked past a wakeup it should have seen.
func (q *sharedQueue) sleepWhile(f func()) {
	q.sleeping.Store(true)
	f()
	q.sleeping.Store(false)
}

func (q *sharedQueue) wakeReadFD() int {
	return q.wake.readFD()
}

func (q *sharedQueue) drainWakeSignal() {
	q.wake.drain()
}

func (q *sharedQueue) close() error {
	return q.wake.close()
}
