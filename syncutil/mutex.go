// Package syncutil provides synchronization primitives that can be held
// across a green thread's suspension points, built on top of
// github.com/oxhide/greenrt's Waker/Park API rather than goroutine
// blocking.
package syncutil

import (
	"sync/atomic"
	"unsafe"

	"github.com/oxhide/greenrt"
)

// waiterNode is one link in the lock-free MPSC queue of parked waiters,
// adapted from alphadose/ZenQ's thread_parker.go: the same Michael-Scott
// queue algorithm, carrying a *greenrt.Waker instead of a raw goroutine
// handle, since green threads have no runtime.G to resume directly.
type waiterNode struct {
	waker *greenrt.Waker
	next  unsafe.Pointer
}

type waiterQueue struct {
	head unsafe.Pointer
	tail unsafe.Pointer
}

func newWaiterQueue() *waiterQueue {
	n := unsafe.Pointer(new(waiterNode))
	return &waiterQueue{head: n, tail: n}
}

func (q *waiterQueue) enqueue(w *greenrt.Waker) {
	n := &waiterNode{waker: w}
	for {
		tail := loadNode(&q.tail)
		next := loadNode(&tail.next)
		if tail == loadNode(&q.tail) {
			if next == nil {
				if casNode(&tail.next, next, n) {
					casNode(&q.tail, tail, n)
					return
				}
			} else {
				casNode(&q.tail, tail, next)
			}
		}
	}
}

// dequeue removes and returns the oldest waiter's Waker, or nil if the
// queue is empty.
func (q *waiterQueue) dequeue() *greenrt.Waker {
	for {
		head := loadNode(&q.head)
		tail := loadNode(&q.tail)
		next := loadNode(&head.next)
		if head == loadNode(&q.head) {
			if head == tail {
				if next == nil {
					return nil
				}
				casNode(&q.tail, tail, next)
			} else {
				w := next.waker
				if casNode(&q.head, head, next) {
					return w
				}
			}
		}
	}
}

func loadNode(p *unsafe.Pointer) *waiterNode {
	return (*waiterNode)(atomic.LoadPointer(p))
}

func casNode(p *unsafe.Pointer, old, new *waiterNode) bool {
	return atomic.CompareAndSwapPointer(p, unsafe.Pointer(old), unsafe.Pointer(new))
}

// Mutex is a mutual-exclusion lock that can be held across a green
// thread's Park/Yield points: a green thread blocked on Lock is parked
// (not spinning the operating-system thread), and is resumed via a
// Waker when Unlock releases the lock, after which it retries. Safe to share across the
// multiple Runtimes (operating-system threads) a program may run, since
// Waker.Wake is itself cross-thread safe.
type Mutex struct {
	locked  atomic.Bool
	waiters *waiterQueue
}

func NewMutex() *Mutex {
	return &Mutex{waiters: newWaiterQueue()}
}

// Lock blocks the calling green thread until it holds m, parking on rt
// between attempts rather than busy-waiting.
func (m *Mutex) Lock(rt *greenrt.Runtime) {
	if m.locked.CompareAndSwap(false, true) {
		return
	}
	for {
		w := rt.CurrentWaker()
		m.waiters.enqueue(w)
		if m.locked.CompareAndSwap(false, true) {
			return
		}
		rt.Park()
		if m.locked.CompareAndSwap(false, true) {
			return
		}
	}
}

// TryLock attempts to acquire m without blocking, reporting whether it
// succeeded.
func (m *Mutex) TryLock() bool {
	return m.locked.CompareAndSwap(false, true)
}

// Unlock releases m and wakes the oldest parked waiter (if any) so it
// retries the acquisition when it next runs. The lock is not handed to
// that waiter: a green thread that calls Lock or TryLock before the
// woken waiter runs can take it first, and the waiter then parks again.
// The wakeup is needed because a parked green thread has no other signal
// telling it to retry.
func (m *Mutex) Unlock() {
	m.locked.Store(false)
	if w := m.waiters.dequeue(); w != nil {
		w.Wake()
	}
}
