package greenrt

import "sync/atomic"

// lifecycle is the progression of a green thread's body: New -> Running
// -> Finished -> Taken, with OsThread as a terminal sentinel for a
// runtime's own root context.
type lifecycle uint32

const (
	lifecycleNew lifecycle = iota
	lifecycleRunning
	lifecycleFinished
	lifecycleTaken
	lifecycleOsThread
)

// String returns a human-readable representation of the lifecycle state.
func (l lifecycle) String() string {
	switch l {
	case lifecycleNew:
		return "New"
	case lifecycleRunning:
		return "Running"
	case lifecycleFinished:
		return "Finished"
	case lifecycleTaken:
		return "Taken"
	case lifecycleOsThread:
		return "OsThread"
	default:
		return "Unknown"
	}
}

// status is whether a context is currently sitting in its executor's run
// queue.
type status uint32

const (
	statusWaiting status = iota
	statusQueued
)

func (s status) String() string {
	if s == statusQueued {
		return "Queued"
	}
	return "Waiting"
}

// atomicState is a lock-free single-word state cell, adapted from the
// teacher's FastState (eventloop/state.go): pure CAS transitions, no
// mutex. Used for both lifecycle and status because a Waker living on a
// foreign OS thread, or a test/diagnostic caller, may read either value
// even though only the owning OS thread ever writes it.
type atomicState struct { //nolint:govet
	v atomic.Uint32
}

func newAtomicState(initial uint32) *atomicState {
	s := &atomicState{}
	s.v.Store(initial)
	return s
}

func (s *atomicState) load() uint32 {
	return s.v.Load()
}

func (s *atomicState) store(v uint32) {
	s.v.Store(v)
}

// tryTransition performs a CAS from `from` to `to`, mirroring the
// teacher's TryTransition; returns whether it succeeded.
func (s *atomicState) tryTransition(from, to uint32) bool {
	return s.v.CompareAndSwap(from, to)
}
