package greenrt

// Waker is a pointer-width, cross-thread handle onto a context, usable
// to re-enqueue it from any OS thread via the context-pointer-as-user
// -data pattern the reactor backends already use for completion tagging.
//
// A Waker keeps its context alive via the atomic (cross-thread) refcount
// rather than the local one, since it may be the only thing keeping the
// context reachable from a foreign OS thread's point of view.
type Waker struct {
	ctx *context
}

// newWaker builds a Waker over ctx, retaining the atomic refcount on its
// behalf. Internal: obtained via JoinHandle.Waker or
// Runtime.CurrentWaker, never constructed by API
// consumers directly.
func newWaker(ctx *context) *Waker {
	ctx.retainAtomic()
	return &Waker{ctx: ctx}
}

// Clone returns an independent Waker over the same context, incrementing
// the atomic refcount again so either copy can be released independently.
func (w *Waker) Clone() *Waker {
	w.ctx.retainAtomic()
	return &Waker{ctx: w.ctx}
}

// Wake enqueues this Waker's context onto its owning Runtime's
// sharedQueue, to be pushed onto the run queue and made runnable the next
// time that Runtime parks. Safe to call from any OS thread.
func (w *Waker) Wake() {
	if w == nil {
		return
	}
	w.ctx.rt.sharedQueue.send(w)
}

// WakeByRef is Wake without consuming this Waker: the caller may keep
// using w afterward (e.g. call WakeByRef again on a later poll), so it
// wakes a clone rather than w itself -- Wake hands its receiver off to
// sharedQueue, which eventually drains and releases it, and reusing a
// released Waker would double-decrement its atomic refcount.
func (w *Waker) WakeByRef() {
	w.Clone().Wake()
}

// Release drops this Waker's hold on its context. Deliberately not a
// finalizer-backed Drop: deallocation must happen exactly once both
// refcounts hit zero, on a schedule the program controls -- tying that
// to GC finalization timing would make it nondeterministic.
func (w *Waker) Release() {
	w.ctx.releaseAtomic()
}

// context returns the context a sharedQueue consumer should schedule once
// this Waker is drained; consumes the Waker's atomic refcount hold in the
// process, since the queued handle is not reused after being drained.
func (w *Waker) context() *context {
	ctx := w.ctx
	w.Release()
	return ctx
}
