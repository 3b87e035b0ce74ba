package greenrt

// JoinHandle is the owning handle returned by Spawn/SpawnWith. Go's
// generics let one type carry the result type directly, so there is no
// separate non-generic wrapper needed: a Waker can still be obtained
// without knowing T via (*JoinHandle[T]).Waker.
type JoinHandle[T any] struct {
	ctx *context
}

// Name returns the green thread's diagnostic name, or "" if it was never
// set via Builder.Name.
func (h *JoinHandle[T]) Name() string {
	return h.ctx.name
}

// Waker returns a cross-thread Waker over this green thread, usable from
// any OS thread to schedule it back onto its owning Runtime's run queue.
func (h *JoinHandle[T]) Waker() *Waker {
	return newWaker(h.ctx)
}

// Join blocks the calling green thread (or the Runtime's root context,
// if called before any green thread is running) until h's body has
// returned. Returns the body's result, or a *PanicError if the body
// panicked instead of returning.
//
// Registers the caller's Waker in h.ctx.joinWaker before each park, so
// that runThreadBody's completion wakeup actually reschedules the
// joiner -- without it, a green thread joining another green thread
// would be parked with nothing to ever switch back into it, since
// falling through to the executor's run queue or root context only
// happens to resume the joiner when the joiner already is that root.
func (h *JoinHandle[T]) Join(rt *Runtime) (T, error) {
	for h.ctx.getLifecycle() != lifecycleFinished {
		if rt.IsCancelled() {
			h.clearJoinWaker()
			var zero T
			return zero, ErrCancelled
		}
		if old := h.ctx.joinWaker.Swap(rt.CurrentWaker()); old != nil {
			old.Release()
		}
		if h.ctx.getLifecycle() == lifecycleFinished {
			h.clearJoinWaker()
			break
		}
		rt.Park()
	}
	return h.take()
}

// clearJoinWaker drops this joiner's still-registered Waker, if any.
// Needed on every exit path that did not go through runThreadBody's own
// Swap(nil)+Wake (a cancelled or already-finished join), so a stored
// Waker never outlives the loop iteration that registered it.
func (h *JoinHandle[T]) clearJoinWaker() {
	if w := h.ctx.joinWaker.Swap(nil); w != nil {
		w.Release()
	}
}

// TryJoin reports whether h's body has finished without blocking. ok is
// false if the green thread is still running (or has not yet run).
func (h *JoinHandle[T]) TryJoin() (value T, ok bool, err error) {
	if h.ctx.getLifecycle() != lifecycleFinished {
		return value, false, nil
	}
	value, err = h.take()
	return value, true, err
}

// take retrieves the finished context's result and transitions it to
// Taken, releasing this handle's hold on it: the result is taken out of
// the context exactly once, then the context is reclaimed.
func (h *JoinHandle[T]) take() (T, error) {
	out := h.ctx.out
	h.ctx.setLifecycle(lifecycleTaken)
	h.ctx.release()

	if out.panicked {
		var zero T
		return zero, &PanicError{Value: out.panicVal}
	}
	value, _ := out.value.(T)
	return value, nil
}
