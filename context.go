package greenrt

import (
	"fmt"
	"sync/atomic"
	"time"
	"unsafe"
)

// result holds what a context's body produced: either a value of the
// spawned function's return type, or a recovered panic. Go has no
// placement-new equivalent, so this is just an ordinary GC-managed value
// rather than a second pointer into the same allocation as the context
// header.
type result struct {
	value    any
	panicVal any
	panicked bool
}

// context holds the full state of one green thread (or, for
// lifecycleOsThread, a Runtime's own root). Fields below the
// registers/stack/name group are accessed only by the owning
// operating-system thread except where explicitly noted as shared.
//
// context is a single GC-managed allocation: there is no separate
// closure/output sub-allocation to carve out of a raw memory block, so
// `fn`/`out` are ordinary Go values rather than pointers into extra bytes
// past a header, and there is no manual layout/free bookkeeping to keep.
type context struct {
	registers registers
	stack     *Stack
	name      string

	lifecycle atomicState
	status    atomicState

	// refcount is the local (same-OS-thread) reference count; only the
	// owning thread ever touches it, so a plain int suffices.
	refcount int
	// atomicRefcount mirrors refcount but is incremented/decremented from
	// any OS thread holding a Waker onto this context. Both must reach
	// zero before release.
	atomicRefcount atomic.Int64

	// joinWaker, if set, is woken once this context's lifecycle becomes
	// lifecycleFinished, so a JoinHandle.Join on a foreign OS thread can be
	// notified via the cross-thread Waker path rather than only the local
	// run queue.
	joinWaker atomic.Pointer[Waker]

	// ioResult carries a completed reactor operation's result back into
	// the context that submitted it; written by the OS thread polling
	// completions, read by the (possibly different after a migration-free
	// single-runtime model, but still cross-goroutine-safe) context that
	// is about to resume. See reactor.go.
	ioResult atomic.Pointer[int32]

	isCancelled atomic.Bool

	fn  func()
	out result

	rt *Runtime
}

// newContext allocates a fresh, lifecycleNew context whose body runs f
// and stores its return value (or recovered panic) for later retrieval by
// a JoinHandle.
func newContext[T any](rt *Runtime, f func() T, opts builderOptions) (*context, error) {
	stk, err := newStack(opts.stackSize)
	if err != nil {
		return nil, err
	}

	ctx := &context{
		stack:     stk,
		name:      opts.name,
		lifecycle: *newAtomicState(uint32(lifecycleNew)),
		status:    *newAtomicState(uint32(statusWaiting)),
		refcount:  1,
		rt:        rt,
	}
	ctx.atomicRefcount.Store(1)

	ctx.fn = func() {
		defer func() {
			if r := recover(); r != nil {
				ctx.out.panicked = true
				ctx.out.panicVal = r
			}
		}()
		ctx.out.value = f()
	}

	ctx.registers = newRegisters(stk.bottom(), threadTrampolinePC(), uintptr(unsafe.Pointer(ctx)))

	liveContexts.Add(1)
	return ctx, nil
}

// contextForOSThread builds the lifecycleOsThread sentinel representing
// the operating-system thread that owns a Runtime. It never runs a body
// of its own and never switches onto a separate stack.
func contextForOSThread(rt *Runtime) *context {
	ctx := &context{
		lifecycle: *newAtomicState(uint32(lifecycleOsThread)),
		status:    *newAtomicState(uint32(statusWaiting)),
		refcount:  1,
		stack:     &Stack{},
		rt:        rt,
	}
	ctx.atomicRefcount.Store(1)
	liveContexts.Add(1)
	return ctx
}

func (c *context) getLifecycle() lifecycle { return lifecycle(c.lifecycle.load()) }
func (c *context) setLifecycle(l lifecycle) { c.lifecycle.store(uint32(l)) }

func (c *context) getStatus() status { return status(c.status.load()) }

// tryEnqueue transitions Waiting -> Queued, reporting whether this call
// is the one that should actually push the context onto a run queue:
// Queued membership is a flag, not a counter, so a duplicate wakeup
// racing with an in-flight one is a no-op rather than a double-push.
func (c *context) tryEnqueue() bool {
	return c.status.tryTransition(uint32(statusWaiting), uint32(statusQueued))
}

func (c *context) markWaiting() {
	c.status.store(uint32(statusWaiting))
}

// retain increments the local refcount; used whenever another value on
// the same OS thread starts holding a reference to this context.
func (c *context) retain() *context {
	c.refcount++
	return c
}

// retainAtomic increments the cross-thread refcount; used by Waker.Clone.
func (c *context) retainAtomic() {
	c.atomicRefcount.Add(1)
}

// release decrements the local refcount and, once both counts are zero,
// runs the lifecycle-dependent drop logic from Context::drop /
// RcContext::drop.
func (c *context) release() {
	c.refcount--
	if c.refcount != 0 {
		return
	}
	// The local owners as a group hold one atomic reference (set by
	// newContext); drop it, and free only if no Waker still holds one.
	if c.atomicRefcount.Add(-1) != 0 {
		return
	}
	c.releaseShared()
}

// releaseAtomic decrements the cross-thread refcount; used by
// Waker.Release. Only actually frees once the local count is also zero --
// in practice a Waker only outlives its context's local owners when the
// context has already fully exited, so this mostly just trips the final
// decrement.
func (c *context) releaseAtomic() {
	if c.atomicRefcount.Add(-1) != 0 {
		return
	}
	if c.refcount != 0 {
		return
	}
	c.releaseShared()
}

func (c *context) releaseShared() {
	switch c.getLifecycle() {
	case lifecycleOsThread, lifecycleTaken:
		// nothing owned to drop
	case lifecycleRunning:
		// A Running context must never reach zero references while still
		// executing: something is holding the context open on its own
		// behalf the whole time it runs.
		panic(fmt.Sprintf("greenrt: context %q dropped while Running", c.name))
	case lifecycleNew:
		c.fn = nil
	case lifecycleFinished:
		c.out = result{}
	}
	if c.stack != nil {
		_ = c.stack.release()
	}
	liveContexts.Add(-1)
}

// threadStartEntry is called (via threadTrampoline, see asm_arm64.s) the
// first time a brand-new context is switched into: assert New, flip to
// Running, run the body, flip to Finished, wake any joiner, then fall
// into the exit loop.
//
//go:nosplit
func threadStartEntry(argPtr uintptr) {
	ctx := (*context)(unsafe.Pointer(argPtr))
	runThreadBody(ctx)
	ctx.exit()
}

func runThreadBody(ctx *context) {
	if ctx.getLifecycle() != lifecycleNew {
		panic("greenrt: threadStartEntry on a non-New context")
	}
	ctx.setLifecycle(lifecycleRunning)
	start := time.Now()

	ctx.fn()

	ctx.setLifecycle(lifecycleFinished)
	if ctx.out.panicked {
		LogThreadPanicked(int64(ctx.rt.tid), ctx.name, ctx.out.panicVal)
	} else {
		LogThreadFinished(int64(ctx.rt.tid), ctx.name, time.Since(start))
	}
	if w := ctx.joinWaker.Swap(nil); w != nil {
		w.Wake()
	}
}

// exit implements Context::exit: remove this context from its executor
// and switch away to whatever is runnable next, falling back to the
// Runtime's own operating-system-thread context if nothing is. It never
// returns -- there is no reason to preserve c's own registers (nothing
// will ever resume a Finished context), so this uses archLoad rather
// than executor.switchTo's archSwitch.
func (c *context) exit() {
	rt := c.rt
	rt.executor.remove(c)
	next, ok := rt.executor.pop()
	if !ok {
		next = rt.executor.root
	}
	rt.executor.current = next
	archLoad(&next.registers)
}
