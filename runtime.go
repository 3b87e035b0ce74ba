package greenrt

import (
	goruntime "runtime"
	"sync"
	"time"
)

// parkPollInterval bounds reactor-poll starvation: even when the run
// queue is never empty, the reactor is polled at least once every
// this-many parks, so a ready file descriptor or fired timer is never
// starved indefinitely behind a run of CPU-bound green threads.
const parkPollInterval = 61

// currentRuntimes maps an operating-system thread id to the Runtime
// pinned to it, so signalstack.go's reportOverflow (running on that same
// thread, on the alternate signal stack) can find its way back to the
// right Runtime. Entries are added by New and removed by Shutdown.
var currentRuntimes sync.Map // int(gettid()) -> *Runtime

// currentRuntime returns the Runtime pinned to the calling operating
// -system thread, or nil if none is (e.g. a signal delivered to a thread
// that never called New).
func currentRuntime() *Runtime {
	v, ok := currentRuntimes.Load(gettid())
	if !ok {
		return nil
	}
	return v.(*Runtime)
}

// Runtime is one single-threaded green-thread scheduler: an executor, a
// kernel-event reactor, a cross-thread wakeup queue, and a guard-page
// overflow handler, all bound to exactly one operating-system thread via
// runtime.LockOSThread.
type Runtime struct {
	executor    *executor
	reactor     reactor
	sharedQueue *sharedQueue
	signalStack *signalStack

	root *context

	polls uint64

	tid int

	defaultStackSize int
	metrics          *Metrics

	cancelled bool
	shutdown  bool
}

// New creates a Runtime and pins the calling goroutine to its own
// operating-system thread for the Runtime's entire lifetime, via
// runtime.LockOSThread. Every subsequent call into this Runtime (Spawn,
// Park, Shutdown, ...) must happen from that same goroutine. Spawn,
// SpawnWith and Shutdown return ErrWrongGoroutine when called from any
// other; the remaining methods do not check.
func New(opts ...RuntimeOption) (*Runtime, error) {
	cfg, err := resolveRuntimeOptions(opts)
	if err != nil {
		return nil, err
	}

	goruntime.LockOSThread()

	rt := &Runtime{tid: gettid(), defaultStackSize: cfg.stackSize}
	if cfg.metricsEnabled {
		rt.metrics = &Metrics{switches: newSwitchCounter(10*time.Second, 100*time.Millisecond)}
	}

	root := contextForOSThread(rt)
	rt.root = root
	rt.executor = newExecutor(root)

	rc, err := newReactor()
	if err != nil {
		goruntime.UnlockOSThread()
		return nil, err
	}
	rt.reactor = rc

	sq, err := newSharedQueue()
	if err != nil {
		_ = rc.close()
		goruntime.UnlockOSThread()
		return nil, err
	}
	rt.sharedQueue = sq

	ss, err := newSignalStack()
	if err != nil {
		_ = sq.close()
		_ = rc.close()
		goruntime.UnlockOSThread()
		return nil, err
	}
	rt.signalStack = ss

	currentRuntimes.Store(rt.tid, rt)
	return rt, nil
}

// Metrics returns rt's metrics snapshot, or nil if WithMetrics(true) was
// never passed to New.
func (rt *Runtime) Metrics() *Metrics {
	return rt.metrics
}

// checkGoroutine is how SpawnWith (and so Spawn) and Shutdown reject a
// call from a goroutine other than the one New pinned, per
// ErrWrongGoroutine's doc comment. Go's own scheduler can otherwise
// migrate an unlocked goroutine across OS threads mid-call, silently
// corrupting the single-OS-thread invariant the rest of this package
// assumes throughout.
func (rt *Runtime) checkGoroutine() error {
	if gettid() != rt.tid {
		return ErrWrongGoroutine
	}
	return nil
}

// Spawn starts f as a new green thread on rt with default Builder
// options, returning a JoinHandle for its eventual result.
func Spawn[T any](rt *Runtime, f func() T) (*JoinHandle[T], error) {
	return SpawnWith(rt, nil, f)
}

// Park implements the core scheduling pivot: bump the poll
// counter; if it wrapped back to zero modulo parkPollInterval, or the run
// queue is currently empty, give the reactor a non-blocking chance to
// turn completed operations into runnable contexts. Then pop the next
// runnable context and switch into it. When nothing is runnable, a green
// thread switches back to the Runtime's own OS-thread context, while the
// OS-thread context itself blocks on the reactor and returns if that
// still leaves nothing to run.
func (rt *Runtime) Park() {
	var start time.Time
	if rt.metrics != nil {
		start = time.Now()
		rt.metrics.Queue.updateRunQueue(rt.executor.runq.len())
	}

	rt.polls++
	if rt.polls%parkPollInterval == 0 || rt.executor.runq.len() == 0 {
		_ = rt.pollReactor(0)
	}

	next, ok := rt.executor.pop()
	if !ok {
		if rt.executor.current == rt.executor.root {
			// The OS thread itself has nothing runnable: block until the
			// reactor or a remote Waker produces something.
			_ = rt.pollReactor(-1)
			next, ok = rt.executor.pop()
			if !ok {
				if rt.metrics != nil {
					rt.metrics.Latency.record(time.Since(start))
				}
				return
			}
		} else {
			// A green thread found nothing else ready; hand control back
			// to the OS thread's own driving loop.
			if rt.metrics != nil {
				rt.metrics.switches.increment()
				rt.metrics.Latency.record(time.Since(start))
			}
			rt.executor.switchTo(rt.executor.root)
			return
		}
	}
	if rt.metrics != nil {
		rt.metrics.switches.increment()
		rt.metrics.Latency.record(time.Since(start))
	}
	rt.executor.switchTo(next)
}

// YieldNow re-enqueues the calling green thread (if any) and parks,
// giving every other runnable context a turn before this one resumes.
func (rt *Runtime) YieldNow() {
	if cur := rt.executor.currentContext(); cur != nil && cur != rt.root {
		rt.executor.push(cur)
	}
	rt.Park()
}

// pollReactor flushes queued operations to the kernel and, if wait is
// non-zero, blocks for up to wait (wait < 0 meaning indefinitely) for at
// least one completion. Every Waker drained from sharedQueue in the same
// pass is pushed onto the run queue too, so a cross-thread wakeup is
// never missed just because it raced a reactor-only completion.
func (rt *Runtime) pollReactor(wait time.Duration) error {
	var flushErr error
	rt.sharedQueue.sleepWhile(func() {
		flushErr = rt.reactor.flush(rt, wait)
	})

	drained := rt.sharedQueue.drain()
	if rt.metrics != nil {
		rt.metrics.Queue.updateSharedQueue(len(drained))
	}
	for _, w := range drained {
		rt.executor.push(w.context())
	}

	return flushErr
}

// unpark makes ctx runnable again; called by dispatchCompletion once a
// reactor operation ctx submitted has a result.
func (rt *Runtime) unpark(ctx *context) {
	rt.executor.push(ctx)
}

// CurrentWaker returns a Waker over whatever context (green thread, or
// the Runtime's own operating-system thread) is presently running on rt,
// so a blocking data structure (see syncutil.Mutex) can register interest
// in being resumed without reaching into unexported scheduler state.
func (rt *Runtime) CurrentWaker() *Waker {
	return newWaker(rt.executor.currentContext())
}

// IsCancelled reports whether Shutdown has begun on rt. Intended to be
// checked from a long-running green thread body at a natural suspension
// point, so it can observe cancellation and exit cooperatively.
func (rt *Runtime) IsCancelled() bool {
	return rt.cancelled
}

// Shutdown cancels every live green thread and drives the executor until
// all of them have exited, then tears down the reactor, signal stack, and
// wake descriptors. It repeatedly marks every live context cancelled,
// unparks everything, and yields, until nothing is left alive, returning
// an error (possibly an AggregateError) instead of panicking if teardown
// fails.
//
// Bodies that never check IsCancelled (or never reach a suspension point
// at all) block Shutdown indefinitely -- cancellation here is cooperative,
// not a forced abort.
func (rt *Runtime) Shutdown() error {
	if err := rt.checkGoroutine(); err != nil {
		return err
	}
	if rt.shutdown {
		return nil
	}
	rt.shutdown = true
	rt.cancelled = true

	rt.executor.all.forEach(func(ctx *context) {
		ctx.isCancelled.Store(true)
	})

	for rt.executor.liveCount() > 0 {
		LogShutdown(int64(rt.tid), rt.executor.liveCount())
		rt.executor.unparkAll()
		rt.YieldNow()
	}

	var errs []error
	if err := rt.signalStack.release(); err != nil {
		errs = append(errs, err)
	}
	if err := rt.sharedQueue.close(); err != nil {
		errs = append(errs, err)
	}
	if err := rt.reactor.close(); err != nil {
		errs = append(errs, err)
	}

	currentRuntimes.Delete(rt.tid)
	goruntime.UnlockOSThread()

	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	return &AggregateError{Errors: errs}
}

// ReadFile performs a cooperative read from f, suspending the calling
// green thread (via Park) until the reactor reports a result rather than
// blocking the whole operating-system thread.
func (rt *Runtime) ReadFile(f interface{ Fd() uintptr }, buf []byte) (int, error) {
	return readOp(rt, int(f.Fd()), buf)
}

// WriteFile is ReadFile's write-side counterpart.
func (rt *Runtime) WriteFile(f interface{ Fd() uintptr }, buf []byte) (int, error) {
	return writeOp(rt, int(f.Fd()), buf)
}

// Sleep suspends the calling green thread for dur without blocking the
// operating-system thread, via the reactor's timeout op.
func (rt *Runtime) Sleep(dur time.Duration) error {
	return sleepOp(rt, dur)
}
