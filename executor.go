package greenrt

// executor owns one Runtime's run queue and context membership set, both
// touched only by the OS thread that owns the Runtime.
type executor struct {
	runq    runQueue
	all     registry
	current *context
	// root is the context representing the Runtime's own operating
	// -system thread (see contextForOSThread). spawn never pushes it onto
	// runq; it lands there only when a Waker over it is woken (a Join or
	// Mutex.Lock called from the OS thread itself). It is the fallback
	// target whenever pop finds nothing else runnable, so the OS thread
	// always has somewhere defined to resume into.
	root *context
}

func newExecutor(root *context) *executor {
	e := &executor{all: *newRegistry(), root: root}
	e.current = root
	return e
}

// spawn registers a brand-new context and enqueues it for its first run.
func (e *executor) spawn(ctx *context) {
	e.all.insert(ctx)
	e.push(ctx)
}

// push makes ctx runnable, transitioning Waiting -> Queued. Pushing a
// context that is already Queued is a no-op: unparkAll may race with an
// ordinary park and must not double-enqueue. Pushing a context whose body
// has finished (Finished or Taken) is a silent no-op too.
func (e *executor) push(ctx *context) {
	if l := ctx.getLifecycle(); l == lifecycleFinished || l == lifecycleTaken {
		return
	}
	if ctx.tryEnqueue() {
		e.runq.push(ctx)
	}
}

// pop removes and returns the next runnable context, clearing its Queued
// flag back to Waiting. Returns (nil, false) if nothing is runnable.
func (e *executor) pop() (*context, bool) {
	ctx, ok := e.runq.pop()
	if !ok {
		return nil, false
	}
	ctx.markWaiting()
	return ctx, true
}

// remove drops ctx from the membership set entirely (used once a context
// has finished and is being torn down; a Finished context is never
// runnable again).
func (e *executor) remove(ctx *context) {
	e.all.remove(ctx)
}

// switchTo performs the actual context switch: save the executor's
// current context's registers, make next current, and resume it.
func (e *executor) switchTo(next *context) {
	prev := e.current
	e.current = next
	archSwitch(&prev.registers, &next.registers)
}

// currentContext returns the context presently running on this executor's
// OS thread.
func (e *executor) currentContext() *context {
	return e.current
}

// unparkAll enqueues every Waiting member, used by Runtime.Shutdown to
// wake every live green thread so it can observe isCancelled and exit.
func (e *executor) unparkAll() {
	e.all.forEach(func(ctx *context) {
		if ctx.getStatus() == statusWaiting {
			e.push(ctx)
		}
	})
}

func (e *executor) liveCount() int {
	return e.all.len()
}
