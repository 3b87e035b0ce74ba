package greenrt

import "sync/atomic"

// liveContexts is a process-wide counter of allocated-but-not-yet-freed
// contexts: a plain atomic counter incremented by newContext and
// decremented once both the local and atomic refcounts of a context
// reach zero (see (*context).release).
//
// This exists to make "spawn many threads, leak no context allocation"
// mechanically testable.
var liveContexts atomic.Int64

// LiveContextCount returns the number of contexts that have been
// allocated (via Spawn or a Runtime's root context) and not yet fully
// released. Intended for tests and diagnostics, not the hot path.
func LiveContextCount() int64 {
	return liveContexts.Load()
}

// registry tracks every context belonging to one executor: the "all"
// membership set used by unparkAll and exit-path removal.
//
// An executor's registry is touched only by the one OS thread that owns
// the runtime, since all other context fields are accessed only by the
// owning operating-system thread, so it needs no lock at all.
type registry struct {
	all map[*context]struct{}
}

func newRegistry() *registry {
	return &registry{all: make(map[*context]struct{})}
}

func (r *registry) insert(ctx *context) {
	r.all[ctx] = struct{}{}
}

func (r *registry) remove(ctx *context) {
	delete(r.all, ctx)
}

// forEach calls fn for every currently-registered context. fn must not
// mutate the registry.
func (r *registry) forEach(fn func(*context)) {
	for ctx := range r.all {
		fn(ctx)
	}
}

func (r *registry) len() int {
	return len(r.all)
}
