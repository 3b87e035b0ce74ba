package greenrt

// defaultStackSize is the usable stack size a green thread gets when a
// caller does not specify one via Builder.StackSize. 512 KiB comfortably
// fits deeply recursive call chains without the per-thread cost of the
// 8 MiB default an OS thread would reserve.
const defaultStackSize = 512 * 1024

// builderOptions is the plain option bag a Builder accumulates before
// handing it to newContext. Kept as an unexported struct (rather than
// passing Builder itself into newContext) so context.go does not need to
// know about the chainable public API wrapped around it.
type builderOptions struct {
	name      string
	stackSize int
}

// Builder configures a green thread before spawning it.
//
// Go has no generic methods, so instead of a builder.Spawn(f) method,
// the terminal step here is the package-level SpawnWith function; Builder
// itself only accumulates options.
type Builder struct {
	opts builderOptions
}

// NewBuilder returns a Builder with no name and no explicit stack size;
// SpawnWith falls back to the owning Runtime's default stack size (see
// WithDefaultStackSize) for a Builder that never called StackSize.
func NewBuilder() *Builder {
	return &Builder{}
}

// Name sets the green thread's diagnostic name, reported by the stack
// overflow handler and by JoinHandle.Name.
func (b *Builder) Name(name string) *Builder {
	b.opts.name = name
	return b
}

// StackSize sets the usable stack size in bytes; it is rounded up to a
// whole number of pages by newStack. n <= 0 leaves the size unset, so
// SpawnWith gives the thread the owning Runtime's default stack size.
func (b *Builder) StackSize(n int) *Builder {
	b.opts.stackSize = n
	return b
}

// SpawnWith spawns f on rt using b's options (or the defaults, if b is
// nil), returning a JoinHandle for its eventual result.
func SpawnWith[T any](rt *Runtime, b *Builder, f func() T) (*JoinHandle[T], error) {
	if err := rt.checkGoroutine(); err != nil {
		return nil, err
	}
	var opts builderOptions
	if b != nil {
		opts = b.opts
	}
	if opts.stackSize <= 0 {
		opts.stackSize = rt.defaultStackSize
	}
	ctx, err := newContext(rt, f, opts)
	if err != nil {
		return nil, err
	}
	rt.executor.spawn(ctx)
	LogThreadSpawned(int64(rt.tid), opts.name, opts.stackSize)
	return &JoinHandle[T]{ctx: ctx}, nil
}

