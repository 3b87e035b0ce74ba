// Package greenrt provides a single-threaded, stackful M:N green-thread
// runtime for 64-bit Unix systems: cooperatively scheduled coroutines,
// each with its own guard-paged stack, multiplexed onto one operating
// -system thread per Runtime.
//
// # Architecture
//
// A [Runtime] binds four pieces to one pinned operating-system thread:
// an executor (run queue plus context membership set), a kernel-event
// reactor (io_uring on Linux, kqueue on the BSDs), a cross-thread
// [sharedQueue] for remote wakeups, and an alternate signal stack that
// turns a stack-overflow guard-page fault into a diagnosable crash
// instead of silent corruption.
//
// [Spawn] and [SpawnWith] start a green thread and return a
// [JoinHandle], whose Join blocks the caller (cooperatively, via
// [Runtime.Park]) until the spawned body returns or panics. A [Waker]
// lets any other operating-system thread reschedule a parked green
// thread without touching the owning Runtime's internal state directly.
//
// # Platform support
//
// I/O is multiplexed using platform-native mechanisms:
//   - Linux: io_uring
//   - Darwin/FreeBSD/NetBSD/OpenBSD: kqueue
//
// Both targets require arm64; the register-bank context switch
// (asm_arm64.s) is written directly against the AAPCS64 calling
// convention and has no other architecture's implementation.
//
// # Thread safety
//
// Every Runtime method must be called from the same goroutine that
// created it via [New], since [New] pins that goroutine to one
// operating-system thread with runtime.LockOSThread. [Spawn], [SpawnWith]
// and [Runtime.Shutdown] return [ErrWrongGoroutine] when called from
// another goroutine; the other methods do not check. [Waker.Wake] and [Waker.Release] are the two
// exceptions: they are safe to call from any goroutine, which is the
// entire point of a Waker.
//
// # Usage
//
//	rt, err := greenrt.New(greenrt.WithMetrics(true))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	handle, err := greenrt.Spawn(rt, func() int {
//		_ = rt.Sleep(100 * time.Millisecond)
//		return 42
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := handle.Join(rt)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(result)
//
//	if err := rt.Shutdown(); err != nil {
//		log.Fatal(err)
//	}
//
// # Error types
//
// [JoinHandle.Join] and reactor operations surface runtime-specific
// error kinds:
//   - [AllocationError]: stack or signal-stack mapping failed
//   - [SyscallError]: a reactor operation completed with a negative
//     result, wrapping the raw errno
//   - [ErrCancelled]: the operation's Runtime began [Runtime.Shutdown]
//   - [PanicError]: a green thread's body panicked instead of returning
//   - [ErrWrongGoroutine]: a Runtime method was called off its pinned
//     goroutine
//   - [AggregateError]: more than one error occurred while tearing down
//     a Runtime
//
// # Known limitations
//
// archSwitch (asm_arm64.s) repoints the stack pointer at a green thread's
// independently mmap'd [Stack] without updating the host goroutine's own
// stack-bounds bookkeeping (g.stack.{lo,hi}, stackguard0/1): this package
// has no //go:linkname into those runtime-internal fields, only ordinary
// exported entry points. Every frame run on a green thread's stack is
// therefore invisible to the Go scheduler's stack-growth machinery --
// concretely, a splittable (non-nosplit) function call whose prologue
// triggers runtime.morestack while executing on a green thread's stack
// compares the wrong bounds. In practice this has not been observed to
// cause a crash (the green thread stacks used here are comparable in
// size to a goroutine's own initial stack, and Go's morestack check is
// conservative), but it is not a property this package proves or
// enforces. Pick a [Builder.StackSize] generous enough for the deepest
// call chain a spawned body will reach, and avoid spawning bodies with
// recursion depth or local frame sizes that would be unusual for an
// ordinary goroutine.
package greenrt
