package greenrt

import (
	"os"
	"time"
)

// reactor is the kernel-multiplexer abstraction. Each submitX method tags
// an operation with the submitting context (a context-pointer-as-user-data
// pattern) and queues it; flush pushes queued operations to the kernel,
// dispatching every completion it sees via dispatchCompletion before
// returning. wait == 0 submits and yields without blocking. Any other
// wait blocks for at least one completion: bsdReactor treats a positive
// wait as a timeout and a negative one as no timeout, while linuxReactor
// applies no timeout in either case. Neither backend has a bounded
// default timeout.
//
// linuxReactor (reactor_linux.go) wraps io_uring; bsdReactor
// (reactor_bsd.go) wraps kqueue.
type reactor interface {
	submitRead(ctx *context, fd int, buf []byte) error
	submitWrite(ctx *context, fd int, buf []byte) error
	submitTimeout(ctx *context, dur time.Duration) error
	submitPollReadable(ctx *context, fd int) error
	flush(rt *Runtime, wait time.Duration) error
	wakeFD() int
	close() error
}

// submitIO is the common per-operation path shared by every reactor op
// helper (sleep/read/write/...): push the operation, park until a result
// arrives, classify the result. Unified into one cross-platform helper
// since both backends follow the same push-park-read-result shape once
// tagging is handled by the reactor implementation itself.
func submitIO(rt *Runtime, push func(ctx *context) error) (int32, error) {
	ctx := rt.executor.currentContext()

	if err := push(ctx); err != nil {
		return 0, err
	}

	for {
		if ctx.isCancelled.Load() {
			return 0, ErrCancelled
		}

		if res := ctx.ioResult.Swap(nil); res != nil {
			n := *res
			if n < 0 {
				return 0, &SyscallError{Errno: -n}
			}
			return n, nil
		}

		rt.Park()
	}
}

// dispatchCompletion writes a completed operation's result into the
// submitting context's io_result slot and makes it runnable again. Shared
// by both reactor backends' completion-draining loop.
func dispatchCompletion(rt *Runtime, ctx *context, result int32) {
	if ctx == nil {
		return
	}
	if result < 0 && result != -timeoutErrno {
		LogReactorError(int64(rt.tid), "completion", &SyscallError{Errno: -result})
	}
	r := result
	ctx.ioResult.Store(&r)
	rt.unpark(ctx)
}

func sleepOp(rt *Runtime, dur time.Duration) error {
	_, err := submitIO(rt, func(ctx *context) error {
		return rt.reactor.submitTimeout(ctx, dur)
	})
	var se *SyscallError
	if asSyscallError(err, &se) && se.Errno == timeoutErrno {
		return nil
	}
	return err
}

func readOp(rt *Runtime, fd int, buf []byte) (int, error) {
	n, err := submitIO(rt, func(ctx *context) error {
		return rt.reactor.submitRead(ctx, fd, buf)
	})
	return int(n), err
}

func writeOp(rt *Runtime, fd int, buf []byte) (int, error) {
	n, err := submitIO(rt, func(ctx *context) error {
		return rt.reactor.submitWrite(ctx, fd, buf)
	})
	return int(n), err
}

func asSyscallError(err error, out **SyscallError) bool {
	se, ok := err.(*SyscallError)
	if ok {
		*out = se
	}
	return ok
}

// fdOrMinusOne lets call sites pass *os.File directly.
func fdOrMinusOne(f *os.File) int {
	if f == nil {
		return -1
	}
	return int(f.Fd())
}
