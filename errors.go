package greenrt

import (
	"errors"
	"fmt"
)

// AllocationError wraps an mmap/mprotect/sigaltstack failure.
type AllocationError struct {
	Cause error
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("greenrt: allocation failed: %v", e.Cause)
}

func (e *AllocationError) Unwrap() error { return e.Cause }

// SyscallError wraps a raw operating-system error number returned by a
// reactor completion: the magnitude of a negative result is the system
// error number.
type SyscallError struct {
	Errno int32
}

func (e *SyscallError) Error() string {
	return fmt.Sprintf("greenrt: syscall error, errno %d", e.Errno)
}

// ErrCancelled is returned by an in-flight reactor operation (or any
// other cooperating suspension point) once its green thread's runtime has
// begun shutdown.
var ErrCancelled = errors.New("greenrt: operation cancelled")

// PanicError is what JoinHandle.Join returns when the joined green
// thread's body panicked instead of returning normally, carrying the
// recovered value.
//
// Keeps an errors.Is/errors.As-friendly Unwrap so a panic carrying an
// error value still participates in the usual error chain.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("greenrt: green thread panicked: %v", e.Value)
}

func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// ErrWrongGoroutine is returned by Spawn, SpawnWith and Runtime.Shutdown
// when called from a goroutine other than the one that created the Runtime (and which
// pinned itself to an operating-system thread via runtime.LockOSThread).
// Go's own runtime can migrate a goroutine between OS threads unless
// pinned, so this guards the single-OS-thread invariant explicitly.
var ErrWrongGoroutine = errors.New("greenrt: Runtime method called from a goroutine other than the one that created it")

// AggregateError collects more than one error encountered while tearing
// down a Runtime: Shutdown returns one when more than one of its
// signal-stack, shared-queue and reactor teardown steps fails.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("greenrt: %d errors during shutdown (first: %v)", len(e.Errors), e.Errors[0])
}

func (e *AggregateError) Unwrap() []error { return e.Errors }

func (e *AggregateError) Is(target error) bool {
	var aggTarget *AggregateError
	return errors.As(target, &aggTarget)
}
