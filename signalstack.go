package greenrt

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// overflowSignal is SIGSEGV on Linux and SIGBUS on the BSDs: a guard-page
// access on Linux raises SIGSEGV, while the BSDs (including Darwin) raise
// SIGBUS for the same condition.
var overflowSignal = overflowSignalForGOOS()

// signalStack installs an alternate signal stack plus a handler for
// overflowSignal on the calling operating-system thread, so that a green
// thread overflowing its guard page has somewhere to run a handler and a
// name to report.
//
// The installation is tied to a single pinned OS thread (see
// New, which calls runtime.LockOSThread) rather than a single process-wide handler shared
// by every thread: there is exactly one signalStack per Runtime, and it
// is only ever active while that Runtime's root goroutine is alive.
type signalStack struct {
	stack *Stack
	old   unix.Sigaction
}

func newSignalStack() (*signalStack, error) {
	size := os.Getpagesize() * 8 // comfortably above MINSIGSTKSZ on every arm64 target
	stk, err := newStack(size)
	if err != nil {
		return nil, err
	}

	ss := &signalStack{stack: stk}
	if err := ss.installAltStack(); err != nil {
		_ = stk.release()
		return nil, err
	}
	if err := ss.installHandler(); err != nil {
		_ = ss.teardownAltStack()
		_ = stk.release()
		return nil, err
	}
	return ss, nil
}

func (ss *signalStack) installAltStack() error {
	base := ss.stack.data
	st := &unix.Stack_t{
		Ss:    (*byte)(unsafe.Pointer(unsafe.SliceData(base))),
		Size:  uint64(len(base)),
		Flags: 0,
	}
	return unix.Sigaltstack(st, nil)
}

func (ss *signalStack) teardownAltStack() error {
	st := &unix.Stack_t{Flags: unix.SS_DISABLE}
	return unix.Sigaltstack(st, nil)
}

// installHandler wires overflowSignal to sigOverflowTrampoline, an asm
// stub (alongside archSwitch in asm_arm64.s) matching the kernel's
// SA_SIGINFO entry contract; it reads siginfo.si_addr and calls
// reportOverflow. The previously-installed handler is saved in ss.old and
// put back by release; reportOverflow never calls it.
func (ss *signalStack) installHandler() error {
	act := unix.Sigaction{
		Flags:  unix.SA_SIGINFO | unix.SA_ONSTACK,
		Handler: 0,
	}
	act.Handler = sigOverflowTrampolinePC()
	return unix.Sigaction(overflowSignal, &act, &ss.old)
}

func (ss *signalStack) restoreHandler() error {
	return unix.Sigaction(overflowSignal, &ss.old, nil)
}

// release tears down the handler and alternate stack, in the reverse
// order they were installed.
func (ss *signalStack) release() error {
	err1 := ss.restoreHandler()
	err2 := ss.teardownAltStack()
	err3 := ss.stack.release()
	if err1 != nil {
		return err1
	}
	if err2 != nil {
		return err2
	}
	return err3
}

// reportOverflow is invoked (via sigOverflowTrampoline) on the alternate
// stack when overflowSignal fires. It classifies the fault by comparing
// faultAddr against the current context's stack guard range: a hit is
// reported with the green thread's name; a miss is reported as a generic
// segmentation fault. Either way the process exits with status 2.
// Writes directly to stderr rather than through the Logger machinery in
// logging.go: this runs on the alternate signal stack inside a signal
// handler, where taking the global logger's RWMutex could deadlock if the
// signal landed while some other goroutine already held it.
func reportOverflow(faultAddr uintptr) {
	cur := currentRuntime()
	if cur != nil {
		if ctx := cur.executor.currentContext(); ctx != nil {
			lo, hi := ctx.stack.guardRange()
			if faultAddr >= lo && faultAddr < hi {
				name := ctx.name
				if name == "" {
					name = "<unknown>"
				}
				fmt.Fprintf(os.Stderr, "greenrt: green thread %q has overflowed its stack\n", name)
				os.Exit(2)
			}
		}
	}
	fmt.Fprintln(os.Stderr, "greenrt: segmentation fault")
	os.Exit(2)
}
