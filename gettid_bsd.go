//go:build darwin || freebsd || netbsd || openbsd

package greenrt

import "golang.org/x/sys/unix"

// gettid approximates an operating-system thread id on the BSDs. There is
// no portable, cgo-free way to read the kernel's actual per-thread id
// here (Darwin's thread_selfid and FreeBSD's thr_self are both raw
// syscalls outside what x/sys/unix wraps); since a process that only ever
// runs a single greenrt Runtime -- the common case -- needs no
// disambiguation at all, this falls back to the process id, which only
// breaks currentRuntime's signal-handler lookup if more than one Runtime
// is pinned to more than one OS thread in the same process at once.
func gettid() int {
	return unix.Getpid()
}
