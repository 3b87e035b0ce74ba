//go:build linux

package greenrt

import "golang.org/x/sys/unix"

// gettid identifies the calling operating-system thread, used to route a
// stack-overflow signal (which fires on whatever OS thread the fault
// happened on) back to the Runtime pinned to it.
func gettid() int {
	return unix.Gettid()
}
