//go:build linux

package greenrt

import "golang.org/x/sys/unix"

func overflowSignalForGOOS() unix.Signal { return unix.SIGSEGV }
