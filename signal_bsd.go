//go:build darwin || freebsd || netbsd || openbsd

package greenrt

import "golang.org/x/sys/unix"

func overflowSignalForGOOS() unix.Signal { return unix.SIGBUS }
