//go:build linux

package greenrt

import (
	"golang.org/x/sys/unix"
)

// wakeDescriptor is a single eventfd on Linux: SharedQueue.send writes to
// it to break a blocking submitAndWait -- one read/write fd, unlike the
// two-fd self-pipe the BSDs need.
type wakeDescriptor struct {
	fd int
}

func newWakeDescriptor() (*wakeDescriptor, error) {
	fd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		return nil, err
	}
	return &wakeDescriptor{fd: fd}, nil
}

// notify writes 1 to the eventfd, incrementing its counter and, if a
// reactor is blocked polling it, waking that poll.
func (w *wakeDescriptor) notify() error {
	var buf [8]byte
	buf[7] = 1
	_, err := unix.Write(w.fd, buf[:])
	return err
}

// drain resets the eventfd counter to zero after a wake, so the next
// blocking wait doesn't return immediately.
func (w *wakeDescriptor) drain() {
	var buf [8]byte
	for {
		_, err := unix.Read(w.fd, buf[:])
		if err != nil {
			return
		}
	}
}

func (w *wakeDescriptor) readFD() int { return w.fd }

func (w *wakeDescriptor) close() error {
	return unix.Close(w.fd)
}
