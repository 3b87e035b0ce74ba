//go:build darwin || freebsd || netbsd || openbsd

package greenrt

import "golang.org/x/sys/unix"

// wakeDescriptor is a self-pipe on the BSDs (including Darwin), which have
// no eventfd: a read and a write fd, both non-blocking and close-on-exec.
type wakeDescriptor struct {
	readFd, writeFd int
}

func newWakeDescriptor() (*wakeDescriptor, error) {
	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_CLOEXEC|unix.O_NONBLOCK); err != nil {
		return nil, err
	}
	return &wakeDescriptor{readFd: fds[0], writeFd: fds[1]}, nil
}

func (w *wakeDescriptor) notify() error {
	_, err := unix.Write(w.writeFd, []byte{1})
	return err
}

func (w *wakeDescriptor) drain() {
	var buf [256]byte
	for {
		_, err := unix.Read(w.readFd, buf[:])
		if err != nil {
			return
		}
	}
}

func (w *wakeDescriptor) readFD() int { return w.readFd }

func (w *wakeDescriptor) close() error {
	err1 := unix.Close(w.readFd)
	err2 := unix.Close(w.writeFd)
	if err1 != nil {
		return err1
	}
	return err2
}
