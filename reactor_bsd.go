//go:build darwin || freebsd || netbsd || openbsd

package greenrt

import (
	"fmt"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

func udataFromTag(tag uint64) unsafe.Pointer { return unsafe.Pointer(uintptr(tag)) }
func tagFromUdata(p *byte) uint64            { return uint64(uintptr(unsafe.Pointer(p))) }

// timeoutErrno is a sentinel that never matches a real errno: the BSD
// backend resolves a timer's kevent directly with result 0 (success), so
// sleepOp's "was this the timeout itself" check never needs to trigger
// here, unlike the Linux io_uring backend where ETIME is a genuine
// completion errno -- a fired EVFILT_TIMER never surfaces an error.
const timeoutErrno int32 = 0x7fffffff

// flushBatchLimit caps how many kevents one flush drains. Registrations
// are not batched: register and submitTimeout each submit their kevent
// with a separate kevent(2) call as soon as they are made.
const flushBatchLimit = 512

// bsdOp records what a pending kqueue registration should report back to
// once its kevent fires, since unlike io_uring a kevent's udata is the
// only per-registration tag kqueue gives back.
type bsdOp struct {
	ctx    *context
	buf    []byte
	fd     int
	isRead bool
	isTmr  bool
}

// bsdReactor wraps one kqueue instance per Runtime: registrations are
// submitted via EV_SET with EV_ONESHOT so each kevent fires exactly
// once, and udata carries an opaque tag resolved through a side table
// (kqueue's udata is only pointer-width, same constraint the Linux ring's
// user_data field
// has, so the same pending-map pattern is reused here).
type bsdReactor struct {
	kq      int
	pending map[uint64]*bsdOp
	nextTag uint64
	wake    *wakeDescriptor
}

func newReactor() (reactor, error) {
	kq, err := unix.Kqueue()
	if err != nil {
		return nil, fmt.Errorf("greenrt: kqueue: %w", err)
	}
	wd, err := newWakeDescriptor()
	if err != nil {
		unix.Close(kq)
		return nil, err
	}
	r := &bsdReactor{kq: kq, pending: make(map[uint64]*bsdOp), wake: wd}

	ev := unix.Kevent_t{
		Ident:  uint64(wd.readFD()),
		Filter: unix.EVFILT_READ,
		Flags:  unix.EV_ADD | unix.EV_CLEAR,
	}
	if _, err := unix.Kevent(kq, []unix.Kevent_t{ev}, nil, nil); err != nil {
		r.close()
		return nil, fmt.Errorf("greenrt: kevent register wake fd: %w", err)
	}
	return r, nil
}

func (r *bsdReactor) register(ev unix.Kevent_t, op *bsdOp) {
	r.nextTag++
	tag := r.nextTag
	r.pending[tag] = op
	ev.Udata = (*byte)(udataFromTag(tag))
	// EV_ONESHOT: the registration is consumed by the first matching
	// event, so no explicit deregistration step is needed on completion.
	ev.Flags |= unix.EV_ADD | unix.EV_ONESHOT
	unix.Kevent(r.kq, []unix.Kevent_t{ev}, nil, nil)
}

func (r *bsdReactor) submitRead(ctx *context, fd int, buf []byte) error {
	r.register(unix.Kevent_t{Ident: uint64(fd), Filter: unix.EVFILT_READ}, &bsdOp{ctx: ctx, buf: buf, fd: fd, isRead: true})
	return nil
}

func (r *bsdReactor) submitWrite(ctx *context, fd int, buf []byte) error {
	r.register(unix.Kevent_t{Ident: uint64(fd), Filter: unix.EVFILT_WRITE}, &bsdOp{ctx: ctx, buf: buf, fd: fd, isRead: false})
	return nil
}

func (r *bsdReactor) submitTimeout(ctx *context, dur time.Duration) error {
	ms := dur.Milliseconds()
	if ms <= 0 {
		ms = 1
	}
	r.nextTag++
	tag := r.nextTag
	r.pending[tag] = &bsdOp{ctx: ctx, isTmr: true}
	ev := unix.Kevent_t{
		Ident:  tag,
		Filter: unix.EVFILT_TIMER,
		Flags:  unix.EV_ADD | unix.EV_ONESHOT,
		Data:   ms,
		Udata:  (*byte)(udataFromTag(tag)),
	}
	unix.Kevent(r.kq, []unix.Kevent_t{ev}, nil, nil)
	return nil
}

func (r *bsdReactor) submitPollReadable(ctx *context, fd int) error {
	r.register(unix.Kevent_t{Ident: uint64(fd), Filter: unix.EVFILT_READ}, &bsdOp{ctx: ctx, fd: fd, isRead: true})
	return nil
}

func (r *bsdReactor) flush(rt *Runtime, wait time.Duration) error {
	var ts *unix.Timespec
	switch {
	case wait == 0:
		z := unix.NsecToTimespec(0)
		ts = &z
	case wait > 0:
		z := unix.NsecToTimespec(wait.Nanoseconds())
		ts = &z
	default:
		ts = nil // block until at least one event (submit_and_wait default)
	}

	events := make([]unix.Kevent_t, flushBatchLimit)
	n, err := unix.Kevent(r.kq, nil, events, ts)
	if err != nil && err != unix.EINTR {
		return fmt.Errorf("greenrt: kevent wait: %w", err)
	}

	for i := 0; i < n; i++ {
		ev := events[i]
		if ev.Filter == unix.EVFILT_READ && int(ev.Ident) == r.wake.readFD() {
			r.wake.drain()
			continue
		}
		tag := tagFromUdata(ev.Udata)
		op, ok := r.pending[tag]
		if !ok {
			continue
		}
		delete(r.pending, tag)

		switch {
		case op.isTmr:
			dispatchCompletion(rt, op.ctx, 0)
		case ev.Flags&unix.EV_ERROR != 0:
			dispatchCompletion(rt, op.ctx, -int32(ev.Data))
		case op.isRead:
			n, rerr := unix.Read(op.fd, op.buf)
			dispatchCompletion(rt, op.ctx, resultOrErrno(n, rerr))
		default:
			n, werr := unix.Write(op.fd, op.buf)
			dispatchCompletion(rt, op.ctx, resultOrErrno(n, werr))
		}
	}
	return nil
}

func resultOrErrno(n int, err error) int32 {
	if err != nil {
		if errno, ok := err.(unix.Errno); ok {
			return -int32(errno)
		}
		return -1
	}
	return int32(n)
}

func (r *bsdReactor) wakeFD() int { return r.wake.readFD() }

func (r *bsdReactor) close() error {
	err1 := r.wake.close()
	err2 := unix.Close(r.kq)
	if err1 != nil {
		return err1
	}
	return err2
}
