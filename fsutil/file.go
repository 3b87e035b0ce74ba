// Package fsutil provides cooperative file I/O on top of
// github.com/oxhide/greenrt's Runtime.ReadFile/WriteFile.
package fsutil

import (
	"os"

	"github.com/oxhide/greenrt"
)

// File wraps an *os.File so its reads and writes suspend the calling
// green thread (via the owning Runtime's reactor) instead of blocking
// the operating-system thread. Open/close remain ordinary blocking
// syscalls, since neither is wired through the reactor interface.
type File struct {
	f  *os.File
	rt *greenrt.Runtime
}

// Open opens path read-only.
func Open(rt *greenrt.Runtime, path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &File{f: f, rt: rt}, nil
}

// Create creates or truncates path for writing.
func Create(rt *greenrt.Runtime, path string) (*File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &File{f: f, rt: rt}, nil
}

// OpenFile is the general-purpose open, mirroring os.OpenFile.
func OpenFile(rt *greenrt.Runtime, path string, flag int, perm os.FileMode) (*File, error) {
	f, err := os.OpenFile(path, flag, perm)
	if err != nil {
		return nil, err
	}
	return &File{f: f, rt: rt}, nil
}

// Read suspends the calling green thread until the reactor reports a
// result for this read, rather than blocking rt's operating-system
// thread.
func (f *File) Read(buf []byte) (int, error) {
	return f.rt.ReadFile(f.f, buf)
}

// Write is Read's write-side counterpart.
func (f *File) Write(buf []byte) (int, error) {
	return f.rt.WriteFile(f.f, buf)
}

// Close closes the underlying descriptor. Not routed through the
// reactor: close(2) never blocks on I/O readiness the way read/write do.
func (f *File) Close() error {
	return f.f.Close()
}

// Fd returns the underlying file descriptor.
func (f *File) Fd() uintptr {
	return f.f.Fd()
}
