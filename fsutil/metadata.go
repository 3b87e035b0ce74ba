package fsutil

import (
	"time"

	"golang.org/x/sys/unix"
)

// Metadata is file metadata queried via statx(2), wrapping
// golang.org/x/sys/unix's Statx_t.
type Metadata struct {
	stat unix.Statx_t
}

// Stat queries metadata for path, following symlinks.
func Stat(path string) (Metadata, error) {
	return statPath(path, 0)
}

// LStat queries metadata for path without following a trailing symlink.
func LStat(path string) (Metadata, error) {
	return statPath(path, unix.AT_SYMLINK_NOFOLLOW)
}

func statPath(path string, flags int) (Metadata, error) {
	var stx unix.Statx_t
	if err := unix.Statx(unix.AT_FDCWD, path, flags, unix.STATX_ALL, &stx); err != nil {
		return Metadata{}, err
	}
	return Metadata{stat: stx}, nil
}

func (m Metadata) Size() int64 { return int64(m.stat.Size) }

func (m Metadata) Mode() uint16 { return m.stat.Mode }

func (m Metadata) IsDir() bool { return m.stat.Mode&unix.S_IFMT == unix.S_IFDIR }

func (m Metadata) IsRegular() bool { return m.stat.Mode&unix.S_IFMT == unix.S_IFREG }

func (m Metadata) IsSymlink() bool { return m.stat.Mode&unix.S_IFMT == unix.S_IFLNK }

func (m Metadata) ModTime() time.Time {
	return time.Unix(m.stat.Mtime.Sec, int64(m.stat.Mtime.Nsec))
}

func (m Metadata) AccessTime() time.Time {
	return time.Unix(m.stat.Atime.Sec, int64(m.stat.Atime.Nsec))
}
