package greenrt

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

func uintptrOfSlice(b []byte) uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(b)))
}

// pageSize is resolved once at process start via os.Getpagesize, which
// reads the same underlying sysconf(_SC_PAGE_SIZE) value without a cgo
// call.
var pageSize = os.Getpagesize()

// Stack is a guard-paged green-thread stack: a single anonymous mapping
// with its first page rendered PROT_NONE so that overflowing into it
// raises SIGSEGV/SIGBUS instead of silently corrupting an adjacent
// mapping -- a [guard page | usable stack] layout.
//
// The guard page is an explicit mprotect'd page rather than relying on
// the kernel's MAP_GROWSDOWN behavior (Linux-only), so it works
// identically on the BSDs too.
//
// A Stack is a raw mapping the host goroutine's own stack-growth
// machinery does not know about; see "Known limitations" in doc.go.
type Stack struct {
	data []byte // the full mapping, including the guard page
	size int    // len(data), always a multiple of pageSize
}

// newStack maps a stack of at least usableSize bytes, rounded up to a
// whole number of pages, plus one additional guard page at the low
// address end. usableSize of zero yields the zero Stack (used for a
// runtime's own OS-thread root context, which never switches onto a
// separate stack).
func newStack(usableSize int) (*Stack, error) {
	if usableSize <= 0 {
		return &Stack{}, nil
	}

	rounded := roundUpToPage(usableSize)
	total := rounded + pageSize

	flags := unix.MAP_ANON | unix.MAP_PRIVATE
	data, err := unix.Mmap(-1, 0, total, unix.PROT_READ|unix.PROT_WRITE, flags|mapStackFlags())
	if err != nil {
		return nil, &AllocationError{Cause: fmt.Errorf("mmap stack: %w", err)}
	}

	if err := unix.Mprotect(data[:pageSize], unix.PROT_NONE); err != nil {
		_ = unix.Munmap(data)
		return nil, &AllocationError{Cause: fmt.Errorf("mprotect guard page: %w", err)}
	}

	return &Stack{data: data, size: total}, nil
}

func roundUpToPage(n int) int {
	if r := n % pageSize; r != 0 {
		n += pageSize - r
	}
	return n
}

// bottom returns the 16-byte-aligned address a fresh context's stack
// pointer should start at: the midpoint of the mapping. Stacks grow down
// from here, leaving the upper half as headroom and the lower half (down
// to the guard page) as the usable range before a fault.
func (s *Stack) bottom() uintptr {
	if len(s.data) == 0 {
		return 0
	}
	base := uintptrOfSlice(s.data)
	out := base + uintptr(s.size/2)
	if out%16 != 0 {
		out -= out % 16
	}
	return out
}

// guardRange reports the address range of the no-access guard page, used
// by the SIGSEGV/SIGBUS handler to classify a fault as stack overflow.
func (s *Stack) guardRange() (lo, hi uintptr) {
	if len(s.data) == 0 {
		return 0, 0
	}
	base := uintptrOfSlice(s.data)
	return base, base + uintptr(pageSize)
}

// release unmaps the stack. Safe to call on the zero Stack.
func (s *Stack) release() error {
	if len(s.data) == 0 {
		return nil
	}
	data := s.data
	s.data = nil
	s.size = 0
	return unix.Munmap(data)
}
