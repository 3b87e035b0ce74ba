//go:build arm64

package greenrt

// archSwitch saves the caller's callee-saved register bank into prev, then
// loads next's bank and resumes it. If next has never run before (its lr
// field is still zero, the zero value left by newRegisters), control
// transfers to next.entry with next.arg0 in the first argument register
// instead of returning into a previously-suspended call frame.
//
// archSwitch returns (to the caller of the switch that originally
// suspended this context) once some other context switches back into prev.
//
// It does not update the calling goroutine's stack-bounds bookkeeping to
// match whichever Stack RSP now points at; see "Known limitations" in
// doc.go.
//
//go:noescape
func archSwitch(prev, next *registers)

// archLoad loads next's register bank and resumes it without saving
// anything first. Used only by a Finished context's exit path
// (context.exit), where there is no context to preserve; it never returns
// to its caller.
//
//go:noescape
func archLoad(next *registers)

// sigOverflowTrampolinePC returns the program counter of the asm
// trampoline installed as the SA_SIGINFO handler for overflowSignal. The
// trampoline extracts si_addr from the kernel-supplied siginfo_t and
// calls reportOverflow(addr uintptr) using the ordinary Go calling
// convention, then returns; reportOverflow always exits the process, so
// that return is never reached in practice.
func sigOverflowTrampolinePC() uintptr

// threadTrampolinePC returns the program counter of the asm entry stub
// used as a brand-new context's registers.entry: it takes the raw
// *context pointer in R0 (the AAPCS64 first-argument register) and makes
// an ordinary Go call into threadStartEntry.
func threadTrampolinePC() uintptr
