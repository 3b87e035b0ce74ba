package greenrt

// registers is the saved machine state of one suspended context: stack
// pointer, entry point and argument, frame pointer, link register, and a
// general-purpose bank. On arm64 the "general" bank is the
// callee-saved integer registers X19-X28 plus the callee-saved floating
// point registers D8-D15, per the AAPCS64 procedure call standard -- those
// are exactly the registers a function is required to preserve across a
// call, which is what lets archSwitch pretend the switch itself was an
// ordinary call that simply "returned" into a different stack.
//
// The zero value is not a valid register bank; use newRegisters.
type registers struct {
	sp    uintptr // stack pointer at the point of suspension
	entry uintptr // trampoline entry point (only used for a New context)
	arg0  uintptr // first argument register, carries the *context on entry
	fp    uintptr // frame pointer (X29)
	lr    uintptr // link register (X30) -- return address
	x19   uintptr
	x20   uintptr
	x21   uintptr
	x22   uintptr
	x23   uintptr
	x24   uintptr
	x25   uintptr
	x26   uintptr
	// x27 and x28 are part of the AAPCS64 callee-saved bank but are
	// reserved by the Go runtime itself (R28 holds the current g, R18 is
	// the platform register); archSwitch never touches them, so these
	// fields always read zero. Kept only for layout parity with the rest
	// of the callee-saved bank, not as load-bearing state.
	x27 uintptr
	x28 uintptr
	d8  uint64
	d9    uint64
	d10   uint64
	d11   uint64
	d12   uint64
	d13   uint64
	d14   uint64
	d15   uint64
}

// newRegisters builds the register bank for a brand-new context: sp points
// at the top of its stack, entry is the trampoline to run on first switch,
// and arg0 carries the *context pointer the trampoline expects as its sole
// argument (mirroring threadStartEntry's signature).
func newRegisters(stackTop uintptr, entry uintptr, arg0 uintptr) registers {
	return registers{
		sp:    stackTop,
		entry: entry,
		arg0:  arg0,
	}
}
