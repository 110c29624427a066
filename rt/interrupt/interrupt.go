// Package interrupt provides interrupt masking and the critical section token
// that proves interrupts are masked.
//
// A CriticalSection value can only be obtained from Free, With, or the
// trampolines the binding generator emits for entry points and interrupt
// handlers. It has no runtime representation. It must not be stored in a
// package-level variable, returned from a function, or outlive the call that
// produced it; the msprt generator rejects programs that do.
package interrupt

// CriticalSection is a zero-size token: holding one means interrupts are
// masked for as long as the token is in scope.
type CriticalSection struct {
	_ [0]func()
}

// State is the saved interrupt enable state returned by Disable.
type State uint16

// GIE is the general interrupt enable bit of the status register.
const GIE State = 1 << 3

// Enabled reports whether the state had interrupts enabled.
func (s State) Enabled() bool {
	return s&GIE != 0
}

// Enable unmasks interrupts.
func Enable() {
	enable()
}

// Disable masks interrupts and returns the previous state.
func Disable() State {
	return disable()
}

// Restore sets the interrupt enable state back to s.
func Restore(s State) {
	restore(s)
}

// Enabled reports whether interrupts are currently unmasked.
func Enabled() bool {
	return enabled()
}

// Free runs fn with interrupts masked and restores the previous interrupt
// state before returning.
func Free(fn func(cs CriticalSection)) {
	state := disable()
	fn(CriticalSection{})
	restore(state)
}

// With is Free for bodies that produce a value.
func With[T any](fn func(cs CriticalSection) T) T {
	state := disable()
	result := fn(CriticalSection{})
	restore(state)
	return result
}
