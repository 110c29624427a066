// Package startup implements the reset sequence: it brings static storage into
// its initial state and transfers control to the program entry point.
package startup

// Span is the half-open address range [Start, End).
type Span struct {
	Start uint32
	End   uint32
}

func (s Span) Len() uint32 {
	if s.End < s.Start {
		return 0
	}
	return s.End - s.Start
}

func (s Span) Overlaps(other Span) bool {
	if s.Len() == 0 || other.Len() == 0 {
		return false
	}
	return s.Start < other.End && other.Start < s.End
}

// Image describes where the linker placed static storage.
type Image struct {
	// StackTop is the initial stack pointer, the end of RAM.
	StackTop uint32

	// BSS is the zero-initialized storage.
	BSS Span

	// Data is the working copy of the initialized storage in RAM.
	Data Span

	// DataLoad is the address of the load image of Data in ROM.
	DataLoad uint32

	// Heap is the first address past static storage.
	Heap uint32
}

// DataImage returns the span of the load image.
func (img Image) DataImage() Span {
	return Span{Start: img.DataLoad, End: img.DataLoad + img.Data.Len()}
}

// Memory is byte and word addressable memory. Words are little endian.
type Memory interface {
	Load8(addr uint32) uint8
	Store8(addr uint32, v uint8)
	Load16(addr uint32) uint16
	Store16(addr uint32, v uint16)
}

// Machine is the processor the sequence runs on.
type Machine interface {
	Memory

	// SetStackPointer loads the stack pointer register.
	SetStackPointer(addr uint32)

	// Halt traps the processor. It does not return.
	Halt()
}

// Reset runs the complete reset sequence: it sets the stack pointer and then
// continues with Start. It never returns.
func Reset(m Machine, img Image, preInit func(), entry func()) {
	m.SetStackPointer(img.StackTop)
	Start(m, img, preInit, entry)
}

// Start runs the reset sequence after the stack pointer has been set: the
// pre-init hook, zeroing of BSS, copying of Data from its load image, and
// finally the entry point. The entry point must not return. If it does, the
// machine is halted.
func Start(m Machine, img Image, preInit func(), entry func()) {
	if preInit != nil {
		preInit()
	}

	// Zero init globals
	Zero(m, img.BSS)

	// Initialize data from flash
	Copy(m, img.Data, img.DataLoad)

	entry()

	m.Halt()
}

// Zero fills the span with zeroes. Whole words are written when both ends are
// word aligned.
func Zero(m Memory, span Span) {
	if span.Start%2 == 0 && span.End%2 == 0 {
		for addr := span.Start; addr < span.End; addr += 2 {
			m.Store16(addr, 0)
		}
		return
	}

	for addr := span.Start; addr < span.End; addr++ {
		m.Store8(addr, 0)
	}
}

// Copy copies len(dst) bytes starting at src into dst. Whole words are copied
// when the destination, the source and the length are all word aligned.
func Copy(m Memory, dst Span, src uint32) {
	if dst.Start%2 == 0 && dst.End%2 == 0 && src%2 == 0 {
		for addr := dst.Start; addr < dst.End; addr, src = addr+2, src+2 {
			m.Store16(addr, m.Load16(src))
		}
		return
	}

	for addr := dst.Start; addr < dst.End; addr, src = addr+1, src+1 {
		m.Store8(addr, m.Load8(src))
	}
}
