// Package sim simulates the parts of an MSP430 class microcontroller that the
// reset sequence and interrupt dispatch depend on: flat memory, the stack
// pointer, the general interrupt enable flag and vectored interrupts.
//
// Code is modelled as Go functions placed at addresses. A jump to an address
// without code is a fault.
package sim

import (
	"errors"
	"fmt"

	"omibyte.io/msprt/layout"
	"omibyte.io/msprt/rt/interrupt"
)

var (
	ErrFault    = errors.New("processor fault")
	ErrBadSlot  = errors.New("no such interrupt slot")
	ErrNotFound = errors.New("no code at address")
)

// trap unwinds the simulated program when the processor halts.
type trap struct{}

// fault unwinds the simulated program when the processor faults.
type fault struct {
	err error
}

type MCU struct {
	layout layout.Layout

	mem     []byte
	code    map[uint32]func()
	sp      uint32
	gie     bool
	halted  bool
	pending []int

	// Dispatched lists the slots of every interrupt taken, in order.
	Dispatched []int
}

// New returns a processor with the memory map of l. Memory spans the whole
// address space up to the end of the vector table.
func New(l layout.Layout) *MCU {
	return &MCU{
		layout: l,
		mem:    make([]byte, uint64(l.VectorEnd)),
		code:   map[uint32]func(){},
	}
}

func (m *MCU) Layout() layout.Layout {
	return m.layout
}

func (m *MCU) faultf(format string, args ...any) {
	panic(fault{err: fmt.Errorf("%w: "+format, append([]any{ErrFault}, args...)...)})
}

func (m *MCU) check(addr uint32, n uint32) {
	if uint64(addr)+uint64(n) > uint64(len(m.mem)) {
		m.faultf("access of %d bytes at 0x%X", n, addr)
	}
}

func (m *MCU) Load8(addr uint32) uint8 {
	m.check(addr, 1)
	return m.mem[addr]
}

func (m *MCU) Store8(addr uint32, v uint8) {
	m.check(addr, 1)
	m.mem[addr] = v
}

func (m *MCU) Load16(addr uint32) uint16 {
	m.check(addr, 2)
	if addr%2 != 0 {
		m.faultf("unaligned word load at 0x%X", addr)
	}
	return uint16(m.mem[addr]) | uint16(m.mem[addr+1])<<8
}

func (m *MCU) Store16(addr uint32, v uint16) {
	m.check(addr, 2)
	if addr%2 != 0 {
		m.faultf("unaligned word store at 0x%X", addr)
	}
	m.mem[addr] = byte(v)
	m.mem[addr+1] = byte(v >> 8)
}

// Fill sets every byte of [start, end) to v.
func (m *MCU) Fill(start, end uint32, v byte) {
	for addr := start; addr < end; addr++ {
		m.Store8(addr, v)
	}
}

// Flash writes data at addr.
func (m *MCU) Flash(addr uint32, data []byte) {
	m.check(addr, uint32(len(data)))
	copy(m.mem[addr:], data)
}

// Bytes returns a copy of [start, end).
func (m *MCU) Bytes(start, end uint32) []byte {
	m.check(start, end-start)
	return append([]byte(nil), m.mem[start:end]...)
}

// Place puts fn at the code address addr.
func (m *MCU) Place(addr uint32, fn func()) {
	m.code[addr] = fn
}

func (m *MCU) SetStackPointer(addr uint32) {
	m.sp = addr
}

func (m *MCU) StackPointer() uint32 {
	return m.sp
}

// Halt stops the processor. It does not return.
func (m *MCU) Halt() {
	m.halted = true
	panic(trap{})
}

func (m *MCU) Halted() bool {
	return m.halted
}

func (m *MCU) Enable() {
	m.gie = true
	m.drain()
}

func (m *MCU) Disable() interrupt.State {
	state := m.state()
	m.gie = false
	return state
}

func (m *MCU) Restore(s interrupt.State) {
	if s.Enabled() {
		m.Enable()
		return
	}
	m.gie = false
}

func (m *MCU) Enabled() bool {
	return m.gie
}

func (m *MCU) state() interrupt.State {
	if m.gie {
		return interrupt.GIE
	}
	return 0
}

// Vector returns the handler address stored in the given slot.
func (m *MCU) Vector(slot int) uint32 {
	addr := m.layout.VectorAddress(slot)
	if m.layout.PointerSize == 4 {
		return uint32(m.Load16(addr)) | uint32(m.Load16(addr+2))<<16
	}
	return uint32(m.Load16(addr))
}

// Resolve returns the code at the address stored in the given slot.
func (m *MCU) Resolve(slot int) (func(), error) {
	addr := m.Vector(slot)
	fn, ok := m.code[addr]
	if !ok {
		return nil, fmt.Errorf("%w: slot %d points to 0x%04X", ErrNotFound, slot, addr)
	}
	return fn, nil
}

// Raise requests the interrupt of the given slot. It is taken immediately when
// interrupts are enabled and held pending otherwise.
func (m *MCU) Raise(slot int) error {
	if slot < 0 || slot >= m.layout.InterruptCount() {
		return fmt.Errorf("%w: %d", ErrBadSlot, slot)
	}

	m.pending = append(m.pending, slot)
	m.drain()
	return nil
}

// Pending returns the number of interrupts waiting for interrupts to be
// enabled.
func (m *MCU) Pending() int {
	return len(m.pending)
}

func (m *MCU) drain() {
	for m.gie && len(m.pending) > 0 {
		slot := m.pending[0]
		m.pending = m.pending[1:]
		m.dispatch(slot)
	}
}

// dispatch takes an interrupt the way the hardware does: the return address
// and status register are pushed, interrupts are masked for the handler and
// the status register is restored on return.
func (m *MCU) dispatch(slot int) {
	fn, err := m.Resolve(slot)
	if err != nil {
		panic(fault{err: errors.Join(ErrFault, err)})
	}

	m.Dispatched = append(m.Dispatched, slot)

	sr := m.gie
	m.sp -= 4
	m.gie = false
	fn()
	m.gie = sr
	m.sp += 4
}

// PowerOn resets the processor and runs the program from the reset vector
// until it halts. A halt is a normal end of the run; a fault is returned as an
// error.
func (m *MCU) PowerOn() (err error) {
	m.gie = false
	m.halted = false
	m.pending = nil
	m.Dispatched = nil

	defer func() {
		if r := recover(); r != nil {
			switch r := r.(type) {
			case trap:
			case fault:
				err = r.err
			default:
				panic(r)
			}
		}
	}()

	reset, err := m.Resolve(m.layout.VectorCount - 1)
	if err != nil {
		return errors.Join(ErrFault, err)
	}
	reset()

	// The reset handler must never return.
	return fmt.Errorf("%w: reset handler returned", ErrFault)
}
