// Package vector models the interrupt vector table: one slot per interrupt
// source followed by the reset vector in the last slot.
package vector

import (
	"encoding/binary"
	"errors"
	"fmt"

	"golang.org/x/exp/slices"

	"omibyte.io/msprt/device"
	"omibyte.io/msprt/internal/symbols"
)

type Slot struct {
	Index int

	// Name is the interrupt the device assigns to this slot. It is empty for
	// gaps in the enumeration and for the reset slot.
	Name string

	// Symbol is the symbol the slot resolves to.
	Symbol string

	// Bound reports whether a user handler claims the slot.
	Bound bool
}

// Ref returns the symbol the assembly references for this slot. Named slots
// reference the interrupt name so the linker can substitute the default
// handler when nothing defines it.
func (s Slot) Ref() string {
	if len(s.Name) > 0 {
		return s.Name
	}
	return s.Symbol
}

type Table struct {
	Slots []Slot
}

// Build creates a table of count slots for the device. Slot count-1 is the
// reset vector. Interrupts named in bound resolve to their own symbol, every
// other slot resolves to the default handler. A nil device yields a table of
// default handlers.
func Build(dev *device.Device, bound []string, count int) (*Table, error) {
	if count < 1 {
		return nil, fmt.Errorf("%w: %d slots", ErrBadCount, count)
	}

	var err error
	table := &Table{Slots: make([]Slot, count)}
	for i := range table.Slots {
		table.Slots[i] = Slot{Index: i, Symbol: symbols.DefaultHandler}
	}
	table.Slots[count-1] = Slot{Index: count - 1, Symbol: symbols.Reset, Bound: true}

	if dev != nil {
		for _, irq := range dev.Interrupts {
			if irq.Slot >= count-1 {
				err = errors.Join(err, fmt.Errorf("%w: %s uses slot %d, the table has %d interrupt slots",
					ErrTableTooShort, irq.Name, irq.Slot, count-1))
				continue
			}
			table.Slots[irq.Slot].Name = irq.Name
		}
	}

	for _, name := range bound {
		if name == symbols.DefaultHandler {
			continue
		}

		var irq device.Interrupt
		var ok bool
		if dev != nil {
			irq, ok = dev.Lookup(name)
		}
		if !ok {
			err = errors.Join(err, fmt.Errorf("%w: %s", ErrUnknownInterrupt, name))
			continue
		}
		if irq.Slot >= count-1 {
			continue
		}

		table.Slots[irq.Slot].Symbol = name
		table.Slots[irq.Slot].Bound = true
	}

	if err != nil {
		return nil, err
	}
	return table, nil
}

// Interrupts returns the interrupt slots, without the reset vector.
func (t *Table) Interrupts() []Slot {
	return t.Slots[:len(t.Slots)-1]
}

// Reset returns the reset slot.
func (t *Table) Reset() Slot {
	return t.Slots[len(t.Slots)-1]
}

// Lookup returns the slot of the named interrupt.
func (t *Table) Lookup(name string) (Slot, bool) {
	i := slices.IndexFunc(t.Slots, func(s Slot) bool { return s.Name == name })
	if i < 0 {
		return Slot{}, false
	}
	return t.Slots[i], true
}

// Symbols returns the distinct symbols the table resolves to, in slot order.
func (t *Table) Symbols() []string {
	var result []string
	for _, slot := range t.Slots {
		if !slices.Contains(result, slot.Symbol) {
			result = append(result, slot.Symbol)
		}
	}
	return result
}

// Encode produces the table as the hardware reads it. Every slot's symbol must
// resolve to a non-zero address that fits in width bytes.
func (t *Table) Encode(addrs map[string]uint32, width int, order binary.ByteOrder) ([]byte, error) {
	if width != 2 && width != 4 {
		return nil, fmt.Errorf("%w: %d", ErrBadWidth, width)
	}

	var err error
	buf := make([]byte, len(t.Slots)*width)
	for _, slot := range t.Slots {
		addr, ok := addrs[slot.Symbol]
		if !ok || addr == 0 {
			err = errors.Join(err, fmt.Errorf("%w: slot %d (%s) has no address for %s", ErrUnresolved, slot.Index, slot.Ref(), slot.Symbol))
			continue
		}

		b := buf[slot.Index*width:]
		if width == 2 {
			if addr > 0xFFFF {
				err = errors.Join(err, fmt.Errorf("%w: %s at 0x%X", ErrAddressRange, slot.Symbol, addr))
				continue
			}
			order.PutUint16(b, uint16(addr))
		} else {
			order.PutUint32(b, addr)
		}
	}

	if err != nil {
		return nil, err
	}
	return buf, nil
}
