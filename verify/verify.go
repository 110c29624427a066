// Package verify checks a linked image against the memory layout. The checks
// mirror the ASSERTs of the generated linker script so that a linker ignoring
// them is still caught before the image is flashed.
package verify

import (
	"debug/elf"
	"errors"
	"fmt"
	"strings"

	"omibyte.io/msprt/internal/symbols"
	"omibyte.io/msprt/layout"
)

type Section struct {
	Name string
	Addr uint64
	Size uint64

	// Alloc reports whether the section occupies target memory.
	Alloc bool

	// NoBits is set for sections without file contents, like .bss.
	NoBits bool
}

func (s Section) End() uint64 {
	return s.Addr + s.Size
}

// Image is the part of a linked ELF file the checks look at.
type Image struct {
	Sections []Section
	Symbols  map[string]uint64
}

func (img *Image) Section(name string) (Section, bool) {
	for _, s := range img.Sections {
		if s.Name == name {
			return s, true
		}
	}
	return Section{}, false
}

// Open reads the sections and symbols of an ELF file.
func Open(fname string) (*Image, error) {
	f, err := elf.Open(fname)
	if err != nil {
		return nil, errors.Join(ErrNotELF, err)
	}
	defer f.Close()
	return FromELF(f)
}

func FromELF(f *elf.File) (*Image, error) {
	img := &Image{Symbols: map[string]uint64{}}
	for _, s := range f.Sections {
		if len(s.Name) == 0 {
			continue
		}
		img.Sections = append(img.Sections, Section{
			Name:   s.Name,
			Addr:   s.Addr,
			Size:   s.Size,
			Alloc:  s.Flags&elf.SHF_ALLOC != 0,
			NoBits: s.Type == elf.SHT_NOBITS,
		})
	}

	syms, err := f.Symbols()
	if err != nil && !errors.Is(err, elf.ErrNoSymbols) {
		return nil, err
	}
	for _, sym := range syms {
		if len(sym.Name) > 0 {
			img.Symbols[sym.Name] = sym.Value
		}
	}
	return img, nil
}

func isRelocation(name string) bool {
	for _, prefix := range []string{".got", ".rel", ".rela"} {
		if name == prefix || strings.HasPrefix(name, prefix+".") {
			return true
		}
	}
	return false
}

// Check verifies the image against the layout. All violations are reported.
func Check(img *Image, l layout.Layout) (err error) {
	vt, ok := img.Section(symbols.SectionVectorTable)
	if !ok {
		err = errors.Join(err, ErrNoVectorTable)
	} else if vt.End() != uint64(l.VectorEnd) {
		err = errors.Join(err, fmt.Errorf("%w: %s ends at 0x%04X, required 0x%04X",
			ErrVectorEnd, vt.Name, vt.End(), uint32(l.VectorEnd)))
	}

	if _, ok := img.Symbols[symbols.Interrupts]; !ok {
		err = errors.Join(err, fmt.Errorf("%w: %s is missing", ErrNoInterrupts, symbols.Interrupts))
	}

	regions := []layout.Region{l.Regions.Vectors, l.Regions.ROM, l.Regions.RAM}
	for _, s := range img.Sections {
		if isRelocation(s.Name) && s.Size > 0 {
			err = errors.Join(err, fmt.Errorf("%w: %s has %d bytes", ErrRelocations, s.Name, s.Size))
		}

		if s.Name == symbols.SectionLog || strings.HasPrefix(s.Name, symbols.SectionLog+".") {
			if s.Alloc {
				err = errors.Join(err, fmt.Errorf("%w: %s", ErrLogAllocated, s.Name))
			}
			continue
		}

		if !s.Alloc || s.Size == 0 {
			continue
		}

		inside := false
		for _, r := range regions {
			if s.Addr >= uint64(r.Origin) && s.End() <= r.End() {
				inside = true
				break
			}
		}
		if !inside {
			err = errors.Join(err, fmt.Errorf("%w: %s [0x%04X, 0x%04X)", ErrOutsideRegions, s.Name, s.Addr, s.End()))
		}
	}

	return err
}
