// Package layout describes the memory map of a target: where the vector table,
// the program image and the volatile data live.
package layout

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"omibyte.io/msprt/internal/symbols"
)

type Region struct {
	Name   string  `yaml:"-"`
	Origin Address `yaml:"origin"`
	Length Address `yaml:"length"`
}

// End returns the first address past the region.
func (r Region) End() uint64 {
	return uint64(r.Origin) + uint64(r.Length)
}

func (r Region) IsZero() bool {
	return r.Origin == 0 && r.Length == 0
}

func (r Region) Overlaps(o Region) bool {
	return uint64(r.Origin) < o.End() && uint64(o.Origin) < r.End()
}

func (r Region) String() string {
	return fmt.Sprintf("%s [%s, 0x%04X)", r.Name, r.Origin, r.End())
}

type Regions struct {
	Vectors Region `yaml:"vectors"`
	ROM     Region `yaml:"rom"`
	RAM     Region `yaml:"ram"`
}

type Layout struct {
	Regions Regions `yaml:"regions"`

	// VectorEnd is the architecture mandated first address past the vector
	// table. The vector region must end exactly here.
	VectorEnd Address `yaml:"vectorEnd"`

	// VectorCount is the total number of vector slots, including the reset
	// vector in the last slot.
	VectorCount int `yaml:"vectorCount"`

	// PointerSize is the width of one vector slot in bytes.
	PointerSize int `yaml:"pointerSize"`
}

// Load reads a memory descriptor. Files with a ".x" or ".ld" extension are
// parsed as a linker MEMORY block, everything else as YAML.
func Load(fname string) (*Layout, error) {
	buf, err := os.ReadFile(fname)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(fname)) {
	case ".x", ".ld":
		return ParseMemoryX(string(buf))
	default:
		return Parse(buf)
	}
}

func Parse(buf []byte) (*Layout, error) {
	var l Layout
	if err := yaml.Unmarshal(buf, &l); err != nil {
		return nil, errors.Join(ErrSyntax, err)
	}
	l.setNames()
	return &l, nil
}

func (l *Layout) setNames() {
	l.Regions.Vectors.Name = symbols.RegionVectors
	l.Regions.ROM.Name = symbols.RegionROM
	l.Regions.RAM.Name = symbols.RegionRAM
}

// Merge fills every unset field of l from defaults.
func (l *Layout) Merge(defaults Layout) {
	if l.Regions.Vectors.IsZero() {
		l.Regions.Vectors = defaults.Regions.Vectors
	}
	if l.Regions.ROM.IsZero() {
		l.Regions.ROM = defaults.Regions.ROM
	}
	if l.Regions.RAM.IsZero() {
		l.Regions.RAM = defaults.Regions.RAM
	}
	if l.VectorEnd == 0 {
		l.VectorEnd = defaults.VectorEnd
	}
	if l.PointerSize == 0 {
		l.PointerSize = defaults.PointerSize
	}
	if l.VectorCount == 0 {
		l.VectorCount = defaults.VectorCount
	}
	if l.VectorCount == 0 && l.PointerSize > 0 {
		l.VectorCount = int(l.Regions.Vectors.Length) / l.PointerSize
	}
	l.setNames()
}

// StackTop is the initial stack pointer: the end of the volatile data region.
func (l *Layout) StackTop() uint64 {
	return l.Regions.RAM.End()
}

// VectorAddress returns the address of the given vector slot.
func (l *Layout) VectorAddress(slot int) uint32 {
	return uint32(l.Regions.Vectors.Origin) + uint32(slot*l.PointerSize)
}

// InterruptCount is the number of slots available to interrupts; the last
// slot holds the reset vector.
func (l *Layout) InterruptCount() int {
	return l.VectorCount - 1
}

func (l *Layout) regions() []Region {
	return []Region{l.Regions.Vectors, l.Regions.ROM, l.Regions.RAM}
}

// Validate checks the layout contract that the linker script also asserts.
// All violations are reported.
func (l *Layout) Validate() (err error) {
	for _, r := range l.regions() {
		if r.IsZero() {
			err = errors.Join(err, fmt.Errorf("%w: %s", ErrMissingRegion, r.Name))
		} else if r.Length == 0 {
			err = errors.Join(err, fmt.Errorf("%w: %s", ErrEmptyRegion, r.Name))
		}
	}
	if err != nil {
		return err
	}

	regions := l.regions()
	for i := 0; i < len(regions); i++ {
		for j := i + 1; j < len(regions); j++ {
			if regions[i].Overlaps(regions[j]) {
				err = errors.Join(err, fmt.Errorf("%w: %s and %s", ErrOverlappingRegions, regions[i], regions[j]))
			}
		}
	}

	if end := l.Regions.Vectors.End(); end != uint64(l.VectorEnd) {
		err = errors.Join(err, fmt.Errorf("%w: ORIGIN(%s) + LENGTH(%s) = 0x%04X, required 0x%04X",
			ErrVectorEnd, symbols.RegionVectors, symbols.RegionVectors, end, uint32(l.VectorEnd)))
	}

	switch l.PointerSize {
	case 2, 4:
	default:
		err = errors.Join(err, fmt.Errorf("%w: %d", ErrBadPointerSize, l.PointerSize))
	}

	if l.VectorCount < 1 {
		err = errors.Join(err, fmt.Errorf("%w: %d", ErrBadVectorCount, l.VectorCount))
	} else if need := uint64(l.VectorCount * l.PointerSize); need != uint64(l.Regions.Vectors.Length) {
		// The reset vector occupies the last slot, so the table has to fill
		// the region exactly.
		err = errors.Join(err, fmt.Errorf("%w: %d vectors need %d bytes, region has %d",
			ErrVectorRegionSize, l.VectorCount, need, uint32(l.Regions.Vectors.Length)))
	}

	return err
}
