// Package device provides the interrupt enumeration of a target device: the
// mapping from interrupt names to vector table slots.
package device

import (
	"encoding/xml"
	"errors"
	"fmt"
	"go/token"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"

	"omibyte.io/msprt/device/svd"
	"omibyte.io/msprt/internal/symbols"
)

// reserved names are symbols of the runtime roles. An interrupt handler
// symbol of the same name would collide with them at link time.
var reserved = []string{
	symbols.Reset,
	symbols.Entry,
	symbols.PreInit,
	symbols.DefaultHandler,
	symbols.DefaultHandlerImpl,
	symbols.DefaultPreInit,
}

type Interrupt struct {
	Name        string `yaml:"name"`
	Slot        int    `yaml:"slot"`
	Description string `yaml:"description,omitempty"`
}

type Device struct {
	Name       string      `yaml:"name"`
	Interrupts []Interrupt `yaml:"interrupts"`
}

// Load reads a device description. ".svd" files are parsed as CMSIS-SVD,
// ".yaml" and ".yml" files as a plain interrupt list.
func Load(fname string) (*Device, error) {
	buf, err := os.ReadFile(fname)
	if err != nil {
		return nil, err
	}

	var dev *Device
	switch ext := strings.ToLower(filepath.Ext(fname)); ext {
	case ".svd", ".xml":
		dev, err = ParseSVD(buf)
	case ".yaml", ".yml":
		dev, err = Parse(buf)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fname, err)
	}

	if err = dev.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", fname, err)
	}
	return dev, nil
}

func Parse(buf []byte) (*Device, error) {
	var dev Device
	if err := yaml.Unmarshal(buf, &dev); err != nil {
		return nil, errors.Join(ErrSyntax, err)
	}
	dev.sort()
	return &dev, nil
}

func ParseSVD(buf []byte) (*Device, error) {
	var def svd.DeviceElement
	if err := xml.Unmarshal(buf, &def); err != nil {
		return nil, errors.Join(ErrSyntax, err)
	}
	return FromSVD(&def), nil
}

// FromSVD collects the interrupts of every peripheral. An interrupt listed by
// several peripherals appears once.
func FromSVD(def *svd.DeviceElement) *Device {
	dev := Device{Name: def.Name}
	seen := map[Interrupt]bool{}
	for _, irq := range def.Interrupts() {
		interrupt := Interrupt{
			Name:        irq.Name,
			Slot:        int(irq.Value),
			Description: strings.Join(strings.Fields(irq.Description), " "),
		}

		key := Interrupt{Name: interrupt.Name, Slot: interrupt.Slot}
		if seen[key] {
			continue
		}
		seen[key] = true
		dev.Interrupts = append(dev.Interrupts, interrupt)
	}
	dev.sort()
	return &dev
}

func (d *Device) sort() {
	bySlot := map[int][]Interrupt{}
	for _, irq := range d.Interrupts {
		bySlot[irq.Slot] = append(bySlot[irq.Slot], irq)
	}

	slots := maps.Keys(bySlot)
	slices.Sort(slots)

	d.Interrupts = d.Interrupts[:0]
	for _, slot := range slots {
		d.Interrupts = append(d.Interrupts, bySlot[slot]...)
	}
}

// Validate checks that every name is a valid symbol and that names and slots
// are unique.
func (d *Device) Validate() (err error) {
	names := map[string]int{}
	slots := map[int]string{}
	for _, irq := range d.Interrupts {
		if !token.IsIdentifier(irq.Name) {
			err = errors.Join(err, fmt.Errorf("%w: %q", ErrBadName, irq.Name))
		} else if slices.Contains(reserved, irq.Name) {
			err = errors.Join(err, fmt.Errorf("%w: %s is a reserved symbol", ErrBadName, irq.Name))
		}
		if irq.Slot < 0 {
			err = errors.Join(err, fmt.Errorf("%w: %s has slot %d", ErrBadSlot, irq.Name, irq.Slot))
		}
		if slot, ok := names[irq.Name]; ok {
			err = errors.Join(err, fmt.Errorf("%w: %s at slots %d and %d", ErrDuplicateName, irq.Name, slot, irq.Slot))
		}
		if name, ok := slots[irq.Slot]; ok {
			err = errors.Join(err, fmt.Errorf("%w: slot %d is claimed by %s and %s", ErrDuplicateSlot, irq.Slot, name, irq.Name))
		}
		names[irq.Name] = irq.Slot
		slots[irq.Slot] = irq.Name
	}
	return err
}

func (d *Device) Lookup(name string) (Interrupt, bool) {
	for _, irq := range d.Interrupts {
		if irq.Name == name {
			return irq, true
		}
	}
	return Interrupt{}, false
}

// Names returns the interrupt names in sorted order.
func (d *Device) Names() []string {
	names := make([]string, 0, len(d.Interrupts))
	for _, irq := range d.Interrupts {
		names = append(names, irq.Name)
	}
	slices.Sort(names)
	return names
}

// MaxSlot returns the highest slot in use, or -1 for a device without
// interrupts.
func (d *Device) MaxSlot() int {
	highest := -1
	for _, irq := range d.Interrupts {
		if irq.Slot > highest {
			highest = irq.Slot
		}
	}
	return highest
}
