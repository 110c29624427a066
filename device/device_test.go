package device

import (
	"errors"
	"testing"
)

var g2553Slots = map[string]int{
	"PORT1":       2,
	"PORT2":       3,
	"ADC10":       5,
	"USCIAB0TX":   6,
	"USCIAB0RX":   7,
	"TIMER0_A1":   8,
	"TIMER0_A0":   9,
	"WDT":         10,
	"COMPARATORA": 11,
	"TIMER1_A1":   12,
	"TIMER1_A0":   13,
	"NMI":         14,
}

func TestLoad(t *testing.T) {
	for _, fname := range []string{"testdata/msp430g2553.svd", "testdata/msp430g2553.yaml"} {
		t.Run(fname, func(t *testing.T) {
			dev, err := Load(fname)
			if err != nil {
				t.Fatal(err)
			}

			if dev.Name != "msp430g2553" {
				t.Fatalf("expected device msp430g2553; got %q", dev.Name)
			}

			if len(dev.Interrupts) != len(g2553Slots) {
				t.Fatalf("expected %d interrupts; got %d: %+v", len(g2553Slots), len(dev.Interrupts), dev.Interrupts)
			}

			for name, slot := range g2553Slots {
				irq, ok := dev.Lookup(name)
				if !ok {
					t.Fatalf("interrupt %s not found", name)
				}
				if irq.Slot != slot {
					t.Fatalf("expected %s at slot %d; got %d", name, slot, irq.Slot)
				}
			}

			for i := 1; i < len(dev.Interrupts); i++ {
				if dev.Interrupts[i-1].Slot > dev.Interrupts[i].Slot {
					t.Fatalf("interrupts are not sorted by slot: %+v", dev.Interrupts)
				}
			}

			if dev.MaxSlot() != 14 {
				t.Fatalf("expected max slot 14; got %d", dev.MaxSlot())
			}
		})
	}
}

func TestSVDDescriptionIsNormalized(t *testing.T) {
	dev, err := Load("testdata/msp430g2553.svd")
	if err != nil {
		t.Fatal(err)
	}

	irq, _ := dev.Lookup("PORT1")
	if exp := "Port 1 interrupt"; irq.Description != exp {
		t.Fatalf("expected description %q; got %q", exp, irq.Description)
	}
}

func TestLoadUnsupported(t *testing.T) {
	if _, err := Load("testdata/msp430g2553.yaml.txt"); err == nil {
		t.Fatal("expected an error for a missing file")
	}

	if _, err := ParseSVD([]byte("<device><name>x</name>")); !errors.Is(err, ErrSyntax) {
		t.Fatalf("expected ErrSyntax; got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		dev  Device
		err  error
	}{
		{"valid", Device{Interrupts: []Interrupt{{Name: "A", Slot: 0}, {Name: "B", Slot: 1}}}, nil},
		{"bad name", Device{Interrupts: []Interrupt{{Name: "TIMER-A", Slot: 0}}}, ErrBadName},
		{"reserved name", Device{Interrupts: []Interrupt{{Name: "DefaultHandler", Slot: 0}}}, ErrBadName},
		{"entry symbol", Device{Interrupts: []Interrupt{{Name: "main", Slot: 3}}}, ErrBadName},
		{"negative slot", Device{Interrupts: []Interrupt{{Name: "A", Slot: -1}}}, ErrBadSlot},
		{"duplicate name", Device{Interrupts: []Interrupt{{Name: "A", Slot: 0}, {Name: "A", Slot: 1}}}, ErrDuplicateName},
		{"duplicate slot", Device{Interrupts: []Interrupt{{Name: "A", Slot: 0}, {Name: "B", Slot: 0}}}, ErrDuplicateSlot},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.dev.Validate()
			if tc.err == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.err) {
				t.Fatalf("expected %v; got %v", tc.err, err)
			}
		})
	}
}

func TestNames(t *testing.T) {
	dev := Device{Interrupts: []Interrupt{{Name: "WDT", Slot: 10}, {Name: "ADC10", Slot: 5}}}
	names := dev.Names()
	if len(names) != 2 || names[0] != "ADC10" || names[1] != "WDT" {
		t.Fatalf("unexpected names %v", names)
	}

	var empty Device
	if empty.MaxSlot() != -1 {
		t.Fatalf("expected -1 for an empty device; got %d", empty.MaxSlot())
	}
}
