package targets

import (
	"errors"
	"testing"
)

func TestTargetsValidate(t *testing.T) {
	if len(All()) == 0 {
		t.Fatal("no targets loaded")
	}

	for _, target := range All() {
		for _, chip := range target.Chips {
			t.Run(chip, func(t *testing.T) {
				l := target.MemoryLayout()
				if err := l.Validate(); err != nil {
					t.Fatalf("default layout of %s is invalid: %v", chip, err)
				}
			})
		}
	}
}

func TestFindByChip(t *testing.T) {
	target, err := All().FindByChip("MSP430G2553")
	if err != nil {
		t.Fatal(err)
	}

	if target.Series != "msp430g2xx3" {
		t.Fatalf("expected series msp430g2xx3; got %s", target.Series)
	}

	l := target.MemoryLayout()
	if l.Regions.Vectors.Origin != 0xFFE0 || l.VectorCount != 16 || l.Regions.RAM.Name != "RAM" {
		t.Fatalf("unexpected layout %+v", l)
	}

	if _, err := All().FindByChip("atsamd21g18a"); !errors.Is(err, ErrChipNotFound) {
		t.Fatalf("expected ErrChipNotFound; got %v", err)
	}
}

func TestLinkerFlags(t *testing.T) {
	target, err := All().FindByChip("msp430fr2355")
	if err != nil {
		t.Fatal(err)
	}

	flags := target.LinkerFlags("MSP430FR2355")
	want := []string{"-nostartfiles", "-mmcu=msp430fr2355", "-mlarge"}
	if len(flags) != len(want) {
		t.Fatalf("expected %v; got %v", want, flags)
	}
	for i := range want {
		if flags[i] != want[i] {
			t.Fatalf("expected %v; got %v", want, flags)
		}
	}
}
