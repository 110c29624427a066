package vector

import (
	"encoding/binary"
	"errors"
	"testing"

	"omibyte.io/msprt/device"
	"omibyte.io/msprt/internal/symbols"
)

var testDevice = &device.Device{
	Name: "test",
	Interrupts: []device.Interrupt{
		{Name: "PORT1", Slot: 2},
		{Name: "TIMER0_A0", Slot: 9},
		{Name: "WDT", Slot: 10},
		{Name: "NMI", Slot: 14},
	},
}

func TestBuild(t *testing.T) {
	table, err := Build(testDevice, []string{"WDT", symbols.DefaultHandler}, 16)
	if err != nil {
		t.Fatal(err)
	}

	if len(table.Slots) != 16 || len(table.Interrupts()) != 15 {
		t.Fatalf("unexpected table size %d", len(table.Slots))
	}

	if reset := table.Reset(); reset.Symbol != symbols.Reset || reset.Index != 15 {
		t.Fatalf("unexpected reset slot %+v", reset)
	}

	for _, slot := range table.Interrupts() {
		switch slot.Index {
		case 10:
			if slot.Symbol != "WDT" || !slot.Bound {
				t.Fatalf("expected WDT to be bound; got %+v", slot)
			}
		default:
			if slot.Symbol != symbols.DefaultHandler || slot.Bound {
				t.Fatalf("expected slot %d to fall back to the default handler; got %+v", slot.Index, slot)
			}
		}
	}

	if slot, ok := table.Lookup("PORT1"); !ok || slot.Index != 2 || slot.Ref() != "PORT1" {
		t.Fatalf("unexpected PORT1 slot %+v", slot)
	}

	if slot := table.Slots[0]; slot.Ref() != symbols.DefaultHandler {
		t.Fatalf("expected a gap to reference the default handler; got %s", slot.Ref())
	}

	syms := table.Symbols()
	if len(syms) != 3 || syms[0] != symbols.DefaultHandler || syms[1] != "WDT" || syms[2] != symbols.Reset {
		t.Fatalf("unexpected symbols %v", syms)
	}
}

func TestBuildWithoutDevice(t *testing.T) {
	table, err := Build(nil, nil, 16)
	if err != nil {
		t.Fatal(err)
	}
	for _, slot := range table.Interrupts() {
		if slot.Symbol != symbols.DefaultHandler {
			t.Fatalf("expected every slot to resolve to the default handler; got %+v", slot)
		}
	}

	if _, err = Build(nil, []string{"WDT"}, 16); !errors.Is(err, ErrUnknownInterrupt) {
		t.Fatalf("expected ErrUnknownInterrupt; got %v", err)
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name  string
		bound []string
		count int
		err   error
	}{
		{"too short", nil, 8, ErrTableTooShort},
		{"nmi in reset slot", nil, 15, ErrTableTooShort},
		{"unknown", []string{"USART0"}, 16, ErrUnknownInterrupt},
		{"no slots", nil, 0, ErrBadCount},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Build(testDevice, tc.bound, tc.count); !errors.Is(err, tc.err) {
				t.Fatalf("expected %v; got %v", tc.err, err)
			}
		})
	}
}

func TestEncode(t *testing.T) {
	table, err := Build(testDevice, []string{"PORT1"}, 16)
	if err != nil {
		t.Fatal(err)
	}

	addrs := map[string]uint32{
		symbols.DefaultHandler: 0xC100,
		"PORT1":                0xC200,
		symbols.Reset:          0xC000,
	}

	buf, err := table.Encode(addrs, 2, binary.LittleEndian)
	if err != nil {
		t.Fatal(err)
	}

	if len(buf) != 32 {
		t.Fatalf("expected 32 bytes; got %d", len(buf))
	}

	for i := 0; i < 16; i++ {
		got := binary.LittleEndian.Uint16(buf[i*2:])
		want := uint16(0xC100)
		switch i {
		case 2:
			want = 0xC200
		case 15:
			want = 0xC000
		}
		if got != want {
			t.Fatalf("slot %d: expected 0x%04X; got 0x%04X", i, want, got)
		}
	}
}

func TestEncodeErrors(t *testing.T) {
	table, err := Build(testDevice, []string{"PORT1"}, 16)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		addrs map[string]uint32
		width int
		err   error
	}{
		{"missing", map[string]uint32{symbols.DefaultHandler: 0xC100, symbols.Reset: 0xC000}, 2, ErrUnresolved},
		{"zero", map[string]uint32{symbols.DefaultHandler: 0xC100, "PORT1": 0, symbols.Reset: 0xC000}, 2, ErrUnresolved},
		{"range", map[string]uint32{symbols.DefaultHandler: 0x1C100, "PORT1": 0xC200, symbols.Reset: 0xC000}, 2, ErrAddressRange},
		{"width", nil, 3, ErrBadWidth},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := table.Encode(tc.addrs, tc.width, binary.LittleEndian); !errors.Is(err, tc.err) {
				t.Fatalf("expected %v; got %v", tc.err, err)
			}
		})
	}
}
