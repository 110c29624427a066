package codegen

import (
	"fmt"
	"io"
	"strings"

	"omibyte.io/msprt/device"
	"omibyte.io/msprt/internal/symbols"
	"omibyte.io/msprt/layout"
)

// assertion fails the link with msg unless cond holds.
type assertion struct {
	cond string
	msg  string
}

type LinkOptions struct {
	Layout layout.Layout

	// Device is used to check that the vector table covers every interrupt.
	// It may be nil.
	Device *device.Device

	// Log keeps the diagnostic log metadata section in the output. It is
	// never loaded.
	Log bool
}

// LinkerScript writes link.x. It includes memory.x and device.x.
func LinkerScript(w io.Writer, opts LinkOptions) error {
	var b strings.Builder
	l := opts.Layout
	ptr := l.PointerSize

	fmt.Fprintf(&b, "/* %s */\n\n", Header)
	fmt.Fprintf(&b, "INCLUDE %s\n", MemoryFile)
	fmt.Fprintf(&b, "INCLUDE %s\n\n", DeviceFile)

	fmt.Fprintf(&b, "ENTRY(%s);\n\n", symbols.Reset)

	// Keep the vector table even though nothing references it.
	fmt.Fprintf(&b, "EXTERN(%s);\n", symbols.ResetVector)
	fmt.Fprintf(&b, "EXTERN(%s);\n\n", symbols.Interrupts)

	fmt.Fprintf(&b, "PROVIDE(%s = %s);\n", symbols.DefaultHandler, symbols.DefaultHandlerImpl)
	fmt.Fprintf(&b, "PROVIDE(%s = %s);\n", symbols.PreInit, symbols.DefaultPreInit)
	fmt.Fprintf(&b, "PROVIDE(%s = ORIGIN(%s) + LENGTH(%s));\n\n", symbols.StackStart, symbols.RegionRAM, symbols.RegionRAM)

	fmt.Fprintln(&b, "SECTIONS")
	fmt.Fprintln(&b, "{")

	fmt.Fprintf(&b, "  %s ORIGIN(%s) :\n  {\n", symbols.SectionVectorTable, symbols.RegionVectors)
	fmt.Fprintf(&b, "    %s = .;\n", symbols.InterruptsStart)
	fmt.Fprintf(&b, "    KEEP(*(%s));\n", symbols.SectionInterrupts)
	fmt.Fprintf(&b, "    %s = .;\n", symbols.InterruptsEnd)
	fmt.Fprintf(&b, "    KEEP(*(%s));\n", symbols.SectionResetVector)
	fmt.Fprintf(&b, "  } > %s\n\n", symbols.RegionVectors)

	fmt.Fprintf(&b, "  .text ORIGIN(%s) :\n  {\n", symbols.RegionROM)
	fmt.Fprintf(&b, "    KEEP(*(%s));\n", symbols.SectionReset)
	fmt.Fprintln(&b, "    *(.text .text.*);")
	fmt.Fprintf(&b, "  } > %s\n\n", symbols.RegionROM)

	fmt.Fprintln(&b, "  .rodata : ALIGN(2)\n  {")
	fmt.Fprintln(&b, "    *(.rodata .rodata.*);")
	fmt.Fprintln(&b, "    . = ALIGN(2);")
	fmt.Fprintf(&b, "  } > %s\n\n", symbols.RegionROM)

	fmt.Fprintln(&b, "  .bss (NOLOAD) : ALIGN(2)\n  {")
	fmt.Fprintf(&b, "    %s = .;\n", symbols.BSSStart)
	fmt.Fprintln(&b, "    *(.bss .bss.* COMMON);")
	fmt.Fprintln(&b, "    . = ALIGN(2);")
	fmt.Fprintf(&b, "    %s = .;\n", symbols.BSSEnd)
	fmt.Fprintf(&b, "  } > %s\n\n", symbols.RegionRAM)

	fmt.Fprintln(&b, "  .data : ALIGN(2)\n  {")
	fmt.Fprintf(&b, "    %s = .;\n", symbols.DataStart)
	fmt.Fprintln(&b, "    *(.data .data.*);")
	fmt.Fprintln(&b, "    . = ALIGN(2);")
	fmt.Fprintf(&b, "    %s = .;\n", symbols.DataEnd)
	fmt.Fprintf(&b, "  } > %s AT > %s\n\n", symbols.RegionRAM, symbols.RegionROM)
	fmt.Fprintf(&b, "  %s = LOADADDR(.data);\n\n", symbols.DataLoad)

	fmt.Fprintf(&b, "  %s = .;\n\n", symbols.HeapStart)

	// Relocations cannot be applied, there is no loader. These sections only
	// exist to detect relocatable input.
	for _, section := range []string{".got", ".rel", ".rela"} {
		fmt.Fprintf(&b, "  %s (NOLOAD) :\n  {\n    KEEP(*(%s %s.*));\n  }\n\n", section, section, section)
	}

	if opts.Log {
		fmt.Fprintf(&b, "  %s (INFO) :\n  {\n    *(%s %s.*);\n  }\n", symbols.SectionLog, symbols.SectionLog, symbols.SectionLog)
	}

	fmt.Fprintln(&b, "}")
	fmt.Fprintln(&b)

	asserts := []assertion{
		{
			cond: fmt.Sprintf("%s > %s", symbols.InterruptsEnd, symbols.InterruptsStart),
			msg: fmt.Sprintf("%s is empty; no interrupt vectors were emitted. Was a device description given to msprt generate?",
				symbols.Interrupts),
		},
		{
			cond: fmt.Sprintf("ORIGIN(%s) + LENGTH(%s) == 0x%X", symbols.RegionVectors, symbols.RegionVectors, uint32(l.VectorEnd)),
			msg: fmt.Sprintf("the %s region must end at 0x%X; fix ORIGIN and LENGTH of %s in %s",
				symbols.RegionVectors, uint32(l.VectorEnd), symbols.RegionVectors, MemoryFile),
		},
		{
			cond: fmt.Sprintf("%s == ORIGIN(%s) + LENGTH(%s) - %d", symbols.InterruptsEnd, symbols.RegionVectors, symbols.RegionVectors, ptr),
			msg:  fmt.Sprintf("%s must fill the %s region up to the reset vector", symbols.Interrupts, symbols.RegionVectors),
		},
	}

	if opts.Device != nil && opts.Device.MaxSlot() >= 0 {
		need := (opts.Device.MaxSlot() + 1) * ptr
		asserts = append(asserts, assertion{
			cond: fmt.Sprintf("%s - %s >= %d", symbols.InterruptsEnd, symbols.InterruptsStart, need),
			msg: fmt.Sprintf("%s is shorter than the %d interrupt slots of device %s",
				symbols.Interrupts, opts.Device.MaxSlot()+1, opts.Device.Name),
		})
	}

	for _, section := range []string{".got", ".rel", ".rela"} {
		asserts = append(asserts, assertion{
			cond: fmt.Sprintf("SIZEOF(%s) == 0", section),
			msg:  fmt.Sprintf("%s section detected in the input files; dynamic relocations are not supported. Build without -fPIC", section),
		})
	}

	for _, a := range asserts {
		fmt.Fprintf(&b, "ASSERT(%s, \"ERROR(msprt): %s\");\n", a.cond, a.msg)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// MemoryX writes the MEMORY command of the layout.
func MemoryX(w io.Writer, l layout.Layout) error {
	var b strings.Builder

	fmt.Fprintf(&b, "/* %s */\n\n", Header)
	fmt.Fprintln(&b, "MEMORY")
	fmt.Fprintln(&b, "{")
	for _, r := range []layout.Region{l.Regions.Vectors, l.Regions.ROM, l.Regions.RAM} {
		fmt.Fprintf(&b, "  %-7s : ORIGIN = %s, LENGTH = %s\n", r.Name, r.Origin, r.Length)
	}
	fmt.Fprintln(&b, "}")

	_, err := io.WriteString(w, b.String())
	return err
}

// DeviceX resolves every interrupt of the device to the default handler
// unless the program defines it.
func DeviceX(w io.Writer, dev *device.Device) error {
	var b strings.Builder

	fmt.Fprintf(&b, "/* %s */\n\n", Header)
	if dev != nil {
		for _, irq := range dev.Interrupts {
			fmt.Fprintf(&b, "PROVIDE(%s = %s);\n", irq.Name, symbols.DefaultHandler)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
