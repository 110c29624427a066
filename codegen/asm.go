package codegen

import (
	"fmt"
	"io"
	"strings"

	"omibyte.io/msprt/internal/symbols"
	"omibyte.io/msprt/vector"
)

type AsmOptions struct {
	// Large selects the MSP430X large memory model.
	Large bool

	// PointerSize is the width of a vector slot in bytes.
	PointerSize int
}

func (o AsmOptions) branch() string {
	if o.Large {
		return "bra"
	}
	return "br"
}

func (o AsmOptions) ret() string {
	if o.Large {
		return "reta"
	}
	return "ret"
}

func (o AsmOptions) directive() string {
	if o.PointerSize == 4 {
		return ".long"
	}
	return ".word"
}

// function writes the prologue of a global function in its own section.
func function(w io.Writer, section, name string) {
	fmt.Fprintf(w, "\t.section %s,\"ax\",@progbits\n", section)
	fmt.Fprintf(w, "\t.global %s\n", name)
	fmt.Fprintf(w, "\t.type %s, @function\n", name)
	fmt.Fprintf(w, "%s:\n", name)
}

func endFunction(w io.Writer, name string) {
	fmt.Fprintf(w, "\t.size %s, .-%s\n\n", name, name)
}

// Vectors writes the vector table, the reset trampoline, the fallback
// implementations of the default handler and the pre-init hook, and the
// interrupt enable primitives of the runtime.
func Vectors(w io.Writer, table *vector.Table, opts AsmOptions) error {
	var b strings.Builder

	fmt.Fprintf(&b, "; %s\n\n", Header)

	// The stack pointer must be valid before any Go code runs.
	function(&b, symbols.SectionReset, symbols.Reset)
	fmt.Fprintf(&b, "\tmov #%s, r1\n", symbols.StackStart)
	fmt.Fprintf(&b, "\t%s #%s\n", opts.branch(), symbols.Start)
	endFunction(&b, symbols.Reset)

	// Unbound interrupts trap here.
	function(&b, ".text."+symbols.DefaultHandlerImpl, symbols.DefaultHandlerImpl)
	fmt.Fprintf(&b, "\tjmp %s\n", symbols.DefaultHandlerImpl)
	endFunction(&b, symbols.DefaultHandlerImpl)

	function(&b, ".text."+symbols.DefaultPreInit, symbols.DefaultPreInit)
	fmt.Fprintf(&b, "\t%s\n", opts.ret())
	endFunction(&b, symbols.DefaultPreInit)

	// Interrupt enable primitives. The state is the GIE bit of SR, returned
	// in r12.
	function(&b, ".text._enable_irq", "_enable_irq")
	fmt.Fprintf(&b, "\tnop\n\teint\n\tnop\n\t%s\n", opts.ret())
	endFunction(&b, "_enable_irq")

	function(&b, ".text._disable_irq", "_disable_irq")
	fmt.Fprintf(&b, "\tmov r2, r12\n\tand #8, r12\n\tdint\n\tnop\n\t%s\n", opts.ret())
	endFunction(&b, "_disable_irq")

	function(&b, ".text._irq_state", "_irq_state")
	fmt.Fprintf(&b, "\tmov r2, r12\n\tand #8, r12\n\t%s\n", opts.ret())
	endFunction(&b, "_irq_state")

	// The interrupt vectors, one per slot
	fmt.Fprintf(&b, "\t.section %s,\"a\",@progbits\n", symbols.SectionInterrupts)
	fmt.Fprintf(&b, "\t.global %s\n", symbols.Interrupts)
	fmt.Fprintf(&b, "%s:\n", symbols.Interrupts)
	for _, slot := range table.Interrupts() {
		fmt.Fprintf(&b, "\t%s %s ; %d\n", opts.directive(), slot.Ref(), slot.Index)
	}
	fmt.Fprintln(&b)

	reset := table.Reset()
	fmt.Fprintf(&b, "\t.section %s,\"a\",@progbits\n", symbols.SectionResetVector)
	fmt.Fprintf(&b, "\t.global %s\n", symbols.ResetVector)
	fmt.Fprintf(&b, "%s:\n", symbols.ResetVector)
	fmt.Fprintf(&b, "\t%s %s ; %d\n", opts.directive(), reset.Symbol, reset.Index)

	_, err := io.WriteString(w, b.String())
	return err
}
