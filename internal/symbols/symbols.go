// Package symbols holds the external symbol and section names that the
// generated assembly, the linker script, the generated Go wrappers and the
// target runtime must agree on.
package symbols

// Role symbols.
const (
	Reset          = "Reset"
	Entry          = "main"
	PreInit        = "__pre_init"
	DefaultHandler = "DefaultHandler"
)

// Fallback implementations provided by the generated assembly. The linker
// script PROVIDEs the role symbols above with these when the program does not
// define them.
const (
	DefaultHandlerImpl = "DefaultHandler_"
	DefaultPreInit     = "DefaultPreInit"
)

// Start is the Go-level continuation of the reset trampoline.
const Start = "__msprt_start"

// Vector table.
const (
	ResetVector     = "__RESET_VECTOR"
	Interrupts      = "__INTERRUPTS"
	InterruptsStart = "__sinterrupts"
	InterruptsEnd   = "__einterrupts"
)

// Memory boundary symbols defined by the linker script.
const (
	StackStart = "_stack_start"
	BSSStart   = "_sbss"
	BSSEnd     = "_ebss"
	DataStart  = "_sdata"
	DataEnd    = "_edata"
	DataLoad   = "_sidata"
	HeapStart  = "_sheap"
)

// Sections.
const (
	SectionVectorTable = ".vector_table"
	SectionInterrupts  = ".vector_table.interrupts"
	SectionResetVector = ".vector_table.reset_vector"
	SectionReset       = ".Reset"
	SectionLog         = ".msprt_log"
)

// Memory region names used in memory.x.
const (
	RegionVectors = "VECTORS"
	RegionROM     = "ROM"
	RegionRAM     = "RAM"
)
