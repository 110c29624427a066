//go:build sigo

package startup

import "unsafe"

//sigo:extern _stack_start _stack_start
var _stack_start unsafe.Pointer

//sigo:extern _sbss _sbss
var _sbss unsafe.Pointer

//sigo:extern _ebss _ebss
var _ebss unsafe.Pointer

//sigo:extern _sdata _sdata
var _sdata unsafe.Pointer

//sigo:extern _edata _edata
var _edata unsafe.Pointer

//sigo:extern _sidata _sidata
var _sidata unsafe.Pointer

//sigo:extern _sheap _sheap
var _sheap unsafe.Pointer

//sigo:extern preInit __pre_init
func preInit()

//sigo:extern entry main
func entry()

// target is the memory of the processor the program runs on.
type target struct{}

func (target) Load8(addr uint32) uint8 {
	return *(*uint8)(unsafe.Pointer(uintptr(addr)))
}

func (target) Store8(addr uint32, v uint8) {
	*(*uint8)(unsafe.Pointer(uintptr(addr))) = v
}

func (target) Load16(addr uint32) uint16 {
	return *(*uint16)(unsafe.Pointer(uintptr(addr)))
}

func (target) Store16(addr uint32, v uint16) {
	*(*uint16)(unsafe.Pointer(uintptr(addr))) = v
}

// SetStackPointer is a no-op. The reset trampoline loads the stack pointer
// before jumping to start.
func (target) SetStackPointer(uint32) {}

func (target) Halt() {
	for {
	}
}

func addr(p *unsafe.Pointer) uint32 {
	return uint32(uintptr(unsafe.Pointer(p)))
}

// LinkedImage returns the static storage layout the linker script produced.
func LinkedImage() Image {
	return Image{
		StackTop: addr(&_stack_start),
		BSS:      Span{Start: addr(&_sbss), End: addr(&_ebss)},
		Data:     Span{Start: addr(&_sdata), End: addr(&_edata)},
		DataLoad: addr(&_sidata),
		Heap:     addr(&_sheap),
	}
}

//go:export start __msprt_start
func start() {
	Start(target{}, LinkedImage(), preInit, entry)
}
