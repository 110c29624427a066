package verify

import "errors"

var (
	ErrNotELF         = errors.New("not an ELF file")
	ErrNoVectorTable  = errors.New("image has no vector table section")
	ErrVectorEnd      = errors.New("vector table does not end at the architecture vector end")
	ErrNoInterrupts   = errors.New("image does not define the interrupt vectors")
	ErrRelocations    = errors.New("image contains dynamic relocations")
	ErrLogAllocated   = errors.New("log metadata section is loaded into target memory")
	ErrOutsideRegions = errors.New("allocated section lies outside the memory layout")
)
