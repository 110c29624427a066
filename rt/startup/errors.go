package startup

import "errors"

var (
	ErrBadSpan     = errors.New("span ends before it starts")
	ErrOverlap     = errors.New("bss and data overlap")
	ErrLoadOverlap = errors.New("data load image overlaps static storage")
	ErrHeapStart   = errors.New("heap starts inside static storage")
	ErrStackTop    = errors.New("stack top is below static storage")
)
