package layout

import "errors"

var (
	ErrBadAddress         = errors.New("invalid address")
	ErrMissingRegion      = errors.New("memory region is missing")
	ErrEmptyRegion        = errors.New("memory region has zero length")
	ErrOverlappingRegions = errors.New("memory regions overlap")
	ErrVectorEnd          = errors.New("vector table region does not end at the required address")
	ErrVectorRegionSize   = errors.New("vector table region size does not match the vector count")
	ErrBadVectorCount     = errors.New("invalid vector count")
	ErrBadPointerSize     = errors.New("invalid pointer size")
	ErrSyntax             = errors.New("memory descriptor syntax error")
)
