// Package codegen emits the build artefacts that bind a program to the
// hardware: the Go wrappers of the bound functions, the vector table and reset
// assembly, and the linker scripts.
package codegen

import "errors"

// Header marks every generated file.
const Header = "Code generated by msprt. DO NOT EDIT."

// File names of the emitted artefacts.
const (
	VectorsFile = "vectors.s"
	LinkFile    = "link.x"
	MemoryFile  = "memory.x"
	DeviceFile  = "device.x"
)

var (
	ErrNoBindings = errors.New("package has no bindings")
	ErrFormat     = errors.New("generated source does not format")
)
