// Package binding discovers the functions a program binds to the entry point,
// the pre-init hook, the default handler and device interrupts, and verifies
// that each one is legal for its role.
//
// Functions are bound with directive comments:
//
//	//msprt:entry [interrupt_enable [pre_interrupt=<func>]]
//	//msprt:interrupt [NAME]
//	//msprt:pre_init
//
// The interrupt NAME defaults to the function name. Binding the name
// DefaultHandler replaces the default handler.
package binding

import (
	"go/ast"
	"go/token"
	"go/types"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/tools/go/packages"

	"omibyte.io/msprt/device"
	"omibyte.io/msprt/internal/symbols"
)

// TokenPackage is the import path of the package that declares the
// critical section token.
const TokenPackage = "omibyte.io/msprt/rt/interrupt"

// TokenName is the name of the critical section token type.
const TokenName = "CriticalSection"

// GeneratedFile is the name of the file the wrappers of a package are written
// to. These files are ignored during discovery.
const GeneratedFile = "zz_msprt_bindings.go"

type Binding struct {
	Role Role

	// Name is the interrupt name for interrupt bindings and the role symbol
	// otherwise.
	Name string

	// Symbol is the external symbol the wrapper is exported as.
	Symbol string

	// Wrapper is the identifier of the generated wrapper function.
	Wrapper string

	Func    *types.Func
	Decl    *ast.FuncDecl
	Package *packages.Package
	Pos     token.Position

	// TakesToken reports whether the function takes a CriticalSection.
	TakesToken bool

	// EnableInterrupts is set for entry points that run with interrupts
	// enabled.
	EnableInterrupts bool

	// Setup is the function run with interrupts masked before an entry
	// point that enables interrupts.
	Setup *types.Func

	// SetupResult is the type Setup hands to the entry point, or nil.
	SetupResult types.Type
}

func (b *Binding) Rule() Rule {
	return RuleFor(b.Role)
}

// Set is the validated bindings of a program.
type Set struct {
	Device *device.Device

	Entry          *Binding
	PreInit        *Binding
	DefaultHandler *Binding

	// Interrupts is sorted by interrupt name.
	Interrupts []*Binding
}

// All returns every binding: the entry point, the pre-init hook, the default
// handler, then the interrupts.
func (s *Set) All() []*Binding {
	var result []*Binding
	for _, b := range []*Binding{s.Entry, s.PreInit, s.DefaultHandler} {
		if b != nil {
			result = append(result, b)
		}
	}
	return append(result, s.Interrupts...)
}

// InterruptNames returns the names of the bound interrupts, including the
// default handler when the program defines one.
func (s *Set) InterruptNames() []string {
	var names []string
	for _, b := range s.Interrupts {
		names = append(names, b.Name)
	}
	if s.DefaultHandler != nil {
		names = append(names, symbols.DefaultHandler)
	}
	return names
}

// Packages returns the packages that declare bindings, sorted by import path,
// each with its bindings in the order of All.
func (s *Set) Packages() ([]*packages.Package, map[*packages.Package][]*Binding) {
	byPath := map[string]*packages.Package{}
	byPkg := map[*packages.Package][]*Binding{}
	for _, b := range s.All() {
		byPath[b.Package.PkgPath] = b.Package
		byPkg[b.Package] = append(byPkg[b.Package], b)
	}

	paths := maps.Keys(byPath)
	slices.Sort(paths)

	pkgs := make([]*packages.Package, 0, len(paths))
	for _, path := range paths {
		pkgs = append(pkgs, byPath[path])
	}
	return pkgs, byPkg
}
