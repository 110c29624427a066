package codegen

import (
	"fmt"
	"go/format"
	"strings"

	"golang.org/x/tools/go/packages"

	"omibyte.io/msprt/binding"
)

// interruptImport is the name generated files import the interrupt runtime
// under.
const interruptImport = "_msprt_interrupt"

// Wrappers returns the source of the generated wrapper file of pkg.
func Wrappers(pkg *packages.Package, bindings []*binding.Binding) ([]byte, error) {
	if len(bindings) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoBindings, pkg.PkgPath)
	}

	var w strings.Builder

	// Write the preamble
	fmt.Fprintf(&w, "// %s\n\n", Header)
	fmt.Fprintf(&w, "package %s\n\n", pkg.Name)

	for _, b := range bindings {
		if b.Role != binding.RolePreInit {
			fmt.Fprintf(&w, "import %s %q\n\n", interruptImport, binding.TokenPackage)
			break
		}
	}

	for _, b := range bindings {
		writeWrapper(&w, b)
	}

	src := w.String()
	buf, err := format.Source([]byte(src))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFormat, binding.GeneratedFile, err)
	}
	return buf, nil
}

func writeWrapper(w *strings.Builder, b *binding.Binding) {
	fn := b.Decl.Name.Name

	fmt.Fprintf(w, "// %s binds %s to %s.\n", b.Wrapper, fn, b.Symbol)
	switch b.Role {
	case binding.RoleInterrupt, binding.RoleDefaultHandler:
		fmt.Fprintf(w, "//\n//sigo:interrupt %s %s\n", b.Wrapper, b.Symbol)
	default:
		fmt.Fprintf(w, "//\n//go:export %s %s\n", b.Wrapper, b.Symbol)
	}

	fmt.Fprintf(w, "func %s() {\n", b.Wrapper)
	switch b.Role {
	case binding.RolePreInit:
		fmt.Fprintf(w, "%s()\n", fn)
	case binding.RoleEntry:
		switch {
		case b.Setup != nil && b.SetupResult != nil:
			fmt.Fprintf(w, "%s.EntryEnableWith(%s, %s)\n", interruptImport, b.Setup.Name(), fn)
		case b.Setup != nil:
			fmt.Fprintf(w, "%s.EntryEnableSetup(%s, %s)\n", interruptImport, b.Setup.Name(), fn)
		case b.EnableInterrupts:
			fmt.Fprintf(w, "%s.EntryEnable(%s)\n", interruptImport, fn)
		case b.TakesToken:
			fmt.Fprintf(w, "%s.EntryCS(%s)\n", interruptImport, fn)
		default:
			fmt.Fprintf(w, "%s.Entry(%s)\n", interruptImport, fn)
		}
	default:
		if b.TakesToken {
			fmt.Fprintf(w, "%s.HandlerCS(%s)\n", interruptImport, fn)
		} else {
			fmt.Fprintf(w, "%s.Handler(%s)\n", interruptImport, fn)
		}
	}
	fmt.Fprintln(w, "}")
	fmt.Fprintln(w)
}
