package binding

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"testing"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/tools/go/packages"

	"omibyte.io/msprt/device"
)

// tokenSource stands in for the interrupt runtime package.
const tokenSource = `package interrupt

type CriticalSection struct {
	_ [0]func()
}

func Free(fn func(cs CriticalSection)) {
	fn(CriticalSection{})
}

func Handler(body func()) {
	body()
}

func HandlerCS(body func(cs CriticalSection)) {
	body(CriticalSection{})
}
`

// entrySource is a valid entry point for tests about other roles.
const entrySource = `package app

//msprt:entry
func main() {
	for {
	}
}
`

const appPath = "example.com/app"

var testDevice = &device.Device{
	Name: "msp430g2553",
	Interrupts: []device.Interrupt{
		{Name: "PORT1", Slot: 2},
		{Name: "TIMER0_A0", Slot: 9},
		{Name: "WDT", Slot: 10},
	},
}

type testImporter map[string]*types.Package

func (t testImporter) Import(path string) (*types.Package, error) {
	if pkg, ok := t[path]; ok {
		return pkg, nil
	}
	return nil, fmt.Errorf("package %s is not available in tests", path)
}

func createPackage(t *testing.T, fset *token.FileSet, importer testImporter, path string, sources map[string]string, imports map[string]*packages.Package) *packages.Package {
	t.Helper()

	// Parse in file name order, like the go command.
	names := maps.Keys(sources)
	slices.Sort(names)

	files := make([]*ast.File, 0, len(names))
	for _, name := range names {
		f, err := parser.ParseFile(fset, name, sources[name], parser.ParseComments)
		if err != nil {
			t.Fatalf("Failed to parse %s: %v", name, err)
		}
		files = append(files, f)
	}

	info := &types.Info{
		Types:      map[ast.Expr]types.TypeAndValue{},
		Instances:  map[*ast.Ident]types.Instance{},
		Defs:       map[*ast.Ident]types.Object{},
		Uses:       map[*ast.Ident]types.Object{},
		Implicits:  map[ast.Node]types.Object{},
		Selections: map[*ast.SelectorExpr]*types.Selection{},
		Scopes:     map[ast.Node]*types.Scope{},
		InitOrder:  []*types.Initializer{},
	}

	config := types.Config{Importer: importer}
	checked, err := config.Check(path, fset, files, info)
	if err != nil {
		t.Fatalf("Failed to type check %s: %v", path, err)
	}
	importer[path] = checked

	return &packages.Package{
		Name:      checked.Name(),
		PkgPath:   checked.Path(),
		Imports:   imports,
		Types:     checked,
		Fset:      fset,
		Syntax:    files,
		TypesInfo: info,
		TypesSizes: &types.StdSizes{
			WordSize: 2,
			MaxAlign: 2,
		},
	}
}

// loadProgram type checks an application package made of sources against
// the interrupt runtime stub.
func loadProgram(t *testing.T, sources map[string]string) []*packages.Package {
	t.Helper()

	fset := token.NewFileSet()
	importer := testImporter{}
	rt := createPackage(t, fset, importer, TokenPackage, map[string]string{"interrupt.go": tokenSource}, nil)
	app := createPackage(t, fset, importer, appPath, sources, map[string]*packages.Package{TokenPackage: rt})
	return []*packages.Package{app}
}

// withEntry adds a valid entry point to sources.
func withEntry(sources map[string]string) map[string]string {
	result := map[string]string{"main.go": entrySource}
	for name, src := range sources {
		result[name] = src
	}
	return result
}
