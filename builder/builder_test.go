package builder

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/exp/slices"
	"golang.org/x/tools/go/packages"

	"omibyte.io/msprt/binding"
	"omibyte.io/msprt/codegen"
	"omibyte.io/msprt/layout"
)

const appSource = `package main

//msprt:pre_init
func early() {}

//msprt:interrupt PORT1
func port1() {}

//msprt:interrupt DefaultHandler
func trap() {
	for {
	}
}

//msprt:entry
func main() {
	for {
	}
}
`

// createModule writes a module containing a single main package.
func createModule(t *testing.T, source string) string {
	t.Helper()

	if _, err := exec.LookPath("go"); err != nil {
		t.Skip("the go command is required to load packages")
	}

	dir := t.TempDir()
	files := map[string]string{
		"go.mod":  "module example.com/app\n\ngo 1.21\n",
		"main.go": source,
	}
	for name, contents := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(contents), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func testOptions(t *testing.T, dir string) *Options {
	device, err := filepath.Abs("../device/testdata/msp430g2553.yaml")
	if err != nil {
		t.Fatal(err)
	}

	return &Options{
		Dir:         dir,
		Chip:        "msp430g2553",
		Device:      device,
		Output:      filepath.Join(dir, "build"),
		Environment: Env{},
		Logger:      log.New(&bytes.Buffer{}, "", 0),
	}
}

func readFile(t *testing.T, fname string) string {
	t.Helper()
	buf, err := os.ReadFile(fname)
	if err != nil {
		t.Fatal(err)
	}
	return string(buf)
}

func TestGenerate(t *testing.T) {
	dir := createModule(t, appSource)
	options := testOptions(t, dir)

	result, err := Generate(context.Background(), options)
	if err != nil {
		t.Fatal(err)
	}

	if len(result.Files) != 5 {
		t.Fatalf("expected 5 files; got %v", result.Files)
	}

	wrappers := readFile(t, filepath.Join(dir, binding.GeneratedFile))
	for _, want := range []string{
		"package main",
		"\t_msprt_interrupt.Entry(main)\n",
		"\t_msprt_interrupt.Handler(port1)\n",
		"\t_msprt_interrupt.Handler(trap)\n",
		"\tearly()\n",
		" __pre_init\n",
		" PORT1\n",
		" DefaultHandler\n",
	} {
		if !strings.Contains(wrappers, want) {
			t.Fatalf("expected wrappers to contain %q:\n%s", want, wrappers)
		}
	}

	vectors := readFile(t, filepath.Join(options.Output, codegen.VectorsFile))
	if !strings.Contains(vectors, "\t.word PORT1 ; 2\n") || !strings.Contains(vectors, "\t.word Reset ; 15\n") {
		t.Fatalf("unexpected vector table:\n%s", vectors)
	}

	for _, name := range []string{codegen.LinkFile, codegen.MemoryFile, codegen.DeviceFile} {
		if _, err := os.Stat(filepath.Join(options.Output, name)); err != nil {
			t.Fatal(err)
		}
	}

	// The wrappers of the first run refer to a package this module cannot
	// load. A second run must ignore them and reproduce them exactly.
	again, err := Generate(context.Background(), options)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := again.Program.Generated["example.com/app"]; !ok {
		t.Fatal("the existing wrapper file was not detected")
	}
	if readFile(t, filepath.Join(dir, binding.GeneratedFile)) != wrappers {
		t.Fatal("wrapper output is not reproducible")
	}
}

func TestCheckReportsBindingErrors(t *testing.T) {
	dir := createModule(t, `package main

//msprt:interrupt TIMER9
func timer() {}

func main() {}
`)

	_, err := Check(context.Background(), testOptions(t, dir))
	if !errors.Is(err, binding.ErrNoEntry) {
		t.Fatalf("expected ErrNoEntry; got %v", err)
	}
	if !errors.Is(err, binding.ErrUnknownInterrupt) {
		t.Fatalf("expected ErrUnknownInterrupt; got %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "build")); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("check must not write anything")
	}
}

func TestLoadPackageErrors(t *testing.T) {
	dir := createModule(t, "package main\n\nfunc main() { undefined() }\n")

	_, err := Load(context.Background(), testOptions(t, dir))
	if !errors.Is(err, ErrPackageErrors) {
		t.Fatalf("expected ErrPackageErrors; got %v", err)
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		options Options
		memory  string
		err     error
	}{
		{name: "no chip", err: ErrNoChip},
		{name: "defaults", options: Options{Chip: "msp430g2553"}},
		{name: "custom memory", options: Options{Chip: "msp430g2553"}, memory: `MEMORY
{
  VECTORS : ORIGIN = 0xFFC0, LENGTH = 0x40
  ROM     : ORIGIN = 0xC000, LENGTH = 0x3FC0
  RAM     : ORIGIN = 0x0200, LENGTH = 512
}
`},
		{name: "vectors not at end", options: Options{Chip: "msp430g2553"}, memory: `MEMORY
{
  VECTORS : ORIGIN = 0xFFC0, LENGTH = 0x20
  ROM     : ORIGIN = 0xC000, LENGTH = 0x3FC0
  RAM     : ORIGIN = 0x0200, LENGTH = 512
}
`, err: layout.ErrVectorEnd},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			options := tc.options
			if len(tc.memory) > 0 {
				options.Memory = filepath.Join(t.TempDir(), "memory.x")
				if err := os.WriteFile(options.Memory, []byte(tc.memory), 0644); err != nil {
					t.Fatal(err)
				}
			}
			options.Logger = log.New(&bytes.Buffer{}, "", 0)

			result, err := Resolve(&options)
			if tc.err != nil {
				if !errors.Is(err, tc.err) {
					t.Fatalf("expected %v; got %v", tc.err, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}

			want := uint32(0xFFE0)
			if len(tc.memory) > 0 {
				want = 0xFFC0
			}
			if got := uint32(result.Layout.Regions.Vectors.Origin); got != want {
				t.Fatalf("expected vectors at 0x%X; got 0x%X", want, got)
			}
			if result.Layout.VectorCount*result.Layout.PointerSize != int(result.Layout.Regions.Vectors.Length) {
				t.Fatalf("vector count %d does not fill the region", result.Layout.VectorCount)
			}
		})
	}
}

func TestResolveBuildTags(t *testing.T) {
	options := Options{Chip: "msp430fr2355", Logger: log.New(&bytes.Buffer{}, "", 0)}
	result, err := Resolve(&options)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(options.BuildTags, result.Target.Tags) || !slices.Contains(options.BuildTags, "msp430x") {
		t.Fatalf("expected the target tags; got %v", options.BuildTags)
	}

	options = Options{Chip: "msp430fr2355", BuildTags: []string{"board"}, Logger: log.New(&bytes.Buffer{}, "", 0)}
	if _, err = Resolve(&options); err != nil {
		t.Fatal(err)
	}
	if len(options.BuildTags) != 1 || options.BuildTags[0] != "board" {
		t.Fatalf("explicit tags were replaced: %v", options.BuildTags)
	}
}

func TestPackageOrder(t *testing.T) {
	b := &packages.Package{PkgPath: "example.com/b"}
	a := &packages.Package{PkgPath: "example.com/a", Imports: map[string]*packages.Package{"example.com/b": b}}
	c := &packages.Package{PkgPath: "example.com/c", Imports: map[string]*packages.Package{"example.com/a": a}}
	z := &packages.Package{PkgPath: "example.com/z"}

	order := func() []string {
		p := newProgram(&Options{})
		for _, pkg := range []*packages.Package{c, z} {
			p.AddPackage(pkg)
		}
		if err := p.computePackageOrder(); err != nil {
			t.Fatal(err)
		}

		var paths []string
		for _, pkg := range p.OrderedPackages {
			paths = append(paths, pkg.PkgPath)
		}
		return paths
	}

	first := order()
	if len(first) != 4 {
		t.Fatalf("expected 4 packages; got %v", first)
	}

	index := map[string]int{}
	for i, path := range first {
		index[path] = i
	}
	if !(index["example.com/b"] < index["example.com/a"] && index["example.com/a"] < index["example.com/c"]) {
		t.Fatalf("imports must come first: %v", first)
	}

	for i := 0; i < 10; i++ {
		if next := order(); strings.Join(next, " ") != strings.Join(first, " ") {
			t.Fatalf("order is not stable: %v and %v", first, next)
		}
	}
}
