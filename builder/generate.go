package builder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/exp/slices"

	"omibyte.io/msprt/binding"
	"omibyte.io/msprt/codegen"
	"omibyte.io/msprt/device"
	"omibyte.io/msprt/layout"
	"omibyte.io/msprt/targets"
	"omibyte.io/msprt/vector"
)

type Result struct {
	Target   targets.TargetInfo
	Layout   layout.Layout
	Device   *device.Device
	Program  *Program
	Bindings *binding.Set
	Table    *vector.Table

	// Files lists every file written by Generate.
	Files []string
}

// Resolve determines the target, its memory layout and the device
// enumeration.
func Resolve(options *Options) (*Result, error) {
	if len(options.Chip) == 0 {
		return nil, ErrNoChip
	}

	target, err := targets.All().FindByChip(options.Chip)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Target: target,
		Layout: target.MemoryLayout(),
	}

	if len(options.Memory) > 0 {
		custom, err := layout.Load(options.Memory)
		if err != nil {
			return nil, err
		}

		// A custom vector region implies its own slot count.
		if custom.VectorCount == 0 && !custom.Regions.Vectors.IsZero() {
			ptr := custom.PointerSize
			if ptr == 0 {
				ptr = result.Layout.PointerSize
			}
			custom.VectorCount = int(custom.Regions.Vectors.Length) / ptr
		}
		custom.Merge(result.Layout)
		result.Layout = *custom
	}

	if err = result.Layout.Validate(); err != nil {
		return nil, err
	}

	if len(options.Device) > 0 {
		if result.Device, err = device.Load(options.Device); err != nil {
			return nil, err
		}
	}

	// Packages select their target specific files by the target's tags
	// unless the user named tags explicitly.
	if len(options.BuildTags) == 0 {
		options.BuildTags = slices.Clone(target.Tags)
	}

	options.printf(Info, "target %s (%s, %s/%s), vectors %s, %d slots", options.Chip, target.Series,
		target.Architecture, target.Triple, result.Layout.Regions.Vectors, result.Layout.VectorCount)
	return result, nil
}

// Check loads the program and validates its bindings without writing
// anything.
func Check(ctx context.Context, options *Options) (*Result, error) {
	result, err := Resolve(options)
	if err != nil {
		return nil, err
	}

	if result.Program, err = Load(ctx, options); err != nil {
		return nil, err
	}

	if result.Bindings, err = binding.Discover(result.Program.Bindable(), result.Device); err != nil {
		return nil, err
	}

	for _, b := range result.Bindings.All() {
		options.printf(Debug, "%s: %s %s -> %s", b.Pos, b.Role, b.Func.FullName(), b.Symbol)
	}

	if result.Table, err = vector.Build(result.Device, result.Bindings.InterruptNames(), result.Layout.VectorCount); err != nil {
		return nil, err
	}
	return result, nil
}

// Generate checks the program and writes the wrapper files into the package
// directories and the assembly and linker scripts into the output directory.
func Generate(ctx context.Context, options *Options) (*Result, error) {
	result, err := Check(ctx, options)
	if err != nil {
		return nil, err
	}

	prog := result.Program
	pkgs, bindings := result.Bindings.Packages()
	for _, pkg := range pkgs {
		buf, err := codegen.Wrappers(pkg, bindings[pkg])
		if err != nil {
			return nil, err
		}

		fname := filepath.Join(prog.Dir(pkg), binding.GeneratedFile)
		if err = result.write(options, fname, buf); err != nil {
			return nil, err
		}
	}

	// Remove wrappers of packages that no longer declare bindings.
	for path, fname := range prog.Generated {
		if pkg, ok := prog.Packages[path]; ok && len(bindings[pkg]) > 0 {
			continue
		}
		options.printf(Info, "removing %s", fname)
		if err = os.Remove(fname); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	output := options.Output
	if len(output) == 0 {
		output = filepath.Join(options.Dir, "build")
	}

	artefacts := []struct {
		name  string
		write func(w *bytes.Buffer) error
	}{
		{codegen.VectorsFile, func(w *bytes.Buffer) error {
			return codegen.Vectors(w, result.Table, codegen.AsmOptions{
				Large:       result.Target.Cpu == "msp430x",
				PointerSize: result.Layout.PointerSize,
			})
		}},
		{codegen.LinkFile, func(w *bytes.Buffer) error {
			return codegen.LinkerScript(w, codegen.LinkOptions{
				Layout: result.Layout,
				Device: result.Device,
				Log:    options.Log,
			})
		}},
		{codegen.MemoryFile, func(w *bytes.Buffer) error {
			return codegen.MemoryX(w, result.Layout)
		}},
		{codegen.DeviceFile, func(w *bytes.Buffer) error {
			return codegen.DeviceX(w, result.Device)
		}},
	}

	for _, artefact := range artefacts {
		var buf bytes.Buffer
		if err = artefact.write(&buf); err != nil {
			return nil, fmt.Errorf("%s: %w", artefact.name, err)
		}
		if err = result.write(options, filepath.Join(output, artefact.name), buf.Bytes()); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// write stores buf in fname unless the file already holds exactly buf.
func (r *Result) write(options *Options, fname string, buf []byte) error {
	r.Files = append(r.Files, fname)

	if existing, err := os.ReadFile(fname); err == nil && bytes.Equal(existing, buf) {
		options.printf(Debug, "%s is up to date", fname)
		return nil
	}

	// Create the output directory
	if err := os.MkdirAll(filepath.Dir(fname), 0750); err != nil {
		return err
	}

	options.printf(Info, "writing %s", fname)
	return os.WriteFile(fname, buf, 0644)
}

// Summary describes the bindings and the vector table for humans.
func (r *Result) Summary() string {
	var b strings.Builder
	for _, bnd := range r.Bindings.All() {
		fmt.Fprintf(&b, "%-16s %-24s %s\n", bnd.Role, bnd.Symbol, bnd.Func.FullName())
	}
	if r.Table != nil {
		fmt.Fprintln(&b)
		for _, slot := range r.Table.Slots {
			fmt.Fprintf(&b, "%2d  %s  %-16s %s\n", slot.Index, layout.Address(r.Layout.VectorAddress(slot.Index)), slot.Ref(), slot.Symbol)
		}
	}
	return b.String()
}
