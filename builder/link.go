package builder

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"omibyte.io/msprt/codegen"
	"omibyte.io/msprt/verify"
)

// Link links the object files of a program against the generated vector
// table and linker script, verifies the resulting image and converts it when
// output asks for a ".hex" or ".bin" file.
func Link(ctx context.Context, options *Options, objects []string, output string) error {
	result, err := Resolve(options)
	if err != nil {
		return err
	}

	if info, err := os.Stat(output); err == nil && info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrUnexpectedOutputPath, output)
	}

	toolchain, err := findToolchain(options.Environment, result.Target.ToolchainPrefix)
	if err != nil {
		return err
	}

	generated := options.Output
	if len(generated) == 0 {
		generated = filepath.Join(options.Dir, "build")
	}

	elfFile := output
	ext := strings.ToLower(filepath.Ext(output))
	if ext == ".hex" || ext == ".bin" {
		elfFile = strings.TrimSuffix(output, filepath.Ext(output)) + ".elf"
	}

	args := result.Target.LinkerFlags(options.Chip)
	args = append(args,
		"-L", generated,
		"-T", filepath.Join(generated, codegen.LinkFile),
		"-o", elfFile,
		filepath.Join(generated, codegen.VectorsFile),
	)
	args = append(args, objects...)

	if err = run(ctx, options, toolchain.CC, args...); err != nil {
		return err
	}

	if err = Verify(options, elfFile); err != nil {
		return err
	}

	switch ext {
	case ".hex":
		return run(ctx, options, toolchain.ObjCopy, "-O", "ihex", elfFile, output)
	case ".bin":
		return run(ctx, options, toolchain.ObjCopy, "-O", "binary", elfFile, output)
	}
	return nil
}

// Verify checks a linked image against the memory layout of the target.
func Verify(options *Options, fname string) error {
	result, err := Resolve(options)
	if err != nil {
		return err
	}

	img, err := verify.Open(fname)
	if err != nil {
		return err
	}

	if err = verify.Check(img, result.Layout); err != nil {
		return fmt.Errorf("%s: %w", fname, err)
	}
	options.printf(Info, "%s verified", fname)
	return nil
}

func run(ctx context.Context, options *Options, name string, args ...string) error {
	options.println(Debug, name, strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = options.Dir
	cmd.Env = append(os.Environ(), options.Environment.List()...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%w: %s: %v\n%s", ErrLinkFailed, filepath.Base(name), err, out)
	}
	return nil
}
