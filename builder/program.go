package builder

import (
	"context"
	"errors"
	"go/token"
	"path/filepath"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/tools/go/packages"

	"omibyte.io/msprt/binding"
)

type Program struct {
	FileSet         *token.FileSet
	Packages        map[string]*packages.Package
	OrderedPackages []*packages.Package
	Roots           []*packages.Package

	// Generated maps package paths to the wrapper file found in the package
	// directory before loading. Its contents were ignored.
	Generated map[string]string

	options      *Options
	packageNodes map[*packages.Package]*packageNode
}

func newProgram(options *Options) *Program {
	return &Program{
		FileSet:      token.NewFileSet(),
		Packages:     map[string]*packages.Package{},
		Generated:    map[string]string{},
		options:      options,
		packageNodes: map[*packages.Package]*packageNode{},
	}
}

func (p *Program) config(ctx context.Context, mode packages.LoadMode) *packages.Config {
	config := &packages.Config{
		Mode:    mode,
		Context: ctx,
		Dir:     p.options.Dir,
		Fset:    p.FileSet,
		Tests:   false,
	}
	if len(p.options.BuildTags) > 0 {
		config.BuildFlags = []string{"-tags=" + strings.Join(p.options.BuildTags, ",")}
	}
	if p.options.Verbosity >= Debug {
		config.Logf = p.options.logger().Printf
	}
	return config
}

// Load loads the program's packages and their dependencies. Wrapper files
// generated by an earlier run are blanked while loading, so that stale
// wrappers neither fail the type check nor take part in discovery.
func Load(ctx context.Context, options *Options) (*Program, error) {
	p := newProgram(options)

	patterns := options.Packages
	if len(patterns) == 0 {
		patterns = []string{"."}
	}

	// Find the generated files first.
	listed, err := packages.Load(p.config(ctx, packages.NeedName|packages.NeedFiles), patterns...)
	if err != nil {
		return nil, err
	}

	overlay := map[string][]byte{}
	for _, pkg := range listed {
		for _, fname := range pkg.GoFiles {
			if filepath.Base(fname) == binding.GeneratedFile {
				overlay[fname] = []byte("package " + pkg.Name + "\n")
				p.Generated[pkg.PkgPath] = fname
				options.printf(Debug, "ignoring %s", fname)
			}
		}
	}

	config := p.config(ctx, packages.NeedName|packages.NeedFiles|packages.NeedImports|packages.NeedDeps|
		packages.NeedTypes|packages.NeedSyntax|packages.NeedTypesInfo|packages.NeedTypesSizes|packages.NeedModule)
	config.Overlay = overlay

	roots, err := packages.Load(config, patterns...)
	if err != nil {
		return nil, err
	}
	if len(roots) == 0 {
		return nil, ErrNoPackages
	}

	// Collect every error of every package.
	packages.Visit(roots, nil, func(pkg *packages.Package) {
		for _, pkgErr := range pkg.Errors {
			err = errors.Join(err, pkgErr)
		}
	})
	if err != nil {
		return nil, errors.Join(ErrPackageErrors, err)
	}

	p.Roots = roots
	for _, pkg := range roots {
		p.AddPackage(pkg)
	}

	if err = p.computePackageOrder(); err != nil {
		return nil, err
	}

	options.printf(Info, "loaded %d packages", len(p.Packages))
	return p, nil
}

// AddPackage adds pkg and everything it imports.
func (p *Program) AddPackage(pkg *packages.Package) {
	if _, ok := p.Packages[pkg.PkgPath]; ok {
		return
	}
	p.Packages[pkg.PkgPath] = pkg

	paths := maps.Keys(pkg.Imports)
	slices.Sort(paths)
	for _, path := range paths {
		p.AddPackage(pkg.Imports[path])
	}
}

// Bindable returns the packages that may declare bindings in dependency
// order: the root packages and every package of the main module.
func (p *Program) Bindable() []*packages.Package {
	var result []*packages.Package
	for _, pkg := range p.OrderedPackages {
		if slices.Contains(p.Roots, pkg) || (pkg.Module != nil && pkg.Module.Main) {
			result = append(result, pkg)
		}
	}
	return result
}

// Dir returns the directory of the package.
func (p *Program) Dir(pkg *packages.Package) string {
	if fname, ok := p.Generated[pkg.PkgPath]; ok {
		return filepath.Dir(fname)
	}
	if len(pkg.GoFiles) > 0 {
		return filepath.Dir(pkg.GoFiles[0])
	}
	return ""
}
