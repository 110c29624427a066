package binding

import (
	"errors"
	"fmt"
	"go/ast"
	"go/types"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/tools/go/packages"

	"omibyte.io/msprt/device"
)

type checker struct {
	dev   *device.Device
	pkgs  []*packages.Package
	names *Names

	decls     map[*types.Func]*ast.FuncDecl
	declPkg   map[*types.Func]*packages.Package
	divergent map[*types.Func]divergence

	// capturing holds the local variables that keep a function literal
	// capturing a token.
	capturing map[*types.Var]bool

	errs []error
}

func newChecker(pkgs []*packages.Package, dev *device.Device) *checker {
	c := &checker{
		dev:       dev,
		pkgs:      pkgs,
		names:     NewNames(),
		decls:     map[*types.Func]*ast.FuncDecl{},
		declPkg:   map[*types.Func]*packages.Package{},
		divergent: map[*types.Func]divergence{},
		capturing: map[*types.Var]bool{},
	}

	// Index every function declaration for the divergence analysis.
	for _, pkg := range pkgs {
		for _, file := range pkg.Syntax {
			for _, decl := range file.Decls {
				if fn, ok := decl.(*ast.FuncDecl); ok {
					if obj, ok := pkg.TypesInfo.Defs[fn.Name].(*types.Func); ok {
						c.decls[obj] = fn
						c.declPkg[obj] = pkg
					}
				}
			}
		}
	}
	return c
}

func (c *checker) report(err error) {
	c.errs = append(c.errs, err)
}

// Discover collects and validates the bindings declared by pkgs. The packages
// should be the packages of the program's own module in dependency order. dev
// may be nil, in which case only the default handler can be bound.
//
// Every problem found is reported. The returned error joins *Error values
// that wrap the package's sentinel errors.
func Discover(pkgs []*packages.Package, dev *device.Device) (*Set, error) {
	c := newChecker(pkgs, dev)

	var found []*Binding
	for _, pkg := range pkgs {
		c.checkTokens(pkg)
		found = append(found, c.collect(pkg)...)
	}

	byRole := map[Role][]*Binding{}
	for _, b := range found {
		if c.checkSignature(b) {
			byRole[b.Role] = append(byRole[b.Role], b)
		}
	}

	set := &Set{Device: dev}
	for _, role := range []Role{RoleEntry, RolePreInit, RoleDefaultHandler} {
		rule := rules[role]
		bindings := byRole[role]
		if rule.Required && len(bindings) == 0 {
			c.report(fmt.Errorf("%w: mark exactly one function with %s%s", ErrNoEntry, directivePrefix, verbEntry))
			continue
		}
		if rule.Max > 0 && len(bindings) > rule.Max {
			for _, b := range bindings[rule.Max:] {
				c.errorf(b.Package, b.Decl.Name.Pos(), rule.ErrCount, "%s conflicts with %s at %s",
					b.Decl.Name.Name, bindings[0].Decl.Name.Name, bindings[0].Pos)
			}
		}
		if len(bindings) == 0 {
			continue
		}

		switch role {
		case RoleEntry:
			set.Entry = bindings[0]
		case RolePreInit:
			set.PreInit = bindings[0]
		case RoleDefaultHandler:
			set.DefaultHandler = bindings[0]
		}
	}

	interrupts := map[string]*Binding{}
	for _, b := range byRole[RoleInterrupt] {
		if c.dev == nil {
			c.errorf(b.Package, b.Decl.Name.Pos(), ErrUnknownInterrupt,
				"interrupt %s cannot be bound without a device description", b.Name)
			continue
		}
		if _, ok := c.dev.Lookup(b.Name); !ok {
			c.errorf(b.Package, b.Decl.Name.Pos(), ErrUnknownInterrupt,
				"device %s has no interrupt named %s", c.dev.Name, b.Name)
			continue
		}
		if prev, ok := interrupts[b.Name]; ok {
			c.errorf(b.Package, b.Decl.Name.Pos(), ErrDuplicateInterrupt,
				"%s is already bound to %s at %s", b.Name, prev.Decl.Name.Name, prev.Pos)
			continue
		}
		interrupts[b.Name] = b
	}

	names := maps.Keys(interrupts)
	slices.Sort(names)
	for _, name := range names {
		set.Interrupts = append(set.Interrupts, interrupts[name])
	}

	c.checkRoleConflicts(set)

	if set.PreInit != nil {
		c.checkPreInit(set.PreInit)
	}

	if len(c.errs) > 0 {
		return nil, errors.Join(c.errs...)
	}

	for _, b := range set.All() {
		b.Wrapper = c.names.Wrapper(b)
	}
	return set, nil
}

// checkRoleConflicts reports a function used for two roles. A directive binds
// one function, so this happens through an entry point's setup function.
func (c *checker) checkRoleConflicts(set *Set) {
	claimed := map[*types.Func]*Binding{}
	for _, b := range set.All() {
		claimed[b.Func] = b
	}

	if set.Entry == nil || set.Entry.Setup == nil {
		return
	}
	if other, ok := claimed[set.Entry.Setup]; ok {
		c.errorf(set.Entry.Package, set.Entry.Decl.Name.Pos(), ErrConflictingRoles,
			"%s is the %s setup function and is bound as %s at %s", other.Decl.Name.Name, set.Entry.Role, other.Role, other.Pos)
	}
}
