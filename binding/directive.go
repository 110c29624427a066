package binding

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"path/filepath"
	"strings"

	"golang.org/x/tools/go/packages"
)

// directive is a parsed //msprt: comment.
type directive struct {
	comment *ast.Comment
	verb    string
	args    []string
}

func parseDirective(c *ast.Comment) (directive, bool) {
	if !strings.HasPrefix(c.Text, directivePrefix) {
		return directive{}, false
	}

	parts := strings.Fields(strings.TrimPrefix(c.Text, directivePrefix))
	d := directive{comment: c}
	if len(parts) > 0 {
		d.verb = parts[0]
		d.args = parts[1:]
	}
	return d, true
}

// isGenerated reports whether file was written by the wrapper generator.
func isGenerated(fset *token.FileSet, file *ast.File) bool {
	return filepath.Base(fset.Position(file.Package).Filename) == GeneratedFile
}

// collect finds every directive of a package. Directives in a top-level
// function's doc comment produce a binding, every other directive is an error.
func (c *checker) collect(pkg *packages.Package) (result []*Binding) {
	for _, file := range pkg.Syntax {
		if isGenerated(pkg.Fset, file) {
			continue
		}

		attached := map[*ast.Comment]bool{}
		for _, decl := range file.Decls {
			fn, ok := decl.(*ast.FuncDecl)
			if !ok || fn.Doc == nil {
				continue
			}

			var directives []directive
			for _, comment := range fn.Doc.List {
				if d, ok := parseDirective(comment); ok {
					attached[comment] = true
					directives = append(directives, d)
				}
			}

			if len(directives) == 0 {
				continue
			}

			if len(directives) > 1 {
				c.errorf(pkg, directives[1].comment.Pos(), ErrConflictingRoles, "%s has directives %q and %q",
					fn.Name.Name, directives[0].comment.Text, directives[1].comment.Text)
				continue
			}

			if b := c.parse(pkg, fn, directives[0]); b != nil {
				result = append(result, b)
			}
		}

		// Directives anywhere else are mistakes.
		for _, group := range file.Comments {
			for _, comment := range group.List {
				if _, ok := parseDirective(comment); ok && !attached[comment] {
					c.errorf(pkg, comment.Pos(), ErrMisplacedDirective, "%s", comment.Text)
				}
			}
		}
	}
	return result
}

// parse turns a directive into a binding. Signatures are checked later.
func (c *checker) parse(pkg *packages.Package, fn *ast.FuncDecl, d directive) *Binding {
	b := &Binding{
		Decl:    fn,
		Package: pkg,
		Pos:     pkg.Fset.Position(fn.Name.Pos()),
	}

	if obj, ok := pkg.TypesInfo.Defs[fn.Name].(*types.Func); ok {
		b.Func = obj
	}

	badf := func(format string, args ...any) *Binding {
		c.errorf(pkg, d.comment.Pos(), ErrBadDirective, "%s: "+format, append([]any{d.comment.Text}, args...)...)
		return nil
	}

	switch d.verb {
	case verbEntry:
		b.Role = RoleEntry
		b.Name = rules[RoleEntry].Symbol
		seen := map[string]bool{}
		for _, arg := range d.args {
			key, value, hasValue := strings.Cut(arg, "=")
			if seen[key] {
				return badf("argument %s repeated", key)
			}
			seen[key] = true

			switch key {
			case argInterruptEnable:
				if hasValue {
					return badf("%s takes no value", key)
				}
				b.EnableInterrupts = true
			case argPreInterrupt:
				if !hasValue || !token.IsIdentifier(value) {
					return badf("%s requires a function name", key)
				}
				obj, ok := pkg.Types.Scope().Lookup(value).(*types.Func)
				if !ok {
					return badf("%s is not a function of package %s", value, pkg.PkgPath)
				}
				b.Setup = obj
			default:
				return badf("unknown argument %s", arg)
			}
		}
		if b.Setup != nil && !b.EnableInterrupts {
			return badf("%s requires %s", argPreInterrupt, argInterruptEnable)
		}
	case verbInterrupt:
		b.Role = RoleInterrupt
		b.Name = fn.Name.Name
		switch len(d.args) {
		case 0:
		case 1:
			if !token.IsIdentifier(d.args[0]) {
				return badf("%q is not a valid interrupt name", d.args[0])
			}
			b.Name = d.args[0]
		default:
			return badf("expected at most one interrupt name")
		}
		if b.Name == rules[RoleDefaultHandler].Symbol {
			b.Role = RoleDefaultHandler
		}
	case verbPreInit:
		b.Role = RolePreInit
		b.Name = rules[RolePreInit].Symbol
		if len(d.args) > 0 {
			return badf("takes no arguments")
		}
	default:
		return badf("unknown directive")
	}

	b.Symbol = b.Name
	return b
}

func (c *checker) errorf(pkg *packages.Package, pos token.Pos, err error, format string, args ...any) {
	c.report(&Error{
		Pos: pkg.Fset.Position(pos),
		Err: err,
		Msg: fmt.Sprintf(format, args...),
	})
}
