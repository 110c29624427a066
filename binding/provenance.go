package binding

import (
	"go/ast"
	"go/token"
	"go/types"

	"golang.org/x/exp/slices"
	"golang.org/x/tools/go/packages"
)

// trampolines are the functions of the token package that hand out a token
// without masking interrupts first. Only generated wrappers may use them.
var trampolines = []string{
	"Handler",
	"HandlerCS",
	"Entry",
	"EntryCS",
	"EntryEnable",
	"EntryEnableSetup",
	"EntryEnableWith",
}

// checkTokens reports every place in pkg where a critical section token could
// be manufactured or outlive the critical section that produced it.
func (c *checker) checkTokens(pkg *packages.Package) {
	if pkg.PkgPath == TokenPackage {
		return
	}

	info := pkg.TypesInfo
	for _, file := range pkg.Syntax {
		// Package-level variables live forever.
		for _, decl := range file.Decls {
			gen, ok := decl.(*ast.GenDecl)
			if !ok || gen.Tok != token.VAR {
				continue
			}
			for _, spec := range gen.Specs {
				for _, name := range spec.(*ast.ValueSpec).Names {
					if obj := info.Defs[name]; obj != nil && containsToken(obj.Type()) {
						c.errorf(pkg, name.Pos(), ErrTokenEscape, "package variable %s can hold a %s", name.Name, TokenName)
					}
				}
			}
		}

		if isGenerated(pkg.Fset, file) {
			continue
		}

		ast.Inspect(file, func(n ast.Node) bool {
			switch n := n.(type) {
			case *ast.FuncDecl:
				if obj, ok := info.Defs[n.Name].(*types.Func); ok {
					sig := obj.Type().(*types.Signature)
					c.checkResults(pkg, n.Name.Pos(), n.Name.Name, sig)
					if n.Body != nil {
						c.checkFlow(pkg, sig, n.Body)
					}
				}
			case *ast.FuncLit:
				if sig, ok := info.TypeOf(n).(*types.Signature); ok {
					c.checkResults(pkg, n.Pos(), "function literal", sig)
					c.checkFlow(pkg, sig, n.Body)
				}
			case *ast.Ident:
				c.checkIdent(pkg, n)
			case *ast.CompositeLit:
				if t := info.TypeOf(n); t != nil {
					if c.literalMakesToken(n, t) {
						c.errorf(pkg, n.Pos(), ErrTokenEscape, "%s constructed outside of a critical section",
							types.TypeString(t, types.RelativeTo(pkg.Types)))
					}
					c.checkElements(pkg, n, t)
				}
			case *ast.CallExpr:
				c.checkCall(pkg, n)
			case *ast.IndexExpr:
				if m, ok := under(info.TypeOf(n.X)).(*types.Map); ok && holdsToken(m.Elem()) {
					c.errorf(pkg, n.Pos(), ErrTokenEscape, "indexing a map of %s yields a zero %s for missing keys",
						types.TypeString(m.Elem(), types.RelativeTo(pkg.Types)), TokenName)
				}
			case *ast.DeclStmt:
				gen, ok := n.Decl.(*ast.GenDecl)
				if !ok || gen.Tok != token.VAR {
					break
				}
				for _, spec := range gen.Specs {
					vs := spec.(*ast.ValueSpec)
					if len(vs.Values) > 0 {
						continue
					}
					for _, name := range vs.Names {
						if obj := info.Defs[name]; obj != nil && holdsToken(obj.Type()) {
							c.errorf(pkg, name.Pos(), ErrTokenEscape, "zero value of %s is not a valid %s", name.Name, TokenName)
						}
					}
				}
			}
			return true
		})
	}
}

func under(t types.Type) types.Type {
	if t == nil {
		return nil
	}
	return t.Underlying()
}

func (c *checker) checkResults(pkg *packages.Package, pos token.Pos, name string, sig *types.Signature) {
	if containsToken(sig.Results()) {
		c.errorf(pkg, pos, ErrTokenEscape, "%s returns a %s", name, TokenName)
	}
}

// checkIdent rejects references to the trampolines, which includes taking
// them as function values, and generic instantiations with a token type
// argument. A type parameter's zero value would be a token.
func (c *checker) checkIdent(pkg *packages.Package, id *ast.Ident) {
	info := pkg.TypesInfo

	if obj, ok := info.Uses[id].(*types.Func); ok {
		if obj.Pkg() != nil && obj.Pkg().Path() == TokenPackage && slices.Contains(trampolines, obj.Name()) {
			c.errorf(pkg, id.Pos(), ErrTokenEscape, "%s.%s may only be called by generated bindings", obj.Pkg().Name(), obj.Name())
			return
		}
	}

	inst, ok := info.Instances[id]
	if !ok || inst.TypeArgs == nil {
		return
	}
	for i := 0; i < inst.TypeArgs.Len(); i++ {
		if arg := inst.TypeArgs.At(i); containsToken(arg) {
			c.errorf(pkg, id.Pos(), ErrTokenEscape, "%s instantiated with %s", id.Name,
				types.TypeString(arg, types.RelativeTo(pkg.Types)))
			return
		}
	}
}

// literalMakesToken reports whether a composite literal leaves a token field
// or element at its zero value.
func (c *checker) literalMakesToken(lit *ast.CompositeLit, t types.Type) bool {
	if isToken(t) {
		return true
	}

	switch u := t.Underlying().(type) {
	case *types.Struct:
		if len(lit.Elts) > 0 {
			if _, keyed := lit.Elts[0].(*ast.KeyValueExpr); !keyed {
				// Positional literals set every field.
				return false
			}
		}

		var set []string
		for _, elt := range lit.Elts {
			if kv, ok := elt.(*ast.KeyValueExpr); ok {
				if id, ok := kv.Key.(*ast.Ident); ok {
					set = append(set, id.Name)
				}
			}
		}
		for i := 0; i < u.NumFields(); i++ {
			field := u.Field(i)
			if holdsToken(field.Type()) && !slices.Contains(set, field.Name()) {
				return true
			}
		}
	case *types.Array:
		return holdsToken(u.Elem()) && int64(len(lit.Elts)) < u.Len()
	}
	return false
}

func (c *checker) checkCall(pkg *packages.Package, call *ast.CallExpr) {
	info := pkg.TypesInfo
	qualifier := types.RelativeTo(pkg.Types)

	// Conversions
	if tv, ok := info.Types[call.Fun]; ok && tv.IsType() {
		if len(call.Args) == 1 {
			c.checkStore(pkg, tv.Type, call.Args[0])
		}
		return
	}

	if id := identOf(call.Fun); id != nil {
		if obj, ok := info.Uses[id].(*types.Builtin); ok && len(call.Args) > 0 {
			t := info.TypeOf(call.Args[0])
			switch obj.Name() {
			case "new":
				if t != nil && holdsToken(t) {
					c.errorf(pkg, call.Pos(), ErrTokenEscape, "new(%s) manufactures a %s",
						types.TypeString(t, qualifier), TokenName)
				}
				return
			case "make":
				var elem types.Type
				switch u := under(t).(type) {
				case *types.Slice:
					elem = u.Elem()
				case *types.Map:
					elem = u.Elem()
				case *types.Chan:
					elem = u.Elem()
				}
				if elem != nil && holdsToken(elem) {
					c.errorf(pkg, call.Pos(), ErrTokenEscape, "make(%s) manufactures zero %s values",
						types.TypeString(t, qualifier), TokenName)
				}
				return
			}
		}
	}

	sig, ok := under(info.TypeOf(call.Fun)).(*types.Signature)
	if !ok {
		return
	}

	params := sig.Params()
	for i, arg := range call.Args {
		var target types.Type
		switch {
		case sig.Variadic() && i >= params.Len()-1:
			target = params.At(params.Len() - 1).Type()
			if !call.Ellipsis.IsValid() {
				if s, ok := target.(*types.Slice); ok {
					target = s.Elem()
				}
			}
		case i < params.Len():
			target = params.At(i).Type()
		}
		c.checkConversion(pkg, target, arg)
	}
}

// checkConversion rejects storing a value that carries a token in an
// interface. The dynamic value could be asserted back anywhere.
func (c *checker) checkConversion(pkg *packages.Package, target types.Type, value ast.Expr) {
	if target == nil || !types.IsInterface(target) {
		return
	}

	t := pkg.TypesInfo.TypeOf(value)
	if t == nil || types.IsInterface(t) || !containsToken(t) {
		return
	}

	qualifier := types.RelativeTo(pkg.Types)
	c.errorf(pkg, value.Pos(), ErrTokenEscape, "%s converted to %s hides a %s",
		types.TypeString(t, qualifier), types.TypeString(target, qualifier), TokenName)
}

// checkStore checks a value stored in a location that is not a local
// variable: an interface conversion or a function literal holding on to a
// token is rejected.
func (c *checker) checkStore(pkg *packages.Package, target types.Type, value ast.Expr) {
	c.checkConversion(pkg, target, value)
	if c.capturesToken(pkg, value) {
		c.errorf(pkg, value.Pos(), ErrTokenEscape, "function capturing a %s outlives its critical section", TokenName)
	}
}

// checkElements checks the values of a composite literal against the types
// of the fields or elements they initialize.
func (c *checker) checkElements(pkg *packages.Package, lit *ast.CompositeLit, t types.Type) {
	for i, elt := range lit.Elts {
		value := elt
		var key ast.Expr
		if kv, ok := elt.(*ast.KeyValueExpr); ok {
			key, value = kv.Key, kv.Value
		}

		var target types.Type
		switch u := t.Underlying().(type) {
		case *types.Struct:
			if id, ok := key.(*ast.Ident); ok {
				for j := 0; j < u.NumFields(); j++ {
					if u.Field(j).Name() == id.Name {
						target = u.Field(j).Type()
					}
				}
			} else if key == nil && i < u.NumFields() {
				target = u.Field(i).Type()
			}
		case *types.Array:
			target = u.Elem()
		case *types.Slice:
			target = u.Elem()
		case *types.Map:
			target = u.Elem()
			if key != nil {
				c.checkStore(pkg, u.Key(), key)
			}
		}
		c.checkStore(pkg, target, value)
	}
}

// checkFlow checks the statements of one function body, without descending
// into function literals, for values that leave through assignments, sends
// and returns.
func (c *checker) checkFlow(pkg *packages.Package, sig *types.Signature, body *ast.BlockStmt) {
	info := pkg.TypesInfo

	ast.Inspect(body, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.FuncLit:
			return false
		case *ast.ReturnStmt:
			if len(n.Results) == sig.Results().Len() {
				for i, result := range n.Results {
					c.checkStore(pkg, sig.Results().At(i).Type(), result)
				}
			}
		case *ast.SendStmt:
			if ch, ok := under(info.TypeOf(n.Chan)).(*types.Chan); ok {
				c.checkStore(pkg, ch.Elem(), n.Value)
			}
		case *ast.AssignStmt:
			if len(n.Lhs) != len(n.Rhs) {
				break
			}
			for i, lhs := range n.Lhs {
				c.assign(pkg, lhs, info.TypeOf(lhs), n.Rhs[i])
			}
		case *ast.ValueSpec:
			for i, name := range n.Names {
				if i < len(n.Values) {
					c.assign(pkg, name, info.TypeOf(name), n.Values[i])
				}
			}
		}
		return true
	})
}

// assign checks the assignment of value to lhs. A function capturing a token
// may be kept in a local variable, which then counts as capturing too.
func (c *checker) assign(pkg *packages.Package, lhs ast.Expr, target types.Type, value ast.Expr) {
	if id, ok := unparen(lhs).(*ast.Ident); ok {
		if id.Name == "_" {
			return
		}
		if v := c.localVar(pkg, id); v != nil {
			c.checkConversion(pkg, target, value)
			if c.capturesToken(pkg, value) {
				c.capturing[v] = true
			}
			return
		}
	}
	c.checkStore(pkg, target, value)
}

func (c *checker) localVar(pkg *packages.Package, id *ast.Ident) *types.Var {
	obj := pkg.TypesInfo.ObjectOf(id)
	v, ok := obj.(*types.Var)
	if !ok || v.IsField() || v.Parent() == nil || v.Parent() == pkg.Types.Scope() {
		return nil
	}
	return v
}

// capturesToken reports whether e is a function literal that refers to a
// token variable declared outside of it, or a local variable holding one.
func (c *checker) capturesToken(pkg *packages.Package, e ast.Expr) bool {
	info := pkg.TypesInfo

	switch e := unparen(e).(type) {
	case *ast.Ident:
		v, ok := info.Uses[e].(*types.Var)
		return ok && c.capturing[v]
	case *ast.FuncLit:
		found := false
		ast.Inspect(e.Body, func(n ast.Node) bool {
			id, ok := n.(*ast.Ident)
			if !ok || found {
				return !found
			}
			v, ok := info.Uses[id].(*types.Var)
			if !ok || v.IsField() {
				return true
			}
			outside := v.Pos() < e.Pos() || v.Pos() >= e.End()
			if outside && (containsToken(v.Type()) || c.capturing[v]) {
				found = true
			}
			return !found
		})
		return found
	}
	return false
}
