package binding

import (
	"fmt"
	"go/types"
)

func isToken(t types.Type) bool {
	named, ok := t.(*types.Named)
	if !ok {
		return false
	}
	obj := named.Obj()
	return obj.Pkg() != nil && obj.Pkg().Path() == TokenPackage && obj.Name() == TokenName
}

// containsToken reports whether a value of type t can carry a token, directly
// or through a pointer, slice, array, map, channel or struct field.
func containsToken(t types.Type) bool {
	return contains(t, true, map[types.Type]bool{})
}

// holdsToken reports whether the zero value of t contains a token.
func holdsToken(t types.Type) bool {
	return contains(t, false, map[types.Type]bool{})
}

func contains(t types.Type, indirect bool, seen map[types.Type]bool) bool {
	if isToken(t) {
		return true
	}
	if seen[t] {
		return false
	}
	seen[t] = true

	switch t := t.(type) {
	case *types.Named:
		return contains(t.Underlying(), indirect, seen)
	case *types.Array:
		return contains(t.Elem(), indirect, seen)
	case *types.Struct:
		for i := 0; i < t.NumFields(); i++ {
			if contains(t.Field(i).Type(), indirect, seen) {
				return true
			}
		}
	case *types.Tuple:
		for i := 0; i < t.Len(); i++ {
			if contains(t.At(i).Type(), indirect, seen) {
				return true
			}
		}
	case *types.Pointer:
		return indirect && contains(t.Elem(), indirect, seen)
	case *types.Slice:
		return indirect && contains(t.Elem(), indirect, seen)
	case *types.Chan:
		return indirect && contains(t.Elem(), indirect, seen)
	case *types.Map:
		return indirect && (contains(t.Key(), indirect, seen) || contains(t.Elem(), indirect, seen))
	}
	return false
}

// checkSignature applies the rule of the binding's role to the function's
// signature. It reports whether the binding is valid.
func (c *checker) checkSignature(b *Binding) (ok bool) {
	ok = true
	rule := b.Rule()
	name := b.Decl.Name.Name
	fail := func(format string, args ...any) {
		c.errorf(b.Package, b.Decl.Name.Pos(), ErrSignature, "%s %s: %s", rule.Role, name, fmt.Sprintf(format, args...))
		ok = false
	}

	if b.Func == nil {
		fail("function was not type checked")
		return false
	}

	sig := b.Func.Type().(*types.Signature)
	qualifier := types.RelativeTo(b.Package.Types)

	if sig.Recv() != nil {
		fail("methods cannot be bound")
	}
	if name == "init" {
		fail("init functions cannot be bound")
	}
	if sig.TypeParams().Len() > 0 {
		fail("generic functions cannot be bound")
	}
	if sig.Variadic() {
		fail("variadic functions cannot be bound")
	}
	if sig.Results().Len() > 0 {
		fail("must not return a value, found %s", types.TypeString(sig.Results(), qualifier))
	}
	if b.Decl.Body == nil {
		fail("function has no body")
	}
	if rule.Unexported && b.Decl.Name.IsExported() {
		fail("must be unexported")
	}

	params := sig.Params()
	if b.EnableInterrupts {
		c.checkSetup(b, params, fail)
	} else {
		switch params.Len() {
		case 0:
		case 1:
			if rule.Token && isToken(params.At(0).Type()) {
				b.TakesToken = true
			} else if rule.Token {
				fail("the only parameter allowed is %s, found %s", TokenName, types.TypeString(params.At(0).Type(), qualifier))
			} else {
				fail("takes no parameters")
			}
		default:
			if rule.Token {
				fail("takes no parameters or a single %s", TokenName)
			} else {
				fail("takes no parameters")
			}
		}
	}

	if ok && rule.Diverges {
		ok = c.checkDiverges(b)
	}
	return ok
}

// checkSetup checks an entry point that enables interrupts and its optional
// setup function.
func (c *checker) checkSetup(b *Binding, params *types.Tuple, fail func(format string, args ...any)) {
	qualifier := types.RelativeTo(b.Package.Types)
	if b.Setup == nil {
		if params.Len() != 0 {
			fail("an entry point that enables interrupts takes no parameters")
		}
		return
	}

	setup := b.Setup.Type().(*types.Signature)
	if setup.Recv() != nil || setup.TypeParams().Len() > 0 || setup.Variadic() ||
		setup.Params().Len() != 1 || !isToken(setup.Params().At(0).Type()) || setup.Results().Len() > 1 {
		fail("%s %s must be func(%s) or func(%s) T, found %s", argPreInterrupt, b.Setup.Name(),
			TokenName, TokenName, types.TypeString(setup, qualifier))
		return
	}

	if setup.Results().Len() == 0 {
		if params.Len() != 0 {
			fail("%s returns nothing, so the entry point takes no parameters", b.Setup.Name())
		}
		return
	}

	result := setup.Results().At(0).Type()
	if containsToken(result) || types.IsInterface(result) {
		fail("%s result %s can carry a %s out of the critical section", b.Setup.Name(),
			types.TypeString(result, qualifier), TokenName)
		return
	}
	if params.Len() != 1 || !types.Identical(params.At(0).Type(), result) {
		fail("must take exactly one parameter of type %s, the result of %s", types.TypeString(result, qualifier), b.Setup.Name())
		return
	}
	b.SetupResult = result
}
