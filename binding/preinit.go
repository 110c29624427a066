package binding

import (
	"fmt"
	"go/token"

	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
)

// checkPreInit verifies that the pre-init hook does not reference package
// variables. The hook runs before static storage is initialized, so anything
// it reads is garbage and anything it writes is lost. Every function reachable
// from the hook through static calls, closures and function values is
// checked.
func (c *checker) checkPreInit(b *Binding) {
	prog, _ := ssautil.AllPackages(c.pkgs, ssa.InstantiateGenerics)
	prog.Build()

	root := prog.FuncValue(b.Func)
	if root == nil {
		return
	}

	reported := map[*ssa.Global]bool{}
	visited := map[*ssa.Function]bool{}

	var walk func(fn *ssa.Function)
	walk = func(fn *ssa.Function) {
		if fn == nil || visited[fn] {
			return
		}
		visited[fn] = true

		for _, anon := range fn.AnonFuncs {
			walk(anon)
		}

		var operands []*ssa.Value
		for _, block := range fn.Blocks {
			for _, instr := range block.Instrs {
				for _, op := range instr.Operands(operands[:0]) {
					if op == nil || *op == nil {
						continue
					}
					switch v := (*op).(type) {
					case *ssa.Global:
						if reported[v] {
							continue
						}
						reported[v] = true

						pos := instr.Pos()
						if pos == token.NoPos {
							pos = fn.Pos()
						}
						msg := "%s references package variable %s"
						args := []any{b.Decl.Name.Name, v.String()}
						if fn != root {
							msg += " through %s"
							args = append(args, fn.String())
						}
						if pos == token.NoPos {
							c.errorf(b.Package, b.Decl.Name.Pos(), ErrPreInitGlobal, msg, args...)
						} else {
							c.report(&Error{Pos: prog.Fset.Position(pos), Err: ErrPreInitGlobal, Msg: fmt.Sprintf(msg, args...)})
						}
					case *ssa.Function:
						walk(v)
					}
				}

				if call, ok := instr.(ssa.CallInstruction); ok {
					walk(call.Common().StaticCallee())
				}
			}
		}
	}
	walk(root)
}
