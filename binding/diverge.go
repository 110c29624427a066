package binding

import (
	"go/ast"
	"go/token"
	"go/types"

	"golang.org/x/tools/go/packages"
)

type divergence int

const (
	divergenceUnknown divergence = iota
	divergenceChecking
	divergenceNever
	divergenceReturns
)

// checkDiverges verifies that the entry point cannot return: its body has no
// return statement and ends in a terminating statement.
func (c *checker) checkDiverges(b *Binding) bool {
	ok := true
	for _, ret := range returns(b.Decl.Body) {
		c.errorf(b.Package, ret.Pos(), ErrNotDivergent, "%s returns", b.Decl.Name.Name)
		ok = false
	}

	if ok && !c.terminates(b.Package, b.Decl.Body, "") {
		c.errorf(b.Package, b.Decl.Body.Rbrace, ErrNotDivergent,
			"%s can reach the end of its body; end it with an endless loop or a call that never returns", b.Decl.Name.Name)
		ok = false
	}
	return ok
}

// returns lists the return statements of a function body, ignoring those of
// function literals.
func returns(body *ast.BlockStmt) (result []*ast.ReturnStmt) {
	ast.Inspect(body, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.FuncLit:
			return false
		case *ast.ReturnStmt:
			result = append(result, n)
		}
		return true
	})
	return result
}

// terminates reports whether control cannot flow past stmt. label is the label
// of stmt, if any.
func (c *checker) terminates(pkg *packages.Package, stmt ast.Stmt, label string) bool {
	switch s := stmt.(type) {
	case *ast.BlockStmt:
		return len(s.List) > 0 && c.terminates(pkg, s.List[len(s.List)-1], "")
	case *ast.LabeledStmt:
		return c.terminates(pkg, s.Stmt, s.Label.Name)
	case *ast.BranchStmt:
		return s.Tok == token.GOTO
	case *ast.ExprStmt:
		call, ok := unparen(s.X).(*ast.CallExpr)
		return ok && c.divergentCall(pkg, call)
	case *ast.ForStmt:
		return s.Cond == nil && !breaks(s.Body, label)
	case *ast.IfStmt:
		return s.Else != nil && c.terminates(pkg, s.Body, "") && c.terminates(pkg, s.Else, "")
	case *ast.SelectStmt:
		if breaks(s.Body, label) {
			return false
		}
		for _, clause := range s.Body.List {
			if !c.clauseTerminates(pkg, clause.(*ast.CommClause).Body) {
				return false
			}
		}
		return true
	case *ast.SwitchStmt:
		return c.switchTerminates(pkg, s.Body, label)
	case *ast.TypeSwitchStmt:
		return c.switchTerminates(pkg, s.Body, label)
	}
	return false
}

func (c *checker) switchTerminates(pkg *packages.Package, body *ast.BlockStmt, label string) bool {
	if breaks(body, label) {
		return false
	}

	hasDefault := false
	for _, stmt := range body.List {
		clause := stmt.(*ast.CaseClause)
		if clause.List == nil {
			hasDefault = true
		}
		if n := len(clause.Body); n > 0 {
			if branch, ok := clause.Body[n-1].(*ast.BranchStmt); ok && branch.Tok == token.FALLTHROUGH {
				continue
			}
		}
		if !c.clauseTerminates(pkg, clause.Body) {
			return false
		}
	}
	return hasDefault
}

func (c *checker) clauseTerminates(pkg *packages.Package, body []ast.Stmt) bool {
	return len(body) > 0 && c.terminates(pkg, body[len(body)-1], "")
}

// divergentCall reports whether call never returns: a panic, or a call to a
// function of the program whose body diverges.
func (c *checker) divergentCall(pkg *packages.Package, call *ast.CallExpr) bool {
	var id *ast.Ident
	switch fun := unparen(call.Fun).(type) {
	case *ast.Ident:
		id = fun
	case *ast.SelectorExpr:
		id = fun.Sel
	case *ast.IndexExpr:
		id = identOf(fun.X)
	case *ast.IndexListExpr:
		id = identOf(fun.X)
	}
	if id == nil {
		return false
	}

	switch obj := pkg.TypesInfo.Uses[id].(type) {
	case *types.Builtin:
		return obj.Name() == "panic"
	case *types.Func:
		return c.funcDiverges(obj.Origin())
	}
	return false
}

func (c *checker) funcDiverges(fn *types.Func) bool {
	switch c.divergent[fn] {
	case divergenceNever:
		return true
	case divergenceReturns, divergenceChecking:
		return false
	}

	decl, ok := c.decls[fn]
	if !ok || decl.Body == nil {
		c.divergent[fn] = divergenceReturns
		return false
	}

	// Recursion counts as returning.
	c.divergent[fn] = divergenceChecking
	result := len(returns(decl.Body)) == 0 && c.terminates(c.declPkg[fn], decl.Body, "")
	if result {
		c.divergent[fn] = divergenceNever
	} else {
		c.divergent[fn] = divergenceReturns
	}
	return result
}

// breaks reports whether body contains a break statement that leaves the
// enclosing statement labelled label: an unlabelled break outside any nested
// breakable statement, or a break naming label.
func breaks(body ast.Node, label string) bool {
	found := false
	var visit func(root ast.Node, nested bool)
	visit = func(root ast.Node, nested bool) {
		ast.Inspect(root, func(n ast.Node) bool {
			if found {
				return false
			}
			switch n := n.(type) {
			case *ast.FuncLit:
				return false
			case *ast.BranchStmt:
				if n.Tok == token.BREAK {
					if n.Label == nil && !nested || n.Label != nil && n.Label.Name == label {
						found = true
					}
				}
			case *ast.ForStmt, *ast.RangeStmt, *ast.SwitchStmt, *ast.TypeSwitchStmt, *ast.SelectStmt:
				if n != root {
					visit(n, true)
					return false
				}
			}
			return true
		})
	}
	visit(body, false)
	return found
}

func unparen(e ast.Expr) ast.Expr {
	for {
		p, ok := e.(*ast.ParenExpr)
		if !ok {
			return e
		}
		e = p.X
	}
}

func identOf(e ast.Expr) *ast.Ident {
	switch e := unparen(e).(type) {
	case *ast.Ident:
		return e
	case *ast.SelectorExpr:
		return e.Sel
	}
	return nil
}
