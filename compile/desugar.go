// Copyright (c) 2024 The Falcon Contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

// Stage B (4.B): ternary, lambda, short-circuit boolop and chained
// compare all desugar into plain If statements over primitive
// comparisons. Four independent rewrites share one recursive descent
// so nesting (an IfExp inside a BoolOp's operand, say) resolves in a
// single walk; FixedPointBody (flatten.go) still loops this against
// Flatten because a rewrite can expose a new compound expression in a
// position Flatten needs to visit again.
package compile

import "boxc/ast"

// desugarStmt rewrites s in place and emits it (and anything it
// hoists) into ctx's current body.
func desugarStmt(ctx *RewriteCtx, s ast.Stmt) {
	switch n := s.(type) {
	case *ast.Assign:
		if lam, ok := n.Value.(*ast.Lambda); ok {
			if name, ok2 := n.Target.(*ast.Name); ok2 {
				// Source has no first-class call targets (Call.Callee
				// is a bare identifier, 3.1), so the only way a lambda
				// is ever invoked is through the variable it was bound
				// to. Hoisting the function under that same name keeps
				// every later `name(args)` call site correct without
				// needing a separate alias table.
				ctx.Emit(hoistLambda(ctx, lam, name.Id))
				ctx.Dirty = true
				return
			}
		}
		n.Value = desugarExpr(ctx, n.Value)
		n.Target = desugarExpr(ctx, n.Target)
		ctx.Emit(n)
	case *ast.ExprStmt:
		n.Value = desugarExpr(ctx, n.Value)
		ctx.Emit(n)
	case *ast.If:
		n.Test = desugarExpr(ctx, n.Test)
		n.Body = FixedPointBody(ctx.Temps, n.Body)
		n.Else = FixedPointBody(ctx.Temps, n.Else)
		ctx.Emit(n)
	case *ast.While:
		// A compound test (BoolOp/IfExp/chained-Compare) desugars by
		// hoisting helper statements immediately before the construct
		// that needs the leaf it produces. For an If that is correct —
		// the test runs once — but a While re-evaluates its test every
		// iteration, so the hoisted statements must also run at the end
		// of the body (loop rotation), not just once before entry.
		preludeCtx := NewRewriteCtx(ctx.Temps)
		preludeCtx.Enter()
		n.Test = desugarExpr(preludeCtx, n.Test)
		prelude := preludeCtx.Leave()
		for _, p := range prelude {
			ctx.Emit(p)
		}
		if len(prelude) > 0 {
			ctx.Dirty = true
		}
		n.Body = FixedPointBody(ctx.Temps, append(append([]ast.Stmt{}, n.Body...), cloneStmts(prelude)...))
		ctx.Emit(n)
	case *ast.Break:
		ctx.Emit(n)
	case *ast.Return:
		if n.Value != nil {
			n.Value = desugarExpr(ctx, n.Value)
		}
		ctx.Emit(n)
	case *ast.FunctionDef:
		n.Body = FixedPointBody(ctx.Temps, n.Body)
		ctx.Emit(n)
	default:
		ctx.Emit(s)
	}
}

// hoistLambda builds a FunctionDef out of a lambda's single
// expression body, desugaring/flattening that body in its own scope
// so anything it hoists lands inside the new function, not the
// caller's.
func hoistLambda(ctx *RewriteCtx, lam *ast.Lambda, name string) *ast.FunctionDef {
	fn := &ast.FunctionDef{Name: name, Params: lam.Params}
	ret := &ast.Return{Value: lam.Body}
	fn.Body = FixedPointBody(ctx.Temps, []ast.Stmt{ret})
	return fn
}

// lambdaFreshHoist covers a Lambda surfacing outside the `x = lambda
// ...` pattern (e.g. nested inside another expression); the grammar
// gives it no way to be called afterward, but stage B still follows
// the spec's literal rewrite: hoist under a fresh name and leave a
// Name reference behind.
func lambdaFreshHoist(ctx *RewriteCtx, lam *ast.Lambda) ast.Expr {
	name := ctx.Fresh("$lambda")
	ctx.Emit(hoistLambda(ctx, lam, name))
	ctx.Dirty = true
	return ast.NewLoadName(name)
}

func desugarExpr(ctx *RewriteCtx, e ast.Expr) ast.Expr {
	switch n := e.(type) {
	case *ast.Constant, *ast.Name:
		return n
	case *ast.UnaryOp:
		n.Operand = desugarExpr(ctx, n.Operand)
		if c, ok := n.Operand.(*ast.Constant); ok {
			if n.Op == ast.USub && c.IsInt() {
				ctx.Dirty = true
				return ast.NewIntConstant(-c.IntVal)
			}
			if n.Op == ast.Not && c.IsBool() {
				ctx.Dirty = true
				return ast.NewBoolConstant(!c.BoolVal)
			}
		}
		return n
	case *ast.BinOp:
		n.Left = desugarExpr(ctx, n.Left)
		n.Right = desugarExpr(ctx, n.Right)
		return n
	case *ast.BoolOp:
		for i := range n.Values {
			n.Values[i] = desugarExpr(ctx, n.Values[i])
		}
		tmp := ctx.Fresh("$tmp")
		ctx.Emit(&ast.Assign{Target: ast.NewStoreName(tmp), Value: ast.NewBoolConstant(false)})
		var chain ast.Stmt
		if n.Op == ast.And {
			chain = buildAndChain(tmp, n.Values, 0)
		} else {
			chain = buildOrChain(tmp, n.Values, 0)
		}
		ctx.Emit(chain)
		ctx.Dirty = true
		return ast.NewLoadName(tmp)
	case *ast.Compare:
		n.Left = desugarExpr(ctx, n.Left)
		for i := range n.Comparators {
			n.Comparators[i] = desugarExpr(ctx, n.Comparators[i])
		}
		if len(n.Ops) <= 1 || n.Visited {
			return n
		}
		tmp := ctx.Fresh("$tmp")
		ctx.Emit(&ast.Assign{Target: ast.NewStoreName(tmp), Value: ast.NewBoolConstant(false)})
		operands := append([]ast.Expr{n.Left}, n.Comparators...)
		ctx.Emit(buildCompareChain(tmp, operands, n.Ops, 0))
		ctx.Dirty = true
		return ast.NewLoadName(tmp)
	case *ast.IfExp:
		n.Test = desugarExpr(ctx, n.Test)
		n.Body = desugarExpr(ctx, n.Body)
		n.Else = desugarExpr(ctx, n.Else)
		tmp := ctx.Fresh("$tmp")
		ctx.Emit(&ast.If{
			Test: n.Test,
			Body: []ast.Stmt{&ast.Assign{Target: ast.NewStoreName(tmp), Value: n.Body}},
			Else: []ast.Stmt{&ast.Assign{Target: ast.NewStoreName(tmp), Value: n.Else}},
		})
		ctx.Dirty = true
		return ast.NewLoadName(tmp)
	case *ast.Call:
		for i := range n.Args {
			n.Args[i] = desugarExpr(ctx, n.Args[i])
		}
		return n
	case *ast.Lambda:
		return lambdaFreshHoist(ctx, n)
	case *ast.List:
		for i := range n.Elts {
			n.Elts[i] = desugarExpr(ctx, n.Elts[i])
		}
		return n
	case *ast.Dict:
		for i := range n.Keys {
			n.Keys[i] = desugarExpr(ctx, n.Keys[i])
			n.Values[i] = desugarExpr(ctx, n.Values[i])
		}
		return n
	case *ast.Subscript:
		n.Value = desugarExpr(ctx, n.Value)
		n.Slice = desugarExpr(ctx, n.Slice)
		return n
	default:
		return e
	}
}

// buildAndChain materializes `$tmp := false; if v0 then if v1 then
// ... ($tmp := vk) else ($tmp := false) ... else ($tmp := false)`.
func buildAndChain(tmp string, values []ast.Expr, i int) ast.Stmt {
	if i == len(values)-1 {
		return &ast.If{
			Test: values[i],
			Body: []ast.Stmt{&ast.Assign{Target: ast.NewStoreName(tmp), Value: values[i]}},
			Else: []ast.Stmt{&ast.Assign{Target: ast.NewStoreName(tmp), Value: ast.NewBoolConstant(false)}},
		}
	}
	return &ast.If{
		Test: values[i],
		Body: []ast.Stmt{buildAndChain(tmp, values, i+1)},
		Else: []ast.Stmt{&ast.Assign{Target: ast.NewStoreName(tmp), Value: ast.NewBoolConstant(false)}},
	}
}

// buildOrChain is the symmetric counterpart: the first truthy operand
// wins and is assigned as-is; running out of operands falls to false.
func buildOrChain(tmp string, values []ast.Expr, i int) ast.Stmt {
	if i == len(values)-1 {
		return &ast.If{
			Test: values[i],
			Body: []ast.Stmt{&ast.Assign{Target: ast.NewStoreName(tmp), Value: values[i]}},
			Else: []ast.Stmt{&ast.Assign{Target: ast.NewStoreName(tmp), Value: ast.NewBoolConstant(false)}},
		}
	}
	return &ast.If{
		Test: values[i],
		Body: []ast.Stmt{&ast.Assign{Target: ast.NewStoreName(tmp), Value: values[i]}},
		Else: []ast.Stmt{buildOrChain(tmp, values, i+1)},
	}
}

// buildCompareChain turns `a0 op0 a1 op1 a2 ... opk-1 ak` into nested
// Ifs over single Compares, each flagged Visited so the fixed-point
// driver doesn't try to re-desugar an already-simple comparison.
func buildCompareChain(tmp string, operands []ast.Expr, ops []ast.CmpOp, i int) ast.Stmt {
	test := &ast.Compare{Left: operands[i], Ops: []ast.CmpOp{ops[i]}, Comparators: []ast.Expr{operands[i+1]}, Visited: true}
	elseBody := []ast.Stmt{&ast.Assign{Target: ast.NewStoreName(tmp), Value: ast.NewBoolConstant(false)}}
	if i == len(ops)-1 {
		return &ast.If{
			Test: test,
			Body: []ast.Stmt{&ast.Assign{Target: ast.NewStoreName(tmp), Value: ast.NewBoolConstant(true)}},
			Else: elseBody,
		}
	}
	return &ast.If{
		Test: test,
		Body: []ast.Stmt{buildCompareChain(tmp, operands, ops, i+1)},
		Else: elseBody,
	}
}
