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

// Stage C (4.C): reduce every nested expression to three-address
// form. An operand of a compound expression must be a simple node
// (Constant or Name); whenever one isn't, flattenOperand hoists it
// into a fresh temp assigned in the statement body currently under
// construction and substitutes a Name(load) in its place.
package compile

import "boxc/ast"

func isSimple(e ast.Expr) bool {
	switch e.(type) {
	case *ast.Constant, *ast.Name:
		return true
	}
	return false
}

// flattenOperand flattens e's own children (if any), then, if e
// itself isn't already simple, hoists it to a temp and returns a
// Name(load) referencing it.
func flattenOperand(ctx *RewriteCtx, e ast.Expr) ast.Expr {
	flat := flattenExpr(ctx, e)
	if isSimple(flat) {
		return flat
	}
	tmp := ctx.Fresh("$t")
	ctx.Emit(&ast.Assign{Target: ast.NewStoreName(tmp), Value: flat})
	ctx.Dirty = true
	return ast.NewLoadName(tmp)
}

// flattenExpr flattens every child of e to a simple operand, but
// leaves e itself compound — callers that need a leaf use
// flattenOperand instead.
func flattenExpr(ctx *RewriteCtx, e ast.Expr) ast.Expr {
	switch n := e.(type) {
	case *ast.Constant, *ast.Name:
		return n
	case *ast.UnaryOp:
		n.Operand = flattenOperand(ctx, n.Operand)
		return n
	case *ast.BinOp:
		n.Left = flattenOperand(ctx, n.Left)
		n.Right = flattenOperand(ctx, n.Right)
		return n
	case *ast.Compare:
		n.Left = flattenOperand(ctx, n.Left)
		for i := range n.Comparators {
			n.Comparators[i] = flattenOperand(ctx, n.Comparators[i])
		}
		return n
	case *ast.Call:
		for i := range n.Args {
			n.Args[i] = flattenOperand(ctx, n.Args[i])
		}
		return n
	case *ast.List:
		for i := range n.Elts {
			n.Elts[i] = flattenOperand(ctx, n.Elts[i])
		}
		return n
	case *ast.Dict:
		for i := range n.Keys {
			n.Keys[i] = flattenOperand(ctx, n.Keys[i])
			n.Values[i] = flattenOperand(ctx, n.Values[i])
		}
		return n
	case *ast.Subscript:
		n.Value = flattenOperand(ctx, n.Value)
		n.Slice = flattenOperand(ctx, n.Slice)
		return n
	default:
		// IfExp/Lambda/BoolOp/chained-Compare never survive a prior
		// Desugar pass (P3); treat them as opaque if seen anyway, a
		// later fixed-point iteration will have desugared them.
		return e
	}
}

func flattenStmt(ctx *RewriteCtx, s ast.Stmt) {
	switch n := s.(type) {
	case *ast.Assign:
		if sub, ok := n.Target.(*ast.Subscript); ok {
			sub.Value = flattenOperand(ctx, sub.Value)
			sub.Slice = flattenOperand(ctx, sub.Slice)
		}
		n.Value = flattenExpr(ctx, n.Value)
		ctx.Emit(n)
	case *ast.ExprStmt:
		n.Value = flattenExpr(ctx, n.Value)
		ctx.Emit(n)
	case *ast.If:
		n.Test = flattenOperand(ctx, n.Test)
		ctx.Emit(n)
	case *ast.While:
		// Same loop-rotation concern as desugar.go's While case: a
		// compound test hoists helper statements (e.g. the is_true(...)
		// call Explicate wraps every test in) that must re-run on every
		// iteration, not just once before the loop is entered.
		preludeCtx := NewRewriteCtx(ctx.Temps)
		preludeCtx.Enter()
		n.Test = flattenOperand(preludeCtx, n.Test)
		prelude := preludeCtx.Leave()
		for _, p := range prelude {
			ctx.Emit(p)
		}
		if len(prelude) > 0 {
			ctx.Dirty = true
		}
		n.Body = append(n.Body, cloneStmts(prelude)...)
		ctx.Emit(n)
	case *ast.Break:
		ctx.Emit(n)
	case *ast.Return:
		if n.Value != nil {
			n.Value = flattenOperand(ctx, n.Value)
		}
		ctx.Emit(n)
	case *ast.FunctionDef:
		ctx.Emit(n)
	default:
		ctx.Emit(s)
	}
}

// FixedPointBody runs Desugar then Flatten over body until a full
// round-trip makes no change (§4.B driver; Design Notes §9 tracks a
// dirty bit instead of comparing pretty-printed text). Every nested
// scope (If/While/FunctionDef bodies) is fixed-pointed independently,
// before the enclosing body's own pass sees it, so hoisted statements
// never cross a scope boundary.
func FixedPointBody(temps *TempGenerator, body []ast.Stmt) []ast.Stmt {
	for {
		dctx := NewRewriteCtx(temps)
		desugared := dctx.RewriteBody(body, func(s ast.Stmt) { desugarStmt(dctx, s) })

		fctx := NewRewriteCtx(temps)
		flattened := fctx.RewriteBody(desugared, func(s ast.Stmt) { flattenStmt(fctx, s) })

		body = flattened
		if !dctx.Dirty && !fctx.Dirty {
			return body
		}
	}
}
