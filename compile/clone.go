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

// Loop rotation (see the While case in desugar.go and flatten.go) runs
// the statements that compute a while's test twice: once before the
// loop, once at the tail of its body. The two copies must not share
// node pointers, so this file provides a plain deep copy.
package compile

import "boxc/ast"

func cloneStmts(body []ast.Stmt) []ast.Stmt {
	out := make([]ast.Stmt, len(body))
	for i, s := range body {
		out[i] = cloneStmt(s)
	}
	return out
}

func cloneStmt(s ast.Stmt) ast.Stmt {
	switch n := s.(type) {
	case *ast.Assign:
		return &ast.Assign{Target: cloneExpr(n.Target), Value: cloneExpr(n.Value)}
	case *ast.ExprStmt:
		return &ast.ExprStmt{Value: cloneExpr(n.Value)}
	case *ast.If:
		return &ast.If{Test: cloneExpr(n.Test), Body: cloneStmts(n.Body), Else: cloneStmts(n.Else)}
	case *ast.While:
		return &ast.While{Test: cloneExpr(n.Test), Body: cloneStmts(n.Body)}
	case *ast.Break:
		return &ast.Break{}
	case *ast.Return:
		if n.Value == nil {
			return &ast.Return{}
		}
		return &ast.Return{Value: cloneExpr(n.Value)}
	case *ast.FunctionDef:
		return &ast.FunctionDef{Name: n.Name, Params: append([]string{}, n.Params...), Body: cloneStmts(n.Body)}
	default:
		return s
	}
}

func cloneExpr(e ast.Expr) ast.Expr {
	switch n := e.(type) {
	case *ast.Constant:
		c := *n
		return &c
	case *ast.Name:
		return &ast.Name{Id: n.Id, Ctx: n.Ctx}
	case *ast.UnaryOp:
		return &ast.UnaryOp{Op: n.Op, Operand: cloneExpr(n.Operand)}
	case *ast.BinOp:
		return &ast.BinOp{Op: n.Op, Left: cloneExpr(n.Left), Right: cloneExpr(n.Right)}
	case *ast.BoolOp:
		vals := make([]ast.Expr, len(n.Values))
		for i, v := range n.Values {
			vals[i] = cloneExpr(v)
		}
		return &ast.BoolOp{Op: n.Op, Values: vals}
	case *ast.Compare:
		cmps := make([]ast.Expr, len(n.Comparators))
		for i, c := range n.Comparators {
			cmps[i] = cloneExpr(c)
		}
		return &ast.Compare{Left: cloneExpr(n.Left), Ops: append([]ast.CmpOp{}, n.Ops...), Comparators: cmps, Visited: n.Visited}
	case *ast.IfExp:
		return &ast.IfExp{Test: cloneExpr(n.Test), Body: cloneExpr(n.Body), Else: cloneExpr(n.Else)}
	case *ast.Call:
		args := make([]ast.Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = cloneExpr(a)
		}
		return &ast.Call{Callee: n.Callee, Args: args}
	case *ast.Lambda:
		return &ast.Lambda{Params: append([]string{}, n.Params...), Body: cloneExpr(n.Body)}
	case *ast.List:
		elts := make([]ast.Expr, len(n.Elts))
		for i, el := range n.Elts {
			elts[i] = cloneExpr(el)
		}
		return &ast.List{Elts: elts}
	case *ast.Dict:
		keys := make([]ast.Expr, len(n.Keys))
		vals := make([]ast.Expr, len(n.Values))
		for i := range n.Keys {
			keys[i] = cloneExpr(n.Keys[i])
			vals[i] = cloneExpr(n.Values[i])
		}
		return &ast.Dict{Keys: keys, Values: vals}
	case *ast.Subscript:
		return &ast.Subscript{Value: cloneExpr(n.Value), Slice: cloneExpr(n.Slice), Ctx: n.Ctx}
	default:
		return e
	}
}
