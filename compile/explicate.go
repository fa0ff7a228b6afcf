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

// Stage E (4.E): replace every polymorphic operator with an if-ladder
// over the tag bits of its operands, so the program that comes out
// the other side touches pyobjs only through the monomorphic runtime
// primitives in runtime/abi.go. Stage F (re-flatten) runs right after,
// since the dispatch trees this stage materializes are not
// three-address themselves (Design §4.E: "produced by materializing a
// template AST... Flatten will subsequently three-address-normalize").
package compile

import "boxc/ast"

func callOf(name string, args ...ast.Expr) *ast.Call { return &ast.Call{Callee: name, Args: args} }

func storeName(id string) *ast.Name { return ast.NewStoreName(id) }
func loadName(id string) *ast.Name  { return ast.NewLoadName(id) }

// forceLeaf hoists ee into a fresh temp unless it is already simple.
func forceLeaf(ctx *RewriteCtx, ee ast.Expr) ast.Expr {
	if isSimple(ee) {
		return ee
	}
	tmp := ctx.Fresh("$p")
	ctx.Emit(&ast.Assign{Target: storeName(tmp), Value: ee})
	return loadName(tmp)
}

// explicateOperand explicates e and forces the result to a leaf, for
// positions (operator arguments) that must be simple.
func explicateOperand(ctx *RewriteCtx, e ast.Expr) ast.Expr {
	return forceLeaf(ctx, explicateExpr(ctx, e))
}

func injectFor(c *ast.Constant) ast.Expr {
	if c.IsBool() {
		return callOf("inject_bool", c)
	}
	return callOf("inject_int", c)
}

// tag names, in the fixed dispatch order the if-ladders test them.
var pyTags = []string{"int", "bool", "big"}

func predicateFor(tag string) string { return "is_" + tag }
func projectFor(tag string) string   { return "project_" + tag }

// buildTagDispatch1 builds `if is_int(x) then <int> else if is_bool(x)
// then <bool> else if is_big(x) then <big> else error_pyobj()`,
// assigns the chosen branch to a fresh temp and returns it. cases may
// omit a tag, in which case that branch calls error_pyobj().
func buildTagDispatch1(ctx *RewriteCtx, x ast.Expr, cases map[string]ast.Expr) ast.Expr {
	tmp := ctx.Fresh("$p")
	var build func(i int) ast.Stmt
	build = func(i int) ast.Stmt {
		tag := pyTags[i]
		branch, ok := cases[tag]
		if !ok {
			branch = callOf("error_pyobj")
		}
		var elseBody []ast.Stmt
		if i == len(pyTags)-1 {
			elseBody = []ast.Stmt{&ast.Assign{Target: storeName(tmp), Value: callOf("error_pyobj")}}
		} else {
			elseBody = []ast.Stmt{build(i + 1)}
		}
		return &ast.If{
			Test: callOf(predicateFor(tag), x),
			Body: []ast.Stmt{&ast.Assign{Target: storeName(tmp), Value: branch}},
			Else: elseBody,
		}
	}
	ctx.Emit(build(0))
	return loadName(tmp)
}

// dispatchCase describes one (ltag, rtag) branch of a binary dispatch.
type dispatchCase struct {
	lTag, rTag string
	result     func(l, r ast.Expr) ast.Expr
}

// buildTagDispatch2 is buildTagDispatch1's binary counterpart: a 3x3
// ladder over (tag(l), tag(r)), defaulting to error_pyobj() for any
// combination not present in cases.
func buildTagDispatch2(ctx *RewriteCtx, l, r ast.Expr, cases []dispatchCase) ast.Expr {
	tmp := ctx.Fresh("$p")
	lookup := func(lt, rt string) (func(l, r ast.Expr) ast.Expr, bool) {
		for _, c := range cases {
			if c.lTag == lt && c.rTag == rt {
				return c.result, true
			}
		}
		return nil, false
	}
	errAssign := func() ast.Stmt {
		return &ast.Assign{Target: storeName(tmp), Value: callOf("error_pyobj")}
	}
	var buildR func(lt string, i int) ast.Stmt
	buildR = func(lt string, i int) ast.Stmt {
		rt := pyTags[i]
		var body ast.Stmt
		if fn, ok := lookup(lt, rt); ok {
			body = &ast.Assign{Target: storeName(tmp), Value: fn(l, r)}
		} else {
			body = errAssign()
		}
		var elseBody []ast.Stmt
		if i == len(pyTags)-1 {
			elseBody = []ast.Stmt{errAssign()}
		} else {
			elseBody = []ast.Stmt{buildR(lt, i+1)}
		}
		return &ast.If{Test: callOf(predicateFor(rt), r), Body: []ast.Stmt{body}, Else: elseBody}
	}
	var buildL func(i int) ast.Stmt
	buildL = func(i int) ast.Stmt {
		lt := pyTags[i]
		var elseBody []ast.Stmt
		if i == len(pyTags)-1 {
			elseBody = []ast.Stmt{errAssign()}
		} else {
			elseBody = []ast.Stmt{buildL(i + 1)}
		}
		return &ast.If{Test: callOf(predicateFor(lt), l), Body: []ast.Stmt{buildR(lt, 0)}, Else: elseBody}
	}
	ctx.Emit(buildL(0))
	return loadName(tmp)
}

func scalarSum(l, r ast.Expr, lTag, rTag string) ast.Expr {
	return callOf("inject_int", &ast.BinOp{Op: ast.Add, Left: callOf(projectFor(lTag), l), Right: callOf(projectFor(rTag), r)})
}

func scalarXor(l, r ast.Expr, lTag, rTag string) ast.Expr {
	return callOf("inject_int", &ast.BinOp{Op: ast.BitXor, Left: callOf(projectFor(lTag), l), Right: callOf(projectFor(rTag), r)})
}

func scalarCompare(op ast.CmpOp, l, r ast.Expr, lTag, rTag string) ast.Expr {
	return callOf("inject_bool", &ast.Compare{Left: callOf(projectFor(lTag), l), Ops: []ast.CmpOp{op}, Comparators: []ast.Expr{callOf(projectFor(rTag), r)}})
}

func addCases() []dispatchCase {
	var out []dispatchCase
	for _, lt := range []string{"int", "bool"} {
		for _, rt := range []string{"int", "bool"} {
			lt, rt := lt, rt
			out = append(out, dispatchCase{lt, rt, func(l, r ast.Expr) ast.Expr { return scalarSum(l, r, lt, rt) }})
		}
	}
	out = append(out, dispatchCase{"big", "big", func(l, r ast.Expr) ast.Expr {
		return callOf("inject_big", callOf("add", callOf("project_big", l), callOf("project_big", r)))
	}})
	return out
}

// xorCases mirrors addCases for the BitXor surface operator; there is
// no runtime `xor` helper over big values, so (big,big) falls through
// to the dispatch's default error_pyobj() branch like every other
// unlisted combination.
func xorCases() []dispatchCase {
	var out []dispatchCase
	for _, lt := range []string{"int", "bool"} {
		for _, rt := range []string{"int", "bool"} {
			lt, rt := lt, rt
			out = append(out, dispatchCase{lt, rt, func(l, r ast.Expr) ast.Expr { return scalarXor(l, r, lt, rt) }})
		}
	}
	return out
}

func scalarCompareCases(op ast.CmpOp) []dispatchCase {
	var out []dispatchCase
	for _, lt := range []string{"int", "bool"} {
		for _, rt := range []string{"int", "bool"} {
			lt, rt := lt, rt
			out = append(out, dispatchCase{lt, rt, func(l, r ast.Expr) ast.Expr { return scalarCompare(op, l, r, lt, rt) }})
		}
	}
	return out
}

// eqNeCases additionally defines every scalar/big combination:
// big==big goes through the runtime `equal` helper, and a scalar
// compared against a big is unconditionally False (Eq) or True
// (NotEq) — they can never be the same object.
func eqNeCases(wantEq bool) []dispatchCase {
	out := scalarCompareCases(ast.Eq)
	if !wantEq {
		out = scalarCompareCases(ast.NotEq)
	}
	out = append(out, dispatchCase{"big", "big", func(l, r ast.Expr) ast.Expr {
		raw := callOf("equal", callOf("project_big", l), callOf("project_big", r))
		if wantEq {
			return callOf("inject_bool", raw)
		}
		return callOf("inject_bool", &ast.BinOp{Op: ast.BitXor, Left: raw, Right: ast.NewIntConstant(1)})
	}})
	mismatch := ast.NewBoolConstant(!wantEq)
	for _, lt := range pyTags {
		for _, rt := range pyTags {
			if lt == "big" && rt == "big" {
				continue
			}
			if lt != "big" && rt != "big" {
				continue
			}
			out = append(out, dispatchCase{lt, rt, func(l, r ast.Expr) ast.Expr { return callOf("inject_bool", mismatch) }})
		}
	}
	return out
}

// explicateExpr replaces e with its dispatch-tree expansion. The
// result may itself be compound (e.g. inject_int(BinOp(...))); stage
// F normalizes it. Callers needing a leaf use explicateOperand.
func explicateExpr(ctx *RewriteCtx, e ast.Expr) ast.Expr {
	switch n := e.(type) {
	case *ast.Constant:
		return injectFor(n)
	case *ast.Name:
		return n
	case *ast.UnaryOp:
		x := explicateOperand(ctx, n.Operand)
		if n.Op == ast.Not {
			raw := ctx.Fresh("$p")
			ctx.Emit(&ast.Assign{Target: storeName(raw), Value: callOf("is_true", x)})
			return callOf("inject_bool", &ast.BinOp{Op: ast.BitXor, Left: loadName(raw), Right: ast.NewIntConstant(1)})
		}
		return buildTagDispatch1(ctx, x, map[string]ast.Expr{
			"int":  callOf("inject_int", &ast.UnaryOp{Op: ast.USub, Operand: callOf("project_int", x)}),
			"bool": callOf("inject_int", &ast.UnaryOp{Op: ast.USub, Operand: callOf("project_bool", x)}),
		})
	case *ast.BinOp:
		l := explicateOperand(ctx, n.Left)
		r := explicateOperand(ctx, n.Right)
		if n.Op == ast.Add {
			return buildTagDispatch2(ctx, l, r, addCases())
		}
		return buildTagDispatch2(ctx, l, r, xorCases())
	case *ast.Compare:
		l := explicateOperand(ctx, n.Left)
		r := explicateOperand(ctx, n.Comparators[0])
		switch n.Ops[0] {
		case ast.Eq:
			return buildTagDispatch2(ctx, l, r, eqNeCases(true))
		case ast.NotEq:
			return buildTagDispatch2(ctx, l, r, eqNeCases(false))
		default:
			return buildTagDispatch2(ctx, l, r, scalarCompareCases(n.Ops[0]))
		}
	case *ast.Call:
		switch n.Callee {
		case "print":
			arg := explicateOperand(ctx, n.Args[0])
			return callOf("print_any", arg)
		case "input":
			return callOf("eval_input_pyobj")
		case "int":
			x := explicateOperand(ctx, n.Args[0])
			return buildTagDispatch1(ctx, x, map[string]ast.Expr{
				"int":  x,
				"bool": callOf("inject_int", callOf("project_bool", x)),
			})
		default:
			args := make([]ast.Expr, len(n.Args))
			for i, a := range n.Args {
				args[i] = explicateOperand(ctx, a)
			}
			return &ast.Call{Callee: n.Callee, Args: args}
		}
	case *ast.List:
		elts := make([]ast.Expr, len(n.Elts))
		for i, elt := range n.Elts {
			elts[i] = explicateOperand(ctx, elt)
		}
		raw := ctx.Fresh("$raw")
		ctx.Emit(&ast.Assign{Target: storeName(raw), Value: callOf("create_list", callOf("inject_int", ast.NewIntConstant(int64(len(elts)))))})
		big := ctx.Fresh("$p")
		ctx.Emit(&ast.Assign{Target: storeName(big), Value: callOf("inject_big", loadName(raw))})
		for i, elt := range elts {
			ctx.Emit(&ast.ExprStmt{Value: callOf("set_subscript", loadName(big), callOf("inject_int", ast.NewIntConstant(int64(i))), elt)})
		}
		return loadName(big)
	case *ast.Dict:
		keys := make([]ast.Expr, len(n.Keys))
		vals := make([]ast.Expr, len(n.Values))
		for i := range n.Keys {
			keys[i] = explicateOperand(ctx, n.Keys[i])
			vals[i] = explicateOperand(ctx, n.Values[i])
		}
		raw := ctx.Fresh("$raw")
		ctx.Emit(&ast.Assign{Target: storeName(raw), Value: callOf("create_dict")})
		big := ctx.Fresh("$p")
		ctx.Emit(&ast.Assign{Target: storeName(big), Value: callOf("inject_big", loadName(raw))})
		for i := range keys {
			ctx.Emit(&ast.ExprStmt{Value: callOf("set_subscript", loadName(big), keys[i], vals[i])})
		}
		return loadName(big)
	case *ast.Subscript:
		container := explicateOperand(ctx, n.Value)
		key := explicateOperand(ctx, n.Slice)
		return callOf("get_subscript", container, key)
	default:
		return e
	}
}

func explicateStmt(ctx *RewriteCtx, s ast.Stmt) {
	switch n := s.(type) {
	case *ast.Assign:
		if sub, ok := n.Target.(*ast.Subscript); ok {
			container := explicateOperand(ctx, sub.Value)
			key := explicateOperand(ctx, sub.Slice)
			val := explicateOperand(ctx, n.Value)
			ctx.Emit(&ast.ExprStmt{Value: callOf("set_subscript", container, key, val)})
			return
		}
		n.Value = explicateExpr(ctx, n.Value)
		ctx.Emit(n)
	case *ast.ExprStmt:
		n.Value = explicateExpr(ctx, n.Value)
		ctx.Emit(n)
	case *ast.If:
		n.Test = callOf("is_true", explicateOperand(ctx, n.Test))
		n.Body = ExplicateAndReflatten(ctx.Temps, n.Body)
		n.Else = ExplicateAndReflatten(ctx.Temps, n.Else)
		ctx.Emit(n)
	case *ast.While:
		n.Test = callOf("is_true", explicateOperand(ctx, n.Test))
		n.Body = ExplicateAndReflatten(ctx.Temps, n.Body)
		ctx.Emit(n)
	case *ast.Break:
		ctx.Emit(n)
	case *ast.Return:
		if n.Value != nil {
			n.Value = forceLeaf(ctx, explicateExpr(ctx, n.Value))
		}
		ctx.Emit(n)
	default:
		ctx.Emit(s)
	}
}

// ExplicateAndReflatten runs stage E once over body (its recursive
// descent already normalizes nesting in one walk, same as Desugar)
// and then stage F to three-address-normalize whatever dispatch trees
// it materialized.
func ExplicateAndReflatten(temps *TempGenerator, body []ast.Stmt) []ast.Stmt {
	ectx := NewRewriteCtx(temps)
	explicated := ectx.RewriteBody(body, func(s ast.Stmt) { explicateStmt(ectx, s) })
	return FixedPointBody(temps, explicated)
}
