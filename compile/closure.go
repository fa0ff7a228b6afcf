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

// Stage D (4.D): hoist every FunctionDef, at any nesting depth, to a
// flat top-level list, and turn each one's free variables into
// leading parameters supplied explicitly by every call site.
//
// hoistFunctions detaches every FunctionDef before any free variable
// is computed, so a middle function's body no longer contains its
// nested callee's statements to walk — only a Call to it. A capture
// needed three levels deep (inner uses a, middle calls inner, outer
// defines a) therefore cannot be seen by looking at middle's body in
// isolation: middle must also treat any free variable inner still
// needs as something it itself references, transitively, the same way
// pyyc's closure.py sees it by recursing straight through nested
// FunctionDefs with a plain ast.NodeVisitor before anything is
// hoisted. computeFreeVarsFixedPoint re-derives every function's free
// variables from its own body plus its callees' currently-known free
// variables, repeating until nothing changes — free-variable sets
// only grow across iterations, so this always reaches a fixed point.
package compile

import (
	"boxc/ast"
	"boxc/utils"
	"sort"
)

// ClosureConvert returns the flattened statement list for an implicit
// `main` (the Module's own body with every FunctionDef removed) and
// the flat list of hoisted, now closure-free functions.
func ClosureConvert(mod *ast.Module) ([]ast.Stmt, []*ast.FunctionDef) {
	mainBody, fns := hoistFunctions(mod.Body)

	freeVarsOf := computeFreeVarsFixedPoint(fns)
	for _, fn := range fns {
		if free := freeVarsOf[fn.Name]; len(free) > 0 {
			fn.Params = append(append([]string{}, free...), fn.Params...)
		}
	}

	rewriteCallSitesBody(mainBody, freeVarsOf)
	for _, fn := range fns {
		rewriteCallSitesBody(fn.Body, freeVarsOf)
	}
	return mainBody, fns
}

// computeFreeVarsFixedPoint derives every hoisted function's free
// variables, transitively through its callees, to a fixed point: a
// function's free variables are whatever its own body references that
// it doesn't define, plus — for every function it calls — any free
// variable that callee still needs once its own free variables are
// known. A free-variable set can only grow from one iteration to the
// next, so re-deriving every function until none changes terminates
// and is sufficient (no dirty-bit bookkeeping per function needed).
func computeFreeVarsFixedPoint(fns []*ast.FunctionDef) map[string][]string {
	freeVarsOf := make(map[string][]string)
	for dirty := true; dirty; {
		dirty = false
		for _, fn := range fns {
			next := freeVars(fn.Params, fn.Body, freeVarsOf)
			if !sameStrings(next, freeVarsOf[fn.Name]) {
				freeVarsOf[fn.Name] = next
				dirty = true
			}
		}
	}
	return freeVarsOf
}

func sameStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// hoistFunctions walks body, recursively hoisting every FunctionDef
// (wherever it is nested — directly in body, or inside an If/While
// arm) out into a flat slice, innermost first.
func hoistFunctions(body []ast.Stmt) ([]ast.Stmt, []*ast.FunctionDef) {
	var remaining []ast.Stmt
	var hoisted []*ast.FunctionDef
	for _, s := range body {
		switch n := s.(type) {
		case *ast.FunctionDef:
			innerBody, innerHoisted := hoistFunctions(n.Body)
			n.Body = innerBody
			hoisted = append(hoisted, innerHoisted...)
			hoisted = append(hoisted, n)
		case *ast.If:
			var h1, h2 []*ast.FunctionDef
			n.Body, h1 = hoistFunctions(n.Body)
			n.Else, h2 = hoistFunctions(n.Else)
			hoisted = append(hoisted, h1...)
			hoisted = append(hoisted, h2...)
			remaining = append(remaining, n)
		case *ast.While:
			var h3 []*ast.FunctionDef
			n.Body, h3 = hoistFunctions(n.Body)
			hoisted = append(hoisted, h3...)
			remaining = append(remaining, n)
		default:
			remaining = append(remaining, s)
		}
	}
	return remaining, hoisted
}

// freeVars computes used(Load) - defined(params ∪ Store) over body,
// sorted lexicographically (Open Question 3: the source's set
// iteration order is non-deterministic; this spec fixes it). A call to
// a function already known (in freeVarsOf) to need free variables of
// its own counts each of those names as used here too, so a capture
// needed several call levels deep propagates up to every caller in
// between (see the package comment).
func freeVars(params []string, body []ast.Stmt, freeVarsOf map[string][]string) []string {
	defined := utils.NewSet[string]()
	for _, p := range params {
		defined.Add(p)
	}
	used := utils.NewSet[string]()
	collectNames(body, used, defined, freeVarsOf)

	var free []string
	used.ForEach(func(id string) {
		if !defined.Contains(id) && !Builtins[id] {
			free = append(free, id)
		}
	})
	sort.Strings(free)
	return free
}

func collectNames(body []ast.Stmt, used, defined *utils.Set[string], freeVarsOf map[string][]string) {
	var walkExpr func(e ast.Expr)
	walkExpr = func(e ast.Expr) {
		switch n := e.(type) {
		case *ast.Constant:
		case *ast.Name:
			if n.Ctx == ast.Store {
				defined.Add(n.Id)
			} else {
				used.Add(n.Id)
			}
		case *ast.UnaryOp:
			walkExpr(n.Operand)
		case *ast.BinOp:
			walkExpr(n.Left)
			walkExpr(n.Right)
		case *ast.Compare:
			walkExpr(n.Left)
			for _, c := range n.Comparators {
				walkExpr(c)
			}
		case *ast.Call:
			for _, a := range n.Args {
				walkExpr(a)
			}
			for _, fv := range freeVarsOf[n.Callee] {
				used.Add(fv)
			}
		case *ast.List:
			for _, elt := range n.Elts {
				walkExpr(elt)
			}
		case *ast.Dict:
			for i := range n.Keys {
				walkExpr(n.Keys[i])
				walkExpr(n.Values[i])
			}
		case *ast.Subscript:
			walkExpr(n.Value)
			walkExpr(n.Slice)
		}
	}
	var walkBody func(b []ast.Stmt)
	walkBody = func(b []ast.Stmt) {
		for _, s := range b {
			switch n := s.(type) {
			case *ast.Assign:
				walkExpr(n.Value)
				walkExpr(n.Target)
			case *ast.ExprStmt:
				walkExpr(n.Value)
			case *ast.If:
				walkExpr(n.Test)
				walkBody(n.Body)
				walkBody(n.Else)
			case *ast.While:
				walkExpr(n.Test)
				walkBody(n.Body)
			case *ast.Return:
				if n.Value != nil {
					walkExpr(n.Value)
				}
			}
		}
	}
	walkBody(body)
}

// rewriteCallSitesBody prepends each free variable as a leading
// argument at every call to a function that needed one.
func rewriteCallSitesBody(body []ast.Stmt, freeVarsOf map[string][]string) {
	var walkExpr func(e ast.Expr)
	walkExpr = func(e ast.Expr) {
		switch n := e.(type) {
		case *ast.UnaryOp:
			walkExpr(n.Operand)
		case *ast.BinOp:
			walkExpr(n.Left)
			walkExpr(n.Right)
		case *ast.Compare:
			walkExpr(n.Left)
			for _, c := range n.Comparators {
				walkExpr(c)
			}
		case *ast.Call:
			for _, a := range n.Args {
				walkExpr(a)
			}
			if free, ok := freeVarsOf[n.Callee]; ok {
				leading := make([]ast.Expr, len(free))
				for i, id := range free {
					leading[i] = ast.NewLoadName(id)
				}
				n.Args = append(leading, n.Args...)
			}
		case *ast.List:
			for _, elt := range n.Elts {
				walkExpr(elt)
			}
		case *ast.Dict:
			for i := range n.Keys {
				walkExpr(n.Keys[i])
				walkExpr(n.Values[i])
			}
		case *ast.Subscript:
			walkExpr(n.Value)
			walkExpr(n.Slice)
		}
	}
	var walkBody func(b []ast.Stmt)
	walkBody = func(b []ast.Stmt) {
		for _, s := range b {
			switch n := s.(type) {
			case *ast.Assign:
				walkExpr(n.Value)
				walkExpr(n.Target)
			case *ast.ExprStmt:
				walkExpr(n.Value)
			case *ast.If:
				walkExpr(n.Test)
				walkBody(n.Body)
				walkBody(n.Else)
			case *ast.While:
				walkExpr(n.Test)
				walkBody(n.Body)
			case *ast.Return:
				if n.Value != nil {
					walkExpr(n.Value)
				}
			}
		}
	}
	walkBody(body)
}
