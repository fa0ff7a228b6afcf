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
package compile

import (
	"strings"
	"testing"

	"boxc/ast"

	"github.com/stretchr/testify/require"
)

// explicateSource runs validate, the desugar/flatten fixed point and
// stage E+F over src, returning the fully explicated body.
func explicateSource(t *testing.T, src string) []ast.Stmt {
	t.Helper()
	mod := ast.ParseString(src)
	temps := NewTempGenerator()
	require.NoError(t, NewValidator(temps).Validate(mod))
	flat := FixedPointBody(temps, mod.Body)
	return ExplicateAndReflatten(temps, flat)
}

// calleesIn collects every Call.Callee reachable from body, in
// traversal order, so a test can assert the runtime primitives a given
// construct dispatches through without hand-walking the tree itself.
func calleesIn(body []ast.Stmt) []string {
	var out []string
	var walkExpr func(e ast.Expr)
	walkExpr = func(e ast.Expr) {
		switch n := e.(type) {
		case *ast.Call:
			out = append(out, n.Callee)
			for _, a := range n.Args {
				walkExpr(a)
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
		}
	}
	var walkBody func(b []ast.Stmt)
	walkBody = func(b []ast.Stmt) {
		for _, s := range b {
			switch n := s.(type) {
			case *ast.Assign:
				walkExpr(n.Value)
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
	return out
}

func TestExplicateConstantInjectsTag(t *testing.T) {
	body := explicateSource(t, `x = 1;`)
	callees := calleesIn(body)
	require.Contains(t, callees, "inject_int")
}

func TestExplicateAddDispatchesOverTags(t *testing.T) {
	body := explicateSource(t, `x = 1 + 2; print(x);`)
	callees := calleesIn(body)
	require.Contains(t, callees, "is_int")
	require.Contains(t, callees, "is_bool")
	require.Contains(t, callees, "is_big")
	require.Contains(t, callees, "project_int")
	require.Contains(t, callees, "error_pyobj")
}

func TestExplicatePrintCallsPrintAny(t *testing.T) {
	body := explicateSource(t, `print(1);`)
	require.Contains(t, calleesIn(body), "print_any")
}

func TestExplicateEqDispatchesBigEqual(t *testing.T) {
	body := explicateSource(t, `print(1 == 2);`)
	callees := calleesIn(body)
	require.Contains(t, callees, "equal")
	require.Contains(t, callees, "inject_bool")
}

func TestExplicateListLiteralBuildsViaSetSubscript(t *testing.T) {
	body := explicateSource(t, `xs = [1, 2, 3];`)
	callees := calleesIn(body)
	require.Contains(t, callees, "create_list")
	require.Contains(t, callees, "set_subscript")
	require.Contains(t, callees, "inject_big")
}

func TestExplicateDictLiteralBuildsViaSetSubscript(t *testing.T) {
	body := explicateSource(t, `d = {1: 2};`)
	callees := calleesIn(body)
	require.Contains(t, callees, "create_dict")
	require.Contains(t, callees, "set_subscript")
}

func TestExplicateSubscriptAssignGoesThroughSetSubscript(t *testing.T) {
	body := explicateSource(t, `xs = [1, 2, 3]; xs[0] = 9;`)
	callees := calleesIn(body)
	require.Contains(t, callees, "set_subscript")
}

func TestExplicateSubscriptLoadGoesThroughGetSubscript(t *testing.T) {
	body := explicateSource(t, `xs = [1, 2, 3]; print(xs[0]);`)
	callees := calleesIn(body)
	require.Contains(t, callees, "get_subscript")
}

func TestExplicateIfTestWrappedInIsTrue(t *testing.T) {
	body := explicateSource(t, `if 1 == 1 { print(1); } else { print(0); }`)
	// Stage F hoists every non-leaf If test into a temp, so each If's
	// test is a Name assigned by the statement right before it; for the
	// source-level If, that assigned value is the is_true(...) wrapper.
	var found bool
	for i, s := range body {
		ifs, ok := s.(*ast.If)
		if !ok {
			continue
		}
		test, ok := ifs.Test.(*ast.Name)
		require.True(t, ok, "If.Test must be a leaf Name after stage F hoists the test")
		require.Greater(t, i, 0)
		assign, ok := body[i-1].(*ast.Assign)
		require.True(t, ok, "the hoisted If test must be assigned right before the If")
		target, ok := assign.Target.(*ast.Name)
		require.True(t, ok)
		require.Equal(t, test.Id, target.Id)
		if call, ok := assign.Value.(*ast.Call); ok && call.Callee == "is_true" {
			found = true
		}
	}
	require.True(t, found, "expected an If whose test is computed by is_true")
}

// TestExplicateOperandsAreLeaves is a light P6-adjacent smoke check:
// explicate+reflatten must leave every Call argument a leaf (Name or
// Constant), matching the three-address-form postcondition downstream
// IR lowering assumes.
func TestExplicateOperandsAreLeaves(t *testing.T) {
	body := explicateSource(t, `x = (1 + 2) + (3 + 4); print(x);`)
	var walkExpr func(e ast.Expr)
	walkExpr = func(e ast.Expr) {
		if call, ok := e.(*ast.Call); ok {
			for _, a := range call.Args {
				switch a.(type) {
				case *ast.Name, *ast.Constant:
				default:
					t.Fatalf("non-leaf call argument %v (%T)", a, a)
				}
			}
		}
	}
	for _, s := range body {
		switch n := s.(type) {
		case *ast.Assign:
			walkExpr(n.Value)
		case *ast.ExprStmt:
			walkExpr(n.Value)
		}
	}
}

func TestExplicateOutputHasNoSurfaceOperators(t *testing.T) {
	// Once stage E has run, no BinOp/UnaryOp/Compare is the value of a
	// top-level statement: each surface node has been replaced by a
	// dispatch tree over runtime primitive calls. The monomorphic
	// operators inside the dispatch branches are not walked here.
	body := explicateSource(t, `x = 1 + 2; y = -x; z = x == y; print(z);`)
	text := strings.Join(calleesIn(body), ",")
	require.NotEmpty(t, text)

	var walk func(e ast.Expr)
	var found bool
	walk = func(e ast.Expr) {
		switch e.(type) {
		case *ast.BinOp, *ast.UnaryOp, *ast.Compare:
			found = true
		}
	}
	for _, s := range body {
		switch n := s.(type) {
		case *ast.Assign:
			walk(n.Value)
		case *ast.ExprStmt:
			walk(n.Value)
		}
	}
	require.False(t, found, "surface operator node survived explicate")
}
