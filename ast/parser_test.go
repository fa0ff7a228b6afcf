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
package ast

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAssignAndExprStmt(t *testing.T) {
	mod := ParseString(`x = 1 + 2; print(x);`)
	require.Len(t, mod.Body, 2)

	assign, ok := mod.Body[0].(*Assign)
	require.True(t, ok)
	name, ok := assign.Target.(*Name)
	require.True(t, ok)
	require.Equal(t, "x", name.Id)
	require.Equal(t, Store, name.Ctx)
	bin, ok := assign.Value.(*BinOp)
	require.True(t, ok)
	require.Equal(t, Add, bin.Op)

	exprStmt, ok := mod.Body[1].(*ExprStmt)
	require.True(t, ok)
	call, ok := exprStmt.Value.(*Call)
	require.True(t, ok)
	require.Equal(t, "print", call.Callee)
}

func TestParseIfElse(t *testing.T) {
	mod := ParseString(`
		if 1 < 2 {
			print(1);
		} else {
			print(0);
		}
	`)
	require.Len(t, mod.Body, 1)
	ifs, ok := mod.Body[0].(*If)
	require.True(t, ok)
	cmp, ok := ifs.Test.(*Compare)
	require.True(t, ok)
	require.Equal(t, []CmpOp{Lt}, cmp.Ops)
	require.Len(t, ifs.Body, 1)
	require.Len(t, ifs.Else, 1)
}

func TestParseChainedCompare(t *testing.T) {
	mod := ParseString(`print(1 < 2 < 3);`)
	call := mod.Body[0].(*ExprStmt).Value.(*Call)
	cmp := call.Args[0].(*Compare)
	require.Equal(t, []CmpOp{Lt, Lt}, cmp.Ops)
	require.Len(t, cmp.Comparators, 2)
}

func TestParseWhileBreak(t *testing.T) {
	mod := ParseString(`
		n = 0;
		while n < 3 {
			print(n);
			n = n + 1;
		}
	`)
	require.Len(t, mod.Body, 2)
	wh, ok := mod.Body[1].(*While)
	require.True(t, ok)
	require.Len(t, wh.Body, 2)
}

func TestParseFunctionDefAndCall(t *testing.T) {
	mod := ParseString(`
		func add(a, b) {
			return a + b;
		}
		print(add(1, 2));
	`)
	require.Len(t, mod.Body, 2)
	fn, ok := mod.Body[0].(*FunctionDef)
	require.True(t, ok)
	require.Equal(t, "add", fn.Name)
	require.Equal(t, []string{"a", "b"}, fn.Params)
}

func TestParseLambda(t *testing.T) {
	mod := ParseString(`f = \(x) -> x + 1; print(f(41));`)
	assign := mod.Body[0].(*Assign)
	lam, ok := assign.Value.(*Lambda)
	require.True(t, ok)
	require.Equal(t, []string{"x"}, lam.Params)
}

func TestParseTernary(t *testing.T) {
	mod := ParseString(`x = 1 < 2 ? 10 : 20;`)
	assign := mod.Body[0].(*Assign)
	ifexp, ok := assign.Value.(*IfExp)
	require.True(t, ok)
	require.NotNil(t, ifexp.Test)
}

func TestParseListDictSubscript(t *testing.T) {
	mod := ParseString(`
		xs = [10, 20, 30];
		print(xs[1] + xs[2]);
		d = {1: 2, 3: 4};
		d[1] = 5;
	`)
	require.Len(t, mod.Body, 4)
	assign := mod.Body[0].(*Assign)
	list, ok := assign.Value.(*List)
	require.True(t, ok)
	require.Len(t, list.Elts, 3)

	dictAssign := mod.Body[2].(*Assign)
	dict, ok := dictAssign.Value.(*Dict)
	require.True(t, ok)
	require.Len(t, dict.Keys, 2)

	subAssign := mod.Body[3].(*Assign)
	sub, ok := subAssign.Target.(*Subscript)
	require.True(t, ok)
	require.Equal(t, Store, sub.Ctx)
}

func TestParseBoolOpsAndNot(t *testing.T) {
	mod := ParseString(`print(true and false or not true);`)
	call := mod.Body[0].(*ExprStmt).Value.(*Call)
	boolop, ok := call.Args[0].(*BoolOp)
	require.True(t, ok)
	require.Equal(t, Or, boolop.Op)
	require.Len(t, boolop.Values, 2)
	require.IsType(t, &BoolOp{}, boolop.Values[0])
}

func TestParseIntLiteralRange(t *testing.T) {
	// Exactly at the accepted boundary (maxSourceInt, §Open Question 2).
	mod := ParseString(`x = 2305843009213693951;`)
	assign := mod.Body[0].(*Assign)
	c, ok := assign.Value.(*Constant)
	require.True(t, ok)
	require.True(t, c.IsInt())
	require.Equal(t, int64(2305843009213693951), c.IntVal)
}
