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
	"testing"

	"boxc/ast"

	"github.com/stretchr/testify/require"
)

func TestValidateRenamesUserIdentifiers(t *testing.T) {
	mod := ast.ParseString(`x = 1; print(x);`)
	temps := NewTempGenerator()
	v := NewValidator(temps)
	require.NoError(t, v.Validate(mod))

	assign := mod.Body[0].(*ast.Assign)
	name := assign.Target.(*ast.Name)
	require.Equal(t, "_x", name.Id)

	exprStmt := mod.Body[1].(*ast.ExprStmt)
	call := exprStmt.Value.(*ast.Call)
	require.Equal(t, "print", call.Callee) // builtin, left alone
	arg := call.Args[0].(*ast.Name)
	require.Equal(t, "_x", arg.Id)
}

func TestValidateRejectsAssignToBuiltin(t *testing.T) {
	mod := ast.ParseString(`print = 1;`)
	v := NewValidator(NewTempGenerator())
	err := v.Validate(mod)
	require.Error(t, err)
}

// input() has no separate `eval` wrapper in this grammar — the bare
// call already denotes the whole eval(input()) unit — so it is valid
// anywhere an argument is accepted, not just as a standalone Assign
// value, matching pyyc's acceptance of `print(eval(input()))`.
func TestValidateAllowsInputAsNestedCallArgument(t *testing.T) {
	mod := ast.ParseString(`print(input());`)
	v := NewValidator(NewTempGenerator())
	require.NoError(t, v.Validate(mod))
}

func TestValidateAllowsEvalInput(t *testing.T) {
	mod := ast.ParseString(`x = input(); print(x);`)
	v := NewValidator(NewTempGenerator())
	require.NoError(t, v.Validate(mod))
}

func TestValidateRegistersRenamedNamesWithTempGenerator(t *testing.T) {
	mod := ast.ParseString(`tmp0 = 1;`)
	temps := NewTempGenerator()
	v := NewValidator(temps)
	require.NoError(t, v.Validate(mod))
	// The user identifier renamed to "_tmp0" must already occupy that
	// slot, so the first fresh name drawn from the same prefix skips
	// past it instead of colliding.
	require.Equal(t, "_tmp1", temps.Fresh("_tmp"))
}
