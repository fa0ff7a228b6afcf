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

// P9 (determinism): compiling the same source twice must produce
// byte-identical IR and x86 output. go-spew's Sdump, configured below
// to sort map keys and leave out pointer addresses, gives each run a
// stable, field-by-field text rendering of the IR/x86 trees, so two
// runs can be diffed as plain strings instead of writing a bespoke
// structural-equality walk for every node kind stage G/H define.
package compile

import (
	"testing"

	"boxc/ast"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"
)

var stableSpew = &spew.ConfigState{Indent: " ", SortKeys: true, DisablePointerAddresses: true, DisableCapacities: true}

func compileToIRModule(t *testing.T, src string) *IRModule {
	t.Helper()
	mod := ast.ParseString(src)
	temps := NewTempGenerator()
	require.NoError(t, NewValidator(temps).Validate(mod))
	mod.Body = FixedPointBody(temps, mod.Body)
	mainBody, fns := ClosureConvert(mod)
	mainBody = ExplicateAndReflatten(temps, mainBody)
	for _, fn := range fns {
		fn.Body = ExplicateAndReflatten(temps, fn.Body)
	}
	irMod := LowerModule(temps, mainBody, fns)
	require.NoError(t, VerifyModule(irMod))
	return irMod
}

func TestIRLoweringIsDeterministic(t *testing.T) {
	const src = `
		k = 10;
		func addK(x) {
			return x + k;
		}
		xs = [1, 2, 3];
		print(addK(xs[0]));
	`
	first := stableSpew.Sdump(compileToIRModule(t, src))
	second := stableSpew.Sdump(compileToIRModule(t, src))
	require.Equal(t, first, second, "identical source must lower to byte-identical IR across runs")
}

func TestX86LoweringIsDeterministic(t *testing.T) {
	const src = `x = 1 + 2; print(x == 3);`
	firstIR := compileToIRModule(t, src)
	secondIR := compileToIRModule(t, src)

	firstAsm := LowerToX86(firstIR)
	secondAsm := LowerToX86(secondIR)
	require.NoError(t, VerifyLegal(firstAsm))
	require.NoError(t, VerifyLegal(secondAsm))

	require.Equal(t, stableSpew.Sdump(firstAsm), stableSpew.Sdump(secondAsm))
	require.Equal(t, EmitAssembly(firstAsm), EmitAssembly(secondAsm))
}
