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

// The `.pyobjpy` artifact (§6) must be re-runnable as Source, but the
// explicated program it holds calls runtime predicates (is_int,
// inject_big, ...) no Source-level definition exists for. This file
// synthesizes fake ones from runtime/abi.go's symbol table so the file
// parses and, for debugging purposes, interprets without dying on an
// undefined-callee error.
package compile

import (
	"fmt"
	"strings"

	"boxc/runtime"
)

// RuntimeStubHeader renders a fake Source definition for every ABI
// symbol, to be prepended to the explicated program before it is
// unparsed to `foo.pyobjpy`.
func RuntimeStubHeader() string {
	var b strings.Builder
	b.WriteString("// The following are fake stand-ins for the C runtime ABI (see\n")
	b.WriteString("// runtime/abi.go) so this file re-parses as Source; they carry no\n")
	b.WriteString("// real semantics.\n")
	for _, sym := range runtime.ABI {
		params := make([]string, sym.Arity)
		for i := range params {
			params[i] = fmt.Sprintf("x%d", i)
		}
		fmt.Fprintf(&b, "func %s(%s) {\n    return %s;\n}\n", sym.Name, strings.Join(params, ", "), sym.FakeRet)
	}
	b.WriteString("\n")
	return b.String()
}
