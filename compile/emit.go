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

// Stage H.I: print the legalized instruction stream as AT&T-syntax
// text — the final `foo.s` artifact (§6). Every Instruction already
// knows its own canonical textual form (codegen/lir.go's String
// methods); this file only owns section layout and indentation.
package compile

import "strings"

// EmitAssembly renders every lowered function into one `.s` file body.
func EmitAssembly(fns []*asmFunction) string {
	var b strings.Builder
	b.WriteString("\t.text\n")
	for _, f := range fns {
		for _, insn := range f.Body {
			writeInsn(&b, insn)
		}
		b.WriteString("\n")
	}
	b.WriteString("\t.section .note.GNU-stack,\"\",@progbits\n")
	return b.String()
}

func writeInsn(b *strings.Builder, insn interface{ String() string }) {
	line := insn.String()
	if strings.HasSuffix(line, ":") || strings.HasPrefix(line, ".") {
		b.WriteString(line)
		b.WriteString("\n")
		return
	}
	b.WriteString("\t")
	b.WriteString(line)
	b.WriteString("\n")
}
