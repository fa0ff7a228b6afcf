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

// Package runtime documents, but does not implement, the C runtime ABI
// (§6) the assembly stage H.I emits calls against. It is the Go-side
// source of truth for that symbol list: compile.RuntimeStubHeader reads
// it to synthesize the `.pyobjpy` debug header instead of hand-
// duplicating the symbol/arity table in two places.
package runtime

// Symbol names one runtime ABI entry point: its arity and a fake body
// (valid Source) RuntimeStubHeader can print so the entry point exists
// syntactically when the `.pyobjpy` artifact is re-parsed as Source.
type Symbol struct {
	Name    string
	Arity   int
	FakeRet string // a Source expression, the fake body's `return` value
}

// ABI is every symbol emitted assembly may call, per §6. None of these
// are implemented here or anywhere in this module — the runtime itself
// is an external collaborator, same as the assembler and linker.
var ABI = []Symbol{
	{"is_int", 1, "true"},
	{"is_bool", 1, "true"},
	{"is_big", 1, "true"},
	{"project_int", 1, "0"},
	{"project_bool", 1, "0"},
	{"project_big", 1, "0"},
	{"inject_int", 1, "x0"},
	{"inject_bool", 1, "x0"},
	{"inject_big", 1, "x0"},
	{"is_true", 1, "true"},
	{"print_any", 1, "x0"},
	{"eval_input_pyobj", 0, "0"},
	{"create_list", 1, "0"},
	{"create_dict", 0, "0"},
	{"set_subscript", 3, "x0"},
	{"get_subscript", 2, "0"},
	{"add", 2, "x0"},
	{"equal", 2, "true"},
	{"error_pyobj", 0, "0"},
}
