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

// Stage H.2: naive register allocation. The spec's explicit Non-goal
// ("dataflow-driven register coloring is out of scope; a naive
// allocator that homes every variable to the stack suffices") is the
// same strategy the teacher's own Assembler already used in the
// absence of a register allocator (asm_x86.go: "since we don't have
// register allocation, all virtual registers are actually a stack
// slot") — this frame just assigns that stack slot deterministically
// instead of on first sight during emission.
package compile

import (
	"boxc/compile/codegen"
	"boxc/utils"
)

// frame maps every IRName a function touches to its `-N(%rbp)` home,
// assigned in first-use order starting at -8.
type frame struct {
	slots map[string]int
	next  int
}

func newFrame() *frame {
	return &frame{slots: make(map[string]int), next: -8}
}

// home returns id's stack slot, allocating one if this is the first
// reference.
func (f *frame) home(id string) codegen.Memory {
	off, ok := f.slots[id]
	if !ok {
		off = f.next
		f.slots[id] = off
		f.next -= 8
	}
	return codegen.Memory{Base: codegen.RBP, Disp: off}
}

// size returns the 16-byte-aligned frame size (H.3), matching the
// System V AMD64 requirement that %rsp be 16-byte aligned at a call.
func (f *frame) size() int {
	return utils.Align16(-f.next)
}
