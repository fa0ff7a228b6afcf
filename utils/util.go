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
package utils

// Any reports whether c equals any of cs; the lexer uses it to test a
// lookahead byte against a small whitespace set without a switch.
func Any[T comparable](c T, cs ...T) bool {
	for _, cc := range cs {
		if c == cc {
			return true
		}
	}
	return false
}

// Unimplement marks a code path this backend never exercises (e.g.
// codegen.ArgReg asked for a register past the sixth argument, which
// x86lower.go never does: it passes those arguments on the stack).
func Unimplement() {
	panic("Not implement yet")
}

// ShouldNotReachHere marks a path a prior pass's own postcondition
// rules out; reaching it means an earlier invariant broke.
func ShouldNotReachHere() {
	panic("Should not reach here")
}

// Align16 rounds n up to the next multiple of 16, the System V AMD64
// stack-alignment requirement a call site's frame size must satisfy
// (H.3, P8).
func Align16(n int) int {
	return (n + 15) &^ 15
}
