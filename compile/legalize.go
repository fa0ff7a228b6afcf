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

// I5 is the contract x86lower.go's routing-through-a-scratch-register
// discipline is supposed to make true by construction: no instruction
// ever carries two Memory operands, no Cmp carries two Immediates, and
// every Setcc targets an 8-bit register. VerifyLegal checks that claim
// mechanically instead of trusting it, the way stage H.I's emitter
// is told to "assert each instruction's legality invariant" before
// printing a single line.
package compile

import (
	"fmt"

	"boxc/compile/codegen"
)

func isMemOperand(o codegen.Operand) bool {
	_, ok := o.(codegen.Memory)
	return ok
}

func isImmOperand(o codegen.Operand) bool {
	_, ok := o.(codegen.Immediate)
	return ok
}

// VerifyLegal walks every lowered function and returns an error naming
// the first instruction that violates I5.
func VerifyLegal(fns []*asmFunction) error {
	for _, f := range fns {
		for i, insn := range f.Body {
			if err := verifyInsn(insn); err != nil {
				return fmt.Errorf("I5 violation in %s at instruction %d (%s): %w", f.Label, i, insn, err)
			}
		}
	}
	return nil
}

func verifyInsn(insn codegen.Instruction) error {
	switch n := insn.(type) {
	case *codegen.Mov64:
		return checkTwoOperand(n.Src, n.Dst)
	case *codegen.Add:
		return checkTwoOperand(n.Src, n.Dst)
	case *codegen.Sub:
		return checkTwoOperand(n.Src, n.Dst)
	case *codegen.Xor:
		return checkTwoOperand(n.Src, n.Dst)
	case *codegen.Cmp:
		if isMemOperand(n.Src) && isMemOperand(n.Dst) {
			return fmt.Errorf("cmp has two memory operands")
		}
		if isImmOperand(n.Src) && isImmOperand(n.Dst) {
			return fmt.Errorf("cmp has two immediate operands")
		}
		return nil
	case *codegen.Setcc:
		if !n.Dst.Byte {
			return fmt.Errorf("setcc target %s is not an 8-bit register", n.Dst)
		}
		return nil
	}
	return nil
}

func checkTwoOperand(src, dst codegen.Operand) error {
	if isMemOperand(src) && isMemOperand(dst) {
		return fmt.Errorf("instruction has two memory operands")
	}
	return nil
}
