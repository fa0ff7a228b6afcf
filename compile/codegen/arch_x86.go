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
package codegen

import "boxc/utils"

// Reference
// https://web.stanford.edu/class/cs107/resources/x86-64-reference.pdf
// https://www.cs.cmu.edu/afs/cs/academic/class/15213-s20/www/recitations/x86-cheat-sheet.pdf
//
// Every pyobj is a single 64-bit word, so unlike the teacher's original
// multi-width ISA surface (byte/word/dword/qword/xmm), this backend
// only ever moves qwords between registers and stack homes, with one
// exception: Setcc (4.H) can only target an 8-bit register, so the
// low-byte aliases of the general-purpose registers are kept too.

var (
	BadReg = Register{Name: "badreg"}

	RAX = Register{Name: "rax", Affinity: 0}
	RBX = Register{Name: "rbx", Affinity: 1}
	RCX = Register{Name: "rcx", Affinity: 2}
	RDX = Register{Name: "rdx", Affinity: 3}
	RSI = Register{Name: "rsi", Affinity: 4}
	RDI = Register{Name: "rdi", Affinity: 5}
	RSP = Register{Name: "rsp", Affinity: 6}
	RBP = Register{Name: "rbp", Affinity: 7}
	R8  = Register{Name: "r8", Affinity: 8}
	R9  = Register{Name: "r9", Affinity: 9}
	R10 = Register{Name: "r10", Affinity: 10}
	R11 = Register{Name: "r11", Affinity: 11}
	R12 = Register{Name: "r12", Affinity: 12}
	R13 = Register{Name: "r13", Affinity: 13}
	R14 = Register{Name: "r14", Affinity: 14}
	R15 = Register{Name: "r15", Affinity: 15}

	AL   = Register{Name: "al", Affinity: 0, Byte: true}
	BL   = Register{Name: "bl", Affinity: 1, Byte: true}
	CL   = Register{Name: "cl", Affinity: 2, Byte: true}
	DL   = Register{Name: "dl", Affinity: 3, Byte: true}
	SIL  = Register{Name: "sil", Affinity: 4, Byte: true}
	DIL  = Register{Name: "dil", Affinity: 5, Byte: true}
	R8B  = Register{Name: "r8b", Affinity: 8, Byte: true}
	R9B  = Register{Name: "r9b", Affinity: 9, Byte: true}
	R10B = Register{Name: "r10b", Affinity: 10, Byte: true}
	R11B = Register{Name: "r11b", Affinity: 11, Byte: true}
)

var byteByAffinity = map[int]Register{0: AL, 1: BL, 2: CL, 3: DL, 4: SIL, 5: DIL, 8: R8B, 9: R9B, 10: R10B, 11: R11B}

// LowByte returns r's 8-bit alias, the only width Setcc is legal
// against (I5).
func (r Register) LowByte() Register {
	if b, ok := byteByAffinity[r.Affinity]; ok {
		return b
	}
	utils.ShouldNotReachHere()
	return BadReg
}

// scratch registers: caller-saved and never produced by ArgReg/ReturnReg,
// so legalization (H.1/H.2) can freely clobber them between one
// memory-operand instruction and the next.
var ScratchA = R10
var ScratchB = R11

func ReturnReg() Register { return RAX }

// CallerSaveRegs are clobbered across any `call` per the System V
// AMD64 ABI; a value live across a call must already be in its stack
// home (H.2 gives every variable one regardless).
func CallerSaveRegs() []Register {
	return []Register{RAX, RCX, RDX, RSI, RDI, R8, R9, R10, R11}
}

func CalleeSaveRegs() []Register {
	return []Register{RBX, RBP, R12, R13, R14, R15}
}

// ArgReg returns the System V AMD64 integer argument register for
// position idx (0-based), valid only for the first 6 arguments; the
// 7th and beyond are passed on the stack (x86lower.go's IRCall case
// and its callee prologue), per the calling convention, and never
// reach this function.
func ArgReg(idx int) Register {
	regs := []Register{RDI, RSI, RDX, RCX, R8, R9}
	if idx >= len(regs) {
		utils.Unimplement()
	}
	return regs[idx]
}
