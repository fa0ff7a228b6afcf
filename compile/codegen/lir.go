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

// The x86 IR (3.3): the operand and instruction set stage H lowers
// IRModule into, and stage I prints as AT&T-syntax assembly. It is a
// two-operand form — x86-64's native shape — rather than the
// teacher's three-operand LIR, since there is no longer a register
// allocator standing between this layer and the register/stack-home
// it names directly (H.2 assigns every IRName a stack home up front).
package codegen

import "fmt"

// Operand is the argument to an Instruction: a register, a stack/heap
// memory reference, an immediate, or a code/data label.
type Operand interface {
	fmt.Stringer
	isOperand()
}

// Register names a physical general-purpose register (arch_x86.go).
// Every pyobj is one qword, so unlike the teacher's original LIRType-
// tagged Register this one carries only the Byte flag Setcc needs.
type Register struct {
	Name     string
	Affinity int
	Byte     bool
}

// Memory is `Disp(Base)` or, for the rare indexed form, `Disp(Base,Index,Scale)`.
type Memory struct {
	Base  Register
	Disp  int
	Index Register
	Scale int
	// HasIndex distinguishes "no index register" from "index is rax";
	// Register's zero value is indistinguishable from a real register.
	HasIndex bool
}

// Immediate is a literal constant operand, `$N`.
type Immediate struct{ Value int64 }

// LabelRef names a local label (a jump/branch target synthesized by
// stage G) or a global symbol (a function name, `call`ed directly).
type LabelRef struct {
	Name   string
	Global bool
}

func (Register) isOperand()  {}
func (Memory) isOperand()    {}
func (Immediate) isOperand() {}
func (LabelRef) isOperand()  {}

func (r Register) String() string { return "%" + r.Name }
func (m Memory) String() string {
	if m.HasIndex {
		return fmt.Sprintf("%d(%%%s,%%%s,%d)", m.Disp, m.Base.Name, m.Index.Name, m.Scale)
	}
	return fmt.Sprintf("%d(%%%s)", m.Disp, m.Base.Name)
}
func (i Immediate) String() string { return fmt.Sprintf("$%d", i.Value) }
func (l LabelRef) String() string  { return l.Name }

// isMemory/isImmediate are the legality tests Legalize (H.1) and the
// emitter (I) use to enforce invariant I5: no instruction may carry
// two Memory operands, and Cmp may carry at most one Immediate.
func isMemory(o Operand) bool {
	_, ok := o.(Memory)
	return ok
}
func isImmediate(o Operand) bool {
	_, ok := o.(Immediate)
	return ok
}

// Cond is a Jcc/Setcc condition code.
type Cond int

const (
	CondE Cond = iota
	CondNE
	CondL
	CondLE
	CondG
	CondGE
)

func (c Cond) suffix() string {
	switch c {
	case CondE:
		return "e"
	case CondNE:
		return "ne"
	case CondL:
		return "l"
	case CondLE:
		return "le"
	case CondG:
		return "g"
	case CondGE:
		return "ge"
	}
	return "?"
}

// Instruction is one line of the x86 IR (3.3). Mov64/Add/Sub/Xor/Cmp
// are the two-operand forms subject to the two-memory-operand and
// two-immediate-Cmp legalization rules (I5); Movzb also has two
// operands but its source is always a byte register, and the rest are
// fixed-arity.
type Instruction interface {
	fmt.Stringer
	isInstruction()
}

type Mov64 struct{ Src, Dst Operand }
type Movzb struct {
	Src Operand // always a Register with Byte set
	Dst Operand
}
type Add struct{ Src, Dst Operand }
type Sub struct{ Src, Dst Operand }
type Neg struct{ Dst Operand }
type Xor struct{ Src, Dst Operand }
type Cmp struct{ Src, Dst Operand }
type Push struct{ Src Operand }
type Pop struct{ Dst Operand }
type CallInsn struct{ Target LabelRef }
type Ret struct{}
type Jmp struct{ Target LabelRef }
type Jcc struct {
	Cond   Cond
	Target LabelRef
}
type Setcc struct {
	Cond Cond
	Dst  Register // must be an 8-bit register (I5)
}
type LabelDef struct{ Name string }

// Directive is a raw assembler directive line (.globl, .text, .quad,
// a string constant, ...) emitted verbatim by stage I.
type Directive struct{ Text string }

func (*Mov64) isInstruction()    {}
func (*Movzb) isInstruction()    {}
func (*Add) isInstruction()      {}
func (*Sub) isInstruction()      {}
func (*Neg) isInstruction()      {}
func (*Xor) isInstruction()      {}
func (*Cmp) isInstruction()      {}
func (*Push) isInstruction()     {}
func (*Pop) isInstruction()      {}
func (*CallInsn) isInstruction() {}
func (*Ret) isInstruction()      {}
func (*Jmp) isInstruction()      {}
func (*Jcc) isInstruction()      {}
func (*Setcc) isInstruction()    {}
func (*LabelDef) isInstruction() {}
func (*Directive) isInstruction() {}

func (i *Mov64) String() string    { return fmt.Sprintf("movq %s, %s", i.Src, i.Dst) }
func (i *Movzb) String() string    { return fmt.Sprintf("movzbq %s, %s", i.Src, i.Dst) }
func (i *Add) String() string      { return fmt.Sprintf("addq %s, %s", i.Src, i.Dst) }
func (i *Sub) String() string      { return fmt.Sprintf("subq %s, %s", i.Src, i.Dst) }
func (i *Neg) String() string      { return fmt.Sprintf("negq %s", i.Dst) }
func (i *Xor) String() string      { return fmt.Sprintf("xorq %s, %s", i.Src, i.Dst) }
func (i *Cmp) String() string      { return fmt.Sprintf("cmpq %s, %s", i.Src, i.Dst) }
func (i *Push) String() string     { return fmt.Sprintf("pushq %s", i.Src) }
func (i *Pop) String() string      { return fmt.Sprintf("popq %s", i.Dst) }
func (i *CallInsn) String() string { return fmt.Sprintf("call %s", i.Target) }
func (i *Ret) String() string      { return "ret" }
func (i *Jmp) String() string      { return fmt.Sprintf("jmp %s", i.Target) }
func (i *Jcc) String() string      { return fmt.Sprintf("j%s %s", i.Cond.suffix(), i.Target) }
func (i *Setcc) String() string    { return fmt.Sprintf("set%s %s", i.Cond.suffix(), i.Dst) }
func (i *LabelDef) String() string { return i.Name + ":" }
func (i *Directive) String() string { return i.Text }
