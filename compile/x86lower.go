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

// Stage H: lower the IR (3.2) to the x86 instruction set (3.3). Every
// IRName lives in its frame slot (H.2) for its entire lifetime — there
// is no register promotion — so every arithmetic/compare op routes
// its operands through one scratch register (arch_x86.go's R10) and
// never needs a second legalization pass to split up an illegal
// two-memory-operand instruction: nothing here ever emits one (H.1).
// legalize.go still walks the result and checks I5, the way a real
// compiler's assertion would, since "never emit an illegal shape"
// is a claim that is worth verifying mechanically rather than trusting.
package compile

import (
	"boxc/ast"
	"boxc/compile/codegen"
	"fmt"
)

func funcLabel(name string) string { return name }

func endLabel(name string) string { return "end_" + name }

func condFor(op ast.CmpOp) codegen.Cond {
	switch op {
	case ast.Eq:
		return codegen.CondE
	case ast.NotEq:
		return codegen.CondNE
	case ast.Lt:
		return codegen.CondL
	case ast.LtE:
		return codegen.CondLE
	case ast.Gt:
		return codegen.CondG
	case ast.GtE:
		return codegen.CondGE
	}
	panic(fmt.Sprintf("unhandled comparator %v", op))
}

// asmFunction is one function's fully lowered body, ready for emission.
type asmFunction struct {
	Label string
	Body  []codegen.Instruction
}

// LowerToX86 runs stage H over every function in m.
func LowerToX86(m *IRModule) []*asmFunction {
	out := make([]*asmFunction, len(m.Functions))
	for i, f := range m.Functions {
		out[i] = lowerIRFunction(f)
	}
	return out
}

// lowerIRFunction builds one function per H.3's single-exit framing:
// every Return jumps to a shared end_<fn> label rather than `ret`-ing
// in place, so the epilogue (and its callee-saved restores, once this
// backend has any to restore) is written once instead of duplicated
// at every return site.
func lowerIRFunction(f *IRFunction) *asmFunction {
	fr := newFrame()
	var body []codegen.Instruction
	for i, p := range f.Params {
		if i < maxArgRegs {
			body = append(body, &codegen.Mov64{Src: codegen.ArgReg(i), Dst: fr.home(p.Id)})
			continue
		}
		// The 7th argument onward sits above the saved %rbp and the
		// return address, lowest address first, as emitCallArgs pushed it.
		incoming := codegen.Memory{Base: codegen.RBP, Disp: 16 + 8*(i-maxArgRegs)}
		emitMove(&body, incoming, fr.home(p.Id))
	}
	for _, s := range f.Body {
		lowerIRStmt(fr, f.Name, s, &body)
	}
	f.HomeMap = make(map[string]interface{}, len(fr.slots))
	for id, off := range fr.slots {
		f.HomeMap[id] = codegen.Memory{Base: codegen.RBP, Disp: off}
	}

	name := f.Name
	frameSize := fr.size()
	var out []codegen.Instruction
	out = append(out,
		&codegen.Directive{Text: ".globl " + funcLabel(name)},
		&codegen.Directive{Text: ".type " + funcLabel(name) + ", @function"},
		&codegen.LabelDef{Name: funcLabel(name)},
		&codegen.Push{Src: codegen.RBP},
		&codegen.Mov64{Src: codegen.RSP, Dst: codegen.RBP},
	)
	if frameSize > 0 {
		out = append(out, &codegen.Sub{Src: codegen.Immediate{Value: int64(frameSize)}, Dst: codegen.RSP})
	}
	out = append(out, body...)
	out = append(out,
		&codegen.LabelDef{Name: endLabel(name)},
		&codegen.Mov64{Src: codegen.RBP, Dst: codegen.RSP},
		&codegen.Pop{Dst: codegen.RBP},
		&codegen.Ret{},
		&codegen.Directive{Text: ".size " + funcLabel(name) + ", .-" + funcLabel(name)},
		&codegen.Directive{Text: ".align 16"},
	)
	return &asmFunction{Label: funcLabel(name), Body: out}
}

func operandOf(fr *frame, t IRTarget) codegen.Operand {
	switch v := t.(type) {
	case *IRConstant:
		if v.Kind == KindBool {
			if v.BoolVal {
				return codegen.Immediate{Value: 1}
			}
			return codegen.Immediate{Value: 0}
		}
		return codegen.Immediate{Value: v.IntVal}
	case *IRName:
		return fr.home(v.Id)
	}
	panic("unhandled IRTarget")
}

// emitMove legalizes `mov src, dst`: x86 forbids a memory-to-memory
// move, so a Memory/Memory pair routes through the scratch register.
func emitMove(out *[]codegen.Instruction, src, dst codegen.Operand) {
	if isMem(src) && isMem(dst) {
		*out = append(*out, &codegen.Mov64{Src: src, Dst: codegen.ScratchA})
		*out = append(*out, &codegen.Mov64{Src: codegen.ScratchA, Dst: dst})
		return
	}
	*out = append(*out, &codegen.Mov64{Src: src, Dst: dst})
}

func isMem(o codegen.Operand) bool {
	_, ok := o.(codegen.Memory)
	return ok
}

// maxArgRegs is the number of System V AMD64 integer argument
// registers (codegen.ArgReg covers indices [0,maxArgRegs)); a call
// with more arguments than this spills the remainder to the stack.
const maxArgRegs = 6

// stackSlotsFor returns how many 8-byte slots n stack arguments
// actually occupy, rounding up to an even count: each call pushes a
// padding slot first when n is odd, since every push (8 bytes) must
// leave %rsp 16-byte aligned again once the arguments are in place
// (System V AMD64, P8) and this frame's own prologue already keeps
// %rsp 16-aligned on entry to every statement (frame.go).
func stackSlotsFor(n int) int {
	if n%2 != 0 {
		return n + 1
	}
	return n
}

// emitCallArgs marshals every call argument into place: the first six
// go into their System V integer argument registers, and anything
// beyond that is pushed onto the stack in reverse order so the 7th
// argument ends up at the lowest address (closest to the callee's
// view of its incoming stack arguments), matching how a real System V
// caller lays out a call with more than six arguments.
func emitCallArgs(fr *frame, args []IRTarget, out *[]codegen.Instruction) {
	regArgs, stackArgs := args, []IRTarget(nil)
	if len(args) > maxArgRegs {
		regArgs = args[:maxArgRegs]
		stackArgs = args[maxArgRegs:]
	}
	if slots := stackSlotsFor(len(stackArgs)); slots > len(stackArgs) {
		*out = append(*out, &codegen.Sub{Src: codegen.Immediate{Value: 8}, Dst: codegen.RSP})
	}
	for i := len(stackArgs) - 1; i >= 0; i-- {
		*out = append(*out, &codegen.Push{Src: operandOf(fr, stackArgs[i])})
	}
	for i, a := range regArgs {
		emitMove(out, operandOf(fr, a), codegen.ArgReg(i))
	}
}

func lowerIRStmt(fr *frame, fnName string, s IRStmt, out *[]codegen.Instruction) {
	switch n := s.(type) {
	case *IRAssign:
		dst := operandOf(fr, n.Target)
		lowerIRExprInto(fr, n.Value, dst, out)
	case *IRExprStmt:
		// A bare call for side effect (print, set_subscript); its result
		// (if any) is simply discarded by never moving %rax anywhere.
		lowerIRExprInto(fr, n.Value, nil, out)
	case *IRLabel:
		*out = append(*out, &codegen.LabelDef{Name: n.Name})
	case *IRJump:
		*out = append(*out, &codegen.Jmp{Target: codegen.LabelRef{Name: n.Label}})
	case *IRBranch:
		cond := operandOf(fr, n.Cond)
		*out = append(*out, &codegen.Cmp{Src: codegen.Immediate{Value: 0}, Dst: cond})
		*out = append(*out, &codegen.Jcc{Cond: codegen.CondNE, Target: codegen.LabelRef{Name: n.TrueLbl}})
		*out = append(*out, &codegen.Jmp{Target: codegen.LabelRef{Name: n.FalseLbl}})
	case *IRReturn:
		// Single-exit framing (H.3): every Return moves its value into
		// rax and jumps to the function's shared epilogue rather than
		// `ret`-ing here directly.
		if n.Value != nil {
			emitMove(out, operandOf(fr, n.Value), codegen.RAX)
		}
		*out = append(*out, &codegen.Jmp{Target: codegen.LabelRef{Name: endLabel(fnName)}})
	default:
		panic(fmt.Sprintf("unhandled IRStmt %T", s))
	}
}

// lowerIRExprInto lowers e and, if dst is non-nil, moves the result
// into dst. dst is nil for an ExprStmt's discarded value.
func lowerIRExprInto(fr *frame, e IRExpr, dst codegen.Operand, out *[]codegen.Instruction) {
	switch n := e.(type) {
	case *IRTargetExpr:
		if dst != nil {
			emitMove(out, operandOf(fr, n.Target), dst)
		}
	case *IRCall:
		emitCallArgs(fr, n.Args, out)
		*out = append(*out, &codegen.CallInsn{Target: codegen.LabelRef{Name: n.FnName, Global: true}})
		if stackArgs := len(n.Args) - maxArgRegs; stackArgs > 0 {
			*out = append(*out, &codegen.Add{Src: codegen.Immediate{Value: int64(stackSlotsFor(stackArgs) * 8)}, Dst: codegen.RSP})
		}
		if dst != nil {
			emitMove(out, codegen.RAX, dst)
		}
	case *IRUnaryOp:
		emitMove(out, operandOf(fr, n.Operand), codegen.ScratchA)
		*out = append(*out, &codegen.Neg{Dst: codegen.ScratchA})
		if dst != nil {
			emitMove(out, codegen.ScratchA, dst)
		}
	case *IRBinOp:
		emitMove(out, operandOf(fr, n.Left), codegen.ScratchA)
		right := operandOf(fr, n.Right)
		switch n.Op {
		case ast.Add:
			*out = append(*out, &codegen.Add{Src: right, Dst: codegen.ScratchA})
		case ast.BitXor:
			*out = append(*out, &codegen.Xor{Src: right, Dst: codegen.ScratchA})
		}
		if dst != nil {
			emitMove(out, codegen.ScratchA, dst)
		}
	case *IRCompare:
		emitMove(out, operandOf(fr, n.Left), codegen.ScratchA)
		*out = append(*out, &codegen.Cmp{Src: operandOf(fr, n.Right), Dst: codegen.ScratchA})
		low := codegen.ScratchA.LowByte()
		*out = append(*out, &codegen.Setcc{Cond: condFor(n.Op), Dst: low})
		*out = append(*out, &codegen.Movzb{Src: low, Dst: codegen.ScratchA})
		if dst != nil {
			emitMove(out, codegen.ScratchA, dst)
		}
	default:
		panic(fmt.Sprintf("unhandled IRExpr %T", e))
	}
}
