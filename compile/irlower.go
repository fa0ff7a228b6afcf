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

// Stage G (4.G): lower the flat, explicated AST into the labeled
// three-address IR (3.2). By this point every Assign/ExprStmt/Return
// value is already one of the shapes Flatten guarantees (a leaf, or a
// Call/UnaryOp/BinOp/Compare over leaves), so lowering is a direct
// structural translation; the only real work is turning structured
// If/While control flow into Branch/Jump/Label sequences that satisfy
// invariant I1.
package compile

import (
	"boxc/ast"
	"boxc/utils"
)

// kindOfCallee infers the IR kind of a call's result from the runtime
// primitive it names (4.E). Anything not recognized — every user
// function, by construction — returns a pyobj.
func kindOfCallee(name string) IRTargetKind {
	switch name {
	case "is_int", "is_bool", "is_big", "is_true", "equal":
		return KindBool
	case "project_int", "project_bool", "project_big", "create_list", "create_dict", "add":
		return KindInt
	default:
		return KindPyObj
	}
}

func lowerLeaf(env map[string]IRTargetKind, e ast.Expr) IRTarget {
	switch n := e.(type) {
	case *ast.Constant:
		kind := KindInt
		if n.IsBool() {
			kind = KindBool
		}
		return &IRConstant{IntVal: n.IntVal, BoolVal: n.BoolVal, Kind: kind}
	case *ast.Name:
		kind, ok := env[n.Id]
		if !ok {
			// A free variable prepended as a leading parameter (4.D) is
			// always a pyobj by calling convention.
			kind = KindPyObj
		}
		return &IRName{Id: n.Id, Kind: kind}
	default:
		utils.ShouldNotReachHere()
		return nil
	}
}

// lowerRHS lowers an already-flat Assign/ExprStmt value to its IRExpr
// form and reports the kind its result carries.
func lowerRHS(env map[string]IRTargetKind, e ast.Expr) (IRExpr, IRTargetKind) {
	switch n := e.(type) {
	case *ast.Constant, *ast.Name:
		t := lowerLeaf(env, n)
		return &IRTargetExpr{Target: t}, kindOf(t)
	case *ast.Call:
		args := make([]IRTarget, len(n.Args))
		for i, a := range n.Args {
			args[i] = lowerLeaf(env, a)
		}
		return &IRCall{FnName: n.Callee, Args: args}, kindOfCallee(n.Callee)
	case *ast.UnaryOp:
		return &IRUnaryOp{Op: n.Op, Operand: lowerLeaf(env, n.Operand)}, KindInt
	case *ast.BinOp:
		return &IRBinOp{Op: n.Op, Left: lowerLeaf(env, n.Left), Right: lowerLeaf(env, n.Right)}, KindInt
	case *ast.Compare:
		return &IRCompare{Op: n.Ops[0], Left: lowerLeaf(env, n.Left), Right: lowerLeaf(env, n.Comparators[0])}, KindBool
	default:
		utils.ShouldNotReachHere()
		return nil, KindPyObj
	}
}

func kindOf(t IRTarget) IRTargetKind {
	switch v := t.(type) {
	case *IRName:
		return v.Kind
	case *IRConstant:
		return v.Kind
	}
	utils.ShouldNotReachHere()
	return KindPyObj
}

type lowerState struct {
	temps       *TempGenerator
	env         map[string]IRTargetKind
	breakLabels []string
	out         []IRStmt
}

func (s *lowerState) emit(st IRStmt) { s.out = append(s.out, st) }

func (s *lowerState) lowerBody(body []ast.Stmt) {
	for _, stmt := range body {
		s.lowerStmt(stmt)
	}
}

func (s *lowerState) lowerStmt(stmt ast.Stmt) {
	switch n := stmt.(type) {
	case *ast.Assign:
		name, ok := n.Target.(*ast.Name)
		if !ok {
			// Subscript-assign was rewritten to a set_subscript call by
			// Explicate; no other Assign target survives to stage G.
			utils.ShouldNotReachHere()
			return
		}
		rhs, kind := lowerRHS(s.env, n.Value)
		s.env[name.Id] = kind
		s.emit(&IRAssign{Target: &IRName{Id: name.Id, Kind: kind}, Value: rhs})
	case *ast.ExprStmt:
		rhs, _ := lowerRHS(s.env, n.Value)
		s.emit(&IRExprStmt{Value: rhs})
	case *ast.If:
		cond := lowerLeaf(s.env, n.Test)
		thenLbl := s.temps.Fresh("$Lthen")
		elseLbl := s.temps.Fresh("$Lelse")
		endLbl := s.temps.Fresh("$Lend")
		s.emit(&IRBranch{Cond: cond, TrueLbl: thenLbl, FalseLbl: elseLbl})
		s.emit(&IRLabel{Name: thenLbl})
		s.lowerBody(n.Body)
		s.emit(&IRJump{Label: endLbl})
		s.emit(&IRLabel{Name: elseLbl})
		s.lowerBody(n.Else)
		s.emit(&IRLabel{Name: endLbl})
	case *ast.While:
		topLbl := s.temps.Fresh("$Ltop")
		bodyLbl := s.temps.Fresh("$Lbody")
		exitLbl := s.temps.Fresh("$Lexit")
		s.emit(&IRLabel{Name: topLbl})
		cond := lowerLeaf(s.env, n.Test)
		s.emit(&IRBranch{Cond: cond, TrueLbl: bodyLbl, FalseLbl: exitLbl})
		s.emit(&IRLabel{Name: bodyLbl})
		saved := s.breakLabels
		s.breakLabels = append(s.breakLabels, exitLbl)
		s.lowerBody(n.Body)
		s.breakLabels = saved
		s.emit(&IRJump{Label: topLbl})
		s.emit(&IRLabel{Name: exitLbl})
	case *ast.Break:
		if len(s.breakLabels) == 0 {
			utils.ShouldNotReachHere()
			return
		}
		s.emit(&IRJump{Label: s.breakLabels[len(s.breakLabels)-1]})
		s.emit(&IRLabel{Name: s.temps.Fresh("$Ldead")})
	case *ast.Return:
		var val IRTarget
		if n.Value != nil {
			val = lowerLeaf(s.env, n.Value)
		}
		s.emit(&IRReturn{Value: val})
		s.emit(&IRLabel{Name: s.temps.Fresh("$Ldead")})
	default:
		utils.ShouldNotReachHere()
	}
}

func lowerOneFunction(temps *TempGenerator, name string, params []string, body []ast.Stmt, isMain bool) *IRFunction {
	env := make(map[string]IRTargetKind, len(params))
	irParams := make([]*IRName, len(params))
	for i, p := range params {
		env[p] = KindPyObj
		irParams[i] = &IRName{Id: p, Kind: KindPyObj}
	}
	st := &lowerState{temps: temps, env: env}
	st.lowerBody(body)
	returnKind := IRTargetKind(KindPyObj)
	if isMain {
		returnKind = KindInt
		st.emit(&IRReturn{Value: &IRConstant{Kind: KindInt, IntVal: 0}})
		st.emit(&IRLabel{Name: st.temps.Fresh("$Ldead")})
	}
	return &IRFunction{Name: name, Params: irParams, Body: st.out, ReturnKind: returnKind}
}

// LowerModule runs stage G over a closure-converted program: mainBody
// becomes the `main` function (always ending in `return 0`, I4) and
// every hoisted FunctionDef becomes its own IRFunction.
func LowerModule(temps *TempGenerator, mainBody []ast.Stmt, fns []*ast.FunctionDef) *IRModule {
	functions := []*IRFunction{lowerOneFunction(temps, "main", nil, mainBody, true)}
	for _, fn := range fns {
		functions = append(functions, lowerOneFunction(temps, fn.Name, fn.Params, fn.Body, false))
	}
	m := &IRModule{Functions: functions}
	for _, f := range m.Functions {
		f.CollectVariables()
	}
	return m
}
