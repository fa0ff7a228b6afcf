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
package compile

import (
	"boxc/ast"
	"fmt"

	"github.com/pkg/errors"
)

// Builtins is the set of names the validator refuses to let user code
// shadow with an assignment or a function definition (4.A).
var Builtins = map[string]bool{
	"print": true,
	"input": true,
	"int":   true,
}

// ValidationError reports stage A rejecting a Source program; the CLI
// driver prints Kind/Detail and aborts without writing any artifact
// (error kind 1, §7).
type ValidationError struct {
	Kind   string
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("unsupported construct (%s): %s", e.Kind, e.Detail)
}

// Validator walks a parsed Module once, rejects anything outside the
// supported surface, and renames every user identifier to `_name` so
// it can never collide with a builtin or a compiler-introduced temp.
type Validator struct {
	temps *TempGenerator
}

func NewValidator(temps *TempGenerator) *Validator {
	return &Validator{temps: temps}
}

// Validate runs stage A in place and returns the first violation
// found, wrapped with github.com/pkg/errors so the CLI driver can
// print a stack trace in verbose mode.
func (v *Validator) Validate(mod *ast.Module) error {
	for _, s := range mod.Body {
		if err := v.validateStmt(s); err != nil {
			return errors.Wrap(err, "stage A: validate")
		}
	}
	return nil
}

func (v *Validator) validateStmt(s ast.Stmt) error {
	switch n := s.(type) {
	case *ast.Assign:
		if name, ok := n.Target.(*ast.Name); ok && Builtins[name.Id] {
			return &ValidationError{"assign-to-builtin", name.Id}
		}
		if err := v.validateExpr(n.Target); err != nil {
			return err
		}
		return v.validateExpr(n.Value)
	case *ast.ExprStmt:
		return v.validateExpr(n.Value)
	case *ast.If:
		if err := v.validateExpr(n.Test); err != nil {
			return err
		}
		for _, b := range n.Body {
			if err := v.validateStmt(b); err != nil {
				return err
			}
		}
		for _, b := range n.Else {
			if err := v.validateStmt(b); err != nil {
				return err
			}
		}
		return nil
	case *ast.While:
		if err := v.validateExpr(n.Test); err != nil {
			return err
		}
		for _, b := range n.Body {
			if err := v.validateStmt(b); err != nil {
				return err
			}
		}
		return nil
	case *ast.Break:
		return nil
	case *ast.Return:
		if n.Value != nil {
			return v.validateExpr(n.Value)
		}
		return nil
	case *ast.FunctionDef:
		if Builtins[n.Name] {
			return &ValidationError{"def-shadows-builtin", n.Name}
		}
		n.Name = v.rename(n.Name)
		for i, p := range n.Params {
			n.Params[i] = v.rename(p)
		}
		for _, b := range n.Body {
			if err := v.validateStmt(b); err != nil {
				return err
			}
		}
		return nil
	default:
		return &ValidationError{"unknown-stmt", fmt.Sprintf("%T", s)}
	}
}

// validateExpr renames Names in place as it descends. `input()` needs
// no special placement check here: this grammar has no standalone
// `eval` keyword, so the bare Call{Callee:"input"} produced by the
// parser already denotes the whole eval(input()) unit wherever it
// appears (4.A).
func (v *Validator) validateExpr(e ast.Expr) error {
	switch n := e.(type) {
	case *ast.Constant:
		return nil
	case *ast.Name:
		if !Builtins[n.Id] {
			n.Id = v.rename(n.Id)
		}
		return nil
	case *ast.UnaryOp:
		return v.validateExpr(n.Operand)
	case *ast.BinOp:
		if err := v.validateExpr(n.Left); err != nil {
			return err
		}
		return v.validateExpr(n.Right)
	case *ast.BoolOp:
		for _, val := range n.Values {
			if err := v.validateExpr(val); err != nil {
				return err
			}
		}
		return nil
	case *ast.Compare:
		if err := v.validateExpr(n.Left); err != nil {
			return err
		}
		for _, c := range n.Comparators {
			if err := v.validateExpr(c); err != nil {
				return err
			}
		}
		return nil
	case *ast.IfExp:
		if err := v.validateExpr(n.Test); err != nil {
			return err
		}
		if err := v.validateExpr(n.Body); err != nil {
			return err
		}
		return v.validateExpr(n.Else)
	case *ast.Call:
		if n.Callee == "input" {
			// a bare input() is always the whole eval(input()) construct
			// in this grammar (§4.A); nothing further to check.
			return nil
		}
		if !Builtins[n.Callee] {
			// A call to a user function must track the same rename its
			// FunctionDef (or lambda-hoisted) name receives, or every
			// later stage that matches a call site back to its
			// definition by name (closure conversion's free-var lookup,
			// IR lowering's callee dispatch) loses the link.
			n.Callee = v.rename(n.Callee)
		}
		for _, a := range n.Args {
			// Unlike pyyc, this grammar has no separate `eval` keyword —
			// `input()` already denotes the whole eval(input()) unit
			// (KW_INPUT in ast/parser.go), so it may appear anywhere an
			// argument is accepted, same as pyyc's `print(eval(input()))`.
			if err := v.validateExpr(a); err != nil {
				return err
			}
		}
		return nil
	case *ast.Lambda:
		for i, p := range n.Params {
			n.Params[i] = v.rename(p)
		}
		return v.validateExpr(n.Body)
	case *ast.List:
		for _, elt := range n.Elts {
			if err := v.validateExpr(elt); err != nil {
				return err
			}
		}
		return nil
	case *ast.Dict:
		for i := range n.Keys {
			if err := v.validateExpr(n.Keys[i]); err != nil {
				return err
			}
			if err := v.validateExpr(n.Values[i]); err != nil {
				return err
			}
		}
		return nil
	case *ast.Subscript:
		if err := v.validateExpr(n.Value); err != nil {
			return err
		}
		return v.validateExpr(n.Slice)
	default:
		return &ValidationError{"unknown-expr", fmt.Sprintf("%T", e)}
	}
}

// rename prefixes a user identifier with `_` and registers it with
// the shared temp generator so Fresh can never hand out a colliding
// name later in the pipeline.
func (v *Validator) rename(id string) string {
	renamed := "_" + id
	v.temps.RegisterUser(renamed)
	return renamed
}
