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

// Unparse prints a Module back to Source text, the inverse of Parse.
// Every intermediate compiler stage keeps its tree re-parseable (3.4),
// so the `.flatpy`/`.pyobjpy` debug artifacts (§6) are produced by
// running the already-rewritten Module through this printer rather
// than by tracking source positions through every pass.
package ast

import (
	"fmt"
	"strings"
)

// Unparse renders a whole Module (e.g. the flattened main body plus
// its hoisted function definitions) as Source text.
func Unparse(body []Stmt) string {
	var b strings.Builder
	for _, s := range body {
		unparseStmt(&b, 0, s)
	}
	return b.String()
}

func indent(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat("    ", depth))
}

func unparseBlock(b *strings.Builder, depth int, body []Stmt) {
	b.WriteString("{\n")
	for _, s := range body {
		unparseStmt(b, depth+1, s)
	}
	indent(b, depth)
	b.WriteString("}\n")
}

func unparseStmt(b *strings.Builder, depth int, s Stmt) {
	indent(b, depth)
	switch n := s.(type) {
	case *Assign:
		fmt.Fprintf(b, "%s = %s;\n", unparseExpr(n.Target), unparseExpr(n.Value))
	case *ExprStmt:
		fmt.Fprintf(b, "%s;\n", unparseExpr(n.Value))
	case *If:
		fmt.Fprintf(b, "if %s ", unparseExpr(n.Test))
		unparseBlock(b, depth, n.Body)
		if len(n.Else) > 0 {
			indent(b, depth)
			b.WriteString("else ")
			unparseBlock(b, depth, n.Else)
		}
	case *While:
		fmt.Fprintf(b, "while %s ", unparseExpr(n.Test))
		unparseBlock(b, depth, n.Body)
	case *Break:
		b.WriteString("break;\n")
	case *Return:
		if n.Value != nil {
			fmt.Fprintf(b, "return %s;\n", unparseExpr(n.Value))
		} else {
			b.WriteString("return;\n")
		}
	case *FunctionDef:
		fmt.Fprintf(b, "func %s(%s) ", n.Name, strings.Join(n.Params, ", "))
		unparseBlock(b, depth, n.Body)
	default:
		fmt.Fprintf(b, "/* unknown stmt %s */\n", n)
	}
}

func unparseExpr(e Expr) string {
	switch n := e.(type) {
	case *Constant:
		if n.IsBool() {
			if n.BoolVal {
				return "true"
			}
			return "false"
		}
		return fmt.Sprintf("%d", n.IntVal)
	case *Name:
		return n.Id
	case *UnaryOp:
		if n.Op == Not {
			return fmt.Sprintf("(not %s)", unparseExpr(n.Operand))
		}
		return fmt.Sprintf("(-%s)", unparseExpr(n.Operand))
	case *BinOp:
		return fmt.Sprintf("(%s %s %s)", unparseExpr(n.Left), binOpSym(n.Op), unparseExpr(n.Right))
	case *BoolOp:
		sym := "and"
		if n.Op == Or {
			sym = "or"
		}
		parts := make([]string, len(n.Values))
		for i, v := range n.Values {
			parts[i] = unparseExpr(v)
		}
		return "(" + strings.Join(parts, " "+sym+" ") + ")"
	case *Compare:
		var b strings.Builder
		b.WriteString("(")
		b.WriteString(unparseExpr(n.Left))
		for i, op := range n.Ops {
			fmt.Fprintf(&b, " %s %s", cmpOpSym(op), unparseExpr(n.Comparators[i]))
		}
		b.WriteString(")")
		return b.String()
	case *IfExp:
		return fmt.Sprintf("(%s ? %s : %s)", unparseExpr(n.Test), unparseExpr(n.Body), unparseExpr(n.Else))
	case *Call:
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i] = unparseExpr(a)
		}
		return fmt.Sprintf("%s(%s)", n.Callee, strings.Join(args, ", "))
	case *Lambda:
		return fmt.Sprintf("\\(%s) -> %s", strings.Join(n.Params, ", "), unparseExpr(n.Body))
	case *List:
		elts := make([]string, len(n.Elts))
		for i, el := range n.Elts {
			elts[i] = unparseExpr(el)
		}
		return "[" + strings.Join(elts, ", ") + "]"
	case *Dict:
		parts := make([]string, len(n.Keys))
		for i := range n.Keys {
			parts[i] = fmt.Sprintf("%s: %s", unparseExpr(n.Keys[i]), unparseExpr(n.Values[i]))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *Subscript:
		return fmt.Sprintf("%s[%s]", unparseExpr(n.Value), unparseExpr(n.Slice))
	default:
		return fmt.Sprintf("/* unknown expr %s */", n)
	}
}

func binOpSym(op BinOperator) string {
	if op == BitXor {
		return "^"
	}
	return "+"
}

func cmpOpSym(op CmpOp) string {
	switch op {
	case Eq:
		return "=="
	case NotEq:
		return "!="
	case Lt:
		return "<"
	case LtE:
		return "<="
	case Gt:
		return ">"
	case GtE:
		return ">="
	}
	return "?"
}
