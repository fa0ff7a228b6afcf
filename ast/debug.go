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

// Debug dumping, gated behind the CLI's -debug flag: a tree-shaped
// console print and a Graphviz dot file, mirroring what the original
// pyyc toolchain's print_tree.py gave for free by piggybacking on
// Python's own ast module.
package ast

import (
	"fmt"
	"os"
	"strings"
)

// PrintTokenized re-lexes fileName and prints every token, the same
// debug knob the teacher's lexer exposes.
func PrintTokenized(fileName string) {
	file, err := os.Open(fileName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot open %s: %v\n", fileName, err)
		return
	}
	defer file.Close()
	lexer := &Lexer{}
	lexer.Init(file)
	for {
		kind, lexeme := lexer.NextToken()
		fmt.Printf("%-12s %q\n", kind, lexeme)
		if kind == TK_EOF {
			return
		}
	}
}

// PrintAst prints an indented tree of mod's statements. verbose also
// prints the String() form of the top-level expression of each Assign,
// ExprStmt and Return.
func PrintAst(mod *Module, verbose bool) {
	for _, s := range mod.Body {
		printStmt(s, 0, verbose)
	}
}

func printStmt(s Stmt, depth int, verbose bool) {
	pad := strings.Repeat("  ", depth)
	fmt.Printf("%s%s\n", pad, s)
	switch n := s.(type) {
	case *If:
		for _, b := range n.Body {
			printStmt(b, depth+1, verbose)
		}
		for _, b := range n.Else {
			printStmt(b, depth+1, verbose)
		}
	case *While:
		for _, b := range n.Body {
			printStmt(b, depth+1, verbose)
		}
	case *FunctionDef:
		for _, b := range n.Body {
			printStmt(b, depth+1, verbose)
		}
	}
	if verbose {
		if e := stmtExpr(s); e != nil {
			fmt.Printf("%s  expr: %s\n", pad, e)
		}
	}
}

func stmtExpr(s Stmt) Expr {
	switch n := s.(type) {
	case *Assign:
		return n.Value
	case *ExprStmt:
		return n.Value
	case *Return:
		return n.Value
	}
	return nil
}

// DumpAstToDotFile writes name.dot, a Graphviz rendering of mod's
// statement tree, for the cases a flat console dump is too hard to
// read by eye.
func DumpAstToDotFile(name string, mod *Module) {
	var b strings.Builder
	b.WriteString("digraph ast {\n")
	id := 0
	next := func() int { id++; return id }
	root := next()
	fmt.Fprintf(&b, "  n%d [label=\"Module\"];\n", root)
	for _, s := range mod.Body {
		dumpStmt(&b, root, s, next)
	}
	b.WriteString("}\n")
	os.WriteFile(name+".dot", []byte(b.String()), 0644)
}

func dumpStmt(b *strings.Builder, parent int, s Stmt, next func() int) {
	n := next()
	fmt.Fprintf(b, "  n%d [label=%q];\n", n, s.String())
	fmt.Fprintf(b, "  n%d -> n%d;\n", parent, n)
	switch v := s.(type) {
	case *If:
		for _, c := range v.Body {
			dumpStmt(b, n, c, next)
		}
		for _, c := range v.Else {
			dumpStmt(b, n, c, next)
		}
	case *While:
		for _, c := range v.Body {
			dumpStmt(b, n, c, next)
		}
	case *FunctionDef:
		for _, c := range v.Body {
			dumpStmt(b, n, c, next)
		}
	}
}
