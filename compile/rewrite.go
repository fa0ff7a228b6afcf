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

import "boxc/ast"

// RewriteCtx is the pass context the rewriting stages (Desugar,
// Flatten, Explicate) thread through their traversal. It owns
// the body stack (§5): entering a statement-sequence scope pushes a
// new builder, leaving pops it and installs the result into the
// parent node. Dirty is set whenever a rewrite fires, so the
// Desugar+Flatten driver can detect its fixed point without
// re-printing the tree (Design Notes §9 alternative).
type RewriteCtx struct {
	Temps *TempGenerator
	stack []*builder
	Dirty bool
}

func NewRewriteCtx(temps *TempGenerator) *RewriteCtx {
	return &RewriteCtx{Temps: temps}
}

// Enter pushes a fresh body under construction.
func (r *RewriteCtx) Enter() {
	r.stack = append(r.stack, &builder{})
}

// Leave pops the body under construction and returns its statements.
func (r *RewriteCtx) Leave() []ast.Stmt {
	n := len(r.stack) - 1
	b := r.stack[n]
	r.stack = r.stack[:n]
	return b.out
}

// Emit is the only sanctioned way to insert a statement produced as a
// side effect of rewriting an expression; it always targets the body
// currently under construction (the top of the stack).
func (r *RewriteCtx) Emit(s ast.Stmt) {
	r.stack[len(r.stack)-1].emit(s)
}

// RewriteBody runs body through f with a fresh scope pushed, emitting
// into it as f walks each original statement, and returns the
// rebuilt statement list.
func (r *RewriteCtx) RewriteBody(body []ast.Stmt, f func(ast.Stmt)) []ast.Stmt {
	r.Enter()
	for _, s := range body {
		f(s)
	}
	return r.Leave()
}

// Fresh allocates a new compiler temp through the shared generator.
func (r *RewriteCtx) Fresh(prefix string) string { return r.Temps.Fresh(prefix) }
