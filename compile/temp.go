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
	"boxc/utils"
	"fmt"
)

// TempGenerator hands out temporary identifiers that are guaranteed
// unique against every name the user's source already uses. One
// instance is shared across Validate, Desugar, Flatten, Explicate and
// IR lowering for a single compilation unit. `used` is this instance's
// registry of taken names; it is backed by utils.Set rather than a bare
// map so the membership discipline (register/fresh/never remove) is
// expressed through the same set abstraction the teacher reaches for
// elsewhere (utils/set.go), instead of a second ad-hoc bool-map.
type TempGenerator struct {
	used    *utils.Set[string]
	counter map[string]int
}

func NewTempGenerator() *TempGenerator {
	return &TempGenerator{
		used:    utils.NewSet[string](),
		counter: make(map[string]int),
	}
}

// RegisterUser records a name that came from the user's own source
// (after renaming), so Fresh never collides with it.
func (t *TempGenerator) RegisterUser(name string) {
	t.used.Add(name)
}

// Fresh returns a new unique identifier starting with prefix.
func (t *TempGenerator) Fresh(prefix string) string {
	for {
		n := t.counter[prefix]
		t.counter[prefix] = n + 1
		name := fmt.Sprintf("%s%d", prefix, n)
		if t.used.Add(name) {
			return name
		}
	}
}

func (t *TempGenerator) Reset() {
	t.used = utils.NewSet[string]()
	t.counter = make(map[string]int)
}

// builder accumulates the statement list a pass is rebuilding. Every
// desugaring/flattening rule that needs to hoist a sub-expression into
// its own statement calls emit on the builder for the body it is
// currently rewriting, mirroring the teacher's append-as-you-go style
// in its SSA block construction.
type builder struct {
	out []ast.Stmt
}

func (b *builder) emit(s ast.Stmt) {
	b.out = append(b.out, s)
}
