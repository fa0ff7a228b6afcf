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
package ast

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func lexAll(t *testing.T, src string) []TokenKind {
	t.Helper()
	f, err := os.CreateTemp("", "boxc-lex-*.src")
	require.NoError(t, err)
	defer os.Remove(f.Name())
	_, err = f.WriteString(src)
	require.NoError(t, err)
	_, err = f.Seek(0, 0)
	require.NoError(t, err)
	defer f.Close()

	lexer := &Lexer{}
	lexer.Init(f)
	var kinds []TokenKind
	for {
		kind, _ := lexer.NextToken()
		kinds = append(kinds, kind)
		if kind == TK_EOF {
			return kinds
		}
	}
}

func TestLexerKeywordsAndOperators(t *testing.T) {
	kinds := lexAll(t, "a == b != c <= d >= e -> f // comment\n")
	require.Equal(t, []TokenKind{
		TK_IDENT, TK_EQ, TK_IDENT, TK_NE, TK_IDENT, TK_LE, TK_IDENT,
		TK_GE, TK_IDENT, TK_ARROW, TK_IDENT, TK_EOF,
	}, kinds)
}

func TestLexerSkipsLineComments(t *testing.T) {
	kinds := lexAll(t, "x // trailing comment\n= 1;")
	require.Equal(t, []TokenKind{TK_IDENT, TK_ASSIGN, LIT_INT, TK_SEMICOLON, TK_EOF}, kinds)
}

func TestLexerIntLiteral(t *testing.T) {
	f, err := os.CreateTemp("", "boxc-lex-*.src")
	require.NoError(t, err)
	defer os.Remove(f.Name())
	_, err = f.WriteString("12345")
	require.NoError(t, err)
	_, err = f.Seek(0, 0)
	require.NoError(t, err)
	defer f.Close()

	lexer := &Lexer{}
	lexer.Init(f)
	kind, lexeme := lexer.NextToken()
	require.Equal(t, LIT_INT, kind)
	require.Equal(t, "12345", lexeme)
}
