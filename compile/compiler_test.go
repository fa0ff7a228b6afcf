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
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeSrc(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func newTestDriver() *Driver {
	return NewDriver(zap.NewNop().Sugar(), false)
}

// compileOne runs the full driver over one source file and returns the
// generated `.s`/`.flatpy`/`.pyobjpy` contents, for tests that want to
// assert on the final emitted text rather than intermediate structures.
func compileOne(t *testing.T, src string) (asm, flatpy, pyobjpy string) {
	t.Helper()
	dir := t.TempDir()
	path := writeSrc(t, dir, "prog.src", src)
	d := newTestDriver()
	require.NoError(t, d.CompileFile(path))

	base := outputBase(path)
	asmBytes, err := os.ReadFile(base + ".s")
	require.NoError(t, err)
	flatBytes, err := os.ReadFile(base + ".flatpy")
	require.NoError(t, err)
	pyobjBytes, err := os.ReadFile(base + ".pyobjpy")
	require.NoError(t, err)
	return string(asmBytes), string(flatBytes), string(pyobjBytes)
}

// The six scenarios below are the compiler's representative surface:
// a scalar arithmetic expression, an eval'd input, a chained compare,
// list indexing, a closure-capturing lambda, and a while loop.

func TestCompileFilePrintArithmetic(t *testing.T) {
	asm, flatpy, pyobjpy := compileOne(t, `print(1 + 2);`)
	require.Contains(t, asm, ".globl main")
	require.Contains(t, asm, "call print_any")
	require.Contains(t, asm, ".section .note.GNU-stack")
	require.Contains(t, flatpy, "print(")
	require.Contains(t, pyobjpy, "print_any")
}

func TestCompileFileEvalInput(t *testing.T) {
	asm, _, pyobjpy := compileOne(t, `x = input(); print(x);`)
	require.Contains(t, asm, "call eval_input_pyobj")
	require.Contains(t, pyobjpy, "eval_input_pyobj")
}

func TestCompileFileChainedCompare(t *testing.T) {
	asm, _, _ := compileOne(t, `print(1 < 2 < 3);`)
	require.Contains(t, asm, ".globl main")
	require.Contains(t, asm, "call is_int")
}

func TestCompileFileListIndexing(t *testing.T) {
	asm, _, pyobjpy := compileOne(t, `xs = [10, 20, 30]; print(xs[1]);`)
	require.Contains(t, asm, "call create_list")
	require.Contains(t, asm, "call get_subscript")
	require.Contains(t, pyobjpy, "set_subscript")
}

func TestCompileFileLambdaClosure(t *testing.T) {
	asm, _, _ := compileOne(t, `
		k = 10;
		addK = \(x) -> x + k;
		print(addK(5));
	`)
	require.Contains(t, asm, ".globl main")
	// The hoisted lambda becomes its own function, distinct from main,
	// so a second .globl directive must appear.
	require.Equal(t, 2, strings.Count(asm, ".globl "), "expected main plus the hoisted lambda function")
}

func TestCompileFileWhileLoop(t *testing.T) {
	asm, flatpy, _ := compileOne(t, `
		n = 0;
		while n < 3 {
			print(n);
			n = n + 1;
		}
	`)
	require.Contains(t, asm, "jmp")
	require.Contains(t, flatpy, "while")
}

func TestCompileFileRejectsAssignToBuiltin(t *testing.T) {
	dir := t.TempDir()
	path := writeSrc(t, dir, "bad.src", `print = 1;`)
	d := newTestDriver()
	err := d.CompileFile(path)
	require.Error(t, err)
}

// TestCompileInputMissingPathWrapsSentinel exercises the exit-code
// contract (§6: -2 for missing input) by asserting main.go's run() can
// recover the sentinel with errors.Is after CompileInput wraps it.
func TestCompileInputMissingPathWrapsSentinel(t *testing.T) {
	d := newTestDriver()
	err := d.CompileInput(filepath.Join(t.TempDir(), "does-not-exist.src"))
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrMissingInput))
}

// TestCompileInputDirectoryCompilesEveryFile exercises the directory
// form of CompileInput (§6): every `.src` file gets its own `.s`.
func TestCompileInputDirectoryCompilesEveryFile(t *testing.T) {
	dir := t.TempDir()
	writeSrc(t, dir, "a.src", `print(1);`)
	writeSrc(t, dir, "b.src", `print(2);`)
	d := newTestDriver()
	require.NoError(t, d.CompileInput(dir))

	_, errA := os.Stat(filepath.Join(dir, "a.s"))
	require.NoError(t, errA)
	_, errB := os.Stat(filepath.Join(dir, "b.s"))
	require.NoError(t, errB)
}

// TestCompileBuildFoldsStdlibIntoUserModule exercises `boxc build`
// (§ SUPPLEMENTED FEATURES): the standard library's functions are
// validated, closure-converted and lowered as if the user had written
// them directly, so a user call into one resolves through the same
// rename/dispatch machinery as a call to their own function.
func TestCompileBuildFoldsStdlibIntoUserModule(t *testing.T) {
	dir := t.TempDir()
	stdlibPath := writeSrc(t, dir, "stdlib.src", `
		func min(a, b) {
			return a < b ? a : b;
		}
	`)
	userPath := writeSrc(t, dir, "user.src", `print(min(3, 5));`)

	d := newTestDriver()
	require.NoError(t, d.CompileBuild(userPath, stdlibPath))

	asmBytes, err := os.ReadFile(outputBase(userPath) + ".s")
	require.NoError(t, err)
	asm := string(asmBytes)
	require.Contains(t, asm, ".globl main")
	// min's own body and the call site both compile to real dispatch
	// and comparison code, not an unresolved external reference.
	require.Equal(t, 2, strings.Count(asm, ".globl "), "expected main plus the folded-in min function")
}
