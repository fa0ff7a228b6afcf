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

// The driver: orchestrates stages A-I over a parsed Module and owns
// the three debug artifacts (§6). Each stage boundary is wrapped with
// github.com/pkg/errors so a validator rejection or an internal
// invariant violation carries a trace back through the CLI, and each
// stage logs through go.uber.org/zap the way the teacher's compileY
// printed its `== LIR(...) ==`/`== ASM(...) ==` banners, just leveled
// and structured instead of raw Printf.
package compile

import (
	"os"
	"path/filepath"
	"strings"

	"boxc/ast"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Exit codes per §6: 0 success, -1 usage, -2 missing input, -3
// unsupported input (the parser calls os.Exit(-3) directly on a
// syntax error, per its own SyntaxError convention), nonzero
// otherwise on a later compilation failure.
const (
	ExitOK               = 0
	ExitUsage            = -1
	ExitMissingInput     = -2
	ExitUnsupportedInput = -3
)

// Driver runs the pipeline once per compilation unit; it is otherwise
// stateless, so one Driver safely serves every file in a directory
// input (§5: the pipeline is a pure function from AST to assembly).
type Driver struct {
	log   *zap.SugaredLogger
	debug bool
}

func NewDriver(log *zap.SugaredLogger, debug bool) *Driver {
	return &Driver{log: log, debug: debug}
}

func outputBase(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// CompileFile runs stages A-I over a single `.src` file, writing
// `foo.flatpy`/`foo.pyobjpy`/`foo.s` next to it (§6).
func (d *Driver) CompileFile(path string) error {
	d.log.Infow("parsing", "stage", "A", "file", path)
	mod := ast.ParseFile(path)
	return d.compileModule(mod, outputBase(path))
}

// CompileBuild compiles userPath together with stdlibPath, the
// optional whole-program mode (`boxc build`) mirroring the teacher's
// CompileTheWorld: the standard library's functions are folded into
// the user module before stage A validates it, so calls from user
// code into the standard library resolve like any other user function
// (closure conversion and IR lowering never distinguish the two).
func (d *Driver) CompileBuild(userPath, stdlibPath string) error {
	d.log.Infow("parsing", "stage", "A", "file", stdlibPath, "role", "stdlib")
	stdMod := ast.ParseFile(stdlibPath)
	d.log.Infow("parsing", "stage", "A", "file", userPath, "role", "user")
	userMod := ast.ParseFile(userPath)
	userMod.Body = append(stdMod.Body, userMod.Body...)
	return d.compileModule(userMod, outputBase(userPath))
}

func (d *Driver) compileModule(mod *ast.Module, outBase string) error {
	if d.debug {
		ast.PrintAst(mod, true)
		ast.DumpAstToDotFile(outBase, mod)
	}

	temps := NewTempGenerator()
	validator := NewValidator(temps)
	if err := validator.Validate(mod); err != nil {
		return errors.Wrap(err, "stage A rejected input")
	}

	d.log.Infow("desugar+flatten", "stage", "B/C")
	mod.Body = FixedPointBody(temps, mod.Body)
	if err := writeArtifact(outBase+".flatpy", ast.Unparse(mod.Body)); err != nil {
		return err
	}

	d.log.Infow("closure conversion", "stage", "D")
	mainBody, fns := ClosureConvert(mod)

	d.log.Infow("explicate+reflatten", "stage", "E/F")
	mainBody = ExplicateAndReflatten(temps, mainBody)
	for _, fn := range fns {
		fn.Body = ExplicateAndReflatten(temps, fn.Body)
	}
	if err := writeArtifact(outBase+".pyobjpy", RuntimeStubHeader()+ast.Unparse(pyobjBody(mainBody, fns))); err != nil {
		return err
	}

	d.log.Infow("IR lowering", "stage", "G")
	m := LowerModule(temps, mainBody, fns)
	if err := VerifyModule(m); err != nil {
		return errors.Wrap(err, "internal invariant violation after stage G")
	}

	d.log.Infow("x86 lowering", "stage", "H")
	asmFns := LowerToX86(m)
	if err := VerifyLegal(asmFns); err != nil {
		return errors.Wrap(err, "internal invariant violation after stage H")
	}

	if err := writeArtifact(outBase+".s", EmitAssembly(asmFns)); err != nil {
		return err
	}
	d.log.Infow("done", "output", outBase+".s")
	return nil
}

// pyobjBody orders the hoisted functions ahead of main's own body so
// the `.pyobjpy` file reads top-down the way a human would write it:
// callees before the code that calls them.
func pyobjBody(mainBody []ast.Stmt, fns []*ast.FunctionDef) []ast.Stmt {
	out := make([]ast.Stmt, 0, len(fns)+len(mainBody))
	for _, fn := range fns {
		out = append(out, fn)
	}
	return append(out, mainBody...)
}

func writeArtifact(path, text string) error {
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}

// ErrMissingInput is the cause wrapped into the error CompileInput
// returns when the given path does not exist — main.go's run() checks
// for it with errors.Is to select ExitMissingInput (§6, exit code -2)
// instead of the generic failure exit code.
var ErrMissingInput = errors.New("missing input")

// CompileInput runs CompileFile over path, or every `.src` file in it
// if path names a directory (§6's "a single source file path or a
// directory").
func (d *Driver) CompileInput(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.Wrapf(ErrMissingInput, "stat %s: %v", path, err)
	}
	if !info.IsDir() {
		return d.CompileFile(path)
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return errors.Wrap(err, "reading input directory")
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".src" {
			continue
		}
		if err := d.CompileFile(filepath.Join(path, e.Name())); err != nil {
			return err
		}
	}
	return nil
}
