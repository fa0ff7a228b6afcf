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
package main

import (
	"errors"
	"fmt"
	"os"

	"boxc/compile"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var debug bool

func newLogger() *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
	}
	logger, err := cfg.Build()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cannot build logger:", err)
		os.Exit(compile.ExitUsage)
	}
	return logger.Sugar()
}

func run(args []string) int {
	log := newLogger()
	defer log.Sync()
	driver := compile.NewDriver(log, debug)
	if err := driver.CompileInput(args[0]); err != nil {
		log.Errorw("compilation failed", "error", err)
		if errors.Is(err, compile.ErrMissingInput) {
			return compile.ExitMissingInput
		}
		return 1
	}
	return compile.ExitOK
}

func runBuild(args []string) int {
	log := newLogger()
	defer log.Sync()
	driver := compile.NewDriver(log, debug)
	if err := driver.CompileBuild(args[0], args[1]); err != nil {
		log.Errorw("compilation failed", "error", err)
		return 1
	}
	return compile.ExitOK
}

func main() {
	var exitCode int

	root := &cobra.Command{
		Use:   "boxc <input>",
		Short: "boxc compiles Source to x86-64 assembly",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exitCode = run(args)
			return nil
		},
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "print/dump intermediate ASTs and use development-mode logging")

	buildCmd := &cobra.Command{
		Use:   "build <input> <stdlib>",
		Short: "compile <input> together with a Source standard library file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			exitCode = runBuild(args)
			return nil
		},
	}
	root.AddCommand(buildCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(compile.ExitUsage)
	}
	os.Exit(exitCode)
}
