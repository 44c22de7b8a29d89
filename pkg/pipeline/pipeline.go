// Package pipeline wires pkg/config, pkg/vm, and pkg/stdlib into the
// source-to-exit-code flow cmd/blg's run/repl/disasm subcommands drive,
// factored out of the run/load/disassemble flow a CLI driver needs so
// the CLI layer stays thin.
package pipeline

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/blg-lang/blg/pkg/bytecode"
	"github.com/blg-lang/blg/pkg/config"
	"github.com/blg-lang/blg/pkg/stdlib"
	"github.com/blg-lang/blg/pkg/value"
	"github.com/blg-lang/blg/pkg/vm"
)

// Session bundles a ready-to-use Runtime with the config that built it.
// cmd/blg repl keeps one Session alive across many inputs; cmd/blg run
// and cmd/blg disasm each use a short-lived one.
type Session struct {
	Runtime *vm.Runtime
	Config  config.Config
}

// New loads blg.yaml from scriptDir (if present), builds a Runtime rooted
// at executableDir, and installs the std-lib natives/modules. Callers
// should defer Close.
func New(executableDir, scriptDir string) (*Session, error) {
	cfg, err := config.Load(scriptDir)
	if err != nil {
		return nil, err
	}
	rt := vm.New(executableDir)
	rt.SetStdLibPaths(cfg.StdLibPaths)
	stdlib.Install(rt)
	return &Session{Runtime: rt, Config: cfg}, nil
}

// Close tears the session's Runtime down.
func (s *Session) Close() { s.Runtime.Close() }

// RunFile reads, compiles, and executes a source file, then — when the
// resulting module exports a `main` binding — invokes it with the none
// singleton as its sole argument (the "main(none)" convention)
// and returns its result. A module with no `main` export simply runs its
// top-level ($init) code and returns none.
func RunFile(path string) (value.Thing, error) {
	executableDir, err := os.Executable()
	if err != nil {
		executableDir = "."
	} else {
		executableDir = filepath.Dir(executableDir)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}

	sess, err := New(executableDir, filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	return sess.RunString(string(data), path)
}

// RunFileWithSession reads and runs path under an already-built Session
// (e.g. one with a debugger attached via cmd/blg disasm --trace), rather
// than constructing a fresh one the way RunFile does.
func RunFileWithSession(sess *Session, path string) (value.Thing, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return sess.RunString(string(data), path)
}

// RunString compiles and executes source (which has no backing file, e.g.
// a REPL line or an embedded smoke test) under sess, invoking a `main`
// export the same way RunFile does.
func (s *Session) RunString(source, name string) (value.Thing, error) {
	mod, err := s.Runtime.RunSource(source, name)
	if err != nil {
		return nil, err
	}
	main, ok := mod.Exports.Get("main")
	if !ok {
		return s.Runtime.None(), nil
	}
	return s.Runtime.CallFunction(main, []value.Thing{s.Runtime.None()})
}

// Compile reads and compiles a source file to a bytecode Module without
// executing it, for cmd/blg disasm.
func Compile(path string) (*bytecode.Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return vm.Compile(string(data), path)
}

// Disassemble compiles path and renders its bytecode as text.
func Disassemble(path string) (string, error) {
	m, err := Compile(path)
	if err != nil {
		return "", err
	}
	return bytecode.Disassemble(m), nil
}
