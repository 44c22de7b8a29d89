package vm

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/blg-lang/blg/pkg/bytecode"
	"github.com/blg-lang/blg/pkg/parser"
	"github.com/blg-lang/blg/pkg/rtutil"
	"github.com/blg-lang/blg/pkg/transform"
	"github.com/blg-lang/blg/pkg/validator"
	"github.com/blg-lang/blg/pkg/value"
)

// Compile lexes (inside parser.New), parses, validates, lowers, and emits
// source into a Module ready for executeModule — the fixed
// parse/validate/lower/emit pipeline.
func Compile(source, filename string) (*bytecode.Module, error) {
	prog, err := parser.New(source).Parse()
	if err != nil {
		return nil, errors.Wrapf(err, "%s: parse failed", filename)
	}
	if err := validator.Validate(prog); err != nil {
		return nil, errors.Wrapf(err, "%s: validation failed", filename)
	}
	mod, err := bytecode.Emit(transform.Lower(prog), filename)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: emit failed", filename)
	}
	return mod, nil
}

// executeModule runs a compiled module's $init entry to completion and
// wraps its top-level scope's bindings into a *value.Module: a module's
// value is its top-level scope once $init returns.
func (rt *Runtime) executeModule(m *bytecode.Module) (*value.Module, error) {
	rt.KeepAlive(m)
	params, bodyIP, err := decodeDefFunc(m, m.Entry)
	if err != nil {
		return nil, err
	}
	if len(params) > 1 {
		return nil, fmt.Errorf("%s: module entry must take at most one argument", m.Filename)
	}
	scope := value.NewScope(rt.builtins)
	for _, p := range params { // $init's $arg, bound to none
		scope.Bind(p, rt.none)
	}
	rt.track(scope)

	entryHeight := len(rt.frames)
	rt.pushFrame(Frame{Module: m, IP: bodyIP, Scope: scope, Name: "$init"})
	if err := rt.executeCode(entryHeight); err != nil {
		return nil, err
	}
	if _, err := rt.pop(); err != nil { // discard $init's implicit none return
		return nil, err
	}

	exports := rtutil.NewOrderedMap[string, value.Thing]()
	scope.Each(func(name string, v value.Thing) { exports.Set(name, v) })
	return &value.Module{Name: moduleName(m.Filename), Exports: exports}, nil
}

func moduleName(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// RunSource compiles and executes source as a fresh top-level module.
func (rt *Runtime) RunSource(source, filename string) (*value.Module, error) {
	m, err := Compile(source, filename)
	if err != nil {
		return nil, err
	}
	return rt.executeModule(m)
}

// Import resolves name to a module value in this order: the
// already-loaded cache, a literal filesystem path, each of pkg/config's
// extra std_lib_paths roots (checked in order), {executableDir}/std_lib/
// {name}, then the built-in module registry pkg/stdlib populates via
// RegisterBuiltinModule (functools, operators, internal/inheritance).
func (rt *Runtime) Import(name string) (value.Thing, error) {
	if v, ok := rt.modules[name]; ok {
		return v, nil
	}
	if src, ok := readSource(name); ok {
		return rt.loadAndCache(name, src, name)
	}
	for _, root := range rt.stdLibPaths {
		path := filepath.Join(root, name)
		if src, ok := readSource(path); ok {
			return rt.loadAndCache(name, src, path)
		}
	}
	stdPath := filepath.Join(rt.executableDir, "std_lib", name)
	if src, ok := readSource(stdPath); ok {
		return rt.loadAndCache(name, src, stdPath)
	}
	if v, ok := rt.builtinModules[name]; ok {
		rt.modules[name] = v
		return v, nil
	}
	return nil, rt.Throw("import: module %q not found", name)
}

func readSource(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	return string(data), true
}

func (rt *Runtime) loadAndCache(cacheKey, source, filename string) (value.Thing, error) {
	m, err := Compile(source, filename)
	if err != nil {
		return nil, err
	}
	mv, err := rt.executeModule(m)
	if err != nil {
		return nil, err
	}
	rt.modules[cacheKey] = mv
	return mv, nil
}

// RegisterBuiltinModule installs a pre-built module value (e.g. an
// embedded std-lib module compiled once at startup) into the built-in
// registry Import falls back to when no source file resolves.
func (rt *Runtime) RegisterBuiltinModule(name string, m value.Thing) {
	if rt.builtinModules == nil {
		rt.builtinModules = make(map[string]value.Thing)
	}
	rt.builtinModules[name] = m
}
