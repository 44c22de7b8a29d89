// Package vm implements the bytecode virtual machine: a stack-based
// interpreter that drives a Runtime through a Module's instruction
// stream.
//
// The VM is a stack-machine with the following moving parts:
//
//  1. Value stack: intermediate results during computation
//  2. Frame stack: one entry per active call, Defined or Native
//  3. Scopes: a parent-linked chain of name->value bindings, one new
//     scope per call, rooted at the captured closure (or the builtins
//     scope for $init)
//  4. Operators: a fixed name->Thing table of the language's built-in
//     dispatch-driven and native operators, installed once at
//     construction
//
// Execution model:
//
//	Source: x = 1 + 2;
//
//	Bytecode ($init's body, after its DEF_FUNC prologue):
//	  PUSH_BUILTIN 1   ; "+"
//	  PUSH_INT 1
//	  PUSH_INT 2
//	  CALL 2
//	  STORE 2          ; "x"
//
//	Execution trace:
//	  PUSH_BUILTIN +  -> stack=[+]
//	  PUSH_INT 1      -> stack=[+, 1]
//	  PUSH_INT 2      -> stack=[+, 1, 2]
//	  CALL 2          -> stack=[3]      (dispatch(+, 1, 2))
//	  STORE x         -> stack=[]       (scope[x] = 3)
package vm

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/blg-lang/blg/pkg/bytecode"
	"github.com/blg-lang/blg/pkg/value"
)

// Runtime holds all VM state: the stacks, the scope/module bookkeeping,
// and the fixed operator/builtin tables. One Runtime corresponds to one
// interpreter session; the `{frame-stack, value-stack, none-singleton,
// allocated-things, allocated-scopes, operators, builtins, modules,
// loaded-bytecode, executable-dir}` shape is carried here field-for-field.
type Runtime struct {
	SessionID uuid.UUID

	valueStack []value.Thing
	frames     []Frame

	none value.Thing // the none-singleton every frame shares

	allocatedThings []value.Thing
	allocatedScopes []*value.Scope

	operators map[string]value.Thing
	builtins  *value.Scope

	modules        map[string]value.Thing // cache: import name -> Module value
	builtinModules map[string]value.Thing // pkg/stdlib's pre-registered std modules

	loadedBytecode []*bytecode.Module // kept alive for the Runtime's lifetime
	executableDir  string
	stdLibPaths    []string // extra Import search roots, ahead of {executableDir}/std_lib

	debugger *Debugger
}

// New creates a Runtime with its fixed operator table and empty builtins
// scope. Call RegisterBuiltin to populate global bindings (pkg/stdlib
// does this for the language's standard globals).
func New(executableDir string) *Runtime {
	rt := &Runtime{
		SessionID:     uuid.New(),
		none:          value.None{},
		operators:     make(map[string]value.Thing),
		builtins:      value.NewScope(nil),
		modules:       make(map[string]value.Thing),
		executableDir: executableDir,
	}
	for name, sym := range value.Operators() {
		rt.operators[name] = sym
	}
	rt.operators["none"] = rt.none // the none singleton lives in the operators registry too
	rt.track(rt.builtins)
	return rt
}

// RegisterOperator installs or overrides a name in the operators table
// (used by pkg/stdlib to add the native-style operators kept separate
// from the dispatch-driven set: tuple, ::, object, unpack_cons,
// unpack_call, assert_equal).
func (rt *Runtime) RegisterOperator(name string, v value.Thing) { rt.operators[name] = v }

// Operator looks a name up in the operators table, for pkg/stdlib to alias
// a dispatch-driven operator's *value.Symbol into the builtins scope under
// the same name (e.g. `get`, `responds_to`).
func (rt *Runtime) Operator(name string) (value.Thing, bool) {
	v, ok := rt.operators[name]
	return v, ok
}

// RegisterBuiltin installs a name into the builtins scope every module's
// top-level scope is parented to.
func (rt *Runtime) RegisterBuiltin(name string, v value.Thing) { rt.builtins.Bind(name, v) }

// SetStdLibPaths installs extra Import search roots (pkg/config's
// std_lib_paths), consulted before {executableDir}/std_lib.
func (rt *Runtime) SetStdLibPaths(paths []string) { rt.stdLibPaths = paths }

// None returns the shared none singleton.
func (rt *Runtime) None() value.Thing { return rt.none }

// Builtins returns the root builtins scope (read-only from the caller's
// perspective; pkg/stdlib is the only expected writer).
func (rt *Runtime) Builtins() *value.Scope { return rt.builtins }

// track records a freshly allocated Thing/Scope in the owning lists, so
// the Runtime (conceptually) knows every value it owns. Go's own GC
// reclaims memory; these lists exist for fidelity to the "teardown frees
// exactly those lists" ownership model and for test introspection
// (Allocated* below), not as a manual allocator.
func (rt *Runtime) track(v any) {
	switch t := v.(type) {
	case *value.Scope:
		rt.allocatedScopes = append(rt.allocatedScopes, t)
	default:
		rt.allocatedThings = append(rt.allocatedThings, v)
	}
}

// AllocatedThingCount and AllocatedScopeCount expose the tracked-object
// counts, for the ownership invariant's tests.
func (rt *Runtime) AllocatedThingCount() int { return len(rt.allocatedThings) }
func (rt *Runtime) AllocatedScopeCount() int { return len(rt.allocatedScopes) }

// Close releases everything this Runtime tracked: the allocated-things and
// allocated-scopes arenas, the loaded-bytecode list, and the module cache.
// Go's GC reclaims the memory regardless; this exists so a Runtime's
// lifetime has an explicit end matching the "freed en masse at teardown"
// ownership model, and so pkg/pipeline has something to defer.
func (rt *Runtime) Close() {
	rt.allocatedThings = nil
	rt.allocatedScopes = nil
	rt.loadedBytecode = nil
	rt.modules = nil
	rt.valueStack = nil
	rt.frames = nil
}

// KeepAlive pins a compiled Module for the Runtime's lifetime: modules
// produced by the pipeline are destroyed only when the runtime is.
func (rt *Runtime) KeepAlive(m *bytecode.Module) { rt.loadedBytecode = append(rt.loadedBytecode, m) }

// --- value stack -------------------------------------------------------

func (rt *Runtime) push(v value.Thing) { rt.valueStack = append(rt.valueStack, v) }

func (rt *Runtime) pop() (value.Thing, error) {
	if len(rt.valueStack) == 0 {
		return nil, fmt.Errorf("stack underflow")
	}
	v := rt.valueStack[len(rt.valueStack)-1]
	rt.valueStack = rt.valueStack[:len(rt.valueStack)-1]
	return v, nil
}

func (rt *Runtime) top() (value.Thing, error) {
	if len(rt.valueStack) == 0 {
		return nil, fmt.Errorf("stack underflow")
	}
	return rt.valueStack[len(rt.valueStack)-1], nil
}

// popN pops n values off the stack, returned in their original
// bottom-to-top (push) order.
func (rt *Runtime) popN(n int) ([]value.Thing, error) {
	if len(rt.valueStack) < n {
		return nil, fmt.Errorf("stack underflow: need %d values, have %d", n, len(rt.valueStack))
	}
	start := len(rt.valueStack) - n
	out := append([]value.Thing(nil), rt.valueStack[start:]...)
	rt.valueStack = rt.valueStack[:start]
	return out, nil
}

func (rt *Runtime) unwindValueStackTo(height int) {
	if height < len(rt.valueStack) {
		rt.valueStack = rt.valueStack[:height]
	}
}
