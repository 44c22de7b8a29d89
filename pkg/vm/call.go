package vm

import (
	"fmt"

	"github.com/blg-lang/blg/pkg/bytecode"
	"github.com/blg-lang/blg/pkg/value"
)

// decodeDefFunc reads a DEF_FUNC instruction at label without executing
// it, returning its declared parameter names and the offset its body
// starts at (the byte immediately after the prologue). callFunction uses
// this to bind arguments and jump straight past the prologue; CREATE_FUNC
// uses it to capture the parameter list on the Func value itself.
func decodeDefFunc(m *bytecode.Module, label int) (params []string, bodyIP int, err error) {
	if label < 0 || label >= len(m.Code) || bytecode.Opcode(m.Code[label]) != bytecode.OpDefFunc {
		return nil, 0, fmt.Errorf("bad function label %d: not a DEF_FUNC prologue", label)
	}
	arity := int(m.Code[label+1])
	params = make([]string, arity)
	for i := 0; i < arity; i++ {
		idx := readU32(m.Code, label+2+4*i)
		params[i] = constAt(m, idx)
	}
	return params, label + 2 + 4*arity, nil
}

// execCall implements the CALL opcode: pop the callee and its arguments
// off the value stack (callee pushed deepest, per pkg/bytecode's emission
// convention) and dispatch.
func (rt *Runtime) execCall(arity int) error {
	vs, err := rt.popN(arity + 1)
	if err != nil {
		return rt.Throw("%s", err.Error())
	}
	return rt.callFunction(vs[0], vs[1:])
}

// callFunction invokes fn with args and leaves the single result on top
// of the value stack — the shared core behind the CALL opcode and the
// exported CallFunction wrapper. Defined-function calls are driven by a
// nested executeCode pass rather than looping in place, so blg call
// depth maps directly onto Go call depth (no trampoline needed, and this
// keeps frame/scope bookkeeping in one place).
func (rt *Runtime) callFunction(fn value.Thing, args []value.Thing) error {
	switch t := fn.(type) {
	case *value.Func:
		if len(args) != len(t.Params) {
			return rt.Throw("function %s expects %d argument(s), got %d", t.Name, len(t.Params), len(args))
		}
		scope := value.NewScope(t.Closure)
		for i, p := range t.Params {
			scope.Bind(p, args[i])
		}
		rt.track(scope)
		_, bodyIP, err := decodeDefFunc(t.Module, t.Label)
		if err != nil {
			return rt.Throw("%s", err.Error())
		}
		entryHeight := len(rt.frames)
		rt.pushFrame(Frame{Module: t.Module, IP: bodyIP, Scope: scope, Name: t.Name})
		return rt.executeCode(entryHeight)

	case *value.NativeFunc:
		rt.pushFrame(Frame{Native: true, Name: t.Name})
		v, err := t.Fn(rt, args)
		rt.popFrame()
		if err != nil {
			return rt.wrapErr(err)
		}
		rt.push(v)
		return nil

	case *value.Symbol:
		v, err := value.Dispatch(t, args, rt.CallFunction)
		if err != nil {
			return rt.wrapErr(err)
		}
		rt.push(v)
		return nil

	default:
		return rt.Throw("%s is not callable", value.TypeName(fn))
	}
}

// wrapErr captures the current frame-stack snapshot around a plain Go
// error the first time it surfaces (pkg/value's Dispatch and NativeFns
// return ordinary errors, having no access to pkg/vm's frame stack) —
// *value.Error values it's already passed through are left untouched so
// a trace is captured once, at its origin, not re-stamped on every
// propagating call frame.
func (rt *Runtime) wrapErr(err error) error {
	if _, ok := err.(*value.Error); ok {
		return err
	}
	return rt.Throw("%s", err.Error())
}

// CallFunction implements value.Runtime: it lets a NativeFn (trycatch,
// Object dispatch-through-call, assert_equal's error path) invoke an
// arbitrary callable synchronously and get its result back as a Go value,
// without needing to be inside executeCode's loop itself.
func (rt *Runtime) CallFunction(fn value.Thing, args []value.Thing) (value.Thing, error) {
	if err := rt.callFunction(fn, args); err != nil {
		return nil, err
	}
	return rt.pop()
}
