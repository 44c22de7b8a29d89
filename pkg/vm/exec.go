package vm

import (
	"encoding/binary"
	"math"

	"github.com/blg-lang/blg/pkg/bytecode"
	"github.com/blg-lang/blg/pkg/value"
)

func readU32(code []byte, at int) uint32 { return binary.BigEndian.Uint32(code[at:]) }
func readI32(code []byte, at int) int32  { return int32(readU32(code, at)) }
func readF32(code []byte, at int) float32 {
	return math.Float32frombits(readU32(code, at))
}

// executeCode runs the frame the caller has just pushed until the frame
// stack returns to entryHeight, its pre-entry height. Each iteration reads one
// opcode from the current frame's module at its IP, advances past its
// operands, performs the effect, and updates the IP — unless the opcode
// itself transferred control (RETURN doesn't touch IP; CALL to a defined
// function advances the caller's IP immediately, before the callee's
// frame even exists). On error, the frame stack is unwound to entryHeight
// and the value stack to its height at entry before the error is returned.
func (rt *Runtime) executeCode(entryHeight int) (err error) {
	stackHeight := len(rt.valueStack)
	defer func() {
		if err != nil {
			rt.unwindFramesTo(entryHeight)
			rt.unwindValueStackTo(stackHeight)
		}
	}()
	for len(rt.frames) > entryHeight {
		f := rt.currentFrame()
		code := f.Module.Code
		if f.IP < 0 || f.IP >= len(code) {
			return rt.Throw("instruction pointer %d out of bounds", f.IP)
		}
		op := bytecode.Opcode(code[f.IP])

		if rt.debugger != nil && rt.debugger.enabled && rt.debugger.ShouldPause(f.IP) {
			if !rt.debugger.InteractivePrompt() {
				return rt.Throw("execution aborted from debugger")
			}
		}

		switch op {
		case bytecode.OpPushInt:
			rt.push(value.Int(readI32(code, f.IP+1)))
			f.IP += 5

		case bytecode.OpPushFloat:
			rt.push(value.Float(readF32(code, f.IP+1)))
			f.IP += 5

		case bytecode.OpPushBuiltin:
			name := constAt(f.Module, readU32(code, f.IP+1))
			v, ok := rt.resolveBuiltin(name)
			if !ok {
				return rt.Throw("undefined builtin: %s", name)
			}
			rt.push(v)
			f.IP += 5

		case bytecode.OpPushLiteral:
			rt.push(value.Str(constAt(f.Module, readU32(code, f.IP+1))))
			f.IP += 5

		case bytecode.OpPushNone:
			rt.push(rt.none)
			f.IP++

		case bytecode.OpLoad:
			name := constAt(f.Module, readU32(code, f.IP+1))
			v, ok := f.Scope.Lookup(name)
			if !ok {
				return rt.Throw("undefined name: %s", name)
			}
			rt.push(v)
			f.IP += 5

		case bytecode.OpStore:
			name := constAt(f.Module, readU32(code, f.IP+1))
			v, err := rt.pop()
			if err != nil {
				return rt.Throw("%s", err.Error())
			}
			f.Scope.Store(name, v)
			f.IP += 5

		case bytecode.OpCall:
			arity := int(readU32(code, f.IP+1))
			f.IP += 5 // advance the caller's IP before a defined call pushes its frame
			if err := rt.execCall(arity); err != nil {
				return err
			}

		case bytecode.OpReturn:
			v, err := rt.pop()
			if err != nil {
				return rt.Throw("%s", err.Error())
			}
			rt.popFrame()
			rt.push(v)

		case bytecode.OpCreateFunc:
			label := int(readU32(code, f.IP+1))
			params, _, err := decodeDefFunc(f.Module, label)
			if err != nil {
				return rt.Throw("%s", err.Error())
			}
			fn := &value.Func{Module: f.Module, Label: label, Params: params, Closure: f.Scope}
			rt.track(fn)
			rt.push(fn)
			f.IP += 5

		case bytecode.OpCondJumpTrue:
			v, err := rt.pop()
			if err != nil {
				return rt.Throw("%s", err.Error())
			}
			target := int(readU32(code, f.IP+1))
			if value.Truthy(v) {
				f.IP = target
			} else {
				f.IP += 5
			}

		case bytecode.OpCondJumpFalse:
			v, err := rt.pop()
			if err != nil {
				return rt.Throw("%s", err.Error())
			}
			target := int(readU32(code, f.IP+1))
			if !value.Truthy(v) {
				f.IP = target
			} else {
				f.IP += 5
			}

		case bytecode.OpAbsJump:
			f.IP = int(readU32(code, f.IP+1))

		case bytecode.OpDup:
			v, err := rt.top()
			if err != nil {
				return rt.Throw("%s", err.Error())
			}
			rt.push(v)
			f.IP++

		case bytecode.OpRot3:
			vs, err := rt.popN(3)
			if err != nil {
				return rt.Throw("%s", err.Error())
			}
			// a b c -> b c a
			rt.push(vs[1])
			rt.push(vs[2])
			rt.push(vs[0])
			f.IP++

		case bytecode.OpSwap:
			vs, err := rt.popN(2)
			if err != nil {
				return rt.Throw("%s", err.Error())
			}
			rt.push(vs[1])
			rt.push(vs[0])
			f.IP++

		case bytecode.OpPop:
			if _, err := rt.pop(); err != nil {
				return rt.Throw("%s", err.Error())
			}
			f.IP++

		case bytecode.OpCheckNone:
			v, err := rt.pop()
			if err != nil {
				return rt.Throw("%s", err.Error())
			}
			if _, ok := v.(value.None); !ok {
				return rt.Throw("destructure mismatch: expected none, got %s", value.TypeName(v))
			}
			f.IP++

		default:
			return rt.Throw("unknown opcode %d at instruction pointer %d", byte(op), f.IP)
		}
	}
	return nil
}

func constAt(m *bytecode.Module, idx uint32) string {
	if int(idx) >= len(m.Constants) {
		return ""
	}
	return m.Constants[idx]
}

// resolveBuiltin looks a PUSH_BUILTIN name up first in the operators
// table, then in the builtins scope — "none" and the dispatch-driven
// operators live in the former, ordinary globals (head, tail, import,
// ...) in the latter.
func (rt *Runtime) resolveBuiltin(name string) (value.Thing, bool) {
	if v, ok := rt.operators[name]; ok {
		return v, true
	}
	return rt.builtins.Lookup(name)
}
