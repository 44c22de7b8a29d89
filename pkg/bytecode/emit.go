package bytecode

import (
	"fmt"

	"github.com/blg-lang/blg/pkg/ast"
)

// Emit walks a lowered program (the output of pkg/transform.Lower: a flat
// sequence of top-level Funcs, one of them named "$init") and produces a
// finalized Module. Every node the emitter sees is expected to be either a
// surviving source-level atom/compound (Int, Float, Literal, Identifier,
// Tuple, Call, BinaryOp, UnaryOp, Return) or one of pkg/ast's lowered
// stack-op tags; anything else means the lowering passes left something
// unlowered, which is a bug in the transformer rather than a user error, so
// it is reported as a hard error rather than silently skipped.
func Emit(prog *ast.Program, filename string) (*Module, error) {
	mb := NewModuleBuilder(filename)
	e := &emitter{mb: mb, labels: make(map[string]int)}

	var initLabel int
	var sawInit bool
	for _, s := range prog.Stmts {
		fn, ok := s.(*ast.Func)
		if !ok {
			return nil, fmt.Errorf("bytecode: expected only Func nodes at top level, got %s", s.String())
		}
		label := e.labelFor(fn.Name)
		if fn.Name == "$init" {
			initLabel, sawInit = label, true
		}
	}
	if !sawInit {
		return nil, fmt.Errorf("bytecode: no $init function in program")
	}

	for _, s := range prog.Stmts {
		fn := s.(*ast.Func)
		if err := e.emitFunc(fn); err != nil {
			return nil, err
		}
	}

	mb.SetEntry(initLabel)
	return mb.Finalize()
}

type emitter struct {
	mb     *ModuleBuilder
	labels map[string]int
}

// labelFor returns the builder label id for a name, allocating one on first
// use. Jump-target names and hoisted-function names share one dense "$N"
// pool upstream, but nothing here depends on that — any string name works.
func (e *emitter) labelFor(name string) int {
	if id, ok := e.labels[name]; ok {
		return id
	}
	id := e.mb.NewLabel()
	e.labels[name] = id
	return id
}

func (e *emitter) emitFunc(fn *ast.Func) error {
	e.mb.MarkLabel(e.labelFor(fn.Name))
	e.mb.DefFunc(fn.Params)
	for _, s := range fn.Body.Stmts {
		if err := e.emitStmt(s); err != nil {
			return err
		}
	}
	if !endsInReturn(fn.Body) {
		e.mb.PushNone()
		e.mb.Return()
	}
	return nil
}

func endsInReturn(b *ast.Block) bool {
	if len(b.Stmts) == 0 {
		return false
	}
	_, ok := b.Stmts[len(b.Stmts)-1].(*ast.Return)
	return ok
}

// emitStmt emits one body statement. Most statement shapes are expressions
// evaluated for their stack side effect (the lowering passes already turned
// "statement that isn't a Return" into sequences of these).
func (e *emitter) emitStmt(n ast.Node) error {
	p := n.Pos()
	e.mb.MarkSource(p.Line, p.Column)

	switch v := n.(type) {
	case *ast.Return:
		if err := e.emitExpr(v.Value); err != nil {
			return err
		}
		e.mb.Return()
		return nil

	case *ast.Label:
		e.mb.MarkLabel(e.labelFor(v.Name))
		return nil
	case *ast.AbsJump:
		e.mb.AbsJump(e.labelFor(v.Target))
		return nil
	case *ast.CondJump:
		if v.When {
			e.mb.CondJumpTrue(e.labelFor(v.Target))
		} else {
			e.mb.CondJumpFalse(e.labelFor(v.Target))
		}
		return nil
	case *ast.Store:
		e.mb.Store(v.Name)
		return nil
	case *ast.Dup:
		e.mb.Dup()
		return nil
	case *ast.Rot3:
		e.mb.Rot3()
		return nil
	case *ast.Swap:
		e.mb.Swap()
		return nil
	case *ast.Pop:
		e.mb.Pop()
		return nil
	case *ast.CheckNone:
		e.mb.CheckNone()
		return nil
	case *ast.CallOp:
		e.mb.Call(v.Arity)
		return nil
	case *ast.Push:
		return e.emitExpr(v.Value)
	}

	// Everything else is an expression evaluated for its pushed value
	// (e.g. a bare Call statement whose result is discarded by a later
	// Pop that the destructure pass already inserted, or a PushInt/
	// PushBuiltin/Builtin/NewFunc produced directly by a lowering pass).
	return e.emitExpr(n)
}

// emitExpr emits code that leaves exactly one value on the stack.
func (e *emitter) emitExpr(n ast.Node) error {
	switch v := n.(type) {
	case *ast.Int:
		e.mb.PushInt(v.Value)
		return nil
	case *ast.Float:
		e.mb.PushFloat(v.Value)
		return nil
	case *ast.Literal:
		e.mb.PushLiteral(v.Value)
		return nil
	case *ast.Identifier:
		e.mb.Load(v.Name)
		return nil
	case *ast.PushInt:
		e.mb.PushInt(v.Value)
		return nil
	case *ast.PushBuiltin:
		e.mb.PushBuiltin(v.Name)
		return nil
	case *ast.NewFunc:
		e.mb.CreateFunc(e.labelFor(v.Name))
		return nil
	case *ast.Push:
		return e.emitExpr(v.Value)

	case *ast.Tuple:
		e.mb.PushBuiltin("tuple")
		for _, el := range v.Elements {
			if err := e.emitExpr(el); err != nil {
				return err
			}
		}
		e.mb.Call(len(v.Elements))
		return nil

	case *ast.Call:
		if err := e.emitExpr(v.Fn); err != nil {
			return err
		}
		for _, a := range v.Args {
			if err := e.emitExpr(a); err != nil {
				return err
			}
		}
		e.mb.Call(len(v.Args))
		return nil

	case *ast.BinaryOp:
		e.mb.PushBuiltin(v.Op)
		if err := e.emitExpr(v.Left); err != nil {
			return err
		}
		if err := e.emitExpr(v.Right); err != nil {
			return err
		}
		e.mb.Call(2)
		return nil

	case *ast.UnaryOp:
		e.mb.PushBuiltin(v.Op)
		if err := e.emitExpr(v.Operand); err != nil {
			return err
		}
		e.mb.Call(1)
		return nil

	case *ast.Builtin:
		e.mb.PushBuiltin(v.Name)
		for _, a := range v.Args {
			if err := e.emitExpr(a); err != nil {
				return err
			}
		}
		e.mb.Call(len(v.Args))
		return nil

	case *ast.CallOp:
		e.mb.Call(v.Arity)
		return nil
	case *ast.Dup:
		e.mb.Dup()
		return nil
	case *ast.Rot3:
		e.mb.Rot3()
		return nil
	case *ast.Swap:
		e.mb.Swap()
		return nil
	case *ast.CheckNone:
		e.mb.CheckNone()
		return nil
	}

	return fmt.Errorf("bytecode: unexpected node after lowering: %s", n.String())
}
