package transform

import "github.com/blg-lang/blg/pkg/ast"

// lowerDestructure rewrites every Assignment into "evaluate the rvalue,
// then run a sequence of stack ops shaped like the lvalue". Like control
// flow, this changes statement counts, so it works block-by-block rather
// than through a 1:1 node substitution.
func lowerDestructure(prog *ast.Program) *ast.Program {
	stmts := make([]ast.Node, 0, len(prog.Stmts))
	for _, s := range prog.Stmts {
		if fn, ok := s.(*ast.Func); ok {
			stmts = append(stmts, &ast.Func{P: fn.P, Name: fn.Name, Params: fn.Params, Body: lowerDestructureBlock(fn.Body)})
			continue
		}
		stmts = append(stmts, lowerDestructureStmt(s)...)
	}
	return &ast.Program{P: prog.P, Stmts: stmts}
}

func lowerDestructureBlock(b *ast.Block) *ast.Block {
	var out []ast.Node
	for _, s := range b.Stmts {
		out = append(out, lowerDestructureStmt(s)...)
	}
	return &ast.Block{P: b.P, Stmts: out}
}

func lowerDestructureStmt(s ast.Node) []ast.Node {
	asn, ok := s.(*ast.Assignment)
	if !ok {
		return []ast.Node{s}
	}
	out := []ast.Node{asn.Rvalue}
	return append(out, destructureInto(asn.Lvalue)...)
}

// destructureInto assumes the value being matched is already on top of
// the stack, and returns a sequence of ops that fully consumes it,
// binding whatever names the lvalue shape names.
//
// The four builtins it reaches for (get, unpack_cons, unpack_call,
// assert_equal) and the "symbol" helper used for object-pattern keys are
// plain native helpers, applied via the recurring idiom: PushBuiltin the
// helper, Swap so it sits under the value, push any extra constant
// operands, then CallOp(arity).
func destructureInto(lv ast.Node) []ast.Node {
	switch t := lv.(type) {
	case *ast.Identifier:
		if t.Name == "none" {
			return []ast.Node{&ast.CheckNone{P: t.P}}
		}
		return []ast.Node{&ast.Store{P: t.P, Name: t.Name}}

	case *ast.Tuple:
		return destructureElements(t.P, t.Elements)

	case *ast.BinaryOp:
		if t.Op == ":" {
			out := []ast.Node{
				&ast.PushBuiltin{P: t.P, Name: "unpack_cons"},
				&ast.Swap{P: t.P},
				&ast.CallOp{P: t.P, Arity: 1},
			}
			return append(out, destructureElements(t.P, []ast.Node{t.Left, t.Right})...)
		}

	case *ast.Object:
		return destructureObject(t)

	case *ast.Call:
		return destructureCall(t)
	}

	// Integer / float / string-literal constant pattern: assert equality
	// against the pushed value and discard assert_equal's result.
	pos := lv.Pos()
	return []ast.Node{
		&ast.PushBuiltin{P: pos, Name: "assert_equal"},
		&ast.Swap{P: pos},
		lv,
		&ast.CallOp{P: pos, Arity: 2},
		&ast.Pop{P: pos},
	}
}

// destructureElements handles a tuple-shaped value with n elements: each
// round dups the remaining value (unless this is the last element),
// calls get(value, i), and recurses on that element's own pattern.
func destructureElements(pos ast.Pos, elems []ast.Node) []ast.Node {
	var out []ast.Node
	for i, e := range elems {
		if i != len(elems)-1 {
			out = append(out, &ast.Dup{P: pos})
		}
		out = append(out,
			&ast.PushBuiltin{P: pos, Name: "get"},
			&ast.Swap{P: pos},
			&ast.PushInt{P: pos, Value: int32(i)},
			&ast.CallOp{P: pos, Arity: 2},
		)
		out = append(out, destructureInto(e)...)
	}
	return out
}

// destructureObject mirrors destructureElements for `{k: pattern, ...}`:
// each key is turned into a symbol and called with the dup'd value as
// its single argument, triggering the same dispatch a `.` field access
// would.
func destructureObject(o *ast.Object) []ast.Node {
	var out []ast.Node
	for i, pair := range o.Pairs {
		if i != len(o.Pairs)-1 {
			out = append(out, &ast.Dup{P: o.P})
		}
		out = append(out,
			&ast.Builtin{P: o.P, Name: "symbol", Args: []ast.Node{&ast.Literal{P: o.P, Value: pair.Key}}},
			&ast.Swap{P: o.P},
			&ast.CallOp{P: o.P, Arity: 1},
		)
		out = append(out, destructureInto(pair.Value)...)
	}
	return out
}

// destructureCall handles `f a1 .. an` as an lvalue: unpack_call(f,
// value, n) returns an n-tuple that is then destructured element-wise
// against the call's own arguments (its real use is matching against a
// value that responds to being "unpacked" through f, e.g. a constructor
// pattern).
func destructureCall(c *ast.Call) []ast.Node {
	out := []ast.Node{
		&ast.PushBuiltin{P: c.P, Name: "unpack_call"},
		c.Fn,
		&ast.Rot3{P: c.P},
		&ast.PushInt{P: c.P, Value: int32(len(c.Args))},
		&ast.CallOp{P: c.P, Arity: 3},
	}
	return append(out, destructureElements(c.P, c.Args)...)
}
