// Package transform lowers a parsed program into an equivalent tree in
// which every remaining node is either a source-level atom, a Func, a
// Block, or one of the low-level stack-op tags declared in pkg/ast
// (Label, AbsJump, CondJump, PushBuiltin, PushInt, CallOp, Store, Dup,
// Push, Rot3, Swap, Pop, Builtin, CheckNone, NewFunc) that pkg/bytecode's
// emitter understands directly.
//
// Lower runs nine fixed-order passes, one pass per concern so each stays
// total and easy to reason about on its own:
//
//  1. Closure extraction  - every Func anywhere is hoisted to a top-level
//     sibling and replaced in situ by Push(NewFunc(name)).
//  2. List->cons           - `[a, b, c]` becomes nested cons cells ending
//     in the none builtin.
//  3. Control-flow->jumps  - If/While become Label/AbsJump/CondJump
//     sequences.
//  4. Destructure          - every assignment becomes "push the rvalue,
//     then run lvalue-shaped stack ops".
//  5. Object-literal desugar - `{k: v, ...}` becomes a call to the
//     `object` builtin over a list of 2-tuples.
//  6. List->cons again     - step 5 just produced new list literals.
//  7. Block flattening     - splice nested blocks into their parent.
//  8. Init-function wrap   - top-level non-Func statements become the
//     body of a synthetic `$init` function.
//  9. Block flattening again.
//
// Every pass shares one gensym pool: hoisted function names and jump
// labels are drawn from the same "$N" sequence, kept dense across a
// whole Lower call.
package transform

import (
	"fmt"

	"github.com/blg-lang/blg/pkg/ast"
)

// gensym produces the "$N" name pool shared by closure extraction and
// control-flow lowering.
type gensym struct{ n int }

func (g *gensym) next() string {
	name := fmt.Sprintf("$%d", g.n)
	g.n++
	return name
}

// Lower runs the nine passes in order and returns the lowered program.
func Lower(prog *ast.Program) *ast.Program {
	g := &gensym{}
	p := extractClosures(g, prog)
	p = lowerLists(p)
	p = lowerControlFlow(g, p)
	p = lowerDestructure(p)
	p = lowerObjectLiterals(p)
	p = lowerLists(p)
	p = flattenBlocks(p)
	p = wrapInit(p)
	p = flattenBlocks(p)
	return p
}
