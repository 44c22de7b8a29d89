package transform

import "github.com/blg-lang/blg/pkg/ast"

// extractClosures hoists every Func found anywhere in the tree (including
// inside other Funcs' bodies, which are processed before the enclosing
// Func itself is hoisted) to a fresh top-level sibling, leaving a
// Push(NewFunc(name)) reference in its place. Hoisted functions are
// prepended to the program's statement list ahead of whatever remains.
func extractClosures(g *gensym, prog *ast.Program) *ast.Program {
	var hoisted []ast.Node

	var visit func(ast.Node) ast.Node
	visit = func(n ast.Node) ast.Node {
		fn, ok := n.(*ast.Func)
		if !ok {
			return n.VisitChildren(visit)
		}
		body := fn.Body.VisitChildren(visit).(*ast.Block)
		name := g.next()
		hoisted = append(hoisted, &ast.Func{P: fn.P, Name: name, Params: fn.Params, Body: body})
		return &ast.Push{P: fn.P, Value: &ast.NewFunc{P: fn.P, Name: name}}
	}

	stmts := make([]ast.Node, len(prog.Stmts))
	for i, s := range prog.Stmts {
		stmts[i] = visit(s)
	}
	return &ast.Program{P: prog.P, Stmts: append(hoisted, stmts...)}
}
