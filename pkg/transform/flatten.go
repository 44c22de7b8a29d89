package transform

import "github.com/blg-lang/blg/pkg/ast"

// flattenBlocks recursively splices any Block nested directly in a
// Func's statement list into its parent, so each body ends up a single
// flat sequence. None of the other passes in this package ever nest a
// Block inside another's Stmts, so today this is mostly a defensive
// no-op kept for when a future pass does.
func flattenBlocks(prog *ast.Program) *ast.Program {
	stmts := make([]ast.Node, len(prog.Stmts))
	for i, s := range prog.Stmts {
		if fn, ok := s.(*ast.Func); ok {
			stmts[i] = &ast.Func{P: fn.P, Name: fn.Name, Params: fn.Params, Body: flattenBlock(fn.Body)}
		} else {
			stmts[i] = s
		}
	}
	return &ast.Program{P: prog.P, Stmts: stmts}
}

func flattenBlock(b *ast.Block) *ast.Block {
	var out []ast.Node
	for _, s := range b.Stmts {
		if inner, ok := s.(*ast.Block); ok {
			out = append(out, flattenBlock(inner).Stmts...)
		} else {
			out = append(out, s)
		}
	}
	return &ast.Block{P: b.P, Stmts: out}
}
