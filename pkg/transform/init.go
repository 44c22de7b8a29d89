package transform

import "github.com/blg-lang/blg/pkg/ast"

// wrapInit gathers every top-level non-Func statement into a synthetic
// `$init` function taking one argument, `$arg`; the declared/hoisted
// Funcs remain top-level siblings. After this pass a program has exactly
// two kinds of top-level children: $init and the other functions.
func wrapInit(prog *ast.Program) *ast.Program {
	var initStmts []ast.Node
	var funcs []ast.Node
	for _, s := range prog.Stmts {
		if fn, ok := s.(*ast.Func); ok {
			funcs = append(funcs, fn)
		} else {
			initStmts = append(initStmts, s)
		}
	}
	initFn := &ast.Func{
		P:      prog.P,
		Name:   "$init",
		Params: []string{"$arg"},
		Body:   &ast.Block{P: prog.P, Stmts: initStmts},
	}
	return &ast.Program{P: prog.P, Stmts: append([]ast.Node{initFn}, funcs...)}
}
