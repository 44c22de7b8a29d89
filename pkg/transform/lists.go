package transform

import "github.com/blg-lang/blg/pkg/ast"

// lowerLists rewrites every List literal into a right-associative chain
// of cons BinaryOps terminated by the none builtin. Run twice: once for
// source-level list literals, and again after object-literal desugar has
// introduced new ones.
func lowerLists(prog *ast.Program) *ast.Program {
	var visit func(ast.Node) ast.Node
	visit = func(n ast.Node) ast.Node {
		lst, ok := n.(*ast.List)
		if !ok {
			return n.VisitChildren(visit)
		}
		elems := make([]ast.Node, len(lst.Elements))
		for i, e := range lst.Elements {
			elems[i] = visit(e)
		}
		return consChain(lst.P, elems)
	}
	return visit(prog).(*ast.Program)
}

func consChain(pos ast.Pos, elems []ast.Node) ast.Node {
	if len(elems) == 0 {
		return &ast.PushBuiltin{P: pos, Name: "none"}
	}
	return &ast.BinaryOp{P: pos, Op: "::", Left: elems[0], Right: consChain(pos, elems[1:])}
}
