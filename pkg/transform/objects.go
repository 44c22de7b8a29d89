package transform

import "github.com/blg-lang/blg/pkg/ast"

// lowerObjectLiterals rewrites `{k1: v1, k2: v2}` into a call to the
// `object` builtin over a list of (key, value) tuples; the list literal
// it produces is why list->cons runs a second time right after this.
func lowerObjectLiterals(prog *ast.Program) *ast.Program {
	var visit func(ast.Node) ast.Node
	visit = func(n ast.Node) ast.Node {
		obj, ok := n.(*ast.Object)
		if !ok {
			return n.VisitChildren(visit)
		}
		pairs := make([]ast.Node, len(obj.Pairs))
		for i, p := range obj.Pairs {
			pairs[i] = &ast.Tuple{P: obj.P, Elements: []ast.Node{
				&ast.Literal{P: obj.P, Value: p.Key},
				visit(p.Value),
			}}
		}
		list := &ast.List{P: obj.P, Elements: pairs}
		return &ast.Builtin{P: obj.P, Name: "object", Args: []ast.Node{list}}
	}
	return visit(prog).(*ast.Program)
}
