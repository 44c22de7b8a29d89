package transform

import "github.com/blg-lang/blg/pkg/ast"

// lowerControlFlow expands every If and While into explicit
// Label/AbsJump/CondJump sequences. It operates block-by-block (rather
// than node-by-node via VisitChildren) because a single If or While
// statement expands into many sibling statements, which a 1:1 node
// substitution can't express.
func lowerControlFlow(g *gensym, prog *ast.Program) *ast.Program {
	stmts := make([]ast.Node, 0, len(prog.Stmts))
	for _, s := range prog.Stmts {
		if fn, ok := s.(*ast.Func); ok {
			stmts = append(stmts, &ast.Func{P: fn.P, Name: fn.Name, Params: fn.Params, Body: lowerControlFlowBlock(g, fn.Body)})
			continue
		}
		stmts = append(stmts, lowerControlFlowStmt(g, s)...)
	}
	return &ast.Program{P: prog.P, Stmts: stmts}
}

func lowerControlFlowBlock(g *gensym, b *ast.Block) *ast.Block {
	var out []ast.Node
	for _, s := range b.Stmts {
		out = append(out, lowerControlFlowStmt(g, s)...)
	}
	return &ast.Block{P: b.P, Stmts: out}
}

func lowerControlFlowStmt(g *gensym, s ast.Node) []ast.Node {
	switch t := s.(type) {
	case *ast.If:
		return lowerIf(g, t)
	case *ast.While:
		return lowerWhile(g, t)
	default:
		return []ast.Node{s}
	}
}

// lowerIf: for each conditional branch, push cond, CondJump(when=false)
// past the body to that branch's $next label, emit the body, jump to
// $end; fall through from the last $next into the else body (if any);
// $end closes the chain.
func lowerIf(g *gensym, n *ast.If) []ast.Node {
	end := g.next()
	var out []ast.Node
	for _, br := range n.Branches {
		body := lowerControlFlowBlock(g, br.Body)
		if br.Cond == nil {
			out = append(out, body.Stmts...)
			continue
		}
		next := g.next()
		out = append(out, br.Cond)
		out = append(out, &ast.CondJump{P: n.P, Target: next, When: false})
		out = append(out, body.Stmts...)
		out = append(out, &ast.AbsJump{P: n.P, Target: end})
		out = append(out, &ast.Label{P: n.P, Name: next})
	}
	out = append(out, &ast.Label{P: n.P, Name: end})
	return out
}

// lowerWhile: $start re-pushes and re-checks cond every iteration, so a
// CondJump(when=false) out to $end sees a fresh value each time round.
func lowerWhile(g *gensym, n *ast.While) []ast.Node {
	start := g.next()
	end := g.next()
	body := lowerControlFlowBlock(g, n.Body)
	var out []ast.Node
	out = append(out, &ast.Label{P: n.P, Name: start})
	out = append(out, n.Cond)
	out = append(out, &ast.CondJump{P: n.P, Target: end, When: false})
	out = append(out, body.Stmts...)
	out = append(out, &ast.AbsJump{P: n.P, Target: start})
	out = append(out, &ast.Label{P: n.P, Name: end})
	return out
}
