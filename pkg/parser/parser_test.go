package parser

import (
	"testing"

	"github.com/blg-lang/blg/pkg/ast"
)

func parseOK(t *testing.T, src string) *ast.Program {
	t.Helper()
	p := New(src)
	prog, err := p.Parse()
	if err != nil {
		t.Fatalf("parse error for %q: %v", src, err)
	}
	return prog
}

func TestParse_IntLiteral(t *testing.T) {
	prog := parseOK(t, "42;")
	n, ok := prog.Stmts[0].(*ast.Int)
	if !ok || n.Value != 42 {
		t.Fatalf("expected Int(42), got %v", prog.Stmts[0])
	}
}

func TestParse_UnaryMinusOnLiteral(t *testing.T) {
	prog := parseOK(t, "-5;")
	n, ok := prog.Stmts[0].(*ast.Int)
	if !ok || n.Value != -5 {
		t.Fatalf("expected Int(-5), got %v", prog.Stmts[0])
	}
}

func TestParse_BinaryMinusAfterCallChain(t *testing.T) {
	// `f x - 1` must parse as (f x) - 1, not f(x, -1), since '-' never
	// continues a juxtaposition chain.
	prog := parseOK(t, "f x - 1;")
	bin, ok := prog.Stmts[0].(*ast.BinaryOp)
	if !ok || bin.Op != "-" {
		t.Fatalf("expected top-level BinaryOp(-), got %v", prog.Stmts[0])
	}
	call, ok := bin.Left.(*ast.Call)
	if !ok || len(call.Args) != 1 {
		t.Fatalf("expected Call(f; x) as left operand, got %v", bin.Left)
	}
}

func TestParse_CallWithMultipleArgs(t *testing.T) {
	prog := parseOK(t, "f a b c;")
	call, ok := prog.Stmts[0].(*ast.Call)
	if !ok || len(call.Args) != 3 {
		t.Fatalf("expected 3-arg call, got %v", prog.Stmts[0])
	}
}

func TestParse_NegativeArgumentStillParses(t *testing.T) {
	// a negative-literal argument has to be parenthesised: a bare `f -1`
	// parses '-' as binary minus, since factorAhead never starts an
	// argument at '-'; inside the parens the sign is consumed by parseFactor.
	prog := parseOK(t, "f (-1);")
	call, ok := prog.Stmts[0].(*ast.Call)
	if !ok || len(call.Args) != 1 {
		t.Fatalf("expected 1-arg call, got %v", prog.Stmts[0])
	}
	arg, ok := call.Args[0].(*ast.Int)
	if !ok || arg.Value != -1 {
		t.Fatalf("expected Int(-1) argument, got %v", call.Args[0])
	}
}

func TestParse_Precedence(t *testing.T) {
	prog := parseOK(t, "1 + 2 * 3;")
	bin, ok := prog.Stmts[0].(*ast.BinaryOp)
	if !ok || bin.Op != "+" {
		t.Fatalf("expected top-level +, got %v", prog.Stmts[0])
	}
	rhs, ok := bin.Right.(*ast.BinaryOp)
	if !ok || rhs.Op != "*" {
		t.Fatalf("expected * nested under +, got %v", bin.Right)
	}
}

func TestParse_ConsRightAssociative(t *testing.T) {
	prog := parseOK(t, "1 : 2 : 3;")
	outer, ok := prog.Stmts[0].(*ast.BinaryOp)
	if !ok || outer.Op != ":" {
		t.Fatalf("expected top-level cons, got %v", prog.Stmts[0])
	}
	inner, ok := outer.Right.(*ast.BinaryOp)
	if !ok || inner.Op != ":" {
		t.Fatalf("expected cons nested on the right (right-assoc), got %v", outer.Right)
	}
}

func TestParse_NotBindsTighterThanAndOr(t *testing.T) {
	prog := parseOK(t, "not a and b;")
	bin, ok := prog.Stmts[0].(*ast.BinaryOp)
	if !ok || bin.Op != "and" {
		t.Fatalf("expected top-level 'and', got %v", prog.Stmts[0])
	}
	if _, ok := bin.Left.(*ast.UnaryOp); !ok {
		t.Fatalf("expected 'not a' as left operand, got %v", bin.Left)
	}
}

func TestParse_Assignment(t *testing.T) {
	prog := parseOK(t, "x = 1;")
	a, ok := prog.Stmts[0].(*ast.Assignment)
	if !ok {
		t.Fatalf("expected Assignment, got %v", prog.Stmts[0])
	}
	if _, ok := a.Lvalue.(*ast.Identifier); !ok {
		t.Fatalf("expected Identifier lvalue, got %v", a.Lvalue)
	}
}

func TestParse_TupleAssignment(t *testing.T) {
	prog := parseOK(t, "(a, b) = (1, 2);")
	a, ok := prog.Stmts[0].(*ast.Assignment)
	if !ok {
		t.Fatalf("expected Assignment, got %v", prog.Stmts[0])
	}
	if _, ok := a.Lvalue.(*ast.Tuple); !ok {
		t.Fatalf("expected Tuple lvalue, got %v", a.Lvalue)
	}
	if _, ok := a.Rvalue.(*ast.Tuple); !ok {
		t.Fatalf("expected Tuple rvalue, got %v", a.Rvalue)
	}
}

func TestParse_IfElifElse(t *testing.T) {
	prog := parseOK(t, `
if a then
  1;
elif b then
  2;
else
  3;
end
`)
	n, ok := prog.Stmts[0].(*ast.If)
	if !ok || len(n.Branches) != 3 {
		t.Fatalf("expected If with 3 branches, got %v", prog.Stmts[0])
	}
	if n.Branches[2].Cond != nil {
		t.Fatalf("expected else branch to have nil Cond")
	}
}

func TestParse_While(t *testing.T) {
	prog := parseOK(t, "while x do x = x - 1; end")
	n, ok := prog.Stmts[0].(*ast.While)
	if !ok || len(n.Body.Stmts) != 1 {
		t.Fatalf("expected While with 1-statement body, got %v", prog.Stmts[0])
	}
}

func TestParse_FuncDef(t *testing.T) {
	// every identifier between 'def' and 'do' is a parameter; a func
	// literal has no source-level name of its own.
	prog := parseOK(t, "add = def x y do <- x + y; end;")
	asn, ok := prog.Stmts[0].(*ast.Assignment)
	if !ok {
		t.Fatalf("expected Assignment, got %v", prog.Stmts[0])
	}
	f, ok := asn.Rvalue.(*ast.Func)
	if !ok || len(f.Params) != 2 || f.Params[0] != "x" || f.Params[1] != "y" {
		t.Fatalf("expected Func(x,y), got %v", asn.Rvalue)
	}
	if _, ok := f.Body.Stmts[0].(*ast.Return); !ok {
		t.Fatalf("expected Return as body statement, got %v", f.Body.Stmts[0])
	}
}

func TestParse_RecursiveFuncSeesOwnNameViaEnclosingScope(t *testing.T) {
	// fact references itself through the variable it is being assigned
	// to, not through any name carried on the Func node.
	prog := parseOK(t, "fact = def n do if n == 1 then <- 1; else <- n * fact(n - 1); end end;")
	asn := prog.Stmts[0].(*ast.Assignment)
	f, ok := asn.Rvalue.(*ast.Func)
	if !ok || f.Name != "" || len(f.Params) != 1 || f.Params[0] != "n" {
		t.Fatalf("expected anonymous Func(n), got %v", asn.Rvalue)
	}
}

func TestParse_StringEscapesRoundTrip(t *testing.T) {
	prog := parseOK(t, `'a\nb';`)
	s, ok := prog.Stmts[0].(*ast.Literal)
	if !ok || s.Value != "a\nb" {
		t.Fatalf("expected Literal(a\\nb), got %v", prog.Stmts[0])
	}
}

func TestParse_ObjectLiteral(t *testing.T) {
	prog := parseOK(t, "{x: 1, y: 2};")
	o, ok := prog.Stmts[0].(*ast.Object)
	if !ok || len(o.Pairs) != 2 {
		t.Fatalf("expected Object with 2 pairs, got %v", prog.Stmts[0])
	}
}

func TestParse_ErrorRecordsFirstOnly(t *testing.T) {
	// the ';' at column 5 fails first; the missing ')' found afterwards
	// must not replace that error.
	p := New("(1 +;")
	_, err := p.Parse()
	if err == nil {
		t.Fatalf("expected a parse error")
	}
	if err.Error() != "unexpected token ; at (1,5)" {
		t.Fatalf("expected the first error to be kept, got %q", err.Error())
	}
}

func TestParse_DeepCopyProducesEqualTree(t *testing.T) {
	prog := parseOK(t, "def f x do <- x + 1; end;")
	copy := ast.DeepCopy(prog)
	if !prog.Equals(copy) {
		t.Fatalf("deep copy is not structurally equal to the original")
	}
}
