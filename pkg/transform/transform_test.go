package transform

import (
	"testing"

	"github.com/blg-lang/blg/pkg/ast"
	"github.com/blg-lang/blg/pkg/parser"
)

func lower(t *testing.T, src string) *ast.Program {
	t.Helper()
	p := parser.New(src)
	prog, err := p.Parse()
	if err != nil {
		t.Fatalf("parse error for %q: %v", src, err)
	}
	return Lower(prog)
}

func findFunc(t *testing.T, prog *ast.Program, name string) *ast.Func {
	t.Helper()
	for _, s := range prog.Stmts {
		if fn, ok := s.(*ast.Func); ok && fn.Name == name {
			return fn
		}
	}
	t.Fatalf("no Func named %s among top-level statements", name)
	return nil
}

func TestLower_TopLevelHasInitAndOnlyFuncs(t *testing.T) {
	prog := lower(t, "x = 1;")
	for _, s := range prog.Stmts {
		if _, ok := s.(*ast.Func); !ok {
			t.Fatalf("expected every top-level statement to be a Func, got %v", s)
		}
	}
	findFunc(t, prog, "$init")
}

func TestLower_FuncIsHoistedAndReplacedByPushNewFunc(t *testing.T) {
	prog := lower(t, "f = def x do <- x; end;")
	init := findFunc(t, prog, "$init")
	if len(init.Body.Stmts) == 0 {
		t.Fatalf("expected $init to have statements")
	}
	// $init's first statement is now the rvalue (Push(NewFunc($N))) followed
	// by a Store("f").
	push, ok := init.Body.Stmts[0].(*ast.Push)
	if !ok {
		t.Fatalf("expected Push as first $init statement, got %v", init.Body.Stmts[0])
	}
	if _, ok := push.Value.(*ast.NewFunc); !ok {
		t.Fatalf("expected Push to wrap a NewFunc, got %v", push.Value)
	}
	store, ok := init.Body.Stmts[1].(*ast.Store)
	if !ok || store.Name != "f" {
		t.Fatalf("expected Store(f) as second statement, got %v", init.Body.Stmts[1])
	}
	// the hoisted function itself is a sibling distinct from $init.
	found := false
	for _, s := range prog.Stmts {
		if fn, ok := s.(*ast.Func); ok && fn.Name == push.Value.(*ast.NewFunc).Name {
			found = true
			if len(fn.Params) != 1 || fn.Params[0] != "x" {
				t.Fatalf("expected hoisted func to keep its param, got %v", fn.Params)
			}
		}
	}
	if !found {
		t.Fatalf("hoisted function %s not found among top-level siblings", push.Value.(*ast.NewFunc).Name)
	}
}

func TestLower_NestedClosureHoistedToTopLevel(t *testing.T) {
	prog := lower(t, "make = def do inner = def y do <- y; end; <- inner; end;")
	count := 0
	for _, s := range prog.Stmts {
		if _, ok := s.(*ast.Func); ok {
			count++
		}
	}
	// $init, the outer "make" func, and the nested "inner" func.
	if count != 3 {
		t.Fatalf("expected 3 top-level funcs (init + 2 hoisted), got %d", count)
	}
}

func TestLower_ListBecomesConsChain(t *testing.T) {
	prog := lower(t, "x = [1, 2, 3];")
	init := findFunc(t, prog, "$init")
	bin, ok := init.Body.Stmts[0].(*ast.BinaryOp)
	if !ok || bin.Op != "::" {
		t.Fatalf("expected top-level cons BinaryOp, got %v", init.Body.Stmts[0])
	}
	mid, ok := bin.Right.(*ast.BinaryOp)
	if !ok || mid.Op != "::" {
		t.Fatalf("expected nested cons, got %v", bin.Right)
	}
	if _, ok := mid.Right.(*ast.BinaryOp); !ok {
		t.Fatalf("expected 3 levels of cons for a 3-element list")
	}
}

func TestLower_EmptyListBecomesNoneBuiltin(t *testing.T) {
	prog := lower(t, "x = [];")
	init := findFunc(t, prog, "$init")
	pb, ok := init.Body.Stmts[0].(*ast.PushBuiltin)
	if !ok || pb.Name != "none" {
		t.Fatalf("expected PushBuiltin(none), got %v", init.Body.Stmts[0])
	}
}

func TestLower_IfBecomesLabelsAndJumps(t *testing.T) {
	prog := lower(t, "if a then 1; else 2; end")
	init := findFunc(t, prog, "$init")
	var hasCondJump, hasAbsJump, hasLabel bool
	for _, s := range init.Body.Stmts {
		switch s.(type) {
		case *ast.CondJump:
			hasCondJump = true
		case *ast.AbsJump:
			hasAbsJump = true
		case *ast.Label:
			hasLabel = true
		}
	}
	if !hasCondJump || !hasAbsJump || !hasLabel {
		t.Fatalf("expected If to lower to CondJump/AbsJump/Label, got %v", init.Body.Stmts)
	}
	for _, s := range init.Body.Stmts {
		if _, ok := s.(*ast.If); ok {
			t.Fatalf("no If node should survive lowering")
		}
	}
}

func TestLower_WhileBecomesLoopViaJumps(t *testing.T) {
	prog := lower(t, "while a do x = 1; end")
	init := findFunc(t, prog, "$init")
	var labels, condJumps, absJumps int
	for _, s := range init.Body.Stmts {
		switch s.(type) {
		case *ast.Label:
			labels++
		case *ast.CondJump:
			condJumps++
		case *ast.AbsJump:
			absJumps++
		}
	}
	if labels != 2 || condJumps != 1 || absJumps != 1 {
		t.Fatalf("expected 2 labels/1 condjump/1 absjump for a while loop, got %d/%d/%d", labels, condJumps, absJumps)
	}
}

func TestLower_SimpleAssignmentBecomesStore(t *testing.T) {
	prog := lower(t, "x = 1;")
	init := findFunc(t, prog, "$init")
	if _, ok := init.Body.Stmts[0].(*ast.Int); !ok {
		t.Fatalf("expected rvalue Int(1) pushed first, got %v", init.Body.Stmts[0])
	}
	store, ok := init.Body.Stmts[1].(*ast.Store)
	if !ok || store.Name != "x" {
		t.Fatalf("expected Store(x), got %v", init.Body.Stmts[1])
	}
}

func TestLower_TupleAssignmentUsesGetAndDup(t *testing.T) {
	prog := lower(t, "(a, b) = (1, 2);")
	init := findFunc(t, prog, "$init")
	var sawDup, sawGet int
	for _, s := range init.Body.Stmts {
		switch n := s.(type) {
		case *ast.Dup:
			sawDup++
		case *ast.PushBuiltin:
			if n.Name == "get" {
				sawGet++
			}
		}
	}
	if sawDup != 1 || sawGet != 2 {
		t.Fatalf("expected 1 dup (for the non-last element) and 2 get calls, got dup=%d get=%d", sawDup, sawGet)
	}
	var stores []string
	for _, s := range init.Body.Stmts {
		if st, ok := s.(*ast.Store); ok {
			stores = append(stores, st.Name)
		}
	}
	if len(stores) != 2 || stores[0] != "a" || stores[1] != "b" {
		t.Fatalf("expected Store(a) then Store(b), got %v", stores)
	}
}

func TestLower_NoneLvalueBecomesCheckNone(t *testing.T) {
	prog := lower(t, "none = f x;")
	init := findFunc(t, prog, "$init")
	found := false
	for _, s := range init.Body.Stmts {
		if _, ok := s.(*ast.CheckNone); ok {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a CheckNone op, got %v", init.Body.Stmts)
	}
}

func TestLower_ObjectLiteralBecomesObjectBuiltinOverConsList(t *testing.T) {
	prog := lower(t, "x = {a: 1, b: 2};")
	init := findFunc(t, prog, "$init")
	b, ok := init.Body.Stmts[0].(*ast.Builtin)
	if !ok || b.Name != "object" || len(b.Args) != 1 {
		t.Fatalf("expected Builtin(object, 1 arg), got %v", init.Body.Stmts[0])
	}
	// list->cons ran again, so the single arg is a cons chain, not a List.
	if _, ok := b.Args[0].(*ast.List); ok {
		t.Fatalf("expected the object builtin's list arg to have been cons-converted")
	}
	if _, ok := b.Args[0].(*ast.BinaryOp); !ok {
		t.Fatalf("expected a cons BinaryOp as the object builtin's arg, got %v", b.Args[0])
	}
}

func TestLower_NoObjectNodeSurvives(t *testing.T) {
	prog := lower(t, "x = {a: 1};")
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		if _, ok := n.(*ast.Object); ok {
			t.Fatalf("no Object node should survive lowering")
		}
		n.VisitChildren(func(c ast.Node) ast.Node { walk(c); return c })
	}
	for _, s := range prog.Stmts {
		walk(s)
	}
}
