package vm

import (
	"testing"

	"github.com/blg-lang/blg/pkg/value"
)

func runOK(t *testing.T, src string) *value.Module {
	t.Helper()
	rt := New("")
	mod, err := rt.RunSource(src, "<test>")
	if err != nil {
		t.Fatalf("RunSource(%q) failed: %v", src, err)
	}
	return mod
}

func export(t *testing.T, mod *value.Module, name string) value.Thing {
	t.Helper()
	v, ok := mod.Exports.Get(name)
	if !ok {
		t.Fatalf("module has no export %q", name)
	}
	return v
}

func TestRunSource_ArithmeticAndPrecedence(t *testing.T) {
	mod := runOK(t, "x = 1 + 2 * 3; y = x - 1;")
	if x := export(t, mod, "x"); x != value.Int(7) {
		t.Fatalf("expected x = 7, got %v", x)
	}
	if y := export(t, mod, "y"); y != value.Int(6) {
		t.Fatalf("expected y = 6, got %v", y)
	}
}

func TestRunSource_RecursiveFactorial(t *testing.T) {
	src := `
fact = def n do
  if n == 0 then
    <- 1;
  else
    <- n * (fact (n - 1));
  end
end;
result = fact 5;
`
	mod := runOK(t, src)
	if r := export(t, mod, "result"); r != value.Int(120) {
		t.Fatalf("expected fact(5) = 120, got %v", r)
	}
}

func TestRunSource_ClosureCapturesLiveOuterBinding(t *testing.T) {
	// the closure's captured scope is the live $init scope, so a later
	// rebinding of a free variable is visible the next time it's called.
	src := `
counter = 0;
bump = def x do
  counter = counter + 1;
  <- counter;
end;
first = bump 0;
second = bump 0;
`
	mod := runOK(t, src)
	if v := export(t, mod, "first"); v != value.Int(1) {
		t.Fatalf("expected first = 1, got %v", v)
	}
	if v := export(t, mod, "second"); v != value.Int(2) {
		t.Fatalf("expected second = 2, got %v", v)
	}
}

func TestRunSource_WhileLoopSumsToFifteen(t *testing.T) {
	src := `
i = 0;
total = 0;
while i < 5 do
  i = i + 1;
  total = total + i;
end
`
	mod := runOK(t, src)
	if v := export(t, mod, "total"); v != value.Int(15) {
		t.Fatalf("expected total = 15, got %v", v)
	}
}

func TestRunSource_BooleanAndComparison(t *testing.T) {
	mod := runOK(t, "a = (1 < 2) and (3 >= 3); b = not a;")
	if v := export(t, mod, "a"); v != value.Bool(true) {
		t.Fatalf("expected a = true, got %v", v)
	}
	if v := export(t, mod, "b"); v != value.Bool(false) {
		t.Fatalf("expected b = false, got %v", v)
	}
}

func TestRunSource_ListLiteralLowersToConsChain(t *testing.T) {
	// "::" is installed by pkg/stdlib, which this package cannot import; a
	// minimal cons native stands in for it on this bare Runtime.
	rt := New("")
	rt.RegisterOperator("::", &value.NativeFunc{Name: "::", Fn: func(_ value.Runtime, args []value.Thing) (value.Thing, error) {
		return &value.Cons{Head: args[0], Tail: args[1]}, nil
	}})
	mod, err := rt.RunSource("x = [1, 2, 3];", "<test>")
	if err != nil {
		t.Fatalf("RunSource failed: %v", err)
	}
	elems, err := value.ListToSlice(export(t, mod, "x"))
	if err != nil {
		t.Fatalf("ListToSlice failed: %v", err)
	}
	want := []value.Int{1, 2, 3}
	if len(elems) != len(want) {
		t.Fatalf("expected %d elements, got %d", len(want), len(elems))
	}
	for i, w := range want {
		if elems[i] != w {
			t.Fatalf("element %d: expected %v, got %v", i, w, elems[i])
		}
	}
}

func TestRunSource_EmptyListIsNone(t *testing.T) {
	mod := runOK(t, "x = [];")
	if _, ok := export(t, mod, "x").(value.None); !ok {
		t.Fatalf("expected empty list to be None, got %v", export(t, mod, "x"))
	}
}

func TestRunSource_UndefinedNameErrors(t *testing.T) {
	rt := New("")
	if _, err := rt.RunSource("x = undefined_name;", "<test>"); err == nil {
		t.Fatalf("expected an error referencing an undefined name")
	}
}

func TestRunSource_DivisionByZeroErrorsWithTrace(t *testing.T) {
	rt := New("")
	_, err := rt.RunSource("x = 1 / 0;", "<test>")
	if err == nil {
		t.Fatalf("expected division by zero to error")
	}
	trace := ErrorStackTrace(err)
	if trace == "" {
		t.Fatalf("expected a non-empty stack trace")
	}
}
