package bytecode

import (
	"strings"
	"testing"

	"github.com/blg-lang/blg/pkg/parser"
	"github.com/blg-lang/blg/pkg/transform"
)

func compile(t *testing.T, src string) *Module {
	t.Helper()
	p := parser.New(src)
	prog, err := p.Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	lowered := transform.Lower(prog)
	m, err := Emit(lowered, "test.blg")
	if err != nil {
		t.Fatalf("emit error: %v", err)
	}
	return m
}

func TestChain_AppendAcrossSegmentsPreservesOrder(t *testing.T) {
	c := newChain[int]()
	const n = segmentCap*2 + 5
	for i := 0; i < n; i++ {
		if idx := c.append(i); idx != i {
			t.Fatalf("append(%d) returned index %d", i, idx)
		}
	}
	got := c.collect()
	if len(got) != n {
		t.Fatalf("expected %d items, got %d", n, len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("collect()[%d] = %d, want %d", i, v, i)
		}
	}
}

func TestModuleBuilder_InternDedupesByValue(t *testing.T) {
	b := NewModuleBuilder("")
	i1 := b.Intern("x")
	i2 := b.Intern("y")
	i3 := b.Intern("x")
	if i1 != i3 {
		t.Fatalf("expected repeated Intern(x) to return the same index, got %d and %d", i1, i3)
	}
	if i1 == i2 {
		t.Fatalf("expected distinct constants to get distinct indices")
	}
}

func TestModuleBuilder_LabelPatchedToDefinitionOffset(t *testing.T) {
	b := NewModuleBuilder("")
	l := b.NewLabel()
	b.AbsJump(l) // placeholder at offset 1 (after the opcode byte)
	b.MarkLabel(l)
	b.Pop()
	b.SetEntry(l)
	m, err := b.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	// the jump target should equal the offset MarkLabel recorded, which is
	// right after the 5-byte AbsJump instruction.
	target := uint32(m.Code[1])<<24 | uint32(m.Code[2])<<16 | uint32(m.Code[3])<<8 | uint32(m.Code[4])
	if int(target) != 5 {
		t.Fatalf("expected patched jump target 5, got %d", target)
	}
}

func TestModuleBuilder_FinalizeFailsOnUnresolvedLabel(t *testing.T) {
	b := NewModuleBuilder("")
	l := b.NewLabel()
	b.AbsJump(l)
	b.SetEntry(l)
	if _, err := b.Finalize(); err == nil {
		t.Fatalf("expected Finalize to fail on a never-defined label")
	}
}

func TestEmit_SimpleAssignmentCompilesToPushAndStore(t *testing.T) {
	m := compile(t, "x = 1;")
	if len(m.Code) == 0 {
		t.Fatalf("expected non-empty bytecode")
	}
	found := false
	for _, c := range m.Constants {
		if c == "x" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected %q among interned constants, got %v", "x", m.Constants)
	}
}

func TestEmit_BinaryOpPushesBuiltinThenOperandsThenCalls(t *testing.T) {
	m := compile(t, "x = 1 + 2;")
	dis := Disassemble(m)
	if !strings.Contains(dis, `PUSH_BUILTIN`) || !strings.Contains(dis, `"+"`) {
		t.Fatalf("expected a PUSH_BUILTIN of \"+\" in disassembly:\n%s", dis)
	}
	if !strings.Contains(dis, "CALL") {
		t.Fatalf("expected a CALL in disassembly:\n%s", dis)
	}
}

func TestEmit_RecursiveFunctionCompilesWithoutUnresolvedLabels(t *testing.T) {
	m := compile(t, "fact = def n do if n == 1 then <- 1; else <- n * fact(n - 1); end end;")
	if len(m.Code) == 0 {
		t.Fatalf("expected non-empty bytecode")
	}
}

func TestDisassemble_IncludesEntryMarkerAndConstants(t *testing.T) {
	m := compile(t, "x = 1;")
	dis := Disassemble(m)
	if !strings.Contains(dis, "entry") {
		t.Fatalf("expected an entry marker in disassembly:\n%s", dis)
	}
	if !strings.Contains(dis, "const[") {
		t.Fatalf("expected constant-pool listing in disassembly:\n%s", dis)
	}
}
