package ast

import "fmt"

// The variants below are produced only by pkg/transform's lowering passes.
// By the time a Func's body reaches the emitter, every statement is one of
// these (plus the surviving atoms, Func and Block) — a flat sequence of
// low-level stack operations the emitter translates to bytecode almost
// one-for-one. None of them carry source-level sub-expressions except where
// noted; a preceding node in the same Block is expected to have already
// left the value they operate on atop the (conceptual) stack.

// Label marks a jump target. Resolved to a byte offset at emission time.
type Label struct {
	P    Pos
	Name string
}

func (n *Label) Pos() Pos                             { return n.P }
func (n *Label) String() string                        { return fmt.Sprintf("Label(%s)", n.Name) }
func (n *Label) Equals(o Node) bool                    { other, ok := o.(*Label); return ok && other.Name == n.Name }
func (n *Label) VisitChildren(func(Node) Node) Node    { return &Label{P: n.P, Name: n.Name} }

// AbsJump is an unconditional jump to Target.
type AbsJump struct {
	P      Pos
	Target string
}

func (n *AbsJump) Pos() Pos          { return n.P }
func (n *AbsJump) String() string    { return fmt.Sprintf("AbsJump(%s)", n.Target) }
func (n *AbsJump) Equals(o Node) bool {
	other, ok := o.(*AbsJump)
	return ok && other.Target == n.Target
}
func (n *AbsJump) VisitChildren(func(Node) Node) Node { return &AbsJump{P: n.P, Target: n.Target} }

// CondJump pops a value and jumps to Target when its truthiness equals When.
type CondJump struct {
	P      Pos
	Target string
	When   bool
}

func (n *CondJump) Pos() Pos { return n.P }
func (n *CondJump) String() string {
	return fmt.Sprintf("CondJump(%s, when=%v)", n.Target, n.When)
}
func (n *CondJump) Equals(o Node) bool {
	other, ok := o.(*CondJump)
	return ok && other.Target == n.Target && other.When == n.When
}
func (n *CondJump) VisitChildren(func(Node) Node) Node {
	return &CondJump{P: n.P, Target: n.Target, When: n.When}
}

// PushBuiltin pushes the builtin operator or global named Name by value.
type PushBuiltin struct {
	P    Pos
	Name string
}

func (n *PushBuiltin) Pos() Pos       { return n.P }
func (n *PushBuiltin) String() string { return fmt.Sprintf("PushBuiltin(%s)", n.Name) }
func (n *PushBuiltin) Equals(o Node) bool {
	other, ok := o.(*PushBuiltin)
	return ok && other.Name == n.Name
}
func (n *PushBuiltin) VisitChildren(func(Node) Node) Node {
	return &PushBuiltin{P: n.P, Name: n.Name}
}

// PushInt pushes a lowering-generated integer constant (e.g. a tuple index
// used by the destructure pass). Distinct from the source-level Int atom.
type PushInt struct {
	P     Pos
	Value int32
}

func (n *PushInt) Pos() Pos       { return n.P }
func (n *PushInt) String() string { return fmt.Sprintf("PushInt(%d)", n.Value) }
func (n *PushInt) Equals(o Node) bool {
	other, ok := o.(*PushInt)
	return ok && other.Value == n.Value
}
func (n *PushInt) VisitChildren(func(Node) Node) Node { return &PushInt{P: n.P, Value: n.Value} }

// CallOp pops a function and Arity arguments (in that stack order) and
// pushes the call's result.
type CallOp struct {
	P     Pos
	Arity int
}

func (n *CallOp) Pos() Pos       { return n.P }
func (n *CallOp) String() string { return fmt.Sprintf("CallOp(%d)", n.Arity) }
func (n *CallOp) Equals(o Node) bool {
	other, ok := o.(*CallOp)
	return ok && other.Arity == n.Arity
}
func (n *CallOp) VisitChildren(func(Node) Node) Node { return &CallOp{P: n.P, Arity: n.Arity} }

// Store pops a value and assigns it to Name: the nearest enclosing scope
// that already binds Name is rebound, else the current scope gets a new
// binding.
type Store struct {
	P    Pos
	Name string
}

func (n *Store) Pos() Pos       { return n.P }
func (n *Store) String() string { return fmt.Sprintf("Store(%s)", n.Name) }
func (n *Store) Equals(o Node) bool {
	other, ok := o.(*Store)
	return ok && other.Name == n.Name
}
func (n *Store) VisitChildren(func(Node) Node) Node { return &Store{P: n.P, Name: n.Name} }

// Dup duplicates the top of the stack.
type Dup struct{ P Pos }

func (n *Dup) Pos() Pos                          { return n.P }
func (n *Dup) String() string                    { return "Dup" }
func (n *Dup) Equals(o Node) bool                { _, ok := o.(*Dup); return ok }
func (n *Dup) VisitChildren(func(Node) Node) Node { return &Dup{P: n.P} }

// Push wraps a value-constructing node (typically a NewFunc reference
// produced by closure extraction) and leaves its result on the stack.
type Push struct {
	P     Pos
	Value Node
}

func (n *Push) Pos() Pos       { return n.P }
func (n *Push) String() string { return fmt.Sprintf("Push(%s)", n.Value.String()) }
func (n *Push) Equals(o Node) bool {
	other, ok := o.(*Push)
	return ok && n.Value.Equals(other.Value)
}
func (n *Push) VisitChildren(visit func(Node) Node) Node {
	return &Push{P: n.P, Value: visit(n.Value)}
}

// Rot3 rotates the top three stack values: a b c -> b c a.
type Rot3 struct{ P Pos }

func (n *Rot3) Pos() Pos                          { return n.P }
func (n *Rot3) String() string                    { return "Rot3" }
func (n *Rot3) Equals(o Node) bool                { _, ok := o.(*Rot3); return ok }
func (n *Rot3) VisitChildren(func(Node) Node) Node { return &Rot3{P: n.P} }

// Swap exchanges the top two stack values.
type Swap struct{ P Pos }

func (n *Swap) Pos() Pos                          { return n.P }
func (n *Swap) String() string                    { return "Swap" }
func (n *Swap) Equals(o Node) bool                { _, ok := o.(*Swap); return ok }
func (n *Swap) VisitChildren(func(Node) Node) Node { return &Swap{P: n.P} }

// Pop discards the top of the stack.
type Pop struct{ P Pos }

func (n *Pop) Pos() Pos                          { return n.P }
func (n *Pop) String() string                    { return "Pop" }
func (n *Pop) Equals(o Node) bool                { _, ok := o.(*Pop); return ok }
func (n *Pop) VisitChildren(func(Node) Node) Node { return &Pop{P: n.P} }

// Builtin calls a named, fixed-arity native helper (object, unpack_cons,
// unpack_call, assert_equal, ...) with the given already-lowered arguments.
type Builtin struct {
	P    Pos
	Name string
	Args []Node
}

func (n *Builtin) Pos() Pos { return n.P }
func (n *Builtin) String() string {
	return fmt.Sprintf("Builtin(%s, %d args)", n.Name, len(n.Args))
}
func (n *Builtin) Equals(o Node) bool {
	other, ok := o.(*Builtin)
	if !ok || other.Name != n.Name || len(other.Args) != len(n.Args) {
		return false
	}
	for i := range n.Args {
		if !n.Args[i].Equals(other.Args[i]) {
			return false
		}
	}
	return true
}
func (n *Builtin) VisitChildren(visit func(Node) Node) Node {
	args := make([]Node, len(n.Args))
	for i, a := range n.Args {
		args[i] = visit(a)
	}
	return &Builtin{P: n.P, Name: n.Name, Args: args}
}

// CheckNone pops a value and fails unless it is none.
type CheckNone struct{ P Pos }

func (n *CheckNone) Pos() Pos                          { return n.P }
func (n *CheckNone) String() string                    { return "CheckNone" }
func (n *CheckNone) Equals(o Node) bool                { _, ok := o.(*CheckNone); return ok }
func (n *CheckNone) VisitChildren(func(Node) Node) Node { return &CheckNone{P: n.P} }

// NewFunc references a hoisted function by its generated or declared name.
// It is the operand CREATE_FUNC closes over.
type NewFunc struct {
	P    Pos
	Name string
}

func (n *NewFunc) Pos() Pos       { return n.P }
func (n *NewFunc) String() string { return fmt.Sprintf("NewFunc(%s)", n.Name) }
func (n *NewFunc) Equals(o Node) bool {
	other, ok := o.(*NewFunc)
	return ok && other.Name == n.Name
}
func (n *NewFunc) VisitChildren(func(Node) Node) Node { return &NewFunc{P: n.P, Name: n.Name} }
