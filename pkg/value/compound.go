package value

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/blg-lang/blg/pkg/bytecode"
	"github.com/blg-lang/blg/pkg/rtutil"
)

// Scope is a mutable name->value binding frame with an optional parent.
// Name lookup walks the parent chain; a function's captured scope is
// exactly the Scope object live when its CREATE_FUNC ran, so mutations
// made after closure creation are visible to the closure (scopes are
// live, shared objects, never copied).
type Scope struct {
	Parent *Scope
	locals map[string]Thing
}

// NewScope creates an empty scope with the given parent (nil for a root
// scope, e.g. the builtins scope).
func NewScope(parent *Scope) *Scope {
	return &Scope{Parent: parent, locals: make(map[string]Thing)}
}

// Bind introduces or overwrites a binding in this scope specifically
// (never walks to the parent) — this is what a call's argument binding
// does; STORE goes through Store below instead.
func (s *Scope) Bind(name string, v Thing) { s.locals[name] = v }

// Lookup walks from this scope outward through parents, returning the
// first binding found.
func (s *Scope) Lookup(name string) (Thing, bool) {
	for sc := s; sc != nil; sc = sc.Parent {
		if v, ok := sc.locals[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Each visits every binding introduced directly in this scope (not its
// parents), in unspecified order. pkg/vm uses this to harvest a module's
// exports once its $init function returns.
func (s *Scope) Each(fn func(name string, v Thing)) {
	for k, v := range s.locals {
		fn(k, v)
	}
}

// Store implements STORE's assignment semantics: rebind the nearest
// existing binding for name anywhere up the parent chain (so a closure's
// `counter = counter + 1` mutates the outer counter it closed over,
// rather than shadowing it), or introduce a fresh binding in this scope
// if name isn't bound anywhere yet.
func (s *Scope) Store(name string, v Thing) {
	for sc := s; sc != nil; sc = sc.Parent {
		if _, ok := sc.locals[name]; ok {
			sc.locals[name] = v
			return
		}
	}
	s.locals[name] = v
}

// symbolIDCounter is the process-wide monotonically increasing id generator that
// allocates unique symbol ids, shared by every Runtime in the process.
var symbolIDCounter int64

func nextSymbolID() int { return int(atomic.AddInt64(&symbolIDCounter, 1)) }

// Symbol is a named, fixed-arity operator or dispatch key. Arity -1 means
// variadic (used by the `call` operator symbol and by symbols minted by
// `createSymbol`).
type Symbol struct {
	ID    int
	Name  string
	Arity int
}

func (s *Symbol) String() string { return fmt.Sprintf("Symbol(%s)", s.Name) }

// NewSymbol allocates a fresh symbol with the next process-wide id.
func NewSymbol(name string, arity int) *Symbol {
	return &Symbol{ID: nextSymbolID(), Name: name, Arity: arity}
}

// fieldSymbols interns one *Symbol per distinct object-field name, shared
// process-wide so `object`'s construction-time key and a later pattern
// destructure's `symbol(name)` lookup (pkg/transform/destructure.go) refer
// to the identical Symbol — Object.Get keys by Symbol identity, so the two
// sides of a field access must agree on more than just the name string.
var (
	fieldSymbolsMu sync.Mutex
	fieldSymbols   = map[string]*Symbol{}
)

// InternSymbol returns the single *Symbol standing for name, minting one
// on first use. Unlike NewSymbol (used by the public createSymbol
// builtin, which always mints a fresh id), this is for names that must
// compare equal by identity across the whole program.
func InternSymbol(name string) *Symbol {
	fieldSymbolsMu.Lock()
	defer fieldSymbolsMu.Unlock()
	if s, ok := fieldSymbols[name]; ok {
		return s
	}
	s := NewSymbol(name, 1)
	fieldSymbols[name] = s
	return s
}

// operatorNames is the fixed set of symbols whose behavior goes through
// Dispatch's type-switch on the receiver. The rest of the operator
// registry (`tuple :: object unpack_cons unpack_call assert_equal`, and
// `:`) are native helpers with no receiver type to switch on, so
// pkg/stdlib registers them directly as *NativeFunc values under the same
// operators map instead of allocating a Symbol here.
var operatorNames = []struct {
	name  string
	arity int
}{
	{"+", 2}, {"-", 2}, {"*", 2}, {"/", 2},
	{"==", 2}, {"!=", 2}, {"<", 2}, {"<=", 2}, {">", 2}, {">=", 2},
	{"and", 2}, {"or", 2}, {"not", 1},
	{".", 2}, {"get", 2}, {"call", -1}, {"unpack", 2}, {"responds_to", 2},
}

var (
	operatorsOnce sync.Once
	operators     map[string]*Symbol
)

// Operators returns the fixed name->Symbol table built once per process,
// shared by every Runtime (consistent with the process-wide id
// generator).
func Operators() map[string]*Symbol {
	operatorsOnce.Do(func() {
		operators = make(map[string]*Symbol, len(operatorNames))
		for _, o := range operatorNames {
			operators[o.name] = NewSymbol(o.name, o.arity)
		}
	})
	return operators
}

// Func is a closure over user-defined code: the module it belongs to, the
// label its DEF_FUNC prologue begins at, its declared parameter names,
// and the scope it was created in.
type Func struct {
	Name    string
	Module  *bytecode.Module
	Label   int
	Params  []string
	Closure *Scope
}

func (f *Func) String() string { return fmt.Sprintf("Func(%s/%d)", f.Name, len(f.Params)) }

// NativeFn is the signature every builtin/std-lib native function
// implements: runtime access plus the call's arguments, in call order.
type NativeFn func(rt Runtime, args []Thing) (Thing, error)

// Runtime is the minimal surface pkg/value needs from pkg/vm to let a
// NativeFn call back into user code (e.g. trycatch invoking a Func
// argument) without pkg/value importing pkg/vm.
type Runtime interface {
	CallFunction(fn Thing, args []Thing) (Thing, error)
	Throw(format string, a ...any) error
}

// NativeFunc wraps a Go function as a callable Thing.
type NativeFunc struct {
	Name string
	Fn   NativeFn
}

func (n *NativeFunc) String() string { return fmt.Sprintf("NativeFunc(%s)", n.Name) }

// Module is the value produced by executing a module: its declared name
// and the bindings its top-level scope ended up with.
type Module struct {
	Name    string
	Exports *rtutil.OrderedMap[string, Thing]
}

func (m *Module) String() string { return fmt.Sprintf("Module(%s)", m.Name) }

// Tuple is a fixed-arity, immutable element vector.
type Tuple struct {
	Elements []Thing
}

func (t *Tuple) String() string { return fmt.Sprintf("Tuple(%d)", len(t.Elements)) }

// Cons is one list cell; None (not a nil *Cons) terminates a list, so an
// empty list is represented as the Thing value None{} directly.
type Cons struct {
	Head Thing
	Tail Thing
}

func (c *Cons) String() string { return "Cons" }

// ListToSlice flattens a Cons chain terminated by None into a slice. err
// is non-nil if the chain is malformed (a non-Cons, non-None tail).
func ListToSlice(v Thing) ([]Thing, error) {
	var out []Thing
	for {
		switch t := v.(type) {
		case None:
			return out, nil
		case *Cons:
			out = append(out, t.Head)
			v = t.Tail
		default:
			return nil, fmt.Errorf("improper list: tail is %s, not a list or none", TypeName(v))
		}
	}
}

// SliceToList builds a Cons chain (right-associative, None-terminated)
// from a slice, the runtime mirror of pkg/transform's list->cons pass.
func SliceToList(items []Thing) Thing {
	var tail Thing = None{}
	for i := len(items) - 1; i >= 0; i-- {
		tail = &Cons{Head: items[i], Tail: tail}
	}
	return tail
}

// objectEntry is one symbol-keyed slot of an Object, keeping both the
// dispatch id and the source name (for iteration/printing in insertion
// order via rtutil.OrderedMap).
type objectEntry struct {
	Symbol *Symbol
	Value  Thing
}

// Object is an open record: symbol-id -> Thing, in insertion order. The
// `object` builtin builds one from a list of (name, value) tuples,
// interning a fresh Symbol per distinct name.
type Object struct {
	entries *rtutil.OrderedMap[int, objectEntry]
}

// NewObject creates an empty object.
func NewObject() *Object {
	return &Object{entries: rtutil.NewOrderedMap[int, objectEntry]()}
}

func (o *Object) String() string { return fmt.Sprintf("Object(%d)", o.entries.Len()) }

// Set binds sym to v, in insertion order on first use.
func (o *Object) Set(sym *Symbol, v Thing) { o.entries.Set(sym.ID, objectEntry{Symbol: sym, Value: v}) }

// Get looks up a previously bound symbol.
func (o *Object) Get(sym *Symbol) (Thing, bool) {
	e, ok := o.entries.Get(sym.ID)
	return e.Value, ok
}

// Has reports whether sym is bound, for `responds_to`.
func (o *Object) Has(sym *Symbol) bool { return o.entries.Has(sym.ID) }

// Each visits every (name, value) pair in insertion order.
func (o *Object) Each(fn func(name string, v Thing) bool) {
	o.entries.Each(func(_ int, e objectEntry) bool { return fn(e.Symbol.Name, e.Value) })
}

// Cell is a mutable single-value reference, created by `createCell` and
// read/written by `getCell`/`setCell`.
type Cell struct {
	Value Thing
}

func (c *Cell) String() string { return "Cell" }

// Frame is one entry of an Error's captured stack trace: either a Defined
// frame (source-location known via the module's source-map) or a Native
// frame (no location).
type Frame struct {
	Native   bool
	Filename string
	Line     int
	Column   int
}

// Error is a runtime error value: a human message plus the frame stack
// captured at construction time (see pkg/vm's Throw/errorStackTrace).
type Error struct {
	Message string
	Frames  []Frame
}

func (e *Error) String() string { return fmt.Sprintf("Error(%s)", e.Message) }

// StackTrace renders the captured frames as:
// "Traceback:\n\t{filename} at {line},{col}\n...\terror: {msg}".
func (e *Error) StackTrace() string {
	s := "Traceback:\n"
	for _, f := range e.Frames {
		if f.Native {
			s += "\t<native>\n"
			continue
		}
		s += fmt.Sprintf("\t%s at %d,%d\n", f.Filename, f.Line, f.Column)
	}
	s += "\terror: " + e.Message
	return s
}
