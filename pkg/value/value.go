// Package value implements the runtime value representation ("Thing" in
// the design notes): a closed set of Go types any of which can flow
// through a Thing-typed slot, dispatched on with a type switch keyed on
// receiver type.
//
// There is no tagged union wrapper struct — a Thing is simply `any`,
// holding one of: None, Int, Float, Bool, Str, *Symbol, *Func,
// *NativeFunc, *Module, *Tuple, *Cons (List) plus the None terminator,
// *Object, *Cell, *Error. Compound values are pointers so mutation
// (Cell, Object) and identity-bearing sharing (Func, Module, Object) are
// ordinary Go pointer semantics.
package value

import "fmt"

// Thing is any runtime value. The name mirrors the design notes' "Thing"
// term; the Go type is just `any`, the natural choice for VM stack slots
// that must hold any of a closed set of variant types.
type Thing = any

// None is the singleton "no value" type. Equal by value (it carries no
// fields), so any None{} compares equal to any other.
type None struct{}

func (None) String() string { return "none" }

// Int is a 32-bit signed integer. Arithmetic wraps per Go's int32 rules;
// pkg/value does not check for overflow (see DESIGN.md).
type Int int32

func (v Int) String() string { return fmt.Sprintf("%d", int32(v)) }

// Float is a 32-bit IEEE-754 float.
type Float float32

func (v Float) String() string { return fmt.Sprintf("%g", float32(v)) }

// Bool is a boolean.
type Bool bool

func (v Bool) String() string {
	if v {
		return "true"
	}
	return "false"
}

// Str is an interpreter string. Escape processing (\n \r \t \') happens in
// pkg/lexer; by the time a Str exists here it is already unescaped.
type Str string

func (v Str) String() string { return string(v) }

// Truthy implements the single notion of truthiness COND_JUMP_TRUE/FALSE
// and the `assert` builtin rely on (`and`/`or`/`not` dispatch on Bool
// operands only): only Bool(false) and None are falsy,
// everything else (including Int(0)) is truthy.
func Truthy(v Thing) bool {
	switch t := v.(type) {
	case None:
		return false
	case Bool:
		return bool(t)
	default:
		return true
	}
}

// TypeName returns the lowercase type name used in type-error messages.
func TypeName(v Thing) string {
	switch v.(type) {
	case None:
		return "none"
	case Int:
		return "int"
	case Float:
		return "float"
	case Bool:
		return "bool"
	case Str:
		return "str"
	case *Symbol:
		return "symbol"
	case *Func:
		return "func"
	case *NativeFunc:
		return "native"
	case *Module:
		return "module"
	case *Tuple:
		return "tuple"
	case *Cons:
		return "list"
	case *Object:
		return "object"
	case *Cell:
		return "cell"
	case *Error:
		return "error"
	default:
		return fmt.Sprintf("%T", v)
	}
}
