package stdlib

import (
	"fmt"

	"github.com/blg-lang/blg/pkg/value"
	"github.com/blg-lang/blg/pkg/vm"
)

// installOperatorHelpers registers the native-arity operators kept separate
// from the dispatch-driven set (`tuple :: object unpack_cons unpack_call
// assert_equal`), plus `:` (the user-syntax spelling of cons) and `symbol`
// (destructure's object-key helper, sharing pkg/value's name-interning
// table with `object` itself so construction and access agree on field
// identity).
func installOperatorHelpers(rt *vm.Runtime) {
	rt.RegisterOperator("tuple", native("tuple", opTuple))
	rt.RegisterOperator("::", native("::", opCons))
	rt.RegisterOperator(":", native(":", opCons))
	rt.RegisterOperator("object", native("object", opObject))
	rt.RegisterOperator("symbol", native("symbol", opSymbol))
	rt.RegisterOperator("unpack_cons", native("unpack_cons", opUnpackCons))
	rt.RegisterOperator("unpack_call", native("unpack_call", opUnpackCall))
	rt.RegisterOperator("assert_equal", native("assert_equal", opAssertEqual))
}

func opTuple(rt value.Runtime, args []value.Thing) (value.Thing, error) {
	elems := make([]value.Thing, len(args))
	copy(elems, args)
	return &value.Tuple{Elements: elems}, nil
}

// opCons backs both `::` (list->cons lowering) and `:` (the user-level
// cons operator); the tail must be none or another list.
func opCons(rt value.Runtime, args []value.Thing) (value.Thing, error) {
	if len(args) != 2 {
		return nil, arityErr("cons", 2, len(args))
	}
	switch args[1].(type) {
	case value.None, *value.Cons:
	default:
		return nil, fmt.Errorf("cons: second argument must be none or a list, got %s", value.TypeName(args[1]))
	}
	return &value.Cons{Head: args[0], Tail: args[1]}, nil
}

// opObject builds an Object from a list of (key, value) tuples
// (pkg/transform/objects.go's desugaring of `{k: v, ...}`). Keys arrive as
// plain strings, interned into the shared field-symbol table so a later
// `symbol(name)` lookup during destructuring resolves to the identical
// Symbol the object was built with.
func opObject(rt value.Runtime, args []value.Thing) (value.Thing, error) {
	if len(args) != 1 {
		return nil, arityErr("object", 1, len(args))
	}
	elems, err := value.ListToSlice(args[0])
	if err != nil {
		return nil, fmt.Errorf("object: %s", err)
	}
	obj := value.NewObject()
	for _, e := range elems {
		pair, ok := e.(*value.Tuple)
		if !ok || len(pair.Elements) != 2 {
			return nil, fmt.Errorf("object: internal error: expected a 2-element pair, got %s", value.TypeName(e))
		}
		key, ok := pair.Elements[0].(value.Str)
		if !ok {
			return nil, fmt.Errorf("object: key is not a str")
		}
		obj.Set(value.InternSymbol(string(key)), pair.Elements[1])
	}
	return obj, nil
}

// opSymbol interns name into the same field-symbol table opObject uses,
// so `{x: v} = obj;`'s generated `symbol("x")` call resolves the field obj
// was actually built with.
func opSymbol(rt value.Runtime, args []value.Thing) (value.Thing, error) {
	if len(args) != 1 {
		return nil, arityErr("symbol", 1, len(args))
	}
	name, ok := args[0].(value.Str)
	if !ok {
		return nil, fmt.Errorf("symbol: expected a str name, got %s", value.TypeName(args[0]))
	}
	return value.InternSymbol(string(name)), nil
}

// opUnpackCons implements the `a : b = value;` destructure pattern: value
// must be a non-empty list, and the (head, tail) pair is handed back as a
// 2-tuple for destructureElements to recurse into.
func opUnpackCons(rt value.Runtime, args []value.Thing) (value.Thing, error) {
	if len(args) != 1 {
		return nil, arityErr("unpack_cons", 1, len(args))
	}
	c, ok := args[0].(*value.Cons)
	if !ok {
		return nil, fmt.Errorf("unpack_cons: expected a non-empty list, got %s", value.TypeName(args[0]))
	}
	return &value.Tuple{Elements: []value.Thing{c.Head, c.Tail}}, nil
}

// opUnpackCall implements a constructor-call destructure pattern (`Point x
// y = value;`): it asks fn to unpack value via the dispatch-driven
// `unpack` operator (self=fn, so an Object constructor's own "unpack"
// property decides how), then checks the result is a tuple of exactly n
// elements.
func opUnpackCall(rt value.Runtime, args []value.Thing) (value.Thing, error) {
	if len(args) != 3 {
		return nil, arityErr("unpack_call", 3, len(args))
	}
	fn, val := args[0], args[1]
	n, ok := args[2].(value.Int)
	if !ok {
		return nil, fmt.Errorf("unpack_call: expected an int arity, got %s", value.TypeName(args[2]))
	}
	res, err := rt.CallFunction(value.Operators()["unpack"], []value.Thing{fn, val})
	if err != nil {
		return nil, err
	}
	tup, ok := res.(*value.Tuple)
	if !ok {
		return nil, fmt.Errorf("unpack_call: expected the destructured value to be a tuple, got %s", value.TypeName(res))
	}
	if len(tup.Elements) != int(n) {
		return nil, fmt.Errorf("unpack_call: tuple has %d element(s), pattern expects %d", len(tup.Elements), n)
	}
	return tup, nil
}

// opAssertEqual backs the literal-pattern branch of destructure ("any
// other node" in pkg/transform/destructure.go): it dispatches `==` and
// errors unless the result is true.
func opAssertEqual(rt value.Runtime, args []value.Thing) (value.Thing, error) {
	if len(args) != 2 {
		return nil, arityErr("assert_equal", 2, len(args))
	}
	res, err := rt.CallFunction(value.Operators()["=="], args)
	if err != nil {
		return nil, err
	}
	eq, ok := res.(value.Bool)
	if !ok {
		return nil, fmt.Errorf("assert_equal: result of == is not a bool")
	}
	if !bool(eq) {
		return nil, fmt.Errorf("assertion failed")
	}
	return value.None{}, nil
}
