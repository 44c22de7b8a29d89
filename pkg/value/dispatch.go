package value

import "fmt"

// Caller lets dispatch hand off to the VM's own call mechanism when a
// resolved value (an Object field, a Module export) must itself be
// invoked with further arguments — calling a Func requires executing its
// bytecode, which is pkg/vm's job, not pkg/value's.
type Caller func(fn Thing, args []Thing) (Thing, error)

// Dispatch applies a symbol to args by matching on the first argument's
// type, a receiver-type switch keyed on a Symbol id rather than a string
// selector. Operator BinaryOps/UnaryOps always evaluate both operands
// eagerly before CALL (pkg/bytecode's emitter pushes both sides before
// calling), so `and`/`or` are NOT short-circuiting here. call may be
// nil; it is only consulted for
// Object dispatch with extra call arguments.
func Dispatch(sym *Symbol, args []Thing, call Caller) (Thing, error) {
	if sym.Name == "responds_to" {
		if len(args) != 2 {
			return nil, fmt.Errorf("responds_to expects 2 arguments, got %d", len(args))
		}
		target, ok := args[1].(*Symbol)
		if !ok {
			return nil, fmt.Errorf("responds_to's second argument must be a symbol, got %s", TypeName(args[1]))
		}
		return Bool(RespondsTo(args[0], target)), nil
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("%s: no receiver argument", sym.Name)
	}
	self := args[0]
	rest := args[1:]

	switch self.(type) {
	case Int:
		return intDispatch(self.(Int), sym, rest)
	case Float:
		return floatDispatch(self.(Float), sym, rest)
	case Bool:
		return boolDispatch(self.(Bool), sym, rest)
	case Str:
		return strDispatch(self.(Str), sym, rest)
	case *Tuple:
		return tupleDispatch(self.(*Tuple), sym, rest)
	case *Module:
		return moduleDispatch(self.(*Module), sym, rest)
	case *Object:
		return objectDispatch(self.(*Object), sym, rest, call)
	default:
		return nil, fmt.Errorf("%s does not understand %s", TypeName(self), sym.Name)
	}
}

// RespondsTo reports whether v's type implements sym, without invoking it.
func RespondsTo(v Thing, sym *Symbol) bool {
	switch t := v.(type) {
	case Int, Float:
		switch sym.Name {
		case "+", "-", "*", "/", "==", "!=", "<", "<=", ">", ">=":
			return true
		}
	case Bool:
		switch sym.Name {
		case "and", "or", "not", "==", "!=":
			return true
		}
	case Str:
		switch sym.Name {
		case "+", "==", "!=":
			return true
		}
	case *Tuple:
		switch sym.Name {
		case "==", "!=", "get":
			return true
		}
	case *Module:
		return sym.Name == "."
	case *Object:
		return t.Has(sym)
	}
	return false
}

func typeErr(op string, vs ...Thing) error {
	names := make([]any, len(vs))
	for i, v := range vs {
		names[i] = TypeName(v)
	}
	return fmt.Errorf("%s: unsupported operand type(s) %v", op, names)
}

func intDispatch(self Int, sym *Symbol, rest []Thing) (Thing, error) {
	if sym.Name == "not" {
		return nil, typeErr(sym.Name, self)
	}
	if len(rest) != 1 {
		return nil, fmt.Errorf("%s expects 1 more argument, got %d", sym.Name, len(rest))
	}
	other, ok := rest[0].(Int)
	if !ok {
		return nil, typeErr(sym.Name, self, rest[0])
	}
	switch sym.Name {
	case "+":
		return self + other, nil
	case "-":
		return self - other, nil
	case "*":
		return self * other, nil
	case "/":
		if other == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		return self / other, nil
	case "==":
		return Bool(self == other), nil
	case "!=":
		return Bool(self != other), nil
	case "<":
		return Bool(self < other), nil
	case "<=":
		return Bool(self <= other), nil
	case ">":
		return Bool(self > other), nil
	case ">=":
		return Bool(self >= other), nil
	}
	return nil, typeErr(sym.Name, self)
}

func floatDispatch(self Float, sym *Symbol, rest []Thing) (Thing, error) {
	if len(rest) != 1 {
		return nil, fmt.Errorf("%s expects 1 more argument, got %d", sym.Name, len(rest))
	}
	other, ok := rest[0].(Float)
	if !ok {
		return nil, typeErr(sym.Name, self, rest[0])
	}
	switch sym.Name {
	case "+":
		return self + other, nil
	case "-":
		return self - other, nil
	case "*":
		return self * other, nil
	case "/":
		if other == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		return self / other, nil
	case "==":
		return Bool(self == other), nil
	case "!=":
		return Bool(self != other), nil
	case "<":
		return Bool(self < other), nil
	case "<=":
		return Bool(self <= other), nil
	case ">":
		return Bool(self > other), nil
	case ">=":
		return Bool(self >= other), nil
	}
	return nil, typeErr(sym.Name, self)
}

func boolDispatch(self Bool, sym *Symbol, rest []Thing) (Thing, error) {
	switch sym.Name {
	case "not":
		if len(rest) != 0 {
			return nil, fmt.Errorf("not expects no further arguments, got %d", len(rest))
		}
		return !self, nil
	case "and", "or", "==", "!=":
		if len(rest) != 1 {
			return nil, fmt.Errorf("%s expects 1 more argument, got %d", sym.Name, len(rest))
		}
		other, ok := rest[0].(Bool)
		if !ok {
			return nil, typeErr(sym.Name, self, rest[0])
		}
		switch sym.Name {
		case "and":
			return self && other, nil
		case "or":
			return self || other, nil
		case "==":
			return Bool(self == other), nil
		case "!=":
			return Bool(self != other), nil
		}
	}
	return nil, typeErr(sym.Name, self)
}

func strDispatch(self Str, sym *Symbol, rest []Thing) (Thing, error) {
	if len(rest) != 1 {
		return nil, fmt.Errorf("%s expects 1 more argument, got %d", sym.Name, len(rest))
	}
	switch sym.Name {
	case "+":
		other, ok := rest[0].(Str)
		if !ok {
			return nil, typeErr(sym.Name, self, rest[0])
		}
		return self + other, nil
	case "==":
		other, ok := rest[0].(Str)
		return Bool(ok && self == other), nil
	case "!=":
		other, ok := rest[0].(Str)
		return Bool(!ok || self != other), nil
	}
	return nil, typeErr(sym.Name, self)
}

func tupleEquals(a, b *Tuple) (bool, error) {
	if len(a.Elements) != len(b.Elements) {
		return false, nil
	}
	eqSym := Operators()["=="]
	for i := range a.Elements {
		r, err := Dispatch(eqSym, []Thing{a.Elements[i], b.Elements[i]}, nil)
		if err != nil {
			return false, err
		}
		b, ok := r.(Bool)
		if !ok || !bool(b) {
			return false, nil
		}
	}
	return true, nil
}

func tupleDispatch(self *Tuple, sym *Symbol, rest []Thing) (Thing, error) {
	switch sym.Name {
	case "==", "!=":
		if len(rest) != 1 {
			return nil, fmt.Errorf("%s expects 1 more argument, got %d", sym.Name, len(rest))
		}
		other, ok := rest[0].(*Tuple)
		if !ok {
			return Bool(sym.Name == "!="), nil
		}
		eq, err := tupleEquals(self, other)
		if err != nil {
			return nil, err
		}
		if sym.Name == "!=" {
			eq = !eq
		}
		return Bool(eq), nil
	case "get":
		if len(rest) != 1 {
			return nil, fmt.Errorf("get expects 1 more argument, got %d", len(rest))
		}
		idx, ok := rest[0].(Int)
		if !ok {
			return nil, typeErr("get", self, rest[0])
		}
		if int(idx) < 0 || int(idx) >= len(self.Elements) {
			return nil, fmt.Errorf("get: index %d out of bounds for tuple of length %d", idx, len(self.Elements))
		}
		return self.Elements[idx], nil
	}
	return nil, typeErr(sym.Name, self)
}

func moduleDispatch(self *Module, sym *Symbol, rest []Thing) (Thing, error) {
	if sym.Name != "." {
		return nil, typeErr(sym.Name, self)
	}
	if len(rest) != 1 {
		return nil, fmt.Errorf(". expects 1 more argument, got %d", len(rest))
	}
	name, ok := rest[0].(Str)
	if !ok {
		return nil, typeErr(".", self, rest[0])
	}
	v, ok := self.Exports.Get(string(name))
	if !ok {
		return nil, fmt.Errorf("module %s has no export %q", self.Name, name)
	}
	return v, nil
}

// objectDispatch: absent symbol falls back to responds_to (returns a Bool
// rather than erroring); present with no
// further args returns the bound value; present with further args calls
// the bound value with them. `call` invokes the object's own `call`
// property, if any, with all of rest.
func objectDispatch(self *Object, sym *Symbol, rest []Thing, call Caller) (Thing, error) {
	if sym.Name == "call" {
		fn, ok := self.Get(Operators()["call"])
		if !ok {
			return nil, fmt.Errorf("object has no call property")
		}
		if call == nil {
			return nil, fmt.Errorf("object.call requires a caller")
		}
		return call(fn, rest)
	}
	// unpack lets a constructor-style object (self here plays the role of
	// the constructor being asked "please unpack this value for me", per
	// unpack_call's dispatch(unpack, [ctor, value]) calling convention)
	// delegate to its own "unpack" property rather than having a single
	// built-in destructuring rule for every object shape.
	if sym.Name == "unpack" {
		fn, ok := self.Get(Operators()["unpack"])
		if !ok {
			return nil, fmt.Errorf("object has no unpack property")
		}
		if call == nil {
			return nil, fmt.Errorf("object.unpack requires a caller")
		}
		return call(fn, rest)
	}
	v, ok := self.Get(sym)
	if !ok {
		return Bool(false), nil
	}
	if len(rest) == 0 {
		return v, nil
	}
	if call == nil {
		return nil, fmt.Errorf("object field %s requires a caller", sym.Name)
	}
	return call(v, rest)
}
