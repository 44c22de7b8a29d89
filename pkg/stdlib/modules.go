package stdlib

import (
	"fmt"

	"github.com/blg-lang/blg/pkg/rtutil"
	"github.com/blg-lang/blg/pkg/value"
	"github.com/blg-lang/blg/pkg/vm"
)

// installEmbeddedModules registers the three named std-lib modules `import`
// resolves against when no source file matches (`functools`, `operators`,
// `internal/inheritance`). Each is built natively rather than as
// interpreted source: a *value.Module built directly out of Go
// closures/operator aliases instead of embedded blg text.
func installEmbeddedModules(rt *vm.Runtime) {
	rt.RegisterBuiltinModule("functools", functoolsModule())
	rt.RegisterBuiltinModule("operators", operatorsModule(rt))
	rt.RegisterBuiltinModule("internal/inheritance", inheritanceModule(rt))
}

func moduleOf(name string, exports *rtutil.OrderedMap[string, value.Thing]) *value.Module {
	return &value.Module{Name: name, Exports: exports}
}

// functoolsModule provides `call` (apply fn to a list of arguments) and
// `varargs` (wrap a fn expecting a single list argument as one accepting
// one or more direct arguments).
func functoolsModule() *value.Module {
	exports := rtutil.NewOrderedMap[string, value.Thing]()
	exports.Set("call", native("call", ftCall))
	exports.Set("varargs", native("varargs", ftVarargs))
	return moduleOf("functools", exports)
}

func ftCall(rt value.Runtime, args []value.Thing) (value.Thing, error) {
	if len(args) != 2 {
		return nil, arityErr("call", 2, len(args))
	}
	fn := args[0]
	elems, err := value.ListToSlice(args[1])
	if err != nil {
		return nil, fmt.Errorf("call: expected argument 2 to be a list, %s", err)
	}
	if len(elems) == 0 {
		return nil, fmt.Errorf("call: cannot call function with no arguments")
	}
	return rt.CallFunction(fn, elems)
}

func ftVarargs(rt value.Runtime, args []value.Thing) (value.Thing, error) {
	if len(args) != 1 {
		return nil, arityErr("varargs", 1, len(args))
	}
	fn := args[0]
	return native("varargs-wrapped", func(rt2 value.Runtime, callArgs []value.Thing) (value.Thing, error) {
		if len(callArgs) < 1 {
			return nil, fmt.Errorf("expected at least 1 argument, got %d", len(callArgs))
		}
		return rt2.CallFunction(fn, []value.Thing{value.SliceToList(callArgs)})
	}), nil
}

// operatorsModule re-exports the fixed operator symbols under readable
// names.
func operatorsModule(rt *vm.Runtime) *value.Module {
	exports := rtutil.NewOrderedMap[string, value.Thing]()
	alias := func(exportName, opName string) {
		if v, ok := rt.Operator(opName); ok {
			exports.Set(exportName, v)
		}
	}
	alias("add", "+")
	alias("subtract", "-")
	alias("multiply", "*")
	alias("divide", "/")
	alias("equal", "==")
	alias("not_equal", "!=")
	alias("less_than", "<")
	alias("less_than_equal", "<=")
	alias("more_than", ">")
	alias("more_than_equal", ">=")
	alias("op_and", "and")
	alias("op_or", "or")
	alias("op_not", "not")
	alias("cons", "::")
	alias("access", ".")
	alias("unpack", "unpack")
	return moduleOf("operators", exports)
}

// inheritanceModule provides `properties` (enumerate an object's own
// (symbol, value) pairs, used to build a `derive`-style helper on top in
// user code) and re-exports the `object` constructor.
func inheritanceModule(rt *vm.Runtime) *value.Module {
	exports := rtutil.NewOrderedMap[string, value.Thing]()
	exports.Set("properties", native("properties", ihProperties))
	if v, ok := rt.Operator("object"); ok {
		exports.Set("object", v)
	}
	return moduleOf("internal/inheritance", exports)
}

func ihProperties(rt value.Runtime, args []value.Thing) (value.Thing, error) {
	if len(args) != 1 {
		return nil, arityErr("properties", 1, len(args))
	}
	obj, ok := args[0].(*value.Object)
	if !ok {
		return nil, fmt.Errorf("properties: expected an object, got %s", value.TypeName(args[0]))
	}
	var pairs []value.Thing
	obj.Each(func(name string, v value.Thing) bool {
		pairs = append(pairs, &value.Tuple{Elements: []value.Thing{value.InternSymbol(name), v}})
		return true
	})
	return value.SliceToList(pairs), nil
}
