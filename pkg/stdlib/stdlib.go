// Package stdlib installs blg's native builtins/globals scope and its
// embedded std-lib modules into a *vm.Runtime: closures bound to a runtime,
// installed once at construction, covering the language's actual builtin
// surface.
package stdlib

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/blg-lang/blg/pkg/value"
	"github.com/blg-lang/blg/pkg/vm"
)

// Install registers every builtin global and internal operator onto rt,
// and loads the embedded std-lib modules under their well-known names so
// `import "functools"` etc. resolve when no source file of that name is
// found first.
func Install(rt *vm.Runtime) {
	installOperatorHelpers(rt)
	installGlobals(rt)
	installEmbeddedModules(rt)
}

var stdin = bufio.NewScanner(os.Stdin)

func installGlobals(rt *vm.Runtime) {
	rt.RegisterBuiltin("none", rt.None())
	rt.RegisterBuiltin("false", value.Bool(false))
	rt.RegisterBuiltin("true", value.Bool(true))

	// get/responds_to are dispatch-driven operators already registered in
	// the operators table under the same *value.Symbol; aliasing the same
	// object into builtins lets user code reach them by plain name through
	// LOAD+CALL as well as through PUSH_BUILTIN, with no duplicate logic.
	if v, ok := rt.Operator("get"); ok {
		rt.RegisterBuiltin("get", v)
	}
	if v, ok := rt.Operator("responds_to"); ok {
		rt.RegisterBuiltin("responds_to", v)
	}

	rt.RegisterBuiltin("print", native("print", biPrint))
	rt.RegisterBuiltin("input", native("input", biInput))
	rt.RegisterBuiltin("assert", native("assert", biAssert))
	rt.RegisterBuiltin("toStr", native("toStr", biToStr))
	rt.RegisterBuiltin("toInt", native("toInt", biToInt))
	rt.RegisterBuiltin("trycatch", native("trycatch", biTrycatch))
	rt.RegisterBuiltin("head", native("head", biHead))
	rt.RegisterBuiltin("tail", native("tail", biTail))
	rt.RegisterBuiltin("createSymbol", native("createSymbol", biCreateSymbol))
	rt.RegisterBuiltin("createCell", native("createCell", biCreateCell))
	rt.RegisterBuiltin("getCell", native("getCell", biGetCell))
	rt.RegisterBuiltin("setCell", native("setCell", biSetCell))
	rt.RegisterBuiltin("import", native("import", importFn(rt)))
	rt.RegisterBuiltin("is_none", native("is_none", biIsNone))
}

func native(name string, fn value.NativeFn) *value.NativeFunc {
	return &value.NativeFunc{Name: name, Fn: fn}
}

func arityErr(name string, want int, got int) error {
	return fmt.Errorf("%s expects %d argument(s), got %d", name, want, got)
}

// render implements print/toStr's shared formatting: scalars via their own
// String(), lists/tuples/objects rendered structurally rather than via
// Go's %v, so nested lists print as blg literals would read.
func render(v value.Thing) string {
	switch t := v.(type) {
	case *value.Tuple:
		parts := make([]string, len(t.Elements))
		for i, e := range t.Elements {
			parts[i] = render(e)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case *value.Cons:
		elems, err := value.ListToSlice(t)
		if err != nil {
			return "[improper list]"
		}
		parts := make([]string, len(elems))
		for i, e := range elems {
			parts[i] = render(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *value.Object:
		var b strings.Builder
		b.WriteByte('{')
		first := true
		t.Each(func(name string, v value.Thing) bool {
			if !first {
				b.WriteString(", ")
			}
			first = false
			fmt.Fprintf(&b, "%s: %s", name, render(v))
			return true
		})
		b.WriteByte('}')
		return b.String()
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

func biPrint(rt value.Runtime, args []value.Thing) (value.Thing, error) {
	if len(args) != 1 {
		return nil, arityErr("print", 1, len(args))
	}
	fmt.Println(render(args[0]))
	return value.None{}, nil
}

func biInput(rt value.Runtime, args []value.Thing) (value.Thing, error) {
	if len(args) != 0 {
		return nil, arityErr("input", 0, len(args))
	}
	if !stdin.Scan() {
		return nil, fmt.Errorf("input: end of stream")
	}
	return value.Str(stdin.Text()), nil
}

func biAssert(rt value.Runtime, args []value.Thing) (value.Thing, error) {
	if len(args) != 1 {
		return nil, arityErr("assert", 1, len(args))
	}
	if !value.Truthy(args[0]) {
		return nil, fmt.Errorf("assertion failed")
	}
	return value.None{}, nil
}

func biToStr(rt value.Runtime, args []value.Thing) (value.Thing, error) {
	if len(args) != 1 {
		return nil, arityErr("toStr", 1, len(args))
	}
	return value.Str(render(args[0])), nil
}

func biToInt(rt value.Runtime, args []value.Thing) (value.Thing, error) {
	if len(args) != 1 {
		return nil, arityErr("toInt", 1, len(args))
	}
	switch t := args[0].(type) {
	case value.Int:
		return t, nil
	case value.Float:
		return value.Int(int32(t)), nil
	case value.Str:
		n, err := strconv.ParseInt(strings.TrimSpace(string(t)), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("toInt: %q is not an integer", string(t))
		}
		return value.Int(int32(n)), nil
	default:
		return nil, fmt.Errorf("toInt: cannot convert %s to int", value.TypeName(args[0]))
	}
}

// biTrycatch: block1 is invoked with none (not zero arguments); if it
// errors, block2 is invoked with the caught *value.Error and its result is
// returned instead.
func biTrycatch(rt value.Runtime, args []value.Thing) (value.Thing, error) {
	if len(args) != 2 {
		return nil, arityErr("trycatch", 2, len(args))
	}
	v, err := rt.CallFunction(args[0], []value.Thing{value.None{}})
	if err == nil {
		return v, nil
	}
	var caught value.Thing
	if ve, ok := err.(*value.Error); ok {
		caught = ve
	} else {
		caught = &value.Error{Message: err.Error()}
	}
	return rt.CallFunction(args[1], []value.Thing{caught})
}

func biHead(rt value.Runtime, args []value.Thing) (value.Thing, error) {
	if len(args) != 1 {
		return nil, arityErr("head", 1, len(args))
	}
	c, ok := args[0].(*value.Cons)
	if !ok {
		return nil, fmt.Errorf("head: %s is not a non-empty list", value.TypeName(args[0]))
	}
	return c.Head, nil
}

func biTail(rt value.Runtime, args []value.Thing) (value.Thing, error) {
	if len(args) != 1 {
		return nil, arityErr("tail", 1, len(args))
	}
	c, ok := args[0].(*value.Cons)
	if !ok {
		return nil, fmt.Errorf("tail: %s is not a non-empty list", value.TypeName(args[0]))
	}
	return c.Tail, nil
}

func biCreateSymbol(rt value.Runtime, args []value.Thing) (value.Thing, error) {
	if len(args) != 1 {
		return nil, arityErr("createSymbol", 1, len(args))
	}
	name, ok := args[0].(value.Str)
	if !ok {
		return nil, fmt.Errorf("createSymbol: expected a str name, got %s", value.TypeName(args[0]))
	}
	return value.NewSymbol(string(name), -1), nil
}

func biCreateCell(rt value.Runtime, args []value.Thing) (value.Thing, error) {
	if len(args) != 1 {
		return nil, arityErr("createCell", 1, len(args))
	}
	return &value.Cell{Value: args[0]}, nil
}

func biGetCell(rt value.Runtime, args []value.Thing) (value.Thing, error) {
	if len(args) != 1 {
		return nil, arityErr("getCell", 1, len(args))
	}
	c, ok := args[0].(*value.Cell)
	if !ok {
		return nil, fmt.Errorf("getCell: %s is not a cell", value.TypeName(args[0]))
	}
	return c.Value, nil
}

func biSetCell(rt value.Runtime, args []value.Thing) (value.Thing, error) {
	if len(args) != 2 {
		return nil, arityErr("setCell", 2, len(args))
	}
	c, ok := args[0].(*value.Cell)
	if !ok {
		return nil, fmt.Errorf("setCell: %s is not a cell", value.TypeName(args[0]))
	}
	c.Value = args[1]
	return value.None{}, nil
}

// importFn closes over the concrete *vm.Runtime (Import isn't part of
// value.Runtime's minimal NativeFn surface, which only exposes what
// pkg/value itself needs) so the installed "import" native can still
// reach pkg/vm's module-resolution chain.
func importFn(rt *vm.Runtime) value.NativeFn {
	return func(_ value.Runtime, args []value.Thing) (value.Thing, error) {
		if len(args) != 1 {
			return nil, arityErr("import", 1, len(args))
		}
		name, ok := args[0].(value.Str)
		if !ok {
			return nil, fmt.Errorf("import: expected a str module name, got %s", value.TypeName(args[0]))
		}
		return rt.Import(string(name))
	}
}

func biIsNone(rt value.Runtime, args []value.Thing) (value.Thing, error) {
	if len(args) != 1 {
		return nil, arityErr("is_none", 1, len(args))
	}
	_, ok := args[0].(value.None)
	return value.Bool(ok), nil
}
