package vm

// Method is anything installable in a vtable. Compiled methods
// activate a frame; primitive methods call straight into Go.
type Method interface {
	Invoke(vm *VM, receiver Value, args []Value) Value
}

// PrimitiveFunc is the Go implementation of a primitive. Returning
// ok=false signals primitive failure; the caller falls back to the
// method's bytecode body if it has one, otherwise raises a catchable
// error.
type PrimitiveFunc func(vm *VM, receiver Value, args []Value) (Value, bool)

// PrimitiveMethod wraps a PrimitiveFunc as an installable method.
// Fallback, when non-nil, is the bytecode body interpreted on
// primitive failure.
type PrimitiveMethod struct {
	Name     string
	NumArgs  int
	Fn       PrimitiveFunc
	Fallback *CompiledMethod
}

// Invoke runs the primitive, handling arity mismatch and failure.
func (m *PrimitiveMethod) Invoke(vm *VM, receiver Value, args []Value) Value {
	if len(args) != m.NumArgs {
		vm.raisePrimitiveFailure(m.Name, receiver, "wrong number of arguments")
	}
	result, ok := m.Fn(vm, receiver, args)
	if ok {
		return result
	}
	if m.Fallback != nil {
		return vm.activateMethod(m.Fallback, receiver, args)
	}
	vm.raisePrimitiveFailure(m.Name, receiver, "primitive failed")
	return Nil
}

// Arity-specialized constructors keep primitive registration files
// free of slice plumbing.

// Method0Func adapts a zero-argument primitive.
func Method0Func(name string, fn func(vm *VM, receiver Value) (Value, bool)) *PrimitiveMethod {
	return &PrimitiveMethod{
		Name:    name,
		NumArgs: 0,
		Fn: func(vm *VM, receiver Value, args []Value) (Value, bool) {
			return fn(vm, receiver)
		},
	}
}

// Method1Func adapts a one-argument primitive.
func Method1Func(name string, fn func(vm *VM, receiver, a Value) (Value, bool)) *PrimitiveMethod {
	return &PrimitiveMethod{
		Name:    name,
		NumArgs: 1,
		Fn: func(vm *VM, receiver Value, args []Value) (Value, bool) {
			return fn(vm, receiver, args[0])
		},
	}
}

// Method2Func adapts a two-argument primitive.
func Method2Func(name string, fn func(vm *VM, receiver, a, b Value) (Value, bool)) *PrimitiveMethod {
	return &PrimitiveMethod{
		Name:    name,
		NumArgs: 2,
		Fn: func(vm *VM, receiver Value, args []Value) (Value, bool) {
			return fn(vm, receiver, args[0], args[1])
		},
	}
}

// Method3Func adapts a three-argument primitive.
func Method3Func(name string, fn func(vm *VM, receiver, a, b, c Value) (Value, bool)) *PrimitiveMethod {
	return &PrimitiveMethod{
		Name:    name,
		NumArgs: 3,
		Fn: func(vm *VM, receiver Value, args []Value) (Value, bool) {
			return fn(vm, receiver, args[0], args[1], args[2])
		},
	}
}
