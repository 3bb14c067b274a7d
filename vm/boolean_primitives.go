package vm

// registerBooleanPrimitives installs True, False, and Nil protocol.
// Conditionals compile to jumps; these cover explicit sends.
func (vm *VM) registerBooleanPrimitives() {
	t := vm.TrueClass
	f := vm.FalseClass

	vm.installPrimitive(t, Method0Func("not", func(vm *VM, r Value) (Value, bool) {
		return False, true
	}))
	vm.installPrimitive(f, Method0Func("not", func(vm *VM, r Value) (Value, bool) {
		return True, true
	}))

	vm.installPrimitive(t, Method1Func("and:", func(vm *VM, r, arg Value) (Value, bool) {
		return vm.evaluateCondition(arg)
	}))
	vm.installPrimitive(f, Method1Func("and:", func(vm *VM, r, arg Value) (Value, bool) {
		return False, true
	}))
	vm.installPrimitive(t, Method1Func("or:", func(vm *VM, r, arg Value) (Value, bool) {
		return True, true
	}))
	vm.installPrimitive(f, Method1Func("or:", func(vm *VM, r, arg Value) (Value, bool) {
		return vm.evaluateCondition(arg)
	}))

	vm.installPrimitive(t, Method1Func("&", func(vm *VM, r, arg Value) (Value, bool) {
		if !arg.IsBool() {
			return Nil, false
		}
		return arg, true
	}))
	vm.installPrimitive(f, Method1Func("&", func(vm *VM, r, arg Value) (Value, bool) {
		if !arg.IsBool() {
			return Nil, false
		}
		return False, true
	}))
	vm.installPrimitive(t, Method1Func("|", func(vm *VM, r, arg Value) (Value, bool) {
		if !arg.IsBool() {
			return Nil, false
		}
		return True, true
	}))
	vm.installPrimitive(f, Method1Func("|", func(vm *VM, r, arg Value) (Value, bool) {
		if !arg.IsBool() {
			return Nil, false
		}
		return arg, true
	}))

	vm.installPrimitive(t, Method1Func("ifTrue:", func(vm *VM, r, arg Value) (Value, bool) {
		return vm.evaluateCondition(arg)
	}))
	vm.installPrimitive(f, Method1Func("ifTrue:", func(vm *VM, r, arg Value) (Value, bool) {
		return Nil, true
	}))
	vm.installPrimitive(t, Method1Func("ifFalse:", func(vm *VM, r, arg Value) (Value, bool) {
		return Nil, true
	}))
	vm.installPrimitive(f, Method1Func("ifFalse:", func(vm *VM, r, arg Value) (Value, bool) {
		return vm.evaluateCondition(arg)
	}))
	vm.installPrimitive(t, Method2Func("ifTrue:ifFalse:", func(vm *VM, r, a, b Value) (Value, bool) {
		return vm.evaluateCondition(a)
	}))
	vm.installPrimitive(f, Method2Func("ifTrue:ifFalse:", func(vm *VM, r, a, b Value) (Value, bool) {
		return vm.evaluateCondition(b)
	}))

	vm.installPrimitive(t, Method0Func("printString", func(vm *VM, r Value) (Value, bool) {
		return vm.NewString("true"), true
	}))
	vm.installPrimitive(f, Method0Func("printString", func(vm *VM, r Value) (Value, bool) {
		return vm.NewString("false"), true
	}))

	n := vm.NilClass
	vm.installPrimitive(n, Method0Func("printString", func(vm *VM, r Value) (Value, bool) {
		return vm.NewString("nil"), true
	}))
	vm.installPrimitive(n, Method1Func("ifNil:", func(vm *VM, r, arg Value) (Value, bool) {
		return vm.evaluateCondition(arg)
	}))
	vm.installPrimitive(n, Method1Func("ifNotNil:", func(vm *VM, r, arg Value) (Value, bool) {
		return Nil, true
	}))
	vm.installPrimitive(vm.ObjectClass, Method1Func("ifNil:", func(vm *VM, r, arg Value) (Value, bool) {
		return r, true
	}))
	vm.installPrimitive(vm.ObjectClass, Method1Func("ifNotNil:", func(vm *VM, r, arg Value) (Value, bool) {
		return vm.evaluateCondition(arg)
	}))
}

// evaluateCondition runs a block argument or returns a plain value
// unchanged, the lazy/eager split of and:/or:/ifTrue:.
func (vm *VM) evaluateCondition(arg Value) (Value, bool) {
	if arg.IsBlock() {
		return vm.activateBlock(vm.heap.BlockAt(arg), nil), true
	}
	return arg, true
}
