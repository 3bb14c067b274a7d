package vm

// registerClassPrimitives installs reflection on Class. Metaclass
// chains terminate at Class, so every class value responds to these.
func (vm *VM) registerClassPrimitives() {
	c := vm.ClassClass

	classOf := func(vm *VM, v Value) (*Class, bool) {
		if !v.IsClass() {
			return nil, false
		}
		k := vm.classes.ByIndex(v.ClassIndex())
		return k, k != nil
	}

	vm.installPrimitive(c, Method0Func("name", func(vm *VM, receiver Value) (Value, bool) {
		k, ok := classOf(vm, receiver)
		if !ok {
			return Nil, false
		}
		return vm.InternSymbol(k.Name), true
	}))

	vm.installPrimitive(c, Method0Func("new", func(vm *VM, receiver Value) (Value, bool) {
		k, ok := classOf(vm, receiver)
		if !ok || k.IsMeta {
			return Nil, false
		}
		return vm.heap.Allocate(k).Value(), true
	}))

	vm.installPrimitive(c, Method0Func("superclass", func(vm *VM, receiver Value) (Value, bool) {
		k, ok := classOf(vm, receiver)
		if !ok {
			return Nil, false
		}
		if k.Superclass == nil {
			return Nil, true
		}
		return k.Superclass.Value(), true
	}))

	vm.installPrimitive(c, Method0Func("fields", func(vm *VM, receiver Value) (Value, bool) {
		k, ok := classOf(vm, receiver)
		if !ok {
			return Nil, false
		}
		names := make([]Value, len(k.InstVars))
		for i, n := range k.InstVars {
			names[i] = vm.InternSymbol(n)
		}
		return vm.NewArray(names), true
	}))

	vm.installPrimitive(c, Method0Func("methods", func(vm *VM, receiver Value) (Value, bool) {
		k, ok := classOf(vm, receiver)
		if !ok {
			return Nil, false
		}
		sels := k.VTable.Selectors()
		out := make([]Value, len(sels))
		for i, id := range sels {
			out[i] = FromSymbolID(id)
		}
		return vm.NewArray(out), true
	}))

	vm.installPrimitive(c, Method1Func("hasMethod:", func(vm *VM, receiver, selector Value) (Value, bool) {
		k, ok := classOf(vm, receiver)
		if !ok || !selector.IsSymbol() {
			return Nil, false
		}
		return FromBool(k.VTable.Lookup(selector.SymbolID()) != nil), true
	}))

	vm.installPrimitive(c, Method0Func("printString", func(vm *VM, receiver Value) (Value, bool) {
		k, ok := classOf(vm, receiver)
		if !ok {
			return Nil, false
		}
		return vm.NewString(k.Name), true
	}))
}
