package vm

import "fmt"

// registerObjectPrimitives installs the root protocol. Everything
// understands these unless overridden.
func (vm *VM) registerObjectPrimitives() {
	c := vm.ObjectClass

	vm.installPrimitive(c, Method0Func("class", func(vm *VM, receiver Value) (Value, bool) {
		return vm.ClassOf(receiver).Value(), true
	}))

	// Identity. `=` defaults to identity and classes override it;
	// `==` is always identity and NaN-boxing makes it bit equality.
	vm.installPrimitive(c, Method1Func("==", func(vm *VM, receiver, other Value) (Value, bool) {
		return FromBool(receiver == other), true
	}))
	vm.installPrimitive(c, Method1Func("=", func(vm *VM, receiver, other Value) (Value, bool) {
		return FromBool(receiver == other), true
	}))
	vm.installPrimitive(c, Method1Func("~=", func(vm *VM, receiver, other Value) (Value, bool) {
		eq := vm.send(receiver, vm.symbols.Intern("="), []Value{other})
		if !eq.IsBool() {
			return Nil, false
		}
		return FromBool(eq == False), true
	}))

	vm.installPrimitive(c, Method0Func("hash", func(vm *VM, receiver Value) (Value, bool) {
		return FromSmallInt(int64(uint64(receiver) & 0x3FFFFFFFFFFF)), true
	}))

	vm.installPrimitive(c, Method0Func("isNil", func(vm *VM, receiver Value) (Value, bool) {
		return FromBool(receiver == Nil), true
	}))
	vm.installPrimitive(c, Method0Func("notNil", func(vm *VM, receiver Value) (Value, bool) {
		return FromBool(receiver != Nil), true
	}))
	vm.installPrimitive(c, Method0Func("yourself", func(vm *VM, receiver Value) (Value, bool) {
		return receiver, true
	}))

	vm.installPrimitive(c, Method0Func("printString", func(vm *VM, receiver Value) (Value, bool) {
		return vm.NewString("instance of " + vm.ClassOf(receiver).Name), true
	}))

	// printNl dispatches printString so overrides take effect, prints
	// the text plus a newline, and answers the receiver.
	vm.installPrimitive(c, Method0Func("printNl", func(vm *VM, receiver Value) (Value, bool) {
		vm.printValue(receiver)
		fmt.Fprintln(vm.out)
		return receiver, true
	}))
	vm.installPrimitive(c, Method0Func("println", func(vm *VM, receiver Value) (Value, bool) {
		vm.printValue(receiver)
		fmt.Fprintln(vm.out)
		return receiver, true
	}))
	vm.installPrimitive(c, Method0Func("print", func(vm *VM, receiver Value) (Value, bool) {
		vm.printValue(receiver)
		return receiver, true
	}))
	vm.installPrimitive(c, Method0Func("inspect", func(vm *VM, receiver Value) (Value, bool) {
		vm.printValue(receiver)
		fmt.Fprintln(vm.out)
		return receiver, true
	}))

	vm.installPrimitive(c, Method1Func("isKindOf:", func(vm *VM, receiver, class Value) (Value, bool) {
		if !class.IsClass() {
			return Nil, false
		}
		return FromBool(vm.IsKindOf(receiver, vm.classes.ByIndex(class.ClassIndex()))), true
	}))
	vm.installPrimitive(c, Method1Func("isMemberOf:", func(vm *VM, receiver, class Value) (Value, bool) {
		if !class.IsClass() {
			return Nil, false
		}
		return FromBool(vm.ClassOf(receiver) == vm.classes.ByIndex(class.ClassIndex())), true
	}))
	vm.installPrimitive(c, Method1Func("respondsTo:", func(vm *VM, receiver, selector Value) (Value, bool) {
		if !selector.IsSymbol() {
			return Nil, false
		}
		return FromBool(vm.lookupMethod(vm.ClassOf(receiver), selector.SymbolID()) != nil), true
	}))

	vm.installPrimitive(c, Method1Func("perform:", func(vm *VM, receiver, selector Value) (Value, bool) {
		if !selector.IsSymbol() {
			return Nil, false
		}
		return vm.send(receiver, selector.SymbolID(), nil), true
	}))
	vm.installPrimitive(c, Method2Func("perform:withArguments:", func(vm *VM, receiver, selector, args Value) (Value, bool) {
		if !selector.IsSymbol() || !args.IsObject() {
			return Nil, false
		}
		arr := objectFromValue(args)
		vals := make([]Value, arr.NumSlots())
		for i := range vals {
			vals[i] = arr.Slot(i)
		}
		return vm.send(receiver, selector.SymbolID(), vals), true
	}))

	// Defaults for the VM's own escape hatches. Subclasses override
	// these to customize missing-message and escaped-block behavior.
	vm.installPrimitive(c, Method2Func("doesNotUnderstand:arguments:",
		func(vm *VM, receiver, selector, args Value) (Value, bool) {
			name := "?"
			if selector.IsSymbol() {
				name = vm.symbols.Name(selector.SymbolID())
			}
			panic(&RuntimeError{
				Kind:          MessageNotUnderstood,
				Selector:      name,
				ReceiverClass: vm.ClassOf(receiver).Name,
				Message:       "message not understood",
			})
		}))
	vm.installPrimitive(c, Method1Func("escapedBlock:", func(vm *VM, receiver, block Value) (Value, bool) {
		if !block.IsBlock() {
			return Nil, false
		}
		vm.raiseDeadContextReturn(vm.heap.BlockAt(block))
		return Nil, true
	}))
	vm.installPrimitive(c, Method1Func("unknownGlobal:", func(vm *VM, receiver, name Value) (Value, bool) {
		text := "?"
		if name.IsSymbol() {
			text = vm.symbols.Name(name.SymbolID())
		}
		panic(&RuntimeError{
			Kind:          PrimitiveFailure,
			ReceiverClass: vm.ClassOf(receiver).Name,
			Message:       fmt.Sprintf("unknown global %q", text),
		})
	}))
}

// printValue writes a value's printString to the VM's writer,
// dispatching through printString so class overrides apply.
func (vm *VM) printValue(v Value) {
	s := vm.send(v, vm.symbols.Intern("printString"), nil)
	if s.IsString() || s.IsSymbol() {
		fmt.Fprint(vm.out, vm.StringText(s))
		return
	}
	fmt.Fprint(vm.out, "instance of "+vm.ClassOf(v).Name)
}
