package vm

func (vm *VM) registerBlockPrimitives() {
	c := vm.BlockClass

	valuePrim := func(name string, argc int) {
		m := &PrimitiveMethod{
			Name:    name,
			NumArgs: argc,
			Fn: func(vm *VM, receiver Value, args []Value) (Value, bool) {
				if !receiver.IsBlock() {
					return Nil, false
				}
				return vm.activateBlock(vm.heap.BlockAt(receiver), args), true
			},
		}
		vm.installPrimitive(c, m)
	}
	valuePrim("value", 0)
	valuePrim("value:", 1)
	valuePrim("value:with:", 2)
	valuePrim("value:with:with:", 3)

	vm.installPrimitive(c, Method0Func("numArgs", func(vm *VM, receiver Value) (Value, bool) {
		if !receiver.IsBlock() {
			return Nil, false
		}
		return FromSmallInt(int64(vm.heap.BlockAt(receiver).NumArgs())), true
	}))

	vm.installPrimitive(c, Method1Func("whileTrue:", func(vm *VM, receiver, body Value) (Value, bool) {
		if !receiver.IsBlock() || !body.IsBlock() {
			return Nil, false
		}
		cond := vm.heap.BlockAt(receiver)
		b := vm.heap.BlockAt(body)
		for {
			r := vm.activateBlock(cond, nil)
			if r != True {
				return Nil, true
			}
			vm.activateBlock(b, nil)
		}
	}))

	vm.installPrimitive(c, Method1Func("whileFalse:", func(vm *VM, receiver, body Value) (Value, bool) {
		if !receiver.IsBlock() || !body.IsBlock() {
			return Nil, false
		}
		cond := vm.heap.BlockAt(receiver)
		b := vm.heap.BlockAt(body)
		for {
			r := vm.activateBlock(cond, nil)
			if r != False {
				return Nil, true
			}
			vm.activateBlock(b, nil)
		}
	}))

	// on:do: evaluates the receiver with a handler armed for runtime
	// errors of the given kind (#Error matches any catchable kind).
	// The handler block receives the kind symbol and message text,
	// trimmed to its arity. Non-local returns and fatal errors pass
	// through untouched.
	vm.installPrimitive(c, Method2Func("on:do:", func(vm *VM, receiver, kind, handler Value) (Value, bool) {
		if !receiver.IsBlock() || !kind.IsSymbol() || !handler.IsBlock() {
			return Nil, false
		}
		return vm.runProtected(
			vm.heap.BlockAt(receiver),
			vm.symbols.Name(kind.SymbolID()),
			vm.heap.BlockAt(handler),
		), true
	}))

	vm.installPrimitive(c, Method0Func("printString", func(vm *VM, receiver Value) (Value, bool) {
		if !receiver.IsBlock() {
			return Nil, false
		}
		b := vm.heap.BlockAt(receiver)
		return vm.NewString("[] in " + b.Template.Holder.Name), true
	}))
}

// runProtected runs a block with a handler for catchable runtime
// errors of the named kind.
func (vm *VM) runProtected(b *BlockValue, kindName string, handler *BlockValue) (result Value) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		e, ok := r.(*RuntimeError)
		if !ok || !e.Catchable() {
			panic(r)
		}
		if kindName != "Error" && kindName != e.Kind.String() {
			panic(r)
		}
		switch handler.NumArgs() {
		case 0:
			result = vm.activateBlock(handler, nil)
		case 1:
			result = vm.activateBlock(handler, []Value{vm.InternSymbol(e.Kind.String())})
		default:
			result = vm.activateBlock(handler, []Value{
				vm.InternSymbol(e.Kind.String()),
				vm.NewString(e.Message),
			})
		}
	}()
	return vm.activateBlock(b, nil)
}
