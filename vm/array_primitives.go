package vm

import "strings"

// arrayOf validates an Array receiver.
func (vm *VM) arrayOf(v Value) (*Object, bool) {
	if !v.IsObject() {
		return nil, false
	}
	o := objectFromValue(v)
	if !o.class.InheritsFrom(vm.ArrayClass) {
		return nil, false
	}
	return o, true
}

func (vm *VM) registerArrayPrimitives() {
	c := vm.ArrayClass

	// Array new: n. Slots are indexable, 1-based at the language
	// level, nil-filled.
	vm.installClassPrimitive(c, Method1Func("new:", func(vm *VM, receiver, n Value) (Value, bool) {
		if !receiver.IsClass() || !n.IsSmallInt() || n.SmallInt() < 0 {
			return Nil, false
		}
		class := vm.classes.ByIndex(receiver.ClassIndex())
		return vm.heap.AllocateSlots(class, int(n.SmallInt())).Value(), true
	}))

	vm.installPrimitive(c, Method0Func("length", func(vm *VM, a Value) (Value, bool) {
		o, ok := vm.arrayOf(a)
		if !ok {
			return Nil, false
		}
		return FromSmallInt(int64(o.NumSlots())), true
	}))

	vm.installPrimitive(c, Method1Func("at:", func(vm *VM, a, idx Value) (Value, bool) {
		o, ok := vm.arrayOf(a)
		if !ok || !idx.IsSmallInt() {
			return Nil, false
		}
		i := idx.SmallInt()
		if i < 1 || i > int64(o.NumSlots()) {
			return Nil, false
		}
		return o.Slot(int(i - 1)), true
	}))

	vm.installPrimitive(c, Method2Func("at:put:", func(vm *VM, a, idx, v Value) (Value, bool) {
		o, ok := vm.arrayOf(a)
		if !ok || !idx.IsSmallInt() {
			return Nil, false
		}
		i := idx.SmallInt()
		if i < 1 || i > int64(o.NumSlots()) {
			return Nil, false
		}
		o.SetSlot(int(i-1), v)
		return v, true
	}))

	vm.installPrimitive(c, Method0Func("copy", func(vm *VM, a Value) (Value, bool) {
		o, ok := vm.arrayOf(a)
		if !ok {
			return Nil, false
		}
		dup := vm.heap.AllocateSlots(o.class, o.NumSlots())
		for i := 0; i < o.NumSlots(); i++ {
			dup.SetSlot(i, o.Slot(i))
		}
		return dup.Value(), true
	}))

	// do: iterates in index order, sending value: to the block.
	vm.installPrimitive(c, Method1Func("do:", func(vm *VM, a, block Value) (Value, bool) {
		o, ok := vm.arrayOf(a)
		if !ok || !block.IsBlock() {
			return Nil, false
		}
		b := vm.heap.BlockAt(block)
		for i := 0; i < o.NumSlots(); i++ {
			vm.activateBlock(b, []Value{o.Slot(i)})
		}
		return a, true
	}))

	vm.installPrimitive(c, Method0Func("printString", func(vm *VM, a Value) (Value, bool) {
		o, ok := vm.arrayOf(a)
		if !ok {
			return Nil, false
		}
		var sb strings.Builder
		sb.WriteByte('(')
		for i := 0; i < o.NumSlots(); i++ {
			if i > 0 {
				sb.WriteByte(' ')
			}
			elem := vm.send(o.Slot(i), vm.symbols.Intern("printString"), nil)
			if elem.IsString() || elem.IsSymbol() {
				sb.WriteString(vm.StringText(elem))
			}
		}
		sb.WriteByte(')')
		return vm.NewString(sb.String()), true
	}))
}
