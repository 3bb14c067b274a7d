package vm

import (
	"fmt"
	"time"
)

// registerSystemPrimitives installs the System protocol. The `system`
// global holds the singleton instance.
func (vm *VM) registerSystemPrimitives() {
	c := vm.SystemClass

	vm.installPrimitive(c, Method1Func("printString:", func(vm *VM, receiver, s Value) (Value, bool) {
		if !s.IsString() && !s.IsSymbol() {
			return Nil, false
		}
		fmt.Fprint(vm.out, vm.StringText(s))
		return receiver, true
	}))

	vm.installPrimitive(c, Method0Func("printNewline", func(vm *VM, receiver Value) (Value, bool) {
		fmt.Fprintln(vm.out)
		return receiver, true
	}))

	vm.installPrimitive(c, Method1Func("global:", func(vm *VM, receiver, name Value) (Value, bool) {
		if !name.IsSymbol() {
			return Nil, false
		}
		if v, ok := vm.globals[name.SymbolID()]; ok {
			return v, true
		}
		return Nil, true
	}))

	vm.installPrimitive(c, Method2Func("global:put:", func(vm *VM, receiver, name, v Value) (Value, bool) {
		if !name.IsSymbol() {
			return Nil, false
		}
		vm.globals[name.SymbolID()] = v
		return v, true
	}))

	vm.installPrimitive(c, Method1Func("hasGlobal:", func(vm *VM, receiver, name Value) (Value, bool) {
		if !name.IsSymbol() {
			return Nil, false
		}
		_, ok := vm.globals[name.SymbolID()]
		return FromBool(ok), true
	}))

	vm.installPrimitive(c, Method0Func("arguments", func(vm *VM, receiver Value) (Value, bool) {
		args := make([]Value, len(vm.args))
		for i, a := range vm.args {
			args[i] = vm.NewString(a)
		}
		return vm.NewArray(args), true
	}))

	vm.installPrimitive(c, Method1Func("exit:", func(vm *VM, receiver, code Value) (Value, bool) {
		if !code.IsSmallInt() {
			return Nil, false
		}
		panic(&ExitRequest{Code: int(code.SmallInt())})
	}))

	vm.installPrimitive(c, Method0Func("ticks", func(vm *VM, receiver Value) (Value, bool) {
		return FromSmallInt(time.Since(vm.start).Microseconds()), true
	}))

	vm.installPrimitive(c, Method0Func("time", func(vm *VM, receiver Value) (Value, bool) {
		return FromSmallInt(time.Since(vm.start).Milliseconds()), true
	}))

	vm.installPrimitive(c, Method0Func("fullGC", func(vm *VM, receiver Value) (Value, bool) {
		return FromSmallInt(int64(vm.CollectGarbage())), true
	}))
}
