package vm

import "strings"

func (vm *VM) registerStringPrimitives() {
	c := vm.StringClass

	vm.installPrimitive(c, Method0Func("length", func(vm *VM, s Value) (Value, bool) {
		return FromSmallInt(int64(len([]rune(vm.StringText(s))))), true
	}))

	// at: is 1-based and answers a Character.
	vm.installPrimitive(c, Method1Func("at:", func(vm *VM, s, idx Value) (Value, bool) {
		if !idx.IsSmallInt() {
			return Nil, false
		}
		runes := []rune(vm.StringText(s))
		i := idx.SmallInt()
		if i < 1 || i > int64(len(runes)) {
			return Nil, false
		}
		return FromChar(runes[i-1]), true
	}))

	vm.installPrimitive(c, Method1Func("concatenate:", func(vm *VM, s, other Value) (Value, bool) {
		if !other.IsString() && !other.IsSymbol() {
			return Nil, false
		}
		return vm.NewString(vm.StringText(s) + vm.StringText(other)), true
	}))
	vm.installPrimitive(c, Method1Func("+", func(vm *VM, s, other Value) (Value, bool) {
		if !other.IsString() && !other.IsSymbol() {
			return Nil, false
		}
		return vm.NewString(vm.StringText(s) + vm.StringText(other)), true
	}))

	vm.installPrimitive(c, Method1Func("=", func(vm *VM, s, other Value) (Value, bool) {
		if !other.IsString() && !other.IsSymbol() {
			return False, true
		}
		return FromBool(vm.StringText(s) == vm.StringText(other)), true
	}))

	vm.installPrimitive(c, Method2Func("primSubstringFrom:to:", func(vm *VM, s, from, to Value) (Value, bool) {
		if !from.IsSmallInt() || !to.IsSmallInt() {
			return Nil, false
		}
		runes := []rune(vm.StringText(s))
		lo, hi := from.SmallInt(), to.SmallInt()
		if lo < 1 || hi > int64(len(runes)) || lo > hi+1 {
			return Nil, false
		}
		return vm.NewString(string(runes[lo-1 : hi])), true
	}))

	vm.installPrimitive(c, Method1Func("includes:", func(vm *VM, s, ch Value) (Value, bool) {
		if !ch.IsChar() {
			return Nil, false
		}
		return FromBool(strings.ContainsRune(vm.StringText(s), ch.Char())), true
	}))

	vm.installPrimitive(c, Method0Func("isEmpty", func(vm *VM, s Value) (Value, bool) {
		return FromBool(vm.StringText(s) == ""), true
	}))

	vm.installPrimitive(c, Method0Func("asString", func(vm *VM, s Value) (Value, bool) {
		if s.IsSymbol() {
			return vm.NewString(vm.StringText(s)), true
		}
		return s, true
	}))
	vm.installPrimitive(c, Method0Func("asSymbol", func(vm *VM, s Value) (Value, bool) {
		return vm.InternSymbol(vm.StringText(s)), true
	}))
	vm.installPrimitive(c, Method0Func("printString", func(vm *VM, s Value) (Value, bool) {
		if s.IsString() {
			return s, true
		}
		return vm.NewString(vm.StringText(s)), true
	}))

	// Symbol refinements: value equality by identity (symbols are
	// interned) and a # prefix when printed.
	sy := vm.SymbolClass
	vm.installPrimitive(sy, Method1Func("=", func(vm *VM, s, other Value) (Value, bool) {
		if other.IsSymbol() {
			return FromBool(s == other), true
		}
		if other.IsString() {
			return FromBool(vm.StringText(s) == vm.StringText(other)), true
		}
		return False, true
	}))
	vm.installPrimitive(sy, Method0Func("printString", func(vm *VM, s Value) (Value, bool) {
		return vm.NewString("#" + vm.StringText(s)), true
	}))
	vm.installPrimitive(sy, Method0Func("asSymbol", func(vm *VM, s Value) (Value, bool) {
		return s, true
	}))
}
