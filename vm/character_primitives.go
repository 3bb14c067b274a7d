package vm

import "unicode"

func (vm *VM) registerCharacterPrimitives() {
	c := vm.CharacterClass

	vm.installPrimitive(c, Method0Func("asInteger", func(vm *VM, ch Value) (Value, bool) {
		return FromSmallInt(int64(ch.Char())), true
	}))
	vm.installPrimitive(c, Method0Func("asString", func(vm *VM, ch Value) (Value, bool) {
		return vm.NewString(string(ch.Char())), true
	}))
	vm.installPrimitive(c, Method0Func("printString", func(vm *VM, ch Value) (Value, bool) {
		return vm.NewString(string(ch.Char())), true
	}))

	vm.installPrimitive(c, Method1Func("=", func(vm *VM, ch, other Value) (Value, bool) {
		return FromBool(ch == other), true
	}))
	vm.installPrimitive(c, Method1Func("<", func(vm *VM, ch, other Value) (Value, bool) {
		if !other.IsChar() {
			return Nil, false
		}
		return FromBool(ch.Char() < other.Char()), true
	}))

	vm.installPrimitive(c, Method0Func("isDigit", func(vm *VM, ch Value) (Value, bool) {
		return FromBool(unicode.IsDigit(ch.Char())), true
	}))
	vm.installPrimitive(c, Method0Func("isLetter", func(vm *VM, ch Value) (Value, bool) {
		return FromBool(unicode.IsLetter(ch.Char())), true
	}))
	vm.installPrimitive(c, Method0Func("isWhitespace", func(vm *VM, ch Value) (Value, bool) {
		return FromBool(unicode.IsSpace(ch.Char())), true
	}))
	vm.installPrimitive(c, Method0Func("asUppercase", func(vm *VM, ch Value) (Value, bool) {
		return FromChar(unicode.ToUpper(ch.Char())), true
	}))
	vm.installPrimitive(c, Method0Func("asLowercase", func(vm *VM, ch Value) (Value, bool) {
		return FromChar(unicode.ToLower(ch.Char())), true
	}))

	vm.installClassPrimitive(c, Method1Func("value:", func(vm *VM, receiver, code Value) (Value, bool) {
		if !code.IsSmallInt() || code.SmallInt() < 0 || code.SmallInt() > 0x10FFFF {
			return Nil, false
		}
		return FromChar(rune(code.SmallInt())), true
	}))
}
