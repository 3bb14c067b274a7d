package vm

import (
	"math"
	"math/big"
	"strconv"
)

// isInteger reports whether v is a small or large integer.
func isInteger(v Value) bool {
	return v.IsSmallInt() || v.IsBigInt()
}

// bigOf widens an integer value to *big.Int.
func (vm *VM) bigOf(v Value) *big.Int {
	if v.IsSmallInt() {
		return big.NewInt(v.SmallInt())
	}
	return vm.heap.BigIntAt(v)
}

// normBig demotes a big integer back to a SmallInteger when it fits.
func (vm *VM) normBig(n *big.Int) Value {
	if n.IsInt64() {
		if v, ok := TryFromSmallInt(n.Int64()); ok {
			return v
		}
	}
	return vm.heap.NewBigInt(n)
}

// intAsDouble converts an integer value to float64 for mixed-mode
// arithmetic.
func (vm *VM) intAsDouble(v Value) float64 {
	if v.IsSmallInt() {
		return float64(v.SmallInt())
	}
	f, _ := new(big.Float).SetInt(vm.heap.BigIntAt(v)).Float64()
	return f
}

// intText renders an integer value in decimal.
func (vm *VM) intText(v Value) string {
	if v.IsSmallInt() {
		return strconv.FormatInt(v.SmallInt(), 10)
	}
	return vm.heap.BigIntAt(v).String()
}

func (vm *VM) raiseZeroDivide(selector string, receiver Value) {
	panic(&RuntimeError{
		Kind:          PrimitiveFailure,
		Selector:      selector,
		ReceiverClass: vm.ClassOf(receiver).Name,
		Message:       "division by zero",
	})
}

// registerIntegerPrimitives installs Integer arithmetic, comparison,
// bit operations, and conversions. Small integer results that leave
// the 48-bit range promote to arbitrary precision and demote back
// when they fit.
func (vm *VM) registerIntegerPrimitives() {
	c := vm.IntegerClass

	vm.installPrimitive(c, Method1Func("+", func(vm *VM, a, b Value) (Value, bool) {
		if b.IsDouble() {
			return FromDouble(vm.intAsDouble(a) + b.Double()), true
		}
		if !isInteger(b) {
			return Nil, false
		}
		if a.IsSmallInt() && b.IsSmallInt() {
			// 48-bit operands cannot overflow an int64 sum.
			if v, ok := TryFromSmallInt(a.SmallInt() + b.SmallInt()); ok {
				return v, true
			}
		}
		return vm.normBig(new(big.Int).Add(vm.bigOf(a), vm.bigOf(b))), true
	}))

	vm.installPrimitive(c, Method1Func("-", func(vm *VM, a, b Value) (Value, bool) {
		if b.IsDouble() {
			return FromDouble(vm.intAsDouble(a) - b.Double()), true
		}
		if !isInteger(b) {
			return Nil, false
		}
		if a.IsSmallInt() && b.IsSmallInt() {
			if v, ok := TryFromSmallInt(a.SmallInt() - b.SmallInt()); ok {
				return v, true
			}
		}
		return vm.normBig(new(big.Int).Sub(vm.bigOf(a), vm.bigOf(b))), true
	}))

	vm.installPrimitive(c, Method1Func("*", func(vm *VM, a, b Value) (Value, bool) {
		if b.IsDouble() {
			return FromDouble(vm.intAsDouble(a) * b.Double()), true
		}
		if !isInteger(b) {
			return Nil, false
		}
		if a.IsSmallInt() && b.IsSmallInt() {
			x, y := a.SmallInt(), b.SmallInt()
			p := x * y
			if y == 0 || (p/y == x && p != math.MinInt64) {
				if v, ok := TryFromSmallInt(p); ok {
					return v, true
				}
			}
		}
		return vm.normBig(new(big.Int).Mul(vm.bigOf(a), vm.bigOf(b))), true
	}))

	vm.installPrimitive(c, Method1Func("/", func(vm *VM, a, b Value) (Value, bool) {
		if b.IsDouble() {
			return FromDouble(vm.intAsDouble(a) / b.Double()), true
		}
		if !isInteger(b) {
			return Nil, false
		}
		bb := vm.bigOf(b)
		if bb.Sign() == 0 {
			vm.raiseZeroDivide("/", a)
		}
		return vm.normBig(new(big.Int).Quo(vm.bigOf(a), bb)), true
	}))

	// Floored division and modulo, the Smalltalk pair: // truncates
	// toward negative infinity and \\ takes its sign from the divisor.
	vm.installPrimitive(c, Method1Func("//", func(vm *VM, a, b Value) (Value, bool) {
		if !isInteger(b) {
			return Nil, false
		}
		bb := vm.bigOf(b)
		if bb.Sign() == 0 {
			vm.raiseZeroDivide("//", a)
		}
		q := new(big.Int)
		q.Div(vm.bigOf(a), bb)
		return vm.normBig(q), true
	}))

	vm.installPrimitive(c, Method1Func("\\\\", func(vm *VM, a, b Value) (Value, bool) {
		if !isInteger(b) {
			return Nil, false
		}
		bb := vm.bigOf(b)
		if bb.Sign() == 0 {
			vm.raiseZeroDivide("\\\\", a)
		}
		m := new(big.Int)
		m.Mod(vm.bigOf(a), bb)
		if m.Sign() != 0 && bb.Sign() < 0 {
			m.Add(m, bb)
		}
		return vm.normBig(m), true
	}))

	vm.installPrimitive(c, Method1Func("rem:", func(vm *VM, a, b Value) (Value, bool) {
		if !isInteger(b) {
			return Nil, false
		}
		bb := vm.bigOf(b)
		if bb.Sign() == 0 {
			vm.raiseZeroDivide("rem:", a)
		}
		return vm.normBig(new(big.Int).Rem(vm.bigOf(a), bb)), true
	}))

	cmp := func(name string, test func(int) bool) {
		vm.installPrimitive(c, Method1Func(name, func(vm *VM, a, b Value) (Value, bool) {
			if b.IsDouble() {
				x := vm.intAsDouble(a)
				y := b.Double()
				switch name {
				case "=":
					return FromBool(x == y), true
				case "<":
					return FromBool(x < y), true
				case ">":
					return FromBool(x > y), true
				case "<=":
					return FromBool(x <= y), true
				case ">=":
					return FromBool(x >= y), true
				}
			}
			if !isInteger(b) {
				if name == "=" {
					return False, true
				}
				return Nil, false
			}
			return FromBool(test(vm.bigOf(a).Cmp(vm.bigOf(b)))), true
		}))
	}
	cmp("=", func(c int) bool { return c == 0 })
	cmp("<", func(c int) bool { return c < 0 })
	cmp(">", func(c int) bool { return c > 0 })
	cmp("<=", func(c int) bool { return c <= 0 })
	cmp(">=", func(c int) bool { return c >= 0 })

	vm.installPrimitive(c, Method0Func("abs", func(vm *VM, a Value) (Value, bool) {
		return vm.normBig(new(big.Int).Abs(vm.bigOf(a))), true
	}))
	vm.installPrimitive(c, Method0Func("negated", func(vm *VM, a Value) (Value, bool) {
		return vm.normBig(new(big.Int).Neg(vm.bigOf(a))), true
	}))
	vm.installPrimitive(c, Method0Func("sqrt", func(vm *VM, a Value) (Value, bool) {
		return FromDouble(math.Sqrt(vm.intAsDouble(a))), true
	}))

	vm.installPrimitive(c, Method1Func("max:", func(vm *VM, a, b Value) (Value, bool) {
		if !isInteger(b) {
			return Nil, false
		}
		if vm.bigOf(a).Cmp(vm.bigOf(b)) >= 0 {
			return a, true
		}
		return b, true
	}))
	vm.installPrimitive(c, Method1Func("min:", func(vm *VM, a, b Value) (Value, bool) {
		if !isInteger(b) {
			return Nil, false
		}
		if vm.bigOf(a).Cmp(vm.bigOf(b)) <= 0 {
			return a, true
		}
		return b, true
	}))

	vm.installPrimitive(c, Method1Func("&", func(vm *VM, a, b Value) (Value, bool) {
		if !isInteger(b) {
			return Nil, false
		}
		return vm.normBig(new(big.Int).And(vm.bigOf(a), vm.bigOf(b))), true
	}))
	vm.installPrimitive(c, Method1Func("|", func(vm *VM, a, b Value) (Value, bool) {
		if !isInteger(b) {
			return Nil, false
		}
		return vm.normBig(new(big.Int).Or(vm.bigOf(a), vm.bigOf(b))), true
	}))
	vm.installPrimitive(c, Method1Func("bitXor:", func(vm *VM, a, b Value) (Value, bool) {
		if !isInteger(b) {
			return Nil, false
		}
		return vm.normBig(new(big.Int).Xor(vm.bigOf(a), vm.bigOf(b))), true
	}))
	vm.installPrimitive(c, Method1Func("<<", func(vm *VM, a, b Value) (Value, bool) {
		if !b.IsSmallInt() || b.SmallInt() < 0 || b.SmallInt() > 1<<20 {
			return Nil, false
		}
		return vm.normBig(new(big.Int).Lsh(vm.bigOf(a), uint(b.SmallInt()))), true
	}))
	vm.installPrimitive(c, Method1Func(">>>", func(vm *VM, a, b Value) (Value, bool) {
		if !b.IsSmallInt() || b.SmallInt() < 0 {
			return Nil, false
		}
		return vm.normBig(new(big.Int).Rsh(vm.bigOf(a), uint(b.SmallInt()))), true
	}))

	vm.installPrimitive(c, Method0Func("asString", func(vm *VM, a Value) (Value, bool) {
		return vm.NewString(vm.intText(a)), true
	}))
	vm.installPrimitive(c, Method0Func("printString", func(vm *VM, a Value) (Value, bool) {
		return vm.NewString(vm.intText(a)), true
	}))
	vm.installPrimitive(c, Method0Func("asDouble", func(vm *VM, a Value) (Value, bool) {
		return FromDouble(vm.intAsDouble(a)), true
	}))
	vm.installPrimitive(c, Method0Func("asInteger", func(vm *VM, a Value) (Value, bool) {
		return a, true
	}))
	vm.installPrimitive(c, Method0Func("asCharacter", func(vm *VM, a Value) (Value, bool) {
		if !a.IsSmallInt() || a.SmallInt() < 0 || a.SmallInt() > 0x10FFFF {
			return Nil, false
		}
		return FromChar(rune(a.SmallInt())), true
	}))

	// fromString: on the class side
	vm.installClassPrimitive(c, Method1Func("fromString:", func(vm *VM, receiver, s Value) (Value, bool) {
		if !s.IsString() {
			return Nil, false
		}
		n, ok := new(big.Int).SetString(vm.heap.StringAt(s), 10)
		if !ok {
			return Nil, false
		}
		return vm.normBig(n), true
	}))
}
