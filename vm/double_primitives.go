package vm

import (
	"math"
	"strconv"
)

// doubleOperand widens integer arguments so Double arithmetic accepts
// mixed operands.
func (vm *VM) doubleOperand(v Value) (float64, bool) {
	switch {
	case v.IsDouble():
		return v.Double(), true
	case isInteger(v):
		return vm.intAsDouble(v), true
	}
	return 0, false
}

func (vm *VM) registerDoublePrimitives() {
	c := vm.DoubleClass

	binop := func(name string, fn func(x, y float64) float64) {
		vm.installPrimitive(c, Method1Func(name, func(vm *VM, a, b Value) (Value, bool) {
			y, ok := vm.doubleOperand(b)
			if !ok {
				return Nil, false
			}
			return FromDouble(fn(a.Double(), y)), true
		}))
	}
	binop("+", func(x, y float64) float64 { return x + y })
	binop("-", func(x, y float64) float64 { return x - y })
	binop("*", func(x, y float64) float64 { return x * y })
	binop("/", func(x, y float64) float64 { return x / y })
	binop("%", math.Mod)

	relop := func(name string, fn func(x, y float64) bool) {
		vm.installPrimitive(c, Method1Func(name, func(vm *VM, a, b Value) (Value, bool) {
			y, ok := vm.doubleOperand(b)
			if !ok {
				if name == "=" {
					return False, true
				}
				return Nil, false
			}
			return FromBool(fn(a.Double(), y)), true
		}))
	}
	relop("=", func(x, y float64) bool { return x == y })
	relop("<", func(x, y float64) bool { return x < y })
	relop(">", func(x, y float64) bool { return x > y })
	relop("<=", func(x, y float64) bool { return x <= y })
	relop(">=", func(x, y float64) bool { return x >= y })

	vm.installPrimitive(c, Method0Func("abs", func(vm *VM, a Value) (Value, bool) {
		return FromDouble(math.Abs(a.Double())), true
	}))
	vm.installPrimitive(c, Method0Func("negated", func(vm *VM, a Value) (Value, bool) {
		return FromDouble(-a.Double()), true
	}))
	vm.installPrimitive(c, Method0Func("sqrt", func(vm *VM, a Value) (Value, bool) {
		return FromDouble(math.Sqrt(a.Double())), true
	}))
	vm.installPrimitive(c, Method0Func("floor", func(vm *VM, a Value) (Value, bool) {
		return vm.doubleToInteger(math.Floor(a.Double()))
	}))
	vm.installPrimitive(c, Method0Func("ceiling", func(vm *VM, a Value) (Value, bool) {
		return vm.doubleToInteger(math.Ceil(a.Double()))
	}))
	vm.installPrimitive(c, Method0Func("round", func(vm *VM, a Value) (Value, bool) {
		return vm.doubleToInteger(math.Round(a.Double()))
	}))
	vm.installPrimitive(c, Method0Func("asInteger", func(vm *VM, a Value) (Value, bool) {
		return vm.doubleToInteger(math.Trunc(a.Double()))
	}))
	vm.installPrimitive(c, Method0Func("asDouble", func(vm *VM, a Value) (Value, bool) {
		return a, true
	}))

	vm.installPrimitive(c, Method0Func("asString", func(vm *VM, a Value) (Value, bool) {
		return vm.NewString(doubleText(a.Double())), true
	}))
	vm.installPrimitive(c, Method0Func("printString", func(vm *VM, a Value) (Value, bool) {
		return vm.NewString(doubleText(a.Double())), true
	}))

	vm.installClassPrimitive(c, Method0Func("infinity", func(vm *VM, receiver Value) (Value, bool) {
		return FromDouble(math.Inf(1)), true
	}))
}

// doubleToInteger converts an integral float to an Integer value,
// failing on NaN and infinities.
func (vm *VM) doubleToInteger(f float64) (Value, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Nil, false
	}
	if v, ok := TryFromSmallInt(int64(f)); ok && f >= math.MinInt64 && f <= math.MaxInt64 {
		return v, true
	}
	return Nil, false
}

// doubleText renders a double the Smalltalk way: always with a
// decimal point so it reads back as a Double.
func doubleText(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	for _, ch := range s {
		if ch == '.' || ch == 'e' || ch == '+' || ch == 'N' || ch == 'I' || ch == 'n' || ch == 'i' {
			return s
		}
	}
	return s + ".0"
}
