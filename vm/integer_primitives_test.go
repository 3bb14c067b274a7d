package vm

import (
	"errors"
	"math/big"
	"testing"
)

func mustSend(t *testing.T, vm *VM, receiver Value, selector string, args ...Value) Value {
	t.Helper()
	v, err := vm.Send(receiver, selector, args...)
	if err != nil {
		t.Fatalf("%s failed: %v", selector, err)
	}
	return v
}

func TestIntegerArithmetic(t *testing.T) {
	vm := New(Options{})
	if got := mustSend(t, vm, FromSmallInt(3), "+", FromSmallInt(4)); got.SmallInt() != 7 {
		t.Errorf("3 + 4 = %d", got.SmallInt())
	}
	if got := mustSend(t, vm, FromSmallInt(3), "-", FromSmallInt(4)); got.SmallInt() != -1 {
		t.Errorf("3 - 4 = %d", got.SmallInt())
	}
	if got := mustSend(t, vm, FromSmallInt(6), "*", FromSmallInt(7)); got.SmallInt() != 42 {
		t.Errorf("6 * 7 = %d", got.SmallInt())
	}
	if got := mustSend(t, vm, FromSmallInt(7), "/", FromSmallInt(2)); got.SmallInt() != 3 {
		t.Errorf("7 / 2 = %d", got.SmallInt())
	}
	if got := mustSend(t, vm, FromSmallInt(-7), "//", FromSmallInt(2)); got.SmallInt() != -4 {
		t.Errorf("-7 // 2 = %d, want -4 (floored)", got.SmallInt())
	}
	if got := mustSend(t, vm, FromSmallInt(7), "\\\\", FromSmallInt(3)); got.SmallInt() != 1 {
		t.Errorf("7 \\\\ 3 = %d", got.SmallInt())
	}
}

func TestIntegerOverflowPromotion(t *testing.T) {
	vm := New(Options{})
	max := FromSmallInt(MaxSmallInt)

	sum := mustSend(t, vm, max, "+", FromSmallInt(1))
	if !sum.IsBigInt() {
		t.Fatal("MaxSmallInt + 1 must promote to a large integer")
	}
	want := new(big.Int).Add(big.NewInt(MaxSmallInt), big.NewInt(1))
	if vm.heap.BigIntAt(sum).Cmp(want) != 0 {
		t.Errorf("promoted value = %s, want %s", vm.heap.BigIntAt(sum), want)
	}
	// Same numeric tower: the class is still Integer.
	if vm.ClassOf(sum) != vm.IntegerClass {
		t.Error("large integers must answer Integer as their class")
	}

	// Arithmetic continues transparently and demotes when it fits.
	back := mustSend(t, vm, sum, "-", FromSmallInt(1))
	if !back.IsSmallInt() || back.SmallInt() != MaxSmallInt {
		t.Error("result fitting the small range must demote")
	}

	prod := mustSend(t, vm, max, "*", max)
	if !prod.IsBigInt() {
		t.Fatal("squaring MaxSmallInt must promote")
	}
	wantProd := new(big.Int).Mul(big.NewInt(MaxSmallInt), big.NewInt(MaxSmallInt))
	if vm.heap.BigIntAt(prod).Cmp(wantProd) != 0 {
		t.Errorf("product = %s, want %s", vm.heap.BigIntAt(prod), wantProd)
	}
}

func TestDivisionByZero(t *testing.T) {
	vm := New(Options{})
	for _, sel := range []string{"/", "//", "\\\\", "rem:"} {
		_, err := vm.Send(FromSmallInt(1), sel, FromSmallInt(0))
		if err == nil {
			t.Fatalf("%s by zero must fail", sel)
		}
		var re *RuntimeError
		if !errors.As(err, &re) || re.Kind != PrimitiveFailure {
			t.Errorf("%s by zero: got %v, want PrimitiveFailure", sel, err)
		}
	}
}

func TestIntegerComparisons(t *testing.T) {
	vm := New(Options{})
	if mustSend(t, vm, FromSmallInt(3), "<", FromSmallInt(4)) != True {
		t.Error("3 < 4")
	}
	if mustSend(t, vm, FromSmallInt(4), "<=", FromSmallInt(4)) != True {
		t.Error("4 <= 4")
	}
	if mustSend(t, vm, FromSmallInt(3), "=", FromSmallInt(3)) != True {
		t.Error("3 = 3")
	}
	if mustSend(t, vm, FromSmallInt(3), "=", vm.NewString("3")) != False {
		t.Error("3 = '3' must be false")
	}
	big := mustSend(t, vm, FromSmallInt(MaxSmallInt), "+", FromSmallInt(1))
	if mustSend(t, vm, FromSmallInt(0), "<", big) != True {
		t.Error("small/large comparison")
	}
}

func TestIntegerMixedModeWithDouble(t *testing.T) {
	vm := New(Options{})
	got := mustSend(t, vm, FromSmallInt(3), "+", FromDouble(0.5))
	if !got.IsDouble() || got.Double() != 3.5 {
		t.Errorf("3 + 0.5 = %v", got)
	}
	if mustSend(t, vm, FromSmallInt(3), "<", FromDouble(3.5)) != True {
		t.Error("3 < 3.5")
	}
}

func TestIntegerConversions(t *testing.T) {
	vm := New(Options{})
	s := mustSend(t, vm, FromSmallInt(-42), "asString")
	if vm.StringText(s) != "-42" {
		t.Errorf("asString = %q", vm.StringText(s))
	}
	d := mustSend(t, vm, FromSmallInt(2), "asDouble")
	if !d.IsDouble() || d.Double() != 2.0 {
		t.Error("asDouble")
	}
	ch := mustSend(t, vm, FromSmallInt(65), "asCharacter")
	if !ch.IsChar() || ch.Char() != 'A' {
		t.Error("asCharacter")
	}

	parsed := mustSend(t, vm, vm.IntegerClass.Value(), "fromString:", vm.NewString("123456789012345678901234567890"))
	if !parsed.IsBigInt() {
		t.Error("huge literal must parse as a large integer")
	}
}

func TestIntegerBitOps(t *testing.T) {
	vm := New(Options{})
	if got := mustSend(t, vm, FromSmallInt(0b1100), "&", FromSmallInt(0b1010)); got.SmallInt() != 0b1000 {
		t.Error("bitAnd")
	}
	if got := mustSend(t, vm, FromSmallInt(0b1100), "|", FromSmallInt(0b1010)); got.SmallInt() != 0b1110 {
		t.Error("bitOr")
	}
	shifted := mustSend(t, vm, FromSmallInt(1), "<<", FromSmallInt(60))
	if !shifted.IsBigInt() {
		t.Error("1 << 60 must promote")
	}
	back := mustSend(t, vm, shifted, ">>>", FromSmallInt(60))
	if !back.IsSmallInt() || back.SmallInt() != 1 {
		t.Error("shift round-trip")
	}
}
