package vm

import (
	"errors"
	"testing"
)

// installReturning installs a compiled method that pushes a small
// integer literal and returns it.
func installReturning(vm *VM, c *Class, name string, n int64) {
	code := NewBytecodeBuilder().
		EmitU8(OpPushInt8, byte(int8(n))).
		Emit(OpReturnTop).
		Build()
	m := NewMethodBuilder(name).Code(code).Build()
	vm.InstallMethod(c, m)
}

func TestInheritedSelectorLookup(t *testing.T) {
	vm := New(Options{})
	a := vm.DefineClass("LookA", vm.ObjectClass, nil)
	b := vm.DefineClass("LookB", a, nil)
	installReturning(vm, a, "answer", 41)

	inst := vm.heap.Allocate(b).Value()
	got, err := vm.Send(inst, "answer")
	if err != nil {
		t.Fatal(err)
	}
	if got.SmallInt() != 41 {
		t.Errorf("answer = %d, want 41", got.SmallInt())
	}
}

func TestOverrideWins(t *testing.T) {
	vm := New(Options{})
	a := vm.DefineClass("OvrA", vm.ObjectClass, nil)
	b := vm.DefineClass("OvrB", a, nil)
	installReturning(vm, a, "answer", 1)
	installReturning(vm, b, "answer", 2)

	inst := vm.heap.Allocate(b).Value()
	got, err := vm.Send(inst, "answer")
	if err != nil {
		t.Fatal(err)
	}
	if got.SmallInt() != 2 {
		t.Errorf("nearest definition must win, got %d", got.SmallInt())
	}
}

func TestDispatchCacheCounters(t *testing.T) {
	vm := New(Options{})
	a := vm.DefineClass("CacheA", vm.ObjectClass, nil)
	installReturning(vm, a, "answer", 7)
	inst := vm.heap.Allocate(a).Value()

	vm.Cache().Reset()
	if _, err := vm.Send(inst, "answer"); err != nil {
		t.Fatal(err)
	}
	_, missesAfterFirst := vm.Cache().Stats()
	if missesAfterFirst == 0 {
		t.Error("first send must miss the cache")
	}
	hitsBefore, _ := vm.Cache().Stats()
	if _, err := vm.Send(inst, "answer"); err != nil {
		t.Fatal(err)
	}
	hitsAfter, missesAfter := vm.Cache().Stats()
	if hitsAfter <= hitsBefore {
		t.Error("second send must hit the cache")
	}
	if missesAfter != missesAfterFirst {
		t.Error("second send must not miss")
	}
}

func TestMessageNotUnderstoodPayload(t *testing.T) {
	vm := New(Options{})
	_, err := vm.Send(FromSmallInt(5), "zork")
	if err == nil {
		t.Fatal("expected an error")
	}
	var re *RuntimeError
	if !errors.As(err, &re) {
		t.Fatalf("error type %T", err)
	}
	if re.Kind != MessageNotUnderstood {
		t.Errorf("kind = %v", re.Kind)
	}
	if re.Selector != "zork" {
		t.Errorf("selector = %q", re.Selector)
	}
	if re.ReceiverClass != "Integer" {
		t.Errorf("receiver class = %q", re.ReceiverClass)
	}
}

func TestDoesNotUnderstandOverride(t *testing.T) {
	vm := New(Options{})
	c := vm.DefineClass("Absorber", vm.ObjectClass, nil)
	// Override dnu to answer the argument count of the failed message.
	vm.InstallMethod(c, func() *CompiledMethod {
		m := NewMethodBuilder("doesNotUnderstand:arguments:").Args(2).Build()
		m.Primitive = func(vm *VM, receiver Value, args []Value) (Value, bool) {
			arr := objectFromValue(args[1])
			return FromSmallInt(int64(arr.NumSlots())), true
		}
		return m
	}())

	inst := vm.heap.Allocate(c).Value()
	got, err := vm.Send(inst, "frobnicate:with:", FromSmallInt(1), FromSmallInt(2))
	if err != nil {
		t.Fatal(err)
	}
	if got.SmallInt() != 2 {
		t.Errorf("dnu override must see 2 reified arguments, got %d", got.SmallInt())
	}
}

func TestInstallAfterMissedSendIsVisible(t *testing.T) {
	vm := New(Options{})
	c := vm.DefineClass("LateBound", vm.ObjectClass, nil)
	inst := vm.heap.Allocate(c).Value()

	// Prime the cache with a miss for the selector.
	if _, err := vm.Send(inst, "late"); err == nil {
		t.Fatal("send before install must fail")
	}

	installReturning(vm, c, "late", 9)
	got, err := vm.Send(inst, "late")
	if err != nil {
		t.Fatalf("cached miss must not shadow the installed method: %v", err)
	}
	if got.SmallInt() != 9 {
		t.Errorf("late = %d, want 9", got.SmallInt())
	}
}

func TestClassSideLookupStartsAtMetaclass(t *testing.T) {
	vm := New(Options{})
	c := vm.DefineClass("Factory", vm.ObjectClass, nil)
	m := NewMethodBuilder("answer").ClassSide().Code(
		NewBytecodeBuilder().EmitU8(OpPushInt8, 9).Emit(OpReturnTop).Build(),
	).Build()
	vm.InstallMethod(c, m)

	got, err := vm.Send(c.Value(), "answer")
	if err != nil {
		t.Fatal(err)
	}
	if got.SmallInt() != 9 {
		t.Errorf("class-side send = %d, want 9", got.SmallInt())
	}

	// Instance side must not see it.
	inst := vm.heap.Allocate(c).Value()
	if _, err := vm.Send(inst, "answer"); err == nil {
		t.Error("instance must not respond to a class-side method")
	}
}
