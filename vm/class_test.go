package vm

import "testing"

func TestBootstrapHierarchy(t *testing.T) {
	vm := New(Options{})

	if vm.ObjectClass.Superclass != nil {
		t.Error("Object must have no superclass")
	}
	if vm.ClassClass.Superclass != vm.ObjectClass {
		t.Error("Class must inherit from Object")
	}
	if vm.MetaclassClass.Superclass != vm.ClassClass {
		t.Error("Metaclass must inherit from Class")
	}
	if vm.SymbolClass.Superclass != vm.StringClass {
		t.Error("Symbol must inherit from String")
	}
}

func TestMetaclassWiring(t *testing.T) {
	vm := New(Options{})

	meta := vm.IntegerClass.Meta
	if meta == nil || !meta.IsMeta {
		t.Fatal("Integer has no metaclass")
	}
	if meta.Name != "Integer class" {
		t.Errorf("metaclass name = %q", meta.Name)
	}
	// Metaclass hierarchy mirrors the instance hierarchy and closes
	// the loop at Class.
	if meta.Superclass != vm.ObjectClass.Meta {
		t.Error("Integer class must inherit from Object class")
	}
	if vm.ObjectClass.Meta.Superclass != vm.ClassClass {
		t.Error("Object class must inherit from Class")
	}
	// The class of any metaclass is Metaclass.
	if vm.ClassOf(meta.Value()) != vm.MetaclassClass {
		t.Error("class of a metaclass must be Metaclass")
	}
	// The class of a class is its metaclass.
	if vm.ClassOf(vm.IntegerClass.Value()) != meta {
		t.Error("class of Integer must be Integer class")
	}
}

func TestSlotIndexAncestorFirst(t *testing.T) {
	vm := New(Options{})
	a := vm.DefineClass("PointBase", vm.ObjectClass, []string{"x", "y"})
	b := vm.DefineClass("Point3", a, []string{"z"})

	if b.NumSlots != 3 {
		t.Fatalf("NumSlots = %d, want 3", b.NumSlots)
	}
	if b.SlotIndex("x") != 0 || b.SlotIndex("y") != 1 || b.SlotIndex("z") != 2 {
		t.Error("ancestor slots must precede own slots")
	}
	if b.SlotIndex("w") != -1 {
		t.Error("unknown name must return -1")
	}
}

func TestInheritsFrom(t *testing.T) {
	vm := New(Options{})
	if !vm.TrueClass.InheritsFrom(vm.BooleanClass) {
		t.Error("True inherits from Boolean")
	}
	if !vm.TrueClass.InheritsFrom(vm.ObjectClass) {
		t.Error("True inherits from Object")
	}
	if vm.BooleanClass.InheritsFrom(vm.TrueClass) {
		t.Error("Boolean does not inherit from True")
	}
}

func TestClassTableStableIndices(t *testing.T) {
	vm := New(Options{})
	c := vm.IntegerClass
	if vm.Classes().ByIndex(c.Index()) != c {
		t.Error("index lookup must return the registered class")
	}
	v := c.Value()
	if !v.IsClass() || vm.Classes().ByIndex(v.ClassIndex()) != c {
		t.Error("class value must resolve through the table")
	}
}

func TestClassOfTotality(t *testing.T) {
	vm := New(Options{})
	cases := []struct {
		v    Value
		want *Class
	}{
		{FromSmallInt(1), vm.IntegerClass},
		{FromDouble(1.5), vm.DoubleClass},
		{FromChar('x'), vm.CharacterClass},
		{vm.InternSymbol("abc"), vm.SymbolClass},
		{vm.NewString("abc"), vm.StringClass},
		{Nil, vm.NilClass},
		{True, vm.TrueClass},
		{False, vm.FalseClass},
		{vm.heap.Allocate(vm.ObjectClass).Value(), vm.ObjectClass},
	}
	for i, c := range cases {
		if got := vm.ClassOf(c.v); got != c.want {
			t.Errorf("case %d: ClassOf = %s, want %s", i, got.Name, c.want.Name)
		}
	}
}
