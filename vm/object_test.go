package vm

import "testing"

func TestObjectSlotsInline(t *testing.T) {
	o := NewObject(nil, 3)
	if o.NumSlots() != 3 {
		t.Fatalf("NumSlots = %d, want 3", o.NumSlots())
	}
	for i := 0; i < 3; i++ {
		if o.Slot(i) != Nil {
			t.Errorf("slot %d not nil-initialized", i)
		}
	}
	o.SetSlot(1, FromSmallInt(42))
	if o.Slot(1).SmallInt() != 42 {
		t.Error("slot store/load failed")
	}
	if o.Slot(0) != Nil || o.Slot(2) != Nil {
		t.Error("neighboring slots disturbed")
	}
}

func TestObjectSlotsOverflow(t *testing.T) {
	o := NewObject(nil, numInlineSlots+3)
	for i := 0; i < o.NumSlots(); i++ {
		if o.Slot(i) != Nil {
			t.Fatalf("slot %d not nil-initialized", i)
		}
		o.SetSlot(i, FromSmallInt(int64(i)))
	}
	for i := 0; i < o.NumSlots(); i++ {
		if o.Slot(i).SmallInt() != int64(i) {
			t.Errorf("slot %d = %d, want %d", i, o.Slot(i).SmallInt(), i)
		}
	}
}

func TestObjectSlotBounds(t *testing.T) {
	o := NewObject(nil, 2)
	for _, i := range []int{-1, 2, 100} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("Slot(%d) should panic", i)
				}
			}()
			o.Slot(i)
		}()
	}
}
