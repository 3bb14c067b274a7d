package vm

import "unsafe"

// numInlineSlots is the number of instance variable slots stored
// directly in the Object struct. Objects with more slots spill into
// the overflow slice.
const numInlineSlots = 4

// Object is a heap-allocated SOM object: a class pointer plus
// instance variable slots. The first numInlineSlots slots live inline
// to keep small objects in one allocation.
type Object struct {
	class    *Class
	inline   [numInlineSlots]Value
	overflow []Value
	count    int
}

// NewObject creates an object of the given class with n slots, all nil.
func NewObject(class *Class, n int) *Object {
	o := &Object{class: class, count: n}
	for i := 0; i < numInlineSlots && i < n; i++ {
		o.inline[i] = Nil
	}
	if n > numInlineSlots {
		o.overflow = make([]Value, n-numInlineSlots)
		for i := range o.overflow {
			o.overflow[i] = Nil
		}
	}
	return o
}

// Class returns the object's class.
func (o *Object) Class() *Class {
	return o.class
}

// NumSlots returns the object's slot count.
func (o *Object) NumSlots() int {
	return o.count
}

// Slot returns the value of slot i.
// Panics if i is out of range.
func (o *Object) Slot(i int) Value {
	if i < 0 || i >= o.count {
		panic("Object.Slot: index out of range")
	}
	if i < numInlineSlots {
		return o.inline[i]
	}
	return o.overflow[i-numInlineSlots]
}

// SetSlot stores v in slot i.
// Panics if i is out of range.
func (o *Object) SetSlot(i int, v Value) {
	if i < 0 || i >= o.count {
		panic("Object.SetSlot: index out of range")
	}
	if i < numInlineSlots {
		o.inline[i] = v
		return
	}
	o.overflow[i-numInlineSlots] = v
}

// Value returns the NaN-boxed value for this object.
func (o *Object) Value() Value {
	return FromObjectPtr(unsafe.Pointer(o))
}

// objectFromValue recovers the *Object behind an object value.
func objectFromValue(v Value) *Object {
	return (*Object)(v.ObjectPtr())
}
