package vm

import "sync"

// Class describes a SOM class: its name, superclass, instance
// variable layout, and method table. Every class has a metaclass
// (Meta) holding its class-side methods; the metaclass of "X" is
// named "X class" and is itself an instance of Metaclass.
type Class struct {
	Name       string
	Superclass *Class
	InstVars   []string // own instance variables, not inherited
	NumSlots   int      // total slots including inherited
	VTable     *VTable
	Meta       *Class // nil only on metaclasses themselves
	IsMeta     bool

	index uint32 // position in the owning ClassTable
}

// Index returns the class's stable class-table index.
func (c *Class) Index() uint32 {
	return c.index
}

// Value returns the NaN-boxed value for this class.
func (c *Class) Value() Value {
	return FromClassIndex(c.index)
}

// SlotIndex returns the slot index for an instance variable name,
// searching inherited variables first (ancestor slots come before own
// slots). Returns -1 if the name is not an instance variable.
func (c *Class) SlotIndex(name string) int {
	base := 0
	if c.Superclass != nil {
		if i := c.Superclass.SlotIndex(name); i >= 0 {
			return i
		}
		base = c.Superclass.NumSlots
	}
	for i, iv := range c.InstVars {
		if iv == name {
			return base + i
		}
	}
	return -1
}

// InheritsFrom reports whether other is c or an ancestor of c.
func (c *Class) InheritsFrom(other *Class) bool {
	for k := c; k != nil; k = k.Superclass {
		if k == other {
			return true
		}
	}
	return false
}

// ClassTable registers classes and assigns them stable indices so
// class values survive in the NaN-boxed encoding.
type ClassTable struct {
	mu      sync.RWMutex
	byName  map[string]*Class
	byIndex []*Class
}

// NewClassTable creates an empty class table.
func NewClassTable() *ClassTable {
	return &ClassTable{
		byName: make(map[string]*Class),
	}
}

// Register adds a class and assigns its index. Re-registering a name
// replaces the entry in the name map but never reuses an index.
func (t *ClassTable) Register(c *Class) {
	t.mu.Lock()
	defer t.mu.Unlock()
	c.index = uint32(len(t.byIndex))
	t.byIndex = append(t.byIndex, c)
	t.byName[c.Name] = c
}

// ByName returns the class registered under name.
func (t *ClassTable) ByName(name string) (*Class, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	c, ok := t.byName[name]
	return c, ok
}

// ByIndex returns the class at a stable index.
func (t *ClassTable) ByIndex(i uint32) *Class {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if int(i) >= len(t.byIndex) {
		return nil
	}
	return t.byIndex[i]
}

// Count returns the number of registered classes (metaclasses included).
func (t *ClassTable) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byIndex)
}

// All returns a snapshot of every registered class in index order.
func (t *ClassTable) All() []*Class {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*Class, len(t.byIndex))
	copy(out, t.byIndex)
	return out
}
