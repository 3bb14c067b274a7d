package vm

// VTable holds a class's methods indexed by selector ID. Lookup walks
// the parent chain on a miss, so a vtable only stores the methods its
// class defines or overrides.
type VTable struct {
	methods []Method
	parent  *VTable
}

// NewVTable creates a vtable with the given parent (nil at the root).
func NewVTable(parent *VTable) *VTable {
	return &VTable{parent: parent}
}

// Parent returns the parent vtable.
func (vt *VTable) Parent() *VTable {
	return vt.parent
}

// Install stores a method under a selector ID, growing the dense
// method array as needed.
func (vt *VTable) Install(selector uint32, m Method) {
	if int(selector) >= len(vt.methods) {
		grown := make([]Method, selector+1)
		copy(grown, vt.methods)
		vt.methods = grown
	}
	vt.methods[selector] = m
}

// LocalLookup returns the method this vtable defines for selector,
// without consulting parents.
func (vt *VTable) LocalLookup(selector uint32) Method {
	if int(selector) >= len(vt.methods) {
		return nil
	}
	return vt.methods[selector]
}

// Lookup resolves selector through the parent chain, nearest
// definition first. Returns nil if no class in the chain responds.
func (vt *VTable) Lookup(selector uint32) Method {
	for t := vt; t != nil; t = t.parent {
		if m := t.LocalLookup(selector); m != nil {
			return m
		}
	}
	return nil
}

// Selectors returns the selector IDs this vtable defines locally.
func (vt *VTable) Selectors() []uint32 {
	var out []uint32
	for id, m := range vt.methods {
		if m != nil {
			out = append(out, uint32(id))
		}
	}
	return out
}
