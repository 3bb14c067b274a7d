package vm

import "math/big"

// Heap owns every heap-resident value. NaN-boxing hides pointers and
// IDs from the Go collector, so objects are pinned in keepAlive and
// strings, large integers, and closures live in side tables; a
// mark-sweep pass over the VM's roots reclaims all four together.
type Heap struct {
	keepAlive map[*Object]struct{}

	strings     map[uint32]string
	nextString  uint32
	freeStrings []uint32

	bigints  map[uint32]*big.Int
	nextBig  uint32
	freeBigs []uint32

	blocks     map[uint32]*BlockValue
	nextBlock  uint32
	freeBlocks []uint32

	// allocations since the last collection, compared against the
	// configured threshold by the VM
	allocCount int
}

// NewHeap creates an empty heap.
func NewHeap() *Heap {
	return &Heap{
		keepAlive: make(map[*Object]struct{}),
		strings:   make(map[uint32]string),
		bigints:   make(map[uint32]*big.Int),
		blocks:    make(map[uint32]*BlockValue),
	}
}

// Allocate creates an instance of class with its declared slot count.
func (h *Heap) Allocate(class *Class) *Object {
	return h.AllocateSlots(class, class.NumSlots)
}

// AllocateSlots creates an instance of class with n slots, used for
// indexable classes like Array.
func (h *Heap) AllocateSlots(class *Class, n int) *Object {
	if n < 0 {
		internalf("allocation with negative slot count %d for %s", n, class.Name)
	}
	o := NewObject(class, n)
	h.keepAlive[o] = struct{}{}
	h.allocCount++
	return o
}

// NewString creates a heap string value. Swept IDs are reused, so the
// 24-bit ID space bounds live strings, not strings ever allocated.
func (h *Heap) NewString(s string) Value {
	var id uint32
	if n := len(h.freeStrings); n > 0 {
		id = h.freeStrings[n-1]
		h.freeStrings = h.freeStrings[:n-1]
	} else {
		id = h.nextString
		if id >= stringMarker {
			internalf("string table exhausted")
		}
		h.nextString++
	}
	h.strings[id] = s
	h.allocCount++
	return FromStringID(id)
}

// StringAt returns the text behind a string value.
func (h *Heap) StringAt(v Value) string {
	s, ok := h.strings[v.StringID()]
	if !ok {
		internalf("dangling string id %d", v.StringID())
	}
	return s
}

// NewBigInt creates a large integer value. The *big.Int is owned by
// the heap afterwards. Swept IDs are reused, as for strings.
func (h *Heap) NewBigInt(n *big.Int) Value {
	var id uint32
	if l := len(h.freeBigs); l > 0 {
		id = h.freeBigs[l-1]
		h.freeBigs = h.freeBigs[:l-1]
	} else {
		id = h.nextBig
		if id >= stringMarker {
			internalf("large integer table exhausted")
		}
		h.nextBig++
	}
	h.bigints[id] = n
	h.allocCount++
	return FromBigIntID(id)
}

// BigIntAt returns the integer behind a large integer value.
func (h *Heap) BigIntAt(v Value) *big.Int {
	n, ok := h.bigints[v.BigIntID()]
	if !ok {
		internalf("dangling large integer id %d", v.BigIntID())
	}
	return n
}

// NewBlock creates a closure value. Swept IDs are reused.
func (h *Heap) NewBlock(b *BlockValue) Value {
	var id uint32
	if n := len(h.freeBlocks); n > 0 {
		id = h.freeBlocks[n-1]
		h.freeBlocks = h.freeBlocks[:n-1]
	} else {
		id = h.nextBlock
		h.nextBlock++
	}
	h.blocks[id] = b
	h.allocCount++
	return FromBlockID(id)
}

// BlockAt returns the closure behind a block value.
func (h *Heap) BlockAt(v Value) *BlockValue {
	b, ok := h.blocks[v.BlockID()]
	if !ok {
		internalf("dangling block id %d", v.BlockID())
	}
	return b
}

// LiveObjects returns the number of pinned objects.
func (h *Heap) LiveObjects() int {
	return len(h.keepAlive)
}

// gcState tracks reachability during a collection.
type gcState struct {
	heap    *Heap
	objects map[*Object]struct{}
	strings map[uint32]struct{}
	bigints map[uint32]struct{}
	blocks  map[uint32]struct{}
	frames  map[*Frame]struct{}
	methods map[*CompiledMethod]struct{}
}

// Collect runs a full mark-sweep pass. Roots are the given values,
// the frame chains, and the literal tables of every method installed
// on the given classes: a string or large-integer literal must
// survive even while no activation of its method is live. Everything
// transitively reachable survives, cycles included. Swept IDs go back
// on the free lists.
func (h *Heap) Collect(roots []Value, frames []*Frame, classes []*Class) int {
	gc := &gcState{
		heap:    h,
		objects: make(map[*Object]struct{}),
		strings: make(map[uint32]struct{}),
		bigints: make(map[uint32]struct{}),
		blocks:  make(map[uint32]struct{}),
		frames:  make(map[*Frame]struct{}),
		methods: make(map[*CompiledMethod]struct{}),
	}
	for _, v := range roots {
		gc.markValue(v)
	}
	for _, f := range frames {
		gc.markFrame(f)
	}
	for _, c := range classes {
		for _, m := range c.VTable.methods {
			gc.markMethod(m)
		}
	}

	freed := 0
	for o := range h.keepAlive {
		if _, live := gc.objects[o]; !live {
			delete(h.keepAlive, o)
			freed++
		}
	}
	for id := range h.strings {
		if _, live := gc.strings[id]; !live {
			delete(h.strings, id)
			h.freeStrings = append(h.freeStrings, id)
			freed++
		}
	}
	for id := range h.bigints {
		if _, live := gc.bigints[id]; !live {
			delete(h.bigints, id)
			h.freeBigs = append(h.freeBigs, id)
			freed++
		}
	}
	for id := range h.blocks {
		if _, live := gc.blocks[id]; !live {
			delete(h.blocks, id)
			h.freeBlocks = append(h.freeBlocks, id)
			freed++
		}
	}
	h.allocCount = 0
	return freed
}

func (gc *gcState) markValue(v Value) {
	switch {
	case v.IsObject():
		o := objectFromValue(v)
		if _, seen := gc.objects[o]; seen {
			return
		}
		gc.objects[o] = struct{}{}
		for i := 0; i < o.count; i++ {
			gc.markValue(o.Slot(i))
		}
	case v.IsString():
		gc.strings[v.StringID()] = struct{}{}
	case v.IsBigInt():
		gc.bigints[v.BigIntID()] = struct{}{}
	case v.IsBlock():
		id := v.BlockID()
		if _, seen := gc.blocks[id]; seen {
			return
		}
		gc.blocks[id] = struct{}{}
		if b, ok := gc.heap.blocks[id]; ok {
			gc.markFrame(b.Outer)
			gc.markFrame(b.Home)
			gc.markTemplate(b.Template)
		}
	}
}

// markMethod marks a method's literal table, including the tables of
// its nested block templates and of a primitive's bytecode fallback.
func (gc *gcState) markMethod(m Method) {
	switch m := m.(type) {
	case *CompiledMethod:
		gc.markCompiled(m)
	case *PrimitiveMethod:
		if m.Fallback != nil {
			gc.markCompiled(m.Fallback)
		}
	}
}

func (gc *gcState) markCompiled(m *CompiledMethod) {
	if m == nil {
		return
	}
	if _, seen := gc.methods[m]; seen {
		return
	}
	gc.methods[m] = struct{}{}
	for _, lit := range m.Literals {
		gc.markValue(lit)
	}
	for _, t := range m.Blocks {
		gc.markTemplate(t)
	}
}

func (gc *gcState) markTemplate(t *BlockTemplate) {
	for _, lit := range t.Literals {
		gc.markValue(lit)
	}
	for _, nested := range t.Blocks {
		gc.markTemplate(nested)
	}
}

func (gc *gcState) markFrame(f *Frame) {
	for ; f != nil; f = f.Caller {
		if _, seen := gc.frames[f]; seen {
			return
		}
		gc.frames[f] = struct{}{}
		gc.markValue(f.Receiver)
		for _, v := range f.slots {
			gc.markValue(v)
		}
		for _, v := range f.stack {
			gc.markValue(v)
		}
		gc.markCompiled(f.Method)
		if f.Outer != nil {
			gc.markFrame(f.Outer)
		}
	}
}
