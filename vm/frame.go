package vm

// Frame is a heap-allocated activation record. Method frames have a
// nil Block and Outer; block frames record both the invoking frame
// (Caller, dynamic) and the frame the closure captured (Outer,
// lexical). The two chains are kept strictly separate.
type Frame struct {
	Method   *CompiledMethod
	Block    *BlockValue // nil for method activations
	Receiver Value

	slots []Value // arguments then temporaries
	stack []Value // operand stack
	IP    int

	Caller *Frame
	Outer  *Frame

	done bool
}

// Home returns the method frame a non-local return targets: the frame
// itself for methods, the closure's home for blocks.
func (f *Frame) Home() *Frame {
	if f.Block != nil {
		return f.Block.Home
	}
	return f
}

// Self returns the receiver for self references. Block frames defer
// to their home method frame.
func (f *Frame) Self() Value {
	if f.Block != nil {
		return f.Home().Receiver
	}
	return f.Receiver
}

// Done reports whether the activation has returned.
func (f *Frame) Done() bool {
	return f.done
}

// Slot returns argument/temporary slot i.
func (f *Frame) Slot(i int) Value {
	if i < 0 || i >= len(f.slots) {
		internalf("frame slot %d out of range (have %d)", i, len(f.slots))
	}
	return f.slots[i]
}

// SetSlot stores v in argument/temporary slot i.
func (f *Frame) SetSlot(i int, v Value) {
	if i < 0 || i >= len(f.slots) {
		internalf("frame slot %d out of range (have %d)", i, len(f.slots))
	}
	f.slots[i] = v
}

// ContextFrame walks the lexical chain. Depth 0 is the frame itself.
func (f *Frame) ContextFrame(depth int) *Frame {
	g := f
	for i := 0; i < depth; i++ {
		if g.Outer == nil {
			internalf("lexical depth %d exceeds chain length %d", depth, i)
		}
		g = g.Outer
	}
	return g
}

// push adds a value to the operand stack.
func (f *Frame) push(v Value) {
	f.stack = append(f.stack, v)
}

// pop removes and returns the top of the operand stack.
func (f *Frame) pop() Value {
	if len(f.stack) == 0 {
		internalf("operand stack underflow in %s", f.describe())
	}
	v := f.stack[len(f.stack)-1]
	f.stack = f.stack[:len(f.stack)-1]
	return v
}

// top returns the top of the operand stack without removing it.
func (f *Frame) top() Value {
	if len(f.stack) == 0 {
		internalf("operand stack underflow in %s", f.describe())
	}
	return f.stack[len(f.stack)-1]
}

// popN removes the top n values and returns them in push order.
func (f *Frame) popN(n int) []Value {
	if len(f.stack) < n {
		internalf("operand stack underflow in %s", f.describe())
	}
	vals := make([]Value, n)
	copy(vals, f.stack[len(f.stack)-n:])
	f.stack = f.stack[:len(f.stack)-n]
	return vals
}

func (f *Frame) describe() string {
	if f.Block != nil {
		return "[] in " + f.Method.Name
	}
	return f.Method.Name
}

// newMethodFrame builds an activation for a compiled method.
func newMethodFrame(m *CompiledMethod, receiver Value, args []Value, caller *Frame) *Frame {
	f := &Frame{
		Method:   m,
		Receiver: receiver,
		slots:    make([]Value, m.NumArgs+m.NumTemps),
		Caller:   caller,
	}
	copy(f.slots, args)
	for i := m.NumArgs; i < len(f.slots); i++ {
		f.slots[i] = Nil
	}
	return f
}

// newBlockFrame builds an activation for a block closure. Outer is
// the closure's captured frame, never the caller.
func newBlockFrame(b *BlockValue, args []Value, caller *Frame) *Frame {
	t := b.Template
	f := &Frame{
		Method:   t.Holder,
		Block:    b,
		Receiver: b.Home.Receiver,
		slots:    make([]Value, t.NumArgs+t.NumTemps),
		Caller:   caller,
		Outer:    b.Outer,
	}
	copy(f.slots, args)
	for i := t.NumArgs; i < len(f.slots); i++ {
		f.slots[i] = Nil
	}
	return f
}

// BlockValue is a closure: a block template plus the lexical frame it
// captured and the method frame non-local returns target. It may
// outlive its creating activation; variable access keeps working, and
// only non-local return through a dead home is an error.
type BlockValue struct {
	Template *BlockTemplate
	Outer    *Frame
	Home     *Frame
}

// NumArgs returns the closure's argument count.
func (b *BlockValue) NumArgs() int {
	return b.Template.NumArgs
}
