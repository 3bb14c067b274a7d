package vm

// send dispatches selector to receiver: resolve through the cache,
// fall back to doesNotUnderstand:arguments: on an exhausted chain.
func (vm *VM) send(receiver Value, selector uint32, args []Value) Value {
	m := vm.lookupMethod(vm.ClassOf(receiver), selector)
	if m == nil {
		return vm.sendDNU(receiver, selector, args)
	}
	return m.Invoke(vm, receiver, args)
}

// sendSuper dispatches selector starting at the superclass of the
// method's holder, not the receiver's class.
func (vm *VM) sendSuper(holder *Class, receiver Value, selector uint32, args []Value) Value {
	if holder == nil || holder.Superclass == nil {
		return vm.sendDNU(receiver, selector, args)
	}
	m, _ := vm.cache.Lookup(holder.Superclass, selector)
	if m == nil {
		return vm.sendDNU(receiver, selector, args)
	}
	return m.Invoke(vm, receiver, args)
}

// sendDNU reifies the failed message as a selector symbol plus an
// argument array and dispatches doesNotUnderstand:arguments:. The
// Object default raises MessageNotUnderstood.
func (vm *VM) sendDNU(receiver Value, selector uint32, args []Value) Value {
	m := vm.lookupMethod(vm.ClassOf(receiver), vm.selDNU)
	if m == nil {
		vm.raiseMessageNotUnderstood(receiver, selector)
	}
	return m.Invoke(vm, receiver, []Value{FromSymbolID(selector), vm.NewArray(args)})
}

// activateMethod runs a compiled method in a fresh frame. The frame
// is the unwind target for non-local returns out of blocks it
// created, recovered here by home-frame identity.
func (vm *VM) activateMethod(m *CompiledMethod, receiver Value, args []Value) (result Value) {
	if vm.depth >= vm.maxDepth {
		panic(&RuntimeError{
			Kind:          StackOverflow,
			Selector:      m.Name,
			ReceiverClass: vm.ClassOf(receiver).Name,
			Message:       "frame depth limit exceeded",
		})
	}
	vm.depth++
	f := newMethodFrame(m, receiver, args, vm.current)
	prev := vm.current
	vm.current = f
	defer func() {
		f.done = true
		vm.current = prev
		vm.depth--
		if r := recover(); r != nil {
			nlr, ok := r.(*NonLocalReturn)
			if ok && nlr.Home == f {
				result = nlr.Value
				return
			}
			panic(r)
		}
	}()
	vm.maybeCollect()
	return vm.run(f)
}

// activateBlock runs a closure. Block frames never intercept
// non-local returns; the panic passes through to the home method.
func (vm *VM) activateBlock(b *BlockValue, args []Value) Value {
	if len(args) != b.Template.NumArgs {
		vm.raisePrimitiveFailure("value", b.Home.Receiver, "wrong number of block arguments")
	}
	if vm.depth >= vm.maxDepth {
		panic(&RuntimeError{
			Kind:          StackOverflow,
			Selector:      b.Template.Holder.Name,
			ReceiverClass: vm.ClassOf(b.Home.Receiver).Name,
			Message:       "frame depth limit exceeded",
		})
	}
	vm.depth++
	f := newBlockFrame(b, args, vm.current)
	prev := vm.current
	vm.current = f
	defer func() {
		f.done = true
		vm.current = prev
		vm.depth--
	}()
	vm.maybeCollect()
	return vm.run(f)
}

// Per-frame code accessors: block frames execute their template's
// code and literals, not the holder method's.

func (f *Frame) code() []byte {
	if f.Block != nil {
		return f.Block.Template.Bytecode
	}
	return f.Method.Bytecode
}

func (f *Frame) literals() []Value {
	if f.Block != nil {
		return f.Block.Template.Literals
	}
	return f.Method.Literals
}

func (f *Frame) blockTemplates() []*BlockTemplate {
	if f.Block != nil {
		return f.Block.Template.Blocks
	}
	return f.Method.Blocks
}

// literal returns literal idx, failing fatally on a bad index.
func (f *Frame) literal(idx int) Value {
	lits := f.literals()
	if idx < 0 || idx >= len(lits) {
		internalf("literal index %d out of range (have %d) in %s", idx, len(lits), f.describe())
	}
	return lits[idx]
}

// selectorLiteral returns the selector ID stored in literal idx.
func (f *Frame) selectorLiteral(idx int) uint32 {
	lit := f.literal(idx)
	if !lit.IsSymbol() {
		internalf("literal %d is not a selector symbol in %s", idx, f.describe())
	}
	return lit.SymbolID()
}

// run is the fetch-decode-execute loop for one frame.
func (vm *VM) run(f *Frame) Value {
	code := f.code()
	for {
		if f.IP >= len(code) {
			// Fell off the end: methods answer self, blocks answer
			// their last expression if one is on the stack.
			if f.Block != nil {
				if len(f.stack) > 0 {
					return f.top()
				}
				return Nil
			}
			return f.Self()
		}
		op := Opcode(code[f.IP])
		f.IP++
		switch op {
		case OpNop:

		case OpPop:
			f.pop()

		case OpDup:
			f.push(f.top())

		case OpPushNil:
			f.push(Nil)

		case OpPushTrue:
			f.push(True)

		case OpPushFalse:
			f.push(False)

		case OpPushSelf:
			f.push(f.Self())

		case OpPushInt8:
			f.push(FromSmallInt(int64(int8(code[f.IP]))))
			f.IP++

		case OpPushInt32:
			f.push(FromSmallInt(int64(vm.readI32(f, code))))

		case OpPushLiteral:
			f.push(f.literal(int(vm.readU16(f, code))))

		case OpPushGlobal:
			sym := f.selectorLiteral(int(vm.readU16(f, code)))
			f.push(vm.globalByID(sym, f))

		case OpStoreGlobal:
			sym := f.selectorLiteral(int(vm.readU16(f, code)))
			vm.globals[sym] = f.top()

		case OpPushTemp:
			f.push(f.Slot(int(code[f.IP])))
			f.IP++

		case OpStoreTemp:
			f.SetSlot(int(code[f.IP]), f.top())
			f.IP++

		case OpPushIvar:
			f.push(vm.ivarObject(f).Slot(int(code[f.IP])))
			f.IP++

		case OpStoreIvar:
			vm.ivarObject(f).SetSlot(int(code[f.IP]), f.top())
			f.IP++

		case OpPushContext:
			depth := int(code[f.IP])
			slot := int(code[f.IP+1])
			f.IP += 2
			f.push(f.ContextFrame(depth).Slot(slot))

		case OpStoreContext:
			depth := int(code[f.IP])
			slot := int(code[f.IP+1])
			f.IP += 2
			f.ContextFrame(depth).SetSlot(slot, f.top())

		case OpPushBlock:
			idx := int(code[f.IP])
			f.IP++
			templates := f.blockTemplates()
			if idx >= len(templates) {
				internalf("block template index %d out of range in %s", idx, f.describe())
			}
			b := &BlockValue{
				Template: templates[idx],
				Outer:    f,
				Home:     f.Home(),
			}
			f.push(vm.heap.NewBlock(b))

		case OpSend:
			sel := f.selectorLiteral(int(vm.readU16(f, code)))
			argc := int(code[f.IP])
			f.IP++
			args := f.popN(argc)
			receiver := f.pop()
			f.push(vm.send(receiver, sel, args))

		case OpSendSuper:
			sel := f.selectorLiteral(int(vm.readU16(f, code)))
			argc := int(code[f.IP])
			f.IP++
			args := f.popN(argc)
			receiver := f.pop()
			f.push(vm.sendSuper(f.Method.Holder, receiver, sel, args))

		case OpJump:
			off := vm.readI16(f, code)
			f.IP += int(off)

		case OpJumpTrue:
			off := vm.readI16(f, code)
			if vm.popCondition(f) {
				f.IP += int(off)
			}

		case OpJumpFalse:
			off := vm.readI16(f, code)
			if !vm.popCondition(f) {
				f.IP += int(off)
			}

		case OpReturnTop:
			return f.pop()

		case OpReturnSelf:
			return f.Self()

		case OpReturnNonLocal:
			v := f.pop()
			home := f.Home()
			if f.Block == nil {
				// In a method frame this is a plain return.
				return v
			}
			if home.done {
				return vm.escapedBlockReturn(f.Block)
			}
			panic(&NonLocalReturn{Value: v, Home: home})

		default:
			internalf("corrupt bytecode: opcode %d at %d in %s", byte(op), f.IP-1, f.describe())
		}

		if f.IP < 0 || f.IP > len(code) {
			internalf("instruction pointer %d out of range in %s", f.IP, f.describe())
		}
	}
}

// readU16 reads a big-endian 16-bit operand and advances the IP.
func (vm *VM) readU16(f *Frame, code []byte) uint16 {
	if f.IP+2 > len(code) {
		internalf("truncated operand at %d in %s", f.IP, f.describe())
	}
	v := uint16(code[f.IP])<<8 | uint16(code[f.IP+1])
	f.IP += 2
	return v
}

func (vm *VM) readI16(f *Frame, code []byte) int16 {
	return int16(vm.readU16(f, code))
}

func (vm *VM) readI32(f *Frame, code []byte) int32 {
	if f.IP+4 > len(code) {
		internalf("truncated operand at %d in %s", f.IP, f.describe())
	}
	v := int32(uint32(code[f.IP])<<24 | uint32(code[f.IP+1])<<16 |
		uint32(code[f.IP+2])<<8 | uint32(code[f.IP+3]))
	f.IP += 4
	return v
}

// popCondition pops a jump condition, failing on non-booleans.
func (vm *VM) popCondition(f *Frame) bool {
	v := f.pop()
	if !v.IsBool() {
		vm.raisePrimitiveFailure("ifTrue:", v, "condition must be a Boolean")
	}
	return v == True
}

// ivarObject returns the object whose instance variables the frame's
// ivar opcodes address. Ivar access on an immediate means the
// compiler emitted code for the wrong class.
func (vm *VM) ivarObject(f *Frame) *Object {
	self := f.Self()
	if !self.IsObject() {
		internalf("instance variable access on non-object in %s", f.describe())
	}
	return objectFromValue(self)
}

// escapedBlockReturn handles a non-local return whose home frame has
// already exited: the home receiver gets escapedBlock: first, and the
// Object default raises DeadContextReturn.
func (vm *VM) escapedBlockReturn(b *BlockValue) Value {
	receiver := b.Home.Receiver
	if m := vm.lookupMethod(vm.ClassOf(receiver), vm.selEscapedBlock); m != nil {
		return m.Invoke(vm, receiver, []Value{vm.heap.NewBlock(b)})
	}
	vm.raiseDeadContextReturn(b)
	return Nil
}
