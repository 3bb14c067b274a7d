package vm

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Default runtime limits, overridable through Options.
const (
	DefaultMaxDepth    = 4096
	DefaultGCThreshold = 100000
)

// Options configures a VM.
type Options struct {
	MaxDepth    int       // frame depth limit, 0 means DefaultMaxDepth
	GCThreshold int       // allocations between automatic collections, 0 means DefaultGCThreshold
	Out         io.Writer // print destination, nil means os.Stdout
	Arguments   []string  // surfaced by System>>arguments
}

// VM is a SOM virtual machine: symbol and class tables, heap, dispatch
// cache, globals, and the interpreter state. A VM is single-threaded.
type VM struct {
	symbols *SymbolTable
	classes *ClassTable
	heap    *Heap
	cache   *DispatchCache
	prims   *PrimitiveRegistry
	globals map[uint32]Value

	out   io.Writer
	args  []string
	start time.Time

	current     *Frame // innermost active frame, GC root
	depth       int
	maxDepth    int
	gcThreshold int

	// Well-known classes, wired during bootstrap.
	ObjectClass    *Class
	ClassClass     *Class
	MetaclassClass *Class
	NilClass       *Class
	BooleanClass   *Class
	TrueClass      *Class
	FalseClass     *Class
	IntegerClass   *Class
	DoubleClass    *Class
	CharacterClass *Class
	StringClass    *Class
	SymbolClass    *Class
	ArrayClass     *Class
	BlockClass     *Class
	MethodClass    *Class
	SystemClass    *Class

	selDNU           uint32
	selEscapedBlock  uint32
	selUnknownGlobal uint32
}

// New creates a bootstrapped VM with the core classes and primitives
// installed.
func New(opts Options) *VM {
	vm := &VM{
		symbols:     NewSymbolTable(),
		classes:     NewClassTable(),
		heap:        NewHeap(),
		cache:       NewDispatchCache(),
		prims:       NewPrimitiveRegistry(),
		globals:     make(map[uint32]Value),
		out:         opts.Out,
		args:        opts.Arguments,
		start:       time.Now(),
		maxDepth:    opts.MaxDepth,
		gcThreshold: opts.GCThreshold,
	}
	if vm.out == nil {
		vm.out = os.Stdout
	}
	if vm.maxDepth <= 0 {
		vm.maxDepth = DefaultMaxDepth
	}
	if vm.gcThreshold <= 0 {
		vm.gcThreshold = DefaultGCThreshold
	}
	vm.bootstrap()
	return vm
}

// Symbols returns the VM's symbol table.
func (vm *VM) Symbols() *SymbolTable {
	return vm.symbols
}

// Classes returns the VM's class table.
func (vm *VM) Classes() *ClassTable {
	return vm.classes
}

// Heap returns the VM's heap.
func (vm *VM) Heap() *Heap {
	return vm.heap
}

// Cache returns the dispatch cache.
func (vm *VM) Cache() *DispatchCache {
	return vm.cache
}

// Primitives returns the primitive registry.
func (vm *VM) Primitives() *PrimitiveRegistry {
	return vm.prims
}

// Out returns the VM's print destination.
func (vm *VM) Out() io.Writer {
	return vm.out
}

// Arguments returns the program arguments.
func (vm *VM) Arguments() []string {
	return vm.args
}

// ---------------------------------------------------------------------------
// Bootstrap
// ---------------------------------------------------------------------------

// bootstrap builds the core class hierarchy. The Object/Class/
// Metaclass triangle needs three phases: create the classes, create
// and patch their metaclasses, then install primitives.
func (vm *VM) bootstrap() {
	vm.selDNU = vm.symbols.Intern("doesNotUnderstand:arguments:")
	vm.selEscapedBlock = vm.symbols.Intern("escapedBlock:")
	vm.selUnknownGlobal = vm.symbols.Intern("unknownGlobal:")

	// Phase 1: the instance-side hierarchy, without metaclasses.
	vm.ObjectClass = vm.newBareClass("Object", nil, nil)
	vm.ClassClass = vm.newBareClass("Class", vm.ObjectClass, nil)
	vm.MetaclassClass = vm.newBareClass("Metaclass", vm.ClassClass, nil)
	vm.NilClass = vm.newBareClass("Nil", vm.ObjectClass, nil)
	vm.BooleanClass = vm.newBareClass("Boolean", vm.ObjectClass, nil)
	vm.TrueClass = vm.newBareClass("True", vm.BooleanClass, nil)
	vm.FalseClass = vm.newBareClass("False", vm.BooleanClass, nil)
	vm.IntegerClass = vm.newBareClass("Integer", vm.ObjectClass, nil)
	vm.DoubleClass = vm.newBareClass("Double", vm.ObjectClass, nil)
	vm.CharacterClass = vm.newBareClass("Character", vm.ObjectClass, nil)
	vm.StringClass = vm.newBareClass("String", vm.ObjectClass, nil)
	vm.SymbolClass = vm.newBareClass("Symbol", vm.StringClass, nil)
	vm.ArrayClass = vm.newBareClass("Array", vm.ObjectClass, nil)
	vm.BlockClass = vm.newBareClass("Block", vm.ObjectClass, nil)
	vm.MethodClass = vm.newBareClass("Method", vm.ObjectClass, nil)
	vm.SystemClass = vm.newBareClass("System", vm.ObjectClass, nil)

	// Phase 2: metaclasses. The metaclass of X inherits from the
	// metaclass of X's superclass; Object's metaclass closes the loop
	// by inheriting from Class.
	for _, c := range vm.classes.All() {
		if !c.IsMeta {
			vm.attachMetaclass(c)
		}
	}

	// Phase 3: globals and primitives.
	for _, c := range vm.classes.All() {
		if !c.IsMeta {
			vm.globals[vm.symbols.Intern(c.Name)] = c.Value()
		}
	}
	vm.globals[vm.symbols.Intern("nil")] = Nil
	vm.globals[vm.symbols.Intern("true")] = True
	vm.globals[vm.symbols.Intern("false")] = False

	vm.registerObjectPrimitives()
	vm.registerBooleanPrimitives()
	vm.registerIntegerPrimitives()
	vm.registerDoublePrimitives()
	vm.registerCharacterPrimitives()
	vm.registerStringPrimitives()
	vm.registerArrayPrimitives()
	vm.registerBlockPrimitives()
	vm.registerClassPrimitives()
	vm.registerSystemPrimitives()

	system := vm.heap.Allocate(vm.SystemClass)
	vm.globals[vm.symbols.Intern("system")] = system.Value()
}

// newBareClass creates and registers a class without a metaclass.
func (vm *VM) newBareClass(name string, super *Class, instVars []string) *Class {
	var parent *VTable
	slots := len(instVars)
	if super != nil {
		parent = super.VTable
		slots += super.NumSlots
	}
	c := &Class{
		Name:       name,
		Superclass: super,
		InstVars:   instVars,
		NumSlots:   slots,
		VTable:     NewVTable(parent),
	}
	vm.classes.Register(c)
	return c
}

// attachMetaclass creates the metaclass for c.
func (vm *VM) attachMetaclass(c *Class) {
	var super *Class
	if c.Superclass != nil {
		super = c.Superclass.Meta
		if super == nil {
			vm.attachMetaclass(c.Superclass)
			super = c.Superclass.Meta
		}
	} else {
		super = vm.ClassClass
	}
	meta := &Class{
		Name:       c.Name + " class",
		Superclass: super,
		NumSlots:   super.NumSlots,
		VTable:     NewVTable(super.VTable),
		IsMeta:     true,
	}
	vm.classes.Register(meta)
	c.Meta = meta
}

// DefineClass creates and registers a class plus its metaclass. Used
// by the loader and by tests.
func (vm *VM) DefineClass(name string, super *Class, instVars []string) *Class {
	if super == nil {
		super = vm.ObjectClass
	}
	c := vm.newBareClass(name, super, instVars)
	vm.attachMetaclass(c)
	vm.globals[vm.symbols.Intern(name)] = c.Value()
	return c
}

// ---------------------------------------------------------------------------
// Class queries
// ---------------------------------------------------------------------------

// ClassOf returns the class of any value. Total: every value,
// immediate or heap, has a class.
func (vm *VM) ClassOf(v Value) *Class {
	switch {
	case v.IsDouble():
		return vm.DoubleClass
	case v.IsSmallInt(), v.IsBigInt():
		return vm.IntegerClass
	case v.IsObject():
		return objectFromValue(v).class
	case v.IsSymbol():
		return vm.SymbolClass
	case v.IsString():
		return vm.StringClass
	case v.IsChar():
		return vm.CharacterClass
	case v.IsBlock():
		return vm.BlockClass
	case v.IsClass():
		c := vm.classes.ByIndex(v.ClassIndex())
		if c == nil {
			internalf("class value with dangling index %d", v.ClassIndex())
		}
		if c.IsMeta {
			return vm.MetaclassClass
		}
		return c.Meta
	case v == Nil:
		return vm.NilClass
	case v == True:
		return vm.TrueClass
	case v == False:
		return vm.FalseClass
	}
	internalf("value with no class: %#x", uint64(v))
	return nil
}

// IsKindOf reports whether v's class is class or a subclass of it.
func (vm *VM) IsKindOf(v Value, class *Class) bool {
	return vm.ClassOf(v).InheritsFrom(class)
}

// ---------------------------------------------------------------------------
// Globals
// ---------------------------------------------------------------------------

// Global returns the global bound to name.
func (vm *VM) Global(name string) (Value, bool) {
	id, ok := vm.symbols.Lookup(name)
	if !ok {
		return Nil, false
	}
	v, ok := vm.globals[id]
	return v, ok
}

// SetGlobal binds name to v.
func (vm *VM) SetGlobal(name string, v Value) {
	vm.globals[vm.symbols.Intern(name)] = v
}

// globalByID resolves a global by symbol ID, dispatching
// unknownGlobal: to the current receiver when unbound.
func (vm *VM) globalByID(id uint32, f *Frame) Value {
	if v, ok := vm.globals[id]; ok {
		return v
	}
	receiver := Nil
	if f != nil {
		receiver = f.Self()
	}
	if m := vm.lookupMethod(vm.ClassOf(receiver), vm.selUnknownGlobal); m != nil {
		return m.Invoke(vm, receiver, []Value{FromSymbolID(id)})
	}
	panic(&RuntimeError{
		Kind:    PrimitiveFailure,
		Message: fmt.Sprintf("unknown global %q", vm.symbols.Name(id)),
	})
}

// ---------------------------------------------------------------------------
// Value construction helpers
// ---------------------------------------------------------------------------

// InternSymbol returns the symbol value for name.
func (vm *VM) InternSymbol(name string) Value {
	return FromSymbolID(vm.symbols.Intern(name))
}

// NewString creates a string value.
func (vm *VM) NewString(s string) Value {
	return vm.heap.NewString(s)
}

// StringText returns the Go string behind a string or symbol value.
func (vm *VM) StringText(v Value) string {
	if v.IsSymbol() {
		return vm.symbols.Name(v.SymbolID())
	}
	return vm.heap.StringAt(v)
}

// NewArray creates an Array object from elements.
func (vm *VM) NewArray(elements []Value) Value {
	o := vm.heap.AllocateSlots(vm.ArrayClass, len(elements))
	for i, e := range elements {
		o.SetSlot(i, e)
	}
	return o.Value()
}

// ---------------------------------------------------------------------------
// Garbage collection
// ---------------------------------------------------------------------------

// CollectGarbage runs a full mark-sweep pass and returns the number
// of reclaimed entries.
func (vm *VM) CollectGarbage() int {
	roots := make([]Value, 0, len(vm.globals))
	for _, v := range vm.globals {
		roots = append(roots, v)
	}
	var frames []*Frame
	if vm.current != nil {
		frames = append(frames, vm.current)
	}
	return vm.heap.Collect(roots, frames, vm.classes.All())
}

// maybeCollect triggers a collection when the allocation budget is
// spent.
func (vm *VM) maybeCollect() {
	if vm.heap.allocCount >= vm.gcThreshold {
		vm.CollectGarbage()
	}
}

// ---------------------------------------------------------------------------
// Error raising
// ---------------------------------------------------------------------------

func (vm *VM) raisePrimitiveFailure(selector string, receiver Value, msg string) {
	panic(&RuntimeError{
		Kind:          PrimitiveFailure,
		Selector:      selector,
		ReceiverClass: vm.ClassOf(receiver).Name,
		Message:       msg,
	})
}

func (vm *VM) raiseMessageNotUnderstood(receiver Value, selector uint32) {
	panic(&RuntimeError{
		Kind:          MessageNotUnderstood,
		Selector:      vm.symbols.Name(selector),
		ReceiverClass: vm.ClassOf(receiver).Name,
		Message:       "message not understood",
	})
}

func (vm *VM) raiseDeadContextReturn(block *BlockValue) {
	panic(&RuntimeError{
		Kind:          DeadContextReturn,
		Selector:      block.Template.Holder.Name,
		ReceiverClass: vm.ClassOf(block.Home.Receiver).Name,
		Message:       "non-local return from exited method",
	})
}

// ---------------------------------------------------------------------------
// Top-level entry
// ---------------------------------------------------------------------------

// Send dispatches selector to receiver from outside the interpreter,
// converting runtime panics into Go errors.
func (vm *VM) Send(receiver Value, selector string, args ...Value) (result Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recoveredError(r)
			if err == nil {
				panic(r)
			}
		}
	}()
	result = vm.send(receiver, vm.symbols.Intern(selector), args)
	return result, nil
}

// Run locates the entry class and sends it the zero-argument entry
// selector class-side. This is the program entry contract.
func (vm *VM) Run(entryClass, selector string) (Value, error) {
	c, ok := vm.classes.ByName(entryClass)
	if !ok {
		return Nil, fmt.Errorf("entry class %q not found", entryClass)
	}
	return vm.Send(c.Value(), selector)
}

// recoveredError converts interpreter panic values into Go errors.
// Non-VM panics return nil and are re-raised by the caller.
func recoveredError(r any) error {
	switch e := r.(type) {
	case *RuntimeError:
		return e
	case *InternalError:
		return e
	case *ExitRequest:
		return e
	case *NonLocalReturn:
		// A non-local return that escaped every activation means the
		// home frame tracking is broken.
		return &InternalError{Message: "non-local return escaped the interpreter"}
	default:
		return nil
	}
}
