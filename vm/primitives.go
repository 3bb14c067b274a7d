package vm

// primKey identifies a registered primitive.
type primKey struct {
	class     string
	selector  string
	classSide bool
}

// PrimitiveRegistry maps (class, selector, side) to Go
// implementations. Bootstrap fills it; the loader consults it to wire
// image methods marked primitive to their implementations.
type PrimitiveRegistry struct {
	entries map[primKey]PrimitiveFunc
}

// NewPrimitiveRegistry creates an empty registry.
func NewPrimitiveRegistry() *PrimitiveRegistry {
	return &PrimitiveRegistry{entries: make(map[primKey]PrimitiveFunc)}
}

// Register adds a primitive implementation.
func (r *PrimitiveRegistry) Register(class, selector string, classSide bool, fn PrimitiveFunc) {
	r.entries[primKey{class, selector, classSide}] = fn
}

// Lookup finds a primitive implementation.
func (r *PrimitiveRegistry) Lookup(class, selector string, classSide bool) (PrimitiveFunc, bool) {
	fn, ok := r.entries[primKey{class, selector, classSide}]
	return fn, ok
}

// Count returns the number of registered primitives.
func (r *PrimitiveRegistry) Count() int {
	return len(r.entries)
}

// installPrimitive installs m instance-side on c and records it in
// the registry.
func (vm *VM) installPrimitive(c *Class, m *PrimitiveMethod) {
	sel := vm.symbols.Intern(m.Name)
	c.VTable.Install(sel, m)
	vm.prims.Register(c.Name, m.Name, false, m.Fn)
}

// installClassPrimitive installs m on c's metaclass and records it in
// the registry.
func (vm *VM) installClassPrimitive(c *Class, m *PrimitiveMethod) {
	sel := vm.symbols.Intern(m.Name)
	c.Meta.VTable.Install(sel, m)
	vm.prims.Register(c.Name, m.Name, true, m.Fn)
}

// InstallMethod interns the method's selector and installs it on c
// (or c's metaclass for class-side methods), setting the holder used
// by super-sends. The dispatch cache is dropped: a cached miss for
// this selector must not shadow the new method.
func (vm *VM) InstallMethod(c *Class, m *CompiledMethod) {
	m.Selector = vm.symbols.Intern(m.Name)
	if m.IsClassSide {
		m.Holder = c.Meta
		c.Meta.VTable.Install(m.Selector, m)
	} else {
		m.Holder = c
		c.VTable.Install(m.Selector, m)
	}
	vm.cache.Reset()
}
