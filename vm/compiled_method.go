package vm

// CompiledMethod is a bytecode method: the unit of activation for
// ordinary sends. A method marked primitive runs its PrimitiveFunc
// first and interprets the bytecode body only on primitive failure.
type CompiledMethod struct {
	Selector    uint32
	Holder      *Class
	Name        string // selector text, kept for diagnostics
	IsClassSide bool
	NumArgs     int
	NumTemps    int // temps beyond the arguments
	Literals    []Value
	Bytecode    []byte
	Blocks      []*BlockTemplate
	Primitive   PrimitiveFunc
}

// Invoke activates the method on the current VM.
func (m *CompiledMethod) Invoke(vm *VM, receiver Value, args []Value) Value {
	if len(args) != m.NumArgs {
		vm.raisePrimitiveFailure(m.Name, receiver, "wrong number of arguments")
	}
	if m.Primitive != nil {
		if result, ok := m.Primitive(vm, receiver, args); ok {
			return result
		}
		if len(m.Bytecode) == 0 {
			vm.raisePrimitiveFailure(m.Name, receiver, "primitive failed")
		}
	}
	return vm.activateMethod(m, receiver, args)
}

// BlockTemplate is the compiled form of a block literal. Activations
// reference it together with a captured lexical frame; free-variable
// access walks that chain with the depth recorded at compile time.
type BlockTemplate struct {
	NumArgs  int
	NumTemps int
	Literals []Value
	Bytecode []byte
	Blocks   []*BlockTemplate // nested block literals
	Holder   *CompiledMethod
}

// MethodBuilder assembles a CompiledMethod.
type MethodBuilder struct {
	m CompiledMethod
}

// NewMethodBuilder starts a method named by its selector text.
func NewMethodBuilder(name string) *MethodBuilder {
	return &MethodBuilder{m: CompiledMethod{Name: name}}
}

// ClassSide marks the method as class-side.
func (b *MethodBuilder) ClassSide() *MethodBuilder {
	b.m.IsClassSide = true
	return b
}

// Args sets the argument count.
func (b *MethodBuilder) Args(n int) *MethodBuilder {
	b.m.NumArgs = n
	return b
}

// Temps sets the temporary count.
func (b *MethodBuilder) Temps(n int) *MethodBuilder {
	b.m.NumTemps = n
	return b
}

// Literal appends a literal and returns its index.
func (b *MethodBuilder) Literal(v Value) int {
	b.m.Literals = append(b.m.Literals, v)
	return len(b.m.Literals) - 1
}

// Block appends a nested block template and returns its index.
func (b *MethodBuilder) Block(t *BlockTemplate) int {
	b.m.Blocks = append(b.m.Blocks, t)
	return len(b.m.Blocks) - 1
}

// Primitive attaches a primitive implementation; the bytecode body,
// if any, becomes the failure fallback.
func (b *MethodBuilder) Primitive(fn PrimitiveFunc) *MethodBuilder {
	b.m.Primitive = fn
	return b
}

// Code sets the bytecode body.
func (b *MethodBuilder) Code(code []byte) *MethodBuilder {
	b.m.Bytecode = code
	return b
}

// Build finalizes the method. The holder and interned selector are
// filled in at install time.
func (b *MethodBuilder) Build() *CompiledMethod {
	m := b.m
	for _, t := range m.Blocks {
		setBlockHolder(t, &m)
	}
	return &m
}

func setBlockHolder(t *BlockTemplate, m *CompiledMethod) {
	t.Holder = m
	for _, nested := range t.Blocks {
		setBlockHolder(nested, m)
	}
}
