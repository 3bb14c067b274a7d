package vm

import "fmt"

// Literal kinds understood by the loader.
const (
	LitInt    = "int"
	LitDouble = "double"
	LitString = "string"
	LitSymbol = "symbol"
	LitChar   = "char"
	LitClass  = "class"
	LitNil    = "nil"
	LitTrue   = "true"
	LitFalse  = "false"
)

// LiteralDef describes one literal table entry in a portable form.
type LiteralDef struct {
	Kind  string  `cbor:"kind"`
	Int   int64   `cbor:"int,omitempty"`
	Float float64 `cbor:"float,omitempty"`
	Text  string  `cbor:"text,omitempty"`
}

// BlockDef describes a nested block template.
type BlockDef struct {
	NumArgs  int          `cbor:"args"`
	NumTemps int          `cbor:"temps"`
	Literals []LiteralDef `cbor:"literals,omitempty"`
	Bytecode []byte       `cbor:"code"`
	Blocks   []BlockDef   `cbor:"blocks,omitempty"`
}

// MethodDef describes one compiled method. Primitive methods name a
// registry entry by their selector; any bytecode becomes the failure
// fallback.
type MethodDef struct {
	Name      string       `cbor:"name"`
	ClassSide bool         `cbor:"classSide,omitempty"`
	NumArgs   int          `cbor:"args"`
	NumTemps  int          `cbor:"temps"`
	Literals  []LiteralDef `cbor:"literals,omitempty"`
	Bytecode  []byte       `cbor:"code,omitempty"`
	Blocks    []BlockDef   `cbor:"blocks,omitempty"`
	Primitive bool         `cbor:"primitive,omitempty"`
}

// ClassDef describes one class: name, superclass by name (empty means
// Object), own instance variables, and methods.
type ClassDef struct {
	Name       string      `cbor:"name"`
	Superclass string      `cbor:"superclass,omitempty"`
	InstVars   []string    `cbor:"instVars,omitempty"`
	Methods    []MethodDef `cbor:"methods,omitempty"`
}

// Load defines classes and installs their methods. Classes may
// reference each other and appear in any order; superclass cycles and
// unknown names are errors. Already-bootstrapped classes (Object,
// Integer, ...) may gain methods by reusing their name with no
// superclass change.
func (vm *VM) Load(defs []ClassDef) error {
	// Pass 1: create classes, deferring those whose superclass is not
	// defined yet.
	pending := make([]ClassDef, len(defs))
	copy(pending, defs)
	for len(pending) > 0 {
		progress := false
		var next []ClassDef
		for _, def := range pending {
			if _, exists := vm.classes.ByName(def.Name); exists {
				progress = true
				continue
			}
			superName := def.Superclass
			if superName == "" {
				superName = "Object"
			}
			super, ok := vm.classes.ByName(superName)
			if !ok {
				next = append(next, def)
				continue
			}
			vm.DefineClass(def.Name, super, def.InstVars)
			progress = true
		}
		if !progress {
			return fmt.Errorf("load: unresolvable superclass chain involving %q", next[0].Name)
		}
		pending = next
	}

	// Pass 2: install methods, now that every class literal resolves.
	for _, def := range defs {
		class, _ := vm.classes.ByName(def.Name)
		for _, md := range def.Methods {
			m, err := vm.buildMethod(class, md)
			if err != nil {
				return fmt.Errorf("load: %s>>%s: %w", def.Name, md.Name, err)
			}
			vm.InstallMethod(class, m)
		}
	}
	return nil
}

// buildMethod converts a MethodDef into an installable CompiledMethod.
func (vm *VM) buildMethod(class *Class, md MethodDef) (*CompiledMethod, error) {
	lits, err := vm.buildLiterals(md.Literals)
	if err != nil {
		return nil, err
	}
	m := &CompiledMethod{
		Name:        md.Name,
		IsClassSide: md.ClassSide,
		NumArgs:     md.NumArgs,
		NumTemps:    md.NumTemps,
		Literals:    lits,
		Bytecode:    md.Bytecode,
	}
	for _, bd := range md.Blocks {
		t, err := vm.buildBlockTemplate(bd, m)
		if err != nil {
			return nil, err
		}
		m.Blocks = append(m.Blocks, t)
	}
	if md.Primitive {
		fn, ok := vm.prims.Lookup(class.Name, md.Name, md.ClassSide)
		if !ok {
			// Inherited registrations: walk up so a subclass can mark
			// a primitive its superclass registered.
			for k := class.Superclass; k != nil && !ok; k = k.Superclass {
				fn, ok = vm.prims.Lookup(k.Name, md.Name, md.ClassSide)
			}
		}
		if !ok {
			if len(md.Bytecode) == 0 {
				return nil, fmt.Errorf("no primitive registered and no fallback body")
			}
		} else {
			m.Primitive = fn
		}
	}
	return m, nil
}

func (vm *VM) buildBlockTemplate(bd BlockDef, holder *CompiledMethod) (*BlockTemplate, error) {
	lits, err := vm.buildLiterals(bd.Literals)
	if err != nil {
		return nil, err
	}
	t := &BlockTemplate{
		NumArgs:  bd.NumArgs,
		NumTemps: bd.NumTemps,
		Literals: lits,
		Bytecode: bd.Bytecode,
		Holder:   holder,
	}
	for _, nested := range bd.Blocks {
		nt, err := vm.buildBlockTemplate(nested, holder)
		if err != nil {
			return nil, err
		}
		t.Blocks = append(t.Blocks, nt)
	}
	return t, nil
}

func (vm *VM) buildLiterals(defs []LiteralDef) ([]Value, error) {
	if len(defs) == 0 {
		return nil, nil
	}
	out := make([]Value, len(defs))
	for i, ld := range defs {
		v, err := vm.buildLiteral(ld)
		if err != nil {
			return nil, fmt.Errorf("literal %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

func (vm *VM) buildLiteral(ld LiteralDef) (Value, error) {
	switch ld.Kind {
	case LitInt:
		if v, ok := TryFromSmallInt(ld.Int); ok {
			return v, nil
		}
		return Nil, fmt.Errorf("integer literal %d out of range", ld.Int)
	case LitDouble:
		return FromDouble(ld.Float), nil
	case LitString:
		return vm.NewString(ld.Text), nil
	case LitSymbol:
		return vm.InternSymbol(ld.Text), nil
	case LitChar:
		runes := []rune(ld.Text)
		if len(runes) != 1 {
			return Nil, fmt.Errorf("character literal %q is not a single rune", ld.Text)
		}
		return FromChar(runes[0]), nil
	case LitClass:
		c, ok := vm.classes.ByName(ld.Text)
		if !ok {
			return Nil, fmt.Errorf("unknown class %q", ld.Text)
		}
		return c.Value(), nil
	case LitNil:
		return Nil, nil
	case LitTrue:
		return True, nil
	case LitFalse:
		return False, nil
	}
	return Nil, fmt.Errorf("unknown literal kind %q", ld.Kind)
}
