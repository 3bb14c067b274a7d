package vm

import (
	"errors"
	"strings"
	"testing"
)

// buildProtectedRun installs a `run` method on c equivalent to
// [ <body block> ] on: #<kind> do: [:k | 42].
func buildProtectedRun(vm *VM, c *Class, kind string, body *BlockTemplate) {
	handler := &BlockTemplate{
		NumArgs: 1,
		Bytecode: NewBytecodeBuilder().
			EmitU8(OpPushInt8, 42).
			Emit(OpReturnTop).
			Build(),
	}
	mb := NewMethodBuilder("run")
	kindLit := mb.Literal(vm.InternSymbol(kind))
	onDo := mb.Literal(vm.InternSymbol("on:do:"))
	mb.Block(body)
	mb.Block(handler)
	mb.Code(NewBytecodeBuilder().
		EmitU8(OpPushBlock, 0).
		EmitU16(OpPushLiteral, uint16(kindLit)).
		EmitU8(OpPushBlock, 1).
		EmitSend(OpSend, uint16(onDo), 2).
		Emit(OpReturnTop).
		Build())
	vm.InstallMethod(c, mb.Build())
}

func TestOnDoCatchesMessageNotUnderstood(t *testing.T) {
	vm := New(Options{})
	c := vm.DefineClass("Catcher", vm.ObjectClass, nil)

	body := &BlockTemplate{
		Literals: []Value{vm.InternSymbol("zork")},
		Bytecode: NewBytecodeBuilder().
			EmitU8(OpPushInt8, 5).
			EmitSend(OpSend, 0, 0).
			Emit(OpReturnTop).
			Build(),
	}
	buildProtectedRun(vm, c, "MessageNotUnderstood", body)

	inst := vm.heap.Allocate(c).Value()
	got, err := vm.Send(inst, "run")
	if err != nil {
		t.Fatal(err)
	}
	if got.SmallInt() != 42 {
		t.Errorf("handler result = %d, want 42", got.SmallInt())
	}
}

func TestOnDoCatchesZeroDivideAsPrimitiveFailure(t *testing.T) {
	vm := New(Options{})
	c := vm.DefineClass("DivCatcher", vm.ObjectClass, nil)

	body := &BlockTemplate{
		Literals: []Value{vm.InternSymbol("/")},
		Bytecode: NewBytecodeBuilder().
			EmitU8(OpPushInt8, 1).
			EmitU8(OpPushInt8, 0).
			EmitSend(OpSend, 0, 1).
			Emit(OpReturnTop).
			Build(),
	}
	buildProtectedRun(vm, c, "PrimitiveFailure", body)

	inst := vm.heap.Allocate(c).Value()
	got, err := vm.Send(inst, "run")
	if err != nil {
		t.Fatal(err)
	}
	if got.SmallInt() != 42 {
		t.Errorf("handler result = %d, want 42", got.SmallInt())
	}
}

func TestOnDoKindMismatchPassesThrough(t *testing.T) {
	vm := New(Options{})
	c := vm.DefineClass("Mismatcher", vm.ObjectClass, nil)

	body := &BlockTemplate{
		Literals: []Value{vm.InternSymbol("zork")},
		Bytecode: NewBytecodeBuilder().
			EmitU8(OpPushInt8, 5).
			EmitSend(OpSend, 0, 0).
			Emit(OpReturnTop).
			Build(),
	}
	buildProtectedRun(vm, c, "DeadContextReturn", body)

	inst := vm.heap.Allocate(c).Value()
	_, err := vm.Send(inst, "run")
	var re *RuntimeError
	if !errors.As(err, &re) || re.Kind != MessageNotUnderstood {
		t.Errorf("mismatched kind must pass through, got %v", err)
	}
}

func TestOnDoErrorCatchesAnyCatchable(t *testing.T) {
	vm := New(Options{})
	c := vm.DefineClass("AnyCatcher", vm.ObjectClass, nil)

	body := &BlockTemplate{
		Literals: []Value{vm.InternSymbol("zork")},
		Bytecode: NewBytecodeBuilder().
			EmitU8(OpPushInt8, 5).
			EmitSend(OpSend, 0, 0).
			Emit(OpReturnTop).
			Build(),
	}
	buildProtectedRun(vm, c, "Error", body)

	inst := vm.heap.Allocate(c).Value()
	got, err := vm.Send(inst, "run")
	if err != nil {
		t.Fatal(err)
	}
	if got.SmallInt() != 42 {
		t.Errorf("handler result = %d, want 42", got.SmallInt())
	}
}

func TestStackOverflowUnwindsToEntry(t *testing.T) {
	vm := New(Options{MaxDepth: 64})
	c := vm.DefineClass("Recurser", vm.ObjectClass, nil)

	mb := NewMethodBuilder("loop")
	loop := mb.Literal(vm.InternSymbol("loop"))
	mb.Code(NewBytecodeBuilder().
		Emit(OpPushSelf).
		EmitSend(OpSend, uint16(loop), 0).
		Emit(OpReturnTop).
		Build())
	vm.InstallMethod(c, mb.Build())

	inst := vm.heap.Allocate(c).Value()
	_, err := vm.Send(inst, "loop")
	var re *RuntimeError
	if !errors.As(err, &re) || re.Kind != StackOverflow {
		t.Fatalf("error = %v, want StackOverflow", err)
	}
}

func TestStackOverflowNotCatchable(t *testing.T) {
	vm := New(Options{MaxDepth: 64})
	c := vm.DefineClass("DeepCatcher", vm.ObjectClass, nil)

	mb := NewMethodBuilder("loop")
	loop := mb.Literal(vm.InternSymbol("loop"))
	mb.Code(NewBytecodeBuilder().
		Emit(OpPushSelf).
		EmitSend(OpSend, uint16(loop), 0).
		Emit(OpReturnTop).
		Build())
	vm.InstallMethod(c, mb.Build())

	body := &BlockTemplate{
		Literals: []Value{vm.InternSymbol("loop")},
		Bytecode: NewBytecodeBuilder().
			Emit(OpPushSelf).
			EmitSend(OpSend, 0, 0).
			Emit(OpReturnTop).
			Build(),
	}
	buildProtectedRun(vm, c, "Error", body)

	inst := vm.heap.Allocate(c).Value()
	_, err := vm.Send(inst, "run")
	var re *RuntimeError
	if !errors.As(err, &re) || re.Kind != StackOverflow {
		t.Fatalf("StackOverflow must bypass handlers, got %v", err)
	}
}

func TestUncaughtDiagnosticNamesSelectorAndClass(t *testing.T) {
	vm := New(Options{})
	_, err := vm.Send(vm.NewString("s"), "frob")
	if err == nil {
		t.Fatal("expected an error")
	}
	msg := err.Error()
	for _, want := range []string{"frob", "String", "MessageNotUnderstood"} {
		if !strings.Contains(msg, want) {
			t.Errorf("diagnostic %q missing %q", msg, want)
		}
	}
}
