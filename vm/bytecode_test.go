package vm

import (
	"strings"
	"testing"
)

func TestBuilderEncodesOperands(t *testing.T) {
	code := NewBytecodeBuilder().
		EmitU8(OpPushInt8, 200).
		EmitU16(OpPushLiteral, 0x0102).
		EmitSend(OpSend, 3, 2).
		Emit(OpReturnTop).
		Build()

	r := NewBytecodeReader(code)
	if r.ReadOpcode() != OpPushInt8 || r.ReadU8() != 200 {
		t.Error("push-int8 encoding")
	}
	if r.ReadOpcode() != OpPushLiteral || r.ReadU16() != 0x0102 {
		t.Error("push-literal encoding")
	}
	if r.ReadOpcode() != OpSend {
		t.Error("send opcode")
	}
	if r.ReadU16() != 3 || r.ReadU8() != 2 {
		t.Error("send operands")
	}
	if r.ReadOpcode() != OpReturnTop || !r.AtEnd() {
		t.Error("trailing return")
	}
}

func TestBuilderForwardLabel(t *testing.T) {
	b := NewBytecodeBuilder()
	end := b.NewLabel()
	b.Emit(OpPushTrue).
		EmitJump(OpJumpFalse, end).
		EmitU8(OpPushInt8, 1).
		Bind(end).
		Emit(OpReturnTop)
	code := b.Build()

	r := NewBytecodeReader(code)
	r.ReadOpcode() // push-true
	if r.ReadOpcode() != OpJumpFalse {
		t.Fatal("expected jump")
	}
	off := r.ReadI16()
	target := r.Pos() + int(off)
	if Opcode(code[target]) != OpReturnTop {
		t.Errorf("forward jump lands on %s, want return-top", Opcode(code[target]))
	}
}

func TestBuilderBackwardLabel(t *testing.T) {
	b := NewBytecodeBuilder()
	top := b.NewLabel()
	b.Bind(top).
		Emit(OpNop).
		EmitJump(OpJump, top)
	code := b.Build()

	r := NewBytecodeReader(code)
	r.ReadOpcode() // nop
	if r.ReadOpcode() != OpJump {
		t.Fatal("expected jump")
	}
	off := r.ReadI16()
	if r.Pos()+int(off) != 0 {
		t.Errorf("backward jump target = %d, want 0", r.Pos()+int(off))
	}
}

func TestBuildPanicsOnUnboundLabel(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Build must panic on an unbound label")
		}
	}()
	b := NewBytecodeBuilder()
	l := b.NewLabel()
	b.EmitJump(OpJump, l)
	b.Build()
}

func TestDisassemble(t *testing.T) {
	code := NewBytecodeBuilder().
		EmitU8(OpPushInt8, 7).
		EmitSend(OpSend, 0, 1).
		Emit(OpReturnTop).
		Build()
	text := Disassemble(code)
	for _, want := range []string{"push-int8 7", "send 0 1", "return-top"} {
		if !strings.Contains(text, want) {
			t.Errorf("disassembly %q missing %q", text, want)
		}
	}
}

func TestOpcodeTableComplete(t *testing.T) {
	for op := Opcode(0); op < opcodeCount; op++ {
		if opcodeTable[op].name == "" {
			t.Errorf("opcode %d has no table entry", op)
		}
	}
}
