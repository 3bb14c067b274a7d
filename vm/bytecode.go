package vm

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Opcode is a single bytecode instruction identifier.
type Opcode byte

// Instruction set. Operand widths are recorded in opcodeTable; jump
// offsets are signed 16-bit and relative to the end of the jump
// instruction.
const (
	// Stack management
	OpNop Opcode = iota
	OpPop
	OpDup

	// Pushes
	OpPushNil     // push nil
	OpPushTrue    // push true
	OpPushFalse   // push false
	OpPushSelf    // push the frame receiver
	OpPushInt8    // i8: push small integer
	OpPushInt32   // i32: push small integer
	OpPushLiteral // u16: push literal by index
	OpPushGlobal  // u16: literal index of a symbol naming a global
	OpPushTemp    // u8: push arg/temp slot
	OpPushIvar    // u8: push receiver instance variable
	OpPushContext // u8 depth, u8 slot: push from an enclosing frame
	OpPushBlock   // u8: close over the current frame with block template

	// Stores (value stays on the stack)
	OpStoreTemp    // u8
	OpStoreIvar    // u8
	OpStoreContext // u8 depth, u8 slot
	OpStoreGlobal  // u16: literal index of a symbol naming a global

	// Sends
	OpSend      // u16 literal index of selector symbol, u8 argc
	OpSendSuper // u16 literal index of selector symbol, u8 argc

	// Jumps
	OpJump      // i16 offset
	OpJumpTrue  // i16 offset, pops the condition
	OpJumpFalse // i16 offset, pops the condition

	// Returns
	OpReturnTop      // return top of stack from the current method/block
	OpReturnSelf     // return the receiver
	OpReturnNonLocal // return top of stack from the block's home method

	opcodeCount
)

// opcodeInfo describes an opcode for the reader and disassembler.
type opcodeInfo struct {
	name     string
	operands []int // operand widths in bytes
}

var opcodeTable = [opcodeCount]opcodeInfo{
	OpNop:            {"nop", nil},
	OpPop:            {"pop", nil},
	OpDup:            {"dup", nil},
	OpPushNil:        {"push-nil", nil},
	OpPushTrue:       {"push-true", nil},
	OpPushFalse:      {"push-false", nil},
	OpPushSelf:       {"push-self", nil},
	OpPushInt8:       {"push-int8", []int{1}},
	OpPushInt32:      {"push-int32", []int{4}},
	OpPushLiteral:    {"push-literal", []int{2}},
	OpPushGlobal:     {"push-global", []int{2}},
	OpPushTemp:       {"push-temp", []int{1}},
	OpPushIvar:       {"push-ivar", []int{1}},
	OpPushContext:    {"push-context", []int{1, 1}},
	OpPushBlock:      {"push-block", []int{1}},
	OpStoreTemp:      {"store-temp", []int{1}},
	OpStoreIvar:      {"store-ivar", []int{1}},
	OpStoreContext:   {"store-context", []int{1, 1}},
	OpStoreGlobal:    {"store-global", []int{2}},
	OpSend:           {"send", []int{2, 1}},
	OpSendSuper:      {"send-super", []int{2, 1}},
	OpJump:           {"jump", []int{2}},
	OpJumpTrue:       {"jump-true", []int{2}},
	OpJumpFalse:      {"jump-false", []int{2}},
	OpReturnTop:      {"return-top", nil},
	OpReturnSelf:     {"return-self", nil},
	OpReturnNonLocal: {"return-non-local", nil},
}

// String returns the opcode's mnemonic.
func (op Opcode) String() string {
	if op < opcodeCount {
		return opcodeTable[op].name
	}
	return fmt.Sprintf("op(%d)", byte(op))
}

// instrWidth returns the total encoded width of op including operands.
func instrWidth(op Opcode) int {
	w := 1
	if op < opcodeCount {
		for _, n := range opcodeTable[op].operands {
			w += n
		}
	}
	return w
}

// Label is a forward-patchable jump target within a BytecodeBuilder.
type Label struct {
	pos     int // byte position, -1 until bound
	patches []int
}

// BytecodeBuilder assembles a bytecode sequence with labeled jumps.
type BytecodeBuilder struct {
	code   []byte
	labels []*Label
}

// NewBytecodeBuilder creates an empty builder.
func NewBytecodeBuilder() *BytecodeBuilder {
	return &BytecodeBuilder{}
}

// Emit appends a bare opcode.
func (b *BytecodeBuilder) Emit(op Opcode) *BytecodeBuilder {
	b.code = append(b.code, byte(op))
	return b
}

// EmitU8 appends an opcode with one byte operand.
func (b *BytecodeBuilder) EmitU8(op Opcode, a byte) *BytecodeBuilder {
	b.code = append(b.code, byte(op), a)
	return b
}

// EmitU8U8 appends an opcode with two byte operands.
func (b *BytecodeBuilder) EmitU8U8(op Opcode, a, c byte) *BytecodeBuilder {
	b.code = append(b.code, byte(op), a, c)
	return b
}

// EmitU16 appends an opcode with a 16-bit operand.
func (b *BytecodeBuilder) EmitU16(op Opcode, a uint16) *BytecodeBuilder {
	b.code = append(b.code, byte(op), 0, 0)
	binary.BigEndian.PutUint16(b.code[len(b.code)-2:], a)
	return b
}

// EmitI32 appends an opcode with a 32-bit operand.
func (b *BytecodeBuilder) EmitI32(op Opcode, a int32) *BytecodeBuilder {
	b.code = append(b.code, byte(op), 0, 0, 0, 0)
	binary.BigEndian.PutUint32(b.code[len(b.code)-4:], uint32(a))
	return b
}

// EmitSend appends a send with the selector's literal index and argc.
func (b *BytecodeBuilder) EmitSend(op Opcode, selectorLit uint16, argc byte) *BytecodeBuilder {
	b.code = append(b.code, byte(op), 0, 0, argc)
	binary.BigEndian.PutUint16(b.code[len(b.code)-3:], selectorLit)
	return b
}

// NewLabel creates an unbound label.
func (b *BytecodeBuilder) NewLabel() *Label {
	l := &Label{pos: -1}
	b.labels = append(b.labels, l)
	return l
}

// Bind fixes a label at the current position and patches earlier jumps.
func (b *BytecodeBuilder) Bind(l *Label) *BytecodeBuilder {
	l.pos = len(b.code)
	for _, at := range l.patches {
		b.patchJump(at, l.pos)
	}
	l.patches = nil
	return b
}

// EmitJump appends a jump to a label, patched when the label binds.
func (b *BytecodeBuilder) EmitJump(op Opcode, l *Label) *BytecodeBuilder {
	at := len(b.code)
	b.code = append(b.code, byte(op), 0, 0)
	if l.pos >= 0 {
		b.patchJump(at, l.pos)
	} else {
		l.patches = append(l.patches, at)
	}
	return b
}

// patchJump writes the relative offset from the end of the jump at
// position `at` to the target position.
func (b *BytecodeBuilder) patchJump(at, target int) {
	offset := target - (at + 3)
	if offset > 32767 || offset < -32768 {
		panic("BytecodeBuilder: jump offset out of range")
	}
	binary.BigEndian.PutUint16(b.code[at+1:], uint16(int16(offset)))
}

// Build returns the assembled bytecode.
// Panics if a jump targets a label that was never bound.
func (b *BytecodeBuilder) Build() []byte {
	for _, l := range b.labels {
		if len(l.patches) > 0 {
			panic("BytecodeBuilder: unbound label")
		}
	}
	return b.code
}

// BytecodeReader decodes a bytecode stream.
type BytecodeReader struct {
	code []byte
	pos  int
}

// NewBytecodeReader creates a reader at position 0.
func NewBytecodeReader(code []byte) *BytecodeReader {
	return &BytecodeReader{code: code}
}

// AtEnd reports whether the reader has consumed all bytes.
func (r *BytecodeReader) AtEnd() bool {
	return r.pos >= len(r.code)
}

// Pos returns the current byte position.
func (r *BytecodeReader) Pos() int {
	return r.pos
}

// ReadOpcode reads the next opcode.
func (r *BytecodeReader) ReadOpcode() Opcode {
	op := Opcode(r.code[r.pos])
	r.pos++
	return op
}

// ReadU8 reads one operand byte.
func (r *BytecodeReader) ReadU8() byte {
	b := r.code[r.pos]
	r.pos++
	return b
}

// ReadU16 reads a 16-bit operand.
func (r *BytecodeReader) ReadU16() uint16 {
	v := binary.BigEndian.Uint16(r.code[r.pos:])
	r.pos += 2
	return v
}

// ReadI16 reads a signed 16-bit operand.
func (r *BytecodeReader) ReadI16() int16 {
	return int16(r.ReadU16())
}

// ReadI32 reads a signed 32-bit operand.
func (r *BytecodeReader) ReadI32() int32 {
	v := binary.BigEndian.Uint32(r.code[r.pos:])
	r.pos += 4
	return int32(v)
}

// Disassemble renders bytecode as one instruction per line.
func Disassemble(code []byte) string {
	var sb strings.Builder
	r := NewBytecodeReader(code)
	for !r.AtEnd() {
		pos := r.Pos()
		op := r.ReadOpcode()
		fmt.Fprintf(&sb, "%4d  %s", pos, op)
		if op < opcodeCount {
			for _, w := range opcodeTable[op].operands {
				switch w {
				case 1:
					fmt.Fprintf(&sb, " %d", r.ReadU8())
				case 2:
					if op == OpJump || op == OpJumpTrue || op == OpJumpFalse {
						off := r.ReadI16()
						fmt.Fprintf(&sb, " %d (-> %d)", off, r.Pos()+int(off))
					} else {
						fmt.Fprintf(&sb, " %d", r.ReadU16())
					}
				case 4:
					fmt.Fprintf(&sb, " %d", r.ReadI32())
				}
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
