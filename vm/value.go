package vm

import (
	"math"
	"unsafe"
)

// Value represents a SOM value using NaN-boxing.
//
// All values are represented as 64-bit IEEE 754 doubles. Non-double values
// are encoded in the NaN (Not-a-Number) space using the quiet NaN prefix
// and tag bits to distinguish types.
//
// Encoding scheme:
//   - Double: Native IEEE 754 double (if not a tagged NaN, it's a double)
//   - SmallInteger: Quiet NaN + tagInt + 48-bit signed payload
//   - Object: Quiet NaN + tagObject + 48-bit pointer
//   - Symbol: Quiet NaN + tagSymbol + payload (see markers below)
//   - Character: Quiet NaN + tagChar + Unicode code point
//   - Class: Quiet NaN + tagClass + class table index
//   - Block: Quiet NaN + tagBlock + closure registry ID
//   - Special: Quiet NaN + tagSpecial + special value ID (nil/true/false)
//
// Strings and large integers are heap-resident side-table entries; their
// IDs ride on the symbol tag with a marker in the high payload bits, so a
// Value never holds a Go pointer the collector cannot see.
type Value uint64

// NaN-boxing constants
const (
	// Quiet NaN prefix: exponent all 1s, quiet bit set, sign bit 0
	nanBits uint64 = 0x7FF8000000000000

	// Tag mask: 3 bits within the NaN mantissa space
	tagMask uint64 = 0x0007000000000000

	// Payload mask: 48 bits for pointer/int/id
	payloadMask uint64 = 0x0000FFFFFFFFFFFF

	// Tag values (shifted into position)
	tagObject  uint64 = 0x0001000000000000 // Heap object pointer
	tagInt     uint64 = 0x0002000000000000 // 48-bit signed integer
	tagSpecial uint64 = 0x0003000000000000 // nil, true, false
	tagSymbol  uint64 = 0x0004000000000000 // Interned symbol / marked side-table ID
	tagBlock   uint64 = 0x0005000000000000 // Block closure ID
	tagChar    uint64 = 0x0006000000000000 // Unicode code point
	tagClass   uint64 = 0x0007000000000000 // Class table index

	// Sign bit for 48-bit integer sign extension
	intSignBit uint64 = 0x0000800000000000

	// Mask for sign extension
	intSignExtend uint64 = 0xFFFF000000000000
)

// Markers within the symbol tag payload. Plain symbols use marker 0;
// strings and large integers carry their side-table IDs under distinct
// markers. IDs are therefore limited to 24 bits.
const (
	markerMask   uint32 = 0xFF << 24
	stringMarker uint32 = 1 << 24
	bigIntMarker uint32 = 2 << 24
)

// Special value payloads
const (
	specialNil   uint64 = 0
	specialTrue  uint64 = 1
	specialFalse uint64 = 2
)

// Pre-defined special values
const (
	Nil   Value = Value(nanBits | tagSpecial | specialNil)
	True  Value = Value(nanBits | tagSpecial | specialTrue)
	False Value = Value(nanBits | tagSpecial | specialFalse)
)

// SmallInteger range (48-bit signed)
const (
	MaxSmallInt int64 = (1 << 47) - 1
	MinSmallInt int64 = -(1 << 47)
)

// ---------------------------------------------------------------------------
// Type checking
// ---------------------------------------------------------------------------

// IsDouble returns true if v represents a float64 value.
// A value is a double if it's not one of our tagged NaN values.
// This includes regular numbers, infinities, and "real" NaN values.
func (v Value) IsDouble() bool {
	bits := uint64(v)

	if (bits & 0x7FF0000000000000) != 0x7FF0000000000000 {
		// Exponent is not all 1s, so it's a regular double
		return true
	}

	// Exponent is all 1s. Infinity has mantissa == 0 (ignoring sign bit).
	mantissa := bits & 0x000FFFFFFFFFFFFF
	if mantissa == 0 {
		return true
	}

	// It's a NaN. Signaling NaNs and untagged quiet NaNs are doubles.
	if (bits & nanBits) != nanBits {
		return true
	}
	return (bits & tagMask) == 0
}

// IsSmallInt returns true if v represents a small integer.
func (v Value) IsSmallInt() bool {
	return (uint64(v) & (nanBits | tagMask)) == (nanBits | tagInt)
}

// IsObject returns true if v represents a heap object pointer.
func (v Value) IsObject() bool {
	return (uint64(v) & (nanBits | tagMask)) == (nanBits | tagObject)
}

// IsSymbol returns true if v represents an interned symbol.
// String and large-integer values share the symbol tag but carry a
// non-zero marker, so they are excluded here.
func (v Value) IsSymbol() bool {
	if (uint64(v) & (nanBits | tagMask)) != (nanBits | tagSymbol) {
		return false
	}
	return uint32(uint64(v)&payloadMask)&markerMask == 0
}

// IsString returns true if v represents a heap string.
func (v Value) IsString() bool {
	if (uint64(v) & (nanBits | tagMask)) != (nanBits | tagSymbol) {
		return false
	}
	return uint32(uint64(v)&payloadMask)&markerMask == stringMarker
}

// IsBigInt returns true if v represents an arbitrary-precision integer.
func (v Value) IsBigInt() bool {
	if (uint64(v) & (nanBits | tagMask)) != (nanBits | tagSymbol) {
		return false
	}
	return uint32(uint64(v)&payloadMask)&markerMask == bigIntMarker
}

// IsChar returns true if v represents a character.
func (v Value) IsChar() bool {
	return (uint64(v) & (nanBits | tagMask)) == (nanBits | tagChar)
}

// IsClass returns true if v represents a class.
func (v Value) IsClass() bool {
	return (uint64(v) & (nanBits | tagMask)) == (nanBits | tagClass)
}

// IsBlock returns true if v represents a block closure.
func (v Value) IsBlock() bool {
	return (uint64(v) & (nanBits | tagMask)) == (nanBits | tagBlock)
}

// IsNil returns true if v is the nil value.
func (v Value) IsNil() bool {
	return v == Nil
}

// IsBool returns true if v is true or false.
func (v Value) IsBool() bool {
	return v == True || v == False
}

// IsSpecial returns true if v is nil, true, or false.
func (v Value) IsSpecial() bool {
	return (uint64(v) & (nanBits | tagMask)) == (nanBits | tagSpecial)
}

// ---------------------------------------------------------------------------
// Double operations
// ---------------------------------------------------------------------------

// Double returns v as a float64.
// Panics if v is not a double.
func (v Value) Double() float64 {
	if !v.IsDouble() {
		panic("Value.Double: not a double")
	}
	return math.Float64frombits(uint64(v))
}

// FromDouble creates a Value from a float64.
func FromDouble(f float64) Value {
	return Value(math.Float64bits(f))
}

// ---------------------------------------------------------------------------
// SmallInteger operations
// ---------------------------------------------------------------------------

// SmallInt returns v as an int64.
// Panics if v is not a small integer.
func (v Value) SmallInt() int64 {
	if !v.IsSmallInt() {
		panic("Value.SmallInt: not a small integer")
	}
	payload := uint64(v) & payloadMask

	// Sign extend from 48 bits to 64 bits
	if (payload & intSignBit) != 0 {
		payload |= intSignExtend
	}
	return int64(payload)
}

// FromSmallInt creates a Value from an int64.
// Panics if n is outside the SmallInteger range; callers that may
// overflow use TryFromSmallInt and promote to a large integer.
func FromSmallInt(n int64) Value {
	if n > MaxSmallInt || n < MinSmallInt {
		panic("FromSmallInt: value out of range")
	}
	return Value(nanBits | tagInt | (uint64(n) & payloadMask))
}

// TryFromSmallInt creates a Value from an int64, returning false if out of range.
func TryFromSmallInt(n int64) (Value, bool) {
	if n > MaxSmallInt || n < MinSmallInt {
		return Nil, false
	}
	return Value(nanBits | tagInt | (uint64(n) & payloadMask)), true
}

// ---------------------------------------------------------------------------
// Object pointer operations
// ---------------------------------------------------------------------------

// ObjectPtr returns v as an unsafe.Pointer to the heap object.
// Panics if v is not an object.
func (v Value) ObjectPtr() unsafe.Pointer {
	if !v.IsObject() {
		panic("Value.ObjectPtr: not an object")
	}
	ptr := uintptr(uint64(v) & payloadMask)
	return unsafe.Pointer(ptr)
}

// FromObjectPtr creates a Value from an unsafe.Pointer.
// The pointer must fit in 48 bits (true for all current architectures).
func FromObjectPtr(ptr unsafe.Pointer) Value {
	return Value(nanBits | tagObject | uint64(uintptr(ptr)))
}

// ---------------------------------------------------------------------------
// Symbol, string, and large integer IDs
// ---------------------------------------------------------------------------

// SymbolID returns the symbol ID encoded in v.
// Panics if v is not a symbol.
func (v Value) SymbolID() uint32 {
	if !v.IsSymbol() {
		panic("Value.SymbolID: not a symbol")
	}
	return uint32(uint64(v) & payloadMask)
}

// FromSymbolID creates a Value from a symbol ID.
func FromSymbolID(id uint32) Value {
	return Value(nanBits | tagSymbol | uint64(id))
}

// StringID returns the string table ID encoded in v.
// Panics if v is not a string.
func (v Value) StringID() uint32 {
	if !v.IsString() {
		panic("Value.StringID: not a string")
	}
	return uint32(uint64(v)&payloadMask) &^ markerMask
}

// FromStringID creates a string Value from a side-table ID.
func FromStringID(id uint32) Value {
	return Value(nanBits | tagSymbol | uint64(id|stringMarker))
}

// BigIntID returns the large integer table ID encoded in v.
// Panics if v is not a large integer.
func (v Value) BigIntID() uint32 {
	if !v.IsBigInt() {
		panic("Value.BigIntID: not a large integer")
	}
	return uint32(uint64(v)&payloadMask) &^ markerMask
}

// FromBigIntID creates a large integer Value from a side-table ID.
func FromBigIntID(id uint32) Value {
	return Value(nanBits | tagSymbol | uint64(id|bigIntMarker))
}

// ---------------------------------------------------------------------------
// Character operations
// ---------------------------------------------------------------------------

// Char returns the Unicode code point encoded in v.
// Panics if v is not a character.
func (v Value) Char() rune {
	if !v.IsChar() {
		panic("Value.Char: not a character")
	}
	return rune(uint64(v) & payloadMask)
}

// FromChar creates a Value from a Unicode code point.
func FromChar(r rune) Value {
	return Value(nanBits | tagChar | (uint64(uint32(r)) & payloadMask))
}

// ---------------------------------------------------------------------------
// Class index operations
// ---------------------------------------------------------------------------

// ClassIndex returns the class table index encoded in v.
// Panics if v is not a class.
func (v Value) ClassIndex() uint32 {
	if !v.IsClass() {
		panic("Value.ClassIndex: not a class")
	}
	return uint32(uint64(v) & payloadMask)
}

// FromClassIndex creates a Value from a class table index.
func FromClassIndex(id uint32) Value {
	return Value(nanBits | tagClass | uint64(id))
}

// ---------------------------------------------------------------------------
// Block closure IDs
// ---------------------------------------------------------------------------

// BlockID returns the closure registry ID.
// Panics if v is not a block.
func (v Value) BlockID() uint32 {
	if !v.IsBlock() {
		panic("Value.BlockID: not a block")
	}
	return uint32(uint64(v) & payloadMask)
}

// FromBlockID creates a Value from a closure registry ID.
func FromBlockID(id uint32) Value {
	return Value(nanBits | tagBlock | uint64(id))
}

// ---------------------------------------------------------------------------
// Boolean operations
// ---------------------------------------------------------------------------

// Bool returns v as a bool.
// Panics if v is not true or false.
func (v Value) Bool() bool {
	switch v {
	case True:
		return true
	case False:
		return false
	default:
		panic("Value.Bool: not a boolean")
	}
}

// FromBool creates a Value from a bool.
func FromBool(b bool) Value {
	if b {
		return True
	}
	return False
}
