package cpu

import "fmt"

// Opcode is one two-byte instruction.
//
// An instruction decomposes into four 4-bit fields, here named w, x,
// y, z from the high nibble down, plus the composite fields built from
// them: the low byte (y and z) and the 12-bit address (x, y and z).
// Dispatch is driven by w and refined by the smaller fields, so the
// accessors below are the whole of the decoder - pure functions over
// an immutable value, with no state anywhere.
type Opcode uint16

// W returns the high nibble, which selects the instruction family.
func (o Opcode) W() uint8 {
	return uint8(o>>12) & 0x0F
}

// X returns the second nibble, almost always a register index.
func (o Opcode) X() uint8 {
	return uint8(o>>8) & 0x0F
}

// Y returns the third nibble, usually a second register index.
func (o Opcode) Y() uint8 {
	return uint8(o>>4) & 0x0F
}

// Z returns the low nibble.
func (o Opcode) Z() uint8 {
	return uint8(o) & 0x0F
}

// KK returns the low byte, used for immediate values.
func (o Opcode) KK() uint8 {
	return uint8(o)
}

// WX returns the high byte.
func (o Opcode) WX() uint8 {
	return uint8(o >> 8)
}

// NNN returns the 12-bit address field.
func (o Opcode) NNN() uint16 {
	return uint16(o) & 0x0FFF
}

// String implements the Stringer interface, we use this in logs and
// error messages.
func (o Opcode) String() string {
	return fmt.Sprintf("%04X", uint16(o))
}
