package cpu

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestOpcodeFields(t *testing.T) {
	op := Opcode(0xD123)

	assert.Equal(t, uint8(0xD), op.W())
	assert.Equal(t, uint8(0x1), op.X())
	assert.Equal(t, uint8(0x2), op.Y())
	assert.Equal(t, uint8(0x3), op.Z())
	assert.Equal(t, uint8(0x23), op.KK())
	assert.Equal(t, uint8(0xD1), op.WX())
	assert.Equal(t, uint16(0x123), op.NNN())
	assert.Equal(t, "D123", op.String())
}

func TestOpcodeFieldMasks(t *testing.T) {
	tests := []struct {
		op  Opcode
		nnn uint16
		kk  uint8
	}{
		{0x0000, 0x000, 0x00},
		{0xFFFF, 0xFFF, 0xFF},
		{0x1ABC, 0xABC, 0xBC},
		{0xA200, 0x200, 0x00},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.nnn, tt.op.NNN())
		assert.Equal(t, tt.kk, tt.op.KK())
	}
}
