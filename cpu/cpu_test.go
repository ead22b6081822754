package cpu

import (
	"errors"
	"testing"
	"time"

	"github.com/retroenv/retrogolib/assert"

	"github.com/chip8ulator/chip8ulator/display"
	"github.com/chip8ulator/chip8ulator/memory"
)

// testCPU returns an interpreter with the given program, an in-memory
// bitmap and a constant randomness source.
func testCPU(rom ...uint8) *CPU {
	return New(rom, display.NewBitmap(), FixedSource{Value: 0x42}, nil)
}

// step executes n instructions, which must all succeed.
func step(t *testing.T, c *CPU, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		assert.NoError(t, c.Step())
	}
}

func TestLoadAndAdd(t *testing.T) {
	// LD V0, 5 then ADD V0, 3
	c := testCPU(0x60, 0x05, 0x70, 0x03)

	step(t, c, 2)

	assert.Equal(t, uint8(8), c.v[0])
	assert.Equal(t, uint16(memory.ProgramOffset+4), c.pc)
}

func TestClearScreen(t *testing.T) {
	c := testCPU(0x00, 0xE0)
	c.Display.SetPixel(1, 1, true)
	c.Display.SetPixel(40, 20, true)

	step(t, c, 1)

	for y := 0; y < c.Display.Height(); y++ {
		for x := 0; x < c.Display.Width(); x++ {
			assert.False(t, c.Display.Pixel(x, y))
		}
	}
}

func TestALU(t *testing.T) {
	tests := []struct {
		name string
		op   Opcode
		vx   uint8
		vy   uint8
		want uint8
		flag uint8
	}{
		{"ld", 0x8120, 0x11, 0x22, 0x22, 0x00},
		{"or", 0x8121, 0xF0, 0x0F, 0xFF, 0x00},
		{"and", 0x8122, 0xF0, 0x3C, 0x30, 0x00},
		{"xor", 0x8123, 0xFF, 0x0F, 0xF0, 0x00},
		{"add no carry", 0x8124, 0x10, 0x20, 0x30, 0x00},
		{"add carry wraps", 0x8124, 0xFF, 0x02, 0x01, 0x01},
		{"sub greater", 0x8125, 0x20, 0x10, 0x10, 0x01},
		{"sub equal is no flag", 0x8125, 0x10, 0x10, 0x00, 0x00},
		{"sub wraps", 0x8125, 0x10, 0x20, 0xF0, 0x00},
		{"shr even", 0x8126, 0x10, 0x00, 0x08, 0x00},
		{"shr odd keeps lsb", 0x8126, 0x11, 0x00, 0x08, 0x01},
		{"subn", 0x8127, 0x10, 0x20, 0x10, 0x01},
		{"subn wraps", 0x8127, 0x20, 0x10, 0xF0, 0x00},
		{"shl", 0x812E, 0x41, 0x00, 0x82, 0x00},
		// the SHL flag is the raw masked bit: 128, never 1
		{"shl high bit unnormalized", 0x812E, 0x81, 0x00, 0x02, 0x80},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testCPU()
			c.v[1] = tt.vx
			c.v[2] = tt.vy

			next, err := c.execute(tt.op)
			assert.NoError(t, err)
			assert.Equal(t, uint16(memory.ProgramOffset+2), next)
			assert.Equal(t, tt.want, c.v[1])
			assert.Equal(t, tt.flag, c.flag())
		})
	}
}

func TestALUBadEncoding(t *testing.T) {
	c := testCPU()

	_, err := c.execute(0x8128)
	assert.True(t, errors.Is(err, ErrBadOpcode))
}

func TestJumps(t *testing.T) {
	c := testCPU()

	next, err := c.execute(0x1ABC)
	assert.NoError(t, err)
	assert.Equal(t, uint16(0xABC), next)

	// Bnnn adds V0
	c.v[0] = 0x10
	next, err = c.execute(0xB300)
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x310), next)
}

func TestCallAndReturn(t *testing.T) {
	// CALL 0x204; at 0x204 a RET
	c := testCPU(0x22, 0x04, 0x00, 0x00, 0x00, 0xEE)

	step(t, c, 1)
	assert.Equal(t, uint16(0x204), c.pc)

	step(t, c, 1)
	assert.Equal(t, uint16(0x202), c.pc)
}

func TestReturnWithEmptyStack(t *testing.T) {
	c := testCPU(0x00, 0xEE)

	err := c.Step()
	assert.True(t, errors.Is(err, ErrStackUnderflow))

	// the failing instruction was not advanced over
	assert.Equal(t, uint16(memory.ProgramOffset), c.pc)
}

func TestCallOverflow(t *testing.T) {
	// CALL 0x200: an endless self-call
	c := testCPU(0x22, 0x00)

	var err error
	for i := 0; i < stackDepth; i++ {
		err = c.Step()
		assert.NoError(t, err)
	}

	err = c.Step()
	assert.True(t, errors.Is(err, ErrStackOverflow))
}

func TestSkips(t *testing.T) {
	tests := []struct {
		name string
		op   Opcode
		v1   uint8
		v2   uint8
		skip bool
	}{
		{"se imm taken", 0x3142, 0x42, 0, true},
		{"se imm not taken", 0x3142, 0x41, 0, false},
		{"sne imm taken", 0x4142, 0x41, 0, true},
		{"sne imm not taken", 0x4142, 0x42, 0, false},
		{"se reg taken", 0x5120, 0x07, 0x07, true},
		{"se reg not taken", 0x5120, 0x07, 0x08, false},
		{"sne reg taken", 0x9120, 0x07, 0x08, true},
		{"sne reg not taken", 0x9120, 0x07, 0x07, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testCPU()
			c.v[1] = tt.v1
			c.v[2] = tt.v2

			next, err := c.execute(tt.op)
			assert.NoError(t, err)

			want := uint16(memory.ProgramOffset + 2)
			if tt.skip {
				want = memory.ProgramOffset + 4
			}
			assert.Equal(t, want, next)
		})
	}

	// the last nibble of the register skips must be zero
	c := testCPU()
	_, err := c.execute(0x5121)
	assert.True(t, errors.Is(err, ErrBadOpcode))
	_, err = c.execute(0x9121)
	assert.True(t, errors.Is(err, ErrBadOpcode))
}

func TestRandom(t *testing.T) {
	c := testCPU(0xC1, 0x0F)

	// the fixed source returns 0x42; masked with 0x0F that's 0x02
	step(t, c, 1)
	assert.Equal(t, uint8(0x02), c.v[1])
}

func TestKeySkips(t *testing.T) {
	// SKP V1 / SKNP V1
	c := testCPU()
	c.v[1] = 0x5

	next, err := c.execute(0xE19E)
	assert.NoError(t, err)
	assert.Equal(t, uint16(memory.ProgramOffset+2), next)

	next, err = c.execute(0xE1A1)
	assert.NoError(t, err)
	assert.Equal(t, uint16(memory.ProgramOffset+4), next)

	c.Keyboard.Toggle(0x5, true)

	next, err = c.execute(0xE19E)
	assert.NoError(t, err)
	assert.Equal(t, uint16(memory.ProgramOffset+4), next)

	// an unknown E-encoding fails
	_, err = c.execute(0xE1FF)
	assert.True(t, errors.Is(err, ErrBadOpcode))
}

func TestKeyWait(t *testing.T) {
	// LD V5, K
	c := testCPU(0xF5, 0x0A)

	// with no key pressed the program counter never advances, no
	// matter how often the instruction re-executes
	for i := 0; i < 5; i++ {
		step(t, c, 1)
		assert.Equal(t, uint16(memory.ProgramOffset), c.pc)
	}

	// a key press lets exactly one further cycle through
	c.Keyboard.Toggle(0xB, true)
	step(t, c, 1)

	assert.Equal(t, uint8(0xB), c.v[5])
	assert.Equal(t, uint16(memory.ProgramOffset+2), c.pc)
}

func TestTimers(t *testing.T) {
	c := testCPU()
	c.v[1] = 3
	c.v[2] = 2

	// LD DT, V1 and LD ST, V2
	_, err := c.execute(0xF115)
	assert.NoError(t, err)
	_, err = c.execute(0xF218)
	assert.NoError(t, err)

	assert.Equal(t, uint8(3), c.delay)
	assert.Equal(t, uint8(2), c.Sound())

	// LD V3, DT
	_, err = c.execute(0xF307)
	assert.NoError(t, err)
	assert.Equal(t, uint8(3), c.v[3])

	// decrements stop at zero
	for i := 0; i < 5; i++ {
		c.DecrementTimers()
	}
	assert.Equal(t, uint8(0), c.delay)
	assert.Equal(t, uint8(0), c.Sound())
}

func TestAddI(t *testing.T) {
	c := testCPU()
	c.i = 0x300
	c.v[4] = 0x10

	_, err := c.execute(0xF41E)
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x310), c.i)
}

func TestFontAddresses(t *testing.T) {
	c := testCPU()

	c.v[1] = 0xA
	_, err := c.execute(0xF129)
	assert.NoError(t, err)
	assert.Equal(t, uint16(memory.FontOffset+0xA*5), c.i)

	_, err = c.execute(0xF130)
	assert.NoError(t, err)
	assert.Equal(t, uint16(memory.BigFontOffset+0xA*10), c.i)
}

func TestBCD(t *testing.T) {
	c := testCPU()
	c.i = 0x400
	c.v[7] = 159

	_, err := c.execute(0xF733)
	assert.NoError(t, err)

	assert.Equal(t, uint8(1), c.Memory.Get(0x400))
	assert.Equal(t, uint8(5), c.Memory.Get(0x401))
	assert.Equal(t, uint8(9), c.Memory.Get(0x402))
}

func TestBlockTransfer(t *testing.T) {
	c := testCPU()
	c.i = 0x400
	for r := 0; r <= 3; r++ {
		c.v[r] = uint8(r + 10)
	}

	// LD [I], V3
	_, err := c.execute(0xF355)
	assert.NoError(t, err)
	for r := 0; r <= 3; r++ {
		assert.Equal(t, uint8(r+10), c.Memory.Get(0x400+uint16(r)))
	}
	// V4 was not included
	assert.Equal(t, uint8(0), c.Memory.Get(0x404))

	// LD V3, [I] round-trips
	c.v = [16]uint8{}
	_, err = c.execute(0xF365)
	assert.NoError(t, err)
	for r := 0; r <= 3; r++ {
		assert.Equal(t, uint8(r+10), c.v[r])
	}
}

func TestFlagBank(t *testing.T) {
	c := testCPU()
	for r := 0; r <= 7; r++ {
		c.v[r] = uint8(r + 1)
	}

	// save V0..V7, the full bank
	_, err := c.execute(0xF775)
	assert.NoError(t, err)

	c.v = [16]uint8{}

	// restore V0..V4
	_, err = c.execute(0xF485)
	assert.NoError(t, err)
	for r := 0; r <= 4; r++ {
		assert.Equal(t, uint8(r+1), c.v[r])
	}
	assert.Equal(t, uint8(0), c.v[5])

	// the bank holds V0..V7; naming V8 is out of range
	_, err = c.execute(0xF875)
	assert.True(t, errors.Is(err, ErrFlagRange))
	_, err = c.execute(0xF885)
	assert.True(t, errors.Is(err, ErrFlagRange))
}

func TestDraw(t *testing.T) {
	c := testCPU()
	c.i = 0x400
	c.Memory.Set(0x400, 0xFF)
	c.v[1] = 4
	c.v[2] = 2

	// DRW V1, V2, 1
	_, err := c.execute(0xD121)
	assert.NoError(t, err)
	assert.Equal(t, uint8(0), c.flag())
	assert.True(t, c.Display.Pixel(4, 2))

	// drawing the same sprite again erases it and sets the flag
	_, err = c.execute(0xD121)
	assert.NoError(t, err)
	assert.Equal(t, uint8(1), c.flag())
	assert.False(t, c.Display.Pixel(4, 2))
}

func TestDrawBigSprite(t *testing.T) {
	c := testCPU()
	c.Display.SetHighRes(true)

	c.i = 0x400
	for n := 0; n < 32; n++ {
		c.Memory.Set(0x400+uint16(n), 0xFF)
	}
	c.v[1] = 0
	c.v[2] = 0

	// DRW V1, V2, 0 selects the 16x16 blit
	_, err := c.execute(0xD120)
	assert.NoError(t, err)
	assert.Equal(t, uint8(0), c.flag())
	assert.True(t, c.Display.Pixel(15, 15))
	assert.False(t, c.Display.Pixel(16, 0))
}

func TestResolutionOpcodes(t *testing.T) {
	c := testCPU()

	_, err := c.execute(0x00FF)
	assert.NoError(t, err)
	assert.True(t, c.Display.HighRes())
	assert.Equal(t, display.HighResWidth, c.Display.Width())

	_, err = c.execute(0x00FE)
	assert.NoError(t, err)
	assert.False(t, c.Display.HighRes())
}

func TestScrollOpcodes(t *testing.T) {
	c := testCPU()
	c.Display.SetHighRes(true)
	c.Display.SetPixel(10, 10, true)

	// 00C4 - scroll down four
	_, err := c.execute(0x00C4)
	assert.NoError(t, err)
	assert.True(t, c.Display.Pixel(10, 14))

	// 00FB - scroll right four
	_, err = c.execute(0x00FB)
	assert.NoError(t, err)
	assert.True(t, c.Display.Pixel(14, 14))

	// 00FC - scroll left four
	_, err = c.execute(0x00FC)
	assert.NoError(t, err)
	assert.True(t, c.Display.Pixel(10, 14))
}

func TestHostControl(t *testing.T) {
	c := testCPU(0x00, 0xFD)

	err := c.Step()
	assert.True(t, errors.Is(err, ErrExit))
	assert.Equal(t, uint16(memory.ProgramOffset), c.pc)

	// the freeze is a distinct signal
	freeze := testCPU(0x00, 0x00)
	err = freeze.Step()
	assert.True(t, errors.Is(err, ErrFreeze))
	assert.False(t, errors.Is(err, ErrExit))
}

func TestBadOpcodes(t *testing.T) {
	// 0x01C2 looks like a scroll-down in its third nibble, but the
	// high byte must be zero for the whole 0-family.
	bad := []Opcode{0x0123, 0x00FA, 0x01C2, 0xF1FF, 0xE100}

	for _, op := range bad {
		c := testCPU()
		_, err := c.execute(op)
		assert.True(t, errors.Is(err, ErrBadOpcode))
	}
}

func TestClockRateControls(t *testing.T) {
	c := testCPU()

	assert.Equal(t, uint32(DefaultClockRate), c.ClockRate())
	assert.Equal(t, uint32(DefaultClockRate/60), c.perTick)

	c.SetClockRate(1020)
	assert.Equal(t, uint32(1020), c.ClockRate())
	assert.Equal(t, uint32(17), c.perTick)

	c.AddClockRate(-10)
	assert.Equal(t, uint32(1010), c.ClockRate())

	// the rate can never drop below the 60Hz timer clock
	c.AddClockRate(-10000)
	assert.Equal(t, uint32(1010), c.ClockRate())

	// a direct set is floored too; zero would stop the clock
	c.SetClockRate(0)
	assert.Equal(t, uint32(60), c.ClockRate())
	assert.Equal(t, uint32(1), c.perTick)
}

func TestCycle60Hz(t *testing.T) {
	// sixteen ADD V0, 1 instructions; at the default 500Hz a tick is
	// worth eight of them
	rom := make([]uint8, 0, 32)
	for i := 0; i < 16; i++ {
		rom = append(rom, 0x70, 0x01)
	}
	c := testCPU(rom...)
	c.delay = 2

	assert.NoError(t, c.Cycle60Hz())

	assert.Equal(t, uint8(8), c.v[0])
	assert.Equal(t, uint8(1), c.delay)
}

func TestCycleSelfTimed(t *testing.T) {
	rom := make([]uint8, 0, 32)
	for i := 0; i < 16; i++ {
		rom = append(rom, 0x70, 0x01)
	}
	c := testCPU(rom...)

	// pretend 2.5ms have passed: exactly one 500Hz period is due,
	// and no 60Hz tick is anywhere close
	c.delay = 2
	c.start = time.Now().Add(-2500 * time.Microsecond)

	assert.NoError(t, c.Cycle())

	assert.Equal(t, uint8(1), c.v[0])
	assert.Equal(t, uint8(2), c.delay)
}

func TestReset(t *testing.T) {
	c := testCPU(0x60, 0x05)

	step(t, c, 1)
	c.i = 0x123
	c.delay = 9
	c.sound = 9
	c.Display.SetHighRes(true)
	c.Keyboard.Toggle(0x1, true)
	assert.NoError(t, c.stack.push(0x300))

	c.Reset()

	assert.Equal(t, uint16(0), c.i)
	assert.Equal(t, uint8(0), c.v[0])
	assert.Equal(t, uint8(0), c.delay)
	assert.Equal(t, uint8(0), c.Sound())
	assert.Equal(t, uint16(memory.ProgramOffset), c.pc)
	assert.Equal(t, 0, c.stack.sp)
	assert.False(t, c.Display.HighRes())
	assert.False(t, c.Keyboard.Pressed(0x1))

	// the ROM is still resident; re-running works
	step(t, c, 1)
	assert.Equal(t, uint8(5), c.v[0])
}
