package cpu

import (
	"fmt"
	"log/slog"

	"github.com/chip8ulator/chip8ulator/display"
	"github.com/chip8ulator/chip8ulator/memory"
)

// execute runs a single decoded instruction and returns the updated
// program counter.
//
// An instruction either fully applies its effects, or fails before
// applying any of them - on error the returned counter is the current
// one and the caller must not advance.
func (c *CPU) execute(op Opcode) (uint16, error) {
	switch op.W() {

	case 0x0:
		return c.executeSys(op)

	// 1nnn - JP addr
	case 0x1:
		return op.NNN(), nil

	// 2nnn - CALL addr
	case 0x2:
		if err := c.stack.push(c.pc); err != nil {
			return c.pc, fmt.Errorf("%w: CALL at %04X", err, c.pc)
		}
		return op.NNN(), nil

	// 3xkk - SE Vx, kk
	case 0x3:
		return c.skipIf(c.v[op.X()] == op.KK()), nil

	// 4xkk - SNE Vx, kk
	case 0x4:
		return c.skipIf(c.v[op.X()] != op.KK()), nil

	// 5xy0 - SE Vx, Vy
	case 0x5:
		if op.Z() != 0 {
			return c.badOpcode(op)
		}
		return c.skipIf(c.v[op.X()] == c.v[op.Y()]), nil

	// 6xkk - LD Vx, kk
	case 0x6:
		c.v[op.X()] = op.KK()
		return c.next(), nil

	// 7xkk - ADD Vx, kk (no carry flag)
	case 0x7:
		c.v[op.X()] += op.KK()
		return c.next(), nil

	case 0x8:
		return c.executeALU(op)

	// 9xy0 - SNE Vx, Vy
	case 0x9:
		if op.Z() != 0 {
			return c.badOpcode(op)
		}
		return c.skipIf(c.v[op.X()] != c.v[op.Y()]), nil

	// Annn - LD I, addr
	case 0xA:
		c.i = op.NNN()
		return c.next(), nil

	// Bnnn - JP V0, addr
	case 0xB:
		return op.NNN() + uint16(c.v[0]), nil

	// Cxkk - RND Vx, kk
	case 0xC:
		c.v[op.X()] = c.source.Next() & op.KK()
		return c.next(), nil

	// Dxyn - DRW Vx, Vy, n
	case 0xD:
		return c.executeDraw(op), nil

	case 0xE:
		switch op.KK() {
		// Ex9E - SKP Vx
		case 0x9E:
			return c.skipIf(c.Keyboard.Pressed(c.v[op.X()])), nil
		// ExA1 - SKNP Vx
		case 0xA1:
			return c.skipIf(!c.Keyboard.Pressed(c.v[op.X()])), nil
		}
		return c.badOpcode(op)

	case 0xF:
		return c.executeMisc(op)
	}

	return c.badOpcode(op)
}

// executeSys handles the 0-prefixed family: the display controls, the
// subroutine return, and the two instructions which hand control back
// to the host.
func (c *CPU) executeSys(op Opcode) (uint16, error) {
	switch {

	// 0000 - halt in place; surfaced to the host, which decides
	// whether that freezes the machine or ends the session.
	case op == 0x0000:
		c.logger.Debug("freeze executed",
			slog.String("pc", fmt.Sprintf("%04X", c.pc)))
		return c.pc, ErrFreeze

	// 00Cn - SCD n: scroll down
	case op.WX() == 0x00 && op.Y() == 0xC:
		c.Display.ScrollDown(int(op.Z()))
		return c.next(), nil

	// 00E0 - CLS
	case op == 0x00E0:
		c.Display.Clear()
		return c.next(), nil

	// 00EE - RET
	case op == 0x00EE:
		addr, err := c.stack.pop()
		if err != nil {
			return c.pc, fmt.Errorf("%w: RET at %04X", err, c.pc)
		}
		return addr + 2, nil

	// 00FB - SCR: scroll right
	case op == 0x00FB:
		c.Display.ScrollRight()
		return c.next(), nil

	// 00FC - SCL: scroll left
	case op == 0x00FC:
		c.Display.ScrollLeft()
		return c.next(), nil

	// 00FD - EXIT: surfaced to the host.
	case op == 0x00FD:
		c.logger.Debug("exit executed",
			slog.String("pc", fmt.Sprintf("%04X", c.pc)))
		return c.pc, ErrExit

	// 00FE - LOW: standard resolution
	case op == 0x00FE:
		c.Display.SetHighRes(false)
		return c.next(), nil

	// 00FF - HIGH: doubled resolution
	case op == 0x00FF:
		c.Display.SetHighRes(true)
		return c.next(), nil
	}

	// 0nnn - SYS addr: machine-code call on the original hardware,
	// meaningless here.
	return c.badOpcode(op)
}

// executeALU handles the 8xyz register-register family.
//
// The flag rules are precise and occasionally odd; every one of them
// is the architecture's documented behaviour, including SHL leaving
// the raw masked bit (0 or 128) in the flag rather than a clean 0/1.
func (c *CPU) executeALU(op Opcode) (uint16, error) {
	vx := c.v[op.X()]
	vy := c.v[op.Y()]

	switch op.Z() {

	// 8xy0 - LD Vx, Vy
	case 0x0:
		c.v[op.X()] = vy

	// 8xy1 - OR Vx, Vy
	case 0x1:
		c.v[op.X()] = vx | vy

	// 8xy2 - AND Vx, Vy
	case 0x2:
		c.v[op.X()] = vx & vy

	// 8xy3 - XOR Vx, Vy
	case 0x3:
		c.v[op.X()] = vx ^ vy

	// 8xy4 - ADD Vx, Vy: flag is the carry
	case 0x4:
		sum := uint16(vx) + uint16(vy)
		c.v[op.X()] = uint8(sum)
		if sum > 0xFF {
			c.setFlag(1)
		} else {
			c.setFlag(0)
		}

	// 8xy5 - SUB Vx, Vy: flag is Vx > Vy, compared before the
	// subtraction - not a borrow bit
	case 0x5:
		if vx > vy {
			c.setFlag(1)
		} else {
			c.setFlag(0)
		}
		c.v[op.X()] = vx - vy

	// 8xy6 - SHR Vx: flag is the bit shifted out
	case 0x6:
		c.setFlag(vx & 0x01)
		c.v[op.X()] = vx >> 1

	// 8xy7 - SUBN Vx, Vy: SUB with the operands swapped
	case 0x7:
		if vy > vx {
			c.setFlag(1)
		} else {
			c.setFlag(0)
		}
		c.v[op.X()] = vy - vx

	// 8xyE - SHL Vx: flag is the raw high bit, 0 or 128
	case 0xE:
		c.setFlag(vx & 0x80)
		c.v[op.X()] = vx << 1

	default:
		return c.badOpcode(op)
	}

	return c.next(), nil
}

// executeDraw handles Dxyn.  A height of zero selects the SuperChip
// 16x16 sprite, which consumes 32 bytes from memory; anything else is
// the standard blit of n bytes.  The collision result lands in the
// flag register.
func (c *CPU) executeDraw(op Opcode) uint16 {
	x := c.v[op.X()]
	y := c.v[op.Y()]

	var collision bool
	if op.Z() == 0 {
		collision = display.DrawBig(c.Display, x, y, c.Memory.GetRange(c.i, 32))
	} else {
		collision = display.Draw(c.Display, x, y, c.Memory.GetRange(c.i, int(op.Z())))
	}

	if collision {
		c.setFlag(1)
	} else {
		c.setFlag(0)
	}
	return c.next()
}

// executeMisc handles the F-prefixed family: timers, the key-wait,
// memory transfers and the font lookups.
func (c *CPU) executeMisc(op Opcode) (uint16, error) {
	x := op.X()

	switch op.KK() {

	// Fx07 - LD Vx, DT
	case 0x07:
		c.v[x] = c.delay

	// Fx0A - LD Vx, K: wait for a keypress.
	//
	// Until a key arrives we return the current program counter, so
	// the same instruction is fetched again next cycle - the CPU
	// visibly spins here, polling, which is exactly what the
	// hardware did.  The keyboard's state machine remembers that a
	// wait is in progress across those cycles.
	case 0x0A:
		if key, ok := c.Keyboard.TakeKey(); ok {
			c.v[x] = key
			return c.next(), nil
		}

		c.Keyboard.StartWait()
		return c.pc, nil

	// Fx15 - LD DT, Vx
	case 0x15:
		c.delay = c.v[x]

	// Fx18 - LD ST, Vx
	case 0x18:
		c.sound = c.v[x]

	// Fx1E - ADD I, Vx
	case 0x1E:
		c.i += uint16(c.v[x])

	// Fx29 - LD F, Vx: address of the 5-byte glyph
	case 0x29:
		c.i = memory.FontOffset + uint16(c.v[x])*5

	// Fx30 - LD HF, Vx: address of the 10-byte glyph
	case 0x30:
		c.i = memory.BigFontOffset + uint16(c.v[x])*10

	// Fx33 - LD B, Vx: BCD digits to memory at I
	case 0x33:
		vx := c.v[x]
		c.Memory.Set(c.i, vx/100)
		c.Memory.Set(c.i+1, (vx/10)%10)
		c.Memory.Set(c.i+2, vx%10)

	// Fx55 - LD [I], Vx: copy V0..Vx to memory
	case 0x55:
		for r := uint8(0); r <= x; r++ {
			c.Memory.Set(c.i+uint16(r), c.v[r])
		}

	// Fx65 - LD Vx, [I]: copy memory to V0..Vx
	case 0x65:
		for r := uint8(0); r <= x; r++ {
			c.v[r] = c.Memory.Get(c.i + uint16(r))
		}

	// Fx75 - LD R, Vx: save V0..Vx to the flag bank
	case 0x75:
		if int(x) >= len(c.flags) {
			return c.pc, fmt.Errorf("%w: save V0..V%X at %04X", ErrFlagRange, x, c.pc)
		}
		for r := uint8(0); r <= x; r++ {
			c.flags[r] = c.v[r]
		}

	// Fx85 - LD Vx, R: restore V0..Vx from the flag bank
	case 0x85:
		if int(x) >= len(c.flags) {
			return c.pc, fmt.Errorf("%w: restore V0..V%X at %04X", ErrFlagRange, x, c.pc)
		}
		for r := uint8(0); r <= x; r++ {
			c.v[r] = c.flags[r]
		}

	default:
		return c.badOpcode(op)
	}

	return c.next(), nil
}
