// Package cpu is the main package for our emulator, it implements the
// CHIP-8 instruction set along with the SuperChip extensions.
//
// The package contains the fetch/decode/dispatch core and the timing
// model which converts wall-clock time into instruction and timer
// cycles.  The display and the randomness source are supplied by the
// caller; keyboard input is injected via the embedded Keyboard.
package cpu

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chip8ulator/chip8ulator/display"
	"github.com/chip8ulator/chip8ulator/keyboard"
	"github.com/chip8ulator/chip8ulator/memory"
)

var (
	// ErrExit will be used to handle a program executing the EXIT
	// instruction.
	//
	// It should be handled and expected by callers.
	ErrExit = errors.New("EXIT")

	// ErrFreeze will be used to note that the program executed the
	// instruction which halts the machine in place.  Whether that
	// stops the whole emulator, or just the fetch/execute loop, is
	// the caller's decision.
	//
	// It should be handled and expected by callers.
	ErrFreeze = errors.New("FREEZE")

	// ErrBadOpcode is returned when an instruction matches no known
	// encoding.  The program is broken, or we're executing data.
	ErrBadOpcode = errors.New("unknown opcode")

	// ErrStackOverflow is returned on a CALL beyond the fixed stack
	// depth.
	ErrStackOverflow = errors.New("stack overflow")

	// ErrStackUnderflow is returned on a RET with nothing on the
	// stack.
	ErrStackUnderflow = errors.New("stack underflow")

	// ErrFlagRange is returned when a flag save/restore names more
	// registers than the eight-slot flag bank holds.
	ErrFlagRange = errors.New("flag register out of range")
)

// DefaultClockRate is the CPU clock in Hz.  SuperChip content is
// usually happier around 1000.
const DefaultClockRate = 500

// tickRate is the fixed rate, in Hz, at which the delay and sound
// registers count down.  The architecture pins this at 60 regardless
// of the CPU clock.
const tickRate = 60

// CPU is the object that holds our emulator state.
type CPU struct {

	// i is the address register; only 12 bits are significant.
	i uint16

	// v are the 16 general-purpose registers.  v[15] doubles as the
	// carry/borrow/collision flag, that aliasing is the
	// architecture's, not ours.
	v [16]uint8

	// flags is the SuperChip 8-slot flag bank, touched only by the
	// save/restore-flags instructions.
	flags [8]uint8

	// delay counts down to zero at 60Hz.
	delay uint8

	// sound counts down to zero at 60Hz; the host sounds a tone
	// while it is nonzero.
	sound uint8

	// pc is the program counter.
	pc uint16

	// stack holds subroutine return addresses.
	stack stack

	// Memory contains the memory the system runs with.
	Memory *memory.Memory

	// Display is the surface we draw upon.
	Display display.Surface

	// Keyboard holds the state of the hex pad; the host injects key
	// events into it directly.
	Keyboard *keyboard.Keyboard

	// start anchors the elapsed-time measurements the clocks use.
	start time.Time

	// clockRate is the configured CPU clock in Hz.
	clockRate uint32

	// cpuClock paces instruction execution in self-timed mode.
	cpuClock clock

	// tickClock paces the 60Hz register decrements in self-timed
	// mode.
	tickClock clock

	// perTick is how many instructions each 60Hz tick is worth, used
	// only by the externally-timed mode.  Kept in lockstep with
	// clockRate by SetClockRate.
	perTick uint32

	// source supplies random bytes.
	source Source

	// logger is where we send debug output.
	logger *slog.Logger
}

// New returns an interpreter with the given program in memory and the
// program counter at the entry point.
//
// The ROM must fit below the end of the 4K address space; that is the
// caller's contract, we don't police it.  A nil source gets the
// standard random one, a nil logger discards everything.
func New(rom []uint8, surface display.Surface, source Source, logger *slog.Logger) *CPU {
	if source == nil {
		source = RandomSource{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	c := &CPU{
		Memory:   memory.New(rom),
		Display:  surface,
		Keyboard: keyboard.New(),
		pc:       memory.ProgramOffset,
		start:    time.Now(),
		source:   source,
		logger:   logger,
	}

	c.clockRate = DefaultClockRate
	c.perTick = DefaultClockRate / tickRate
	c.cpuClock = newClock(DefaultClockRate)
	c.tickClock = newClock(tickRate)

	return c
}

// ClockRate returns the configured CPU clock, in Hz.
func (c *CPU) ClockRate() uint32 {
	return c.clockRate
}

// SetClockRate reconfigures the CPU clock.
//
// The instructions-per-tick ratio and the clock period must move
// together, so this is the only place either changes.
func (c *CPU) SetClockRate(rateHz uint32) {
	// The timers tick at 60Hz, so that is the slowest sensible CPU
	// clock - and a zero rate would leave the clock with no period.
	if rateHz < tickRate {
		rateHz = tickRate
	}

	c.clockRate = rateHz
	c.perTick = rateHz / tickRate
	c.cpuClock.setRate(rateHz)

	c.logger.Debug("clock rate changed",
		slog.Int("hz", int(rateHz)),
		slog.Int("perTick", int(c.perTick)))
}

// AddClockRate adjusts the CPU clock by the given amount, which may be
// negative.  The clock never drops below the 60Hz timer rate.
func (c *CPU) AddClockRate(delta int32) {
	rate := int64(c.clockRate) + int64(delta)
	if rate >= tickRate {
		c.SetClockRate(uint32(rate))
	}
}

// Sound returns the sound register; the host should play a tone while
// this is nonzero.
func (c *CPU) Sound() uint8 {
	return c.sound
}

// Delay returns the delay register.
func (c *CPU) Delay() uint8 {
	return c.delay
}

// flag returns the flag register.
//
// The flag register is general register 15: several instructions store
// their carry/borrow/collision result there, and these two accessors
// keep those call sites honest about it.
func (c *CPU) flag() uint8 {
	return c.v[0xF]
}

// setFlag sets the flag register.
func (c *CPU) setFlag(value uint8) {
	c.v[0xF] = value
}

// DecrementTimers moves the delay and sound registers one step toward
// zero.
func (c *CPU) DecrementTimers() {
	if c.delay > 0 {
		c.delay--
	}
	if c.sound > 0 {
		c.sound--
	}
}

// Step fetches, decodes and executes a single instruction, advancing
// the program counter to wherever execution continues.
//
// On an error the program counter is left on the failing instruction.
func (c *CPU) Step() error {
	op := Opcode(c.Memory.GetU16(c.pc))

	next, err := c.execute(op)
	if err != nil {
		return err
	}

	c.pc = next
	return nil
}

// Cycle advances the emulation by however much wall-clock time has
// passed since it was last called.
//
// It may be called at any rate - a display refresh loop is typical -
// and runs exactly the number of timer decrements and instructions
// which are actually due, so the effective speed is independent of the
// caller's scheduling and self-corrects against drift.
func (c *CPU) Cycle() error {
	elapsed := time.Since(c.start).Nanoseconds()

	for range c.tickClock.due(elapsed) {
		c.DecrementTimers()
	}

	for range c.cpuClock.due(elapsed) {
		if err := c.Step(); err != nil {
			return err
		}
	}

	return nil
}

// Cycle60Hz advances the emulation by one sixtieth of a second: one
// timer decrement and the corresponding slice of instructions.
//
// This MUST be called at exactly 60Hz - it trusts the caller's
// scheduler completely and never looks at the wall clock.  Hosts with
// a vsync-locked 60Hz update callback want this; everyone else should
// use Cycle.
func (c *CPU) Cycle60Hz() error {
	c.DecrementTimers()

	for range c.perTick {
		if err := c.Step(); err != nil {
			return err
		}
	}

	return nil
}

// Reset returns the machine to its power-on state.
//
// CPU-visible state is cleared: registers, stack, timers, the display,
// and any key-wait in progress.  The ROM already resident in memory is
// left exactly as it is - a program which rewrote itself stays
// rewritten.
func (c *CPU) Reset() {
	c.i = 0
	c.v = [16]uint8{}
	c.flags = [8]uint8{}
	c.delay = 0
	c.sound = 0
	c.pc = memory.ProgramOffset
	c.stack.clear()

	c.Display.SetHighRes(false)
	c.Display.Clear()
	c.Keyboard.Reset()

	c.start = time.Now()
	c.cpuClock.rewind()
	c.tickClock.rewind()

	c.logger.Debug("reset")
}

// next returns the program counter advanced over the current
// instruction.
func (c *CPU) next() uint16 {
	return c.pc + 2
}

// skipIf returns the program counter advanced over the following
// instruction too, when the condition holds.
func (c *CPU) skipIf(skip bool) uint16 {
	if skip {
		return c.pc + 4
	}
	return c.pc + 2
}

// badOpcode logs and fails an instruction which matches no known
// encoding.
func (c *CPU) badOpcode(op Opcode) (uint16, error) {
	c.logger.Error("unknown opcode",
		slog.String("opcode", op.String()),
		slog.String("pc", fmt.Sprintf("%04X", c.pc)))

	return c.pc, fmt.Errorf("%w %s at %04X", ErrBadOpcode, op, c.pc)
}
