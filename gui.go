// gui.go is our graphical frontend, using ebiten.
//
// ebiten's Update callback ticks at exactly 60Hz, which lets us drive
// the emulation with the externally-timed Cycle60Hz and leave the
// pacing to the game loop.

package main

import (
	"errors"
	"log/slog"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/chip8ulator/chip8ulator/cpu"
	"github.com/chip8ulator/chip8ulator/display"
)

// guiScale is how many window pixels each high-resolution pixel gets.
const guiScale = 8

// guiKeys maps the host keyboard onto the hex pad, in the traditional
// left-hand-block layout:
//
//	1 2 3 4        1 2 3 C
//	Q W E R   ->   4 5 6 D
//	A S D F        7 8 9 E
//	Z X C V        A 0 B F
var guiKeys = map[ebiten.Key]uint8{
	ebiten.KeyDigit1: 0x1, ebiten.KeyDigit2: 0x2, ebiten.KeyDigit3: 0x3, ebiten.KeyDigit4: 0xC,
	ebiten.KeyQ: 0x4, ebiten.KeyW: 0x5, ebiten.KeyE: 0x6, ebiten.KeyR: 0xD,
	ebiten.KeyA: 0x7, ebiten.KeyS: 0x8, ebiten.KeyD: 0x9, ebiten.KeyF: 0xE,
	ebiten.KeyZ: 0xA, ebiten.KeyX: 0x0, ebiten.KeyC: 0xB, ebiten.KeyV: 0xF,
}

// gui is the ebiten game driving the emulator.
type gui struct {
	machine *cpu.CPU
	screen  *display.Bitmap
	beeper  *beeper
	logger  *slog.Logger

	// frame is the texture we blit the bitmap into; it is recreated
	// whenever the resolution mode changes.
	frame *ebiten.Image

	// buf is the RGBA form of the bitmap, reused across frames.
	buf []byte

	// paused stops the emulation loop; single-stepping is allowed.
	paused bool

	// frozen is set when the program executed the halt-in-place
	// instruction; only a reset recovers.
	frozen bool
}

// Update advances the emulation by one tick.  ebiten calls this at
// 60Hz.
func (g *gui) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		g.machine.Reset()
		g.paused = false
		g.frozen = false
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}

	// Clock controls: +/- to nudge, and two presets.
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) {
		g.machine.AddClockRate(10)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) {
		g.machine.AddClockRate(-10)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit0) {
		g.machine.SetClockRate(cpu.DefaultClockRate)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit9) {
		g.machine.SetClockRate(1000)
	}

	// Pass hex-pad presses and releases through.
	for key, pad := range guiKeys {
		if inpututil.IsKeyJustPressed(key) {
			g.machine.Keyboard.Toggle(pad, true)
		}
		if inpututil.IsKeyJustReleased(key) {
			g.machine.Keyboard.Toggle(pad, false)
		}
	}

	if g.paused {
		// Single-step on demand, otherwise hold everything.
		if inpututil.IsKeyJustPressed(ebiten.KeyO) && !g.frozen {
			if err := g.machine.Step(); err != nil {
				return g.fault(err)
			}
		}
		g.beeper.Sound(false)
		return nil
	}

	if !g.frozen {
		if err := g.machine.Cycle60Hz(); err != nil {
			return g.fault(err)
		}
	}

	g.beeper.Sound(g.machine.Sound() > 0)
	return nil
}

// fault handles an error from the execution engine.  The host-control
// signals are expected; anything else kills the frontend.
func (g *gui) fault(err error) error {
	switch {
	case errors.Is(err, cpu.ErrExit):
		return ebiten.Termination
	case errors.Is(err, cpu.ErrFreeze):
		g.logger.Debug("program froze the machine")
		g.frozen = true
		return nil
	default:
		return err
	}
}

// Draw renders the bitmap, scaled up to the window.
func (g *gui) Draw(screen *ebiten.Image) {
	w := g.screen.Width()
	h := g.screen.Height()

	if g.frame == nil || g.frame.Bounds().Dx() != w {
		g.frame = ebiten.NewImage(w, h)
		g.buf = make([]byte, w*h*4)
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := byte(0)
			if g.screen.Pixel(x, y) {
				c = 0xFF
			}

			o := (y*w + x) * 4
			g.buf[o] = c
			g.buf[o+1] = c
			g.buf[o+2] = c
			g.buf[o+3] = 0xFF
		}
	}

	g.frame.WritePixels(g.buf)

	// The logical canvas is sized for the high-resolution mode, so
	// low-resolution content draws doubled.
	scale := float64(display.HighResWidth) / float64(w)

	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Scale(scale, scale)
	screen.DrawImage(g.frame, opts)
}

// Layout fixes the logical canvas at the high-resolution size.
func (g *gui) Layout(_, _ int) (int, int) {
	return display.HighResWidth, display.HighResHeight
}

// runGUI opens a window and runs the emulation until the user quits,
// the program exits, or something breaks.
func runGUI(machine *cpu.CPU, screen *display.Bitmap, name string, logger *slog.Logger) error {
	b, err := newBeeper()
	if err != nil {
		// No audio is not fatal; a nil beeper is silent.
		logger.Warn("audio unavailable", slog.String("error", err.Error()))
	}
	defer b.Close()

	g := &gui{
		machine: machine,
		screen:  screen,
		beeper:  b,
		logger:  logger,
	}

	ebiten.SetWindowSize(display.HighResWidth*guiScale, display.HighResHeight*guiScale)
	ebiten.SetWindowTitle("chip8ulator - " + name)
	ebiten.SetTPS(60)
	ebiten.SetScreenClearedEveryFrame(false)

	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}
