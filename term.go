// term.go is our terminal frontend, using termbox.
//
// A goroutine is launched which collects any keyboard input and
// forwards it to the main loop, which paces itself at roughly the
// display rate and lets the self-timed Cycle work out how much
// emulation is actually due.

package main

import (
	"errors"
	"log/slog"
	"os"
	"time"
	"unicode"

	"github.com/nsf/termbox-go"
	"golang.org/x/term"

	"github.com/chip8ulator/chip8ulator/cpu"
	"github.com/chip8ulator/chip8ulator/display"
)

// termKeys maps typed characters onto the hex pad, in the same layout
// the GUI uses.
var termKeys = map[rune]uint8{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xC,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xD,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xE,
	'z': 0xA, 'x': 0x0, 'c': 0xB, 'v': 0xF,
}

// keyHold is how long a typed key counts as held.  The terminal
// reports presses but never releases, so we synthesize the release
// after a short interval.
const keyHold = 150 * time.Millisecond

// termEvent is a keyboard event from the polling goroutine.
type termEvent struct {
	ch  rune
	key termbox.Key
}

// runTerm runs the emulation in the terminal until the user quits, the
// program exits, or something breaks.
func runTerm(machine *cpu.CPU, screen *display.Bitmap, logger *slog.Logger) error {

	// switch STDIN into 'raw' mode - we must do this before
	// we setup termbox.
	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		return err
	}
	defer term.Restore(int(os.Stdin.Fd()), oldState)

	// Setup the terminal.
	if err := termbox.Init(); err != nil {
		return err
	}
	defer termbox.Close()

	b, err := newBeeper()
	if err != nil {
		// No audio is not fatal; a nil beeper is silent.
		logger.Warn("audio unavailable", slog.String("error", err.Error()))
	}
	defer b.Close()

	// Start polling for keyboard input "in the background".  The
	// goroutine dies with the process; termbox has no way to
	// interrupt a pending PollEvent cleanly.
	events := make(chan termEvent, 16)
	go func() {
		for {
			switch ev := termbox.PollEvent(); ev.Type {
			case termbox.EventKey:
				events <- termEvent{ch: ev.Ch, key: ev.Key}
			}
		}
	}()

	// held records when each pad key was last typed, so we know when
	// to synthesize its release.
	held := map[uint8]time.Time{}

	frame := time.NewTicker(time.Second / 60)
	defer frame.Stop()

	frozen := false

	for {
		select {
		case ev := <-events:
			switch ev.key {
			case termbox.KeyEsc, termbox.KeyCtrlC:
				return nil
			case termbox.KeyEnter:
				machine.Reset()
				frozen = false
				continue
			}

			if pad, ok := termKeys[unicode.ToLower(ev.ch)]; ok {
				machine.Keyboard.Toggle(pad, true)
				held[pad] = time.Now()
			}

		case <-frame.C:
			// Release keys which have been held long enough.
			for pad, since := range held {
				if time.Since(since) >= keyHold {
					machine.Keyboard.Toggle(pad, false)
					delete(held, pad)
				}
			}

			if !frozen {
				err := machine.Cycle()
				switch {
				case errors.Is(err, cpu.ErrExit):
					return nil
				case errors.Is(err, cpu.ErrFreeze):
					// Stay on the final frame until the user
					// quits, or resets.
					logger.Debug("program froze the machine")
					frozen = true
				case err != nil:
					return err
				}
			}

			b.Sound(!frozen && machine.Sound() > 0)
			drawTerm(screen)
		}
	}
}

// drawTerm renders the bitmap, one cell per pixel.
func drawTerm(screen *display.Bitmap) {
	termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)

	for y := 0; y < screen.Height(); y++ {
		for x := 0; x < screen.Width(); x++ {
			if screen.Pixel(x, y) {
				termbox.SetCell(x, y, ' ', termbox.ColorDefault, termbox.ColorWhite)
			}
		}
	}

	termbox.Flush()
}
