// Integration tests :)

package main

import (
	"testing"

	"github.com/chip8ulator/chip8ulator/cpu"
	"github.com/chip8ulator/chip8ulator/display"
)

// TestLoadROMEmbedded ensures running with no path serves the bundled
// game.
func TestLoadROMEmbedded(t *testing.T) {

	rom, name, err := loadROM("")
	if err != nil {
		t.Fatalf("failed to load the bundled game: %s", err)
	}
	if len(rom) == 0 {
		t.Fatalf("the bundled game is empty")
	}
	if name == "" {
		t.Fatalf("the bundled game has no name")
	}
}

// TestLoadROMMissing ensures a missing file is reported.
func TestLoadROMMissing(t *testing.T) {

	_, _, err := loadROM("this/path/does/not/exist.ch8")
	if err == nil {
		t.Fatalf("expected an error, got none")
	}
}

// TestPlayPong runs the bundled game for a couple of simulated
// seconds, with a little keyboard input, and confirms it draws.
func TestPlayPong(t *testing.T) {

	rom, _, err := loadROM("")
	if err != nil {
		t.Fatalf("failed to load the bundled game: %s", err)
	}

	screen, err := display.New("logger")
	if err != nil {
		t.Fatalf("failed to create a display: %s", err)
	}

	machine := cpu.New(rom, screen, nil, nil)

	for tick := 0; tick < 120; tick++ {

		// Waggle the left paddle, why not.
		machine.Keyboard.Toggle(0x1, tick%20 < 10)

		err = machine.Cycle60Hz()
		if err != nil {
			t.Fatalf("the game crashed: %s", err)
		}
	}

	// The playfield must have something on it by now.
	lit := 0
	for y := 0; y < screen.Height(); y++ {
		for x := 0; x < screen.Width(); x++ {
			if screen.Pixel(x, y) {
				lit++
			}
		}
	}
	if lit == 0 {
		t.Fatalf("two seconds in, and the screen is blank")
	}

	// Resetting must blank it again.
	machine.Reset()
	for y := 0; y < screen.Height(); y++ {
		for x := 0; x < screen.Width(); x++ {
			if screen.Pixel(x, y) {
				t.Fatalf("reset left the screen dirty")
			}
		}
	}
}
