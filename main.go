// entry point

package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/chip8ulator/chip8ulator/cpu"
	"github.com/chip8ulator/chip8ulator/display"
	"github.com/chip8ulator/chip8ulator/static"
	"github.com/chip8ulator/chip8ulator/version"
)

func main() {

	// Parse our command-line flags
	ui := flag.String("ui", "gui", "The frontend to run: 'gui', or 'term'.")
	clock := flag.Uint("clock", cpu.DefaultClockRate, "The CPU clock rate, in Hz.")
	showVersion := flag.Bool("version", false, "Report our version, and exit.")
	flag.Parse()

	if *showVersion {
		fmt.Print(version.GetVersionBanner())
		return
	}

	// Setup our logging level - default to warnings or higher
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelWarn)

	// But show "everything" if $DEBUG is non.empty
	if os.Getenv("DEBUG") != "" {
		lvl.Set(slog.LevelDebug)
	}

	//
	// Create our logging handler, using the level we've just setup
	//
	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: lvl,
	}))

	//
	// Load the game to run - either the named file, or the bundled
	// one when no path was given.
	//
	rom, name, err := loadROM(flag.Arg(0))
	if err != nil {
		fmt.Printf("Error loading %s: %s\n", flag.Arg(0), err)
		os.Exit(1)
	}

	//
	// Create a new emulator.
	//
	screen := display.NewBitmap()
	machine := cpu.New(rom, screen, nil, log)
	machine.SetClockRate(uint32(*clock))

	//
	// Run the frontend we've been asked for.
	//
	switch *ui {
	case "gui":
		err = runGUI(machine, screen, name, log)
	case "term":
		err = runTerm(machine, screen, log)
	default:
		fmt.Printf("Unknown frontend '%s' - valid choices are 'gui' and 'term'.\n", *ui)
		os.Exit(1)
	}

	if err != nil {
		fmt.Printf("Error running %s: %s\n", name, err)
		os.Exit(1)
	}
}

// loadROM returns the contents of the program to run, along with the
// name we report for it.
func loadROM(path string) ([]uint8, string, error) {
	if path != "" {
		rom, err := os.ReadFile(path)
		return rom, path, err
	}

	rom, err := static.GetContent().ReadFile("roms/pong.ch8")
	return rom, "pong.ch8 [embedded]", err
}
