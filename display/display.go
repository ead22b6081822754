// Package display is an abstraction over the pixel display.
//
// The interpreter only needs a small capability set from a display:
// dimensions, the resolution mode, per-pixel access, clearing, and the
// three hardware scrolls.  The XOR-blit algorithms with their collision
// and wrap-around rules live in this package, expressed purely in terms
// of that capability set, so a backing store can be swapped - an
// in-memory bitmap, a terminal, a GPU texture - without duplicating any
// of the drawing logic.
//
// Implementations register themselves by name, and a factory can
// instantiate any of them, given just a name.
package display

import (
	"fmt"
	"strings"
)

// Base resolution; the SuperChip high-resolution mode doubles both.
const (
	Width  = 64
	Height = 32

	HighResWidth  = 128
	HighResHeight = 64
)

// Surface is the interface that must be implemented by anything that
// wishes to be used as a display backing store.
//
// Providing this interface is implemented an object may register
// itself, by name, via the Register method.
type Surface interface {

	// Width returns the current width, in pixels.
	Width() int

	// Height returns the current height, in pixels.
	Height() int

	// HighRes reports whether the doubled resolution is active.
	HighRes() bool

	// SetHighRes switches resolution mode, resizing the backing
	// store and clearing every pixel.  Requesting the mode which is
	// already active is explicitly a no-op: programs toggle
	// redundantly and that must not blank the screen.
	SetHighRes(enabled bool)

	// Pixel returns the state of the pixel at (x, y).
	Pixel(x, y int) bool

	// SetPixel sets the state of the pixel at (x, y).
	SetPixel(x, y int, on bool)

	// Clear switches every pixel off.
	Clear()

	// ScrollLeft shifts every row left: four pixels in high
	// resolution, two in low.  Vacated columns are blank and pixels
	// pushed over the edge are discarded, there is no wrap.
	ScrollLeft()

	// ScrollRight mirrors ScrollLeft.
	ScrollRight()

	// ScrollDown shifts every column down by n pixels in high
	// resolution, n/2 in low.  Vacated rows are blank and rows
	// pushed past the bottom are discarded.
	ScrollDown(n int)
}

// Recorder is an interface that allows returning the operations that
// have previously been applied to a surface.
//
// This is used solely for tests.
type Recorder interface {

	// Operations returns the operations which have been applied.
	Operations() []string

	// ResetOperations removes any stored state.
	ResetOperations()
}

// This is a map of known-drivers
var handlers = struct {
	m map[string]Constructor
}{m: make(map[string]Constructor)}

// Constructor is the signature of a constructor-function
// which is used to instantiate an instance of a driver.
type Constructor func() Surface

// Register makes a display driver available, by name.
//
// When one needs to be created the constructor can be called
// to create an instance of it.
func Register(name string, obj Constructor) {
	// Downcase for consistency.
	name = strings.ToLower(name)

	handlers.m[name] = obj
}

// New returns a surface using the named driver.
func New(name string) (Surface, error) {
	// Downcase for consistency.
	name = strings.ToLower(name)

	ctor, ok := handlers.m[name]
	if !ok {
		return nil, fmt.Errorf("failed to lookup driver by name '%s'", name)
	}

	return ctor(), nil
}

// Drivers returns all available driver-names.
//
// We hide the internal "logger" driver.
func Drivers() []string {
	valid := []string{}

	for x := range handlers.m {
		if x != "logger" {
			valid = append(valid, x)
		}
	}
	return valid
}
