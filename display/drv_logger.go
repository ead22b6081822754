// drv_logger.go records the operations applied to a surface, on top of
// an ordinary bitmap.
//
// This is used in our tests to confirm the CPU touched the display in
// the way we expect, without scraping pixels.

package display

import "fmt"

// LoggingSurface is a bitmap which additionally records every
// operation applied to it.
type LoggingSurface struct {
	*Bitmap

	ops []string
}

// NewLoggingSurface returns a recording surface in the base
// resolution.
func NewLoggingSurface() *LoggingSurface {
	return &LoggingSurface{Bitmap: NewBitmap()}
}

// SetHighRes records the call, then forwards it.
func (ls *LoggingSurface) SetHighRes(enabled bool) {
	ls.ops = append(ls.ops, fmt.Sprintf("highres(%v)", enabled))
	ls.Bitmap.SetHighRes(enabled)
}

// Clear records the call, then forwards it.
func (ls *LoggingSurface) Clear() {
	ls.ops = append(ls.ops, "clear")
	ls.Bitmap.Clear()
}

// ScrollLeft records the call, then forwards it.
func (ls *LoggingSurface) ScrollLeft() {
	ls.ops = append(ls.ops, "scroll-left")
	ls.Bitmap.ScrollLeft()
}

// ScrollRight records the call, then forwards it.
func (ls *LoggingSurface) ScrollRight() {
	ls.ops = append(ls.ops, "scroll-right")
	ls.Bitmap.ScrollRight()
}

// ScrollDown records the call, then forwards it.
func (ls *LoggingSurface) ScrollDown(n int) {
	ls.ops = append(ls.ops, fmt.Sprintf("scroll-down(%d)", n))
	ls.Bitmap.ScrollDown(n)
}

// Operations returns the operations which have been applied.
//
// This is part of the Recorder interface.
func (ls *LoggingSurface) Operations() []string {
	return ls.ops
}

// ResetOperations removes any stored state.
//
// This is part of the Recorder interface.
func (ls *LoggingSurface) ResetOperations() {
	ls.ops = nil
}

// init registers our driver, by name.
func init() {
	Register("logger", func() Surface {
		return NewLoggingSurface()
	})
}
