package display

// Bitmap is the standard in-memory backing store: a plain boolean
// grid.  The frontends read it out once per frame and paint it however
// they like.
type Bitmap struct {
	width  int
	height int
	hires  bool
	pixels [][]bool
}

// NewBitmap returns a bitmap in the base low-resolution mode with
// every pixel off.
func NewBitmap() *Bitmap {
	b := &Bitmap{}
	b.resize(Width, Height)
	return b
}

// resize reallocates the grid; all pixels are lost.
func (b *Bitmap) resize(w, h int) {
	b.width = w
	b.height = h
	b.pixels = make([][]bool, h)
	for y := range b.pixels {
		b.pixels[y] = make([]bool, w)
	}
}

// Width returns the current width, in pixels.
func (b *Bitmap) Width() int {
	return b.width
}

// Height returns the current height, in pixels.
func (b *Bitmap) Height() int {
	return b.height
}

// HighRes reports whether the doubled resolution is active.
func (b *Bitmap) HighRes() bool {
	return b.hires
}

// SetHighRes switches resolution mode, clearing the display.
//
// Requesting the current mode changes nothing.
func (b *Bitmap) SetHighRes(enabled bool) {
	if b.hires == enabled {
		return
	}

	b.hires = enabled
	if enabled {
		b.resize(HighResWidth, HighResHeight)
	} else {
		b.resize(Width, Height)
	}
}

// Pixel returns the state of the pixel at (x, y).
func (b *Bitmap) Pixel(x, y int) bool {
	return b.pixels[y][x]
}

// SetPixel sets the state of the pixel at (x, y).
func (b *Bitmap) SetPixel(x, y int, on bool) {
	b.pixels[y][x] = on
}

// Clear switches every pixel off.
func (b *Bitmap) Clear() {
	for y := range b.pixels {
		for x := range b.pixels[y] {
			b.pixels[y][x] = false
		}
	}
}

// scrollAmount is the horizontal scroll distance: the hardware moves
// four pixels in high resolution but only two in low.  Authentic
// quirk, do not straighten it out.
func (b *Bitmap) scrollAmount() int {
	if b.hires {
		return 4
	}
	return 2
}

// ScrollLeft shifts every row left, discarding pixels at the edge.
func (b *Bitmap) ScrollLeft() {
	n := b.scrollAmount()

	for y := range b.pixels {
		row := b.pixels[y]
		copy(row, row[n:])
		for x := b.width - n; x < b.width; x++ {
			row[x] = false
		}
	}
}

// ScrollRight shifts every row right, discarding pixels at the edge.
func (b *Bitmap) ScrollRight() {
	n := b.scrollAmount()

	for y := range b.pixels {
		row := b.pixels[y]
		copy(row[n:], row[:b.width-n])
		for x := 0; x < n; x++ {
			row[x] = false
		}
	}
}

// ScrollDown shifts every column down by n pixels, or n/2 in low
// resolution, discarding rows at the bottom.
func (b *Bitmap) ScrollDown(n int) {
	if !b.hires {
		n /= 2
	}
	if n <= 0 {
		return
	}
	if n > b.height {
		n = b.height
	}

	for y := b.height - 1; y >= n; y-- {
		copy(b.pixels[y], b.pixels[y-n])
	}
	for y := 0; y < n; y++ {
		for x := range b.pixels[y] {
			b.pixels[y][x] = false
		}
	}
}

// init registers our driver, by name.
func init() {
	Register("bitmap", func() Surface {
		return NewBitmap()
	})
}
