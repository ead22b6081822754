package display

// blit8 XOR-draws one sprite byte, most significant bit first, at
// pixel row y starting at column x.  Both coordinates wrap via modulo,
// so x wraps independently on every row.  It returns true if any pixel
// went from on to off; a pixel switching on is never a collision.
func blit8(s Surface, x, y int, b uint8) bool {
	w := s.Width()
	h := s.Height()

	py := y % h

	collision := false
	for bit := 0; bit < 8; bit++ {
		px := (x + bit) % w

		spriteBit := (b>>(7-bit))&1 == 1

		old := s.Pixel(px, py)
		now := old != spriteBit
		s.SetPixel(px, py, now)

		if old && !now {
			collision = true
		}
	}
	return collision
}

// Draw blits a standard 8-pixel-wide sprite at (x, y), one byte per
// row, and reports whether any previously-set pixel was cleared.
func Draw(s Surface, x, y uint8, sprite []uint8) bool {
	collision := false
	for row, b := range sprite {
		if blit8(s, int(x), int(y)+row, b) {
			collision = true
		}
	}
	return collision
}

// DrawBig blits a SuperChip 16x16 sprite at (x, y).  The 32 bytes are
// sixteen row-pairs of (left, right); the right byte lands at x+8 and
// only when high resolution is active - in low resolution the right
// half is simply dropped, not scaled.  The collision flag is the OR of
// the per-byte draws.
func DrawBig(s Surface, x, y uint8, sprite []uint8) bool {
	collision := false
	for row := 0; row < 16; row++ {
		if blit8(s, int(x), int(y)+row, sprite[row*2]) {
			collision = true
		}

		if s.HighRes() {
			if blit8(s, int(x)+8, int(y)+row, sprite[row*2+1]) {
				collision = true
			}
		}
	}
	return collision
}
