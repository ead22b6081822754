package cpu

import "math/rand/v2"

// Source supplies the random bytes consumed by the RND instruction.
//
// Randomness is injected rather than baked in so that the interpreter
// stays deterministic under test: hand a FixedSource to New and every
// run of a ROM produces identical output.
type Source interface {

	// Next returns one random byte.
	Next() uint8
}

// RandomSource is the Source used for actually playing games, backed
// by math/rand.
type RandomSource struct{}

// Next returns one random byte.
func (RandomSource) Next() uint8 {
	return uint8(rand.UintN(256))
}

// FixedSource is a Source which always returns the same value, for
// golden-output tests.
type FixedSource struct {
	// Value is what Next will return, every time.
	Value uint8
}

// Next returns the fixed value.
func (f FixedSource) Next() uint8 {
	return f.Value
}
