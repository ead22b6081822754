// beep.go generates the tone the sound register asks for.
//
// The interpreter core only counts the register down; actually making a
// noise is our job.  We keep an oto player holding an endless square
// wave, and pause/resume it as the register moves between zero and
// nonzero.

package main

import (
	"github.com/ebitengine/oto/v3"
)

const (
	// sampleRate is the rate we generate samples at, in Hz.
	sampleRate = 48000

	// toneHz is the pitch of the beep.
	toneHz = 440

	// toneVolume is the amplitude of the square wave.
	toneVolume = 8000
)

// toneReader is an endless square wave at toneHz.
type toneReader struct {
	phase int
}

// Read is part of the io.Reader interface oto streams from.
func (t *toneReader) Read(p []byte) (int, error) {
	period := sampleRate / toneHz

	// 16-bit mono, little-endian
	for i := 0; i+1 < len(p); i += 2 {
		sample := int16(-toneVolume)
		if t.phase < period/2 {
			sample = toneVolume
		}

		p[i] = byte(sample)
		p[i+1] = byte(sample >> 8)

		t.phase++
		if t.phase == period {
			t.phase = 0
		}
	}

	return len(p), nil
}

// beeper owns the audio device.
//
// A nil beeper is valid and silent, so hosts without working audio can
// carry on regardless.
type beeper struct {
	ctx    *oto.Context
	player *oto.Player
}

// newBeeper opens the audio device, which may legitimately fail on
// hosts with no sound hardware.
func newBeeper() (*beeper, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, err
	}

	// The context needs a moment before it will play anything.
	<-ready

	return &beeper{
		ctx:    ctx,
		player: ctx.NewPlayer(&toneReader{}),
	}, nil
}

// Sound starts or stops the tone; call it every frame with the state of
// the sound register.
func (b *beeper) Sound(active bool) {
	if b == nil {
		return
	}

	if active && !b.player.IsPlaying() {
		b.player.Play()
	}
	if !active && b.player.IsPlaying() {
		b.player.Pause()
	}
}

// Close releases the audio device.
func (b *beeper) Close() {
	if b == nil {
		return
	}

	b.player.Close()
}
