// Package static is a hierarchy of files that are added to
// the generated emulator.
//
// The intention is that we can ship a playable game within our
// emulator, for people who run it with no arguments.
package static

import "embed"

//go:embed */*
var content embed.FS

// GetContent returns the embedded filesystem we store within this package.
func GetContent() embed.FS {
	return content
}
