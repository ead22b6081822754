// Package version exists solely so that we can store the version of this application
// in one location, despite needing it in more than one place within the application.
//
// Duplicating the version number/tag in multiple places is a recipe for drift and
// confusion, so this internal-package is the result.
package version

import (
	"fmt"

	"github.com/retroenv/retrogolib/buildinfo"
)

var (
	// version is populated with our release tag, via a Github Action.
	//
	// See .github/build in the source distribution for details.
	version = "unreleased"

	// commit is the git revision we were built from, when known.
	commit = ""

	// date is when we were built, when known.
	date = ""
)

// GetVersionBanner returns a banner which is suitable for printing, to show our name,
// version, and homepage link.
func GetVersionBanner() string {

	str := fmt.Sprintf("chip8ulator %s\n%s\n", GetVersionString(), "https://github.com/chip8ulator/chip8ulator/")
	return str
}

// GetVersionString returns our version number as a string.
func GetVersionString() string {
	return buildinfo.Version(version, commit, date)
}
