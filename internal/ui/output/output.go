// Package output decides how pixi colors what it writes to the terminal.
package output

import (
	"io"
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// IsCI reports whether pixi runs on a CI system.
func IsCI() bool {
	ci := os.Getenv("CI")
	return ci == "true" || ci == "1"
}

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec // File descriptors fit in an int
}

// Profile returns the color profile for writing to w.
// NO_COLOR disables colors everywhere. CI logs get plain ANSI colors, terminals get whatever
// they advertise, and anything else is written without escape sequences.
func Profile(w io.Writer) termenv.Profile {
	switch {
	case os.Getenv("NO_COLOR") != "":
		return termenv.Ascii
	case IsCI():
		return termenv.ANSI
	case IsTerminal(w):
		return termenv.EnvColorProfile()
	default:
		return termenv.Ascii
	}
}

// New creates a termenv.Output for w using Profile. A nil writer selects os.Stderr.
func New(w io.Writer, opts ...termenv.OutputOption) *termenv.Output {
	if w == nil {
		w = os.Stderr
	}

	opts = append(opts,
		termenv.WithProfile(Profile(w)),
		termenv.WithTTY(true),
	)

	return termenv.NewOutput(w, opts...)
}
