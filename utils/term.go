package utils

import (
	"os"

	"golang.org/x/term"
)

// ColorEnabled reports whether colored output can be written to f: f must be
// a terminal and the NO_COLOR environment variable must be unset.
func ColorEnabled(f *os.File) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Decorator colors CLI output. The zero value leaves text untouched.
type Decorator struct {
	Color bool
}

// Text returns s in the color of msgType, or s unchanged when colors are
// disabled or msgType has no color.
func (d Decorator) Text(s string, msgType MessageType) string {
	c := msgType.color()
	if !d.Color || c == "" {
		return s
	}
	return c + s + DefaultColor
}
