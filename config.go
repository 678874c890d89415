package winloop

import (
	"fmt"
	"strings"

	"github.com/esimov/winloop/resource"
)

// Style is the set of decorations of a window frame.
type Style uint32

const (
	// StyleTitle gives the window a caption bar.
	StyleTitle Style = 1 << iota
	// StyleResizable gives the window a sizing border.
	StyleResizable
	// StyleMinimize adds the minimize box.
	StyleMinimize
	// StyleMaximize adds the maximize box.
	StyleMaximize

	// StyleBorderless is a frame without decorations.
	StyleBorderless Style = 0
	// StyleOverlapped is the usual top-level window frame.
	StyleOverlapped = StyleTitle | StyleResizable | StyleMinimize | StyleMaximize
)

var styleNames = []struct {
	style Style
	name  string
}{
	{StyleTitle, "title"},
	{StyleResizable, "resizable"},
	{StyleMinimize, "minimize"},
	{StyleMaximize, "maximize"},
}

// Has reports whether every bit of o is set in s.
func (s Style) Has(o Style) bool { return s&o == o }

func (s Style) String() string {
	switch s {
	case StyleBorderless:
		return "borderless"
	case StyleOverlapped:
		return "overlapped"
	}
	var parts []string
	for _, n := range styleNames {
		if s.Has(n.style) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// UnmarshalText implements encoding.TextUnmarshaler. It accepts
// "overlapped", "borderless" or a list of flags separated by '|' or ','.
func (s *Style) UnmarshalText(text []byte) error {
	var out Style
	fields := strings.FieldsFunc(strings.ToLower(string(text)), func(r rune) bool {
		return r == '|' || r == ',' || r == ' '
	})
next:
	for _, f := range fields {
		switch f {
		case "overlapped":
			out |= StyleOverlapped
			continue
		case "borderless":
			continue
		}
		for _, n := range styleNames {
			if n.name == f {
				out |= n.style
				continue next
			}
		}
		return fmt.Errorf("winloop: unknown window style %q", f)
	}
	*s = out
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (s Style) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Config describes a window to create.
type Config struct {
	Title string
	// Position is the top-left corner of the window on the screen.
	Position Point[int]
	// Size is the size of the client area, in SizeUnit.
	Size     Size[int]
	SizeUnit Unit
	Style    Style
	Visible  bool
	// Cursor is applied whenever the pointer enters the window.
	Cursor Cursor
	// IME associates an input method context with the window.
	IME bool
	// IMECompositionWindow and IMECandidateWindow let the system draw the
	// composition string and the candidate list.
	IMECompositionWindow bool
	IMECandidateWindow   bool
	AcceptDropFiles      bool
	Icon                 *resource.Icon
}

// DefaultConfig returns the configuration of a visible 640x480 window.
func DefaultConfig() Config {
	return Config{
		Title:                "",
		Position:             Pt(0, 0),
		Size:                 Sz(640, 480),
		SizeUnit:             Logical,
		Style:                StyleOverlapped,
		Visible:              true,
		Cursor:               CursorArrow,
		IME:                  true,
		IMECompositionWindow: true,
		IMECandidateWindow:   true,
	}
}

// PhysicalSize returns the client size in device pixels at the given DPI.
func (c *Config) PhysicalSize(dpi uint32) Size[int] {
	if c.SizeUnit == Physical {
		return c.Size
	}
	if dpi == 0 {
		dpi = DefaultDPI
	}
	return c.Size.ToPhysical(int(dpi))
}

// Validate reports configurations no platform can create.
func (c *Config) Validate() error {
	if c.Size.Width <= 0 || c.Size.Height <= 0 {
		return fmt.Errorf("winloop: invalid window size %v", c.Size)
	}
	return nil
}
