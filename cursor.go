package winloop

import (
	"fmt"
	"strings"
)

// Cursor is a system cursor shape.
type Cursor uint8

const (
	// NoCursor leaves the cursor untouched when the pointer enters the window.
	NoCursor Cursor = iota
	CursorAppStarting
	CursorArrow
	CursorCross
	CursorHand
	CursorHelp
	CursorIBeam
	CursorNo
	CursorSizeAll
	CursorSizeNESW
	CursorSizeNS
	CursorSizeNWSE
	CursorSizeWE
	CursorUpArrow
	CursorWait
)

var cursorNames = [...]string{
	NoCursor:          "none",
	CursorAppStarting: "app-starting",
	CursorArrow:       "arrow",
	CursorCross:       "cross",
	CursorHand:        "hand",
	CursorHelp:        "help",
	CursorIBeam:       "ibeam",
	CursorNo:          "no",
	CursorSizeAll:     "size-all",
	CursorSizeNESW:    "size-nesw",
	CursorSizeNS:      "size-ns",
	CursorSizeNWSE:    "size-nwse",
	CursorSizeWE:      "size-we",
	CursorUpArrow:     "up-arrow",
	CursorWait:        "wait",
}

func (c Cursor) String() string {
	if int(c) < len(cursorNames) {
		return cursorNames[c]
	}
	return fmt.Sprintf("Cursor(%d)", uint8(c))
}

// ParseCursor returns the cursor with the given name.
func ParseCursor(name string) (Cursor, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return NoCursor, nil
	}
	for c, n := range cursorNames {
		if n == name {
			return Cursor(c), nil
		}
	}
	return NoCursor, fmt.Errorf("winloop: unknown cursor %q", name)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Cursor) UnmarshalText(text []byte) error {
	v, err := ParseCursor(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (c Cursor) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}
