package winloop

import (
	"fmt"
	"strings"
)

// ButtonState is the state of a mouse button or a key.
type ButtonState uint8

const (
	Released ButtonState = iota
	Pressed
)

func (s ButtonState) String() string {
	if s == Pressed {
		return "pressed"
	}
	return "released"
}

// MouseButton is a single mouse button. Buttons are bit flags so they can be
// combined into MouseButtons.
type MouseButton uint32

const (
	MouseLeft MouseButton = 1 << iota
	MouseRight
	MouseMiddle
)

// MaxExtraButton is the highest index accepted by ExtraButton.
const MaxExtraButton = 28

// ExtraButton returns the n-th extended mouse button (X1 is 0, X2 is 1).
func ExtraButton(n uint32) MouseButton {
	if n > MaxExtraButton {
		panic(fmt.Sprintf("winloop: extra mouse button %d out of range", n))
	}
	return MouseButton(1 << (3 + n))
}

func (b MouseButton) String() string {
	switch b {
	case MouseLeft:
		return "left"
	case MouseRight:
		return "right"
	case MouseMiddle:
		return "middle"
	}
	for n := uint32(0); n <= MaxExtraButton; n++ {
		if b == ExtraButton(n) {
			return fmt.Sprintf("ex%d", n)
		}
	}
	return fmt.Sprintf("MouseButton(%#x)", uint32(b))
}

// MouseButtons is a set of mouse buttons.
type MouseButtons uint32

// Buttons builds a set from the given buttons.
func Buttons(buttons ...MouseButton) MouseButtons {
	var set MouseButtons
	for _, b := range buttons {
		set |= MouseButtons(b)
	}
	return set
}

// Contains reports whether b is in the set.
func (s MouseButtons) Contains(b MouseButton) bool {
	return uint32(s)&uint32(b) == uint32(b)
}

func (s MouseButtons) String() string {
	var names []string
	for i := 0; i < 32; i++ {
		if b := MouseButton(1 << i); s.Contains(b) {
			names = append(names, b.String())
		}
	}
	return "[" + strings.Join(names, ", ") + "]"
}

// MouseState is the pointer position in client coordinates and the buttons held.
type MouseState struct {
	Position Point[int]
	Buttons  MouseButtons
}

// MouseInput is a button press or release.
type MouseInput struct {
	Button      MouseButton
	ButtonState ButtonState
	MouseState  MouseState
}

// MouseWheel is a wheel rotation. Delta is in multiples of the platform's
// wheel notch (120 on Win32).
type MouseWheel struct {
	Delta      int16
	Horizontal bool
	MouseState MouseState
}

// KeyCode identifies a physical key.
type KeyCode struct {
	// VKey is the virtual key code.
	VKey uint32
	// ScanCode is the hardware scan code, zero when the platform does not report it.
	ScanCode uint32
	// Name is the platform key name, if the platform reports names instead of codes.
	Name string
}

// KeyInput is a key press or release.
type KeyInput struct {
	State     ButtonState
	KeyCode   KeyCode
	PrevState ButtonState
}

// DropFiles lists the files dropped onto a window.
type DropFiles struct {
	Position Point[int]
	Files    []string
}

// Attribute is the conversion state of a character in an IME composition.
type Attribute uint8

const (
	AttrInput Attribute = iota
	AttrTargetConverted
	AttrConverted
	AttrTargetNotConverted
	AttrError
	AttrFixedConverted
)

// CompositionChar is a character of an IME composition string.
type CompositionChar struct {
	Char rune
	Attr Attribute
}

// Composition is the string an IME is composing.
type Composition []CompositionChar

// NewComposition pairs the runes of s with attrs. Extra runes or attributes are ignored.
func NewComposition(s string, attrs []Attribute) Composition {
	var c Composition
	i := 0
	for _, r := range s {
		if i >= len(attrs) {
			break
		}
		c = append(c, CompositionChar{Char: r, Attr: attrs[i]})
		i++
	}
	return c
}

func (c Composition) String() string {
	var sb strings.Builder
	for _, ch := range c {
		sb.WriteRune(ch.Char)
	}
	return sb.String()
}

// CandidateList is the list of conversion candidates offered by an IME.
type CandidateList struct {
	List      []string
	Selection int
}

// IMEUpdate is a change of the IME composition.
type IMEUpdate struct {
	Composition Composition
	// Candidates is nil when the IME offers no candidate list.
	Candidates *CandidateList
}

// IMEResult ends a composition. Text is empty and Committed false when the
// composition was cancelled.
type IMEResult struct {
	Text      string
	Committed bool
}
