package winloop

import (
	"fmt"
	"strings"

	"golang.org/x/exp/constraints"
)

// DefaultDPI is the DPI at which logical and physical units coincide.
const DefaultDPI = 96

// Number is the set of types geometry values can be expressed in.
type Number interface {
	constraints.Integer | constraints.Float
}

// Point is a position, either on the screen or in a window's client area.
type Point[T Number] struct {
	X T `yaml:"x" cbor:"x"`
	Y T `yaml:"y" cbor:"y"`
}

// Pt is shorthand for Point[T]{X: x, Y: y}.
func Pt[T Number](x, y T) Point[T] {
	return Point[T]{X: x, Y: y}
}

// ToPhysical scales a logical point to the given DPI.
func (p Point[T]) ToPhysical(dpi T) Point[T] {
	return Point[T]{X: toPhysical(p.X, dpi), Y: toPhysical(p.Y, dpi)}
}

// ToLogical scales a physical point at the given DPI back to logical units.
func (p Point[T]) ToLogical(dpi T) Point[T] {
	return Point[T]{X: toLogical(p.X, dpi), Y: toLogical(p.Y, dpi)}
}

func (p Point[T]) String() string {
	return fmt.Sprintf("(%v, %v)", p.X, p.Y)
}

// Size is a width and height pair.
type Size[T Number] struct {
	Width  T `yaml:"width" cbor:"w"`
	Height T `yaml:"height" cbor:"h"`
}

// Sz is shorthand for Size[T]{Width: w, Height: h}.
func Sz[T Number](w, h T) Size[T] {
	return Size[T]{Width: w, Height: h}
}

// ToPhysical scales a logical size to the given DPI.
func (s Size[T]) ToPhysical(dpi T) Size[T] {
	return Size[T]{Width: toPhysical(s.Width, dpi), Height: toPhysical(s.Height, dpi)}
}

// ToLogical scales a physical size at the given DPI back to logical units.
func (s Size[T]) ToLogical(dpi T) Size[T] {
	return Size[T]{Width: toLogical(s.Width, dpi), Height: toLogical(s.Height, dpi)}
}

func (s Size[T]) String() string {
	return fmt.Sprintf("%vx%v", s.Width, s.Height)
}

func toPhysical[T Number](v, dpi T) T {
	return v * dpi / T(DefaultDPI)
}

func toLogical[T Number](v, dpi T) T {
	if dpi == 0 {
		return v
	}
	return v * T(DefaultDPI) / dpi
}

// Unit tells whether a geometry value is DPI independent or in device pixels.
type Unit uint8

const (
	// Logical values are expressed at DefaultDPI and scaled to the window DPI.
	Logical Unit = iota
	// Physical values are device pixels.
	Physical
)

func (u Unit) String() string {
	if u == Physical {
		return "physical"
	}
	return "logical"
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (u *Unit) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "", "logical":
		*u = Logical
	case "physical":
		*u = Physical
	default:
		return fmt.Errorf("winloop: unknown unit %q", text)
	}
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (u Unit) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// Geometry is the placement of a window as reported by the platform.
type Geometry struct {
	// Position is the top-left corner of the window in screen coordinates.
	Position Point[int]
	// ClientSize is the size of the client area in physical pixels.
	ClientSize Size[int]
	// DPI is the current DPI of the window.
	DPI uint32
}
