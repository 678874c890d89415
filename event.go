package winloop

// Event is a native message decoded into a typed value. Every event names the
// window it was delivered to.
type Event interface {
	Target() Handle
}

// Source identifies the window an event was delivered to.
type Source struct {
	Window Handle
}

// Target implements Event.
func (s Source) Target() Handle { return s.Window }

// SetTarget redirects the event to h.
func (s *Source) SetTarget(h Handle) { s.Window = h }

// On returns a Source for h.
func On(h Handle) Source { return Source{Window: h} }

// PaintEvent asks the application to draw the window.
type PaintEvent struct{ Source }

// PointerMoveEvent reports pointer motion inside the client area. Whether it
// is delivered as "cursor entered" or "cursor moved" depends on which window
// owned the pointer before.
type PointerMoveEvent struct {
	Source
	State MouseState
}

// PointerLeaveEvent reports that the pointer left the client area.
type PointerLeaveEvent struct {
	Source
	State MouseState
}

type MouseInputEvent struct {
	Source
	Input MouseInput
}

type MouseWheelEvent struct {
	Source
	Wheel MouseWheel
}

type KeyEvent struct {
	Source
	Input KeyInput
}

type CharEvent struct {
	Source
	Char rune
}

type IMEStartEvent struct{ Source }

type IMECompositionEvent struct {
	Source
	Update IMEUpdate
}

type IMEEndEvent struct {
	Source
	Result IMEResult
}

// MoveEvent reports the new screen position of the window.
type MoveEvent struct {
	Source
	Position Point[int]
}

// SizeEvent reports the new client size in physical pixels.
type SizeEvent struct {
	Source
	Size Size[int]
}

// SizeMoveEvent marks the start (Active) and the end of an interactive
// move or resize gesture.
type SizeMoveEvent struct {
	Source
	Active bool
}

type DPIEvent struct {
	Source
	DPI uint32
}

type ActivateEvent struct {
	Source
	Active bool
}

type DropEvent struct {
	Source
	Files DropFiles
}

// CloseEvent is a close attempt, subject to the close handshake.
type CloseEvent struct{ Source }

// DestroyEvent is the last event of a window.
type DestroyEvent struct{ Source }

// EventName returns a short stable name for the kind of ev.
func EventName(ev Event) string {
	switch ev.(type) {
	case PaintEvent:
		return "paint"
	case PointerMoveEvent:
		return "pointer-move"
	case PointerLeaveEvent:
		return "pointer-leave"
	case MouseInputEvent:
		return "mouse-input"
	case MouseWheelEvent:
		return "mouse-wheel"
	case KeyEvent:
		return "key"
	case CharEvent:
		return "char"
	case IMEStartEvent:
		return "ime-start"
	case IMECompositionEvent:
		return "ime-composition"
	case IMEEndEvent:
		return "ime-end"
	case MoveEvent:
		return "move"
	case SizeEvent:
		return "size"
	case SizeMoveEvent:
		return "size-move"
	case DPIEvent:
		return "dpi"
	case ActivateEvent:
		return "activate"
	case DropEvent:
		return "drop"
	case CloseEvent:
		return "close"
	case DestroyEvent:
		return "destroy"
	}
	return "unknown"
}
