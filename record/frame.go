package record

import (
	"errors"
	"fmt"
	"time"

	"github.com/esimov/winloop"
	"github.com/fxamacker/cbor/v2"
)

// Magic identifies a recording.
const Magic = "winloop-recording"

// Version is the format version written by this package.
const Version = 1

// ErrFormat is returned for streams that are not recordings.
var ErrFormat = errors.New("record: not a winloop recording")

// Header opens a recording.
type Header struct {
	Magic   string `cbor:"1,keyasint"`
	Version int    `cbor:"2,keyasint"`
	// Started is the wall clock time of the first frame, in Unix nanoseconds.
	Started int64 `cbor:"3,keyasint"`
}

// Frame is one recorded event.
type Frame struct {
	// Offset is the time elapsed since the recording started.
	Offset time.Duration   `cbor:"1,keyasint"`
	Kind   string          `cbor:"2,keyasint"`
	Window winloop.Handle  `cbor:"3,keyasint"`
	Data   cbor.RawMessage `cbor:"4,keyasint"`
}

// NewFrame encodes ev.
func NewFrame(ev winloop.Event, offset time.Duration) (Frame, error) {
	kind := winloop.EventName(ev)
	if _, ok := decoders[kind]; !ok {
		return Frame{}, fmt.Errorf("record: unsupported event %T", ev)
	}
	data, err := encMode.Marshal(ev)
	if err != nil {
		return Frame{}, fmt.Errorf("record: encode %s event: %w", kind, err)
	}
	return Frame{Offset: offset, Kind: kind, Window: ev.Target(), Data: data}, nil
}

// Event decodes the recorded event.
func (f Frame) Event() (winloop.Event, error) {
	return f.EventFor(f.Window)
}

// EventFor decodes the recorded event and redirects it to h.
func (f Frame) EventFor(h winloop.Handle) (winloop.Event, error) {
	decode, ok := decoders[f.Kind]
	if !ok {
		return nil, fmt.Errorf("record: unknown event kind %q", f.Kind)
	}
	ev, err := decode(f.Data, h)
	if err != nil {
		return nil, fmt.Errorf("record: decode %s event: %w", f.Kind, err)
	}
	return ev, nil
}

type retargetable[E any] interface {
	*E
	winloop.Event
	SetTarget(h winloop.Handle)
}

func decodeAs[E winloop.Event, P retargetable[E]](data []byte, h winloop.Handle) (winloop.Event, error) {
	var ev E
	if err := decMode.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	P(&ev).SetTarget(h)
	return ev, nil
}

var decoders = map[string]func([]byte, winloop.Handle) (winloop.Event, error){
	"paint":           decodeAs[winloop.PaintEvent, *winloop.PaintEvent],
	"pointer-move":    decodeAs[winloop.PointerMoveEvent, *winloop.PointerMoveEvent],
	"pointer-leave":   decodeAs[winloop.PointerLeaveEvent, *winloop.PointerLeaveEvent],
	"mouse-input":     decodeAs[winloop.MouseInputEvent, *winloop.MouseInputEvent],
	"mouse-wheel":     decodeAs[winloop.MouseWheelEvent, *winloop.MouseWheelEvent],
	"key":             decodeAs[winloop.KeyEvent, *winloop.KeyEvent],
	"char":            decodeAs[winloop.CharEvent, *winloop.CharEvent],
	"ime-start":       decodeAs[winloop.IMEStartEvent, *winloop.IMEStartEvent],
	"ime-composition": decodeAs[winloop.IMECompositionEvent, *winloop.IMECompositionEvent],
	"ime-end":         decodeAs[winloop.IMEEndEvent, *winloop.IMEEndEvent],
	"move":            decodeAs[winloop.MoveEvent, *winloop.MoveEvent],
	"size":            decodeAs[winloop.SizeEvent, *winloop.SizeEvent],
	"size-move":       decodeAs[winloop.SizeMoveEvent, *winloop.SizeMoveEvent],
	"dpi":             decodeAs[winloop.DPIEvent, *winloop.DPIEvent],
	"activate":        decodeAs[winloop.ActivateEvent, *winloop.ActivateEvent],
	"drop":            decodeAs[winloop.DropEvent, *winloop.DropEvent],
	"close":           decodeAs[winloop.CloseEvent, *winloop.CloseEvent],
	"destroy":         decodeAs[winloop.DestroyEvent, *winloop.DestroyEvent],
}
