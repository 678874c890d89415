package winloop

import (
	"fmt"
	"strconv"
)

// Handle identifies a native window. It is a lookup key into the registry and
// never owns anything, so it can be copied freely between goroutines.
// The zero Handle is never assigned to a window.
type Handle uintptr

// String returns h in hexadecimal.
func (h Handle) String() string { return "0x" + strconv.FormatUint(uint64(h), 16) }

// MarshalText implements encoding.TextMarshaler. Recordings store handles
// as text since CBOR has no representation for pointer sized integers.
func (h Handle) MarshalText() ([]byte, error) { return []byte(h.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler. It accepts the forms
// produced by MarshalText and plain decimal numbers.
func (h *Handle) UnmarshalText(text []byte) error {
	v, err := strconv.ParseUint(string(text), 0, 64)
	if err != nil {
		return fmt.Errorf("winloop: invalid window handle %q", text)
	}
	*h = Handle(v)
	return nil
}

// Message is one item retrieved from the native message queue.
type Message struct {
	// Wake is set for the notifications issued by Platform.Wake.
	Wake bool
	// Raw is the backend specific payload, interpreted by a Decoder.
	Raw any
}

// Decoder turns native messages into typed events. It is only invoked from
// the dispatcher thread. Messages without a meaning for the dispatcher
// decode to (nil, false).
type Decoder interface {
	Decode(msg Message) (Event, bool)
}

// Platform is the native windowing subsystem driven by the dispatcher.
//
// Wake may be called from any goroutine and must never block. Every other
// method is called only from the dispatcher thread, which is locked to a
// single OS thread for its whole life.
type Platform interface {
	Decoder

	// Attach binds the subsystem to the calling thread. It is the first call
	// made on the dispatcher thread.
	Attach() error
	// Detach releases what Attach acquired and any window still alive. It is
	// the last call made on the dispatcher thread.
	Detach()

	// Wake makes Wait return a Message with Wake set, once per call.
	Wake()
	// Wait blocks until the next native message is available.
	Wait() (Message, error)

	// Create builds a native window.
	Create(cfg *Config) (Handle, error)
	// Destroy tears a window down. The platform later delivers a message
	// that decodes to a DestroyEvent for h.
	Destroy(h Handle) error
	Show(h Handle, visible bool)
	Redraw(h Handle)
	// RequestClose queues a close attempt, which decodes to a CloseEvent.
	RequestClose(h Handle)

	// TrackPointer asks for a leave notification once the pointer exits h.
	TrackPointer(h Handle)
	ApplyCursor(h Handle, c Cursor)

	SetIME(h Handle, enabled bool)
	// PlaceIME positions the IME composition and candidate windows at pos,
	// in physical client coordinates.
	PlaceIME(h Handle, pos Point[int], composition, candidate bool)

	Geometry(h Handle) (Geometry, error)
	// Raw returns the native handle value, for interop with other libraries.
	Raw(h Handle) uintptr
}

// Streamer is implemented by platforms whose Wait can be held inside a
// native modal loop, such as an interactive move or resize. The dispatcher
// passes them a sink that handles a message right away. The sink may only
// be called from the dispatcher thread while Wait is blocked, never from a
// Platform method the dispatcher called.
type Streamer interface {
	SetSink(sink func(Message))
}
