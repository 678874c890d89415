package record

import (
	"log/slog"

	"github.com/esimov/winloop"
)

// Tap is a winloop.Decoder that records every event the wrapped decoder
// produces. Install it with winloop.WithDecoder; it runs on the dispatcher
// thread, so it needs no locking.
type Tap struct {
	next   winloop.Decoder
	w      *Writer
	logger *slog.Logger
	failed bool
}

// NewTap records the events decoded by next to w.
func NewTap(next winloop.Decoder, w *Writer, logger *slog.Logger) *Tap {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tap{next: next, w: w, logger: logger}
}

// Decode implements winloop.Decoder. A write failure stops the recording
// but never the decoding.
func (t *Tap) Decode(msg winloop.Message) (winloop.Event, bool) {
	ev, ok := t.next.Decode(msg)
	if !ok || t.failed {
		return ev, ok
	}
	if err := t.w.Write(ev); err != nil {
		t.failed = true
		t.logger.Error("recording stopped", "error", err, "frames", t.w.Frames())
	}
	return ev, ok
}

// Failed reports whether a write error stopped the recording.
func (t *Tap) Failed() bool { return t.failed }
