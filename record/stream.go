package record

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/esimov/winloop"
	"github.com/fxamacker/cbor/v2"
)

// Writer appends frames to a recording.
type Writer struct {
	enc    *cbor.Encoder
	start  time.Time
	now    func() time.Time
	frames int
}

// NewWriter writes the header of a new recording to w.
func NewWriter(w io.Writer) (*Writer, error) {
	return newWriter(w, time.Now)
}

func newWriter(w io.Writer, now func() time.Time) (*Writer, error) {
	rw := &Writer{enc: encMode.NewEncoder(w), start: now(), now: now}
	h := Header{Magic: Magic, Version: Version, Started: rw.start.UnixNano()}
	if err := rw.enc.Encode(h); err != nil {
		return nil, fmt.Errorf("record: write header: %w", err)
	}
	return rw, nil
}

// Write records ev at the current time.
func (w *Writer) Write(ev winloop.Event) error {
	f, err := NewFrame(ev, w.now().Sub(w.start))
	if err != nil {
		return err
	}
	return w.WriteFrame(f)
}

// WriteFrame appends an already encoded frame.
func (w *Writer) WriteFrame(f Frame) error {
	if err := w.enc.Encode(f); err != nil {
		return fmt.Errorf("record: write frame: %w", err)
	}
	w.frames++
	return nil
}

// Frames returns the number of frames written.
func (w *Writer) Frames() int { return w.frames }

// Reader reads the frames of a recording.
type Reader struct {
	dec    *cbor.Decoder
	header Header
}

// NewReader reads and checks the header of the recording in r.
func NewReader(r io.Reader) (*Reader, error) {
	rr := &Reader{dec: decMode.NewDecoder(r)}
	if err := rr.dec.Decode(&rr.header); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if rr.header.Magic != Magic {
		return nil, ErrFormat
	}
	if rr.header.Version > Version {
		return nil, fmt.Errorf("record: unsupported recording version %d", rr.header.Version)
	}
	return rr, nil
}

// Header returns the header of the recording.
func (r *Reader) Header() Header { return r.header }

// Started returns the wall clock time the recording started at.
func (r *Reader) Started() time.Time { return time.Unix(0, r.header.Started) }

// Next returns the next frame, or io.EOF at the end of the recording.
func (r *Reader) Next() (Frame, error) {
	var f Frame
	if err := r.dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return Frame{}, io.EOF
		}
		return Frame{}, fmt.Errorf("record: read frame: %w", err)
	}
	return f, nil
}
