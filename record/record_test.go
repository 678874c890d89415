package record

import (
	"bytes"
	"context"
	"errors"
	"io"
	"reflect"
	"testing"
	"time"

	"github.com/esimov/winloop"
)

func sampleEvents(h winloop.Handle) []winloop.Event {
	src := winloop.On(h)
	return []winloop.Event{
		winloop.PaintEvent{Source: src},
		winloop.PointerMoveEvent{Source: src, State: winloop.MouseState{
			Position: winloop.Pt(10, 20),
			Buttons:  winloop.Buttons(winloop.MouseLeft),
		}},
		winloop.KeyEvent{Source: src, Input: winloop.KeyInput{
			State:   winloop.Pressed,
			KeyCode: winloop.KeyCode{VKey: 0x41, ScanCode: 0x1e},
		}},
		winloop.CharEvent{Source: src, Char: 'ä'},
		winloop.IMECompositionEvent{Source: src, Update: winloop.IMEUpdate{
			Composition: winloop.NewComposition("かな", []winloop.Attribute{winloop.AttrInput, winloop.AttrConverted}),
			Candidates:  &winloop.CandidateList{List: []string{"仮名", "かな"}, Selection: 1},
		}},
		winloop.SizeEvent{Source: src, Size: winloop.Sz(800, 600)},
		winloop.DropEvent{Source: src, Files: winloop.DropFiles{Position: winloop.Pt(1, 2), Files: []string{"a.txt"}}},
		winloop.CloseEvent{Source: src},
	}
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time {
	c.t = c.t.Add(10 * time.Millisecond)
	return c.t
}

func TestRecord_ShouldReadBackWrittenEvents(t *testing.T) {
	var buf bytes.Buffer
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	w, err := newWriter(&buf, clock.now)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	events := sampleEvents(0x42)
	for _, ev := range events {
		if err := w.Write(ev); err != nil {
			t.Fatalf("Write(%T): %v", ev, err)
		}
	}

	r, err := NewReader(&buf)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	if r.Header().Version != Version {
		t.Errorf("unexpected version %d", r.Header().Version)
	}

	var prev time.Duration
	for i, want := range events {
		f, err := r.Next()
		if err != nil {
			t.Fatalf("Next #%d: %v", i, err)
		}
		if f.Offset <= prev {
			t.Errorf("frame offsets should increase: %v after %v", f.Offset, prev)
		}
		prev = f.Offset
		got, err := f.Event()
		if err != nil {
			t.Fatalf("Event #%d: %v", i, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("frame #%d: got %#v, want %#v", i, got, want)
		}
	}
	if _, err := r.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF after the last frame, got %v", err)
	}
}

func TestFrame_ShouldCarryTheWindowHandle(t *testing.T) {
	f, err := NewFrame(winloop.KeyEvent{Source: winloop.On(0x10)}, time.Second)
	if err != nil {
		t.Fatalf("NewFrame: %v", err)
	}
	data, err := encMode.Marshal(f)
	if err != nil {
		t.Fatalf("encode frame: %v", err)
	}
	var got Frame
	if err := decMode.Unmarshal(data, &got); err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	if got.Window != 0x10 || got.Kind != "key" || got.Offset != time.Second {
		t.Errorf("unexpected frame %+v", got)
	}
	ev, err := got.Event()
	if err != nil {
		t.Fatalf("Event: %v", err)
	}
	if ev.Target() != 0x10 {
		t.Errorf("expected the event to target 0x10, got %v", ev.Target())
	}
}

func TestRecord_ShouldRejectForeignStreams(t *testing.T) {
	var buf bytes.Buffer
	if err := encMode.NewEncoder(&buf).Encode(map[string]int{"x": 1}); err != nil {
		t.Fatal(err)
	}
	if _, err := NewReader(&buf); !errors.Is(err, ErrFormat) {
		t.Errorf("expected ErrFormat, got %v", err)
	}
	if _, err := NewReader(bytes.NewReader(nil)); !errors.Is(err, ErrFormat) {
		t.Errorf("expected ErrFormat for an empty stream, got %v", err)
	}
}

type passthrough struct{}

func (passthrough) Decode(msg winloop.Message) (winloop.Event, bool) {
	ev, ok := msg.Raw.(winloop.Event)
	return ev, ok
}

type brokenWriter struct{ n int }

func (b *brokenWriter) Write(p []byte) (int, error) {
	if b.n > 0 {
		return 0, errors.New("disk full")
	}
	b.n++
	return len(p), nil
}

func TestTap_ShouldRecordDecodedEvents(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	tap := NewTap(passthrough{}, w, nil)

	ev := winloop.CharEvent{Source: winloop.On(7), Char: 'x'}
	got, ok := tap.Decode(winloop.Message{Raw: ev})
	if !ok || got != ev {
		t.Fatalf("the tap should pass events through, got %v %v", got, ok)
	}
	if _, ok := tap.Decode(winloop.Message{Wake: true}); ok {
		t.Errorf("messages without an event should not decode")
	}
	if w.Frames() != 1 {
		t.Errorf("expected one recorded frame, got %d", w.Frames())
	}
}

func TestTap_ShouldKeepDecodingAfterWriteFailure(t *testing.T) {
	w, err := NewWriter(&brokenWriter{})
	if err != nil {
		t.Fatal(err)
	}
	tap := NewTap(passthrough{}, w, nil)
	for i := 0; i < 3; i++ {
		if _, ok := tap.Decode(winloop.Message{Raw: winloop.PaintEvent{Source: winloop.On(1)}}); !ok {
			t.Fatalf("decode #%d should succeed", i)
		}
	}
	if !tap.Failed() {
		t.Errorf("the tap should report the write failure")
	}
}

type collector struct{ events []winloop.Event }

func (c *collector) Inject(events ...winloop.Event) { c.events = append(c.events, events...) }

func TestReplay_ShouldRemapHandles(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	for _, ev := range []winloop.Event{
		winloop.PaintEvent{Source: winloop.On(100)},
		winloop.PaintEvent{Source: winloop.On(200)},
		winloop.PaintEvent{Source: winloop.On(300)},
		winloop.DestroyEvent{Source: winloop.On(100)},
		winloop.CharEvent{Source: winloop.On(100), Char: 'q'},
	} {
		if err := w.Write(ev); err != nil {
			t.Fatal(err)
		}
	}

	r, err := NewReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	var c collector
	n, err := Replay(context.Background(), r, &c, ReplayOptions{
		Map: Sequential([]winloop.Handle{1, 2}),
	})
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}

	want := []winloop.Event{
		winloop.PaintEvent{Source: winloop.On(1)},
		winloop.PaintEvent{Source: winloop.On(2)},
		winloop.CharEvent{Source: winloop.On(1), Char: 'q'},
	}
	if n != len(want) {
		t.Errorf("expected %d injected events, got %d", len(want), n)
	}
	if !reflect.DeepEqual(c.events, want) {
		t.Errorf("got %v, want %v", c.events, want)
	}
}

func TestReplay_ShouldStopOnCancel(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.WriteFrame(mustFrame(t, winloop.PaintEvent{Source: winloop.On(1)}, time.Hour)); err != nil {
		t.Fatal(err)
	}
	r, err := NewReader(&buf)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	var c collector
	if _, err := Replay(ctx, r, &c, ReplayOptions{Realtime: true}); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected the deadline to end the replay, got %v", err)
	}
	if len(c.events) != 0 {
		t.Errorf("no event should be injected before its offset")
	}
}

func mustFrame(t *testing.T, ev winloop.Event, offset time.Duration) Frame {
	t.Helper()
	f, err := NewFrame(ev, offset)
	if err != nil {
		t.Fatal(err)
	}
	return f
}
