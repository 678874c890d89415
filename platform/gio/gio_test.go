package gio

import (
	"image"
	"testing"

	"gioui.org/f32"
	"gioui.org/io/key"
	"gioui.org/io/pointer"
	"gioui.org/io/system"

	"github.com/esimov/winloop"
)

// newTestPlatform registers a window record without a Gio window behind it.
func newTestPlatform(t *testing.T) (*Platform, winloop.Handle) {
	t.Helper()
	p := New()
	h := winloop.Handle(1)
	p.windows[h] = &window{
		h:    h,
		keys: make(map[string]bool),
		geom: winloop.Geometry{ClientSize: winloop.Sz(640, 480), DPI: winloop.DefaultDPI},
	}
	return p, h
}

func decode(t *testing.T, p *Platform, h winloop.Handle, ev interface{ ImplementsEvent() }) winloop.Event {
	t.Helper()
	out, ok := p.Decode(winloop.Message{Raw: message{window: h, event: ev}})
	if !ok {
		t.Fatalf("%T should decode", ev)
	}
	if out.Target() != h {
		t.Fatalf("event targets %v, expected %v", out.Target(), h)
	}
	return out
}

func TestDecode_Pointer(t *testing.T) {
	p, h := newTestPlatform(t)

	ev := decode(t, p, h, pointer.Event{Type: pointer.Enter, Position: f32.Pt(10.6, 20.2)})
	move, ok := ev.(winloop.PointerMoveEvent)
	if !ok || move.State.Position != winloop.Pt(10, 20) {
		t.Fatalf("enter should decode to a pointer move at (10,20), got %#v", ev)
	}

	ev = decode(t, p, h, pointer.Event{Type: pointer.Press, Buttons: pointer.ButtonSecondary})
	in, ok := ev.(winloop.MouseInputEvent)
	if !ok || in.Input.Button != winloop.MouseRight || in.Input.ButtonState != winloop.Pressed {
		t.Fatalf("expected a right button press, got %#v", ev)
	}
	if !in.Input.MouseState.Buttons.Contains(winloop.MouseRight) {
		t.Errorf("the held buttons should contain the right button")
	}

	ev = decode(t, p, h, pointer.Event{Type: pointer.Release})
	in, ok = ev.(winloop.MouseInputEvent)
	if !ok || in.Input.Button != winloop.MouseRight || in.Input.ButtonState != winloop.Released {
		t.Fatalf("expected a right button release, got %#v", ev)
	}

	ev = decode(t, p, h, pointer.Event{Type: pointer.Scroll, Scroll: f32.Pt(0, -3)})
	wheel, ok := ev.(winloop.MouseWheelEvent)
	if !ok || wheel.Wheel.Delta != 3 || wheel.Wheel.Horizontal {
		t.Fatalf("expected a vertical wheel of 3, got %#v", ev)
	}

	ev = decode(t, p, h, pointer.Event{Type: pointer.Scroll, Scroll: f32.Pt(5, 0)})
	if wheel, ok := ev.(winloop.MouseWheelEvent); !ok || wheel.Wheel.Delta != -5 || !wheel.Wheel.Horizontal {
		t.Fatalf("expected a horizontal wheel of -5, got %#v", ev)
	}

	if _, ok := decode(t, p, h, pointer.Event{Type: pointer.Leave}).(winloop.PointerLeaveEvent); !ok {
		t.Errorf("leave should decode to a pointer leave")
	}
}

func TestDecode_ReleaseWithoutPressIsDropped(t *testing.T) {
	p, h := newTestPlatform(t)
	if _, ok := p.Decode(winloop.Message{Raw: message{window: h, event: pointer.Event{Type: pointer.Release}}}); ok {
		t.Errorf("a release without a known button should not decode")
	}
}

func TestDecode_KeysTrackPreviousState(t *testing.T) {
	p, h := newTestPlatform(t)

	first := decode(t, p, h, key.Event{Name: "A", State: key.Press}).(winloop.KeyEvent)
	repeat := decode(t, p, h, key.Event{Name: "A", State: key.Press}).(winloop.KeyEvent)
	release := decode(t, p, h, key.Event{Name: "A", State: key.Release}).(winloop.KeyEvent)

	if first.Input.PrevState != winloop.Released || first.Input.State != winloop.Pressed {
		t.Errorf("unexpected first press %+v", first.Input)
	}
	if repeat.Input.PrevState != winloop.Pressed {
		t.Errorf("an auto repeat should report the key as previously pressed")
	}
	if release.Input.State != winloop.Released || release.Input.PrevState != winloop.Pressed {
		t.Errorf("unexpected release %+v", release.Input)
	}
	if first.Input.KeyCode.Name != "A" {
		t.Errorf("expected key name A, got %q", first.Input.KeyCode.Name)
	}
}

func TestDecode_TextAndFocus(t *testing.T) {
	p, h := newTestPlatform(t)

	if ch := decode(t, p, h, key.EditEvent{Text: "é"}).(winloop.CharEvent); ch.Char != 'é' {
		t.Errorf("expected é, got %q", ch.Char)
	}
	if _, ok := p.Decode(winloop.Message{Raw: message{window: h, event: key.EditEvent{}}}); ok {
		t.Errorf("an empty edit should not decode")
	}
	if act := decode(t, p, h, key.FocusEvent{Focus: true}).(winloop.ActivateEvent); !act.Active {
		t.Errorf("focus gain should activate the window")
	}
}

func TestDecode_FrameUpdatesGeometry(t *testing.T) {
	p, h := newTestPlatform(t)

	size := decode(t, p, h, resized{size: image.Pt(800, 600)}).(winloop.SizeEvent)
	if size.Size != winloop.Sz(800, 600) {
		t.Errorf("unexpected size %v", size.Size)
	}
	if dpi := decode(t, p, h, rescaled{dpi: 144}).(winloop.DPIEvent); dpi.DPI != 144 {
		t.Errorf("unexpected dpi %d", dpi.DPI)
	}
	g, err := p.Geometry(h)
	if err != nil {
		t.Fatal(err)
	}
	if g.ClientSize != winloop.Sz(800, 600) || g.DPI != 144 {
		t.Errorf("geometry should follow the frames, got %+v", g)
	}
	if _, ok := decode(t, p, h, painted{}).(winloop.PaintEvent); !ok {
		t.Errorf("painted should decode to a paint event")
	}
}

func TestDecode_DestroyForgetsTheWindow(t *testing.T) {
	p, h := newTestPlatform(t)

	if _, ok := decode(t, p, h, closing{}).(winloop.CloseEvent); !ok {
		t.Fatalf("closing should decode to a close event")
	}
	if _, ok := decode(t, p, h, system.DestroyEvent{}).(winloop.DestroyEvent); !ok {
		t.Fatalf("destroy should decode to a destroy event")
	}
	if _, err := p.Geometry(h); err != ErrUnknownWindow {
		t.Errorf("expected ErrUnknownWindow, got %v", err)
	}
	if _, ok := p.Decode(winloop.Message{Raw: message{window: h, event: painted{}}}); ok {
		t.Errorf("events of a destroyed window should not decode")
	}
}

func TestWaitIsFIFO(t *testing.T) {
	p, h := newTestPlatform(t)
	p.Wake()
	p.RequestClose(h)

	msg, _ := p.Wait()
	if !msg.Wake {
		t.Fatalf("expected the wake message first")
	}
	msg, _ = p.Wait()
	if m, ok := msg.Raw.(message); !ok || m.window != h {
		t.Fatalf("expected the close attempt second, got %#v", msg.Raw)
	}
}

func TestGioCursor(t *testing.T) {
	cases := map[winloop.Cursor]pointer.Cursor{
		winloop.CursorArrow:  pointer.CursorDefault,
		winloop.CursorIBeam:  pointer.CursorText,
		winloop.CursorHand:   pointer.CursorPointer,
		winloop.CursorCross:  pointer.CursorCrosshair,
		winloop.CursorSizeWE: pointer.CursorEastWestResize,
		winloop.CursorWait:   pointer.CursorWait,
		winloop.CursorHelp:   pointer.CursorDefault,
	}
	for c, want := range cases {
		if got := gioCursor(c); got != want {
			t.Errorf("gioCursor(%v) = %v, expected %v", c, got, want)
		}
	}
}
