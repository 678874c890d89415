package win32

import (
	"encoding/binary"
	"reflect"
	"testing"
	"unicode/utf16"

	"github.com/esimov/winloop"
)

const testHwnd = 0x1234

func makeLong(lo, hi uint16) uintptr { return uintptr(lo) | uintptr(hi)<<16 }

func mustDecode(t *testing.T, r raw) winloop.Event {
	t.Helper()
	r.hwnd = testHwnd
	ev, ok := decode(r)
	if !ok {
		t.Fatalf("message %#x should decode", r.msg)
	}
	if ev.Target() != testHwnd {
		t.Fatalf("unexpected target %v", ev.Target())
	}
	return ev
}

func TestDecode_MouseMessages(t *testing.T) {
	x, y := int16(-5), int16(40)
	ev := mustDecode(t, raw{
		msg:    _WM_MOUSEMOVE,
		wparam: _MK_LBUTTON | _MK_XBUTTON2,
		lparam: makeLong(uint16(x), uint16(y)),
	})
	move := ev.(winloop.PointerMoveEvent)
	if move.State.Position != winloop.Pt(-5, 40) {
		t.Errorf("unexpected position %v", move.State.Position)
	}
	want := winloop.Buttons(winloop.MouseLeft, winloop.ExtraButton(1))
	if move.State.Buttons != want {
		t.Errorf("expected buttons %v, got %v", want, move.State.Buttons)
	}

	ev = mustDecode(t, raw{msg: _WM_XBUTTONUP, wparam: makeLong(0, 1)})
	in := ev.(winloop.MouseInputEvent)
	if in.Input.Button != winloop.ExtraButton(0) || in.Input.ButtonState != winloop.Released {
		t.Errorf("expected an ex0 release, got %+v", in.Input)
	}

	ev = mustDecode(t, raw{msg: _WM_RBUTTONDOWN, wparam: _MK_RBUTTON})
	if in := ev.(winloop.MouseInputEvent); in.Input.Button != winloop.MouseRight || in.Input.ButtonState != winloop.Pressed {
		t.Errorf("expected a right press, got %+v", in.Input)
	}

	delta := int16(-120)
	ev = mustDecode(t, raw{msg: _WM_MOUSEHWHEEL, wparam: makeLong(0, uint16(delta))})
	wheel := ev.(winloop.MouseWheelEvent)
	if wheel.Wheel.Delta != -120 || !wheel.Wheel.Horizontal {
		t.Errorf("unexpected wheel %+v", wheel.Wheel)
	}

	ev = mustDecode(t, raw{msg: _WM_MOUSELEAVE, data: leaveData{x: 7, y: 9}})
	if leave := ev.(winloop.PointerLeaveEvent); leave.State.Position != winloop.Pt(7, 9) {
		t.Errorf("unexpected leave position %v", leave.State.Position)
	}
}

func TestDecode_InvalidExtraButton(t *testing.T) {
	if _, ok := decode(raw{msg: _WM_XBUTTONDOWN, wparam: makeLong(0, 0)}); ok {
		t.Errorf("an extra button without an index should not decode")
	}
}

func TestDecode_KeyMessages(t *testing.T) {
	// Repeat of the right control key: extended, previously down.
	lparam := uintptr(0x1d)<<16 | 1<<24 | 1<<30
	ev := mustDecode(t, raw{msg: _WM_KEYDOWN, wparam: _VK_CONTROL, lparam: lparam})
	in := ev.(winloop.KeyEvent).Input
	if in.KeyCode.VKey != _VK_RCONTROL || in.KeyCode.ScanCode != 0x1d {
		t.Errorf("unexpected key code %+v", in.KeyCode)
	}
	if in.State != winloop.Pressed || in.PrevState != winloop.Pressed {
		t.Errorf("unexpected states %+v", in)
	}

	ev = mustDecode(t, raw{msg: _WM_SYSKEYUP, wparam: _VK_SHIFT, data: keyData{vkey: 0xA1}})
	in = ev.(winloop.KeyEvent).Input
	if in.KeyCode.VKey != 0xA1 || in.State != winloop.Released {
		t.Errorf("the shift key should be resolved to its side, got %+v", in)
	}

	if ch := mustDecode(t, raw{msg: _WM_CHAR, wparam: 'ß'}).(winloop.CharEvent); ch.Char != 'ß' {
		t.Errorf("unexpected char %q", ch.Char)
	}
	if _, ok := decode(raw{msg: _WM_CHAR, wparam: 0xD83D}); ok {
		t.Errorf("a lone surrogate should not decode")
	}
}

func TestDecode_WindowMessages(t *testing.T) {
	if size := mustDecode(t, raw{msg: _WM_SIZE, lparam: makeLong(800, 600)}).(winloop.SizeEvent); size.Size != winloop.Sz(800, 600) {
		t.Errorf("unexpected size %v", size.Size)
	}
	if dpi := mustDecode(t, raw{msg: _WM_DPICHANGED, wparam: makeLong(144, 144)}).(winloop.DPIEvent); dpi.DPI != 144 {
		t.Errorf("unexpected dpi %d", dpi.DPI)
	}
	if sm := mustDecode(t, raw{msg: _WM_ENTERSIZEMOVE}).(winloop.SizeMoveEvent); !sm.Active {
		t.Errorf("entering a size move should be active")
	}
	if sm := mustDecode(t, raw{msg: _WM_EXITSIZEMOVE}).(winloop.SizeMoveEvent); sm.Active {
		t.Errorf("leaving a size move should not be active")
	}
	if act := mustDecode(t, raw{msg: _WM_ACTIVATE, wparam: 0}).(winloop.ActivateEvent); act.Active {
		t.Errorf("WA_INACTIVE should deactivate")
	}
	if _, ok := mustDecode(t, raw{msg: _WM_CLOSE}).(winloop.CloseEvent); !ok {
		t.Errorf("WM_CLOSE should decode to a close event")
	}
	if _, ok := mustDecode(t, raw{msg: _WM_DESTROY}).(winloop.DestroyEvent); !ok {
		t.Errorf("WM_DESTROY should decode to a destroy event")
	}
	drop := mustDecode(t, raw{msg: _WM_DROPFILES, data: dropData{x: 1, y: 2, files: []string{`C:\a.txt`}}}).(winloop.DropEvent)
	if drop.Files.Position != winloop.Pt(1, 2) || len(drop.Files.Files) != 1 {
		t.Errorf("unexpected drop %+v", drop.Files)
	}
	if _, ok := decode(raw{msg: 0x7fff}); ok {
		t.Errorf("unknown messages should not decode")
	}
}

func TestComposition_PairsAttributesWithCodeUnits(t *testing.T) {
	text := utf16.Encode([]rune("a😀b"))
	attrs := []byte{_ATTR_INPUT, _ATTR_CONVERTED, _ATTR_CONVERTED, _ATTR_TARGET_CONVERTED}

	got := composition(text, attrs)
	want := winloop.Composition{
		{Char: 'a', Attr: winloop.AttrInput},
		{Char: '😀', Attr: winloop.AttrConverted},
		{Char: 'b', Attr: winloop.AttrTargetConverted},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestCandidateList(t *testing.T) {
	words := []string{"漢字", "感じ"}
	header := 6*4 + len(words)*4
	buf := make([]byte, header)
	le := binary.LittleEndian
	le.PutUint32(buf[8:], uint32(len(words)))
	le.PutUint32(buf[12:], 1)
	for i, w := range words {
		le.PutUint32(buf[24+i*4:], uint32(len(buf)))
		for _, u := range utf16.Encode([]rune(w)) {
			buf = le.AppendUint16(buf, u)
		}
		buf = le.AppendUint16(buf, 0)
	}
	le.PutUint32(buf, uint32(len(buf)))

	list := candidateList(buf)
	if list == nil {
		t.Fatal("expected a candidate list")
	}
	if !reflect.DeepEqual(list.List, words) || list.Selection != 1 {
		t.Errorf("unexpected list %+v", list)
	}

	if candidateList(buf[:10]) != nil {
		t.Errorf("a truncated buffer should not parse")
	}
	if candidateList(nil) != nil {
		t.Errorf("an empty buffer should not parse")
	}
}

func TestIMEMessages(t *testing.T) {
	ev := mustDecode(t, raw{msg: _WM_IME_COMPOSITION, data: compositionData{
		text:  utf16.Encode([]rune("にほん")),
		attrs: []byte{0, 0, 0},
	}})
	up := ev.(winloop.IMECompositionEvent).Update
	if up.Composition.String() != "にほん" || up.Candidates != nil {
		t.Errorf("unexpected update %+v", up)
	}

	end := mustDecode(t, raw{msg: _WM_IME_ENDCOMPOSITION, data: resultData{
		text:      utf16.Encode([]rune("日本")),
		committed: true,
	}}).(winloop.IMEEndEvent)
	if end.Result.Text != "日本" || !end.Result.Committed {
		t.Errorf("unexpected result %+v", end.Result)
	}

	cancel := mustDecode(t, raw{msg: _WM_IME_ENDCOMPOSITION}).(winloop.IMEEndEvent)
	if cancel.Result.Committed || cancel.Result.Text != "" {
		t.Errorf("a cancelled composition should have no result, got %+v", cancel.Result)
	}
}
