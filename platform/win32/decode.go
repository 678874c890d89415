package win32

import (
	"encoding/binary"
	"unicode/utf16"

	"github.com/esimov/winloop"
)

func loword(v uintptr) uint16 { return uint16(v & 0xffff) }
func hiword(v uintptr) uint16 { return uint16((v >> 16) & 0xffff) }

// lparamPoint reads the signed coordinates packed in lparam.
func lparamPoint(lparam uintptr) winloop.Point[int] {
	return winloop.Pt(int(int16(loword(lparam))), int(int16(hiword(lparam))))
}

func mouseButtons(wparam uintptr) winloop.MouseButtons {
	keys := loword(wparam)
	var set winloop.MouseButtons
	for _, m := range []struct {
		mk  uint16
		btn winloop.MouseButton
	}{
		{_MK_LBUTTON, winloop.MouseLeft},
		{_MK_RBUTTON, winloop.MouseRight},
		{_MK_MBUTTON, winloop.MouseMiddle},
		{_MK_XBUTTON1, winloop.ExtraButton(0)},
		{_MK_XBUTTON2, winloop.ExtraButton(1)},
	} {
		if keys&m.mk != 0 {
			set |= winloop.Buttons(m.btn)
		}
	}
	return set
}

func mouseState(r raw) winloop.MouseState {
	return winloop.MouseState{Position: lparamPoint(r.lparam), Buttons: mouseButtons(r.wparam)}
}

// mouseButton returns the button a button message is about.
func mouseButton(r raw) (winloop.MouseButton, winloop.ButtonState, bool) {
	switch r.msg {
	case _WM_LBUTTONDOWN:
		return winloop.MouseLeft, winloop.Pressed, true
	case _WM_LBUTTONUP:
		return winloop.MouseLeft, winloop.Released, true
	case _WM_RBUTTONDOWN:
		return winloop.MouseRight, winloop.Pressed, true
	case _WM_RBUTTONUP:
		return winloop.MouseRight, winloop.Released, true
	case _WM_MBUTTONDOWN:
		return winloop.MouseMiddle, winloop.Pressed, true
	case _WM_MBUTTONUP:
		return winloop.MouseMiddle, winloop.Released, true
	case _WM_XBUTTONDOWN, _WM_XBUTTONUP:
		n := uint32(hiword(r.wparam))
		if n == 0 || n-1 > winloop.MaxExtraButton {
			return 0, 0, false
		}
		state := winloop.Pressed
		if r.msg == _WM_XBUTTONUP {
			state = winloop.Released
		}
		return winloop.ExtraButton(n - 1), state, true
	}
	return 0, 0, false
}

// keyInput decodes WM_KEYDOWN, WM_KEYUP and their WM_SYS variants.
func keyInput(r raw) winloop.KeyInput {
	state := winloop.Released
	if r.msg == _WM_KEYDOWN || r.msg == _WM_SYSKEYDOWN {
		state = winloop.Pressed
	}
	prev := winloop.Released
	if (r.lparam>>30)&1 != 0 {
		prev = winloop.Pressed
	}
	scan := uint32((r.lparam >> 16) & 0xff)
	extended := (r.lparam>>24)&1 != 0

	vkey := uint32(r.wparam)
	switch vkey {
	case _VK_SHIFT:
		if d, ok := r.data.(keyData); ok {
			vkey = d.vkey
		}
	case _VK_CONTROL:
		vkey = _VK_LCONTROL
		if extended {
			vkey = _VK_RCONTROL
		}
	case _VK_MENU:
		vkey = _VK_LMENU
		if extended {
			vkey = _VK_RMENU
		}
	}
	return winloop.KeyInput{
		State:     state,
		KeyCode:   winloop.KeyCode{VKey: vkey, ScanCode: scan},
		PrevState: prev,
	}
}

var attributes = map[byte]winloop.Attribute{
	_ATTR_INPUT:               winloop.AttrInput,
	_ATTR_TARGET_CONVERTED:    winloop.AttrTargetConverted,
	_ATTR_CONVERTED:           winloop.AttrConverted,
	_ATTR_TARGET_NOTCONVERTED: winloop.AttrTargetNotConverted,
	_ATTR_INPUT_ERROR:         winloop.AttrError,
	_ATTR_FIXEDCONVERTED:      winloop.AttrFixedConverted,
}

// composition pairs the characters of a UTF-16 composition string with the
// attributes the IME reports per code unit.
func composition(text []uint16, attrs []byte) winloop.Composition {
	var c winloop.Composition
	for i := 0; i < len(text); {
		r, n := rune(text[i]), 1
		if utf16.IsSurrogate(r) && i+1 < len(text) {
			r, n = utf16.DecodeRune(r, rune(text[i+1])), 2
		}
		attr := winloop.AttrInput
		if i < len(attrs) {
			attr = attributes[attrs[i]]
		}
		c = append(c, winloop.CompositionChar{Char: r, Attr: attr})
		i += n
	}
	return c
}

// candidateList parses a CANDIDATELIST structure: six uint32 fields followed
// by the offsets of the NUL terminated UTF-16 candidates.
func candidateList(buf []byte) *winloop.CandidateList {
	const header = 6 * 4
	if len(buf) < header {
		return nil
	}
	le := binary.LittleEndian
	count := int(le.Uint32(buf[8:]))
	selection := int(le.Uint32(buf[12:]))
	if count == 0 || header+count*4 > len(buf) {
		return nil
	}
	list := &winloop.CandidateList{Selection: selection}
	for i := 0; i < count; i++ {
		off := int(le.Uint32(buf[header+i*4:]))
		var units []uint16
		for j := off; j+1 < len(buf); j += 2 {
			u := le.Uint16(buf[j:])
			if u == 0 {
				break
			}
			units = append(units, u)
		}
		list.List = append(list.List, string(utf16.Decode(units)))
	}
	return list
}

// decode translates a captured window message into a winloop event.
func decode(r raw) (winloop.Event, bool) {
	src := winloop.On(winloop.Handle(r.hwnd))

	switch r.msg {
	case _WM_PAINT:
		return winloop.PaintEvent{Source: src}, true
	case _WM_MOUSEMOVE:
		return winloop.PointerMoveEvent{Source: src, State: mouseState(r)}, true
	case _WM_MOUSELEAVE:
		st := winloop.MouseState{Buttons: mouseButtons(r.wparam)}
		if d, ok := r.data.(leaveData); ok {
			st.Position = winloop.Pt(int(d.x), int(d.y))
		}
		return winloop.PointerLeaveEvent{Source: src, State: st}, true
	case _WM_LBUTTONDOWN, _WM_LBUTTONUP, _WM_RBUTTONDOWN, _WM_RBUTTONUP,
		_WM_MBUTTONDOWN, _WM_MBUTTONUP, _WM_XBUTTONDOWN, _WM_XBUTTONUP:
		b, state, ok := mouseButton(r)
		if !ok {
			return nil, false
		}
		return winloop.MouseInputEvent{Source: src, Input: winloop.MouseInput{
			Button:      b,
			ButtonState: state,
			MouseState:  mouseState(r),
		}}, true
	case _WM_MOUSEWHEEL, _WM_MOUSEHWHEEL:
		return winloop.MouseWheelEvent{Source: src, Wheel: winloop.MouseWheel{
			Delta:      int16(hiword(r.wparam)),
			Horizontal: r.msg == _WM_MOUSEHWHEEL,
			MouseState: mouseState(r),
		}}, true
	case _WM_KEYDOWN, _WM_KEYUP, _WM_SYSKEYDOWN, _WM_SYSKEYUP:
		return winloop.KeyEvent{Source: src, Input: keyInput(r)}, true
	case _WM_CHAR:
		// Surrogate halves are joined by the window procedure.
		c := rune(r.wparam)
		if utf16.IsSurrogate(c) {
			return nil, false
		}
		return winloop.CharEvent{Source: src, Char: c}, true
	case _WM_IME_STARTCOMPOSITION:
		return winloop.IMEStartEvent{Source: src}, true
	case _WM_IME_COMPOSITION:
		d, ok := r.data.(compositionData)
		if !ok {
			return nil, false
		}
		return winloop.IMECompositionEvent{Source: src, Update: winloop.IMEUpdate{
			Composition: composition(d.text, d.attrs),
			Candidates:  candidateList(d.candidates),
		}}, true
	case _WM_IME_ENDCOMPOSITION:
		var res winloop.IMEResult
		if d, ok := r.data.(resultData); ok && d.committed {
			res = winloop.IMEResult{Text: string(utf16.Decode(d.text)), Committed: true}
		}
		return winloop.IMEEndEvent{Source: src, Result: res}, true
	case _WM_MOVE:
		return winloop.MoveEvent{Source: src, Position: lparamPoint(r.lparam)}, true
	case _WM_SIZE:
		return winloop.SizeEvent{Source: src, Size: winloop.Sz(int(loword(r.lparam)), int(hiword(r.lparam)))}, true
	case _WM_ENTERSIZEMOVE, _WM_EXITSIZEMOVE:
		return winloop.SizeMoveEvent{Source: src, Active: r.msg == _WM_ENTERSIZEMOVE}, true
	case _WM_DPICHANGED:
		return winloop.DPIEvent{Source: src, DPI: uint32(hiword(r.wparam))}, true
	case _WM_ACTIVATE:
		return winloop.ActivateEvent{Source: src, Active: loword(r.wparam) != 0}, true
	case _WM_DROPFILES:
		d, ok := r.data.(dropData)
		if !ok {
			return nil, false
		}
		return winloop.DropEvent{Source: src, Files: winloop.DropFiles{
			Position: winloop.Pt(int(d.x), int(d.y)),
			Files:    d.files,
		}}, true
	case _WM_CLOSE:
		return winloop.CloseEvent{Source: src}, true
	case _WM_DESTROY:
		return winloop.DestroyEvent{Source: src}, true
	}
	return nil, false
}
