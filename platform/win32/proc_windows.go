//go:build windows

package win32

import (
	"unicode/utf16"
	"unsafe"

	"github.com/esimov/winloop"
)

// wndProc captures the messages of the winloop windows for the dispatcher.
// It runs on the dispatcher thread, from DispatchMessageW or from the Win32
// calls the platform makes; it never calls application code.
func wndProc(hwnd uintptr, msg uint32, wparam, lparam uintptr) uintptr {
	p := current.Load()
	if p == nil {
		return defWindowProc(hwnd, msg, wparam, lparam)
	}
	if hwnd == p.msgWnd.Load() {
		if msg == wmWake {
			p.push(winloop.Message{Wake: true})
			return 0
		}
		return defWindowProc(hwnd, msg, wparam, lparam)
	}
	if msg == _WM_NCCREATE {
		enableNonClientDpiScaling(hwnd)
		return defWindowProc(hwnd, msg, wparam, lparam)
	}
	win, ok := p.windows[hwnd]
	if !ok {
		return defWindowProc(hwnd, msg, wparam, lparam)
	}
	r := raw{hwnd: hwnd, msg: msg, wparam: wparam, lparam: lparam}

	switch msg {
	case _WM_PAINT:
		var ps paintStruct
		beginPaint(hwnd, &ps)
		endPaint(hwnd, &ps)
		p.capture(r)
		return 0
	case _WM_SETCURSOR:
		if loword(lparam) == _HTCLIENT {
			if id, ok := cursorIDs[win.cursor]; ok {
				setCursor(loadCursor(id))
				return 1
			}
		}
		return defWindowProc(hwnd, msg, wparam, lparam)
	case _WM_MOUSEMOVE, _WM_LBUTTONDOWN, _WM_LBUTTONUP, _WM_RBUTTONDOWN, _WM_RBUTTONUP,
		_WM_MBUTTONDOWN, _WM_MBUTTONUP, _WM_MOUSEWHEEL, _WM_MOUSEHWHEEL, _WM_SIZE, _WM_MOVE,
		_WM_ACTIVATE:
		p.capture(r)
		return 0
	case _WM_XBUTTONDOWN, _WM_XBUTTONUP:
		p.capture(r)
		return 1
	case _WM_MOUSELEAVE:
		pt := getCursorPos()
		screenToClient(hwnd, &pt)
		r.data = leaveData{x: pt.X, y: pt.Y}
		p.capture(r)
		return 0
	case _WM_KEYDOWN, _WM_KEYUP, _WM_SYSKEYDOWN, _WM_SYSKEYUP:
		if wparam == _VK_SHIFT {
			scan := uint32((lparam >> 16) & 0xff)
			r.data = keyData{vkey: mapVirtualKey(scan, _MAPVK_VSC_TO_VK_EX)}
		}
		p.capture(r)
		if msg == _WM_SYSKEYDOWN || msg == _WM_SYSKEYUP {
			// Keep Alt+F4 and the system menu working.
			return defWindowProc(hwnd, msg, wparam, lparam)
		}
		return 0
	case _WM_CHAR:
		u := uint16(wparam)
		switch {
		case utf16.IsSurrogate(rune(u)) && u < 0xDC00:
			win.surrogate = u
			return 0
		case utf16.IsSurrogate(rune(u)):
			if win.surrogate != 0 {
				r.wparam = uintptr(utf16.DecodeRune(rune(win.surrogate), rune(u)))
				win.surrogate = 0
			}
		}
		p.capture(r)
		return 0
	case _WM_IME_SETCONTEXT:
		if !win.composition {
			lparam &^= _ISC_SHOWUICOMPOSITIONWINDOW
		}
		if !win.candidate {
			lparam &^= _ISC_SHOWUIALLCANDIDATEWINDOW
		}
		return defWindowProc(hwnd, msg, wparam, lparam)
	case _WM_IME_STARTCOMPOSITION:
		p.capture(r)
		return defWindowProc(hwnd, msg, wparam, lparam)
	case _WM_IME_COMPOSITION:
		imc := immGetContext(hwnd)
		if imc != 0 {
			if lparam&_GCS_RESULTSTR != 0 {
				// A committed string is reported as a final composition.
				res := r
				res.data = compositionData{text: immCompositionString(imc, _GCS_RESULTSTR)}
				p.capture(res)
			}
			if lparam&_GCS_COMPSTR != 0 {
				r.data = compositionData{
					text:       immCompositionString(imc, _GCS_COMPSTR),
					attrs:      immCompositionBytes(imc, _GCS_COMPATTR),
					candidates: immCandidateList(imc),
				}
				p.capture(r)
			}
			immReleaseContext(hwnd, imc)
		}
		if win.composition {
			return defWindowProc(hwnd, msg, wparam, lparam)
		}
		return 0
	case _WM_IME_ENDCOMPOSITION:
		imc := immGetContext(hwnd)
		if imc != 0 {
			if text := immCompositionString(imc, _GCS_RESULTSTR); len(text) > 0 {
				r.data = resultData{text: text, committed: true}
			}
			immReleaseContext(hwnd, imc)
		}
		p.capture(r)
		return defWindowProc(hwnd, msg, wparam, lparam)
	case _WM_ENTERSIZEMOVE, _WM_EXITSIZEMOVE:
		p.capture(r)
		return defWindowProc(hwnd, msg, wparam, lparam)
	case _WM_DPICHANGED:
		// lparam points to the suggested window rectangle for the new DPI.
		rc := (*rect)(unsafe.Pointer(lparam))
		setWindowPos(hwnd, rc.Left, rc.Top, rc.Right-rc.Left, rc.Bottom-rc.Top, _SWP_NOZORDER|_SWP_NOACTIVATE)
		p.capture(r)
		return 0
	case _WM_DROPFILES:
		r.data = dragFiles(wparam)
		p.capture(r)
		return 0
	case _WM_CLOSE:
		// The dispatcher decides whether the window is destroyed.
		p.capture(r)
		return 0
	case _WM_DESTROY:
		for _, icon := range win.icons {
			destroyIcon(icon)
		}
		delete(p.windows, hwnd)
		p.capture(r)
		return 0
	}
	return defWindowProc(hwnd, msg, wparam, lparam)
}
