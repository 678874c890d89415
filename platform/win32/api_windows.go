//go:build windows

package win32

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

type point struct {
	X, Y int32
}

type rect struct {
	Left, Top, Right, Bottom int32
}

type msg struct {
	Hwnd     uintptr
	Message  uint32
	WParam   uintptr
	LParam   uintptr
	Time     uint32
	Pt       point
	LPrivate uint32
}

type wndClassEx struct {
	CbSize        uint32
	Style         uint32
	LpfnWndProc   uintptr
	CnClsExtra    int32
	CbWndExtra    int32
	HInstance     windows.Handle
	HIcon         windows.Handle
	HCursor       windows.Handle
	HbrBackground windows.Handle
	LpszMenuName  *uint16
	LpszClassName *uint16
	HIconSm       windows.Handle
}

type paintStruct struct {
	Hdc         uintptr
	FErase      int32
	RcPaint     rect
	FRestore    int32
	FIncUpdate  int32
	RgbReserved [32]byte
}

type trackMouseEvent struct {
	CbSize      uint32
	DwFlags     uint32
	HwndTrack   uintptr
	DwHoverTime uint32
}

type compositionForm struct {
	DwStyle      uint32
	PtCurrentPos point
	RcArea       rect
}

type candidateForm struct {
	DwIndex      uint32
	DwStyle      uint32
	PtCurrentPos point
	RcArea       rect
}

const (
	_CS_HREDRAW = 0x0002
	_CS_VREDRAW = 0x0001

	_CW_USEDEFAULT = -2147483648

	_WS_POPUP       = 0x80000000
	_WS_CAPTION     = 0x00C00000
	_WS_SYSMENU     = 0x00080000
	_WS_THICKFRAME  = 0x00040000
	_WS_MINIMIZEBOX = 0x00020000
	_WS_MAXIMIZEBOX = 0x00010000

	_WS_EX_ACCEPTFILES = 0x00000010

	_HWND_MESSAGE = ^uintptr(2) // -3

	_SW_HIDE = 0
	_SW_SHOW = 5

	_SWP_NOZORDER   = 0x0004
	_SWP_NOACTIVATE = 0x0010

	_HTCLIENT = 1

	_TME_LEAVE = 0x00000002

	_PM_NOREMOVE = 0x0000

	_ICON_SMALL = 0
	_ICON_BIG   = 1

	_MAPVK_VSC_TO_VK_EX = 3

	_GCS_COMPATTR  = 0x0010
	_GCS_COMPSTR   = 0x0008
	_GCS_RESULTSTR = 0x0800

	_CFS_POINT        = 0x0002
	_CFS_CANDIDATEPOS = 0x0040

	_ISC_SHOWUICANDIDATEWINDOW    = 0x00000001
	_ISC_SHOWUICOMPOSITIONWINDOW  = 0x80000000
	_ISC_SHOWUIALLCANDIDATEWINDOW = 0x0000000F

	_IACE_DEFAULT = 0x0010

	_MONITOR_DEFAULTTONEAREST = 0x00000002
	_MDT_EFFECTIVE_DPI        = 0

	_DPI_AWARENESS_CONTEXT_PER_MONITOR_AWARE_V2 = ^uintptr(3) // -4

	_USER_DEFAULT_SCREEN_DPI = 96
)

var (
	kernel32          = windows.NewLazySystemDLL("kernel32.dll")
	_GetModuleHandleW = kernel32.NewProc("GetModuleHandleW")

	user32                         = windows.NewLazySystemDLL("user32.dll")
	_AdjustWindowRectExForDpi      = user32.NewProc("AdjustWindowRectExForDpi")
	_BeginPaint                    = user32.NewProc("BeginPaint")
	_CreateIcon                    = user32.NewProc("CreateIcon")
	_CreateWindowExW               = user32.NewProc("CreateWindowExW")
	_DefWindowProcW                = user32.NewProc("DefWindowProcW")
	_DestroyIcon                   = user32.NewProc("DestroyIcon")
	_DestroyWindow                 = user32.NewProc("DestroyWindow")
	_DispatchMessageW              = user32.NewProc("DispatchMessageW")
	_EnableNonClientDpiScaling     = user32.NewProc("EnableNonClientDpiScaling")
	_EndPaint                      = user32.NewProc("EndPaint")
	_GetClientRect                 = user32.NewProc("GetClientRect")
	_GetCursorPos                  = user32.NewProc("GetCursorPos")
	_GetDpiForWindow               = user32.NewProc("GetDpiForWindow")
	_GetMessageW                   = user32.NewProc("GetMessageW")
	_GetWindowRect                 = user32.NewProc("GetWindowRect")
	_InvalidateRect                = user32.NewProc("InvalidateRect")
	_LoadCursorW                   = user32.NewProc("LoadCursorW")
	_MapVirtualKeyW                = user32.NewProc("MapVirtualKeyW")
	_MonitorFromPoint              = user32.NewProc("MonitorFromPoint")
	_PeekMessageW                  = user32.NewProc("PeekMessageW")
	_PostMessageW                  = user32.NewProc("PostMessageW")
	_RegisterClassExW              = user32.NewProc("RegisterClassExW")
	_ScreenToClient                = user32.NewProc("ScreenToClient")
	_SendMessageW                  = user32.NewProc("SendMessageW")
	_SetCursor                     = user32.NewProc("SetCursor")
	_SetProcessDpiAwarenessContext = user32.NewProc("SetProcessDpiAwarenessContext")
	_SetWindowPos                  = user32.NewProc("SetWindowPos")
	_ShowWindow                    = user32.NewProc("ShowWindow")
	_TrackMouseEvent               = user32.NewProc("TrackMouseEvent")
	_TranslateMessage              = user32.NewProc("TranslateMessage")
	_UnregisterClassW              = user32.NewProc("UnregisterClassW")

	shcore            = windows.NewLazySystemDLL("shcore.dll")
	_GetDpiForMonitor = shcore.NewProc("GetDpiForMonitor")

	imm32                     = windows.NewLazySystemDLL("imm32.dll")
	_ImmAssociateContextEx    = imm32.NewProc("ImmAssociateContextEx")
	_ImmGetCandidateListW     = imm32.NewProc("ImmGetCandidateListW")
	_ImmGetCompositionStringW = imm32.NewProc("ImmGetCompositionStringW")
	_ImmGetContext            = imm32.NewProc("ImmGetContext")
	_ImmReleaseContext        = imm32.NewProc("ImmReleaseContext")
	_ImmSetCandidateWindow    = imm32.NewProc("ImmSetCandidateWindow")
	_ImmSetCompositionWindow  = imm32.NewProc("ImmSetCompositionWindow")

	shell32         = windows.NewLazySystemDLL("shell32.dll")
	_DragFinish     = shell32.NewProc("DragFinish")
	_DragQueryFileW = shell32.NewProc("DragQueryFileW")
	_DragQueryPoint = shell32.NewProc("DragQueryPoint")
)

func getModuleHandle() (windows.Handle, error) {
	h, _, err := _GetModuleHandleW.Call(0)
	if h == 0 {
		return 0, fmt.Errorf("GetModuleHandleW failed: %v", err)
	}
	return windows.Handle(h), nil
}

func adjustWindowRectExForDpi(r *rect, style, exStyle, dpi uint32) {
	_AdjustWindowRectExForDpi.Call(uintptr(unsafe.Pointer(r)), uintptr(style), 0, uintptr(exStyle), uintptr(dpi))
}

func beginPaint(hwnd uintptr, ps *paintStruct) {
	_BeginPaint.Call(hwnd, uintptr(unsafe.Pointer(ps)))
}

func endPaint(hwnd uintptr, ps *paintStruct) {
	_EndPaint.Call(hwnd, uintptr(unsafe.Pointer(ps)))
}

// createIcon builds an icon from 32 bit BGRA pixels. The AND mask is empty
// because the alpha channel carries the transparency.
func createIcon(hinst windows.Handle, w, h int, bgra []byte) (uintptr, error) {
	mask := make([]byte, ((w+15)/16*2)*h)
	icon, _, err := _CreateIcon.Call(uintptr(hinst), uintptr(w), uintptr(h), 1, 32,
		uintptr(unsafe.Pointer(&mask[0])), uintptr(unsafe.Pointer(&bgra[0])))
	if icon == 0 {
		return 0, fmt.Errorf("CreateIcon failed: %v", err)
	}
	return icon, nil
}

func destroyIcon(icon uintptr) {
	_DestroyIcon.Call(icon)
}

func createWindowEx(exStyle uint32, class, title *uint16, style uint32, x, y, w, h int32, parent uintptr, hinst windows.Handle) (uintptr, error) {
	hwnd, _, err := _CreateWindowExW.Call(
		uintptr(exStyle),
		uintptr(unsafe.Pointer(class)),
		uintptr(unsafe.Pointer(title)),
		uintptr(style),
		uintptr(x), uintptr(y),
		uintptr(w), uintptr(h),
		parent,
		0,
		uintptr(hinst),
		0)
	if hwnd == 0 {
		return 0, fmt.Errorf("CreateWindowExW failed: %v", err)
	}
	return hwnd, nil
}

func defWindowProc(hwnd uintptr, msg uint32, wparam, lparam uintptr) uintptr {
	r, _, _ := _DefWindowProcW.Call(hwnd, uintptr(msg), wparam, lparam)
	return r
}

func destroyWindow(hwnd uintptr) error {
	r, _, err := _DestroyWindow.Call(hwnd)
	if r == 0 {
		return fmt.Errorf("DestroyWindow failed: %v", err)
	}
	return nil
}

func dispatchMessage(m *msg) {
	_DispatchMessageW.Call(uintptr(unsafe.Pointer(m)))
}

func enableNonClientDpiScaling(hwnd uintptr) {
	_EnableNonClientDpiScaling.Call(hwnd)
}

func getClientRect(hwnd uintptr) rect {
	var r rect
	_GetClientRect.Call(hwnd, uintptr(unsafe.Pointer(&r)))
	return r
}

func getCursorPos() point {
	var p point
	_GetCursorPos.Call(uintptr(unsafe.Pointer(&p)))
	return p
}

func getDpiForWindow(hwnd uintptr) uint32 {
	if err := _GetDpiForWindow.Find(); err != nil {
		return _USER_DEFAULT_SCREEN_DPI
	}
	dpi, _, _ := _GetDpiForWindow.Call(hwnd)
	if dpi == 0 {
		return _USER_DEFAULT_SCREEN_DPI
	}
	return uint32(dpi)
}

// dpiAt returns the effective DPI of the monitor nearest to pt.
func dpiAt(pt point) uint32 {
	if err := _GetDpiForMonitor.Find(); err != nil {
		return _USER_DEFAULT_SCREEN_DPI
	}
	mon, _, _ := _MonitorFromPoint.Call(uintptr(*(*uint64)(unsafe.Pointer(&pt))), _MONITOR_DEFAULTTONEAREST)
	var x, y uint32
	r, _, _ := _GetDpiForMonitor.Call(mon, _MDT_EFFECTIVE_DPI, uintptr(unsafe.Pointer(&x)), uintptr(unsafe.Pointer(&y)))
	if r != 0 || x == 0 {
		return _USER_DEFAULT_SCREEN_DPI
	}
	return x
}

func getMessage(m *msg) (int32, error) {
	r, _, err := _GetMessageW.Call(uintptr(unsafe.Pointer(m)), 0, 0, 0)
	if int32(r) == -1 {
		return -1, fmt.Errorf("GetMessageW failed: %v", err)
	}
	return int32(r), nil
}

func getWindowRect(hwnd uintptr) rect {
	var r rect
	_GetWindowRect.Call(hwnd, uintptr(unsafe.Pointer(&r)))
	return r
}

func invalidateRect(hwnd uintptr) {
	_InvalidateRect.Call(hwnd, 0, 0)
}

func loadCursor(id uint16) uintptr {
	h, _, _ := _LoadCursorW.Call(0, uintptr(id))
	return h
}

func mapVirtualKey(code, mapType uint32) uint32 {
	r, _, _ := _MapVirtualKeyW.Call(uintptr(code), uintptr(mapType))
	return uint32(r)
}

func peekMessage(m *msg, remove uint32) bool {
	r, _, _ := _PeekMessageW.Call(uintptr(unsafe.Pointer(m)), 0, 0, 0, uintptr(remove))
	return r != 0
}

func postMessage(hwnd uintptr, msg uint32, wparam, lparam uintptr) error {
	r, _, err := _PostMessageW.Call(hwnd, uintptr(msg), wparam, lparam)
	if r == 0 {
		return fmt.Errorf("PostMessageW failed: %v", err)
	}
	return nil
}

func registerClassEx(cls *wndClassEx) (uint16, error) {
	a, _, err := _RegisterClassExW.Call(uintptr(unsafe.Pointer(cls)))
	if a == 0 {
		return 0, fmt.Errorf("RegisterClassExW failed: %v", err)
	}
	return uint16(a), nil
}

func screenToClient(hwnd uintptr, p *point) {
	_ScreenToClient.Call(hwnd, uintptr(unsafe.Pointer(p)))
}

func sendMessage(hwnd uintptr, msg uint32, wparam, lparam uintptr) uintptr {
	r, _, _ := _SendMessageW.Call(hwnd, uintptr(msg), wparam, lparam)
	return r
}

func setCursor(h uintptr) {
	_SetCursor.Call(h)
}

func setProcessDpiAwarenessContext(value uintptr) {
	if err := _SetProcessDpiAwarenessContext.Find(); err != nil {
		return
	}
	_SetProcessDpiAwarenessContext.Call(value)
}

func setWindowPos(hwnd uintptr, x, y, w, h int32, flags uint32) {
	_SetWindowPos.Call(hwnd, 0, uintptr(x), uintptr(y), uintptr(w), uintptr(h), uintptr(flags))
}

func showWindow(hwnd uintptr, cmd int32) {
	_ShowWindow.Call(hwnd, uintptr(cmd))
}

func trackLeave(hwnd uintptr) {
	tme := trackMouseEvent{DwFlags: _TME_LEAVE, HwndTrack: hwnd}
	tme.CbSize = uint32(unsafe.Sizeof(tme))
	_TrackMouseEvent.Call(uintptr(unsafe.Pointer(&tme)))
}

func translateMessage(m *msg) {
	_TranslateMessage.Call(uintptr(unsafe.Pointer(m)))
}

func unregisterClass(cls uint16, hinst windows.Handle) {
	_UnregisterClassW.Call(uintptr(cls), uintptr(hinst))
}

func immAssociateContextEx(hwnd uintptr, enabled bool) {
	var flags uintptr
	if enabled {
		flags = _IACE_DEFAULT
	}
	_ImmAssociateContextEx.Call(hwnd, 0, flags)
}

func immGetContext(hwnd uintptr) uintptr {
	imc, _, _ := _ImmGetContext.Call(hwnd)
	return imc
}

func immReleaseContext(hwnd, imc uintptr) {
	_ImmReleaseContext.Call(hwnd, imc)
}

// immCompositionBytes returns the raw bytes of a composition string value.
func immCompositionBytes(imc uintptr, key uint32) []byte {
	size, _, _ := _ImmGetCompositionStringW.Call(imc, uintptr(key), 0, 0)
	if int32(size) <= 0 {
		return nil
	}
	buf := make([]byte, size)
	_ImmGetCompositionStringW.Call(imc, uintptr(key), uintptr(unsafe.Pointer(&buf[0])), size)
	return buf
}

func immCompositionString(imc uintptr, key uint32) []uint16 {
	buf := immCompositionBytes(imc, key)
	if len(buf) < 2 {
		return nil
	}
	return unsafe.Slice((*uint16)(unsafe.Pointer(&buf[0])), len(buf)/2)
}

func immCandidateList(imc uintptr) []byte {
	size, _, _ := _ImmGetCandidateListW.Call(imc, 0, 0, 0)
	if size == 0 {
		return nil
	}
	buf := make([]byte, size)
	_ImmGetCandidateListW.Call(imc, 0, uintptr(unsafe.Pointer(&buf[0])), size)
	return buf
}

func immSetCompositionWindow(imc uintptr, x, y int32) {
	f := compositionForm{DwStyle: _CFS_POINT, PtCurrentPos: point{X: x, Y: y}}
	_ImmSetCompositionWindow.Call(imc, uintptr(unsafe.Pointer(&f)))
}

func immSetCandidateWindow(imc uintptr, x, y int32) {
	f := candidateForm{DwStyle: _CFS_CANDIDATEPOS, PtCurrentPos: point{X: x, Y: y}}
	_ImmSetCandidateWindow.Call(imc, uintptr(unsafe.Pointer(&f)))
}

// dragFiles reads the files and the drop point of a WM_DROPFILES message
// and releases the drop handle.
func dragFiles(hdrop uintptr) dropData {
	defer _DragFinish.Call(hdrop)
	count, _, _ := _DragQueryFileW.Call(hdrop, 0xFFFFFFFF, 0, 0)
	d := dropData{files: make([]string, 0, count)}
	for i := uintptr(0); i < count; i++ {
		n, _, _ := _DragQueryFileW.Call(hdrop, i, 0, 0)
		buf := make([]uint16, n+1)
		_DragQueryFileW.Call(hdrop, i, uintptr(unsafe.Pointer(&buf[0])), n+1)
		d.files = append(d.files, windows.UTF16ToString(buf))
	}
	var pt point
	_DragQueryPoint.Call(hdrop, uintptr(unsafe.Pointer(&pt)))
	d.x, d.y = pt.X, pt.Y
	return d
}
