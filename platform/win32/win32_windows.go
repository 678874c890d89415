//go:build windows

package win32

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/esimov/winloop"
	"github.com/esimov/winloop/resource"
)

// ErrUnknownWindow is returned for handles the platform never created or
// already destroyed.
var ErrUnknownWindow = errors.New("win32: unknown window")

var (
	errAttached = errors.New("win32: another platform is attached")
	errQuit     = errors.New("win32: WM_QUIT received")
)

const className = "winloop"

var (
	wndProcOnce     sync.Once
	wndProcCallback uintptr

	// current is the platform attached to the dispatcher thread, read by
	// the window procedure.
	current atomic.Pointer[Platform]
)

type window struct {
	cursor      winloop.Cursor
	composition bool
	candidate   bool
	icons       []uintptr
	// surrogate holds the high half of a pending UTF-16 character.
	surrogate uint16
}

// Platform is a winloop.Platform driving native Win32 windows. Only one
// Platform can be attached at a time in a process.
type Platform struct {
	logger *slog.Logger

	mailbox

	hinst   windows.Handle
	class   uint16
	msgWnd  atomic.Uintptr
	windows map[uintptr]*window
}

// Option configures a Platform.
type Option func(*Platform)

// WithLogger sets the logger of the platform.
func WithLogger(l *slog.Logger) Option {
	return func(p *Platform) {
		p.logger = l
	}
}

// New returns an unattached Platform.
func New(opts ...Option) *Platform {
	p := &Platform{
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		windows: make(map[uintptr]*window),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Attach registers the window class and creates the message window used for
// wake notifications on the calling thread.
func (p *Platform) Attach() error {
	if !current.CompareAndSwap(nil, p) {
		return errAttached
	}
	wndProcOnce.Do(func() {
		wndProcCallback = windows.NewCallback(wndProc)
	})
	setProcessDpiAwarenessContext(_DPI_AWARENESS_CONTEXT_PER_MONITOR_AWARE_V2)

	// Make sure the thread has a message queue.
	var m msg
	peekMessage(&m, _PM_NOREMOVE)

	hinst, err := getModuleHandle()
	if err != nil {
		current.Store(nil)
		return err
	}
	name, err := windows.UTF16PtrFromString(className)
	if err != nil {
		current.Store(nil)
		return err
	}
	cls := wndClassEx{
		Style:         _CS_HREDRAW | _CS_VREDRAW,
		LpfnWndProc:   wndProcCallback,
		HInstance:     hinst,
		HCursor:       windows.Handle(loadCursor(cursorIDs[winloop.CursorArrow])),
		LpszClassName: name,
	}
	cls.CbSize = uint32(unsafe.Sizeof(cls))
	class, err := registerClassEx(&cls)
	if err != nil {
		current.Store(nil)
		return err
	}
	wnd, err := createWindowEx(0, name, name, 0, 0, 0, 0, 0, _HWND_MESSAGE, hinst)
	if err != nil {
		unregisterClass(class, hinst)
		current.Store(nil)
		return err
	}
	p.hinst, p.class = hinst, class
	p.msgWnd.Store(wnd)
	return nil
}

// Detach destroys the windows still alive, the message window and the
// window class.
func (p *Platform) Detach() {
	for hwnd := range p.windows {
		if err := destroyWindow(hwnd); err != nil {
			p.logger.Warn("destroy window", "window", winloop.Handle(hwnd), "error", err)
		}
	}
	if wnd := p.msgWnd.Swap(0); wnd != 0 {
		destroyWindow(wnd)
	}
	unregisterClass(p.class, p.hinst)
	p.reset()
	current.CompareAndSwap(p, nil)
}

func (p *Platform) Wake() {
	wnd := p.msgWnd.Load()
	if wnd == 0 {
		return
	}
	if err := postMessage(wnd, wmWake, 0, 0); err != nil {
		p.logger.Error("wake dispatcher", "error", err)
	}
}

// Wait pumps the thread message queue until the window procedure captured a
// message. After a move or resize gesture whose messages all went to the
// sink, it returns an empty message.
func (p *Platform) Wait() (winloop.Message, error) {
	for !p.ready() {
		var m msg
		r, err := getMessage(&m)
		if err != nil {
			return winloop.Message{}, err
		}
		if r == 0 {
			return winloop.Message{}, errQuit
		}
		translateMessage(&m)
		dispatchMessage(&m)
	}
	return p.next(), nil
}

func (p *Platform) Decode(m winloop.Message) (winloop.Event, bool) {
	r, ok := m.Raw.(raw)
	if !ok {
		return nil, false
	}
	return decode(r)
}

func windowStyle(s winloop.Style) uint32 {
	if s == winloop.StyleBorderless {
		return _WS_POPUP
	}
	style := uint32(_WS_SYSMENU)
	for _, m := range []struct {
		s  winloop.Style
		ws uint32
	}{
		{winloop.StyleTitle, _WS_CAPTION},
		{winloop.StyleResizable, _WS_THICKFRAME},
		{winloop.StyleMinimize, _WS_MINIMIZEBOX},
		{winloop.StyleMaximize, _WS_MAXIMIZEBOX},
	} {
		if s.Has(m.s) {
			style |= m.ws
		}
	}
	return style
}

func (p *Platform) Create(cfg *winloop.Config) (winloop.Handle, error) {
	title, err := windows.UTF16PtrFromString(cfg.Title)
	if err != nil {
		return 0, &winloop.ConstructionError{Err: err}
	}
	class, _ := windows.UTF16PtrFromString(className)

	pos := point{X: int32(cfg.Position.X), Y: int32(cfg.Position.Y)}
	dpi := dpiAt(pos)
	size := cfg.PhysicalSize(dpi)
	style := windowStyle(cfg.Style)
	var exStyle uint32
	if cfg.AcceptDropFiles {
		exStyle |= _WS_EX_ACCEPTFILES
	}
	rc := rect{Right: int32(size.Width), Bottom: int32(size.Height)}
	adjustWindowRectExForDpi(&rc, style, exStyle, dpi)

	hwnd, err := createWindowEx(exStyle, class, title, style,
		pos.X, pos.Y, rc.Right-rc.Left, rc.Bottom-rc.Top, 0, p.hinst)
	if err != nil {
		return 0, &winloop.ConstructionError{Err: err}
	}
	win := &window{
		cursor:      cfg.Cursor,
		composition: cfg.IMECompositionWindow,
		candidate:   cfg.IMECandidateWindow,
	}
	p.windows[hwnd] = win

	if !cfg.IME {
		immAssociateContextEx(hwnd, false)
	}
	if cfg.Icon != nil {
		p.setIcon(hwnd, win, cfg.Icon)
	}
	return winloop.Handle(hwnd), nil
}

func (p *Platform) setIcon(hwnd uintptr, win *window, icon *resource.Icon) {
	for _, img := range []struct {
		which uintptr
		size  int
		bgra  []byte
	}{
		{_ICON_BIG, icon.Large.Bounds().Dx(), resource.BGRA(icon.Large)},
		{_ICON_SMALL, icon.Small.Bounds().Dx(), resource.BGRA(icon.Small)},
	} {
		h, err := createIcon(p.hinst, img.size, img.size, img.bgra)
		if err != nil {
			p.logger.Warn("create window icon", "window", winloop.Handle(hwnd), "error", err)
			continue
		}
		win.icons = append(win.icons, h)
		sendMessage(hwnd, _WM_SETICON, img.which, h)
	}
}

func (p *Platform) lookup(h winloop.Handle) (uintptr, *window, bool) {
	win, ok := p.windows[uintptr(h)]
	return uintptr(h), win, ok
}

// Destroy destroys the window. WM_DESTROY is captured before it returns.
func (p *Platform) Destroy(h winloop.Handle) error {
	hwnd, _, ok := p.lookup(h)
	if !ok {
		return ErrUnknownWindow
	}
	return destroyWindow(hwnd)
}

func (p *Platform) Show(h winloop.Handle, visible bool) {
	hwnd, _, ok := p.lookup(h)
	if !ok {
		return
	}
	cmd := int32(_SW_HIDE)
	if visible {
		cmd = _SW_SHOW
	}
	showWindow(hwnd, cmd)
}

func (p *Platform) Redraw(h winloop.Handle) {
	if hwnd, _, ok := p.lookup(h); ok {
		invalidateRect(hwnd)
	}
}

func (p *Platform) RequestClose(h winloop.Handle) {
	hwnd, _, ok := p.lookup(h)
	if !ok {
		return
	}
	if err := postMessage(hwnd, _WM_CLOSE, 0, 0); err != nil {
		p.logger.Warn("request close", "window", h, "error", err)
	}
}

func (p *Platform) TrackPointer(h winloop.Handle) {
	if hwnd, _, ok := p.lookup(h); ok {
		trackLeave(hwnd)
	}
}

func (p *Platform) ApplyCursor(h winloop.Handle, c winloop.Cursor) {
	_, win, ok := p.lookup(h)
	if !ok {
		return
	}
	win.cursor = c
	if id, ok := cursorIDs[c]; ok {
		setCursor(loadCursor(id))
	}
}

func (p *Platform) SetIME(h winloop.Handle, enabled bool) {
	if hwnd, _, ok := p.lookup(h); ok {
		immAssociateContextEx(hwnd, enabled)
	}
}

func (p *Platform) PlaceIME(h winloop.Handle, pos winloop.Point[int], composition, candidate bool) {
	hwnd, win, ok := p.lookup(h)
	if !ok {
		return
	}
	win.composition, win.candidate = composition, candidate
	imc := immGetContext(hwnd)
	if imc == 0 {
		return
	}
	defer immReleaseContext(hwnd, imc)
	if composition {
		immSetCompositionWindow(imc, int32(pos.X), int32(pos.Y))
	}
	if candidate {
		immSetCandidateWindow(imc, int32(pos.X), int32(pos.Y))
	}
}

func (p *Platform) Geometry(h winloop.Handle) (winloop.Geometry, error) {
	hwnd, _, ok := p.lookup(h)
	if !ok {
		return winloop.Geometry{}, fmt.Errorf("%w: %v", ErrUnknownWindow, h)
	}
	wr := getWindowRect(hwnd)
	cr := getClientRect(hwnd)
	return winloop.Geometry{
		Position:   winloop.Pt(int(wr.Left), int(wr.Top)),
		ClientSize: winloop.Sz(int(cr.Right-cr.Left), int(cr.Bottom-cr.Top)),
		DPI:        getDpiForWindow(hwnd),
	}, nil
}

// Raw returns the HWND of the window.
func (p *Platform) Raw(h winloop.Handle) uintptr { return uintptr(h) }

var cursorIDs = map[winloop.Cursor]uint16{
	winloop.CursorAppStarting: 32650,
	winloop.CursorArrow:       32512,
	winloop.CursorCross:       32515,
	winloop.CursorHand:        32649,
	winloop.CursorHelp:        32651,
	winloop.CursorIBeam:       32513,
	winloop.CursorNo:          32648,
	winloop.CursorSizeAll:     32646,
	winloop.CursorSizeNESW:    32643,
	winloop.CursorSizeNS:      32645,
	winloop.CursorSizeNWSE:    32642,
	winloop.CursorSizeWE:      32644,
	winloop.CursorUpArrow:     32516,
	winloop.CursorWait:        32514,
}
