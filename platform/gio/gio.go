// Package gio drives winloop windows with the Gio toolkit.
//
// Gio runs its own window threads, so every window gets a pump goroutine
// that forwards the window events to a queue read by the dispatcher. Frame
// events are answered by the pump itself: it registers the input handlers of
// the whole client area, applies the current cursor and completes the frame.
//
// Gio has no way to intercept the close button of a window, so a user closing
// a window destroys it directly; only Window.RequestClose goes through the
// close handshake. Programs using this backend must call app.Main from the
// main goroutine.
package gio

import (
	"errors"
	"image"
	"io"
	"log/slog"
	"math"
	"sync"
	"unicode/utf8"

	"gioui.org/app"
	"gioui.org/io/event"
	"gioui.org/io/key"
	"gioui.org/io/pointer"
	"gioui.org/io/system"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/unit"

	"github.com/esimov/winloop"
	"github.com/esimov/winloop/utils"
)

// ErrUnknownWindow is returned for handles the platform never created or
// already destroyed.
var ErrUnknownWindow = errors.New("gio: unknown window")

var errAttached = errors.New("gio: platform already attached")

const pointerTypes = pointer.Move | pointer.Drag | pointer.Enter | pointer.Leave |
	pointer.Press | pointer.Release | pointer.Scroll

// scrollBounds accepts any scroll distance.
var scrollBounds = image.Rect(-1<<20, -1<<20, 1<<20, 1<<20)

// message is the raw payload of the winloop messages of this backend.
type message struct {
	window winloop.Handle
	event  event.Event
}

// Synthetic events produced by the pumps and by the platform.
type (
	resized struct{ size image.Point }
	rescaled struct{ dpi uint32 }
	painted  struct{}
	closing  struct{}
)

func (resized) ImplementsEvent()  {}
func (rescaled) ImplementsEvent() {}
func (painted) ImplementsEvent()  {}
func (closing) ImplementsEvent()  {}

type window struct {
	h winloop.Handle
	w *app.Window

	// Owned by the pump goroutine.
	ops  op.Ops
	size image.Point
	dpi  uint32

	mu     sync.Mutex
	cursor pointer.Cursor

	// Owned by the dispatcher thread.
	geom    winloop.Geometry
	buttons pointer.Buttons
	keys    map[string]bool
	ime     bool
}

// Platform is a winloop.Platform backed by Gio windows.
type Platform struct {
	logger *slog.Logger

	mu       sync.Mutex
	cond     *sync.Cond
	queue    []winloop.Message
	windows  map[winloop.Handle]*window
	next     winloop.Handle
	attached bool
}

// Option configures a Platform.
type Option func(*Platform)

// WithLogger sets the logger of the platform.
func WithLogger(l *slog.Logger) Option {
	return func(p *Platform) {
		p.logger = l
	}
}

// New returns a Platform without windows.
func New(opts ...Option) *Platform {
	p := &Platform{
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		windows: make(map[winloop.Handle]*window),
	}
	p.cond = sync.NewCond(&p.mu)
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Platform) push(msg winloop.Message) {
	p.mu.Lock()
	p.queue = append(p.queue, msg)
	p.mu.Unlock()
	p.cond.Signal()
}

func (p *Platform) send(h winloop.Handle, ev event.Event) {
	p.push(winloop.Message{Raw: message{window: h, event: ev}})
}

func (p *Platform) Attach() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.attached {
		return errAttached
	}
	p.attached = true
	return nil
}

// Detach closes the windows still alive. Their pumps exit once Gio delivers
// the destroy events.
func (p *Platform) Detach() {
	p.mu.Lock()
	windows := p.windows
	p.windows = make(map[winloop.Handle]*window)
	p.attached = false
	p.mu.Unlock()
	for _, win := range windows {
		win.w.Perform(system.ActionClose)
	}
}

func (p *Platform) Wake() {
	p.push(winloop.Message{Wake: true})
}

func (p *Platform) Wait() (winloop.Message, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for len(p.queue) == 0 {
		p.cond.Wait()
	}
	msg := p.queue[0]
	p.queue[0] = winloop.Message{}
	p.queue = p.queue[1:]
	return msg, nil
}

func (p *Platform) lookup(h winloop.Handle) (*window, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	win, ok := p.windows[h]
	return win, ok
}

func (p *Platform) Create(cfg *winloop.Config) (winloop.Handle, error) {
	size := cfg.Size
	if cfg.SizeUnit == winloop.Physical {
		size = size.ToLogical(winloop.DefaultDPI)
	}
	if cfg.Icon != nil {
		p.logger.Debug("window icons are not supported by gio", "title", cfg.Title)
	}

	p.mu.Lock()
	p.next++
	h := p.next
	win := &window{
		h:      h,
		cursor: gioCursor(cfg.Cursor),
		keys:   make(map[string]bool),
		ime:    cfg.IME,
		geom: winloop.Geometry{
			Position:   cfg.Position,
			ClientSize: cfg.PhysicalSize(winloop.DefaultDPI),
			DPI:        winloop.DefaultDPI,
		},
	}
	p.windows[h] = win
	p.mu.Unlock()

	win.w = app.NewWindow(
		app.Title(cfg.Title),
		app.Size(unit.Dp(float32(size.Width)), unit.Dp(float32(size.Height))),
		app.Decorated(cfg.Style != winloop.StyleBorderless),
	)
	go p.pump(win)
	return h, nil
}

// pump forwards the events of one Gio window until it is destroyed.
func (p *Platform) pump(win *window) {
	for e := range win.w.Events() {
		switch e := e.(type) {
		case system.FrameEvent:
			p.frame(win, e)
		case system.DestroyEvent:
			if e.Err != nil {
				p.logger.Error("gio window failed", "window", win.h, "error", e.Err)
			}
			p.send(win.h, e)
			return
		default:
			p.send(win.h, e)
		}
	}
}

func (p *Platform) frame(win *window, e system.FrameEvent) {
	if e.Size != win.size {
		win.size = e.Size
		p.send(win.h, resized{size: e.Size})
	}
	if dpi := uint32(math.Round(float64(e.Metric.PxPerDp) * winloop.DefaultDPI)); dpi != win.dpi {
		win.dpi = dpi
		p.send(win.h, rescaled{dpi: dpi})
	}
	for _, ev := range e.Queue.Events(win) {
		if edit, ok := ev.(key.EditEvent); ok {
			for _, r := range edit.Text {
				p.send(win.h, key.EditEvent{Range: edit.Range, Text: string(r)})
			}
			continue
		}
		p.send(win.h, ev)
	}

	win.mu.Lock()
	cursor := win.cursor
	win.mu.Unlock()

	win.ops.Reset()
	area := clip.Rect(image.Rectangle{Max: e.Size}).Push(&win.ops)
	pointer.InputOp{Tag: win, Types: pointerTypes, ScrollBounds: scrollBounds}.Add(&win.ops)
	cursor.Add(&win.ops)
	key.InputOp{Tag: win}.Add(&win.ops)
	key.FocusOp{Tag: win}.Add(&win.ops)
	area.Pop()
	e.Frame(&win.ops)

	p.send(win.h, painted{})
}

// Destroy closes the Gio window. Its pump delivers the destroy event.
func (p *Platform) Destroy(h winloop.Handle) error {
	win, ok := p.lookup(h)
	if !ok {
		return ErrUnknownWindow
	}
	win.w.Perform(system.ActionClose)
	return nil
}

// Show restores the window, or minimizes it since Gio cannot hide windows.
func (p *Platform) Show(h winloop.Handle, visible bool) {
	win, ok := p.lookup(h)
	if !ok {
		return
	}
	mode := app.Minimized
	if visible {
		mode = app.Windowed
	}
	win.w.Option(mode.Option())
}

func (p *Platform) Redraw(h winloop.Handle) {
	if win, ok := p.lookup(h); ok {
		win.w.Invalidate()
	}
}

func (p *Platform) RequestClose(h winloop.Handle) {
	if _, ok := p.lookup(h); ok {
		p.send(h, closing{})
	}
}

// TrackPointer is a no-op: Gio always reports the pointer leaving a handler.
func (p *Platform) TrackPointer(winloop.Handle) {}

func (p *Platform) ApplyCursor(h winloop.Handle, c winloop.Cursor) {
	win, ok := p.lookup(h)
	if !ok || c == winloop.NoCursor {
		return
	}
	win.mu.Lock()
	win.cursor = gioCursor(c)
	win.mu.Unlock()
	win.w.Invalidate()
}

// SetIME records the state. Gio manages input methods itself.
func (p *Platform) SetIME(h winloop.Handle, enabled bool) {
	if win, ok := p.lookup(h); ok {
		win.ime = enabled
	}
}

// PlaceIME is a no-op: Gio places the composition window at the caret.
func (p *Platform) PlaceIME(winloop.Handle, winloop.Point[int], bool, bool) {}

func (p *Platform) Geometry(h winloop.Handle) (winloop.Geometry, error) {
	win, ok := p.lookup(h)
	if !ok {
		return winloop.Geometry{}, ErrUnknownWindow
	}
	return win.geom, nil
}

// Raw returns the handle itself; Gio does not expose native handles.
func (p *Platform) Raw(h winloop.Handle) uintptr { return uintptr(h) }

// Decode translates the Gio events forwarded by the pumps.
func (p *Platform) Decode(msg winloop.Message) (winloop.Event, bool) {
	m, ok := msg.Raw.(message)
	if !ok {
		return nil, false
	}
	win, ok := p.lookup(m.window)
	if !ok {
		if _, destroyed := m.event.(system.DestroyEvent); destroyed {
			return winloop.DestroyEvent{Source: winloop.On(m.window)}, true
		}
		return nil, false
	}
	src := winloop.On(win.h)

	switch e := m.event.(type) {
	case painted:
		return winloop.PaintEvent{Source: src}, true
	case resized:
		win.geom.ClientSize = winloop.Sz(e.size.X, e.size.Y)
		return winloop.SizeEvent{Source: src, Size: win.geom.ClientSize}, true
	case rescaled:
		win.geom.DPI = e.dpi
		return winloop.DPIEvent{Source: src, DPI: e.dpi}, true
	case closing:
		return winloop.CloseEvent{Source: src}, true
	case pointer.Event:
		return win.decodePointer(e)
	case key.Event:
		state, prev := winloop.Released, winloop.Released
		if win.keys[e.Name] {
			prev = winloop.Pressed
		}
		if e.State == key.Press {
			state = winloop.Pressed
		}
		win.keys[e.Name] = state == winloop.Pressed
		return winloop.KeyEvent{Source: src, Input: winloop.KeyInput{
			State:     state,
			KeyCode:   winloop.KeyCode{Name: e.Name},
			PrevState: prev,
		}}, true
	case key.EditEvent:
		r, n := utf8.DecodeRuneInString(e.Text)
		if n == 0 {
			return nil, false
		}
		return winloop.CharEvent{Source: src, Char: r}, true
	case key.FocusEvent:
		return winloop.ActivateEvent{Source: src, Active: e.Focus}, true
	case system.DestroyEvent:
		p.mu.Lock()
		delete(p.windows, win.h)
		p.mu.Unlock()
		return winloop.DestroyEvent{Source: src}, true
	}
	return nil, false
}

func (win *window) decodePointer(e pointer.Event) (winloop.Event, bool) {
	src := winloop.On(win.h)
	state := winloop.MouseState{
		Position: winloop.Pt(int(e.Position.X), int(e.Position.Y)),
		Buttons:  mouseButtons(e.Buttons),
	}
	prev := win.buttons
	win.buttons = e.Buttons

	switch e.Type {
	case pointer.Move, pointer.Drag, pointer.Enter:
		return winloop.PointerMoveEvent{Source: src, State: state}, true
	case pointer.Leave:
		return winloop.PointerLeaveEvent{Source: src, State: state}, true
	case pointer.Press, pointer.Release:
		changed, bs := e.Buttons&^prev, winloop.Pressed
		if e.Type == pointer.Release {
			changed, bs = prev&^e.Buttons, winloop.Released
		}
		b, ok := firstButton(changed)
		if !ok {
			return nil, false
		}
		return winloop.MouseInputEvent{Source: src, Input: winloop.MouseInput{
			Button:      b,
			ButtonState: bs,
			MouseState:  state,
		}}, true
	case pointer.Scroll:
		// Gio scrolls in pixels, with the opposite sign.
		wheel := winloop.MouseWheel{Delta: wheelDelta(e.Scroll.Y), MouseState: state}
		if e.Scroll.Y == 0 {
			wheel.Delta, wheel.Horizontal = wheelDelta(e.Scroll.X), true
		}
		return winloop.MouseWheelEvent{Source: src, Wheel: wheel}, true
	}
	return nil, false
}

func wheelDelta(v float32) int16 {
	return int16(utils.Clamp(math.Round(float64(-v)), math.MinInt16, math.MaxInt16))
}

var buttonMap = []struct {
	gio pointer.Buttons
	btn winloop.MouseButton
}{
	{pointer.ButtonPrimary, winloop.MouseLeft},
	{pointer.ButtonSecondary, winloop.MouseRight},
	{pointer.ButtonTertiary, winloop.MouseMiddle},
}

func mouseButtons(b pointer.Buttons) winloop.MouseButtons {
	var set winloop.MouseButtons
	for _, m := range buttonMap {
		if b&m.gio != 0 {
			set |= winloop.Buttons(m.btn)
		}
	}
	return set
}

func firstButton(b pointer.Buttons) (winloop.MouseButton, bool) {
	for _, m := range buttonMap {
		if b&m.gio != 0 {
			return m.btn, true
		}
	}
	return 0, false
}

var gioCursors = map[winloop.Cursor]pointer.Cursor{
	winloop.CursorAppStarting: pointer.CursorProgress,
	winloop.CursorCross:       pointer.CursorCrosshair,
	winloop.CursorHand:        pointer.CursorPointer,
	winloop.CursorIBeam:       pointer.CursorText,
	winloop.CursorNo:          pointer.CursorNotAllowed,
	winloop.CursorSizeAll:     pointer.CursorGrab,
	winloop.CursorSizeNESW:    pointer.CursorNorthEastSouthWestResize,
	winloop.CursorSizeNS:      pointer.CursorNorthSouthResize,
	winloop.CursorSizeNWSE:    pointer.CursorNorthWestSouthEastResize,
	winloop.CursorSizeWE:      pointer.CursorEastWestResize,
	winloop.CursorWait:        pointer.CursorWait,
}

// gioCursor maps c to the closest Gio cursor. Shapes Gio lacks, such as
// help and up-arrow, get the default cursor.
func gioCursor(c winloop.Cursor) pointer.Cursor {
	if gc, ok := gioCursors[c]; ok {
		return gc
	}
	return pointer.CursorDefault
}
