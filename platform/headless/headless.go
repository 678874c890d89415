// Package headless is an in-memory platform for the dispatcher. Windows are
// plain records and native messages are events injected by the caller, in
// the order they are injected. It backs the tests of the module and the
// replay of recorded sessions.
package headless

import (
	"errors"
	"fmt"
	"sync"

	"github.com/esimov/winloop"
)

// ErrUnknownWindow is returned for handles the platform never created or
// already destroyed.
var ErrUnknownWindow = errors.New("headless: unknown window")

// firstHandle is the value of the first handle handed out.
const firstHandle winloop.Handle = 0x10

// Window is the observable state of a headless window.
type Window struct {
	Config     winloop.Config
	Geometry   winloop.Geometry
	Visible    bool
	Cursor     winloop.Cursor
	IMEEnabled bool
	// IMEPosition, IMEComposition and IMECandidate record the last PlaceIME call.
	IMEPosition    winloop.Point[int]
	IMEComposition bool
	IMECandidate   bool
	// Tracking is set by TrackPointer and cleared when a leave event is injected.
	Tracking bool
	Redraws  int
}

// Platform is an in-memory winloop.Platform. The zero value is not usable;
// create instances with New.
type Platform struct {
	mu       sync.Mutex
	cond     *sync.Cond
	queue    []winloop.Message
	windows  map[winloop.Handle]*Window
	next     winloop.Handle
	attached bool
	failNext error
	dpi      uint32
}

// Option configures a Platform.
type Option func(*Platform)

// WithDPI sets the DPI reported for new windows.
func WithDPI(dpi uint32) Option {
	return func(p *Platform) {
		p.dpi = dpi
	}
}

// New returns an empty platform.
func New(opts ...Option) *Platform {
	p := &Platform{
		windows: make(map[winloop.Handle]*Window),
		next:    firstHandle,
		dpi:     winloop.DefaultDPI,
	}
	p.cond = sync.NewCond(&p.mu)
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// push appends a message. Caller must hold the lock.
func (p *Platform) push(msg winloop.Message) {
	p.queue = append(p.queue, msg)
	p.cond.Signal()
}

// Inject queues events as native messages.
func (p *Platform) Inject(events ...winloop.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, ev := range events {
		if leave, ok := ev.(winloop.PointerLeaveEvent); ok {
			if w, ok := p.windows[leave.Window]; ok {
				w.Tracking = false
			}
		}
		p.push(winloop.Message{Raw: ev})
	}
}

// InjectRaw queues a message with an arbitrary payload. Payloads that are
// not events decode to nothing.
func (p *Platform) InjectRaw(raw any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.push(winloop.Message{Raw: raw})
}

// FailNext makes the next Create call fail with err.
func (p *Platform) FailNext(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failNext = err
}

// Snapshot returns a copy of the state of h.
func (p *Platform) Snapshot(h winloop.Handle) (Window, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	w, ok := p.windows[h]
	if !ok {
		return Window{}, false
	}
	return *w, true
}

// SetGeometry overrides the placement reported for h.
func (p *Platform) SetGeometry(h winloop.Handle, g winloop.Geometry) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	w, ok := p.windows[h]
	if !ok {
		return fmt.Errorf("%w: %#x", ErrUnknownWindow, uintptr(h))
	}
	w.Geometry = g
	return nil
}

// Windows returns the number of live windows.
func (p *Platform) Windows() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.windows)
}

// Pending returns the number of queued messages.
func (p *Platform) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// Attached reports whether a dispatcher thread is attached.
func (p *Platform) Attached() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.attached
}

// Attach implements winloop.Platform.
func (p *Platform) Attach() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.attached {
		return errors.New("headless: already attached")
	}
	p.attached = true
	return nil
}

// Detach implements winloop.Platform. Windows still alive are dropped.
func (p *Platform) Detach() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.attached = false
	for h := range p.windows {
		delete(p.windows, h)
	}
}

// Wake implements winloop.Platform.
func (p *Platform) Wake() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.push(winloop.Message{Wake: true})
}

// Wait implements winloop.Platform.
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

// Decode implements winloop.Decoder. Injected events decode to themselves.
func (p *Platform) Decode(msg winloop.Message) (winloop.Event, bool) {
	ev, ok := msg.Raw.(winloop.Event)
	return ev, ok
}

// Create implements winloop.Platform.
func (p *Platform) Create(cfg *winloop.Config) (winloop.Handle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.failNext; err != nil {
		p.failNext = nil
		return 0, err
	}
	h := p.next
	p.next++
	p.windows[h] = &Window{
		Config: *cfg,
		Geometry: winloop.Geometry{
			Position:   cfg.Position,
			ClientSize: cfg.PhysicalSize(p.dpi),
			DPI:        p.dpi,
		},
		Cursor:     cfg.Cursor,
		IMEEnabled: cfg.IME,
	}
	return h, nil
}

func (p *Platform) lookup(h winloop.Handle) (*Window, error) {
	w, ok := p.windows[h]
	if !ok {
		return nil, fmt.Errorf("%w: %#x", ErrUnknownWindow, uintptr(h))
	}
	return w, nil
}

// Destroy implements winloop.Platform. The DestroyEvent is queued behind the
// messages already pending.
func (p *Platform) Destroy(h winloop.Handle) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := p.lookup(h); err != nil {
		return err
	}
	delete(p.windows, h)
	p.push(winloop.Message{Raw: winloop.DestroyEvent{Source: winloop.On(h)}})
	return nil
}

// Show implements winloop.Platform.
func (p *Platform) Show(h winloop.Handle, visible bool) {
	p.update(h, func(w *Window) { w.Visible = visible })
}

// Redraw implements winloop.Platform.
func (p *Platform) Redraw(h winloop.Handle) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if w, err := p.lookup(h); err == nil {
		w.Redraws++
		p.push(winloop.Message{Raw: winloop.PaintEvent{Source: winloop.On(h)}})
	}
}

// RequestClose implements winloop.Platform.
func (p *Platform) RequestClose(h winloop.Handle) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := p.lookup(h); err == nil {
		p.push(winloop.Message{Raw: winloop.CloseEvent{Source: winloop.On(h)}})
	}
}

// TrackPointer implements winloop.Platform.
func (p *Platform) TrackPointer(h winloop.Handle) {
	p.update(h, func(w *Window) { w.Tracking = true })
}

// ApplyCursor implements winloop.Platform.
func (p *Platform) ApplyCursor(h winloop.Handle, c winloop.Cursor) {
	p.update(h, func(w *Window) { w.Cursor = c })
}

// SetIME implements winloop.Platform.
func (p *Platform) SetIME(h winloop.Handle, enabled bool) {
	p.update(h, func(w *Window) { w.IMEEnabled = enabled })
}

// PlaceIME implements winloop.Platform.
func (p *Platform) PlaceIME(h winloop.Handle, pos winloop.Point[int], composition, candidate bool) {
	p.update(h, func(w *Window) {
		w.IMEPosition = pos
		w.IMEComposition = composition
		w.IMECandidate = candidate
	})
}

// Geometry implements winloop.Platform.
func (p *Platform) Geometry(h winloop.Handle) (winloop.Geometry, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	w, err := p.lookup(h)
	if err != nil {
		return winloop.Geometry{}, err
	}
	return w.Geometry, nil
}

// Raw implements winloop.Platform.
func (p *Platform) Raw(h winloop.Handle) uintptr { return uintptr(h) }

func (p *Platform) update(h winloop.Handle, fn func(*Window)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if w, err := p.lookup(h); err == nil {
		fn(w)
	}
}
