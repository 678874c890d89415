package winloop

import (
	"context"
	"errors"
	"fmt"
)

// Window is the application side of a native window. Its methods may be
// called from any goroutine; they are forwarded to the dispatcher thread.
// Once the window is destroyed every method returns ErrClosed.
type Window struct {
	d *Dispatcher
	h Handle
}

type result[R any] struct {
	v   R
	err error
}

// Create builds a window described by cfg on the dispatcher thread. The
// window is registered before it is shown, so its first events are routed.
func Create(ctx context.Context, d *Dispatcher, cfg Config) (*Window, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	res, err := Call(ctx, d, func(c *Context) result[Handle] {
		h, err := c.platform.Create(&cfg)
		if err != nil {
			var cerr *ConstructionError
			if !errors.As(err, &cerr) {
				err = &ConstructionError{Err: err}
			}
			return result[Handle]{err: err}
		}
		c.insert(h, NewWindowState(h, &cfg))
		if cfg.Visible {
			c.platform.Show(h, true)
		}
		return result[Handle]{v: h}
	})
	if err != nil {
		return nil, err
	}
	if res.err != nil {
		return nil, res.err
	}
	return &Window{d: d, h: res.v}, nil
}

// Handle returns the window handle.
func (w *Window) Handle() Handle { return w.h }

// Dispatcher returns the dispatcher the window belongs to.
func (w *Window) Dispatcher() *Dispatcher { return w.d }

func subscribe[T any](ctx context.Context, w *Window, pick func(*WindowState) *EventChannel[T]) (*Receiver[T], error) {
	r, err := Call(ctx, w.d, func(c *Context) *Receiver[T] {
		st, ok := c.registry.Get(w.h)
		if !ok {
			return nil
		}
		return pick(st).Subscribe()
	})
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, ErrClosed
	}
	return r, nil
}

// Draw delivers a value each time the window needs to be painted.
func (w *Window) Draw(ctx context.Context) (*Receiver[struct{}], error) {
	return subscribe(ctx, w, func(s *WindowState) *EventChannel[struct{}] { return s.draw })
}

// CursorEntered delivers the pointer state when the pointer enters the window.
func (w *Window) CursorEntered(ctx context.Context) (*Receiver[MouseState], error) {
	return subscribe(ctx, w, func(s *WindowState) *EventChannel[MouseState] { return s.cursorEntered })
}

// CursorLeft delivers the pointer state when the pointer leaves the window.
func (w *Window) CursorLeft(ctx context.Context) (*Receiver[MouseState], error) {
	return subscribe(ctx, w, func(s *WindowState) *EventChannel[MouseState] { return s.cursorLeft })
}

// CursorMoved delivers pointer motion inside the window.
func (w *Window) CursorMoved(ctx context.Context) (*Receiver[MouseState], error) {
	return subscribe(ctx, w, func(s *WindowState) *EventChannel[MouseState] { return s.cursorMoved })
}

// MouseInput delivers button presses and releases.
func (w *Window) MouseInput(ctx context.Context) (*Receiver[MouseInput], error) {
	return subscribe(ctx, w, func(s *WindowState) *EventChannel[MouseInput] { return s.mouseInput })
}

// MouseWheel delivers vertical and horizontal wheel rotation.
func (w *Window) MouseWheel(ctx context.Context) (*Receiver[MouseWheel], error) {
	return subscribe(ctx, w, func(s *WindowState) *EventChannel[MouseWheel] { return s.mouseWheel })
}

// KeyInput delivers key presses and releases.
func (w *Window) KeyInput(ctx context.Context) (*Receiver[KeyInput], error) {
	return subscribe(ctx, w, func(s *WindowState) *EventChannel[KeyInput] { return s.keyInput })
}

// CharInput delivers translated characters.
func (w *Window) CharInput(ctx context.Context) (*Receiver[rune], error) {
	return subscribe(ctx, w, func(s *WindowState) *EventChannel[rune] { return s.charInput })
}

// IMEStart delivers a value when an input method composition begins.
func (w *Window) IMEStart(ctx context.Context) (*Receiver[struct{}], error) {
	return subscribe(ctx, w, func(s *WindowState) *EventChannel[struct{}] { return s.imeStart })
}

// IMEUpdate delivers the composition string while it is edited.
func (w *Window) IMEUpdate(ctx context.Context) (*Receiver[IMEUpdate], error) {
	return subscribe(ctx, w, func(s *WindowState) *EventChannel[IMEUpdate] { return s.imeUpdate })
}

// IMEEnd delivers the outcome of a composition, committed or canceled.
func (w *Window) IMEEnd(ctx context.Context) (*Receiver[IMEResult], error) {
	return subscribe(ctx, w, func(s *WindowState) *EventChannel[IMEResult] { return s.imeEnd })
}

// Moved delivers the screen position of the window after each move.
func (w *Window) Moved(ctx context.Context) (*Receiver[Point[int]], error) {
	return subscribe(ctx, w, func(s *WindowState) *EventChannel[Point[int]] { return s.moved })
}

// Resizing delivers every intermediate client size, including the ones
// reported during an interactive resize.
func (w *Window) Resizing(ctx context.Context) (*Receiver[Size[int]], error) {
	return subscribe(ctx, w, func(s *WindowState) *EventChannel[Size[int]] { return s.resizing })
}

// Resized delivers the client size once a resize is complete.
func (w *Window) Resized(ctx context.Context) (*Receiver[Size[int]], error) {
	return subscribe(ctx, w, func(s *WindowState) *EventChannel[Size[int]] { return s.resized })
}

// Activated delivers a value when the window gains focus.
func (w *Window) Activated(ctx context.Context) (*Receiver[struct{}], error) {
	return subscribe(ctx, w, func(s *WindowState) *EventChannel[struct{}] { return s.activated })
}

// Deactivated delivers a value when the window loses focus.
func (w *Window) Deactivated(ctx context.Context) (*Receiver[struct{}], error) {
	return subscribe(ctx, w, func(s *WindowState) *EventChannel[struct{}] { return s.deactivated })
}

// DPIChanged delivers the new DPI of the window.
func (w *Window) DPIChanged(ctx context.Context) (*Receiver[uint32], error) {
	return subscribe(ctx, w, func(s *WindowState) *EventChannel[uint32] { return s.dpiChanged })
}

// FilesDropped delivers the paths and drop position of files dropped on the window.
func (w *Window) FilesDropped(ctx context.Context) (*Receiver[DropFiles], error) {
	return subscribe(ctx, w, func(s *WindowState) *EventChannel[DropFiles] { return s.filesDropped })
}

// Closed delivers a single value when the window is destroyed.
func (w *Window) Closed(ctx context.Context) (*Receiver[struct{}], error) {
	return subscribe(ctx, w, func(s *WindowState) *EventChannel[struct{}] { return s.closed })
}

// CloseRequests starts the close handshake: from now on a close attempt is
// handed to the returned subscriber instead of destroying the window.
func (w *Window) CloseRequests(ctx context.Context) (*CloseRequests, error) {
	s, err := Call(ctx, w.d, func(c *Context) *CloseRequests {
		st, ok := c.registry.Get(w.h)
		if !ok {
			return nil
		}
		return st.handshake.subscribe()
	})
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, ErrClosed
	}
	return s, nil
}

// query runs fn against the window state and reports ErrClosed if the
// window is gone.
func query[R any](ctx context.Context, w *Window, fn func(*Context, *WindowState) (R, error)) (R, error) {
	res, err := Call(ctx, w.d, func(c *Context) result[R] {
		st, ok := c.registry.Get(w.h)
		if !ok {
			return result[R]{err: ErrClosed}
		}
		var r result[R]
		r.v, r.err = fn(c, st)
		return r
	})
	if err != nil {
		var zero R
		return zero, err
	}
	return res.v, res.err
}

// update mutates the window state on the dispatcher thread.
func (w *Window) update(ctx context.Context, fn func(*Context, *WindowState)) error {
	_, err := query(ctx, w, func(c *Context, _ *WindowState) (struct{}, error) {
		c.registry.Mutate(w.h, func(st *WindowState) { fn(c, st) })
		return struct{}{}, nil
	})
	return err
}

// Cursor returns the cursor applied when the pointer enters the window.
func (w *Window) Cursor(ctx context.Context) (Cursor, error) {
	return query(ctx, w, func(_ *Context, st *WindowState) (Cursor, error) {
		return st.Cursor, nil
	})
}

// SetCursor changes the window cursor. It takes effect immediately when the
// pointer is inside the window.
func (w *Window) SetCursor(ctx context.Context, cur Cursor) error {
	return w.update(ctx, func(c *Context, st *WindowState) {
		st.Cursor = cur
		if c.pointerOwner == w.h {
			c.platform.ApplyCursor(w.h, cur)
		}
	})
}

// IMEPosition returns where the IME windows are placed, in physical client
// coordinates.
func (w *Window) IMEPosition(ctx context.Context) (Point[int], error) {
	return query(ctx, w, func(_ *Context, st *WindowState) (Point[int], error) {
		return st.IMEPosition, nil
	})
}

// SetIMEPosition moves the IME windows. A logical position is scaled by the
// current DPI of the window.
func (w *Window) SetIMEPosition(ctx context.Context, pos Point[int], unit Unit) error {
	_, err := query(ctx, w, func(c *Context, _ *WindowState) (struct{}, error) {
		if unit == Logical {
			g, err := c.platform.Geometry(w.h)
			if err != nil {
				return struct{}{}, fmt.Errorf("winloop: query dpi: %w", err)
			}
			pos = pos.ToPhysical(int(g.DPI))
		}
		c.registry.Mutate(w.h, func(st *WindowState) {
			st.IMEPosition = pos
		})
		return struct{}{}, nil
	})
	return err
}

// IMEEnabled reports whether the window has an input method context.
func (w *Window) IMEEnabled(ctx context.Context) (bool, error) {
	return query(ctx, w, func(_ *Context, st *WindowState) (bool, error) {
		return st.IMEEnabled, nil
	})
}

// SetIME associates or dissociates the input method context.
func (w *Window) SetIME(ctx context.Context, enabled bool) error {
	return w.update(ctx, func(c *Context, st *WindowState) {
		if st.IMEEnabled == enabled {
			return
		}
		st.IMEEnabled = enabled
		c.platform.SetIME(w.h, enabled)
	})
}

func (w *Window) geometry(ctx context.Context) (Geometry, error) {
	return query(ctx, w, func(c *Context, _ *WindowState) (Geometry, error) {
		g, err := c.platform.Geometry(w.h)
		if err != nil {
			return g, fmt.Errorf("winloop: query geometry: %w", err)
		}
		return g, nil
	})
}

// Position returns the top-left corner of the window on the screen.
func (w *Window) Position(ctx context.Context) (Point[int], error) {
	g, err := w.geometry(ctx)
	return g.Position, err
}

// ClientSize returns the size of the client area in physical pixels.
func (w *Window) ClientSize(ctx context.Context) (Size[int], error) {
	g, err := w.geometry(ctx)
	return g.ClientSize, err
}

// DPI returns the current DPI of the window.
func (w *Window) DPI(ctx context.Context) (uint32, error) {
	g, err := w.geometry(ctx)
	return g.DPI, err
}

// RawHandle returns the native handle of the window.
func (w *Window) RawHandle(ctx context.Context) (uintptr, error) {
	return query(ctx, w, func(c *Context, _ *WindowState) (uintptr, error) {
		return c.platform.Raw(w.h), nil
	})
}

// post runs fn if the window still exists.
func (w *Window) post(fn func(*Context)) {
	w.d.Post(func(c *Context) {
		if _, ok := c.registry.Get(w.h); ok {
			fn(c)
		}
	})
}

// Show makes the window visible.
func (w *Window) Show() {
	w.post(func(c *Context) { c.platform.Show(w.h, true) })
}

// Hide hides the window.
func (w *Window) Hide() {
	w.post(func(c *Context) { c.platform.Show(w.h, false) })
}

// Redraw asks for a paint event.
func (w *Window) Redraw() {
	w.post(func(c *Context) { c.platform.Redraw(w.h) })
}

// RequestClose issues a close attempt, subject to the close handshake.
func (w *Window) RequestClose() {
	w.post(func(c *Context) { c.platform.RequestClose(w.h) })
}

// Close destroys the window without asking the close handshake.
func (w *Window) Close() {
	w.d.Post(func(c *Context) { c.destroy(w.h) })
}
