package winloop

import (
	"log/slog"
)

// Context is the state owned by the dispatcher thread. Commands receive it as
// their only argument; nothing else can reach it.
//
// A command must not wait for another command: Call and the Window queries
// never return when used from the dispatcher thread. Queue follow-up work
// with Post.
type Context struct {
	dispatcher *Dispatcher
	platform   Platform
	logger     *slog.Logger
	registry   *Registry

	// resizing is set between the start and the end of an interactive
	// move/resize gesture.
	resizing bool
	// pointerOwner is the window the pointer is currently inside, zero if none.
	pointerOwner Handle

	fault *Fault
}

func newContext(d *Dispatcher) *Context {
	return &Context{
		dispatcher: d,
		platform:   d.platform,
		logger:     d.logger,
		registry:   NewRegistry(),
	}
}

// Platform returns the windowing subsystem. Its methods may be used directly
// since commands run on the dispatcher thread.
func (c *Context) Platform() Platform { return c.platform }

// Logger returns the dispatcher logger.
func (c *Context) Logger() *slog.Logger { return c.logger }

// Registry returns the window registry.
func (c *Context) Registry() *Registry { return c.registry }

// Window returns the state of h.
func (c *Context) Window(h Handle) (*WindowState, bool) {
	return c.registry.Get(h)
}

// Mutate runs fn with exclusive access to the state of h.
func (c *Context) Mutate(h Handle, fn func(*WindowState)) bool {
	return c.registry.Mutate(h, fn)
}

// Len returns the number of open windows.
func (c *Context) Len() int { return c.registry.Len() }

// Resizing reports whether an interactive move/resize gesture is in progress.
func (c *Context) Resizing() bool { return c.resizing }

// PointerOwner returns the window the pointer is inside.
func (c *Context) PointerOwner() (Handle, bool) {
	return c.pointerOwner, c.pointerOwner != 0
}

// Post queues a command behind the one currently running.
func (c *Context) Post(fn func(*Context)) {
	c.dispatcher.Post(fn)
}

// insert registers the state of a freshly created window.
func (c *Context) insert(h Handle, st *WindowState) {
	c.registry.Insert(h, st)
	c.logger.Debug("window registered", "window", h, "windows", c.registry.Len())
}

// setFault keeps the first fault only.
func (c *Context) setFault(f *Fault) {
	if c.fault == nil {
		c.fault = f
	}
}

// quit reports whether the last window was removed.
func (c *Context) quit() bool { return c.registry.emptied }
