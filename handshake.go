package winloop

import (
	"context"
	"sync/atomic"
)

// CloseHandshake gates the close attempts of one window. Until somebody asks
// for close requests, a close attempt destroys the window right away. After
// that, each attempt hands a CloseRequest to the subscribers, and the window
// stays open until one of them confirms.
//
// The hand-off slot holds a single request. A close attempt that finds it
// still occupied destroys the window instead of waiting, so a window never
// becomes unclosable and the dispatcher thread never blocks on a subscriber.
type CloseHandshake struct {
	handle     Handle
	slot       chan *CloseRequest
	done       chan struct{}
	registered bool
	closed     bool
}

func newCloseHandshake(h Handle) *CloseHandshake {
	return &CloseHandshake{
		handle: h,
		slot:   make(chan *CloseRequest, 1),
		done:   make(chan struct{}),
	}
}

// Registered reports whether a subscriber asked for close requests.
func (hs *CloseHandshake) Registered() bool { return hs.registered }

// Pending reports whether a request waits in the slot.
func (hs *CloseHandshake) Pending() bool { return len(hs.slot) > 0 }

// subscribe marks the handshake as watched and returns the subscriber side.
func (hs *CloseHandshake) subscribe() *CloseRequests {
	hs.registered = true
	return &CloseRequests{handle: hs.handle, slot: hs.slot, done: hs.done}
}

// offer hands a new request to the subscribers. It reports false when the
// window has to be destroyed right away.
func (hs *CloseHandshake) offer(d *Dispatcher) bool {
	if !hs.registered || hs.closed {
		return false
	}
	req := &CloseRequest{dispatcher: d, handle: hs.handle}
	select {
	case hs.slot <- req:
		return true
	default:
		return false
	}
}

func (hs *CloseHandshake) close() {
	if hs.closed {
		return
	}
	hs.closed = true
	close(hs.done)
}

// CloseRequest is one pending close decision. The first call to Confirm or
// Dismiss decides; later calls do nothing.
type CloseRequest struct {
	dispatcher *Dispatcher
	handle     Handle
	used       atomic.Bool
}

// Window returns the handle of the window asking to be closed.
func (r *CloseRequest) Window() Handle { return r.handle }

// Confirm lets the close proceed: the window is destroyed.
func (r *CloseRequest) Confirm() {
	if !r.used.CompareAndSwap(false, true) {
		return
	}
	h := r.handle
	r.dispatcher.Post(func(c *Context) {
		c.destroy(h)
	})
}

// Dismiss keeps the window open. The next close attempt is handled afresh.
func (r *CloseRequest) Dismiss() {
	r.used.CompareAndSwap(false, true)
}

// Decided reports whether Confirm or Dismiss was called.
func (r *CloseRequest) Decided() bool { return r.used.Load() }

// CloseRequests delivers the close requests of one window.
type CloseRequests struct {
	handle Handle
	slot   chan *CloseRequest
	done   chan struct{}
}

// Window returns the handle of the watched window.
func (s *CloseRequests) Window() Handle { return s.handle }

// Recv waits for the next close request. It returns ErrClosed once the
// window is destroyed.
func (s *CloseRequests) Recv(ctx context.Context) (*CloseRequest, error) {
	select {
	case req := <-s.slot:
		return req, nil
	case <-s.done:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Done is closed when the window is destroyed.
func (s *CloseRequests) Done() <-chan struct{} { return s.done }
