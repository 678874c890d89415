package win32

import "github.com/esimov/winloop"

// mailbox holds the messages captured by the window procedure until Wait
// returns them.
//
// During an interactive move or resize Windows runs its own modal loop
// inside DispatchMessage, so Wait cannot return before the gesture ends.
// While that loop runs, captured messages are handed to the dispatcher sink
// as they arrive. Messages captured while the sink runs, for example by a
// command resizing a window, are queued and delivered after it returns.
type mailbox struct {
	pending []winloop.Message
	sink    func(winloop.Message)

	modal      bool
	delivering bool
	// delivered is set when messages went to the sink during the current
	// Wait, which then returns an empty message so the dispatcher can check
	// its state.
	delivered bool
}

// SetSink implements winloop.Streamer.
func (b *mailbox) SetSink(sink func(winloop.Message)) {
	b.sink = sink
}

// capture queues a window message. WM_ENTERSIZEMOVE starts live delivery,
// WM_EXITSIZEMOVE ends it once delivered itself.
func (b *mailbox) capture(r raw) {
	if r.msg == _WM_ENTERSIZEMOVE {
		b.modal = true
	}
	b.push(winloop.Message{Raw: r})
	if r.msg == _WM_EXITSIZEMOVE {
		b.modal = false
	}
}

func (b *mailbox) push(m winloop.Message) {
	b.pending = append(b.pending, m)
	if b.modal && b.sink != nil && !b.delivering {
		b.flush()
	}
}

func (b *mailbox) flush() {
	b.delivering = true
	defer func() { b.delivering = false }()
	for len(b.pending) > 0 {
		m := b.pop()
		b.sink(m)
		b.delivered = true
	}
}

func (b *mailbox) pop() winloop.Message {
	m := b.pending[0]
	b.pending[0] = winloop.Message{}
	b.pending = b.pending[1:]
	return m
}

// ready reports whether Wait can return.
func (b *mailbox) ready() bool {
	return len(b.pending) > 0 || b.delivered
}

// next returns the oldest queued message, or an empty message when
// everything was already delivered to the sink.
func (b *mailbox) next() winloop.Message {
	b.delivered = false
	if len(b.pending) == 0 {
		return winloop.Message{}
	}
	return b.pop()
}

func (b *mailbox) reset() {
	b.pending = nil
	b.sink = nil
	b.modal, b.delivering, b.delivered = false, false, false
}
