package winloop

import (
	"context"
	"sync/atomic"

	"github.com/esimov/winloop/utils"
)

// subscriberSet is an immutable snapshot of a channel's receivers.
// It is replaced as a whole, never modified in place.
type subscriberSet[T any] struct {
	receivers []*Receiver[T]
	closed    bool
}

// EventChannel is a bounded broadcast channel with a single producer and any
// number of receivers. Each receiver owns a queue of the channel's capacity;
// when a receiver falls behind, its oldest unread value is evicted to make
// room for the new one, so the producer never blocks and a slow receiver
// never affects the others.
//
// Send and Close belong to the producer. Subscribe may be called from any
// goroutine.
type EventChannel[T any] struct {
	capacity int
	subs     atomic.Pointer[subscriberSet[T]]
	sent     atomic.Uint64
}

// NewEventChannel returns a channel whose receivers buffer up to capacity values.
func NewEventChannel[T any](capacity int) *EventChannel[T] {
	c := &EventChannel[T]{capacity: utils.Max(capacity, 1)}
	c.subs.Store(&subscriberSet[T]{})
	return c
}

// Capacity returns the per-receiver queue length.
func (c *EventChannel[T]) Capacity() int { return c.capacity }

// Subscribers returns the number of live receivers.
func (c *EventChannel[T]) Subscribers() int {
	return len(c.subs.Load().receivers)
}

// Sent returns the number of values broadcast so far.
func (c *EventChannel[T]) Sent() uint64 { return c.sent.Load() }

// Subscribe returns a receiver that observes every value sent from now on.
// Subscribing to a closed channel returns a closed receiver.
func (c *EventChannel[T]) Subscribe() *Receiver[T] {
	r := &Receiver[T]{
		owner: c,
		queue: make(chan T, c.capacity),
		done:  make(chan struct{}),
	}
	for {
		old := c.subs.Load()
		if old.closed {
			r.shut()
			return r
		}
		next := &subscriberSet[T]{
			receivers: append(append([]*Receiver[T](nil), old.receivers...), r),
		}
		if c.subs.CompareAndSwap(old, next) {
			return r
		}
	}
}

// Send broadcasts v to every receiver. It never blocks.
func (c *EventChannel[T]) Send(v T) {
	set := c.subs.Load()
	if set.closed {
		return
	}
	c.sent.Add(1)
	for _, r := range set.receivers {
		r.push(v)
	}
}

// Close ends the channel. Receivers get the values already queued for them
// and then ErrClosed.
func (c *EventChannel[T]) Close() {
	for {
		old := c.subs.Load()
		if old.closed {
			return
		}
		if c.subs.CompareAndSwap(old, &subscriberSet[T]{closed: true}) {
			for _, r := range old.receivers {
				r.shut()
			}
			return
		}
	}
}

func (c *EventChannel[T]) unsubscribe(r *Receiver[T]) {
	for {
		old := c.subs.Load()
		if old.closed {
			return
		}
		next := &subscriberSet[T]{receivers: make([]*Receiver[T], 0, len(old.receivers))}
		for _, other := range old.receivers {
			if other != r {
				next.receivers = append(next.receivers, other)
			}
		}
		if len(next.receivers) == len(old.receivers) {
			return
		}
		if c.subs.CompareAndSwap(old, next) {
			return
		}
	}
}

// Receiver is one subscription to an EventChannel.
type Receiver[T any] struct {
	owner   *EventChannel[T]
	queue   chan T
	done    chan struct{}
	closed  atomic.Bool
	dropped atomic.Uint64
}

// push is only called by the producer, so once an eviction made room the
// following send cannot fail.
func (r *Receiver[T]) push(v T) {
	for {
		select {
		case r.queue <- v:
			return
		default:
		}
		if len(r.queue) == cap(r.queue) {
			select {
			case <-r.queue:
				r.dropped.Add(1)
			default:
			}
		}
	}
}

func (r *Receiver[T]) shut() {
	if r.closed.CompareAndSwap(false, true) {
		close(r.done)
	}
}

// Recv waits for the next value. It returns ErrClosed once the channel is
// closed and every queued value was received, or ctx.Err() if ctx ends first.
func (r *Receiver[T]) Recv(ctx context.Context) (T, error) {
	select {
	case v := <-r.queue:
		return v, nil
	default:
	}
	var zero T
	select {
	case v := <-r.queue:
		return v, nil
	case <-r.done:
		select {
		case v := <-r.queue:
			return v, nil
		default:
			return zero, ErrClosed
		}
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// TryRecv returns the oldest queued value without waiting. ok is false when
// nothing is queued; err is ErrClosed when nothing is queued and the channel
// is closed.
func (r *Receiver[T]) TryRecv() (v T, ok bool, err error) {
	select {
	case v = <-r.queue:
		return v, true, nil
	default:
	}
	if r.closed.Load() {
		select {
		case v = <-r.queue:
			return v, true, nil
		default:
			return v, false, ErrClosed
		}
	}
	return v, false, nil
}

// Drain returns every queued value, oldest first. It returns ErrClosed only
// when the channel is closed and nothing was queued.
func (r *Receiver[T]) Drain() ([]T, error) {
	var out []T
	for {
		v, ok, err := r.TryRecv()
		if !ok {
			if len(out) == 0 {
				return nil, err
			}
			return out, nil
		}
		out = append(out, v)
	}
}

// C exposes the receive side of the queue for use in select statements.
// Pair it with Done to notice the end of the channel.
func (r *Receiver[T]) C() <-chan T { return r.queue }

// Done is closed when the channel is closed or the receiver unsubscribed.
func (r *Receiver[T]) Done() <-chan struct{} { return r.done }

// Dropped returns the number of values evicted from this receiver's queue.
func (r *Receiver[T]) Dropped() uint64 { return r.dropped.Load() }

// Close unsubscribes the receiver. Values already queued can still be read.
func (r *Receiver[T]) Close() {
	r.owner.unsubscribe(r)
	r.shut()
}
