package winloop

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

// State is the lifecycle stage of a Dispatcher.
type State int32

const (
	// NotStarted is the state before the first command is posted.
	NotStarted State = iota
	// Running means the dispatcher thread owns the platform loop.
	Running
	// CleanFinished means the loop ended after the last window was destroyed.
	CleanFinished
	// Faulted means the loop ended because a command or a route panicked.
	Faulted
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not-started"
	case Running:
		return "running"
	case CleanFinished:
		return "clean-finished"
	case Faulted:
		return "faulted"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger used by the dispatcher thread.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithDecoder replaces the decoder of the platform.
func WithDecoder(dec Decoder) Option {
	return func(d *Dispatcher) {
		if dec != nil {
			d.decoder = dec
		}
	}
}

// Dispatcher owns the thread that runs the platform loop. Every window and
// every message of the platform is handled on that thread; other goroutines
// reach it by posting commands.
//
// A Dispatcher is a one-shot object: once the last window is destroyed, or
// once a command panics, the loop ends for good and later commands are
// dropped.
type Dispatcher struct {
	platform Platform
	decoder  Decoder
	logger   *slog.Logger

	queue *commandQueue
	start sync.Once
	state atomic.Int32
	fault atomic.Pointer[Fault]
	done  chan struct{}

	// thread is the OS thread the loop is locked to, zero when unknown.
	thread atomic.Uint64
}

// New returns a dispatcher for p. The dispatcher thread is started by the
// first posted command.
func New(p Platform, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		platform: p,
		decoder:  p,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		queue:    newCommandQueue(),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// State returns the current lifecycle stage.
func (d *Dispatcher) State() State { return State(d.state.Load()) }

// Post queues fn for execution on the dispatcher thread and returns
// immediately. Commands run one at a time in the order they were posted.
// The first call starts the dispatcher thread and waits until it is attached
// to the platform.
func (d *Dispatcher) Post(fn func(*Context)) {
	d.start.Do(d.launch)
	select {
	case <-d.done:
		return
	default:
	}
	d.queue.push(fn)
	d.platform.Wake()
}

// Call runs fn on the dispatcher thread and returns its result. The result
// is produced after fn committed its effects. Call returns ErrClosed if the
// loop ends before fn runs, or ctx.Err() if ctx ends first; in the latter
// case fn still runs.
//
// Call must not be used from a command, nor from the Window queries that wrap
// it: the reply could only be produced by the thread that waits for it.
// Where the thread can be identified, doing so panics and faults the
// dispatcher. Commands use the Context directly or Context.Post instead.
func Call[R any](ctx context.Context, d *Dispatcher, fn func(*Context) R) (R, error) {
	if id := currentThread(); id != 0 && id == d.thread.Load() {
		panic("winloop: Call from the dispatcher thread would never return")
	}
	reply := make(chan R, 1)
	d.Post(func(c *Context) {
		reply <- fn(c)
	})
	var zero R
	select {
	case r := <-reply:
		return r, nil
	case <-d.done:
		select {
		case r := <-reply:
			return r, nil
		default:
			return zero, ErrClosed
		}
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Done is closed when the loop has ended.
func (d *Dispatcher) Done() <-chan struct{} { return d.done }

// Finished waits for the loop to end. It reports true for a clean finish
// and false when the loop faulted. Every caller, however late, gets the same
// answer.
func (d *Dispatcher) Finished(ctx context.Context) (bool, error) {
	select {
	case <-d.done:
		return d.State() == CleanFinished, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// TakeFault returns the captured fault and clears it, so at most one caller
// ever gets it. It returns nil while the loop is running, after a clean
// finish and once the fault was taken.
func (d *Dispatcher) TakeFault() *Fault {
	return d.fault.Swap(nil)
}

// ResumeFault waits for the loop to end and, if it faulted, panics with the
// captured value in the first caller to get there. Other callers and a clean
// finish return nil.
func (d *Dispatcher) ResumeFault(ctx context.Context) error {
	select {
	case <-d.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	if f := d.TakeFault(); f != nil {
		panic(f.Value)
	}
	return nil
}

func (d *Dispatcher) launch() {
	attached := make(chan struct{})
	go d.run(attached)
	<-attached
}

func (d *Dispatcher) run(attached chan<- struct{}) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	d.thread.Store(currentThread())

	ctx := newContext(d)
	if err := d.platform.Attach(); err != nil {
		d.logger.Error("platform attach failed", "error", err)
		ctx.setFault(&Fault{Value: fmt.Errorf("winloop: attach platform: %w", err)})
		d.finish(ctx, false)
		close(attached)
		return
	}
	d.state.Store(int32(Running))
	d.logger.Debug("dispatcher thread started")
	close(attached)

	if s, ok := d.platform.(Streamer); ok {
		s.SetSink(func(msg Message) {
			// Once the loop is ending, Wait returns to the check below.
			if ctx.fault == nil && !ctx.quit() {
				d.dispatch(ctx, msg)
			}
		})
	}

	for {
		msg, err := d.platform.Wait()
		if err != nil {
			ctx.setFault(&Fault{Value: fmt.Errorf("winloop: wait for message: %w", err)})
		} else {
			d.dispatch(ctx, msg)
		}
		if ctx.fault != nil {
			d.finish(ctx, true)
			return
		}
		if ctx.quit() {
			d.finish(ctx, true)
			return
		}
	}
}

// dispatch handles one message inside the fault boundary.
func (d *Dispatcher) dispatch(ctx *Context, msg Message) {
	defer func() {
		if v := recover(); v != nil {
			ctx.setFault(&Fault{Value: v, Stack: debug.Stack()})
		}
	}()
	if msg.Wake {
		d.queue.popWait()(ctx)
		return
	}
	ev, ok := d.decoder.Decode(msg)
	if !ok {
		return
	}
	ctx.route(ev)
}

// finish moves the dispatcher to its terminal state and releases every waiter.
func (d *Dispatcher) finish(ctx *Context, attached bool) {
	if f := ctx.fault; f != nil {
		d.logger.Error("dispatcher faulted", "fault", f.Value, "stack", string(f.Stack), "windows", ctx.Len())
		ctx.registry.clear()
		ctx.pointerOwner = 0
		d.fault.Store(f)
		d.state.Store(int32(Faulted))
	} else {
		d.logger.Info("dispatcher finished", "reason", "last window destroyed")
		d.state.Store(int32(CleanFinished))
	}
	if attached {
		if s, ok := d.platform.(Streamer); ok {
			s.SetSink(nil)
		}
		d.platform.Detach()
	}
	d.thread.Store(0)
	close(d.done)
}
