package record

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/esimov/winloop"
)

// Injector receives replayed events. *headless.Platform implements it.
type Injector interface {
	Inject(events ...winloop.Event)
}

// ReplayOptions controls Replay.
type ReplayOptions struct {
	// Realtime keeps the original spacing between frames.
	Realtime bool
	// Map translates recorded handles to live ones. Frames for which it
	// reports false are skipped. A nil Map keeps the recorded handles.
	Map func(winloop.Handle) (winloop.Handle, bool)
}

// Sequential maps recorded handles, in order of first appearance, onto
// handles. Handles beyond len(handles) are not mapped.
func Sequential(handles []winloop.Handle) func(winloop.Handle) (winloop.Handle, bool) {
	seen := make(map[winloop.Handle]winloop.Handle)
	return func(h winloop.Handle) (winloop.Handle, bool) {
		if live, ok := seen[h]; ok {
			return live, true
		}
		if len(seen) >= len(handles) {
			return 0, false
		}
		live := handles[len(seen)]
		seen[h] = live
		return live, true
	}
}

// Replay reads every frame of r and injects it into inj. Destroy events are
// skipped: a replayed window goes away through its own close handling. It
// returns the number of injected events.
func Replay(ctx context.Context, r *Reader, inj Injector, opts ReplayOptions) (int, error) {
	var (
		n     int
		start = time.Now()
	)
	for {
		f, err := r.Next()
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		if f.Kind == "destroy" {
			continue
		}
		h := f.Window
		if opts.Map != nil {
			var ok bool
			if h, ok = opts.Map(f.Window); !ok {
				continue
			}
		}
		ev, err := f.EventFor(h)
		if err != nil {
			return n, err
		}
		if opts.Realtime {
			if err := sleepUntil(ctx, start.Add(f.Offset)); err != nil {
				return n, err
			}
		} else if err := ctx.Err(); err != nil {
			return n, err
		}
		inj.Inject(ev)
		n++
	}
}

func sleepUntil(ctx context.Context, t time.Time) error {
	d := time.Until(t)
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
