package winloop_test

import (
	"context"
	"testing"
	"time"

	"github.com/esimov/winloop"
	"github.com/esimov/winloop/platform/headless"
)

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func newDispatcher(t *testing.T, opts ...headless.Option) (*winloop.Dispatcher, *headless.Platform) {
	t.Helper()
	p := headless.New(opts...)
	return winloop.New(p), p
}

func createWindow(t *testing.T, ctx context.Context, d *winloop.Dispatcher, cfg winloop.Config) *winloop.Window {
	t.Helper()
	w, err := winloop.Create(ctx, d, cfg)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return w
}

// settle waits until the messages queued so far, and the messages they
// queue in turn, are handled. Each round is a command queued behind
// everything pending.
func settle(t *testing.T, ctx context.Context, d *winloop.Dispatcher) {
	t.Helper()
	for i := 0; i < 3; i++ {
		if _, err := winloop.Call(ctx, d, func(*winloop.Context) struct{} { return struct{}{} }); err != nil {
			t.Fatalf("dispatcher not responding: %v", err)
		}
	}
}

func waitFinished(t *testing.T, ctx context.Context, d *winloop.Dispatcher) bool {
	t.Helper()
	clean, err := d.Finished(ctx)
	if err != nil {
		t.Fatalf("dispatcher did not finish: %v", err)
	}
	return clean
}

func isOpen(t *testing.T, ctx context.Context, w *winloop.Window) bool {
	t.Helper()
	open, err := winloop.Call(ctx, w.Dispatcher(), func(c *winloop.Context) bool {
		_, ok := c.Window(w.Handle())
		return ok
	})
	if err != nil {
		return false
	}
	return open
}
