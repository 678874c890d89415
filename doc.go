/*
Package winloop lets any goroutine create and drive native windows while the
windowing subsystem insists that every window and every message belonging to
it be handled on one OS thread.

A Dispatcher owns that thread. It is started by the first command posted to
it, locks itself to its OS thread, and then loops on the platform's blocking
message retrieval. Commands posted from other goroutines are queued and the
platform is woken once per command; native messages are decoded into events
and fanned out to the per-window event channels. The loop ends when the last
window is destroyed, or when a command panics, in which case every window is
torn down and the panic can be resumed by one caller.

Each kind of window event is delivered through its own EventChannel. A
channel keeps a bounded queue per subscriber and evicts the oldest unread
value when a subscriber falls behind, so the dispatcher never waits for the
application.

A typical program looks like this:

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/esimov/winloop"
		"github.com/esimov/winloop/platform/headless"
	)

	func main() {
		ctx := context.Background()
		d := winloop.New(headless.New())

		cfg := winloop.DefaultConfig()
		cfg.Title = "hello"
		w, err := winloop.Create(ctx, d, cfg)
		if err != nil {
			log.Fatal(err)
		}

		keys, err := w.KeyInput(ctx)
		if err != nil {
			log.Fatal(err)
		}
		go func() {
			for {
				k, err := keys.Recv(ctx)
				if err != nil {
					return
				}
				fmt.Println(k.KeyCode.Name, k.State)
			}
		}()

		if _, err := d.Finished(ctx); err != nil {
			log.Fatal(err)
		}
		d.ResumeFault(ctx)
	}

The platform/win32 and platform/gio packages provide native backends; the
platform/headless package is an in-memory backend used by tests and by the
replay of recorded sessions.
*/
package winloop
