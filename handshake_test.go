package winloop_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/esimov/winloop"
)

func TestCloseHandshake_NoSubscriberDestroys(t *testing.T) {
	ctx := testContext(t)
	d, p := newDispatcher(t)
	w := createWindow(t, ctx, d, winloop.DefaultConfig())

	w.RequestClose()
	if !waitFinished(t, ctx, d) {
		t.Fatal("expected a clean finish")
	}
	if p.Windows() != 0 {
		t.Error("the native window should be destroyed")
	}
}

func TestCloseHandshake_ConfirmDestroys(t *testing.T) {
	ctx := testContext(t)
	d, _ := newDispatcher(t)
	w := createWindow(t, ctx, d, winloop.DefaultConfig())

	reqs, err := w.CloseRequests(ctx)
	if err != nil {
		t.Fatal(err)
	}
	w.RequestClose()

	req, err := reqs.Recv(ctx)
	if err != nil {
		t.Fatalf("expected a close request: %v", err)
	}
	if req.Window() != w.Handle() {
		t.Errorf("the request should name the window, got %v", req.Window())
	}
	if !isOpen(t, ctx, w) {
		t.Fatal("the window should stay open until the request is confirmed")
	}

	req.Confirm()
	req.Confirm()
	if !waitFinished(t, ctx, d) {
		t.Fatal("expected a clean finish")
	}
	if _, err := reqs.Recv(ctx); !errors.Is(err, winloop.ErrClosed) {
		t.Errorf("expected ErrClosed once the window is gone, got %v", err)
	}
}

func TestCloseHandshake_DismissKeepsWindow(t *testing.T) {
	ctx := testContext(t)
	d, _ := newDispatcher(t)
	w := createWindow(t, ctx, d, winloop.DefaultConfig())

	reqs, err := w.CloseRequests(ctx)
	if err != nil {
		t.Fatal(err)
	}

	w.RequestClose()
	req, err := reqs.Recv(ctx)
	if err != nil {
		t.Fatal(err)
	}
	req.Dismiss()
	req.Confirm()
	if !req.Decided() {
		t.Error("the request should be decided")
	}
	settle(t, ctx, d)
	if !isOpen(t, ctx, w) {
		t.Fatal("a dismissed request should keep the window open")
	}

	w.RequestClose()
	again, err := reqs.Recv(ctx)
	if err != nil {
		t.Fatalf("a later close attempt should produce a new request: %v", err)
	}
	if again == req {
		t.Error("each close attempt should produce its own request")
	}
	again.Confirm()
	if !waitFinished(t, ctx, d) {
		t.Fatal("expected a clean finish")
	}
}

func TestCloseHandshake_OccupiedSlotDestroys(t *testing.T) {
	ctx := testContext(t)
	d, _ := newDispatcher(t)
	w := createWindow(t, ctx, d, winloop.DefaultConfig())

	if _, err := w.CloseRequests(ctx); err != nil {
		t.Fatal(err)
	}

	w.RequestClose()
	settle(t, ctx, d)
	if !isOpen(t, ctx, w) {
		t.Fatal("the first attempt should wait in the slot")
	}
	pending, err := winloop.Call(ctx, d, func(c *winloop.Context) bool {
		st, ok := c.Window(w.Handle())
		return ok && st.Handshake().Pending()
	})
	if err != nil || !pending {
		t.Fatalf("a request should be pending, got %v %v", pending, err)
	}

	w.RequestClose()
	if !waitFinished(t, ctx, d) {
		t.Fatal("an attempt finding the slot occupied should destroy the window")
	}
}

func TestCloseHandshake_SharedBySubscribers(t *testing.T) {
	ctx := testContext(t)
	d, _ := newDispatcher(t)
	w := createWindow(t, ctx, d, winloop.DefaultConfig())
	other := createWindow(t, ctx, d, winloop.DefaultConfig())

	a, err := w.CloseRequests(ctx)
	if err != nil {
		t.Fatal(err)
	}
	b, err := w.CloseRequests(ctx)
	if err != nil {
		t.Fatal(err)
	}

	w.RequestClose()
	got := make(chan *winloop.CloseRequest, 2)
	recv := func(s *winloop.CloseRequests) {
		short, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
		defer cancel()
		if req, err := s.Recv(short); err == nil {
			got <- req
		}
	}
	go recv(a)
	go recv(b)

	select {
	case req := <-got:
		req.Confirm()
	case <-ctx.Done():
		t.Fatal("no subscriber received the request")
	}
	closed, err := other.Closed(ctx)
	if err != nil {
		t.Fatal(err)
	}
	other.Close()
	if _, err := closed.Recv(ctx); err != nil {
		t.Fatal(err)
	}
	waitFinished(t, ctx, d)

	select {
	case <-got:
		t.Error("a single request should reach a single subscriber")
	case <-time.After(250 * time.Millisecond):
	}
}
