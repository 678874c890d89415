package winloop

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestEventChannel_ShouldKeepMostRecentValues(t *testing.T) {
	ch := NewEventChannel[int](256)
	r := ch.Subscribe()

	for i := 0; i < 300; i++ {
		ch.Send(i)
	}

	got, err := r.Drain()
	if err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if len(got) != 256 {
		t.Fatalf("expected 256 values, got %d", len(got))
	}
	for i, v := range got {
		if v != 44+i {
			t.Fatalf("value #%d should be %d, got %d", i, 44+i, v)
		}
	}
	if r.Dropped() != 44 {
		t.Errorf("expected 44 dropped values, got %d", r.Dropped())
	}
}

func TestEventChannel_ShouldNotReplay(t *testing.T) {
	ch := NewEventChannel[string](4)
	early := ch.Subscribe()
	ch.Send("e1")
	late := ch.Subscribe()
	ch.Send("e2")

	v, ok, err := late.TryRecv()
	if err != nil || !ok || v != "e2" {
		t.Fatalf("a late receiver should only see e2, got %q %v %v", v, ok, err)
	}
	if got, _ := early.Drain(); len(got) != 2 {
		t.Errorf("the early receiver should see both values, got %v", got)
	}
}

func TestEventChannel_ShouldIsolateSlowReceivers(t *testing.T) {
	ch := NewEventChannel[int](2)
	slow := ch.Subscribe()
	fast := ch.Subscribe()

	for i := 0; i < 5; i++ {
		ch.Send(i)
		if v, ok, _ := fast.TryRecv(); !ok || v != i {
			t.Fatalf("the fast receiver should get %d, got %d %v", i, v, ok)
		}
	}
	if got, _ := slow.Drain(); len(got) != 2 || got[0] != 3 || got[1] != 4 {
		t.Errorf("the slow receiver should keep the last two values, got %v", got)
	}
	if fast.Dropped() != 0 {
		t.Errorf("the fast receiver should not drop anything")
	}
}

func TestEventChannel_CapacityIsAtLeastOne(t *testing.T) {
	ch := NewEventChannel[int](0)
	if ch.Capacity() != 1 {
		t.Fatalf("expected capacity 1, got %d", ch.Capacity())
	}
	r := ch.Subscribe()
	ch.Send(1)
	ch.Send(2)
	if v, ok, _ := r.TryRecv(); !ok || v != 2 {
		t.Errorf("expected the latest value, got %d %v", v, ok)
	}
}

func TestEventChannel_ShouldDeliverQueuedValuesBeforeClosed(t *testing.T) {
	ch := NewEventChannel[int](8)
	r := ch.Subscribe()
	ch.Send(1)
	ch.Close()
	ch.Send(2)

	ctx := context.Background()
	v, err := r.Recv(ctx)
	if err != nil || v != 1 {
		t.Fatalf("expected the queued value first, got %d %v", v, err)
	}
	if _, err := r.Recv(ctx); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
	if _, ok, err := r.TryRecv(); ok || !errors.Is(err, ErrClosed) {
		t.Errorf("TryRecv should report ErrClosed, got %v %v", ok, err)
	}
	if _, err := r.Drain(); !errors.Is(err, ErrClosed) {
		t.Errorf("Drain should report ErrClosed, got %v", err)
	}

	after := ch.Subscribe()
	if _, err := after.Recv(ctx); !errors.Is(err, ErrClosed) {
		t.Errorf("a receiver created after Close should be closed, got %v", err)
	}
	if ch.Subscribers() != 0 {
		t.Errorf("a closed channel should have no subscribers")
	}
}

func TestEventChannel_ShouldWakeBlockedReceiverOnClose(t *testing.T) {
	ch := NewEventChannel[int](1)
	r := ch.Subscribe()

	errc := make(chan error, 1)
	go func() {
		_, err := r.Recv(context.Background())
		errc <- err
	}()

	time.Sleep(10 * time.Millisecond)
	ch.Close()

	select {
	case err := <-errc:
		if !errors.Is(err, ErrClosed) {
			t.Errorf("expected ErrClosed, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Recv did not return after Close")
	}
}

func TestEventChannel_RecvHonorsContext(t *testing.T) {
	ch := NewEventChannel[int](1)
	r := ch.Subscribe()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := r.Recv(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected the deadline error, got %v", err)
	}
}

func TestReceiver_CloseUnsubscribes(t *testing.T) {
	ch := NewEventChannel[int](4)
	a := ch.Subscribe()
	b := ch.Subscribe()
	if ch.Subscribers() != 2 {
		t.Fatalf("expected 2 subscribers, got %d", ch.Subscribers())
	}

	ch.Send(1)
	a.Close()
	ch.Send(2)

	if ch.Subscribers() != 1 {
		t.Errorf("expected 1 subscriber, got %d", ch.Subscribers())
	}
	if got, err := a.Drain(); err != nil || len(got) != 1 || got[0] != 1 {
		t.Errorf("values queued before Close should stay readable, got %v %v", got, err)
	}
	if _, err := a.Recv(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed after unsubscribing, got %v", err)
	}
	if got, _ := b.Drain(); len(got) != 2 {
		t.Errorf("the other receiver should be unaffected, got %v", got)
	}
	if ch.Sent() != 2 {
		t.Errorf("expected 2 sent values, got %d", ch.Sent())
	}
}

func TestEventChannel_ConcurrentSubscribers(t *testing.T) {
	ch := NewEventChannel[int](1024)

	var wg sync.WaitGroup
	receivers := make(chan *Receiver[int], 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			receivers <- ch.Subscribe()
		}()
	}
	wg.Wait()
	close(receivers)

	if ch.Subscribers() != 32 {
		t.Fatalf("expected 32 subscribers, got %d", ch.Subscribers())
	}
	for i := 0; i < 100; i++ {
		ch.Send(i)
	}
	for r := range receivers {
		if got, _ := r.Drain(); len(got) != 100 {
			t.Errorf("every receiver should get 100 values, got %d", len(got))
		}
	}
}
