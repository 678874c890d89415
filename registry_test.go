package winloop

import (
	"context"
	"errors"
	"testing"
)

func newState(h Handle) *WindowState {
	cfg := DefaultConfig()
	return NewWindowState(h, &cfg)
}

func TestRegistry_EmptiedOnlyByLastRemoval(t *testing.T) {
	r := NewRegistry()
	if !r.IsEmpty() || r.emptied {
		t.Fatal("a new registry is empty but was never emptied")
	}

	r.Insert(1, newState(1))
	r.Insert(2, newState(2))
	if r.IsEmpty() || r.Len() != 2 {
		t.Fatalf("expected 2 windows, got %d", r.Len())
	}

	if !r.Remove(1) {
		t.Fatal("Remove should report a present handle")
	}
	if r.emptied {
		t.Error("removing a window that is not the last should not empty the registry")
	}
	if r.Remove(1) {
		t.Error("Remove should report an absent handle")
	}

	r.Remove(2)
	if !r.IsEmpty() || !r.emptied {
		t.Error("removing the last window should empty the registry")
	}
}

func TestRegistry_RemoveClosesChannels(t *testing.T) {
	r := NewRegistry()
	st := newState(1)
	r.Insert(1, st)
	keys := st.keyInput.Subscribe()
	closes := st.handshake.subscribe()

	r.Remove(1)

	if _, _, err := keys.TryRecv(); !errors.Is(err, ErrClosed) {
		t.Errorf("key receiver should be closed, got %v", err)
	}
	if _, err := closes.Recv(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("close requests should be closed, got %v", err)
	}
}

func TestRegistry_Handles(t *testing.T) {
	r := NewRegistry()
	for _, h := range []Handle{9, 3, 5} {
		r.Insert(h, newState(h))
	}
	got := r.Handles()
	if len(got) != 3 || got[0] != 3 || got[1] != 5 || got[2] != 9 {
		t.Errorf("handles should be sorted, got %v", got)
	}

	r.clear()
	if !r.IsEmpty() || r.emptied {
		t.Error("clear should remove every window without emptying the registry")
	}
}

func TestRegistry_InsertTwicePanics(t *testing.T) {
	r := NewRegistry()
	r.Insert(1, newState(1))

	defer func() {
		if recover() == nil {
			t.Error("inserting a live handle twice should panic")
		}
	}()
	r.Insert(1, newState(1))
}

func TestRegistry_NestedMutatePanics(t *testing.T) {
	r := NewRegistry()
	r.Insert(1, newState(1))
	r.Insert(2, newState(2))

	ok := r.Mutate(1, func(st *WindowState) {
		st.Cursor = CursorHand
		// A different window may be borrowed at the same time.
		r.Mutate(2, func(*WindowState) {})
	})
	if !ok {
		t.Fatal("Mutate should find the window")
	}
	if st, _ := r.Get(1); st.Cursor != CursorHand || st.borrowed {
		t.Fatalf("the mutation should be committed and the borrow released")
	}

	defer func() {
		if recover() == nil {
			t.Error("a nested mutable borrow should panic")
		}
	}()
	r.Mutate(1, func(*WindowState) {
		r.Mutate(1, func(*WindowState) {})
	})
}

func TestRegistry_MutateMissing(t *testing.T) {
	r := NewRegistry()
	if r.Mutate(7, func(*WindowState) { t.Error("fn should not run") }) {
		t.Error("Mutate should report a missing window")
	}
}

func TestHandle_TextRoundTrip(t *testing.T) {
	h := Handle(0x1a2b)
	text, err := h.MarshalText()
	if err != nil {
		t.Fatal(err)
	}
	if string(text) != "0x1a2b" {
		t.Errorf("unexpected text %q", text)
	}
	var got Handle
	if err := got.UnmarshalText(text); err != nil || got != h {
		t.Errorf("expected %v, got %v (%v)", h, got, err)
	}
	if err := got.UnmarshalText([]byte("42")); err != nil || got != 42 {
		t.Errorf("decimal handles should parse, got %v (%v)", got, err)
	}
	if err := got.UnmarshalText([]byte("window")); err == nil {
		t.Errorf("a malformed handle should be rejected")
	}
}
