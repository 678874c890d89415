package winloop

import (
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Registry maps window handles to their state. It belongs to the Context and
// is only used from the dispatcher thread, so it needs no synchronization.
type Registry struct {
	windows map[Handle]*WindowState
	// emptied is set when a removal leaves the registry empty.
	emptied bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{windows: make(map[Handle]*WindowState)}
}

// Insert adds a window. Inserting a handle that is already present is a
// programming error and panics.
func (r *Registry) Insert(h Handle, st *WindowState) {
	if h == 0 {
		panic("winloop: zero window handle")
	}
	if _, ok := r.windows[h]; ok {
		panic(fmt.Sprintf("winloop: window %#x registered twice", uintptr(h)))
	}
	r.windows[h] = st
}

// Remove drops a window and closes all of its channels. It reports whether
// the handle was present.
func (r *Registry) Remove(h Handle) bool {
	st, ok := r.windows[h]
	if !ok {
		return false
	}
	delete(r.windows, h)
	st.shutdown()
	if len(r.windows) == 0 {
		r.emptied = true
	}
	return true
}

// Get returns the state of h for reading.
func (r *Registry) Get(h Handle) (*WindowState, bool) {
	st, ok := r.windows[h]
	return st, ok
}

// Mutate runs fn with exclusive access to the state of h. It reports whether
// h was found. Mutating a state from inside fn for the same handle panics:
// re-entrant mutable access is a bug, not a contended resource.
func (r *Registry) Mutate(h Handle, fn func(*WindowState)) bool {
	st, ok := r.windows[h]
	if !ok {
		return false
	}
	if st.borrowed {
		panic(fmt.Sprintf("winloop: window %#x is already mutably borrowed", uintptr(h)))
	}
	st.borrowed = true
	defer func() { st.borrowed = false }()
	fn(st)
	return true
}

// IsEmpty reports whether no window is registered.
func (r *Registry) IsEmpty() bool { return len(r.windows) == 0 }

// Len returns the number of registered windows.
func (r *Registry) Len() int { return len(r.windows) }

// Handles returns the registered handles in ascending order.
func (r *Registry) Handles() []Handle {
	handles := maps.Keys(r.windows)
	slices.Sort(handles)
	return handles
}

// clear removes every window without marking the registry as emptied.
func (r *Registry) clear() {
	for _, h := range r.Handles() {
		st := r.windows[h]
		delete(r.windows, h)
		st.shutdown()
	}
}
