package winloop

import (
	"errors"
	"fmt"
)

// ErrClosed is returned when the counterpart of an operation no longer exists:
// the window was destroyed, the event channel was closed or the dispatcher
// finished before it could reply.
var ErrClosed = errors.New("winloop: closed")

// ErrConstructionFailed matches every *ConstructionError through errors.Is.
var ErrConstructionFailed = errors.New("winloop: window construction failed")

// ConstructionError reports that the native window object could not be created.
type ConstructionError struct {
	// Code is the status code reported by the windowing subsystem, if any.
	Code uintptr
	Err  error
}

func (e *ConstructionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("winloop: window construction failed (status %#x)", e.Code)
	}
	return fmt.Sprintf("winloop: window construction failed (status %#x): %v", e.Code, e.Err)
}

func (e *ConstructionError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrConstructionFailed) hold for any construction error.
func (e *ConstructionError) Is(target error) bool {
	return target == ErrConstructionFailed
}

// Fault is an unrecovered panic captured while the dispatcher executed a
// command or decoded a message. A fault terminates the dispatcher.
type Fault struct {
	// Value is the value passed to panic.
	Value any
	// Stack is the dispatcher goroutine stack at the time of the panic.
	Stack []byte
}

func (f *Fault) Error() string {
	return fmt.Sprintf("winloop: dispatcher fault: %v", f.Value)
}

// Unwrap returns the panic value when it is an error.
func (f *Fault) Unwrap() error {
	if err, ok := f.Value.(error); ok {
		return err
	}
	return nil
}
