package winloop

// Per-kind queue lengths. Continuous streams get room for bursts, one-shot
// notifications keep only the latest occurrence.
const (
	drawCapacity        = 8
	cursorEdgeCapacity  = 8
	cursorMovedCapacity = 128
	mouseInputCapacity  = 64
	mouseWheelCapacity  = 64
	keyInputCapacity    = 256
	charInputCapacity   = 256
	imeCapacity         = 1
	movedCapacity       = 128
	resizingCapacity    = 128
	oneShotCapacity     = 1
)

// WindowState is everything the dispatcher keeps about one window. It is only
// touched from the dispatcher thread; receivers obtained from its channels
// may be used anywhere.
type WindowState struct {
	handle Handle

	// Cursor is applied when the pointer enters the window.
	Cursor Cursor
	// IMEEnabled tells whether the IME is associated with the window.
	IMEEnabled bool
	// IMECompositionWindow and IMECandidateWindow control whether the
	// system draws its own composition and candidate windows.
	IMECompositionWindow bool
	IMECandidateWindow   bool
	// IMEPosition is where the IME windows are placed, in physical client coordinates.
	IMEPosition Point[int]

	draw          *EventChannel[struct{}]
	cursorEntered *EventChannel[MouseState]
	cursorLeft    *EventChannel[MouseState]
	cursorMoved   *EventChannel[MouseState]
	mouseInput    *EventChannel[MouseInput]
	mouseWheel    *EventChannel[MouseWheel]
	keyInput      *EventChannel[KeyInput]
	charInput     *EventChannel[rune]
	imeStart      *EventChannel[struct{}]
	imeUpdate     *EventChannel[IMEUpdate]
	imeEnd        *EventChannel[IMEResult]
	moved         *EventChannel[Point[int]]
	resizing      *EventChannel[Size[int]]
	resized       *EventChannel[Size[int]]
	activated     *EventChannel[struct{}]
	deactivated   *EventChannel[struct{}]
	dpiChanged    *EventChannel[uint32]
	filesDropped  *EventChannel[DropFiles]
	closed        *EventChannel[struct{}]

	handshake *CloseHandshake

	borrowed bool
}

// NewWindowState returns the state of a freshly created window configured by cfg.
func NewWindowState(h Handle, cfg *Config) *WindowState {
	return &WindowState{
		handle:               h,
		Cursor:               cfg.Cursor,
		IMEEnabled:           cfg.IME,
		IMECompositionWindow: cfg.IMECompositionWindow,
		IMECandidateWindow:   cfg.IMECandidateWindow,

		draw:          NewEventChannel[struct{}](drawCapacity),
		cursorEntered: NewEventChannel[MouseState](cursorEdgeCapacity),
		cursorLeft:    NewEventChannel[MouseState](cursorEdgeCapacity),
		cursorMoved:   NewEventChannel[MouseState](cursorMovedCapacity),
		mouseInput:    NewEventChannel[MouseInput](mouseInputCapacity),
		mouseWheel:    NewEventChannel[MouseWheel](mouseWheelCapacity),
		keyInput:      NewEventChannel[KeyInput](keyInputCapacity),
		charInput:     NewEventChannel[rune](charInputCapacity),
		imeStart:      NewEventChannel[struct{}](imeCapacity),
		imeUpdate:     NewEventChannel[IMEUpdate](imeCapacity),
		imeEnd:        NewEventChannel[IMEResult](imeCapacity),
		moved:         NewEventChannel[Point[int]](movedCapacity),
		resizing:      NewEventChannel[Size[int]](resizingCapacity),
		resized:       NewEventChannel[Size[int]](oneShotCapacity),
		activated:     NewEventChannel[struct{}](oneShotCapacity),
		deactivated:   NewEventChannel[struct{}](oneShotCapacity),
		dpiChanged:    NewEventChannel[uint32](oneShotCapacity),
		filesDropped:  NewEventChannel[DropFiles](oneShotCapacity),
		closed:        NewEventChannel[struct{}](oneShotCapacity),

		handshake: newCloseHandshake(h),
	}
}

// Handle returns the window handle.
func (s *WindowState) Handle() Handle { return s.handle }

// Handshake returns the close handshake of the window.
func (s *WindowState) Handshake() *CloseHandshake { return s.handshake }

// shutdown closes every channel of the window.
func (s *WindowState) shutdown() {
	s.draw.Close()
	s.cursorEntered.Close()
	s.cursorLeft.Close()
	s.cursorMoved.Close()
	s.mouseInput.Close()
	s.mouseWheel.Close()
	s.keyInput.Close()
	s.charInput.Close()
	s.imeStart.Close()
	s.imeUpdate.Close()
	s.imeEnd.Close()
	s.moved.Close()
	s.resizing.Close()
	s.resized.Close()
	s.activated.Close()
	s.deactivated.Close()
	s.dpiChanged.Close()
	s.filesDropped.Close()
	s.closed.Close()
	s.handshake.close()
}
