package win32

// Window messages handled by the window procedure.
const (
	_WM_DESTROY              = 0x0002
	_WM_MOVE                 = 0x0003
	_WM_SIZE                 = 0x0005
	_WM_ACTIVATE             = 0x0006
	_WM_PAINT                = 0x000F
	_WM_CLOSE                = 0x0010
	_WM_SETCURSOR            = 0x0020
	_WM_SETICON              = 0x0080
	_WM_NCCREATE             = 0x0081
	_WM_KEYDOWN              = 0x0100
	_WM_KEYUP                = 0x0101
	_WM_CHAR                 = 0x0102
	_WM_SYSKEYDOWN           = 0x0104
	_WM_SYSKEYUP             = 0x0105
	_WM_IME_STARTCOMPOSITION = 0x010D
	_WM_IME_ENDCOMPOSITION   = 0x010E
	_WM_IME_COMPOSITION      = 0x010F
	_WM_MOUSEMOVE            = 0x0200
	_WM_LBUTTONDOWN          = 0x0201
	_WM_LBUTTONUP            = 0x0202
	_WM_RBUTTONDOWN          = 0x0204
	_WM_RBUTTONUP            = 0x0205
	_WM_MBUTTONDOWN          = 0x0207
	_WM_MBUTTONUP            = 0x0208
	_WM_MOUSEWHEEL           = 0x020A
	_WM_XBUTTONDOWN          = 0x020B
	_WM_XBUTTONUP            = 0x020C
	_WM_MOUSEHWHEEL          = 0x020E
	_WM_ENTERSIZEMOVE        = 0x0231
	_WM_EXITSIZEMOVE         = 0x0232
	_WM_DROPFILES            = 0x0233
	_WM_IME_SETCONTEXT       = 0x0281
	_WM_MOUSELEAVE           = 0x02A3
	_WM_DPICHANGED           = 0x02E0
	_WM_APP                  = 0x8000

	// wmWake is posted to the message window by Platform.Wake.
	wmWake = _WM_APP + 1
)

const (
	_MK_LBUTTON  = 0x0001
	_MK_RBUTTON  = 0x0002
	_MK_MBUTTON  = 0x0010
	_MK_XBUTTON1 = 0x0020
	_MK_XBUTTON2 = 0x0040

	_VK_SHIFT    = 0x10
	_VK_CONTROL  = 0x11
	_VK_MENU     = 0x12
	_VK_LCONTROL = 0xA2
	_VK_RCONTROL = 0xA3
	_VK_LMENU    = 0xA4
	_VK_RMENU    = 0xA5

	_ATTR_INPUT               = 0x00
	_ATTR_TARGET_CONVERTED    = 0x01
	_ATTR_CONVERTED           = 0x02
	_ATTR_TARGET_NOTCONVERTED = 0x03
	_ATTR_INPUT_ERROR         = 0x04
	_ATTR_FIXEDCONVERTED      = 0x05
)

// raw is a window message captured by the window procedure, together with
// the data that can only be read while the message is being handled.
type raw struct {
	hwnd   uintptr
	msg    uint32
	wparam uintptr
	lparam uintptr
	data   any
}

// Data attached to raw messages.
type (
	// keyData carries the virtual key with left and right modifiers told apart.
	keyData struct{ vkey uint32 }
	// leaveData is the pointer position when it left the client area.
	leaveData struct{ x, y int32 }
	// compositionData is a snapshot of the IME composition string.
	compositionData struct {
		text       []uint16
		attrs      []byte
		candidates []byte
	}
	// resultData is the committed IME string, if any.
	resultData struct {
		text      []uint16
		committed bool
	}
	dropData struct {
		x, y  int32
		files []string
	}
)
