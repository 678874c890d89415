// Package win32 drives winloop windows with the native Win32 API.
//
// The window procedure runs on the dispatcher thread and only captures what
// a message carries, including the data that is gone once the message has
// been handled: IME strings, dropped files and the pointer position on
// leave. The captured messages are returned by Wait one at a time and
// decoded into winloop events.
//
// An interactive move or resize runs a modal loop inside DispatchMessage,
// which keeps Wait from returning until the gesture ends. Between
// WM_ENTERSIZEMOVE and WM_EXITSIZEMOVE the platform therefore hands every
// captured message to the dispatcher sink right away. Wake notifications
// are posted to a message-only window, so the modal loop delivers them too
// and commands keep running during the gesture.
package win32
