package utils

import (
	"fmt"
	"time"
)

// MessageType selects the color of a piece of CLI output.
type MessageType int

// The message types of the winloop CLI.
const (
	DefaultMessage MessageType = iota
	SuccessMessage
	ErrorMessage
	StatusMessage
	// NoticeMessage is for prompts waiting on the user, such as a pending
	// close confirmation.
	NoticeMessage
)

// ANSI escape sequences used by the CLI.
const (
	DefaultColor = "\x1b[0m"
	StatusColor  = "\x1b[36m"
	SuccessColor = "\x1b[32m"
	ErrorColor   = "\x1b[31m"
	NoticeColor  = "\x1b[33m"
)

var messageColors = [...]string{
	DefaultMessage: DefaultColor,
	SuccessMessage: SuccessColor,
	ErrorMessage:   ErrorColor,
	StatusMessage:  StatusColor,
	NoticeMessage:  NoticeColor,
}

// color returns the escape sequence of t, empty for unknown types.
func (t MessageType) color() string {
	if t < 0 || int(t) >= len(messageColors) {
		return ""
	}
	return messageColors[t]
}

// FormatTime formats a duration the way the CLI reports session times:
// seconds with two decimals, preceded by the whole minutes, hours and days
// when there are any.
func FormatTime(d time.Duration) string {
	const day = 24 * time.Hour
	secs := (d % time.Minute).Seconds()
	mins := int64(d % time.Hour / time.Minute)
	hours := int64(d % day / time.Hour)

	switch {
	case d < time.Minute:
		return fmt.Sprintf("%.2fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%dm %.2fs", mins, secs)
	case d < day:
		return fmt.Sprintf("%dh %dm %.2fs", hours, mins, secs)
	}
	return fmt.Sprintf("%dd %dh %dm %.2fs", int64(d/day), hours, mins, secs)
}
