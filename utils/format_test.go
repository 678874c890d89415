package utils

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestDecorator_Text(t *testing.T) {
	deco := Decorator{Color: true}
	s := deco.Text("ok", SuccessMessage)
	if s != SuccessColor+"ok"+DefaultColor {
		t.Errorf("expected the text to be wrapped in color codes, got %q", s)
	}
	if s := deco.Text("wait", NoticeMessage); !strings.HasPrefix(s, NoticeColor) {
		t.Errorf("expected the notice color, got %q", s)
	}
	if s := deco.Text("odd", MessageType(42)); s != "odd" {
		t.Errorf("an unknown message type should not be colored, got %q", s)
	}

	plain := Decorator{}.Text("ok", ErrorMessage)
	if plain != "ok" {
		t.Errorf("a disabled decorator should leave the text untouched, got %q", plain)
	}
}

func TestFormat_FormatTime(t *testing.T) {
	if got := FormatTime(1500 * time.Millisecond); got != "1.50s" {
		t.Errorf("expected 1.50s, got %s", got)
	}
	if got := FormatTime(90 * time.Second); got != "1m 30.00s" {
		t.Errorf("expected 1m 30.00s, got %s", got)
	}
	if got := FormatTime(2*time.Hour + 5*time.Minute + 250*time.Millisecond); got != "2h 5m 0.25s" {
		t.Errorf("expected 2h 5m 0.25s, got %s", got)
	}
	if got := FormatTime(50*time.Hour + 90*time.Second); got != "2d 2h 1m 30.00s" {
		t.Errorf("expected 2d 2h 1m 30.00s, got %s", got)
	}
}

func TestSpinner_ShouldPrintStopMessage(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, "waiting", time.Millisecond, false)
	s.StopMsg = "done\n"
	s.Start(context.Background())
	s.SetMessage("still waiting")
	time.Sleep(5 * time.Millisecond)
	s.Stop()

	out := buf.String()
	if !strings.Contains(out, "waiting") {
		t.Errorf("expected the spinner message in the output, got %q", out)
	}
	if !strings.HasSuffix(out, "done\n") {
		t.Errorf("expected the output to end with the stop message, got %q", out)
	}
}
