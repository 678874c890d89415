// Package config loads the YAML files that describe a session of the
// winloop demo: which backend to run and which windows to open.
//
// Each window entry starts from winloop.DefaultConfig; only the keys present
// in the file override it.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/esimov/winloop"
	"github.com/esimov/winloop/resource"
	"gopkg.in/yaml.v3"
)

// Backends accepted by the Backend key.
const (
	BackendHeadless = "headless"
	BackendGio      = "gio"
	BackendWin32    = "win32"
)

// File is the content of a session file.
type File struct {
	// Backend selects the platform: headless, gio or win32.
	Backend string `yaml:"backend"`

	// LogLevel is one of debug, info, warn or error.
	LogLevel string `yaml:"log_level"`

	// Record is the path of a CBOR recording written during the session.
	Record string `yaml:"record,omitempty"`

	// Windows lists the windows opened at startup.
	Windows []Window `yaml:"windows"`
}

// Window describes one window. Pointer fields are optional.
type Window struct {
	Title    string              `yaml:"title"`
	Position *winloop.Point[int] `yaml:"position,omitempty"`
	Size     *winloop.Size[int]  `yaml:"size,omitempty"`
	Unit     *winloop.Unit       `yaml:"unit,omitempty"`
	Style    *winloop.Style      `yaml:"style,omitempty"`
	Visible  *bool               `yaml:"visible,omitempty"`
	Cursor   *winloop.Cursor     `yaml:"cursor,omitempty"`

	IME                  *bool `yaml:"ime,omitempty"`
	IMECompositionWindow *bool `yaml:"ime_composition_window,omitempty"`
	IMECandidateWindow   *bool `yaml:"ime_candidate_window,omitempty"`

	AcceptDropFiles bool `yaml:"accept_drop_files"`

	// Icon is a file path or an http(s) URL.
	Icon string `yaml:"icon,omitempty"`

	// ConfirmClose makes the demo ask for close requests instead of
	// letting the window close on its own.
	ConfirmClose bool `yaml:"confirm_close"`
}

// Default returns a session with a single default window on the headless backend.
func Default() *File {
	return &File{
		Backend:  BackendHeadless,
		LogLevel: "info",
		Windows:  []Window{{Title: "winloop"}},
	}
}

// LoadFile reads the session file at path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return f, nil
}

// Parse decodes a session file. Missing top-level keys keep their default
// values; an absent window list keeps the default window.
func Parse(data []byte) (*File, error) {
	f := Default()
	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, err
	}
	f.expandVariables()
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// Validate checks the session for errors.
func (f *File) Validate() error {
	var errs []error

	switch f.Backend {
	case BackendHeadless, BackendGio, BackendWin32:
	default:
		errs = append(errs, fmt.Errorf("invalid backend: %q", f.Backend))
	}

	switch f.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("invalid log_level: %q", f.LogLevel))
	}

	if len(f.Windows) == 0 {
		errs = append(errs, errors.New("at least one window is required"))
	}
	for i, w := range f.Windows {
		if w.Size != nil && (w.Size.Width <= 0 || w.Size.Height <= 0) {
			errs = append(errs, fmt.Errorf("windows[%d]: invalid size %v", i, *w.Size))
		}
	}

	return errors.Join(errs...)
}

// Config merges the window entry into winloop.DefaultConfig. The icon is
// loaded when set.
func (w *Window) Config(ctx context.Context) (winloop.Config, error) {
	cfg := winloop.DefaultConfig()
	cfg.Title = w.Title
	if w.Position != nil {
		cfg.Position = *w.Position
	}
	if w.Size != nil {
		cfg.Size = *w.Size
	}
	if w.Unit != nil {
		cfg.SizeUnit = *w.Unit
	}
	if w.Style != nil {
		cfg.Style = *w.Style
	}
	if w.Visible != nil {
		cfg.Visible = *w.Visible
	}
	if w.Cursor != nil {
		cfg.Cursor = *w.Cursor
	}
	if w.IME != nil {
		cfg.IME = *w.IME
	}
	if w.IMECompositionWindow != nil {
		cfg.IMECompositionWindow = *w.IMECompositionWindow
	}
	if w.IMECandidateWindow != nil {
		cfg.IMECandidateWindow = *w.IMECandidateWindow
	}
	cfg.AcceptDropFiles = w.AcceptDropFiles

	if w.Icon != "" {
		icon, err := resource.Open(ctx, w.Icon)
		if err != nil {
			return cfg, fmt.Errorf("config: window %q: %w", w.Title, err)
		}
		cfg.Icon = icon
	}
	return cfg, nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (f *File) expandVariables() {
	f.Record = expandVars(f.Record)
	for i := range f.Windows {
		f.Windows[i].Icon = expandVars(f.Windows[i].Icon)
	}
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		if len(parts) >= 3 {
			return parts[2]
		}
		return ""
	})
}
