//go:build windows

package main

import (
	"fmt"
	"log/slog"

	"github.com/esimov/winloop"
	"github.com/esimov/winloop/config"
	"github.com/esimov/winloop/platform/win32"
)

func nativePlatform(name string, logger *slog.Logger) (winloop.Platform, error) {
	if name == config.BackendWin32 {
		return win32.New(win32.WithLogger(logger)), nil
	}
	return nil, fmt.Errorf("unknown backend %q", name)
}
