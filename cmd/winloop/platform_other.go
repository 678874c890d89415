//go:build !windows

package main

import (
	"fmt"
	"log/slog"

	"github.com/esimov/winloop"
	"github.com/esimov/winloop/config"
)

func nativePlatform(name string, _ *slog.Logger) (winloop.Platform, error) {
	if name == config.BackendWin32 {
		return nil, fmt.Errorf("the %s backend is only available on Windows", name)
	}
	return nil, fmt.Errorf("unknown backend %q", name)
}
