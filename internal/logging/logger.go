// Copyright (c) 2026 Devkeep Authors
// Devkeep - developer machine caretaker
// This source code is licensed under the MIT license found in the LICENSE file.

// package logging wraps the application logger. UI code logs through the
// helper functions so the underlying logger can be swapped or silenced
// (the TUI redirects output away from the terminal it draws on).
package logging

import (
	"fmt"
	"io"

	clog "github.com/charmbracelet/log"
)

// L is the package-level logger.
var L = clog.New(io.Discard)

// SetOutput redirects log output, e.g. to a file while the TUI is active.
func SetOutput(w io.Writer) {
	L.SetOutput(w)
}

// SetDebug enables debug-level output.
func SetDebug(enabled bool) {
	if enabled {
		L.SetLevel(clog.DebugLevel)
	} else {
		L.SetLevel(clog.InfoLevel)
	}
}

// Debugf logs a debug-level formatted message.
func Debugf(format string, v ...any) {
	L.Debug(fmt.Sprintf(format, v...))
}

// Infof logs an info-level formatted message.
func Infof(format string, v ...any) {
	L.Info(fmt.Sprintf(format, v...))
}

// Warnf logs a warning-level formatted message.
func Warnf(format string, v ...any) {
	L.Warn(fmt.Sprintf(format, v...))
}

// Errorf logs an error-level formatted message.
func Errorf(format string, v ...any) {
	L.Error(fmt.Sprintf(format, v...))
}
