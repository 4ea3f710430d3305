//go:build windows
// +build windows

// Copyright (c) 2026 Devkeep Authors
// Devkeep - developer machine caretaker
// This source code is licensed under the MIT license found in the LICENSE file.

// package native talks to the devkeep helper. This file contains the
// Windows-specific transport for reaching a resident helper session over a
// named pipe.
package native

import (
	"context"
	"net"
	"os"

	"github.com/Microsoft/go-winio"
)

// defaultPipeName is where the resident helper listens on Windows.
const defaultPipeName = `\\.\pipe\devkeep-helper`

// sessionPath returns the named pipe a resident helper listens on.
// DEVKEEP_HELPER_SOCKET overrides the default.
func sessionPath() string {
	if p := os.Getenv("DEVKEEP_HELPER_SOCKET"); p != "" {
		return p
	}
	return defaultPipeName
}

// dialSession connects to the resident helper session, if one is running.
func dialSession(ctx context.Context) (net.Conn, error) {
	return winio.DialPipeContext(ctx, sessionPath())
}
