//go:build !windows
// +build !windows

// Copyright (c) 2026 Devkeep Authors
// Devkeep - developer machine caretaker
// This source code is licensed under the MIT license found in the LICENSE file.

// package native talks to the devkeep helper. This file contains the
// Unix-specific transport for reaching a resident helper session.
package native

import (
	"context"
	"net"
	"os"
	"path/filepath"
)

// sessionPath returns the unix socket a resident helper listens on.
// DEVKEEP_HELPER_SOCKET overrides the default for tests and sandboxes.
func sessionPath() string {
	if p := os.Getenv("DEVKEEP_HELPER_SOCKET"); p != "" {
		return p
	}
	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "devkeep-helper.sock")
}

// dialSession connects to the resident helper session, if one is running.
func dialSession(ctx context.Context) (net.Conn, error) {
	var d net.Dialer
	return d.DialContext(ctx, "unix", sessionPath())
}
