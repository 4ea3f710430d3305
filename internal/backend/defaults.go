// Copyright (c) 2026 Devkeep Authors
// Devkeep - developer machine caretaker
// This source code is licensed under the MIT license found in the LICENSE file.

package backend

import "sync"

var (
	defaultMu      sync.RWMutex
	defaultBackend Backend
)

// SetDefault installs the process-wide backend used by UI code that has no
// injected handle. Tests and demo mode install a fake here.
func SetDefault(b Backend) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultBackend = b
}

// Default returns the process-wide backend, or nil when none is configured
// (e.g. the helper binary was not found). Callers must treat nil as
// "backend unavailable" and render their declared empty state.
func Default() Backend {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultBackend
}

// Available reports whether a usable default backend is configured.
func Available() bool {
	b := Default()
	return b != nil && b.Available()
}
