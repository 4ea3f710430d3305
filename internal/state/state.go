// Copyright (c) 2026 Devkeep Authors
// Devkeep - developer machine caretaker
// This source code is licensed under the MIT license found in the LICENSE file.

// package state provides small, concurrency-safe, in-memory stores for
// UI state that is shared between views and lives for the UI process
// lifetime: the session log buffer and the onboarding progress flag. The
// session log is never persisted; the onboarding flag mirrors a settings
// row in the local store.
package state

import "sync"

// sessionLogCapacity bounds the in-memory session log. Older lines are
// dropped once the buffer is full.
const sessionLogCapacity = 500

// SessionLog is the shared ring buffer of notable things that happened in
// this UI session (actions taken, results, errors). The About view shows
// it and the diagnostics bundle includes it.
var SessionLog = &sessionBuffer{}

type sessionBuffer struct {
	mu    sync.RWMutex
	lines []string
	start int
	count int
}

// Append adds a line, dropping the oldest when the buffer is full.
func (s *sessionBuffer) Append(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lines == nil {
		s.lines = make([]string, sessionLogCapacity)
	}
	idx := (s.start + s.count) % len(s.lines)
	s.lines[idx] = line
	if s.count < len(s.lines) {
		s.count++
	} else {
		s.start = (s.start + 1) % len(s.lines)
	}
}

// Lines returns a copy of the buffered lines, oldest first.
func (s *sessionBuffer) Lines() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, s.count)
	for i := 0; i < s.count; i++ {
		out = append(out, s.lines[(s.start+i)%len(s.lines)])
	}
	return out
}

// Clear empties the buffer.
func (s *sessionBuffer) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.start = 0
	s.count = 0
}

// Onboarding tracks whether the user has completed the first-run tour.
// The flag is loaded from the local settings store at startup and written
// back when it changes.
var Onboarding = &onboardingFlag{}

type onboardingFlag struct {
	mu   sync.RWMutex
	done bool
}

// Done reports whether onboarding has been completed.
func (o *onboardingFlag) Done() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.done
}

// SetDone records onboarding completion.
func (o *onboardingFlag) SetDone(done bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.done = done
}
