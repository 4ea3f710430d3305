// Copyright (c) 2026 Devkeep Authors
// Devkeep - developer machine caretaker
// This source code is licensed under the MIT license found in the LICENSE file.

package state

import (
	"fmt"
	"testing"
)

func TestSessionLogAppendAndLines(t *testing.T) {
	var s sessionBuffer
	s.Append("one")
	s.Append("two")

	lines := s.Lines()
	if len(lines) != 2 || lines[0] != "one" || lines[1] != "two" {
		t.Fatalf("Lines() = %v, want [one two]", lines)
	}
}

func TestSessionLogWrapsAtCapacity(t *testing.T) {
	var s sessionBuffer
	for i := 0; i < sessionLogCapacity+15; i++ {
		s.Append(fmt.Sprintf("line-%d", i))
	}
	lines := s.Lines()
	if len(lines) != sessionLogCapacity {
		t.Fatalf("buffer holds %d lines, want %d", len(lines), sessionLogCapacity)
	}
	if lines[0] != "line-15" {
		t.Errorf("oldest line = %q, want line-15", lines[0])
	}
	if lines[len(lines)-1] != fmt.Sprintf("line-%d", sessionLogCapacity+14) {
		t.Errorf("newest line = %q", lines[len(lines)-1])
	}
}

func TestSessionLogClear(t *testing.T) {
	var s sessionBuffer
	s.Append("x")
	s.Clear()
	if got := s.Lines(); len(got) != 0 {
		t.Fatalf("Lines() after Clear = %v, want empty", got)
	}
}

func TestOnboardingFlag(t *testing.T) {
	var o onboardingFlag
	if o.Done() {
		t.Fatal("zero value should not be done")
	}
	o.SetDone(true)
	if !o.Done() {
		t.Fatal("SetDone(true) not observed")
	}
}
