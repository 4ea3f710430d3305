// Copyright (c) 2026 Devkeep Authors
// Devkeep - developer machine caretaker
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/devkeep/devkeep/internal/backend/fake"
	"github.com/devkeep/devkeep/internal/model"
)

// loadedLogsModel returns a logsModel with entries and retention delivered.
func loadedLogsModel(t *testing.T, b *fake.Backend) *logsModel {
	t.Helper()
	m := newLogsModel(b)
	if next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40}); next != nil {
		m = next.(*logsModel)
	}
	if next, _ := m.Update(m.queryCmd()()); next != nil {
		m = next.(*logsModel)
	}
	if next, _ := m.Update(m.loadRetentionCmd()()); next != nil {
		m = next.(*logsModel)
	}
	return m
}

func TestLogsDefaultQueryExcludesDebug(t *testing.T) {
	b := setupTest(t)
	m := loadedLogsModel(t, b)

	// Seed: 40 lines cycling debug/info/warn/error, debug off by default.
	if len(m.entries) != 30 {
		t.Fatalf("entries = %d, want 30 without debug", len(m.entries))
	}
	for _, e := range m.entries {
		if e.Level == model.LevelDebug {
			t.Fatalf("debug entry leaked into default query")
		}
	}
}

func TestLogsLevelToggleRequeries(t *testing.T) {
	b := setupTest(t)
	m := loadedLogsModel(t, b)

	next, cmd := m.Update(key("1"))
	m = next.(*logsModel)
	if !m.levels[model.LevelDebug] {
		t.Fatalf("debug not enabled by toggle")
	}
	msg := cmd().(logsLoadedMsg)
	next, _ = m.Update(msg)
	m = next.(*logsModel)
	if len(m.entries) != 40 {
		t.Fatalf("entries = %d, want all 40 with debug on", len(m.entries))
	}

	next, cmd = m.Update(key("4"))
	m = next.(*logsModel)
	msg = cmd().(logsLoadedMsg)
	for _, e := range msg.entries {
		if e.Level == model.LevelError {
			t.Fatalf("error entry present after toggling errors off")
		}
	}
}

func TestLogsPatternFilter(t *testing.T) {
	b := setupTest(t)
	m := loadedLogsModel(t, b)

	next, _ := m.Update(key("/"))
	m = next.(*logsModel)
	if !m.isFiltering {
		t.Fatalf("expected filter mode")
	}
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("operation 7")})
	m = next.(*logsModel)
	next, cmd := m.Update(key("enter"))
	m = next.(*logsModel)
	if m.isFiltering {
		t.Fatalf("filter mode not left on enter")
	}

	msg := cmd().(logsLoadedMsg)
	if len(msg.entries) != 1 || msg.entries[0].Message != "operation 7 completed" {
		t.Fatalf("entries = %+v, want the single matching line", msg.entries)
	}
}

func TestLogsCleanupConfirmFlow(t *testing.T) {
	b := setupTest(t)
	m := loadedLogsModel(t, b)

	next, _ := m.Update(key("c"))
	m = next.(*logsModel)
	if m.confirm == nil {
		t.Fatalf("expected confirmation dialog")
	}
	m.confirm.FocusRight()
	next, cmd := m.Update(key("enter"))
	m = next.(*logsModel)
	if !m.busy {
		t.Fatalf("busy flag not set")
	}

	msg := cmd().(logsOpDoneMsg)
	if msg.err != nil {
		t.Fatalf("cleanup: %v", msg.err)
	}
	if !strings.Contains(msg.detail, "files") {
		t.Errorf("detail = %q", msg.detail)
	}
	next, cmd = m.Update(msg)
	m = next.(*logsModel)
	if m.busy {
		t.Fatalf("busy flag not cleared")
	}
	if cmd == nil {
		t.Fatalf("cleanup must trigger a re-query")
	}
}

func TestLogsRetentionAdjust(t *testing.T) {
	b := setupTest(t)
	m := loadedLogsModel(t, b)
	if m.policy == nil || m.policy.MaxAgeDays != 14 {
		t.Fatalf("policy = %+v, want seeded 14 days", m.policy)
	}

	next, cmd := m.Update(key("+"))
	m = next.(*logsModel)
	msg := cmd().(logsOpDoneMsg)
	if msg.err != nil {
		t.Fatalf("set retention: %v", msg.err)
	}

	policy, err := b.RetentionPolicy(t.Context())
	if err != nil {
		t.Fatal(err)
	}
	if policy.MaxAgeDays != 21 {
		t.Fatalf("MaxAgeDays = %d, want 21", policy.MaxAgeDays)
	}

	// Applying the change reloads the policy into the view.
	next, cmd = m.Update(msg)
	m = next.(*logsModel)
	if cmd == nil {
		t.Fatalf("retention change must reload the policy")
	}
	next, _ = m.Update(cmd().(retentionLoadedMsg))
	m = next.(*logsModel)
	if m.policy.MaxAgeDays != 21 {
		t.Fatalf("view policy = %+v, want 21 days", m.policy)
	}
}

func TestLogsAutoCleanupToggle(t *testing.T) {
	b := setupTest(t)
	m := loadedLogsModel(t, b)

	_, cmd := m.Update(key("a"))
	if msg := cmd().(logsOpDoneMsg); msg.err != nil {
		t.Fatalf("set retention: %v", msg.err)
	}
	policy, err := b.RetentionPolicy(t.Context())
	if err != nil {
		t.Fatal(err)
	}
	if policy.AutoCleanup {
		t.Fatalf("auto cleanup still on after toggle")
	}
}

func TestLogsExport(t *testing.T) {
	b := setupTest(t)
	m := loadedLogsModel(t, b)

	next, cmd := m.Update(key("x"))
	m = next.(*logsModel)
	msg := cmd().(logsOpDoneMsg)
	if msg.err != nil {
		t.Fatalf("export: %v", msg.err)
	}
	if msg.action != "export" || !strings.HasPrefix(msg.detail, "devkeep-logs-") {
		t.Errorf("msg = %+v", msg)
	}
}

func TestLogsTimeWindowCycle(t *testing.T) {
	b := setupTest(t)
	m := loadedLogsModel(t, b)

	if !m.query().Since.IsZero() {
		t.Fatalf("default query must span all time")
	}

	next, cmd := m.Update(key("t"))
	m = next.(*logsModel)
	if m.window != time.Hour {
		t.Fatalf("window = %v, want 1h", m.window)
	}
	if m.query().Since.IsZero() {
		t.Fatalf("windowed query must set a lower bound")
	}
	next, _ = m.Update(cmd().(logsLoadedMsg))
	m = next.(*logsModel)
	// The fake seeds one entry per minute, so the hour window keeps them all.
	if len(m.entries) != 30 {
		t.Fatalf("entries = %d, want 30", len(m.entries))
	}

	for _, want := range []time.Duration{24 * time.Hour, 7 * 24 * time.Hour, 0} {
		next, _ = m.Update(key("t"))
		m = next.(*logsModel)
		if m.window != want {
			t.Fatalf("window = %v, want %v", m.window, want)
		}
	}
}

func TestHighlightMatches(t *testing.T) {
	if got := highlightMatches("operation 7 completed", ""); got != "operation 7 completed" {
		t.Errorf("empty pattern changed the line: %q", got)
	}
	got := highlightMatches("Operation 7 completed", "operation")
	if !strings.Contains(got, "Operation") {
		t.Errorf("match lost its original casing: %q", got)
	}
	if !strings.Contains(got, " 7 completed") {
		t.Errorf("unmatched tail was dropped: %q", got)
	}
	got = highlightMatches("retry retry", "retry")
	if c := strings.Count(got, "retry"); c != 2 {
		t.Errorf("occurrences kept = %d, want 2 (%q)", c, got)
	}
	if got := highlightMatches("plain line", "absent"); got != "plain line" {
		t.Errorf("non-matching line changed: %q", got)
	}
	// Runes whose case fold changes byte length must not break offsets:
	// 'Ⱥ' (U+023A) is 2 bytes, its lowercase 'ⱥ' (U+2C65) is 3.
	got = highlightMatches("ȺX end", "x")
	if !strings.Contains(got, "X") || !strings.Contains(got, "Ⱥ") || !strings.Contains(got, " end") {
		t.Errorf("mixed-width fold mangled the line: %q", got)
	}
	got = highlightMatches("ⱥbc tail", "ȺBC")
	if !strings.Contains(got, "ⱥbc") || !strings.Contains(got, " tail") {
		t.Errorf("folded match dropped content: %q", got)
	}
}
