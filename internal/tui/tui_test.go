// Copyright (c) 2026 Devkeep Authors
// Devkeep - developer machine caretaker
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/devkeep/devkeep/internal/backend/fake"
	"github.com/devkeep/devkeep/internal/db"
	"github.com/devkeep/devkeep/internal/i18n"
	"github.com/devkeep/devkeep/internal/model"
	"github.com/devkeep/devkeep/internal/state"
)

// setupTest wires a fresh in-memory store and a seeded fake backend.
func setupTest(t *testing.T) *fake.Backend {
	t.Helper()
	i18n.Init("en")
	if _, err := db.New("sqlite", ":memory:"); err != nil {
		t.Fatalf("db.New: %v", err)
	}
	state.SessionLog.Clear()
	return fake.NewSeeded()
}

// key builds a rune key message.
func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestRefreshDashboardCmd(t *testing.T) {
	b := setupTest(t)

	msg, ok := refreshDashboardCmd(b)().(dashboardDataMsg)
	if !ok {
		t.Fatalf("expected dashboardDataMsg")
	}
	if !msg.data.helperOK {
		t.Fatalf("expected helperOK with seeded fake")
	}
	if msg.data.toolCacheCount != 3 {
		t.Errorf("toolCacheCount = %d, want 3", msg.data.toolCacheCount)
	}
	if msg.data.distroCount != 2 || msg.data.distrosRunning != 1 {
		t.Errorf("distros = %d/%d, want 2 total 1 running", msg.data.distroCount, msg.data.distrosRunning)
	}
}

func TestRefreshDashboardCmdHelperDown(t *testing.T) {
	b := setupTest(t)
	b.SetUnavailable(true)
	_ = db.LogAction("CLEAN_CACHE", "pip", "ok")

	msg := refreshDashboardCmd(b)().(dashboardDataMsg)
	if msg.data.helperOK {
		t.Fatalf("expected helperOK=false")
	}
	// The action log comes from the local store and must survive a down helper.
	if len(msg.data.recentActions) != 1 {
		t.Fatalf("recentActions = %d, want 1", len(msg.data.recentActions))
	}
}

func TestMenuOpensCachesView(t *testing.T) {
	b := setupTest(t)
	m := initialModelWithBackend(b)

	next, _ := m.Update(key("enter"))
	mm := next.(mainModel)
	if mm.state != cachesView {
		t.Fatalf("state = %v, want cachesView", mm.state)
	}
	if mm.caches == nil {
		t.Fatalf("caches sub-model not constructed")
	}
}

func TestBackToMenuRefreshesDashboard(t *testing.T) {
	b := setupTest(t)
	m := initialModelWithBackend(b)
	next, _ := m.Update(key("enter"))
	mm := next.(mainModel)

	next, cmd := mm.Update(backToMenuMsg{})
	mm = next.(mainModel)
	if mm.state != menuView {
		t.Fatalf("state = %v, want menuView", mm.state)
	}
	if cmd == nil {
		t.Fatalf("expected a dashboard refresh command")
	}
}

func TestMenuViewShowsDashboard(t *testing.T) {
	b := setupTest(t)
	m := initialModelWithBackend(b)
	msg := refreshDashboardCmd(b)()
	next, _ := m.Update(msg)
	mm := next.(mainModel)

	view := mm.View()
	if !strings.Contains(view, i18n.T("dashboard.recent_activity")) {
		t.Errorf("dashboard missing recent activity section")
	}
	if !strings.Contains(view, "linux/amd64") {
		t.Errorf("dashboard missing platform line:\n%s", view)
	}
}

func TestLanguagePersistedToStore(t *testing.T) {
	setupTest(t)
	if err := saveLanguage("de"); err != nil {
		t.Fatalf("saveLanguage: %v", err)
	}
	got, err := db.GetSetting("language")
	if err != nil {
		t.Fatalf("GetSetting: %v", err)
	}
	if got != "de" {
		t.Errorf("language setting = %q, want de", got)
	}
	i18n.Init("en")
}

func TestActionStyleFor(t *testing.T) {
	cases := []struct {
		action, outcome string
		want            lipgloss.Style
	}{
		{"CLEAN_CACHE", "ok", specialStyle},
		{"DELETE_ENTRY", "ok", specialStyle},
		{"INSTALL_ENV", "ok", successStyle},
		{"CREATE_BACKUP", "", successStyle},
		{"WSL_EXPORT", "ok", helpStyle},
		{"ANYTHING", "error", errorStyle},
	}
	for _, c := range cases {
		got := actionStyleFor(model.ActionLogEntry{Action: c.action, Outcome: c.outcome})
		if got.GetForeground() != c.want.GetForeground() {
			t.Errorf("style for %s/%s = %v, want %v",
				c.action, c.outcome, got.GetForeground(), c.want.GetForeground())
		}
	}
}

func TestFirstRunHintRetiredAndPersisted(t *testing.T) {
	b := setupTest(t)
	state.Onboarding.SetDone(false)

	m := initialModelWithBackend(b)
	m.width, m.height = 100, 40
	if !strings.Contains(m.View(), i18n.T("dashboard.first_run_hint")) {
		t.Fatalf("first run hint not shown on a fresh dashboard")
	}

	next, _ := m.openMenuEntry(0)
	m = next.(mainModel)
	if !state.Onboarding.Done() {
		t.Fatalf("opening a view must complete onboarding")
	}
	got, err := db.GetSetting("onboarding_done")
	if err != nil {
		t.Fatalf("GetSetting: %v", err)
	}
	if got != "true" {
		t.Errorf("onboarding_done = %q, want true", got)
	}

	back, _ := m.Update(backToMenuMsg{})
	m = back.(mainModel)
	if strings.Contains(m.View(), i18n.T("dashboard.first_run_hint")) {
		t.Errorf("hint still shown after onboarding completed")
	}
}
