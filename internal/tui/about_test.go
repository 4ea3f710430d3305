// Copyright (c) 2026 Devkeep Authors
// Devkeep - developer machine caretaker
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"os"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/devkeep/devkeep/internal/backend/fake"
	"github.com/devkeep/devkeep/internal/config"
	"github.com/devkeep/devkeep/internal/state"
)

func loadedAboutModel(t *testing.T, b *fake.Backend) *aboutModel {
	t.Helper()
	m := newAboutModel(b)
	if next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40}); next != nil {
		m = next.(*aboutModel)
	}
	if next, _ := m.Update(m.loadPlatformCmd()()); next != nil {
		m = next.(*aboutModel)
	}
	return m
}

func TestAboutShowsPlatform(t *testing.T) {
	b := setupTest(t)
	m := loadedAboutModel(t, b)

	view := m.View()
	if !strings.Contains(view, "linux/amd64") {
		t.Errorf("platform line missing:\n%s", view)
	}
	if !strings.Contains(view, "1.4.0") {
		t.Errorf("helper version missing")
	}
}

func TestAboutUpdateCheck(t *testing.T) {
	b := setupTest(t)
	m := loadedAboutModel(t, b)

	next, cmd := m.Update(key("u"))
	m = next.(*aboutModel)
	if !m.busy {
		t.Fatalf("busy flag not set")
	}
	msg := cmd().(updateCheckedMsg)
	if msg.err != nil || !msg.info.Available {
		t.Fatalf("msg = %+v, want available update", msg)
	}
	next, _ = m.Update(msg)
	m = next.(*aboutModel)
	if !strings.Contains(m.status, "1.5.2") {
		t.Errorf("status %q does not mention the new version", m.status)
	}
}

func TestAboutApplyUpdateFlow(t *testing.T) {
	b := setupTest(t)
	m := loadedAboutModel(t, b)

	// Apply is refused until a check found an update.
	next, cmd := m.Update(key("U"))
	m = next.(*aboutModel)
	if cmd != nil {
		t.Fatalf("apply ran without a prior check")
	}

	next, cmd = m.Update(key("u"))
	m = next.(*aboutModel)
	next, _ = m.Update(cmd().(updateCheckedMsg))
	m = next.(*aboutModel)

	next, cmd = m.Update(key("U"))
	m = next.(*aboutModel)
	if !m.updating {
		t.Fatalf("update did not start")
	}
	for i := 0; m.updating; i++ {
		if i > 10 {
			t.Fatalf("update never finished")
		}
		next, cmd = m.Update(cmd())
		m = next.(*aboutModel)
	}
	if !strings.Contains(strings.ToLower(m.status), "update") {
		t.Errorf("status = %q", m.status)
	}
}

func TestAboutQuitBlockedWhileUpdating(t *testing.T) {
	b := setupTest(t)
	m := loadedAboutModel(t, b)
	m.updating = true

	_, cmd := m.Update(key("q"))
	if cmd != nil {
		t.Fatalf("leaving the view must be blocked during an update")
	}
}

func TestAboutDiagExport(t *testing.T) {
	b := setupTest(t)
	t.Chdir(t.TempDir())
	config.SetCurrent(config.Config{Language: "en"})
	state.SessionLog.Append("opened caches view")
	m := loadedAboutModel(t, b)

	next, cmd := m.Update(key("d"))
	m = next.(*aboutModel)
	msg := cmd().(diagExportedMsg)
	if msg.err != nil {
		t.Fatalf("diag export: %v", msg.err)
	}
	if _, err := os.Stat(msg.path); err != nil {
		t.Fatalf("bundle not written: %v", err)
	}
	next, _ = m.Update(msg)
	m = next.(*aboutModel)
	if m.diagPath != msg.path {
		t.Errorf("diagPath = %q, want %q", m.diagPath, msg.path)
	}
}
