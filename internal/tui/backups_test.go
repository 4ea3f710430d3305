// Copyright (c) 2026 Devkeep Authors
// Devkeep - developer machine caretaker
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"strings"
	"testing"

	"github.com/devkeep/devkeep/internal/backend/fake"
	"github.com/devkeep/devkeep/internal/config"
	"github.com/devkeep/devkeep/internal/db"
)

// loadedBackupsModel returns a backupsModel with the local pane filled and
// no remote configured.
func loadedBackupsModel(t *testing.T, b *fake.Backend) *backupsModel {
	t.Helper()
	config.SetCurrent(config.Config{})
	m := newBackupsModel(b)
	if next, _ := m.Update(m.loadLocalCmd()()); next != nil {
		m = next.(*backupsModel)
	}
	if next, _ := m.Update(m.loadRemoteCmd()()); next != nil {
		m = next.(*backupsModel)
	}
	return m
}

func TestBackupsListFromFake(t *testing.T) {
	b := setupTest(t)
	m := loadedBackupsModel(t, b)

	if len(m.backups) != 1 || m.backups[0].ID != "bk-1" {
		t.Fatalf("backups = %+v, want the seeded bk-1", m.backups)
	}
	if !strings.Contains(m.View(), "✓") {
		t.Errorf("valid mark not rendered")
	}
}

func TestBackupsCreateSavesManifest(t *testing.T) {
	b := setupTest(t)
	m := loadedBackupsModel(t, b)

	next, cmd := m.Update(key("n"))
	m = next.(*backupsModel)
	if !m.busy {
		t.Fatalf("busy flag not set")
	}
	msg := cmd().(backupOpDoneMsg)
	if msg.err != nil {
		t.Fatalf("create: %v", msg.err)
	}
	next, cmd = m.Update(msg)
	m = next.(*backupsModel)

	manifests, err := db.GetBackupManifests()
	if err != nil {
		t.Fatal(err)
	}
	if len(manifests) != 1 || manifests[0].ID != "bk-2" {
		t.Fatalf("stored manifests = %+v, want bk-2", manifests)
	}

	// The follow-up reload shows both backups.
	next, _ = m.Update(cmd().(backupsLoadedMsg))
	m = next.(*backupsModel)
	if len(m.backups) != 2 {
		t.Errorf("backups = %d after create, want 2", len(m.backups))
	}
}

func TestBackupsValidate(t *testing.T) {
	b := setupTest(t)
	m := loadedBackupsModel(t, b)

	next, cmd := m.Update(key("v"))
	m = next.(*backupsModel)
	msg := cmd().(backupOpDoneMsg)
	if msg.err != nil || msg.manifest == nil || !msg.manifest.Valid {
		t.Fatalf("validate msg = %+v, want valid manifest", msg)
	}
	next, _ = m.Update(msg)
	m = next.(*backupsModel)
	if m.status == "" {
		t.Errorf("no status after validate")
	}
}

func TestBackupsRestoreConfirmFlow(t *testing.T) {
	b := setupTest(t)
	m := loadedBackupsModel(t, b)

	next, _ := m.Update(key("R"))
	m = next.(*backupsModel)
	if m.confirm == nil {
		t.Fatalf("expected confirmation dialog")
	}
	m.confirm.FocusRight()
	next, cmd := m.Update(key("enter"))
	m = next.(*backupsModel)

	msg := cmd().(backupOpDoneMsg)
	if msg.action != "restore" || msg.err != nil {
		t.Fatalf("msg = %+v, want successful restore", msg)
	}
}

func TestBackupsCleanupNeedsEnoughBackups(t *testing.T) {
	b := setupTest(t)
	m := loadedBackupsModel(t, b)

	// Only one backup exists; cleanup must not even offer a dialog.
	next, _ := m.Update(key("C"))
	m = next.(*backupsModel)
	if m.confirm != nil {
		t.Fatalf("cleanup offered with %d backups", len(m.backups))
	}
}

func TestBackupsRemoteUnconfigured(t *testing.T) {
	b := setupTest(t)
	m := loadedBackupsModel(t, b)

	if !strings.Contains(m.View(), "remote") && !strings.Contains(strings.ToLower(m.View()), "configure") {
		t.Errorf("unconfigured remote pane not rendered:\n%s", m.View())
	}

	// Push is refused without a remote host.
	next, cmd := m.Update(key("P"))
	m = next.(*backupsModel)
	if cmd != nil || m.busy {
		t.Fatalf("push attempted without remote config")
	}
	if m.status == "" {
		t.Errorf("no status explaining the refusal")
	}
}

func TestBackupsTrustHostDialog(t *testing.T) {
	b := setupTest(t)
	m := loadedBackupsModel(t, b)

	next, _ := m.Update(hostKeyFetchedMsg{host: "backups.example.net", key: "ssh-ed25519 AAAAC3Nza"})
	m = next.(*backupsModel)
	if m.confirm == nil {
		t.Fatalf("expected trust dialog")
	}
	m.confirm.FocusRight()
	next, cmd := m.Update(key("enter"))
	m = next.(*backupsModel)

	msg := cmd().(backupOpDoneMsg)
	if msg.action != "trust" || msg.err != nil {
		t.Fatalf("msg = %+v, want successful trust", msg)
	}
	stored, err := db.GetKnownHostKey("backups.example.net")
	if err != nil {
		t.Fatal(err)
	}
	if stored != "ssh-ed25519 AAAAC3Nza" {
		t.Errorf("stored key = %q", stored)
	}
}
