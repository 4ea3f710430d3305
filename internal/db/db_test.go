// Copyright (c) 2026 Devkeep Authors
// Devkeep - developer machine caretaker
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"errors"
	"testing"
	"time"

	"github.com/devkeep/devkeep/internal/model"
)

func newTestStore(t *testing.T) Store {
	t.Helper()
	s, err := New("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestActionLogRoundTrip(t *testing.T) {
	s := newTestStore(t)

	for _, a := range []string{"CLEAN_CACHE", "INSTALL_ENV", "EXPORT_LOGS"} {
		if err := s.LogAction(a, "details for "+a, "ok"); err != nil {
			t.Fatalf("LogAction(%s): %v", a, err)
		}
	}

	entries, err := s.GetActionLog(0)
	if err != nil {
		t.Fatalf("GetActionLog: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	// Newest first.
	if entries[0].Action != "EXPORT_LOGS" {
		t.Errorf("expected newest entry first, got %q", entries[0].Action)
	}
	if entries[0].Timestamp == "" {
		t.Error("expected a timestamp on log entries")
	}

	limited, err := s.GetActionLog(2)
	if err != nil {
		t.Fatalf("GetActionLog(2): %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("expected 2 limited entries, got %d", len(limited))
	}
}

func TestPruneActionLog(t *testing.T) {
	s := newTestStore(t)

	if err := s.LogAction("CLEAN_CACHE", "old entry", "ok"); err != nil {
		t.Fatalf("LogAction: %v", err)
	}

	// A cutoff in the future removes everything written so far.
	n, err := s.PruneActionLog(time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("PruneActionLog: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 pruned row, got %d", n)
	}

	entries, err := s.GetActionLog(0)
	if err != nil {
		t.Fatalf("GetActionLog: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty log after prune, got %d entries", len(entries))
	}

	// A cutoff in the past removes nothing.
	if err := s.LogAction("CLEAN_CACHE", "new entry", "ok"); err != nil {
		t.Fatalf("LogAction: %v", err)
	}
	n, err = s.PruneActionLog(time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("PruneActionLog: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 pruned rows, got %d", n)
	}
}

func TestFeedbackQueue(t *testing.T) {
	s := newTestStore(t)

	f := model.Feedback{ID: "fb-1", Category: "bug", Message: "cache sizes look wrong", Contact: "dev@example.com"}
	if err := s.EnqueueFeedback(f); err != nil {
		t.Fatalf("EnqueueFeedback: %v", err)
	}
	if err := s.EnqueueFeedback(model.Feedback{ID: "fb-2", Category: "idea", Message: "dark mode"}); err != nil {
		t.Fatalf("EnqueueFeedback: %v", err)
	}

	// Re-queuing the same ID is a duplicate.
	if err := s.EnqueueFeedback(f); !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}

	pending, err := s.PendingFeedback()
	if err != nil {
		t.Fatalf("PendingFeedback: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending reports, got %d", len(pending))
	}
	if pending[0].ID != "fb-1" || pending[0].Contact != "dev@example.com" {
		t.Errorf("unexpected first pending report: %+v", pending[0])
	}

	if err := s.DeleteFeedback("fb-1"); err != nil {
		t.Fatalf("DeleteFeedback: %v", err)
	}
	pending, err = s.PendingFeedback()
	if err != nil {
		t.Fatalf("PendingFeedback: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != "fb-2" {
		t.Errorf("expected only fb-2 to remain, got %+v", pending)
	}
}

func TestBackupManifests(t *testing.T) {
	s := newTestStore(t)

	m := model.BackupManifest{
		ID:        "bk-1",
		Path:      "/tmp/devkeep-backup-1.tar.zst",
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		SizeBytes: 4096,
		Contents:  []string{"config.yaml", "settings", "action_log"},
		Valid:     true,
	}
	if err := s.SaveBackupManifest(m); err != nil {
		t.Fatalf("SaveBackupManifest: %v", err)
	}

	got, err := s.GetBackupManifest("bk-1")
	if err != nil {
		t.Fatalf("GetBackupManifest: %v", err)
	}
	if got == nil {
		t.Fatal("expected manifest, got nil")
	}
	if got.Path != m.Path || got.SizeBytes != m.SizeBytes || !got.Valid {
		t.Errorf("manifest mismatch: %+v", got)
	}
	if len(got.Contents) != 3 || got.Contents[0] != "config.yaml" {
		t.Errorf("contents mismatch: %v", got.Contents)
	}

	// Saving again with the same ID replaces the record.
	m.Valid = false
	if err := s.SaveBackupManifest(m); err != nil {
		t.Fatalf("SaveBackupManifest (replace): %v", err)
	}
	got, err = s.GetBackupManifest("bk-1")
	if err != nil {
		t.Fatalf("GetBackupManifest: %v", err)
	}
	if got == nil || got.Valid {
		t.Errorf("expected replaced manifest with valid=false, got %+v", got)
	}

	// Unknown ID is nil, not an error.
	missing, err := s.GetBackupManifest("bk-nope")
	if err != nil {
		t.Fatalf("GetBackupManifest (missing): %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown manifest, got %+v", missing)
	}

	if err := s.DeleteBackupManifest("bk-1"); err != nil {
		t.Fatalf("DeleteBackupManifest: %v", err)
	}
	all, err := s.GetBackupManifests()
	if err != nil {
		t.Fatalf("GetBackupManifests: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("expected no manifests after delete, got %d", len(all))
	}
}

func TestSettings(t *testing.T) {
	s := newTestStore(t)

	if err := s.SetSetting("language", "en"); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
	v, err := s.GetSetting("language")
	if err != nil {
		t.Fatalf("GetSetting: %v", err)
	}
	if v != "en" {
		t.Errorf("expected en, got %q", v)
	}

	// Overwrite.
	if err := s.SetSetting("language", "de"); err != nil {
		t.Fatalf("SetSetting (overwrite): %v", err)
	}
	v, err = s.GetSetting("language")
	if err != nil {
		t.Fatalf("GetSetting: %v", err)
	}
	if v != "de" {
		t.Errorf("expected de after overwrite, got %q", v)
	}

	// Unset key is empty, not an error.
	v, err = s.GetSetting("no-such-key")
	if err != nil {
		t.Fatalf("GetSetting (unset): %v", err)
	}
	if v != "" {
		t.Errorf("expected empty value for unset key, got %q", v)
	}

	if err := s.SetSetting("onboarding_done", "true"); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
	all, err := s.AllSettings()
	if err != nil {
		t.Fatalf("AllSettings: %v", err)
	}
	if len(all) != 2 || all["language"] != "de" || all["onboarding_done"] != "true" {
		t.Errorf("unexpected settings map: %v", all)
	}
}

func TestKnownHostKeys(t *testing.T) {
	s := newTestStore(t)

	k, err := s.GetKnownHostKey("backup.example.com")
	if err != nil {
		t.Fatalf("GetKnownHostKey: %v", err)
	}
	if k != "" {
		t.Errorf("expected no pinned key for fresh host, got %q", k)
	}

	if err := s.AddKnownHostKey("backup.example.com", "ssh-ed25519 AAAA..."); err != nil {
		t.Fatalf("AddKnownHostKey: %v", err)
	}
	k, err = s.GetKnownHostKey("backup.example.com")
	if err != nil {
		t.Fatalf("GetKnownHostKey: %v", err)
	}
	if k != "ssh-ed25519 AAAA..." {
		t.Errorf("unexpected pinned key: %q", k)
	}

	// Re-pinning replaces the stored key.
	if err := s.AddKnownHostKey("backup.example.com", "ssh-ed25519 BBBB..."); err != nil {
		t.Fatalf("AddKnownHostKey (replace): %v", err)
	}
	k, _ = s.GetKnownHostKey("backup.example.com")
	if k != "ssh-ed25519 BBBB..." {
		t.Errorf("expected replaced key, got %q", k)
	}
}

func TestPackageLevelHelpers(t *testing.T) {
	if _, err := New("sqlite", ":memory:"); err != nil {
		t.Fatalf("New: %v", err)
	}
	if !IsInitialized() {
		t.Fatal("expected package store to be initialized")
	}
	if err := LogAction("VERIFY_CACHE", "npm", "ok"); err != nil {
		t.Fatalf("LogAction: %v", err)
	}
	entries, err := GetActionLog(0)
	if err != nil {
		t.Fatalf("GetActionLog: %v", err)
	}
	if len(entries) != 1 || entries[0].Outcome != "ok" {
		t.Errorf("unexpected entries: %+v", entries)
	}
}

func TestNewStoreFromDSNUnknownType(t *testing.T) {
	if _, err := NewStoreFromDSN("oracle", "whatever"); err == nil {
		t.Fatal("expected error for unsupported db type")
	}
}

func TestMapDBError(t *testing.T) {
	if MapDBError(nil) != nil {
		t.Error("nil should map to nil")
	}
	if !errors.Is(MapDBError(errors.New("UNIQUE constraint failed: settings.key")), ErrDuplicate) {
		t.Error("sqlite unique violation should map to ErrDuplicate")
	}
	if !errors.Is(MapDBError(errors.New("pq: duplicate key value violates unique constraint (23505)")), ErrDuplicate) {
		t.Error("postgres unique violation should map to ErrDuplicate")
	}
	plain := errors.New("connection refused")
	if MapDBError(plain) != plain {
		t.Error("unrelated errors should pass through unchanged")
	}
}
