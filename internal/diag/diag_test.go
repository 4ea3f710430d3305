// Copyright (c) 2026 Devkeep Authors
// Devkeep - developer machine caretaker
// This source code is licensed under the MIT license found in the LICENSE file.

package diag

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/devkeep/devkeep/internal/backend/fake"
	"github.com/devkeep/devkeep/internal/config"
	"github.com/devkeep/devkeep/internal/model"
)

func TestCollectAndRoundTrip(t *testing.T) {
	b := fake.NewSeeded()
	cfg := config.Config{}
	cfg.DSN = "user:secret@tcp(db:3306)/devkeep"
	cfg.Remote.KeyFile = "/home/dev/.ssh/id_ed25519"

	session := []string{"cleaned npm cache", "installed python@3.12.1"}
	actions := []model.ActionLogEntry{{ID: 1, Action: "CLEAN_CACHE", Outcome: "ok"}}

	bundle := Collect(context.Background(), b, cfg, session, actions)
	if bundle.ID == "" {
		t.Error("expected a bundle ID")
	}
	if bundle.Version != bundleVersion {
		t.Errorf("unexpected version %d", bundle.Version)
	}
	if bundle.Platform == nil {
		t.Fatal("expected platform info from available backend")
	}
	if bundle.Config.DSN != "<redacted>" || bundle.Config.Remote.KeyFile != "<redacted>" {
		t.Errorf("secrets not redacted: %+v", bundle.Config)
	}
	if len(bundle.SessionLog) != 2 || len(bundle.ActionLog) != 1 {
		t.Errorf("bundle missing logs: %+v", bundle)
	}

	var buf bytes.Buffer
	if err := Write(bundle, &buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.ID != bundle.ID || len(got.SessionLog) != 2 {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestCollectUnavailableBackend(t *testing.T) {
	b := fake.NewSeeded()
	b.SetUnavailable(true)

	bundle := Collect(context.Background(), b, config.Config{}, nil, nil)
	if bundle.Platform != nil {
		t.Error("expected no platform info when backend is unavailable")
	}
	if bundle.ID == "" {
		t.Error("bundle should still be assembled when backend is down")
	}
}

func TestActionLogTruncated(t *testing.T) {
	actions := make([]model.ActionLogEntry, actionLogLimit+50)
	bundle := Collect(context.Background(), nil, config.Config{}, nil, actions)
	if len(bundle.ActionLog) != actionLogLimit {
		t.Errorf("expected %d rows, got %d", actionLogLimit, len(bundle.ActionLog))
	}
}

func TestExportDefaultName(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	bundle := Collect(context.Background(), nil, config.Config{}, nil, nil)
	path, err := Export(bundle, "")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if filepath.Ext(path) != ".zst" {
		t.Errorf("expected .zst default name, got %q", path)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open exported bundle: %v", err)
	}
	defer func() { _ = f.Close() }()
	got, err := Read(f)
	if err != nil {
		t.Fatalf("Read exported bundle: %v", err)
	}
	if got.ID != bundle.ID {
		t.Errorf("exported bundle mismatch: %q vs %q", got.ID, bundle.ID)
	}
}
