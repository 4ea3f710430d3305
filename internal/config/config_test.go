// Copyright (c) 2026 Devkeep Authors
// Devkeep - developer machine caretaker
// This source code is licensed under the MIT license found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	c, err := Load(nil, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Language != "en" {
		t.Errorf("default language = %q, want en", c.Language)
	}
	if c.DBType != "sqlite" {
		t.Errorf("default db_type = %q, want sqlite", c.DBType)
	}
	if c.Debug || c.Demo {
		t.Error("debug/demo should default to false")
	}
}

func TestLoadExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	content := "language: de\ndebug: true\nremote:\n  host: backup.example.net\n  user: dev\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	c, err := Load(nil, &path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Language != "de" {
		t.Errorf("language = %q, want de", c.Language)
	}
	if !c.Debug {
		t.Error("debug not read from file")
	}
	if c.Remote.Host != "backup.example.net" || c.Remote.User != "dev" {
		t.Errorf("remote = %+v, want host/user from file", c.Remote)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DEVKEEP_LANGUAGE", "de")

	c, err := Load(nil, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Language != "de" {
		t.Errorf("language = %q, want env override de", c.Language)
	}
}
