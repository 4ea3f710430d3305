// Copyright (c) 2026 Devkeep Authors
// Devkeep - developer machine caretaker
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"reflect"
	"testing"

	"github.com/devkeep/devkeep/internal/i18n"
	"github.com/devkeep/devkeep/internal/model"
)

func TestNewRootCmdHasSubcommands(t *testing.T) {
	i18n.Init("en")
	root := NewRootCmd()
	want := []string{"version", "db-maintain", "caches", "envs", "wsl", "logs", "backup", "diag", "feedback", "update"}
	have := map[string]bool{}
	for _, c := range root.Commands() {
		have[c.Name()] = true
	}
	for _, name := range want {
		if !have[name] {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestParseLevels(t *testing.T) {
	i18n.Init("en")
	tests := []struct {
		in      string
		want    []model.LogLevel
		wantErr bool
	}{
		{in: "", want: nil},
		{in: "debug", want: []model.LogLevel{model.LevelDebug}},
		{in: "info,error", want: []model.LogLevel{model.LevelInfo, model.LevelError}},
		{in: " Warn , ERROR ", want: []model.LogLevel{model.LevelWarn, model.LevelError}},
		{in: "info,bogus", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseLevels(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseLevels(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseLevels(%q): %v", tt.in, err)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseLevels(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestHumanBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{2 << 10, "2.0 KB"},
		{5 << 20, "5.0 MB"},
		{3 << 30, "3.0 GB"},
	}
	for _, tt := range tests {
		if got := humanBytes(tt.in); got != tt.want {
			t.Errorf("humanBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
