// Copyright (c) 2026 Devkeep Authors
// Devkeep - developer machine caretaker
// This source code is licensed under the MIT license found in the LICENSE file.

package fake

import (
	"context"
	"errors"
	"testing"

	"github.com/devkeep/devkeep/internal/backend"
	"github.com/devkeep/devkeep/internal/model"
)

func TestListEntriesPagination(t *testing.T) {
	b := NewSeeded()
	ctx := context.Background()

	page, err := b.ListEntries(ctx, model.CacheQuery{Offset: 0, Limit: 10})
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	if len(page.Entries) != 10 {
		t.Errorf("page size = %d, want 10", len(page.Entries))
	}
	if page.Total != 24 {
		t.Errorf("total = %d, want 24", page.Total)
	}

	last, err := b.ListEntries(ctx, model.CacheQuery{Offset: 20, Limit: 10})
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	if len(last.Entries) != 4 {
		t.Errorf("last page size = %d, want 4", len(last.Entries))
	}
}

func TestListEntriesSearchAndSort(t *testing.T) {
	b := NewSeeded()
	ctx := context.Background()

	page, err := b.ListEntries(ctx, model.CacheQuery{Search: "package-1", SortBy: "size", SortDesc: true})
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	// package-10 .. package-19 plus package-1x variants; all entries match the prefix.
	if page.Total == 0 {
		t.Fatal("search returned no entries")
	}
	for i := 1; i < len(page.Entries); i++ {
		if page.Entries[i].SizeBytes > page.Entries[i-1].SizeBytes {
			t.Fatalf("entries not sorted descending by size at index %d", i)
		}
	}
}

func TestDeleteEntriesReportsPerItemOutcome(t *testing.T) {
	b := NewSeeded()
	ctx := context.Background()

	res, err := b.DeleteEntries(ctx, []string{"entry-01", "entry-02", "bogus"})
	if err != nil {
		t.Fatalf("DeleteEntries: %v", err)
	}
	if res.Succeeded != 2 || res.Failed != 1 {
		t.Errorf("batch result = %+v, want 2 succeeded / 1 failed", res)
	}
	if !res.Partial() {
		t.Error("mixed batch should be partial")
	}
	if len(b.LastBatch) != 3 {
		t.Errorf("LastBatch recorded %d ids, want 3", len(b.LastBatch))
	}
}

func TestSetGlobalMovesFlag(t *testing.T) {
	b := NewSeeded()
	ctx := context.Background()

	if err := b.SetGlobal(ctx, "python", "3.11.9"); err != nil {
		t.Fatalf("SetGlobal: %v", err)
	}
	versions, err := b.ListVersions(ctx, "python")
	if err != nil {
		t.Fatalf("ListVersions: %v", err)
	}
	globals := 0
	for _, v := range versions {
		if v.Global {
			globals++
			if v.Version != "3.11.9" {
				t.Errorf("global moved to %s, want 3.11.9", v.Version)
			}
		}
	}
	if globals != 1 {
		t.Errorf("global count = %d, want exactly 1", globals)
	}
}

func TestSetGlobalRejectsUninstalled(t *testing.T) {
	b := NewSeeded()
	if err := b.SetGlobal(context.Background(), "python", "3.13.0"); err == nil {
		t.Fatal("expected error setting an uninstalled version global")
	}
}

func TestInstallEmitsProgress(t *testing.T) {
	b := NewSeeded()
	var events []model.Progress
	token, err := b.Install(context.Background(), "node", "20.16.0", func(p model.Progress) {
		events = append(events, p)
	})
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if token == "" {
		t.Error("install returned empty token")
	}
	if len(events) != 2 {
		t.Errorf("got %d progress events, want 2", len(events))
	}
}

func TestCancelInstallAbortsByToken(t *testing.T) {
	b := NewSeeded()
	// The first install gets the token "install-1"; cancelling from inside
	// the progress callback mimics a second goroutine racing the install.
	_, err := b.Install(context.Background(), "node", "20.16.0", func(model.Progress) {
		_ = b.CancelInstall(context.Background(), "install-1")
	})
	if !errors.Is(err, backend.ErrCancelled) {
		t.Fatalf("err = %v, want ErrCancelled", err)
	}
	versions, err := b.ListVersions(context.Background(), "node")
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range versions {
		if v.Version == "20.16.0" && v.Installed {
			t.Error("cancelled install still marked the version installed")
		}
	}
}

func TestFailInjection(t *testing.T) {
	b := NewSeeded()
	injected := errors.New("cache locked")
	b.Fail["cache.list"] = injected

	_, err := b.ListEntries(context.Background(), model.CacheQuery{})
	if !errors.Is(err, injected) {
		t.Fatalf("injected failure not surfaced, got %v", err)
	}
}

func TestLogQueryFilters(t *testing.T) {
	b := NewSeeded()
	entries, err := b.Query(context.Background(), model.LogQuery{Levels: []model.LogLevel{model.LevelError}})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("no error entries returned")
	}
	for _, e := range entries {
		if e.Level != model.LevelError {
			t.Fatalf("entry level %s leaked through error filter", e.Level)
		}
	}
}

func TestDistroAndLogExportsAreDistinctCalls(t *testing.T) {
	b := NewSeeded()
	ctx := context.Background()

	if err := b.ExportDistro(ctx, "Ubuntu-24.04", "/tmp/ubuntu.tar"); err != nil {
		t.Fatalf("ExportDistro: %v", err)
	}
	if err := b.ExportLogs(ctx, model.LogQuery{}, "/tmp/helper.log"); err != nil {
		t.Fatalf("ExportLogs: %v", err)
	}

	want := map[string]bool{"wsl.export": false, "logs.export": false}
	for _, op := range b.Calls {
		if _, ok := want[op]; ok {
			want[op] = true
		}
	}
	for op, seen := range want {
		if !seen {
			t.Errorf("%s not recorded", op)
		}
	}
}
