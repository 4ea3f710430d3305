// Copyright (c) 2026 Devkeep Authors
// Devkeep - developer machine caretaker
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/devkeep/devkeep/internal/backend"
	"github.com/devkeep/devkeep/internal/backend/fake"
	"github.com/devkeep/devkeep/internal/model"
)

// loadedCachesModel returns a cachesModel with tool caches and entries
// already delivered.
func loadedCachesModel(t *testing.T, b *fake.Backend) *cachesModel {
	t.Helper()
	m := newCachesModel(b)
	if next, _ := m.Update(m.loadToolCachesCmd()()); next != nil {
		m = next.(*cachesModel)
	}
	if next, _ := m.Update(m.loadEntriesCmd()()); next != nil {
		m = next.(*cachesModel)
	}
	return m
}

func TestCachesLoadRendersCaches(t *testing.T) {
	b := setupTest(t)
	m := loadedCachesModel(t, b)

	if len(m.displayed) != 3 {
		t.Fatalf("displayed = %d, want 3", len(m.displayed))
	}
	view := m.View()
	for _, name := range []string{"pip", "npm", "cargo"} {
		if !strings.Contains(view, name) {
			t.Errorf("view missing cache %q", name)
		}
	}
}

func TestCachesUnavailableShortCircuits(t *testing.T) {
	b := setupTest(t)
	b.SetUnavailable(true)
	m := newCachesModel(b)

	msg, ok := m.loadToolCachesCmd()().(toolCachesLoadedMsg)
	if !ok || msg.err != backend.ErrUnavailable {
		t.Fatalf("expected ErrUnavailable, got %#v", msg)
	}
	// The fetch must not have reached the backend at all.
	for _, call := range b.Calls {
		if call == "cache.discover" {
			t.Fatalf("fetch was not short-circuited")
		}
	}
	if next, _ := m.Update(msg); next != nil {
		m = next.(*cachesModel)
	}
	if !strings.Contains(m.View(), "not available") {
		t.Errorf("unavailable state not rendered")
	}
}

func TestCachesBatchDeleteSendsSelectedIDs(t *testing.T) {
	b := setupTest(t)
	m := loadedCachesModel(t, b)
	m.pane = entriesPane

	// Mark two entries and request deletion.
	m.selected[m.page.Entries[0].ID] = true
	m.selected[m.page.Entries[2].ID] = true
	want := m.selectedIDs()
	if len(want) != 2 {
		t.Fatalf("selectedIDs = %v, want 2 ids", want)
	}

	next, _ := m.Update(key("d"))
	m = next.(*cachesModel)
	if m.confirm == nil {
		t.Fatalf("expected confirmation dialog")
	}
	m.confirm.FocusRight()
	next, cmd := m.Update(key("enter"))
	m = next.(*cachesModel)
	if cmd == nil {
		t.Fatalf("expected delete command after confirmation")
	}

	msg := cmd().(cacheEntriesDeletedMsg)
	if len(b.LastBatch) != 2 {
		t.Fatalf("LastBatch = %v, want exactly the 2 marked ids", b.LastBatch)
	}
	for i, id := range want {
		if b.LastBatch[i] != id {
			t.Errorf("LastBatch[%d] = %q, want %q", i, b.LastBatch[i], id)
		}
	}
	if msg.res.Succeeded != 2 || msg.res.Failed != 0 {
		t.Errorf("batch result = %+v, want 2 succeeded", msg.res)
	}
}

func TestCachesSingleDeleteUsesDeleteEntry(t *testing.T) {
	b := setupTest(t)
	m := loadedCachesModel(t, b)
	m.pane = entriesPane

	next, _ := m.Update(key("d"))
	m = next.(*cachesModel)
	if m.confirm == nil {
		t.Fatalf("expected confirmation dialog")
	}
	m.confirm.FocusRight()
	_, cmd := m.Update(key("enter"))
	_ = cmd()

	sawSingle := false
	for _, call := range b.Calls {
		if call == "cache.delete_batch" {
			t.Fatalf("cursor delete must not use the batch call")
		}
		if call == "cache.delete" {
			sawSingle = true
		}
	}
	if !sawSingle {
		t.Fatalf("DeleteEntry was not called")
	}
}

func TestCachesPartialDeleteMessage(t *testing.T) {
	b := setupTest(t)
	m := loadedCachesModel(t, b)

	res := &model.BatchResult{Succeeded: 1, Failed: 1, Errors: []string{"entry-99: not found"}}
	next, _ := m.Update(cacheEntriesDeletedMsg{requested: 2, res: res})
	m = next.(*cachesModel)
	if !strings.Contains(m.status, "1") || !strings.Contains(m.status, "failed") {
		t.Errorf("partial status not rendered: %q", m.status)
	}
}

func TestCachesBusyGatesMutations(t *testing.T) {
	b := setupTest(t)
	m := loadedCachesModel(t, b)
	m.busy = true

	next, _ := m.Update(key("c"))
	m = next.(*cachesModel)
	if m.confirm != nil {
		t.Fatalf("clean must be ignored while busy")
	}
}

func TestCachesCleanFlow(t *testing.T) {
	b := setupTest(t)
	m := loadedCachesModel(t, b)

	next, _ := m.Update(key("c"))
	m = next.(*cachesModel)
	if m.confirm == nil {
		t.Fatalf("expected confirmation dialog")
	}
	m.confirm.FocusRight()
	next, cmd := m.Update(key("enter"))
	m = next.(*cachesModel)
	if !m.busy {
		t.Fatalf("busy flag not set while clean is in flight")
	}

	msg := cmd().(cacheCleanedMsg)
	if msg.err != nil {
		t.Fatalf("clean: %v", msg.err)
	}
	next, _ = m.Update(msg)
	m = next.(*cachesModel)
	if m.busy {
		t.Fatalf("busy flag not cleared")
	}
	if !strings.Contains(m.status, "Cleaned") {
		t.Errorf("status = %q", m.status)
	}
}

func TestCachesDeclinedDialogRunsNothing(t *testing.T) {
	b := setupTest(t)
	m := loadedCachesModel(t, b)

	next, _ := m.Update(key("C"))
	m = next.(*cachesModel)
	if m.confirm == nil {
		t.Fatalf("expected confirmation dialog")
	}
	// Dialog opens focused on "No"; accept the default.
	next, cmd := m.Update(key("enter"))
	m = next.(*cachesModel)
	if cmd != nil {
		t.Fatalf("declined dialog must not produce a command")
	}
	for _, call := range b.Calls {
		if call == "cache.clean_all" {
			t.Fatalf("clean-all ran despite decline")
		}
	}
}

func TestCachesKindToggleResetsSelection(t *testing.T) {
	b := setupTest(t)
	m := loadedCachesModel(t, b)
	m.pane = entriesPane
	m.selected[m.page.Entries[0].ID] = true

	next, cmd := m.Update(key("K"))
	m = next.(*cachesModel)
	if m.kind != model.CacheKindMetadata {
		t.Fatalf("kind = %v, want metadata", m.kind)
	}
	if len(m.selected) != 0 {
		t.Fatalf("selection must reset on kind toggle")
	}
	msg := cmd().(cacheEntriesLoadedMsg)
	for _, e := range msg.page.Entries {
		if e.Kind != model.CacheKindMetadata {
			t.Fatalf("entry %s has kind %s", e.ID, e.Kind)
		}
	}
}

func TestCachesFilterNarrowsToolCaches(t *testing.T) {
	b := setupTest(t)
	m := loadedCachesModel(t, b)

	next, _ := m.Update(key("/"))
	m = next.(*cachesModel)
	if !m.isFiltering {
		t.Fatalf("expected filter mode")
	}
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("pip")})
	m = next.(*cachesModel)
	if len(m.displayed) != 1 || m.displayed[0].Name != "pip" {
		t.Fatalf("displayed = %+v, want only pip", m.displayed)
	}
}
