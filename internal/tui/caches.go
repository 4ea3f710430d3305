// Copyright (c) 2026 Devkeep Authors
// Devkeep - developer machine caretaker
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/devkeep/devkeep/internal/backend"
	"github.com/devkeep/devkeep/internal/db"
	"github.com/devkeep/devkeep/internal/i18n"
	"github.com/devkeep/devkeep/internal/model"
	"github.com/devkeep/devkeep/internal/state"
	"github.com/devkeep/devkeep/internal/tui/frame"
)

// entriesPageSize is how many internal cache entries one page shows.
const entriesPageSize = 50

type toolCachesLoadedMsg struct {
	caches []model.ToolCache
	err    error
}

type cacheEntriesLoadedMsg struct {
	page *model.CachePage
	err  error
}

type cacheCleanedMsg struct {
	name string // empty for clean-all
	res  *model.CleanResult
	err  error
}

type cacheVerifiedMsg struct {
	name string
	res  *model.VerifyResult
	err  error
}

type cacheEntriesDeletedMsg struct {
	requested int
	res       *model.BatchResult
	err       error
}

// cachesPane says which half of the view has focus.
type cachesPane int

const (
	toolCachesPane cachesPane = iota
	entriesPane
)

// cachesModel is the model for the cache management view: discovered tool
// caches on top, the internal download/metadata cache entries below.
type cachesModel struct {
	backend backend.Backend

	pane       cachesPane
	toolCaches []model.ToolCache
	displayed  []model.ToolCache // filtered tool caches
	toolCursor int

	kind        model.CacheKind
	page        *model.CachePage
	entryCursor int
	offset      int
	sortBy      string
	sortDesc    bool
	selected    map[string]bool // entry IDs marked for batch delete

	filter      string
	isFiltering bool

	busy    bool
	status  string
	err     error
	confirm *frame.Dialog
	// pending holds what the confirm dialog will do when accepted.
	pending func() tea.Cmd

	width, height int
}

func newCachesModel(b backend.Backend) *cachesModel {
	return &cachesModel{
		backend:  b,
		kind:     model.CacheKindDownload,
		sortBy:   "size",
		sortDesc: true,
		selected: map[string]bool{},
	}
}

func (m *cachesModel) Init() tea.Cmd {
	return tea.Batch(m.loadToolCachesCmd(), m.loadEntriesCmd())
}

func (m *cachesModel) loadToolCachesCmd() tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		if b == nil || !b.Available() {
			return toolCachesLoadedMsg{err: backend.ErrUnavailable}
		}
		caches, err := b.DiscoverToolCaches(context.Background())
		return toolCachesLoadedMsg{caches: caches, err: err}
	}
}

func (m *cachesModel) loadEntriesCmd() tea.Cmd {
	b := m.backend
	q := model.CacheQuery{
		Kind:     m.kind,
		Search:   m.filter,
		SortBy:   m.sortBy,
		SortDesc: m.sortDesc,
		Offset:   m.offset,
		Limit:    entriesPageSize,
	}
	return func() tea.Msg {
		if b == nil || !b.Available() {
			return cacheEntriesLoadedMsg{err: backend.ErrUnavailable}
		}
		page, err := b.ListEntries(context.Background(), q)
		return cacheEntriesLoadedMsg{page: page, err: err}
	}
}

func (m *cachesModel) cleanCmd(name string) tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		ctx := context.Background()
		if name == "" {
			res, err := b.CleanAll(ctx)
			return cacheCleanedMsg{res: res, err: err}
		}
		res, err := b.Clean(ctx, name)
		return cacheCleanedMsg{name: name, res: res, err: err}
	}
}

func (m *cachesModel) verifyCmd(name string) tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		res, err := b.Verify(context.Background(), name)
		return cacheVerifiedMsg{name: name, res: res, err: err}
	}
}

// deleteEntriesCmd removes exactly the given IDs: a single-ID delete uses
// DeleteEntry, anything more goes through the batch call.
func (m *cachesModel) deleteEntriesCmd(ids []string) tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		ctx := context.Background()
		if len(ids) == 1 {
			err := b.DeleteEntry(ctx, ids[0])
			if err != nil {
				return cacheEntriesDeletedMsg{requested: 1, err: err}
			}
			return cacheEntriesDeletedMsg{requested: 1, res: &model.BatchResult{Succeeded: 1}}
		}
		res, err := b.DeleteEntries(ctx, ids)
		return cacheEntriesDeletedMsg{requested: len(ids), res: res, err: err}
	}
}

// rebuildDisplayed filters the master tool cache list.
func (m *cachesModel) rebuildDisplayed() {
	m.displayed = m.displayed[:0]
	for _, c := range m.toolCaches {
		if matchesFilter(c.Name+" "+c.Tool+" "+c.Path, m.filter) {
			m.displayed = append(m.displayed, c)
		}
	}
	if m.toolCursor >= len(m.displayed) {
		m.toolCursor = len(m.displayed) - 1
	}
	if m.toolCursor < 0 {
		m.toolCursor = 0
	}
}

// selectedIDs returns the batch-marked entry IDs, or the cursor entry when
// nothing is marked.
func (m *cachesModel) selectedIDs() []string {
	var ids []string
	if m.page != nil {
		for _, e := range m.page.Entries {
			if m.selected[e.ID] {
				ids = append(ids, e.ID)
			}
		}
	}
	if len(ids) == 0 && m.page != nil && m.entryCursor < len(m.page.Entries) {
		ids = []string{m.page.Entries[m.entryCursor].ID}
	}
	return ids
}

func (m *cachesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case toolCachesLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.toolCaches = msg.caches
		m.rebuildDisplayed()
		return m, nil

	case cacheEntriesLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.page = msg.page
		if m.page != nil && m.entryCursor >= len(m.page.Entries) {
			m.entryCursor = 0
		}
		return m, nil

	case cacheCleanedMsg:
		m.busy = false
		if msg.err != nil {
			m.status = errorStyle.Render(i18n.T("caches.status.clean_failed", msg.err))
			_ = db.LogAction("CLEAN_CACHE", msg.name, "error")
			return m, nil
		}
		target := msg.name
		if target == "" {
			target = i18n.T("caches.all")
		}
		m.status = statusMessageStyle.Render(i18n.T("caches.status.cleaned", target, msg.res.Removed, humanBytes(msg.res.FreedBytes)))
		state.SessionLog.Append(fmt.Sprintf("cleaned %s: %d removed, %s freed", target, msg.res.Removed, humanBytes(msg.res.FreedBytes)))
		_ = db.LogAction("CLEAN_CACHE", target, "ok")
		return m, tea.Batch(m.loadToolCachesCmd(), m.loadEntriesCmd())

	case cacheVerifiedMsg:
		m.busy = false
		if msg.err != nil {
			m.status = errorStyle.Render(i18n.T("caches.status.verify_failed", msg.err))
			return m, nil
		}
		m.status = statusMessageStyle.Render(i18n.T("caches.status.verified", msg.name, msg.res.Checked, msg.res.Corrupt, msg.res.Repaired))
		_ = db.LogAction("VERIFY_CACHE", msg.name, "ok")
		return m, nil

	case cacheEntriesDeletedMsg:
		m.busy = false
		m.selected = map[string]bool{}
		if msg.err != nil {
			m.status = errorStyle.Render(i18n.T("caches.status.delete_failed", msg.err))
			_ = db.LogAction("DELETE_CACHE_ENTRIES", fmt.Sprintf("%d entries", msg.requested), "error")
			return m, m.loadEntriesCmd()
		}
		if msg.res.Partial() {
			m.status = specialStyle.Render(i18n.T("caches.status.delete_partial", msg.res.Succeeded, msg.res.Failed+msg.res.Skipped))
		} else {
			m.status = statusMessageStyle.Render(i18n.T("caches.status.deleted", msg.res.Succeeded))
		}
		_ = db.LogAction("DELETE_CACHE_ENTRIES", fmt.Sprintf("%d entries", msg.requested), "ok")
		return m, m.loadEntriesCmd()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *cachesModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Confirm dialog captures all keys while open.
	if m.confirm != nil {
		switch msg.String() {
		case "left", "right", "tab":
			m.confirm.ToggleFocus()
		case "enter":
			accepted := m.confirm.IsFocusedRight()
			m.confirm = nil
			if accepted && m.pending != nil {
				m.busy = true
				cmd := m.pending()
				m.pending = nil
				return m, cmd
			}
			m.pending = nil
		case "esc", "q":
			m.confirm = nil
			m.pending = nil
		}
		return m, nil
	}

	if m.isFiltering {
		switch msg.Type {
		case tea.KeyEsc:
			m.isFiltering = false
			m.filter = ""
			m.rebuildDisplayed()
			m.offset = 0
			return m, m.loadEntriesCmd()
		case tea.KeyEnter:
			m.isFiltering = false
			return m, nil
		case tea.KeyBackspace:
			if len(m.filter) > 0 {
				m.filter = m.filter[:len(m.filter)-1]
			}
		case tea.KeyRunes:
			m.filter += string(msg.Runes)
		}
		m.rebuildDisplayed()
		m.offset = 0
		return m, m.loadEntriesCmd()
	}

	switch msg.String() {
	case "q", "esc":
		if m.filter != "" {
			m.filter = ""
			m.rebuildDisplayed()
			m.offset = 0
			return m, m.loadEntriesCmd()
		}
		return m, func() tea.Msg { return backToMenuMsg{} }
	case "/":
		m.isFiltering = true
		m.filter = ""
		return m, nil
	case "tab":
		if m.pane == toolCachesPane {
			m.pane = entriesPane
		} else {
			m.pane = toolCachesPane
		}
		return m, nil
	case "r":
		return m, tea.Batch(m.loadToolCachesCmd(), m.loadEntriesCmd())
	}

	// Everything below mutates; ignore while an operation is in flight or
	// the helper is unreachable.
	mutating := func() bool { return !m.busy && m.backend != nil && m.backend.Available() }

	if m.pane == toolCachesPane {
		switch msg.String() {
		case "up", "k":
			if m.toolCursor > 0 {
				m.toolCursor--
			}
		case "down", "j":
			if m.toolCursor < len(m.displayed)-1 {
				m.toolCursor++
			}
		case "c":
			if !mutating() || m.toolCursor >= len(m.displayed) {
				return m, nil
			}
			target := m.displayed[m.toolCursor]
			m.confirm = frame.NewDialog(
				i18n.T("caches.confirm.clean_title"),
				i18n.T("caches.confirm.clean_message", target.Name, humanBytes(target.SizeBytes)),
				i18n.T("confirm.no"), i18n.T("confirm.yes"))
			name := target.Name
			m.pending = func() tea.Cmd { return m.cleanCmd(name) }
		case "C":
			if !mutating() {
				return m, nil
			}
			m.confirm = frame.NewDialog(
				i18n.T("caches.confirm.clean_all_title"),
				i18n.T("caches.confirm.clean_all_message"),
				i18n.T("confirm.no"), i18n.T("confirm.yes"))
			m.pending = func() tea.Cmd { return m.cleanCmd("") }
		case "v":
			if !mutating() || m.toolCursor >= len(m.displayed) {
				return m, nil
			}
			m.busy = true
			return m, m.verifyCmd(m.displayed[m.toolCursor].Name)
		}
		return m, nil
	}

	// entriesPane
	entries := 0
	if m.page != nil {
		entries = len(m.page.Entries)
	}
	switch msg.String() {
	case "up", "k":
		if m.entryCursor > 0 {
			m.entryCursor--
		}
	case "down", "j":
		if m.entryCursor < entries-1 {
			m.entryCursor++
		}
	case " ":
		if m.page != nil && m.entryCursor < entries {
			id := m.page.Entries[m.entryCursor].ID
			if m.selected[id] {
				delete(m.selected, id)
			} else {
				m.selected[id] = true
			}
		}
	case "K":
		// Toggle which internal cache kind is shown.
		if m.kind == model.CacheKindDownload {
			m.kind = model.CacheKindMetadata
		} else {
			m.kind = model.CacheKindDownload
		}
		m.offset = 0
		m.entryCursor = 0
		m.selected = map[string]bool{}
		return m, m.loadEntriesCmd()
	case "s":
		switch m.sortBy {
		case "size":
			m.sortBy = "name"
		case "name":
			m.sortBy = "used"
		default:
			m.sortBy = "size"
		}
		return m, m.loadEntriesCmd()
	case "S":
		m.sortDesc = !m.sortDesc
		return m, m.loadEntriesCmd()
	case "n", "right":
		if m.page != nil && m.offset+entriesPageSize < m.page.Total {
			m.offset += entriesPageSize
			m.entryCursor = 0
			return m, m.loadEntriesCmd()
		}
	case "p", "left":
		if m.offset > 0 {
			m.offset -= entriesPageSize
			if m.offset < 0 {
				m.offset = 0
			}
			m.entryCursor = 0
			return m, m.loadEntriesCmd()
		}
	case "d":
		if !mutating() {
			return m, nil
		}
		ids := m.selectedIDs()
		if len(ids) == 0 {
			return m, nil
		}
		m.confirm = frame.NewDialog(
			i18n.T("caches.confirm.delete_title"),
			i18n.T("caches.confirm.delete_message", len(ids)),
			i18n.T("confirm.no"), i18n.T("confirm.yes"))
		m.pending = func() tea.Cmd { return m.deleteEntriesCmd(ids) }
	}
	return m, nil
}

func (m *cachesModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("🗄  "+i18n.T("caches.title")) + "\n\n")

	if m.err == backend.ErrUnavailable {
		b.WriteString(errorStyle.Render(i18n.T("backend.unavailable")) + "\n")
		b.WriteString(helpStyle.Render(i18n.T("backend.unavailable_hint")) + "\n")
		b.WriteString(m.footerView())
		return b.String()
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("%v", m.err)) + "\n")
		b.WriteString(m.footerView())
		return b.String()
	}

	// Tool caches pane
	paneTitle := i18n.T("caches.tool_caches")
	if m.pane == toolCachesPane {
		paneTitle = selectedItemStyle.Render("▸ " + paneTitle)
	}
	b.WriteString(paneTitle + "\n")
	if len(m.displayed) == 0 {
		b.WriteString(helpStyle.Render(i18n.T("caches.none_found")) + "\n")
	}
	for i, c := range m.displayed {
		line := fmt.Sprintf("%-12s %-10s %8s %6d  %s", c.Name, c.Tool, humanBytes(c.SizeBytes), c.EntryCount, truncate(c.Path, 40))
		if m.pane == toolCachesPane && i == m.toolCursor {
			b.WriteString(selectedItemStyle.Render("▸ "+line) + "\n")
		} else {
			b.WriteString(itemStyle.Render("  "+line) + "\n")
		}
	}

	// Internal entries pane
	b.WriteString("\n")
	entriesTitle := i18n.T("caches.entries", string(m.kind))
	if m.pane == entriesPane {
		entriesTitle = selectedItemStyle.Render("▸ " + entriesTitle)
	}
	b.WriteString(entriesTitle + "\n")
	if m.page == nil || len(m.page.Entries) == 0 {
		b.WriteString(helpStyle.Render(i18n.T("caches.no_entries")) + "\n")
	} else {
		for i, e := range m.page.Entries {
			marker := "  "
			if m.selected[e.ID] {
				marker = "✓ "
			}
			line := fmt.Sprintf("%s%-40s %8s", marker, truncate(e.Name, 40), humanBytes(e.SizeBytes))
			if m.pane == entriesPane && i == m.entryCursor {
				b.WriteString(selectedItemStyle.Render("▸ "+line) + "\n")
			} else {
				b.WriteString(itemStyle.Render("  "+line) + "\n")
			}
		}
		pageNo := m.offset/entriesPageSize + 1
		pages := (m.page.Total + entriesPageSize - 1) / entriesPageSize
		if pages < 1 {
			pages = 1
		}
		b.WriteString(helpStyle.Render(i18n.T("caches.page_footer", pageNo, pages, m.page.Total, humanBytes(m.page.TotalSize))) + "\n")
	}

	if m.status != "" {
		b.WriteString("\n" + m.status + "\n")
	}
	if m.busy {
		b.WriteString(busyStyle.Render(i18n.T("busy")) + "\n")
	}

	view := b.String() + m.footerView()
	if m.confirm != nil {
		dialog := m.confirm.Render()
		return lipgloss.Place(max(m.width, lipgloss.Width(view)), max(m.height, lipgloss.Height(view)),
			lipgloss.Center, lipgloss.Center, dialog)
	}
	return view
}

func (m *cachesModel) footerView() string {
	var filterStatus string
	if m.isFiltering {
		filterStatus = fmt.Sprintf("Filter: %s█", m.filter)
	} else if m.filter != "" {
		filterStatus = fmt.Sprintf("Filter: %s (esc to clear)", m.filter)
	} else {
		filterStatus = i18n.T("filter.hint")
	}
	return helpStyle.Render("\n" + i18n.T("caches.footer") + " " + filterStatus)
}
