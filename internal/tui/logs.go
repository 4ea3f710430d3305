// Copyright (c) 2026 Devkeep Authors
// Devkeep - developer machine caretaker
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/devkeep/devkeep/internal/backend"
	"github.com/devkeep/devkeep/internal/db"
	"github.com/devkeep/devkeep/internal/i18n"
	"github.com/devkeep/devkeep/internal/model"
	"github.com/devkeep/devkeep/internal/tui/frame"
)

// logQueryLimit bounds how many lines one query fetches.
const logQueryLimit = 500

type logsLoadedMsg struct {
	entries []model.LogEntry
	err     error
}

type retentionLoadedMsg struct {
	policy *model.RetentionPolicy
	err    error
}

type logsOpDoneMsg struct {
	action string
	detail string
	err    error
}

// logsModel is the model for the helper log view.
type logsModel struct {
	backend backend.Backend

	entries  []model.LogEntry
	viewport viewport.Model
	// levels holds the enabled log levels; toggling a level re-queries.
	levels map[model.LogLevel]bool

	policy *model.RetentionPolicy

	filter      string
	isFiltering bool
	// window restricts the query to recent entries; zero means all time.
	window time.Duration

	busy    bool
	status  string
	err     error
	confirm *frame.Dialog
	pending func() tea.Cmd

	width, height int
}

func newLogsModel(b backend.Backend) *logsModel {
	return &logsModel{
		backend:  b,
		viewport: viewport.New(0, 0),
		levels: map[model.LogLevel]bool{
			model.LevelDebug: false,
			model.LevelInfo:  true,
			model.LevelWarn:  true,
			model.LevelError: true,
		},
	}
}

func (m *logsModel) Init() tea.Cmd {
	return tea.Batch(m.queryCmd(), m.loadRetentionCmd())
}

// enabledLevels returns the currently toggled-on levels in severity order.
func (m *logsModel) enabledLevels() []model.LogLevel {
	var out []model.LogLevel
	for _, lvl := range []model.LogLevel{model.LevelDebug, model.LevelInfo, model.LevelWarn, model.LevelError} {
		if m.levels[lvl] {
			out = append(out, lvl)
		}
	}
	return out
}

// logWindows holds the time windows the "t" key cycles through.
var logWindows = []struct {
	label string
	d     time.Duration
}{
	{"all", 0},
	{"1h", time.Hour},
	{"24h", 24 * time.Hour},
	{"7d", 7 * 24 * time.Hour},
}

func (m *logsModel) query() model.LogQuery {
	q := model.LogQuery{
		Levels:  m.enabledLevels(),
		Pattern: m.filter,
		Limit:   logQueryLimit,
	}
	if m.window > 0 {
		q.Since = time.Now().Add(-m.window)
	}
	return q
}

func (m *logsModel) queryCmd() tea.Cmd {
	b := m.backend
	q := m.query()
	return func() tea.Msg {
		if b == nil || !b.Available() {
			return logsLoadedMsg{err: backend.ErrUnavailable}
		}
		entries, err := b.Query(context.Background(), q)
		return logsLoadedMsg{entries: entries, err: err}
	}
}

func (m *logsModel) loadRetentionCmd() tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		if b == nil || !b.Available() {
			return retentionLoadedMsg{err: backend.ErrUnavailable}
		}
		policy, err := b.RetentionPolicy(context.Background())
		return retentionLoadedMsg{policy: policy, err: err}
	}
}

func (m *logsModel) exportCmd() tea.Cmd {
	b := m.backend
	q := m.query()
	return func() tea.Msg {
		outPath := fmt.Sprintf("devkeep-logs-%s.log", time.Now().Format("2006-01-02"))
		err := b.ExportLogs(context.Background(), q, outPath)
		return logsOpDoneMsg{action: "export", detail: outPath, err: err}
	}
}

func (m *logsModel) cleanupCmd() tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		res, err := b.Cleanup(context.Background())
		if err != nil {
			return logsOpDoneMsg{action: "cleanup", err: err}
		}
		return logsOpDoneMsg{action: "cleanup", detail: fmt.Sprintf("%d files, %s", res.Removed, humanBytes(res.FreedBytes))}
	}
}

func (m *logsModel) setRetentionCmd(p model.RetentionPolicy) tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		err := b.SetRetentionPolicy(context.Background(), p)
		return logsOpDoneMsg{action: "retention", detail: fmt.Sprintf("%d days", p.MaxAgeDays), err: err}
	}
}

// renderEntries rebuilds the viewport content from the current entries.
func (m *logsModel) renderEntries() {
	var b strings.Builder
	for _, e := range m.entries {
		lvl := string(e.Level)
		var lvlCell string
		switch e.Level {
		case model.LevelError:
			lvlCell = errorStyle.Render(lvl)
		case model.LevelWarn:
			lvlCell = specialStyle.Render(lvl)
		case model.LevelDebug:
			lvlCell = helpStyle.Render(lvl)
		default:
			lvlCell = lvl
		}
		b.WriteString(fmt.Sprintf("%s %-5s %-10s %s\n",
			helpStyle.Render(e.Timestamp.Format("01-02 15:04:05")), lvlCell, e.Source, highlightMatches(e.Message, m.filter)))
	}
	m.viewport.SetContent(b.String())
}

// highlightMatches marks case-insensitive occurrences of pattern in line.
// Patterns that are not plain substrings of the line are left unmarked;
// the helper already filtered by the full expression. The scan walks rune
// windows so folding never desyncs byte offsets on non-ASCII input.
func highlightMatches(line, pattern string) string {
	if pattern == "" {
		return line
	}
	patRunes := utf8.RuneCountInString(pattern)
	var b strings.Builder
	for i := 0; i < len(line); {
		end, n := i, 0
		for end < len(line) && n < patRunes {
			_, w := utf8.DecodeRuneInString(line[end:])
			end += w
			n++
		}
		if n == patRunes && strings.EqualFold(line[i:end], pattern) {
			b.WriteString(selectedItemStyle.Render(line[i:end]))
			i = end
			continue
		}
		_, w := utf8.DecodeRuneInString(line[i:])
		b.WriteString(line[i : i+w])
		i += w
	}
	return b.String()
}

func (m *logsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = msg.Height - 10
		m.renderEntries()
		return m, nil

	case logsLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.entries = msg.entries
		m.renderEntries()
		m.viewport.GotoBottom()
		return m, nil

	case retentionLoadedMsg:
		if msg.err == nil {
			m.policy = msg.policy
		}
		return m, nil

	case logsOpDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.status = errorStyle.Render(i18n.T("logs.status.op_failed", msg.action, msg.err))
			_ = db.LogAction("LOGS_"+strings.ToUpper(msg.action), msg.detail, "error")
			return m, nil
		}
		m.status = statusMessageStyle.Render(i18n.T("logs.status.op_done", msg.action, msg.detail))
		_ = db.LogAction("LOGS_"+strings.ToUpper(msg.action), msg.detail, "ok")
		if msg.action == "cleanup" {
			return m, m.queryCmd()
		}
		if msg.action == "retention" {
			return m, m.loadRetentionCmd()
		}
		return m, nil

	case tea.KeyMsg:
		if model2, cmd, handled := m.handleKey(msg); handled {
			return model2, cmd
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// handleKey processes key input. The bool result reports whether the key was
// consumed; unconsumed keys fall through to the viewport for scrolling.
func (m *logsModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
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
				return m, cmd, true
			}
			m.pending = nil
		case "esc", "q":
			m.confirm = nil
			m.pending = nil
		}
		return m, nil, true
	}

	if m.isFiltering {
		switch msg.Type {
		case tea.KeyEsc:
			m.isFiltering = false
			m.filter = ""
			return m, m.queryCmd(), true
		case tea.KeyEnter:
			m.isFiltering = false
			return m, m.queryCmd(), true
		case tea.KeyBackspace:
			if len(m.filter) > 0 {
				m.filter = m.filter[:len(m.filter)-1]
			}
			return m, nil, true
		case tea.KeyRunes:
			m.filter += string(msg.Runes)
			return m, nil, true
		}
		return m, nil, true
	}

	ready := func() bool { return !m.busy && m.backend != nil && m.backend.Available() }

	switch msg.String() {
	case "q", "esc":
		if m.filter != "" {
			m.filter = ""
			return m, m.queryCmd(), true
		}
		return m, func() tea.Msg { return backToMenuMsg{} }, true
	case "/":
		m.isFiltering = true
		m.filter = ""
		return m, nil, true
	case "r":
		return m, m.queryCmd(), true
	case "1", "2", "3", "4":
		// Toggle individual levels: 1=debug 2=info 3=warn 4=error.
		lvl := map[string]model.LogLevel{
			"1": model.LevelDebug,
			"2": model.LevelInfo,
			"3": model.LevelWarn,
			"4": model.LevelError,
		}[msg.String()]
		m.levels[lvl] = !m.levels[lvl]
		return m, m.queryCmd(), true
	case "t":
		// Cycle the time window and re-query.
		for i, w := range logWindows {
			if w.d == m.window {
				m.window = logWindows[(i+1)%len(logWindows)].d
				break
			}
		}
		return m, m.queryCmd(), true
	case "x":
		if ready() {
			m.busy = true
			return m, m.exportCmd(), true
		}
		return m, nil, true
	case "c":
		if ready() {
			m.confirm = frame.NewDialog(
				i18n.T("logs.confirm.cleanup_title"),
				i18n.T("logs.confirm.cleanup_message"),
				i18n.T("confirm.no"), i18n.T("confirm.yes"))
			m.pending = func() tea.Cmd { return m.cleanupCmd() }
		}
		return m, nil, true
	case "+", "-":
		// Adjust the retention window and apply it.
		if ready() && m.policy != nil {
			p := *m.policy
			if msg.String() == "+" {
				p.MaxAgeDays += 7
			} else if p.MaxAgeDays > 7 {
				p.MaxAgeDays -= 7
			}
			m.busy = true
			return m, m.setRetentionCmd(p), true
		}
		return m, nil, true
	case "a":
		if ready() && m.policy != nil {
			p := *m.policy
			p.AutoCleanup = !p.AutoCleanup
			m.busy = true
			return m, m.setRetentionCmd(p), true
		}
		return m, nil, true
	}
	return m, nil, false
}

func (m *logsModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("📜 "+i18n.T("logs.title")) + "\n\n")

	if m.err == backend.ErrUnavailable {
		b.WriteString(errorStyle.Render(i18n.T("backend.unavailable")) + "\n")
		b.WriteString(helpStyle.Render(i18n.T("backend.unavailable_hint")) + "\n")
		return b.String()
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("%v", m.err)) + "\n")
		return b.String()
	}

	// Level toggles
	var toggles []string
	for i, lvl := range []model.LogLevel{model.LevelDebug, model.LevelInfo, model.LevelWarn, model.LevelError} {
		label := fmt.Sprintf("%d:%s", i+1, lvl)
		if m.levels[lvl] {
			toggles = append(toggles, successStyle.Render(label))
		} else {
			toggles = append(toggles, helpStyle.Render(label))
		}
	}
	for _, w := range logWindows {
		if w.d == m.window {
			toggles = append(toggles, specialStyle.Render("t:"+w.label))
			break
		}
	}
	b.WriteString(strings.Join(toggles, "  ") + "\n\n")

	if len(m.entries) == 0 {
		b.WriteString(helpStyle.Render(i18n.T("logs.empty")) + "\n")
	} else {
		b.WriteString(m.viewport.View() + "\n")
	}

	if m.policy != nil {
		auto := i18n.T("logs.auto_off")
		if m.policy.AutoCleanup {
			auto = i18n.T("logs.auto_on")
		}
		b.WriteString(helpStyle.Render(i18n.T("logs.retention_line", m.policy.MaxAgeDays, m.policy.MaxSizeMB, m.policy.MaxFiles, auto)) + "\n")
	}
	if m.status != "" {
		b.WriteString(m.status + "\n")
	}
	if m.busy {
		b.WriteString(busyStyle.Render(i18n.T("busy")) + "\n")
	}

	var filterStatus string
	if m.isFiltering {
		filterStatus = fmt.Sprintf("Filter: %s█", m.filter)
	} else if m.filter != "" {
		filterStatus = fmt.Sprintf("Filter: %s", m.filter)
	}
	b.WriteString(helpStyle.Render("\n" + i18n.T("logs.footer") + " " + filterStatus))

	if m.confirm != nil {
		return lipgloss.Place(max(m.width, 60), max(m.height, 20), lipgloss.Center, lipgloss.Center, m.confirm.Render())
	}
	return b.String()
}
