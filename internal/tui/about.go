// Copyright (c) 2026 Devkeep Authors
// Devkeep - developer machine caretaker
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/devkeep/devkeep/buildvars"
	"github.com/devkeep/devkeep/internal/backend"
	"github.com/devkeep/devkeep/internal/config"
	"github.com/devkeep/devkeep/internal/db"
	"github.com/devkeep/devkeep/internal/diag"
	"github.com/devkeep/devkeep/internal/i18n"
	"github.com/devkeep/devkeep/internal/model"
	"github.com/devkeep/devkeep/internal/state"
)

type platformLoadedMsg struct {
	info *model.PlatformInfo
	err  error
}

type updateCheckedMsg struct {
	info *model.UpdateInfo
	err  error
}

type updateProgressMsg model.Progress

type updateDoneMsg struct {
	err error
}

type diagExportedMsg struct {
	path string
	err  error
}

// aboutModel is the model for the about view: versions, platform info,
// update check, diagnostics export and the session log.
type aboutModel struct {
	backend backend.Backend

	platform *model.PlatformInfo
	update   *model.UpdateInfo

	sessionLog viewport.Model

	updating       bool
	updateProgress model.Progress
	updateEvents   chan tea.Msg

	diagPath string

	busy   bool
	status string
	err    error

	width, height int
}

func newAboutModel(b backend.Backend) *aboutModel {
	vp := viewport.New(0, 0)
	return &aboutModel{backend: b, sessionLog: vp}
}

func (m *aboutModel) Init() tea.Cmd {
	return m.loadPlatformCmd()
}

func (m *aboutModel) loadPlatformCmd() tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		if b == nil || !b.Available() {
			return platformLoadedMsg{err: backend.ErrUnavailable}
		}
		info, err := b.PlatformInfo(context.Background())
		return platformLoadedMsg{info: info, err: err}
	}
}

func (m *aboutModel) checkUpdateCmd() tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		info, err := b.CheckUpdate(context.Background())
		return updateCheckedMsg{info: info, err: err}
	}
}

// startApplyUpdate runs the update in a goroutine and streams its progress
// events through a channel, one per Update cycle.
func (m *aboutModel) startApplyUpdate() tea.Cmd {
	b := m.backend
	ch := make(chan tea.Msg, 16)
	m.updateEvents = ch
	m.updating = true
	m.updateProgress = model.Progress{}

	go func() {
		err := b.ApplyUpdate(context.Background(), func(p model.Progress) {
			select {
			case ch <- updateProgressMsg(p):
			default:
			}
		})
		ch <- updateDoneMsg{err: err}
		close(ch)
	}()
	return m.waitForUpdateEvent()
}

func (m *aboutModel) waitForUpdateEvent() tea.Cmd {
	ch := m.updateEvents
	return func() tea.Msg {
		return <-ch
	}
}

func (m *aboutModel) exportDiagCmd() tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		actionLog, err := db.GetActionLog(0)
		if err != nil {
			actionLog = nil
		}
		bundle := diag.Collect(context.Background(), b, config.Current(), state.SessionLog.Lines(), actionLog)
		path, err := diag.Export(bundle, "")
		return diagExportedMsg{path: path, err: err}
	}
}

func (m *aboutModel) refreshSessionLog() {
	lines := state.SessionLog.Lines()
	if len(lines) == 0 {
		m.sessionLog.SetContent(helpStyle.Render(i18n.T("about.session_empty")))
		return
	}
	m.sessionLog.SetContent(strings.Join(lines, "\n"))
	m.sessionLog.GotoBottom()
}

func (m *aboutModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.sessionLog.Width = msg.Width - 4
		m.sessionLog.Height = max(4, msg.Height-18)
		m.refreshSessionLog()
		return m, nil

	case platformLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.err = nil
			m.platform = msg.info
		}
		m.refreshSessionLog()
		return m, nil

	case updateCheckedMsg:
		m.busy = false
		if msg.err != nil {
			m.status = errorStyle.Render(i18n.T("about.status.check_failed", msg.err))
			return m, nil
		}
		m.update = msg.info
		if msg.info.Available {
			m.status = specialStyle.Render(i18n.T("about.status.update_available", msg.info.LatestVersion))
		} else {
			m.status = statusMessageStyle.Render(i18n.T("about.status.up_to_date"))
		}
		return m, nil

	case updateProgressMsg:
		m.updateProgress = model.Progress(msg)
		return m, m.waitForUpdateEvent()

	case updateDoneMsg:
		m.updating = false
		m.updateEvents = nil
		if msg.err != nil {
			m.status = errorStyle.Render(i18n.T("about.status.update_failed", msg.err))
			_ = db.LogAction("APPLY_UPDATE", "", "error")
			return m, nil
		}
		m.status = successStyle.Render(i18n.T("about.status.updated"))
		_ = db.LogAction("APPLY_UPDATE", "", "ok")
		state.SessionLog.Append(i18n.T("about.session.updated"))
		m.refreshSessionLog()
		return m, m.loadPlatformCmd()

	case diagExportedMsg:
		m.busy = false
		if msg.err != nil {
			m.status = errorStyle.Render(i18n.T("about.status.diag_failed", msg.err))
			_ = db.LogAction("EXPORT_DIAGNOSTICS", "", "error")
			return m, nil
		}
		m.diagPath = msg.path
		m.status = statusMessageStyle.Render(i18n.T("about.status.diag_exported", msg.path))
		_ = db.LogAction("EXPORT_DIAGNOSTICS", msg.path, "ok")
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.sessionLog, cmd = m.sessionLog.Update(msg)
	return m, cmd
}

func (m *aboutModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		if m.updating {
			return m, nil
		}
		return m, func() tea.Msg { return backToMenuMsg{} }
	case "r":
		m.refreshSessionLog()
		return m, m.loadPlatformCmd()
	case "u":
		if !m.busy && !m.updating && m.backend != nil && m.backend.Available() {
			m.busy = true
			m.status = busyStyle.Render(i18n.T("about.status.checking"))
			return m, m.checkUpdateCmd()
		}
		return m, nil
	case "U":
		if !m.updating && m.update != nil && m.update.Available && m.backend.Available() {
			return m, m.startApplyUpdate()
		}
		return m, nil
	case "d":
		if !m.busy {
			m.busy = true
			m.status = busyStyle.Render(i18n.T("about.status.collecting"))
			return m, m.exportDiagCmd()
		}
		return m, nil
	case "y":
		if m.diagPath != "" {
			if err := clipboard.WriteAll(m.diagPath); err != nil {
				m.status = errorStyle.Render(i18n.T("about.status.copy_failed", err))
			} else {
				m.status = statusMessageStyle.Render(i18n.T("about.status.copied"))
			}
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.sessionLog, cmd = m.sessionLog.Update(msg)
	return m, cmd
}

func (m *aboutModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("ℹ  "+i18n.T("about.title")) + "\n\n")

	version := buildvars.VersionOrDefault(i18n.T("about.dev_build"))
	b.WriteString(fmt.Sprintf("%s %s\n", i18n.T("about.version"), specialStyle.Render(version)))

	switch {
	case m.err == backend.ErrUnavailable:
		b.WriteString(errorStyle.Render(i18n.T("backend.unavailable")) + "\n")
		b.WriteString(helpStyle.Render(i18n.T("backend.unavailable_hint")) + "\n")
	case m.err != nil:
		b.WriteString(errorStyle.Render(fmt.Sprintf("%v", m.err)) + "\n")
	case m.platform != nil:
		p := m.platform
		b.WriteString(fmt.Sprintf("%s %s\n", i18n.T("about.helper_version"), p.HelperVer))
		b.WriteString(fmt.Sprintf("%s %s/%s (%s)\n", i18n.T("about.platform"), p.OS, p.Arch, p.Hostname))
		wsl := i18n.T("about.wsl_no")
		if p.WSLAvailable {
			wsl = i18n.T("about.wsl_yes")
		}
		b.WriteString(fmt.Sprintf("%s %s\n", i18n.T("about.wsl"), wsl))
		b.WriteString(helpStyle.Render(fmt.Sprintf("%s %s", i18n.T("about.helper_path"), p.HelperPath)) + "\n")
	}
	b.WriteString("\n")

	if m.updating {
		b.WriteString(specialStyle.Render(i18n.T("about.updating", m.updateProgress.Stage)) + "\n")
		b.WriteString(renderProgressBar(m.updateProgress.Percent, 40) + "\n")
		if m.updateProgress.Detail != "" {
			b.WriteString(helpStyle.Render(m.updateProgress.Detail) + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(titleStyle.Render(i18n.T("about.session_log")) + "\n")
	b.WriteString(m.sessionLog.View() + "\n")

	if m.diagPath != "" {
		b.WriteString(helpStyle.Render(i18n.T("about.diag_path", m.diagPath)) + "\n")
	}
	if m.status != "" {
		b.WriteString(m.status + "\n")
	}
	if m.busy {
		b.WriteString(busyStyle.Render(i18n.T("busy")) + "\n")
	}
	b.WriteString(helpStyle.Render("\n" + i18n.T("about.footer")))
	return b.String()
}
