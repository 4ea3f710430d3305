// Copyright (c) 2026 Devkeep Authors
// Devkeep - developer machine caretaker
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"context"
	"fmt"
	"os"
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

type envTypesLoadedMsg struct {
	types []model.EnvType
	err   error
}

type envVersionsLoadedMsg struct {
	envType   string
	providers []model.EnvProvider
	versions  []model.EnvVersion
	err       error
}

type installProgressMsg struct {
	progress model.Progress
}

type installDoneMsg struct {
	version model.EnvVersion
	err     error
}

type envOpDoneMsg struct {
	action  string
	version model.EnvVersion
	res     *model.VerifyResult // only for verify
	err     error
}

type projectDetectedMsg struct {
	dir      string
	detected []model.DetectedVersion
	err      error
}

// envsLevel says whether the view shows the type list or one type's versions.
type envsLevel int

const (
	typesLevel envsLevel = iota
	versionsLevel
)

// envsModel is the model for the environment management view.
type envsModel struct {
	backend backend.Backend

	level     envsLevel
	types     []model.EnvType
	typeCur   int
	envType   string
	providers []model.EnvProvider
	versions  []model.EnvVersion
	verCur    int

	detected []model.DetectedVersion

	// install-in-flight state
	installing    bool
	installTarget model.EnvVersion
	progress      model.Progress
	progressCh    chan tea.Msg
	cancelInstall context.CancelFunc

	busy    bool
	status  string
	err     error
	confirm *frame.Dialog
	pending func() tea.Cmd

	width, height int
}

func newEnvsModel(b backend.Backend) *envsModel {
	return &envsModel{backend: b}
}

func (m *envsModel) Init() tea.Cmd {
	return m.loadTypesCmd()
}

func (m *envsModel) loadTypesCmd() tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		if b == nil || !b.Available() {
			return envTypesLoadedMsg{err: backend.ErrUnavailable}
		}
		types, err := b.ListTypes(context.Background())
		return envTypesLoadedMsg{types: types, err: err}
	}
}

func (m *envsModel) loadVersionsCmd(envType string) tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		ctx := context.Background()
		providers, err := b.ListProviders(ctx, envType)
		if err != nil {
			return envVersionsLoadedMsg{envType: envType, err: err}
		}
		versions, err := b.ListVersions(ctx, envType)
		return envVersionsLoadedMsg{envType: envType, providers: providers, versions: versions, err: err}
	}
}

// startInstall kicks off an install and wires its progress stream into the
// message loop. The returned command waits for the first event.
func (m *envsModel) startInstall(v model.EnvVersion) tea.Cmd {
	b := m.backend
	ch := make(chan tea.Msg, 16)
	ctx, cancel := context.WithCancel(context.Background())
	m.installing = true
	m.installTarget = v
	m.progress = model.Progress{}
	m.progressCh = ch
	m.cancelInstall = cancel

	go func() {
		_, err := b.Install(ctx, v.EnvType, v.Version, func(p model.Progress) {
			ch <- installProgressMsg{progress: p}
		})
		// Logged here rather than in the message handler so the outcome is
		// recorded even when the user has left the view in the meantime.
		outcome := "ok"
		switch {
		case err == backend.ErrCancelled:
			outcome = "cancelled"
		case err != nil:
			outcome = "error"
		}
		_ = db.LogAction("INSTALL_ENV", v.String(), outcome)
		ch <- installDoneMsg{version: v, err: err}
		close(ch)
	}()
	return m.waitForInstallEvent()
}

// waitForInstallEvent returns a command that delivers the next install event.
func (m *envsModel) waitForInstallEvent() tea.Cmd {
	ch := m.progressCh
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

func (m *envsModel) envOpCmd(action string, v model.EnvVersion) tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		ctx := context.Background()
		var err error
		var res *model.VerifyResult
		switch action {
		case "uninstall":
			err = b.Uninstall(ctx, v.EnvType, v.Version)
		case "set_global":
			err = b.SetGlobal(ctx, v.EnvType, v.Version)
		case "set_local":
			dir, derr := os.Getwd()
			if derr != nil {
				return envOpDoneMsg{action: action, version: v, err: derr}
			}
			err = b.SetLocal(ctx, v.EnvType, v.Version, dir)
		case "verify":
			res, err = b.VerifyInstall(ctx, v.EnvType, v.Version)
		}
		return envOpDoneMsg{action: action, version: v, res: res, err: err}
	}
}

func (m *envsModel) detectProjectCmd() tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		dir, err := os.Getwd()
		if err != nil {
			return projectDetectedMsg{err: err}
		}
		detected, err := b.DetectProject(context.Background(), dir)
		return projectDetectedMsg{dir: dir, detected: detected, err: err}
	}
}

func (m *envsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case envTypesLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.types = msg.types
		if m.typeCur >= len(m.types) {
			m.typeCur = 0
		}
		return m, nil

	case envVersionsLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.level = versionsLevel
		m.envType = msg.envType
		m.providers = msg.providers
		m.versions = msg.versions
		if m.verCur >= len(m.versions) {
			m.verCur = 0
		}
		return m, nil

	case installProgressMsg:
		m.progress = msg.progress
		return m, m.waitForInstallEvent()

	case installDoneMsg:
		m.installing = false
		m.cancelInstall = nil
		m.progressCh = nil
		if msg.err != nil {
			if msg.err == backend.ErrCancelled {
				m.status = specialStyle.Render(i18n.T("envs.status.install_cancelled", msg.version.String()))
			} else {
				m.status = errorStyle.Render(i18n.T("envs.status.install_failed", msg.version.String(), msg.err))
			}
			return m, nil
		}
		m.status = statusMessageStyle.Render(i18n.T("envs.status.installed", msg.version.String()))
		state.SessionLog.Append("installed " + msg.version.String())
		return m, tea.Batch(m.loadVersionsCmd(m.envType), m.loadTypesCmd())

	case envOpDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.status = errorStyle.Render(i18n.T("envs.status.op_failed", msg.action, msg.err))
			_ = db.LogAction(strings.ToUpper(msg.action)+"_ENV", msg.version.String(), "error")
			return m, nil
		}
		switch msg.action {
		case "verify":
			m.status = statusMessageStyle.Render(i18n.T("envs.status.verified", msg.version.String(), msg.res.Checked, msg.res.Corrupt))
		case "uninstall":
			m.status = statusMessageStyle.Render(i18n.T("envs.status.uninstalled", msg.version.String()))
			state.SessionLog.Append("uninstalled " + msg.version.String())
		case "set_global":
			m.status = statusMessageStyle.Render(i18n.T("envs.status.global_set", msg.version.String()))
		case "set_local":
			m.status = statusMessageStyle.Render(i18n.T("envs.status.local_set", msg.version.String()))
		}
		_ = db.LogAction(strings.ToUpper(msg.action)+"_ENV", msg.version.String(), "ok")
		return m, m.loadVersionsCmd(m.envType)

	case projectDetectedMsg:
		m.busy = false
		if msg.err != nil {
			m.status = errorStyle.Render(i18n.T("envs.status.detect_failed", msg.err))
			return m, nil
		}
		m.detected = msg.detected
		if len(msg.detected) == 0 {
			m.status = helpStyle.Render(i18n.T("envs.status.nothing_detected", msg.dir))
		} else {
			m.status = statusMessageStyle.Render(i18n.T("envs.status.detected", len(msg.detected), msg.dir))
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *envsModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
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

	// An install in flight only accepts cancel and navigation.
	if m.installing {
		switch msg.String() {
		case "x":
			if m.cancelInstall != nil {
				m.cancelInstall()
			}
		case "q", "esc":
			// Leaving the view does not abort the install; the helper keeps
			// going and the result lands in the action log.
			return m, func() tea.Msg { return backToMenuMsg{} }
		}
		return m, nil
	}

	ready := func() bool { return !m.busy && m.backend != nil && m.backend.Available() }

	if m.level == typesLevel {
		switch msg.String() {
		case "q", "esc":
			return m, func() tea.Msg { return backToMenuMsg{} }
		case "up", "k":
			if m.typeCur > 0 {
				m.typeCur--
			}
		case "down", "j":
			if m.typeCur < len(m.types)-1 {
				m.typeCur++
			}
		case "enter":
			if m.typeCur < len(m.types) {
				return m, m.loadVersionsCmd(m.types[m.typeCur].Name)
			}
		case "d":
			if ready() {
				m.busy = true
				return m, m.detectProjectCmd()
			}
		case "r":
			return m, m.loadTypesCmd()
		}
		return m, nil
	}

	// versionsLevel
	switch msg.String() {
	case "q", "esc":
		m.level = typesLevel
		m.status = ""
		return m, m.loadTypesCmd()
	case "up", "k":
		if m.verCur > 0 {
			m.verCur--
		}
	case "down", "j":
		if m.verCur < len(m.versions)-1 {
			m.verCur++
		}
	case "r":
		return m, m.loadVersionsCmd(m.envType)
	case "i":
		if !ready() || m.verCur >= len(m.versions) {
			return m, nil
		}
		v := m.versions[m.verCur]
		if v.Installed {
			m.status = helpStyle.Render(i18n.T("envs.status.already_installed", v.String()))
			return m, nil
		}
		return m, m.startInstall(v)
	case "u":
		if !ready() || m.verCur >= len(m.versions) {
			return m, nil
		}
		v := m.versions[m.verCur]
		if !v.Installed {
			return m, nil
		}
		m.confirm = frame.NewDialog(
			i18n.T("envs.confirm.uninstall_title"),
			i18n.T("envs.confirm.uninstall_message", v.String()),
			i18n.T("confirm.no"), i18n.T("confirm.yes"))
		m.pending = func() tea.Cmd { return m.envOpCmd("uninstall", v) }
	case "g":
		if !ready() || m.verCur >= len(m.versions) {
			return m, nil
		}
		v := m.versions[m.verCur]
		if !v.Installed {
			m.status = errorStyle.Render(i18n.T("envs.status.not_installed", v.String()))
			return m, nil
		}
		m.busy = true
		return m, m.envOpCmd("set_global", v)
	case "l":
		if !ready() || m.verCur >= len(m.versions) {
			return m, nil
		}
		v := m.versions[m.verCur]
		if !v.Installed {
			m.status = errorStyle.Render(i18n.T("envs.status.not_installed", v.String()))
			return m, nil
		}
		m.busy = true
		return m, m.envOpCmd("set_local", v)
	case "V":
		if !ready() || m.verCur >= len(m.versions) {
			return m, nil
		}
		v := m.versions[m.verCur]
		if !v.Installed {
			return m, nil
		}
		m.busy = true
		return m, m.envOpCmd("verify", v)
	}
	return m, nil
}

func (m *envsModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("🧪 "+i18n.T("envs.title")) + "\n\n")

	if m.err == backend.ErrUnavailable {
		b.WriteString(errorStyle.Render(i18n.T("backend.unavailable")) + "\n")
		b.WriteString(helpStyle.Render(i18n.T("backend.unavailable_hint")) + "\n")
		return b.String()
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("%v", m.err)) + "\n")
		return b.String()
	}

	if m.level == typesLevel {
		b.WriteString(i18n.T("envs.types_header") + "\n")
		for i, t := range m.types {
			line := fmt.Sprintf("%-16s %s", t.Display, i18n.T("envs.installed_count", t.Installed))
			if i == m.typeCur {
				b.WriteString(selectedItemStyle.Render("▸ "+line) + "\n")
			} else {
				b.WriteString(itemStyle.Render("  "+line) + "\n")
			}
		}
		if len(m.detected) > 0 {
			b.WriteString("\n" + i18n.T("envs.detected_header") + "\n")
			for _, d := range m.detected {
				mark := successStyle.Render("✓")
				if !d.Satisfied {
					mark = errorStyle.Render("✗")
				}
				b.WriteString(fmt.Sprintf("  %s %s %s (%s)\n", mark, d.EnvType, d.Constraint, d.Source))
			}
		}
		if m.status != "" {
			b.WriteString("\n" + m.status + "\n")
		}
		b.WriteString(helpStyle.Render("\n" + i18n.T("envs.types_footer")))
		return b.String()
	}

	// versions view
	b.WriteString(i18n.T("envs.versions_header", m.envType) + "\n")
	if len(m.providers) > 0 {
		names := make([]string, 0, len(m.providers))
		for _, p := range m.providers {
			n := p.Name
			if p.Default {
				n += "*"
			}
			names = append(names, n)
		}
		b.WriteString(helpStyle.Render(i18n.T("envs.providers", strings.Join(names, ", "))) + "\n")
	}
	for i, v := range m.versions {
		var marks []string
		if v.Installed {
			marks = append(marks, successStyle.Render("installed"))
		}
		if v.Global {
			marks = append(marks, specialStyle.Render("global"))
		}
		line := fmt.Sprintf("%-14s %-10s %s", v.Version, v.Provider, strings.Join(marks, " "))
		if i == m.verCur {
			b.WriteString(selectedItemStyle.Render("▸ "+line) + "\n")
		} else {
			b.WriteString(itemStyle.Render("  "+line) + "\n")
		}
	}

	if m.installing {
		bar := renderProgressBar(m.progress.Percent, 40)
		detail := m.progress.Detail
		if detail == "" {
			detail = m.progress.Stage
		}
		b.WriteString("\n" + busyStyle.Render(i18n.T("envs.installing", m.installTarget.String())) + "\n")
		b.WriteString(fmt.Sprintf("%s %3.0f%%  %s\n", bar, m.progress.Percent, helpStyle.Render(detail)))
		b.WriteString(helpStyle.Render(i18n.T("envs.cancel_hint")) + "\n")
	}
	if m.status != "" {
		b.WriteString("\n" + m.status + "\n")
	}
	if m.busy && !m.installing {
		b.WriteString(busyStyle.Render(i18n.T("busy")) + "\n")
	}
	b.WriteString(helpStyle.Render("\n" + i18n.T("envs.versions_footer")))

	if m.confirm != nil {
		return lipgloss.Place(max(m.width, 60), max(m.height, 20), lipgloss.Center, lipgloss.Center, m.confirm.Render())
	}
	return b.String()
}

// renderProgressBar draws a simple unicode progress bar.
func renderProgressBar(percent float64, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := int(percent / 100 * float64(width))
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}
