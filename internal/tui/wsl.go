// Copyright (c) 2026 Devkeep Authors
// Devkeep - developer machine caretaker
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/devkeep/devkeep/internal/backend"
	"github.com/devkeep/devkeep/internal/db"
	"github.com/devkeep/devkeep/internal/i18n"
	"github.com/devkeep/devkeep/internal/model"
	"github.com/devkeep/devkeep/internal/tui/frame"
)

type distrosLoadedMsg struct {
	distros []model.Distro
	err     error
}

type distroDetailMsg struct {
	name      string
	resources *model.DistroResources
	env       []model.EnvPair
	services  []model.SystemdService
	err       error
}

type wslOpDoneMsg struct {
	action string
	target string
	err    error
}

type wslExecDoneMsg struct {
	command string
	res     *model.ExecResult
	err     error
}

// wslLevel switches between the distro list and a single distro's detail.
type wslLevel int

const (
	distroListLevel wslLevel = iota
	distroDetailLevel
)

// wslModel is the model for the WSL distribution view.
type wslModel struct {
	backend backend.Backend

	level   wslLevel
	distros []model.Distro
	cursor  int

	// detail state for the selected distro
	detailName string
	resources  *model.DistroResources
	env        []model.EnvPair
	services   []model.SystemdService
	svcCursor  int
	showEnv    bool

	// prompt collects one line of input for exec/mount/resize/set-user.
	prompt    textinput.Model
	promptFor string
	lastExec  *model.ExecResult

	busy    bool
	status  string
	err     error
	confirm *frame.Dialog
	pending func() tea.Cmd

	width, height int
}

func newWslModel(b backend.Backend) *wslModel {
	ti := textinput.New()
	ti.Width = 60
	ti.CharLimit = 400
	return &wslModel{backend: b, prompt: ti}
}

func (m *wslModel) Init() tea.Cmd {
	return m.loadDistrosCmd()
}

func (m *wslModel) loadDistrosCmd() tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		if b == nil || !b.Available() {
			return distrosLoadedMsg{err: backend.ErrUnavailable}
		}
		distros, err := b.ListDistros(context.Background())
		return distrosLoadedMsg{distros: distros, err: err}
	}
}

func (m *wslModel) loadDetailCmd(name string) tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		ctx := context.Background()
		res, err := b.Resources(ctx, name)
		if err != nil {
			return distroDetailMsg{name: name, err: err}
		}
		env, err := b.Environment(ctx, name)
		if err != nil {
			return distroDetailMsg{name: name, err: err}
		}
		// Service listing needs systemd; a distro without it just shows none.
		services, err := b.Services(ctx, name)
		if err != nil {
			services = nil
		}
		return distroDetailMsg{name: name, resources: res, env: env, services: services}
	}
}

func (m *wslModel) serviceOpCmd(action, distro, unit string) tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		ctx := context.Background()
		var err error
		switch action {
		case "start":
			err = b.StartService(ctx, distro, unit)
		case "stop":
			err = b.StopService(ctx, distro, unit)
		case "enable":
			err = b.EnableService(ctx, distro, unit, true)
		case "disable":
			err = b.EnableService(ctx, distro, unit, false)
		}
		return wslOpDoneMsg{action: action, target: unit, err: err}
	}
}

func (m *wslModel) execCmd(name, command string) tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		res, err := b.Exec(context.Background(), name, command)
		return wslExecDoneMsg{command: command, res: res, err: err}
	}
}

func (m *wslModel) mountCmd(name, vhdPath string) tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		err := b.MountDisk(context.Background(), name, vhdPath)
		return wslOpDoneMsg{action: "mount", target: vhdPath, err: err}
	}
}

func (m *wslModel) resizeCmd(name string, sizeGB int) tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		err := b.ResizeDisk(context.Background(), name, sizeGB)
		return wslOpDoneMsg{action: "resize", target: fmt.Sprintf("%d GB", sizeGB), err: err}
	}
}

func (m *wslModel) setUserCmd(name, user string) tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		err := b.SetDefaultUser(context.Background(), name, user)
		return wslOpDoneMsg{action: "set_user", target: user, err: err}
	}
}

func (m *wslModel) importCmd(name, tarPath, installDir string) tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		err := b.Import(context.Background(), name, tarPath, installDir)
		return wslOpDoneMsg{action: "import", target: name, err: err}
	}
}

func (m *wslModel) exportCmd(name string) tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		tarPath := fmt.Sprintf("%s-export-%s.tar", name, time.Now().Format("2006-01-02"))
		err := b.ExportDistro(context.Background(), name, tarPath)
		return wslOpDoneMsg{action: "export", target: tarPath, err: err}
	}
}

func (m *wslModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case distrosLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.distros = msg.distros
		if m.cursor >= len(m.distros) {
			m.cursor = 0
		}
		return m, nil

	case distroDetailMsg:
		m.busy = false
		if msg.err != nil {
			m.status = errorStyle.Render(i18n.T("wsl.status.detail_failed", msg.name, msg.err))
			return m, nil
		}
		m.level = distroDetailLevel
		m.detailName = msg.name
		m.resources = msg.resources
		m.env = msg.env
		m.services = msg.services
		m.svcCursor = 0
		return m, nil

	case wslExecDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.status = errorStyle.Render(i18n.T("wsl.status.exec_failed", msg.err))
			_ = db.LogAction("WSL_EXEC", msg.command, "error")
			return m, nil
		}
		m.lastExec = msg.res
		m.status = ""
		_ = db.LogAction("WSL_EXEC", msg.command, "ok")
		return m, nil

	case wslOpDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.status = errorStyle.Render(i18n.T("wsl.status.op_failed", msg.action, msg.err))
			_ = db.LogAction("WSL_"+strings.ToUpper(msg.action), msg.target, "error")
			return m, nil
		}
		m.status = statusMessageStyle.Render(i18n.T("wsl.status.op_done", msg.action, msg.target))
		_ = db.LogAction("WSL_"+strings.ToUpper(msg.action), msg.target, "ok")
		if m.level == distroDetailLevel {
			return m, m.loadDetailCmd(m.detailName)
		}
		return m, m.loadDistrosCmd()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *wslModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
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

	if m.promptFor != "" {
		switch msg.String() {
		case "esc":
			m.promptFor = ""
			m.prompt.Blur()
			return m, nil
		case "enter":
			kind := m.promptFor
			value := strings.TrimSpace(m.prompt.Value())
			m.promptFor = ""
			m.prompt.Blur()
			if value == "" {
				return m, nil
			}
			return m.submitPrompt(kind, value)
		}
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		return m, cmd
	}

	ready := func() bool { return !m.busy && m.backend != nil && m.backend.Available() }

	if m.level == distroListLevel {
		switch msg.String() {
		case "q", "esc":
			return m, func() tea.Msg { return backToMenuMsg{} }
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.distros)-1 {
				m.cursor++
			}
		case "enter":
			if ready() && m.cursor < len(m.distros) {
				m.busy = true
				return m, m.loadDetailCmd(m.distros[m.cursor].Name)
			}
		case "x":
			if ready() && m.cursor < len(m.distros) {
				d := m.distros[m.cursor]
				m.confirm = frame.NewDialog(
					i18n.T("wsl.confirm.export_title"),
					i18n.T("wsl.confirm.export_message", d.Name),
					i18n.T("confirm.no"), i18n.T("confirm.yes"))
				name := d.Name
				m.pending = func() tea.Cmd { return m.exportCmd(name) }
			}
		case "i":
			if ready() {
				return m, m.openPrompt("import")
			}
		case "r":
			return m, m.loadDistrosCmd()
		}
		return m, nil
	}

	// distroDetailLevel
	switch msg.String() {
	case "q", "esc":
		m.level = distroListLevel
		m.status = ""
		return m, m.loadDistrosCmd()
	case "e":
		m.showEnv = !m.showEnv
	case "up", "k":
		if m.svcCursor > 0 {
			m.svcCursor--
		}
	case "down", "j":
		if m.svcCursor < len(m.services)-1 {
			m.svcCursor++
		}
	case "r":
		return m, m.loadDetailCmd(m.detailName)
	case "s":
		if ready() && m.svcCursor < len(m.services) {
			svc := m.services[m.svcCursor]
			action := "start"
			if svc.Active {
				action = "stop"
			}
			m.busy = true
			return m, m.serviceOpCmd(action, m.detailName, svc.Unit)
		}
	case "E":
		if ready() && m.svcCursor < len(m.services) {
			svc := m.services[m.svcCursor]
			action := "enable"
			if svc.Enabled {
				action = "disable"
			}
			m.busy = true
			return m, m.serviceOpCmd(action, m.detailName, svc.Unit)
		}
	case "!":
		if ready() {
			return m, m.openPrompt("exec")
		}
	case "m":
		if ready() {
			return m, m.openPrompt("mount")
		}
	case "z":
		if ready() {
			return m, m.openPrompt("resize")
		}
	case "u":
		if ready() {
			return m, m.openPrompt("user")
		}
	}
	return m, nil
}

// openPrompt focuses the one-line input for the given action.
func (m *wslModel) openPrompt(kind string) tea.Cmd {
	m.promptFor = kind
	m.prompt.Reset()
	m.prompt.Placeholder = i18n.T("wsl.prompt." + kind)
	return m.prompt.Focus()
}

// submitPrompt turns a completed prompt into the matching backend call.
// Destructive disk and user changes go through a confirmation dialog first.
func (m *wslModel) submitPrompt(kind, value string) (tea.Model, tea.Cmd) {
	name := m.detailName
	switch kind {
	case "import":
		fields := strings.Fields(value)
		if len(fields) < 2 {
			m.status = errorStyle.Render(i18n.T("wsl.status.bad_import"))
			return m, nil
		}
		newName, tarPath := fields[0], fields[1]
		installDir := ""
		if len(fields) > 2 {
			installDir = fields[2]
		}
		m.confirm = frame.NewDialog(
			i18n.T("wsl.confirm.import_title"),
			i18n.T("wsl.confirm.import_message", newName, tarPath),
			i18n.T("confirm.no"), i18n.T("confirm.yes"))
		m.pending = func() tea.Cmd { return m.importCmd(newName, tarPath, installDir) }
	case "exec":
		m.busy = true
		return m, m.execCmd(name, value)
	case "mount":
		m.confirm = frame.NewDialog(
			i18n.T("wsl.confirm.mount_title"),
			i18n.T("wsl.confirm.mount_message", value, name),
			i18n.T("confirm.no"), i18n.T("confirm.yes"))
		m.pending = func() tea.Cmd { return m.mountCmd(name, value) }
	case "resize":
		sizeGB, err := strconv.Atoi(value)
		if err != nil || sizeGB <= 0 {
			m.status = errorStyle.Render(i18n.T("wsl.status.bad_size", value))
			return m, nil
		}
		m.confirm = frame.NewDialog(
			i18n.T("wsl.confirm.resize_title"),
			i18n.T("wsl.confirm.resize_message", name, sizeGB),
			i18n.T("confirm.no"), i18n.T("confirm.yes"))
		m.pending = func() tea.Cmd { return m.resizeCmd(name, sizeGB) }
	case "user":
		m.confirm = frame.NewDialog(
			i18n.T("wsl.confirm.user_title"),
			i18n.T("wsl.confirm.user_message", value, name),
			i18n.T("confirm.no"), i18n.T("confirm.yes"))
		m.pending = func() tea.Cmd { return m.setUserCmd(name, value) }
	}
	return m, nil
}

func (m *wslModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("🐧 "+i18n.T("wsl.title")) + "\n\n")

	if m.err == backend.ErrUnavailable {
		b.WriteString(errorStyle.Render(i18n.T("backend.unavailable")) + "\n")
		b.WriteString(helpStyle.Render(i18n.T("backend.unavailable_hint")) + "\n")
		return b.String()
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("%v", m.err)) + "\n")
		return b.String()
	}

	if m.level == distroListLevel {
		if len(m.distros) == 0 {
			b.WriteString(helpStyle.Render(i18n.T("wsl.none_found")) + "\n")
		}
		for i, d := range m.distros {
			stateCell := helpStyle.Render(string(d.State))
			if d.State == model.DistroRunning {
				stateCell = successStyle.Render(string(d.State))
			}
			def := "  "
			if d.Default {
				def = specialStyle.Render("* ")
			}
			line := fmt.Sprintf("%s%-24s v%d %s", def, d.Name, d.Version, stateCell)
			if i == m.cursor {
				b.WriteString(selectedItemStyle.Render("▸ "+line) + "\n")
			} else {
				b.WriteString(itemStyle.Render("  "+line) + "\n")
			}
		}
		if m.status != "" {
			b.WriteString("\n" + m.status + "\n")
		}
		if m.busy {
			b.WriteString(busyStyle.Render(i18n.T("busy")) + "\n")
		}
		if m.promptFor != "" {
			b.WriteString("\n" + i18n.T("wsl.prompt."+m.promptFor) + "\n")
			b.WriteString(m.prompt.View() + "\n")
		}
		b.WriteString(helpStyle.Render("\n" + i18n.T("wsl.list_footer")))
		if m.confirm != nil {
			return lipgloss.Place(max(m.width, 60), max(m.height, 20), lipgloss.Center, lipgloss.Center, m.confirm.Render())
		}
		return b.String()
	}

	// detail view
	b.WriteString(selectedItemStyle.Render(m.detailName) + "\n\n")
	if r := m.resources; r != nil {
		b.WriteString(fmt.Sprintf("  CPU %5.1f%%   MEM %s / %s   DISK %s / %s\n",
			r.CPUPercent, humanBytes(r.MemoryUsed), humanBytes(r.MemoryTotal),
			humanBytes(r.DiskUsed), humanBytes(r.DiskTotal)))
		b.WriteString(fmt.Sprintf("  %s  kernel %s  user %s  uptime %s\n",
			i18n.T("wsl.processes", r.ProcessCount), r.KernelVersion, r.DefaultUser,
			(time.Duration(r.UptimeSeconds) * time.Second).String()))
		if !r.SystemdEnabled {
			b.WriteString(helpStyle.Render("  "+i18n.T("wsl.no_systemd")) + "\n")
		}
	}

	if m.showEnv {
		b.WriteString("\n" + i18n.T("wsl.env_header") + "\n")
		for _, kv := range m.env {
			b.WriteString(helpStyle.Render(fmt.Sprintf("  %s=%s", kv.Key, truncate(kv.Value, 60))) + "\n")
		}
	}

	if m.promptFor != "" {
		b.WriteString("\n" + i18n.T("wsl.prompt."+m.promptFor) + "\n")
		b.WriteString(m.prompt.View() + "\n")
	}

	if res := m.lastExec; res != nil {
		b.WriteString("\n" + i18n.T("wsl.exec_header", res.ExitCode) + "\n")
		if out := strings.TrimRight(res.Stdout, "\n"); out != "" {
			b.WriteString(itemStyle.Render(truncate(out, 2000)) + "\n")
		}
		if errOut := strings.TrimRight(res.Stderr, "\n"); errOut != "" {
			b.WriteString(errorStyle.Render(truncate(errOut, 1000)) + "\n")
		}
	}

	if len(m.services) > 0 {
		b.WriteString("\n" + i18n.T("wsl.services_header") + "\n")
		for i, svc := range m.services {
			activeCell := helpStyle.Render("inactive")
			if svc.Active {
				activeCell = successStyle.Render("active")
			}
			enabledCell := ""
			if svc.Enabled {
				enabledCell = specialStyle.Render(" enabled")
			}
			line := fmt.Sprintf("%-28s %s%s  %s", svc.Unit, activeCell, enabledCell, truncate(svc.Description, 40))
			if i == m.svcCursor {
				b.WriteString(selectedItemStyle.Render("▸ "+line) + "\n")
			} else {
				b.WriteString(itemStyle.Render("  "+line) + "\n")
			}
		}
	}

	if m.status != "" {
		b.WriteString("\n" + m.status + "\n")
	}
	if m.busy {
		b.WriteString(busyStyle.Render(i18n.T("busy")) + "\n")
	}
	b.WriteString(helpStyle.Render("\n" + i18n.T("wsl.detail_footer")))
	if m.confirm != nil {
		return lipgloss.Place(max(m.width, 60), max(m.height, 20), lipgloss.Center, lipgloss.Center, m.confirm.Render())
	}
	return b.String()
}
