// Copyright (c) 2026 Devkeep Authors
// Devkeep - developer machine caretaker
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/devkeep/devkeep/internal/backend"
	"github.com/devkeep/devkeep/internal/config"
	"github.com/devkeep/devkeep/internal/db"
	"github.com/devkeep/devkeep/internal/i18n"
	"github.com/devkeep/devkeep/internal/model"
	"github.com/devkeep/devkeep/internal/remote"
	"github.com/devkeep/devkeep/internal/state"
	"github.com/devkeep/devkeep/internal/tui/frame"
)

// backupKeepCount is how many backups a cleanup retains.
const backupKeepCount = 5

type backupsLoadedMsg struct {
	backups []model.BackupManifest
	err     error
}

type remoteBackupsLoadedMsg struct {
	files []remote.BackupFile
	err   error
}

type backupOpDoneMsg struct {
	action   string
	detail   string
	manifest *model.BackupManifest
	err      error
}

type hostKeyFetchedMsg struct {
	host string
	key  string
	err  error
}

type backupsPane int

const (
	localBackupsPane backupsPane = iota
	remoteBackupsPane
)

// backupsModel is the model for the backup view: local backups on one
// pane, the configured SFTP host's files on the other.
type backupsModel struct {
	backend backend.Backend

	backups     []model.BackupManifest
	remoteFiles []remote.BackupFile
	remoteErr   error

	pane        backupsPane
	localCursor int
	remoteCur   int

	busy    bool
	status  string
	err     error
	confirm *frame.Dialog
	pending func() tea.Cmd

	width, height int
}

func newBackupsModel(b backend.Backend) *backupsModel {
	return &backupsModel{backend: b}
}

func (m *backupsModel) Init() tea.Cmd {
	return tea.Batch(m.loadLocalCmd(), m.loadRemoteCmd())
}

func (m *backupsModel) loadLocalCmd() tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		if b == nil || !b.Available() {
			return backupsLoadedMsg{err: backend.ErrUnavailable}
		}
		backups, err := b.ListBackups(context.Background())
		return backupsLoadedMsg{backups: backups, err: err}
	}
}

// loadRemoteCmd lists the remote backup directory. An unconfigured remote
// is not an error; the pane just stays empty.
func (m *backupsModel) loadRemoteCmd() tea.Cmd {
	return func() tea.Msg {
		rc := config.Current().Remote
		if rc.Host == "" {
			return remoteBackupsLoadedMsg{}
		}
		client, err := remote.Dial(rc.Host, rc.User, rc.KeyFile)
		if err != nil {
			return remoteBackupsLoadedMsg{err: err}
		}
		defer client.Close()
		files, err := client.List(rc.Dir)
		return remoteBackupsLoadedMsg{files: files, err: err}
	}
}

func (m *backupsModel) createCmd() tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		dir, err := config.DataDir()
		if err != nil {
			return backupOpDoneMsg{action: "create", err: err}
		}
		outPath := filepath.Join(dir, fmt.Sprintf("devkeep-backup-%s.tar.zst", time.Now().Format("2006-01-02-150405")))
		manifest, err := b.CreateBackup(context.Background(), outPath)
		return backupOpDoneMsg{action: "create", detail: outPath, manifest: manifest, err: err}
	}
}

func (m *backupsModel) restoreCmd(path string) tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		err := b.RestoreBackup(context.Background(), path)
		return backupOpDoneMsg{action: "restore", detail: path, err: err}
	}
}

func (m *backupsModel) validateCmd(path string) tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		manifest, err := b.ValidateBackup(context.Background(), path)
		return backupOpDoneMsg{action: "validate", detail: path, manifest: manifest, err: err}
	}
}

func (m *backupsModel) cleanupCmd() tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		res, err := b.CleanupBackups(context.Background(), backupKeepCount)
		if err != nil {
			return backupOpDoneMsg{action: "cleanup", err: err}
		}
		return backupOpDoneMsg{action: "cleanup", detail: fmt.Sprintf("%d, %s", res.Removed, humanBytes(res.FreedBytes))}
	}
}

func (m *backupsModel) pushCmd(localPath string) tea.Cmd {
	return func() tea.Msg {
		rc := config.Current().Remote
		client, err := remote.Dial(rc.Host, rc.User, rc.KeyFile)
		if err != nil {
			return backupOpDoneMsg{action: "push", detail: localPath, err: err}
		}
		defer client.Close()
		err = client.Push(localPath, rc.Dir)
		return backupOpDoneMsg{action: "push", detail: filepath.Base(localPath), err: err}
	}
}

func (m *backupsModel) pullCmd(name string) tea.Cmd {
	return func() tea.Msg {
		rc := config.Current().Remote
		dir, err := config.DataDir()
		if err != nil {
			return backupOpDoneMsg{action: "pull", err: err}
		}
		client, err := remote.Dial(rc.Host, rc.User, rc.KeyFile)
		if err != nil {
			return backupOpDoneMsg{action: "pull", detail: name, err: err}
		}
		defer client.Close()
		err = client.Pull(rc.Dir, name, filepath.Join(dir, name))
		return backupOpDoneMsg{action: "pull", detail: name, err: err}
	}
}

func (m *backupsModel) fetchHostKeyCmd(host string) tea.Cmd {
	return func() tea.Msg {
		key, err := remote.FetchHostKey(host)
		return hostKeyFetchedMsg{host: host, key: key, err: err}
	}
}

func (m *backupsModel) selectedLocal() *model.BackupManifest {
	if m.localCursor < 0 || m.localCursor >= len(m.backups) {
		return nil
	}
	return &m.backups[m.localCursor]
}

func (m *backupsModel) selectedRemote() *remote.BackupFile {
	if m.remoteCur < 0 || m.remoteCur >= len(m.remoteFiles) {
		return nil
	}
	return &m.remoteFiles[m.remoteCur]
}

func (m *backupsModel) remoteConfigured() bool {
	return config.Current().Remote.Host != ""
}

func (m *backupsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case backupsLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.backups = msg.backups
		if m.localCursor >= len(m.backups) {
			m.localCursor = max(0, len(m.backups)-1)
		}
		return m, nil

	case remoteBackupsLoadedMsg:
		m.remoteErr = msg.err
		m.remoteFiles = msg.files
		if m.remoteCur >= len(m.remoteFiles) {
			m.remoteCur = max(0, len(m.remoteFiles)-1)
		}
		return m, nil

	case hostKeyFetchedMsg:
		m.busy = false
		if msg.err != nil {
			m.status = errorStyle.Render(i18n.T("backups.status.trust_failed", msg.err))
			return m, nil
		}
		host, key := msg.host, msg.key
		m.confirm = frame.NewDialog(
			i18n.T("backups.confirm.trust_title"),
			i18n.T("backups.confirm.trust_message", host, truncate(key, 60)),
			i18n.T("confirm.no"), i18n.T("confirm.yes"))
		m.pending = func() tea.Cmd {
			return func() tea.Msg {
				err := db.AddKnownHostKey(host, key)
				return backupOpDoneMsg{action: "trust", detail: host, err: err}
			}
		}
		return m, nil

	case backupOpDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.status = errorStyle.Render(i18n.T("backups.status.op_failed", msg.action, msg.err))
			_ = db.LogAction("BACKUP_"+strings.ToUpper(msg.action), msg.detail, "error")
			return m, nil
		}
		_ = db.LogAction("BACKUP_"+strings.ToUpper(msg.action), msg.detail, "ok")
		switch msg.action {
		case "create":
			if msg.manifest != nil {
				_ = db.SaveBackupManifest(*msg.manifest)
			}
			state.SessionLog.Append(i18n.T("backups.session.created", msg.detail))
			m.status = statusMessageStyle.Render(i18n.T("backups.status.created", msg.detail))
			return m, m.loadLocalCmd()
		case "validate":
			if msg.manifest != nil && msg.manifest.Valid {
				m.status = successStyle.Render(i18n.T("backups.status.valid", msg.detail))
			} else {
				m.status = errorStyle.Render(i18n.T("backups.status.invalid", msg.detail))
			}
			if msg.manifest != nil {
				_ = db.SaveBackupManifest(*msg.manifest)
			}
			return m, m.loadLocalCmd()
		case "restore":
			state.SessionLog.Append(i18n.T("backups.session.restored", msg.detail))
			m.status = statusMessageStyle.Render(i18n.T("backups.status.restored", msg.detail))
			return m, nil
		case "cleanup":
			m.status = statusMessageStyle.Render(i18n.T("backups.status.cleaned", msg.detail))
			return m, m.loadLocalCmd()
		case "push":
			m.status = statusMessageStyle.Render(i18n.T("backups.status.pushed", msg.detail))
			return m, m.loadRemoteCmd()
		case "pull":
			m.status = statusMessageStyle.Render(i18n.T("backups.status.pulled", msg.detail))
			return m, m.loadLocalCmd()
		case "trust":
			m.status = statusMessageStyle.Render(i18n.T("backups.status.trusted", msg.detail))
			return m, m.loadRemoteCmd()
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *backupsModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
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

	ready := func() bool { return !m.busy && m.backend != nil && m.backend.Available() }

	switch msg.String() {
	case "q", "esc":
		return m, func() tea.Msg { return backToMenuMsg{} }
	case "tab":
		if m.pane == localBackupsPane {
			m.pane = remoteBackupsPane
		} else {
			m.pane = localBackupsPane
		}
		return m, nil
	case "up", "k":
		if m.pane == localBackupsPane && m.localCursor > 0 {
			m.localCursor--
		} else if m.pane == remoteBackupsPane && m.remoteCur > 0 {
			m.remoteCur--
		}
		return m, nil
	case "down", "j":
		if m.pane == localBackupsPane && m.localCursor < len(m.backups)-1 {
			m.localCursor++
		} else if m.pane == remoteBackupsPane && m.remoteCur < len(m.remoteFiles)-1 {
			m.remoteCur++
		}
		return m, nil
	case "r":
		return m, tea.Batch(m.loadLocalCmd(), m.loadRemoteCmd())
	case "n":
		if ready() {
			m.busy = true
			m.status = busyStyle.Render(i18n.T("backups.status.creating"))
			return m, m.createCmd()
		}
		return m, nil
	case "R":
		if sel := m.selectedLocal(); sel != nil && ready() {
			path := sel.Path
			m.confirm = frame.NewDialog(
				i18n.T("backups.confirm.restore_title"),
				i18n.T("backups.confirm.restore_message", filepath.Base(path)),
				i18n.T("confirm.no"), i18n.T("confirm.yes"))
			m.pending = func() tea.Cmd { return m.restoreCmd(path) }
		}
		return m, nil
	case "v":
		if sel := m.selectedLocal(); sel != nil && ready() {
			m.busy = true
			return m, m.validateCmd(sel.Path)
		}
		return m, nil
	case "C":
		if ready() && len(m.backups) > backupKeepCount {
			m.confirm = frame.NewDialog(
				i18n.T("backups.confirm.cleanup_title"),
				i18n.T("backups.confirm.cleanup_message", backupKeepCount),
				i18n.T("confirm.no"), i18n.T("confirm.yes"))
			m.pending = func() tea.Cmd { return m.cleanupCmd() }
		}
		return m, nil
	case "P":
		if !m.remoteConfigured() {
			m.status = errorStyle.Render(i18n.T("backups.remote_unconfigured"))
			return m, nil
		}
		if sel := m.selectedLocal(); sel != nil && !m.busy {
			m.busy = true
			return m, m.pushCmd(sel.Path)
		}
		return m, nil
	case "L":
		if !m.remoteConfigured() {
			m.status = errorStyle.Render(i18n.T("backups.remote_unconfigured"))
			return m, nil
		}
		if sel := m.selectedRemote(); sel != nil && !m.busy {
			m.busy = true
			return m, m.pullCmd(sel.Name)
		}
		return m, nil
	case "t":
		if !m.remoteConfigured() {
			m.status = errorStyle.Render(i18n.T("backups.remote_unconfigured"))
			return m, nil
		}
		if !m.busy {
			m.busy = true
			return m, m.fetchHostKeyCmd(config.Current().Remote.Host)
		}
		return m, nil
	}
	return m, nil
}

func (m *backupsModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("🗄  "+i18n.T("backups.title")) + "\n\n")

	if m.err == backend.ErrUnavailable {
		b.WriteString(errorStyle.Render(i18n.T("backend.unavailable")) + "\n")
		b.WriteString(helpStyle.Render(i18n.T("backend.unavailable_hint")) + "\n")
		return b.String()
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("%v", m.err)) + "\n")
		return b.String()
	}

	local := m.renderLocalPane()
	remotePane := m.renderRemotePane()
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, local, "  ", remotePane))
	b.WriteString("\n")

	if m.status != "" {
		b.WriteString(m.status + "\n")
	}
	if m.busy {
		b.WriteString(busyStyle.Render(i18n.T("busy")) + "\n")
	}
	b.WriteString(helpStyle.Render("\n" + i18n.T("backups.footer")))

	if m.confirm != nil {
		return lipgloss.Place(max(m.width, 60), max(m.height, 20), lipgloss.Center, lipgloss.Center, m.confirm.Render())
	}
	return b.String()
}

func (m *backupsModel) renderLocalPane() string {
	var b strings.Builder
	header := i18n.T("backups.local_header")
	if m.pane == localBackupsPane {
		header = selectedItemStyle.Render(header)
	}
	b.WriteString(header + "\n")

	if len(m.backups) == 0 {
		b.WriteString(helpStyle.Render(i18n.T("backups.none_found")) + "\n")
	}
	for i, bk := range m.backups {
		cursor := "  "
		if m.pane == localBackupsPane && i == m.localCursor {
			cursor = selectedItemStyle.Render("> ")
		}
		valid := errorStyle.Render("✗")
		if bk.Valid {
			valid = successStyle.Render("✓")
		}
		line := fmt.Sprintf("%s%s %s  %s  %s", cursor, valid,
			bk.CreatedAt.Format("2006-01-02 15:04"), humanBytes(bk.SizeBytes), filepath.Base(bk.Path))
		if m.pane == localBackupsPane && i == m.localCursor {
			line = selectedItemStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	return paneStyle.Render(b.String())
}

func (m *backupsModel) renderRemotePane() string {
	var b strings.Builder
	header := i18n.T("backups.remote_header")
	if m.pane == remoteBackupsPane {
		header = selectedItemStyle.Render(header)
	}
	b.WriteString(header + "\n")

	switch {
	case !m.remoteConfigured():
		b.WriteString(helpStyle.Render(i18n.T("backups.remote_unconfigured")) + "\n")
	case m.remoteErr != nil:
		b.WriteString(errorStyle.Render(truncate(m.remoteErr.Error(), 48)) + "\n")
	case len(m.remoteFiles) == 0:
		b.WriteString(helpStyle.Render(i18n.T("backups.none_found")) + "\n")
	default:
		for i, f := range m.remoteFiles {
			cursor := "  "
			if m.pane == remoteBackupsPane && i == m.remoteCur {
				cursor = selectedItemStyle.Render("> ")
			}
			line := fmt.Sprintf("%s%s  %s  %s", cursor,
				f.ModTime.Format("2006-01-02 15:04"), humanBytes(f.Size), f.Name)
			if m.pane == remoteBackupsPane && i == m.remoteCur {
				line = selectedItemStyle.Render(line)
			}
			b.WriteString(line + "\n")
		}
	}
	return paneStyle.Render(b.String())
}
