// Copyright (c) 2026 Devkeep Authors
// Devkeep - developer machine caretaker
// This source code is licensed under the MIT license found in the LICENSE file.

// package tui provides the terminal user interface for Devkeep.
// This file, tui.go, is the main entry point for the TUI, containing the
// top-level model that acts as a router to all other sub-views.
package tui // import "github.com/devkeep/devkeep/internal/tui"

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/devkeep/devkeep/internal/backend"
	"github.com/devkeep/devkeep/internal/db"
	"github.com/devkeep/devkeep/internal/i18n"
	"github.com/devkeep/devkeep/internal/logging"
	"github.com/devkeep/devkeep/internal/model"
	"github.com/devkeep/devkeep/internal/state"
	"github.com/spf13/viper"
)

// viewState represents which part of the UI is currently active.
type viewState int

const (
	// menuView is the main dashboard and navigation menu.
	menuView viewState = iota
	cachesView
	envsView
	wslView
	logsView
	backupsView
	feedbackView
	aboutView
	languageView
)

// backToMenuMsg signals that the active view wants to return to the menu.
type backToMenuMsg struct{}

// dashboardDataMsg carries the data for the main menu dashboard.
type dashboardDataMsg struct {
	data dashboardData
}

// languageChangedMsg signals that the language has changed and the UI should be re-initialized.
type languageChangedMsg struct{}

// dashboardData holds the summary information for the main menu view.
type dashboardData struct {
	helperOK       bool
	helperVersion  string
	platform       string
	toolCacheCount int
	cacheTotalSize int64
	distroCount    int
	distrosRunning int
	recentActions  []model.ActionLogEntry
	err            error
}

// mainModel is the top-level model for the TUI. It acts as a state machine
// and router, delegating updates and view rendering to the currently active sub-model.
type mainModel struct {
	state     viewState
	menu      menuModel
	caches    *cachesModel
	envs      *envsModel
	wsl       *wslModel
	logs      *logsModel
	backups   *backupsModel
	feedback  *feedbackModel
	about     *aboutModel
	language  languageModel
	dashboard dashboardData
	width     int
	height    int
	err       error
	backend   backend.Backend
}

// menuModel holds the state for the main menu.
type menuModel struct {
	choices []string // The menu items to show.
	cursor  int      // Which menu item our cursor is pointing at.
}

// languageModel holds the state for the language selection menu.
type languageModel struct {
	choices     map[string]string // map of lang code to display name
	orderedKeys []string          // for stable iteration
	cursor      int
}

// initialModelWithBackend creates the starting state of the TUI against the
// given backend. Pass nil to use the package default.
func initialModelWithBackend(b backend.Backend) mainModel {
	if b == nil {
		b = backend.Default()
	}
	return mainModel{
		state: menuView,
		menu: menuModel{
			choices: []string{
				i18n.T("menu.caches"),
				i18n.T("menu.environments"),
				i18n.T("menu.wsl"),
				i18n.T("menu.logs"),
				i18n.T("menu.backups"),
				i18n.T("menu.feedback"),
				i18n.T("menu.about"),
				i18n.T("menu.language"),
			},
		},
		backend: b,
	}
}

func initialModel() mainModel {
	return initialModelWithBackend(nil)
}

// Init kicks off the initial command to load data for the dashboard.
func (m mainModel) Init() tea.Cmd {
	return refreshDashboardCmd(m.backend)
}

// Update is the main message loop. It handles all events (like key presses and
// window size changes) and delegates them to the active sub-model.
func (m mainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Global keybindings that work everywhere.
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case dashboardDataMsg:
		m.dashboard = msg.data
		if msg.data.err != nil {
			m.err = msg.data.err
		}
		return m, nil

	case languageChangedMsg:
		// Re-initialize the entire model so new translations apply everywhere.
		newModel := initialModelWithBackend(m.backend)
		newModel.width = m.width
		newModel.height = m.height
		return newModel, newModel.Init()
	}

	// Delegate updates to the currently active view.
	switch m.state {
	case cachesView:
		if _, ok := msg.(backToMenuMsg); ok {
			m.state = menuView
			return m, refreshDashboardCmd(m.backend)
		}
		var newModel tea.Model
		newModel, cmd = m.caches.Update(msg)
		m.caches = newModel.(*cachesModel)

	case envsView:
		if _, ok := msg.(backToMenuMsg); ok {
			m.state = menuView
			return m, refreshDashboardCmd(m.backend)
		}
		var newModel tea.Model
		newModel, cmd = m.envs.Update(msg)
		m.envs = newModel.(*envsModel)

	case wslView:
		if _, ok := msg.(backToMenuMsg); ok {
			m.state = menuView
			return m, refreshDashboardCmd(m.backend)
		}
		var newModel tea.Model
		newModel, cmd = m.wsl.Update(msg)
		m.wsl = newModel.(*wslModel)

	case logsView:
		if _, ok := msg.(backToMenuMsg); ok {
			m.state = menuView
			return m, refreshDashboardCmd(m.backend)
		}
		var newModel tea.Model
		newModel, cmd = m.logs.Update(msg)
		m.logs = newModel.(*logsModel)

	case backupsView:
		if _, ok := msg.(backToMenuMsg); ok {
			m.state = menuView
			return m, refreshDashboardCmd(m.backend)
		}
		var newModel tea.Model
		newModel, cmd = m.backups.Update(msg)
		m.backups = newModel.(*backupsModel)

	case feedbackView:
		if _, ok := msg.(backToMenuMsg); ok {
			m.state = menuView
			return m, refreshDashboardCmd(m.backend)
		}
		var newModel tea.Model
		newModel, cmd = m.feedback.Update(msg)
		m.feedback = newModel.(*feedbackModel)

	case aboutView:
		if _, ok := msg.(backToMenuMsg); ok {
			m.state = menuView
			return m, refreshDashboardCmd(m.backend)
		}
		var newModel tea.Model
		newModel, cmd = m.about.Update(msg)
		m.about = newModel.(*aboutModel)

	case languageView:
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "q", "esc":
				m.state = menuView
				return m, refreshDashboardCmd(m.backend)
			case "up", "k":
				if m.language.cursor > 0 {
					m.language.cursor--
				}
			case "down", "j":
				if m.language.cursor < len(m.language.orderedKeys)-1 {
					m.language.cursor++
				}
			case "enter":
				langCode := m.language.orderedKeys[m.language.cursor]
				i18n.SetLang(langCode)
				viper.Set("language", langCode)
				if err := saveLanguage(langCode); err != nil {
					m.err = fmt.Errorf("failed to save config: %w", err)
				}
				return m, func() tea.Msg { return languageChangedMsg{} }
			}
		}
		return m, nil

	default: // menuView
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "q":
				return m, tea.Quit
			case "up", "k":
				if m.menu.cursor > 0 {
					m.menu.cursor--
				}
			case "down", "j":
				if m.menu.cursor < len(m.menu.choices)-1 {
					m.menu.cursor++
				}
			case "enter":
				return m.openMenuEntry(m.menu.cursor)
			case "L":
				m.state = languageView
				m.language = newLanguageModel()
				return m, nil
			}
		}
	}

	return m, cmd
}

// completeOnboarding retires the first-run hint once the user has opened a
// view, and mirrors the flag into the settings store so it stays retired.
func completeOnboarding() {
	if state.Onboarding.Done() {
		return
	}
	state.Onboarding.SetDone(true)
	if db.IsInitialized() {
		_ = db.SetSetting("onboarding_done", "true")
	}
}

// openMenuEntry constructs the sub-model for the chosen menu item and primes
// it with the current window size so viewports initialize correctly.
func (m mainModel) openMenuEntry(idx int) (tea.Model, tea.Cmd) {
	completeOnboarding()
	size := tea.WindowSizeMsg{Width: m.width, Height: m.height}
	var cmd tea.Cmd

	switch idx {
	case 0: // Caches
		m.state = cachesView
		m.caches = newCachesModel(m.backend)
		var updated tea.Model
		updated, cmd = m.caches.Update(size)
		m.caches = updated.(*cachesModel)
		return m, tea.Batch(m.caches.Init(), cmd)
	case 1: // Environments
		m.state = envsView
		m.envs = newEnvsModel(m.backend)
		var updated tea.Model
		updated, cmd = m.envs.Update(size)
		m.envs = updated.(*envsModel)
		return m, tea.Batch(m.envs.Init(), cmd)
	case 2: // WSL
		m.state = wslView
		m.wsl = newWslModel(m.backend)
		var updated tea.Model
		updated, cmd = m.wsl.Update(size)
		m.wsl = updated.(*wslModel)
		return m, tea.Batch(m.wsl.Init(), cmd)
	case 3: // Logs
		m.state = logsView
		m.logs = newLogsModel(m.backend)
		var updated tea.Model
		updated, cmd = m.logs.Update(size)
		m.logs = updated.(*logsModel)
		return m, tea.Batch(m.logs.Init(), cmd)
	case 4: // Backups
		m.state = backupsView
		m.backups = newBackupsModel(m.backend)
		var updated tea.Model
		updated, cmd = m.backups.Update(size)
		m.backups = updated.(*backupsModel)
		return m, tea.Batch(m.backups.Init(), cmd)
	case 5: // Feedback
		m.state = feedbackView
		m.feedback = newFeedbackModel(m.backend)
		return m, m.feedback.Init()
	case 6: // About
		m.state = aboutView
		m.about = newAboutModel(m.backend)
		var updated tea.Model
		updated, cmd = m.about.Update(size)
		m.about = updated.(*aboutModel)
		return m, tea.Batch(m.about.Init(), cmd)
	case 7: // Language
		m.state = languageView
		m.language = newLanguageModel()
		return m, nil
	}
	return m, nil
}

// saveLanguage persists the chosen language. Overridable in tests.
var saveLanguage = func(code string) error {
	return db.SetSetting("language", code)
}

// View renders the TUI. It delegates rendering to the currently active sub-model.
func (m mainModel) View() string {
	if m.err != nil {
		errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Padding(1, 2)
		return errorStyle.Render(fmt.Sprintf("An error occurred: %v", m.err))
	}

	switch m.state {
	case cachesView:
		return m.caches.View()
	case envsView:
		return m.envs.View()
	case wslView:
		return m.wsl.View()
	case logsView:
		return m.logs.View()
	case backupsView:
		return m.backups.View()
	case feedbackView:
		return m.feedback.View()
	case aboutView:
		return m.about.View()
	case languageView:
		return m.language.View()
	default: // menuView
		return m.menu.View(m.dashboard, m.width, m.height)
	}
}

// formatLabelPadding formats a label/value pair into aligned columns.
func formatLabelPadding(label, value string, labelWidth int) string {
	if labelWidth <= 0 || len(label) >= labelWidth {
		return label + " " + value
	}
	return label + strings.Repeat(" ", labelWidth-len(label)) + " " + value
}

// View renders the main menu and dashboard.
func (m menuModel) View(data dashboardData, width, height int) string {
	title := mainTitleStyle.Render("🧰 " + i18n.T("dashboard.title"))
	subTitle := helpStyle.Render(i18n.T("dashboard.subtitle"))
	header := lipgloss.JoinVertical(lipgloss.Left, title, subTitle)
	if !state.Onboarding.Done() {
		hint := specialStyle.Render(i18n.T("dashboard.first_run_hint"))
		header = lipgloss.JoinVertical(lipgloss.Left, header, hint)
	}

	paneTitleStyle := lipgloss.NewStyle().Bold(true)

	// Menu List (Left Pane)
	var menuItems []string
	menuItems = append(menuItems, paneTitleStyle.Render(i18n.T("menu.navigation")), "")
	for i, choice := range m.choices {
		if m.cursor == i {
			menuItems = append(menuItems, selectedItemStyle.Render("▸ "+choice))
		} else {
			menuItems = append(menuItems, itemStyle.Render("  "+choice))
		}
	}
	menuContent := lipgloss.JoinVertical(lipgloss.Left, menuItems...)

	// Dashboard (Right Pane)
	var dashboardItems []string
	dashboardItems = append(dashboardItems, paneTitleStyle.Render(i18n.T("dashboard.system_status")), "")

	helperStatus := errorStyle.Render(i18n.T("dashboard.helper.unavailable"))
	if data.helperOK {
		helperStatus = successStyle.Render(i18n.T("dashboard.helper.ok", data.helperVersion))
	}

	statusItems := []struct {
		label string
		value string
	}{
		{i18n.T("dashboard.helper"), helperStatus},
		{i18n.T("dashboard.platform"), data.platform},
		{i18n.T("dashboard.caches"), fmt.Sprintf("%d (%s)", data.toolCacheCount, humanBytes(data.cacheTotalSize))},
		{i18n.T("dashboard.distros"), fmt.Sprintf("%d (%d running)", data.distroCount, data.distrosRunning)},
	}

	maxLabelLen := 0
	for _, item := range statusItems {
		if len(item.label) > maxLabelLen {
			maxLabelLen = len(item.label)
		}
	}
	for _, item := range statusItems {
		dashboardItems = append(dashboardItems, formatLabelPadding(item.label, item.value, maxLabelLen))
	}

	// Recent Activity
	dashboardItems = append(dashboardItems, "", "", paneTitleStyle.Render(i18n.T("dashboard.recent_activity")), "")

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footerStyle.Render(""))
	paneHeight := height - headerHeight - footerHeight - 2

	menuWidth := 38
	dashboardWidth := width - 4 - menuWidth - 2

	if len(data.recentActions) == 0 {
		dashboardItems = append(dashboardItems, helpStyle.Render(i18n.T("dashboard.no_recent_activity")))
	} else {
		for _, entry := range data.recentActions {
			ts := entry.Timestamp
			if len(ts) > 16 {
				ts = ts[5:16] // MM-DD HH:MM
			}
			innerWidth := dashboardWidth - 6
			detailsWidth := innerWidth - len(ts) - len(entry.Action) - 2
			if detailsWidth < 10 {
				detailsWidth = 10
			}
			actionCell := actionStyleFor(entry).Render(entry.Action)
			logLine := lipgloss.JoinHorizontal(lipgloss.Left,
				helpStyle.Render(ts), " ", actionCell, " ", helpStyle.Render(truncate(entry.Details, detailsWidth)))
			dashboardItems = append(dashboardItems, logLine)
		}
	}
	dashboardContent := lipgloss.JoinVertical(lipgloss.Left, dashboardItems...)

	leftPane := paneStyle.Width(menuWidth).Height(paneHeight).Render(menuContent)
	rightPane := paneStyle.Width(dashboardWidth).Height(paneHeight).MarginLeft(2).Render(dashboardContent)

	mainArea := lipgloss.JoinHorizontal(lipgloss.Top, leftPane, rightPane)

	footer := footerStyle.Render(AlignFooter(i18n.T("dashboard.footer"), "", width))

	return lipgloss.JoinVertical(lipgloss.Top, header, mainArea, footer)
}

// actionStyleFor color-codes an action log row by what it did and how it went.
func actionStyleFor(entry model.ActionLogEntry) lipgloss.Style {
	if entry.Outcome != "" && entry.Outcome != "ok" {
		return errorStyle
	}
	switch {
	case strings.HasPrefix(entry.Action, "CLEAN"),
		strings.HasPrefix(entry.Action, "DELETE"),
		strings.HasPrefix(entry.Action, "UNINSTALL"):
		return specialStyle
	case strings.HasPrefix(entry.Action, "INSTALL"),
		strings.HasPrefix(entry.Action, "CREATE"),
		strings.HasPrefix(entry.Action, "TRUST"):
		return successStyle
	default:
		return helpStyle
	}
}

// newLanguageModel creates a new model for the language selection view.
func newLanguageModel() languageModel {
	choices := i18n.GetAvailableLocales()

	keys := make([]string, 0, len(choices))
	for k := range choices {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return languageModel{
		choices:     choices,
		orderedKeys: keys,
	}
}

// View for languageModel.
func (m languageModel) View() string {
	title := mainTitleStyle.Render("🌐 " + i18n.T("menu.language"))

	var listItems []string
	listItems = append(listItems, titleStyle.Render(i18n.T("language.select")), "")

	for i, langCode := range m.orderedKeys {
		displayName := m.choices[langCode]
		if m.cursor == i {
			listItems = append(listItems, selectedItemStyle.Render("▸ "+displayName))
		} else {
			listItems = append(listItems, itemStyle.Render("  "+displayName))
		}
	}

	listPane := paneStyle.Width(60).Render(lipgloss.JoinVertical(lipgloss.Left, listItems...))
	helpLine := footerStyle.Render(AlignFooter(i18n.T("language.help"), "", 60))

	return lipgloss.JoinVertical(lipgloss.Left, title, "", listPane, "", helpLine)
}

// Run is the main entrypoint for the TUI. It initializes and runs the Bubble Tea program.
func Run() {
	if _, err := tea.NewProgram(initialModel()).Run(); err != nil {
		logging.Errorf("TUI run error: %v", err)
		os.Exit(1)
	}
}

// refreshDashboardCmd is a tea.Cmd that fetches summary data for the main menu.
func refreshDashboardCmd(b backend.Backend) tea.Cmd {
	return func() tea.Msg {
		data := dashboardData{}

		// Recent local history renders even when the helper is down.
		if db.IsInitialized() {
			if recent, err := db.GetActionLog(5); err == nil {
				data.recentActions = recent
			}
		}

		if b == nil || !b.Available() {
			return dashboardDataMsg{data: data}
		}
		ctx := context.Background()

		if info, err := b.PlatformInfo(ctx); err == nil && info != nil {
			data.helperOK = true
			data.helperVersion = info.HelperVer
			data.platform = fmt.Sprintf("%s/%s", info.OS, info.Arch)
		}
		if caches, err := b.DiscoverToolCaches(ctx); err == nil {
			data.toolCacheCount = len(caches)
			for _, c := range caches {
				data.cacheTotalSize += c.SizeBytes
			}
		}
		if distros, err := b.ListDistros(ctx); err == nil {
			data.distroCount = len(distros)
			for _, d := range distros {
				if d.State == model.DistroRunning {
					data.distrosRunning++
				}
			}
		}
		return dashboardDataMsg{data: data}
	}
}
