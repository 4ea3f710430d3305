// Copyright (c) 2026 Devkeep Authors
// Devkeep - developer machine caretaker
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/devkeep/devkeep/internal/backend"
	"github.com/devkeep/devkeep/internal/db"
	"github.com/devkeep/devkeep/internal/i18n"
	"github.com/devkeep/devkeep/internal/model"
	"github.com/google/uuid"
)

// feedbackCategories are the selectable report categories.
var feedbackCategories = []string{"bug", "feature", "performance", "other"}

type feedbackSubmittedMsg struct {
	fb     model.Feedback
	queued bool
	err    error
}

type queueFlushedMsg struct {
	sent int
	left int
	err  error
}

type pendingLoadedMsg struct {
	count int
}

type feedbackFocus int

const (
	categoryFocus feedbackFocus = iota
	messageFocus
	contactFocus
)

// feedbackModel is the model for the feedback form.
type feedbackModel struct {
	backend backend.Backend

	category int
	message  textarea.Model
	contact  textinput.Model
	focus    feedbackFocus

	pendingCount int
	busy         bool
	status       string

	width, height int
}

func newFeedbackModel(b backend.Backend) *feedbackModel {
	ta := textarea.New()
	ta.Placeholder = i18n.T("feedback.message_placeholder")
	ta.SetWidth(60)
	ta.SetHeight(6)
	ta.CharLimit = 4000

	ti := textinput.New()
	ti.Placeholder = i18n.T("feedback.contact_placeholder")
	ti.Width = 60
	ti.CharLimit = 200

	return &feedbackModel{
		backend: b,
		message: ta,
		contact: ti,
	}
}

func (m *feedbackModel) Init() tea.Cmd {
	return m.loadPendingCmd()
}

func (m *feedbackModel) loadPendingCmd() tea.Cmd {
	return func() tea.Msg {
		pending, err := db.PendingFeedback()
		if err != nil {
			return pendingLoadedMsg{}
		}
		return pendingLoadedMsg{count: len(pending)}
	}
}

// submitCmd sends the report; if the helper is unreachable or submission
// fails, the report lands in the local queue instead of being lost.
func (m *feedbackModel) submitCmd(fb model.Feedback) tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		if b != nil && b.Available() {
			if err := b.SubmitFeedback(context.Background(), fb); err == nil {
				return feedbackSubmittedMsg{fb: fb}
			}
		}
		if err := db.EnqueueFeedback(fb); err != nil {
			return feedbackSubmittedMsg{fb: fb, err: err}
		}
		return feedbackSubmittedMsg{fb: fb, queued: true}
	}
}

// flushQueueCmd retries every queued report, removing the ones that go
// through.
func (m *feedbackModel) flushQueueCmd() tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		pending, err := db.PendingFeedback()
		if err != nil {
			return queueFlushedMsg{err: err}
		}
		if b == nil || !b.Available() {
			return queueFlushedMsg{left: len(pending), err: backend.ErrUnavailable}
		}
		sent := 0
		for _, fb := range pending {
			if err := b.SubmitFeedback(context.Background(), fb); err != nil {
				break
			}
			if err := db.DeleteFeedback(fb.ID); err != nil {
				break
			}
			sent++
		}
		return queueFlushedMsg{sent: sent, left: len(pending) - sent}
	}
}

func (m *feedbackModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case pendingLoadedMsg:
		m.pendingCount = msg.count
		return m, nil

	case feedbackSubmittedMsg:
		m.busy = false
		if msg.err != nil {
			m.status = errorStyle.Render(i18n.T("feedback.status.failed", msg.err))
			_ = db.LogAction("SUBMIT_FEEDBACK", msg.fb.Category, "error")
			return m, nil
		}
		m.message.Reset()
		m.contact.Reset()
		if msg.queued {
			m.status = specialStyle.Render(i18n.T("feedback.status.queued"))
			_ = db.LogAction("QUEUE_FEEDBACK", msg.fb.Category, "ok")
		} else {
			m.status = statusMessageStyle.Render(i18n.T("feedback.status.sent"))
			_ = db.LogAction("SUBMIT_FEEDBACK", msg.fb.Category, "ok")
		}
		return m, m.loadPendingCmd()

	case queueFlushedMsg:
		m.busy = false
		if msg.err == backend.ErrUnavailable {
			m.status = errorStyle.Render(i18n.T("backend.unavailable"))
			return m, nil
		}
		if msg.err != nil {
			m.status = errorStyle.Render(i18n.T("feedback.status.failed", msg.err))
			return m, nil
		}
		m.status = statusMessageStyle.Render(i18n.T("feedback.status.flushed", msg.sent, msg.left))
		_ = db.LogAction("FLUSH_FEEDBACK", fmt.Sprintf("sent=%d left=%d", msg.sent, msg.left), "ok")
		return m, m.loadPendingCmd()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateInputs(msg)
}

func (m *feedbackModel) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.message, cmd = m.message.Update(msg)
	cmds = append(cmds, cmd)
	m.contact, cmd = m.contact.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *feedbackModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if m.focus != categoryFocus {
			m.focus = categoryFocus
			m.message.Blur()
			m.contact.Blur()
			return m, nil
		}
		return m, func() tea.Msg { return backToMenuMsg{} }
	case "tab":
		return m.cycleFocus()
	case "ctrl+s":
		return m.submit()
	case "ctrl+r":
		if !m.busy && m.pendingCount > 0 {
			m.busy = true
			return m, m.flushQueueCmd()
		}
		return m, nil
	}

	switch m.focus {
	case categoryFocus:
		switch msg.String() {
		case "q":
			return m, func() tea.Msg { return backToMenuMsg{} }
		case "up", "k", "left", "h":
			if m.category > 0 {
				m.category--
			}
			return m, nil
		case "down", "j", "right", "l":
			if m.category < len(feedbackCategories)-1 {
				m.category++
			}
			return m, nil
		case "enter":
			return m.cycleFocus()
		}
		return m, nil
	case messageFocus:
		var cmd tea.Cmd
		m.message, cmd = m.message.Update(msg)
		return m, cmd
	case contactFocus:
		if msg.String() == "enter" {
			return m.submit()
		}
		var cmd tea.Cmd
		m.contact, cmd = m.contact.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *feedbackModel) cycleFocus() (tea.Model, tea.Cmd) {
	m.message.Blur()
	m.contact.Blur()
	switch m.focus {
	case categoryFocus:
		m.focus = messageFocus
		return m, m.message.Focus()
	case messageFocus:
		m.focus = contactFocus
		return m, m.contact.Focus()
	default:
		m.focus = categoryFocus
		return m, nil
	}
}

func (m *feedbackModel) submit() (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	text := strings.TrimSpace(m.message.Value())
	if text == "" {
		m.status = errorStyle.Render(i18n.T("feedback.status.empty"))
		return m, nil
	}
	fb := model.Feedback{
		ID:       uuid.NewString(),
		Category: feedbackCategories[m.category],
		Message:  text,
		Contact:  strings.TrimSpace(m.contact.Value()),
	}
	m.busy = true
	return m, m.submitCmd(fb)
}

func (m *feedbackModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("💬 "+i18n.T("feedback.title")) + "\n\n")

	b.WriteString(i18n.T("feedback.category") + "\n")
	for i, cat := range feedbackCategories {
		label := i18n.T("feedback.category." + cat)
		if i == m.category {
			if m.focus == categoryFocus {
				b.WriteString(selectedItemStyle.Render("> "+label) + "\n")
			} else {
				b.WriteString(itemStyle.Render("* "+label) + "\n")
			}
		} else {
			b.WriteString(itemStyle.Render("  "+label) + "\n")
		}
	}

	b.WriteString("\n" + i18n.T("feedback.message") + "\n")
	b.WriteString(m.message.View() + "\n\n")
	b.WriteString(i18n.T("feedback.contact") + "\n")
	b.WriteString(m.contact.View() + "\n\n")

	if m.pendingCount > 0 {
		b.WriteString(specialStyle.Render(i18n.T("feedback.pending", m.pendingCount)) + "\n")
	}
	if m.status != "" {
		b.WriteString(m.status + "\n")
	}
	if m.busy {
		b.WriteString(busyStyle.Render(i18n.T("busy")) + "\n")
	}
	b.WriteString(helpStyle.Render("\n" + i18n.T("feedback.footer")))
	return b.String()
}
