// Copyright (c) 2026 Devkeep Authors
// Devkeep - developer machine caretaker
// This source code is licensed under the MIT license found in the LICENSE file.

// Package frame holds small reusable TUI building blocks shared by the
// Devkeep views.
package frame

import (
	"github.com/charmbracelet/lipgloss"
)

// Dialog is a modal confirmation box with a title, message, and two buttons.
// Destructive actions route through one of these before touching the helper.
type Dialog struct {
	title       string
	message     string
	buttonLeft  string
	buttonRight string
	focused     bool // which button is focused (false = left, true = right)
	width       int
}

// NewDialog creates a new dialog with the given title, message, and button labels.
func NewDialog(title, message, buttonLeft, buttonRight string) *Dialog {
	return &Dialog{
		title:       title,
		message:     message,
		buttonLeft:  buttonLeft,
		buttonRight: buttonRight,
		width:       60,
	}
}

// SetWidth sets the dialog width.
func (d *Dialog) SetWidth(width int) {
	d.width = width
}

// FocusRight moves focus to the right button.
func (d *Dialog) FocusRight() {
	d.focused = true
}

// FocusLeft moves focus to the left button.
func (d *Dialog) FocusLeft() {
	d.focused = false
}

// ToggleFocus flips which button is focused.
func (d *Dialog) ToggleFocus() {
	d.focused = !d.focused
}

// IsFocusedRight returns true if the right button is focused.
func (d *Dialog) IsFocusedRight() bool {
	return d.focused
}

// Render produces the dialog box output.
func (d *Dialog) Render() string {
	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("255")).
		Background(lipgloss.Color("60")).
		Bold(true).
		Width(d.width)

	header := headerStyle.Render(" " + d.title)

	messageStyle := lipgloss.NewStyle().
		Width(d.width-4).
		Padding(1, 2, 0, 2)

	message := messageStyle.Render(d.message)

	dialog := lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		message,
		d.renderButtonArea(),
	)

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Width(d.width)

	return boxStyle.Render(dialog)
}

// renderButtonArea produces the button row with the focused button highlighted.
func (d *Dialog) renderButtonArea() string {
	buttonStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("255")).
		Background(lipgloss.Color("239")).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("239")).
		Padding(0, 3, 0, 3)

	leftStyle := buttonStyle
	rightStyle := buttonStyle
	if d.focused {
		rightStyle = rightStyle.
			Background(lipgloss.Color("60")).
			BorderForeground(lipgloss.Color("60"))
	} else {
		leftStyle = leftStyle.
			Background(lipgloss.Color("60")).
			BorderForeground(lipgloss.Color("60"))
	}

	buttonRow := lipgloss.JoinHorizontal(lipgloss.Center,
		leftStyle.Render(d.buttonLeft), "  ", rightStyle.Render(d.buttonRight))

	return lipgloss.NewStyle().Padding(1, 2, 1, 2).Render(buttonRow)
}
