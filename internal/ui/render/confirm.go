// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/critterchat/internal/ui/styles"
)

// Confirmation is a yes/no question guarding an action.
type Confirmation struct {
	Title   string
	Message string
	OnYes   tea.Cmd
}

// Dialog holds at most one confirmation.
type Dialog struct {
	current *Confirmation
}

// Open shows c. It returns false, leaving the open one in place, if a
// confirmation is already showing.
func (d *Dialog) Open(c Confirmation) bool {
	if d.current != nil {
		return false
	}
	d.current = &c
	return true
}

// Active reports whether a confirmation is showing.
func (d *Dialog) Active() bool { return d.current != nil }

// Current returns the showing confirmation.
func (d *Dialog) Current() (Confirmation, bool) {
	if d.current == nil {
		return Confirmation{}, false
	}
	return *d.current, true
}

// Confirm closes the dialog and returns its action.
func (d *Dialog) Confirm() tea.Cmd {
	if d.current == nil {
		return nil
	}
	cmd := d.current.OnYes
	d.current = nil
	return cmd
}

// Cancel closes the dialog without running anything.
func (d *Dialog) Cancel() bool {
	was := d.current != nil
	d.current = nil
	return was
}

// RenderDialog renders the confirmation box, or "" when none is open.
func RenderDialog(theme *styles.Theme, d *Dialog, width int) string {
	c, ok := d.Current()
	if !ok {
		return ""
	}
	inner := lipgloss.JoinVertical(lipgloss.Left,
		theme.DialogTitle.Render(c.Title),
		c.Message,
		"",
		theme.Hint.Render("[y] confirm   [n/esc] cancel"),
	)
	box := theme.Dialog.Render(inner)
	if width > 0 {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, box)
	}
	return box
}
