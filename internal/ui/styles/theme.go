// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jeranaias/critterchat/internal/model"
)

// Theme holds the styled components of the chat view.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// TAB BAR STYLES
	// ==========================================================================

	TabBar      lipgloss.Style
	Tab         lipgloss.Style
	TabActive   lipgloss.Style
	UnreadBadge lipgloss.Style

	// ==========================================================================
	// MESSAGE STYLES
	// ==========================================================================

	Timestamp lipgloss.Style
	Sender    lipgloss.Style
	Body      lipgloss.Style

	// ==========================================================================
	// INPUT AND DROPDOWN STYLES
	// ==========================================================================

	InputPrompt        lipgloss.Style
	Dropdown           lipgloss.Style
	DropdownItem       lipgloss.Style
	DropdownSelected   lipgloss.Style
	StatusConnected    lipgloss.Style
	StatusDisconnected lipgloss.Style
	Hint               lipgloss.Style

	// ==========================================================================
	// OVERLAY STYLES
	// ==========================================================================

	Notification      lipgloss.Style
	NotificationError lipgloss.Style
	Dialog            lipgloss.Style
	DialogTitle       lipgloss.Style

	// ==========================================================================
	// FRIENDS TAB STYLES
	// ==========================================================================

	SectionTitle lipgloss.Style
	ListItem     lipgloss.Style
	ListSelected lipgloss.Style
	Online       lipgloss.Style
	Offline      lipgloss.Style
}

// NewTheme creates a new theme with all styles configured.
func NewTheme() *Theme {
	colorProfile := termenv.ColorProfile()

	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.TabBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(Overlay)
	t.Tab = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Padding(0, 1)
	t.TabActive = t.Tab.
		Foreground(TextInverse).
		Background(Cyan).
		Bold(true)
	t.UnreadBadge = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Rose).
		Bold(true)

	t.Timestamp = lipgloss.NewStyle().Foreground(TextMuted)
	t.Sender = lipgloss.NewStyle().Bold(true)
	t.Body = lipgloss.NewStyle()

	t.InputPrompt = lipgloss.NewStyle().Foreground(Cyan).Bold(true)
	t.Dropdown = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Padding(0, 1)
	t.DropdownItem = lipgloss.NewStyle().Foreground(TextPrimary)
	t.DropdownSelected = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(SelectionBg).
		Bold(true)
	t.StatusConnected = lipgloss.NewStyle().Foreground(Emerald)
	t.StatusDisconnected = lipgloss.NewStyle().Foreground(Rose)
	t.Hint = lipgloss.NewStyle().Foreground(TextMuted).Italic(true)

	t.Notification = lipgloss.NewStyle().
		Background(SurfaceDim).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Cyan).
		Padding(0, 1)
	t.NotificationError = t.Notification.BorderForeground(Rose)
	t.Dialog = lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(Amber).
		Padding(0, 2)
	t.DialogTitle = lipgloss.NewStyle().Foreground(Amber).Bold(true)

	t.SectionTitle = lipgloss.NewStyle().Foreground(Purple).Bold(true).Underline(true)
	t.ListItem = lipgloss.NewStyle().Foreground(TextPrimary).PaddingLeft(2)
	t.ListSelected = t.ListItem.Background(SelectionBg).Bold(true)
	t.Online = lipgloss.NewStyle().Foreground(Emerald)
	t.Offline = lipgloss.NewStyle().Foreground(TextMuted)
}

// MessageBody returns the body style for a message color.
func (t *Theme) MessageBody(c model.Color) lipgloss.Style {
	return t.Body.Foreground(MessageColor(c))
}

// MessageSender returns the sender style for a message color.
func (t *Theme) MessageSender(c model.Color) lipgloss.Style {
	return t.Sender.Foreground(MessageColor(c))
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	return LayoutWide
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns: timestamps hidden
	LayoutWide                     // >= 60 columns
)
