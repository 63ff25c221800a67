// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import "github.com/charmbracelet/bubbles/key"

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines the keyboard bindings of the chat view.
type KeyMap struct {
	Submit   key.Binding
	Next     key.Binding
	Prev     key.Binding
	Up       key.Binding
	Down     key.Binding
	Dismiss  key.Binding
	TabLeft  key.Binding
	TabRight key.Binding
	CloseTab key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Bottom   key.Binding
	Collapse key.Binding
	Quit     key.Binding

	// Friends tab
	Reload  key.Binding
	Accept  key.Binding
	Reject  key.Binding
	Remove  key.Binding
	Whisper key.Binding

	// Confirmation dialog
	Yes key.Binding
	No  key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send / accept suggestion"),
		),
		Next: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next suggestion"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous suggestion"),
		),
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "down"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
		TabLeft: key.NewBinding(
			key.WithKeys("ctrl+left"),
			key.WithHelp("C-←", "previous tab"),
		),
		TabRight: key.NewBinding(
			key.WithKeys("ctrl+right"),
			key.WithHelp("C-→", "next tab"),
		),
		CloseTab: key.NewBinding(
			key.WithKeys("ctrl+w"),
			key.WithHelp("C-w", "close whisper"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("PgUp", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("PgDn", "page down"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("end"),
			key.WithHelp("End", "newest"),
		),
		Collapse: key.NewBinding(
			key.WithKeys("ctrl+e"),
			key.WithHelp("C-e", "collapse"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("C-c", "quit"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		Accept: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "accept request"),
		),
		Reject: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "reject / cancel request"),
		),
		Remove: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "remove friend"),
		),
		Whisper: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "whisper"),
		),
		Yes: key.NewBinding(
			key.WithKeys("y", "enter"),
			key.WithHelp("y", "confirm"),
		),
		No: key.NewBinding(
			key.WithKeys("n", "esc"),
			key.WithHelp("n", "cancel"),
		),
	}
}

// ShortHelp returns the bindings shown in the status line.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.TabLeft, k.TabRight, k.Collapse, k.Quit}
}

// FullHelp returns all bindings, grouped.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Submit, k.Next, k.Prev, k.Dismiss},
		{k.TabLeft, k.TabRight, k.CloseTab, k.Collapse},
		{k.PageUp, k.PageDown, k.Bottom, k.Quit},
		{k.Reload, k.Accept, k.Reject, k.Remove, k.Whisper},
	}
}
