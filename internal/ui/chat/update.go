// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/critterchat/internal/channels"
	"github.com/jeranaias/critterchat/internal/commands"
	"github.com/jeranaias/critterchat/internal/model"
	"github.com/jeranaias/critterchat/internal/transport"
	"github.com/jeranaias/critterchat/internal/ui/render"
)

// =============================================================================
// UPDATE
// =============================================================================

// Update handles every message of the subsystem.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if cmd, ok := m.engine.Update(msg); ok {
		cmds = append(cmds, cmd)
	} else {
		switch msg := msg.(type) {
		case tea.WindowSizeMsg:
			m.input.Width = max(10, msg.Width-4)
			cmds = append(cmds, m.engine.SetSize(msg.Width, msg.Height))

		case tea.KeyMsg:
			cmds = append(cmds, m.handleKey(msg))

		case tea.MouseMsg:
			cmds = append(cmds, m.engine.HandleMouse(msg))

		case TransportEventMsg:
			cmds = append(cmds, m.handleEvent(msg.Event))

		case connectResultMsg:
			m.handleConnectResult(msg.err)

		case friendsLoadedMsg:
			cmds = append(cmds, m.handleFriendsLoaded(msg))

		case friendActionMsg:
			cmds = append(cmds, m.handleFriendAction(msg))

		case ConfigReloadedMsg:
			m.applyConfig(msg)

		default:
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	cmds = append(cmds, m.drain()...)
	return m, tea.Batch(cmds...)
}

// =============================================================================
// TRANSPORT EVENTS
// =============================================================================

func (m *Model) handleEvent(ev transport.Event) tea.Cmd {
	switch ev := ev.(type) {
	case transport.ConnectedEvent:
		m.log.Info().Str("endpoint", ev.Endpoint).Str("username", ev.Username).Msg("connected")
		if ev.Username != "" && !model.SameName(ev.Username, m.tabs.LocalUser()) {
			m.log.Warn().Str("server", ev.Username).Str("local", m.tabs.LocalUser()).Msg("server identity differs from configured username")
		}
		// Reselecting the active tab joins its channel if it is empty.
		_ = m.tabs.SelectTab(m.tabs.ActiveID())
		m.notify("Connected", false)
		return m.loadFriendsCmd()

	case transport.DisconnectedEvent:
		m.log.Info().Str("reason", ev.Reason).Msg("disconnected")
		m.presence.Reset()
		// The next session has no channel subscriptions. Emptied tabs
		// rejoin through SelectTab once connected again.
		m.tabs.ClearAll()
		m.notify("Disconnected: "+ev.Reason, true)
		return m.engine.Schedule(true)

	case transport.MessageEvent:
		return m.addMessage(ev.Message)

	case transport.ChannelHistoryEvent:
		// Only live messages populate tabs.
		m.log.Debug().Str("channel", ev.Channel).Int("messages", len(ev.Messages)).Msg("channel history ignored")
		return nil

	case transport.UserJoinedEvent:
		m.presence.UserJoined(ev.Username)
		return m.refreshFriendsTab()

	case transport.UserLeftEvent:
		m.presence.UserLeft(ev.Username)
		return m.refreshFriendsTab()

	case transport.FriendOnlineEvent:
		m.presence.FriendOnline(ev.Username)
		return m.refreshFriendsTab()

	case transport.FriendOfflineEvent:
		m.presence.FriendOffline(ev.Username)
		return m.refreshFriendsTab()

	case transport.FriendUpdateEvent:
		if text := friendUpdateText(ev); text != "" {
			m.notify(text, false)
		}
		return m.loadFriendsCmd()

	case transport.ErrorEvent:
		m.log.Warn().Str("message", ev.Message).Msg("server error")
		m.notify(ev.Message, true)
		return m.addMessage(model.NewErrorMessage(ev.Message))
	}
	return nil
}

func (m *Model) handleConnectResult(err error) {
	switch {
	case err == nil:
	case errors.Is(err, transport.ErrAuthFailed):
		m.log.Error().Err(err).Msg("authentication failed")
		m.notify("Authentication failed", true)
	default:
		m.log.Warn().Err(err).Msg("connect failed")
		m.notify("Could not reach chat server, retrying", true)
	}
}

// addMessage routes msg into the tab model and updates the view.
func (m *Model) addMessage(msg model.ChatMessage) tea.Cmd {
	msg = msg.Normalize()
	res := m.tabs.AddMessage(msg)
	var focus tea.Cmd
	if res.Created {
		focus = m.syncFocus()
	}
	return tea.Batch(focus, m.engine.MessageAdded(msg, res))
}

// friendUpdateText describes a directory change pushed by the server.
func friendUpdateText(ev transport.FriendUpdateEvent) string {
	who := ev.Username
	if who == "" {
		who = "Someone"
	}
	switch ev.Type {
	case "request_received":
		return "Friend request from " + who
	case "request_accepted":
		return who + " accepted your friend request"
	case "request_rejected":
		return who + " declined your friend request"
	case "friend_removed":
		return who + " is no longer your friend"
	default:
		return ""
	}
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Quit) {
		return tea.Quit
	}

	if d := m.engine.Dialog(); d.Active() {
		switch {
		case key.Matches(msg, m.keys.Yes):
			return d.Confirm()
		case key.Matches(msg, m.keys.No):
			d.Cancel()
		}
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.Collapse):
		m.tabs.SetCollapsed(!m.tabs.Collapsed())
		if !m.tabs.Collapsed() {
			return m.engine.Schedule(true)
		}
		return nil

	case key.Matches(msg, m.keys.TabLeft):
		return m.switchTab(-1)

	case key.Matches(msg, m.keys.TabRight):
		return m.switchTab(1)

	case key.Matches(msg, m.keys.CloseTab):
		return m.closeActiveTab()

	case key.Matches(msg, m.keys.PageUp):
		m.engine.PageUp()
		return nil

	case key.Matches(msg, m.keys.PageDown):
		m.engine.PageDown()
		return nil

	case key.Matches(msg, m.keys.Bottom):
		m.engine.ScrollToBottom()
		return nil
	}

	if m.onFriendsTab() {
		return m.handleFriendsKey(msg)
	}

	if ac := m.engine.Autocomplete(); ac.Active() {
		switch {
		case key.Matches(msg, m.keys.Next, m.keys.Down):
			ac.Next()
			return nil
		case key.Matches(msg, m.keys.Prev, m.keys.Up):
			ac.Prev()
			return nil
		case key.Matches(msg, m.keys.Submit):
			m.acceptSuggestion()
			return nil
		case key.Matches(msg, m.keys.Dismiss):
			ac.Close()
			return nil
		}
	}

	switch {
	case key.Matches(msg, m.keys.Submit):
		return m.submit()

	case key.Matches(msg, m.keys.Next):
		m.completeCommand()
		return nil

	case key.Matches(msg, m.keys.Up):
		m.engine.ScrollBy(-1)
		return nil

	case key.Matches(msg, m.keys.Down):
		m.engine.ScrollBy(1)
		return nil
	}

	return m.updateInput(msg)
}

// updateInput forwards msg to the text input and refreshes the
// autocomplete dropdown when the text changes.
func (m *Model) updateInput(msg tea.Msg) tea.Cmd {
	before := m.input.Value()
	beforePos := m.input.Position()

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	if m.input.Value() != before {
		cmd = tea.Batch(cmd, m.engine.MarkTyping())
	}
	if m.input.Value() != before || m.input.Position() != beforePos {
		m.refreshAutocomplete()
	}
	return cmd
}

func (m *Model) refreshAutocomplete() {
	candidates := append(m.tabs.SeenNames(), m.presence.OnlineUsers()...)
	m.engine.Autocomplete().Update(m.input.Value(), m.input.Position(), candidates, m.tabs.LocalUser())
}

func (m *Model) acceptSuggestion() {
	value, pos, ok := m.engine.Autocomplete().Accept(m.input.Value(), m.input.Position())
	if !ok {
		return
	}
	m.input.SetValue(value)
	m.input.SetCursor(pos)
}

// completeCommand completes a partially typed command name.
func (m *Model) completeCommand() {
	partial, ok := m.parser.PartialCommand(m.input.Value())
	if !ok || partial == "" {
		return
	}
	matches := m.parser.Registry().Complete(partial)
	switch len(matches) {
	case 0:
	case 1:
		m.input.SetValue(m.parser.Prefix() + matches[0] + " ")
		m.input.CursorEnd()
	default:
		names := make([]string, len(matches))
		for i, name := range matches {
			names[i] = m.parser.Prefix() + name
		}
		m.notify(strings.Join(names, "  "), false)
	}
}

// =============================================================================
// TABS
// =============================================================================

func (m *Model) switchTab(delta int) tea.Cmd {
	if err := m.tabs.SelectNext(delta); err != nil {
		m.log.Debug().Err(err).Msg("tab switch failed")
		return nil
	}
	return m.onTabChanged()
}

func (m *Model) closeActiveTab() tea.Cmd {
	if err := m.tabs.CloseTab(m.tabs.ActiveID()); err != nil {
		if errors.Is(err, channels.ErrNotClosable) {
			m.notify("Only whisper tabs can be closed", false)
		}
		return nil
	}
	return m.onTabChanged()
}

// onTabChanged moves focus and repaints after the active tab changes.
func (m *Model) onTabChanged() tea.Cmd {
	return tea.Batch(m.syncFocus(), m.engine.Schedule(true))
}

// syncFocus gives the input focus on chat tabs and takes it away on the
// friends tab, whose keys are shortcuts.
func (m *Model) syncFocus() tea.Cmd {
	m.engine.Autocomplete().Close()
	if !m.onFriendsTab() {
		m.input.Focus()
		return nil
	}
	m.input.Blur()
	if !m.friends.loaded {
		return m.loadFriendsCmd()
	}
	return nil
}

func (m *Model) onFriendsTab() bool {
	t := m.tabs.Active()
	return t != nil && t.Kind() == model.KindFriends
}

// =============================================================================
// SUBMIT
// =============================================================================

func (m *Model) submit() tea.Cmd {
	intent, err := m.parser.Parse(m.input.Value())
	if err != nil {
		m.notify(err.Error(), true)
		return nil
	}
	if intent == nil {
		return nil
	}
	m.input.Reset()
	m.engine.Autocomplete().Close()

	switch it := intent.(type) {
	case commands.PlainText:
		return m.sendToActive(it.Body)
	case commands.ChannelMessage:
		return m.sendChannel(it.Channel, it.Body)
	case commands.Whisper:
		return m.sendWhisper(it.Target, it.Body)
	case commands.AddFriend:
		return m.sendFriendRequest(it.Username)
	case commands.Help:
		var cmds []tea.Cmd
		for _, line := range m.parser.Registry().HelpLines(m.parser.Prefix()) {
			cmds = append(cmds, m.addMessage(model.NewSystemMessage(line)))
		}
		return tea.Batch(cmds...)
	}
	return nil
}

func (m *Model) sendToActive(body string) tea.Cmd {
	tab := m.tabs.Active()
	switch {
	case tab == nil:
		return nil
	case tab.Kind() == model.KindWhisper:
		return m.sendWhisper(tab.WhisperTarget(), body)
	case tab.Kind().IsBroadcast():
		return m.sendChannel(tab.Kind().String(), body)
	default:
		m.notify("Pick a chat tab to send messages", false)
		return nil
	}
}

func (m *Model) sendChannel(channel, body string) tea.Cmd {
	if !m.Connected() {
		m.warnNotConnected("channel", channel)
		return nil
	}
	m.reportSendError(m.transport.SendChannelMessage(channel, body), "channel", channel)
	return nil
}

// sendWhisper sends to target, opening its tab first. Nothing is sent
// and no tab is opened while disconnected or if target is unreachable.
func (m *Model) sendWhisper(target, body string) tea.Cmd {
	if !m.Connected() {
		m.warnNotConnected("whisper", target)
		return nil
	}
	tab, created := m.tabs.EnsureWhisperTab(target)
	if tab == nil {
		return nil
	}
	m.reportSendError(m.transport.SendWhisper(tab.WhisperTarget(), body), "whisper", target)
	if created || m.tabs.ActiveID() != tab.ID() {
		_ = m.tabs.SelectTab(tab.ID())
		return m.onTabChanged()
	}
	return nil
}

func (m *Model) warnNotConnected(kind, to string) {
	m.log.Warn().Str("kind", kind).Str("to", to).Msg("send dropped while disconnected")
	m.notify("Not connected: message not sent", false)
}

func (m *Model) reportSendError(err error, kind, to string) {
	if err == nil {
		return
	}
	m.log.Warn().Err(err).Str("kind", kind).Str("to", to).Msg("send failed")
	switch {
	case errors.Is(err, transport.ErrNotConnected):
		m.notify("Not connected: message not sent", false)
	case errors.Is(err, transport.ErrRateLimited):
		m.notify("You are sending messages too quickly", true)
	default:
		m.notify(fmt.Sprintf("Message not sent: %v", err), true)
	}
}

// =============================================================================
// CONFIG RELOAD
// =============================================================================

func (m *Model) applyConfig(msg ConfigReloadedMsg) {
	if msg.Config == nil {
		return
	}
	c := msg.Config.Chat
	m.engine.ApplyTiming(render.Timing{
		Debounce:        c.Debounce.Duration,
		NearBottomLines: c.NearBottomLines,
		PreserveRelease: c.PreserveScrollRelease.Duration,
		InfoDuration:    c.InfoNotification.Duration,
		ErrorDuration:   c.ErrorNotification.Duration,
	})
	m.cfg.Chat.Debounce = c.Debounce
	m.cfg.Chat.NearBottomLines = c.NearBottomLines
	m.cfg.Chat.PreserveScrollRelease = c.PreserveScrollRelease
	m.cfg.Chat.InfoNotification = c.InfoNotification
	m.cfg.Chat.ErrorNotification = c.ErrorNotification

	m.log.Info().Msg("configuration reloaded")
	m.notify("Configuration reloaded", false)
}
