// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/critterchat/internal/channels"
	"github.com/jeranaias/critterchat/internal/model"
	"github.com/jeranaias/critterchat/internal/ui/render"
	"github.com/jeranaias/critterchat/internal/ui/styles"
)

// =============================================================================
// FRIENDS PANE STATE
// =============================================================================

// friendsPane is the friends tab: pending requests above the friend list,
// with one cursor across both.
type friendsPane struct {
	requests []model.FriendRequest
	cursor   int
	loaded   bool
	loading  bool
	// A reload was requested while a load was in flight; that load's
	// result predates the request and is discarded.
	stale bool
}

// friendRow is one selectable line: a request or a friend.
type friendRow struct {
	request *model.FriendRequest
	friend  *model.Friend
}

func (m *Model) friendRows() []friendRow {
	friends := m.presence.Friends()
	rows := make([]friendRow, 0, len(m.friends.requests)+len(friends))
	for i := range m.friends.requests {
		rows = append(rows, friendRow{request: &m.friends.requests[i]})
	}
	for i := range friends {
		rows = append(rows, friendRow{friend: &friends[i]})
	}
	return rows
}

func (m *Model) selectedRow() (friendRow, bool) {
	rows := m.friendRows()
	if len(rows) == 0 {
		return friendRow{}, false
	}
	m.friends.cursor = min(max(m.friends.cursor, 0), len(rows)-1)
	return rows[m.friends.cursor], true
}

// refreshFriendsTab repaints the friends tab if it is showing.
func (m *Model) refreshFriendsTab() tea.Cmd {
	if !m.onFriendsTab() {
		return nil
	}
	return m.engine.Schedule(false)
}

// =============================================================================
// KEYS
// =============================================================================

func (m *Model) handleFriendsKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.friends.cursor--
		m.selectedRow()
		return m.engine.Schedule(true)

	case key.Matches(msg, m.keys.Down):
		m.friends.cursor++
		m.selectedRow()
		return m.engine.Schedule(true)

	case key.Matches(msg, m.keys.Reload):
		return m.loadFriendsCmd()
	}

	row, ok := m.selectedRow()
	if !ok || !m.directoryReady() {
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.Accept):
		if r := row.request; r != nil && r.CanAccept() {
			return m.friendActionCmd(actionAccept, r.Counterpart(), r.ID, m.dir.AcceptRequest)
		}

	case key.Matches(msg, m.keys.Reject):
		if r := row.request; r != nil {
			switch {
			case r.CanReject():
				return m.friendActionCmd(actionReject, r.Counterpart(), r.ID, m.dir.RejectRequest)
			case r.CanCancel():
				return m.friendActionCmd(actionCancel, r.Counterpart(), r.ID, m.dir.CancelRequest)
			}
		}

	case key.Matches(msg, m.keys.Remove):
		if f := row.friend; f != nil {
			m.engine.Dialog().Open(render.Confirmation{
				Title:   "Remove friend",
				Message: fmt.Sprintf("Remove %s from your friends?", f.FriendName),
				OnYes:   m.friendActionCmd(actionRemove, f.FriendName, f.FriendID, m.dir.RemoveFriend),
			})
		}

	case key.Matches(msg, m.keys.Whisper):
		name := ""
		if row.friend != nil {
			name = row.friend.FriendName
		} else if row.request != nil {
			name = row.request.Counterpart()
		}
		if tab, _ := m.tabs.EnsureWhisperTab(name); tab != nil {
			_ = m.tabs.SelectTab(tab.ID())
			return m.onTabChanged()
		}
	}
	return nil
}

// =============================================================================
// DIRECTORY COMMANDS
// =============================================================================

func (m *Model) directoryReady() bool {
	return m.dir != nil && m.dir.IsConfigured()
}

// loadFriendsCmd reconciles friends and requests from the directory.
func (m *Model) loadFriendsCmd() tea.Cmd {
	if !m.directoryReady() {
		return nil
	}
	if m.friends.loading {
		m.friends.stale = true
		return nil
	}
	m.friends.loading = true

	dir, ctx := m.dir, m.ctx
	return func() tea.Msg {
		friends, err := dir.ListFriends(ctx)
		if err != nil {
			return friendsLoadedMsg{err: err}
		}
		requests, err := dir.ListRequests(ctx)
		if err != nil {
			return friendsLoadedMsg{err: err}
		}
		return friendsLoadedMsg{friends: friends, requests: requests}
	}
}

// friendActionCmd runs one directory mutation. The model is not touched
// until the result arrives.
func (m *Model) friendActionCmd(action friendAction, subject string, id int64, call func(context.Context, int64) error) tea.Cmd {
	if !m.directoryReady() {
		m.notify("Friend directory is not configured", true)
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		return friendActionMsg{action: action, subject: subject, id: id, err: call(ctx, id)}
	}
}

func (m *Model) sendFriendRequest(username string) tea.Cmd {
	if !m.directoryReady() {
		m.notify("Friend directory is not configured", true)
		return nil
	}
	if model.SameName(username, m.tabs.LocalUser()) {
		m.notify("You cannot befriend yourself", false)
		return nil
	}
	if m.presence.IsFriend(username) {
		m.notify(username+" is already your friend", false)
		return nil
	}
	dir, ctx := m.dir, m.ctx
	return func() tea.Msg {
		return friendActionMsg{action: actionSendRequest, subject: username, err: dir.SendRequest(ctx, username)}
	}
}

// =============================================================================
// RESULTS
// =============================================================================

func (m *Model) handleFriendsLoaded(msg friendsLoadedMsg) tea.Cmd {
	m.friends.loading = false
	if m.friends.stale {
		m.friends.stale = false
		m.log.Debug().Msg("discarding friends load that predates a change")
		return m.loadFriendsCmd()
	}
	if msg.err != nil {
		m.log.Error().Err(msg.err).Msg("friend directory load failed")
		m.notify("Could not load friends: "+msg.err.Error(), true)
		return nil
	}

	m.presence.SetFriends(msg.friends)
	m.friends.requests = msg.requests
	m.friends.loaded = true
	m.selectedRow()
	m.log.Debug().Int("friends", len(msg.friends)).Int("requests", len(msg.requests)).Msg("friends reconciled")
	return m.refreshFriendsTab()
}

func (m *Model) handleFriendAction(msg friendActionMsg) tea.Cmd {
	if msg.err != nil {
		m.log.Error().Err(msg.err).Str("action", msg.action.String()).Str("subject", msg.subject).Msg("friend directory call failed")
		m.notify(fmt.Sprintf("Could not %s %s: %v", msg.action, msg.subject, msg.err), true)
		return nil
	}

	switch msg.action {
	case actionSendRequest:
		m.notify("Friend request sent to "+msg.subject, false)
	case actionAccept:
		m.notify("You are now friends with "+msg.subject, false)
	case actionReject:
		m.notify("Declined "+msg.subject, false)
	case actionCancel:
		m.notify("Cancelled request to "+msg.subject, false)
	case actionRemove:
		m.presence.RemoveFriend(msg.id)
		m.notify("Removed "+msg.subject, false)
	}
	return tea.Batch(m.refreshFriendsTab(), m.loadFriendsCmd())
}

// =============================================================================
// RENDERING
// =============================================================================

// renderFriends draws the friends tab body. It only reads state.
func (m *Model) renderFriends(_ *channels.Tab, width int) string {
	t := m.theme
	if !m.directoryReady() {
		return t.Hint.Render("Friend directory is not configured.")
	}
	if !m.friends.loaded {
		return t.Hint.Render("Loading friends…")
	}

	rows := m.friendRows()
	cursor := min(max(m.friends.cursor, 0), len(rows)-1)

	var b strings.Builder
	line := func(i int, text string) {
		style := t.ListItem
		if i == cursor {
			style = t.ListSelected
		}
		if width > 0 {
			style = style.MaxWidth(width)
		}
		b.WriteString(style.Render(text))
		b.WriteByte('\n')
	}

	b.WriteString(t.SectionTitle.Render(fmt.Sprintf("Requests (%d)", len(m.friends.requests))))
	b.WriteByte('\n')
	i := 0
	for ; i < len(rows) && rows[i].request != nil; i++ {
		r := rows[i].request
		if r.Direction == model.DirectionSent {
			line(i, "→ "+r.Counterpart()+"  (x cancel)")
		} else {
			line(i, "← "+r.Counterpart()+"  (a accept, x reject)")
		}
	}
	if len(m.friends.requests) == 0 {
		b.WriteString(t.Hint.Render("No pending requests"))
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	friends := len(rows) - len(m.friends.requests)
	b.WriteString(t.SectionTitle.Render(fmt.Sprintf("Friends (%d)", friends)))
	b.WriteByte('\n')
	for ; i < len(rows); i++ {
		f := rows[i].friend
		status := t.Offline.Render(styles.StatusIndicators.Offline)
		if f.IsOnline {
			status = t.Online.Render(styles.StatusIndicators.Online)
		}
		line(i, status+" "+f.FriendName)
	}
	if friends == 0 {
		b.WriteString(t.Hint.Render("No friends yet. Add one with " + m.parser.Prefix() + "friend <name>"))
	}
	return strings.TrimRight(b.String(), "\n")
}
