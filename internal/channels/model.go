// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package channels

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jeranaias/critterchat/internal/logging"
	"github.com/jeranaias/critterchat/internal/model"
)

// DefaultCapacity is the per-tab message limit.
const DefaultCapacity = 100

var (
	ErrUnknownTab  = errors.New("no such tab")
	ErrNotClosable = errors.New("tab cannot be closed")
)

// Joiner subscribes the connection to a server channel.
type Joiner interface {
	IsConnected() bool
	JoinChannel(name string) error
}

// Reachability answers whether a whisper target is online.
type Reachability interface {
	IsReachable(name string) bool
}

// Notifier surfaces a transient message to the user.
type Notifier interface {
	Notify(msg string, isError bool)
}

// Options configures a Model.
type Options struct {
	// LocalUser disambiguates whisper direction.
	LocalUser string

	// Capacity is the per-tab message limit.
	Capacity int

	// Channels are the broadcast tabs created at startup, in order.
	Channels []string

	// ServerChannels are the channel names SelectTab may join.
	ServerChannels []string

	Joiner       Joiner
	Reachability Reachability
	Notifier     Notifier
	Logger       *zerolog.Logger
}

// AddResult describes what AddMessage did.
type AddResult struct {
	TabID     TabID
	Created   bool // a whisper tab was created for this message
	Duplicate bool // the ID was already in the tab
	Dropped   bool // no tab could take the message
	Active    bool // the target tab is the active tab
}

// Model owns the tabs and their message logs.
type Model struct {
	localUser      string
	capacity       int
	serverChannels map[string]bool

	tabs      []*Tab
	active    TabID
	collapsed bool

	// Names seen as sender or recipient, by name key.
	seen map[string]string

	joiner       Joiner
	reachability Reachability
	notifier     Notifier
	log          zerolog.Logger
}

// New creates the model with its permanent tabs. All logs start empty.
func New(opts Options) *Model {
	if opts.Capacity <= 0 {
		opts.Capacity = DefaultCapacity
	}
	if len(opts.Channels) == 0 {
		opts.Channels = []string{model.KindGlobal.String()}
	}

	m := &Model{
		localUser:      strings.TrimSpace(opts.LocalUser),
		capacity:       opts.Capacity,
		serverChannels: make(map[string]bool),
		seen:           make(map[string]string),
		joiner:         opts.Joiner,
		reachability:   opts.Reachability,
		notifier:       opts.Notifier,
		log:            logging.Module("channels"),
	}
	if opts.Logger != nil {
		m.log = *opts.Logger
	}
	for _, name := range opts.ServerChannels {
		m.serverChannels[strings.ToLower(strings.TrimSpace(name))] = true
	}

	for _, name := range opts.Channels {
		kind := model.ChannelKind(strings.ToLower(strings.TrimSpace(name)))
		if !kind.IsBroadcast() {
			m.log.Warn().Str("channel", name).Msg("skipping non-broadcast startup channel")
			continue
		}
		if m.find(TabID(kind)) != nil {
			continue
		}
		m.tabs = append(m.tabs, newTab(TabID(kind), kind.DisplayName(), kind, "", m.capacity))
	}
	m.tabs = append(m.tabs, newTab(FriendsTabID, model.KindFriends.DisplayName(), model.KindFriends, "", m.capacity))
	m.active = m.tabs[0].id

	m.ClearAll()
	return m
}

// =============================================================================
// ACCESSORS
// =============================================================================

// LocalUser returns the local username.
func (m *Model) LocalUser() string { return m.localUser }

// Tabs returns the tabs in display order.
func (m *Model) Tabs() []*Tab {
	return append([]*Tab(nil), m.tabs...)
}

// Tab returns the tab with the given ID.
func (m *Model) Tab(id TabID) (*Tab, bool) {
	t := m.find(id)
	return t, t != nil
}

// ActiveID returns the active tab ID.
func (m *Model) ActiveID() TabID { return m.active }

// Active returns the active tab.
func (m *Model) Active() *Tab { return m.find(m.active) }

// Collapsed reports whether the chat UI is collapsed.
func (m *Model) Collapsed() bool { return m.collapsed }

// SetCollapsed collapses or expands the chat UI.
func (m *Model) SetCollapsed(c bool) { m.collapsed = c }

// SeenNames returns every sender and recipient seen so far, sorted.
func (m *Model) SeenNames() []string {
	out := make([]string, 0, len(m.seen))
	for _, n := range m.seen {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// TotalUnread sums unread counts across tabs.
func (m *Model) TotalUnread() int {
	n := 0
	for _, t := range m.tabs {
		n += t.unread
	}
	return n
}

func (m *Model) find(id TabID) *Tab {
	for _, t := range m.tabs {
		if t.id == id {
			return t
		}
	}
	return nil
}

func (m *Model) index(id TabID) int {
	for i, t := range m.tabs {
		if t.id == id {
			return i
		}
	}
	return -1
}

// =============================================================================
// OPERATIONS
// =============================================================================

// SelectTab activates a tab and zeroes its unread count. An empty tab
// for a joinable server channel triggers a join when connected.
func (m *Model) SelectTab(id TabID) error {
	t := m.find(id)
	if t == nil {
		return fmt.Errorf("%w: %s", ErrUnknownTab, id)
	}
	m.active = id
	t.unread = 0

	if t.Len() == 0 && t.kind.IsBroadcast() && m.serverChannels[string(t.kind)] &&
		m.joiner != nil && m.joiner.IsConnected() {
		if err := m.joiner.JoinChannel(string(t.kind)); err != nil {
			m.log.Warn().Err(err).Str("channel", string(t.kind)).Msg("join failed")
		}
	}
	return nil
}

// SelectNext activates the tab delta positions away, wrapping.
func (m *Model) SelectNext(delta int) error {
	n := len(m.tabs)
	i := m.index(m.active)
	if i < 0 {
		i = 0
	}
	return m.SelectTab(m.tabs[((i+delta)%n+n)%n].id)
}

// CloseTab removes a whisper tab. If it was active, the first tab is
// selected.
func (m *Model) CloseTab(id TabID) error {
	i := m.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownTab, id)
	}
	if !m.tabs[i].Closable() {
		return fmt.Errorf("%w: %s", ErrNotClosable, id)
	}
	m.tabs = append(m.tabs[:i], m.tabs[i+1:]...)
	if m.active == id {
		return m.SelectTab(m.tabs[0].id)
	}
	return nil
}

// EnsureWhisperTab returns the tab for target, creating and selecting
// it if the target is reachable. An unreachable target produces a
// notification and no tab.
func (m *Model) EnsureWhisperTab(target string) (*Tab, bool) {
	target = strings.TrimSpace(target)
	if target == "" {
		return nil, false
	}
	if t := m.find(WhisperTabID(target)); t != nil {
		return t, false
	}
	if m.reachability == nil || !m.reachability.IsReachable(target) {
		m.notify(fmt.Sprintf("%s is not online", target), false)
		return nil, false
	}
	return m.openWhisperTab(target), true
}

// openWhisperTab creates, selects and reveals a whisper tab without a
// reachability check.
func (m *Model) openWhisperTab(target string) *Tab {
	t := newTab(WhisperTabID(target), target, model.KindWhisper, target, m.capacity)
	m.tabs = append(m.tabs, t)
	m.collapsed = false
	_ = m.SelectTab(t.id)
	m.log.Debug().Str("target", target).Msg("whisper tab opened")
	return t
}

// AddMessage routes msg to its tab.
//
// Whispers go to the other party's tab, which is created on receipt
// even if the party does not look reachable. Broadcast messages go to
// the tab for their channel and never create one. System and error
// messages go to the active tab, or to the first broadcast tab while
// the friends tab is active.
func (m *Model) AddMessage(msg model.ChatMessage) AddResult {
	msg = msg.Normalize()

	var (
		t       *Tab
		created bool
	)
	switch {
	case msg.Kind == model.KindWhisper:
		party := strings.TrimSpace(msg.OtherParty(m.localUser))
		if party == "" {
			m.log.Warn().Str("id", msg.ID).Msg("whisper without counterpart dropped")
			return AddResult{Dropped: true}
		}
		if t = m.find(WhisperTabID(party)); t == nil {
			t = m.openWhisperTab(party)
			created = true
		}
	case msg.Kind.IsLocal():
		t = m.localTarget()
	case msg.Kind.IsBroadcast():
		t = m.find(TabID(msg.Kind))
	}

	if t == nil {
		m.log.Debug().Str("channel", msg.Kind.String()).Str("id", msg.ID).Msg("no tab for message")
		return AddResult{Dropped: true}
	}

	res := AddResult{TabID: t.id, Created: created, Active: t.id == m.active}
	if t.Has(msg.ID) {
		res.Duplicate = true
		return res
	}

	t.append(msg)
	if !res.Active {
		t.unread++
	}
	if !msg.Kind.IsLocal() {
		for _, name := range msg.Participants() {
			m.seen[model.NameKey(name)] = name
		}
	}
	return res
}

// ClearAll empties every tab's log and unread count.
// localTarget is the tab that shows locally generated lines. The
// friends tab draws no message log.
func (m *Model) localTarget() *Tab {
	t := m.Active()
	if t == nil || t.kind != model.KindFriends {
		return t
	}
	for _, c := range m.tabs {
		if c.kind.IsBroadcast() {
			return c
		}
	}
	return nil
}

func (m *Model) ClearAll() {
	for _, t := range m.tabs {
		t.clear()
	}
}

func (m *Model) notify(msg string, isError bool) {
	if m.notifier != nil {
		m.notifier.Notify(msg, isError)
	}
}
