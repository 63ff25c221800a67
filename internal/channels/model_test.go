// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package channels

import (
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/critterchat/internal/model"
)

// =============================================================================
// FAKES
// =============================================================================

type fakeJoiner struct {
	connected bool
	joins     []string
}

func (f *fakeJoiner) IsConnected() bool { return f.connected }
func (f *fakeJoiner) JoinChannel(name string) error {
	f.joins = append(f.joins, name)
	return nil
}

type fakeReach map[string]bool

func (f fakeReach) IsReachable(name string) bool { return f[model.NameKey(name)] }

type fakeNotifier struct {
	notes []string
}

func (f *fakeNotifier) Notify(msg string, isError bool) { f.notes = append(f.notes, msg) }

type fixture struct {
	m        *Model
	joiner   *fakeJoiner
	reach    fakeReach
	notifier *fakeNotifier
}

func newFixture(channels ...string) *fixture {
	f := &fixture{
		joiner:   &fakeJoiner{connected: true},
		reach:    fakeReach{},
		notifier: &fakeNotifier{},
	}
	nop := zerolog.Nop()
	f.m = New(Options{
		LocalUser:      "Me",
		Channels:       channels,
		ServerChannels: []string{"global", "group", "trade"},
		Joiner:         f.joiner,
		Reachability:   f.reach,
		Notifier:       f.notifier,
		Logger:         &nop,
	})
	return f
}

func globalMsg(id, sender, body string) model.ChatMessage {
	return model.ChatMessage{ID: id, Kind: model.KindGlobal, Sender: sender, Body: body}
}

func whisper(id, sender, recipient string) model.ChatMessage {
	return model.ChatMessage{ID: id, Kind: model.KindWhisper, Sender: sender, Recipient: recipient, Body: "psst"}
}

// =============================================================================
// STARTUP
// =============================================================================

func TestNew_PermanentTabs(t *testing.T) {
	f := newFixture("global", "trade", "whisper", "global")

	tabs := f.m.Tabs()
	require.Len(t, tabs, 3)
	assert.Equal(t, TabID("global"), tabs[0].ID())
	assert.Equal(t, TabID("trade"), tabs[1].ID())
	assert.Equal(t, FriendsTabID, tabs[2].ID())
	assert.Equal(t, TabID("global"), f.m.ActiveID())

	for _, tab := range tabs {
		assert.False(t, tab.Closable())
		assert.Zero(t, tab.Len())
	}
}

func TestNew_DefaultsToGlobal(t *testing.T) {
	f := newFixture()
	_, ok := f.m.Tab("global")
	assert.True(t, ok)
}

// =============================================================================
// MESSAGES
// =============================================================================

func TestAddMessage_CapacityFIFO(t *testing.T) {
	f := newFixture()

	for i := 0; i < 250; i++ {
		f.m.AddMessage(globalMsg(fmt.Sprintf("m%03d", i), "bob", "x"))
		tab, _ := f.m.Tab("global")
		require.LessOrEqual(t, tab.Len(), DefaultCapacity)
	}

	tab, _ := f.m.Tab("global")
	msgs := tab.Messages()
	require.Len(t, msgs, DefaultCapacity)
	assert.Equal(t, "m150", msgs[0].ID)
	assert.Equal(t, "m249", msgs[99].ID)
	assert.False(t, tab.Has("m149"))
	assert.True(t, tab.Has("m150"))
}

func TestAddMessage_Duplicate(t *testing.T) {
	f := newFixture()

	first := f.m.AddMessage(globalMsg("dup", "bob", "hi"))
	second := f.m.AddMessage(globalMsg("dup", "bob", "hi"))

	assert.False(t, first.Duplicate)
	assert.True(t, second.Duplicate)
	tab, _ := f.m.Tab("global")
	assert.Equal(t, 1, tab.Len())
}

func TestAddMessage_UnreadCounters(t *testing.T) {
	f := newFixture("global", "trade")

	res := f.m.AddMessage(model.ChatMessage{ID: "t1", Kind: model.KindTrade, Sender: "bob", Body: "wts"})
	assert.Equal(t, TabID("trade"), res.TabID)
	assert.False(t, res.Active)

	trade, _ := f.m.Tab("trade")
	global, _ := f.m.Tab("global")
	assert.Equal(t, 1, trade.Unread())
	assert.Equal(t, 0, global.Unread())

	f.m.AddMessage(globalMsg("g1", "bob", "hi"))
	assert.Equal(t, 0, global.Unread(), "active tab stays read")

	require.NoError(t, f.m.SelectTab("trade"))
	assert.Equal(t, 0, trade.Unread())
}

func TestAddMessage_BroadcastWithoutTabDropped(t *testing.T) {
	f := newFixture("global")

	res := f.m.AddMessage(model.ChatMessage{ID: "g", Kind: model.KindGroup, Sender: "bob", Body: "hi"})
	assert.True(t, res.Dropped)
	assert.Len(t, f.m.Tabs(), 2, "broadcast messages never create tabs")
}

func TestAddMessage_LocalGoesToActive(t *testing.T) {
	f := newFixture("global", "trade")
	require.NoError(t, f.m.SelectTab("trade"))

	res := f.m.AddMessage(model.NewErrorMessage("bad command"))
	assert.Equal(t, TabID("trade"), res.TabID)
	assert.True(t, res.Active)
}

func TestAddMessage_LocalOnFriendsTabGoesToFirstChannel(t *testing.T) {
	f := newFixture("trade", "global")
	require.NoError(t, f.m.SelectTab(FriendsTabID))

	res := f.m.AddMessage(model.NewErrorMessage("channel is muted"))
	assert.Equal(t, TabID("trade"), res.TabID)
	assert.False(t, res.Active)
	trade, ok := f.m.Tab("trade")
	require.True(t, ok)
	assert.Equal(t, 1, trade.Unread())
	friends, _ := f.m.Tab(FriendsTabID)
	assert.Equal(t, 0, friends.Len())
}

func TestAddMessage_TracksSeenNames(t *testing.T) {
	f := newFixture()
	f.m.AddMessage(globalMsg("1", "Bob", "hi"))
	f.m.AddMessage(whisper("2", "Me", "carol"))
	f.m.AddMessage(model.NewSystemMessage("welcome"))

	assert.Equal(t, []string{"Bob", "Me", "carol"}, f.m.SeenNames())
}

// =============================================================================
// WHISPERS
// =============================================================================

func TestWhisper_RoutingSymmetry(t *testing.T) {
	f := newFixture()
	f.reach["x"] = true

	tab, created := f.m.EnsureWhisperTab("X")
	require.NotNil(t, tab)
	assert.True(t, created)

	res := f.m.AddMessage(whisper("w1", "x", "me"))
	assert.Equal(t, tab.ID(), res.TabID)
	assert.False(t, res.Created)

	res = f.m.AddMessage(whisper("w2", "Me", "X"))
	assert.Equal(t, tab.ID(), res.TabID)

	whisperTabs := 0
	for _, tb := range f.m.Tabs() {
		if tb.Kind() == model.KindWhisper {
			whisperTabs++
		}
	}
	assert.Equal(t, 1, whisperTabs)
	assert.Equal(t, 2, tab.Len())
}

func TestEnsureWhisperTab_ReachabilityGate(t *testing.T) {
	f := newFixture()

	tab, created := f.m.EnsureWhisperTab("ghost")
	assert.Nil(t, tab)
	assert.False(t, created)
	assert.Len(t, f.notifier.notes, 1)
	assert.Len(t, f.m.Tabs(), 2)
}

func TestEnsureWhisperTab_ExistingNotRechecked(t *testing.T) {
	f := newFixture()
	f.reach["pal"] = true
	first, _ := f.m.EnsureWhisperTab("pal")

	delete(f.reach, "pal")
	again, created := f.m.EnsureWhisperTab("PAL")
	assert.Same(t, first, again)
	assert.False(t, created)
	assert.Empty(t, f.notifier.notes)
}

func TestEnsureWhisperTab_SelectsAndExpands(t *testing.T) {
	f := newFixture()
	f.reach["pal"] = true
	f.m.SetCollapsed(true)

	tab, _ := f.m.EnsureWhisperTab("pal")
	assert.Equal(t, tab.ID(), f.m.ActiveID())
	assert.False(t, f.m.Collapsed())
	assert.Empty(t, f.joiner.joins, "whisper tabs are never joined")
}

func TestWhisper_ReceiptCreatesTabForUnreachable(t *testing.T) {
	f := newFixture()

	res := f.m.AddMessage(whisper("w1", "stranger", "me"))
	assert.True(t, res.Created)
	assert.Equal(t, WhisperTabID("stranger"), res.TabID)
	assert.Empty(t, f.notifier.notes)
}

func TestWhisper_WithoutCounterpartDropped(t *testing.T) {
	f := newFixture()
	res := f.m.AddMessage(whisper("w1", "me", ""))
	assert.True(t, res.Dropped)
}

// =============================================================================
// TAB SELECTION
// =============================================================================

func TestSelectTab_JoinsEmptyServerChannel(t *testing.T) {
	f := newFixture("global", "trade")

	require.NoError(t, f.m.SelectTab("trade"))
	assert.Equal(t, []string{"trade"}, f.joiner.joins)

	f.m.AddMessage(model.ChatMessage{ID: "1", Kind: model.KindTrade, Sender: "b", Body: "x"})
	require.NoError(t, f.m.SelectTab("global"))
	require.NoError(t, f.m.SelectTab("trade"))
	assert.Equal(t, []string{"trade", "global"}, f.joiner.joins, "non-empty tabs are not re-joined")
}

func TestSelectTab_NoJoinWhenDisconnectedOrNotWhitelisted(t *testing.T) {
	f := newFixture("global")
	f.joiner.connected = false
	require.NoError(t, f.m.SelectTab("global"))
	assert.Empty(t, f.joiner.joins)

	f.joiner.connected = true
	require.NoError(t, f.m.SelectTab(FriendsTabID))
	assert.Empty(t, f.joiner.joins)
}

func TestSelectTab_Unknown(t *testing.T) {
	f := newFixture()
	assert.ErrorIs(t, f.m.SelectTab("nope"), ErrUnknownTab)
}

func TestSelectNext_Wraps(t *testing.T) {
	f := newFixture("global", "trade")

	require.NoError(t, f.m.SelectNext(1))
	assert.Equal(t, TabID("trade"), f.m.ActiveID())
	require.NoError(t, f.m.SelectNext(1))
	assert.Equal(t, FriendsTabID, f.m.ActiveID())
	require.NoError(t, f.m.SelectNext(1))
	assert.Equal(t, TabID("global"), f.m.ActiveID())
	require.NoError(t, f.m.SelectNext(-1))
	assert.Equal(t, FriendsTabID, f.m.ActiveID())
}

func TestCloseTab(t *testing.T) {
	f := newFixture("global", "trade")
	f.reach["pal"] = true
	tab, _ := f.m.EnsureWhisperTab("pal")

	assert.ErrorIs(t, f.m.CloseTab("global"), ErrNotClosable)
	assert.ErrorIs(t, f.m.CloseTab(FriendsTabID), ErrNotClosable)
	assert.ErrorIs(t, f.m.CloseTab("missing"), ErrUnknownTab)

	require.NoError(t, f.m.CloseTab(tab.ID()))
	assert.Equal(t, TabID("global"), f.m.ActiveID())
	_, ok := f.m.Tab(tab.ID())
	assert.False(t, ok)
}

func TestCloseTab_InactiveKeepsSelection(t *testing.T) {
	f := newFixture("global", "trade")
	f.reach["pal"] = true
	tab, _ := f.m.EnsureWhisperTab("pal")
	require.NoError(t, f.m.SelectTab("trade"))

	require.NoError(t, f.m.CloseTab(tab.ID()))
	assert.Equal(t, TabID("trade"), f.m.ActiveID())
}

func TestClearAll(t *testing.T) {
	f := newFixture("global", "trade")
	f.m.AddMessage(globalMsg("1", "a", "x"))
	f.m.AddMessage(model.ChatMessage{ID: "2", Kind: model.KindTrade, Sender: "a", Body: "x"})

	f.m.ClearAll()
	for _, tab := range f.m.Tabs() {
		assert.Zero(t, tab.Len())
		assert.Zero(t, tab.Unread())
	}
	assert.Zero(t, f.m.TotalUnread())
}
