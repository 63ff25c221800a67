// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package channels

import (
	"github.com/jeranaias/critterchat/internal/model"
)

// TabID identifies a tab. Broadcast tabs use the channel name, the
// friends surface is "friends", whisper tabs are "whisper:<name key>".
type TabID string

// FriendsTabID is the permanent friends management tab.
const FriendsTabID TabID = "friends"

// WhisperTabID returns the tab ID for a whisper target.
func WhisperTabID(target string) TabID {
	return TabID("whisper:" + model.NameKey(target))
}

// Tab is one conversation context. Its state is changed only through
// the owning Model; the accessors are read-only.
type Tab struct {
	id            TabID
	displayName   string
	kind          model.ChannelKind
	whisperTarget string
	unread        int

	messages *Ring[model.ChatMessage]
	ids      map[string]struct{}
}

func newTab(id TabID, name string, kind model.ChannelKind, target string, capacity int) *Tab {
	return &Tab{
		id:            id,
		displayName:   name,
		kind:          kind,
		whisperTarget: target,
		messages:      NewRing[model.ChatMessage](capacity),
		ids:           make(map[string]struct{}),
	}
}

func (t *Tab) ID() TabID               { return t.id }
func (t *Tab) DisplayName() string     { return t.displayName }
func (t *Tab) Kind() model.ChannelKind { return t.kind }
func (t *Tab) Unread() int             { return t.unread }
func (t *Tab) Len() int                { return t.messages.Len() }

// WhisperTarget returns the conversation partner. It is empty for
// non-whisper tabs.
func (t *Tab) WhisperTarget() string { return t.whisperTarget }

// Closable reports whether the user may close the tab.
func (t *Tab) Closable() bool { return t.kind == model.KindWhisper }

// Messages returns the log, oldest first.
func (t *Tab) Messages() []model.ChatMessage { return t.messages.Items() }

// Recent returns up to n of the newest messages, oldest first.
func (t *Tab) Recent(n int) []model.ChatMessage { return t.messages.Last(n) }

// Has reports whether a message ID is in the log.
func (t *Tab) Has(id string) bool {
	_, ok := t.ids[id]
	return ok
}

func (t *Tab) append(msg model.ChatMessage) {
	if old, evicted := t.messages.Push(msg); evicted {
		delete(t.ids, old.ID)
	}
	t.ids[msg.ID] = struct{}{}
}

func (t *Tab) clear() {
	t.messages.Clear()
	clear(t.ids)
	t.unread = 0
}
