// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

// Intent is the closed set of parse results.
type Intent interface {
	isIntent()
}

// PlainText is unprefixed input for the active tab.
type PlainText struct {
	Body string
}

// ChannelMessage posts to a broadcast channel.
type ChannelMessage struct {
	Channel string
	Body    string
}

// Whisper sends a direct message.
type Whisper struct {
	Target string
	Body   string
}

// AddFriend sends a friend request. It produces no chat message.
type AddFriend struct {
	Username string
}

// Help lists the commands locally.
type Help struct{}

func (PlainText) isIntent()      {}
func (ChannelMessage) isIntent() {}
func (Whisper) isIntent()        {}
func (AddFriend) isIntent()      {}
func (Help) isIntent()           {}
