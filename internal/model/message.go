// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared by the chat subsystem.
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
)

// =============================================================================
// CHANNEL KIND
// =============================================================================

// ChannelKind is the category of a conversation context. It determines
// routing and the color a message is drawn with.
type ChannelKind string

const (
	KindGlobal  ChannelKind = "global"
	KindGroup   ChannelKind = "group"
	KindTrade   ChannelKind = "trade"
	KindWhisper ChannelKind = "whisper"
	KindSystem  ChannelKind = "system"
	KindError   ChannelKind = "error"
	KindFriends ChannelKind = "friends"
)

// String returns the string representation of the kind.
func (k ChannelKind) String() string {
	return string(k)
}

// IsBroadcast reports whether the kind names a server-side channel.
func (k ChannelKind) IsBroadcast() bool {
	switch k {
	case KindGlobal, KindGroup, KindTrade:
		return true
	}
	return false
}

// IsLocal reports whether messages of this kind are generated by the client.
func (k ChannelKind) IsLocal() bool {
	return k == KindSystem || k == KindError
}

// Valid reports whether k is one of the known kinds.
func (k ChannelKind) Valid() bool {
	switch k {
	case KindGlobal, KindGroup, KindTrade, KindWhisper, KindSystem, KindError, KindFriends:
		return true
	}
	return false
}

// DisplayName returns a human-readable label for the kind.
func (k ChannelKind) DisplayName() string {
	switch k {
	case KindGlobal:
		return "Global"
	case KindGroup:
		return "Group"
	case KindTrade:
		return "Trade"
	case KindWhisper:
		return "Whisper"
	case KindSystem:
		return "System"
	case KindError:
		return "Error"
	case KindFriends:
		return "Friends"
	default:
		return string(k)
	}
}

// =============================================================================
// COLOR TAG
// =============================================================================

// Color is the presentational tag attached to a message.
type Color string

const (
	ColorWhite  Color = "white"
	ColorGreen  Color = "green"
	ColorOrange Color = "orange"
	ColorPink   Color = "pink"
	ColorYellow Color = "yellow"
	ColorRed    Color = "red"
)

// channelColors is the fixed channel to color table.
var channelColors = map[ChannelKind]Color{
	KindGlobal:  ColorWhite,
	KindGroup:   ColorGreen,
	KindTrade:   ColorOrange,
	KindWhisper: ColorPink,
	KindSystem:  ColorYellow,
	KindError:   ColorRed,
}

// ColorFor returns the color for a channel kind. Unknown kinds are white.
func ColorFor(kind ChannelKind) Color {
	if c, ok := channelColors[kind]; ok {
		return c
	}
	return ColorWhite
}

// =============================================================================
// CHAT MESSAGE
// =============================================================================

// ChatMessage is a single chat line. It is a value type and is never
// modified after Normalize.
type ChatMessage struct {
	ID        string      `json:"id"`
	Kind      ChannelKind `json:"channel"`
	Sender    string      `json:"sender"`
	Recipient string      `json:"recipient,omitempty"`
	SenderID  string      `json:"sender_id,omitempty"`
	Body      string      `json:"body"`
	Timestamp time.Time   `json:"timestamp"`
	Color     Color       `json:"color,omitempty"`
}

// NewChatMessage creates a message with a generated ID and derived color.
func NewChatMessage(kind ChannelKind, sender, body string) ChatMessage {
	return ChatMessage{
		Kind:   kind,
		Sender: sender,
		Body:   body,
	}.Normalize()
}

// NewSystemMessage creates a locally generated informational line.
func NewSystemMessage(body string) ChatMessage {
	return NewChatMessage(KindSystem, "", body)
}

// NewErrorMessage creates a locally generated error line.
func NewErrorMessage(body string) ChatMessage {
	return NewChatMessage(KindError, "", body)
}

// Normalize fills the fields a server may omit: ID, Timestamp and Color.
// Color is derived from Kind only when absent.
func (m ChatMessage) Normalize() ChatMessage {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now()
	}
	if m.Color == "" {
		m.Color = ColorFor(m.Kind)
	}
	return m
}

// OtherParty returns the conversation partner of a whisper as seen by
// localUser: the recipient if localUser sent it, the sender otherwise.
func (m ChatMessage) OtherParty(localUser string) string {
	if SameName(m.Sender, localUser) {
		return m.Recipient
	}
	return m.Sender
}

// Participants returns the non-empty sender and recipient names.
func (m ChatMessage) Participants() []string {
	names := make([]string, 0, 2)
	if s := strings.TrimSpace(m.Sender); s != "" {
		names = append(names, s)
	}
	if r := strings.TrimSpace(m.Recipient); r != "" {
		names = append(names, r)
	}
	return names
}

// =============================================================================
// NAME COMPARISON
// =============================================================================

// NameKey returns the comparison key for a username: trimmed and
// case-folded. Empty input yields an empty key.
func NameKey(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	// Casers are stateful; one per call.
	return cases.Fold().String(name)
}

// SameName reports whether two usernames refer to the same user.
func SameName(a, b string) bool {
	ka := NameKey(a)
	return ka != "" && ka == NameKey(b)
}
