// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transport

import (
	"encoding/json"
	"time"

	"github.com/jeranaias/critterchat/internal/model"
)

// EventKind identifies an inbound event.
type EventKind int

const (
	EventConnected EventKind = iota
	EventDisconnected
	EventMessage
	EventChannelHistory
	EventUserJoined
	EventUserLeft
	EventFriendOnline
	EventFriendOffline
	EventFriendUpdate
	EventError
)

// String returns the string representation of the kind.
func (k EventKind) String() string {
	switch k {
	case EventConnected:
		return "connected"
	case EventDisconnected:
		return "disconnected"
	case EventMessage:
		return "message"
	case EventChannelHistory:
		return "channel_history"
	case EventUserJoined:
		return "user_joined"
	case EventUserLeft:
		return "user_left"
	case EventFriendOnline:
		return "friend_online"
	case EventFriendOffline:
		return "friend_offline"
	case EventFriendUpdate:
		return "friend_update"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is the closed set of things the transport reports. Only types in
// this package implement it.
type Event interface {
	Kind() EventKind
	isEvent()
}

// ConnectedEvent fires after every successful handshake, including
// reconnects.
type ConnectedEvent struct {
	Endpoint string
	Username string
	At       time.Time
}

// DisconnectedEvent fires when a live connection is lost or closed.
type DisconnectedEvent struct {
	Reason string
	At     time.Time
}

// MessageEvent carries one chat message.
type MessageEvent struct {
	Message model.ChatMessage
}

// ChannelHistoryEvent carries a batch of past messages for a channel.
type ChannelHistoryEvent struct {
	Channel  string
	Messages []model.ChatMessage
}

// UserJoinedEvent reports a user coming online.
type UserJoinedEvent struct {
	Username  string
	Timestamp time.Time
}

// UserLeftEvent reports a user going offline.
type UserLeftEvent struct {
	Username  string
	Timestamp time.Time
}

// FriendOnlineEvent reports a friend coming online.
type FriendOnlineEvent struct {
	Username string
}

// FriendOfflineEvent reports a friend going offline.
type FriendOfflineEvent struct {
	Username string
}

// FriendUpdateEvent reports a change to the friend graph. Username is
// filled when the payload data names one.
type FriendUpdateEvent struct {
	Type      string
	Username  string
	Data      json.RawMessage
	Timestamp time.Time
}

// ErrorEvent is an error reported by the server.
type ErrorEvent struct {
	Message string
}

func (ConnectedEvent) Kind() EventKind      { return EventConnected }
func (DisconnectedEvent) Kind() EventKind   { return EventDisconnected }
func (MessageEvent) Kind() EventKind        { return EventMessage }
func (ChannelHistoryEvent) Kind() EventKind { return EventChannelHistory }
func (UserJoinedEvent) Kind() EventKind     { return EventUserJoined }
func (UserLeftEvent) Kind() EventKind       { return EventUserLeft }
func (FriendOnlineEvent) Kind() EventKind   { return EventFriendOnline }
func (FriendOfflineEvent) Kind() EventKind  { return EventFriendOffline }
func (FriendUpdateEvent) Kind() EventKind   { return EventFriendUpdate }
func (ErrorEvent) Kind() EventKind          { return EventError }

func (ConnectedEvent) isEvent()      {}
func (DisconnectedEvent) isEvent()   {}
func (MessageEvent) isEvent()        {}
func (ChannelHistoryEvent) isEvent() {}
func (UserJoinedEvent) isEvent()     {}
func (UserLeftEvent) isEvent()       {}
func (FriendOnlineEvent) isEvent()   {}
func (FriendOfflineEvent) isEvent()  {}
func (FriendUpdateEvent) isEvent()   {}
func (ErrorEvent) isEvent()          {}
