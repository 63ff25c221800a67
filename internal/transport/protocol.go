// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transport

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jeranaias/critterchat/internal/model"
)

// =============================================================================
// WIRE TYPES
// =============================================================================

// Frame types exchanged with the server.
const (
	// Outbound
	TypeAuth           = "auth"
	TypeJoinChannel    = "join_channel"
	TypeChannelMessage = "channel_message"
	TypeWhisper        = "whisper"

	// Inbound
	TypeAuthOK         = "auth_ok"
	TypeAuthError      = "auth_error"
	TypeMessage        = "message"
	TypeChannelHistory = "channel_history"
	TypeUserJoined     = "user_joined"
	TypeUserLeft       = "user_left"
	TypeFriendOnline   = "friend_online"
	TypeFriendOffline  = "friend_offline"
	TypeFriendUpdate   = "friend_update"
	TypeError          = "error"
)

// Envelope is the outer shape of every frame.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// AuthPayload carries the credential in the handshake.
type AuthPayload struct {
	Token string `json:"token"`
}

// AuthResultPayload is the server's reply to auth.
type AuthResultPayload struct {
	Username string `json:"username,omitempty"`
	Message  string `json:"message,omitempty"`
}

// JoinChannelPayload asks the server to subscribe to a channel.
type JoinChannelPayload struct {
	Name string `json:"name"`
}

// ChannelMessagePayload posts to a broadcast channel.
type ChannelMessagePayload struct {
	Channel string `json:"channel"`
	Body    string `json:"body"`
}

// WhisperPayload sends a direct message.
type WhisperPayload struct {
	Target string `json:"target"`
	Body   string `json:"body"`
}

// ChannelHistoryPayload is a batch of past messages for a channel.
type ChannelHistoryPayload struct {
	Channel  string              `json:"channel"`
	Messages []model.ChatMessage `json:"messages"`
}

// PresencePayload is shared by user_joined, user_left, friend_online and
// friend_offline.
type PresencePayload struct {
	Username  string    `json:"username"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// FriendUpdatePayload announces a change in the social graph.
type FriendUpdatePayload struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp,omitempty"`
}

// ErrorPayload is a server-reported error.
type ErrorPayload struct {
	Message string `json:"message"`
}

// =============================================================================
// ENCODING
// =============================================================================

// Encode builds a frame from a type and payload.
func Encode(frameType string, payload any) ([]byte, error) {
	env := Envelope{Type: frameType}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s payload: %w", frameType, err)
		}
		env.Payload = raw
	}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s frame: %w", frameType, err)
	}
	return data, nil
}

// Decode parses an inbound frame into an Event. Handshake frames are not
// events and yield an error, as do unknown types.
func Decode(data []byte) (Event, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("malformed frame: %w", err)
	}

	switch env.Type {
	case TypeMessage:
		var msg model.ChatMessage
		if err := unmarshalPayload(env, &msg); err != nil {
			return nil, err
		}
		if !msg.Kind.Valid() {
			return nil, fmt.Errorf("message frame with unknown channel %q", msg.Kind)
		}
		return MessageEvent{Message: msg.Normalize()}, nil

	case TypeChannelHistory:
		var p ChannelHistoryPayload
		if err := unmarshalPayload(env, &p); err != nil {
			return nil, err
		}
		for i := range p.Messages {
			p.Messages[i] = p.Messages[i].Normalize()
		}
		return ChannelHistoryEvent{Channel: p.Channel, Messages: p.Messages}, nil

	case TypeUserJoined, TypeUserLeft, TypeFriendOnline, TypeFriendOffline:
		var p PresencePayload
		if err := unmarshalPayload(env, &p); err != nil {
			return nil, err
		}
		if p.Username == "" {
			return nil, fmt.Errorf("%s frame without username", env.Type)
		}
		switch env.Type {
		case TypeUserJoined:
			return UserJoinedEvent{Username: p.Username, Timestamp: p.Timestamp}, nil
		case TypeUserLeft:
			return UserLeftEvent{Username: p.Username, Timestamp: p.Timestamp}, nil
		case TypeFriendOnline:
			return FriendOnlineEvent{Username: p.Username}, nil
		default:
			return FriendOfflineEvent{Username: p.Username}, nil
		}

	case TypeFriendUpdate:
		var p FriendUpdatePayload
		if err := unmarshalPayload(env, &p); err != nil {
			return nil, err
		}
		ev := FriendUpdateEvent{Type: p.Type, Data: p.Data, Timestamp: p.Timestamp}
		var who struct {
			Username string `json:"username"`
		}
		if len(p.Data) > 0 && json.Unmarshal(p.Data, &who) == nil {
			ev.Username = who.Username
		}
		return ev, nil

	case TypeError:
		var p ErrorPayload
		if err := unmarshalPayload(env, &p); err != nil {
			return nil, err
		}
		return ErrorEvent{Message: p.Message}, nil

	default:
		return nil, fmt.Errorf("unexpected frame type %q", env.Type)
	}
}

func unmarshalPayload(env Envelope, v any) error {
	if len(env.Payload) == 0 {
		return fmt.Errorf("%s frame without payload", env.Type)
	}
	if err := json.Unmarshal(env.Payload, v); err != nil {
		return fmt.Errorf("malformed %s payload: %w", env.Type, err)
	}
	return nil
}
