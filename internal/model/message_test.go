// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// =============================================================================
// COLOR TABLE TESTS
// =============================================================================

func TestColorFor(t *testing.T) {
	tests := []struct {
		kind ChannelKind
		want Color
	}{
		{KindGlobal, ColorWhite},
		{KindGroup, ColorGreen},
		{KindTrade, ColorOrange},
		{KindWhisper, ColorPink},
		{KindSystem, ColorYellow},
		{KindError, ColorRed},
		{ChannelKind("bogus"), ColorWhite},
	}

	for _, tc := range tests {
		t.Run(string(tc.kind), func(t *testing.T) {
			assert.Equal(t, tc.want, ColorFor(tc.kind))
		})
	}
}

func TestNormalize_KeepsServerColor(t *testing.T) {
	msg := ChatMessage{ID: "m1", Kind: KindWhisper, Color: ColorGreen}.Normalize()
	assert.Equal(t, ColorGreen, msg.Color)
	assert.Equal(t, "m1", msg.ID)
}

func TestNormalize_FillsMissingFields(t *testing.T) {
	msg := ChatMessage{Kind: KindTrade, Sender: "Bob", Body: "wts egg"}.Normalize()
	assert.NotEmpty(t, msg.ID)
	assert.False(t, msg.Timestamp.IsZero())
	assert.Equal(t, ColorOrange, msg.Color)

	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	msg = ChatMessage{Kind: KindGlobal, Timestamp: ts}.Normalize()
	assert.Equal(t, ts, msg.Timestamp)
}

// =============================================================================
// WHISPER DIRECTION TESTS
// =============================================================================

func TestOtherParty(t *testing.T) {
	outgoing := ChatMessage{Kind: KindWhisper, Sender: "me", Recipient: "Alya"}
	incoming := ChatMessage{Kind: KindWhisper, Sender: "Alya", Recipient: "me"}

	assert.Equal(t, "Alya", outgoing.OtherParty("me"))
	assert.Equal(t, "Alya", incoming.OtherParty("me"))
	assert.Equal(t, "Alya", outgoing.OtherParty(" ME "), "local user match is case-insensitive")
}

func TestParticipants(t *testing.T) {
	msg := ChatMessage{Sender: "Bob", Recipient: "  "}
	assert.Equal(t, []string{"Bob"}, msg.Participants())
}

// =============================================================================
// NAME COMPARISON TESTS
// =============================================================================

func TestSameName(t *testing.T) {
	assert.True(t, SameName(" Alya", "ALYA "))
	assert.True(t, SameName("Éclair", "éCLAIR"))
	assert.False(t, SameName("alya", "alex"))
	assert.False(t, SameName("", ""))
	assert.False(t, SameName("   ", ""))
}

func TestChannelKind_Predicates(t *testing.T) {
	assert.True(t, KindGlobal.IsBroadcast())
	assert.True(t, KindTrade.IsBroadcast())
	assert.False(t, KindWhisper.IsBroadcast())
	assert.False(t, KindFriends.IsBroadcast())
	assert.True(t, KindSystem.IsLocal())
	assert.False(t, ChannelKind("x").Valid())
}

// =============================================================================
// FRIEND REQUEST TESTS
// =============================================================================

func TestFriendRequest_Directionality(t *testing.T) {
	received := FriendRequest{ID: 1, FromUsername: "Bob", ToUsername: "me", Direction: DirectionReceived}
	sent := FriendRequest{ID: 2, FromUsername: "me", ToUsername: "Alya", Direction: DirectionSent}

	assert.True(t, received.CanAccept())
	assert.True(t, received.CanReject())
	assert.False(t, received.CanCancel())
	assert.Equal(t, "Bob", received.Counterpart())

	assert.False(t, sent.CanAccept())
	assert.False(t, sent.CanReject())
	assert.True(t, sent.CanCancel())
	assert.Equal(t, "Alya", sent.Counterpart())
}
