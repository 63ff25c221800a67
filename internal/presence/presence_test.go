// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package presence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/critterchat/internal/model"
)

type change struct {
	name   string
	online bool
}

func TestUserPresence_DoesNotTouchFriends(t *testing.T) {
	o := New()
	var changes []change
	o.SetListener(func(name string, online bool) { changes = append(changes, change{name, online}) })
	o.SetFriends([]model.Friend{{FriendID: 1, FriendName: "Bob"}})

	o.UserJoined("Bob")

	assert.True(t, o.IsReachable("bob"))
	assert.False(t, o.IsFriendOnline("bob"))
	assert.False(t, o.Friends()[0].IsOnline)
	assert.Empty(t, changes, "general presence must not notify")

	o.UserLeft("BOB")
	assert.False(t, o.IsReachable("bob"))
}

func TestFriendPresence_UpdatesFriendAndNotifies(t *testing.T) {
	o := New()
	var changes []change
	o.SetListener(func(name string, online bool) { changes = append(changes, change{name, online}) })
	o.SetFriends([]model.Friend{{FriendID: 1, FriendName: "Carol"}, {FriendID: 2, FriendName: "Dave"}})

	o.FriendOnline("carol")
	require.Len(t, changes, 1)
	assert.Equal(t, change{"carol", true}, changes[0])

	friends := o.Friends()
	assert.Equal(t, "Carol", friends[0].FriendName)
	assert.True(t, friends[0].IsOnline)
	assert.False(t, friends[1].IsOnline)
	assert.Empty(t, o.OnlineUsers(), "friend presence must not populate online users")

	o.FriendOffline("CAROL")
	assert.False(t, o.Friends()[0].IsOnline)
	assert.Equal(t, change{"CAROL", false}, changes[1])
}

func TestIsReachable_EitherSet(t *testing.T) {
	o := New()
	o.UserJoined("  stranger ")
	o.FriendOnline("pal")

	assert.True(t, o.IsReachable("Stranger"))
	assert.True(t, o.IsReachable(" PAL"))
	assert.False(t, o.IsReachable("ghost"))
	assert.False(t, o.IsReachable(""))
}

func TestSetFriends_DerivesOnline(t *testing.T) {
	o := New()
	o.FriendOnline("erin")
	o.SetFriends([]model.Friend{{FriendID: 5, FriendName: "Erin"}, {FriendID: 6, FriendName: "Finn"}})

	friends := o.Friends()
	assert.True(t, friends[0].IsOnline)
	assert.Equal(t, "Erin", friends[0].FriendName)
	assert.False(t, friends[1].IsOnline)
	assert.True(t, o.IsFriend("finn"))
}

func TestRemoveFriend(t *testing.T) {
	o := New()
	o.SetFriends([]model.Friend{{FriendID: 42, FriendName: "Gus"}})

	assert.True(t, o.RemoveFriend(42))
	assert.False(t, o.RemoveFriend(42))
	assert.Empty(t, o.Friends())
}

func TestOnlineUsers_Sorted(t *testing.T) {
	o := New()
	o.UserJoined("zed")
	o.UserJoined("Amy")
	o.UserJoined("mia")
	o.UserJoined("amy")

	assert.Equal(t, []string{"amy", "mia", "zed"}, o.OnlineUsers())
}

func TestReset(t *testing.T) {
	o := New()
	o.SetFriends([]model.Friend{{FriendID: 1, FriendName: "Hal"}})
	o.UserJoined("ivy")
	o.FriendOnline("hal")

	o.Reset()

	assert.False(t, o.IsReachable("ivy"))
	assert.False(t, o.IsReachable("hal"))
	require.Len(t, o.Friends(), 1)
	assert.False(t, o.Friends()[0].IsOnline)
}
