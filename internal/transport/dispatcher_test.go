// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jeranaias/critterchat/internal/model"
)

func TestDispatcher_TypedDelivery(t *testing.T) {
	d := NewDispatcher()

	var messages []string
	var joins []string
	d.OnMessage(func(ev MessageEvent) { messages = append(messages, ev.Message.Body) })
	d.OnUserJoined(func(ev UserJoinedEvent) { joins = append(joins, ev.Username) })

	d.Emit(MessageEvent{Message: model.NewChatMessage(model.KindGlobal, "bob", "hi")})
	d.Emit(UserJoinedEvent{Username: "carol"})
	d.Emit(FriendOnlineEvent{Username: "dave"})

	assert.Equal(t, []string{"hi"}, messages)
	assert.Equal(t, []string{"carol"}, joins)
}

func TestDispatcher_MultipleSubscribersInOrder(t *testing.T) {
	d := NewDispatcher()

	var order []int
	d.OnError(func(ErrorEvent) { order = append(order, 1) })
	d.OnError(func(ErrorEvent) { order = append(order, 2) })
	d.OnError(func(ErrorEvent) { order = append(order, 3) })

	d.Emit(ErrorEvent{Message: "boom"})
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestDispatcher_Unsubscribe(t *testing.T) {
	d := NewDispatcher()

	count := 0
	unsub := d.OnFriendOffline(func(FriendOfflineEvent) { count++ })
	other := 0
	d.OnFriendOffline(func(FriendOfflineEvent) { other++ })

	d.Emit(FriendOfflineEvent{Username: "x"})
	unsub()
	unsub()
	d.Emit(FriendOfflineEvent{Username: "x"})

	assert.Equal(t, 1, count)
	assert.Equal(t, 2, other)
}

func TestDispatcher_UnsubscribeDuringEmit(t *testing.T) {
	d := NewDispatcher()

	calls := 0
	var unsub func()
	unsub = d.OnConnected(func(ConnectedEvent) {
		calls++
		unsub()
	})

	d.Emit(ConnectedEvent{})
	d.Emit(ConnectedEvent{})
	assert.Equal(t, 1, calls)
}

func TestBridge_ForwardsEveryKind(t *testing.T) {
	d := NewDispatcher()

	var kinds []EventKind
	stop := Bridge(d, func(ev Event) { kinds = append(kinds, ev.Kind()) })

	all := []Event{
		ConnectedEvent{},
		DisconnectedEvent{},
		MessageEvent{},
		ChannelHistoryEvent{},
		UserJoinedEvent{},
		UserLeftEvent{},
		FriendOnlineEvent{},
		FriendOfflineEvent{},
		FriendUpdateEvent{},
		ErrorEvent{},
	}
	for _, ev := range all {
		d.Emit(ev)
	}
	assert.Len(t, kinds, len(all))
	for i, ev := range all {
		assert.Equal(t, ev.Kind(), kinds[i])
	}

	stop()
	d.Emit(ErrorEvent{})
	assert.Len(t, kinds, len(all))
}
