// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transport

import "sync"

// handlers is a subscriber list for one event type.
type handlers[E Event] struct {
	entries []handlerEntry[E]
}

type handlerEntry[E Event] struct {
	id uint64
	fn func(E)
}

func (h *handlers[E]) add(id uint64, fn func(E)) {
	h.entries = append(h.entries, handlerEntry[E]{id: id, fn: fn})
}

func (h *handlers[E]) remove(id uint64) {
	for i, e := range h.entries {
		if e.id == id {
			h.entries = append(h.entries[:i:i], h.entries[i+1:]...)
			return
		}
	}
}

func (h *handlers[E]) snapshot() []func(E) {
	out := make([]func(E), len(h.entries))
	for i, e := range h.entries {
		out[i] = e.fn
	}
	return out
}

// Dispatcher fans events out to typed subscribers. It is safe for
// concurrent use. Handlers run on the emitting goroutine, outside the
// dispatcher's lock, in subscription order.
type Dispatcher struct {
	mu     sync.Mutex
	nextID uint64

	connected      handlers[ConnectedEvent]
	disconnected   handlers[DisconnectedEvent]
	message        handlers[MessageEvent]
	channelHistory handlers[ChannelHistoryEvent]
	userJoined     handlers[UserJoinedEvent]
	userLeft       handlers[UserLeftEvent]
	friendOnline   handlers[FriendOnlineEvent]
	friendOffline  handlers[FriendOfflineEvent]
	friendUpdate   handlers[FriendUpdateEvent]
	errors         handlers[ErrorEvent]
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// subscribe registers fn on list and returns its unsubscribe function.
// The unsubscribe function is idempotent.
func subscribe[E Event](d *Dispatcher, list *handlers[E], fn func(E)) func() {
	d.mu.Lock()
	d.nextID++
	id := d.nextID
	list.add(id, fn)
	d.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			d.mu.Lock()
			list.remove(id)
			d.mu.Unlock()
		})
	}
}

func emit[E Event](d *Dispatcher, list *handlers[E], ev E) {
	d.mu.Lock()
	fns := list.snapshot()
	d.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

func (d *Dispatcher) OnConnected(fn func(ConnectedEvent)) func() {
	return subscribe(d, &d.connected, fn)
}

func (d *Dispatcher) OnDisconnected(fn func(DisconnectedEvent)) func() {
	return subscribe(d, &d.disconnected, fn)
}

func (d *Dispatcher) OnMessage(fn func(MessageEvent)) func() {
	return subscribe(d, &d.message, fn)
}

func (d *Dispatcher) OnChannelHistory(fn func(ChannelHistoryEvent)) func() {
	return subscribe(d, &d.channelHistory, fn)
}

func (d *Dispatcher) OnUserJoined(fn func(UserJoinedEvent)) func() {
	return subscribe(d, &d.userJoined, fn)
}

func (d *Dispatcher) OnUserLeft(fn func(UserLeftEvent)) func() {
	return subscribe(d, &d.userLeft, fn)
}

func (d *Dispatcher) OnFriendOnline(fn func(FriendOnlineEvent)) func() {
	return subscribe(d, &d.friendOnline, fn)
}

func (d *Dispatcher) OnFriendOffline(fn func(FriendOfflineEvent)) func() {
	return subscribe(d, &d.friendOffline, fn)
}

func (d *Dispatcher) OnFriendUpdate(fn func(FriendUpdateEvent)) func() {
	return subscribe(d, &d.friendUpdate, fn)
}

func (d *Dispatcher) OnError(fn func(ErrorEvent)) func() {
	return subscribe(d, &d.errors, fn)
}

// Emit delivers ev to the subscribers of its kind.
func (d *Dispatcher) Emit(ev Event) {
	switch e := ev.(type) {
	case ConnectedEvent:
		emit(d, &d.connected, e)
	case DisconnectedEvent:
		emit(d, &d.disconnected, e)
	case MessageEvent:
		emit(d, &d.message, e)
	case ChannelHistoryEvent:
		emit(d, &d.channelHistory, e)
	case UserJoinedEvent:
		emit(d, &d.userJoined, e)
	case UserLeftEvent:
		emit(d, &d.userLeft, e)
	case FriendOnlineEvent:
		emit(d, &d.friendOnline, e)
	case FriendOfflineEvent:
		emit(d, &d.friendOffline, e)
	case FriendUpdateEvent:
		emit(d, &d.friendUpdate, e)
	case ErrorEvent:
		emit(d, &d.errors, e)
	}
}

// Bridge subscribes forward to every event kind and returns a function
// that removes all of those subscriptions. It is how a single-threaded
// consumer funnels events into its own loop.
func Bridge(d *Dispatcher, forward func(Event)) func() {
	unsubs := []func(){
		d.OnConnected(func(e ConnectedEvent) { forward(e) }),
		d.OnDisconnected(func(e DisconnectedEvent) { forward(e) }),
		d.OnMessage(func(e MessageEvent) { forward(e) }),
		d.OnChannelHistory(func(e ChannelHistoryEvent) { forward(e) }),
		d.OnUserJoined(func(e UserJoinedEvent) { forward(e) }),
		d.OnUserLeft(func(e UserLeftEvent) { forward(e) }),
		d.OnFriendOnline(func(e FriendOnlineEvent) { forward(e) }),
		d.OnFriendOffline(func(e FriendOfflineEvent) { forward(e) }),
		d.OnFriendUpdate(func(e FriendUpdateEvent) { forward(e) }),
		d.OnError(func(e ErrorEvent) { forward(e) }),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}
