// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package presence tracks who is online. It keeps two independent sets:
// every connected user (for whisper reachability and autocomplete) and
// online friends (for badges and notifications). General presence never
// touches friend state.
//
// An Overlay is not safe for concurrent use.
package presence

import (
	"sort"

	"github.com/jeranaias/critterchat/internal/model"
)

// FriendListener is told when a friend's online state changes.
type FriendListener func(name string, online bool)

// Overlay holds the presence sets and the friend list they decorate.
type Overlay struct {
	// Keyed by model.NameKey, valued by the name as first seen.
	onlineUsers   map[string]string
	onlineFriends map[string]string

	friends  []model.Friend
	listener FriendListener
}

// New creates an empty overlay.
func New() *Overlay {
	return &Overlay{
		onlineUsers:   make(map[string]string),
		onlineFriends: make(map[string]string),
	}
}

// SetListener registers the friend presence listener. Nil clears it.
func (o *Overlay) SetListener(fn FriendListener) {
	o.listener = fn
}

// =============================================================================
// GENERAL PRESENCE
// =============================================================================

// UserJoined records a connected user.
func (o *Overlay) UserJoined(name string) {
	if key := model.NameKey(name); key != "" {
		o.onlineUsers[key] = name
	}
}

// UserLeft forgets a connected user.
func (o *Overlay) UserLeft(name string) {
	delete(o.onlineUsers, model.NameKey(name))
}

// OnlineUsers returns connected user names, sorted.
func (o *Overlay) OnlineUsers() []string {
	names := make([]string, 0, len(o.onlineUsers))
	for _, n := range o.onlineUsers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// =============================================================================
// FRIEND PRESENCE
// =============================================================================

// FriendOnline marks a friend online and notifies the listener.
func (o *Overlay) FriendOnline(name string) {
	key := model.NameKey(name)
	if key == "" {
		return
	}
	o.onlineFriends[key] = name
	o.recompute()
	if o.listener != nil {
		o.listener(name, true)
	}
}

// FriendOffline marks a friend offline and notifies the listener.
func (o *Overlay) FriendOffline(name string) {
	key := model.NameKey(name)
	if key == "" {
		return
	}
	delete(o.onlineFriends, key)
	o.recompute()
	if o.listener != nil {
		o.listener(name, false)
	}
}

// IsFriendOnline reports whether name is in the online friends set.
func (o *Overlay) IsFriendOnline(name string) bool {
	_, ok := o.onlineFriends[model.NameKey(name)]
	return ok
}

// SetFriends replaces the friend list with a directory result and
// derives IsOnline for each entry.
func (o *Overlay) SetFriends(list []model.Friend) {
	o.friends = append([]model.Friend(nil), list...)
	o.recompute()
}

// RemoveFriend drops a friend by ID. It reports whether one was removed.
func (o *Overlay) RemoveFriend(id int64) bool {
	for i, f := range o.friends {
		if f.FriendID == id {
			o.friends = append(o.friends[:i:i], o.friends[i+1:]...)
			return true
		}
	}
	return false
}

// Friends returns a copy of the friend list, online friends first, then
// by name.
func (o *Overlay) Friends() []model.Friend {
	out := append([]model.Friend(nil), o.friends...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsOnline != out[j].IsOnline {
			return out[i].IsOnline
		}
		return model.NameKey(out[i].FriendName) < model.NameKey(out[j].FriendName)
	})
	return out
}

// IsFriend reports whether name is on the friend list.
func (o *Overlay) IsFriend(name string) bool {
	for _, f := range o.friends {
		if model.SameName(f.FriendName, name) {
			return true
		}
	}
	return false
}

func (o *Overlay) recompute() {
	for i := range o.friends {
		o.friends[i].IsOnline = o.IsFriendOnline(o.friends[i].FriendName)
	}
}

// =============================================================================
// REACHABILITY
// =============================================================================

// IsReachable reports whether a whisper to name can be delivered: the
// user is in either presence set.
func (o *Overlay) IsReachable(name string) bool {
	key := model.NameKey(name)
	if key == "" {
		return false
	}
	if _, ok := o.onlineUsers[key]; ok {
		return true
	}
	_, ok := o.onlineFriends[key]
	return ok
}

// Reset clears both presence sets. The friend list is kept but shown
// offline.
func (o *Overlay) Reset() {
	clear(o.onlineUsers)
	clear(o.onlineFriends)
	o.recompute()
}
