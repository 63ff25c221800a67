// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/critterchat/internal/config"
	"github.com/jeranaias/critterchat/internal/model"
	"github.com/jeranaias/critterchat/internal/transport"
)

// =============================================================================
// MESSAGE TYPES
// =============================================================================

// TransportEventMsg carries a transport event into the event loop.
type TransportEventMsg struct {
	Event transport.Event
}

// ConfigReloadedMsg delivers a reloaded configuration. Only the timing
// tunables take effect without a restart.
type ConfigReloadedMsg struct {
	Config *config.Config
}

// connectResultMsg reports the first connection attempt.
type connectResultMsg struct {
	err error
}

// friendsLoadedMsg carries a directory reconciliation.
type friendsLoadedMsg struct {
	friends  []model.Friend
	requests []model.FriendRequest
	err      error
}

// friendAction names a directory mutation.
type friendAction int

const (
	actionSendRequest friendAction = iota
	actionAccept
	actionReject
	actionCancel
	actionRemove
)

func (a friendAction) String() string {
	switch a {
	case actionSendRequest:
		return "send friend request to"
	case actionAccept:
		return "accept request from"
	case actionReject:
		return "reject request from"
	case actionCancel:
		return "cancel request to"
	case actionRemove:
		return "remove"
	default:
		return "update"
	}
}

// friendActionMsg reports a directory mutation.
type friendActionMsg struct {
	action  friendAction
	subject string
	id      int64
	err     error
}
