// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// FRIEND
// =============================================================================

// Friend is an entry of the local user's social graph. IsOnline is derived
// from presence and is never taken from the directory as authoritative.
type Friend struct {
	FriendID   int64  `json:"friend_id"`
	FriendName string `json:"friend_name"`
	IsOnline   bool   `json:"-"`
}

// =============================================================================
// FRIEND REQUEST
// =============================================================================

// RequestDirection tells whether the local user received or sent a request.
type RequestDirection string

const (
	DirectionReceived RequestDirection = "received"
	DirectionSent     RequestDirection = "sent"
)

// FriendRequest is a pending friendship request.
type FriendRequest struct {
	ID           int64            `json:"id"`
	FromUserID   int64            `json:"from_user_id"`
	FromUsername string           `json:"from_username"`
	ToUserID     int64            `json:"to_user_id"`
	ToUsername   string           `json:"to_username"`
	Direction    RequestDirection `json:"direction"`
}

// CanAccept reports whether the request may be accepted by the local user.
func (r FriendRequest) CanAccept() bool {
	return r.Direction == DirectionReceived
}

// CanReject reports whether the request may be rejected by the local user.
func (r FriendRequest) CanReject() bool {
	return r.Direction == DirectionReceived
}

// CanCancel reports whether the request may be withdrawn by the local user.
func (r FriendRequest) CanCancel() bool {
	return r.Direction == DirectionSent
}

// Counterpart returns the username on the other side of the request.
func (r FriendRequest) Counterpart() string {
	if r.Direction == DirectionSent {
		return r.ToUsername
	}
	return r.FromUsername
}
