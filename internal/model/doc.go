// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared by the chat subsystem.
//
// # Key Types
//
//   - ChannelKind: closed enumeration of conversation contexts
//   - ChatMessage: immutable chat line with a derived color tag
//   - Friend: a social graph entry with a derived online flag
//   - FriendRequest: a pending request with direction-dependent actions
//
// # Usage
//
//	msg := model.NewChatMessage(model.KindGlobal, "Bob", "hi")
//	fmt.Println(msg.Color) // white
//
// Usernames are compared with NameKey, which trims and case-folds:
//
//	model.SameName(" Alya", "ALYA") // true
package model
