// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat is the chat subsystem: a Bubble Tea model that owns the
// transport client, presence overlay, tab model, command parser, friend
// directory client and render engine.
//
// Transport callbacks arrive on other goroutines and are forwarded into
// the program as TransportEventMsg values, so all state is mutated on the
// Bubble Tea event loop. Directory calls run as commands and report back
// with messages.
package chat
