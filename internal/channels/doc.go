// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package channels is the tab model: an ordered set of conversation
// contexts multiplexed over one connection.
//
// Broadcast tabs and the friends tab are created at startup and are
// permanent. Whisper tabs are created on demand, one per target, and may
// be closed. Each tab keeps a bounded log of messages; the oldest are
// evicted first.
//
// The model is the system of record for messages. Renderers read it
// through the Tab accessors and never mutate it. A Model is not safe for
// concurrent use.
package channels
