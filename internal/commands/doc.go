// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands turns chat input into intents.
//
// Input that does not begin with the command prefix is plain text for
// the active tab. Prefixed input must name a registered command; unknown
// commands and missing arguments are errors and nothing is sent.
//
// # Built-in Commands
//
//   - /w <target> <message>: Whisper (aliases /whisper, /msg, /tell)
//   - /g <message>: Say in the global channel (aliases /global, /say)
//   - /friend <username>: Send a friend request (aliases /addfriend, /af)
//   - /help: List commands (alias /?)
//
// # Usage
//
//	p := commands.NewParser("/", commands.NewRegistry())
//	intent, err := p.Parse("/w bob see you at the pond")
//	// intent == commands.Whisper{Target: "bob", Body: "see you at the pond"}
package commands
