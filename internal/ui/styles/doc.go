// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the chat TUI.
//
// All colors use Lip Gloss AdaptiveColor for automatic light/dark
// detection. Message colors follow the channel color table in the model
// package: each model.Color maps to one palette entry.
//
// # Usage
//
//	theme := styles.NewTheme()
//	line := theme.MessageBody(msg.Color).Render(msg.Body)
package styles
