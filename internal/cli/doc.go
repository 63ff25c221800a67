// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli parses the command line and runs critterchat.
//
// # Commands
//
//	critterchat                  Start the chat TUI (default)
//	critterchat version          Print version information
//	critterchat config path      Print the config file location
//	critterchat config show      Print the effective configuration
//	critterchat config init      Write a default config file
//
// # Global flags
//
//	--config PATH      Use a specific config file
//	--endpoint URL     Override server.endpoint
//	--user NAME        Override identity.username
//	--log-level LEVEL  Override log.level
package cli
