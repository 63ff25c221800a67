// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for critterchat.
//
// # Configuration Files
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (CRITTERCHAT_*), including those from ./.env
//   - ~/.critterchat/config.toml
//   - ~/.critterchat/config.json
//   - Built-in defaults
//
// # Key Types
//
//   - Config: root configuration
//   - ServerConfig: websocket endpoint and credential
//   - FriendsConfig: friend directory service
//   - ReconnectConfig: bounded reconnection policy
//   - ChatConfig: tunable constants (prefix, trigger, capacities, timings)
//
// # Example
//
//	[server]
//	endpoint = "wss://play.example.com/chat"
//
//	[identity]
//	username = "alya"
//
//	[chat]
//	command_prefix = "/"
//	mention_trigger = "@"
//	history_capacity = 100
//	visible_window = 50
//	debounce = "8ms"
//
// # Hot Reload
//
// Watch observes the config file and hands each valid revision to a
// callback. Timing tunables take effect immediately; capacities, the
// command prefix and the endpoint need a restart.
package config
