// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package transport owns the single persistent connection to the chat server.

# Key Components

## Client (client.go)

Client wraps one websocket connection:
  - Connect performs the dial and the auth handshake; it is idempotent
  - Disconnect tears the connection down and stops reconnection
  - JoinChannel, SendChannelMessage and SendWhisper write intents
  - Lost connections are re-established with bounded, capped backoff

Sends while disconnected return ErrNotConnected. Nothing is queued.

## Events (events.go, dispatcher.go)

Inbound frames are decoded into a closed set of event types. Each kind
has its own typed subscriber list on the Dispatcher:

	d := client.Events()
	unsub := d.OnMessage(func(ev transport.MessageEvent) {
		fmt.Println(ev.Message.Sender, ev.Message.Body)
	})
	defer unsub()

Handlers run on the client's reader goroutine. Consumers that need a
single-threaded view forward events into their own loop (see Bridge).

## Protocol (protocol.go)

JSON text frames of the form {"type": "...", "payload": {...}}.
*/
package transport
