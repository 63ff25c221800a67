// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package friends is the HTTP client for the friend directory service.
//
// All calls take a context and return explicit errors. Server failures
// (5xx) and network errors are retried with capped exponential backoff.
// RemoveFriend treats a not-found answer as success, since the other
// party may already have ended the friendship.
//
// # Endpoints
//
//	GET    /friends                      list friends
//	GET    /friends/requests             list pending requests
//	POST   /friends/requests             send a request {"username": ...}
//	POST   /friends/requests/{id}/accept accept a received request
//	POST   /friends/requests/{id}/reject reject a received request
//	DELETE /friends/requests/{id}        cancel a sent request
//	DELETE /friends/{id}                 remove a friend
package friends
