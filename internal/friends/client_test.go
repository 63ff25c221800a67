// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package friends

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/critterchat/internal/model"
)

func newTestClient(t *testing.T, r http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", "tok").
		WithRetryDelay(time.Millisecond).
		WithLogger(zerolog.Nop())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestListFriends(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/friends", func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "Bearer tok", req.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{
			"friends": []map[string]any{
				{"friend_id": 1, "friend_name": "Bob"},
				{"friend_id": 2, "friend_name": "Carol"},
			},
		})
	})
	c := newTestClient(t, r)

	got, err := c.ListFriends(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.Friend{{FriendID: 1, FriendName: "Bob"}, {FriendID: 2, FriendName: "Carol"}}, got)
}

func TestListRequests(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/friends/requests", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"requests": []map[string]any{
				{"id": 7, "from_username": "dana", "to_username": "me", "direction": "received"},
				{"id": 8, "from_username": "me", "to_username": "eve", "direction": "sent"},
			},
		})
	})
	c := newTestClient(t, r)

	got, err := c.ListRequests(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].CanAccept())
	assert.Equal(t, "dana", got[0].Counterpart())
	assert.True(t, got[1].CanCancel())
	assert.Equal(t, "eve", got[1].Counterpart())
}

func TestSendRequest(t *testing.T) {
	got := make(chan map[string]string, 1)
	r := chi.NewRouter()
	r.Post("/friends/requests", func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
		var body map[string]string
		json.NewDecoder(req.Body).Decode(&body)
		got <- body
		w.WriteHeader(http.StatusCreated)
	})
	c := newTestClient(t, r)

	require.NoError(t, c.SendRequest(context.Background(), " frank "))
	assert.Equal(t, map[string]string{"username": "frank"}, <-got)

	assert.Error(t, c.SendRequest(context.Background(), ""))
}

func TestRequestActions(t *testing.T) {
	var (
		mu   sync.Mutex
		hits []string
	)
	record := func(s string) {
		mu.Lock()
		hits = append(hits, s)
		mu.Unlock()
	}
	r := chi.NewRouter()
	r.Post("/friends/requests/{id}/accept", func(w http.ResponseWriter, req *http.Request) {
		record("accept " + chi.URLParam(req, "id"))
	})
	r.Post("/friends/requests/{id}/reject", func(w http.ResponseWriter, req *http.Request) {
		record("reject " + chi.URLParam(req, "id"))
	})
	r.Delete("/friends/requests/{id}", func(w http.ResponseWriter, req *http.Request) {
		record("cancel " + chi.URLParam(req, "id"))
		w.WriteHeader(http.StatusNoContent)
	})
	c := newTestClient(t, r)
	ctx := context.Background()

	require.NoError(t, c.AcceptRequest(ctx, 1))
	require.NoError(t, c.RejectRequest(ctx, 2))
	require.NoError(t, c.CancelRequest(ctx, 3))
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"accept 1", "reject 2", "cancel 3"}, hits)
}

func TestRemoveFriend_NotFoundIsSuccess(t *testing.T) {
	r := chi.NewRouter()
	r.Delete("/friends/{id}", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no such friend"})
	})
	c := newTestClient(t, r)

	assert.NoError(t, c.RemoveFriend(context.Background(), 42))
}

func TestAcceptRequest_NotFoundIsError(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/friends/requests/{id}/accept", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "gone"})
	})
	c := newTestClient(t, r)

	err := c.AcceptRequest(context.Background(), 9)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "gone", apiErr.Message)
}

func TestRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	r := chi.NewRouter()
	r.Get("/friends", func(w http.ResponseWriter, req *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"friends": []any{}})
	})
	c := newTestClient(t, r)

	got, err := c.ListFriends(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	r := chi.NewRouter()
	r.Get("/friends", func(w http.ResponseWriter, req *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "down"})
	})
	c := newTestClient(t, r).WithMaxRetries(2)

	_, err := c.ListFriends(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max retries exceeded")
	assert.Equal(t, int32(2), calls.Load())
}

func TestClientErrorsNotRetried(t *testing.T) {
	var calls atomic.Int32
	r := chi.NewRouter()
	r.Post("/friends/requests", func(w http.ResponseWriter, req *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusConflict, map[string]string{"error": "already friends"})
	})
	c := newTestClient(t, r)

	err := c.SendRequest(context.Background(), "bob")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, int32(1), calls.Load())
}

func TestNotConfigured(t *testing.T) {
	c := NewClient("", "tok")
	assert.False(t, c.IsConfigured())
	_, err := c.ListFriends(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestCalculateBackoff(t *testing.T) {
	c := NewClient("http://x", "")
	assert.Equal(t, 500*time.Millisecond, c.calculateBackoff(0))
	assert.Equal(t, time.Second, c.calculateBackoff(1))
	assert.Equal(t, retryMaxDelay, c.calculateBackoff(10))
}
