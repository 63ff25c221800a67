// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package friends

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jeranaias/critterchat/internal/logging"
	"github.com/jeranaias/critterchat/internal/model"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// DefaultTimeout is the per-request HTTP timeout.
	DefaultTimeout = 10 * time.Second

	// DefaultMaxRetries is the number of attempts per call.
	DefaultMaxRetries = 3

	// retryBaseDelay is the initial backoff delay.
	retryBaseDelay = 500 * time.Millisecond

	// retryMaxDelay caps the backoff delay.
	retryMaxDelay = 10 * time.Second

	// MaxResponseSize bounds response bodies.
	MaxResponseSize = 1 * 1024 * 1024
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNotConfigured indicates no directory URL is set.
	ErrNotConfigured = errors.New("friend directory not configured")

	// ErrNotFound indicates the friend or request does not exist.
	ErrNotFound = errors.New("not found")
)

// APIError is a non-success answer from the directory.
type APIError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("friend directory error (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("friend directory error (%d)", e.Status)
}

// Is lets a 404 APIError match ErrNotFound.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

type errorBody struct {
	Error string `json:"error"`
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the friend directory.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	maxRetries int
	retryBase  time.Duration
	log        zerolog.Logger
}

// NewClient creates a client for baseURL authenticating with token.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(strings.TrimSpace(baseURL), "/"),
		token:      token,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		maxRetries: DefaultMaxRetries,
		retryBase:  retryBaseDelay,
		log:        logging.Module("friends"),
	}
}

// WithTimeout sets the per-request timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	if timeout > 0 {
		c.httpClient.Timeout = timeout
	}
	return c
}

// WithMaxRetries sets the attempt count. Values below one mean one.
func (c *Client) WithMaxRetries(n int) *Client {
	if n < 1 {
		n = 1
	}
	c.maxRetries = n
	return c
}

// WithRetryDelay sets the initial backoff delay.
func (c *Client) WithRetryDelay(d time.Duration) *Client {
	c.retryBase = d
	return c
}

// WithLogger replaces the module logger.
func (c *Client) WithLogger(l zerolog.Logger) *Client {
	c.log = l
	return c
}

// IsConfigured reports whether a base URL is set.
func (c *Client) IsConfigured() bool {
	return c.baseURL != ""
}

// =============================================================================
// OPERATIONS
// =============================================================================

// ListFriends returns the local user's friends.
func (c *Client) ListFriends(ctx context.Context) ([]model.Friend, error) {
	var out struct {
		Friends []model.Friend `json:"friends"`
	}
	if err := c.call(ctx, http.MethodGet, "/friends", nil, &out); err != nil {
		return nil, err
	}
	return out.Friends, nil
}

// ListRequests returns pending requests in both directions.
func (c *Client) ListRequests(ctx context.Context) ([]model.FriendRequest, error) {
	var out struct {
		Requests []model.FriendRequest `json:"requests"`
	}
	if err := c.call(ctx, http.MethodGet, "/friends/requests", nil, &out); err != nil {
		return nil, err
	}
	return out.Requests, nil
}

// SendRequest asks username to become a friend.
func (c *Client) SendRequest(ctx context.Context, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return errors.New("username is required")
	}
	body := map[string]string{"username": username}
	return c.call(ctx, http.MethodPost, "/friends/requests", body, nil)
}

// AcceptRequest accepts a received request.
func (c *Client) AcceptRequest(ctx context.Context, id int64) error {
	return c.call(ctx, http.MethodPost, fmt.Sprintf("/friends/requests/%d/accept", id), nil, nil)
}

// RejectRequest declines a received request.
func (c *Client) RejectRequest(ctx context.Context, id int64) error {
	return c.call(ctx, http.MethodPost, fmt.Sprintf("/friends/requests/%d/reject", id), nil, nil)
}

// CancelRequest withdraws a sent request.
func (c *Client) CancelRequest(ctx context.Context, id int64) error {
	return c.call(ctx, http.MethodDelete, fmt.Sprintf("/friends/requests/%d", id), nil, nil)
}

// RemoveFriend ends a friendship. A friendship that no longer exists
// counts as removed.
func (c *Client) RemoveFriend(ctx context.Context, id int64) error {
	err := c.call(ctx, http.MethodDelete, fmt.Sprintf("/friends/%d", id), nil, nil)
	if errors.Is(err, ErrNotFound) {
		c.log.Debug().Int64("friend_id", id).Msg("friend already removed")
		return nil
	}
	return err
}

// =============================================================================
// TRANSPORT
// =============================================================================

// call performs one logical request with retries and decodes the reply
// into out when out is non-nil.
func (c *Client) call(ctx context.Context, method, path string, in, out any) error {
	if !c.IsConfigured() {
		return ErrNotConfigured
	}

	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(c.calculateBackoff(attempt - 1)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		body, err := c.doRequest(ctx, method, path, payload)
		if err == nil {
			if out == nil || len(bytes.TrimSpace(body)) == 0 {
				return nil
			}
			if err := json.Unmarshal(body, out); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}
			return nil
		}

		lastErr = err
		if !isRetryable(err) {
			return err
		}
		c.log.Warn().Err(err).Str("method", method).Str("path", path).
			Int("attempt", attempt+1).Msg("directory request failed")
	}
	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (c *Client) doRequest(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := readResponse(resp)
	if err != nil {
		return nil, err
	}
	c.log.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).Msg("directory request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		var eb errorBody
		if json.Unmarshal(data, &eb) == nil && eb.Error != "" {
			apiErr.Message = eb.Error
		} else {
			apiErr.Message = strings.TrimSpace(string(data))
		}
		return nil, apiErr
	}
	return data, nil
}

func readResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if len(body) > MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

// isRetryable reports whether err warrants another attempt: 5xx answers
// and network failures, but never cancellation.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= 500
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// calculateBackoff returns the delay before retry number attempt+1.
func (c *Client) calculateBackoff(attempt int) time.Duration {
	delay := c.retryBase * time.Duration(1<<uint(attempt))
	if delay > retryMaxDelay {
		delay = retryMaxDelay
	}
	return delay
}
