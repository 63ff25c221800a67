// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/jeranaias/critterchat/internal/logging"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// Time allowed to write a frame to the server.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong from the server.
	pongWait = 60 * time.Second

	// Ping period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Largest inbound frame accepted.
	maxMessageSize = 64 * 1024

	// Outbound frames buffered per connection.
	sendBufferSize = 64

	// DefaultDialTimeout bounds the websocket handshake.
	DefaultDialTimeout = 10 * time.Second

	// DefaultAuthTimeout bounds the wait for auth_ok.
	DefaultAuthTimeout = 5 * time.Second
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNotConnected is returned by sends while no connection is live.
	ErrNotConnected = errors.New("not connected to chat server")

	// ErrClosed is returned when Disconnect interrupts a Connect.
	ErrClosed = errors.New("connection closed")

	// ErrAuthFailed is returned when the server rejects the credential.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrRateLimited is returned when a chat send exceeds the send rate.
	ErrRateLimited = errors.New("sending too fast")

	// ErrSendBufferFull is returned when the outbound buffer is full.
	ErrSendBufferFull = errors.New("send buffer full")
)

// =============================================================================
// OPTIONS
// =============================================================================

// Options configures a Client. Zero values get defaults.
type Options struct {
	DialTimeout time.Duration
	AuthTimeout time.Duration
	Backoff     Backoff

	// SendRate is chat sends per second; SendBurst is the bucket size.
	// A zero SendRate disables limiting.
	SendRate  float64
	SendBurst int

	// Dispatcher receives events. A new one is created when nil.
	Dispatcher *Dispatcher

	// Logger overrides the module logger.
	Logger *zerolog.Logger
}

// =============================================================================
// CLIENT
// =============================================================================

// Client is the chat server connection. It is safe for concurrent use.
type Client struct {
	opts    Options
	events  *Dispatcher
	dialer  *websocket.Dialer
	limiter *rate.Limiter
	log     zerolog.Logger

	mu        sync.Mutex
	sess      *session
	connected bool
	cancel    context.CancelFunc
}

// NewClient creates a disconnected client.
func NewClient(opts Options) *Client {
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = DefaultDialTimeout
	}
	if opts.AuthTimeout <= 0 {
		opts.AuthTimeout = DefaultAuthTimeout
	}
	if opts.Backoff.Min <= 0 && opts.Backoff.Max <= 0 && opts.Backoff.MaxAttempts == 0 {
		opts.Backoff = DefaultBackoff
	}
	if opts.Dispatcher == nil {
		opts.Dispatcher = NewDispatcher()
	}

	limit := rate.Inf
	if opts.SendRate > 0 {
		limit = rate.Limit(opts.SendRate)
	}
	burst := opts.SendBurst
	if burst <= 0 {
		burst = 1
	}

	log := logging.Module("transport")
	if opts.Logger != nil {
		log = *opts.Logger
	}

	return &Client{
		opts:   opts,
		events: opts.Dispatcher,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: opts.DialTimeout,
		},
		limiter: rate.NewLimiter(limit, burst),
		log:     log,
	}
}

// Events returns the dispatcher events are delivered on.
func (c *Client) Events() *Dispatcher {
	return c.events
}

// IsConnected reports whether a connection is live.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Connect dials endpoint and authenticates with credential. It is a no-op
// while connected; a stale connection or pending reconnect is torn down
// first.
//
// Connect blocks for the first attempt and returns its error. Transient
// failures keep being retried in the background per Backoff; an
// authentication failure is not retried.
func (c *Client) Connect(ctx context.Context, credential, endpoint string) error {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return errors.New("endpoint is required")
	}

	c.mu.Lock()
	if c.connected && c.sess != nil {
		c.mu.Unlock()
		return nil
	}
	c.teardownLocked()
	loopCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.mu.Unlock()

	s, username, err := c.dial(ctx, credential, endpoint)
	if err != nil {
		if errors.Is(err, ErrAuthFailed) || ctx.Err() != nil {
			cancel()
			return err
		}
		c.log.Warn().Err(err).Str("endpoint", endpoint).Msg("initial connect failed, retrying")
		go c.supervise(loopCtx, nil, credential, endpoint)
		return err
	}

	if !c.activate(loopCtx, s, endpoint, username) {
		return ErrClosed
	}
	go c.supervise(loopCtx, s, credential, endpoint)
	return nil
}

// Disconnect closes the connection and cancels reconnection.
func (c *Client) Disconnect() {
	c.mu.Lock()
	wasConnected := c.connected
	c.teardownLocked()
	c.mu.Unlock()

	if wasConnected {
		c.log.Info().Msg("disconnected by client")
		c.events.Emit(DisconnectedEvent{Reason: "closed by client", At: time.Now()})
	}
}

// teardownLocked stops the supervisor and closes the session.
// Caller holds c.mu.
func (c *Client) teardownLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.sess != nil {
		c.sess.close()
		c.sess = nil
	}
	c.connected = false
}

// activate installs s as the live session, announces it and starts its
// pumps. It returns false if ctx was cancelled in the meantime.
func (c *Client) activate(ctx context.Context, s *session, endpoint, username string) bool {
	c.mu.Lock()
	if ctx.Err() != nil {
		c.mu.Unlock()
		s.close()
		return false
	}
	c.sess = s
	c.connected = true
	c.mu.Unlock()

	c.log.Info().Str("endpoint", endpoint).Str("user", username).Msg("connected")
	c.events.Emit(ConnectedEvent{Endpoint: endpoint, Username: username, At: time.Now()})
	s.start(c.handleFrame, c.log)
	return true
}

// supervise waits for s to die and reconnects until ctx is cancelled or
// the attempts run out. A nil s starts directly with reconnection.
func (c *Client) supervise(ctx context.Context, s *session, credential, endpoint string) {
	for {
		if s != nil {
			select {
			case <-ctx.Done():
				return
			case <-s.done:
			}
			if ctx.Err() != nil {
				return
			}

			c.mu.Lock()
			if c.sess == s {
				c.sess = nil
				c.connected = false
			}
			c.mu.Unlock()

			reason := "connection lost"
			if err := s.err(); err != nil {
				reason = err.Error()
			}
			c.log.Warn().Str("reason", reason).Msg("connection lost")
			c.events.Emit(DisconnectedEvent{Reason: reason, At: time.Now()})
		}

		next, err := c.reconnect(ctx, credential, endpoint)
		if err != nil {
			if ctx.Err() == nil {
				c.log.Error().Err(err).Msg("giving up on reconnection")
			}
			return
		}
		s = next
	}
}

func (c *Client) reconnect(ctx context.Context, credential, endpoint string) (*session, error) {
	b := c.opts.Backoff
	for attempt := 0; !b.Exhausted(attempt); attempt++ {
		timer := time.NewTimer(b.Delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		s, username, err := c.dial(ctx, credential, endpoint)
		if err != nil {
			c.log.Warn().Err(err).Int("attempt", attempt+1).Msg("reconnect attempt failed")
			if errors.Is(err, ErrAuthFailed) {
				return nil, err
			}
			continue
		}
		if !c.activate(ctx, s, endpoint, username) {
			return nil, ErrClosed
		}
		return s, nil
	}
	return nil, fmt.Errorf("reconnect failed after %d attempts", b.MaxAttempts)
}

// dial opens the websocket and runs the auth handshake.
func (c *Client) dial(ctx context.Context, credential, endpoint string) (*session, string, error) {
	dctx, cancel := context.WithTimeout(ctx, c.opts.DialTimeout)
	defer cancel()

	ws, resp, err := c.dialer.DialContext(dctx, endpoint, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, "", fmt.Errorf("dial %s: %w", endpoint, err)
	}

	username, err := handshake(ws, credential, c.opts.AuthTimeout)
	if err != nil {
		ws.Close()
		return nil, "", err
	}
	return newSession(ws), username, nil
}

// handshake sends auth and waits for the verdict.
func handshake(ws *websocket.Conn, credential string, timeout time.Duration) (string, error) {
	frame, err := Encode(TypeAuth, AuthPayload{Token: credential})
	if err != nil {
		return "", err
	}

	ws.SetWriteDeadline(time.Now().Add(writeWait))
	if err := ws.WriteMessage(websocket.TextMessage, frame); err != nil {
		return "", fmt.Errorf("send auth: %w", err)
	}

	ws.SetReadLimit(maxMessageSize)
	ws.SetReadDeadline(time.Now().Add(timeout))
	_, data, err := ws.ReadMessage()
	if err != nil {
		return "", fmt.Errorf("await auth: %w", err)
	}
	ws.SetReadDeadline(time.Time{})

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", fmt.Errorf("malformed auth reply: %w", err)
	}

	var result AuthResultPayload
	if len(env.Payload) > 0 {
		_ = json.Unmarshal(env.Payload, &result)
	}

	switch env.Type {
	case TypeAuthOK:
		return result.Username, nil
	case TypeAuthError:
		if result.Message != "" {
			return "", fmt.Errorf("%w: %s", ErrAuthFailed, result.Message)
		}
		return "", ErrAuthFailed
	default:
		return "", fmt.Errorf("unexpected %q frame during handshake", env.Type)
	}
}

func (c *Client) handleFrame(data []byte) {
	ev, err := Decode(data)
	if err != nil {
		c.log.Warn().Err(err).Msg("ignoring frame")
		return
	}
	c.log.Debug().Str("event", ev.Kind().String()).Msg("received")
	c.events.Emit(ev)
}

// =============================================================================
// SENDING
// =============================================================================

// JoinChannel subscribes the connection to a server channel.
func (c *Client) JoinChannel(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("channel name is required")
	}
	return c.send(TypeJoinChannel, JoinChannelPayload{Name: name}, false)
}

// SendChannelMessage posts body to a broadcast channel.
func (c *Client) SendChannelMessage(channel, body string) error {
	return c.send(TypeChannelMessage, ChannelMessagePayload{Channel: channel, Body: body}, true)
}

// SendWhisper sends body directly to target.
func (c *Client) SendWhisper(target, body string) error {
	return c.send(TypeWhisper, WhisperPayload{Target: target, Body: body}, true)
}

func (c *Client) send(frameType string, payload any, limited bool) error {
	c.mu.Lock()
	s, ok := c.sess, c.connected
	c.mu.Unlock()

	if !ok || s == nil {
		c.log.Warn().Str("type", frameType).Msg("send dropped: not connected")
		return ErrNotConnected
	}
	if limited && !c.limiter.Allow() {
		c.log.Warn().Str("type", frameType).Msg("send dropped: rate limited")
		return ErrRateLimited
	}

	data, err := Encode(frameType, payload)
	if err != nil {
		return err
	}
	return s.enqueue(data)
}

// =============================================================================
// SESSION
// =============================================================================

// session is one live websocket and its pumps.
type session struct {
	ws   *websocket.Conn
	send chan []byte

	stop      chan struct{} // closed to stop the pumps
	done      chan struct{} // closed when the read pump exits
	closeOnce sync.Once

	mu      sync.Mutex
	lastErr error
}

func newSession(ws *websocket.Conn) *session {
	return &session{
		ws:   ws,
		send: make(chan []byte, sendBufferSize),
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

func (s *session) start(onFrame func([]byte), log zerolog.Logger) {
	go s.readPump(onFrame, log)
	go s.writePump()
}

func (s *session) close() {
	s.closeOnce.Do(func() { close(s.stop) })
}

func (s *session) setErr(err error) {
	s.mu.Lock()
	if s.lastErr == nil {
		s.lastErr = err
	}
	s.mu.Unlock()
}

func (s *session) err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *session) enqueue(data []byte) error {
	select {
	case <-s.stop:
		return ErrNotConnected
	default:
	}
	select {
	case s.send <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

func (s *session) readPump(onFrame func([]byte), log zerolog.Logger) {
	defer func() {
		s.close()
		s.ws.Close()
		close(s.done)
	}()

	s.ws.SetReadLimit(maxMessageSize)
	s.ws.SetReadDeadline(time.Now().Add(pongWait))
	s.ws.SetPongHandler(func(string) error {
		s.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := s.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Msg("read error")
			}
			s.setErr(err)
			return
		}
		onFrame(data)
	}
}

func (s *session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.ws.Close()
	}()

	for {
		select {
		case data := <-s.send:
			s.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				s.setErr(err)
				return
			}

		case <-ticker.C:
			s.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.setErr(err)
				return
			}

		case <-s.stop:
			s.ws.SetWriteDeadline(time.Now().Add(writeWait))
			s.ws.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
