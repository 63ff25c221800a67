// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/jeranaias/critterchat/internal/channels"
	"github.com/jeranaias/critterchat/internal/commands"
	"github.com/jeranaias/critterchat/internal/config"
	"github.com/jeranaias/critterchat/internal/logging"
	"github.com/jeranaias/critterchat/internal/model"
	"github.com/jeranaias/critterchat/internal/presence"
	"github.com/jeranaias/critterchat/internal/transport"
	"github.com/jeranaias/critterchat/internal/ui/render"
	"github.com/jeranaias/critterchat/internal/ui/styles"
)

// maxInputLength caps a single outgoing line.
const maxInputLength = 500

// =============================================================================
// COLLABORATORS
// =============================================================================

// Transport is the chat connection. *transport.Client implements it.
type Transport interface {
	Events() *transport.Dispatcher
	IsConnected() bool
	Connect(ctx context.Context, credential, endpoint string) error
	Disconnect()
	JoinChannel(name string) error
	SendChannelMessage(channel, body string) error
	SendWhisper(target, body string) error
}

// Directory is the friend directory. *friends.Client implements it.
type Directory interface {
	IsConfigured() bool
	ListFriends(ctx context.Context) ([]model.Friend, error)
	ListRequests(ctx context.Context) ([]model.FriendRequest, error)
	SendRequest(ctx context.Context, username string) error
	AcceptRequest(ctx context.Context, id int64) error
	RejectRequest(ctx context.Context, id int64) error
	CancelRequest(ctx context.Context, id int64) error
	RemoveFriend(ctx context.Context, id int64) error
}

// Sender delivers a message into the running program, usually
// (*tea.Program).Send.
type Sender func(tea.Msg)

// Options configures a Model.
type Options struct {
	Config    *config.Config
	Transport Transport
	Directory Directory
	Theme     *styles.Theme
	Logger    *zerolog.Logger
}

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the chat subsystem.
type Model struct {
	cfg  *config.Config
	keys KeyMap
	log  zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	transport Transport
	dir       Directory
	detach    func()

	presence *presence.Overlay
	tabs     *channels.Model
	parser   *commands.Parser
	engine   *render.Engine
	theme    *styles.Theme
	input    textinput.Model

	friends friendsPane

	// Commands produced by callbacks from the tab model and presence
	// overlay, returned from the current Update.
	deferred []tea.Cmd
}

// New builds the subsystem. It does not connect; Init does.
func New(opts Options) *Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme()
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Model{
		cfg:       cfg,
		keys:      DefaultKeyMap(),
		log:       logging.Module("chat"),
		ctx:       ctx,
		cancel:    cancel,
		transport: opts.Transport,
		dir:       opts.Directory,
		presence:  presence.New(),
		theme:     theme,
	}
	if opts.Logger != nil {
		m.log = *opts.Logger
	}

	var joiner channels.Joiner
	if opts.Transport != nil {
		joiner = opts.Transport
	}
	m.tabs = channels.New(channels.Options{
		LocalUser:      cfg.Identity.Username,
		Capacity:       cfg.Chat.HistoryCapacity,
		Channels:       cfg.Chat.Channels,
		ServerChannels: cfg.Chat.ServerChannels,
		Joiner:         joiner,
		Reachability:   m.presence,
		Notifier:       deferredNotifier{m},
	})
	m.parser = commands.NewParser(cfg.Chat.CommandPrefix, commands.NewRegistry())
	m.engine = render.New(m.tabs, render.Options{
		Theme:           theme,
		LocalUser:       cfg.Identity.Username,
		Debounce:        cfg.Chat.Debounce.Duration,
		VisibleWindow:   cfg.Chat.VisibleWindow,
		NearBottomLines: cfg.Chat.NearBottomLines,
		PreserveRelease: cfg.Chat.PreserveScrollRelease.Duration,
		InfoDuration:    cfg.Chat.InfoNotification.Duration,
		ErrorDuration:   cfg.Chat.ErrorNotification.Duration,
		Trigger:         cfg.Chat.MentionTrigger,
		Static:          m.renderFriends,
	})
	m.presence.SetListener(func(name string, online bool) {
		if online {
			m.later(m.engine.Notify(name+" is online", false))
		} else {
			m.later(m.engine.Notify(name+" went offline", false))
		}
	})

	m.input = textinput.New()
	m.input.Prompt = ""
	m.input.Placeholder = "Type a message or " + m.parser.Prefix() + "help"
	m.input.CharLimit = maxInputLength
	m.input.Focus()

	return m
}

// Attach forwards transport events into the program through send. It
// must be called before Init's connect runs.
func (m *Model) Attach(send Sender) {
	if m.transport == nil || send == nil {
		return
	}
	if m.detach != nil {
		m.detach()
	}
	m.detach = transport.Bridge(m.transport.Events(), func(ev transport.Event) {
		send(TransportEventMsg{Event: ev})
	})
}

// Close unsubscribes, cancels directory calls and disconnects.
func (m *Model) Close() {
	if m.detach != nil {
		m.detach()
		m.detach = nil
	}
	m.cancel()
	m.engine.Teardown()
	if m.transport != nil {
		m.transport.Disconnect()
	}
}

// Init starts the connection and the first friends load.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.connectCmd(), m.loadFriendsCmd()}
	return tea.Batch(append(cmds, m.drain()...)...)
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Tabs returns the tab model.
func (m *Model) Tabs() *channels.Model { return m.tabs }

// Presence returns the presence overlay.
func (m *Model) Presence() *presence.Overlay { return m.presence }

// Engine returns the render engine.
func (m *Model) Engine() *render.Engine { return m.engine }

// Input returns the current input text.
func (m *Model) Input() string { return m.input.Value() }

// Connected reports whether the transport is live.
func (m *Model) Connected() bool {
	return m.transport != nil && m.transport.IsConnected()
}

// =============================================================================
// DEFERRED COMMANDS
// =============================================================================

func (m *Model) later(cmd tea.Cmd) {
	if cmd != nil {
		m.deferred = append(m.deferred, cmd)
	}
}

func (m *Model) drain() []tea.Cmd {
	out := m.deferred
	m.deferred = nil
	return out
}

// notify shows a notification from inside Update.
func (m *Model) notify(msg string, isError bool) {
	m.later(m.engine.Notify(msg, isError))
}

// deferredNotifier adapts the engine's notifications to channels.Notifier.
type deferredNotifier struct{ m *Model }

func (n deferredNotifier) Notify(msg string, isError bool) { n.m.notify(msg, isError) }

// connectCmd runs the first connection attempt.
func (m *Model) connectCmd() tea.Cmd {
	if m.transport == nil {
		return nil
	}
	endpoint := m.cfg.Server.Endpoint
	if endpoint == "" {
		m.notify("No chat server configured", true)
		return nil
	}
	t, ctx, cred := m.transport, m.ctx, m.cfg.Server.Credential
	return func() tea.Msg {
		return connectResultMsg{err: t.Connect(ctx, cred, endpoint)}
	}
}
