// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/critterchat/internal/channels"
	"github.com/jeranaias/critterchat/internal/model"
	"github.com/jeranaias/critterchat/internal/ui/styles"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// DefaultNearBottomLines is the distance from the bottom at which the
	// user counts as reading older content.
	DefaultNearBottomLines = 5

	// DefaultPreserveRelease is how long the preserve flag outlives the
	// render that follows typing.
	DefaultPreserveRelease = 150 * time.Millisecond

	// chromeLines is the tab bar (two lines), input and status line.
	chromeLines = 4

	// maxDropdownItems caps the visible suggestions.
	maxDropdownItems = 6

	// maxTabNameWidth truncates long tab names.
	maxTabNameWidth = 16
)

// =============================================================================
// OPTIONS AND MESSAGES
// =============================================================================

// Options configures an Engine. Zero values get defaults.
type Options struct {
	Theme     *styles.Theme
	LocalUser string

	Debounce        time.Duration
	VisibleWindow   int
	NearBottomLines int
	PreserveRelease time.Duration
	InfoDuration    time.Duration
	ErrorDuration   time.Duration
	Trigger         string

	// Static renders the body of tabs that hold no chat messages, such as
	// the friends surface.
	Static func(tab *channels.Tab, width int) string
}

// Timing carries the tunables that can change at runtime.
type Timing struct {
	Debounce        time.Duration
	NearBottomLines int
	PreserveRelease time.Duration
	InfoDuration    time.Duration
	ErrorDuration   time.Duration
}

// PreserveReleaseMsg clears the preserve flag if Gen is current.
type PreserveReleaseMsg struct {
	Gen uint64
}

// Stats counts engine work.
type Stats struct {
	FullRenders int
	Appends     int
	Skipped     int // full renders whose content was unchanged
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine is the single writer of presentation state.
type Engine struct {
	theme     *styles.Theme
	tabs      *channels.Model
	localUser string
	static    func(tab *channels.Tab, width int) string

	vp          viewport.Model
	sched       *Scheduler
	frags       *FragmentList
	renderedTab channels.TabID
	rendered    bool
	contentHash [sha256.Size]byte

	nearBottom      int
	preserve        bool
	preserveGen     uint64
	preserveRelease time.Duration
	follow          bool

	auto   *Autocomplete
	notes  *Notifications
	dialog Dialog

	width, height int
	stats         Stats
}

// New creates an engine reading from tabs.
func New(tabs *channels.Model, opts Options) *Engine {
	if opts.Theme == nil {
		opts.Theme = styles.NewTheme()
	}
	if opts.NearBottomLines <= 0 {
		opts.NearBottomLines = DefaultNearBottomLines
	}
	if opts.PreserveRelease <= 0 {
		opts.PreserveRelease = DefaultPreserveRelease
	}

	return &Engine{
		theme:           opts.Theme,
		tabs:            tabs,
		localUser:       opts.LocalUser,
		static:          opts.Static,
		vp:              viewport.New(0, 0),
		sched:           NewScheduler(opts.Debounce),
		frags:           NewFragmentList(opts.VisibleWindow),
		nearBottom:      opts.NearBottomLines,
		preserveRelease: opts.PreserveRelease,
		auto:            NewAutocomplete(opts.Trigger),
		notes:           NewNotifications(opts.InfoDuration, opts.ErrorDuration),
	}
}

// Autocomplete returns the mention dropdown state.
func (e *Engine) Autocomplete() *Autocomplete { return e.auto }

// Notifications returns the notification stack.
func (e *Engine) Notifications() *Notifications { return e.notes }

// Dialog returns the confirmation dialog.
func (e *Engine) Dialog() *Dialog { return &e.dialog }

// Scheduler returns the render scheduler.
func (e *Engine) Scheduler() *Scheduler { return e.sched }

// Viewport returns a copy of the message viewport.
func (e *Engine) Viewport() viewport.Model { return e.vp }

// Stats returns work counters.
func (e *Engine) Stats() Stats { return e.stats }

// Preserving reports whether the preserve-scroll flag is set.
func (e *Engine) Preserving() bool { return e.preserve }

// RenderedIDs returns the IDs of the messages on screen, oldest first.
func (e *Engine) RenderedIDs() []string { return e.frags.IDs() }

// ApplyTiming updates the runtime tunables.
func (e *Engine) ApplyTiming(t Timing) {
	e.sched.SetDelay(t.Debounce)
	if t.NearBottomLines > 0 {
		e.nearBottom = t.NearBottomLines
	}
	if t.PreserveRelease > 0 {
		e.preserveRelease = t.PreserveRelease
	}
	e.notes.SetDurations(t.InfoDuration, t.ErrorDuration)
}

// SetSize resizes the view and forces a render.
func (e *Engine) SetSize(width, height int) tea.Cmd {
	e.width, e.height = width, height
	e.theme.SetSize(width, height)
	e.vp.Width = width
	e.vp.Height = max(1, height-chromeLines)
	return e.Schedule(true)
}

// =============================================================================
// SCHEDULING
// =============================================================================

// Schedule requests a render. Forced renders run before it returns.
func (e *Engine) Schedule(force bool) tea.Cmd {
	now, cmd := e.sched.Request(force)
	if now {
		return e.fullRender()
	}
	return cmd
}

// Update handles the engine's own messages. It reports whether msg was
// one of them.
func (e *Engine) Update(msg tea.Msg) (tea.Cmd, bool) {
	switch msg := msg.(type) {
	case RenderTickMsg:
		if e.sched.Fire(msg) {
			return e.fullRender(), true
		}
		return nil, true

	case PreserveReleaseMsg:
		if msg.Gen == e.preserveGen {
			e.preserve = false
		}
		return nil, true

	case NotificationExpiredMsg:
		e.notes.Remove(msg.ID)
		return nil, true
	}
	return nil, false
}

// Teardown cancels pending work.
func (e *Engine) Teardown() {
	e.sched.Cancel()
	e.preserveGen++
	e.notes.Clear()
	e.dialog.Cancel()
	e.auto.Close()
}

// MarkTyping sets the preserve flag. It is released after the next
// render settles, or after the release delay if nothing renders.
func (e *Engine) MarkTyping() tea.Cmd {
	e.preserve = true
	return e.armRelease()
}

// Notify shows a transient notification.
func (e *Engine) Notify(message string, isError bool) tea.Cmd {
	_, cmd := e.notes.Add(message, isError)
	return cmd
}

// MessageAdded updates the view for a message the tab model accepted.
// Messages for the rendered active tab are appended in place; anything
// else falls back to a render.
func (e *Engine) MessageAdded(msg model.ChatMessage, res channels.AddResult) tea.Cmd {
	switch {
	case res.Dropped, res.Duplicate:
		return nil
	case !res.Active:
		// Only the tab bar badge changed; it is drawn every frame.
		return nil
	case res.Created:
		return e.Schedule(true)
	}

	e.follow = true
	if e.rendered && e.renderedTab == res.TabID && !e.isStatic(e.tabs.Active()) {
		e.appendFragment(msg)
		return nil
	}
	return e.Schedule(false)
}

// =============================================================================
// RENDER STRATEGIES
// =============================================================================

func (e *Engine) fullRender() tea.Cmd {
	tab := e.tabs.Active()
	if tab == nil {
		return nil
	}

	sameTab := e.rendered && e.renderedTab == tab.ID()
	anchor := CaptureScroll(e.vp, e.preserve)
	follow := !sameTab || (e.follow && !e.preserve && DistanceFromBottom(e.vp) < e.nearBottom)
	e.follow = false

	var content string
	if e.isStatic(tab) {
		e.frags.Reset(nil)
		content = e.static(tab, e.vp.Width)
	} else {
		msgs := tab.Recent(e.frags.limit)
		frags := make([]Fragment, len(msgs))
		for i, m := range msgs {
			frags[i] = Fragment{ID: m.ID, Text: e.formatMessage(m)}
		}
		e.frags.Reset(frags)
		content = e.frags.Content()
	}
	e.setContent(content)

	if follow {
		e.vp.GotoBottom()
	} else {
		anchor.Restore(&e.vp)
	}

	e.rendered = true
	e.renderedTab = tab.ID()
	e.stats.FullRenders++
	return e.settle()
}

func (e *Engine) appendFragment(msg model.ChatMessage) {
	follow := e.follow && !e.preserve && DistanceFromBottom(e.vp) < e.nearBottom
	e.follow = false

	pruned, ok := e.frags.Append(Fragment{ID: msg.ID, Text: e.formatMessage(msg)})
	if !ok {
		return
	}
	removed := 0
	for _, f := range pruned {
		removed += f.Lines()
	}

	offset := e.vp.YOffset - removed
	e.setContent(e.frags.Content())
	if follow {
		e.vp.GotoBottom()
	} else {
		ScrollAnchor{Absolute: true, Offset: offset}.Restore(&e.vp)
	}
	e.stats.Appends++
}

// setContent skips the viewport update when content is unchanged.
func (e *Engine) setContent(content string) {
	h := sha256.Sum256([]byte(content))
	if h == e.contentHash && e.rendered {
		e.stats.Skipped++
		return
	}
	e.contentHash = h
	e.vp.SetContent(content)
}

// settle arms the preserve release after a render.
func (e *Engine) settle() tea.Cmd {
	if !e.preserve {
		return nil
	}
	return e.armRelease()
}

func (e *Engine) armRelease() tea.Cmd {
	e.preserveGen++
	gen := e.preserveGen
	return tea.Tick(e.preserveRelease, func(time.Time) tea.Msg {
		return PreserveReleaseMsg{Gen: gen}
	})
}

func (e *Engine) isStatic(tab *channels.Tab) bool {
	return tab != nil && tab.Kind() == model.KindFriends && e.static != nil
}

// =============================================================================
// SCROLLING
// =============================================================================

// ScrollBy moves the view by delta lines.
func (e *Engine) ScrollBy(delta int) {
	e.vp.SetYOffset(min(max(e.vp.YOffset+delta, 0), MaxOffset(e.vp)))
}

// PageUp scrolls up one screen.
func (e *Engine) PageUp() { e.ScrollBy(-e.vp.Height) }

// PageDown scrolls down one screen.
func (e *Engine) PageDown() { e.ScrollBy(e.vp.Height) }

// ScrollToBottom jumps to the newest message.
func (e *Engine) ScrollToBottom() { e.vp.GotoBottom() }

// HandleMouse forwards wheel events to the viewport.
func (e *Engine) HandleMouse(msg tea.MouseMsg) tea.Cmd {
	var cmd tea.Cmd
	e.vp, cmd = e.vp.Update(msg)
	return cmd
}

// =============================================================================
// FORMATTING
// =============================================================================

func (e *Engine) formatMessage(m model.ChatMessage) string {
	body := e.theme.MessageBody(m.Color)
	sender := e.theme.MessageSender(m.Color)

	var line string
	switch m.Kind {
	case model.KindSystem:
		line = body.Render(styles.StatusIndicators.Info + " " + m.Body)
	case model.KindError:
		line = body.Render(styles.StatusIndicators.Error + " " + m.Body)
	case model.KindWhisper:
		who := "From " + m.Sender
		if model.SameName(m.Sender, e.localUser) {
			who = "To " + m.Recipient
		}
		line = sender.Render(who+":") + " " + body.Render(m.Body)
	default:
		line = sender.Render(m.Sender+":") + " " + body.Render(m.Body)
	}

	if e.theme.GetLayoutMode() != styles.LayoutNarrow {
		line = e.theme.Timestamp.Render(m.Timestamp.Format("15:04")) + " " + line
	}
	if e.vp.Width > 0 {
		line = lipgloss.NewStyle().Width(e.vp.Width).Render(line)
	}
	return line
}

// =============================================================================
// VIEW
// =============================================================================

// View composes the screen: tab bar, messages with overlays, input line
// and status line.
func (e *Engine) View(input string, connected bool) string {
	if e.tabs.Collapsed() {
		return e.collapsedView(input, connected)
	}

	body := e.vp.View()
	tab := e.tabs.Active()
	if e.frags.Len() == 0 && !e.isStatic(tab) {
		body = e.theme.Hint.Render("No messages yet.")
	}

	var overlay []string
	if n := RenderNotificationStack(e.theme, e.notes.Items(), e.width); n != "" {
		overlay = append(overlay, n)
	}
	if d := RenderDialog(e.theme, &e.dialog, e.width); d != "" {
		overlay = append(overlay, d)
	}
	if a := e.AutocompleteView(); a != "" {
		overlay = append(overlay, a)
	}
	body = spliceBottom(body, strings.Join(overlay, "\n"), e.vp.Height)

	return lipgloss.JoinVertical(lipgloss.Left,
		e.tabBarView(),
		body,
		e.theme.InputPrompt.Render("> ")+input,
		e.statusView(connected),
	)
}

// AutocompleteView renders the mention dropdown, or "" when closed. It
// depends only on the autocomplete state.
func (e *Engine) AutocompleteView() string {
	if !e.auto.Active() {
		return ""
	}
	items := e.auto.Suggestions()
	sel := e.auto.Selected()

	first := 0
	if len(items) > maxDropdownItems {
		first = min(max(sel-maxDropdownItems/2, 0), len(items)-maxDropdownItems)
	}
	last := min(first+maxDropdownItems, len(items))

	rows := make([]string, 0, last-first)
	for i := first; i < last; i++ {
		name := runewidth.Truncate(items[i], maxTabNameWidth, "…")
		if i == sel {
			rows = append(rows, e.theme.DropdownSelected.Render(name))
		} else {
			rows = append(rows, e.theme.DropdownItem.Render(name))
		}
	}
	return e.theme.Dropdown.Render(strings.Join(rows, "\n"))
}

func (e *Engine) tabBarView() string {
	tabs := e.tabs.Tabs()
	parts := make([]string, 0, len(tabs))
	for _, t := range tabs {
		label := runewidth.Truncate(t.DisplayName(), maxTabNameWidth, "…")
		if t.Kind() == model.KindWhisper {
			label = "@" + label
		}
		style := e.theme.Tab
		if t.ID() == e.tabs.ActiveID() {
			style = e.theme.TabActive
		}
		part := style.Render(label)
		if n := t.Unread(); n > 0 {
			part += e.theme.UnreadBadge.Render(fmt.Sprintf(" %d ", n))
		}
		parts = append(parts, part)
	}
	bar := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	style := e.theme.TabBar
	if e.width > 0 {
		style = style.Width(e.width).MaxWidth(e.width)
	}
	return style.Render(bar)
}

func (e *Engine) statusView(connected bool) string {
	status := e.theme.StatusDisconnected.Render(styles.StatusIndicators.Offline + " offline")
	if connected {
		status = e.theme.StatusConnected.Render(styles.StatusIndicators.Online + " online")
	}
	hint := "ctrl+←/→ tabs  ctrl+e collapse  /help"
	if tab := e.tabs.Active(); tab != nil {
		switch {
		case tab.Kind() == model.KindFriends:
			hint = "r reload  a accept  x reject/cancel  d remove  w whisper"
		case tab.Closable():
			hint = "ctrl+w close  " + hint
		}
	}
	return status + "  " + e.theme.Hint.Render(hint)
}

func (e *Engine) collapsedView(input string, connected bool) string {
	label := "Chat"
	if n := e.tabs.TotalUnread(); n > 0 {
		label += e.theme.UnreadBadge.Render(fmt.Sprintf(" %d ", n))
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		e.theme.TabActive.Render(label)+"  "+e.theme.Hint.Render("ctrl+e to expand"),
		e.theme.InputPrompt.Render("> ")+input,
		e.statusView(connected),
	)
}

// spliceBottom pads body to height lines and replaces its last lines
// with overlay.
func spliceBottom(body, overlay string, height int) string {
	lines := strings.Split(body, "\n")
	for len(lines) < height {
		lines = append(lines, "")
	}
	if overlay == "" {
		return strings.Join(lines, "\n")
	}
	ov := strings.Split(overlay, "\n")
	if len(ov) > len(lines) {
		ov = ov[len(ov)-len(lines):]
	}
	copy(lines[len(lines)-len(ov):], ov)
	return strings.Join(lines, "\n")
}
