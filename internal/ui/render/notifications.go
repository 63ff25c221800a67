// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/critterchat/internal/ui/styles"
)

const (
	// DefaultInfoDuration is how long informational notifications stay.
	DefaultInfoDuration = 3 * time.Second

	// DefaultErrorDuration is how long error notifications stay.
	DefaultErrorDuration = 6 * time.Second

	// maxNotifications caps the visible stack.
	maxNotifications = 4
)

// Notification is a transient, self-dismissing message.
type Notification struct {
	ID        int
	Message   string
	IsError   bool
	CreatedAt time.Time
	Duration  time.Duration
}

// TimeRemaining returns how much time is left before auto-dismiss.
func (n Notification) TimeRemaining() time.Duration {
	return max(0, n.Duration-time.Since(n.CreatedAt))
}

// NotificationExpiredMsg removes a notification by ID.
type NotificationExpiredMsg struct {
	ID int
}

// Notifications is the notification stack, newest last. Removal is by
// ID, so an expiry for an already removed entry is harmless.
type Notifications struct {
	items   []Notification
	nextID  int
	info    time.Duration
	errored time.Duration
}

// NewNotifications creates an empty stack.
func NewNotifications(info, errored time.Duration) *Notifications {
	n := &Notifications{nextID: 1, info: DefaultInfoDuration, errored: DefaultErrorDuration}
	n.SetDurations(info, errored)
	return n
}

// SetDurations changes the lifetimes of future notifications.
func (n *Notifications) SetDurations(info, errored time.Duration) {
	if info > 0 {
		n.info = info
	}
	if errored > 0 {
		n.errored = errored
	}
}

// Add pushes a notification and returns its ID with the timer that
// expires it.
func (n *Notifications) Add(message string, isError bool) (int, tea.Cmd) {
	d := n.info
	if isError {
		d = n.errored
	}
	note := Notification{
		ID:        n.nextID,
		Message:   message,
		IsError:   isError,
		CreatedAt: time.Now(),
		Duration:  d,
	}
	n.nextID++

	n.items = append(n.items, note)
	if len(n.items) > maxNotifications {
		n.items = n.items[len(n.items)-maxNotifications:]
	}

	id := note.ID
	return id, tea.Tick(d, func(time.Time) tea.Msg {
		return NotificationExpiredMsg{ID: id}
	})
}

// Remove deletes a notification by ID and reports whether it existed.
func (n *Notifications) Remove(id int) bool {
	for i, note := range n.items {
		if note.ID == id {
			n.items = append(n.items[:i], n.items[i+1:]...)
			return true
		}
	}
	return false
}

// Items returns a copy of the stack.
func (n *Notifications) Items() []Notification {
	return append([]Notification(nil), n.items...)
}

// Len returns the number of notifications.
func (n *Notifications) Len() int { return len(n.items) }

// Clear removes every notification.
func (n *Notifications) Clear() { n.items = nil }

// RenderNotification renders one notification box.
func RenderNotification(theme *styles.Theme, note Notification, width int) string {
	maxWidth := min(60, width-4)
	if maxWidth < 20 {
		maxWidth = 20
	}

	icon := styles.StatusIndicators.Info
	style := theme.Notification
	iconColor := styles.Cyan
	if note.IsError {
		icon = styles.StatusIndicators.Error
		style = theme.NotificationError
		iconColor = styles.Rose
	}

	iconStyle := lipgloss.NewStyle().Foreground(iconColor).Bold(true)
	body := lipgloss.NewStyle().
		Foreground(styles.TextPrimary).
		Width(maxWidth - 8).
		Render(note.Message)

	return style.MaxWidth(maxWidth).Render(iconStyle.Render(icon+" ") + body)
}

// RenderNotificationStack renders the stack right-aligned within width.
func RenderNotificationStack(theme *styles.Theme, notes []Notification, width int) string {
	if len(notes) == 0 {
		return ""
	}
	boxes := make([]string, 0, len(notes))
	for _, note := range notes {
		boxes = append(boxes, RenderNotification(theme, note, width))
	}
	stack := lipgloss.JoinVertical(lipgloss.Right, boxes...)
	if width <= 0 {
		return stack
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Right, stack)
}
